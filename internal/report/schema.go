package report

import "fmt"

// Redis key pattern helpers
//
// All keys and channels are namespaced so several teams or pipelines can share one
// Redis server.
//
// Key pattern: holdcheck:{namespace}:report:{uuid}
// Index pattern: holdcheck:{namespace}:reports (ZSET scored by created_at_ms)
// Channel pattern: holdcheck:{namespace}:report_events

// ReportKey returns the Redis key for a report hash.
func ReportKey(namespace, reportID string) string {
	return fmt.Sprintf("holdcheck:%s:report:%s", namespace, reportID)
}

// ReportKeyPrefix returns the prefix shared by every report key of a namespace.
func ReportKeyPrefix(namespace string) string {
	return fmt.Sprintf("holdcheck:%s:report:", namespace)
}

// IndexKey returns the Redis key of the creation-time index.
func IndexKey(namespace string) string {
	return fmt.Sprintf("holdcheck:%s:reports", namespace)
}

// EventsChannel returns the Pub/Sub channel a report is published on after it is stored.
func EventsChannel(namespace string) string {
	return fmt.Sprintf("holdcheck:%s:report_events", namespace)
}
