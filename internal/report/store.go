// Package report persists verification reports in Redis so runs can be listed,
// inspected and followed from other processes.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Store provides namespace-scoped Redis operations for reports.
// It is safe for concurrent use.
type Store struct {
	rdb       *redis.Client
	namespace string
}

// NewStore creates a store for the given namespace.
// Returns an error if namespace is empty.
func NewStore(redisOpts *redis.Options, namespace string) (*Store, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}
	return &Store{
		rdb:       redis.NewClient(redisOpts),
		namespace: namespace,
	}, nil
}

// Open parses a redis:// URL and creates a store.
func Open(redisURL, namespace string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return NewStore(opts, namespace)
}

// Namespace returns the namespace all keys are scoped to.
func (s *Store) Namespace() string {
	return s.namespace
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Ping verifies Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Save writes a report, indexes it by creation time and publishes it on the events
// channel. Saving the same report twice is safe.
func (s *Store) Save(ctx context.Context, r *Report) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid report: %w", err)
	}

	hash, err := ToHash(r)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	if err := s.rdb.HSet(ctx, ReportKey(s.namespace, r.ID), hash).Err(); err != nil {
		return fmt.Errorf("failed to write report to Redis: %w", err)
	}

	z := redis.Z{Score: float64(r.CreatedAtMs), Member: r.ID}
	if err := s.rdb.ZAdd(ctx, IndexKey(s.namespace), z).Err(); err != nil {
		return fmt.Errorf("failed to index report: %w", err)
	}

	reportJSON, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report for event: %w", err)
	}
	if err := s.rdb.Publish(ctx, EventsChannel(s.namespace), reportJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish report event: %w", err)
	}

	return nil
}

// Get retrieves a report by ID.
// Returns redis.Nil if the report doesn't exist; use IsNotFound to check.
func (s *Store) Get(ctx context.Context, reportID string) (*Report, error) {
	hashData, err := s.rdb.HGetAll(ctx, ReportKey(s.namespace, reportID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read report from Redis: %w", err)
	}
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	r, err := FromHash(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize report: %w", err)
	}
	return r, nil
}

// IDsBetween returns report IDs from the creation-time index, oldest first.
// Zero bounds are open.
func (s *Store) IDsBetween(ctx context.Context, sinceMs, untilMs int64) ([]string, error) {
	lo, hi := "-inf", "+inf"
	if sinceMs > 0 {
		lo = strconv.FormatInt(sinceMs, 10)
	}
	if untilMs > 0 {
		hi = strconv.FormatInt(untilMs, 10)
	}

	ids, err := s.rdb.ZRangeByScore(ctx, IndexKey(s.namespace), &redis.ZRangeBy{Min: lo, Max: hi}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read report index: %w", err)
	}
	return ids, nil
}

// ScanIDs returns the IDs of every stored report whose ID starts with prefix.
// Uses SCAN so large namespaces do not block the server.
func (s *Store) ScanIDs(ctx context.Context, prefix string) ([]string, error) {
	keyPrefix := ReportKeyPrefix(s.namespace)
	iter := s.rdb.Scan(ctx, 0, keyPrefix+prefix+"*", 0).Iterator()

	var ids []string
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan reports: %w", err)
	}
	return ids, nil
}

// Subscription delivers reports as they are saved.
type Subscription struct {
	events <-chan *Report
	errors <-chan error
	cancel context.CancelFunc
}

// Events returns the channel of saved reports. It is closed when the subscription ends.
func (s *Subscription) Events() <-chan *Report {
	return s.events
}

// Errors returns the channel of undecodable events.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription.
func (s *Subscription) Close() error {
	s.cancel()
	return nil
}

// Subscribe follows the namespace's events channel until ctx is cancelled or Close is
// called. Delivery is at-most-once: reports published while nobody listens are missed.
func (s *Store) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := s.rdb.Subscribe(ctx, EventsChannel(s.namespace))

	// wait for the subscription to be confirmed so no event saved after return is lost
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to report events: %w", err)
	}

	eventsChan := make(chan *Report, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var r Report
				if err := json.Unmarshal([]byte(msg.Payload), &r); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal report event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &r:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{events: eventsChan, errors: errorsChan, cancel: cancelFunc}, nil
}

// NumSubscribers returns how many clients are subscribed to the events channel.
func (s *Store) NumSubscribers(ctx context.Context) (int64, error) {
	channel := EventsChannel(s.namespace)
	counts, err := s.rdb.PubSubNumSub(ctx, channel).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}
	return counts[channel], nil
}

// IsNotFound returns true if the error is a Redis "key not found" error (redis.Nil).
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
