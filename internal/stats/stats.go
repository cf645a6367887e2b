// Package stats summarises hand history files: hand counts, winners, and how many
// records had to be skipped.
package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dyluth/holdcheck/internal/roster"
	"github.com/dyluth/holdcheck/internal/source"
	"github.com/dyluth/holdcheck/pkg/handlog"
)

// Extensions lists the file suffixes picked up when walking a directory.
var Extensions = []string{".jsonl", ".jsonl.zst", ".jsonl.gz"}

// ErrNoValidRecords is returned for a single input in which every record was unusable.
var ErrNoValidRecords = errors.New("no valid records")

// Summary is the aggregate over every consumed input.
type Summary struct {
	Hands      int            `json:"hands"`
	Winners    map[string]int `json:"winners"`
	Files      int            `json:"files"`
	Corrupted  int            `json:"corrupted"`
	Incomplete int            `json:"incomplete_final_lines"`
	Problems   []string       `json:"problems,omitempty"`
}

// OK reports whether no record had a ledger problem and every file could be read.
func (s *Summary) OK() bool {
	return len(s.Problems) == 0
}

// WinnerIDs returns the ids in Winners, sorted.
func (s *Summary) WinnerIDs() []string {
	ids := make([]string, 0, len(s.Winners))
	for id := range s.Winners {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Collector accumulates a Summary over several inputs.
type Collector struct {
	summary Summary
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{summary: Summary{Winners: make(map[string]int)}}
}

// Summary returns the totals so far.
func (c *Collector) Summary() *Summary {
	s := c.summary
	return &s
}

// Consume adds the records of one decoded input.
// A final line that is not valid JSON and is not newline-terminated is counted as an
// incomplete write rather than a corrupted record.
func (c *Collector) Consume(text string) {
	c.summary.Files++
	trailingNewline := strings.HasSuffix(text, "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	for i, line := range lines {
		rec, issues, err := handlog.Decode([]byte(line))
		if err != nil {
			if i == len(lines)-1 && !trailingNewline && !json.Valid([]byte(line)) {
				c.summary.Incomplete++
			} else {
				c.summary.Corrupted++
			}
			continue
		}

		invalid := false
		for _, issue := range issues {
			if issue.Field != "net_result" {
				continue
			}
			invalid = true
			c.problem("%s at hand %s", issue.Message, rec.HandID)
		}
		if !roster.Conserved(rec.NetResult) {
			c.problem("Chip conservation violated at hand %s", rec.HandID)
		}
		if invalid {
			continue
		}

		c.summary.Hands++
		if rec.Result != "" {
			c.summary.Winners[rec.Result]++
		}
	}
}

func (c *Collector) problem(format string, a ...any) {
	c.summary.Problems = append(c.summary.Problems, fmt.Sprintf(format, a...))
}

// Collect summarises path, which may be a single file, "-" for stdin, or a directory
// walked recursively for files ending in one of Extensions. Unreadable files inside a
// directory are recorded as problems; an unreadable single input is returned as an error.
func Collect(path string, opts source.Options) (*Summary, error) {
	c := NewCollector()

	if path != source.Stdin {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if err := c.walk(path, opts); err != nil {
				return nil, err
			}
			return c.Summary(), nil
		}
	}

	text, err := source.Load(path, opts)
	if err != nil {
		return nil, err
	}
	c.Consume(text)

	s := c.Summary()
	if s.Hands == 0 && (s.Corrupted > 0 || s.Incomplete > 0) {
		return s, ErrNoValidRecords
	}
	return s, nil
}

func (c *Collector) walk(root string, opts source.Options) error {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable directories are skipped
			if d != nil && d.IsDir() && p != root {
				return fs.SkipDir
			}
			return err
		}
		if !d.IsDir() && hasExtension(d.Name()) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", root, err)
	}

	for _, p := range paths {
		text, err := source.Load(p, opts)
		if err != nil {
			c.problem("Failed to read %s: %v", p, errors.Unwrap(err))
			continue
		}
		c.Consume(text)
	}
	return nil
}

func hasExtension(name string) bool {
	for _, ext := range Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
