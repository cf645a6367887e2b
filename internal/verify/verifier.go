// Package verify runs every validator over a hand history stream and aggregates the
// diagnostics into a verdict.
package verify

import (
	"bytes"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/dyluth/holdcheck/internal/betting"
	"github.com/dyluth/holdcheck/internal/dealing"
	"github.com/dyluth/holdcheck/internal/diag"
	"github.com/dyluth/holdcheck/internal/roster"
	"github.com/dyluth/holdcheck/internal/structure"
	"github.com/dyluth/holdcheck/pkg/handlog"
)

// DefaultChipUnit is the smallest chip denomination in play.
const DefaultChipUnit int64 = 25

// Options configures a Verifier.
type Options struct {
	ChipUnit     int64       // Defaults to DefaultChipUnit when zero or negative
	StrictRoster bool        // Report players joining after the first hand
	Logger       *log.Logger // Optional; nothing is logged when nil
}

// Result is the outcome of verifying a stream.
type Result struct {
	Hands       int               `json:"hands"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
}

// OK reports whether the stream produced no diagnostics at all.
func (r Result) OK() bool {
	return len(r.Diagnostics) == 0
}

// Verifier processes the records of one stream in order.
// Each stream needs its own Verifier: the roster state it carries is not shared and a
// Verifier is not safe for concurrent use.
type Verifier struct {
	chipUnit int64
	tracker  *roster.Tracker
	logger   *log.Logger

	hands int
	diags []diag.Diagnostic
}

// New creates a Verifier with empty cross-hand state.
func New(opts Options) *Verifier {
	unit := opts.ChipUnit
	if unit <= 0 {
		unit = DefaultChipUnit
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Verifier{
		chipUnit: unit,
		tracker:  roster.NewTracker(opts.StrictRoster),
		logger:   logger,
	}
}

// Text verifies every non-blank line of a whole input.
func (v *Verifier) Text(text string) Result {
	for _, line := range strings.Split(text, "\n") {
		v.Line([]byte(strings.TrimSuffix(line, "\r")))
	}
	return v.Result()
}

// Line verifies one record. Blank lines are ignored and do not count as hands.
func (v *Verifier) Line(line []byte) {
	if len(bytes.TrimSpace(line)) == 0 {
		return
	}
	v.hands++
	hand := v.hands
	before := len(v.diags)

	v.add(v.tracker.BeginHand(hand)...)

	rec, issues, err := handlog.Decode(line)
	if err != nil {
		reason := err.Error()
		var de *handlog.DecodeError
		if errors.As(err, &de) {
			reason = de.Reason
		}
		v.add(diag.New(diag.KindParse, hand, "Invalid record at hand %d: %s", hand, reason))
		v.logger.Printf("[Verifier] Hand %d could not be decoded: %v", hand, err)
		return
	}

	for _, issue := range issues {
		v.add(diag.New(diag.KindField, hand, "%s at hand %d", issue.Message, hand))
	}

	var stacks map[string]int64
	if rec.HasPlayers {
		stacks = rec.StartingStacks()
		v.add(v.tracker.Observe(stacks, rec.NetResult, hand)...)
	}

	if stacks != nil && rec.Meta != nil {
		if d := dealing.Validate(dealing.Input{
			Meta:           rec.Meta,
			Button:         rec.Button,
			StartingStacks: stacks,
			Hand:           hand,
		}); d != nil {
			v.add(*d)
		}
	}

	if stacks != nil && len(rec.Actions) > 0 {
		if d := betting.Validate(betting.Input{
			Actions:        rec.Actions,
			BigBlind:       max(rec.BigBlindOr(v.chipUnit), v.chipUnit),
			ChipUnit:       v.chipUnit,
			StartingStacks: stacks,
			Hand:           hand,
		}); d != nil {
			v.add(*d)
		}
	}

	if rec.NetResult != nil {
		v.add(v.tracker.Settle(rec.NetResult, hand)...)
	}

	v.add(structure.Check(rec, hand)...)

	if n := len(v.diags) - before; n > 0 {
		v.logger.Printf("[Verifier] Hand %d (%s): %d diagnostic(s)", hand, rec.HandID, n)
	}
}

// Result returns the hands processed and diagnostics recorded so far.
func (v *Verifier) Result() Result {
	diags := make([]diag.Diagnostic, len(v.diags))
	copy(diags, v.diags)
	return Result{Hands: v.hands, Diagnostics: diags}
}

func (v *Verifier) add(d ...diag.Diagnostic) {
	v.diags = append(v.diags, d...)
}
