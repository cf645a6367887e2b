package handlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DecodeError reports a line that cannot be turned into a HandRecord at all.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid record: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid record: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError returns true if the error is a DecodeError.
func IsDecodeError(err error) bool {
	_, ok := err.(*DecodeError)
	return ok
}

// FieldIssue is a problem with one field that does not prevent the rest of the record
// from being validated.
type FieldIssue struct {
	Field   string
	Message string
}

// Decode parses one non-blank log line.
// A DecodeError is returned when the line is not a JSON object or a required field has
// the wrong shape (hand_id not a string, actions or board not a list). Soft problems such
// as an unparseable card are returned as issues alongside the record.
func Decode(line []byte) (*HandRecord, []FieldIssue, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, nil, &DecodeError{Reason: "line is not a JSON object"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, nil, &DecodeError{Reason: "malformed JSON", Err: err}
	}

	d := &decoder{fields: fields, rec: &HandRecord{}}
	if err := d.decode(); err != nil {
		return nil, nil, err
	}
	return d.rec, d.issues, nil
}

type decoder struct {
	fields map[string]json.RawMessage
	rec    *HandRecord
	known  map[string]bool
	issues []FieldIssue
}

func (d *decoder) issue(field, format string, a ...any) {
	d.issues = append(d.issues, FieldIssue{Field: field, Message: fmt.Sprintf(format, a...)})
}

// field returns the raw value for name, or nil when absent or null.
func (d *decoder) field(name string) json.RawMessage {
	raw, ok := d.fields[name]
	if !ok || isNull(raw) {
		return nil
	}
	return raw
}

func (d *decoder) decode() error {
	raw := d.field("hand_id")
	if raw == nil {
		return &DecodeError{Reason: "missing hand_id"}
	}
	id, ok := rawString(raw)
	if !ok {
		return &DecodeError{Reason: "hand_id must be a string"}
	}
	d.rec.HandID = id

	if raw := d.field("seed"); raw != nil {
		seed, err := strconv.ParseUint(string(raw), 10, 64)
		if err != nil {
			return &DecodeError{Reason: "seed must be a non-negative integer"}
		}
		d.rec.Seed = &seed
	}
	if raw := d.field("level"); raw != nil {
		if level, ok := rawInt(raw); ok {
			d.rec.Level = &level
		}
	}

	if err := d.decodePlayers(); err != nil {
		return err
	}
	if err := d.decodeActions(); err != nil {
		return err
	}
	if err := d.decodeBoard(); err != nil {
		return err
	}

	d.decodeBlinds()
	d.decodeNetResult()
	d.decodeMeta()

	if raw := d.field("button"); raw != nil {
		d.rec.Button = d.resolveID(raw)
	}
	if raw := d.field("result"); raw != nil {
		d.rec.Result, _ = rawString(raw)
	}
	if raw := d.field("end_reason"); raw != nil {
		d.rec.EndReason, _ = rawString(raw)
	}
	if raw := d.field("ts"); raw != nil {
		d.rec.Timestamp, _ = rawString(raw)
	}
	return nil
}

func (d *decoder) decodePlayers() error {
	d.known = make(map[string]bool)
	raw := d.field("players")
	if raw == nil {
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return &DecodeError{Reason: "players must be a list"}
	}
	d.rec.HasPlayers = true

	for _, entry := range entries {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(entry, &obj); err != nil {
			continue
		}
		id := plainID(obj["id"])
		if id == "" {
			continue
		}
		p := Player{ID: id}
		if stack, ok := rawInt(obj["stack_start"]); ok {
			p.StackStart = stack
		}
		if holeRaw := obj["hole_cards"]; holeRaw != nil && !isNull(holeRaw) {
			var cards []json.RawMessage
			if err := json.Unmarshal(holeRaw, &cards); err != nil {
				d.issue("players.hole_cards", "Invalid card specification for %s", id)
			}
			for _, c := range cards {
				card, err := ParseCard(c)
				if err != nil {
					d.issue("players.hole_cards", "Invalid card specification for %s", id)
					continue
				}
				p.HoleCards = append(p.HoleCards, card)
			}
		}
		d.known[id] = true
		d.rec.Players = append(d.rec.Players, p)
	}
	return nil
}

func (d *decoder) decodeActions() error {
	raw, present := d.fields["actions"]
	if !present {
		return &DecodeError{Reason: "missing actions"}
	}
	var entries []json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &entries) != nil {
		return &DecodeError{Reason: "actions must be a list"}
	}

	d.rec.Actions = make([]Action, 0, len(entries))
	for _, entry := range entries {
		d.rec.Actions = append(d.rec.Actions, d.parseAction(entry))
	}
	return nil
}

// parseAction never fails; entries it cannot interpret become actions without a player
// id (skipped by validators) or of kind Other.
func (d *decoder) parseAction(raw json.RawMessage) Action {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Action{}
	}
	act := Action{}
	if idRaw := obj["player_id"]; idRaw != nil && !isNull(idRaw) {
		act.PlayerID = d.resolveID(idRaw)
	}
	if streetRaw := obj["street"]; streetRaw != nil {
		if s, ok := rawString(streetRaw); ok {
			act.Street = Street(s)
		}
	}
	parseActionKind(obj["action"], &act)
	return act
}

func parseActionKind(raw json.RawMessage, act *Action) {
	if raw == nil || isNull(raw) {
		act.Kind = ActionOther
		return
	}

	if name, ok := rawString(raw); ok {
		switch strings.ToLower(name) {
		case "bet", "raise":
			act.Kind = ActionMalformed
		case "call":
			act.Kind = ActionCall
		case "check":
			act.Kind = ActionCheck
		case "fold":
			act.Kind = ActionFold
		case "allin", "all-in":
			act.Kind = ActionAllIn
		default:
			act.Kind = ActionOther
		}
		return
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tagged); err != nil {
		act.Kind = ActionOther
		return
	}
	if v, ok := tagged["Bet"]; ok {
		act.Kind = ActionMalformed
		if amount, ok := rawInt(v); ok {
			act.Kind, act.Amount, act.HasAmount = ActionBet, amount, true
		}
		return
	}
	if v, ok := tagged["Raise"]; ok {
		act.Kind = ActionMalformed
		if amount, ok := rawInt(v); ok {
			act.Kind, act.Amount, act.HasAmount = ActionRaise, amount, true
		}
		return
	}
	if v, ok := tagged["AllIn"]; ok {
		act.Kind = ActionAllIn
		if amount, ok := rawInt(v); ok {
			act.Amount, act.HasAmount = amount, true
		}
		return
	}
	switch {
	case hasKey(tagged, "Call"):
		act.Kind = ActionCall
	case hasKey(tagged, "Check"):
		act.Kind = ActionCheck
	case hasKey(tagged, "Fold"):
		act.Kind = ActionFold
	default:
		act.Kind = ActionOther
	}
}

func (d *decoder) decodeBoard() error {
	raw := d.field("board")
	if raw == nil {
		return &DecodeError{Reason: "missing board"}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return &DecodeError{Reason: "board must be a list"}
	}
	d.rec.BoardSize = len(entries)
	d.rec.Board = make([]Card, 0, len(entries))
	for i, entry := range entries {
		card, err := ParseCard(entry)
		if err != nil {
			d.issue("board", "Invalid card specification on board (card #%d)", i+1)
			continue
		}
		d.rec.Board = append(d.rec.Board, card)
	}
	return nil
}

// decodeBlinds accepts {"sb": 50, "bb": 100} or [50, 100].
func (d *decoder) decodeBlinds() {
	raw := d.field("blinds")
	if raw == nil {
		return
	}
	blinds := &Blinds{}
	var obj map[string]json.RawMessage
	var arr []json.RawMessage
	switch {
	case json.Unmarshal(raw, &obj) == nil:
		blinds.SmallBlind, _ = rawInt(obj["sb"])
		blinds.BigBlind, _ = rawInt(obj["bb"])
	case json.Unmarshal(raw, &arr) == nil:
		if len(arr) >= 1 {
			blinds.SmallBlind, _ = rawInt(arr[0])
		}
		if len(arr) >= 2 {
			blinds.BigBlind, _ = rawInt(arr[1])
		}
	default:
		return
	}
	d.rec.Blinds = blinds
}

func (d *decoder) decodeNetResult() {
	raw := d.field("net_result")
	if raw == nil {
		return
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		d.issue("net_result", "net_result must be an object")
		return
	}
	d.rec.NetResult = make(map[string]int64, len(obj))
	for id, v := range obj {
		delta, ok := rawInt(v)
		if !ok {
			d.issue("net_result", "Invalid net_result value for %s", id)
			continue
		}
		d.rec.NetResult[id] = delta
	}
}

func (d *decoder) decodeMeta() {
	raw := d.field("meta")
	if raw == nil {
		return
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return
	}
	meta := &DealingMeta{}
	if v := obj["small_blind"]; v != nil && !isNull(v) {
		meta.SmallBlind = d.resolveID(v)
	}
	if v := obj["big_blind"]; v != nil && !isNull(v) {
		meta.BigBlind = d.resolveID(v)
	}

	if v, ok := obj["deal_sequence"]; ok {
		meta.HasDealSequence = true
		var entries []json.RawMessage
		if isNull(v) || json.Unmarshal(v, &entries) != nil {
			meta.DealSequenceProblem = "deal_sequence must be an array"
		} else {
			for _, e := range entries {
				id := d.resolveID(e)
				if id == "" {
					meta.DealSequenceProblem = "deal_sequence must contain player identifiers"
					meta.DealSequence = nil
					break
				}
				meta.DealSequence = append(meta.DealSequence, id)
			}
		}
	}

	if v, ok := obj["burn_positions"]; ok {
		meta.HasBurnPositions = true
		var entries []json.RawMessage
		if isNull(v) || json.Unmarshal(v, &entries) != nil {
			meta.BurnPositionsProblem = "burn_positions must be an array"
		} else {
			for _, e := range entries {
				pos, ok := rawInt(e)
				if !ok {
					meta.BurnPositionsProblem = "burn_positions must contain integers"
					meta.BurnPositions = nil
					break
				}
				meta.BurnPositions = append(meta.BurnPositions, pos)
			}
		}
	}
	d.rec.Meta = meta
}

// resolveID maps a player reference to a player id. Strings are taken verbatim; an
// integer n becomes "pn" when that player is seated in this hand, otherwise the decimal
// string of n. Anything else resolves to "".
func (d *decoder) resolveID(raw json.RawMessage) string {
	if s, ok := rawString(raw); ok {
		return s
	}
	n, ok := rawInt(raw)
	if !ok {
		return ""
	}
	candidate := fmt.Sprintf("p%d", n)
	if d.known[candidate] {
		return candidate
	}
	return strconv.FormatInt(n, 10)
}

// plainID reads a players[].id, which may be a string or an integer.
func plainID(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	if s, ok := rawString(raw); ok {
		return s
	}
	if n, ok := rawInt(raw); ok {
		return strconv.FormatInt(n, 10)
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func hasKey(obj map[string]json.RawMessage, key string) bool {
	_, ok := obj[key]
	return ok
}

// rawInt parses an integral JSON number. Fractions, strings and null are rejected.
func rawInt(raw json.RawMessage) (int64, bool) {
	if raw == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(string(bytes.TrimSpace(raw)), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func rawString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false
	}
	return s, true
}
