// Package handlog provides the typed model of a serialized No-Limit Hold'em hand record
// and the decoder that turns one newline-delimited JSON line into that model.
//
// # Overview
//
// Hand logs are produced by simulators and loggers that disagree on small details of the
// schema. The decoder absorbs those differences in one place so that validators only
// ever see the normalized types defined here:
//
//   - player ids may be strings ("p0") or integers (0); an integer n resolves to "pn"
//     when that player is seated in the hand, otherwise to its decimal string
//   - actions may be tagged objects ({"Bet": 200}) or bare strings ("Check", "AllIn")
//   - unknown fields are ignored and optional fields (ts, meta, net_result, blinds,
//     button) are treated as absent when unset or null
//
// # Usage Example
//
//	rec, issues, err := handlog.Decode(line)
//	if err != nil {
//		// structural parse error: the line cannot be validated at all
//	}
//	for _, issue := range issues {
//		// soft field problems, e.g. an invalid hole card specification
//	}
//	stacks := rec.StartingStacks()
//
// # Record Schema
//
//	{
//	  "hand_id": "20250102-000001",
//	  "seed": 42,
//	  "level": 1,
//	  "blinds": {"sb": 50, "bb": 100},
//	  "button": "p0",
//	  "players": [{"id": "p0", "stack_start": 1000, "hole_cards": [...]}, ...],
//	  "actions": [{"player_id": 0, "street": "Preflop", "action": {"Bet": 200}}, ...],
//	  "board": [{"rank": "Ace", "suit": "Hearts"}, ...],
//	  "result": "p0",
//	  "net_result": {"p0": 250, "p1": -250},
//	  "end_reason": "showdown",
//	  "meta": {"small_blind": "p0", "big_blind": "p1",
//	           "deal_sequence": ["p0", "p1", "p0", "p1"], "burn_positions": [5, 9, 11]},
//	  "ts": "2025-01-02T00:00:00Z"
//	}
package handlog
