// Package codec converts round state to and from the persisted JSON layout
// {votes:[{id,side,ts}], voted, settled, outcome}.
//
// Decoding never fails: malformed or partial payloads are repaired field by field,
// and anything unparsable yields the default state.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pscheid92/boxvote/internal/domain"
)

// Encode serializes state. A nil votes slice is written as an empty array.
func Encode(state domain.RoundState) ([]byte, error) {
	if state.Votes == nil {
		state.Votes = []domain.Vote{}
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode round state: %w", err)
	}
	return data, nil
}

// Decode parses a stored payload, repairing what it can:
//   - empty or unparsable payload: default state
//   - votes not an array: no votes; entries that are not objects or carry an unknown side are dropped
//   - voted/settled not booleans: false
//   - outcome missing or not a side: null
//   - settled without an outcome: not settled, so the next render settles it properly
func Decode(raw []byte) domain.RoundState {
	state := domain.NewRoundState()
	if len(bytes.TrimSpace(raw)) == 0 {
		return state
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return state
	}

	state.Votes = decodeVotes(fields["votes"])
	state.Voted = decodeBool(fields["voted"])
	state.Settled = decodeBool(fields["settled"])

	var outcome string
	if err := json.Unmarshal(fields["outcome"], &outcome); err == nil {
		if side := domain.Side(outcome); side.Valid() {
			state.Outcome = &side
		}
	}

	if state.Settled && state.Outcome == nil {
		state.Settled = false
	}

	return state
}

// Equal reports whether two states serialize identically.
func Equal(a, b domain.RoundState) bool {
	ea, errA := Encode(a)
	eb, errB := Encode(b)
	return errA == nil && errB == nil && bytes.Equal(ea, eb)
}

func decodeVotes(raw json.RawMessage) []domain.Vote {
	votes := []domain.Vote{}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return votes
	}

	for _, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			continue
		}

		var side string
		if err := json.Unmarshal(fields["side"], &side); err != nil || !domain.Side(side).Valid() {
			continue
		}

		var id string
		_ = json.Unmarshal(fields["id"], &id)

		var ts float64
		_ = json.Unmarshal(fields["ts"], &ts)

		votes = append(votes, domain.Vote{ID: id, Side: domain.Side(side), Timestamp: int64(ts)})
	}

	return votes
}

func decodeBool(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return b
}
