package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/boxvote/internal/domain"
)

func sidePtr(s domain.Side) *domain.Side { return &s }

func TestEncode_Layout(t *testing.T) {
	state := domain.RoundState{
		Votes:   []domain.Vote{{ID: "abc123defg", Side: domain.SideAlive, Timestamp: 1700000000000}},
		Voted:   true,
		Settled: true,
		Outcome: sidePtr(domain.SideAlive),
	}

	data, err := Encode(state)
	require.NoError(t, err)
	assert.JSONEq(t, `{"votes":[{"id":"abc123defg","side":"ALIVE","ts":1700000000000}],"voted":true,"settled":true,"outcome":"ALIVE"}`, string(data))
}

func TestEncode_DefaultState(t *testing.T) {
	data, err := Encode(domain.RoundState{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"votes":[],"voted":false,"settled":false,"outcome":null}`, string(data))
}

func TestDecode_RoundTrip(t *testing.T) {
	state := domain.RoundState{
		Votes: []domain.Vote{
			{ID: "a", Side: domain.SideDead, Timestamp: 5},
			{ID: "b", Side: domain.SideAlive, Timestamp: 9},
		},
		Voted:   true,
		Settled: true,
		Outcome: sidePtr(domain.SideDead),
	}

	data, err := Encode(state)
	require.NoError(t, err)
	assert.Equal(t, state, Decode(data))
}

func TestDecode_Repairs(t *testing.T) {
	defaultState := domain.NewRoundState()

	tests := []struct {
		name string
		raw  string
		want domain.RoundState
	}{
		{"empty payload", ``, defaultState},
		{"whitespace", "  \n", defaultState},
		{"not json", `this is not json`, defaultState},
		{"json string", `"hello"`, defaultState},
		{"json array", `[1,2,3]`, defaultState},
		{"json null", `null`, defaultState},
		{"empty object", `{}`, defaultState},
		{
			"votes not an array",
			`{"votes":"nope","voted":true}`,
			domain.RoundState{Votes: []domain.Vote{}, Voted: true},
		},
		{
			"bad vote entries dropped",
			`{"votes":[1,"x",{"id":"ok","side":"DEAD","ts":7},{"id":"bad","side":"MAYBE","ts":8},{"side":"ALIVE"}]}`,
			domain.RoundState{Votes: []domain.Vote{
				{ID: "ok", Side: domain.SideDead, Timestamp: 7},
				{ID: "", Side: domain.SideAlive, Timestamp: 0},
			}},
		},
		{
			"non-bool flags",
			`{"votes":[],"voted":"yes","settled":1}`,
			defaultState,
		},
		{
			"unknown outcome",
			`{"votes":[],"outcome":"SCHRODINGER"}`,
			defaultState,
		},
		{
			"settled without outcome",
			`{"votes":[],"settled":true,"outcome":null}`,
			defaultState,
		},
		{
			"missing outcome field",
			`{"votes":[],"voted":false,"settled":false}`,
			defaultState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, Decode([]byte(tt.raw)))
			})
		})
	}
}

func TestEqual(t *testing.T) {
	a := domain.NewRoundState()
	b := domain.RoundState{}
	assert.True(t, Equal(a, b), "nil and empty votes serialize the same")

	c := a.Clone()
	c.Voted = true
	assert.False(t, Equal(a, c))
}
