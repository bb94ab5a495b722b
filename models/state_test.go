package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameState_CanTransition(t *testing.T) {
	tests := []struct {
		from, to GameState
		want     bool
	}{
		{StateCreated, StateActive, true},
		{StateCreated, StateEnded, true},
		{StateActive, StateEnded, true},
		{StateActive, StateCreated, false},
		{StateEnded, StateActive, false},
		{StateEnded, StateCreated, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestMatch_TransitionIsIdempotentAndTerminal(t *testing.T) {
	m := &Match{Key: "m1", State: StateActive}
	require.NoError(t, m.Transition(StateEnded))
	require.NoError(t, m.Transition(StateEnded))

	err := m.Transition(StateActive)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, StateEnded, m.State)
}

func TestParseResult(t *testing.T) {
	tests := map[string]Result{
		"FIRST":     ResultFirst,
		" second ":  ResultSecond,
		"draw":      ResultDraw,
		"1 - 0":     ResultFirst,
		"0-1":       ResultSecond,
		"1/2 - 1/2": ResultDraw,
	}
	for raw, want := range tests {
		got, err := ParseResult(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseResult("WHITE")
	assert.ErrorIs(t, err, ErrUnknownResult)
	_, err = ParseResult("")
	assert.ErrorIs(t, err, ErrUnknownResult)
}

func TestResult_Points(t *testing.T) {
	f, s := ResultFirst.Points()
	assert.Equal(t, [2]float64{1, 0}, [2]float64{f, s})
	f, s = ResultSecond.Points()
	assert.Equal(t, [2]float64{0, 1}, [2]float64{f, s})
	f, s = ResultDraw.Points()
	assert.Equal(t, [2]float64{0.5, 0.5}, [2]float64{f, s})
}
