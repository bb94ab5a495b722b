package models

import (
	"errors"
	"fmt"
)

// GameState is the lifecycle state shared by tournaments, rounds and matches.
type GameState string

const (
	StateCreated GameState = "CREATED"
	StateActive  GameState = "ACTIVE"
	StateEnded   GameState = "ENDED"
)

var ErrIllegalTransition = errors.New("illegal state transition")

func (s GameState) Valid() bool {
	switch s {
	case StateCreated, StateActive, StateEnded:
		return true
	default:
		return false
	}
}

// CanTransition reports whether s may move to next. ENDED is terminal.
// CREATED may jump straight to ENDED for matches resolved without play.
func (s GameState) CanTransition(next GameState) bool {
	switch s {
	case StateCreated:
		return next == StateActive || next == StateEnded
	case StateActive:
		return next == StateEnded
	default:
		return false
	}
}

func ParseGameState(raw string) (GameState, error) {
	s := GameState(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown state %q", raw)
	}
	return s, nil
}

func transition(kind, key string, from *GameState, to GameState) error {
	if *from == to {
		return nil
	}
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s %s %s -> %s", ErrIllegalTransition, kind, key, *from, to)
	}
	*from = to
	return nil
}
