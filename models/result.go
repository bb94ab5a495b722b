package models

import (
	"errors"
	"strings"
)

// Result is a match outcome from the first player's perspective.
type Result string

const (
	ResultUnset  Result = ""
	ResultFirst  Result = "FIRST"
	ResultSecond Result = "SECOND"
	ResultDraw   Result = "DRAW"
)

var ErrUnknownResult = errors.New("unknown result")

// ParseResult accepts the enum token or the displayed score.
func ParseResult(raw string) (Result, error) {
	token := strings.TrimSpace(raw)
	switch strings.ToUpper(token) {
	case string(ResultFirst), "1 - 0", "1-0":
		return ResultFirst, nil
	case string(ResultSecond), "0 - 1", "0-1":
		return ResultSecond, nil
	case string(ResultDraw), "1/2 - 1/2", "1/2-1/2":
		return ResultDraw, nil
	}
	return ResultUnset, ErrUnknownResult
}

func (r Result) IsSet() bool { return r != ResultUnset }

func (r Result) Display() string {
	switch r {
	case ResultFirst:
		return "1 - 0"
	case ResultSecond:
		return "0 - 1"
	case ResultDraw:
		return "1/2 - 1/2"
	default:
		return ""
	}
}

// Points returns the score awarded to the first and second player.
func (r Result) Points() (first, second float64) {
	switch r {
	case ResultFirst:
		return 1, 0
	case ResultSecond:
		return 0, 1
	case ResultDraw:
		return 0.5, 0.5
	default:
		return 0, 0
	}
}
