package brackets

import (
	"errors"
	"slices"
)

var (
	ErrNoParticipants  = errors.New("round robin: no participants")
	ErrOddParticipants = errors.New("round robin: participant count must be even")
)

// Pairing is one board of a round. First sits on the fixed half of the circle.
type Pairing struct {
	First  string
	Second string
}

// RoundRobin schedules every unique pair of keys exactly once using the circle
// method: keys[0] stays fixed while the others rotate clockwise. The result has
// len(keys)-1 rounds of len(keys)/2 pairings each.
func RoundRobin(keys []string) ([][]Pairing, error) {
	n := len(keys)
	if n == 0 {
		return nil, ErrNoParticipants
	}
	if n%2 != 0 {
		return nil, ErrOddParticipants
	}

	half := n / 2
	top := slices.Clone(keys[:half])
	bottom := slices.Clone(keys[half:])

	rounds := make([][]Pairing, 0, n-1)
	for round := 0; round < n-1; round++ {
		pairings := make([]Pairing, 0, half)
		for j := 0; j < half; j++ {
			pairings = append(pairings, Pairing{First: top[j], Second: bottom[half-1-j]})
		}
		rounds = append(rounds, pairings)
		top, bottom = rotate(top, bottom)
	}
	return rounds, nil
}

func rotate(top, bottom []string) ([]string, []string) {
	last := len(top) - 1
	if last == 0 {
		return top, bottom
	}
	top = slices.Insert(top, 1, bottom[last])
	bottom = slices.Insert(bottom, 0, top[len(top)-1])
	return top[:last+1], bottom[:last+1]
}
