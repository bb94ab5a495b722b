package brackets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("p%02d", i)
	}
	return out
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func TestRoundRobin_CoversEveryPairOnce(t *testing.T) {
	for n := 2; n <= 16; n += 2 {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			rounds, err := RoundRobin(keys(n))
			require.NoError(t, err)
			require.Len(t, rounds, n-1)

			seen := make(map[string]int)
			for _, round := range rounds {
				require.Len(t, round, n/2)
				inRound := make(map[string]bool)
				for _, p := range round {
					assert.NotEqual(t, p.First, p.Second)
					assert.False(t, inRound[p.First], "%s plays twice in a round", p.First)
					assert.False(t, inRound[p.Second], "%s plays twice in a round", p.Second)
					inRound[p.First] = true
					inRound[p.Second] = true
					seen[pairKey(p.First, p.Second)]++
				}
			}
			assert.Len(t, seen, n*(n-1)/2)
			for pair, count := range seen {
				assert.Equal(t, 1, count, "pair %s", pair)
			}
		})
	}
}

func TestRoundRobin_FirstRoundAndRotation(t *testing.T) {
	rounds, err := RoundRobin([]string{"A", "B", "C", "D"})
	require.NoError(t, err)

	assert.Equal(t, [][]Pairing{
		{{"A", "D"}, {"B", "C"}},
		{{"A", "C"}, {"D", "B"}},
		{{"A", "B"}, {"C", "D"}},
	}, rounds)
}

func TestRoundRobin_FixedSeatNeverMoves(t *testing.T) {
	rounds, err := RoundRobin(keys(8))
	require.NoError(t, err)
	for _, round := range rounds {
		assert.Equal(t, "p00", round[0].First)
	}
}

func TestRoundRobin_Errors(t *testing.T) {
	_, err := RoundRobin(nil)
	assert.ErrorIs(t, err, ErrNoParticipants)

	_, err = RoundRobin(keys(3))
	assert.ErrorIs(t, err, ErrOddParticipants)
}

func TestRoundRobin_DoesNotMutateInput(t *testing.T) {
	in := keys(6)
	orig := append([]string(nil), in...)
	_, err := RoundRobin(in)
	require.NoError(t, err)
	assert.Equal(t, orig, in)
}
