package fixture

import (
	"fmt"

	"github.com/derekprior/league/internal/model"
)

// Pairing is a fixture: two teams, home and away, not yet bound to a date.
type Pairing[T comparable] struct {
	Home  T
	Away  T
	Round int // 1-based, counted across repeated round-robins
}

// GenerateRoundRobin builds a round-robin schedule with the circle method.
// Output is round-major: every pairing of round 1, then round 2, and so on.
//
// An odd team count is padded with a bye; pairings against the bye are
// dropped. The first team is fixed on the circle and alternates home and
// away every round starting at home; every other pairing puts the team in
// the top half of the circle at home. Each team visits every circle position
// once per round-robin, so home counts differ by at most one.
//
// Swapping every odd-indexed pairing on alternate rounds instead would leave
// the fixed first team at home in every round, and home counts for larger
// leagues would drift apart by far more than one. Only the fixed pairing
// alternates.
//
// When rounds > 1 the round-robin is repeated, with home and away swapped on
// every even-numbered repeat.
func GenerateRoundRobin[T comparable](teams []T, rounds int) ([]Pairing[T], error) {
	if len(teams) < 2 {
		return nil, &model.InsufficientTeamsError{Count: len(teams)}
	}
	if rounds < 1 {
		return nil, fmt.Errorf("rounds must be positive, got %d", rounds)
	}

	// Work on indices so the bye needs no sentinel value of T.
	n := len(teams)
	bye := -1
	if n%2 == 1 {
		bye = n
		n++
	}
	circle := make([]int, n)
	for i := range circle {
		circle[i] = i
	}

	var single []Pairing[T]
	perRound := n - 1
	for r := 0; r < perRound; r++ {
		for i := 0; i < n/2; i++ {
			a, b := circle[i], circle[n-1-i]
			if a == bye || b == bye {
				continue
			}
			home, away := a, b
			if i == 0 && r%2 == 1 {
				home, away = b, a
			}
			single = append(single, Pairing[T]{Home: teams[home], Away: teams[away], Round: r + 1})
		}
		rotate(circle)
	}

	out := make([]Pairing[T], 0, len(single)*rounds)
	for k := 0; k < rounds; k++ {
		for _, p := range single {
			if k%2 == 1 {
				p.Home, p.Away = p.Away, p.Home
			}
			p.Round += k * perRound
			out = append(out, p)
		}
	}
	return out, nil
}

// rotate moves every position except the first one step clockwise.
func rotate(circle []int) {
	last := circle[len(circle)-1]
	copy(circle[2:], circle[1:len(circle)-1])
	circle[1] = last
}
