package fixture

import "fmt"

// Strategy generates the list of matchups for a season.
type Strategy interface {
	GenerateMatchups(teams []string) ([]Pairing[string], error)
}

// Get returns a Strategy by name. rounds only applies to round_robin; the
// double round-robin always plays every pair twice.
func Get(name string, rounds int) (Strategy, error) {
	switch name {
	case "", "round_robin":
		if rounds < 1 {
			rounds = 1
		}
		return &RoundRobin{Rounds: rounds}, nil
	case "double_round_robin":
		return &RoundRobin{Rounds: 2}, nil
	default:
		return nil, fmt.Errorf("unknown strategy: %q", name)
	}
}

// RoundRobin plays every pair of teams Rounds times, alternating venue on
// each repeat.
type RoundRobin struct {
	Rounds int
}

func (s *RoundRobin) GenerateMatchups(teams []string) ([]Pairing[string], error) {
	return GenerateRoundRobin(teams, s.Rounds)
}
