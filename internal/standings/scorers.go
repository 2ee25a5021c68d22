package standings

import (
	"sort"

	"github.com/derekprior/league/internal/model"
)

// Scorer is one line of the goal leaderboard.
type Scorer struct {
	Player    string
	FirstName string
	LastName  string
	Team      string
	Goals     int
}

// TopScorers counts goal events across completed games. Own goals are left
// out entirely. The team is the one recorded on the player's first goal.
//
// players supplies names for ordering; a player missing from it sorts by id.
// Ties on goals break on last name, then first name, then player id.
func TopScorers(games []model.Game, players map[string]model.Player) []Scorer {
	byPlayer := make(map[string]*Scorer)
	var order []string
	for _, g := range games {
		if g.Status != model.GameCompleted {
			continue
		}
		for _, e := range g.Events {
			if e.Type != model.EventGoal {
				continue
			}
			s, ok := byPlayer[e.Player]
			if !ok {
				s = &Scorer{Player: e.Player, Team: e.Team, LastName: e.Player}
				if p, known := players[e.Player]; known {
					s.FirstName, s.LastName = p.FirstName, p.LastName
				}
				byPlayer[e.Player] = s
				order = append(order, e.Player)
			}
			s.Goals++
		}
	}

	out := make([]Scorer, 0, len(order))
	for _, id := range order {
		out = append(out, *byPlayer[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Goals != b.Goals {
			return a.Goals > b.Goals
		}
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.Player < b.Player
	})
	return out
}
