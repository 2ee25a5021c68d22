// Package game holds the per-game state machine: venue assignment, kickoff,
// event recording and completion.
package game

import (
	"fmt"
	"sort"
	"time"

	"github.com/derekprior/league/internal/model"
)

// MaxMinute is the last minute an event may be recorded at, extra time
// included. It is not checked against the real match length.
const MaxMinute = 120

// SetVenueAndTime assigns a venue and kickoff date. It moves a pending game
// to scheduled, and reschedules a postponed one.
func SetVenueAndTime(g *model.Game, venue model.Venue, date time.Time) error {
	if g.Status != model.GamePending && g.Status != model.GamePostponed {
		return &model.InvalidGameTransitionError{From: g.Status, Attempted: string(model.GameScheduled)}
	}
	if venue.Name == "" {
		return &model.ValidationError{Field: "venue", Reason: "name is required"}
	}
	if venue.Capacity < 0 {
		return &model.ValidationError{Field: "venue", Reason: "capacity cannot be negative"}
	}
	if date.IsZero() {
		return &model.ValidationError{Field: "date", Reason: "kickoff date is required"}
	}
	g.Venue = venue
	g.ScheduledDate = date
	g.Status = model.GameScheduled
	return nil
}

// Start kicks off a scheduled game.
func Start(g *model.Game) error {
	return transition(g, model.GameInProgress, model.GameScheduled)
}

// Complete finishes a game in progress. No further events are accepted.
func Complete(g *model.Game) error {
	return transition(g, model.GameCompleted, model.GameInProgress)
}

// Cancel calls off a game that has not started.
func Cancel(g *model.Game) error {
	return transition(g, model.GameCancelled, model.GamePending, model.GameScheduled)
}

// Postpone pushes back a game that has not started; SetVenueAndTime
// reschedules it.
func Postpone(g *model.Game) error {
	return transition(g, model.GamePostponed, model.GamePending, model.GameScheduled)
}

func transition(g *model.Game, to model.GameStatus, from ...model.GameStatus) error {
	for _, f := range from {
		if g.Status == f {
			g.Status = to
			return nil
		}
	}
	return &model.InvalidGameTransitionError{From: g.Status, Attempted: string(to)}
}

// AddEvent records an event on a game in progress. Once a game has goal
// events its score is the projection of them, so the score is recomputed
// here.
func AddEvent(g *model.Game, e model.GameEvent) error {
	if g.Status != model.GameInProgress {
		return &model.InvalidGameTransitionError{From: g.Status, Attempted: "add_event"}
	}
	if !e.Type.Valid() {
		return &model.InvalidEventError{Field: "type", Reason: fmt.Sprintf("unknown event type %q", e.Type)}
	}
	if e.Team != g.HomeTeam && e.Team != g.AwayTeam {
		return &model.InvalidTeamForGameError{Team: e.Team, Home: g.HomeTeam, Away: g.AwayTeam}
	}
	if e.Minute < 0 || e.Minute > MaxMinute {
		return &model.InvalidEventError{Field: "minute", Reason: fmt.Sprintf("%d is outside 0-%d", e.Minute, MaxMinute)}
	}
	if e.Player == "" {
		return &model.InvalidEventError{Field: "player", Reason: "player is required"}
	}
	g.Events = append(g.Events, e)
	if hasScoringEvents(g) {
		g.Score = ScoreFromEvents(g)
	}
	return nil
}

// RecordScore sets the final score directly, for results entered without a
// play-by-play. Once goal events exist the score is derived from them, and
// a score that disagrees is rejected. A completed game's score is final.
func RecordScore(g *model.Game, score model.Score) error {
	if g.Status != model.GameInProgress {
		return &model.InvalidGameTransitionError{From: g.Status, Attempted: "record_score"}
	}
	if score.Home < 0 || score.Away < 0 {
		return &model.ValidationError{Field: "score", Reason: "goals cannot be negative"}
	}
	if hasScoringEvents(g) {
		derived := ScoreFromEvents(g)
		if derived != score {
			return &model.ScoreMismatchError{Stored: score, Derived: derived}
		}
	}
	g.Score = score
	return nil
}

// ScoreFromEvents projects the goal and own-goal events into a score. An
// own goal counts for the opponent of the recorded team.
func ScoreFromEvents(g *model.Game) model.Score {
	var s model.Score
	for _, e := range g.Events {
		switch e.Type {
		case model.EventGoal:
			if e.Team == g.HomeTeam {
				s.Home++
			} else {
				s.Away++
			}
		case model.EventOwnGoal:
			if e.Team == g.HomeTeam {
				s.Away++
			} else {
				s.Home++
			}
		}
	}
	return s
}

// VerifyScore reports a ScoreMismatchError when the stored score disagrees
// with the recorded goal events. Games without goal events always verify.
func VerifyScore(g *model.Game) error {
	if !hasScoringEvents(g) {
		return nil
	}
	if derived := ScoreFromEvents(g); derived != g.Score {
		return &model.ScoreMismatchError{Stored: g.Score, Derived: derived}
	}
	return nil
}

func hasScoringEvents(g *model.Game) bool {
	for _, e := range g.Events {
		if e.Type == model.EventGoal || e.Type == model.EventOwnGoal {
			return true
		}
	}
	return false
}

// HatTricks returns the players with three or more goals in the game, own
// goals excluded, sorted by player id. It is recomputed on every call.
func HatTricks(g *model.Game) []string {
	goals := make(map[string]int)
	for _, e := range g.Events {
		if e.Type == model.EventGoal {
			goals[e.Player]++
		}
	}
	var players []string
	for p, n := range goals {
		if n >= 3 {
			players = append(players, p)
		}
	}
	sort.Strings(players)
	return players
}
