package game

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekprior/league/internal/model"
)

var kickoff = time.Date(2026, 5, 2, 14, 30, 0, 0, time.UTC)

func newGame(status model.GameStatus) *model.Game {
	return &model.Game{
		ID:       uuid.New(),
		HomeTeam: "Rovers",
		AwayTeam: "United",
		Status:   status,
	}
}

func goal(player, team string, minute int) model.GameEvent {
	return model.GameEvent{Type: model.EventGoal, Player: player, Team: team, Minute: minute}
}

func requireGameTransition(t *testing.T, err error, from model.GameStatus, attempted string) {
	t.Helper()
	var target *model.InvalidGameTransitionError
	require.True(t, errors.As(err, &target), "got %v", err)
	assert.Equal(t, from, target.From)
	assert.Equal(t, attempted, target.Attempted)
}

func TestGameLifecycle(t *testing.T) {
	g := newGame(model.GamePending)

	require.NoError(t, SetVenueAndTime(g, model.Venue{Name: "Riverside", Capacity: 500}, kickoff))
	assert.Equal(t, model.GameScheduled, g.Status)
	assert.Equal(t, "Riverside", g.Venue.Name)
	assert.Equal(t, kickoff, g.ScheduledDate)

	require.NoError(t, Start(g))
	assert.Equal(t, model.GameInProgress, g.Status)

	require.NoError(t, AddEvent(g, goal("p1", "Rovers", 12)))
	require.NoError(t, AddEvent(g, model.GameEvent{Type: model.EventYellowCard, Player: "p9", Team: "United", Minute: 30}))
	require.NoError(t, AddEvent(g, goal("p7", "United", 88)))
	require.NoError(t, AddEvent(g, goal("p1", "Rovers", 45)))

	require.NoError(t, Complete(g))
	assert.Equal(t, model.GameCompleted, g.Status)
	assert.Equal(t, model.Score{Home: 2, Away: 1}, g.Score)

	t.Run("events keep recording order", func(t *testing.T) {
		minutes := []int{}
		for _, e := range g.Events {
			minutes = append(minutes, e.Minute)
		}
		assert.Equal(t, []int{12, 30, 88, 45}, minutes)
	})

	t.Run("completed games accept no events", func(t *testing.T) {
		err := AddEvent(g, goal("p1", "Rovers", 90))
		requireGameTransition(t, err, model.GameCompleted, "add_event")
		assert.Len(t, g.Events, 4)
	})

	t.Run("completed games cannot be restarted", func(t *testing.T) {
		requireGameTransition(t, Start(g), model.GameCompleted, string(model.GameInProgress))
	})
}

func TestGameGuards(t *testing.T) {
	tests := []struct {
		name      string
		from      model.GameStatus
		op        func(*model.Game) error
		attempted string
	}{
		{"start a pending game", model.GamePending, Start, "in_progress"},
		{"complete a scheduled game", model.GameScheduled, Complete, "completed"},
		{"cancel a game in progress", model.GameInProgress, Cancel, "cancelled"},
		{"postpone a completed game", model.GameCompleted, Postpone, "postponed"},
		{"cancel a cancelled game", model.GameCancelled, Cancel, "cancelled"},
		{"venue on a game in progress", model.GameInProgress, func(g *model.Game) error {
			return SetVenueAndTime(g, model.Venue{Name: "x"}, kickoff)
		}, "scheduled"},
		{"event on a scheduled game", model.GameScheduled, func(g *model.Game) error {
			return AddEvent(g, goal("p", "Rovers", 1))
		}, "add_event"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGame(tt.from)
			requireGameTransition(t, tt.op(g), tt.from, tt.attempted)
			assert.Equal(t, tt.from, g.Status)
		})
	}
}

func TestCancelAndPostpone(t *testing.T) {
	t.Run("pending and scheduled games can be cancelled", func(t *testing.T) {
		for _, s := range []model.GameStatus{model.GamePending, model.GameScheduled} {
			g := newGame(s)
			require.NoError(t, Cancel(g))
			assert.Equal(t, model.GameCancelled, g.Status)
		}
	})

	t.Run("postponed games are rescheduled with a new venue and time", func(t *testing.T) {
		g := newGame(model.GameScheduled)
		require.NoError(t, Postpone(g))
		assert.Equal(t, model.GamePostponed, g.Status)

		later := kickoff.AddDate(0, 0, 7)
		require.NoError(t, SetVenueAndTime(g, model.Venue{Name: "Parkside"}, later))
		assert.Equal(t, model.GameScheduled, g.Status)
		assert.Equal(t, later, g.ScheduledDate)
	})
}

func TestSetVenueAndTimeValidation(t *testing.T) {
	g := newGame(model.GamePending)

	err := SetVenueAndTime(g, model.Venue{}, kickoff)
	assert.Equal(t, model.CodeValidation, model.CodeOf(err))

	err = SetVenueAndTime(g, model.Venue{Name: "x", Capacity: -1}, kickoff)
	assert.Equal(t, model.CodeValidation, model.CodeOf(err))

	err = SetVenueAndTime(g, model.Venue{Name: "x"}, time.Time{})
	assert.Equal(t, model.CodeValidation, model.CodeOf(err))

	assert.Equal(t, model.GamePending, g.Status)
	assert.True(t, g.Venue.IsZero())
}

func TestAddEventValidation(t *testing.T) {
	t.Run("team must be playing", func(t *testing.T) {
		g := newGame(model.GameInProgress)
		err := AddEvent(g, goal("p1", "City", 10))
		var target *model.InvalidTeamForGameError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, "City", target.Team)
		assert.Empty(t, g.Events)
	})

	t.Run("minute bounds are inclusive", func(t *testing.T) {
		g := newGame(model.GameInProgress)
		require.NoError(t, AddEvent(g, goal("p1", "Rovers", 0)))
		require.NoError(t, AddEvent(g, goal("p1", "Rovers", 120)))

		for _, m := range []int{-1, 121} {
			err := AddEvent(g, goal("p1", "Rovers", m))
			assert.Equal(t, model.CodeInvalidEvent, model.CodeOf(err), "minute %d", m)
		}
		assert.Len(t, g.Events, 2)
	})

	t.Run("unknown event type", func(t *testing.T) {
		g := newGame(model.GameInProgress)
		err := AddEvent(g, model.GameEvent{Type: "header", Player: "p", Team: "Rovers"})
		assert.Equal(t, model.CodeInvalidEvent, model.CodeOf(err))
	})

	t.Run("player is required", func(t *testing.T) {
		g := newGame(model.GameInProgress)
		err := AddEvent(g, model.GameEvent{Type: model.EventRedCard, Team: "Rovers", Minute: 5})
		assert.Equal(t, model.CodeInvalidEvent, model.CodeOf(err))
	})
}

func TestScorePolicy(t *testing.T) {
	t.Run("own goals count for the opponent", func(t *testing.T) {
		g := newGame(model.GameInProgress)
		require.NoError(t, AddEvent(g, model.GameEvent{Type: model.EventOwnGoal, Player: "p3", Team: "Rovers", Minute: 3}))
		assert.Equal(t, model.Score{Home: 0, Away: 1}, g.Score)
	})

	t.Run("non-goal events leave a recorded score alone", func(t *testing.T) {
		g := newGame(model.GameInProgress)
		require.NoError(t, RecordScore(g, model.Score{Home: 3, Away: 0}))
		require.NoError(t, AddEvent(g, model.GameEvent{Type: model.EventSubstitution, Player: "p4", Team: "United", Minute: 60}))
		assert.Equal(t, model.Score{Home: 3, Away: 0}, g.Score)
	})

	t.Run("recorded score must agree with goal events", func(t *testing.T) {
		g := newGame(model.GameInProgress)
		require.NoError(t, AddEvent(g, goal("p1", "Rovers", 10)))

		err := RecordScore(g, model.Score{Home: 2, Away: 0})
		var target *model.ScoreMismatchError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, model.Score{Home: 1}, target.Derived)

		require.NoError(t, RecordScore(g, model.Score{Home: 1, Away: 0}))
	})

	t.Run("score cannot be recorded before kickoff", func(t *testing.T) {
		g := newGame(model.GameScheduled)
		requireGameTransition(t, RecordScore(g, model.Score{Home: 1}), model.GameScheduled, "record_score")
	})

	t.Run("a completed game's score is final", func(t *testing.T) {
		g := newGame(model.GameCompleted)
		g.Score = model.Score{Home: 2, Away: 1}
		requireGameTransition(t, RecordScore(g, model.Score{Home: 0, Away: 5}), model.GameCompleted, "record_score")
		assert.Equal(t, model.Score{Home: 2, Away: 1}, g.Score)
	})

	t.Run("negative goals are rejected", func(t *testing.T) {
		g := newGame(model.GameInProgress)
		assert.Equal(t, model.CodeValidation, model.CodeOf(RecordScore(g, model.Score{Home: -1})))
	})

	t.Run("verify flags a tampered score", func(t *testing.T) {
		g := newGame(model.GameInProgress)
		require.NoError(t, AddEvent(g, goal("p1", "Rovers", 10)))
		require.NoError(t, VerifyScore(g))

		g.Score.Away = 4
		assert.Equal(t, model.CodeScoreMismatch, model.CodeOf(VerifyScore(g)))
	})

	t.Run("games without goal events always verify", func(t *testing.T) {
		g := newGame(model.GameCompleted)
		g.Score = model.Score{Home: 5, Away: 2}
		assert.NoError(t, VerifyScore(g))
	})
}

func TestHatTricks(t *testing.T) {
	g := newGame(model.GameInProgress)
	events := []model.GameEvent{
		goal("P", "Rovers", 5),
		goal("P", "Rovers", 20),
		{Type: model.EventOwnGoal, Player: "P", Team: "Rovers", Minute: 30},
		goal("P", "Rovers", 70),
		goal("Q", "United", 15),
		goal("Q", "United", 40),
		{Type: model.EventAssist, Player: "Q", Team: "United", Minute: 41},
		{Type: model.EventOwnGoal, Player: "R", Team: "United", Minute: 50},
		{Type: model.EventOwnGoal, Player: "R", Team: "United", Minute: 51},
		{Type: model.EventOwnGoal, Player: "R", Team: "United", Minute: 52},
	}
	for _, e := range events {
		require.NoError(t, AddEvent(g, e))
	}
	require.NoError(t, Complete(g))

	assert.Equal(t, []string{"P"}, HatTricks(g))
	assert.Equal(t, HatTricks(g), HatTricks(g))
}
