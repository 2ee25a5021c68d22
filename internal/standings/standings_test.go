package standings

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekprior/league/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func played(home, away string, hs, as int, on time.Time) model.Game {
	return model.Game{
		ID:            uuid.New(),
		HomeTeam:      home,
		AwayTeam:      away,
		ScheduledDate: on,
		Status:        model.GameCompleted,
		Score:         model.Score{Home: hs, Away: as},
	}
}

var abc = []model.Team{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}}

func TestComputeThreeTeamTable(t *testing.T) {
	games := []model.Game{
		played("a", "b", 2, 1, date(2026, 4, 4)),
		played("b", "c", 0, 0, date(2026, 4, 11)),
		played("a", "c", 1, 1, date(2026, 4, 18)),
	}

	rows := Compute(abc, games)
	require.Len(t, rows, 3)

	type line struct{ mp, w, d, l, gf, ga, gd, pts int }
	want := []struct {
		team string
		line line
	}{
		{"a", line{2, 1, 1, 0, 3, 2, 1, 4}},
		{"c", line{2, 0, 2, 0, 1, 1, 0, 2}},
		{"b", line{2, 0, 1, 1, 1, 3, -2, 1}},
	}
	for i, w := range want {
		r := rows[i]
		assert.Equal(t, w.team, r.Team)
		assert.Equal(t, i+1, r.Position)
		got := line{r.Played, r.Won, r.Drawn, r.Lost, r.GoalsFor, r.GoalsAgainst, r.GoalDiff, r.Points}
		assert.Equal(t, w.line, got, "row for %s", w.team)
	}

	assert.Equal(t, []model.Result{model.Win, model.Draw}, rows[0].Last5)
	assert.Equal(t, []model.Result{model.Loss, model.Draw}, rows[2].Last5)
}

func TestComputeIsRepeatable(t *testing.T) {
	games := []model.Game{
		played("a", "b", 1, 1, date(2026, 4, 4)),
		played("c", "a", 0, 0, date(2026, 4, 4)),
		played("b", "c", 2, 2, date(2026, 4, 11)),
	}
	first := Compute(abc, games)
	second := Compute(abc, games)
	assert.Equal(t, first, second)
}

func TestComputeOnlyCountsCompletedGames(t *testing.T) {
	pending := played("a", "b", 3, 0, date(2026, 4, 4))
	pending.Status = model.GameInProgress
	cancelled := played("a", "c", 3, 0, date(2026, 4, 4))
	cancelled.Status = model.GameCancelled

	rows := Compute(abc, []model.Game{pending, cancelled})
	for _, r := range rows {
		assert.Zero(t, r.Played)
		assert.Zero(t, r.Points)
		assert.Empty(t, r.Last5)
	}

	t.Run("teams without games rank by name", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", "c"}, []string{rows[0].Team, rows[1].Team, rows[2].Team})
	})
}

func TestComputeIgnoresUnregisteredSide(t *testing.T) {
	games := []model.Game{played("a", "gone", 4, 0, date(2026, 4, 4))}
	rows := Compute([]model.Team{{ID: "a", Name: "A"}}, games)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Points)
	assert.Equal(t, 4, rows[0].GoalsFor)
}

func TestComputeTieBreaks(t *testing.T) {
	teams := []model.Team{
		{ID: "z", Name: "Zebras"},
		{ID: "y", Name: "Yaks"},
		{ID: "x", Name: "Xerus"},
		{ID: "w", Name: "Wolves"},
	}
	games := []model.Game{
		played("z", "w", 3, 1, date(2026, 4, 4)), // z: 3 pts, GD +2, GF 3
		played("y", "x", 2, 0, date(2026, 4, 4)), // y: 3 pts, GD +2, GF 2
	}
	rows := Compute(teams, games)
	got := []string{}
	for _, r := range rows {
		got = append(got, r.Team)
	}
	assert.Equal(t, []string{"z", "y", "w", "x"}, got)
}

func TestLastFiveUsesScheduledDate(t *testing.T) {
	var games []model.Game
	// Recorded out of date order: the last loss is the oldest game.
	for i := 0; i < 6; i++ {
		games = append(games, played("a", "b", 1, 0, date(2026, 5, 10+i)))
	}
	games = append(games, played("a", "b", 0, 1, date(2026, 5, 1)))

	rows := Compute(abc[:2], games)
	require.Equal(t, "a", rows[0].Team)
	assert.Equal(t, 7, rows[0].Played)
	assert.Equal(t, []model.Result{model.Win, model.Win, model.Win, model.Win, model.Win}, rows[0].Last5)
}

func TestMarkQualified(t *testing.T) {
	rows := Compute(abc, nil)
	MarkQualified(rows, 2)
	assert.True(t, rows[0].Qualified)
	assert.True(t, rows[1].Qualified)
	assert.False(t, rows[2].Qualified)

	MarkQualified(rows, 0)
	for _, r := range rows {
		assert.False(t, r.Qualified)
	}
}

func TestTopScorers(t *testing.T) {
	g1 := played("a", "b", 3, 1, date(2026, 4, 4))
	g1.Events = []model.GameEvent{
		{Type: model.EventGoal, Player: "p1", Team: "a"},
		{Type: model.EventGoal, Player: "p2", Team: "a"},
		{Type: model.EventOwnGoal, Player: "p3", Team: "b"},
		{Type: model.EventGoal, Player: "p4", Team: "b"},
	}
	g2 := played("a", "c", 1, 0, date(2026, 4, 11))
	g2.Events = []model.GameEvent{
		{Type: model.EventGoal, Player: "p2", Team: "a"},
		{Type: model.EventAssist, Player: "p1", Team: "a"},
	}
	live := played("b", "c", 0, 0, date(2026, 4, 18))
	live.Status = model.GameInProgress
	live.Events = []model.GameEvent{{Type: model.EventGoal, Player: "p4", Team: "b"}}

	players := map[string]model.Player{
		"p1": {ID: "p1", FirstName: "Ann", LastName: "Moss"},
		"p2": {ID: "p2", FirstName: "Ben", LastName: "Zane"},
		"p4": {ID: "p4", FirstName: "Cal", LastName: "Moss"},
	}

	scorers := TopScorers([]model.Game{g1, g2, live}, players)
	require.Len(t, scorers, 3)

	assert.Equal(t, "p2", scorers[0].Player)
	assert.Equal(t, 2, scorers[0].Goals)
	assert.Equal(t, "a", scorers[0].Team)

	t.Run("ties break on surname then first name", func(t *testing.T) {
		assert.Equal(t, "p1", scorers[1].Player)
		assert.Equal(t, "p4", scorers[2].Player)
		assert.Equal(t, 1, scorers[2].Goals)
	})

	t.Run("own goals never appear", func(t *testing.T) {
		for _, s := range scorers {
			assert.NotEqual(t, "p3", s.Player)
		}
	})

	t.Run("unknown players sort by id", func(t *testing.T) {
		out := TopScorers([]model.Game{g1}, nil)
		require.Len(t, out, 3)
		assert.Equal(t, []string{"p1", "p2", "p4"}, []string{out[0].Player, out[1].Player, out[2].Player})
	})
}
