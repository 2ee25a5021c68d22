package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekprior/league/internal/model"
	"github.com/derekprior/league/internal/store"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func scheduledSeason() *model.Season {
	id := uuid.New()
	g1 := model.Game{ID: uuid.New(), SeasonID: id, Round: 1, Week: 1, HomeTeam: "a", AwayTeam: "b", ScheduledDate: date(2026, 4, 4), Status: model.GamePending}
	g2 := model.Game{ID: uuid.New(), SeasonID: id, Round: 2, Week: 2, HomeTeam: "c", AwayTeam: "a", ScheduledDate: date(2026, 4, 11), Status: model.GamePending}
	return &model.Season{
		ID:        id,
		LeagueID:  "metro",
		Name:      "Spring",
		StartDate: date(2026, 4, 4),
		EndDate:   date(2026, 4, 17),
		Status:    model.SeasonRegistration,
		Teams:     []string{"a", "b", "c"},
		Settings:  model.DefaultSettings(),
		Weeks: []model.Week{
			{Index: 1, StartDate: date(2026, 4, 4), EndDate: date(2026, 4, 10), Games: []uuid.UUID{g1.ID}},
			{Index: 2, StartDate: date(2026, 4, 11), EndDate: date(2026, 4, 17), Games: []uuid.UUID{g2.ID}},
		},
		Games: []model.Game{g1, g2},
	}
}

func TestSeasonRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	season := scheduledSeason()

	require.NoError(t, s.SaveSeason(ctx, season))

	t.Run("a new season is saved without games", func(t *testing.T) {
		loaded, err := s.LoadSeason(ctx, season.ID)
		require.NoError(t, err)
		assert.Equal(t, season.Name, loaded.Name)
		assert.Equal(t, season.Teams, loaded.Teams)
		assert.Equal(t, season.Settings, loaded.Settings)
		assert.True(t, season.StartDate.Equal(loaded.StartDate))
		assert.Empty(t, loaded.Games)
		require.Len(t, loaded.Weeks, 2)
		assert.Empty(t, loaded.Weeks[0].Games)
	})

	t.Run("replace schedule stores the games", func(t *testing.T) {
		require.NoError(t, s.ReplaceSchedule(ctx, season))
		loaded, err := s.LoadSeason(ctx, season.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Games, 2)
		assert.Equal(t, season.Games[0].ID, loaded.Games[0].ID)
		assert.Equal(t, []uuid.UUID{season.Games[1].ID}, loaded.Weeks[1].Games)
	})

	t.Run("saving the season keeps stored games", func(t *testing.T) {
		changed := season.Clone()
		changed.Status = model.SeasonActive
		changed.Games = nil
		require.NoError(t, s.SaveSeason(ctx, changed))

		loaded, err := s.LoadSeason(ctx, season.ID)
		require.NoError(t, err)
		assert.Equal(t, model.SeasonActive, loaded.Status)
		assert.Len(t, loaded.Games, 2)
	})
}

func TestGames(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	season := scheduledSeason()
	err := s.ReplaceSchedule(ctx, season)
	require.Equal(t, model.CodeNotFound, model.CodeOf(err), "replace needs a saved season")

	require.NoError(t, s.SaveSeason(ctx, season))
	created, err := s.CreateGames(ctx, season.ID, season.Games)
	require.NoError(t, err)
	assert.Len(t, created, 2)

	t.Run("duplicate ids are rejected", func(t *testing.T) {
		_, err := s.CreateGames(ctx, season.ID, season.Games[:1])
		assert.Error(t, err)
	})

	t.Run("filtering", func(t *testing.T) {
		games, err := s.GetGamesForSeason(ctx, season.ID, store.GameFilter{Team: "c"})
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, "c", games[0].HomeTeam)

		games, err = s.GetGamesForSeason(ctx, season.ID, store.GameFilter{Week: 1})
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, season.Games[0].ID, games[0].ID)
	})

	t.Run("save game", func(t *testing.T) {
		g := season.Games[0].Clone()
		g.Status = model.GameCompleted
		g.Score = model.Score{Home: 2, Away: 1}
		g.Venue = model.Venue{Name: "Riverside", Capacity: 300}
		g.Events = []model.GameEvent{{Type: model.EventGoal, Player: "p1", Team: "a", Minute: 9}}
		require.NoError(t, s.SaveGame(ctx, &g))

		games, err := s.GetGamesForSeason(ctx, season.ID, store.GameFilter{Status: model.GameCompleted})
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, g.Score, games[0].Score)
		assert.Equal(t, g.Venue, games[0].Venue)
		assert.Equal(t, g.Events, games[0].Events)

		missing := model.Game{ID: uuid.New(), SeasonID: season.ID}
		assert.Equal(t, model.CodeNotFound, model.CodeOf(s.SaveGame(ctx, &missing)))
	})

	t.Run("delete games", func(t *testing.T) {
		n, err := s.DeleteGamesForSeason(ctx, season.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		loaded, err := s.LoadSeason(ctx, season.ID)
		require.NoError(t, err)
		assert.Empty(t, loaded.Games)
		for _, w := range loaded.Weeks {
			assert.Empty(t, w.Games)
		}
	})
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	autumn := scheduledSeason()
	autumn.Name = "Autumn"
	autumn.StartDate = date(2026, 9, 1)
	spring := scheduledSeason()
	require.NoError(t, s.SaveSeason(ctx, autumn))
	require.NoError(t, s.SaveSeason(ctx, spring))
	require.NoError(t, s.ReplaceSchedule(ctx, spring))

	// Stray files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, "seasons", "notes.txt"), []byte("x"), 0o644))

	seasons, err := s.ListSeasons(ctx)
	require.NoError(t, err)
	require.Len(t, seasons, 2)
	assert.Equal(t, "Spring", seasons[0].Name)
	assert.Equal(t, "Autumn", seasons[1].Name)

	n, err := s.DeleteSeason(ctx, spring.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = s.LoadSeason(ctx, spring.ID)
	assert.Equal(t, model.CodeNotFound, model.CodeOf(err))
	_, err = s.DeleteSeason(ctx, spring.ID)
	assert.Equal(t, model.CodeNotFound, model.CodeOf(err))
}
