// Package store defines the persistence boundary of the scheduler. The core
// packages never see a store; the service layer loads a season, runs a core
// operation on it, and commits the result through these interfaces.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/derekprior/league/internal/model"
)

// TeamLookup resolves team ids owned by the team-management side.
type TeamLookup interface {
	GetTeamsByIDs(ids []string) ([]model.Team, error)
}

// GameFilter narrows GetGamesForSeason. Zero fields match everything.
type GameFilter struct {
	Status model.GameStatus
	Team   string
	Week   int
}

// Match reports whether g passes the filter.
func (f GameFilter) Match(g *model.Game) bool {
	if f.Status != "" && g.Status != f.Status {
		return false
	}
	if f.Team != "" && !g.Involves(f.Team) {
		return false
	}
	if f.Week != 0 && g.Week != f.Week {
		return false
	}
	return true
}

// GameStore persists the season-scoped game collection.
type GameStore interface {
	CreateGames(ctx context.Context, seasonID uuid.UUID, games []model.Game) ([]model.Game, error)
	DeleteGamesForSeason(ctx context.Context, seasonID uuid.UUID) (int, error)
	GetGamesForSeason(ctx context.Context, seasonID uuid.UUID, filter GameFilter) ([]model.Game, error)
	SaveGame(ctx context.Context, g *model.Game) error
}

// SeasonStore persists seasons. LoadSeason returns the season with its weeks
// and games; SaveSeason writes everything except the games. DeleteSeason
// removes the season together with its weeks and games in one step and
// returns how many games went with it.
type SeasonStore interface {
	LoadSeason(ctx context.Context, id uuid.UUID) (*model.Season, error)
	SaveSeason(ctx context.Context, s *model.Season) error
	ListSeasons(ctx context.Context) ([]model.Season, error)
	DeleteSeason(ctx context.Context, id uuid.UUID) (int, error)
}

// Store is a complete backend.
type Store interface {
	SeasonStore
	GameStore

	// ReplaceSchedule saves the season and swaps its whole game set for
	// s.Games in one atomic step. Readers see either the old games or the
	// new ones.
	ReplaceSchedule(ctx context.Context, s *model.Season) error

	Close() error
}

// LinkWeeks rebuilds each week's game list from the games' week indexes,
// keeping game order. Backends call it after loading so week references
// never point at deleted games.
func LinkWeeks(s *model.Season) {
	for i := range s.Weeks {
		s.Weeks[i].Games = nil
	}
	for _, g := range s.Games {
		if g.Week >= 1 && g.Week <= len(s.Weeks) {
			w := &s.Weeks[g.Week-1]
			w.Games = append(w.Games, g.ID)
		}
	}
}
