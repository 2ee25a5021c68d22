// Package service runs season and game operations against a store. It loads
// a season, applies a core operation to a copy, and commits the copy only on
// success. Mutations of one season are serialized; reads of a season wait
// for any mutation in flight on it.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/derekprior/league/internal/game"
	"github.com/derekprior/league/internal/model"
	"github.com/derekprior/league/internal/season"
	"github.com/derekprior/league/internal/standings"
	"github.com/derekprior/league/internal/store"
	"github.com/derekprior/league/internal/validator"
)

type Service struct {
	store  store.Store
	teams  store.TeamLookup
	logger *zap.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.RWMutex
}

func New(st store.Store, teams store.TeamLookup, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  st,
		teams:  teams,
		logger: logger,
		locks:  make(map[uuid.UUID]*sync.RWMutex),
	}
}

func (s *Service) seasonLock(id uuid.UUID) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[id] = l
	}
	return l
}

// CreateSeason stores a new draft season.
func (s *Service) CreateSeason(ctx context.Context, leagueID, name string, start, end time.Time, settings model.Settings) (*model.Season, error) {
	created, err := season.Create(leagueID, name, start, end, settings)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveSeason(ctx, created); err != nil {
		return nil, fmt.Errorf("saving season: %w", err)
	}
	s.logger.Info("season created",
		zap.Stringer("season", created.ID),
		zap.String("name", created.Name),
		zap.String("status", string(created.Status)))
	return created, nil
}

// mutate loads the season, applies fn to a copy and commits the copy.
// Nothing is written when fn fails.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, op string, fn func(*model.Season) error, commit func(context.Context, *model.Season) error) (*model.Season, error) {
	l := s.seasonLock(id)
	l.Lock()
	defer l.Unlock()

	current, err := s.store.LoadSeason(ctx, id)
	if err != nil {
		return nil, err
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		s.logger.Debug("season operation rejected",
			zap.Stringer("season", id), zap.String("op", op), zap.Error(err))
		return nil, err
	}
	if err := commit(ctx, next); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Info("season updated",
		zap.Stringer("season", id),
		zap.String("op", op),
		zap.String("status", string(next.Status)),
		zap.Int("teams", len(next.Teams)),
		zap.Int("games", len(next.Games)))
	return next, nil
}

func (s *Service) OpenRegistration(ctx context.Context, id uuid.UUID) (*model.Season, error) {
	return s.mutate(ctx, id, "open_registration", season.OpenRegistration, s.store.SaveSeason)
}

// RegisterTeam registers a team known to the team lookup.
func (s *Service) RegisterTeam(ctx context.Context, id uuid.UUID, team string) (*model.Season, error) {
	return s.mutate(ctx, id, "register_team", func(sn *model.Season) error {
		if sn.Status == model.SeasonRegistration {
			if _, err := s.teams.GetTeamsByIDs([]string{team}); err != nil {
				return err
			}
		}
		return season.RegisterTeam(sn, team)
	}, s.store.SaveSeason)
}

func (s *Service) UnregisterTeam(ctx context.Context, id uuid.UUID, team string) (*model.Season, error) {
	return s.mutate(ctx, id, "unregister_team", func(sn *model.Season) error {
		return season.UnregisterTeam(sn, team)
	}, s.store.SaveSeason)
}

func (s *Service) GenerateSchedule(ctx context.Context, id uuid.UUID) (*model.Season, error) {
	return s.mutate(ctx, id, season.OpGenerate, season.GenerateSchedule, s.store.ReplaceSchedule)
}

// RegenerateSchedule replaces the season's games. The old games are removed
// in the same store transaction that writes the new ones.
func (s *Service) RegenerateSchedule(ctx context.Context, id uuid.UUID) (*model.Season, error) {
	var removed []uuid.UUID
	sn, err := s.mutate(ctx, id, season.OpRegenerate, func(sn *model.Season) error {
		var err error
		removed, err = season.RegenerateSchedule(sn)
		return err
	}, s.store.ReplaceSchedule)
	if err != nil {
		return nil, err
	}
	s.logger.Info("schedule regenerated",
		zap.Stringer("season", id),
		zap.Int("removed", len(removed)),
		zap.Int("created", len(sn.Games)))
	return sn, nil
}

// StartSeason makes the season active. With autoGenerate, a season without a
// schedule gets one first; the generated games are committed with the
// status change.
func (s *Service) StartSeason(ctx context.Context, id uuid.UUID, autoGenerate bool) (*model.Season, error) {
	generated := false
	commit := func(ctx context.Context, sn *model.Season) error {
		if generated {
			return s.store.ReplaceSchedule(ctx, sn)
		}
		return s.store.SaveSeason(ctx, sn)
	}
	return s.mutate(ctx, id, "start_season", func(sn *model.Season) error {
		if autoGenerate && !sn.HasSchedule() && sn.Status == model.SeasonRegistration {
			if err := season.GenerateSchedule(sn); err != nil {
				return err
			}
			generated = true
		}
		return season.StartSeason(sn)
	}, commit)
}

func (s *Service) CompleteSeason(ctx context.Context, id uuid.UUID) (*model.Season, error) {
	return s.mutate(ctx, id, "complete_season", season.CompleteSeason, s.store.SaveSeason)
}

func (s *Service) ReopenRegistration(ctx context.Context, id uuid.UUID) (*model.Season, error) {
	return s.mutate(ctx, id, "reopen_registration", season.ReopenRegistration, s.store.SaveSeason)
}

func (s *Service) CancelSeason(ctx context.Context, id uuid.UUID) (*model.Season, error) {
	return s.mutate(ctx, id, "cancel_season", season.CancelSeason, s.store.SaveSeason)
}

// DeleteSeason removes a season that is not live, with all of its games.
// It returns the number of games removed.
func (s *Service) DeleteSeason(ctx context.Context, id uuid.UUID) (int, error) {
	l := s.seasonLock(id)
	l.Lock()
	defer l.Unlock()

	current, err := s.store.LoadSeason(ctx, id)
	if err != nil {
		return 0, err
	}
	if _, err := season.DeleteSeason(current); err != nil {
		return 0, err
	}
	n, err := s.store.DeleteSeason(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("deleting season: %w", err)
	}
	s.logger.Info("season deleted", zap.Stringer("season", id), zap.Int("games", n))
	return n, nil
}

// updateGame applies fn to one game of the season and saves that game.
func (s *Service) updateGame(ctx context.Context, seasonID, gameID uuid.UUID, op string, play bool, fn func(*model.Game) error) (*model.Game, error) {
	l := s.seasonLock(seasonID)
	l.Lock()
	defer l.Unlock()

	current, err := s.store.LoadSeason(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	g, err := season.MutableGame(current, gameID, play)
	if err != nil {
		return nil, err
	}
	next := g.Clone()
	if err := fn(&next); err != nil {
		s.logger.Debug("game operation rejected",
			zap.Stringer("game", gameID), zap.String("op", op), zap.Error(err))
		return nil, err
	}
	if err := s.store.SaveGame(ctx, &next); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Info("game updated",
		zap.Stringer("season", seasonID),
		zap.Stringer("game", gameID),
		zap.String("op", op),
		zap.String("status", string(next.Status)),
		zap.Int("home", next.Score.Home),
		zap.Int("away", next.Score.Away))
	return &next, nil
}

func (s *Service) SetVenueAndTime(ctx context.Context, seasonID, gameID uuid.UUID, venue model.Venue, date time.Time) (*model.Game, error) {
	return s.updateGame(ctx, seasonID, gameID, "set_venue", false, func(g *model.Game) error {
		return game.SetVenueAndTime(g, venue, date)
	})
}

func (s *Service) PostponeGame(ctx context.Context, seasonID, gameID uuid.UUID) (*model.Game, error) {
	return s.updateGame(ctx, seasonID, gameID, "postpone", false, game.Postpone)
}

func (s *Service) CancelGame(ctx context.Context, seasonID, gameID uuid.UUID) (*model.Game, error) {
	return s.updateGame(ctx, seasonID, gameID, "cancel", false, game.Cancel)
}

func (s *Service) StartGame(ctx context.Context, seasonID, gameID uuid.UUID) (*model.Game, error) {
	return s.updateGame(ctx, seasonID, gameID, "start", true, game.Start)
}

func (s *Service) AddEvent(ctx context.Context, seasonID, gameID uuid.UUID, e model.GameEvent) (*model.Game, error) {
	return s.updateGame(ctx, seasonID, gameID, "add_event", true, func(g *model.Game) error {
		return game.AddEvent(g, e)
	})
}

func (s *Service) RecordScore(ctx context.Context, seasonID, gameID uuid.UUID, score model.Score) (*model.Game, error) {
	return s.updateGame(ctx, seasonID, gameID, "record_score", true, func(g *model.Game) error {
		return game.RecordScore(g, score)
	})
}

func (s *Service) CompleteGame(ctx context.Context, seasonID, gameID uuid.UUID) (*model.Game, error) {
	return s.updateGame(ctx, seasonID, gameID, "complete", true, game.Complete)
}

// Season returns the season with freshly computed standings.
func (s *Service) Season(ctx context.Context, id uuid.UUID) (*model.Season, error) {
	l := s.seasonLock(id)
	l.RLock()
	defer l.RUnlock()

	sn, err := s.store.LoadSeason(ctx, id)
	if err != nil {
		return nil, err
	}
	season.RefreshStandings(sn, s.lookupTeams(sn.Teams))
	return sn, nil
}

func (s *Service) lookupTeams(ids []string) []model.Team {
	teams, err := s.teams.GetTeamsByIDs(ids)
	if err != nil {
		s.logger.Warn("team lookup failed; showing team ids", zap.Error(err))
		return nil
	}
	return teams
}

func (s *Service) ListSeasons(ctx context.Context) ([]model.Season, error) {
	return s.store.ListSeasons(ctx)
}

// Standings ranks the registered teams over the season's completed games.
func (s *Service) Standings(ctx context.Context, id uuid.UUID) ([]model.StandingRow, error) {
	sn, err := s.Season(ctx, id)
	if err != nil {
		return nil, err
	}
	return sn.Standings, nil
}

// TopScorers builds the goal leaderboard; players supplies names.
func (s *Service) TopScorers(ctx context.Context, id uuid.UUID, players map[string]model.Player) ([]standings.Scorer, error) {
	games, err := s.Games(ctx, id, store.GameFilter{Status: model.GameCompleted})
	if err != nil {
		return nil, err
	}
	return standings.TopScorers(games, players), nil
}

func (s *Service) Games(ctx context.Context, id uuid.UUID, filter store.GameFilter) ([]model.Game, error) {
	l := s.seasonLock(id)
	l.RLock()
	defer l.RUnlock()
	return s.store.GetGamesForSeason(ctx, id, filter)
}

// Game returns one game and the players with a hat-trick in it.
func (s *Service) Game(ctx context.Context, seasonID, gameID uuid.UUID) (*model.Game, []string, error) {
	sn, err := s.Season(ctx, seasonID)
	if err != nil {
		return nil, nil, err
	}
	g, ok := sn.Game(gameID)
	if !ok {
		return nil, nil, &model.NotFoundError{Entity: "game", ID: gameID.String()}
	}
	return g, game.HatTricks(g), nil
}

// Validate reports schedule diagnostics, including games whose stored score
// disagrees with their goal events.
func (s *Service) Validate(ctx context.Context, id uuid.UUID) ([]validator.Violation, error) {
	sn, err := s.Season(ctx, id)
	if err != nil {
		return nil, err
	}
	violations := validator.Validate(sn)
	for i := range sn.Games {
		g := &sn.Games[i]
		if err := game.VerifyScore(g); err != nil {
			violations = append(violations, validator.Violation{
				Week:    g.Week,
				Type:    "error",
				Message: fmt.Sprintf("%s vs %s: %v", g.HomeTeam, g.AwayTeam, err),
			})
		}
	}
	return violations, nil
}
