// Package filestore keeps each season, with its weeks and games, in one YAML
// document under a data directory. Writes go to a temp file that is renamed
// into place, so a reader never sees a half-written season.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/derekprior/league/internal/model"
	"github.com/derekprior/league/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	dir string
	mu  sync.Mutex
}

// Open prepares dir for use, creating it if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, "seasons"), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Close() error { return nil }

func (s *Store) path(id uuid.UUID) string {
	return filepath.Join(s.dir, "seasons", id.String()+".yaml")
}

func (s *Store) read(id uuid.UUID) (*model.Season, error) {
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &model.NotFoundError{Entity: "season", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("reading season %s: %w", id, err)
	}
	var season model.Season
	if err := yaml.Unmarshal(data, &season); err != nil {
		return nil, fmt.Errorf("parsing season %s: %w", id, err)
	}
	store.LinkWeeks(&season)
	return &season, nil
}

func (s *Store) write(season *model.Season) error {
	data, err := yaml.Marshal(season)
	if err != nil {
		return fmt.Errorf("encoding season %s: %w", season.ID, err)
	}
	tmp, err := os.CreateTemp(filepath.Join(s.dir, "seasons"), ".season-*")
	if err != nil {
		return fmt.Errorf("writing season %s: %w", season.ID, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing season %s: %w", season.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing season %s: %w", season.ID, err)
	}
	if err := os.Rename(tmp.Name(), s.path(season.ID)); err != nil {
		return fmt.Errorf("writing season %s: %w", season.ID, err)
	}
	return nil
}

func (s *Store) LoadSeason(_ context.Context, id uuid.UUID) (*model.Season, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

// SaveSeason writes the season's fields and weeks. Games already on disk are
// kept; a new season starts with none.
func (s *Store) SaveSeason(_ context.Context, season *model.Season) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := season.Clone()
	doc.Games = nil
	existing, err := s.read(season.ID)
	var nf *model.NotFoundError
	switch {
	case err == nil:
		doc.Games = existing.Games
	case !errors.As(err, &nf):
		return err
	}
	return s.write(doc)
}

func (s *Store) ListSeasons(_ context.Context) ([]model.Season, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(filepath.Join(s.dir, "seasons"))
	if err != nil {
		return nil, fmt.Errorf("listing seasons: %w", err)
	}
	var seasons []model.Season
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(name, ".yaml"))
		if err != nil {
			continue
		}
		season, err := s.read(id)
		if err != nil {
			return nil, err
		}
		seasons = append(seasons, *season)
	}
	sort.SliceStable(seasons, func(i, j int) bool {
		if !seasons[i].StartDate.Equal(seasons[j].StartDate) {
			return seasons[i].StartDate.Before(seasons[j].StartDate)
		}
		return seasons[i].Name < seasons[j].Name
	})
	return seasons, nil
}

// DeleteSeason removes the season file. Games live inside it, so they go
// with the same remove.
func (s *Store) DeleteSeason(_ context.Context, id uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	season, err := s.read(id)
	if err != nil {
		return 0, err
	}
	if err := os.Remove(s.path(id)); err != nil {
		return 0, fmt.Errorf("deleting season %s: %w", id, err)
	}
	return len(season.Games), nil
}

// CreateGames appends games to a season. Every game is stamped with the
// season id; an id already present in the season is rejected.
func (s *Store) CreateGames(_ context.Context, seasonID uuid.UUID, games []model.Game) ([]model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	season, err := s.read(seasonID)
	if err != nil {
		return nil, err
	}
	created := make([]model.Game, 0, len(games))
	for _, g := range games {
		if _, exists := season.Game(g.ID); exists {
			return nil, fmt.Errorf("game %s already exists in season %s", g.ID, seasonID)
		}
		g = g.Clone()
		g.SeasonID = seasonID
		season.Games = append(season.Games, g)
		created = append(created, g.Clone())
	}
	if err := s.write(season); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) DeleteGamesForSeason(_ context.Context, seasonID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	season, err := s.read(seasonID)
	if err != nil {
		return 0, err
	}
	n := len(season.Games)
	season.Games = nil
	if err := s.write(season); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) GetGamesForSeason(_ context.Context, seasonID uuid.UUID, filter store.GameFilter) ([]model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	season, err := s.read(seasonID)
	if err != nil {
		return nil, err
	}
	var games []model.Game
	for i := range season.Games {
		if filter.Match(&season.Games[i]) {
			games = append(games, season.Games[i])
		}
	}
	return games, nil
}

func (s *Store) SaveGame(_ context.Context, g *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	season, err := s.read(g.SeasonID)
	if err != nil {
		return err
	}
	existing, ok := season.Game(g.ID)
	if !ok {
		return &model.NotFoundError{Entity: "game", ID: g.ID.String()}
	}
	*existing = g.Clone()
	return s.write(season)
}

func (s *Store) ReplaceSchedule(_ context.Context, season *model.Season) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.read(season.ID); err != nil {
		return err
	}
	return s.write(season.Clone())
}
