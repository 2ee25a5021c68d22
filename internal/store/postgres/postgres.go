// Package postgres stores seasons, weeks, games and game events in
// PostgreSQL. Cached standings are not persisted; they are derived on read.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/derekprior/league/internal/model"
	"github.com/derekprior/league/internal/store"
)

var _ store.Store = (*Store)(nil)

// DBTX abstracts pgx.Tx and pgxpool.Pool so queries work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and migrates the schema.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := Migrate(pool, logger); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return s.inTxWith(ctx, pgx.TxOptions{}, fn)
}

// readTx runs fn against a single snapshot, so a season, its weeks and its
// games are read as of the same moment even while a regeneration commits.
func (s *Store) readTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return s.inTxWith(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

func (s *Store) inTxWith(ctx context.Context, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) LoadSeason(ctx context.Context, id uuid.UUID) (*model.Season, error) {
	var season *model.Season
	err := s.readTx(ctx, func(tx pgx.Tx) error {
		var err error
		season, err = loadSeason(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return season, nil
}

func (s *Store) SaveSeason(ctx context.Context, season *model.Season) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		return upsertSeason(ctx, tx, season)
	})
}

func (s *Store) ListSeasons(ctx context.Context) ([]model.Season, error) {
	var seasons []model.Season
	err := s.readTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT id FROM seasons ORDER BY start_date, name`)
		if err != nil {
			return fmt.Errorf("list seasons: %w", err)
		}
		ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
		if err != nil {
			return fmt.Errorf("list seasons: %w", err)
		}

		seasons = make([]model.Season, 0, len(ids))
		for _, id := range ids {
			season, err := loadSeason(ctx, tx, id)
			if err != nil {
				return err
			}
			seasons = append(seasons, *season)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seasons, nil
}

// DeleteSeason removes the season, its weeks and its games in one
// transaction.
func (s *Store) DeleteSeason(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockSeason(ctx, tx, id); err != nil {
			return err
		}
		var err error
		if n, err = deleteGames(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM seasons WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete season: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// CreateGames appends games after the season's existing ones.
func (s *Store) CreateGames(ctx context.Context, seasonID uuid.UUID, games []model.Game) ([]model.Game, error) {
	created := make([]model.Game, 0, len(games))
	for _, g := range games {
		g = g.Clone()
		g.SeasonID = seasonID
		created = append(created, g)
	}
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockSeason(ctx, tx, seasonID); err != nil {
			return err
		}
		var next int
		if err := tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(seq), 0) + 1 FROM games WHERE season_id = $1`, seasonID).Scan(&next); err != nil {
			return fmt.Errorf("next game seq: %w", err)
		}
		return insertGames(ctx, tx, created, next)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) DeleteGamesForSeason(ctx context.Context, seasonID uuid.UUID) (int, error) {
	var n int
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockSeason(ctx, tx, seasonID); err != nil {
			return err
		}
		var err error
		n, err = deleteGames(ctx, tx, seasonID)
		return err
	})
	return n, err
}

func (s *Store) GetGamesForSeason(ctx context.Context, seasonID uuid.UUID, filter store.GameFilter) ([]model.Game, error) {
	var games []model.Game
	err := s.readTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM seasons WHERE id = $1)`, seasonID).Scan(&exists); err != nil {
			return fmt.Errorf("check season: %w", err)
		}
		if !exists {
			return &model.NotFoundError{Entity: "season", ID: seasonID.String()}
		}
		var err error
		games, err = loadGames(ctx, tx, seasonID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return games, nil
}

// SaveGame writes a game's mutable fields and replaces its events.
func (s *Store) SaveGame(ctx context.Context, g *model.Game) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE games SET
				scheduled_date = $2, venue_name = $3, venue_address = $4, venue_capacity = $5,
				status = $6, home_score = $7, away_score = $8
			WHERE id = $1`,
			g.ID, g.ScheduledDate, g.Venue.Name, g.Venue.Address, g.Venue.Capacity,
			string(g.Status), g.Score.Home, g.Score.Away)
		if err != nil {
			return fmt.Errorf("update game: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return &model.NotFoundError{Entity: "game", ID: g.ID.String()}
		}
		if _, err := tx.Exec(ctx, `DELETE FROM game_events WHERE game_id = $1`, g.ID); err != nil {
			return fmt.Errorf("clear game events: %w", err)
		}
		return insertEvents(ctx, tx, []model.Game{*g})
	})
}

// ReplaceSchedule runs in one transaction holding the season row lock, so a
// concurrent reader sees the old game set or the new one, never neither.
func (s *Store) ReplaceSchedule(ctx context.Context, season *model.Season) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockSeason(ctx, tx, season.ID); err != nil {
			return err
		}
		if err := upsertSeason(ctx, tx, season); err != nil {
			return err
		}
		if _, err := deleteGames(ctx, tx, season.ID); err != nil {
			return err
		}
		return insertGames(ctx, tx, season.Games, 1)
	})
}

func lockSeason(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	var got uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM seasons WHERE id = $1 FOR UPDATE`, id).Scan(&got)
	if errors.Is(err, pgx.ErrNoRows) {
		return &model.NotFoundError{Entity: "season", ID: id.String()}
	}
	if err != nil {
		return fmt.Errorf("lock season: %w", err)
	}
	return nil
}

func loadSeason(ctx context.Context, db DBTX, id uuid.UUID) (*model.Season, error) {
	var (
		season model.Season
		status string
	)
	err := db.QueryRow(ctx, `
		SELECT id, league_id, name, start_date, end_date, status, teams,
			games_per_week, playoff_teams, regular_season_weeks, rounds, strategy
		FROM seasons WHERE id = $1`, id).Scan(
		&season.ID, &season.LeagueID, &season.Name, &season.StartDate, &season.EndDate,
		&status, &season.Teams,
		&season.Settings.GamesPerWeek, &season.Settings.PlayoffTeams,
		&season.Settings.RegularSeasonWeeks, &season.Settings.Rounds, &season.Settings.Strategy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &model.NotFoundError{Entity: "season", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("load season: %w", err)
	}
	season.Status = model.SeasonStatus(status)
	season.StartDate = season.StartDate.UTC()
	season.EndDate = season.EndDate.UTC()

	rows, err := db.Query(ctx, `
		SELECT idx, start_date, end_date FROM weeks WHERE season_id = $1 ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("load weeks: %w", err)
	}
	season.Weeks, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Week, error) {
		var w model.Week
		err := row.Scan(&w.Index, &w.StartDate, &w.EndDate)
		w.StartDate, w.EndDate = w.StartDate.UTC(), w.EndDate.UTC()
		return w, err
	})
	if err != nil {
		return nil, fmt.Errorf("load weeks: %w", err)
	}

	season.Games, err = loadGames(ctx, db, id, store.GameFilter{})
	if err != nil {
		return nil, err
	}
	store.LinkWeeks(&season)
	return &season, nil
}

func upsertSeason(ctx context.Context, db DBTX, s *model.Season) error {
	teams := s.Teams
	if teams == nil {
		teams = []string{}
	}
	_, err := db.Exec(ctx, `
		INSERT INTO seasons (id, league_id, name, start_date, end_date, status, teams,
			games_per_week, playoff_teams, regular_season_weeks, rounds, strategy)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			league_id = EXCLUDED.league_id,
			name = EXCLUDED.name,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			status = EXCLUDED.status,
			teams = EXCLUDED.teams,
			games_per_week = EXCLUDED.games_per_week,
			playoff_teams = EXCLUDED.playoff_teams,
			regular_season_weeks = EXCLUDED.regular_season_weeks,
			rounds = EXCLUDED.rounds,
			strategy = EXCLUDED.strategy,
			updated_at = now()`,
		s.ID, s.LeagueID, s.Name, s.StartDate, s.EndDate, string(s.Status), teams,
		s.Settings.GamesPerWeek, s.Settings.PlayoffTeams, s.Settings.RegularSeasonWeeks,
		s.Settings.Rounds, s.Settings.Strategy,
	)
	if err != nil {
		return fmt.Errorf("upsert season: %w", err)
	}

	if _, err := db.Exec(ctx, `DELETE FROM weeks WHERE season_id = $1`, s.ID); err != nil {
		return fmt.Errorf("clear weeks: %w", err)
	}
	if len(s.Weeks) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, w := range s.Weeks {
		batch.Queue(`INSERT INTO weeks (season_id, idx, start_date, end_date) VALUES ($1, $2, $3, $4)`,
			s.ID, w.Index, w.StartDate, w.EndDate)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert weeks: %w", err)
	}
	return nil
}

func deleteGames(ctx context.Context, db DBTX, seasonID uuid.UUID) (int, error) {
	tag, err := db.Exec(ctx, `DELETE FROM games WHERE season_id = $1`, seasonID)
	if err != nil {
		return 0, fmt.Errorf("delete games: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// insertGames writes games in order with sequence numbers from firstSeq.
func insertGames(ctx context.Context, db DBTX, games []model.Game, firstSeq int) error {
	if len(games) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, g := range games {
		batch.Queue(`
			INSERT INTO games (id, season_id, seq, round, week, home_team, away_team, scheduled_date,
				venue_name, venue_address, venue_capacity, status, home_score, away_score)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			g.ID, g.SeasonID, firstSeq+i, g.Round, g.Week, g.HomeTeam, g.AwayTeam, g.ScheduledDate,
			g.Venue.Name, g.Venue.Address, g.Venue.Capacity, string(g.Status), g.Score.Home, g.Score.Away)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert games: %w", err)
	}
	return insertEvents(ctx, db, games)
}

func insertEvents(ctx context.Context, db DBTX, games []model.Game) error {
	batch := &pgx.Batch{}
	for _, g := range games {
		for i, e := range g.Events {
			batch.Queue(`
				INSERT INTO game_events (game_id, seq, type, player, team, minute, description)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				g.ID, i+1, string(e.Type), e.Player, e.Team, e.Minute, e.Description)
		}
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert game events: %w", err)
	}
	return nil
}

func loadGames(ctx context.Context, db DBTX, seasonID uuid.UUID, filter store.GameFilter) ([]model.Game, error) {
	where := []string{"season_id = $1"}
	args := []any{seasonID}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Team != "" {
		args = append(args, filter.Team)
		where = append(where, fmt.Sprintf("(home_team = $%d OR away_team = $%d)", len(args), len(args)))
	}
	if filter.Week != 0 {
		args = append(args, filter.Week)
		where = append(where, fmt.Sprintf("week = $%d", len(args)))
	}

	rows, err := db.Query(ctx, fmt.Sprintf(`
		SELECT id, season_id, round, week, home_team, away_team, scheduled_date,
			venue_name, venue_address, venue_capacity, status, home_score, away_score
		FROM games WHERE %s ORDER BY seq`, strings.Join(where, " AND ")), args...)
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}
	games, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Game, error) {
		var (
			g      model.Game
			status string
		)
		err := row.Scan(&g.ID, &g.SeasonID, &g.Round, &g.Week, &g.HomeTeam, &g.AwayTeam, &g.ScheduledDate,
			&g.Venue.Name, &g.Venue.Address, &g.Venue.Capacity, &status, &g.Score.Home, &g.Score.Away)
		g.Status = model.GameStatus(status)
		g.ScheduledDate = g.ScheduledDate.UTC()
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}
	if len(games) == 0 {
		return games, nil
	}

	index := make(map[uuid.UUID]int, len(games))
	for i, g := range games {
		index[g.ID] = i
	}
	rows, err = db.Query(ctx, `
		SELECT e.game_id, e.type, e.player, e.team, e.minute, e.description
		FROM game_events e JOIN games g ON g.id = e.game_id
		WHERE g.season_id = $1
		ORDER BY e.game_id, e.seq`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("load game events: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			gameID uuid.UUID
			e      model.GameEvent
			typ    string
		)
		if err := rows.Scan(&gameID, &typ, &e.Player, &e.Team, &e.Minute, &e.Description); err != nil {
			return nil, fmt.Errorf("scan game event: %w", err)
		}
		e.Type = model.EventType(typ)
		if i, ok := index[gameID]; ok {
			games[i].Events = append(games[i].Events, e)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load game events: %w", err)
	}
	return games, nil
}
