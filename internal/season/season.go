// Package season implements the season lifecycle:
//
//	draft -> registration -> active -> completed
//
// with cancellation from registration or active and reopening from active or
// completed. Every operation either succeeds completely or leaves the season
// untouched and returns a typed error from the model package.
package season

import (
	"time"

	"github.com/google/uuid"

	"github.com/derekprior/league/internal/fixture"
	"github.com/derekprior/league/internal/model"
	"github.com/derekprior/league/internal/schedule"
	"github.com/derekprior/league/internal/standings"
)

// Operation names reported in InvalidSeasonTransitionError.Attempted for
// operations that do not change status.
const (
	OpGenerate   = "generate_schedule"
	OpRegenerate = "regenerate_schedule"
	OpDelete     = "delete"
	OpEditGame   = "edit_game"
	OpPlayGame   = "play_game"
)

// Create returns a new draft season. Zero-valued settings fields fall back to
// model.DefaultSettings.
func Create(leagueID, name string, start, end time.Time, settings model.Settings) (*model.Season, error) {
	if name == "" {
		return nil, &model.ValidationError{Field: "name", Reason: "season name is required"}
	}
	start, end = schedule.Day(start), schedule.Day(end)
	if !end.After(start) {
		return nil, &model.InvalidDateRangeError{Start: start, End: end, Reason: "end must be on a later day than start"}
	}
	settings = withDefaults(settings)
	if err := validateSettings(settings); err != nil {
		return nil, err
	}
	return &model.Season{
		ID:        uuid.New(),
		LeagueID:  leagueID,
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Status:    model.SeasonDraft,
		Teams:     []string{},
		Settings:  settings,
	}, nil
}

func withDefaults(s model.Settings) model.Settings {
	d := model.DefaultSettings()
	if s.GamesPerWeek == 0 {
		s.GamesPerWeek = d.GamesPerWeek
	}
	if s.RegularSeasonWeeks == 0 {
		s.RegularSeasonWeeks = d.RegularSeasonWeeks
	}
	if s.Rounds == 0 {
		s.Rounds = d.Rounds
	}
	if s.Strategy == "" {
		s.Strategy = d.Strategy
	}
	return s
}

func validateSettings(s model.Settings) error {
	switch {
	case s.GamesPerWeek < 1:
		return &model.ValidationError{Field: "games_per_week", Reason: "must be positive"}
	case s.PlayoffTeams < 0:
		return &model.ValidationError{Field: "playoff_teams", Reason: "cannot be negative"}
	case s.RegularSeasonWeeks < 1:
		return &model.ValidationError{Field: "regular_season_weeks", Reason: "must be positive"}
	case s.Rounds < 1:
		return &model.ValidationError{Field: "rounds", Reason: "must be positive"}
	}
	if _, err := fixture.Get(s.Strategy, s.Rounds); err != nil {
		return &model.ValidationError{Field: "strategy", Reason: err.Error()}
	}
	return nil
}

// OpenRegistration moves a draft season into registration.
func OpenRegistration(s *model.Season) error {
	return transition(s, model.SeasonRegistration, model.SeasonDraft)
}

// RegisterTeam adds a team while registration is open.
func RegisterTeam(s *model.Season, team string) error {
	if s.Status != model.SeasonRegistration {
		return &model.SeasonNotOpenError{Status: s.Status}
	}
	if team == "" {
		return &model.ValidationError{Field: "team", Reason: "team id is required"}
	}
	if s.HasTeam(team) {
		return &model.TeamAlreadyRegisteredError{Team: team}
	}
	s.Teams = append(s.Teams, team)
	return nil
}

// UnregisterTeam removes a team before the season starts. Games already
// generated for the team stay until the schedule is regenerated.
func UnregisterTeam(s *model.Season, team string) error {
	if s.Status != model.SeasonDraft && s.Status != model.SeasonRegistration {
		return &model.SeasonNotOpenError{Status: s.Status}
	}
	for i, t := range s.Teams {
		if t == team {
			s.Teams = append(s.Teams[:i:i], s.Teams[i+1:]...)
			return nil
		}
	}
	return &model.NotFoundError{Entity: "team", ID: team}
}

// GenerateSchedule builds weeks and games from the registered teams. A season
// that already has a schedule gets it replaced, as with RegenerateSchedule.
func GenerateSchedule(s *model.Season) error {
	_, err := replaceSchedule(s, OpGenerate)
	return err
}

// RegenerateSchedule discards every game of the season and builds a fresh
// schedule over the current teams. It returns the ids of the removed games
// so the caller can delete them from storage. On error nothing is removed.
func RegenerateSchedule(s *model.Season) ([]uuid.UUID, error) {
	return replaceSchedule(s, OpRegenerate)
}

func replaceSchedule(s *model.Season, op string) ([]uuid.UUID, error) {
	if s.Status != model.SeasonDraft && s.Status != model.SeasonRegistration {
		return nil, &model.InvalidSeasonTransitionError{From: s.Status, Attempted: op}
	}
	if len(s.Teams) < 2 {
		return nil, &model.InsufficientTeamsError{Count: len(s.Teams)}
	}

	strategy, err := fixture.Get(s.Settings.Strategy, s.Settings.Rounds)
	if err != nil {
		return nil, &model.ValidationError{Field: "strategy", Reason: err.Error()}
	}
	pairings, err := strategy.GenerateMatchups(s.Teams)
	if err != nil {
		return nil, err
	}
	result, err := schedule.PartitionIntoWeeks(pairings, schedule.Options{
		SeasonID:     s.ID,
		Start:        s.StartDate,
		End:          s.EndDate,
		GamesPerWeek: s.Settings.GamesPerWeek,
	})
	if err != nil {
		return nil, err
	}

	removed := make([]uuid.UUID, 0, len(s.Games))
	for _, g := range s.Games {
		removed = append(removed, g.ID)
	}
	s.Weeks = result.Weeks
	s.Games = result.Games
	s.Standings = nil
	return removed, nil
}

// StartSeason closes registration and makes the season active. The schedule
// must already exist.
func StartSeason(s *model.Season) error {
	if s.Status != model.SeasonRegistration {
		return &model.InvalidSeasonTransitionError{From: s.Status, Attempted: string(model.SeasonActive)}
	}
	if !s.HasSchedule() {
		return &model.NoScheduleError{Season: s.Name}
	}
	s.Status = model.SeasonActive
	return nil
}

// CompleteSeason ends gameplay. Games and standings are left as they are.
func CompleteSeason(s *model.Season) error {
	return transition(s, model.SeasonCompleted, model.SeasonActive)
}

// ReopenRegistration returns an active or completed season to registration,
// keeping its teams and weeks.
func ReopenRegistration(s *model.Season) error {
	return transition(s, model.SeasonRegistration, model.SeasonActive, model.SeasonCompleted)
}

// CancelSeason abandons a season that is open or underway.
func CancelSeason(s *model.Season) error {
	return transition(s, model.SeasonCancelled, model.SeasonRegistration, model.SeasonActive)
}

// DeleteSeason checks that the season may be deleted and returns the ids of
// the games that go with it. A live season cannot be deleted.
func DeleteSeason(s *model.Season) ([]uuid.UUID, error) {
	if s.Status == model.SeasonActive {
		return nil, &model.InvalidSeasonTransitionError{From: s.Status, Attempted: OpDelete}
	}
	ids := make([]uuid.UUID, 0, len(s.Games))
	for _, g := range s.Games {
		ids = append(ids, g.ID)
	}
	return ids, nil
}

func transition(s *model.Season, to model.SeasonStatus, from ...model.SeasonStatus) error {
	for _, f := range from {
		if s.Status == f {
			s.Status = to
			return nil
		}
	}
	return &model.InvalidSeasonTransitionError{From: s.Status, Attempted: string(to)}
}

// MutableGame returns a game of the season for editing. Venue changes and
// postponements are allowed until the season completes; playing a game
// (kickoff, events, result) needs an active season.
func MutableGame(s *model.Season, id uuid.UUID, play bool) (*model.Game, error) {
	switch {
	case play && s.Status != model.SeasonActive:
		return nil, &model.InvalidSeasonTransitionError{From: s.Status, Attempted: OpPlayGame}
	case !play && s.Status != model.SeasonDraft && s.Status != model.SeasonRegistration && s.Status != model.SeasonActive:
		return nil, &model.InvalidSeasonTransitionError{From: s.Status, Attempted: OpEditGame}
	}
	g, ok := s.Game(id)
	if !ok {
		return nil, &model.NotFoundError{Entity: "game", ID: id.String()}
	}
	return g, nil
}

// RefreshStandings recomputes the cached standings for the registered teams.
// teams supplies display names; a registered team missing from it is listed
// under its id.
func RefreshStandings(s *model.Season, teams []model.Team) {
	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	registered := make([]model.Team, 0, len(s.Teams))
	for _, id := range s.Teams {
		name, ok := names[id]
		if !ok {
			name = id
		}
		registered = append(registered, model.Team{ID: id, Name: name})
	}
	rows := standings.Compute(registered, s.Games)
	standings.MarkQualified(rows, s.Settings.PlayoffTeams)
	s.Standings = rows
}
