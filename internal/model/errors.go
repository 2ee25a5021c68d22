package model

import (
	"errors"
	"fmt"
	"time"
)

// Error codes surfaced to callers. They are stable and distinct per error type.
const (
	CodeInsufficientTeams       = "INSUFFICIENT_TEAMS"
	CodeInvalidDateRange        = "INVALID_DATE_RANGE"
	CodeInvalidSeasonTransition = "INVALID_SEASON_TRANSITION"
	CodeInvalidGameTransition   = "INVALID_GAME_TRANSITION"
	CodeTeamAlreadyRegistered   = "TEAM_ALREADY_REGISTERED"
	CodeSeasonNotOpen           = "SEASON_NOT_OPEN"
	CodeInvalidTeamForGame      = "INVALID_TEAM_FOR_GAME"
	CodeNoSchedule              = "NO_SCHEDULE"
	CodeInvalidEvent            = "INVALID_EVENT"
	CodeScoreMismatch           = "SCORE_MISMATCH"
	CodeValidation              = "VALIDATION_ERROR"
	CodeNotFound                = "NOT_FOUND"
)

// Coder is implemented by every error in the taxonomy.
type Coder interface {
	error
	Code() string
}

// CodeOf returns the code of the first taxonomy error in err's chain, or ""
// when err carries none.
func CodeOf(err error) string {
	var c Coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// InsufficientTeamsError is returned when a schedule needs at least two teams.
type InsufficientTeamsError struct {
	Count int
}

func (e *InsufficientTeamsError) Error() string {
	return fmt.Sprintf("at least 2 teams are required to build a schedule, have %d", e.Count)
}

func (e *InsufficientTeamsError) Code() string { return CodeInsufficientTeams }

// InvalidDateRangeError is returned when a season window cannot hold its weeks.
type InvalidDateRangeError struct {
	Start  time.Time
	End    time.Time
	Reason string
}

func (e *InvalidDateRangeError) Error() string {
	msg := fmt.Sprintf("invalid date range %s to %s", e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidDateRangeError) Code() string { return CodeInvalidDateRange }

// InvalidSeasonTransitionError is returned for every season guard violation.
// Attempted is the target status, or the operation name for operations that
// do not change status.
type InvalidSeasonTransitionError struct {
	From      SeasonStatus
	Attempted string
}

func (e *InvalidSeasonTransitionError) Error() string {
	return fmt.Sprintf("season cannot go from %q to %q", e.From, e.Attempted)
}

func (e *InvalidSeasonTransitionError) Code() string { return CodeInvalidSeasonTransition }

// InvalidGameTransitionError is returned for every game guard violation.
type InvalidGameTransitionError struct {
	From      GameStatus
	Attempted string
}

func (e *InvalidGameTransitionError) Error() string {
	return fmt.Sprintf("game cannot go from %q to %q", e.From, e.Attempted)
}

func (e *InvalidGameTransitionError) Code() string { return CodeInvalidGameTransition }

// TeamAlreadyRegisteredError is returned when a team registers twice.
type TeamAlreadyRegisteredError struct {
	Team string
}

func (e *TeamAlreadyRegisteredError) Error() string {
	return fmt.Sprintf("team %q is already registered", e.Team)
}

func (e *TeamAlreadyRegisteredError) Code() string { return CodeTeamAlreadyRegistered }

// SeasonNotOpenError is returned when registration is attempted outside the
// registration window.
type SeasonNotOpenError struct {
	Status SeasonStatus
}

func (e *SeasonNotOpenError) Error() string {
	return fmt.Sprintf("season is not open for registration (status %q)", e.Status)
}

func (e *SeasonNotOpenError) Code() string { return CodeSeasonNotOpen }

// InvalidTeamForGameError is returned when an event names a team that is not
// playing in the game.
type InvalidTeamForGameError struct {
	Team string
	Home string
	Away string
}

func (e *InvalidTeamForGameError) Error() string {
	return fmt.Sprintf("team %q is not playing in %s vs %s", e.Team, e.Home, e.Away)
}

func (e *InvalidTeamForGameError) Code() string { return CodeInvalidTeamForGame }

// NoScheduleError is returned when a season starts without generated weeks.
type NoScheduleError struct {
	Season string
}

func (e *NoScheduleError) Error() string {
	return fmt.Sprintf("season %q has no schedule; generate one first", e.Season)
}

func (e *NoScheduleError) Code() string { return CodeNoSchedule }

// InvalidEventError is returned when an event fails validation.
type InvalidEventError struct {
	Field  string
	Reason string
}

func (e *InvalidEventError) Error() string {
	return fmt.Sprintf("invalid event %s: %s", e.Field, e.Reason)
}

func (e *InvalidEventError) Code() string { return CodeInvalidEvent }

// ScoreMismatchError is returned when a stored score disagrees with the goal
// events recorded for the game.
type ScoreMismatchError struct {
	Stored  Score
	Derived Score
}

func (e *ScoreMismatchError) Error() string {
	return fmt.Sprintf("score %d-%d does not match events (%d-%d)",
		e.Stored.Home, e.Stored.Away, e.Derived.Home, e.Derived.Away)
}

func (e *ScoreMismatchError) Code() string { return CodeScoreMismatch }

// ValidationError is returned when season settings or game details are out
// of range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Code() string { return CodeValidation }

// NotFoundError is returned by stores and lookups.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Code() string { return CodeNotFound }
