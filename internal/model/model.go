package model

import (
	"time"

	"github.com/google/uuid"
)

// SeasonStatus is the lifecycle state of a season.
type SeasonStatus string

const (
	SeasonDraft        SeasonStatus = "draft"
	SeasonRegistration SeasonStatus = "registration"
	SeasonActive       SeasonStatus = "active"
	SeasonCompleted    SeasonStatus = "completed"
	SeasonCancelled    SeasonStatus = "cancelled"
)

// GameStatus is the lifecycle state of a single game.
type GameStatus string

const (
	GamePending    GameStatus = "pending"
	GameScheduled  GameStatus = "scheduled"
	GameInProgress GameStatus = "in_progress"
	GameCompleted  GameStatus = "completed"
	GameCancelled  GameStatus = "cancelled"
	GamePostponed  GameStatus = "postponed"
)

// EventType classifies a game event.
type EventType string

const (
	EventGoal         EventType = "goal"
	EventOwnGoal      EventType = "own_goal"
	EventAssist       EventType = "assist"
	EventYellowCard   EventType = "yellow_card"
	EventRedCard      EventType = "red_card"
	EventSubstitution EventType = "substitution"
	EventPenalty      EventType = "penalty"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventGoal, EventOwnGoal, EventAssist, EventYellowCard, EventRedCard, EventSubstitution, EventPenalty:
		return true
	}
	return false
}

// Result is a single game outcome from one team's perspective.
type Result string

const (
	Win  Result = "W"
	Draw Result = "D"
	Loss Result = "L"
)

// Team is owned by the team-management module; the scheduler only reads it.
type Team struct {
	ID     string   `yaml:"id"`
	Name   string   `yaml:"name"`
	City   string   `yaml:"city,omitempty"`
	Colors []string `yaml:"colors,omitempty"`
}

// Player is a registered player, used to order the scorer leaderboard.
type Player struct {
	ID        string `yaml:"id"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Team      string `yaml:"team"`
}

// Settings controls schedule generation for a season.
type Settings struct {
	GamesPerWeek       int    `yaml:"games_per_week"`
	PlayoffTeams       int    `yaml:"playoff_teams"`
	RegularSeasonWeeks int    `yaml:"regular_season_weeks"`
	Rounds             int    `yaml:"rounds"`
	Strategy           string `yaml:"strategy"`
}

// DefaultSettings returns the settings applied to a newly created season.
func DefaultSettings() Settings {
	return Settings{
		GamesPerWeek:       1,
		PlayoffTeams:       0,
		RegularSeasonWeeks: 1,
		Rounds:             1,
		Strategy:           "round_robin",
	}
}

// Week groups the games played inside one date range of the season.
// Games are referenced by id; the season's game collection owns them.
type Week struct {
	Index     int         `yaml:"index"`
	StartDate time.Time   `yaml:"start_date"`
	EndDate   time.Time   `yaml:"end_date"`
	Games     []uuid.UUID `yaml:"games"`
}

// Venue is where a game is played.
type Venue struct {
	Name     string `yaml:"name"`
	Address  string `yaml:"address,omitempty"`
	Capacity int    `yaml:"capacity,omitempty"`
}

// IsZero reports whether no venue has been assigned.
func (v Venue) IsZero() bool {
	return v.Name == "" && v.Address == "" && v.Capacity == 0
}

// Score holds goals for each side.
type Score struct {
	Home int `yaml:"home"`
	Away int `yaml:"away"`
}

// GameEvent is a single recorded incident. Events keep recording order,
// which is not necessarily minute order.
type GameEvent struct {
	Type        EventType `yaml:"type"`
	Player      string    `yaml:"player"`
	Team        string    `yaml:"team"`
	Minute      int       `yaml:"minute"`
	Description string    `yaml:"description,omitempty"`
}

// Game is a fixture bound to a season and a date. Week is the 1-based index
// of the week listing the game.
type Game struct {
	ID            uuid.UUID   `yaml:"id"`
	SeasonID      uuid.UUID   `yaml:"season_id"`
	Round         int         `yaml:"round"`
	Week          int         `yaml:"week"`
	HomeTeam      string      `yaml:"home_team"`
	AwayTeam      string      `yaml:"away_team"`
	ScheduledDate time.Time   `yaml:"scheduled_date"`
	Venue         Venue       `yaml:"venue"`
	Status        GameStatus  `yaml:"status"`
	Score         Score       `yaml:"score"`
	Events        []GameEvent `yaml:"events,omitempty"`
}

// Involves reports whether team plays in the game.
func (g *Game) Involves(team string) bool {
	return g.HomeTeam == team || g.AwayTeam == team
}

// Settled reports whether the game no longer needs to be played.
func (g *Game) Settled() bool {
	return g.Status == GameCompleted || g.Status == GameCancelled
}

// StandingRow is a team's aggregated record. It is derived from completed
// games and never edited by hand.
type StandingRow struct {
	Position     int      `yaml:"position"`
	Team         string   `yaml:"team"`
	TeamName     string   `yaml:"team_name"`
	Played       int      `yaml:"mp"`
	Won          int      `yaml:"w"`
	Drawn        int      `yaml:"d"`
	Lost         int      `yaml:"l"`
	GoalsFor     int      `yaml:"gf"`
	GoalsAgainst int      `yaml:"ga"`
	GoalDiff     int      `yaml:"gd"`
	Points       int      `yaml:"pts"`
	Last5        []Result `yaml:"last5"`
	Qualified    bool     `yaml:"qualified,omitempty"`
}

// Season is a competition window for one league. It exclusively owns its
// weeks and the season-scoped game collection.
type Season struct {
	ID        uuid.UUID     `yaml:"id"`
	LeagueID  string        `yaml:"league_id"`
	Name      string        `yaml:"name"`
	StartDate time.Time     `yaml:"start_date"`
	EndDate   time.Time     `yaml:"end_date"`
	Status    SeasonStatus  `yaml:"status"`
	Teams     []string      `yaml:"teams"`
	Settings  Settings      `yaml:"settings"`
	Weeks     []Week        `yaml:"weeks,omitempty"`
	Games     []Game        `yaml:"games,omitempty"`
	Standings []StandingRow `yaml:"standings,omitempty"`
}

// HasTeam reports whether team is registered in the season.
func (s *Season) HasTeam(team string) bool {
	for _, t := range s.Teams {
		if t == team {
			return true
		}
	}
	return false
}

// Game returns the season's game with the given id.
func (s *Season) Game(id uuid.UUID) (*Game, bool) {
	for i := range s.Games {
		if s.Games[i].ID == id {
			return &s.Games[i], true
		}
	}
	return nil, false
}

// WeekGames returns the games of week index (1-based) in week order.
func (s *Season) WeekGames(index int) []Game {
	if index < 1 || index > len(s.Weeks) {
		return nil
	}
	var games []Game
	for _, id := range s.Weeks[index-1].Games {
		if g, ok := s.Game(id); ok {
			games = append(games, *g)
		}
	}
	return games
}

// WeekCompleted reports whether every game in week index is completed or
// cancelled. An empty or unknown week is not completed.
func (s *Season) WeekCompleted(index int) bool {
	if index < 1 || index > len(s.Weeks) {
		return false
	}
	week := s.Weeks[index-1]
	if len(week.Games) == 0 {
		return false
	}
	for _, id := range week.Games {
		g, ok := s.Game(id)
		if !ok || !g.Settled() {
			return false
		}
	}
	return true
}

// HasSchedule reports whether weeks have been generated.
func (s *Season) HasSchedule() bool {
	return len(s.Weeks) > 0
}

// Clone returns a deep copy, so state transitions can be computed without
// touching the original until they succeed.
func (s *Season) Clone() *Season {
	c := *s
	c.Teams = append([]string(nil), s.Teams...)
	if s.Weeks != nil {
		c.Weeks = make([]Week, len(s.Weeks))
		for i, w := range s.Weeks {
			w.Games = append([]uuid.UUID(nil), w.Games...)
			c.Weeks[i] = w
		}
	}
	if s.Games != nil {
		c.Games = make([]Game, len(s.Games))
		for i, g := range s.Games {
			c.Games[i] = g.Clone()
		}
	}
	if s.Standings != nil {
		c.Standings = make([]StandingRow, len(s.Standings))
		for i, r := range s.Standings {
			r.Last5 = append([]Result(nil), r.Last5...)
			c.Standings[i] = r
		}
	}
	return &c
}

// Clone returns a deep copy of the game.
func (g Game) Clone() Game {
	g.Events = append([]GameEvent(nil), g.Events...)
	return g
}
