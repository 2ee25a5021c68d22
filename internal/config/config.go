package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/derekprior/league/internal/model"
)

// Date is a wrapper around time.Time for YAML date parsing.
type Date struct {
	Time time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse("2006-01-02", value.Value)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", value.Value, err)
	}
	d.Time = t
	return nil
}

type League struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// SeasonDefaults seeds `league season create` when flags are omitted.
type SeasonDefaults struct {
	Name               string `yaml:"name"`
	StartDate          Date   `yaml:"start_date"`
	EndDate            Date   `yaml:"end_date"`
	GamesPerWeek       int    `yaml:"games_per_week"`
	PlayoffTeams       int    `yaml:"playoff_teams"`
	RegularSeasonWeeks int    `yaml:"regular_season_weeks"`
	Rounds             int    `yaml:"rounds"`
}

type Config struct {
	League       League         `yaml:"league"`
	Teams        []model.Team   `yaml:"teams"`
	Players      []model.Player `yaml:"players"`
	Season       SeasonDefaults `yaml:"season"`
	Strategy     string         `yaml:"strategy"`
	DefaultVenue model.Venue    `yaml:"default_venue"`
}

// Settings returns the season settings described by the config.
func (c *Config) Settings() model.Settings {
	return model.Settings{
		GamesPerWeek:       c.Season.GamesPerWeek,
		PlayoffTeams:       c.Season.PlayoffTeams,
		RegularSeasonWeeks: c.Season.RegularSeasonWeeks,
		Rounds:             c.Season.Rounds,
		Strategy:           c.Strategy,
	}
}

// GetTeamsByIDs returns the teams with the given ids in the order asked for.
// Unknown ids are reported as a NotFoundError.
func (c *Config) GetTeamsByIDs(ids []string) ([]model.Team, error) {
	byID := make(map[string]model.Team, len(c.Teams))
	for _, t := range c.Teams {
		byID[t.ID] = t
	}
	teams := make([]model.Team, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, &model.NotFoundError{Entity: "team", ID: id}
		}
		teams = append(teams, t)
	}
	return teams, nil
}

// PlayersByID indexes the roster for the scorer leaderboard.
func (c *Config) PlayersByID() map[string]model.Player {
	players := make(map[string]model.Player, len(c.Players))
	for _, p := range c.Players {
		players[p.ID] = p
	}
	return players
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

func (c *Config) validate() error {
	if c.League.ID == "" {
		return fmt.Errorf("league id is required")
	}

	if len(c.Teams) < 2 {
		return fmt.Errorf("at least two teams are required, have %d", len(c.Teams))
	}

	seen := make(map[string]bool)
	for _, t := range c.Teams {
		if t.ID == "" {
			return fmt.Errorf("team %q has no id", t.Name)
		}
		if seen[t.ID] {
			return fmt.Errorf("team id %q appears more than once", t.ID)
		}
		seen[t.ID] = true
	}

	players := make(map[string]bool)
	for _, p := range c.Players {
		if p.ID == "" {
			return fmt.Errorf("player %s %s has no id", p.FirstName, p.LastName)
		}
		if players[p.ID] {
			return fmt.Errorf("player id %q appears more than once", p.ID)
		}
		players[p.ID] = true
		if !seen[p.Team] {
			return fmt.Errorf("player %q plays for unknown team %q", p.ID, p.Team)
		}
	}

	if !c.Season.StartDate.Time.IsZero() || !c.Season.EndDate.Time.IsZero() {
		if !c.Season.EndDate.Time.After(c.Season.StartDate.Time) {
			return fmt.Errorf("end date %s must be after start date %s",
				c.Season.EndDate.Time.Format("2006-01-02"),
				c.Season.StartDate.Time.Format("2006-01-02"))
		}
	}

	if c.DefaultVenue.Capacity < 0 {
		return fmt.Errorf("default venue capacity cannot be negative")
	}

	return nil
}

// Runtime holds the settings that come from the environment rather than the
// league file.
type Runtime struct {
	Store       string `env:"LEAGUE_STORE" envDefault:"file"`
	DataDir     string `env:"LEAGUE_DATA_DIR" envDefault:".league"`
	DatabaseURL string `env:"DATABASE_URL"`
	LogLevel    string `env:"LEAGUE_LOG_LEVEL" envDefault:"warn"`
	LogFormat   string `env:"LEAGUE_LOG_FORMAT" envDefault:"console"`
}

// LoadRuntime parses environment variables into a Runtime.
func LoadRuntime() (*Runtime, error) {
	rt := &Runtime{}
	if err := env.Parse(rt); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := rt.validate(); err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *Runtime) validate() error {
	switch r.Store {
	case "file":
		if r.DataDir == "" {
			return fmt.Errorf("LEAGUE_DATA_DIR must not be empty")
		}
	case "postgres":
		if r.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when LEAGUE_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown LEAGUE_STORE %q (want file or postgres)", r.Store)
	}
	return nil
}
