package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

const testConfigYAML = `
league:
  id: metro
  name: Metro Sunday League

teams:
  - id: rovers
    name: Riverside Rovers
    city: Riverside
    colors: [green, white]
  - id: united
    name: Hill United
  - id: athletic
    name: Dockside Athletic

players:
  - id: p1
    first_name: Ana
    last_name: Silva
    team: rovers
  - id: p2
    first_name: Tom
    last_name: Reed
    team: united

season:
  name: Spring 2026
  start_date: "2026-04-25"
  end_date: "2026-05-31"
  games_per_week: 3
  playoff_teams: 2
  regular_season_weeks: 5
  rounds: 1

strategy: round_robin

default_venue:
  name: Moscariello Ballpark
  address: 1 Park Rd
  capacity: 400
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("league", func(t *testing.T) {
		if cfg.League.ID != "metro" {
			t.Errorf("league id = %q, want metro", cfg.League.ID)
		}
	})

	t.Run("season dates", func(t *testing.T) {
		if cfg.Season.StartDate.Time != mustDate("2026-04-25") {
			t.Errorf("start date = %v, want 2026-04-25", cfg.Season.StartDate.Time)
		}
		if cfg.Season.EndDate.Time != mustDate("2026-05-31") {
			t.Errorf("end date = %v, want 2026-05-31", cfg.Season.EndDate.Time)
		}
	})

	t.Run("teams", func(t *testing.T) {
		if len(cfg.Teams) != 3 {
			t.Fatalf("teams = %d, want 3", len(cfg.Teams))
		}
		if got := cfg.Teams[0].Colors; len(got) != 2 || got[0] != "green" {
			t.Errorf("colors = %v, want [green white]", got)
		}
	})

	t.Run("settings", func(t *testing.T) {
		s := cfg.Settings()
		if s.GamesPerWeek != 3 || s.PlayoffTeams != 2 || s.RegularSeasonWeeks != 5 || s.Rounds != 1 {
			t.Errorf("settings = %+v", s)
		}
		if s.Strategy != "round_robin" {
			t.Errorf("strategy = %q, want round_robin", s.Strategy)
		}
	})

	t.Run("default venue", func(t *testing.T) {
		if cfg.DefaultVenue.Name != "Moscariello Ballpark" || cfg.DefaultVenue.Capacity != 400 {
			t.Errorf("default venue = %+v", cfg.DefaultVenue)
		}
	})

	t.Run("team lookup keeps the requested order", func(t *testing.T) {
		teams, err := cfg.GetTeamsByIDs([]string{"athletic", "rovers"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if teams[0].Name != "Dockside Athletic" || teams[1].Name != "Riverside Rovers" {
			t.Errorf("teams = %+v", teams)
		}
		if _, err := cfg.GetTeamsByIDs([]string{"city"}); err == nil {
			t.Error("expected error for unknown team")
		}
	})

	t.Run("players by id", func(t *testing.T) {
		p := cfg.PlayersByID()["p2"]
		if p.LastName != "Reed" {
			t.Errorf("p2 = %+v", p)
		}
	})
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
		want    string
	}{
		{"missing league id", [2]string{"id: metro", "id: \"\""}, "league id"},
		{"duplicate team id", [2]string{"id: athletic", "id: united"}, "more than once"},
		{"player on unknown team", [2]string{"team: united", "team: city"}, "unknown team"},
		{"end before start", [2]string{`end_date: "2026-05-31"`, `end_date: "2026-04-01"`}, "must be after"},
		{"negative capacity", [2]string{"capacity: 400", "capacity: -1"}, "capacity"},
		{"bad date", [2]string{`start_date: "2026-04-25"`, `start_date: "April"`}, "invalid date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yml := strings.Replace(testConfigYAML, tt.replace[0], tt.replace[1], 1)
			_, err := LoadFromBytes([]byte(yml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}

	t.Run("season defaults are optional", func(t *testing.T) {
		yml := `
league: {id: metro}
teams:
  - {id: a, name: A}
  - {id: b, name: B}
`
		if _, err := LoadFromBytes([]byte(yml)); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("one team is not a league", func(t *testing.T) {
		yml := "league: {id: metro}\nteams:\n  - {id: a, name: A}\n"
		if _, err := LoadFromBytes([]byte(yml)); err == nil {
			t.Error("expected error")
		}
	})
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "league.yaml")
	if err := os.WriteFile(path, []byte(testConfigYAML), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.League.Name != "Metro Sunday League" {
		t.Errorf("league name = %q", cfg.League.Name)
	}

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadRuntime(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		rt, err := LoadRuntime()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rt.Store != "file" || rt.DataDir != ".league" || rt.LogLevel != "warn" {
			t.Errorf("runtime = %+v", rt)
		}
	})

	t.Run("postgres needs a database url", func(t *testing.T) {
		t.Setenv("LEAGUE_STORE", "postgres")
		t.Setenv("DATABASE_URL", "")
		if _, err := LoadRuntime(); err == nil {
			t.Error("expected error")
		}

		t.Setenv("DATABASE_URL", "postgres://localhost/league")
		rt, err := LoadRuntime()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rt.DatabaseURL != "postgres://localhost/league" {
			t.Errorf("database url = %q", rt.DatabaseURL)
		}
	})

	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("LEAGUE_STORE", "redis")
		if _, err := LoadRuntime(); err == nil {
			t.Error("expected error")
		}
	})
}
