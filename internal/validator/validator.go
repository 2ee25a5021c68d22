package validator

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/derekprior/league/internal/model"
	"github.com/derekprior/league/internal/schedule"
)

// Violation represents a problem found in a season's schedule.
type Violation struct {
	Week    int    // 1-based week index, 0 when not tied to a week
	Type    string // "error" or "warning"
	Message string
}

// Validate checks a season's generated schedule. Errors mean the schedule
// breaks a scheduling invariant; warnings flag guideline deviations.
func Validate(season *model.Season) []Violation {
	if !season.HasSchedule() {
		return nil
	}

	var violations []Violation

	// Hard constraints
	violations = append(violations, checkDanglingGames(season)...)
	violations = append(violations, checkDoubleBooking(season)...)
	violations = append(violations, checkPairCoverage(season)...)
	violations = append(violations, checkGameCompleteness(season)...)

	// Guidelines
	violations = append(violations, checkHomeAwayBalance(season)...)
	violations = append(violations, checkWeekDates(season)...)
	violations = append(violations, checkSeasonLength(season)...)
	violations = append(violations, checkPlayoffTeams(season)...)

	return violations
}

// Errors returns only the hard violations.
func Errors(violations []Violation) []Violation {
	var out []Violation
	for _, v := range violations {
		if v.Type == "error" {
			out = append(out, v)
		}
	}
	return out
}

func checkDanglingGames(season *model.Season) []Violation {
	var violations []Violation
	referenced := make(map[uuid.UUID]bool)
	for _, w := range season.Weeks {
		for _, id := range w.Games {
			if _, ok := season.Game(id); !ok {
				violations = append(violations, Violation{
					Week:    w.Index,
					Type:    "error",
					Message: fmt.Sprintf("week %d references unknown game %s", w.Index, id),
				})
			}
			referenced[id] = true
		}
	}
	for _, g := range season.Games {
		if !referenced[g.ID] {
			violations = append(violations, Violation{
				Type:    "error",
				Message: fmt.Sprintf("%s vs %s is not in any week", g.HomeTeam, g.AwayTeam),
			})
		}
	}
	return violations
}

func checkDoubleBooking(season *model.Season) []Violation {
	var violations []Violation
	for _, w := range season.Weeks {
		counts := make(map[string]int)
		for _, g := range season.WeekGames(w.Index) {
			if g.Status == model.GameCancelled {
				continue
			}
			counts[g.HomeTeam]++
			counts[g.AwayTeam]++
		}
		for _, team := range sortedKeys(counts) {
			if counts[team] > 1 {
				violations = append(violations, Violation{
					Week:    w.Index,
					Type:    "error",
					Message: fmt.Sprintf("%s plays %d games in week %d", team, counts[team], w.Index),
				})
			}
		}
	}
	return violations
}

func checkPairCoverage(season *model.Season) []Violation {
	want := season.Settings.Rounds
	if season.Settings.Strategy == "double_round_robin" {
		want = 2
	}
	if want < 1 {
		want = 1
	}

	type matchup struct{ a, b string }
	meetings := make(map[matchup]int)
	for _, g := range season.Games {
		a, b := g.HomeTeam, g.AwayTeam
		if a > b {
			a, b = b, a
		}
		meetings[matchup{a, b}]++
	}

	var violations []Violation
	for i, a := range season.Teams {
		for _, b := range season.Teams[i+1:] {
			x, y := a, b
			if x > y {
				x, y = y, x
			}
			if got := meetings[matchup{x, y}]; got != want {
				violations = append(violations, Violation{
					Type:    "error",
					Message: fmt.Sprintf("%s vs %s meet %d times (want %d)", x, y, got, want),
				})
			}
		}
	}
	return violations
}

func checkGameCompleteness(season *model.Season) []Violation {
	counts := make(map[string]int)
	for _, g := range season.Games {
		counts[g.HomeTeam]++
		counts[g.AwayTeam]++
	}

	var violations []Violation
	for _, team := range season.Teams {
		if counts[team] == 0 {
			violations = append(violations, Violation{
				Type:    "error",
				Message: fmt.Sprintf("%s has no games scheduled", team),
			})
		}
	}
	for _, team := range sortedKeys(counts) {
		if !season.HasTeam(team) {
			violations = append(violations, Violation{
				Type:    "error",
				Message: fmt.Sprintf("%s has games but is not registered; regenerate the schedule", team),
			})
		}
	}
	return violations
}

func checkHomeAwayBalance(season *model.Season) []Violation {
	home := make(map[string]int)
	away := make(map[string]int)
	for _, g := range season.Games {
		home[g.HomeTeam]++
		away[g.AwayTeam]++
	}

	var violations []Violation
	for _, team := range season.Teams {
		diff := home[team] - away[team]
		if diff < -1 || diff > 1 {
			violations = append(violations, Violation{
				Type:    "warning",
				Message: fmt.Sprintf("%s home/away imbalance: %d home, %d away", team, home[team], away[team]),
			})
		}
	}
	return violations
}

func checkWeekDates(season *model.Season) []Violation {
	var violations []Violation
	for _, w := range season.Weeks {
		for _, g := range season.WeekGames(w.Index) {
			d := schedule.Day(g.ScheduledDate)
			if d.Before(schedule.Day(w.StartDate)) || d.After(schedule.Day(w.EndDate)) {
				violations = append(violations, Violation{
					Week: w.Index,
					Type: "warning",
					Message: fmt.Sprintf("%s vs %s on %s falls outside week %d (%s to %s)",
						g.HomeTeam, g.AwayTeam, d.Format("01/02"), w.Index,
						w.StartDate.Format("01/02"), w.EndDate.Format("01/02")),
				})
			}
		}
	}
	return violations
}

func checkSeasonLength(season *model.Season) []Violation {
	limit := season.Settings.RegularSeasonWeeks
	if limit <= 0 || len(season.Weeks) <= limit {
		return nil
	}
	return []Violation{{
		Type:    "warning",
		Message: fmt.Sprintf("schedule uses %d weeks, regular season is %d", len(season.Weeks), limit),
	}}
}

func checkPlayoffTeams(season *model.Season) []Violation {
	if season.Settings.PlayoffTeams <= len(season.Teams) {
		return nil
	}
	return []Violation{{
		Type: "warning",
		Message: fmt.Sprintf("%d playoff spots but only %d teams registered",
			season.Settings.PlayoffTeams, len(season.Teams)),
	}}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
