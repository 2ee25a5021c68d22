// Package standings reduces completed games into league tables and scorer
// leaderboards. Everything here is a pure, read-only query.
package standings

import (
	"sort"

	"github.com/derekprior/league/internal/model"
)

// Points awarded per result.
const (
	PointsWin  = 3
	PointsDraw = 1
	PointsLoss = 0
)

const formLength = 5

// Compute builds the ranked table for teams from the completed games. Each
// side of a game counts only when that team is among teams. Teams without a
// completed game still get an all-zero row.
//
// Rows are ordered by points, goal difference and goals for (all descending),
// then team name and id, so the order is total and repeatable.
func Compute(teams []model.Team, games []model.Game) []model.StandingRow {
	rows := make(map[string]*model.StandingRow, len(teams))
	form := make(map[string][]formEntry, len(teams))
	for _, t := range teams {
		rows[t.ID] = &model.StandingRow{Team: t.ID, TeamName: t.Name}
	}

	for i, g := range games {
		if g.Status != model.GameCompleted {
			continue
		}
		for _, side := range []struct {
			team     string
			for_, ag int
		}{
			{g.HomeTeam, g.Score.Home, g.Score.Away},
			{g.AwayTeam, g.Score.Away, g.Score.Home},
		} {
			row, ok := rows[side.team]
			if !ok {
				continue
			}
			result := resultFor(side.for_, side.ag)
			row.Played++
			row.GoalsFor += side.for_
			row.GoalsAgainst += side.ag
			switch result {
			case model.Win:
				row.Won++
			case model.Draw:
				row.Drawn++
			default:
				row.Lost++
			}
			form[side.team] = append(form[side.team], formEntry{g, i, result})
		}
	}

	out := make([]model.StandingRow, 0, len(rows))
	for _, t := range teams {
		row := rows[t.ID]
		if row == nil {
			continue
		}
		row.GoalDiff = row.GoalsFor - row.GoalsAgainst
		row.Points = PointsWin*row.Won + PointsDraw*row.Drawn + PointsLoss*row.Lost
		row.Last5 = lastFive(form[t.ID])
		out = append(out, *row)
		delete(rows, t.ID) // duplicate team entries yield one row
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDiff != b.GoalDiff {
			return a.GoalDiff > b.GoalDiff
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		if a.TeamName != b.TeamName {
			return a.TeamName < b.TeamName
		}
		return a.Team < b.Team
	})
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

// MarkQualified flags the top n rows as playoff qualifiers.
func MarkQualified(rows []model.StandingRow, n int) {
	for i := range rows {
		rows[i].Qualified = i < n
	}
}

type formEntry struct {
	game   model.Game
	order  int
	result model.Result
}

// lastFive returns the results of the five most recent games by scheduled
// date, oldest first. Games on the same date keep input order.
func lastFive(entries []formEntry) []model.Result {
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].game.ScheduledDate, entries[j].game.ScheduledDate
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return entries[i].order < entries[j].order
	})
	if len(entries) > formLength {
		entries = entries[len(entries)-formLength:]
	}
	results := make([]model.Result, len(entries))
	for i, e := range entries {
		results[i] = e.result
	}
	return results
}

func resultFor(goalsFor, goalsAgainst int) model.Result {
	switch {
	case goalsFor > goalsAgainst:
		return model.Win
	case goalsFor < goalsAgainst:
		return model.Loss
	default:
		return model.Draw
	}
}
