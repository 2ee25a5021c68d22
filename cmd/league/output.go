package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/derekprior/league/internal/model"
	"github.com/derekprior/league/internal/standings"
)

type nameIndex map[string]string

func teamNames(teams []model.Team) nameIndex {
	names := make(nameIndex, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	return names
}

func (n nameIndex) of(id string) string {
	if name, ok := n[id]; ok {
		return name
	}
	return id
}

func scoreText(g *model.Game) string {
	if g.Status != model.GameCompleted && g.Status != model.GameInProgress {
		return ""
	}
	return fmt.Sprintf("%d-%d", g.Score.Home, g.Score.Away)
}

func kickoffText(g *model.Game) string {
	if g.ScheduledDate.Hour() == 0 && g.ScheduledDate.Minute() == 0 {
		return g.ScheduledDate.Format("Mon Jan 2")
	}
	return g.ScheduledDate.Format("Mon Jan 2 15:04")
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	return t
}

func printSeason(s *model.Season, names nameIndex) {
	fmt.Printf("%s (%s)\n", s.Name, s.ID)
	fmt.Printf("  League:   %s\n", s.LeagueID)
	fmt.Printf("  Dates:    %s to %s\n", s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"))
	fmt.Printf("  Status:   %s\n", s.Status)
	fmt.Printf("  Strategy: %s, %d per week\n", s.Settings.Strategy, s.Settings.GamesPerWeek)

	teams := make([]string, len(s.Teams))
	for i, id := range s.Teams {
		teams[i] = names.of(id)
	}
	fmt.Printf("  Teams:    %d (%s)\n", len(s.Teams), strings.Join(teams, ", "))
	fmt.Printf("  Weeks:    %d\n\n", len(s.Weeks))
}

func printGames(games []model.Game, names nameIndex) {
	if len(games) == 0 {
		fmt.Println("No games")
		return
	}
	t := newTable()
	t.AppendHeader(table.Row{"Week", "Date", "Away", "Home", "Venue", "Status", "Score", "ID"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
	})
	for i := range games {
		g := &games[i]
		t.AppendRow(table.Row{g.Week, kickoffText(g), names.of(g.AwayTeam), names.of(g.HomeTeam), g.Venue.Name, g.Status, scoreText(g), g.ID})
	}
	t.Render()
}

func printSeasons(seasons []model.Season) {
	if len(seasons) == 0 {
		fmt.Println("No seasons")
		return
	}
	t := newTable()
	t.AppendHeader(table.Row{"Name", "League", "Start", "End", "Status", "Teams", "Games", "ID"})
	for _, s := range seasons {
		t.AppendRow(table.Row{s.Name, s.LeagueID, s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"), s.Status, len(s.Teams), len(s.Games), s.ID})
	}
	t.Render()
}

func printStandings(rows []model.StandingRow) {
	t := newTable()
	t.AppendHeader(table.Row{"Pos", "Team", "MP", "W", "D", "L", "GF", "GA", "GD", "Pts", "Form", ""})
	for _, r := range rows {
		form := make([]string, len(r.Last5))
		for i, res := range r.Last5 {
			form[i] = string(res)
		}
		mark := ""
		if r.Qualified {
			mark = "Q"
		}
		t.AppendRow(table.Row{r.Position, r.TeamName, r.Played, r.Won, r.Drawn, r.Lost,
			r.GoalsFor, r.GoalsAgainst, fmt.Sprintf("%+d", r.GoalDiff), r.Points, strings.Join(form, " "), mark})
	}
	t.Render()
}

func printScorers(scorers []standings.Scorer, names nameIndex) {
	if len(scorers) == 0 {
		fmt.Println("No goals yet")
		return
	}
	t := newTable()
	t.AppendHeader(table.Row{"#", "Player", "Team", "Goals"})
	for i, s := range scorers {
		player := strings.TrimSpace(s.FirstName + " " + s.LastName)
		t.AppendRow(table.Row{i + 1, player, names.of(s.Team), s.Goals})
	}
	t.Render()
}

func printGame(g *model.Game, hatTricks []string, names nameIndex) {
	fmt.Printf("%s @ %s\n", names.of(g.AwayTeam), names.of(g.HomeTeam))
	fmt.Printf("  Week:   %d (round %d)\n", g.Week, g.Round)
	fmt.Printf("  When:   %s\n", kickoffText(g))
	if !g.Venue.IsZero() {
		fmt.Printf("  Venue:  %s\n", g.Venue.Name)
	}
	fmt.Printf("  Status: %s %s\n", g.Status, scoreText(g))
	for _, p := range hatTricks {
		fmt.Printf("  ⚽ Hat-trick: %s\n", p)
	}

	if len(g.Events) == 0 {
		return
	}
	fmt.Println()
	t := newTable()
	t.AppendHeader(table.Row{"Min", "Event", "Player", "Team", "Note"})
	for _, e := range g.Events {
		t.AppendRow(table.Row{e.Minute, e.Type, e.Player, names.of(e.Team), e.Description})
	}
	t.Render()
}
