package excel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/league/internal/model"
	"github.com/derekprior/league/internal/standings"
)

const (
	scheduleSheet  = "Schedule"
	standingsSheet = "Standings"
	scorersSheet   = "Top Scorers"
)

// Generate creates a workbook with the season schedule, one sheet per team,
// the standings and the scorer leaderboard. season.Standings should already
// be computed. teams supplies display names; ids are used for the rest.
func Generate(season *model.Season, teams []model.Team, scorers []standings.Scorer) (*excelize.File, error) {
	f := excelize.NewFile()

	// Set default font for the workbook
	f.SetDefaultFont("Arial")

	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}

	if err := writeScheduleSheet(f, season, name); err != nil {
		return nil, fmt.Errorf("writing schedule sheet: %w", err)
	}

	if err := writeTeamSheets(f, season, name); err != nil {
		return nil, fmt.Errorf("writing team sheets: %w", err)
	}

	if err := writeStandingsSheet(f, season.Standings); err != nil {
		return nil, fmt.Errorf("writing standings sheet: %w", err)
	}

	if err := writeScorersSheet(f, scorers, name); err != nil {
		return nil, fmt.Errorf("writing scorers sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

type styles struct {
	header, cell, center int
}

func newStyles(f *excelize.File) styles {
	var s styles
	s.header, _ = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 16, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	s.cell, _ = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 16, Family: "Arial"},
	})
	s.center, _ = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 16, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	return s
}

func writeHeaders(f *excelize.File, sheet string, headers []string, st styles) {
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}
	if st.header != 0 {
		f.SetCellStyle(sheet, cellRef(1, 1), cellRef(len(headers), 1), st.header)
	}
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) {
	if style != 0 {
		f.SetCellStyle(sheet, cellRef(1, row), cellRef(cols, row), style)
	}
}

func kickoff(g model.Game) string {
	if g.ScheduledDate.Hour() == 0 && g.ScheduledDate.Minute() == 0 {
		return "TBD"
	}
	return g.ScheduledDate.Format("15:04")
}

func scoreLabel(g model.Game) string {
	if g.Status != model.GameCompleted && g.Status != model.GameInProgress {
		return ""
	}
	return fmt.Sprintf("%d-%d", g.Score.Home, g.Score.Away)
}

func writeScheduleSheet(f *excelize.File, season *model.Season, name func(string) string) error {
	sheet := scheduleSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	st := newStyles(f)

	headers := []string{"Week", "Date", "Day", "Time", "Venue", "Game", "Status", "Score"}
	writeHeaders(f, sheet, headers, st)

	row := 2
	for _, w := range season.Weeks {
		for _, g := range season.WeekGames(w.Index) {
			f.SetCellValue(sheet, cellRef(1, row), w.Index)
			f.SetCellValue(sheet, cellRef(2, row), g.ScheduledDate.Format("01/02/2006"))
			f.SetCellValue(sheet, cellRef(3, row), g.ScheduledDate.Format("Mon"))
			f.SetCellValue(sheet, cellRef(4, row), kickoff(g))
			f.SetCellValue(sheet, cellRef(5, row), g.Venue.Name)
			f.SetCellValue(sheet, cellRef(6, row), fmt.Sprintf("%s @ %s", name(g.AwayTeam), name(g.HomeTeam)))
			f.SetCellValue(sheet, cellRef(7, row), string(g.Status))
			f.SetCellValue(sheet, cellRef(8, row), scoreLabel(g))
			styleRow(f, sheet, row, len(headers), st.cell)
			row++
		}
	}

	// Set column widths (sized for Arial 16)
	widths := map[string]float64{"A": 8, "B": 18, "C": 8, "D": 10, "E": 28, "F": 36, "G": 16, "H": 10}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}

	// Conditional formatting: cancelled and postponed games get light red
	lastRow := row - 1
	if lastRow < 2 {
		return nil
	}
	redFill, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
		Font: &excelize.Font{Size: 16, Family: "Arial"},
	})
	return f.SetConditionalFormat(sheet, fmt.Sprintf("A2:H%d", lastRow), []excelize.ConditionalFormatOptions{
		{
			Type:     "formula",
			Criteria: `OR($G2="cancelled",$G2="postponed")`,
			Format:   &redFill,
		},
	})
}

func writeTeamSheets(f *excelize.File, season *model.Season, name func(string) string) error {
	used := map[string]bool{"schedule": true, "standings": true, "top scorers": true, "sheet1": true}
	for _, team := range season.Teams {
		sheet := sheetName(name(team), used)
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		st := newStyles(f)

		headers := []string{"Week", "Date", "Day", "Time", "Venue", "Opponent", "Home/Away", "Result"}
		writeHeaders(f, sheet, headers, st)

		var games []model.Game
		for _, g := range season.Games {
			if g.Involves(team) {
				games = append(games, g)
			}
		}
		sort.SliceStable(games, func(i, j int) bool {
			return games[i].ScheduledDate.Before(games[j].ScheduledDate)
		})

		for i, g := range games {
			row := i + 2
			opponent, homeAway := g.AwayTeam, "Home"
			if g.AwayTeam == team {
				opponent, homeAway = g.HomeTeam, "Away"
			}
			f.SetCellValue(sheet, cellRef(1, row), g.Week)
			f.SetCellValue(sheet, cellRef(2, row), g.ScheduledDate.Format("01/02/2006"))
			f.SetCellValue(sheet, cellRef(3, row), g.ScheduledDate.Format("Mon"))
			f.SetCellValue(sheet, cellRef(4, row), kickoff(g))
			f.SetCellValue(sheet, cellRef(5, row), g.Venue.Name)
			f.SetCellValue(sheet, cellRef(6, row), name(opponent))
			f.SetCellValue(sheet, cellRef(7, row), homeAway)
			f.SetCellValue(sheet, cellRef(8, row), teamResult(g, team))
			styleRow(f, sheet, row, len(headers), st.cell)
		}

		// Set column widths (sized for Arial 16)
		widths := map[string]float64{"A": 8, "B": 18, "C": 8, "D": 10, "E": 28, "F": 24, "G": 14, "H": 12}
		for col, w := range widths {
			f.SetColWidth(sheet, col, col, w)
		}
	}
	return nil
}

// teamResult renders a completed game from team's side, e.g. "W 2-1".
func teamResult(g model.Game, team string) string {
	if g.Status != model.GameCompleted {
		return ""
	}
	own, other := g.Score.Home, g.Score.Away
	if g.AwayTeam == team {
		own, other = other, own
	}
	r := model.Draw
	switch {
	case own > other:
		r = model.Win
	case own < other:
		r = model.Loss
	}
	return fmt.Sprintf("%s %d-%d", r, own, other)
}

func writeStandingsSheet(f *excelize.File, rows []model.StandingRow) error {
	sheet := standingsSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	st := newStyles(f)

	headers := []string{"Pos", "Team", "MP", "W", "D", "L", "GF", "GA", "GD", "Pts", "Form"}
	writeHeaders(f, sheet, headers, st)

	qualified, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 16, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#C6EFCE"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for i, r := range rows {
		row := i + 2
		form := make([]string, len(r.Last5))
		for j, res := range r.Last5 {
			form[j] = string(res)
		}
		values := []any{r.Position, r.TeamName, r.Played, r.Won, r.Drawn, r.Lost,
			r.GoalsFor, r.GoalsAgainst, r.GoalDiff, r.Points, strings.Join(form, " ")}
		for col, v := range values {
			f.SetCellValue(sheet, cellRef(col+1, row), v)
		}
		style := st.center
		if r.Qualified && qualified != 0 {
			style = qualified
		}
		styleRow(f, sheet, row, len(headers), style)
	}

	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 28)
	f.SetColWidth(sheet, "C", "J", 8)
	f.SetColWidth(sheet, "K", "K", 16)
	return nil
}

func writeScorersSheet(f *excelize.File, scorers []standings.Scorer, name func(string) string) error {
	sheet := scorersSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	st := newStyles(f)

	headers := []string{"Rank", "Player", "Team", "Goals"}
	writeHeaders(f, sheet, headers, st)

	for i, s := range scorers {
		row := i + 2
		player := strings.TrimSpace(s.FirstName + " " + s.LastName)
		if player == "" {
			player = s.Player
		}
		f.SetCellValue(sheet, cellRef(1, row), i+1)
		f.SetCellValue(sheet, cellRef(2, row), player)
		f.SetCellValue(sheet, cellRef(3, row), name(s.Team))
		f.SetCellValue(sheet, cellRef(4, row), s.Goals)
		styleRow(f, sheet, row, len(headers), st.cell)
	}

	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "C", 28)
	f.SetColWidth(sheet, "D", "D", 10)
	return nil
}

// sheetName makes name usable as a sheet title: no reserved characters, at
// most 31 runes, and not already taken. Sheet names compare case-insensitively.
func sheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, name)
	if r := []rune(clean); len(r) > 31 {
		clean = string(r[:31])
	}
	candidate := clean
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		base := []rune(clean)
		if len(base)+len(suffix) > 31 {
			base = base[:31-len(suffix)]
		}
		candidate = strings.TrimRight(string(base), " ") + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
