package main

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/derekprior/league/internal/excel"
	"github.com/derekprior/league/internal/model"
	"github.com/derekprior/league/internal/store"
)

func seasonCommand(configFile *string) *cobra.Command {
	seasonCmd := &cobra.Command{
		Use:   "season",
		Short: "Create seasons, manage registration and generate schedules",
	}

	var (
		name                                  string
		start, end                            string
		gamesPerWeek, playoffTeams, weeks, rr int
	)
	createCmd := &cobra.Command{
		Use:          "create",
		Short:        "Create a draft season from the league defaults",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: withApp(configFile, func(ctx context.Context, a *app, args []string) error {
			d := a.cfg.Season
			if name == "" {
				name = d.Name
			}
			startDate, endDate := d.StartDate.Time, d.EndDate.Time
			var err error
			if start != "" {
				if startDate, err = parseDate("start date", start); err != nil {
					return err
				}
			}
			if end != "" {
				if endDate, err = parseDate("end date", end); err != nil {
					return err
				}
			}
			settings := a.cfg.Settings()
			if gamesPerWeek > 0 {
				settings.GamesPerWeek = gamesPerWeek
			}
			if playoffTeams > 0 {
				settings.PlayoffTeams = playoffTeams
			}
			if weeks > 0 {
				settings.RegularSeasonWeeks = weeks
			}
			if rr > 0 {
				settings.Rounds = rr
			}

			s, err := a.svc.CreateSeason(ctx, a.cfg.League.ID, name, startDate, endDate, settings)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Created season %q (%s)\n", s.Name, s.ID)
			return nil
		}),
	}
	createCmd.Flags().StringVar(&name, "name", "", "Season name")
	createCmd.Flags().StringVar(&start, "start", "", "First day of the season (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&end, "end", "", "Last day of the season (YYYY-MM-DD)")
	createCmd.Flags().IntVar(&gamesPerWeek, "games-per-week", 0, "Fixtures per week")
	createCmd.Flags().IntVar(&playoffTeams, "playoff-teams", 0, "Teams marked as qualified in the standings")
	createCmd.Flags().IntVar(&weeks, "weeks", 0, "Regular season length in weeks")
	createCmd.Flags().IntVar(&rr, "rounds", 0, "Times each pair of teams meets")

	registerCmd := &cobra.Command{
		Use:          "register <season> <team>...",
		Short:        "Register teams for a season that is open for registration",
		Args:         cobra.MinimumNArgs(2),
		SilenceUsage: true,
		RunE: withApp(configFile, func(ctx context.Context, a *app, args []string) error {
			id, err := parseID("season", args[0])
			if err != nil {
				return err
			}
			for _, team := range args[1:] {
				if _, err := a.svc.RegisterTeam(ctx, id, team); err != nil {
					return err
				}
				fmt.Printf("✓ Registered %s\n", team)
			}
			return nil
		}),
	}

	unregisterCmd := &cobra.Command{
		Use:          "unregister <season> <team>",
		Short:        "Withdraw a team before the season starts",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: withApp(configFile, func(ctx context.Context, a *app, args []string) error {
			id, err := parseID("season", args[0])
			if err != nil {
				return err
			}
			if _, err := a.svc.UnregisterTeam(ctx, id, args[1]); err != nil {
				return err
			}
			fmt.Printf("✓ Unregistered %s\n", args[1])
			return nil
		}),
	}

	generateCmd := &cobra.Command{
		Use:          "generate <season>",
		Short:        "Generate the fixture list and partition it into weeks",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: withApp(configFile, func(ctx context.Context, a *app, args []string) error {
			id, err := parseID("season", args[0])
			if err != nil {
				return err
			}
			s, err := a.svc.GenerateSchedule(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Scheduled %d games over %d weeks\n", len(s.Games), len(s.Weeks))
			return nil
		}),
	}

	regenerateCmd := &cobra.Command{
		Use:          "regenerate <season>",
		Short:        "Throw away the current schedule and generate a new one",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: withApp(configFile, func(ctx context.Context, a *app, args []string) error {
			id, err := parseID("season", args[0])
			if err != nil {
				return err
			}
			s, err := a.svc.RegenerateSchedule(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Rescheduled %d games over %d weeks\n", len(s.Games), len(s.Weeks))
			return nil
		}),
	}

	var autoGenerate bool
	startCmd := &cobra.Command{
		Use:          "start <season>",
		Short:        "Close registration and start play",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: withApp(configFile, func(ctx context.Context, a *app, args []string) error {
			id, err := parseID("season", args[0])
			if err != nil {
				return err
			}
			s, err := a.svc.StartSeason(ctx, id, autoGenerate)
			if err != nil {
				return err
			}
			fmt.Printf("✓ %s is %s with %d games\n", s.Name, s.Status, len(s.Games))
			return nil
		}),
	}
	startCmd.Flags().BoolVar(&autoGenerate, "auto-generate", false, "Generate the schedule first if there is none")

	var yes bool
	deleteCmd := &cobra.Command{
		Use:          "delete <season>",
		Short:        "Delete a season and all of its games",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: withApp(configFile, func(ctx context.Context, a *app, args []string) error {
			id, err := parseID("season", args[0])
			if err != nil {
				return err
			}
			if !yes {
				s, err := a.svc.Season(ctx, id)
				if err != nil {
					return err
				}
				confirm := false
				q := &survey.Confirm{
					Message: fmt.Sprintf("Delete %q and its %d games?", s.Name, len(s.Games)),
				}
				if err := survey.AskOne(q, &confirm); err != nil {
					return err
				}
				if !confirm {
					fmt.Println("Nothing deleted")
					return nil
				}
			}
			n, err := a.svc.DeleteSeason(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Deleted season and %d games\n", n)
			return nil
		}),
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	var filterTeam, filterStatus string
	var filterWeek int
	showCmd := &cobra.Command{
		Use:          "show <season>",
		Short:        "Show a season and its games",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: withApp(configFile, func(ctx context.Context, a *app, args []string) error {
			id, err := parseID("season", args[0])
			if err != nil {
				return err
			}
			s, err := a.svc.Season(ctx, id)
			if err != nil {
				return err
			}
			filter := store.GameFilter{Team: filterTeam, Status: model.GameStatus(filterStatus), Week: filterWeek}
			games, err := a.svc.Games(ctx, id, filter)
			if err != nil {
				return err
			}
			names := teamNames(a.cfg.Teams)
			printSeason(s, names)
			printGames(games, names)
			return nil
		}),
	}
	showCmd.Flags().StringVar(&filterTeam, "team", "", "Only games involving this team")
	showCmd.Flags().StringVar(&filterStatus, "status", "", "Only games with this status")
	showCmd.Flags().IntVar(&filterWeek, "week", 0, "Only games in this week")

	listCmd := &cobra.Command{
		Use:          "list",
		Short:        "List all seasons",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: withApp(configFile, func(ctx context.Context, a *app, args []string) error {
			seasons, err := a.svc.ListSeasons(ctx)
			if err != nil {
				return err
			}
			printSeasons(seasons)
			return nil
		}),
	}

	standingsCmd := &cobra.Command{
		Use:          "standings <season>",
		Short:        "Show the league table",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: withApp(configFile, func(ctx context.Context, a *app, args []string) error {
			id, err := parseID("season", args[0])
			if err != nil {
				return err
			}
			rows, err := a.svc.Standings(ctx, id)
			if err != nil {
				return err
			}
			printStandings(rows)
			return nil
		}),
	}

	var limit int
	scorersCmd := &cobra.Command{
		Use:          "scorers <season>",
		Short:        "Show the goal scoring leaderboard",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: withApp(configFile, func(ctx context.Context, a *app, args []string) error {
			id, err := parseID("season", args[0])
			if err != nil {
				return err
			}
			scorers, err := a.svc.TopScorers(ctx, id, a.cfg.PlayersByID())
			if err != nil {
				return err
			}
			if limit > 0 && len(scorers) > limit {
				scorers = scorers[:limit]
			}
			printScorers(scorers, teamNames(a.cfg.Teams))
			return nil
		}),
	}
	scorersCmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of players to show (0 for all)")

	validateCmd := &cobra.Command{
		Use:          "validate <season>",
		Short:        "Check a season's schedule and results for problems",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: withApp(configFile, func(ctx context.Context, a *app, args []string) error {
			id, err := parseID("season", args[0])
			if err != nil {
				return err
			}
			violations, err := a.svc.Validate(ctx, id)
			if err != nil {
				return err
			}

			errors := 0
			warnings := 0
			for _, v := range violations {
				switch v.Type {
				case "error":
					errors++
					fmt.Printf("✗ Week %d: %s\n", v.Week, v.Message)
				case "warning":
					warnings++
					fmt.Printf("⚠ Week %d: %s\n", v.Week, v.Message)
				}
			}

			fmt.Printf("\nValidation complete: %d errors, %d warnings\n", errors, warnings)
			if errors > 0 {
				return fmt.Errorf("%d schedule errors found", errors)
			}
			return nil
		}),
	}

	var outputFile string
	exportCmd := &cobra.Command{
		Use:          "export <season>",
		Short:        "Write the schedule, standings and scorers to an Excel file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: withApp(configFile, func(ctx context.Context, a *app, args []string) error {
			id, err := parseID("season", args[0])
			if err != nil {
				return err
			}
			s, err := a.svc.Season(ctx, id)
			if err != nil {
				return err
			}
			scorers, err := a.svc.TopScorers(ctx, id, a.cfg.PlayersByID())
			if err != nil {
				return err
			}

			f, err := excel.Generate(s, a.cfg.Teams, scorers)
			if err != nil {
				return fmt.Errorf("generating Excel: %w", err)
			}
			defer f.Close()
			if err := f.SaveAs(outputFile); err != nil {
				return fmt.Errorf("saving file: %w", err)
			}

			fmt.Printf("✓ Season saved to %s\n", outputFile)
			return nil
		}),
	}
	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "season.xlsx", "Output Excel file path")

	seasonCmd.AddCommand(
		createCmd,
		transitionCommand(configFile, "open", "Open a draft season for registration", func(a *app) seasonFn { return a.svc.OpenRegistration }),
		registerCmd,
		unregisterCmd,
		generateCmd,
		regenerateCmd,
		startCmd,
		transitionCommand(configFile, "complete", "Mark an active season as completed", func(a *app) seasonFn { return a.svc.CompleteSeason }),
		transitionCommand(configFile, "reopen", "Reopen registration on an active or completed season", func(a *app) seasonFn { return a.svc.ReopenRegistration }),
		transitionCommand(configFile, "cancel", "Cancel a season", func(a *app) seasonFn { return a.svc.CancelSeason }),
		deleteCmd,
		showCmd,
		listCmd,
		standingsCmd,
		scorersCmd,
		validateCmd,
		exportCmd,
	)
	return seasonCmd
}

type seasonFn func(context.Context, uuid.UUID) (*model.Season, error)

// transitionCommand builds the commands that only move a season between
// statuses.
func transitionCommand(configFile *string, use, short string, op func(*app) seasonFn) *cobra.Command {
	return &cobra.Command{
		Use:          use + " <season>",
		Short:        short,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: withApp(configFile, func(ctx context.Context, a *app, args []string) error {
			id, err := parseID("season", args[0])
			if err != nil {
				return err
			}
			s, err := op(a)(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("✓ %s is now %s\n", s.Name, s.Status)
			return nil
		}),
	}
}
