package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/derekprior/league/internal/config"
	"github.com/derekprior/league/internal/logging"
	"github.com/derekprior/league/internal/model"
	"github.com/derekprior/league/internal/service"
	"github.com/derekprior/league/internal/store"
	"github.com/derekprior/league/internal/store/filestore"
	"github.com/derekprior/league/internal/store/postgres"
)

const defaultConfigFile = "league.yaml"

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

// app is everything a command needs once the league file and environment
// have been read.
type app struct {
	cfg    *config.Config
	svc    *service.Service
	store  store.Store
	logger *zap.Logger
}

func (a *app) close() {
	a.store.Close()
	_ = a.logger.Sync()
}

func openApp(ctx context.Context, configFlag string) (*app, error) {
	configPath, err := resolveConfigPath(configFlag)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	rt, err := config.LoadRuntime()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(rt.LogLevel, rt.LogFormat)
	if err != nil {
		return nil, err
	}

	var st store.Store
	switch rt.Store {
	case "postgres":
		st, err = postgres.Open(ctx, rt.DatabaseURL, logger)
	default:
		st, err = filestore.Open(rt.DataDir)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", rt.Store, err)
	}
	logger.Debug("store opened", zap.String("store", rt.Store))

	return &app{
		cfg:    cfg,
		svc:    service.New(st, cfg, logger),
		store:  st,
		logger: logger,
	}, nil
}

// withApp adapts a command body that needs an open app into a cobra RunE.
func withApp(configFile *string, fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, *configFile)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(ctx, a, args)
	}
}

func parseID(kind, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, &model.ValidationError{Field: kind, Reason: fmt.Sprintf("%q is not a valid id", s)}
	}
	return id, nil
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, &model.ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a date, want YYYY-MM-DD", s)}
	}
	return t, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "league",
		Short:         "Season scheduling for round robin leagues",
		SilenceErrors: true,
	}

	var configFile string
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to league file (default: league.yaml in current directory)")

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter league.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the league file")

	rootCmd.AddCommand(initCmd, seasonCommand(&configFile), gameCommand(&configFile))
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func printError(err error) {
	var coder model.Coder
	if errors.As(err, &coder) {
		fmt.Fprintf(os.Stderr, "✗ %s: %s\n", coder.Code(), err)
		return
	}
	fmt.Fprintf(os.Stderr, "✗ %s\n", err)
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

const configTemplate = `# League Configuration
# ====================
# This file describes the league, its teams and the defaults used when a
# new season is created. Seasons themselves live in the store selected by
# LEAGUE_STORE (file or postgres).

league:
  id: metro
  name: Metro Sunday League

# Teams that may register for a season. Ids are what you pass to
# 'league season register'; names are used in tables and spreadsheets.
teams:
  - id: rovers
    name: Riverside Rovers
    city: Riverside
  - id: united
    name: Harbor United
  - id: athletic
    name: Hillcrest Athletic
  - id: wanderers
    name: Northside Wanderers
  - id: city
    name: Old Town City
  - id: rangers
    name: Parkview Rangers

# Players are optional. They give the scorer leaderboard real names; goals
# by players not listed here are shown by id.
players:
  - id: r9
    first_name: Sam
    last_name: Okafor
    team: rovers

# Defaults for 'league season create'. Every value can be overridden with a
# flag.
season:
  name: Spring 2026
  start_date: "2026-04-04"
  end_date: "2026-06-27"
  games_per_week: 3            # Fixtures packed into each week
  playoff_teams: 4             # Top N of the table are marked as qualified
  regular_season_weeks: 10     # Schedules longer than this raise a warning
  rounds: 1                    # Times each pair meets (round_robin only)

# Strategy determines how fixtures are generated.
# "round_robin" meets every opponent 'rounds' times with home and away
# alternating between rounds. "double_round_robin" always plays two rounds.
strategy: round_robin

# Venue offered by 'league game venue' when --venue is omitted.
default_venue:
  name: Riverside Park
  address: 1 River Rd
  capacity: 500
`
