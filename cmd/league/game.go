package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/derekprior/league/internal/model"
)

type gameFn func(ctx context.Context, a *app, seasonID, gameID uuid.UUID, args []string) (*model.Game, error)

// gameCmd builds a command whose first two arguments are a season id and a
// game id.
func gameCmd(configFile *string, use, short string, extra int, fn gameFn) *cobra.Command {
	return &cobra.Command{
		Use:          use,
		Short:        short,
		Args:         cobra.ExactArgs(2 + extra),
		SilenceUsage: true,
		RunE: withApp(configFile, func(ctx context.Context, a *app, args []string) error {
			seasonID, err := parseID("season", args[0])
			if err != nil {
				return err
			}
			gameID, err := parseID("game", args[1])
			if err != nil {
				return err
			}
			g, err := fn(ctx, a, seasonID, gameID, args[2:])
			if err != nil {
				return err
			}
			names := teamNames(a.cfg.Teams)
			fmt.Printf("✓ %s @ %s: %s %s\n", names.of(g.AwayTeam), names.of(g.HomeTeam), g.Status, scoreText(g))
			return nil
		}),
	}
}

func gameCommand(configFile *string) *cobra.Command {
	gameRoot := &cobra.Command{
		Use:   "game",
		Short: "Schedule, play and record individual games",
	}

	var venueName, venueAddress, at string
	var capacity int
	venueCmd := gameCmd(configFile, "venue <season> <game>", "Set where and when a game is played", 0,
		func(ctx context.Context, a *app, seasonID, gameID uuid.UUID, _ []string) (*model.Game, error) {
			venue := a.cfg.DefaultVenue
			if venueName != "" {
				venue = model.Venue{Name: venueName, Address: venueAddress, Capacity: capacity}
			}
			when, err := time.Parse("2006-01-02 15:04", at)
			if err != nil {
				return nil, &model.ValidationError{Field: "at", Reason: fmt.Sprintf("%q is not a time, want YYYY-MM-DD HH:MM", at)}
			}
			return a.svc.SetVenueAndTime(ctx, seasonID, gameID, venue, when)
		})
	venueCmd.Flags().StringVar(&venueName, "venue", "", "Venue name (default: the league's default venue)")
	venueCmd.Flags().StringVar(&venueAddress, "address", "", "Venue address")
	venueCmd.Flags().IntVar(&capacity, "capacity", 0, "Venue capacity")
	venueCmd.Flags().StringVar(&at, "at", "", "Kickoff (YYYY-MM-DD HH:MM)")
	_ = venueCmd.MarkFlagRequired("at")

	startCmd := gameCmd(configFile, "start <season> <game>", "Kick off a game", 0,
		func(ctx context.Context, a *app, seasonID, gameID uuid.UUID, _ []string) (*model.Game, error) {
			return a.svc.StartGame(ctx, seasonID, gameID)
		})

	var event model.GameEvent
	var eventType string
	eventCmd := gameCmd(configFile, "event <season> <game>", "Record a goal, card or substitution in a game in progress", 0,
		func(ctx context.Context, a *app, seasonID, gameID uuid.UUID, _ []string) (*model.Game, error) {
			event.Type = model.EventType(eventType)
			return a.svc.AddEvent(ctx, seasonID, gameID, event)
		})
	eventCmd.Flags().StringVar(&eventType, "type", string(model.EventGoal), "goal, own_goal, assist, yellow_card, red_card, substitution or penalty")
	eventCmd.Flags().StringVar(&event.Player, "player", "", "Player id")
	eventCmd.Flags().StringVar(&event.Team, "team", "", "Team id of the player")
	eventCmd.Flags().IntVar(&event.Minute, "minute", 0, "Minute of play (0-120)")
	eventCmd.Flags().StringVar(&event.Description, "description", "", "Free text")
	_ = eventCmd.MarkFlagRequired("player")
	_ = eventCmd.MarkFlagRequired("team")

	scoreCmd := gameCmd(configFile, "score <season> <game> <home> <away>", "Record the score of a game directly", 2,
		func(ctx context.Context, a *app, seasonID, gameID uuid.UUID, args []string) (*model.Game, error) {
			home, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, &model.ValidationError{Field: "home score", Reason: fmt.Sprintf("%q is not a number", args[0])}
			}
			away, err := strconv.Atoi(args[1])
			if err != nil {
				return nil, &model.ValidationError{Field: "away score", Reason: fmt.Sprintf("%q is not a number", args[1])}
			}
			return a.svc.RecordScore(ctx, seasonID, gameID, model.Score{Home: home, Away: away})
		})

	completeCmd := gameCmd(configFile, "complete <season> <game>", "Finish a game in progress", 0,
		func(ctx context.Context, a *app, seasonID, gameID uuid.UUID, _ []string) (*model.Game, error) {
			return a.svc.CompleteGame(ctx, seasonID, gameID)
		})

	cancelCmd := gameCmd(configFile, "cancel <season> <game>", "Cancel a game", 0,
		func(ctx context.Context, a *app, seasonID, gameID uuid.UUID, _ []string) (*model.Game, error) {
			return a.svc.CancelGame(ctx, seasonID, gameID)
		})

	postponeCmd := gameCmd(configFile, "postpone <season> <game>", "Postpone a game; reschedule it later with 'game venue'", 0,
		func(ctx context.Context, a *app, seasonID, gameID uuid.UUID, _ []string) (*model.Game, error) {
			return a.svc.PostponeGame(ctx, seasonID, gameID)
		})

	showCmd := &cobra.Command{
		Use:          "show <season> <game>",
		Short:        "Show a game and its events",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: withApp(configFile, func(ctx context.Context, a *app, args []string) error {
			seasonID, err := parseID("season", args[0])
			if err != nil {
				return err
			}
			gameID, err := parseID("game", args[1])
			if err != nil {
				return err
			}
			g, hatTricks, err := a.svc.Game(ctx, seasonID, gameID)
			if err != nil {
				return err
			}
			printGame(g, hatTricks, teamNames(a.cfg.Teams))
			return nil
		}),
	}

	gameRoot.AddCommand(venueCmd, startCmd, eventCmd, scoreCmd, completeCmd, cancelCmd, postponeCmd, showCmd)
	return gameRoot
}
