package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/sumire/triage/internal/client/predictor"
	"github.com/sumire/triage/internal/client/tracker"
	"github.com/sumire/triage/internal/config"
	"github.com/sumire/triage/internal/domain"
	"github.com/sumire/triage/internal/httpclient"
	"github.com/sumire/triage/internal/logger"
	"github.com/sumire/triage/internal/render"
	"github.com/sumire/triage/internal/triage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger.Initialize(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	app := &cli.Command{
		Name:  "triage",
		Usage: "Predict category, severity and assignee for an issue",
		Commands: []*cli.Command{
			newPredictCommand(cfg, os.Stdout),
			newDoctorCommand(cfg, os.Stdout),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newPredictCommand(cfg config.Config, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "predict",
		Aliases: []string{"p"},
		Usage:   "Triage an issue and optionally create it in the tracker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "project",
				Usage: "project key",
				Value: cfg.DefaultProject,
			},
			&cli.StringFlag{
				Name:     "summary",
				Aliases:  []string{"s"},
				Usage:    "issue summary",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "description",
				Aliases:  []string{"d"},
				Usage:    "issue description",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "create",
				Usage: "create the issue in the configured tracker after predicting",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the result as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			creator, err := tracker.New(cfg)
			if err != nil {
				return err
			}
			client := predictor.NewClient(cfg.PredictURL, httpclient.New(cfg.RemoteTimeout, cfg.PredictAPIToken))
			ctrl := triage.NewController(client, creator, cfg.DefaultProject, cfg.RemoteTimeout)

			ctrl.EditField(domain.FieldProject, cmd.String("project"))
			ctrl.EditField(domain.FieldSummary, cmd.String("summary"))
			ctrl.EditField(domain.FieldDescription, cmd.String("description"))

			if !ctrl.SubmitPrediction(ctx) {
				_, err := triage.BuildPredictionRequest(ctrl.State().Draft)
				return fmt.Errorf("cannot submit prediction: %w", err)
			}
			if err := ctrl.Wait(ctx); err != nil {
				return err
			}

			if cmd.Bool("create") && ctrl.State().Phase == domain.PhasePredicted {
				if !ctrl.SubmitCreation(ctx) {
					return fmt.Errorf("cannot submit issue creation")
				}
				if err := ctrl.Wait(ctx); err != nil {
					return err
				}
			}

			state := ctrl.State()
			if cmd.Bool("json") {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Draft domain.IssueDraft `json:"draft"`
					View  triage.View       `json:"view"`
				}{state.Draft, triage.Project(state)})
			}

			render.View(out, state.Draft, triage.Project(state))
			if state.Phase == domain.PhasePredictionFailed {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func newDoctorCommand(cfg config.Config, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "Check the prediction service and tracker configuration",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ok := color.New(color.FgGreen).SprintFunc()
			bad := color.New(color.FgRed).SprintFunc()

			healthy := true
			client := predictor.NewClient(cfg.PredictURL, httpclient.New(cfg.RemoteTimeout, cfg.PredictAPIToken))
			h, err := client.Health(ctx)
			if err != nil {
				healthy = false
				fmt.Fprintf(out, "%s prediction service %s: %v\n", bad("✗"), cfg.PredictURL, err)
			} else {
				fmt.Fprintf(out, "%s prediction service %s: %s (model %s)\n", ok("✓"), cfg.PredictURL, h.Status, h.ModelVersion)
			}

			if _, err := tracker.New(cfg); err != nil {
				healthy = false
				fmt.Fprintf(out, "%s tracker %q: %v\n", bad("✗"), cfg.Tracker.Provider, err)
			} else if cfg.Tracker.Provider == config.TrackerNone {
				fmt.Fprintf(out, "%s tracker: not configured, issue creation disabled\n", bad("!"))
			} else {
				fmt.Fprintf(out, "%s tracker: %s\n", ok("✓"), cfg.Tracker.Provider)
			}

			if !healthy {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}
