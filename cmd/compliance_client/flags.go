package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/kurochkinivan/compliance_client/internal/app"
	"github.com/kurochkinivan/compliance_client/internal/config"
)

var version = "dev"

func cmd() *cli.Command {
	return &cli.Command{
		Name:    "compliance_client",
		Usage:   "Client for the compliance analysis service",
		Version: version,
		Flags:   flags(),
		Commands: []*cli.Command{
			analyzeCmd(),
			statusCmd(),
			downloadCmd(),
			healthCmd(),
			historyCmd(),
		},
	}
}

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Submit documents for analysis and wait for the report",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "primary",
				Aliases:  []string{"p"},
				Usage:    "Reference document `FILE` (repeatable)",
				Required: true,
				Validator: func(paths []string) error {
					for _, p := range paths {
						if err := validateFile(p); err != nil {
							return err
						}
					}
					return nil
				},
			},
			&cli.StringFlag{
				Name:      "secondary",
				Aliases:   []string{"s"},
				Usage:     "Document under review `FILE`",
				Required:  true,
				Validator: validateFile,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := setup(ctx, cmd)
			if err != nil {
				return err
			}

			return a.RunAnalysis(ctx, cmd.StringSlice("primary"), cmd.String("secondary"))
		},
	}
}

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Query the status of a submitted analysis once",
		ArgsUsage: "TASK_ID",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := setup(ctx, cmd)
			if err != nil {
				return err
			}

			taskID := cmd.Args().First()
			if taskID == "" {
				return errors.New("task id is required")
			}

			return a.ShowStatus(ctx, taskID)
		},
	}
}

func downloadCmd() *cli.Command {
	return &cli.Command{
		Name:      "download",
		Usage:     "Download the report of a completed analysis",
		ArgsUsage: "TASK_ID",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := setup(ctx, cmd)
			if err != nil {
				return err
			}

			taskID := cmd.Args().First()
			if taskID == "" {
				return errors.New("task id is required")
			}

			return a.DownloadReport(ctx, taskID)
		},
	}
}

func healthCmd() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check that the analysis service is reachable and healthy",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := setup(ctx, cmd)
			if err != nil {
				return err
			}

			return a.CheckHealth(ctx)
		},
	}
}

func historyCmd() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded analysis runs",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := setup(ctx, cmd)
			if err != nil {
				return err
			}

			return a.ShowHistory()
		},
	}
}

func setup(ctx context.Context, cmd *cli.Command) (*app.App, error) {
	log, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok {
		return nil, errors.New("failed to get logger from context")
	}

	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, err
	}

	return app.New(log, cfg), nil
}

func flags() []cli.Flag {
	var config string

	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Validator:   validateConfig,
			Usage:       "Load configuration from `FILE`",
			Destination: &config,
		},
		&cli.StringFlag{
			Name:    "api-url",
			Usage:   "Set analysis service base URL",
			Value:   "http://localhost:8001",
			Sources: cli.NewValueSourceChain(yaml.YAML("api.base_url", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:    "api-timeout",
			Usage:   "Set analysis service request timeout",
			Value:   30 * time.Second,
			Sources: cli.NewValueSourceChain(yaml.YAML("api.timeout", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:    "poll-interval",
			Usage:   "Set status polling interval",
			Value:   3 * time.Second,
			Sources: cli.NewValueSourceChain(yaml.YAML("polling.interval", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringSliceFlag{
			Name:    "phase-weight",
			Usage:   "Map a phase-label substring to a percentage, e.g. 'report=90' (repeatable)",
			Sources: cli.NewValueSourceChain(yaml.YAML("polling.phase_weights", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "reports-dir",
			Aliases: []string{"r"},
			Usage:   "Set directory to save downloaded reports to",
			Value:   "reports",
			Sources: cli.NewValueSourceChain(yaml.YAML("app.reports_dir", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "history-file",
			Usage:   "Set CSV file analysis runs are recorded in",
			Value:   "history.csv",
			Sources: cli.NewValueSourceChain(yaml.YAML("app.history_file", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.BoolFlag{
			Name:    "strict-pdf",
			Usage:   "Validate that selected files are well-formed PDFs before upload",
			Sources: cli.NewValueSourceChain(yaml.YAML("app.strict_pdf", altsrc.NewStringPtrSourcer(&config))),
		},
	}
}

func validateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%q does not exist", path)
		}
		return fmt.Errorf("failed to stat %q: %w", path, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%q is a directory, not a file", path)
	}

	return nil
}

func validateConfig(config string) error {
	info, err := os.Stat(config)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%q does not exist", config)
		}
		return fmt.Errorf("failed to stat %q: %w", config, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%q is a directory, not a file", config)
	}

	ext := filepath.Ext(info.Name())
	if ext != ".yml" && ext != ".yaml" {
		return fmt.Errorf("invalid extension %q", config)
	}

	return nil
}
