package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
)

type Config struct {
	App
	API
	Polling
}

type App struct {
	ReportsDirectory string
	HistoryFile      string
	StrictPDF        bool
}

type API struct {
	BaseURL string
	Timeout time.Duration
}

type Polling struct {
	Interval     time.Duration
	PhaseWeights []PhaseWeight
}

// PhaseWeight maps a phase-label substring to a completion percentage.
type PhaseWeight struct {
	Match   string
	Percent int
}

func Load(cmd *cli.Command) (*Config, error) {
	weights, err := parsePhaseWeights(cmd.StringSlice("phase-weight"))
	if err != nil {
		return nil, err
	}

	return &Config{
		App: App{
			ReportsDirectory: cmd.String("reports-dir"),
			HistoryFile:      cmd.String("history-file"),
			StrictPDF:        cmd.Bool("strict-pdf"),
		},
		API: API{
			BaseURL: cmd.String("api-url"),
			Timeout: cmd.Duration("api-timeout"),
		},
		Polling: Polling{
			Interval:     cmd.Duration("poll-interval"),
			PhaseWeights: weights,
		},
	}, nil
}

// parsePhaseWeights parses "substring=percent" pairs.
func parsePhaseWeights(pairs []string) ([]PhaseWeight, error) {
	weights := make([]PhaseWeight, 0, len(pairs))
	for _, pair := range pairs {
		match, value, ok := strings.Cut(pair, "=")
		if !ok || match == "" {
			return nil, fmt.Errorf("invalid phase weight %q, expected substring=percent", pair)
		}

		percent, err := strconv.Atoi(value)
		if err != nil || percent < 0 || percent > 100 {
			return nil, fmt.Errorf("invalid percentage in phase weight %q", pair)
		}

		weights = append(weights, PhaseWeight{Match: match, Percent: percent})
	}

	return weights, nil
}
