package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/kurochkinivan/compliance_client/internal/api"
	"github.com/kurochkinivan/compliance_client/internal/config"
	"github.com/kurochkinivan/compliance_client/internal/domain"
	"github.com/kurochkinivan/compliance_client/internal/history"
	"github.com/kurochkinivan/compliance_client/internal/jobclient"
)

type App struct {
	log *slog.Logger
	cfg *config.Config
}

func New(log *slog.Logger, cfg *config.Config) *App {
	return &App{
		log: log,
		cfg: cfg,
	}
}

// RunAnalysis drives one analysis end to end: health check, file selection,
// submission, polling to a terminal state and report download.
func (a *App) RunAnalysis(ctx context.Context, primaryPaths []string, secondaryPath string) error {
	a.log.InfoContext(ctx, "starting analysis",
		slog.String("api_url", a.cfg.API.BaseURL),
		slog.Duration("poll_interval", a.cfg.Polling.Interval),
		slog.Int("primary_files", len(primaryPaths)),
	)

	apiClient := api.NewClient(a.log, a.cfg.API.BaseURL, a.cfg.API.Timeout)

	a.checkHealth(ctx, apiClient)

	done := make(chan domain.Job, 1)

	client := jobclient.New(
		a.log,
		apiClient,
		jobclient.NewTimerScheduler(),
		jobclient.NewRegistry(domain.DefaultSlots()),
		a.cfg.Polling.Interval,
		jobclient.NewProgressMapper(a.phaseWeights()),
		jobclient.Callbacks{
			OnState: func(state domain.State, job *domain.Job) {
				if state.Terminal() && job != nil {
					select {
					case done <- *job:
					default:
					}
				}
			},
			OnProgress: func(p domain.Progress, percent int) {
				a.log.InfoContext(ctx, "analysis in progress",
					slog.String("phase", p.CurrentPhase),
					slog.String("details", p.Details),
					slog.Int("percent", percent),
				)
			},
			OnNotice: a.logNotice(ctx),
		},
	)

	for _, path := range primaryPaths {
		if err := a.addPath(client, domain.SlotPrimary, path); err != nil {
			return err
		}
	}

	if err := a.addPath(client, domain.SlotSecondary, secondaryPath); err != nil {
		return err
	}

	if !client.SubmitEnabled() {
		return errors.New("selection incomplete: every required slot needs at least one valid PDF")
	}

	client.Submit(ctx)

	if client.State() == domain.StateIdle {
		return errors.New("submission was rejected by the analysis service")
	}

	select {
	case <-ctx.Done():
		client.StartNewAnalysis()
		return ctx.Err()

	case job := <-done:
		return a.finish(ctx, client, &job, primaryPaths, secondaryPath)
	}
}

func (a *App) finish(
	ctx context.Context,
	client *jobclient.Client,
	job *domain.Job,
	primaryPaths []string,
	secondaryPath string,
) error {
	rec := &history.Record{
		TaskID:     job.ID,
		Status:     string(job.Status),
		Primary:    joinNames(primaryPaths),
		Secondary:  filepath.Base(secondaryPath),
		StartedAt:  job.StartedAt,
		FinishedAt: time.Now(),
	}

	if job.Status == domain.StateError {
		a.appendHistory(ctx, rec)
		return fmt.Errorf("analysis failed: %s", job.ErrorMessage)
	}

	data, name, err := client.Download(ctx)
	if err != nil {
		return fmt.Errorf("failed to download the report: %w", err)
	}

	path, err := a.saveReport(name, data)
	if err != nil {
		return err
	}

	rec.Report = path
	a.appendHistory(ctx, rec)

	a.log.InfoContext(ctx, "report saved", slog.String("path", path))

	return nil
}

// ShowStatus queries a task once and prints the result.
func (a *App) ShowStatus(ctx context.Context, taskID string) error {
	apiClient := api.NewClient(a.log, a.cfg.API.BaseURL, a.cfg.API.Timeout)

	update, err := apiClient.Status(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to query status: %w", err)
	}

	fmt.Printf("status: %s\n", update.Status)

	if update.Progress != nil {
		fmt.Printf("phase: %s (%s)\n", update.Progress.CurrentPhase, update.Progress.Details)
	}

	if update.Error != "" {
		fmt.Printf("error: %s\n", update.Error)
	}

	return nil
}

// DownloadReport retrieves a finished task's report into the reports directory.
func (a *App) DownloadReport(ctx context.Context, taskID string) error {
	apiClient := api.NewClient(a.log, a.cfg.API.BaseURL, a.cfg.API.Timeout)

	data, err := apiClient.Download(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to download the report: %w", err)
	}

	job := domain.Job{ID: taskID}

	path, err := a.saveReport(job.ReportName(), data)
	if err != nil {
		return err
	}

	fmt.Println(path)

	return nil
}

// CheckHealth is the hard variant used by the health subcommand.
func (a *App) CheckHealth(ctx context.Context) error {
	apiClient := api.NewClient(a.log, a.cfg.API.BaseURL, a.cfg.API.Timeout)

	health, err := apiClient.Health(ctx)
	if err != nil {
		return fmt.Errorf("analysis service is unreachable: %w", err)
	}

	if !health.Healthy() {
		return fmt.Errorf("analysis service reported status %q", health.Status)
	}

	fmt.Println("analysis service is healthy")

	return nil
}

func (a *App) ShowHistory() error {
	records, err := history.Load(a.cfg.App.HistoryFile)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("no recorded analyses")
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%s  %-9s  %s + %s  %s\n", rec.TaskID, rec.Status, rec.Primary, rec.Secondary, rec.Report)
	}

	return nil
}

// checkHealth is the soft variant used before an analysis run: a failure is
// reported but does not block submission.
func (a *App) checkHealth(ctx context.Context, client *api.Client) {
	health, err := client.Health(ctx)

	switch {
	case err != nil:
		a.log.WarnContext(ctx, "analysis service health check failed", slog.String("err", err.Error()))
	case !health.Healthy():
		a.log.WarnContext(ctx, "analysis service is not healthy", slog.String("status", health.Status))
	default:
		a.log.InfoContext(ctx, "analysis service is healthy")
	}
}

func (a *App) addPath(client *jobclient.Client, slot, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", path, err)
	}

	if a.cfg.App.StrictPDF {
		if err := pdfapi.ValidateFile(path, nil); err != nil {
			return fmt.Errorf("%q is not a well-formed PDF: %w", path, err)
		}
	}

	client.AddFiles(slot, domain.SelectedFile{
		Name: filepath.Base(path),
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	})

	return nil
}

func (a *App) saveReport(name string, data []byte) (string, error) {
	if err := os.MkdirAll(a.cfg.App.ReportsDirectory, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	path := filepath.Join(a.cfg.App.ReportsDirectory, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}

func (a *App) appendHistory(ctx context.Context, rec *history.Record) {
	if a.cfg.App.HistoryFile == "" {
		return
	}

	if err := history.Append(a.cfg.App.HistoryFile, rec); err != nil {
		a.log.WarnContext(ctx, "failed to record history", slog.String("err", err.Error()))
	}
}

func (a *App) logNotice(ctx context.Context) func(domain.Notice) {
	return func(n domain.Notice) {
		switch n.Severity {
		case domain.SeverityError:
			a.log.ErrorContext(ctx, n.Message)
		case domain.SeverityWarning:
			a.log.WarnContext(ctx, n.Message)
		default:
			a.log.InfoContext(ctx, n.Message)
		}
	}
}

func (a *App) phaseWeights() []jobclient.PhaseWeight {
	weights := make([]jobclient.PhaseWeight, 0, len(a.cfg.Polling.PhaseWeights))
	for _, w := range a.cfg.Polling.PhaseWeights {
		weights = append(weights, jobclient.PhaseWeight{Match: w.Match, Percent: w.Percent})
	}

	return weights
}

func joinNames(paths []string) string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}

	return strings.Join(names, ";")
}
