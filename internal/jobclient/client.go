package jobclient

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/kurochkinivan/compliance_client/internal/domain"
)

const (
	placeholderPhase   = "Analyzing documents"
	placeholderDetails = "Analysis in progress"
)

// Callbacks notify whichever front end consumes the client. All callbacks
// are invoked outside the client's lock and may call back into it.
type Callbacks struct {
	OnState    func(state domain.State, job *domain.Job)
	OnProgress func(progress domain.Progress, percent int)
	OnNotice   func(notice domain.Notice)
}

// Client owns the life of a single analysis request from file selection
// through report download. At most one job exists at a time; starting a new
// analysis discards the previous one unconditionally.
type Client struct {
	log      *slog.Logger
	api      AnalyzerAPI
	sched    Scheduler
	interval time.Duration
	mapper   *ProgressMapper
	cb       Callbacks

	mu         sync.Mutex
	registry   *Registry
	state      domain.State
	job        *domain.Job
	generation uint64
	cancelTick func()
}

func New(
	log *slog.Logger,
	api AnalyzerAPI,
	sched Scheduler,
	registry *Registry,
	interval time.Duration,
	mapper *ProgressMapper,
	cb Callbacks,
) *Client {
	if mapper == nil {
		mapper = NewProgressMapper(nil)
	}

	return &Client{
		log:      log,
		api:      api,
		sched:    sched,
		registry: registry,
		interval: interval,
		mapper:   mapper,
		cb:       cb,
		state:    domain.StateIdle,
	}
}

func (c *Client) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Job returns a snapshot of the current job, or nil before any submission.
func (c *Client) Job() *domain.Job {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.job == nil {
		return nil
	}

	job := *c.job

	return &job
}

func (c *Client) AddFiles(slotName string, files ...domain.SelectedFile) {
	c.mu.Lock()
	notices := c.registry.AddFiles(slotName, files...)
	c.mu.Unlock()

	for _, n := range notices {
		c.notify(n)
	}
}

func (c *Client) RemoveFile(slotName, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.registry.RemoveFile(slotName, name)
}

// SubmitEnabled reports whether the submit action is currently available:
// every required slot is non-empty and no submission is outstanding.
func (c *Client) SubmitEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == domain.StateSubmitting || c.state == domain.StatePending {
		return false
	}

	return c.registry.SubmitEnabled()
}

// Submit packages the current selection into one outbound request. On
// success the job enters pending and the first status query is scheduled.
// On failure no job comes into existence and the selection is preserved so
// the user can retry without reselecting files.
func (c *Client) Submit(ctx context.Context) {
	c.mu.Lock()

	switch c.state {
	case domain.StateSubmitting, domain.StatePending:
		c.mu.Unlock()
		c.notify(warning("an analysis is already in progress"))
		return

	case domain.StateCompleted, domain.StateError:
		c.mu.Unlock()
		c.notify(warning("start a new analysis before submitting again"))
		return
	}

	if !c.registry.SubmitEnabled() {
		c.mu.Unlock()
		c.notify(warning("select files for every required slot before submitting"))
		return
	}

	selection := c.registry.Selection()
	gen := c.generation
	c.state = domain.StateSubmitting
	c.mu.Unlock()

	c.notifyState(domain.StateSubmitting, nil)

	taskID, err := c.api.Analyze(ctx, selection)

	c.mu.Lock()
	if gen != c.generation {
		// the client was reset while the request was in flight
		c.mu.Unlock()
		return
	}

	if err != nil {
		c.state = domain.StateIdle
		c.mu.Unlock()

		c.log.Error("submission failed", slog.String("err", err.Error()))
		c.notifyState(domain.StateIdle, nil)
		c.notify(warning(reason(err, "failed to submit documents for analysis")))
		return
	}

	job := domain.Job{
		ID:        taskID,
		StartedAt: time.Now(),
		Status:    domain.StatePending,
		Percent:   c.mapper.Percent(""),
	}
	c.job = &job
	c.state = domain.StatePending
	c.scheduleTick(ctx, gen)
	c.mu.Unlock()

	c.log.Info("analysis submitted", slog.String("task_id", taskID))
	c.notifyState(domain.StatePending, &job)
}

// Download retrieves the generated report. Only callable in completed state.
// Failure leaves the job completed so the download can be retried.
func (c *Client) Download(ctx context.Context) ([]byte, string, error) {
	c.mu.Lock()
	if c.state != domain.StateCompleted || c.job == nil {
		c.mu.Unlock()
		return nil, "", errors.New("no completed analysis to download")
	}
	job := *c.job
	c.mu.Unlock()

	data, err := c.api.Download(ctx, job.ID)
	if err != nil {
		c.notify(warning(reason(err, "failed to download the report")))
		return nil, "", err
	}

	return data, job.ReportName(), nil
}

// StartNewAnalysis unconditionally resets the client to idle: the poll timer
// is cancelled, the job and the selection are discarded. In-flight responses
// for the discarded job are ignored when they arrive. Idempotent.
func (c *Client) StartNewAnalysis() {
	c.mu.Lock()
	c.stopTick()
	c.generation++
	c.job = nil
	c.registry.Reset()
	c.state = domain.StateIdle
	c.mu.Unlock()

	c.notifyState(domain.StateIdle, nil)
}

// scheduleTick replaces the single timer handle; timers are never stacked.
// Caller holds c.mu.
func (c *Client) scheduleTick(ctx context.Context, gen uint64) {
	c.stopTick()
	c.cancelTick = c.sched.Schedule(c.interval, func() {
		c.poll(ctx, gen)
	})
}

// stopTick cancels the pending timer so a stale tick cannot resurrect a
// discarded job. Caller holds c.mu.
func (c *Client) stopTick() {
	if c.cancelTick != nil {
		c.cancelTick()
		c.cancelTick = nil
	}
}

// poll performs exactly one status query. The generation check discards
// results that no longer pertain to the current job: a reset may race a
// request that was already sent.
func (c *Client) poll(ctx context.Context, gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.state != domain.StatePending || c.job == nil {
		c.mu.Unlock()
		return
	}
	taskID := c.job.ID
	c.mu.Unlock()

	update, err := c.api.Status(ctx, taskID)

	c.mu.Lock()
	if gen != c.generation || c.state != domain.StatePending || c.job == nil {
		c.mu.Unlock()
		return
	}

	switch {
	case err != nil:
		// transport failure is terminal for this job, no automatic retries
		c.stopTick()
		c.job.ErrorMessage = "lost connection to the analysis service"
		c.terminate(domain.StateError)

		c.log.Error("status query failed", slog.String("task_id", taskID), slog.String("err", err.Error()))

	case update.Status == "completed":
		c.stopTick()
		c.job.Percent = 100
		c.terminate(domain.StateCompleted)

		c.log.Info("analysis completed", slog.String("task_id", taskID))

	case update.Status == "error":
		c.stopTick()
		msg := update.Error
		if msg == "" {
			msg = "analysis failed"
		}
		c.job.ErrorMessage = msg
		c.terminate(domain.StateError)

		c.log.Error("analysis failed", slog.String("task_id", taskID), slog.String("err", msg))

	default:
		// any other status, including absent, keeps the job pending
		if update.Progress != nil {
			c.job.Progress = *update.Progress
		}

		if percent := c.mapper.Percent(c.job.Progress.CurrentPhase); percent > c.job.Percent {
			c.job.Percent = percent
		}

		progress := displayProgress(c.job.Progress)
		percent := c.job.Percent
		c.scheduleTick(ctx, gen)
		c.mu.Unlock()

		if c.cb.OnProgress != nil {
			c.cb.OnProgress(progress, percent)
		}
	}
}

// terminate moves the job into a terminal state and fires callbacks.
// Caller holds c.mu; terminate releases it.
func (c *Client) terminate(state domain.State) {
	c.job.Status = state
	c.state = state
	job := *c.job
	c.mu.Unlock()

	c.notifyState(state, &job)

	if state == domain.StateError && c.cb.OnNotice != nil {
		c.cb.OnNotice(domain.Notice{Severity: domain.SeverityError, Message: job.ErrorMessage})
	}
}

func (c *Client) notifyState(state domain.State, job *domain.Job) {
	if c.cb.OnState != nil {
		c.cb.OnState(state, job)
	}
}

func (c *Client) notify(n domain.Notice) {
	if c.cb.OnNotice != nil {
		c.cb.OnNotice(n)
	}
}

func displayProgress(p domain.Progress) domain.Progress {
	if p.CurrentPhase == "" {
		p.CurrentPhase = placeholderPhase
	}

	if p.Details == "" {
		p.Details = placeholderDetails
	}

	return p
}

// reason prefers the server-supplied explanation over the generic fallback.
func reason(err error, fallback string) string {
	var se ServerError
	if errors.As(err, &se) && se.Detail() != "" {
		return se.Detail()
	}

	return fallback
}
