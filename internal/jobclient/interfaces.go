package jobclient

import (
	"context"
	"time"

	"github.com/kurochkinivan/compliance_client/internal/domain"
)

type AnalyzerAPI interface {
	Analyze(ctx context.Context, slots map[string][]domain.SelectedFile) (taskID string, err error)
	Status(ctx context.Context, taskID string) (*domain.StatusUpdate, error)
	Download(ctx context.Context, taskID string) ([]byte, error)
}

// Scheduler defers fn by d and returns a cancel func. Cancelling prevents
// fn from firing but does not interrupt an fn that already started.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func())
}

// ServerError is implemented by transport errors that carry a
// server-supplied reason suitable for showing to the user.
type ServerError interface {
	error
	Detail() string
}
