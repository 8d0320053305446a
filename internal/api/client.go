package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/kurochkinivan/compliance_client/internal/domain"
)

// Client talks to the analysis service over its HTTP contract:
// GET /health, POST /analyze, GET /status/{task_id}, GET /download/{task_id}.
type Client struct {
	log        *slog.Logger
	baseURL    string
	httpClient *http.Client
}

func NewClient(log *slog.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type HealthInfo struct {
	Status string `json:"status"`
}

func (h *HealthInfo) Healthy() bool {
	return h.Status == "healthy"
}

// APIError is a non-success response from the service. Reason carries the
// structured "detail" field when the service supplied one.
type APIError struct {
	StatusCode int
	Reason     string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("analysis service returned %d: %s", e.StatusCode, e.Reason)
	}

	return fmt.Sprintf("analysis service returned %d", e.StatusCode)
}

func (e *APIError) Detail() string {
	return e.Reason
}

func (c *Client) Health(ctx context.Context) (*HealthInfo, error) {
	resp, err := c.get(ctx, "/health")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var health HealthInfo
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}

	return &health, nil
}

// Analyze uploads the selection as one multipart request, each file under
// its slot's form field, and returns the task ID the service assigned.
func (c *Client) Analyze(ctx context.Context, slots map[string][]domain.SelectedFile) (string, error) {
	var body bytes.Buffer

	w := multipart.NewWriter(&body)
	for field, files := range slots {
		for _, f := range files {
			if err := writePart(w, field, f); err != nil {
				return "", err
			}
		}
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize request body: %w", err)
	}

	c.log.Debug("submitting analysis request",
		slog.Int("fields", len(slots)),
		slog.Int("body_size", body.Len()),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send analyze request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeAPIError(resp)
	}

	var ack struct {
		TaskID string `json:"task_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return "", fmt.Errorf("failed to decode analyze response: %w", err)
	}

	if ack.TaskID == "" {
		return "", errors.New("analysis service returned no task_id")
	}

	return ack.TaskID, nil
}

func (c *Client) Status(ctx context.Context, taskID string) (*domain.StatusUpdate, error) {
	resp, err := c.get(ctx, "/status/"+taskID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var payload struct {
		Status   string `json:"status"`
		Progress *struct {
			CurrentPhase string `json:"current_phase"`
			Details      string `json:"details"`
		} `json:"progress"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}

	update := &domain.StatusUpdate{
		Status: payload.Status,
		Error:  payload.Error,
	}
	if payload.Progress != nil {
		update.Progress = &domain.Progress{
			CurrentPhase: payload.Progress.CurrentPhase,
			Details:      payload.Progress.Details,
		}
	}

	return update, nil
}

// Download retrieves the generated artifact. The bytes are treated opaquely.
func (c *Client) Download(ctx context.Context, taskID string) ([]byte, error) {
	resp, err := c.get(ctx, "/download/"+taskID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read report body: %w", err)
	}

	return data, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

func writePart(w *multipart.Writer, field string, f domain.SelectedFile) (err error) {
	part, err := w.CreateFormFile(field, f.Name)
	if err != nil {
		return fmt.Errorf("failed to create form file for %q: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", f.Name, err)
	}
	defer func() { err = errors.Join(err, rc.Close()) }()

	if _, err := io.Copy(part, rc); err != nil {
		return fmt.Errorf("failed to read %q: %w", f.Name, err)
	}

	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Reason = payload.Detail
	}

	return apiErr
}
