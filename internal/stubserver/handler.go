package stubserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/kurochkinivan/compliance_client/internal/domain"
)

// analysisPhases is the sequence the simulation steps through, in order.
var analysisPhases = []domain.Progress{
	{CurrentPhase: "Extracting text", Details: "Reading the uploaded documents"},
	{CurrentPhase: "Extracting requirements", Details: "Collecting requirements from the reference documents"},
	{CurrentPhase: "Checking compliance", Details: "Reviewing the document against the requirements"},
	{CurrentPhase: "Generating report", Details: "Rendering the report"},
}

type Handler struct {
	log       *slog.Logger
	store     *Store
	stepDelay time.Duration
}

func NewHandler(log *slog.Logger, store *Store, stepDelay time.Duration) *Handler {
	return &Handler{
		log:       log,
		store:     store,
		stepDelay: stepDelay,
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)
	r.Post("/analyze", h.Analyze)
	r.Get("/status/{task_id}", h.Status)
	r.Get("/download/{task_id}", h.Download)

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "healthy",
		"max_file_size":     domain.MaxFileSize,
		"supported_formats": []string{".pdf"},
	})
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(domain.MaxFileSize + 1<<20); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	primary := r.MultipartForm.File["primary"]
	secondary := r.MultipartForm.File["secondary"]

	if len(primary) == 0 || len(secondary) != 1 {
		writeDetail(w, http.StatusBadRequest, "one or more primary files and exactly one secondary file are required")
		return
	}

	for _, header := range append(append([]*multipart.FileHeader{}, primary...), secondary...) {
		if err := validateUpload(header); err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	taskID := uuid.NewString()
	h.store.Create(taskID)

	go h.simulate(taskID, fileNames(primary), secondary[0].Filename)

	h.log.Info("analysis accepted",
		slog.String("task_id", taskID),
		slog.Int("primary_files", len(primary)),
		slog.String("secondary_file", secondary[0].Filename),
	)

	writeJSON(w, http.StatusOK, map[string]string{"task_id": taskID})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	task, ok := h.store.Get(chi.URLParam(r, "task_id"))
	if !ok {
		writeDetail(w, http.StatusNotFound, "task not found")
		return
	}

	payload := map[string]any{"status": string(task.Status)}

	switch task.Status {
	case domain.StatePending:
		if task.Phase != "" {
			payload["progress"] = map[string]string{
				"current_phase": task.Phase,
				"details":       task.Details,
			}
		}
	case domain.StateError:
		payload["error"] = task.Error
	}

	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")

	task, ok := h.store.Get(taskID)
	if !ok || task.Status != domain.StateCompleted {
		writeDetail(w, http.StatusNotFound, "Report not found")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "compliance_report_"+taskID+".pdf"))
	w.Write(task.Report)
}

// simulate walks the task through every phase on a fixed cadence and renders
// the report at the end.
func (h *Handler) simulate(taskID string, primary []string, secondary string) {
	for _, phase := range analysisPhases {
		time.Sleep(h.stepDelay)
		h.store.SetPhase(taskID, phase.CurrentPhase, phase.Details)
	}

	report, err := buildReport(taskID, primary, secondary)
	if err != nil {
		h.log.Error("failed to build report", slog.String("task_id", taskID), slog.String("err", err.Error()))
		h.store.Fail(taskID, "failed to generate the report")
		return
	}

	time.Sleep(h.stepDelay)
	h.store.Complete(taskID, report)

	h.log.Info("simulated analysis completed", slog.String("task_id", taskID))
}

func validateUpload(header *multipart.FileHeader) error {
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		return errors.New("Only PDF files are supported")
	}

	if header.Size > domain.MaxFileSize {
		return fmt.Errorf("%q exceeds the maximum file size", header.Filename)
	}

	return nil
}

func fileNames(headers []*multipart.FileHeader) []string {
	names := make([]string, 0, len(headers))
	for _, h := range headers {
		names = append(names, h.Filename)
	}

	return names
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
