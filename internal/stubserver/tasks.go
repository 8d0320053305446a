package stubserver

import (
	"sync"
	"time"

	"github.com/kurochkinivan/compliance_client/internal/domain"
)

// Task is one simulated analysis held in memory.
type Task struct {
	ID        string
	Status    domain.State
	Phase     string
	Details   string
	Error     string
	Report    []byte
	CreatedAt time.Time
}

type Store struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

func NewStore() *Store {
	return &Store{
		tasks: make(map[string]*Task),
	}
}

func (s *Store) Create(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[id] = &Task{
		ID:        id,
		Status:    domain.StatePending,
		CreatedAt: time.Now(),
	}
}

// Get returns a snapshot of the task, so callers never observe a task
// mutated mid-read by the simulation goroutine.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}

	return *t, true
}

func (s *Store) SetPhase(id, phase, details string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tasks[id]; ok && t.Status == domain.StatePending {
		t.Phase = phase
		t.Details = details
	}
}

func (s *Store) Complete(id string, report []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tasks[id]; ok {
		t.Status = domain.StateCompleted
		t.Report = report
	}
}

func (s *Store) Fail(id, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tasks[id]; ok {
		t.Status = domain.StateError
		t.Error = msg
	}
}
