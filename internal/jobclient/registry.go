package jobclient

import (
	"fmt"
	"slices"

	"github.com/kurochkinivan/compliance_client/internal/domain"
)

// Registry validates and tracks the files chosen for each slot before
// submission. It is not safe for concurrent use; Client serializes access.
type Registry struct {
	slots map[string]*slot
}

type slot struct {
	def   domain.SlotDef
	files []domain.SelectedFile
}

func NewRegistry(defs []domain.SlotDef) *Registry {
	if len(defs) == 0 {
		defs = domain.DefaultSlots()
	}

	slots := make(map[string]*slot, len(defs))
	for _, def := range defs {
		slots[def.Name] = &slot{def: def}
	}

	return &Registry{slots: slots}
}

// AddFiles inserts valid candidates preserving order. Invalid candidates are
// skipped and reported as notices, never as errors: a rejected file leaves
// the slot unchanged.
func (r *Registry) AddFiles(slotName string, files ...domain.SelectedFile) []domain.Notice {
	s := r.slot(slotName)

	var notices []domain.Notice
	for _, f := range files {
		if err := f.Validate(); err != nil {
			notices = append(notices, warning(err.Error()))
			continue
		}

		if s.contains(f.Name) {
			notices = append(notices, warning(fmt.Sprintf("%q is already selected", f.Name)))
			continue
		}

		if s.def.MaxFiles > 0 && len(s.files) >= s.def.MaxFiles {
			notices = append(notices, warning(fmt.Sprintf("slot %q accepts at most %d file(s)", s.def.Name, s.def.MaxFiles)))
			continue
		}

		s.files = append(s.files, f)
	}

	return notices
}

// RemoveFile removes a file by name. Removing an absent name is a no-op.
func (r *Registry) RemoveFile(slotName, name string) {
	s := r.slot(slotName)

	s.files = slices.DeleteFunc(s.files, func(f domain.SelectedFile) bool {
		return f.Name == name
	})
}

func (r *Registry) Reset() {
	for _, s := range r.slots {
		s.files = nil
	}
}

// SubmitEnabled reports whether every required slot holds at least one file.
func (r *Registry) SubmitEnabled() bool {
	for _, s := range r.slots {
		if s.def.Required && len(s.files) == 0 {
			return false
		}
	}

	return true
}

func (r *Registry) Files(slotName string) []domain.SelectedFile {
	return slices.Clone(r.slot(slotName).files)
}

// Selection groups the current files by multipart form field for submission.
// Empty slots are omitted.
func (r *Registry) Selection() map[string][]domain.SelectedFile {
	selection := make(map[string][]domain.SelectedFile, len(r.slots))
	for _, s := range r.slots {
		if len(s.files) > 0 {
			selection[s.def.Field] = slices.Clone(s.files)
		}
	}

	return selection
}

// slot panics on unknown names: slot definitions are fixed at construction,
// a miss is a programmer error.
func (r *Registry) slot(name string) *slot {
	s, ok := r.slots[name]
	if !ok {
		panic(fmt.Sprintf("jobclient: unknown slot %q", name))
	}

	return s
}

func (s *slot) contains(name string) bool {
	return slices.ContainsFunc(s.files, func(f domain.SelectedFile) bool {
		return f.Name == name
	})
}

func warning(msg string) domain.Notice {
	return domain.Notice{Severity: domain.SeverityWarning, Message: msg}
}
