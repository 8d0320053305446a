package domain

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// MaxFileSize is the per-file upload ceiling enforced before any network call.
const MaxFileSize = 50 << 20

type SelectedFile struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

func (f *SelectedFile) Validate() error {
	if !strings.EqualFold(filepath.Ext(f.Name), ".pdf") {
		return fmt.Errorf("%q is not a PDF file", f.Name)
	}

	if f.Size > MaxFileSize {
		return fmt.Errorf("%q exceeds the %d MiB limit", f.Name, MaxFileSize>>20)
	}

	return nil
}
