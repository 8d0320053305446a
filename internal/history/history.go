package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jszwec/csvutil"
)

// Record is one finished analysis run in the local history log.
type Record struct {
	TaskID     string    `csv:"task_id"`
	Status     string    `csv:"status"`
	Primary    string    `csv:"primary_files"`
	Secondary  string    `csv:"secondary_file"`
	StartedAt  time.Time `csv:"started_at"`
	FinishedAt time.Time `csv:"finished_at"`
	Report     string    `csv:"report"`
}

// Append adds a record to the CSV log at path, creating the file and writing
// the header on first use.
func Append(path string, rec *Record) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat history file: %w", err)
	}

	w := csv.NewWriter(f)

	enc := csvutil.NewEncoder(w)
	enc.AutoHeader = info.Size() == 0

	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to encode history record: %w", err)
	}

	w.Flush()

	return w.Error()
}

// Load reads all records from the log. A missing file is an empty history.
func Load(path string) (_ []*Record, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	dec, err := csvutil.NewDecoder(csv.NewReader(f))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	var records []*Record
	for {
		var rec Record

		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return records, fmt.Errorf("failed to decode history record #%d: %w", len(records)+1, err)
		}

		records = append(records, &rec)
	}

	return records, nil
}
