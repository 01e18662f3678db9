// Package variantlog records one row per variant attempt in the append-only
// CSV log the storefront team audits.
package variantlog

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shop4me/ARVA-sub000/internal/fileutil"
)

// Outcome is how an attempt ended.
type Outcome string

const (
	OutcomePublished   Outcome = "published"
	OutcomeSkipped     Outcome = "skipped"
	OutcomeNeedsReview Outcome = "needs_review"
)

// TimestampLayout is ISO 8601 with milliseconds in UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Header is the first line of the CSV log.
var Header = []string{"slug", "colorName", "hex", "output_url", "qa_pass", "deltaE", "outsideMaskDiff", "timestamp"}

// Record is one variant attempt. Outcome and RunID are not part of the CSV.
type Record struct {
	Slug            string
	ColorName       string
	Hex             string
	OutputURL       string
	QAPass          bool
	DeltaE          float64
	OutsideMaskDiff float64
	Timestamp       time.Time
	Outcome         Outcome
	RunID           string
}

// Row renders the CSV columns of r.
func (r Record) Row() []string {
	return []string{
		r.Slug,
		r.ColorName,
		r.Hex,
		r.OutputURL,
		strconv.FormatBool(r.QAPass),
		strconv.FormatFloat(r.DeltaE, 'f', 2, 64),
		strconv.FormatFloat(r.OutsideMaskDiff, 'f', 2, 64),
		r.Timestamp.UTC().Format(TimestampLayout),
	}
}

// Recorder persists variant records.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// CSVLog appends records to a CSV file. Appends are serialized so rows never
// interleave when pairs run concurrently.
type CSVLog struct {
	mu        sync.Mutex
	path      string
	now       func() time.Time
	hasHeader bool
}

// NewCSVLog returns a log writing to path.
func NewCSVLog(path string) *CSVLog {
	return &CSVLog{path: path, now: time.Now}
}

// Path returns the log location.
func (l *CSVLog) Path() string { return l.path }

// EnsureHeader writes the header line unless the file already carries one.
func (l *CSVLog) EnsureHeader() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ensureHeaderLocked()
}

func (l *CSVLog) ensureHeaderLocked() error {
	if l.hasHeader {
		return nil
	}
	first, err := readFirstLine(l.path)
	switch {
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("read variant log: %w", err)
	case first == strings.Join(Header, ","):
	case first == "":
		if err := l.appendRows([][]string{Header}); err != nil {
			return err
		}
	default:
		if err := l.prependHeader(); err != nil {
			return err
		}
	}
	l.hasHeader = true
	return nil
}

// readFirstLine returns the first line of path without its line ending.
func readFirstLine(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	line, err := bufio.NewReader(file).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// prependHeader rewrites a headerless log with the header as its first line.
func (l *CSVLog) prependHeader() error {
	src, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open variant log: %w", err)
	}
	defer src.Close()
	err = fileutil.WriteAtomic(l.path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.WriteAll([][]string{Header}); err != nil {
			return err
		}
		_, err := io.Copy(w, src)
		return err
	})
	if err != nil {
		return fmt.Errorf("add variant log header: %w", err)
	}
	return nil
}

// Record appends rec, stamping it with the current time when unset.
func (l *CSVLog) Record(_ context.Context, rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = l.now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ensureHeaderLocked(); err != nil {
		return err
	}
	return l.appendRows([][]string{rec.Row()})
}

func (l *CSVLog) appendRows(rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create variant log dir: %w", err)
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open variant log: %w", err)
	}
	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		_ = file.Close()
		return fmt.Errorf("append variant log: %w", err)
	}
	return file.Close()
}

// Multi fans a record out to every recorder, returning the joined errors.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, rec Record) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Record(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
