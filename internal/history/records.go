package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shop4me/ARVA-sub000/internal/catalog"
	"github.com/shop4me/ARVA-sub000/internal/variantlog"
)

// Entry is a persisted variant record.
type Entry struct {
	ID int64
	variantlog.Record
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Slug    string
	Color   string
	RunID   string
	Outcome variantlog.Outcome
	Limit   int
}

const selectColumns = `id, run_id, slug, color_name, hex, outcome, output_url, qa_pass, delta_e, outside_mask_diff, recorded_at`

// Record inserts rec. It satisfies variantlog.Recorder.
func (s *Store) Record(ctx context.Context, rec variantlog.Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}
	outcome := rec.Outcome
	if outcome == "" {
		outcome = variantlog.OutcomeNeedsReview
		if rec.QAPass {
			outcome = variantlog.OutcomePublished
		}
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `INSERT INTO variant_records
            (run_id, slug, color_name, color_slug, hex, outcome, output_url, qa_pass, delta_e, outside_mask_diff, recorded_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.RunID,
			rec.Slug,
			rec.ColorName,
			catalog.ColorSlug(rec.ColorName),
			rec.Hex,
			string(outcome),
			rec.OutputURL,
			boolToInt(rec.QAPass),
			rec.DeltaE,
			rec.OutsideMaskDiff,
			rec.Timestamp.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert variant record: %w", err)
		}
		return nil
	})
}

// Latest returns the newest record for a slug and color, matched by color slug.
// The bool is false when nothing has been recorded.
func (s *Store) Latest(ctx context.Context, slug, colorName string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM variant_records WHERE slug = ? AND color_slug = ? ORDER BY id DESC LIMIT 1`,
		slug, catalog.ColorSlug(colorName),
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

// List returns records newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Slug != "" {
		clauses = append(clauses, "slug = ?")
		args = append(args, filter.Slug)
	}
	if filter.Color != "" {
		clauses = append(clauses, "color_slug = ?")
		args = append(args, catalog.ColorSlug(filter.Color))
	}
	if filter.RunID != "" {
		clauses = append(clauses, "run_id = ?")
		args = append(args, filter.RunID)
	}
	if filter.Outcome != "" {
		clauses = append(clauses, "outcome = ?")
		args = append(args, string(filter.Outcome))
	}

	query := `SELECT ` + selectColumns + ` FROM variant_records`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list variant records: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variant records: %w", err)
	}
	return entries, nil
}

// Stats counts records by outcome.
func (s *Store) Stats(ctx context.Context) (map[variantlog.Outcome]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM variant_records GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("count variant records: %w", err)
	}
	defer rows.Close()

	stats := make(map[variantlog.Outcome]int)
	for rows.Next() {
		var (
			outcome string
			count   int
		)
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		stats[variantlog.Outcome(outcome)] = count
	}
	return stats, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		entry      Entry
		outcome    string
		qaPass     int
		recordedAt string
	)
	err := row.Scan(
		&entry.ID,
		&entry.RunID,
		&entry.Slug,
		&entry.ColorName,
		&entry.Hex,
		&outcome,
		&entry.OutputURL,
		&qaPass,
		&entry.DeltaE,
		&entry.OutsideMaskDiff,
		&recordedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan variant record: %w", err)
	}
	entry.Outcome = variantlog.Outcome(outcome)
	entry.QAPass = qaPass != 0
	if ts, parseErr := time.Parse(time.RFC3339Nano, recordedAt); parseErr == nil {
		entry.Timestamp = ts
	}
	return entry, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
