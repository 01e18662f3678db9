package variantlog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("parse log: %v", err)
	}
	return rows
}

func TestRecordWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "color-variants.csv")
	log := NewCSVLog(path)
	ts := time.Date(2026, 3, 4, 5, 6, 7, 890_000_000, time.UTC)

	if err := log.EnsureHeader(); err != nil {
		t.Fatal(err)
	}
	rec := Record{
		Slug:            "atlas-sofa",
		ColorName:       "Navy Blue",
		Hex:             "#1F2A44",
		OutputURL:       "/images/products/atlas-sofa/atlas-sofa-navy-blue.jpg",
		QAPass:          true,
		DeltaE:          12.346,
		OutsideMaskDiff: 3.2,
		Timestamp:       ts,
	}
	if err := log.Record(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	rec.OutputURL = ""
	rec.QAPass = false
	if err := NewCSVLog(path).Record(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	rows := readRows(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d: %v", len(rows), rows)
	}
	if strings.Join(rows[0], ",") != "slug,colorName,hex,output_url,qa_pass,deltaE,outsideMaskDiff,timestamp" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	want := []string{"atlas-sofa", "Navy Blue", "#1F2A44", "/images/products/atlas-sofa/atlas-sofa-navy-blue.jpg", "true", "12.35", "3.20", "2026-03-04T05:06:07.890Z"}
	if strings.Join(rows[1], "|") != strings.Join(want, "|") {
		t.Fatalf("row = %v, want %v", rows[1], want)
	}
	if rows[2][3] != "" || rows[2][4] != "false" {
		t.Fatalf("review row should have empty url and false pass: %v", rows[2])
	}
}

func TestRecordStampsMissingTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	log := NewCSVLog(path)
	log.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	if err := log.Record(context.Background(), Record{Slug: "a"}); err != nil {
		t.Fatal(err)
	}
	rows := readRows(t, path)
	if rows[1][7] != "2026-01-01T00:00:00.000Z" {
		t.Fatalf("unexpected timestamp %q", rows[1][7])
	}
}

func TestConcurrentRecordsDoNotInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	log := NewCSVLog(path)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := Record{Slug: fmt.Sprintf("slug-%d", i), ColorName: "Color, with comma", QAPass: true}
			if err := log.Record(context.Background(), rec); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()
	rows := readRows(t, path)
	if len(rows) != 21 {
		t.Fatalf("expected 21 rows, got %d", len(rows))
	}
	for _, row := range rows[1:] {
		if len(row) != len(Header) || row[1] != "Color, with comma" {
			t.Fatalf("corrupt row %v", row)
		}
	}
}

type recorderFunc func(context.Context, Record) error

func (f recorderFunc) Record(ctx context.Context, rec Record) error { return f(ctx, rec) }

func TestMultiFansOutAndJoinsErrors(t *testing.T) {
	var got []string
	boom := errors.New("boom")
	m := Multi{
		recorderFunc(func(_ context.Context, r Record) error { got = append(got, "a:"+r.Slug); return nil }),
		nil,
		recorderFunc(func(context.Context, Record) error { return boom }),
		recorderFunc(func(_ context.Context, r Record) error { got = append(got, "c:"+r.Slug); return nil }),
	}
	err := m.Record(context.Background(), Record{Slug: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if strings.Join(got, ",") != "a:x,c:x" {
		t.Fatalf("unexpected fan-out %v", got)
	}
}

func TestHeaderlessLogGainsHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	legacy := "foo-slug,Navy,#1F2A44,,false,1.00,2.00,2026-01-01T00:00:00.000Z\n"
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}
	log := NewCSVLog(path)
	for i := 0; i < 2; i++ {
		if err := log.Record(context.Background(), Record{Slug: "bar-slug"}); err != nil {
			t.Fatal(err)
		}
	}
	rows := readRows(t, path)
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d: %v", len(rows), rows)
	}
	if strings.Join(rows[0], ",") != strings.Join(Header, ",") {
		t.Fatalf("header not first: %v", rows[0])
	}
	if rows[1][0] != "foo-slug" || rows[3][0] != "bar-slug" {
		t.Fatalf("rows out of order: %v", rows)
	}
}

func TestExistingHeaderIsNotRepeated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	if err := NewCSVLog(path).Record(context.Background(), Record{Slug: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := NewCSVLog(path).Record(context.Background(), Record{Slug: "b"}); err != nil {
		t.Fatal(err)
	}
	rows := readRows(t, path)
	if len(rows) != 3 || rows[1][0] != "a" || rows[2][0] != "b" {
		t.Fatalf("unexpected rows %v", rows)
	}
}
