package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"transferdash/internal/core"
	ports "transferdash/internal/sheets"
)

// FileName is the CSV read from the data directory.
const FileName = "transfers.csv"

// Store serves the transfer log from memory or from a CSV file on disk.
// When backed by a file it is re-read on every fetch, so edits show up on the
// next refresh.
type Store struct {
	mu   sync.Mutex
	rows [][]string
	path string
	loc  *time.Location
}

var _ ports.TransferReader = (*Store)(nil)

// New serves a fixed header-first table.
func New(rows [][]string, loc *time.Location) *Store {
	return &Store{rows: cloneRows(rows), loc: orLocal(loc)}
}

// NewFromDir serves base/transfers.csv when it exists and the demo table
// otherwise.
func NewFromDir(base string, loc *time.Location, now time.Time) *Store {
	path := filepath.Join(base, FileName)
	if _, err := os.Stat(path); err == nil {
		return &Store{path: path, loc: orLocal(loc)}
	}
	return New(DemoRows(now), loc)
}

// set replaces the in-memory table.
func (s *Store) set(rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = cloneRows(rows)
}

// Path returns the backing file, or "" for an in-memory table.
func (s *Store) Path() string { return s.path }

func (s *Store) ReadTransfers(ctx context.Context) ([]core.TransferRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.path != "" {
		rows, err := readCSV(s.path)
		if err != nil {
			return nil, err
		}
		return ports.ParseTable(rows, s.loc), nil
	}
	s.mu.Lock()
	rows := cloneRows(s.rows)
	s.mu.Unlock()
	return ports.ParseTable(rows, s.loc), nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", path, ports.ErrNotConfigured)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

// DemoRows builds a small table around now so a fresh checkout has something
// to show in every window.
func DemoRows(now time.Time) [][]string {
	type row struct {
		daysAgo, hour int
		agent, dest   string
	}
	seed := []row{
		{0, 9, "Alice", "Billing"},
		{0, 10, "Bob", "Sales"},
		{0, 11, "Alice", "Sales"},
		{1, 9, "Carol", "Billing"},
		{1, 14, "Alice", "Retention"},
		{2, 10, "Bob", "Billing"},
		{3, 16, "Dave", "Sales"},
		{6, 12, "Carol", "Retention"},
		{9, 11, "Alice", "Billing"},
		{12, 15, "Bob", "Sales"},
		{20, 10, "Dave", "Billing"},
		{35, 13, "Carol", "Sales"},
		{40, 9, "Alice", "Retention"},
	}
	rows := [][]string{append([]string(nil), ports.Columns...)}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for i, r := range seed {
		ts := day.AddDate(0, 0, -r.daysAgo).Add(time.Duration(r.hour) * time.Hour)
		rows = append(rows, []string{
			ts.Format("1/2/2006 15:04:05"),
			r.agent,
			r.dest,
			fmt.Sprintf("Customer %02d", i+1),
			fmt.Sprintf("%d", 80+i*7),
			fmt.Sprintf("%d", 620+i*9),
		})
	}
	return rows
}

func cloneRows(in [][]string) [][]string {
	out := make([][]string, len(in))
	for i, r := range in {
		out[i] = append([]string(nil), r...)
	}
	return out
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
