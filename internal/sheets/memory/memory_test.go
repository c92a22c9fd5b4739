package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"transferdash/internal/core"
	ports "transferdash/internal/sheets"
)

func TestStore_ReadTransfers(t *testing.T) {
	s := New([][]string{
		{"Timestamp", "Agent Name", "Transfer to:"},
		{"3/4/2024 9:00:00", "A", "X"},
	}, time.UTC)
	got, err := s.ReadTransfers(context.Background())
	if err != nil || len(got) != 1 || got[0].AgentName != "A" {
		t.Fatalf("unexpected read: %+v, %v", got, err)
	}

	s.set([][]string{{"Timestamp"}})
	got, _ = s.ReadTransfers(context.Background())
	if len(got) != 0 {
		t.Fatalf("expected replaced table to be empty, got %d", len(got))
	}
}

func TestNewFromDir_DemoWhenFileMissing(t *testing.T) {
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	s := NewFromDir(t.TempDir(), time.UTC, now)
	if s.Path() != "" {
		t.Fatalf("expected in-memory demo, got path %q", s.Path())
	}
	records, err := s.ReadTransfers(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	snap := core.Aggregate(records, now)
	if snap.Empty || snap.Count(core.WindowToday) != 3 || snap.Skipped != 0 {
		t.Fatalf("demo should populate today: total=%d today=%d skipped=%d",
			snap.Total, snap.Count(core.WindowToday), snap.Skipped)
	}
}

func TestNewFromDir_ReadsCSVOnEveryFetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	mustWrite := func(content string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	mustWrite("Timestamp,Agent Name,Transfer to:\n3/4/2024 9:00:00,A,X\n")

	s := NewFromDir(dir, time.UTC, time.Now())
	if s.Path() != path {
		t.Fatalf("path = %q", s.Path())
	}
	got, err := s.ReadTransfers(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("first read: %d, %v", len(got), err)
	}

	mustWrite("Timestamp,Agent Name,Transfer to:\n3/4/2024 9:00:00,A,X\n3/4/2024 10:00:00,B\n")
	got, err = s.ReadTransfers(context.Background())
	if err != nil || len(got) != 2 {
		t.Fatalf("second read: %d, %v", len(got), err)
	}
	if got[1].TransferTo != "" {
		t.Errorf("short csv row should be padded: %+v", got[1])
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ReadTransfers(context.Background()); !errors.Is(err, ports.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured once the file is gone, got %v", err)
	}
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(nil, time.UTC).ReadTransfers(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
