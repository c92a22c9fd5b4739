package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"transferdash/internal/core"
	ports "transferdash/internal/sheets"

	_ "modernc.org/sqlite"
)

// SQLiteRepository serves the transfer log from a local SQLite file.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	loc     *time.Location
}

var _ ports.TransferReader = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, loc *time.Location) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if loc == nil {
		loc = time.Local
	}
	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		loc:     loc,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReadTransfers implements sheets.TransferReader. Stored rows go through the
// same normalization as sheet rows.
func (r *SQLiteRepository) ReadTransfers(ctx context.Context) ([]core.TransferRecord, error) {
	items, err := r.queries.ListTransfers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	rows := make([][]string, 0, len(items)+1)
	rows = append(rows, ports.Columns)
	for _, t := range items {
		rows = append(rows, []string{
			t.Timestamp,
			t.AgentName,
			t.TransferTo,
			t.CustomerName,
			t.ElectricBill,
			t.CreditScore,
		})
	}
	slog.DebugContext(ctx, "Transfers read from SQLite", "rows", len(items))
	return ports.ParseTable(rows, r.loc), nil
}

// Import replaces the stored rows with a header-first table in one
// transaction and returns how many were stored. Blank rows are skipped.
func (r *SQLiteRepository) Import(ctx context.Context, table [][]string) (int, error) {
	if len(table) == 0 {
		return 0, nil
	}
	headers := table[0]
	idx := make([]int, len(ports.Columns))
	for i, c := range ports.Columns {
		idx[i] = ports.IndexOf(headers, c)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteAllTransfers(ctx); err != nil {
		return 0, fmt.Errorf("clear transfers: %w", err)
	}
	n := 0
	for _, row := range table[1:] {
		p := CreateTransferParams{
			Timestamp:    ports.SafeGet(row, idx[0]),
			AgentName:    ports.SafeGet(row, idx[1]),
			TransferTo:   ports.SafeGet(row, idx[2]),
			CustomerName: ports.SafeGet(row, idx[3]),
			ElectricBill: ports.SafeGet(row, idx[4]),
			CreditScore:  ports.SafeGet(row, idx[5]),
		}
		if p == (CreateTransferParams{}) {
			continue
		}
		if _, err := q.CreateTransfer(ctx, p); err != nil {
			return 0, fmt.Errorf("insert transfer: %w", err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	slog.InfoContext(ctx, "Transfers imported into SQLite", "rows", n)
	return n, nil
}

// Count returns the number of stored rows.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.queries.CountTransfers(ctx)
	if err != nil {
		return 0, fmt.Errorf("count transfers: %w", err)
	}
	return n, nil
}
