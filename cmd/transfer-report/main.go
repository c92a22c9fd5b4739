// Command transfer-report fetches the transfer log once and writes the XLSX
// report. With -import it loads a CSV export into the SQLite store first.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"time"

	"transferdash/internal/backend"
	"transferdash/internal/cli"
	"transferdash/internal/config"
	"transferdash/internal/core"
	"transferdash/internal/log"
	"transferdash/internal/report"
)

func main() {
	out := flag.String("out", "", "output file (default transfers-YYYYMMDD-HHMM.xlsx)")
	importCSV := flag.String("import", "", "CSV file to import into the SQLite store before reporting")
	flag.Parse()

	cli.LoadEnvFile()
	var overrides []func(*config.Config)
	if *importCSV != "" {
		// An import reports from the SQLite store regardless of DATA_BACKEND.
		overrides = append(overrides, useSQLite)
	}
	cfg, err := cli.LoadAndValidateConfig(overrides...)
	if err != nil {
		cli.SetupLogger("info", "text").Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat).WithComponent(log.ComponentReport)

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := run(ctx, cfg, logger, *importCSV, *out); err != nil {
		logger.Error("Report failed", log.FieldError, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger, importPath, out string) error {
	loc := cfg.Location()

	if importPath != "" {
		n, err := importFile(ctx, cfg, logger, importPath)
		if err != nil {
			return err
		}
		logger.Info("Imported transfers", "file", importPath, "rows", n)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	source, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer source.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()
	records, err := source.Backend.ReadTransfers(fetchCtx)
	if err != nil {
		return fmt.Errorf("fetch transfers: %w", err)
	}

	now := time.Now().In(loc)
	snap := core.Aggregate(records, now)
	if out == "" {
		out = "transfers-" + now.Format("20060102-1504") + ".xlsx"
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := report.Write(f, snap, now); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", out, err)
	}

	logger.Info("Report written", "file", out, log.FieldTotal, snap.Total, log.FieldSkipped, snap.Skipped)
	return nil
}

func importFile(ctx context.Context, cfg *config.Config, logger *log.Logger, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	table, err := r.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	repo, err := cli.InitSQLite(logger, cfg.SQLiteDBPath, cfg.Location())
	if err != nil {
		return 0, err
	}
	defer repo.Close()

	n, err := repo.Import(ctx, table)
	if err != nil {
		return 0, err
	}
	stored, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if stored != int64(n) {
		return 0, fmt.Errorf("import stored %d rows, expected %d", stored, n)
	}
	return n, nil
}

func useSQLite(cfg *config.Config) {
	cfg.DataBackend = string(backend.SQLiteBackend)
}
