// Package report renders a snapshot as an XLSX workbook.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"transferdash/internal/core"
)

// Sheet names, in workbook order.
const (
	SheetSummary      = "Summary"
	SheetAgents       = "Agents"
	SheetDestinations = "Destinations"
	SheetDaily        = "Daily"
	SheetRecent       = "Recent"
)

// RecentRows caps the Recent sheet.
const RecentRows = 25

const timeLayout = "2006-01-02 15:04:05"

// Sheets lists the sheets Write produces.
var Sheets = []string{SheetSummary, SheetAgents, SheetDestinations, SheetDaily, SheetRecent}

// Write builds the workbook for snap and writes it to w.
func Write(w io.Writer, snap core.Snapshot, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	for _, name := range Sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	steps := []struct {
		sheet string
		rows  [][]interface{}
	}{
		{SheetSummary, summaryRows(snap, generatedAt)},
		{SheetAgents, agentRows(snap)},
		{SheetDestinations, rankingRows("Destination", snap.Destinations)},
		{SheetDaily, dailyRows(snap)},
		{SheetRecent, recentRows(snap)},
	}
	for _, s := range steps {
		if err := writeRows(f, s.sheet, s.rows, header); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	width := 0
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(width, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	lastCol, _ := excelize.ColumnNumberToName(width)
	return f.SetColWidth(sheet, "A", lastCol, 20)
}

func summaryRows(snap core.Snapshot, generatedAt time.Time) [][]interface{} {
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Generated at", generatedAt.Format(timeLayout)},
		{"Total transfers", snap.Total},
		{"Skipped records", snap.Skipped},
	}
	for _, w := range core.AllWindows {
		rows = append(rows, []interface{}{windowLabel(w), snap.Count(w)})
	}
	rows = append(rows,
		[]interface{}{"Top agent today", snap.TopAgentToday},
		[]interface{}{"Top agent this week", snap.TopAgentWeek},
		[]interface{}{"Top agent this month", snap.TopAgentMonth},
		[]interface{}{"Lowest performer", snap.LowestPerformer},
		[]interface{}{"Most transferred to", snap.MostTransferred},
		[]interface{}{},
		[]interface{}{"Change", "Current", "Previous", "Percent", "New activity"},
	)
	for _, d := range []struct {
		label string
		delta core.Delta
	}{
		{"Daily", snap.DailyChange},
		{"Weekly", snap.WeeklyChange},
		{"Monthly", snap.MonthlyChange},
	} {
		rows = append(rows, []interface{}{d.label, d.delta.Current, d.delta.Previous, d.delta.Percent, d.delta.NewActivity})
	}
	return rows
}

func agentRows(snap core.Snapshot) [][]interface{} {
	rows := [][]interface{}{{"Rank", "Agent", "Total", "Today", "This week", "This month", "Lowest"}}
	for _, e := range snap.Leaderboard(-1) {
		rows = append(rows, []interface{}{
			e.Rank, e.Name, e.Count,
			snap.AgentsToday.Get(e.Name),
			snap.AgentsWeek.Get(e.Name),
			snap.AgentsMonth.Get(e.Name),
			e.Lowest,
		})
	}
	return rows
}

func rankingRows(label string, r core.Ranking) [][]interface{} {
	rows := [][]interface{}{{label, "Transfers"}}
	for _, c := range r {
		rows = append(rows, []interface{}{c.Name, c.Count})
	}
	return rows
}

func dailyRows(snap core.Snapshot) [][]interface{} {
	rows := [][]interface{}{{"Date", "Transfers"}}
	for _, p := range snap.Trend(core.PeriodDaily) {
		rows = append(rows, []interface{}{p.Label, p.Transfers})
	}
	return rows
}

func recentRows(snap core.Snapshot) [][]interface{} {
	rows := [][]interface{}{{"Timestamp", "Agent", "Transfer to", "Customer", "Electric bill", "Credit score"}}
	for _, r := range core.MostRecent(snap.Records, RecentRows) {
		rows = append(rows, []interface{}{
			r.Timestamp.Format(timeLayout), r.AgentName, r.TransferTo,
			r.CustomerName, r.ElectricBill, r.CreditScore,
		})
	}
	return rows
}

func windowLabel(w core.Window) string {
	switch w {
	case core.WindowToday:
		return "Today"
	case core.WindowYesterday:
		return "Yesterday"
	case core.WindowThisWeek:
		return "This week"
	case core.WindowLastWeek:
		return "Last week"
	case core.WindowThisMonth:
		return "This month"
	case core.WindowLastMonth:
		return "Last month"
	}
	return string(w)
}
