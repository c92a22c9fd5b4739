package report

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"transferdash/internal/core"
)

func TestWrite(t *testing.T) {
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	records := []core.TransferRecord{
		{Timestamp: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), AgentName: "A", TransferTo: "X"},
		{Timestamp: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC), AgentName: "B", TransferTo: "Y"},
		{Timestamp: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), AgentName: "A", TransferTo: "X", CustomerName: "Jo"},
	}
	for i := 0; i < 30; i++ {
		records = append(records, core.TransferRecord{
			Timestamp: time.Date(2024, 2, 1, 9, i, 0, 0, time.UTC), AgentName: "C", TransferTo: "Z",
		})
	}
	snap := core.Aggregate(records, now)

	var buf bytes.Buffer
	if err := Write(&buf, snap, now); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); !reflect.DeepEqual(got, Sheets) {
		t.Fatalf("sheets = %v, want %v", got, Sheets)
	}

	agents, err := f.GetRows(SheetAgents)
	if err != nil {
		t.Fatal(err)
	}
	if len(agents) != 4 {
		t.Fatalf("agents rows = %d, want header + 3", len(agents))
	}
	if agents[1][1] != "C" || agents[1][2] != "30" {
		t.Errorf("first agent row = %v", agents[1])
	}
	if agents[3][1] != "B" || agents[3][6] != "TRUE" {
		t.Errorf("lowest performer row = %v", agents[3])
	}

	recent, err := f.GetRows(SheetRecent)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != RecentRows+1 {
		t.Fatalf("recent rows = %d, want %d", len(recent), RecentRows+1)
	}
	if recent[1][0] != "2024-03-05 09:00:00" || recent[1][3] != "Jo" {
		t.Errorf("newest row = %v", recent[1])
	}

	total, err := f.GetCellValue(SheetSummary, "B3")
	if err != nil || total != "33" {
		t.Errorf("total cell = %q (%v)", total, err)
	}
}

func TestWrite_EmptySnapshot(t *testing.T) {
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	if err := Write(&buf, core.EmptySnapshot(now), now); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	top, _ := f.GetCellValue(SheetSummary, "A11")
	val, _ := f.GetCellValue(SheetSummary, "B11")
	if top != "Top agent today" || val != core.NoData {
		t.Errorf("summary row 11 = %q/%q", top, val)
	}
	rows, _ := f.GetRows(SheetRecent)
	if len(rows) != 1 {
		t.Errorf("recent rows = %d, want header only", len(rows))
	}
}
