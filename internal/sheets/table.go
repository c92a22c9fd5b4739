package sheets

import (
	"fmt"
	"strings"
	"time"

	"transferdash/internal/core"
)

// Canonical column headers of the transfer form.
const (
	ColTimestamp    = "Timestamp"
	ColAgentName    = "Agent Name"
	ColTransferTo   = "Transfer to:"
	ColCustomerName = "Customer Name:"
	ColElectricBill = "Electric Bill:"
	ColCreditScore  = "Credit Score:"
)

// Columns lists the canonical headers in form order.
var Columns = []string{
	ColTimestamp,
	ColAgentName,
	ColTransferTo,
	ColCustomerName,
	ColElectricBill,
	ColCreditScore,
}

// ParseTable converts a header-first table into transfer records. Columns
// are matched by header, case-insensitively; a missing column yields empty
// values. Entirely blank rows are dropped. Timestamps are parsed column-wide
// and read in loc when they carry no zone.
func ParseTable(rows [][]string, loc *time.Location) []core.TransferRecord {
	if len(rows) == 0 {
		return []core.TransferRecord{}
	}
	headers := rows[0]
	idx := make(map[string]int, len(Columns))
	for _, c := range Columns {
		idx[c] = IndexOf(headers, c)
	}

	body := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		body = append(body, row)
	}

	raw := make([]string, len(body))
	for i, row := range body {
		raw[i] = SafeGet(row, idx[ColTimestamp])
	}
	stamps := core.ParseTimestampColumn(raw, loc)

	out := make([]core.TransferRecord, len(body))
	for i, row := range body {
		out[i] = core.TransferRecord{
			Timestamp:    stamps[i],
			AgentName:    SafeGet(row, idx[ColAgentName]),
			TransferTo:   SafeGet(row, idx[ColTransferTo]),
			CustomerName: SafeGet(row, idx[ColCustomerName]),
			ElectricBill: SafeGet(row, idx[ColElectricBill]),
			CreditScore:  SafeGet(row, idx[ColCreditScore]),
		}
	}
	return out
}

// ToStrings renders one API row as trimmed strings.
func ToStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// IndexOf finds target in arr ignoring case and surrounding whitespace.
func IndexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

// SafeGet returns the trimmed value at idx, or "" when out of range.
func SafeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return strings.TrimSpace(arr[idx])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
