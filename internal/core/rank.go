package core

import "sort"

// Count pairs a name with its number of transfers.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Ranking is a frequency table sorted by count descending, then name ascending.
type Ranking []Count

// Tally counts non-empty keys and returns them ranked.
func Tally(records []TransferRecord, key func(TransferRecord) string) Ranking {
	counts := make(map[string]int)
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		counts[k]++
	}
	out := make(Ranking, 0, len(counts))
	for name, n := range counts {
		out = append(out, Count{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ByAgent tallies agent names.
func ByAgent(records []TransferRecord) Ranking {
	return Tally(records, TransferRecord.Agent)
}

// ByDestination tallies transfer destinations.
func ByDestination(records []TransferRecord) Ranking {
	return Tally(records, TransferRecord.Destination)
}

// Top returns the mode, or NoData when the ranking is empty.
func (r Ranking) Top() string {
	if len(r) == 0 {
		return NoData
	}
	return r[0].Name
}

// Bottom returns the entry with the lowest count; ties go to the
// lexicographically smallest name. NoData when empty.
func (r Ranking) Bottom() string {
	if len(r) == 0 {
		return NoData
	}
	best := r[0]
	for _, c := range r[1:] {
		if c.Count < best.Count || (c.Count == best.Count && c.Name < best.Name) {
			best = c
		}
	}
	return best.Name
}

// Get returns the count for name, zero when absent.
func (r Ranking) Get(name string) int {
	for _, c := range r {
		if c.Name == name {
			return c.Count
		}
	}
	return 0
}

// Min returns the smallest count, zero when empty.
func (r Ranking) Min() int {
	if len(r) == 0 {
		return 0
	}
	return r[len(r)-1].Count
}

// Head returns at most n entries.
func (r Ranking) Head(n int) Ranking {
	if n < 0 || n >= len(r) {
		return r
	}
	return r[:n]
}
