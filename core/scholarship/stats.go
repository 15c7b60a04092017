package scholarship

type Stats struct {
	Total           int            `json:"total"`
	ByStatus        map[string]int `json:"by_status"`
	ByKind          map[string]int `json:"by_kind"`
	AwardedAmount   int64          `json:"awarded_amount"`   // approved + disbursed
	DisbursedAmount int64          `json:"disbursed_amount"` // disbursed only
	Pending         int            `json:"pending"`          // still applied
}

func ComputeStats(records []Scholarship) Stats {
	stats := Stats{
		Total:    len(records),
		ByStatus: make(map[string]int),
		ByKind:   make(map[string]int),
	}
	for _, s := range records {
		stats.ByStatus[s.Status]++
		stats.ByKind[s.Kind]++

		if s.IsAwarded() {
			stats.AwardedAmount += s.Amount
		}
		switch s.Status {
		case StatusDisbursed:
			stats.DisbursedAmount += s.Amount
		case StatusApplied:
			stats.Pending++
		}
	}
	return stats
}
