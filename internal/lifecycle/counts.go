package lifecycle

import "github.com/gosuda/plano/internal/domain"

// StatusCount is the number of active entities in one status.
type StatusCount struct {
	Status domain.Status `json:"status"`
	Label  string        `json:"label"`
	Count  int           `json:"count"`
}

// CountByStatus tallies the active entities of rules' kind per status, in
// the table's order. Every known status is present even when its count is
// zero; statuses outside the table are appended with their raw code.
func CountByStatus(rules *domain.Rules, entities []*domain.Tracked) []StatusCount {
	counts := make(map[domain.Status]int)
	var extra []domain.Status
	for _, ent := range entities {
		if !ent.Active {
			continue
		}
		if !rules.Known(ent.Status) {
			if _, seen := counts[ent.Status]; !seen {
				extra = append(extra, ent.Status)
			}
		}
		counts[ent.Status]++
	}

	statuses := append(rules.Statuses(), extra...)
	out := make([]StatusCount, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, StatusCount{Status: s, Label: rules.Label(s), Count: counts[s]})
	}
	return out
}
