package category

import (
	"log"
	"sort"
)

// Selector picks the categories a cycle scans.
type Selector struct {
	catalog *Catalog
	tracker *Tracker
}

func NewSelector(catalog *Catalog, tracker *Tracker) *Selector {
	return &Selector{catalog: catalog, tracker: tracker}
}

// Select returns up to max catalog categories out of cooldown, best score
// first. When every category is cooling down it falls back to the best
// scoring categories regardless of recency.
func (s *Selector) Select(max int) []string {
	names := s.catalog.Names()
	eligible := make([]string, 0, len(names))
	for _, name := range names {
		if s.tracker.ShouldScan(name) {
			eligible = append(eligible, name)
		}
	}
	if len(eligible) == 0 {
		log.Println("All categories scanned recently, using top performers")
		eligible = names
	}
	return s.rank(eligible, max)
}

func (s *Selector) rank(names []string, max int) []string {
	scores := make(map[string]int, len(names))
	for _, name := range names {
		scores[name] = s.tracker.Score(name)
	}
	ranked := append([]string(nil), names...)
	sort.Slice(ranked, func(i, j int) bool {
		if scores[ranked[i]] != scores[ranked[j]] {
			return scores[ranked[i]] > scores[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if max >= 0 && max < len(ranked) {
		ranked = ranked[:max]
	}
	return ranked
}
