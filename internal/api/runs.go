package api

import (
	"sync"

	"github.com/IshaanNene/CompareGoat/internal/compare"
)

// recentRuns keeps the last max reports, evicting the oldest first.
type recentRuns struct {
	mu    sync.RWMutex
	max   int
	order []string
	byID  map[string]*compare.Report
}

func newRecentRuns(max int) *recentRuns {
	if max <= 0 {
		max = 1
	}
	return &recentRuns{
		max:  max,
		byID: make(map[string]*compare.Report, max),
	}
}

func (r *recentRuns) add(report *compare.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[report.RunID]; !ok {
		r.order = append(r.order, report.RunID)
	}
	r.byID[report.RunID] = report
	for len(r.order) > r.max {
		delete(r.byID, r.order[0])
		r.order = r.order[1:]
	}
}

func (r *recentRuns) get(id string) (*compare.Report, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.byID[id]
	return report, ok
}

// list returns the held reports, newest first.
func (r *recentRuns) list() []*compare.Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*compare.Report, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.byID[r.order[i]])
	}
	return out
}
