// Package discovery gathers candidate products for a seed and narrows
// them to the most relevant related products.
package discovery

import (
	"github.com/IshaanNene/CompareGoat/internal/types"
)

// CandidateSet is an insertion-ordered set of product references,
// deduplicated by canonical URL and by id. Once limit entries are held it
// accepts nothing more. A limit of zero means unbounded.
type CandidateSet struct {
	normalize func(string) string
	limit     int
	refs      []types.Ref
	urls      map[string]bool
	ids       map[string]bool
}

// NewCandidateSet creates an empty set using normalize to canonicalize URLs.
func NewCandidateSet(normalize func(string) string, limit int) *CandidateSet {
	if normalize == nil {
		normalize = func(s string) string { return s }
	}
	return &CandidateSet{
		normalize: normalize,
		limit:     limit,
		urls:      make(map[string]bool),
		ids:       make(map[string]bool),
	}
}

// Exclude marks ref as seen without adding it.
func (s *CandidateSet) Exclude(ref types.Ref) {
	if ref.URL != "" {
		s.urls[s.normalize(ref.URL)] = true
	}
	if ref.ID != "" {
		s.ids[ref.ID] = true
	}
}

// Add appends ref with its URL canonicalized. It reports false when the
// set is full or ref repeats an earlier URL or id.
func (s *CandidateSet) Add(ref types.Ref) bool {
	if s.Full() || ref.URL == "" {
		return false
	}
	u := s.normalize(ref.URL)
	if s.urls[u] || (ref.ID != "" && s.ids[ref.ID]) {
		return false
	}
	s.urls[u] = true
	if ref.ID != "" {
		s.ids[ref.ID] = true
	}
	s.refs = append(s.refs, types.Ref{URL: u, ID: ref.ID})
	return true
}

// AddAll adds refs in order and returns how many were accepted.
func (s *CandidateSet) AddAll(refs []types.Ref) int {
	n := 0
	for _, r := range refs {
		if s.Add(r) {
			n++
		}
	}
	return n
}

// Full reports whether the set has reached its limit.
func (s *CandidateSet) Full() bool {
	return s.limit > 0 && len(s.refs) >= s.limit
}

// Len returns the number of references held.
func (s *CandidateSet) Len() int { return len(s.refs) }

// Refs returns a copy of the references in insertion order.
func (s *CandidateSet) Refs() []types.Ref {
	return append([]types.Ref(nil), s.refs...)
}
