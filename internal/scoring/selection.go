package scoring

import (
	"sort"

	"github.com/IshaanNene/CompareGoat/internal/config"
)

// Policy picks related products from scored candidates by relaxing the
// score threshold until enough candidates qualify.
type Policy struct {
	Strong float64
	Weak   float64
}

// DefaultPolicy returns the 0.30 / 0.15 threshold policy.
func DefaultPolicy() Policy {
	return Policy{Strong: 0.30, Weak: 0.15}
}

// PolicyFromConfig reads the thresholds from the scoring section.
func PolicyFromConfig(cfg *config.ScoringConfig) Policy {
	return Policy{Strong: cfg.StrongThreshold, Weak: cfg.WeakThreshold}
}

// Select sorts candidates by score (stable), takes the strong subset if it
// alone can fill maxCount, else the weak subset, else everything, then
// drops the seed id, empty ids and repeated ids and truncates to maxCount.
// The input slice is not reordered.
func (p Policy) Select(cands []Scored, maxCount int, seedID string) []Scored {
	if maxCount <= 0 || len(cands) == 0 {
		return nil
	}

	sorted := make([]Scored, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	chosen := atLeast(sorted, p.Strong)
	if len(chosen) < maxCount {
		chosen = atLeast(sorted, p.Weak)
	}
	if len(chosen) < maxCount {
		chosen = sorted
	}

	out := make([]Scored, 0, min(maxCount, len(chosen)))
	seen := make(map[string]bool)
	for _, c := range chosen {
		id := c.Product.ID
		if id == "" || id == seedID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, c)
		if len(out) >= maxCount {
			break
		}
	}
	return out
}

func atLeast(sorted []Scored, threshold float64) []Scored {
	var out []Scored
	for _, c := range sorted {
		if c.Score >= threshold {
			out = append(out, c)
		}
	}
	return out
}
