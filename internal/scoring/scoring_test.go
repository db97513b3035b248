package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/CompareGoat/internal/config"
	"github.com/IshaanNene/CompareGoat/internal/types"
)

func product(id, title, brand string, price int, rating float64, reviews int) *types.Product {
	return types.NewProduct(types.ProductFields{
		ID:      id,
		Title:   title,
		Brand:   brand,
		Price:   types.Int(price),
		Rating:  types.Float(rating),
		Reviews: types.Int(reviews),
	})
}

func sonyScenario() (seed, b1, c1 *types.Product) {
	seed = product("A1", "Sony WH-1000XM5 Headphones", "Sony", 29990, 4.6, 12000)
	b1 = product("B1", "Sony WH-1000XM4 Headphones", "Sony", 19990, 4.5, 30000)
	c1 = product("C1", "Random Kitchen Blender", "XYZ", 1500, 4.0, 50)
	return
}

func TestScoreSonyScenario(t *testing.T) {
	seed, b1, c1 := sonyScenario()
	s := NewScorer(DefaultWeights(), PopularitySelf)

	sb := s.Score(seed, b1)
	sc := s.Score(seed, c1)
	assert.InDelta(t, 0.55*0.75+0.20+0.15*0.9+0.10, sb, 1e-9)
	assert.InDelta(t, 0.15*0.8+0.10, sc, 1e-9)
	assert.Greater(t, sb, 3*sc)

	selected := DefaultPolicy().Select(s.ScoreAll(seed, []*types.Product{c1, b1}), 1, seed.ID)
	require.Len(t, selected, 1)
	assert.Equal(t, "B1", selected[0].Product.ID)
}

func TestScoreDoesNotMutate(t *testing.T) {
	seed, b1, _ := sonyScenario()
	before := *seed
	NewScorer(DefaultWeights(), PopularitySet).ScoreAll(seed, []*types.Product{b1, seed})
	assert.Equal(t, before, *seed)
}

func TestPopularity(t *testing.T) {
	assert.Equal(t, 0.0, Popularity(0, 0))
	assert.Equal(t, 1.0, Popularity(1, 1))
	assert.Equal(t, 1.0, Popularity(987, 987))
	assert.InDelta(t, math.Log1p(50)/math.Log1p(30000), Popularity(50, 30000), 1e-12)
}

func TestPopularityModes(t *testing.T) {
	seed, b1, c1 := sonyScenario()
	noReviews := types.NewProduct(types.ProductFields{ID: "D1", Title: "Sony Case"})

	self := NewScorer(Weights{Popularity: 1}, PopularitySelf).ScoreAll(seed, []*types.Product{b1, c1, noReviews})
	assert.Equal(t, []float64{1, 1, 0}, []float64{self[0].Score, self[1].Score, self[2].Score})

	set := NewScorer(Weights{Popularity: 1}, PopularitySet).ScoreAll(seed, []*types.Product{b1, c1, noReviews})
	assert.Equal(t, 1.0, set[0].Score)
	assert.InDelta(t, math.Log1p(50)/math.Log1p(30000), set[1].Score, 1e-12)
	assert.Equal(t, 0.0, set[2].Score)
}

func TestBrandMatch(t *testing.T) {
	assert.Equal(t, 1.0, BrandMatch("Sony", "SONY India"))
	assert.Equal(t, 0.0, BrandMatch("Sony India", "Sony"))
	assert.Equal(t, 0.0, BrandMatch("  ", "Sony"))
	assert.Equal(t, 0.0, BrandMatch("Sony", ""))
}

func TestScorerFromConfig(t *testing.T) {
	seed, b1, _ := sonyScenario()
	cfg := config.DefaultConfig().Scoring
	assert.InDelta(t,
		NewScorer(DefaultWeights(), PopularitySelf).Score(seed, b1),
		NewScorerFromConfig(&cfg).Score(seed, b1),
		1e-12)
}

func scored(id string, score float64) Scored {
	return Scored{Product: types.NewProduct(types.ProductFields{ID: id, Title: id}), Score: score}
}

func ids(s []Scored) []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Product.ID
	}
	return out
}

func TestSelectThresholdRelaxation(t *testing.T) {
	cands := []Scored{
		scored("low", 0.05),
		scored("weak", 0.20),
		scored("strong1", 0.50),
		scored("strong2", 0.31),
		scored("weak2", 0.15),
	}
	p := DefaultPolicy()

	assert.Equal(t, []string{"strong1", "strong2"}, ids(p.Select(cands, 2, "")))
	assert.Equal(t, []string{"strong1", "strong2", "weak"}, ids(p.Select(cands, 3, "")))
	assert.Equal(t, []string{"strong1", "strong2", "weak", "weak2"}, ids(p.Select(cands, 4, "")))
	assert.Equal(t, []string{"strong1", "strong2", "weak", "weak2", "low"}, ids(p.Select(cands, 10, "")))

	assert.Equal(t, "low", cands[0].Product.ID, "input order untouched")
}

func TestSelectStableTies(t *testing.T) {
	cands := []Scored{scored("x", 0.4), scored("y", 0.4), scored("z", 0.4)}
	assert.Equal(t, []string{"x", "y", "z"}, ids(DefaultPolicy().Select(cands, 3, "")))
}

func TestSelectDropsSeedAndDuplicates(t *testing.T) {
	cands := []Scored{
		scored("seed", 0.9),
		scored("a", 0.8),
		scored("a", 0.7),
		scored("", 0.6),
		scored("b", 0.1),
	}
	// The strong subset already holds four entries, so "b" is never considered.
	got := DefaultPolicy().Select(cands, 4, "seed")
	assert.Equal(t, []string{"a"}, ids(got))
	assert.Equal(t, []string{"a", "b"}, ids(DefaultPolicy().Select(cands, 5, "seed")))

	assert.Len(t, DefaultPolicy().Select(cands, 1, "seed"), 1)
	assert.Empty(t, DefaultPolicy().Select(cands, 0, "seed"))
	assert.Empty(t, DefaultPolicy().Select(nil, 3, "seed"))
}

func TestSelectLargeMaxCount(t *testing.T) {
	cands := []Scored{scored("a", 0.5), scored("b", 0.02)}
	assert.Equal(t, []string{"a", "b"}, ids(DefaultPolicy().Select(cands, math.MaxInt, "")))
}

func TestSelectFullSetFallback(t *testing.T) {
	cands := []Scored{scored("a", 0.01), scored("b", 0.02)}
	assert.Equal(t, []string{"b", "a"}, ids(DefaultPolicy().Select(cands, 4, "")))
}

func TestRankSonyScenario(t *testing.T) {
	seed, b1, c1 := sonyScenario()
	ranked := DefaultRanker().Rank([]*types.Product{seed, b1, c1})
	require.Len(t, ranked, 3)

	assert.Equal(t, "A1", ranked[0].Product.ID)
	assert.InDelta(t, 70.0, ranked[0].Value, 1e-9)
	assert.Equal(t, "B1", ranked[1].Product.ID)
	assert.InDelta(t, (0.7*(0.5/0.6)+0.3*(10000.0/28490.0))*100, ranked[1].Value, 1e-9)
	assert.Equal(t, "C1", ranked[2].Product.ID)
	assert.InDelta(t, 30.0, ranked[2].Value, 1e-9)

	best, ok := DefaultRanker().PickBest([]*types.Product{seed, b1, c1})
	require.True(t, ok)
	assert.Equal(t, "A1", best.Product.ID)
}

func TestRankAllEqual(t *testing.T) {
	a := product("a", "A", "", 100, 4.0, 1)
	b := product("b", "B", "", 100, 4.0, 2)
	ranked := DefaultRanker().Rank([]*types.Product{a, b})
	require.Len(t, ranked, 2)
	for _, v := range ranked {
		assert.Equal(t, 1.0, v.RatingNorm)
		assert.Equal(t, 1.0, v.PriceNorm)
		assert.InDelta(t, 100.0, v.Value, 1e-9)
	}
	assert.Equal(t, "a", ranked[0].Product.ID, "ties keep input order")
}

func TestRankExcludesIncomplete(t *testing.T) {
	a := product("a", "A", "", 100, 4.0, 1)
	noPrice := types.NewProduct(types.ProductFields{ID: "np", Title: "NP", Rating: types.Float(5)})
	noRating := types.NewProduct(types.ProductFields{ID: "nr", Title: "NR", Price: types.Int(1)})

	ranked := DefaultRanker().Rank([]*types.Product{noPrice, a, noRating})
	require.Len(t, ranked, 1)
	assert.Equal(t, "a", ranked[0].Product.ID)

	_, ok := DefaultRanker().PickBest([]*types.Product{noPrice, noRating})
	assert.False(t, ok)
}
