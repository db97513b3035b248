package compare

import (
	"context"
	"math"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/CompareGoat/internal/catalog"
	"github.com/IshaanNene/CompareGoat/internal/catalog/catalogtest"
	"github.com/IshaanNene/CompareGoat/internal/fetcher"
	"github.com/IshaanNene/CompareGoat/internal/observability"
	"github.com/IshaanNene/CompareGoat/internal/scoring"
	"github.com/IshaanNene/CompareGoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func prod(id, title string, price *int, rating *float64, reviews *int, features ...string) *types.Product {
	return types.NewProduct(types.ProductFields{
		ID:       id,
		URL:      "https://shop.test/dp/" + id,
		Title:    title,
		Price:    price,
		Rating:   rating,
		Reviews:  reviews,
		Features: features,
	})
}

func TestBuildTable(t *testing.T) {
	seed := prod("S", "Seed", types.Int(500), types.Float(4.0), types.Int(10), "a", "b", "c", "d")
	related := []scoring.Scored{
		{Product: prod("R1", "High rating", types.Int(900), types.Float(4.5), types.Int(1)), Score: 0.456},
		{Product: prod("R2", "Same rating more reviews", types.Int(100), types.Float(4.0), types.Int(99)), Score: 0.3},
		{Product: prod("R3", "Cheaper", types.Int(100), types.Float(4.0), types.Int(10)), Score: 0.2},
		{Product: prod("R4", "No price", nil, types.Float(4.0), types.Int(10)), Score: 0.1},
		{Product: prod("R5", "No rating", types.Int(1), nil, nil), Score: 0.1},
	}

	rows := BuildTable(seed, related)
	var order []string
	for _, r := range rows {
		order = append(order, r.ID)
	}
	assert.Equal(t, []string{"R1", "R2", "R3", "S", "R4", "R5"}, order)

	var seedRow Row
	for _, r := range rows {
		if r.Seed {
			seedRow = r
		}
	}
	assert.Equal(t, "S", seedRow.ID)
	assert.Nil(t, seedRow.Similarity)
	assert.Equal(t, "a • b • c", seedRow.KeyFeatures)
	assert.Equal(t, "a", seedRow.KeyFeature)
	assert.Same(t, seed, seedRow.Product())

	require.NotNil(t, rows[0].Similarity)
	assert.Equal(t, 0.46, *rows[0].Similarity)
	assert.Equal(t, "", rows[0].KeyFeatures)
}

func TestFilters(t *testing.T) {
	cheap := prod("c", "Cheap", types.Int(999), types.Float(3.9), types.Int(50))
	good := prod("g", "Good", types.Int(20000), types.Float(4.5), types.Int(5000))
	unpriced := prod("u", "Unpriced", nil, types.Float(4.6), types.Int(2000))
	unrated := prod("r", "Unrated", types.Int(10), nil, nil)
	all := []*types.Product{cheap, good, unpriced, unrated}

	kept, reset := Filters{MaxPrice: types.Int(10000)}.Apply(all)
	assert.False(t, reset)
	assert.Equal(t, []*types.Product{cheap, unpriced, unrated}, kept)

	kept, _ = Filters{MinRating: types.Float(4.0), MinReviews: types.Int(1000)}.Apply(all)
	assert.Equal(t, []*types.Product{good, unpriced}, kept)

	kept, reset = Filters{MinRating: types.Float(4.9)}.Apply(all)
	assert.True(t, reset)
	assert.Equal(t, all, kept)

	kept, reset = Filters{}.Apply(all)
	assert.False(t, reset)
	assert.Len(t, kept, 4)
	assert.True(t, Filters{}.Empty())
}

func TestDeriveProsCons(t *testing.T) {
	top := prod("t", "Top", types.Int(29990), types.Float(4.6), types.Int(12000))
	mid := prod("m", "Mid", types.Int(19990), types.Float(4.5), types.Int(1500))
	low := prod("l", "Low", types.Int(8990), types.Float(4.0), types.Int(300))
	bare := prod("b", "Bare", nil, nil, nil)

	pcs := DeriveProsCons([]*types.Product{top, mid, low, bare}, "₹")
	require.Len(t, pcs, 4)

	assert.Equal(t, []string{"Highly rated by buyers", "Very popular (5K+ reviews)", "Price around ₹29,990"}, pcs[0].Pros)
	assert.Equal(t, []string{"Relatively expensive compared to similar options"}, pcs[0].Cons)

	assert.Equal(t, []string{"Highly rated by buyers", "Reasonable number of reviews", "Price around ₹19,990"}, pcs[1].Pros)
	assert.Equal(t, []string{"No major drawbacks identified from available data"}, pcs[1].Cons)

	assert.Equal(t, []string{"Good overall rating", "Price around ₹8,990"}, pcs[2].Pros)
	assert.Equal(t, []string{"Rating is lower than some alternatives"}, pcs[2].Cons)

	assert.Equal(t, []string{}, pcs[3].Pros)
	assert.Equal(t, []string{"No major drawbacks identified from available data"}, pcs[3].Cons)
}

func TestRecommend(t *testing.T) {
	assert.Equal(t, NoWinner, Recommend(nil, "₹"))

	p := prod("B1", "Sony WH-1000XM4", types.Int(19990), types.Float(4.5), types.Int(30000))
	text := Recommend(&scoring.Valued{Product: p, Value: 68.857}, "₹")
	assert.Contains(t, text, "We recommend Sony WH-1000XM4 as the best overall value.")
	assert.Contains(t, text, "68.9/100")
	assert.Contains(t, text, "4.5★ with 30,000 reviews")
	assert.Contains(t, text, "₹19,990")
	assert.Contains(t, text, "https://shop.test/dp/B1")
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1,234,567", Thousands(1234567))
	assert.Equal(t, "₹29,990", FormatPrice("₹", types.Int(29990)))
	assert.Equal(t, "N/A", FormatPrice("₹", nil))
	assert.Equal(t, "N/A", FormatCount(nil))
	assert.Equal(t, "4.0", FormatRating(types.Float(4)))
	assert.Equal(t, "N/A", FormatRating(nil))
}

type memStore struct{ reports []*Report }

func (m *memStore) Store(_ context.Context, r *Report) error {
	m.reports = append(m.reports, r)
	return nil
}

func headphoneSite() *catalogtest.Site {
	site := catalogtest.NewSite(
		&catalogtest.Item{
			ID: "B0SONYXM50", Title: "Sony WH-1000XM5 Wireless Headphones", Brand: "Sony",
			Price: "₹29,990", Rating: "4.6", Reviews: "12,000",
			Features: []string{"Noise cancelling", "30h battery", "Multipoint", "Speak-to-chat"},
			Related:  []string{"B0SONYXM40", "B0BLENDER1"},
		},
		&catalogtest.Item{
			ID: "B0SONYXM40", Title: "Sony WH-1000XM4 Wireless Headphones", Brand: "Sony",
			Price: "₹19,990", Rating: "4.5", Reviews: "30,000",
			Features: []string{"Adaptive sound"},
		},
		&catalogtest.Item{
			ID: "B0BLENDER1", Title: "Random Kitchen Blender", Brand: "XYZ",
			Price: "₹1,500", Rating: "4.0", Reviews: "50",
		},
		&catalogtest.Item{
			ID: "B0JBLTUNE1", Title: "JBL Tune 760NC Wireless Headphones", Brand: "JBL",
			Price: "₹5,999", Rating: "4.1", Reviews: "8,000",
		},
		&catalogtest.Item{
			ID: "B0SONYCH71", Title: "Sony WH-CH720N Wireless Headphones", Brand: "Sony",
			Price: "₹8,990", Rating: "4.3", Reviews: "4,000",
		},
	)
	site.Search["Sony WH-1000XM5 Wireless Headphones"] = []string{"B0SONYXM40", "B0JBLTUNE1", "B0SONYCH71"}
	return site
}

func newService(t *testing.T, site *catalogtest.Site, store Store) (*Service, *observability.Metrics) {
	t.Helper()
	cfg := site.Config()
	metrics := observability.NewMetrics(testLogger)
	f, err := fetcher.New(cfg, metrics, testLogger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	cat, err := catalog.NewClient(cfg, f, metrics, testLogger)
	require.NoError(t, err)
	return NewService(cat, cfg, store, metrics, testLogger), metrics
}

func TestCompareEndToEnd(t *testing.T) {
	site := headphoneSite()
	defer site.Close()
	store := &memStore{}
	svc, metrics := newService(t, site, store)

	report, err := svc.Compare(context.Background(), Request{
		Input:      "B0SONYXM50",
		MaxRelated: 2,
		Filters:    Filters{MaxPrice: types.Int(25000)},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, catalog.MethodAuto, report.RequestedMethod)
	assert.Equal(t, catalog.MethodID, report.Method)
	assert.Equal(t, "B0SONYXM50", report.Seed.ID)

	var related []string
	for _, r := range report.Related {
		related = append(related, r.Product.ID)
	}
	assert.Equal(t, []string{"B0SONYXM40", "B0SONYCH71"}, related)
	assert.Greater(t, report.Related[0].Score, 0.8)

	require.Len(t, report.Table, 3)
	assert.Equal(t, "B0SONYXM50", report.Table[0].ID)
	assert.True(t, report.Table[0].Seed)
	assert.Equal(t, "Noise cancelling • 30h battery • Multipoint", report.Table[0].KeyFeatures)

	assert.False(t, report.FiltersReset)
	require.Len(t, report.Filtered, 2)
	assert.Equal(t, "B0SONYXM40", report.Filtered[0].ID)

	require.Len(t, report.Ranking, 2)
	require.NotNil(t, report.Best)
	assert.Equal(t, "B0SONYXM40", report.Best.Product.ID)
	assert.InDelta(t, 70.0, report.Best.Value, 1e-9)
	assert.True(t, strings.HasPrefix(report.Recommendation, "We recommend Sony WH-1000XM4 Wireless Headphones"))

	require.Len(t, report.ProsCons, 3)
	assert.Contains(t, report.ProsCons[0].Cons, "Relatively expensive compared to similar options")

	assert.Equal(t, 1, site.Hits("/dp/B0SONYXM50"), "seed page fetched once")
	assert.Equal(t, 0, site.Hits("/s?k=Sony WH-1000XM5"), "no broadening once full")
	assert.EqualValues(t, 1, metrics.ComparisonsCompleted.Load())
	require.Len(t, store.reports, 1)
	assert.Same(t, report, store.reports[0])
}

func TestCompareBroadensAndResetsFilters(t *testing.T) {
	site := headphoneSite()
	defer site.Close()
	title := "Sony WH-1000XM5 Wireless Headphones"
	site.Search[title] = nil
	// The title is only four words long, so the next search is brand plus title.
	site.Search["Sony "+title] = []string{"B0JBLTUNE1", "B0SONYCH71"}

	svc, _ := newService(t, site, nil)
	report, err := svc.Compare(context.Background(), Request{
		Input:   "B0SONYXM50",
		Method:  catalog.MethodID,
		Filters: Filters{MinRating: types.Float(4.9)},
	})
	require.NoError(t, err)

	var related []string
	for _, r := range report.Related {
		related = append(related, r.Product.ID)
	}
	assert.Equal(t, []string{"B0SONYXM40", "B0BLENDER1", "B0SONYCH71", "B0JBLTUNE1"}, related)
	assert.Equal(t, 1, site.Hits("/s?k="+title))
	assert.Equal(t, 1, site.Hits("/s?k=Sony "+title))

	assert.True(t, report.FiltersReset)
	assert.Len(t, report.Filtered, len(report.Table))
	assert.Len(t, report.Ranking, 5)
}

func TestCompareSeedLookupFails(t *testing.T) {
	site := headphoneSite()
	defer site.Close()
	svc, metrics := newService(t, site, nil)

	_, err := svc.Compare(context.Background(), Request{Input: "B0MISSING1"})
	var le *types.LookupError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "id", le.Method)
	assert.EqualValues(t, 1, metrics.ComparisonsFailed.Load())
}

func TestCompareTimeout(t *testing.T) {
	site := headphoneSite()
	defer site.Close()
	svc, _ := newService(t, site, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := svc.Compare(ctx, Request{Input: "B0SONYXM50"})
	assert.Error(t, err)
}

func TestCompareRejectsMaxRelatedAboveLimit(t *testing.T) {
	site := headphoneSite()
	defer site.Close()
	svc, _ := newService(t, site, nil)

	for _, n := range []int{16, math.MaxInt} {
		_, err := svc.Compare(context.Background(), Request{Input: "B0SONYXM50", MaxRelated: n})
		require.ErrorIs(t, err, types.ErrInvalidRequest, n)
	}
	assert.Zero(t, site.Hits("/dp/B0SONYXM50"))
}
