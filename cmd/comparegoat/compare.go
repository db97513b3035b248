package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/IshaanNene/CompareGoat/internal/catalog"
	"github.com/IshaanNene/CompareGoat/internal/compare"
	"github.com/IshaanNene/CompareGoat/internal/config"
	"github.com/IshaanNene/CompareGoat/internal/observability"
	"github.com/IshaanNene/CompareGoat/internal/storage"
)

type compareFlags struct {
	method     string
	maxRelated int
	maxBudget  int
	minRating  float64
	minReviews int
	csvPath    string
	jsonOut    bool
	timeout    time.Duration
	fetcher    string
	store      string
	output     string
}

// compareCmd creates the "compare" subcommand.
func compareCmd() *cobra.Command {
	var f compareFlags
	cmd := &cobra.Command{
		Use:   "compare <product name | id | url>",
		Short: "Compare a product with similar listings",
		Long: `Look up a product and compare it with similar products from the same
catalog. The input may be a product name, a 10-character product id or a
product link.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, &f, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&f.method, "method", "m", "auto", "lookup method: auto, name, id, url")
	cmd.Flags().IntVarP(&f.maxRelated, "max-related", "n", 0, "related products to compare (0 = use config)")
	cmd.Flags().IntVar(&f.maxBudget, "max-budget", 0, "hide products priced above this")
	cmd.Flags().Float64Var(&f.minRating, "min-rating", 0, "hide products rated below this")
	cmd.Flags().IntVar(&f.minReviews, "min-reviews", 0, "hide products with fewer reviews")
	cmd.Flags().StringVar(&f.csvPath, "csv", "", "write the comparison table to this CSV file")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "print the full report as JSON")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "overall time budget (0 = none)")
	cmd.Flags().StringVar(&f.fetcher, "fetcher", "", "fetcher type: http, browser")
	cmd.Flags().StringVar(&f.store, "store", "", "report storage: none, json, jsonl, csv, mongodb, or a comma-separated list")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output directory for file storage")

	return cmd
}

func runCompare(cmd *cobra.Command, f *compareFlags, input string) error {
	method, err := catalog.ParseMethod(f.method)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(func(c *config.Config) {
		if f.fetcher != "" {
			c.Fetcher.Type = strings.ToLower(f.fetcher)
		}
		if f.store != "" {
			c.Storage.Type = strings.ToLower(f.store)
		}
		if f.output != "" {
			c.Storage.OutputPath = f.output
		}
	})
	if err != nil {
		return err
	}
	if f.maxRelated < 0 || f.maxRelated > cfg.Discovery.PerQueryMax {
		return fmt.Errorf("--max-related must be between 0 and %d, got %d",
			cfg.Discovery.PerQueryMax, f.maxRelated)
	}

	logger := observability.NewLogger(&cfg.Logging, os.Stderr, verbose)
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	req := compare.Request{Input: input, Method: method, MaxRelated: f.maxRelated}
	flags := cmd.Flags()
	if flags.Changed("max-budget") {
		req.Filters.MaxPrice = &f.maxBudget
	}
	if flags.Changed("min-rating") {
		req.Filters.MinRating = &f.minRating
	}
	if flags.Changed("min-reviews") {
		req.Filters.MinReviews = &f.minReviews
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	report, err := a.service.Compare(ctx, req)
	if err != nil {
		return err
	}

	if f.csvPath != "" {
		if err := writeCSVFile(f.csvPath, report); err != nil {
			return err
		}
		logger.Info("comparison table exported", "path", f.csvPath, "rows", len(report.Filtered))
	}

	out := cmd.OutOrStdout()
	if f.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	renderReport(out, report)
	return nil
}

func writeCSVFile(path string, report *compare.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV file: %w", err)
	}
	if err := storage.WriteCSV(file, report.Filtered, report.Currency); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// renderReport prints the comparison table, value ranking, pros/cons and
// recommendation.
func renderReport(w io.Writer, r *compare.Report) {
	fmt.Fprintf(w, "\nBase product: %s\n", r.Seed.Title)
	fmt.Fprintf(w, "Looked up by %s, %d related products found in %s\n\n",
		r.Method, len(r.Related), r.Duration.Round(time.Millisecond))

	if r.FiltersReset {
		fmt.Fprintln(w, "No products match the filters, showing all products.")
		fmt.Fprintln(w)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"", "Product", "Brand", "Price", "Rating", "Reviews", "Key Features", "Similarity"})
	for _, row := range r.Filtered {
		marker := ""
		if row.Seed {
			marker = "★"
		}
		similarity := "-"
		if row.Similarity != nil {
			similarity = fmt.Sprintf("%.2f", *row.Similarity)
		}
		t.AppendRow(table.Row{
			marker,
			text.Trim(row.Title, 60),
			row.Brand,
			compare.FormatPrice(r.Currency, row.Price),
			compare.FormatRating(row.Rating),
			compare.FormatCount(row.Reviews),
			text.Trim(row.KeyFeatures, 60),
			similarity,
		})
	}
	t.Render()

	if len(r.Ranking) > 0 {
		fmt.Fprintln(w, "\nValue ranking (price + rating):")
		rt := table.NewWriter()
		rt.SetOutputMirror(w)
		rt.SetStyle(table.StyleLight)
		rt.AppendHeader(table.Row{"#", "Product", "Price", "Rating", "Score"})
		for i, v := range r.Ranking {
			rt.AppendRow(table.Row{
				i + 1,
				text.Trim(v.Product.Title, 60),
				compare.FormatPrice(r.Currency, v.Product.Price),
				compare.FormatRating(v.Product.Rating),
				fmt.Sprintf("%.1f", v.Value),
			})
		}
		rt.Render()
	}

	if len(r.ProsCons) > 0 {
		fmt.Fprintln(w, "\nPros & cons:")
		for _, pc := range r.ProsCons {
			fmt.Fprintf(w, "\n%s\n", pc.Title)
			for _, p := range pc.Pros {
				fmt.Fprintf(w, "  + %s\n", p)
			}
			for _, c := range pc.Cons {
				fmt.Fprintf(w, "  - %s\n", c)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", r.Recommendation)
}
