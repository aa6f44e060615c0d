package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bgiacomelli/meli-compliance-monitoring/internal/config"
	"github.com/bgiacomelli/meli-compliance-monitoring/internal/export"
	"github.com/bgiacomelli/meli-compliance-monitoring/internal/models"
	"github.com/bgiacomelli/meli-compliance-monitoring/internal/pipeline"
	"github.com/bgiacomelli/meli-compliance-monitoring/internal/source"
	"github.com/bgiacomelli/meli-compliance-monitoring/internal/stats"
)

var (
	extractBaseURL  string
	extractSimulate bool
	extractStatus   string
	extractLimit    int
	extractPageSize int
	extractOutDir   string
	extractSeed     int64
	extractRate     float64
	extractFormat   string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract and normalize compliance alerts",
	Long: `Extract compliance alerts page by page, fetch each alert's detail,
normalize the payloads into the fixed 15-column schema, write the rows
and a summary to the output directory, and print the summary.

Examples:
  # Simulated extraction, default settings
  compliancectl extract

  # Real upstream with a custom page size
  compliancectl extract --no-simulate --base-url https://api.example.com --page-size 25

  # JSON output files
  compliancectl extract --format json`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractBaseURL, "base-url", "", "upstream base URL")
	extractCmd.Flags().BoolVar(&extractSimulate, "simulate", true, "use the deterministic simulator")
	extractCmd.Flags().StringVar(&extractStatus, "status", "", "alert status to scan")
	extractCmd.Flags().IntVar(&extractLimit, "limit", 0, "number of alerts to extract")
	extractCmd.Flags().IntVar(&extractPageSize, "page-size", 0, "IDs per listing page")
	extractCmd.Flags().StringVar(&extractOutDir, "out-dir", "", "output directory")
	extractCmd.Flags().Int64Var(&extractSeed, "seed", 0, "simulator seed")
	extractCmd.Flags().Float64Var(&extractRate, "rate", 0, "outbound requests per second (0 = config default)")
	extractCmd.Flags().StringVar(&extractFormat, "format", "csv", "output file format (csv, json)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyExtractFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	format, ok := export.ParseFormat(extractFormat)
	if !ok {
		return fmt.Errorf("invalid format: %s (use csv or json)", extractFormat)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		PrintVerbose("Received interrupt, stopping...")
		cancel()
	}()

	rows, summary, err := runPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	now := time.Now()
	rowsPath := export.RowsPath(cfg.OutDir, now, format)
	if err := export.WriteFile(rowsPath, func(w io.Writer) error {
		return export.NewExporter(format, w).WriteRows(rows)
	}); err != nil {
		return err
	}

	summaryPath := export.SummaryPath(cfg.OutDir, now, format)
	if err := export.WriteFile(summaryPath, func(w io.Writer) error {
		return export.NewExporter(format, w).WriteSummary(summary)
	}); err != nil {
		return err
	}

	printSummary(summary)
	fmt.Printf("wrote %s\n", rowsPath)
	fmt.Printf("wrote %s\n", summaryPath)
	return nil
}

// applyExtractFlags overlays set flags onto the config.
func applyExtractFlags(cmd *cobra.Command, cfg *config.Config) {
	if extractBaseURL != "" {
		cfg.BaseURL = extractBaseURL
	}
	if cmd.Flags().Changed("simulate") {
		cfg.Simulate = extractSimulate
	}
	if extractStatus != "" {
		cfg.Status = extractStatus
	}
	if extractLimit > 0 {
		cfg.Limit = extractLimit
	}
	if extractPageSize > 0 {
		cfg.PageSize = extractPageSize
	}
	if extractOutDir != "" {
		cfg.OutDir = extractOutDir
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = extractSeed
	}
	if extractRate > 0 {
		cfg.RateLimitPerSec = extractRate
	}
}

// runPipeline wires a source and runner from the config and executes
// one extraction pass.
func runPipeline(ctx context.Context, cfg config.Config) ([]models.NormalizedRow, stats.Summary, error) {
	log.Printf("simulate=%v base_url=%s limit=%d page_size=%d",
		cfg.Simulate, cfg.BaseURL, cfg.Limit, cfg.PageSize)

	var src source.Source
	if cfg.Simulate {
		src = source.NewSimulator(cfg.Seed)
	} else {
		src = source.NewHTTPSource(cfg.BaseURL, source.HTTPOptions{
			Timeout:       cfg.RequestTimeout,
			MaxRetries:    cfg.MaxRetries,
			BackoffFactor: cfg.BackoffFactor,
		})
	}

	runner := pipeline.NewRunner(src, source.NewThrottle(cfg.RateLimitPerSec), pipeline.Options{
		Status:   cfg.Status,
		Limit:    cfg.Limit,
		PageSize: cfg.PageSize,
		MinRows:  100,
	})

	rows, err := runner.Run(ctx)
	if err != nil {
		return nil, stats.Summary{}, err
	}
	return rows, stats.Summarize(rows), nil
}

// printSummary renders the run summary as a table, distributions sorted
// by count descending.
func printSummary(s stats.Summary) {
	fmt.Println()
	fmt.Println("Compliance Alerts — Summary")
	fmt.Println("===========================")
	fmt.Printf("Total: %d\n", s.TotalAlerts)
	fmt.Printf("Assigned: %d | Unassigned: %d | Unresolved: %d\n",
		s.AssignedPresent, s.AssignedMissing, s.UnresolvedCount)
	fmt.Printf("Exposure mean: %.2f | p95: %.2f\n", s.MonetaryExposureMean, s.MonetaryExposureP95)
	fmt.Println()

	for _, dist := range []struct {
		title  string
		counts map[string]int
	}{
		{"By Status", s.StatusDistribution},
		{"By Type", s.TypeDistribution},
		{"By Impact", s.ImpactDistribution},
	} {
		if len(dist.counts) == 0 {
			continue
		}
		fmt.Println(dist.title + ":")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  VALUE\tCOUNT\n")
		for _, key := range keysByCount(dist.counts) {
			label := key
			if label == "" {
				label = "(none)"
			}
			fmt.Fprintf(w, "  %s\t%d\n", label, dist.counts[key])
		}
		w.Flush()
		fmt.Println()
	}
}

// keysByCount sorts keys by count descending, then by key for stability.
func keysByCount(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
