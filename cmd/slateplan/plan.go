package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jpwcollins/SlateBuilderPro/formatter"
	"github.com/jpwcollins/SlateBuilderPro/logging"
	"github.com/jpwcollins/SlateBuilderPro/metrics"
	"github.com/jpwcollins/SlateBuilderPro/models"
	"github.com/jpwcollins/SlateBuilderPro/optimizer"
	"github.com/jpwcollins/SlateBuilderPro/parser"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Fill day blocks from a waitlist CSV",
	RunE:  runPlan,
}

var planFlags struct {
	Input         string
	Dates         []string
	Date          string
	Slates        int
	Format        string
	OutDir        string
	MappingSecret string
	MetricsAddr   string
	PushGateway   string
	Wait          bool
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&planFlags.Input, "input", "", "Input waitlist CSV file (required)")
	f.StringSliceVar(&planFlags.Dates, "dates", nil, "Operating dates to fill, YYYY-MM-DD (ordered)")
	f.StringVar(&planFlags.Date, "date", "", "Single operating date for --slates repeated blocks")
	f.IntVar(&planFlags.Slates, "slates", 1, "Number of same-date slates to fill with --date")
	f.StringVar(&planFlags.Format, "format", "text", "Output format: text|json|csv")
	f.StringVar(&planFlags.OutDir, "out-dir", "", "Directory to write per-slate schedule and mapping CSVs")
	f.StringVar(&planFlags.MappingSecret, "mapping-secret", "", "Secret for de-identified mapping exports (default: run ID)")
	f.StringVar(&planFlags.MetricsAddr, "metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	f.StringVar(&planFlags.PushGateway, "push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	f.BoolVar(&planFlags.Wait, "wait", false, "Keep process running after completion to allow for metric scraping")
	_ = planCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	runID := uuid.New()
	log = log.With().Str("run_id", runID.String()).Logger()

	validFormats := map[string]bool{"text": true, "json": true, "csv": true}
	if !validFormats[planFlags.Format] {
		return fmt.Errorf("format must be one of: text, json, csv (got: %s)", planFlags.Format)
	}
	mode := formatter.PriorityMode(cfg.PriorityMode)
	if !mode.Valid() {
		return fmt.Errorf("priority-mode must be ttt or urgency_then_ttt (got: %s)", cfg.PriorityMode)
	}

	if planFlags.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			log.Info().Str("addr", planFlags.MetricsAddr).Msg("metrics server listening")
			if err := http.ListenAndServe(planFlags.MetricsAddr, mux); err != nil {
				log.Error().Err(err).Msg("metrics server error")
			}
		}()
	}

	cases, err := loadCases(planFlags.Input, log)
	if err != nil {
		return err
	}

	dates, err := resolveDates()
	if err != nil {
		return err
	}

	metrics.ResetPlannerGauges()
	metrics.PlannerCasesConsidered.Observe(float64(len(cases)))
	started := time.Now()

	var results []models.SlateResult
	var resultDates []time.Time
	if planFlags.Date != "" {
		results = optimizer.OptimizeMultiple(cases, dates[0], planFlags.Slates)
		for range results {
			resultDates = append(resultDates, dates[0])
		}
	} else {
		results = optimizer.AllocateDates(cases, dates)
		resultDates = dates[:len(results)]
	}
	metrics.PlannerDurationSeconds.Observe(time.Since(started).Seconds())
	recordPlannerMetrics(results)

	selected := 0
	for _, r := range results {
		selected += len(r.Selected)
	}
	log.Info().
		Int("cases", len(cases)).
		Int("slates", len(results)).
		Int("selected", selected).
		Msg("allocation complete")

	views := formatter.BuildViews(results, resultDates, mode)
	switch planFlags.Format {
	case "json":
		fmt.Print(formatter.FormatJSON(views))
	case "csv":
		fmt.Print(formatter.FormatCSV(views))
	default:
		fmt.Print(formatter.FormatText(views))
	}

	if planFlags.OutDir != "" {
		secret := planFlags.MappingSecret
		if secret == "" {
			secret = runID.String()
		}
		if err := writeExports(views, secret, log); err != nil {
			return err
		}
	}

	if planFlags.PushGateway != "" {
		if err := push.New(planFlags.PushGateway, "slate_planner").Gatherer(metrics.Registry).Push(); err != nil {
			log.Error().Err(err).Msg("error pushing to Pushgateway")
		} else {
			log.Info().Msg("metrics pushed to Pushgateway")
		}
	}

	if planFlags.Wait && planFlags.MetricsAddr != "" {
		log.Info().Msg("process kept alive for metric scraping; Ctrl+C to exit")
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
	} else if planFlags.MetricsAddr != "" && planFlags.PushGateway == "" {
		// Small delay to allow a final scrape; batch jobs should normally
		// use the pushgateway or --wait.
		time.Sleep(100 * time.Millisecond)
	}
	return nil
}

// loadCases normalizes the input file, logs any data-quality warnings,
// and applies the surgeon filter.
func loadCases(path string, log zerolog.Logger) ([]models.Case, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer file.Close()

	started := time.Now()
	result, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing input: %w", err)
	}
	metrics.ParserDurationSeconds.Observe(time.Since(started).Seconds())
	metrics.ParserRowsTotal.Add(float64(len(result.Cases)))
	metrics.ParserWarningsTotal.Add(float64(len(result.Warnings)))

	for _, w := range result.Warnings {
		log.Warn().Str("file", path).Msg(w)
	}
	log.Info().
		Str("file", path).
		Int("cases", len(result.Cases)).
		Int("warnings", len(result.Warnings)).
		Msg("waitlist normalized")

	return formatter.FilterBySurgeon(result.Cases, cfg.Surgeon), nil
}

func resolveDates() ([]time.Time, error) {
	if planFlags.Date != "" {
		d, err := time.Parse("2006-01-02", planFlags.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid --date %q: %w", planFlags.Date, err)
		}
		return []time.Time{d}, nil
	}
	if len(planFlags.Dates) == 0 {
		// Default to today so a bare `plan` run still produces a slate.
		now := time.Now()
		return []time.Time{time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)}, nil
	}
	dates := make([]time.Time, 0, len(planFlags.Dates))
	for _, raw := range planFlags.Dates {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q in --dates: %w", raw, err)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func recordPlannerMetrics(results []models.SlateResult) {
	metrics.SlatesProduced.Set(float64(len(results)))
	selected, overdue := 0, 0
	for i, r := range results {
		selected += len(r.Selected)
		for _, item := range r.Selected {
			if item.OverdueDays > 0 {
				overdue++
			}
		}
		label := fmt.Sprintf("%d", i+1)
		metrics.SlateUtilizationPct.WithLabelValues(label).Set(r.UtilizationPct)
		metrics.SlateRiskScore.WithLabelValues(label).Set(r.TotalRiskScore)
	}
	metrics.CasesSelectedTotal.Set(float64(selected))
	if len(results) > 0 {
		metrics.CasesUnplacedTotal.Set(float64(len(results[len(results)-1].Remaining)))
	}
	metrics.OverdueCasesSelected.Set(float64(overdue))
}

// writeExports writes one schedule CSV and one de-identified mapping CSV
// per slate into --out-dir, named after the slate's date and index.
func writeExports(views []formatter.SlateView, secret string, log zerolog.Logger) error {
	if err := os.MkdirAll(planFlags.OutDir, 0o755); err != nil {
		return fmt.Errorf("creating out-dir: %w", err)
	}
	for i, view := range views {
		date := view.Date.Format("2006-01-02")
		slatePath := filepath.Join(planFlags.OutDir, fmt.Sprintf("surgical_slate_%s_s%d.csv", date, i+1))
		mappingPath := filepath.Join(planFlags.OutDir, fmt.Sprintf("case_mapping_%s_s%d.csv", date, i+1))

		schedule := formatter.SlateCSV(view.Ordered, view.Result.BlockStartMinutes)
		if err := os.WriteFile(slatePath, []byte(schedule), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", slatePath, err)
		}
		mapping := formatter.MappingCSV(view.Ordered, secret)
		if err := os.WriteFile(mappingPath, []byte(mapping), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", mappingPath, err)
		}
		log.Info().Str("slate", slatePath).Str("mapping", mappingPath).Msg("exports written")
	}
	return nil
}
