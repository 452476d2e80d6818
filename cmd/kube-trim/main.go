package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/opscart/kube-trim/pkg/config"
	"github.com/opscart/kube-trim/pkg/datasource"
	"github.com/opscart/kube-trim/pkg/lookup"
	"github.com/opscart/kube-trim/pkg/recommender"
	"github.com/opscart/kube-trim/pkg/reporter"
	"github.com/opscart/kube-trim/pkg/sampler"
	"github.com/opscart/kube-trim/pkg/server"
	"github.com/opscart/kube-trim/pkg/store"
	"github.com/opscart/kube-trim/pkg/summary"
)

var (
	cfg *config.Config

	// Scan flags
	scanDuration time.Duration
	outputFormat string
)

func main() {
	cfg = config.NewConfig()

	var rootCmd = &cobra.Command{
		Use:   "kube-trim",
		Short: "Kubernetes right-sizing monitor",
		Long: `Continuously samples node and pod usage from a cluster, accumulates
per-image time series, and serves right-sizing recommendations over HTTP.`,
		Run: runServe,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.Source, "source", cfg.Source, "Metrics source: kubectl, metrics-api, prometheus")
	rootCmd.PersistentFlags().StringVar(&cfg.KubectlPath, "kubectl", cfg.KubectlPath, "Path to the kubectl binary")
	rootCmd.PersistentFlags().StringVar(&cfg.PrometheusURL, "prometheus-url", cfg.PrometheusURL, "Prometheus base URL (prometheus source)")
	rootCmd.PersistentFlags().DurationVar(&cfg.SampleInterval, "interval", cfg.SampleInterval, "Sampling interval")
	rootCmd.PersistentFlags().DurationVar(&cfg.QueryTimeout, "query-timeout", cfg.QueryTimeout, "Per-query deadline")
	rootCmd.PersistentFlags().IntVar(&cfg.LookupWorkers, "lookup-workers", cfg.LookupWorkers, "Concurrent pod lookups per cycle")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Enable verbose logging")

	rootCmd.Flags().StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "HTTP listen address")
	rootCmd.Flags().StringVar(&cfg.ReportFormat, "report-format", cfg.ReportFormat, "Exit report format: html, csv")
	rootCmd.Flags().StringVar(&cfg.ReportOutput, "report-output", cfg.ReportOutput, "Write a report file on shutdown (empty: skip)")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Sample for a fixed duration and print the report",
		Run:   runScan,
	}
	scanCmd.Flags().DurationVar(&scanDuration, "duration", 30*time.Second, "How long to sample")
	scanCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json")
	rootCmd.AddCommand(scanCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildPipeline() (datasource.Querier, *store.MetricsStore, *sampler.Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	querier, err := datasource.New(datasource.Config{
		Source:        cfg.Source,
		KubectlPath:   cfg.KubectlPath,
		PrometheusURL: cfg.PrometheusURL,
		QueryTimeout:  cfg.QueryTimeout,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	st := store.New()
	lookups := lookup.New(querier, cfg.Verbose)
	smp := sampler.New(querier, lookups, st, cfg.SampleInterval, cfg.LookupWorkers, cfg.Verbose)
	return querier, st, smp, nil
}

func runServe(cmd *cobra.Command, args []string) {
	querier, st, smp, err := buildPipeline()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sessionID := uuid.NewString()
	fmt.Printf("[INFO] Starting collection session %s (source: %s, interval: %v)\n",
		sessionID, querier.Name(), cfg.SampleInterval)
	fmt.Printf("[INFO] Serving report on %s. Press Ctrl+C to stop.\n", cfg.ListenAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go smp.Run(ctx)

	srv := server.New(cfg.ListenAddr, st)
	go func() {
		if err := srv.Run(ctx); err != nil {
			fmt.Printf("[ERROR] HTTP server: %v\n", err)
			stop()
		}
	}()

	<-ctx.Done()

	fmt.Println("\nStopping data collection and summarizing metrics...")
	summary.Print(os.Stdout, st)

	if cfg.ReportOutput != "" {
		if err := writeExitReport(sessionID, st); err != nil {
			fmt.Printf("[WARN] %v\n", err)
		} else {
			fmt.Printf("[INFO] Report written to %s\n", cfg.ReportOutput)
		}
	}
}

func writeExitReport(sessionID string, st *store.MetricsStore) error {
	pods := st.PodSamples()
	report := &reporter.Report{
		SessionID:       sessionID,
		GeneratedAt:     time.Now(),
		SampleCount:     len(pods),
		Recommendations: recommender.ComputeReport(pods, st),
	}
	return reporter.WriteFile(report, reporter.ReportFormat(cfg.ReportFormat), cfg.ReportOutput)
}

func runScan(cmd *cobra.Command, args []string) {
	querier, st, smp, err := buildPipeline()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("[INFO] Sampling %s for %v...\n", querier.Name(), scanDuration)

	ctx, cancel := context.WithTimeout(context.Background(), scanDuration)
	defer cancel()
	smp.Run(ctx)

	report := recommender.ComputeReport(st.PodSamples(), st)

	switch outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	default:
		if len(report) == 0 {
			fmt.Println("[INFO] No pod samples collected.")
			return
		}
		summary.Print(os.Stdout, st)
	}
}
