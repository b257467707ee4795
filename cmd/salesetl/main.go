// Command salesetl loads a retail sales CSV export into a relational store.
//
// Configuration comes from an optional YAML file (-config), SALESETL_*
// environment variables (a .env file in the working directory is read
// first) and flags. Run with -help for the full list.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"go.uber.org/zap"

	"salesetl/internal/config"
	"salesetl/internal/logging"
	"salesetl/internal/metrics"
	"salesetl/internal/metrics/datadog"
	"salesetl/internal/metrics/prompush"
	"salesetl/internal/pipeline"

	// register all backends with the storage factory.
	_ "salesetl/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "salesetl: %v\n", err)
		os.Exit(2)
	}
	os.Exit(run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

// run is main without process globals. It returns the exit code: 0 on
// success, 1 when the run failed, 2 for configuration problems.
func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("salesetl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg, err := config.LoadFromArgs(fs, getenv, args)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintf(stderr, "salesetl: %v\n", err)
		return 2
	}

	issues := config.Validate(*cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintln(stderr, "salesetl: configuration is invalid")
		return 2
	}
	if cfg.ValidateOnly {
		fmt.Fprintln(stdout, "configuration is valid")
		return 0
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(stderr, "salesetl: %v\n", err)
		return 2
	}
	defer func() { _ = log.Sync() }()

	if err := setupMetrics(*cfg); err != nil {
		log.Error("metrics backend", zap.Error(err))
		return 2
	}
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", zap.Error(err))
		}
	}()

	sum, err := pipeline.Run(ctx, *cfg, log)
	if sum != nil {
		printSummary(stdout, sum)
	}
	if err != nil {
		log.Error("run failed", zap.Error(err))
		return 1
	}
	return 0
}

func setupMetrics(cfg config.Config) error {
	switch cfg.Metrics.Backend {
	case "prompush":
		b, err := prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DatadogAddr,
			Namespace:  "salesetl.",
			GlobalTags: []string{"job:" + cfg.Job},
		})
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
	}
	return nil
}

func printSummary(w io.Writer, s *pipeline.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "run\t%s\n", s.RunID)
	fmt.Fprintf(tw, "source\t%s (%d bytes, xxh3 %016x)\n", s.Source, s.Bytes, s.Fingerprint)
	fmt.Fprintf(tw, "rows ingested\t%d\n", s.Ingested)
	fmt.Fprintf(tw, "rows valid\t%d\n", s.Valid)
	fmt.Fprintf(tw, "rows rejected\t%d\n", s.RejectedTotal())
	for _, rule := range sortedKeys(s.Rejected) {
		fmt.Fprintf(tw, "  %s\t%d\n", rule, s.Rejected[rule])
	}
	if s.RejectsFile != "" {
		n := 0
		for _, c := range s.RejectsLogged {
			n += c
		}
		fmt.Fprintf(tw, "rejects file\t%s (%d rows)\n", s.RejectsFile, n)
	}
	fmt.Fprintf(tw, "ship modes defaulted\t%d\n", s.ShipModeFixed)
	fmt.Fprintf(tw, "duplicate row ids\t%d\n", s.RowIDs.Duplicates)
	if s.RowIDs.Regenerated {
		fmt.Fprintf(tw, "row ids\tregenerated\n")
	}
	if s.DryRun {
		for _, t := range sortedKeys(s.Entities) {
			fmt.Fprintf(tw, "%s\t%d (dry run)\n", t, s.Entities[t])
		}
		return
	}
	if s.Verify == nil {
		return
	}
	for _, t := range s.Verify.Tables {
		fmt.Fprintf(tw, "%s\t%d rows, %d distinct keys\n", t.Table, t.Rows, t.DistinctKeys)
	}
	for _, name := range sortedKeys(s.Verify.Orphans) {
		fmt.Fprintf(tw, "orphans %s\t%d\n", name, s.Verify.Orphans[name])
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
