// Package pipeline runs one sales load end to end: ingest, normalize the
// header, clean, apply the business rules, resolve row ids, extract
// entities, load them in one transaction and verify the store.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"salesetl/internal/config"
	"salesetl/internal/datasource"
	"salesetl/internal/datasource/file"
	"salesetl/internal/datasource/httpds"
	"salesetl/internal/db"
	"salesetl/internal/metrics"
	"salesetl/internal/parser/csv"
	"salesetl/internal/records"
	"salesetl/internal/rejectlog"
	"salesetl/internal/schema"
	"salesetl/internal/storage"
	"salesetl/internal/transformer/builtin"
)

// Step names used in logs and metrics.
const (
	StepIngest    = "ingest"
	StepNormalize = "normalize"
	StepClean     = "clean"
	StepRules     = "rules"
	StepRowIDs    = "row_ids"
	StepExtract   = "extract"
	StepSchema    = "schema"
	StepLoad      = "load"
	StepVerify    = "verify"
)

// openStore is a test hook that points to storage.Open by default.
var openStore = storage.Open

// Summary reports what one run did.
type Summary struct {
	RunID  string
	Source string
	// Fingerprint is the xxh3 hash of the source bytes.
	Fingerprint uint64
	Delimiter   rune
	Bytes       int

	Ingested       int
	IgnoredColumns []string
	Valid          int
	// Rejected counts dropped rows per rule.
	Rejected      map[string]int
	ShipModeFixed int
	// RejectsFile is the rejects CSV written by this run, if any, and
	// RejectsLogged counts the rows written to it per rule.
	RejectsFile   string
	RejectsLogged map[string]int
	RowIDs        builtin.RowIDReport
	// Entities counts extracted rows per table.
	Entities map[string]int

	// Load and Verify stay nil on a dry run.
	Load   *storage.LoadResult
	Verify *storage.Report
	DryRun bool

	Elapsed time.Duration
}

// RejectedTotal sums Rejected.
func (s *Summary) RejectedTotal() int {
	n := 0
	for _, c := range s.Rejected {
		n += c
	}
	return n
}

// newSource reads http(s) URLs over the network and everything else from
// the local file system.
func newSource(path string) datasource.Source {
	if httpds.IsURL(path) {
		return httpds.New(path, httpds.Config{})
	}
	return file.NewLocal(path)
}

// Run executes the pipeline described by cfg. Ingestion and schema errors
// abort before any write; a load error leaves the store as it was.
func Run(ctx context.Context, cfg config.Config, log *zap.Logger) (*Summary, error) {
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()
	sum := &Summary{RunID: uuid.NewString(), Source: cfg.Source.Path, DryRun: cfg.DryRun}
	log = log.With(zap.String("run_id", sum.RunID), zap.String("job", cfg.Job))

	step := func(name string, fn func() error) error {
		t0 := time.Now()
		err := fn()
		d := time.Since(t0)
		metrics.RecordStep(cfg.Job, name, err, d)
		if err != nil {
			log.Error("step failed", zap.String("step", name), zap.Duration("took", d), zap.Error(err))
			return fmt.Errorf("%s: %w", name, err)
		}
		log.Debug("step done", zap.String("step", name), zap.Duration("took", d))
		return nil
	}
	// timed records a stage that cannot fail.
	timed := func(name string, fn func()) {
		t0 := time.Now()
		fn()
		d := time.Since(t0)
		metrics.RecordStep(cfg.Job, name, nil, d)
		log.Debug("step done", zap.String("step", name), zap.Duration("took", d))
	}

	var table *csv.Table
	if err := step(StepIngest, func() error {
		comma, err := cfg.Source.Comma()
		if err != nil {
			return err
		}
		table, err = csv.Ingest(ctx, newSource(cfg.Source.Path), csv.Options{Comma: comma})
		return err
	}); err != nil {
		return sum, err
	}
	sum.Fingerprint, sum.Delimiter, sum.Bytes = table.Fingerprint, table.Comma, table.Bytes
	sum.Ingested = len(table.Rows)
	metrics.RecordRows(cfg.Job, "ingested", int64(sum.Ingested))
	log.Info("ingested",
		zap.String("source", cfg.Source.Path),
		zap.Int("rows", sum.Ingested),
		zap.String("delimiter", string(table.Comma)),
		zap.String("fingerprint", fmt.Sprintf("%016x", table.Fingerprint)),
	)

	var (
		rows    []records.Row
		mapping schema.Mapping
	)
	if err := step(StepNormalize, func() error {
		var err error
		rows, mapping, err = schema.Rename(table.Rows, table.Header)
		return err
	}); err != nil {
		return sum, err
	}
	sum.IgnoredColumns = mapping.Ignored
	if len(mapping.Ignored) > 0 {
		log.Info("ignoring unknown columns", zap.Strings("columns", mapping.Ignored))
	}

	var sales []records.Sale
	timed(StepClean, func() {
		sales = builtin.Cleaner{NumberFormat: cfg.Source.NumberFormat}.Apply(rows)
	})
	metrics.RecordRows(cfg.Job, "cleaned", int64(len(sales)))

	var ruled builtin.RuleResult
	if err := step(StepRules, func() error {
		rules := builtin.Rules{ShipModes: cfg.Rules.ShipModes, DefaultShipMode: cfg.Rules.DefaultShipMode}
		if cfg.RejectsPath == "" {
			ruled = rules.Apply(sales)
			return nil
		}
		rl, err := rejectlog.New(cfg.RejectsPath)
		if err != nil {
			return err
		}
		rules.Reject = rl.Add
		ruled = rules.Apply(sales)
		if err := rl.Close(); err != nil {
			return err
		}
		sum.RejectsFile, sum.RejectsLogged = cfg.RejectsPath, rl.Counts()
		return nil
	}); err != nil {
		return sum, err
	}
	sum.Valid, sum.Rejected, sum.ShipModeFixed = len(ruled.Valid), ruled.Rejected, ruled.ShipModeFixed
	metrics.RecordRows(cfg.Job, "valid", int64(sum.Valid))
	metrics.RecordRows(cfg.Job, "rejected", int64(ruled.RejectedTotal()))
	for rule, n := range ruled.Rejected {
		metrics.RecordRejected(cfg.Job, rule, int64(n))
	}
	log.Info("rules applied",
		zap.Int("valid", sum.Valid),
		zap.Int("rejected", ruled.RejectedTotal()),
		zap.Any("rejected_by_rule", ruled.Rejected),
		zap.Int("ship_mode_fixed", ruled.ShipModeFixed),
	)

	var resolved []records.Sale
	timed(StepRowIDs, func() {
		resolved, sum.RowIDs = builtin.ResolveRowIDs(ruled.Valid, mapping.HasRowID)
	})
	if sum.RowIDs.Duplicates > 0 || sum.RowIDs.Regenerated {
		log.Warn("row ids",
			zap.Int("duplicates", sum.RowIDs.Duplicates),
			zap.Int("missing", sum.RowIDs.Missing),
			zap.Bool("regenerated", sum.RowIDs.Regenerated),
		)
	}

	var ents builtin.Entities
	timed(StepExtract, func() {
		ents = builtin.Extract(resolved)
	})
	sum.Entities = ents.Counts()
	log.Info("entities extracted", zap.Any("counts", sum.Entities))

	if cfg.DryRun {
		sum.Elapsed = time.Since(start)
		log.Info("dry run: store untouched")
		return sum, nil
	}

	conn, err := openStore(ctx, storage.Config{Kind: cfg.Storage.Kind, DSN: cfg.Storage.DSN})
	if err != nil {
		metrics.RecordStep(cfg.Job, StepLoad, err, 0)
		return sum, fmt.Errorf("open store: %w", err)
	}
	defer func(c db.DB) {
		if err := c.Close(context.WithoutCancel(ctx)); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}(conn)

	if cfg.Storage.AutoCreateSchema {
		if err := step(StepSchema, func() error {
			return storage.EnsureSchema(ctx, cfg.Storage.Kind, conn)
		}); err != nil {
			return sum, err
		}
	}

	if err := step(StepLoad, func() error {
		res, err := storage.Load(ctx, conn, ents, storage.LoadOptions{
			Reset:     cfg.Storage.Reset,
			BatchSize: cfg.Storage.BatchSize,
			Job:       cfg.Job,
		}, log)
		if err != nil {
			return err
		}
		sum.Load = &res
		return nil
	}); err != nil {
		return sum, err
	}

	if err := step(StepVerify, func() error {
		rep, err := storage.Verify(ctx, conn, cfg.Job, log)
		if err != nil {
			return err
		}
		sum.Verify = &rep
		return nil
	}); err != nil {
		return sum, err
	}

	sum.Elapsed = time.Since(start)
	return sum, nil
}
