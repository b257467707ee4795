// Package storage loads the extracted sales entities into a relational store
// and verifies the result. It is backend-agnostic: concrete stores live in
// sub-packages (sqlite, postgres, mssql, mysql) that register a Factory and
// a DDL dialect for their kind at init time.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"salesetl/internal/db"
)

// Config selects and locates a destination store.
type Config struct {
	// Kind is the registered backend name, e.g. "sqlite" or "postgres".
	Kind string
	// DSN is the backend-specific connection string or file path.
	DSN string
}

// Factory opens a connection for cfg.
type Factory func(ctx context.Context, cfg Config) (db.DB, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the Factory for kind. Backends call it
// from init.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// Open opens a connection using the Factory registered for cfg.Kind.
func Open(ctx context.Context, cfg Config) (db.DB, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %s)", cfg.Kind, strings.Join(Kinds(), ", "))
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("storage: %s: DSN must not be empty", cfg.Kind)
	}
	return f(ctx, cfg)
}

// Kinds returns the registered backend names, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
