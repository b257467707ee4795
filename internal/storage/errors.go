package storage

import "fmt"

// Load phases reported by LoadError.
const (
	PhaseBegin  = "begin"
	PhaseReset  = "reset"
	PhaseInsert = "insert"
	PhaseCommit = "commit"
)

// LoadError reports a failed load. The transaction has been rolled back, so
// the store holds exactly what it held before the load started.
type LoadError struct {
	Phase string
	// Table is empty for phases that are not tied to one table.
	Table string
	Err   error
}

func (e *LoadError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("load %s: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("load %s %s: %v", e.Phase, e.Table, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
