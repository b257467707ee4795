// Package datasource abstracts where the raw sales export is read from.
package datasource

import (
	"context"
	"io"
)

// Source opens the raw bytes of one export. Name identifies the source in
// logs and error messages.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}
