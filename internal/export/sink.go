// Package export writes a generated dataset out: CSV files on disk and,
// optionally, a Postgres database.
package export

import (
	"context"

	"github.com/PSavvateev/cs-data-generator/internal/types"
)

// Sink persists a complete dataset somewhere.
type Sink interface {
	Store(ctx context.Context, ds *types.Dataset) error
}

// NoopSink discards the dataset. Used when no database is configured.
type NoopSink struct{}

// NewNoopSink creates a NoopSink.
func NewNoopSink() *NoopSink { return &NoopSink{} }

// Store does nothing.
func (n *NoopSink) Store(ctx context.Context, ds *types.Dataset) error { return nil }
