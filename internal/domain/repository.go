package domain

import (
	"context"
	"time"
)

// Table names one of the two logical tables in the backing store.
type Table string

const (
	TableFoods Table = "foods"
	TableLog   Table = "log"
)

// CatalogSnapshot is a full read of the FoodDatabase table. Skipped counts the
// rows that failed the typed parse and were quarantined at the boundary.
type CatalogSnapshot struct {
	Foods   []FoodProfile `json:"foods"`
	Skipped int           `json:"skipped,omitempty"`
}

// LedgerSnapshot is a full read of the FoodLog table. Skipped counts rows
// excluded for malformed dates or unparseable numbers.
type LedgerSnapshot struct {
	Entries []LogEntry `json:"entries"`
	Skipped int        `json:"skipped,omitempty"`
}

// SheetStore is the backing store: two append-only tables with 1-based row
// deletion, read via full-table fetch. Writes are last-write-wins at the store
// level; this layer adds no concurrency control of its own.
type SheetStore interface {
	FetchFoods(ctx context.Context) (*CatalogSnapshot, error)
	AppendFood(ctx context.Context, profile FoodProfile) error
	FetchEntries(ctx context.Context) (*LedgerSnapshot, error)
	AppendEntry(ctx context.Context, entry LogEntry) error
	DeleteRow(ctx context.Context, table Table, row int) error
	ExportCSV(ctx context.Context, table Table) ([]byte, error)
}

// CacheRepository defines the read-through cache in front of the store.
// Snapshots live for a short TTL and are invalidated explicitly by writes.
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
