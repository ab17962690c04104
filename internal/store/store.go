// Package store provides catalog storage backends for CatalogBot.
//
// Backends persist completed wizard records (products and categories) and
// serve the spotlight group and category listings the wizard offers during
// its group and category steps. SQLite and Postgres implementations share
// one schema shape; an in-memory implementation backs tests and dev mode.
package store

import (
	"context"
	"strings"

	"github.com/MapleStore/CatalogBot/internal/models"
)

// Store is the persistence boundary for completed wizard records and the
// catalog taxonomy they attach to. The wizard core consumes it through its
// narrower Creator and Directory interfaces.
type Store interface {
	// CreateProduct persists a fully assembled product and returns its ID.
	CreateProduct(ctx context.Context, fields models.ProductFields) (string, error)

	// CreateCategory persists a new category under its spotlight group and
	// returns its ID.
	CreateCategory(ctx context.Context, fields models.CategoryFields) (string, error)

	// SpotlightGroups lists every spotlight group, ordered by name.
	SpotlightGroups(ctx context.Context) ([]models.SpotlightGroup, error)

	// CategoriesForGroup lists the categories under one spotlight group,
	// ordered by name. An empty slice means the group is a dead end for
	// product creation.
	CategoriesForGroup(ctx context.Context, groupID string) ([]models.CategoryRef, error)

	// Close releases the backend's resources.
	Close() error
}

// Opts holds configuration options for store implementations.
type Opts struct {
	// DSN is the data source name for connecting to the database.
	DSN string
}

// Option defines a functional option for configuring a store.
type Option func(*Opts)

// WithDSN sets the database DSN for the store.
func WithDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// DetectDSNType reports which SQL driver a DSN belongs to: "postgres" for
// URL or key=value style Postgres DSNs, "sqlite3" for everything else
// (treated as a file path).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	if strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname=") {
		return "postgres"
	}
	return "sqlite3"
}
