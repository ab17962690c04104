// This file implements the PostgreSQL-backed catalog store.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/MapleStore/CatalogBot/internal/models"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	slog.Debug("Opening Postgres database connection")
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

// CreateProduct inserts the product row and its image rows in one transaction.
func (s *PostgresStore) CreateProduct(ctx context.Context, fields models.ProductFields) (string, error) {
	sizesJSON, quantitiesJSON, err := encodeSizes(fields)
	if err != nil {
		slog.Error("PostgresStore CreateProduct size encoding failed", "error", err, "name", fields.Name)
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("PostgresStore CreateProduct begin failed", "error", err)
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO products (id, name, description, brand, color_name, color_hex, category_id, sizes, quantities, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, fields.Name, fields.Description, fields.Brand, fields.ColorName, fields.ColorHex,
		fields.CategoryID, sizesJSON, quantitiesJSON, fields.Price)
	if err != nil {
		slog.Error("PostgresStore CreateProduct insert failed", "error", err, "name", fields.Name)
		return "", fmt.Errorf("failed to insert product %s: %w", fields.Name, err)
	}

	for i, ref := range fields.ImageRefs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO product_images (product_id, position, attachment_ref) VALUES ($1, $2, $3)`,
			id, i, string(ref))
		if err != nil {
			slog.Error("PostgresStore CreateProduct image insert failed", "error", err, "productID", id, "position", i)
			return "", fmt.Errorf("failed to insert product image %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("PostgresStore CreateProduct commit failed", "error", err, "productID", id)
		return "", fmt.Errorf("failed to commit product %s: %w", fields.Name, err)
	}
	slog.Debug("PostgresStore CreateProduct succeeded", "id", id, "name", fields.Name, "images", len(fields.ImageRefs))
	return id, nil
}

// CreateCategory inserts a category under its spotlight group.
func (s *PostgresStore) CreateCategory(ctx context.Context, fields models.CategoryFields) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, group_id) VALUES ($1, $2, $3)`,
		id, fields.Name, fields.SpotlightGroupID)
	if err != nil {
		slog.Error("PostgresStore CreateCategory failed", "error", err, "name", fields.Name)
		return "", fmt.Errorf("failed to insert category %s: %w", fields.Name, err)
	}
	slog.Debug("PostgresStore CreateCategory succeeded", "id", id, "name", fields.Name)
	return id, nil
}

func (s *PostgresStore) SpotlightGroups(ctx context.Context) ([]models.SpotlightGroup, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM spotlight_groups ORDER BY name`)
	if err != nil {
		slog.Error("PostgresStore SpotlightGroups query failed", "error", err)
		return nil, fmt.Errorf("failed to query spotlight groups: %w", err)
	}
	defer rows.Close()
	return scanGroups(rows)
}

func (s *PostgresStore) CategoriesForGroup(ctx context.Context, groupID string) ([]models.CategoryRef, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories WHERE group_id = $1 ORDER BY name`, groupID)
	if err != nil {
		slog.Error("PostgresStore CategoriesForGroup query failed", "error", err, "groupID", groupID)
		return nil, fmt.Errorf("failed to query categories for group %s: %w", groupID, err)
	}
	defer rows.Close()
	return scanCategories(rows)
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
