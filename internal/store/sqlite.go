// This file implements the SQLite-backed catalog store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/MapleStore/CatalogBot/internal/models"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	slog.Debug("Opening SQLite database connection")
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist and spotlight groups are seeded
	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// CreateProduct inserts the product row and its image rows in one transaction.
func (s *SQLiteStore) CreateProduct(ctx context.Context, fields models.ProductFields) (string, error) {
	sizesJSON, quantitiesJSON, err := encodeSizes(fields)
	if err != nil {
		slog.Error("SQLiteStore CreateProduct size encoding failed", "error", err, "name", fields.Name)
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("SQLiteStore CreateProduct begin failed", "error", err)
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO products (id, name, description, brand, color_name, color_hex, category_id, sizes, quantities, price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, fields.Name, fields.Description, fields.Brand, fields.ColorName, fields.ColorHex,
		fields.CategoryID, sizesJSON, quantitiesJSON, fields.Price)
	if err != nil {
		slog.Error("SQLiteStore CreateProduct insert failed", "error", err, "name", fields.Name)
		return "", fmt.Errorf("failed to insert product %s: %w", fields.Name, err)
	}

	for i, ref := range fields.ImageRefs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO product_images (product_id, position, attachment_ref) VALUES (?, ?, ?)`,
			id, i, string(ref))
		if err != nil {
			slog.Error("SQLiteStore CreateProduct image insert failed", "error", err, "productID", id, "position", i)
			return "", fmt.Errorf("failed to insert product image %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("SQLiteStore CreateProduct commit failed", "error", err, "productID", id)
		return "", fmt.Errorf("failed to commit product %s: %w", fields.Name, err)
	}
	slog.Debug("SQLiteStore CreateProduct succeeded", "id", id, "name", fields.Name, "images", len(fields.ImageRefs))
	return id, nil
}

// CreateCategory inserts a category under its spotlight group.
func (s *SQLiteStore) CreateCategory(ctx context.Context, fields models.CategoryFields) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, group_id) VALUES (?, ?, ?)`,
		id, fields.Name, fields.SpotlightGroupID)
	if err != nil {
		slog.Error("SQLiteStore CreateCategory failed", "error", err, "name", fields.Name)
		return "", fmt.Errorf("failed to insert category %s: %w", fields.Name, err)
	}
	slog.Debug("SQLiteStore CreateCategory succeeded", "id", id, "name", fields.Name)
	return id, nil
}

func (s *SQLiteStore) SpotlightGroups(ctx context.Context) ([]models.SpotlightGroup, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM spotlight_groups ORDER BY name`)
	if err != nil {
		slog.Error("SQLiteStore SpotlightGroups query failed", "error", err)
		return nil, fmt.Errorf("failed to query spotlight groups: %w", err)
	}
	defer rows.Close()
	return scanGroups(rows)
}

func (s *SQLiteStore) CategoriesForGroup(ctx context.Context, groupID string) ([]models.CategoryRef, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories WHERE group_id = ? ORDER BY name`, groupID)
	if err != nil {
		slog.Error("SQLiteStore CategoriesForGroup query failed", "error", err, "groupID", groupID)
		return nil, fmt.Errorf("failed to query categories for group %s: %w", groupID, err)
	}
	defer rows.Close()
	return scanCategories(rows)
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}

// encodeSizes converts the ordered size selection and its quantities to JSON
// strings for storage in TEXT columns.
func encodeSizes(fields models.ProductFields) (string, string, error) {
	sizes, err := json.Marshal(fields.SizeOrder)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal sizes: %w", err)
	}
	quantities, err := json.Marshal(fields.Quantities)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal quantities: %w", err)
	}
	return string(sizes), string(quantities), nil
}

func scanGroups(rows *sql.Rows) ([]models.SpotlightGroup, error) {
	var groups []models.SpotlightGroup
	for rows.Next() {
		var g models.SpotlightGroup
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("failed to scan spotlight group row: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate spotlight group rows: %w", err)
	}
	return groups, nil
}

func scanCategories(rows *sql.Rows) ([]models.CategoryRef, error) {
	var refs []models.CategoryRef
	for rows.Next() {
		var c models.CategoryRef
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		refs = append(refs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category rows: %w", err)
	}
	return refs, nil
}
