package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log"

	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/config"
)

//go:embed schema.sql
var schema string

// Tables lists the domain tables in dependency order.
var Tables = []string{"users", "categories", "posts", "comments", "bookmarks", "favorites", "post_arrays"}

func SQLConfig(cfg config.DatabaseConfig) *blogapi.SQLConfig {
	return blogapi.NewSQLConfig().
		WithDriver(cfg.Driver).
		WithHost(cfg.Host, cfg.Port).
		WithCredentials(cfg.Username, cfg.Password).
		WithDatabase(cfg.Database).
		WithOption("sslmode", cfg.SSLMode).
		WithPool(cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
}

func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := SQLConfig(cfg).Connect(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("[database] connected to %s:%d/%s", cfg.Host, cfg.Port, cfg.Database)
	return db, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	log.Printf("[database] schema up to date")
	return nil
}

// Truncate empties every domain table.
func Truncate(ctx context.Context, db *sql.DB) error {
	query := "TRUNCATE TABLE "
	for i := len(Tables) - 1; i >= 0; i-- {
		query += Tables[i]
		if i > 0 {
			query += ", "
		}
	}
	_, err := db.ExecContext(ctx, query+" CASCADE")
	return err
}
