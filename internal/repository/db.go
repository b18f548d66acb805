// Package repository persists processed document records in a local SQLite
// database for the review/export workflow.
package repository

import (
	"context"
	"database/sql"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/vparedes/boletas-ocr/internal/common"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS documents (
	id            TEXT PRIMARY KEY,
	source_path   TEXT NOT NULL,
	status        TEXT NOT NULL,
	engine        TEXT NOT NULL DEFAULT '',
	confidence    REAL NOT NULL DEFAULT 0,
	needs_review  INTEGER NOT NULL DEFAULT 0,
	missing_count INTEGER NOT NULL DEFAULT 0,
	payload       TEXT NOT NULL,
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_review ON documents(needs_review, created_at);
`

// Open opens (creating if needed) the results database and applies the
// schema.
func Open(ctx context.Context, cfg common.StoreConfig, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("opening results database", "path", cfg.DBPath)

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, common.NewAppError("DB_OPEN", "open sqlite database", err)
	}
	// modernc.org/sqlite is single-writer; keep the pool at one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		_ = db.Close()
		return nil, common.NewAppError("DB_MIGRATE", "apply schema", err)
	}
	return db, nil
}
