package migration

import (
	"context"

	"hypoavg/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db sqlx.ExecerContext) error
	Version() string
}

// MigrationRunner creates the evidence schema tables
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all migrations in order. Every step is idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db sqlx.ExecerContext) error {
	if err := r.createEvidenceSchemaTable(ctx, db); err != nil {
		return errors.WithCodef(errors.CodeDatabaseError, err, "failed to create evidence_schema table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.WithCodef(errors.CodeDatabaseError, err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createEvidenceSchemaTable(ctx context.Context, db sqlx.ExecerContext) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS evidence_schema (
			hypothesis  TEXT    NOT NULL,
			position    INTEGER NOT NULL,
			evidence_id INTEGER NOT NULL,
			head        TEXT    NOT NULL DEFAULT '',
			PRIMARY KEY (hypothesis, evidence_id)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db sqlx.ExecerContext) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_evidence_schema_position
		ON evidence_schema (hypothesis, position)
	`)
	return err
}
