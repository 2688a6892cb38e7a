package schema

import (
	"context"

	"hypoavg/domain/average"
	"hypoavg/internal/errors"
	"hypoavg/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresStore reads schemas from the evidence_schema table, ordered by position
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an open connection
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgresStore connects to url and makes sure the table exists
func OpenPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to schema database", err)
	}
	store := NewPostgresStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// EnsureSchema creates the evidence_schema table if it is missing
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	return migration.NewRunner().Run(ctx, s.db)
}

// Load implements Store
func (s *PostgresStore) Load(ctx context.Context, hypothesis string) (average.EvidenceSchema, error) {
	var rows []average.SchemaEntry
	err := s.db.SelectContext(ctx, &rows, `
		SELECT evidence_id, head
		FROM evidence_schema
		WHERE hypothesis = $1
		ORDER BY position ASC, evidence_id ASC
	`, hypothesis)
	if err != nil {
		return nil, errors.DatabaseError("failed to load evidence schema for "+hypothesis, err)
	}
	if len(rows) == 0 {
		return nil, errors.SchemaMissing(hypothesis)
	}
	return average.EvidenceSchema(rows), nil
}

// Replace swaps the whole schema of a hypothesis in one transaction
func (s *PostgresStore) Replace(ctx context.Context, hypothesis string, schema average.EvidenceSchema) error {
	if err := Validate(hypothesis, schema); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM evidence_schema WHERE hypothesis = $1`, hypothesis); err != nil {
		return errors.DatabaseError("failed to clear evidence schema", err)
	}
	for position, entry := range schema {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO evidence_schema (hypothesis, position, evidence_id, head)
			VALUES ($1, $2, $3, $4)
		`, hypothesis, position, entry.ID, entry.Head)
		if err != nil {
			return errors.DatabaseError("failed to insert evidence schema row", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit evidence schema", err)
	}
	return nil
}

// Close releases the connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
