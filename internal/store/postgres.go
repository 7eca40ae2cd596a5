package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sovcrm/crm-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY,
	position   INTEGER NOT NULL,
	data       JSONB NOT NULL,
	updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	actor      TEXT NOT NULL DEFAULT '',
	action     TEXT NOT NULL,
	lead_id    TEXT NOT NULL DEFAULT '',
	detail     TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_position ON leads(position);
CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_log(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) ListLeads(ctx context.Context) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM leads ORDER BY position`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	leads := []model.Lead{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		var lead model.Lead
		if err := json.Unmarshal(data, &lead); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal lead")
		}
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: iterate leads")
}

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM leads WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get lead %s", id)
	}
	var lead model.Lead
	if err := json.Unmarshal(data, &lead); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal lead")
	}
	return &lead, nil
}

func (s *PostgresStore) CreateLead(ctx context.Context, lead model.Lead) error {
	data, err := marshalLead(lead)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO leads (id, position, data, updated_at)
		 VALUES ($1, (SELECT COALESCE(MAX(position), -1) + 1 FROM leads), $2, $3)`,
		lead.ID, data, lead.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: insert lead %s", lead.ID)
}

func (s *PostgresStore) UpdateLead(ctx context.Context, lead model.Lead) error {
	data, err := marshalLead(lead)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET data = $1, updated_at = $2 WHERE id = $3`,
		data, lead.UpdatedAt, lead.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead %s", lead.ID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteLead(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete lead %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ReplaceLeads(ctx context.Context, leads []model.Lead) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin replace")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM leads`); err != nil {
		return eris.Wrap(err, "postgres: clear leads")
	}
	for i, lead := range leads {
		data, err := marshalLead(lead)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO leads (id, position, data, updated_at) VALUES ($1, $2, $3, $4)`,
			lead.ID, i, data, lead.UpdatedAt,
		); err != nil {
			return eris.Wrapf(err, "postgres: insert lead %s", lead.ID)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit replace")
}

func (s *PostgresStore) AppendAudit(ctx context.Context, entry model.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_log (id, actor, action, lead_id, detail, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.Actor, entry.Action, entry.LeadID, entry.Detail, entry.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert audit entry")
}

func (s *PostgresStore) ListAudit(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, actor, action, lead_id, detail, created_at FROM audit_log ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list audit")
	}
	defer rows.Close()

	entries := []model.AuditEntry{}
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.LeadID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan audit entry")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: iterate audit")
}
