package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sovcrm/crm-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Leads are stored
// as JSON documents with an explicit position column so collection order
// survives round trips.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY,
	position   INTEGER NOT NULL,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
	id         TEXT PRIMARY KEY,
	actor      TEXT NOT NULL DEFAULT '',
	action     TEXT NOT NULL,
	lead_id    TEXT NOT NULL DEFAULT '',
	detail     TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_position ON leads(position);
CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_log(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListLeads(ctx context.Context) ([]model.Lead, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM leads ORDER BY position`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close() //nolint:errcheck

	leads := []model.Lead{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		var lead model.Lead
		if err := json.Unmarshal([]byte(data), &lead); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal lead")
		}
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM leads WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get lead %s", id)
	}
	var lead model.Lead
	if err := json.Unmarshal([]byte(data), &lead); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal lead")
	}
	return &lead, nil
}

func (s *SQLiteStore) CreateLead(ctx context.Context, lead model.Lead) error {
	data, err := marshalLead(lead)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leads (id, position, data, updated_at)
		 VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM leads), ?, ?)`,
		lead.ID, data, lead.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert lead %s", lead.ID)
}

func (s *SQLiteStore) UpdateLead(ctx context.Context, lead model.Lead) error {
	data, err := marshalLead(lead)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET data = ?, updated_at = ? WHERE id = ?`,
		data, lead.UpdatedAt, lead.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead %s", lead.ID)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) DeleteLead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete lead %s", id)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) ReplaceLeads(ctx context.Context, leads []model.Lead) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin replace")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM leads`); err != nil {
		return eris.Wrap(err, "sqlite: clear leads")
	}
	for i, lead := range leads {
		data, err := marshalLead(lead)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO leads (id, position, data, updated_at) VALUES (?, ?, ?, ?)`,
			lead.ID, i, data, lead.UpdatedAt,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert lead %s", lead.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit replace")
}

func (s *SQLiteStore) AppendAudit(ctx context.Context, entry model.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, actor, action, lead_id, detail, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Actor, entry.Action, entry.LeadID, entry.Detail, entry.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert audit entry")
}

func (s *SQLiteStore) ListAudit(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, actor, action, lead_id, detail, created_at FROM audit_log ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list audit")
	}
	defer rows.Close() //nolint:errcheck

	entries := []model.AuditEntry{}
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.LeadID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan audit entry")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: iterate audit")
}

func marshalLead(lead model.Lead) (string, error) {
	data, err := json.Marshal(lead.WithoutImportMeta())
	if err != nil {
		return "", eris.Wrapf(err, "store: marshal lead %s", lead.ID)
	}
	return string(data), nil
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
