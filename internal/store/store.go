// Package store persists the lead collection and its audit trail behind a
// backend-agnostic interface. The reconciliation engine never touches a
// store: callers load a snapshot, reconcile in memory, and commit the
// result with ReplaceLeads.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sovcrm/crm-cli/internal/config"
	"github.com/sovcrm/crm-cli/internal/model"
)

// Store defines the persistence contract for the lead collection.
// Collection order is insertion order and is preserved by every method.
type Store interface {
	// Leads
	ListLeads(ctx context.Context) ([]model.Lead, error)
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	CreateLead(ctx context.Context, lead model.Lead) error
	UpdateLead(ctx context.Context, lead model.Lead) error
	DeleteLead(ctx context.Context, id string) error
	// ReplaceLeads swaps the whole collection transactionally; this is the
	// commit path for reconciliation results.
	ReplaceLeads(ctx context.Context, leads []model.Lead) error

	// Audit
	AppendAudit(ctx context.Context, entry model.AuditEntry) error
	ListAudit(ctx context.Context, limit int) ([]model.AuditEntry, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// ErrNotFound is returned when a lead id does not exist.
var ErrNotFound = eris.New("store: lead not found")

// Open creates the store selected by configuration.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLite(cfg.Path)
	case "postgres", "postgresql":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
