package store

import (
	"context"

	"github.com/sells-group/lead-dedup/internal/model"
)

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	Query  string `json:"query,omitempty"` // substring match on name or email
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the lead database. UpdateLead
// and DeleteLead satisfy the bulk merge orchestrator's repository contract.
type Store interface {
	// Leads
	CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error)
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	CountLeads(ctx context.Context) (int, error)
	UpdateLead(ctx context.Context, id string, fields model.MergedFieldSet) error
	DeleteLead(ctx context.Context, id string) error

	// Import
	BulkUpsertLeads(ctx context.Context, leads []model.Lead) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
