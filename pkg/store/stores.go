package store

import (
	"context"
	"time"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
)

// TenantStore abstracts the servers registry
type TenantStore interface {
	// Create inserts a tenant and returns its id.
	// Returns ErrDuplicateTenant if the name or slug is taken.
	Create(ctx context.Context, t model.NewTenant) (int64, error)

	// List returns all tenants ordered by name, without credentials.
	List(ctx context.Context) ([]model.Tenant, error)

	// Get returns the full record, credentials included.
	// Returns ErrTenantNotFound if no tenant has the id.
	Get(ctx context.Context, id int64) (*model.TenantRecord, error)

	// GetByName returns the full record of the tenant with the given name.
	GetByName(ctx context.Context, name string) (*model.TenantRecord, error)

	// NameTaken reports whether another tenant already uses name.
	NameTaken(ctx context.Context, name string, exceptID int64) (bool, error)

	// Update sets the given columns and bumps updated_at. It reports
	// whether a row was changed.
	Update(ctx context.Context, id int64, columns map[string]interface{}) (bool, error)

	// Deactivate clears is_active. Nothing else about the tenant changes.
	Deactivate(ctx context.Context, id int64) (bool, error)
}

// SnapshotStore abstracts snapshot generation tables
type SnapshotStore interface {
	// EnsureGeneration creates the generation table for slug on day if it
	// does not exist and returns its name.
	EnsureGeneration(ctx context.Context, slug string, day time.Time) (string, error)

	// UpsertObjects writes objects keyed by object id in one transaction.
	UpsertObjects(ctx context.Context, table string, objects []model.RemoteObject) error

	// LatestGeneration returns the newest generation table of slug.
	// Returns ErrNoSnapshot if none exists.
	LatestGeneration(ctx context.Context, slug string) (string, error)

	// ListGenerations returns all generations of slug, newest first.
	ListGenerations(ctx context.Context, slug string) ([]model.Generation, error)

	// ListObjects returns every object in a generation ordered by name.
	ListObjects(ctx context.Context, table string) ([]model.RemoteObject, error)

	// GetObject returns one object. Returns ErrObjectNotFound if absent.
	GetObject(ctx context.Context, table, objectID string) (*model.RemoteObject, error)
}

// UserStore abstracts the per-tenant users table
type UserStore interface {
	// EnsureTable creates the users table of slug if it does not exist.
	EnsureTable(ctx context.Context, slug string) error

	// TableExists reports whether the users table of slug exists.
	TableExists(ctx context.Context, slug string) (bool, error)

	// UpsertUsers writes users keyed by user id in one transaction.
	UpsertUsers(ctx context.Context, slug string, users []model.User) error

	// ListUsers returns the tenant's users ordered by name.
	ListUsers(ctx context.Context, slug string) ([]model.User, error)

	// GetUser returns one user. Returns ErrUserNotFound if absent.
	GetUser(ctx context.Context, slug, userID string) (*model.User, error)
}

// HealthStore provides health check operations
type HealthStore interface {
	// CheckConnectivity verifies database connectivity
	CheckConnectivity(ctx context.Context) error
}
