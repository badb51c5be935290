// Package store defines the storage interfaces used by the ownership manager.
//
// Tenant-scoped tables are named from the tenant slug. The slug is checked
// against a strict character set before it is placed in any identifier,
// see ValidateSlug and the table helpers in tables.go.
//
// # Available Stores
//
//   - TenantStore: the servers registry
//   - SnapshotStore: dated object_ownership_<slug>_<YYYYMMDD> generations
//   - UserStore: the <slug>_users table
//   - HealthStore: database connectivity
//
// The gorm subpackage provides the Postgres implementations.
package store
