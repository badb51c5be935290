// Package model defines the data types shared by the ownership manager.
//
// The types map onto the Postgres layout used by the stores:
//
//   - Tenant: one row of the servers registry table
//   - TenantConfig: a tenant with its credential paths decrypted
//   - RemoteObject: one row of an object_ownership_<slug>_<YYYYMMDD> generation
//   - User: one row of a <slug>_users table
//   - AuditEntry: one row of a <slug>_ownership_audit_log table
//
// Column names are carried in gorm tags so that rows scanned from the
// dynamically named tenant tables land in the right fields.
package model
