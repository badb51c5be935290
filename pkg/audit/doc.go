// Package audit records ownership-change attempts.
//
// Every attempt is written twice: as an RFC5424 syslog line for log
// shippers, and as a row in the tenant's <slug>_ownership_audit_log table.
// Rows are append-only. Nothing in this package updates or deletes them.
//
// # Usage
//
//	store := audit.NewStore(sqlDB, audit.NewLogger())
//	if err := store.Append(ctx, "prod", entry); err != nil {
//	    // the remote change already happened; log and move on
//	}
//	entries, err := store.List(ctx, "prod", 100)
package audit
