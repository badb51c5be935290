package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/store"
)

const createAuditSQL = `CREATE TABLE IF NOT EXISTS %s (
	id SERIAL PRIMARY KEY,
	object_id VARCHAR(100),
	object_type VARCHAR(50),
	object_name VARCHAR(500),
	old_owner_id VARCHAR(100),
	old_owner_name VARCHAR(255),
	new_owner_id VARCHAR(100),
	new_owner_name VARCHAR(255),
	changed_by VARCHAR(255),
	change_reason TEXT,
	change_date TIMESTAMP DEFAULT NOW(),
	status VARCHAR(50),
	error_message TEXT
)`

// DefaultListLimit is used when List is called with a non-positive limit.
const DefaultListLimit = 100

// Store persists audit entries to the per-tenant audit tables
type Store struct {
	db     *sql.DB
	logger *Logger
	now    func() time.Time
}

// NewStore creates a store over an open connection. logger may be nil to
// skip the syslog line.
func NewStore(db *sql.DB, logger *Logger) *Store {
	return &Store{db: db, logger: logger, now: time.Now}
}

// EnsureTable creates the audit table of slug if it does not exist.
func (s *Store) EnsureTable(ctx context.Context, slug string) error {
	table, err := store.AuditTable(slug)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(createAuditSQL, store.QuoteIdent(table)))
	return store.Wrap("create "+table, err)
}

// Append records one entry. The syslog line is written even when the
// insert fails.
func (s *Store) Append(ctx context.Context, slug string, entry model.AuditEntry) error {
	table, err := store.AuditTable(slug)
	if err != nil {
		return err
	}
	if entry.ChangeDate.IsZero() {
		entry.ChangeDate = s.now().UTC()
	}

	s.logger.Log(TransferEvent{Tenant: slug, Entry: entry})

	_, err = s.db.ExecContext(ctx, `INSERT INTO `+store.QuoteIdent(table)+`
		(object_id, object_type, object_name, old_owner_id, old_owner_name,
		 new_owner_id, new_owner_name, changed_by, change_reason, change_date, status, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		entry.ObjectID,
		string(entry.ObjectType),
		entry.ObjectName,
		entry.OldOwnerID,
		entry.OldOwnerName,
		entry.NewOwnerID,
		entry.NewOwnerName,
		entry.ChangedBy,
		entry.ChangeReason,
		entry.ChangeDate,
		entry.Status,
		entry.ErrorMessage,
	)
	return store.Wrap("append audit entry to "+table, err)
}

// List returns up to limit entries, newest first. A tenant without an audit
// table has no entries.
func (s *Store) List(ctx context.Context, slug string, limit int) ([]model.AuditEntry, error) {
	table, err := store.AuditTable(slug)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var exists bool
	err = s.db.QueryRowContext(ctx, `SELECT EXISTS (
		SELECT 1 FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name = $1)`, table).Scan(&exists)
	if err != nil {
		return nil, store.Wrap("check "+table, err)
	}
	if !exists {
		return []model.AuditEntry{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, object_id, object_type, object_name,
		old_owner_id, old_owner_name, new_owner_id, new_owner_name, changed_by,
		change_reason, change_date, status, error_message
		FROM `+store.QuoteIdent(table)+`
		ORDER BY change_date DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, store.Wrap("list "+table, err)
	}
	defer rows.Close()

	entries := []model.AuditEntry{}
	for rows.Next() {
		var (
			e                                              model.AuditEntry
			objectID, objectType, objectName               sql.NullString
			oldOwnerID, oldOwnerName, newOwnerID, newOwner sql.NullString
			changedBy, reason, status, errMsg              sql.NullString
			changeDate                                     sql.NullTime
		)
		if err := rows.Scan(&e.ID, &objectID, &objectType, &objectName,
			&oldOwnerID, &oldOwnerName, &newOwnerID, &newOwner, &changedBy,
			&reason, &changeDate, &status, &errMsg); err != nil {
			return nil, store.Wrap("scan "+table, err)
		}
		e.ObjectID = objectID.String
		e.ObjectType = model.ObjectType(objectType.String)
		e.ObjectName = objectName.String
		e.OldOwnerID = oldOwnerID.String
		e.OldOwnerName = oldOwnerName.String
		e.NewOwnerID = newOwnerID.String
		e.NewOwnerName = newOwner.String
		e.ChangedBy = changedBy.String
		e.ChangeReason = reason.String
		e.ChangeDate = changeDate.Time
		e.Status = status.String
		if errMsg.Valid {
			msg := errMsg.String
			e.ErrorMessage = &msg
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap("list "+table, err)
	}
	return entries, nil
}
