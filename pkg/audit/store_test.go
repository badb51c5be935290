package audit

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/store"
)

var auditCols = []string{
	"id", "object_id", "object_type", "object_name", "old_owner_id", "old_owner_name",
	"new_owner_id", "new_owner_name", "changed_by", "change_reason", "change_date", "status", "error_message",
}

func TestStoreEnsureTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	s := NewStore(db, nil)
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "prod_ownership_audit_log"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.EnsureTable(context.Background(), "prod"); err != nil {
		t.Errorf("EnsureTable() error = %v", err)
	}
	if err := s.EnsureTable(context.Background(), "Prod EU"); !errors.Is(err, store.ErrInvalidSlug) {
		t.Errorf("expected ErrInvalidSlug, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreAppend(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	var buf bytes.Buffer
	s := NewStore(db, fixedLogger(&buf))
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	s.now = func() time.Time { return now }

	mock.ExpectExec(`INSERT INTO "prod_ownership_audit_log"`).
		WithArgs(
			"a1",          // object_id
			"app",         // object_type
			"Sales",       // object_name
			"u1",          // old_owner_id
			"Alice",       // old_owner_name
			"u2",          // new_owner_id
			"Bob",         // new_owner_name
			"admin",       // changed_by
			"team change", // change_reason
			now,           // change_date
			"success",     // status
			nil,           // error_message
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = s.Append(context.Background(), "prod", model.AuditEntry{
		ObjectID: "a1", ObjectType: model.ObjectTypeApp, ObjectName: "Sales",
		OldOwnerID: "u1", OldOwnerName: "Alice", NewOwnerID: "u2", NewOwnerName: "Bob",
		ChangedBy: "admin", ChangeReason: "team change", Status: model.AuditStatusSuccess,
	})
	if err != nil {
		t.Errorf("Append() error = %v", err)
	}
	if !strings.Contains(buf.String(), "ownership-transfer") {
		t.Errorf("expected syslog line, got %q", buf.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreAppendFailureIsPersistenceError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	var buf bytes.Buffer
	s := NewStore(db, fixedLogger(&buf))
	mock.ExpectExec(`INSERT INTO`).WillReturnError(errors.New("relation does not exist"))

	err = s.Append(context.Background(), "prod", model.AuditEntry{ObjectID: "a1", Status: model.AuditStatusFailed})
	var pe *store.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected syslog line even when the insert fails")
	}
}

func TestStoreListMissingTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	s := NewStore(db, nil)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("newco_ownership_audit_log").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	entries, err := s.List(context.Background(), "newco", 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("expected empty non-nil list, got %v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	s := NewStore(db, nil)
	newer := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	older := time.Date(2024, 5, 5, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`FROM "prod_ownership_audit_log" ORDER BY change_date DESC, id DESC LIMIT \$1`).
		WithArgs(DefaultListLimit).
		WillReturnRows(sqlmock.NewRows(auditCols).
			AddRow(2, "t1", "reload_task", "Reload", "u1", "Alice", "u2", "Bob", "admin", "", newer, "failed", "HTTP 409").
			AddRow(1, "a1", "app", "Sales", "u1", "Alice", "u2", "Bob", "admin", nil, older, "success", nil))

	entries, err := s.List(context.Background(), "prod", 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != 2 || entries[0].ErrorMessage == nil || *entries[0].ErrorMessage != "HTTP 409" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].ErrorMessage != nil || entries[1].ObjectType != model.ObjectTypeApp {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
	if !entries[0].ChangeDate.After(entries[1].ChangeDate) {
		t.Error("expected newest first")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
