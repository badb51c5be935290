package gorm

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/store"
)

var tenantRecordCols = []string{
	"id", "name", "slug", "server_url", "user_directory", "user_id", "is_active",
	"created_at", "updated_at", "notes",
	"cert_path_encrypted", "key_path_encrypted", "root_cert_path_encrypted",
}

func newTenant() model.NewTenant {
	return model.NewTenant{
		Name:      "Prod",
		Slug:      "prod",
		ServerURL: "https://qlik.example.com:4242",
		Credentials: model.TenantCredentials{
			CertPathEncrypted: "enc-cert",
			KeyPathEncrypted:  "enc-key",
		},
		UserDirectory: "INTERNAL",
		UserID:        "sa_api",
	}
}

func TestTenantStoreCreate(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewTenantStore(db)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM servers WHERE name = \$1 OR slug = \$2\)`).
		WithArgs("Prod", "prod").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO servers`).
		WithArgs("Prod", "prod", "https://qlik.example.com:4242", "enc-cert", "enc-key", nil, "INTERNAL", "sa_api", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, err := s.Create(context.Background(), newTenant())
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantStoreCreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewTenantStore(db)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("Prod", "prod").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := s.Create(context.Background(), newTenant())
	assert.True(t, errors.Is(err, store.ErrDuplicateTenant))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantStoreCreateInsertFailure(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewTenantStore(db)

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO servers`).
		WillReturnError(errors.New("connection refused"))

	_, err := s.Create(context.Background(), newTenant())
	var pe *store.PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "insert tenant", pe.Op)
}

func TestTenantStoreList(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewTenantStore(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, name, slug, server_url, .* FROM servers ORDER BY name`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "server_url", "user_directory", "user_id", "is_active", "created_at", "updated_at", "notes"}).
			AddRow(1, "Dev", "dev", "https://dev:4242", "INTERNAL", "sa_api", true, now, now, nil).
			AddRow(2, "Prod", "prod", "https://prod:4242", "INTERNAL", "sa_api", false, now, now, "primary"))

	tenants, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tenants, 2)
	assert.Equal(t, "dev", tenants[0].Slug)
	assert.Nil(t, tenants[0].Notes)
	assert.False(t, tenants[1].IsActive)
	require.NotNil(t, tenants[1].Notes)
	assert.Equal(t, "primary", *tenants[1].Notes)
}

func TestTenantStoreGet(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewTenantStore(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM servers WHERE id = \$1 LIMIT 1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(tenantRecordCols).
			AddRow(3, "Prod", "prod", "https://prod:4242", "INTERNAL", "sa_api", true, now, now, nil, "enc-cert", "enc-key", "enc-root"))

	rec, err := s.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.ID)
	assert.Equal(t, "enc-cert", rec.CertPathEncrypted)
	require.NotNil(t, rec.RootCertPathEncrypted)
	assert.Equal(t, "enc-root", *rec.RootCertPathEncrypted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantStoreGetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewTenantStore(db)

	mock.ExpectQuery(`FROM servers WHERE name = \$1`).
		WithArgs("Nope").
		WillReturnRows(sqlmock.NewRows(tenantRecordCols))

	_, err := s.GetByName(context.Background(), "Nope")
	assert.True(t, errors.Is(err, store.ErrTenantNotFound))
}

func TestTenantStoreUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewTenantStore(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE servers SET name = $1, notes = $2, updated_at = NOW() WHERE id = $3`)).
		WithArgs("Production", "moved", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := s.Update(context.Background(), 3, map[string]interface{}{"notes": "moved", "name": "Production"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantStoreUpdateRejectsSlug(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewTenantStore(db)

	_, err := s.Update(context.Background(), 3, map[string]interface{}{"slug": "other"})
	assert.Error(t, err)

	ok, err := s.Update(context.Background(), 3, nil)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantStoreDeactivate(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewTenantStore(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE servers SET is_active = FALSE, updated_at = NOW() WHERE id = $1`)).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE servers SET is_active = FALSE`).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := s.Deactivate(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Deactivate(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantStoreNameTaken(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewTenantStore(db)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM servers WHERE name = \$1 AND id <> \$2\)`).
		WithArgs("Prod", 4).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := s.NameTaken(context.Background(), "Prod", 4)
	require.NoError(t, err)
	assert.True(t, taken)
}
