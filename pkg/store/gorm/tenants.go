package gorm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/store"
)

// Ensure TenantStore implements store.TenantStore
var _ store.TenantStore = (*TenantStore)(nil)

const tenantColumns = `id, name, slug, server_url, user_directory, user_id, is_active, created_at, updated_at, notes`

const tenantRecordColumns = tenantColumns + `, cert_path_encrypted, key_path_encrypted, root_cert_path_encrypted`

// updatableTenantColumns lists the columns Update accepts. slug is absent:
// tenant tables are named from it.
var updatableTenantColumns = map[string]bool{
	"name":                     true,
	"server_url":               true,
	"cert_path_encrypted":      true,
	"key_path_encrypted":       true,
	"root_cert_path_encrypted": true,
	"user_directory":           true,
	"user_id":                  true,
	"notes":                    true,
}

// TenantStore implements store.TenantStore using GORM
type TenantStore struct {
	db *gorm.DB
}

// NewTenantStore creates a new TenantStore
func NewTenantStore(db *gorm.DB) *TenantStore {
	return &TenantStore{db: db}
}

func (s *TenantStore) Create(ctx context.Context, t model.NewTenant) (int64, error) {
	var taken bool
	err := s.db.WithContext(ctx).
		Raw(`SELECT EXISTS (SELECT 1 FROM servers WHERE name = ? OR slug = ?)`, t.Name, t.Slug).
		Scan(&taken).Error
	if err != nil {
		return 0, store.Wrap("check tenant uniqueness", err)
	}
	if taken {
		return 0, fmt.Errorf("%w: %q", store.ErrDuplicateTenant, t.Name)
	}

	var id int64
	err = s.db.WithContext(ctx).Raw(`
		INSERT INTO servers (name, slug, server_url, cert_path_encrypted, key_path_encrypted,
			root_cert_path_encrypted, user_directory, user_id, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		t.Name, t.Slug, t.ServerURL,
		t.Credentials.CertPathEncrypted, t.Credentials.KeyPathEncrypted, t.Credentials.RootCertPathEncrypted,
		t.UserDirectory, t.UserID, t.Notes,
	).Scan(&id).Error
	if err != nil {
		return 0, store.Wrap("insert tenant", err)
	}
	return id, nil
}

func (s *TenantStore) List(ctx context.Context) ([]model.Tenant, error) {
	var tenants []model.Tenant
	err := s.db.WithContext(ctx).
		Raw(`SELECT ` + tenantColumns + ` FROM servers ORDER BY name`).
		Scan(&tenants).Error
	if err != nil {
		return nil, store.Wrap("list tenants", err)
	}
	return tenants, nil
}

func (s *TenantStore) Get(ctx context.Context, id int64) (*model.TenantRecord, error) {
	return s.getBy(ctx, "id", id)
}

func (s *TenantStore) GetByName(ctx context.Context, name string) (*model.TenantRecord, error) {
	return s.getBy(ctx, "name", name)
}

func (s *TenantStore) getBy(ctx context.Context, column string, value interface{}) (*model.TenantRecord, error) {
	var records []model.TenantRecord
	err := s.db.WithContext(ctx).
		Raw(`SELECT `+tenantRecordColumns+` FROM servers WHERE `+column+` = ? LIMIT 1`, value).
		Scan(&records).Error
	if err != nil {
		return nil, store.Wrap("get tenant", err)
	}
	if len(records) == 0 {
		return nil, store.ErrTenantNotFound
	}
	return &records[0], nil
}

func (s *TenantStore) NameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	var taken bool
	err := s.db.WithContext(ctx).
		Raw(`SELECT EXISTS (SELECT 1 FROM servers WHERE name = ? AND id <> ?)`, name, exceptID).
		Scan(&taken).Error
	if err != nil {
		return false, store.Wrap("check tenant name", err)
	}
	return taken, nil
}

func (s *TenantStore) Update(ctx context.Context, id int64, columns map[string]interface{}) (bool, error) {
	if len(columns) == 0 {
		return false, nil
	}

	names := make([]string, 0, len(columns))
	for name := range columns {
		if !updatableTenantColumns[name] {
			return false, fmt.Errorf("column %q cannot be updated", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names)+1)
	args := make([]interface{}, 0, len(names)+1)
	for _, name := range names {
		sets = append(sets, name+" = ?")
		args = append(args, columns[name])
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	tx := s.db.WithContext(ctx).Exec(`UPDATE servers SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if tx.Error != nil {
		return false, store.Wrap("update tenant", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

func (s *TenantStore) Deactivate(ctx context.Context, id int64) (bool, error) {
	tx := s.db.WithContext(ctx).Exec(`UPDATE servers SET is_active = FALSE, updated_at = NOW() WHERE id = ?`, id)
	if tx.Error != nil {
		return false, store.Wrap("deactivate tenant", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}
