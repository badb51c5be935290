package model

import "time"

type Tenant struct {
	ID            int64     `gorm:"column:id" json:"id"`
	Name          string    `gorm:"column:name" json:"name"`
	Slug          string    `gorm:"column:slug" json:"slug"`
	ServerURL     string    `gorm:"column:server_url" json:"server_url"`
	UserDirectory string    `gorm:"column:user_directory" json:"user_directory"`
	UserID        string    `gorm:"column:user_id" json:"user_id"`
	IsActive      bool      `gorm:"column:is_active" json:"is_active"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
	Notes         *string   `gorm:"column:notes" json:"notes,omitempty"`
}

// TenantCredentials is the encrypted form of a tenant's certificate paths as
// stored in the registry.
type TenantCredentials struct {
	CertPathEncrypted     string  `gorm:"column:cert_path_encrypted"`
	KeyPathEncrypted      string  `gorm:"column:key_path_encrypted"`
	RootCertPathEncrypted *string `gorm:"column:root_cert_path_encrypted"`
}

// TenantRecord is a full registry row, credentials included.
type TenantRecord struct {
	Tenant
	TenantCredentials
}

// TenantConfig holds decrypted credentials. It must not be persisted or logged.
type TenantConfig struct {
	ID            int64
	Name          string
	Slug          string
	ServerURL     string
	CertPath      string
	KeyPath       string
	RootCertPath  string
	UserDirectory string
	UserID        string
	Notes         string
}

// NewTenant carries the already encrypted values for a registry insert.
type NewTenant struct {
	Name          string
	Slug          string
	ServerURL     string
	Credentials   TenantCredentials
	UserDirectory string
	UserID        string
	Notes         *string
}

// TenantUpdate is a partial update; nil fields are left untouched.
type TenantUpdate struct {
	Name          *string `json:"name,omitempty"`
	ServerURL     *string `json:"server_url,omitempty"`
	CertPath      *string `json:"cert_path,omitempty"`
	KeyPath       *string `json:"key_path,omitempty"`
	RootCertPath  *string `json:"root_cert_path,omitempty"`
	UserDirectory *string `json:"user_directory,omitempty"`
	UserID        *string `json:"user_id,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// IsEmpty reports whether no field was supplied.
func (u TenantUpdate) IsEmpty() bool {
	return u.Name == nil && u.ServerURL == nil && u.CertPath == nil && u.KeyPath == nil &&
		u.RootCertPath == nil && u.UserDirectory == nil && u.UserID == nil && u.Notes == nil
}
