// Package tenant is the registry of Qlik Sense servers the manager works on.
//
// Each tenant owns a slug derived from its name. The slug is fixed at
// registration because the tenant's users, audit and snapshot tables are
// named from it. Certificate paths are stored encrypted and only decrypted
// into a TenantConfig for the sync and transfer engines.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/store"
	"github.com/doodlesbykumbi/ownership-manager/pkg/vault"
)

const (
	DefaultUserDirectory = "INTERNAL"
	DefaultUserID        = "sa_api"

	MessageConnectionOK     = "Connection successful"
	MessageConnectionFailed = "Connection failed"
)

// ErrInactive is returned when a config is requested for a deactivated tenant.
var ErrInactive = errors.New("tenant is inactive")

// ValidationError reports a bad registration or update request.
type ValidationError struct {
	Field   string
	Problem string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Problem)
}

// Provisioner creates one of a tenant's scoped tables. It must be idempotent.
type Provisioner interface {
	EnsureTable(ctx context.Context, slug string) error
}

// Prober checks that a tenant's server answers.
type Prober interface {
	TestConnection(ctx context.Context) bool
}

// ConnectFunc builds a prober for a decrypted tenant config.
type ConnectFunc func(cfg model.TenantConfig) (Prober, error)

type RegisterRequest struct {
	Name          string  `json:"name"`
	ServerURL     string  `json:"server_url"`
	CertPath      string  `json:"cert_path"`
	KeyPath       string  `json:"key_path"`
	RootCertPath  string  `json:"root_cert_path,omitempty"`
	UserDirectory string  `json:"user_directory,omitempty"`
	UserID        string  `json:"user_id,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

type Option func(*Registry)

func WithProvisioners(p ...Provisioner) Option {
	return func(r *Registry) { r.provisioners = append(r.provisioners, p...) }
}

func WithConnector(fn ConnectFunc) Option {
	return func(r *Registry) { r.connect = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDefaults sets the identity used when a request leaves it blank.
func WithDefaults(userDirectory, userID string) Option {
	return func(r *Registry) {
		if userDirectory != "" {
			r.defaultDirectory = userDirectory
		}
		if userID != "" {
			r.defaultUserID = userID
		}
	}
}

type Registry struct {
	tenants          store.TenantStore
	vault            *vault.Vault
	provisioners     []Provisioner
	connect          ConnectFunc
	logger           *zap.Logger
	defaultDirectory string
	defaultUserID    string
}

func NewRegistry(tenants store.TenantStore, v *vault.Vault, opts ...Option) *Registry {
	r := &Registry{
		tenants:          tenants,
		vault:            v,
		logger:           zap.NewNop(),
		defaultDirectory: DefaultUserDirectory,
		defaultUserID:    DefaultUserID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register stores a new tenant and provisions its tables. When provisioning
// fails the tenant row stays in place and the id is returned alongside the
// error; Provision can be retried.
func (r *Registry) Register(ctx context.Context, req RegisterRequest) (int64, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return 0, &ValidationError{Field: "name", Problem: "is required"}
	}
	if err := validateURL(req.ServerURL); err != nil {
		return 0, err
	}
	if req.CertPath == "" {
		return 0, &ValidationError{Field: "cert_path", Problem: "is required"}
	}
	if req.KeyPath == "" {
		return 0, &ValidationError{Field: "key_path", Problem: "is required"}
	}

	slug := store.Slugify(name)
	if err := store.ValidateSlug(slug); err != nil {
		return 0, &ValidationError{Field: "name", Problem: "must contain at least one letter or digit"}
	}

	creds, err := r.encryptCredentials(req.CertPath, req.KeyPath, req.RootCertPath)
	if err != nil {
		return 0, err
	}

	directory, userID := req.UserDirectory, req.UserID
	if directory == "" {
		directory = r.defaultDirectory
	}
	if userID == "" {
		userID = r.defaultUserID
	}

	id, err := r.tenants.Create(ctx, model.NewTenant{
		Name:          name,
		Slug:          slug,
		ServerURL:     strings.TrimRight(req.ServerURL, "/"),
		Credentials:   creds,
		UserDirectory: directory,
		UserID:        userID,
		Notes:         req.Notes,
	})
	if err != nil {
		return 0, err
	}
	r.logger.Info("tenant registered", zap.Int64("tenant_id", id), zap.String("slug", slug))

	if err := r.provision(ctx, slug); err != nil {
		return id, err
	}
	return id, nil
}

// Provision (re)creates the tenant's scoped tables.
func (r *Registry) Provision(ctx context.Context, id int64) error {
	rec, err := r.tenants.Get(ctx, id)
	if err != nil {
		return err
	}
	return r.provision(ctx, rec.Slug)
}

func (r *Registry) provision(ctx context.Context, slug string) error {
	for _, p := range r.provisioners {
		if err := p.EnsureTable(ctx, slug); err != nil {
			r.logger.Error("provisioning tenant tables failed", zap.String("slug", slug), zap.Error(err))
			return fmt.Errorf("provisioning tables for %s: %w", slug, err)
		}
	}
	return nil
}

func (r *Registry) encryptCredentials(certPath, keyPath, rootCertPath string) (model.TenantCredentials, error) {
	var creds model.TenantCredentials
	var err error
	if creds.CertPathEncrypted, err = r.vault.Encrypt(certPath); err != nil {
		return creds, err
	}
	if creds.KeyPathEncrypted, err = r.vault.Encrypt(keyPath); err != nil {
		return creds, err
	}
	if creds.RootCertPathEncrypted, err = r.vault.EncryptOptional(rootCertPath); err != nil {
		return creds, err
	}
	return creds, nil
}

// List returns all tenants without credentials.
func (r *Registry) List(ctx context.Context) ([]model.Tenant, error) {
	return r.tenants.List(ctx)
}

// Get returns a tenant without credentials.
func (r *Registry) Get(ctx context.Context, id int64) (*model.Tenant, error) {
	rec, err := r.tenants.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rec.Tenant, nil
}

// Config returns the active tenant's settings with credentials decrypted.
func (r *Registry) Config(ctx context.Context, id int64) (*model.TenantConfig, error) {
	rec, err := r.tenants.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.config(rec)
}

// ConfigByName is Config for a tenant looked up by display name.
func (r *Registry) ConfigByName(ctx context.Context, name string) (*model.TenantConfig, error) {
	rec, err := r.tenants.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return r.config(rec)
}

func (r *Registry) config(rec *model.TenantRecord) (*model.TenantConfig, error) {
	if !rec.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrInactive, rec.Name)
	}
	certPath, err := r.vault.Decrypt(rec.CertPathEncrypted)
	if err != nil {
		return nil, fmt.Errorf("certificate path of %s: %w", rec.Name, err)
	}
	keyPath, err := r.vault.Decrypt(rec.KeyPathEncrypted)
	if err != nil {
		return nil, fmt.Errorf("key path of %s: %w", rec.Name, err)
	}
	rootPath, err := r.vault.DecryptOptional(rec.RootCertPathEncrypted)
	if err != nil {
		return nil, fmt.Errorf("root certificate path of %s: %w", rec.Name, err)
	}
	cfg := &model.TenantConfig{
		ID:            rec.ID,
		Name:          rec.Name,
		Slug:          rec.Slug,
		ServerURL:     rec.ServerURL,
		CertPath:      certPath,
		KeyPath:       keyPath,
		RootCertPath:  rootPath,
		UserDirectory: rec.UserDirectory,
		UserID:        rec.UserID,
	}
	if rec.Notes != nil {
		cfg.Notes = *rec.Notes
	}
	return cfg, nil
}

// Update applies the supplied fields only. It returns false without
// touching the database when nothing was supplied.
func (r *Registry) Update(ctx context.Context, id int64, u model.TenantUpdate) (bool, error) {
	if u.IsEmpty() {
		return false, nil
	}

	columns := map[string]interface{}{}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return false, &ValidationError{Field: "name", Problem: "must not be empty"}
		}
		taken, err := r.tenants.NameTaken(ctx, name, id)
		if err != nil {
			return false, err
		}
		if taken {
			return false, fmt.Errorf("%w: %q", store.ErrDuplicateTenant, name)
		}
		columns["name"] = name
	}
	if u.ServerURL != nil {
		if err := validateURL(*u.ServerURL); err != nil {
			return false, err
		}
		columns["server_url"] = strings.TrimRight(*u.ServerURL, "/")
	}
	if u.CertPath != nil {
		enc, err := r.vault.Encrypt(*u.CertPath)
		if err != nil {
			return false, err
		}
		columns["cert_path_encrypted"] = enc
	}
	if u.KeyPath != nil {
		enc, err := r.vault.Encrypt(*u.KeyPath)
		if err != nil {
			return false, err
		}
		columns["key_path_encrypted"] = enc
	}
	if u.RootCertPath != nil {
		enc, err := r.vault.EncryptOptional(*u.RootCertPath)
		if err != nil {
			return false, err
		}
		columns["root_cert_path_encrypted"] = enc
	}
	if u.UserDirectory != nil {
		columns["user_directory"] = *u.UserDirectory
	}
	if u.UserID != nil {
		columns["user_id"] = *u.UserID
	}
	if u.Notes != nil {
		columns["notes"] = *u.Notes
	}

	ok, err := r.tenants.Update(ctx, id, columns)
	if err != nil {
		return false, err
	}
	if ok {
		r.logger.Info("tenant updated", zap.Int64("tenant_id", id), zap.Int("fields", len(columns)))
	}
	return ok, nil
}

// Deactivate soft-deletes a tenant. Snapshots, users and audit history stay.
func (r *Registry) Deactivate(ctx context.Context, id int64) (bool, error) {
	ok, err := r.tenants.Deactivate(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		r.logger.Info("tenant deactivated", zap.Int64("tenant_id", id))
	}
	return ok, nil
}

// TestConnection probes the tenant's server. It never returns an error;
// the message says what happened.
func (r *Registry) TestConnection(ctx context.Context, id int64) (bool, string) {
	cfg, err := r.Config(ctx, id)
	if err != nil {
		return false, err.Error()
	}
	if r.connect == nil {
		return false, "no connector configured"
	}
	client, err := r.connect(*cfg)
	if err != nil {
		return false, err.Error()
	}
	if client.TestConnection(ctx) {
		return true, MessageConnectionOK
	}
	return false, MessageConnectionFailed
}

func validateURL(raw string) error {
	if raw == "" {
		return &ValidationError{Field: "server_url", Problem: "is required"}
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return &ValidationError{Field: "server_url", Problem: "must be an absolute http(s) URL"}
	}
	return nil
}
