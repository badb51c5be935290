package qrs

import (
	"time"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
)

// Factory builds clients for registered tenants with shared settings.
type Factory struct {
	Timeout  time.Duration
	Logger   *zap.Logger
	Observer RequestObserver
}

// ForTenant returns a client authenticated with the tenant's certificates.
func (f Factory) ForTenant(t model.TenantConfig) (*Client, error) {
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []Option{WithLogger(logger.With(zap.String("tenant", t.Slug)))}
	if f.Observer != nil {
		opts = append(opts, WithObserver(f.Observer))
	}
	return NewClient(Config{
		ServerURL:     t.ServerURL,
		CertPath:      t.CertPath,
		KeyPath:       t.KeyPath,
		RootCertPath:  t.RootCertPath,
		UserDirectory: t.UserDirectory,
		UserID:        t.UserID,
		Timeout:       f.Timeout,
	}, opts...)
}
