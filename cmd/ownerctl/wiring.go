package main

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/ownership-manager/pkg/audit"
	"github.com/doodlesbykumbi/ownership-manager/pkg/config"
	"github.com/doodlesbykumbi/ownership-manager/pkg/db"
	"github.com/doodlesbykumbi/ownership-manager/pkg/inventory"
	"github.com/doodlesbykumbi/ownership-manager/pkg/logging"
	"github.com/doodlesbykumbi/ownership-manager/pkg/metrics"
	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/qrs"
	gormstore "github.com/doodlesbykumbi/ownership-manager/pkg/store/gorm"
	"github.com/doodlesbykumbi/ownership-manager/pkg/syncer"
	"github.com/doodlesbykumbi/ownership-manager/pkg/tenant"
	"github.com/doodlesbykumbi/ownership-manager/pkg/transfer"
	"github.com/doodlesbykumbi/ownership-manager/pkg/vault"
)

// app holds the components shared by the server and the one-shot commands.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB

	metrics   *metrics.Collector
	tenants   *tenant.Registry
	syncer    *syncer.Engine
	transfers *transfer.Engine
	inventory *inventory.Service
	audit     *audit.Store
	health    *gormstore.HealthStore
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	v, err := vault.NewFromBase64(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("unable to initiate vault: %w", err)
	}

	gdb, err := db.Connect(db.Config{
		URL:          cfg.DatabaseURL,
		Debug:        cfg.LogLevel == "debug",
		MaxOpenConns: cfg.SyncConcurrency*2 + 2,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	collector := metrics.NewCollector()
	factory := qrs.Factory{Timeout: cfg.Timeout(), Logger: logger, Observer: collector}

	snapshots := gormstore.NewSnapshotStore(gdb)
	users := gormstore.NewUserStore(gdb)
	auditStore := audit.NewStore(sqlDB, audit.NewLogger())

	registry := tenant.NewRegistry(
		gormstore.NewTenantStore(gdb), v,
		tenant.WithProvisioners(users, auditStore),
		tenant.WithConnector(func(c model.TenantConfig) (tenant.Prober, error) {
			client, err := factory.ForTenant(c)
			if err != nil {
				return nil, err
			}
			return client, nil
		}),
		tenant.WithLogger(logger.Named("tenant")),
		tenant.WithDefaults(cfg.DefaultUserDirectory, cfg.DefaultUserID),
	)

	syncEngine := syncer.NewEngine(snapshots, users,
		func(c model.TenantConfig) (syncer.Remote, error) {
			client, err := factory.ForTenant(c)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
		syncer.WithLogger(logger.Named("sync")),
		syncer.WithRecorder(collector),
	)

	transferEngine := transfer.NewEngine(snapshots, users, auditStore,
		func(c model.TenantConfig) (transfer.Mutator, error) {
			client, err := factory.ForTenant(c)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
		transfer.WithLogger(logger.Named("transfer")),
		transfer.WithRecorder(collector),
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		db:        gdb,
		metrics:   collector,
		tenants:   registry,
		syncer:    syncEngine,
		transfers: transferEngine,
		inventory: inventory.NewService(snapshots, users),
		audit:     auditStore,
		health:    gormstore.NewHealthStore(gdb),
	}, nil
}

// Close flushes the logger and releases the pool.
func (a *app) Close() {
	_ = a.logger.Sync()
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// mustApp exits the process when the components cannot be built.
func mustApp() *app {
	a, err := newApp()
	if err != nil {
		fail("%v", err)
	}
	return a
}
