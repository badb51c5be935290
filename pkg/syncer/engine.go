// Package syncer extracts a tenant's apps, reload tasks and users from its
// repository service and writes them to today's snapshot generation.
//
// Running a sync twice on the same day overwrites the day's rows in place.
// Failures are reported as a message with a zero count; they never abort
// a batch run over several tenants.
package syncer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/store"
)

// Remote is the part of the repository client a sync needs.
type Remote interface {
	GetAllObjects(ctx context.Context) ([]model.RemoteObject, error)
	GetUsers(ctx context.Context) ([]model.User, error)
}

// ClientFunc builds a Remote for a decrypted tenant config.
type ClientFunc func(cfg model.TenantConfig) (Remote, error)

// Recorder receives the outcome of every sync.
type Recorder interface {
	SyncFinished(slug string, ok bool, objects int, elapsed time.Duration)
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

type Engine struct {
	snapshots store.SnapshotStore
	users     store.UserStore
	connect   ClientFunc
	now       func() time.Time
	logger    *zap.Logger
	recorder  Recorder
}

func NewEngine(snapshots store.SnapshotStore, users store.UserStore, connect ClientFunc, opts ...Option) *Engine {
	e := &Engine{
		snapshots: snapshots,
		users:     users,
		connect:   connect,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FailurePrefix starts the summary line of a failed sync.
const FailurePrefix = "Sync failed"

// Sync produces or refreshes today's generation for one tenant. It returns
// the number of objects written and a summary line.
func (e *Engine) Sync(ctx context.Context, cfg model.TenantConfig) (int, string) {
	objects, users, err := e.run(ctx, cfg)
	if err != nil {
		return 0, fmt.Sprintf("%s: %v", FailurePrefix, err)
	}
	return objects, fmt.Sprintf("Synced %d objects and %d users", objects, users)
}

func (e *Engine) run(ctx context.Context, cfg model.TenantConfig) (int, int, error) {
	start := time.Now()
	objects, users, err := e.sync(ctx, cfg)
	elapsed := time.Since(start)

	if e.recorder != nil {
		e.recorder.SyncFinished(cfg.Slug, err == nil, objects, elapsed)
	}
	if err != nil {
		e.logger.Error("sync failed", zap.String("tenant", cfg.Slug), zap.Error(err))
		return 0, 0, err
	}
	e.logger.Info("sync complete",
		zap.String("tenant", cfg.Slug),
		zap.Int("objects", objects),
		zap.Int("users", users),
		zap.Duration("elapsed", elapsed))
	return objects, users, nil
}

func (e *Engine) sync(ctx context.Context, cfg model.TenantConfig) (int, int, error) {
	if err := store.ValidateSlug(cfg.Slug); err != nil {
		return 0, 0, err
	}
	client, err := e.connect(cfg)
	if err != nil {
		return 0, 0, err
	}

	objects, err := client.GetAllObjects(ctx)
	if err != nil {
		return 0, 0, err
	}

	table, err := e.snapshots.EnsureGeneration(ctx, cfg.Slug, e.now())
	if err != nil {
		return 0, 0, err
	}
	if err := e.snapshots.UpsertObjects(ctx, table, objects); err != nil {
		return 0, 0, err
	}

	if err := e.users.EnsureTable(ctx, cfg.Slug); err != nil {
		return 0, 0, err
	}
	users, err := client.GetUsers(ctx)
	if err != nil {
		return 0, 0, err
	}
	if err := e.users.UpsertUsers(ctx, cfg.Slug, users); err != nil {
		return 0, 0, err
	}

	return len(objects), len(users), nil
}
