package syncer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
)

// DefaultConcurrency bounds how many tenants sync at once.
const DefaultConcurrency = 4

// TenantSource lists tenants and resolves their decrypted configs.
type TenantSource interface {
	List(ctx context.Context) ([]model.Tenant, error)
	Config(ctx context.Context, id int64) (*model.TenantConfig, error)
}

// Outcome is the result of syncing one tenant in a batch.
type Outcome struct {
	Tenant  string `json:"tenant"`
	Slug    string `json:"slug"`
	OK      bool   `json:"ok"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

func (o Outcome) String() string {
	return fmt.Sprintf("%s: %s", o.Tenant, o.Message)
}

// SyncAll syncs every active tenant with at most concurrency tenants in
// flight. A tenant whose config cannot be loaded is reported and skipped.
// Outcomes follow the order of the tenant list.
func (e *Engine) SyncAll(ctx context.Context, src TenantSource, concurrency int) ([]Outcome, error) {
	tenants, err := src.List(ctx)
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	active := make([]model.Tenant, 0, len(tenants))
	for _, t := range tenants {
		if t.IsActive {
			active = append(active, t)
		}
	}

	batch := uuid.NewString()
	logger := e.logger.With(zap.String("batch_id", batch))
	logger.Info("batch sync started", zap.Int("tenants", len(active)), zap.Int("concurrency", concurrency))

	outcomes := make([]Outcome, len(active))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, t := range active {
		i, t := i, t
		g.Go(func() error {
			outcomes[i] = e.syncOne(gctx, src, t)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		if !o.OK {
			failed++
		}
	}
	logger.Info("batch sync finished", zap.Int("tenants", len(active)), zap.Int("failed", failed))
	return outcomes, nil
}

func (e *Engine) syncOne(ctx context.Context, src TenantSource, t model.Tenant) Outcome {
	out := Outcome{Tenant: t.Name, Slug: t.Slug}
	cfg, err := src.Config(ctx, t.ID)
	if err != nil {
		e.logger.Warn("skipping tenant", zap.String("tenant", t.Slug), zap.Error(err))
		out.Message = fmt.Sprintf("Skipped: %v", err)
		return out
	}
	objects, users, err := e.run(ctx, *cfg)
	if err != nil {
		out.Message = fmt.Sprintf("%s: %v", FailurePrefix, err)
		return out
	}
	out.OK = true
	out.Count = objects
	out.Message = fmt.Sprintf("Synced %d objects and %d users", objects, users)
	return out
}
