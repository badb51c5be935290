package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/ownership-manager/pkg/config"
	"github.com/doodlesbykumbi/ownership-manager/pkg/inventory"
	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/server/middleware"
	"github.com/doodlesbykumbi/ownership-manager/pkg/store"
	"github.com/doodlesbykumbi/ownership-manager/pkg/syncer"
	"github.com/doodlesbykumbi/ownership-manager/pkg/tenant"
	"github.com/doodlesbykumbi/ownership-manager/pkg/transfer"
)

// Tenants is the registry surface the API exposes.
type Tenants interface {
	Register(ctx context.Context, req tenant.RegisterRequest) (int64, error)
	List(ctx context.Context) ([]model.Tenant, error)
	Get(ctx context.Context, id int64) (*model.Tenant, error)
	Config(ctx context.Context, id int64) (*model.TenantConfig, error)
	Update(ctx context.Context, id int64, u model.TenantUpdate) (bool, error)
	Deactivate(ctx context.Context, id int64) (bool, error)
	TestConnection(ctx context.Context, id int64) (bool, string)
}

type Syncer interface {
	Sync(ctx context.Context, cfg model.TenantConfig) (int, string)
	SyncAll(ctx context.Context, src syncer.TenantSource, concurrency int) ([]syncer.Outcome, error)
}

type Transferer interface {
	Transfer(ctx context.Context, cfg model.TenantConfig, req transfer.Request) transfer.Result
}

type Inventory interface {
	ListObjects(ctx context.Context, slug string, f inventory.Filter) ([]model.RemoteObject, error)
	ObjectTypes(ctx context.Context, slug string) ([]model.ObjectType, error)
	Owners(ctx context.Context, slug string) ([]model.Owner, error)
	Streams(ctx context.Context, slug string) ([]model.Stream, error)
	Users(ctx context.Context, slug string) ([]model.User, error)
	Generations(ctx context.Context, slug string) ([]model.Generation, error)
}

type AuditLog interface {
	List(ctx context.Context, slug string, limit int) ([]model.AuditEntry, error)
}

type Server struct {
	Router *mux.Router
	Config *config.Config
	Logger *zap.Logger

	Tenants     Tenants
	Syncer      Syncer
	Transfers   Transferer
	Inventory   Inventory
	Audit       AuditLog
	HealthStore store.HealthStore
	Metrics     http.Handler

	srv *http.Server
}

func NewServer(cfg *config.Config, logger *zap.Logger, host string, port string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := mux.NewRouter().UseEncodedPath()
	router.Use(middleware.RequestID)

	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, router),
		Addr:    host + ":" + port,
		// Syncs and batch transfers can run long; reads stay short.
		WriteTimeout: 10 * time.Minute,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Router: router,
		Config: cfg,
		Logger: logger,
		srv:    srv,
	}
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.Logger.Info("listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
