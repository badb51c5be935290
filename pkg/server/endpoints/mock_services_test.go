package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/ownership-manager/pkg/config"
	"github.com/doodlesbykumbi/ownership-manager/pkg/inventory"
	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/server"
	"github.com/doodlesbykumbi/ownership-manager/pkg/syncer"
	"github.com/doodlesbykumbi/ownership-manager/pkg/tenant"
	"github.com/doodlesbykumbi/ownership-manager/pkg/transfer"
)

// MockTenants implements server.Tenants for testing using testify/mock
type MockTenants struct {
	mock.Mock
}

func (m *MockTenants) Register(ctx context.Context, req tenant.RegisterRequest) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTenants) List(ctx context.Context) ([]model.Tenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tenant), args.Error(1)
}

func (m *MockTenants) Get(ctx context.Context, id int64) (*model.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tenant), args.Error(1)
}

func (m *MockTenants) Config(ctx context.Context, id int64) (*model.TenantConfig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TenantConfig), args.Error(1)
}

func (m *MockTenants) Update(ctx context.Context, id int64, u model.TenantUpdate) (bool, error) {
	args := m.Called(ctx, id, u)
	return args.Bool(0), args.Error(1)
}

func (m *MockTenants) Deactivate(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTenants) TestConnection(ctx context.Context, id int64) (bool, string) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.String(1)
}

// MockSyncer implements server.Syncer for testing using testify/mock
type MockSyncer struct {
	mock.Mock
}

func (m *MockSyncer) Sync(ctx context.Context, cfg model.TenantConfig) (int, string) {
	args := m.Called(ctx, cfg)
	return args.Int(0), args.String(1)
}

func (m *MockSyncer) SyncAll(ctx context.Context, src syncer.TenantSource, concurrency int) ([]syncer.Outcome, error) {
	args := m.Called(ctx, src, concurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]syncer.Outcome), args.Error(1)
}

// MockTransferer implements server.Transferer for testing using testify/mock
type MockTransferer struct {
	mock.Mock
}

func (m *MockTransferer) Transfer(ctx context.Context, cfg model.TenantConfig, req transfer.Request) transfer.Result {
	args := m.Called(ctx, cfg, req)
	return args.Get(0).(transfer.Result)
}

// MockInventory implements server.Inventory for testing using testify/mock
type MockInventory struct {
	mock.Mock
}

func (m *MockInventory) ListObjects(ctx context.Context, slug string, f inventory.Filter) ([]model.RemoteObject, error) {
	args := m.Called(ctx, slug, f)
	return args.Get(0).([]model.RemoteObject), args.Error(1)
}

func (m *MockInventory) ObjectTypes(ctx context.Context, slug string) ([]model.ObjectType, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).([]model.ObjectType), args.Error(1)
}

func (m *MockInventory) Owners(ctx context.Context, slug string) ([]model.Owner, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).([]model.Owner), args.Error(1)
}

func (m *MockInventory) Streams(ctx context.Context, slug string) ([]model.Stream, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).([]model.Stream), args.Error(1)
}

func (m *MockInventory) Users(ctx context.Context, slug string) ([]model.User, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockInventory) Generations(ctx context.Context, slug string) ([]model.Generation, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).([]model.Generation), args.Error(1)
}

// MockAuditLog implements server.AuditLog for testing using testify/mock
type MockAuditLog struct {
	mock.Mock
}

func (m *MockAuditLog) List(ctx context.Context, slug string, limit int) ([]model.AuditEntry, error) {
	args := m.Called(ctx, slug, limit)
	return args.Get(0).([]model.AuditEntry), args.Error(1)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type testServer struct {
	*server.Server
	tenants   *MockTenants
	syncer    *MockSyncer
	transfers *MockTransferer
	inventory *MockInventory
	audit     *MockAuditLog
	health    *MockHealthStore
}

// newTestServer returns a server with every endpoint registered over mocks.
func newTestServer() *testServer {
	cfg := &config.Config{SyncConcurrency: 3, AuditListLimit: 50}
	ts := &testServer{
		Server:    server.NewServer(cfg, nil, "127.0.0.1", "0"),
		tenants:   &MockTenants{},
		syncer:    &MockSyncer{},
		transfers: &MockTransferer{},
		inventory: &MockInventory{},
		audit:     &MockAuditLog{},
		health:    &MockHealthStore{},
	}
	ts.Tenants = ts.tenants
	ts.Syncer = ts.syncer
	ts.Transfers = ts.transfers
	ts.Inventory = ts.inventory
	ts.Audit = ts.audit
	ts.HealthStore = ts.health
	RegisterAll(ts.Server)
	return ts
}
