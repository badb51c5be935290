// Package storetest provides test doubles for the store interfaces: testify
// mocks for call-level assertions and an in-memory store for behavioural
// tests of the engines.
package storetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/store"
)

// MockTenantStore implements store.TenantStore using testify/mock
type MockTenantStore struct {
	mock.Mock
}

var _ store.TenantStore = (*MockTenantStore)(nil)

func (m *MockTenantStore) Create(ctx context.Context, t model.NewTenant) (int64, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTenantStore) List(ctx context.Context) ([]model.Tenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tenant), args.Error(1)
}

func (m *MockTenantStore) Get(ctx context.Context, id int64) (*model.TenantRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TenantRecord), args.Error(1)
}

func (m *MockTenantStore) GetByName(ctx context.Context, name string) (*model.TenantRecord, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TenantRecord), args.Error(1)
}

func (m *MockTenantStore) NameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	args := m.Called(ctx, name, exceptID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTenantStore) Update(ctx context.Context, id int64, columns map[string]interface{}) (bool, error) {
	args := m.Called(ctx, id, columns)
	return args.Bool(0), args.Error(1)
}

func (m *MockTenantStore) Deactivate(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockSnapshotStore implements store.SnapshotStore using testify/mock
type MockSnapshotStore struct {
	mock.Mock
}

var _ store.SnapshotStore = (*MockSnapshotStore)(nil)

func (m *MockSnapshotStore) EnsureGeneration(ctx context.Context, slug string, day time.Time) (string, error) {
	args := m.Called(ctx, slug, day)
	return args.String(0), args.Error(1)
}

func (m *MockSnapshotStore) UpsertObjects(ctx context.Context, table string, objects []model.RemoteObject) error {
	return m.Called(ctx, table, objects).Error(0)
}

func (m *MockSnapshotStore) LatestGeneration(ctx context.Context, slug string) (string, error) {
	args := m.Called(ctx, slug)
	return args.String(0), args.Error(1)
}

func (m *MockSnapshotStore) ListGenerations(ctx context.Context, slug string) ([]model.Generation, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Generation), args.Error(1)
}

func (m *MockSnapshotStore) ListObjects(ctx context.Context, table string) ([]model.RemoteObject, error) {
	args := m.Called(ctx, table)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RemoteObject), args.Error(1)
}

func (m *MockSnapshotStore) GetObject(ctx context.Context, table, objectID string) (*model.RemoteObject, error) {
	args := m.Called(ctx, table, objectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RemoteObject), args.Error(1)
}
