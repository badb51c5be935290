package inventory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/store/storetest"
)

func strp(s string) *string { return &s }

func seeded() *storetest.Memory {
	mem := storetest.NewMemory()
	unpublished := strp(model.UnpublishedStream)
	mem.Seed("object_ownership_prod_20240301",
		model.RemoteObject{ObjectID: "old", ObjectName: "Stale", ObjectType: model.ObjectTypeApp, OwnerID: "u9"},
	)
	mem.Seed("object_ownership_prod_20240315",
		model.RemoteObject{ObjectID: "a1", ObjectName: "Sales Dashboard", ObjectType: model.ObjectTypeApp, OwnerID: "u1", OwnerName: "Ann", StreamName: unpublished},
		model.RemoteObject{ObjectID: "a2", ObjectName: "Finance", ObjectType: model.ObjectTypeApp, OwnerID: "u2", OwnerName: "Bob", StreamID: strp("s1"), StreamName: strp("Everyone")},
		model.RemoteObject{ObjectID: "a3", ObjectName: "HR sales", ObjectType: model.ObjectTypeApp, OwnerID: "u1", OwnerName: "Ann", StreamID: strp("s2"), StreamName: strp("Board")},
		model.RemoteObject{ObjectID: "t1", ObjectName: "Reload Sales", ObjectType: model.ObjectTypeReloadTask, OwnerID: "u3"},
	)
	mem.Seed("object_ownership_prod_eu_20240320",
		model.RemoteObject{ObjectID: "eu", ObjectName: "Other tenant", ObjectType: model.ObjectTypeApp},
	)
	mem.SeedUsers("prod", model.User{UserID: "u2", UserName: "Bob"}, model.User{UserID: "u1", UserName: "Ann"})
	return mem
}

func ids(objects []model.RemoteObject) []string {
	out := []string{}
	for _, o := range objects {
		out = append(out, o.ObjectID)
	}
	return out
}

func TestListObjects(t *testing.T) {
	mem := seeded()
	svc := NewService(mem, mem)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{}, []string{"a2", "a3", "t1", "a1"}},
		{"by type", Filter{ObjectType: model.ObjectTypeReloadTask}, []string{"t1"}},
		{"by owner", Filter{OwnerID: "u1"}, []string{"a3", "a1"}},
		{"by stream", Filter{StreamID: "s1"}, []string{"a2"}},
		{"unpublished", Filter{StreamID: UnpublishedStreamID}, []string{"a1"}},
		{"search ignores case", Filter{Search: "SALES"}, []string{"a3", "t1", "a1"}},
		{"combined", Filter{OwnerID: "u1", Search: "dash"}, []string{"a1"}},
		{"no match", Filter{OwnerID: "nobody"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ListObjects(context.Background(), "prod", tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestUnpublishedFilterMatchesStreamName(t *testing.T) {
	mem := seeded()
	svc := NewService(mem, mem)

	got, err := svc.ListObjects(context.Background(), "prod", Filter{StreamID: UnpublishedStreamID})
	require.NoError(t, err)
	for _, o := range got {
		require.NotNil(t, o.StreamName)
		assert.Equal(t, model.UnpublishedStream, *o.StreamName)
	}

	all, err := svc.ListObjects(context.Background(), "prod", Filter{})
	require.NoError(t, err)
	unpublished := 0
	for _, o := range all {
		if o.StreamName != nil && *o.StreamName == model.UnpublishedStream {
			unpublished++
		}
	}
	assert.Len(t, got, unpublished)
}

func TestSelectors(t *testing.T) {
	mem := seeded()
	svc := NewService(mem, mem)
	ctx := context.Background()

	owners, err := svc.Owners(ctx, "prod")
	require.NoError(t, err)
	assert.Equal(t, []model.Owner{
		{OwnerID: "u1", OwnerName: "Ann"},
		{OwnerID: "u2", OwnerName: "Bob"},
		{OwnerID: "u3", OwnerName: "Unknown"},
	}, owners)

	streams, err := svc.Streams(ctx, "prod")
	require.NoError(t, err)
	assert.Equal(t, []model.Stream{
		{StreamID: strp("s2"), StreamName: "Board"},
		{StreamID: strp("s1"), StreamName: "Everyone"},
		{StreamID: nil, StreamName: "Unpublished"},
	}, streams)

	types, err := svc.ObjectTypes(ctx, "prod")
	require.NoError(t, err)
	assert.Equal(t, []model.ObjectType{model.ObjectTypeApp, model.ObjectTypeReloadTask}, types)

	users, err := svc.Users(ctx, "prod")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Ann", users[0].UserName)

	gens, err := svc.Generations(ctx, "prod")
	require.NoError(t, err)
	require.Len(t, gens, 2)
	assert.Equal(t, "object_ownership_prod_20240315", gens[0].Table)
}

func TestEmptyTenant(t *testing.T) {
	mem := storetest.NewMemory()
	svc := NewService(mem, mem)
	ctx := context.Background()

	objects, err := svc.ListObjects(ctx, "fresh", Filter{})
	require.NoError(t, err)
	assert.NotNil(t, objects)
	assert.Empty(t, objects)

	owners, err := svc.Owners(ctx, "fresh")
	require.NoError(t, err)
	assert.Empty(t, owners)

	users, err := svc.Users(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	gens, err := svc.Generations(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, gens)
}

func BenchmarkListObjects(b *testing.B) {
	mem := storetest.NewMemory()
	objects := make([]model.RemoteObject, 5000)
	for i := range objects {
		objects[i] = model.RemoteObject{
			ObjectID:   fmt.Sprintf("app-%d", i),
			ObjectName: fmt.Sprintf("Dashboard %d", i),
			ObjectType: model.ObjectTypeApp,
			OwnerID:    fmt.Sprintf("u%d", i%50),
		}
	}
	mem.Seed("object_ownership_bench_20240301", objects...)
	svc := NewService(mem, mem)
	ctx := context.Background()

	b.Run("owner and search filter", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_, _ = svc.ListObjects(ctx, "bench", Filter{OwnerID: "u7", Search: "dashboard 1"})
		}
	})
}
