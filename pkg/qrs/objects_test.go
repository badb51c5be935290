package qrs

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
)

const appsJSON = `[
  {
    "id": "a1", "name": "Sales", "description": "Quarterly",
    "createdDate": "2024-01-02T03:04:05.678Z", "modifiedDate": "2024-02-03T04:05:06.789Z",
    "owner": {"id": "u1", "name": "Alice", "userDirectory": "CORP", "userId": "alice"},
    "stream": {"id": "s1", "name": "Everyone"},
    "published": true
  },
  {
    "id": "a2", "name": "Draft",
    "owner": {"id": "u2", "name": "Bob", "userDirectory": "CORP", "userId": "bob"},
    "stream": null,
    "published": false
  }
]`

const tasksJSON = `[
  {
    "id": "t1", "name": "Reload Sales",
    "owner": {"id": "u1", "name": "Alice", "userDirectory": "CORP", "userId": "alice"},
    "app": {"id": "a1", "name": "Sales"}
  },
  {
    "id": "t2", "name": "Orphan",
    "owner": {"id": "u2", "name": "Bob", "userDirectory": "CORP", "userId": "bob"}
  }
]`

func TestGetAllObjects(t *testing.T) {
	srv, _ := newRepositoryServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/qrs/app/full":
			writeJSON(w, http.StatusOK, appsJSON)
		case "/qrs/reloadtask/full":
			writeJSON(w, http.StatusOK, tasksJSON)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	c := newTestClient(t, srv, WithClock(func() time.Time { return now }))

	objects, err := c.GetAllObjects(context.Background())
	require.NoError(t, err)
	require.Len(t, objects, 4)

	sales := objects[0]
	assert.Equal(t, "a1", sales.ObjectID)
	assert.Equal(t, "a1", sales.ResourceID)
	assert.Equal(t, model.ObjectTypeApp, sales.ObjectType)
	assert.Equal(t, "Sales", sales.ObjectName)
	assert.Equal(t, "u1", sales.OwnerID)
	assert.Equal(t, "Alice", sales.OwnerName)
	assert.Equal(t, "CORP", sales.OwnerDirectory)
	assert.Equal(t, "alice", sales.OwnerUserID)
	assert.Equal(t, "Quarterly", sales.Description)
	require.NotNil(t, sales.StreamID)
	assert.Equal(t, "s1", *sales.StreamID)
	assert.Equal(t, "Everyone", *sales.StreamName)
	require.NotNil(t, sales.Published)
	assert.True(t, *sales.Published)
	require.NotNil(t, sales.CreatedDate)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 678000000, time.UTC), *sales.CreatedDate)
	assert.Equal(t, now, sales.ExtractedDate)

	draft := objects[1]
	assert.Nil(t, draft.StreamID)
	require.NotNil(t, draft.StreamName)
	assert.Equal(t, model.UnpublishedStream, *draft.StreamName)
	assert.True(t, draft.IsUnpublished())
	assert.Nil(t, draft.CreatedDate)

	task := objects[2]
	assert.Equal(t, model.ObjectTypeReloadTask, task.ObjectType)
	assert.Equal(t, "Task for app: Sales", task.Description)
	assert.Nil(t, task.StreamID)
	assert.Nil(t, task.StreamName)
	assert.Nil(t, task.Published)
	assert.False(t, task.IsUnpublished())

	assert.Equal(t, "Task for app: Unknown", objects[3].Description)
}

func TestGetAllObjectsPropagatesErrors(t *testing.T) {
	srv, _ := newRepositoryServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/qrs/app/full" {
			writeJSON(w, http.StatusOK, `[]`)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := newTestClient(t, srv)

	_, err := c.GetAllObjects(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing reload tasks")
}

func TestGetUsers(t *testing.T) {
	srv, _ := newRepositoryServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[
		  {"id": "u1", "name": "Alice", "userDirectory": "CORP", "userId": "alice", "inactive": false},
		  {"id": "u2", "name": "Bob", "userDirectory": "CORP", "userId": "bob", "inactive": true},
		  {"name": "ghost"}
		]`)
	})
	c := newTestClient(t, srv)

	users, err := c.GetUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.User{
		{UserID: "u1", UserName: "Alice", UserDirectory: "CORP", UserIDAttr: "alice", Status: model.UserStatusActive},
		{UserID: "u2", UserName: "Bob", UserDirectory: "CORP", UserIDAttr: "bob", Status: model.UserStatusInactive},
	}, users)
}

func TestGetStreams(t *testing.T) {
	srv, repo := newRepositoryServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[
		  {"id": "s1", "name": "Everyone", "owner": {"id": "u1", "name": "Alice"}},
		  {"name": "no id"}
		]`)
	})
	c := newTestClient(t, srv)

	streams, err := c.GetStreams(context.Background())
	require.NoError(t, err)
	require.Len(t, streams, 1)
	assert.Equal(t, "s1", *streams[0].StreamID)
	assert.Equal(t, "Everyone", streams[0].StreamName)
	assert.Equal(t, "u1", streams[0].OwnerID)
	assert.Equal(t, "Alice", streams[0].OwnerName)
	assert.Equal(t, "/qrs/stream/full", repo.recorded()[0].Path)
}
