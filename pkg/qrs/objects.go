package qrs

import (
	"context"
	"fmt"
	"time"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
)

const (
	EntityApp        = "app"
	EntityReloadTask = "reloadtask"
	EntityUser       = "user"
	EntityStream     = "stream"
)

// GetAllObjects returns every app followed by every reload task, normalized.
// All objects share the same extraction timestamp.
func (c *Client) GetAllObjects(ctx context.Context) ([]model.RemoteObject, error) {
	apps, err := c.ListAll(ctx, EntityApp, "")
	if err != nil {
		return nil, fmt.Errorf("listing apps: %w", err)
	}
	tasks, err := c.ListAll(ctx, EntityReloadTask, "")
	if err != nil {
		return nil, fmt.Errorf("listing reload tasks: %w", err)
	}

	extracted := c.now().UTC()
	objects := make([]model.RemoteObject, 0, len(apps)+len(tasks))
	for _, app := range apps {
		objects = append(objects, normalizeApp(app, extracted))
	}
	for _, task := range tasks {
		objects = append(objects, normalizeReloadTask(task, extracted))
	}
	return objects, nil
}

func normalizeApp(app Entity, extracted time.Time) model.RemoteObject {
	obj := baseObject(app, model.ObjectTypeApp, extracted)
	obj.Description = app.str("description")

	if stream := app.child("stream"); stream != nil {
		id, name := stream.str("id"), stream.str("name")
		obj.StreamID, obj.StreamName = &id, &name
	} else {
		name := model.UnpublishedStream
		obj.StreamName = &name
	}

	published, _ := app["published"].(bool)
	obj.Published = &published
	return obj
}

func normalizeReloadTask(task Entity, extracted time.Time) model.RemoteObject {
	obj := baseObject(task, model.ObjectTypeReloadTask, extracted)
	appName := "Unknown"
	if app := task.child("app"); app != nil {
		if _, ok := app["name"]; ok {
			appName = app.str("name")
		}
	}
	obj.Description = "Task for app: " + appName
	return obj
}

func baseObject(e Entity, typ model.ObjectType, extracted time.Time) model.RemoteObject {
	owner := e.child("owner")
	id := e.str("id")
	return model.RemoteObject{
		ObjectID:       id,
		ResourceID:     id,
		ObjectType:     typ,
		ObjectName:     e.str("name"),
		OwnerID:        owner.str("id"),
		OwnerName:      owner.str("name"),
		OwnerDirectory: owner.str("userDirectory"),
		OwnerUserID:    owner.str("userId"),
		CreatedDate:    e.time("createdDate"),
		ModifiedDate:   e.time("modifiedDate"),
		ExtractedDate:  extracted,
	}
}

// GetUsers returns all users that carry an id.
func (c *Client) GetUsers(ctx context.Context) ([]model.User, error) {
	entities, err := c.ListAll(ctx, EntityUser, "")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	users := make([]model.User, 0, len(entities))
	for _, u := range entities {
		id := u.str("id")
		if id == "" {
			continue
		}
		status := model.UserStatusActive
		if inactive, _ := u["inactive"].(bool); inactive {
			status = model.UserStatusInactive
		}
		users = append(users, model.User{
			UserID:        id,
			UserName:      u.str("name"),
			UserDirectory: u.str("userDirectory"),
			UserIDAttr:    u.str("userId"),
			Status:        status,
		})
	}
	return users, nil
}

// GetStreams returns all streams that carry an id.
func (c *Client) GetStreams(ctx context.Context) ([]model.Stream, error) {
	entities, err := c.ListAll(ctx, EntityStream, "")
	if err != nil {
		return nil, fmt.Errorf("listing streams: %w", err)
	}
	streams := make([]model.Stream, 0, len(entities))
	for _, s := range entities {
		id := s.str("id")
		if id == "" {
			continue
		}
		owner := s.child("owner")
		streams = append(streams, model.Stream{
			StreamID:   &id,
			StreamName: s.str("name"),
			OwnerID:    owner.str("id"),
			OwnerName:  owner.str("name"),
		})
	}
	return streams, nil
}

func (e Entity) str(key string) string {
	if e == nil {
		return ""
	}
	switch v := e[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (e Entity) child(key string) Entity {
	if e == nil {
		return nil
	}
	if m, ok := e[key].(map[string]any); ok {
		return Entity(m)
	}
	return nil
}

func (e Entity) time(key string) *time.Time {
	s := e.str(key)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
