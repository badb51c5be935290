package qrs

import (
	"context"
	"fmt"
	"time"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
)

// ModifiedDateLayout is the timestamp format the repository expects.
const ModifiedDateLayout = "2006-01-02T15:04:05.000Z"

// EntityPath maps an object type to its repository entity path.
func EntityPath(objectType string) (string, error) {
	typ, err := model.ParseObjectType(objectType)
	if err != nil {
		return "", err
	}
	switch typ {
	case model.ObjectTypeApp:
		return EntityApp, nil
	case model.ObjectTypeReloadTask:
		return EntityReloadTask, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedObjectType, objectType)
}

// SetOwner changes the owner of one object. The repository only accepts whole
// entities, so the current entity and the new owner's full user entity are
// fetched, the owner is replaced, modifiedDate is refreshed and the entity is
// PUT back. Concurrent edits between the GET and the PUT are lost.
func (c *Client) SetOwner(ctx context.Context, objectType, objectID, resourceID, newOwnerID string) error {
	path, err := EntityPath(objectType)
	if err != nil {
		return err
	}
	if resourceID == "" {
		resourceID = objectID
	}

	entity, err := c.GetOne(ctx, path, resourceID)
	if err != nil {
		return err
	}

	owner, err := c.GetOne(ctx, EntityUser, newOwnerID)
	if err != nil {
		return err
	}

	entity["owner"] = map[string]any(owner)
	entity["modifiedDate"] = FormatModifiedDate(c.now())

	return c.Put(ctx, path, resourceID, entity)
}

// FormatModifiedDate renders t the way SetOwner stamps modifiedDate.
func FormatModifiedDate(t time.Time) string {
	return t.UTC().Format(ModifiedDateLayout)
}
