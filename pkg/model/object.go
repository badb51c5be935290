package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// UnpublishedStream is the stream name recorded for apps without a stream.
const UnpublishedStream = "Unpublished"

type ObjectType string

const (
	ObjectTypeApp        ObjectType = "app"
	ObjectTypeReloadTask ObjectType = "reload_task"
)

// ErrUnsupportedObjectType is returned for object types that cannot change owner.
var ErrUnsupportedObjectType = errors.New("unsupported object type")

// ParseObjectType normalizes the spellings callers use ("app", "reload_task",
// "reloadtask", "ReloadTask") to a canonical ObjectType.
func ParseObjectType(s string) (ObjectType, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "") {
	case "app":
		return ObjectTypeApp, nil
	case "reloadtask":
		return ObjectTypeReloadTask, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedObjectType, s)
}

// RemoteObject is a unit of ownership captured in a snapshot generation.
type RemoteObject struct {
	ObjectID       string     `gorm:"column:object_id" json:"object_id"`
	ResourceID     string     `gorm:"column:resource_id" json:"resource_id"`
	ObjectType     ObjectType `gorm:"column:object_type" json:"object_type"`
	ObjectName     string     `gorm:"column:object_name" json:"object_name"`
	OwnerID        string     `gorm:"column:owner_id" json:"owner_id"`
	OwnerName      string     `gorm:"column:owner_name" json:"owner_name"`
	OwnerDirectory string     `gorm:"column:owner_directory" json:"owner_directory"`
	OwnerUserID    string     `gorm:"column:owner_user_id" json:"owner_user_id"`
	CreatedDate    *time.Time `gorm:"column:created_date" json:"created_date,omitempty"`
	ModifiedDate   *time.Time `gorm:"column:modified_date" json:"modified_date,omitempty"`
	Description    string     `gorm:"column:description" json:"description"`
	StreamID       *string    `gorm:"column:stream_id" json:"stream_id"`
	StreamName     *string    `gorm:"column:stream_name" json:"stream_name"`
	Published      *bool      `gorm:"column:published" json:"published"`
	ExtractedDate  time.Time  `gorm:"column:extracted_date" json:"extracted_date"`
}

// IsUnpublished reports whether the object is an app outside any stream.
func (o RemoteObject) IsUnpublished() bool {
	return o.StreamID == nil && o.StreamName != nil && *o.StreamName == UnpublishedStream
}

type Stream struct {
	StreamID   *string `json:"stream_id"`
	StreamName string  `json:"stream_name"`
	OwnerID    string  `json:"owner_id,omitempty"`
	OwnerName  string  `json:"owner_name,omitempty"`
}

type Owner struct {
	OwnerID        string `json:"owner_id"`
	OwnerName      string `json:"owner_name"`
	OwnerDirectory string `json:"owner_directory"`
	OwnerUserID    string `json:"owner_user_id"`
}

// Generation names one dated snapshot table.
type Generation struct {
	Table string    `json:"table"`
	Date  time.Time `json:"date"`
}
