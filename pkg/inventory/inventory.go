// Package inventory answers read queries over a tenant's latest snapshot
// generation and users table. A tenant that has never synced has an empty
// inventory, not an error.
package inventory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/store"
)

// UnpublishedStreamID selects apps outside any stream in a Filter.
const UnpublishedStreamID = "unpublished"

// Filter narrows ListObjects. Zero fields match everything.
type Filter struct {
	ObjectType model.ObjectType
	OwnerID    string
	StreamID   string
	Search     string
}

func (f Filter) match(o model.RemoteObject) bool {
	if f.ObjectType != "" && o.ObjectType != f.ObjectType {
		return false
	}
	if f.OwnerID != "" && o.OwnerID != f.OwnerID {
		return false
	}
	switch f.StreamID {
	case "":
	case UnpublishedStreamID:
		if !o.IsUnpublished() {
			return false
		}
	default:
		if o.StreamID == nil || *o.StreamID != f.StreamID {
			return false
		}
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(o.ObjectName), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

type Service struct {
	snapshots store.SnapshotStore
	users     store.UserStore
}

func NewService(snapshots store.SnapshotStore, users store.UserStore) *Service {
	return &Service{snapshots: snapshots, users: users}
}

func (s *Service) latest(ctx context.Context, slug string) ([]model.RemoteObject, error) {
	table, err := s.snapshots.LatestGeneration(ctx, slug)
	if errors.Is(err, store.ErrNoSnapshot) {
		return []model.RemoteObject{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.snapshots.ListObjects(ctx, table)
}

// ListObjects returns the objects of the latest generation that match f,
// ordered by name.
func (s *Service) ListObjects(ctx context.Context, slug string, f Filter) ([]model.RemoteObject, error) {
	objects, err := s.latest(ctx, slug)
	if err != nil {
		return nil, err
	}
	out := make([]model.RemoteObject, 0, len(objects))
	for _, o := range objects {
		if f.match(o) {
			out = append(out, o)
		}
	}
	return out, nil
}

// ObjectTypes returns the distinct object types present, sorted.
func (s *Service) ObjectTypes(ctx context.Context, slug string) ([]model.ObjectType, error) {
	objects, err := s.latest(ctx, slug)
	if err != nil {
		return nil, err
	}
	seen := map[model.ObjectType]bool{}
	types := []model.ObjectType{}
	for _, o := range objects {
		if o.ObjectType != "" && !seen[o.ObjectType] {
			seen[o.ObjectType] = true
			types = append(types, o.ObjectType)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types, nil
}

// Owners returns each distinct owner once, sorted by name.
func (s *Service) Owners(ctx context.Context, slug string) ([]model.Owner, error) {
	objects, err := s.latest(ctx, slug)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	owners := []model.Owner{}
	for _, o := range objects {
		if o.OwnerID == "" || seen[o.OwnerID] {
			continue
		}
		seen[o.OwnerID] = true
		name := o.OwnerName
		if name == "" {
			name = "Unknown"
		}
		owners = append(owners, model.Owner{
			OwnerID:        o.OwnerID,
			OwnerName:      name,
			OwnerDirectory: o.OwnerDirectory,
			OwnerUserID:    o.OwnerUserID,
		})
	}
	sort.SliceStable(owners, func(i, j int) bool { return owners[i].OwnerName < owners[j].OwnerName })
	return owners, nil
}

// Streams returns the distinct streams apps live in, with apps outside any
// stream grouped under one Unpublished entry. Reload tasks carry no stream.
func (s *Service) Streams(ctx context.Context, slug string) ([]model.Stream, error) {
	objects, err := s.latest(ctx, slug)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	streams := []model.Stream{}
	for _, o := range objects {
		if o.StreamID == nil && o.StreamName == nil {
			continue
		}
		key := UnpublishedStreamID
		if o.StreamID != nil {
			key = *o.StreamID
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		name := model.UnpublishedStream
		if o.StreamName != nil {
			name = *o.StreamName
		}
		streams = append(streams, model.Stream{StreamID: o.StreamID, StreamName: name})
	}
	sort.SliceStable(streams, func(i, j int) bool { return streams[i].StreamName < streams[j].StreamName })
	return streams, nil
}

// Users returns the tenant's users sorted by name.
func (s *Service) Users(ctx context.Context, slug string) ([]model.User, error) {
	ok, err := s.users.TableExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.User{}, nil
	}
	return s.users.ListUsers(ctx, slug)
}

// Generations lists the tenant's snapshot generations, newest first.
func (s *Service) Generations(ctx context.Context, slug string) ([]model.Generation, error) {
	gens, err := s.snapshots.ListGenerations(ctx, slug)
	if err != nil {
		return nil, err
	}
	if gens == nil {
		gens = []model.Generation{}
	}
	return gens, nil
}
