package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/store"
)

// Memory keeps snapshot generations, users and audit entries in maps.
// Fail* fields inject errors into the matching operation.
type Memory struct {
	mu          sync.Mutex
	generations map[string]map[string]model.RemoteObject
	users       map[string]map[string]model.User
	audit       map[string][]model.AuditEntry

	FailUpsertObjects error
	FailUpsertUsers   error
	FailAppend        error
}

var (
	_ store.SnapshotStore = (*Memory)(nil)
	_ store.UserStore     = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		generations: map[string]map[string]model.RemoteObject{},
		users:       map[string]map[string]model.User{},
		audit:       map[string][]model.AuditEntry{},
	}
}

func (m *Memory) EnsureGeneration(_ context.Context, slug string, day time.Time) (string, error) {
	table, err := store.GenerationTable(slug, day)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.generations[table]; !ok {
		m.generations[table] = map[string]model.RemoteObject{}
	}
	return table, nil
}

func (m *Memory) UpsertObjects(_ context.Context, table string, objects []model.RemoteObject) error {
	if m.FailUpsertObjects != nil {
		return m.FailUpsertObjects
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	gen, ok := m.generations[table]
	if !ok {
		return fmt.Errorf("relation %q does not exist", table)
	}
	for _, o := range objects {
		gen[o.ObjectID] = o
	}
	return nil
}

func (m *Memory) generationTables(slug string) []string {
	var tables []string
	for table := range m.generations {
		if _, ok := store.GenerationDate(slug, table); ok {
			tables = append(tables, table)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(tables)))
	return tables
}

func (m *Memory) LatestGeneration(_ context.Context, slug string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tables := m.generationTables(slug)
	if len(tables) == 0 {
		return "", store.ErrNoSnapshot
	}
	return tables[0], nil
}

func (m *Memory) ListGenerations(_ context.Context, slug string) ([]model.Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Generation
	for _, table := range m.generationTables(slug) {
		d, _ := store.GenerationDate(slug, table)
		out = append(out, model.Generation{Table: table, Date: d})
	}
	return out, nil
}

func (m *Memory) ListObjects(_ context.Context, table string) ([]model.RemoteObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gen, ok := m.generations[table]
	if !ok {
		return nil, fmt.Errorf("relation %q does not exist", table)
	}
	out := make([]model.RemoteObject, 0, len(gen))
	for _, o := range gen {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ObjectName < out[j].ObjectName })
	return out, nil
}

func (m *Memory) GetObject(_ context.Context, table, objectID string) (*model.RemoteObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.generations[table][objectID]
	if !ok {
		return nil, store.ErrObjectNotFound
	}
	return &o, nil
}

func (m *Memory) EnsureTable(_ context.Context, slug string) error {
	if err := store.ValidateSlug(slug); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[slug]; !ok {
		m.users[slug] = map[string]model.User{}
	}
	return nil
}

func (m *Memory) TableExists(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[slug]
	return ok, nil
}

func (m *Memory) UpsertUsers(_ context.Context, slug string, users []model.User) error {
	if m.FailUpsertUsers != nil {
		return m.FailUpsertUsers
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	table, ok := m.users[slug]
	if !ok {
		return fmt.Errorf("relation %q does not exist", slug+"_users")
	}
	for _, u := range users {
		table[u.UserID] = u
	}
	return nil
}

func (m *Memory) ListUsers(_ context.Context, slug string) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.User, 0, len(m.users[slug]))
	for _, u := range m.users[slug] {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserName < out[j].UserName })
	return out, nil
}

func (m *Memory) GetUser(_ context.Context, slug, userID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[slug][userID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &u, nil
}

// Append records an audit entry.
func (m *Memory) Append(_ context.Context, slug string, entry model.AuditEntry) error {
	if m.FailAppend != nil {
		return m.FailAppend
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit[slug] = append(m.audit[slug], entry)
	return nil
}

// AuditEntries returns what Append recorded for slug, oldest first.
func (m *Memory) AuditEntries(slug string) []model.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.AuditEntry(nil), m.audit[slug]...)
}

// Seed puts objects straight into a generation table.
func (m *Memory) Seed(table string, objects ...model.RemoteObject) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gen, ok := m.generations[table]
	if !ok {
		gen = map[string]model.RemoteObject{}
		m.generations[table] = gen
	}
	for _, o := range objects {
		gen[o.ObjectID] = o
	}
}

// SeedUsers creates the users table of slug with the given users.
func (m *Memory) SeedUsers(slug string, users ...model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table, ok := m.users[slug]
	if !ok {
		table = map[string]model.User{}
		m.users[slug] = table
	}
	for _, u := range users {
		table[u.UserID] = u
	}
}

// ObjectCount returns the number of rows in a generation.
func (m *Memory) ObjectCount(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.generations[table])
}
