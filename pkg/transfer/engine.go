// Package transfer applies ownership changes to remote objects one at a
// time and records every attempt in the tenant's audit log.
//
// A transfer is best effort over the batch: each requested object id yields
// one outcome and the outcomes are folded into a Result. The snapshot is
// never rewritten; a later sync observes the new owner.
package transfer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/store"
)

const (
	// MaxErrors bounds Result.Errors. Counts are never bounded.
	MaxErrors = 100

	DefaultChangedBy = "System"
	UnknownOwnerName = "Unknown"

	MessageNoObjects = "No object data available"
	MessageNoUsers   = "No user data available"
)

// Precondition failures. A transfer that hits one fails every object.
var (
	ErrNoObjects = errors.New(MessageNoObjects)
	ErrNoUsers   = errors.New(MessageNoUsers)
)

// Mutator changes the owner of one remote object.
type Mutator interface {
	SetOwner(ctx context.Context, objectType, objectID, resourceID, newOwnerID string) error
}

// ClientFunc builds a Mutator for a decrypted tenant config.
type ClientFunc func(cfg model.TenantConfig) (Mutator, error)

// Appender persists audit entries.
type Appender interface {
	Append(ctx context.Context, slug string, entry model.AuditEntry) error
}

// Recorder receives one call per requested object with the outcome label
// "success", "failed" or "not_found".
type Recorder interface {
	ObjectTransferred(slug, outcome string)
}

type Request struct {
	ObjectIDs  []string `json:"object_ids"`
	NewOwnerID string   `json:"new_owner_id"`
	Reason     string   `json:"reason"`
	ChangedBy  string   `json:"changed_by"`
}

type Result struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

type Engine struct {
	snapshots store.SnapshotStore
	users     store.UserStore
	audit     Appender
	connect   ClientFunc
	now       func() time.Time
	logger    *zap.Logger
	recorder  Recorder
}

func NewEngine(snapshots store.SnapshotStore, users store.UserStore, audit Appender, connect ClientFunc, opts ...Option) *Engine {
	e := &Engine{
		snapshots: snapshots,
		users:     users,
		audit:     audit,
		connect:   connect,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Transfer moves every object in req.ObjectIDs to req.NewOwnerID. Objects
// are processed sequentially; Succeeded + Failed always equals the number
// of requested ids.
func (e *Engine) Transfer(ctx context.Context, cfg model.TenantConfig, req Request) Result {
	logger := e.logger.With(
		zap.String("tenant", cfg.Slug),
		zap.String("batch_id", uuid.NewString()),
		zap.String("new_owner", req.NewOwnerID))

	b, err := e.prepare(ctx, cfg, req)
	if err != nil {
		logger.Warn("transfer aborted", zap.Error(err), zap.Int("objects", len(req.ObjectIDs)))
		return Result{Failed: len(req.ObjectIDs), Errors: []string{err.Error()}}
	}

	outcomes := make([]outcome, 0, len(req.ObjectIDs))
	for _, id := range req.ObjectIDs {
		o := e.transferOne(ctx, b, id)
		if e.recorder != nil {
			e.recorder.ObjectTransferred(cfg.Slug, o.kind.String())
		}
		outcomes = append(outcomes, o)
	}

	res := fold(outcomes)
	logger.Info("transfer finished",
		zap.String("table", b.table),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed))
	return res
}

// batch holds what every object in one transfer shares.
type batch struct {
	slug         string
	table        string
	client       Mutator
	newOwnerID   string
	newOwnerName string
	reason       string
	changedBy    string
}

func (e *Engine) prepare(ctx context.Context, cfg model.TenantConfig, req Request) (*batch, error) {
	if err := store.ValidateSlug(cfg.Slug); err != nil {
		return nil, err
	}
	table, err := e.snapshots.LatestGeneration(ctx, cfg.Slug)
	if errors.Is(err, store.ErrNoSnapshot) {
		return nil, ErrNoObjects
	}
	if err != nil {
		return nil, err
	}
	ok, err := e.users.TableExists(ctx, cfg.Slug)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoUsers
	}

	client, err := e.connect(cfg)
	if err != nil {
		return nil, err
	}

	b := &batch{
		slug:         cfg.Slug,
		table:        table,
		client:       client,
		newOwnerID:   req.NewOwnerID,
		newOwnerName: UnknownOwnerName,
		reason:       req.Reason,
		changedBy:    req.ChangedBy,
	}
	if b.changedBy == "" {
		b.changedBy = DefaultChangedBy
	}
	user, err := e.users.GetUser(ctx, cfg.Slug, req.NewOwnerID)
	switch {
	case err == nil:
		b.newOwnerName = user.UserName
	case !errors.Is(err, store.ErrUserNotFound):
		e.logger.Warn("new owner lookup failed", zap.String("tenant", cfg.Slug), zap.Error(err))
	}
	return b, nil
}

func (e *Engine) transferOne(ctx context.Context, b *batch, objectID string) outcome {
	obj, err := e.snapshots.GetObject(ctx, b.table, objectID)
	if err != nil {
		if !errors.Is(err, store.ErrObjectNotFound) {
			e.logger.Warn("object lookup failed", zap.String("object", objectID), zap.Error(err))
		}
		return outcome{kind: outcomeNotFound, objectID: objectID, err: err}
	}

	err = b.client.SetOwner(ctx, string(obj.ObjectType), obj.ObjectID, obj.ResourceID, b.newOwnerID)

	entry := model.AuditEntry{
		ObjectID:     obj.ObjectID,
		ObjectType:   obj.ObjectType,
		ObjectName:   obj.ObjectName,
		OldOwnerID:   obj.OwnerID,
		OldOwnerName: obj.OwnerName,
		NewOwnerID:   b.newOwnerID,
		NewOwnerName: b.newOwnerName,
		ChangedBy:    b.changedBy,
		ChangeReason: b.reason,
		ChangeDate:   e.now().UTC(),
		Status:       model.AuditStatusSuccess,
	}
	o := outcome{kind: outcomeSuccess, objectID: objectID, object: obj}
	if err != nil {
		msg := err.Error()
		entry.Status = model.AuditStatusFailed
		entry.ErrorMessage = &msg
		o.kind = outcomeRemoteError
		o.err = err
		e.logger.Warn("owner change failed",
			zap.String("object", obj.ObjectID),
			zap.String("type", string(obj.ObjectType)),
			zap.Error(err))
	}

	// The remote change has already happened or failed; a lost audit row
	// does not change the outcome.
	if aerr := e.audit.Append(ctx, b.slug, entry); aerr != nil {
		e.logger.Error("audit append failed", zap.String("object", obj.ObjectID), zap.Error(aerr))
	}
	return o
}
