package gorm

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/store"
)

// Ensure SnapshotStore implements store.SnapshotStore
var _ store.SnapshotStore = (*SnapshotStore)(nil)

const createGenerationSQL = `CREATE TABLE IF NOT EXISTS %s (
	object_id VARCHAR(100) PRIMARY KEY,
	resource_id VARCHAR(100),
	object_type VARCHAR(50),
	object_name VARCHAR(500),
	owner_id VARCHAR(100),
	owner_name VARCHAR(255),
	owner_directory VARCHAR(255),
	owner_user_id VARCHAR(255),
	created_date TIMESTAMP,
	modified_date TIMESTAMP,
	description TEXT,
	stream_id VARCHAR(100),
	stream_name VARCHAR(255),
	published BOOLEAN,
	extracted_date TIMESTAMP
)`

const upsertObjectSQL = `INSERT INTO %s (object_id, resource_id, object_type, object_name,
	owner_id, owner_name, owner_directory, owner_user_id, created_date, modified_date,
	description, stream_id, stream_name, published, extracted_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (object_id) DO UPDATE SET
	resource_id = EXCLUDED.resource_id,
	object_type = EXCLUDED.object_type,
	object_name = EXCLUDED.object_name,
	owner_id = EXCLUDED.owner_id,
	owner_name = EXCLUDED.owner_name,
	owner_directory = EXCLUDED.owner_directory,
	owner_user_id = EXCLUDED.owner_user_id,
	created_date = EXCLUDED.created_date,
	modified_date = EXCLUDED.modified_date,
	description = EXCLUDED.description,
	stream_id = EXCLUDED.stream_id,
	stream_name = EXCLUDED.stream_name,
	published = EXCLUDED.published,
	extracted_date = EXCLUDED.extracted_date`

const objectColumns = `object_id, resource_id, object_type, object_name, owner_id, owner_name,
	owner_directory, owner_user_id, created_date, modified_date, description,
	stream_id, stream_name, published, extracted_date`

// SnapshotStore implements store.SnapshotStore using GORM
type SnapshotStore struct {
	db *gorm.DB
}

// NewSnapshotStore creates a new SnapshotStore
func NewSnapshotStore(db *gorm.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func (s *SnapshotStore) EnsureGeneration(ctx context.Context, slug string, day time.Time) (string, error) {
	table, err := store.GenerationTable(slug, day)
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Exec(sprintfTable(createGenerationSQL, table)).Error; err != nil {
		return "", store.Wrap("create generation "+table, err)
	}
	return table, nil
}

func (s *SnapshotStore) UpsertObjects(ctx context.Context, table string, objects []model.RemoteObject) error {
	if err := store.ValidateGenerationTable(table); err != nil {
		return err
	}
	if len(objects) == 0 {
		return nil
	}
	stmt := sprintfTable(upsertObjectSQL, table)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, o := range objects {
			err := tx.Exec(stmt,
				o.ObjectID, o.ResourceID, string(o.ObjectType), o.ObjectName,
				o.OwnerID, o.OwnerName, o.OwnerDirectory, o.OwnerUserID,
				o.CreatedDate, o.ModifiedDate, o.Description,
				o.StreamID, o.StreamName, o.Published, o.ExtractedDate,
			).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	return store.Wrap("upsert objects into "+table, err)
}

type tableNameRow struct {
	TableName string `gorm:"column:table_name"`
}

func (s *SnapshotStore) generationTables(ctx context.Context, slug string, limit int) ([]string, error) {
	pattern, err := store.GenerationPattern(slug)
	if err != nil {
		return nil, err
	}
	query := `SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name ~ ?
		ORDER BY table_name DESC`
	args := []interface{}{pattern}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []tableNameRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, store.Wrap("list generations of "+slug, err)
	}
	tables := make([]string, len(rows))
	for i, r := range rows {
		tables[i] = r.TableName
	}
	return tables, nil
}

func (s *SnapshotStore) LatestGeneration(ctx context.Context, slug string) (string, error) {
	tables, err := s.generationTables(ctx, slug, 1)
	if err != nil {
		return "", err
	}
	if len(tables) == 0 {
		return "", store.ErrNoSnapshot
	}
	return tables[0], nil
}

func (s *SnapshotStore) ListGenerations(ctx context.Context, slug string) ([]model.Generation, error) {
	tables, err := s.generationTables(ctx, slug, 0)
	if err != nil {
		return nil, err
	}
	generations := make([]model.Generation, 0, len(tables))
	for _, table := range tables {
		date, ok := store.GenerationDate(slug, table)
		if !ok {
			continue
		}
		generations = append(generations, model.Generation{Table: table, Date: date})
	}
	return generations, nil
}

func (s *SnapshotStore) ListObjects(ctx context.Context, table string) ([]model.RemoteObject, error) {
	if err := store.ValidateGenerationTable(table); err != nil {
		return nil, err
	}
	var objects []model.RemoteObject
	err := s.db.WithContext(ctx).
		Raw(`SELECT ` + objectColumns + ` FROM ` + store.QuoteIdent(table) + ` ORDER BY object_name`).
		Scan(&objects).Error
	if err != nil {
		return nil, store.Wrap("list objects in "+table, err)
	}
	return objects, nil
}

func (s *SnapshotStore) GetObject(ctx context.Context, table, objectID string) (*model.RemoteObject, error) {
	if err := store.ValidateGenerationTable(table); err != nil {
		return nil, err
	}
	var objects []model.RemoteObject
	err := s.db.WithContext(ctx).
		Raw(`SELECT `+objectColumns+` FROM `+store.QuoteIdent(table)+` WHERE object_id = ? LIMIT 1`, objectID).
		Scan(&objects).Error
	if err != nil {
		return nil, store.Wrap("get object from "+table, err)
	}
	if len(objects) == 0 {
		return nil, store.ErrObjectNotFound
	}
	return &objects[0], nil
}
