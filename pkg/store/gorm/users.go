package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
	"github.com/doodlesbykumbi/ownership-manager/pkg/store"
)

// Ensure UserStore implements store.UserStore
var _ store.UserStore = (*UserStore)(nil)

const createUsersSQL = `CREATE TABLE IF NOT EXISTS %s (
	user_id VARCHAR(100) PRIMARY KEY,
	user_name VARCHAR(255),
	user_directory VARCHAR(255),
	user_id_attr VARCHAR(255),
	email VARCHAR(255),
	status VARCHAR(50)
)`

const upsertUserSQL = `INSERT INTO %s (user_id, user_name, user_directory, user_id_attr, email, status)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET
	user_name = EXCLUDED.user_name,
	user_directory = EXCLUDED.user_directory,
	user_id_attr = EXCLUDED.user_id_attr,
	email = EXCLUDED.email,
	status = EXCLUDED.status`

const userColumns = `user_id, user_name, user_directory, user_id_attr, email, status`

// UserStore implements store.UserStore using GORM
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a new UserStore
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) EnsureTable(ctx context.Context, slug string) error {
	table, err := store.UsersTable(slug)
	if err != nil {
		return err
	}
	return store.Wrap("create "+table, s.db.WithContext(ctx).Exec(sprintfTable(createUsersSQL, table)).Error)
}

func (s *UserStore) TableExists(ctx context.Context, slug string) (bool, error) {
	table, err := store.UsersTable(slug)
	if err != nil {
		return false, err
	}
	return tableExists(ctx, s.db, table)
}

func (s *UserStore) UpsertUsers(ctx context.Context, slug string, users []model.User) error {
	table, err := store.UsersTable(slug)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}
	stmt := sprintfTable(upsertUserSQL, table)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range users {
			if err := tx.Exec(stmt, u.UserID, u.UserName, u.UserDirectory, u.UserIDAttr, u.Email, u.Status).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return store.Wrap("upsert users into "+table, err)
}

func (s *UserStore) ListUsers(ctx context.Context, slug string) ([]model.User, error) {
	table, err := store.UsersTable(slug)
	if err != nil {
		return nil, err
	}
	var users []model.User
	err = s.db.WithContext(ctx).
		Raw(`SELECT ` + userColumns + ` FROM ` + store.QuoteIdent(table) + ` ORDER BY user_name`).
		Scan(&users).Error
	if err != nil {
		return nil, store.Wrap("list users in "+table, err)
	}
	return users, nil
}

func (s *UserStore) GetUser(ctx context.Context, slug, userID string) (*model.User, error) {
	table, err := store.UsersTable(slug)
	if err != nil {
		return nil, err
	}
	var users []model.User
	err = s.db.WithContext(ctx).
		Raw(`SELECT `+userColumns+` FROM `+store.QuoteIdent(table)+` WHERE user_id = ? LIMIT 1`, userID).
		Scan(&users).Error
	if err != nil {
		return nil, store.Wrap("get user from "+table, err)
	}
	if len(users) == 0 {
		return nil, store.ErrUserNotFound
	}
	return &users[0], nil
}
