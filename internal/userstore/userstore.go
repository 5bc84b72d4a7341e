// Package userstore is the durable, authoritative record of user accounts,
// kept in a single sqlite database.
package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/gommon/log"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"uk.co.dudmesh.emprendenet/internal/model"
	"uk.co.dudmesh.emprendenet/internal/userstore/migrations"
)

const databaseName = "users.db"

type Config interface {
	DataDirectory() string
}

type userstore struct {
	db *sqlx.DB
}

func New(ctx context.Context, config Config) (*userstore, error) {
	dbName := path.Join(config.DataDirectory(), databaseName)

	db, err := sqlx.Connect("sqlite3", "file:"+dbName+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &userstore{db}, nil
}

func migrate(ctx context.Context, db *sqlx.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(log.New("goose"))
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	return goose.UpContext(ctx, db.DB, ".")
}

func (d *userstore) Close() error {
	return d.db.Close()
}

// CreateUser inserts user and sets its ID. A name that is already in use
// fails with model.ErrorNameTaken.
func (d *userstore) CreateUser(ctx context.Context, user *model.User) error {
	res, err := d.db.NamedExecContext(ctx, `insert into users
		(CreatedAt, Name, Salt, PasswordHash, Remember, Role, FullName, Location, Occupation)
		values(:CreatedAt, :Name, :Salt, :PasswordHash, :Remember, :Role, :FullName, :Location, :Occupation)`, user)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return model.ErrorNameTaken
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting user id: %w", err)
	}
	user.ID = model.UserID(id)

	return nil
}

func (d *userstore) FetchByID(ctx context.Context, id model.UserID) (*model.User, error) {
	return d.fetch(ctx, `select * from users where ID = ?`, id)
}

func (d *userstore) FetchByName(ctx context.Context, name string) (*model.User, error) {
	return d.fetch(ctx, `select * from users where Name = ?`, name)
}

func (d *userstore) fetch(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}
	err := d.db.GetContext(ctx, user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorUserNotFound
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return user, nil
}

// UpdateUser persists the mutable fields of user. Name, salt, role and
// creation time are never written after creation.
func (d *userstore) UpdateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.UpdatedAt = &now

	res, err := d.db.NamedExecContext(ctx, `update users set
		UpdatedAt = :UpdatedAt,
		PasswordHash = :PasswordHash,
		Remember = :Remember,
		FullName = :FullName,
		Location = :Location,
		Occupation = :Occupation
		where ID = :ID`, user)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return expectOneRow(res)
}

func (d *userstore) DeleteUser(ctx context.Context, id model.UserID) error {
	res, err := d.db.ExecContext(ctx, `delete from users where ID = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrorUserNotFound
	}
	if rows != 1 {
		return fmt.Errorf("expected 1 row to be affected, got %d", rows)
	}
	return nil
}
