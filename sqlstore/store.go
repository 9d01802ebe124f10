// Package sqlstore stores documents in a SQL database, PostgreSQL (jsonb) or
// SQLite (json1). All collections share the t_document table.
package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	//we expect to depend on specific behaviour of github.com/lib/pq
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/xdbsoft/gtx/api"
)

type notFound string

func (err notFound) IsNotFound() bool {
	return true
}
func (err notFound) Error() string {
	return string(err)
}

//Store opens sessions on a database
type Store struct {
	db      *sql.DB
	dialect dialect
	//Now returns the time used for creation and modification dates
	Now func() time.Time
}

//Connect opens the database with the given driver, postgres or sqlite3, and
//creates the documents table when missing
func Connect(ctx context.Context, driver string, dsn string) (*Store, error) {

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect")
	}

	if driver == "sqlite3" {
		// a single connection keeps the pragmas and serializes writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s, err := New(db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := s.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

//New uses an already opened database
func New(db *sql.DB, driver string) (*Store, error) {
	d, err := dialectOf(driver)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:      db,
		dialect: d,
		Now:     time.Now,
	}, nil
}

//Init creates the documents table if it does not exist yet
func (s *Store) Init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "unable to reach database")
	}
	if s.dialect.name() == "sqlite3" {
		if _, err := s.db.ExecContext(ctx, "PRAGMA case_sensitive_like = ON"); err != nil {
			return errors.Wrap(err, "unable to apply pragma")
		}
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.schema()); err != nil {
		return errors.Wrap(err, "CREATE TABLE t_document failed")
	}
	return nil
}

func (s *Store) Open(ctx context.Context) (api.Session, error) {
	return &session{store: s, open: true}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}
