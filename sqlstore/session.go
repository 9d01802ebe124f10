package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/xdbsoft/gtx/api"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type session struct {
	store *Store
	tx    *sql.Tx
	open  bool
}

func (s *session) d() dialect {
	return s.store.dialect
}

func (s *session) queryer() queryer {
	if s.tx != nil {
		return s.tx
	}
	return s.store.db
}

func (s *session) checkActive() error {
	if !s.open {
		return errors.New("session is closed")
	}
	if s.tx == nil {
		return errors.New("no active transaction")
	}
	return nil
}

//Field implements filter.Syntax
func (s *session) Field(name string, values []interface{}) string {
	return s.d().field(name, values)
}

func (s *session) Begin(ctx context.Context) error {
	if !s.open {
		return errors.New("session is closed")
	}
	if s.tx != nil {
		return errors.New("transaction already active")
	}
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "unable to begin transaction")
	}
	s.tx = tx
	return nil
}

func (s *session) Get(ctx context.Context, typ string, id string) (*api.Document, error) {
	c := &compiler{d: s.d()}
	query := "SELECT content, created, updated FROM t_document WHERE collection=" + c.param(typ) + " AND id=" + c.param(id)

	var b []byte
	var created, updated time.Time
	err := s.queryer().QueryRowContext(ctx, query, c.args...).Scan(&b, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, notFound("document not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "DB retrieval failed")
	}

	content := make(map[string]interface{})
	if err := json.Unmarshal(b, &content); err != nil {
		return nil, errors.Wrap(err, "DB decoding failed")
	}

	return &api.Document{
		ID:                   id,
		Type:                 typ,
		CreationDate:         &created,
		LastModificationDate: &updated,
		Properties:           content,
	}, nil
}

func (s *session) Query(ctx context.Context, q api.Query) (api.Cursor, error) {
	query, args, err := selectQuery(s.d(), q)
	if err != nil {
		return nil, errors.Wrap(err, "unable to compile query")
	}

	rows, err := s.queryer().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "DB query failed")
	}
	return &cursor{rows: rows, typ: q.Type}, nil
}

//Relation returns a collection loaded only when read or filtered
func (s *session) Relation(ctx context.Context, owner *api.Document, name string) (api.Collection, error) {
	return &relation{session: s, source: api.RelationType(owner, name)}, nil
}

func (s *session) Filter(ctx context.Context, c api.LazyCollection, clause string, params map[string][]interface{}) ([]*api.Document, error) {
	comp := &compiler{d: s.d()}
	query := "SELECT id, content, created, updated FROM t_document WHERE collection = " + comp.param(c.Source())
	if len(clause) > 0 {
		where, err := comp.bindNamed(clause, params)
		if err != nil {
			return nil, err
		}
		query += " AND (" + where + ")"
	}

	rows, err := s.queryer().QueryContext(ctx, query, comp.args...)
	if err != nil {
		return nil, errors.Wrap(err, "DB query failed")
	}
	return readAll(ctx, &cursor{rows: rows, typ: c.Source()})
}

func encode(d *api.Document) (string, error) {
	props := d.Properties
	if props == nil {
		props = make(map[string]interface{})
	}
	b, err := json.Marshal(props)
	if err != nil {
		return "", errors.Wrap(err, "unable to encode payload")
	}
	return string(b), nil
}

func (s *session) Persist(ctx context.Context, d *api.Document) error {
	if err := s.checkActive(); err != nil {
		return err
	}
	content, err := encode(d)
	if err != nil {
		return err
	}

	now := s.store.Now()
	c := &compiler{d: s.d()}
	query := "INSERT INTO t_document (collection, id, content, created, updated) VALUES (" +
		c.param(d.Type) + "," + c.param(d.ID) + "," + c.param(content) + "," + c.param(now) + "," + c.param(now) + ")"
	if _, err := s.tx.ExecContext(ctx, query, c.args...); err != nil {
		return errors.Wrap(err, "unable to insert document")
	}
	return nil
}

func (s *session) Update(ctx context.Context, d *api.Document) error {
	if err := s.checkActive(); err != nil {
		return err
	}
	content, err := encode(d)
	if err != nil {
		return err
	}

	now := s.store.Now()
	c := &compiler{d: s.d()}
	query := "INSERT INTO t_document (collection, id, content, created, updated) VALUES (" +
		c.param(d.Type) + "," + c.param(d.ID) + "," + c.param(content) + "," + c.param(now) + "," + c.param(now) + ")" +
		" ON CONFLICT(collection,id) DO UPDATE SET content=excluded.content,updated=excluded.updated"
	if _, err := s.tx.ExecContext(ctx, query, c.args...); err != nil {
		return errors.Wrap(err, "unable to insert or update document")
	}
	return nil
}

func (s *session) Delete(ctx context.Context, d *api.Document) error {
	if err := s.checkActive(); err != nil {
		return err
	}
	c := &compiler{d: s.d()}
	query := "DELETE FROM t_document WHERE collection=" + c.param(d.Type) + " AND id=" + c.param(d.ID)
	if _, err := s.tx.ExecContext(ctx, query, c.args...); err != nil {
		return errors.Wrap(err, "unable to delete document")
	}
	return nil
}

//Flush does nothing, statements are executed as soon as they are issued
func (s *session) Flush(ctx context.Context) error {
	return s.checkActive()
}

func (s *session) Commit(ctx context.Context) error {
	if err := s.checkActive(); err != nil {
		return err
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "unable to commit")
	}
	return nil
}

func (s *session) Rollback(ctx context.Context) error {
	if err := s.checkActive(); err != nil {
		return err
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil {
		return errors.Wrap(err, "unable to roll back")
	}
	return nil
}

func (s *session) IsOpen() bool {
	return s.open
}

func (s *session) IsActive() bool {
	return s.tx != nil
}

func (s *session) Close(ctx context.Context) error {
	s.open = false
	if s.tx != nil {
		tx := s.tx
		s.tx = nil
		if err := tx.Rollback(); err != nil {
			return errors.Wrap(err, "unable to roll back")
		}
	}
	return nil
}

type relation struct {
	session *session
	source  string
}

func (r *relation) Source() string {
	return r.source
}

func (r *relation) Documents(ctx context.Context) ([]*api.Document, error) {
	c, err := r.session.Query(ctx, api.Query{Type: r.source})
	if err != nil {
		return nil, err
	}
	return readAll(ctx, c)
}

type cursor struct {
	rows    *sql.Rows
	typ     string
	current *api.Document
	err     error
}

func (c *cursor) Next(ctx context.Context) bool {
	if c.err != nil || !c.rows.Next() {
		c.current = nil
		return false
	}

	var id string
	var b []byte
	var created, updated time.Time
	if err := c.rows.Scan(&id, &b, &created, &updated); err != nil {
		c.err = errors.Wrap(err, "DB retrieval failed")
		c.current = nil
		return false
	}

	content := make(map[string]interface{})
	if err := json.Unmarshal(b, &content); err != nil {
		c.err = errors.Wrap(err, "DB decoding failed")
		c.current = nil
		return false
	}

	c.current = &api.Document{
		ID:                   id,
		Type:                 c.typ,
		CreationDate:         &created,
		LastModificationDate: &updated,
		Properties:           content,
	}
	return true
}

func (c *cursor) Document() *api.Document {
	return c.current
}

func (c *cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *cursor) Close(ctx context.Context) error {
	return c.rows.Close()
}

func readAll(ctx context.Context, c api.Cursor) ([]*api.Document, error) {
	defer c.Close(ctx)

	var docs []*api.Document
	for c.Next(ctx) {
		docs = append(docs, c.Document())
	}
	return docs, c.Err()
}
