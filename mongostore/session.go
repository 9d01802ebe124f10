package mongostore

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/xdbsoft/gtx/api"
)

type session struct {
	store  *Store
	s      mongo.Session
	open   bool
	active bool
}

func (s *session) bind(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, s.s)
}

func (s *session) checkActive() error {
	if !s.open {
		return errors.New("session is closed")
	}
	if !s.active {
		return errors.New("no active transaction")
	}
	return nil
}

func (s *session) Begin(ctx context.Context) error {
	if !s.open {
		return errors.New("session is closed")
	}
	err := s.s.StartTransaction(
		options.Transaction().
			SetReadConcern(readconcern.Majority()).
			SetWriteConcern(writeconcern.Majority()),
	)
	if err != nil {
		return errors.Wrap(err, "unable to start transaction")
	}
	s.active = true
	return nil
}

func (s *session) Get(ctx context.Context, typ string, id string) (*api.Document, error) {
	var r record
	err := s.store.coll.FindOne(s.bind(ctx), key(typ, id)).Decode(&r)
	if errors.Cause(err) == mongo.ErrNoDocuments {
		return nil, notFound("document not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "find document")
	}
	return r.document(), nil
}

func (s *session) Query(ctx context.Context, q api.Query) (api.Cursor, error) {
	// a zero limit means no limit to mongo
	if q.Pagination != nil && q.Pagination.Limit == 0 {
		return &cursor{}, nil
	}

	f, err := queryFilter(q.Type, q.Criterion)
	if err != nil {
		return nil, errors.Wrap(err, "unable to compile query")
	}

	opts := options.Find()
	if sort := sortOf(q.Sorting); len(sort) > 0 {
		opts.SetSort(sort)
	}
	if p := q.Pagination; p != nil {
		opts.SetSkip(int64(p.Offset)).SetLimit(int64(p.Limit))
	}

	c, err := s.store.coll.Find(s.bind(ctx), f, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find documents")
	}
	return &cursor{c: c}, nil
}

//Relation loads the sub-collection at once
func (s *session) Relation(ctx context.Context, owner *api.Document, name string) (api.Collection, error) {
	c, err := s.Query(ctx, api.Query{Type: api.RelationType(owner, name)})
	if err != nil {
		return nil, err
	}
	defer c.Close(ctx)

	var docs api.Documents
	for c.Next(ctx) {
		docs = append(docs, c.Document())
	}
	return docs, c.Err()
}

func (s *session) Filter(ctx context.Context, c api.LazyCollection, clause string, params map[string][]interface{}) ([]*api.Document, error) {
	return nil, errors.Errorf("collection %s is not managed by the mongo store", c.Source())
}

func (s *session) Persist(ctx context.Context, d *api.Document) error {
	if err := s.checkActive(); err != nil {
		return err
	}
	now := s.store.Now()
	_, err := s.store.coll.InsertOne(s.bind(ctx), record{
		Collection: d.Type,
		ID:         d.ID,
		Created:    now,
		Updated:    now,
		Properties: d.Properties,
	})
	return errors.Wrap(err, "insert document")
}

func (s *session) Update(ctx context.Context, d *api.Document) error {
	if err := s.checkActive(); err != nil {
		return err
	}
	now := s.store.Now()
	props := d.Properties
	if props == nil {
		props = make(map[string]interface{})
	}
	_, err := s.store.coll.UpdateOne(
		s.bind(ctx),
		key(d.Type, d.ID),
		bson.M{
			"$set":         bson.M{fieldProperties: props, fieldUpdated: now},
			"$setOnInsert": bson.M{fieldCreated: now},
		},
		options.Update().SetUpsert(true),
	)
	return errors.Wrap(err, "update document")
}

func (s *session) Delete(ctx context.Context, d *api.Document) error {
	if err := s.checkActive(); err != nil {
		return err
	}
	_, err := s.store.coll.DeleteOne(s.bind(ctx), key(d.Type, d.ID))
	return errors.Wrap(err, "delete document")
}

//Flush does nothing, writes are sent as soon as they are issued
func (s *session) Flush(ctx context.Context) error {
	return s.checkActive()
}

func (s *session) Commit(ctx context.Context) error {
	if err := s.checkActive(); err != nil {
		return err
	}
	s.active = false
	return errors.Wrap(s.s.CommitTransaction(ctx), "commit transaction")
}

func (s *session) Rollback(ctx context.Context) error {
	if err := s.checkActive(); err != nil {
		return err
	}
	s.active = false
	return errors.Wrap(s.s.AbortTransaction(ctx), "abort transaction")
}

func (s *session) IsOpen() bool {
	return s.open
}

func (s *session) IsActive() bool {
	return s.active
}

func (s *session) Close(ctx context.Context) error {
	var err error
	if s.active {
		s.active = false
		err = errors.Wrap(s.s.AbortTransaction(ctx), "abort running transaction")
	}
	s.open = false
	s.s.EndSession(ctx)
	return err
}

type cursor struct {
	c       *mongo.Cursor
	current *api.Document
	err     error
}

func (c *cursor) Next(ctx context.Context) bool {
	c.current = nil
	if c.c == nil || c.err != nil || !c.c.Next(ctx) {
		return false
	}
	var r record
	if err := c.c.Decode(&r); err != nil {
		c.err = errors.Wrap(err, "decode document")
		return false
	}
	c.current = r.document()
	return true
}

func (c *cursor) Document() *api.Document {
	return c.current
}

func (c *cursor) Err() error {
	if c.err != nil || c.c == nil {
		return c.err
	}
	return c.c.Err()
}

func (c *cursor) Close(ctx context.Context) error {
	if c.c == nil {
		return nil
	}
	return c.c.Close(ctx)
}
