// Package mongostore stores documents in a single MongoDB collection, one
// record per document, its properties kept in an embedded document.
package mongostore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xdbsoft/gtx/api"
)

type notFound string

func (err notFound) IsNotFound() bool {
	return true
}
func (err notFound) Error() string {
	return string(err)
}

type record struct {
	Collection string                 `bson:"collection"`
	ID         string                 `bson:"id"`
	Created    time.Time              `bson:"created"`
	Updated    time.Time              `bson:"updated"`
	Properties map[string]interface{} `bson:"properties"`
}

func (r record) document() *api.Document {
	props := r.Properties
	if props == nil {
		props = make(map[string]interface{})
	}
	created, updated := r.Created, r.Updated
	return &api.Document{
		ID:                   r.ID,
		Type:                 r.Collection,
		CreationDate:         &created,
		LastModificationDate: &updated,
		Properties:           props,
	}
}

func key(typ, id string) bson.M {
	return bson.M{fieldCollection: typ, fieldID: id}
}

//Store opens sessions on a collection. Transactions require a replica set.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	//Now returns the time used for creation and modification dates
	Now func() time.Time
}

func Connect(ctx context.Context, uri string, database string, collection string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to mongo db")
	}

	s := New(client.Database(database).Collection(collection))
	if err := s.Init(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func New(coll *mongo.Collection) *Store {
	return &Store{
		client: coll.Database().Client(),
		coll:   coll,
		Now:    time.Now,
	}
}

//Init makes (collection, id) unique
func (s *Store) Init(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: fieldCollection, Value: 1}, {Key: fieldID, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return errors.Wrap(err, "unable to create index")
}

func (s *Store) Open(ctx context.Context) (api.Session, error) {
	ms, err := s.client.StartSession(options.Session())
	if err != nil {
		return nil, errors.Wrap(err, "unable to start session")
	}
	return &session{store: s, s: ms, open: true}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
