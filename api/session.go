package api

import (
	"context"

	"github.com/xdbsoft/gtx/criterion"
)

//Query is one bounded read against a session
type Query struct {
	Type       string
	Criterion  criterion.Criterion
	Sorting    Sorting
	Pagination *Pagination
}

//Cursor is a forward-only iterator over query results.
//Close must be called once the cursor is no longer needed.
type Cursor interface {
	Next(ctx context.Context) bool
	Document() *Document
	Err() error
	Close(ctx context.Context) error
}

//Session describes the interface that a storage session should implement.
//A session is used by a single transaction and is not safe for concurrent use.
type Session interface {
	Begin(ctx context.Context) error

	Get(ctx context.Context, typ string, id string) (*Document, error)
	Query(ctx context.Context, q Query) (Cursor, error)
	Relation(ctx context.Context, owner *Document, name string) (Collection, error)
	Filter(ctx context.Context, c LazyCollection, clause string, params map[string][]interface{}) ([]*Document, error)

	Persist(ctx context.Context, d *Document) error
	Update(ctx context.Context, d *Document) error
	Delete(ctx context.Context, d *Document) error
	Flush(ctx context.Context) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	//IsOpen is false once the session has been closed
	IsOpen() bool
	//IsActive is true between Begin and Commit or Rollback
	IsActive() bool
	Close(ctx context.Context) error
}

//Opener creates the sessions of a store
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

//RelationType is the type of the documents of a sub-collection
func RelationType(owner *Document, name string) string {
	return owner.Type + "/" + owner.ID + "/" + name
}
