package api

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/xdbsoft/gtx/criterion"
)

//Document represents a document of a collection
type Document struct {
	ID                   string                 `json:"id"`
	Type                 string                 `json:"type"`
	CreationDate         *time.Time             `json:"creationDate,omitempty"`
	LastModificationDate *time.Time             `json:"lastModificationDate,omitempty"`
	Properties           map[string]interface{} `json:"properties"`
}

//NewDocument returns a blank document of the given type with a fresh ID
func NewDocument(typ string) *Document {
	return &Document{
		ID:         NextID(),
		Type:       typ,
		Properties: make(map[string]interface{}),
	}
}

//NextID generates a pseudo-random ID that could be used when creating a document
func NextID() string {
	return xid.New().String()
}

//Field implements criterion.Fields
func (d *Document) Field(name string) (interface{}, bool) {
	if name == criterion.IDField {
		return d.ID, true
	}
	v, ok := d.Properties[name]
	return v, ok
}

//Collection is a set of documents, possibly not loaded yet
type Collection interface {
	Documents(ctx context.Context) ([]*Document, error)
}

//LazyCollection is a collection managed by a storage session. Its content is
//only fetched on demand and it can be filtered by the session itself.
type LazyCollection interface {
	Collection
	Source() string
}

//Documents is an already materialized collection
type Documents []*Document

func (d Documents) Documents(ctx context.Context) ([]*Document, error) {
	return d, nil
}
