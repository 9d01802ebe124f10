// Package memstore is an in-memory storage for tests and examples. Each
// session works on a copy of the store taken by Begin. Commit applies the
// documents the session wrote to the current state of the store.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/xdbsoft/gtx/api"
	"github.com/xdbsoft/gtx/criterion"
)

type notFound string

func (err notFound) IsNotFound() bool {
	return true
}
func (err notFound) Error() string {
	return string(err)
}

type state map[string]map[string]*api.Document

func (s state) clone() state {
	c := make(state, len(s))
	for typ, docs := range s {
		m := make(map[string]*api.Document, len(docs))
		for id, d := range docs {
			m[id] = cloneDocument(d)
		}
		c[typ] = m
	}
	return c
}

func cloneDocument(d *api.Document) *api.Document {
	c := *d
	c.Properties = make(map[string]interface{}, len(d.Properties))
	for k, v := range d.Properties {
		c.Properties[k] = v
	}
	return &c
}

//Store holds the committed documents
type Store struct {
	mu   sync.Mutex
	data state
	//Now returns the time used for creation and modification dates
	Now func() time.Time
}

func New() *Store {
	return &Store{
		data: make(state),
		Now:  time.Now,
	}
}

func (s *Store) snapshot() state {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.clone()
}

//apply merges the written documents of working into the store. Creating a
//document another session committed in the meantime fails the whole commit.
func (s *Store) apply(working state, written map[key]bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, created := range written {
		_, inWorking := working[k.typ][k.id]
		if _, exists := s.data[k.typ][k.id]; created && inWorking && exists {
			return errors.Errorf("document %s '%s' already exists", k.typ, k.id)
		}
	}

	for k, created := range written {
		d, ok := working[k.typ][k.id]
		if !ok {
			if !created {
				delete(s.data[k.typ], k.id)
			}
			continue
		}
		docs, found := s.data[k.typ]
		if !found {
			docs = make(map[string]*api.Document)
			s.data[k.typ] = docs
		}
		docs[k.id] = d
	}
	return nil
}

func (s *Store) Open(ctx context.Context) (api.Session, error) {
	return &session{store: s, open: true}, nil
}

//Close does nothing, the documents are kept until the store is garbage collected
func (s *Store) Close(ctx context.Context) error {
	return nil
}

type key struct {
	typ, id string
}

type session struct {
	store   *Store
	working state
	//written lists the documents changed since Begin, true when created
	written map[key]bool
	open    bool
	active  bool
}

func (s *session) touch(d *api.Document, created bool) {
	k := key{d.Type, d.ID}
	s.written[k] = s.written[k] || created
}

func (s *session) view() state {
	if s.active {
		return s.working
	}
	return s.store.snapshot()
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
	if s.active {
		return errors.New("transaction already active")
	}
	s.working = s.store.snapshot()
	s.written = make(map[key]bool)
	s.active = true
	return nil
}

func (s *session) Get(ctx context.Context, typ string, id string) (*api.Document, error) {
	d, ok := s.view()[typ][id]
	if !ok {
		return nil, notFound("document not found")
	}
	return cloneDocument(d), nil
}

func (s *session) Query(ctx context.Context, q api.Query) (api.Cursor, error) {
	var docs []*api.Document
	for _, d := range s.view()[q.Type] {
		ok, err := criterion.Evaluate(q.Criterion, d)
		if err != nil {
			return nil, errors.Wrap(err, "unable to evaluate criterion")
		}
		if ok {
			docs = append(docs, cloneDocument(d))
		}
	}

	sortDocuments(docs, q.Sorting)

	if p := q.Pagination; p != nil {
		if p.Offset >= len(docs) {
			docs = nil
		} else {
			docs = docs[p.Offset:]
			if p.Limit < len(docs) {
				docs = docs[:p.Limit]
			}
		}
	}

	return &cursor{docs: docs, idx: -1}, nil
}

//sortDocuments orders by identifier first, which is the natural order of the
//store, then by the given rules
func sortDocuments(docs []*api.Document, sorting api.Sorting) {
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ID < docs[j].ID
	})
	if len(sorting) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, r := range sorting {
			c := compareField(docs[i], docs[j], r.Field)
			if c == 0 {
				continue
			}
			if r.Order == api.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

//compareField puts missing values first
func compareField(a, b *api.Document, field string) int {
	va, _ := a.Field(field)
	vb, _ := b.Field(field)
	switch {
	case va == nil && vb == nil:
		return 0
	case va == nil:
		return -1
	case vb == nil:
		return 1
	}
	c, err := criterion.Compare(va, vb)
	if err != nil {
		return 0
	}
	return c
}

//Relation returns the already loaded sub-collection
func (s *session) Relation(ctx context.Context, owner *api.Document, name string) (api.Collection, error) {
	var docs []*api.Document
	for _, d := range s.view()[api.RelationType(owner, name)] {
		docs = append(docs, cloneDocument(d))
	}
	sortDocuments(docs, nil)
	return api.Documents(docs), nil
}

func (s *session) Filter(ctx context.Context, c api.LazyCollection, clause string, params map[string][]interface{}) ([]*api.Document, error) {
	return nil, errors.Errorf("collection %s is not managed by the memory store", c.Source())
}

func (s *session) Persist(ctx context.Context, d *api.Document) error {
	if err := s.checkActive(); err != nil {
		return err
	}
	docs, ok := s.working[d.Type]
	if !ok {
		docs = make(map[string]*api.Document)
		s.working[d.Type] = docs
	}
	if _, exists := docs[d.ID]; exists {
		return errors.Errorf("document %s '%s' already exists", d.Type, d.ID)
	}

	now := s.store.Now()
	c := cloneDocument(d)
	c.CreationDate = &now
	c.LastModificationDate = &now
	docs[d.ID] = c
	s.touch(d, true)
	return nil
}

func (s *session) Update(ctx context.Context, d *api.Document) error {
	if err := s.checkActive(); err != nil {
		return err
	}
	docs, ok := s.working[d.Type]
	if !ok {
		docs = make(map[string]*api.Document)
		s.working[d.Type] = docs
	}

	now := s.store.Now()
	c := cloneDocument(d)
	c.LastModificationDate = &now
	if previous, exists := docs[d.ID]; exists {
		c.CreationDate = previous.CreationDate
	} else {
		c.CreationDate = &now
	}
	docs[d.ID] = c
	s.touch(d, false)
	return nil
}

func (s *session) Delete(ctx context.Context, d *api.Document) error {
	if err := s.checkActive(); err != nil {
		return err
	}
	delete(s.working[d.Type], d.ID)
	s.touch(d, false)
	return nil
}

//Flush does nothing: writes go straight to the working copy
func (s *session) Flush(ctx context.Context) error {
	return s.checkActive()
}

func (s *session) Commit(ctx context.Context) error {
	if err := s.checkActive(); err != nil {
		return err
	}
	if err := s.store.apply(s.working, s.written); err != nil {
		return err
	}

	s.working = nil
	s.written = nil
	s.active = false
	return nil
}

func (s *session) Rollback(ctx context.Context) error {
	if err := s.checkActive(); err != nil {
		return err
	}
	s.working = nil
	s.written = nil
	s.active = false
	return nil
}

func (s *session) IsOpen() bool {
	return s.open
}

func (s *session) IsActive() bool {
	return s.active
}

func (s *session) Close(ctx context.Context) error {
	s.working = nil
	s.active = false
	s.open = false
	return nil
}

type cursor struct {
	docs []*api.Document
	idx  int
}

func (c *cursor) Next(ctx context.Context) bool {
	if c.idx+1 >= len(c.docs) {
		c.idx = len(c.docs)
		return false
	}
	c.idx++
	return true
}

func (c *cursor) Document() *api.Document {
	if c.idx < 0 || c.idx >= len(c.docs) {
		return nil
	}
	return c.docs[c.idx]
}

func (c *cursor) Err() error {
	return nil
}

func (c *cursor) Close(ctx context.Context) error {
	c.docs = nil
	return nil
}
