package gtx

import (
	"context"
	"fmt"
	"sort"

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

//mockedCheck is a check decided by the evaluator only
type mockedCheck string

func (c mockedCheck) Name() string {
	return string(c)
}

//mockedCriterionCheck expresses itself as a criterion. A nil criterion falls
//back to the evaluator.
type mockedCriterionCheck struct {
	name string
	crit criterion.Criterion
}

func (c mockedCriterionCheck) Name() string {
	return c.name
}

func (c mockedCriterionCheck) Criterion(scope api.RequestScope) criterion.Criterion {
	return c.crit
}

//verdicts is an evaluator returning a fixed verdict per check name
type verdicts map[string]api.Verdict

func (v verdicts) Evaluate(ctx context.Context, check api.Check, scope api.RequestScope) (api.Verdict, error) {
	verdict, ok := v[check.Name()]
	if !ok {
		return api.Deny, fmt.Errorf("no verdict for %s", check.Name())
	}
	return verdict, nil
}

type mockedLazyCollection struct {
	source string
}

func (c mockedLazyCollection) Source() string {
	return c.source
}

func (c mockedLazyCollection) Documents(ctx context.Context) ([]*api.Document, error) {
	return nil, nil
}

type mockedFilter struct {
	Source string
	Clause string
	Params map[string][]interface{}
}

//mockedSession records the calls it receives. Writes apply to Data directly.
type mockedSession struct {
	Data    map[string]map[string]*api.Document
	Calls   []string
	Queries []api.Query
	Filters []mockedFilter
	//FailOn makes the call with the given record fail
	FailOn map[string]error

	open    bool
	active  bool
	cursors []*mockedCursor
}

func newMockedSession() *mockedSession {
	return &mockedSession{
		Data:   make(map[string]map[string]*api.Document),
		FailOn: make(map[string]error),
		open:   true,
		active: true,
	}
}

func (s *mockedSession) record(call string) error {
	s.Calls = append(s.Calls, call)
	return s.FailOn[call]
}

func (s *mockedSession) add(d *api.Document) {
	docs, ok := s.Data[d.Type]
	if !ok {
		docs = make(map[string]*api.Document)
		s.Data[d.Type] = docs
	}
	docs[d.ID] = d
}

func (s *mockedSession) Begin(ctx context.Context) error {
	if err := s.record("begin"); err != nil {
		return err
	}
	s.active = true
	return nil
}

func (s *mockedSession) Get(ctx context.Context, typ string, id string) (*api.Document, error) {
	if err := s.record("get " + typ + "/" + id); err != nil {
		return nil, err
	}
	d, ok := s.Data[typ][id]
	if !ok {
		return nil, notFound("not found")
	}
	return d, nil
}

func (s *mockedSession) Query(ctx context.Context, q api.Query) (api.Cursor, error) {
	if err := s.record("query " + q.Type); err != nil {
		return nil, err
	}
	s.Queries = append(s.Queries, q)

	var docs []*api.Document
	for _, d := range s.Data[q.Type] {
		ok, err := criterion.Evaluate(q.Criterion, d)
		if err != nil {
			return nil, err
		}
		if ok {
			docs = append(docs, d)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

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

	c := &mockedCursor{docs: docs, idx: -1}
	s.cursors = append(s.cursors, c)
	return c, nil
}

func (s *mockedSession) Relation(ctx context.Context, owner *api.Document, name string) (api.Collection, error) {
	if err := s.record("relation " + name); err != nil {
		return nil, err
	}
	return mockedLazyCollection{source: api.RelationType(owner, name)}, nil
}

func (s *mockedSession) Filter(ctx context.Context, c api.LazyCollection, clause string, params map[string][]interface{}) ([]*api.Document, error) {
	if err := s.record("filter " + c.Source()); err != nil {
		return nil, err
	}
	s.Filters = append(s.Filters, mockedFilter{Source: c.Source(), Clause: clause, Params: params})
	return []*api.Document{{ID: "filtered", Type: c.Source()}}, nil
}

func (s *mockedSession) Persist(ctx context.Context, d *api.Document) error {
	if err := s.record("persist " + d.ID); err != nil {
		return err
	}
	s.add(d)
	return nil
}

func (s *mockedSession) Update(ctx context.Context, d *api.Document) error {
	if err := s.record("update " + d.ID); err != nil {
		return err
	}
	s.add(d)
	return nil
}

func (s *mockedSession) Delete(ctx context.Context, d *api.Document) error {
	if err := s.record("delete " + d.ID); err != nil {
		return err
	}
	delete(s.Data[d.Type], d.ID)
	return nil
}

func (s *mockedSession) Flush(ctx context.Context) error {
	return s.record("flush")
}

func (s *mockedSession) Commit(ctx context.Context) error {
	if err := s.record("commit"); err != nil {
		return err
	}
	s.active = false
	return nil
}

func (s *mockedSession) Rollback(ctx context.Context) error {
	s.active = false
	return s.record("rollback")
}

func (s *mockedSession) IsOpen() bool {
	return s.open
}

func (s *mockedSession) IsActive() bool {
	return s.active
}

func (s *mockedSession) Close(ctx context.Context) error {
	s.open = false
	s.active = false
	return s.record("close")
}

type mockedCursor struct {
	docs   []*api.Document
	idx    int
	closed bool
}

func (c *mockedCursor) Next(ctx context.Context) bool {
	if c.closed || c.idx+1 >= len(c.docs) {
		return false
	}
	c.idx++
	return true
}

func (c *mockedCursor) Document() *api.Document {
	return c.docs[c.idx]
}

func (c *mockedCursor) Err() error {
	return nil
}

func (c *mockedCursor) Close(ctx context.Context) error {
	c.closed = true
	return nil
}

type mockedOpener struct {
	sessions []*mockedSession
	seed     []*api.Document
}

func (o *mockedOpener) Open(ctx context.Context) (api.Session, error) {
	s := newMockedSession()
	s.active = false
	for _, d := range o.seed {
		s.add(d)
	}
	o.sessions = append(o.sessions, s)
	return s, nil
}
