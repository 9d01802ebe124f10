package gtx

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/xdbsoft/gtx/api"
	"github.com/xdbsoft/gtx/filter"
	"github.com/xdbsoft/gtx/logger"
)

type txState int

const (
	stateOpen txState = iota
	stateFlushed
	stateCommitted
	stateRolledBack
	//a flush or commit failed, the transaction can only be rolled back or closed
	stateFailed
	stateClosed
)

func (s txState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateFlushed:
		return "flushed"
	case stateCommitted:
		return "committed"
	case stateRolledBack:
		return "rolled back"
	case stateFailed:
		return "failed"
	}
	return "closed"
}

//Transaction is the unit of work of one request. Writes are buffered until
//Flush or Commit, reads are scoped by the permission checks of the request.
//A Transaction is not safe for concurrent use.
type Transaction struct {
	session   api.Session
	dict      api.Dictionary
	evaluator api.CheckEvaluator
	log       logger.Logger

	strictSorting bool

	buffer    writeBuffer
	state     txState
	sequences map[*ResultSequence]struct{}
}

//NewTransaction wraps a session on which Begin has already been called.
//The transaction takes ownership of the session and releases it on Close.
func NewTransaction(session api.Session, dict api.Dictionary, evaluator api.CheckEvaluator, log logger.Logger) *Transaction {
	if log == nil {
		log = logger.NewStub()
	}
	return &Transaction{
		session:   session,
		dict:      dict,
		evaluator: evaluator,
		log:       log,
		sequences: make(map[*ResultSequence]struct{}),
	}
}

func (tx *Transaction) usable() error {
	switch tx.state {
	case stateOpen, stateFlushed:
		return nil
	}
	return protocolViolation(fmt.Sprintf("transaction is %s", tx.state))
}

func (tx *Transaction) enqueue(kind opKind, d *api.Document) error {
	if err := tx.usable(); err != nil {
		return err
	}
	tx.buffer.enqueue(kind, d)
	tx.state = stateOpen
	return nil
}

//CreateObject returns a new blank document of the given type. It is persisted
//on the next flush.
func (tx *Transaction) CreateObject(ctx context.Context, typ string) (*api.Document, error) {
	if err := tx.usable(); err != nil {
		return nil, err
	}
	if !tx.dict.Exists(typ) {
		return nil, instantiationError{Type: typ}
	}
	d := api.NewDocument(typ)
	if err := tx.enqueue(opCreate, d); err != nil {
		return nil, err
	}
	return d, nil
}

//Save schedules the update of d
func (tx *Transaction) Save(ctx context.Context, d *api.Document) error {
	return tx.enqueue(opUpdate, d)
}

//Delete schedules the removal of d
func (tx *Transaction) Delete(ctx context.Context, d *api.Document) error {
	return tx.enqueue(opDelete, d)
}

//LoadObject returns the document of the given type and identifier, or nil when
//there is none
func (tx *Transaction) LoadObject(ctx context.Context, typ string, id string) (*api.Document, error) {
	if err := tx.usable(); err != nil {
		return nil, err
	}
	d, err := tx.session.Get(ctx, typ, id)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load %s '%s'", typ, id)
	}
	return d, nil
}

//LoadObjects returns every document of the given type, with no filtering,
//sorting or pagination
func (tx *Transaction) LoadObjects(ctx context.Context, typ string) (*ResultSequence, error) {
	if err := tx.usable(); err != nil {
		return nil, err
	}
	return tx.query(ctx, api.Query{Type: typ})
}

//LoadScoped returns the documents the request is authorized to read, filtered,
//sorted and paginated as the scope asks
func (tx *Transaction) LoadScoped(ctx context.Context, scope FilterScope) (*ResultSequence, error) {
	if err := tx.usable(); err != nil {
		return nil, err
	}

	perm, err := buildPermission(ctx, tx.evaluator, scope.Checks, scope.Mode, scope.Request)
	if err != nil {
		return nil, err
	}

	q, err := assembleQuery(scope, perm, tx.dict, tx.strictSorting)
	if err != nil {
		return nil, err
	}

	if perm.state == unsatisfiable {
		tx.log.Debugf("read of %s is unsatisfiable, no query issued", scope.Type)
		return tx.track(emptySequence()), nil
	}

	tx.log.Debugf("read of %s with permission %s", scope.Type, perm)
	return tx.query(ctx, q)
}

func (tx *Transaction) query(ctx context.Context, q api.Query) (*ResultSequence, error) {
	cursor, err := tx.session.Query(ctx, q)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to query %s", q.Type)
	}
	return tx.track(newSequence(cursor)), nil
}

//track binds s to the transaction, Close closes it
func (tx *Transaction) track(s *ResultSequence) *ResultSequence {
	s.release = tx.release
	tx.sequences[s] = struct{}{}
	return s
}

func (tx *Transaction) release(s *ResultSequence) {
	delete(tx.sequences, s)
}

//LoadRelation returns the sub-collection name of owner. It may not be loaded
//yet, see FilterCollection.
func (tx *Transaction) LoadRelation(ctx context.Context, owner *api.Document, name string) (api.Collection, error) {
	if err := tx.usable(); err != nil {
		return nil, err
	}
	c, err := tx.session.Relation(ctx, owner, name)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load relation %s of %s '%s'", name, owner.Type, owner.ID)
	}
	return c, nil
}

//FilterCollection applies the predicates of typ to a collection managed by the
//session. Other collections, or an empty predicate list, return coll unchanged.
func (tx *Transaction) FilterCollection(ctx context.Context, coll api.Collection, typ string, predicates []filter.Predicate) (api.Collection, error) {
	if err := tx.usable(); err != nil {
		return nil, err
	}

	lazy, ok := coll.(api.LazyCollection)
	predicates = predicatesOfType(predicates, typ)
	if !ok || len(predicates) == 0 {
		return coll, nil
	}

	syntax, _ := tx.session.(filter.Syntax)
	clause, params, err := filter.StringOperation{Syntax: syntax}.ApplyAll(predicates)
	if err != nil {
		return nil, err
	}

	docs, err := tx.session.Filter(ctx, lazy, clause, params)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to filter %s", lazy.Source())
	}
	return api.Documents(docs), nil
}

//Flush applies the buffered writes to the session. Calling it again with no
//write in between does nothing.
func (tx *Transaction) Flush(ctx context.Context) error {
	if err := tx.usable(); err != nil {
		return err
	}
	if tx.state == stateFlushed {
		return nil
	}

	n, err := tx.buffer.apply(ctx, tx.session)
	if err != nil {
		tx.state = stateFailed
		return wrapTransaction("flush", err)
	}
	if err := tx.session.Flush(ctx); err != nil {
		tx.state = stateFailed
		return wrapTransaction("flush", err)
	}

	tx.log.Debugf("flushed %d operations", n)
	tx.state = stateFlushed
	return nil
}

//Commit flushes then commits the storage transaction
func (tx *Transaction) Commit(ctx context.Context) error {
	if err := tx.Flush(ctx); err != nil {
		return err
	}
	if err := tx.session.Commit(ctx); err != nil {
		tx.state = stateFailed
		return wrapTransaction("commit", err)
	}
	tx.state = stateCommitted
	return nil
}

//Rollback drops the buffered writes and aborts the storage transaction
func (tx *Transaction) Rollback(ctx context.Context) error {
	switch tx.state {
	case stateCommitted, stateRolledBack, stateClosed:
		return protocolViolation(fmt.Sprintf("cannot roll back, transaction is %s", tx.state))
	}

	tx.buffer.clear()
	tx.state = stateRolledBack
	if tx.session.IsOpen() && tx.session.IsActive() {
		if err := tx.session.Rollback(ctx); err != nil {
			return wrapTransaction("rollback", err)
		}
	}
	return nil
}

//Close releases the session and the sequences still open. Closing while the
//storage transaction is active rolls it back and returns a protocol violation.
func (tx *Transaction) Close(ctx context.Context) error {
	if tx.state == stateClosed {
		return nil
	}

	for s := range tx.sequences {
		if err := s.Close(ctx); err != nil {
			tx.log.Warn(errors.Wrap(err, "unable to close result sequence"))
		}
	}

	var violation error
	if tx.session.IsOpen() && tx.session.IsActive() {
		violation = protocolViolation(fmt.Sprintf("transaction closed while %s and active, rolled back", tx.state))
		tx.log.Error(violation)
		if err := tx.session.Rollback(ctx); err != nil {
			tx.log.Error(errors.Wrap(err, "unable to roll back"))
		}
	}

	tx.buffer.clear()
	tx.state = stateClosed

	if tx.session.IsOpen() {
		if err := tx.session.Close(ctx); err != nil && violation == nil {
			return errors.Wrap(err, "unable to release session")
		}
	}
	return violation
}
