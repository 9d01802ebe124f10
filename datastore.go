package gtx

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/xdbsoft/gtx/api"
	"github.com/xdbsoft/gtx/logger"
	"github.com/xdbsoft/gtx/memstore"
	"github.com/xdbsoft/gtx/mongostore"
	"github.com/xdbsoft/gtx/rules"
	"github.com/xdbsoft/gtx/sqlstore"
)

type closer interface {
	Close(ctx context.Context) error
}

//DataStore gives access to the documents of the configured collections
type DataStore struct {
	cfg       Config
	opener    api.Opener
	dict      *dictionary
	evaluator api.CheckEvaluator
	log       logger.Logger
}

//New builds a DataStore on the given opener. Checks are evaluated with
//rules.Evaluator.
func New(cfg Config, opener api.Opener, log logger.Logger) *DataStore {
	if log == nil {
		log = logger.NewStub()
	}
	return &DataStore{
		cfg:       cfg,
		opener:    opener,
		dict:      newDictionary(cfg.Collections),
		evaluator: rules.Evaluator{},
		log:       log,
	}
}

//Open connects to the storage named by the configuration
func Open(ctx context.Context, cfg Config, log logger.Logger) (*DataStore, error) {
	var opener api.Opener

	switch cfg.Storage.Driver {
	case "", "memory":
		opener = memstore.New()
	case "postgres", "sqlite3":
		s, err := sqlstore.Connect(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to open %s storage", cfg.Storage.Driver)
		}
		opener = s
	case "mongo":
		s, err := mongostore.Connect(ctx, cfg.Storage.DSN, cfg.Storage.Database, cfg.Storage.Collection)
		if err != nil {
			return nil, errors.Wrap(err, "unable to open mongo storage")
		}
		opener = s
	default:
		return nil, validationError(fmt.Sprintf("unknown storage driver '%s'", cfg.Storage.Driver))
	}

	return New(cfg, opener, log), nil
}

func (s *DataStore) Dictionary() api.Dictionary {
	return s.dict
}

//WithEvaluator replaces the evaluator of the checks that cannot be expressed
//as a criterion
func (s *DataStore) WithEvaluator(e api.CheckEvaluator) *DataStore {
	c := *s
	c.evaluator = e
	return &c
}

//BeginTransaction opens a session and starts its transaction.
//The returned transaction must be closed.
func (s *DataStore) BeginTransaction(ctx context.Context) (*Transaction, error) {
	session, err := s.opener.Open(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open session")
	}
	if err := session.Begin(ctx); err != nil {
		session.Close(ctx)
		return nil, errors.Wrap(err, "unable to begin transaction")
	}

	tx := NewTransaction(session, s.dict, s.evaluator, s.log.With("tx"))
	tx.strictSorting = s.cfg.StrictSorting
	return tx, nil
}

//Scope returns the read scope of a collection for the given request, built
//from the configured rules
func (s *DataStore) Scope(typ string, request api.RequestScope) (FilterScope, error) {
	t, ok := s.dict.lookup(typ)
	if !ok {
		return FilterScope{}, notFoundError{Type: typ}
	}

	mode, err := ParseMode(t.def.Mode)
	if err != nil {
		return FilterScope{}, errors.Wrapf(err, "collection '%s'", t.def.Name)
	}

	checks := make([]api.Check, len(t.def.Rules))
	for i, r := range t.def.Rules {
		checks[i] = r.Check()
	}

	return FilterScope{
		Type:    typ,
		Checks:  checks,
		Mode:    mode,
		Request: request,
	}, nil
}

//Close releases the storage
func (s *DataStore) Close(ctx context.Context) error {
	if c, ok := s.opener.(closer); ok {
		return c.Close(ctx)
	}
	return nil
}
