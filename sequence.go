package gtx

import (
	"context"
	"iter"

	"github.com/xdbsoft/gtx/api"
)

//ResultSequence is a lazy, forward-only sequence of documents backed by a
//storage cursor. It is bound to the transaction that produced it and cannot
//be used once that transaction is closed.
type ResultSequence struct {
	cursor  api.Cursor
	current *api.Document
	err     error
	done    bool
	closed  bool
	release func(*ResultSequence)
}

func newSequence(cursor api.Cursor) *ResultSequence {
	return &ResultSequence{cursor: cursor}
}

//emptySequence yields nothing and holds no cursor
func emptySequence() *ResultSequence {
	return &ResultSequence{done: true}
}

//Next advances to the next document. It returns false at the end of the
//sequence or on error, see Err.
func (s *ResultSequence) Next(ctx context.Context) bool {
	if s.closed {
		s.current = nil
		s.err = resourceClosed("result sequence used after being closed")
		return false
	}
	if s.done {
		return false
	}

	if !s.cursor.Next(ctx) {
		s.current = nil
		s.done = true
		s.err = s.cursor.Err()
		// exhausted cursors are released, the sequence stays bound until closed
		if err := s.cursor.Close(ctx); err != nil && s.err == nil {
			s.err = err
		}
		s.cursor = nil
		return false
	}

	s.current = s.cursor.Document()
	return true
}

//Document is the document Next moved to
func (s *ResultSequence) Document() *api.Document {
	return s.current
}

func (s *ResultSequence) Err() error {
	return s.err
}

//Close releases the underlying cursor. It can be called several times.
func (s *ResultSequence) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.current = nil

	if s.release != nil {
		s.release(s)
	}
	if s.cursor != nil {
		return s.cursor.Close(ctx)
	}
	return nil
}

//All ranges over the remaining documents. The sequence is closed when the
//loop ends, including on break. An error is yielded last, with a nil document.
func (s *ResultSequence) All(ctx context.Context) iter.Seq2[*api.Document, error] {
	return func(yield func(*api.Document, error) bool) {
		defer s.Close(ctx)

		for s.Next(ctx) {
			if !yield(s.current, nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			yield(nil, err)
		}
	}
}

//Collect reads the remaining documents and closes the sequence
func (s *ResultSequence) Collect(ctx context.Context) ([]*api.Document, error) {
	var docs []*api.Document
	for d, err := range s.All(ctx) {
		if err != nil {
			return docs, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}
