package gtx

import (
	"context"

	"github.com/pkg/errors"

	"github.com/xdbsoft/gtx/api"
)

type opKind int

const (
	opCreate opKind = iota
	opUpdate
	opDelete
)

func (k opKind) String() string {
	switch k {
	case opCreate:
		return "create"
	case opUpdate:
		return "update"
	}
	return "delete"
}

type deferredOperation struct {
	kind   opKind
	target *api.Document
}

func (op deferredOperation) apply(ctx context.Context, s api.Session) error {
	switch op.kind {
	case opCreate:
		return s.Persist(ctx, op.target)
	case opUpdate:
		return s.Update(ctx, op.target)
	}
	return s.Delete(ctx, op.target)
}

//writeBuffer holds the writes of a transaction until flush
type writeBuffer struct {
	ops []deferredOperation
}

func (b *writeBuffer) enqueue(kind opKind, target *api.Document) {
	b.ops = append(b.ops, deferredOperation{kind: kind, target: target})
}

func (b *writeBuffer) len() int {
	return len(b.ops)
}

func (b *writeBuffer) clear() {
	b.ops = nil
}

//apply runs every operation once, in order, and empties the buffer.
//It stops on the first failure, leaving the previous operations applied.
func (b *writeBuffer) apply(ctx context.Context, s api.Session) (int, error) {
	ops := b.ops
	b.ops = nil

	for i, op := range ops {
		if err := op.apply(ctx, s); err != nil {
			return i, errors.Wrapf(err, "unable to %s %s '%s'", op.kind, op.target.Type, op.target.ID)
		}
	}
	return len(ops), nil
}
