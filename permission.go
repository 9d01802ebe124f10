package gtx

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/xdbsoft/gtx/api"
	"github.com/xdbsoft/gtx/criterion"
)

type permissionState int

const (
	//no check restricts the read
	unfiltered permissionState = iota
	//an ANY check allowed the read, nothing else matters
	unconditional
	filtered
	unsatisfiable
)

//permission is the result of folding the checks of a scope
type permission struct {
	state     permissionState
	criterion criterion.Criterion
}

func (p permission) String() string {
	switch p.state {
	case unfiltered:
		return "unfiltered"
	case unconditional:
		return "unconditional"
	case unsatisfiable:
		return "unsatisfiable"
	}
	return fmt.Sprintf("filtered(%s)", p.criterion)
}

//combinator merges the criterion accumulated so far with a new one
type combinator func(acc, c criterion.Criterion) criterion.Criterion

func anyCombinator(acc, c criterion.Criterion) criterion.Criterion {
	return criterion.Or(acc, c)
}

func allCombinator(acc, c criterion.Criterion) criterion.Criterion {
	return criterion.And(acc, c)
}

func (m Mode) combinator() combinator {
	if m == ModeAll {
		return allCombinator
	}
	return anyCombinator
}

func verdictOf(ctx context.Context, evaluator api.CheckEvaluator, check api.Check, scope api.RequestScope) (api.Verdict, error) {
	if cc, ok := check.(api.CriterionCheck); ok {
		if c := cc.Criterion(scope); c != nil {
			return api.CriterionVerdict(c), nil
		}
	}
	return evaluator.Evaluate(ctx, check, scope)
}

//buildPermission folds the checks in order. ALLOW stops an ANY fold and DENY
//stops an ALL fold. An ANY fold where every check denied is unsatisfiable.
func buildPermission(ctx context.Context, evaluator api.CheckEvaluator, checks []api.Check, mode Mode, scope api.RequestScope) (permission, error) {
	combine := mode.combinator()
	acc := permission{state: unfiltered}

	for _, check := range checks {
		v, err := verdictOf(ctx, evaluator, check, scope)
		if err != nil {
			return permission{}, errors.Wrapf(err, "unable to evaluate check '%s'", check.Name())
		}

		if v.IsAllow() {
			if mode == ModeAny {
				return permission{state: unconditional}, nil
			}
			continue
		}

		if v.IsDeny() {
			if mode == ModeAll {
				return permission{state: unsatisfiable}, nil
			}
			continue
		}

		c, _ := v.Criterion()
		acc = permission{state: filtered, criterion: combine(acc.criterion, c)}
	}

	if mode == ModeAny && len(checks) > 0 && acc.state == unfiltered {
		return permission{state: unsatisfiable}, nil
	}
	return acc, nil
}
