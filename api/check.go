package api

import (
	"context"

	"github.com/xdbsoft/gtx/criterion"
)

//Check is an authorization rule evaluated per principal
type Check interface {
	Name() string
}

//CriterionCheck is implemented by checks able to express themselves as a
//storage predicate. A nil criterion means the check cannot do it for the
//given scope and must be evaluated.
type CriterionCheck interface {
	Check
	Criterion(scope RequestScope) criterion.Criterion
}

//CheckEvaluator decides a check for a principal
type CheckEvaluator interface {
	Evaluate(ctx context.Context, check Check, scope RequestScope) (Verdict, error)
}

type verdictKind int

const (
	denyVerdict verdictKind = iota
	allowVerdict
	criterionVerdict
)

//Verdict is the outcome of a check: Allow, Deny or a criterion.
//The zero Verdict is Deny.
type Verdict struct {
	kind      verdictKind
	criterion criterion.Criterion
}

var (
	Allow = Verdict{kind: allowVerdict}
	Deny  = Verdict{kind: denyVerdict}
)

//CriterionVerdict authorizes exactly the records matching c. A nil c is Deny.
func CriterionVerdict(c criterion.Criterion) Verdict {
	if c == nil {
		return Deny
	}
	return Verdict{kind: criterionVerdict, criterion: c}
}

//VerdictOf converts a boolean decision
func VerdictOf(allowed bool) Verdict {
	if allowed {
		return Allow
	}
	return Deny
}

func (v Verdict) IsAllow() bool { return v.kind == allowVerdict }
func (v Verdict) IsDeny() bool  { return v.kind == denyVerdict }

func (v Verdict) Criterion() (criterion.Criterion, bool) {
	return v.criterion, v.kind == criterionVerdict
}

func (v Verdict) String() string {
	switch v.kind {
	case allowVerdict:
		return "ALLOW"
	case denyVerdict:
		return "DENY"
	}
	return v.criterion.String()
}
