package filter

import (
	"github.com/pkg/errors"

	"github.com/xdbsoft/gtx/criterion"
)

//CriterionOperation translates predicates into criterion trees
type CriterionOperation struct{}

func (CriterionOperation) Apply(p Predicate) (criterion.Criterion, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	switch p.Operator {
	case In:
		return criterion.In(p.Field, p.Values...), nil
	case NotIn:
		return criterion.NotIn(p.Field, p.Values...), nil
	case Prefix:
		return criterion.StartsWith(p.Field, p.Values[0].(string)), nil
	case Postfix:
		return criterion.EndsWith(p.Field, p.Values[0].(string)), nil
	case Infix:
		return criterion.Like(p.Field, p.Values[0].(string)), nil
	case IsNull:
		return criterion.IsNull(p.Field), nil
	case NotNull:
		return criterion.NotNull(p.Field), nil
	case LT:
		return criterion.Lt(p.Field, p.Values[0]), nil
	case LE:
		return criterion.Le(p.Field, p.Values[0]), nil
	case GT:
		return criterion.Gt(p.Field, p.Values[0]), nil
	case GE:
		return criterion.Ge(p.Field, p.Values[0]), nil
	}
	return nil, malformedPredicate("unknown operator '" + string(p.Operator) + "'")
}

//ApplyAll returns the conjunction of all predicates, nil when there is none
func (o CriterionOperation) ApplyAll(predicates []Predicate) (criterion.Criterion, error) {
	var terms []criterion.Criterion
	for _, p := range predicates {
		c, err := o.Apply(p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid predicate %s", p)
		}
		terms = append(terms, c)
	}
	return criterion.And(terms...), nil
}
