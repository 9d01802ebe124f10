// Package filter translates caller predicates into the native predicate forms
// of the storage sessions: criterion trees and query strings.
package filter

import (
	"fmt"
	"strings"
)

type Operator string

const (
	In      Operator = "in"
	NotIn   Operator = "not"
	Prefix  Operator = "prefix"
	Postfix Operator = "postfix"
	Infix   Operator = "infix"
	IsNull  Operator = "isnull"
	NotNull Operator = "notnull"
	LT      Operator = "lt"
	LE      Operator = "le"
	GT      Operator = "gt"
	GE      Operator = "ge"
)

var operators = []Operator{In, NotIn, Prefix, Postfix, Infix, IsNull, NotNull, LT, LE, GT, GE}

//ParseOperator returns the operator with the given (case insensitive) name
func ParseOperator(s string) (Operator, error) {
	for _, op := range operators {
		if strings.EqualFold(s, string(op)) {
			return op, nil
		}
	}
	return "", malformedPredicate(fmt.Sprintf("unknown operator '%s'", s))
}

//IsParameterized is true when the operator takes values
func (op Operator) IsParameterized() bool {
	return op != IsNull && op != NotNull
}

func (op Operator) isPattern() bool {
	return op == Prefix || op == Postfix || op == Infix
}

func (op Operator) isComparison() bool {
	return op == LT || op == LE || op == GT || op == GE
}

//Predicate is a caller supplied filter on one field of a type
type Predicate struct {
	Type     string
	Field    string
	Operator Operator
	Values   []interface{}
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s.%s[%s]%v", p.Type, p.Field, p.Operator, p.Values)
}

type malformedPredicate string

func (err malformedPredicate) Error() string {
	return string(err)
}

func (err malformedPredicate) IsValidation() bool {
	return true
}

//Validate checks that the values of p suit its operator
func (p Predicate) Validate() error {
	if len(p.Field) == 0 {
		return malformedPredicate("predicate without field")
	}

	switch {
	case p.Operator == In || p.Operator == NotIn:
		if len(p.Values) == 0 {
			return malformedPredicate(fmt.Sprintf("operator '%s' on '%s' requires at least one value", p.Operator, p.Field))
		}
	case p.Operator.isPattern():
		if len(p.Values) != 1 {
			return malformedPredicate(fmt.Sprintf("operator '%s' on '%s' requires exactly one value", p.Operator, p.Field))
		}
		if _, ok := p.Values[0].(string); !ok {
			return malformedPredicate(fmt.Sprintf("operator '%s' on '%s' requires a string value", p.Operator, p.Field))
		}
	case p.Operator.isComparison():
		if len(p.Values) != 1 || p.Values[0] == nil {
			return malformedPredicate(fmt.Sprintf("operator '%s' on '%s' requires exactly one value", p.Operator, p.Field))
		}
	case p.Operator == IsNull || p.Operator == NotNull:
		if len(p.Values) != 0 {
			return malformedPredicate(fmt.Sprintf("operator '%s' on '%s' takes no value", p.Operator, p.Field))
		}
	default:
		return malformedPredicate(fmt.Sprintf("unknown operator '%s'", p.Operator))
	}
	return nil
}

//OfType returns the predicates applying to typ, untyped predicates included
func OfType(predicates []Predicate, typ string) []Predicate {
	var res []Predicate
	for _, p := range predicates {
		if len(p.Type) == 0 || p.Type == typ {
			res = append(res, p)
		}
	}
	return res
}
