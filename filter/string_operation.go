package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

//Syntax renders field references of a query string. The values the field is
//compared with are given so that implementations can pick a suitable cast.
type Syntax interface {
	Field(name string, values []interface{}) string
}

type bareFields struct{}

func (bareFields) Field(name string, values []interface{}) string {
	return name
}

//StringOperation translates predicates into a filter clause with named
//parameters (':name'). Values are returned separately, ready to be bound.
type StringOperation struct {
	Syntax Syntax
}

func (o StringOperation) syntax() Syntax {
	if o.Syntax == nil {
		return bareFields{}
	}
	return o.Syntax
}

//Apply renders one predicate using param as parameter name
func (o StringOperation) Apply(p Predicate, param string) (string, []interface{}, error) {
	if err := p.Validate(); err != nil {
		return "", nil, err
	}

	field := o.syntax().Field(p.Field, p.Values)
	ref := ":" + param

	switch p.Operator {
	case In:
		return fmt.Sprintf("%s IN (%s)", field, ref), p.Values, nil
	case NotIn:
		return fmt.Sprintf("%s NOT IN (%s)", field, ref), p.Values, nil
	case Prefix:
		return fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, field, ref), []interface{}{EscapeLike(p.Values[0].(string)) + "%"}, nil
	case Postfix:
		return fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, field, ref), []interface{}{"%" + EscapeLike(p.Values[0].(string))}, nil
	case Infix:
		return fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, field, ref), []interface{}{"%" + EscapeLike(p.Values[0].(string)) + "%"}, nil
	case IsNull:
		return field + " IS NULL", nil, nil
	case NotNull:
		return field + " IS NOT NULL", nil, nil
	case LT:
		return fmt.Sprintf("%s < %s", field, ref), p.Values, nil
	case LE:
		return fmt.Sprintf("%s <= %s", field, ref), p.Values, nil
	case GT:
		return fmt.Sprintf("%s > %s", field, ref), p.Values, nil
	case GE:
		return fmt.Sprintf("%s >= %s", field, ref), p.Values, nil
	}
	return "", nil, malformedPredicate("unknown operator '" + string(p.Operator) + "'")
}

//ApplyAll joins all predicates with AND. Parameters are named after their
//field, suffixed when the name is already taken.
func (o StringOperation) ApplyAll(predicates []Predicate) (string, map[string][]interface{}, error) {
	var clauses []string
	params := make(map[string][]interface{})
	issued := make(map[string]bool)

	for _, p := range predicates {
		base := paramName(p.Field)
		name := base
		for n := 2; issued[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		issued[name] = true

		clause, values, err := o.Apply(p, name)
		if err != nil {
			return "", nil, errors.Wrapf(err, "invalid predicate %s", p)
		}
		clauses = append(clauses, clause)
		if p.Operator.IsParameterized() {
			params[name] = values
		}
	}

	return strings.Join(clauses, " AND "), params, nil
}

func paramName(field string) string {
	b := strings.Builder{}
	for _, r := range field {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "p"
	}
	return b.String()
}

//EscapeLike protects the LIKE wildcards of s, '\' being the escape character
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
