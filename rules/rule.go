package rules

import (
	"github.com/xdbsoft/gtx/api"
	"github.com/xdbsoft/gtx/criterion"
)

//Rule is the configuration form of a check
type Rule struct {
	Name  string  `json:"name"`
	If    string  `json:"if"`
	Where []Where `json:"where"`
}

//Where restricts a field to a value. The value may reference the request
//with '{user.id}', '{user.name}', '{user.email}' or '{request.<attribute>}'.
type Where struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

//Check builds the check described by the rule: a Restriction when it has
//where clauses, a Condition otherwise
func (r Rule) Check() api.Check {
	if len(r.Where) > 0 {
		return Restriction{name: r.Name, If: r.If, Where: r.Where}
	}
	return Condition{name: r.Name, If: r.If}
}

//Condition is a check decided by evaluating an expression.
//An empty expression always allows.
type Condition struct {
	name string
	If   string
}

func NewCondition(name, condition string) Condition {
	return Condition{name: name, If: condition}
}

func (c Condition) Name() string {
	return c.name
}

//Restriction is a check restricting readable documents to those matching
//its where clauses. When a clause cannot be resolved for the request, the
//check falls back to its If expression, and denies when there is none.
type Restriction struct {
	name  string
	If    string
	Where []Where
}

func NewRestriction(name string, where ...Where) Restriction {
	return Restriction{name: name, Where: where}
}

func (r Restriction) Name() string {
	return r.name
}

func (r Restriction) Criterion(scope api.RequestScope) criterion.Criterion {
	var terms []criterion.Criterion
	for _, w := range r.Where {
		v, ok := resolve(w.Value, scope)
		if !ok {
			return nil
		}
		terms = append(terms, criterion.Eq(w.Field, v))
	}
	return criterion.And(terms...)
}
