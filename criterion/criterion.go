// Package criterion holds the native, composable predicate form handed to
// storage sessions. Sessions compile it to their own query language.
package criterion

import (
	"fmt"
	"strings"
)

//Criterion is a boolean predicate over the fields of a document.
//Only types of this package implement it.
type Criterion interface {
	fmt.Stringer
	criterion()
}

//IDField is the pseudo field addressing the document identifier
const IDField = "id"

type Op string

const (
	EQ Op = "="
	NE Op = "<>"
	LT Op = "<"
	LE Op = "<="
	GT Op = ">"
	GE Op = ">="
)

//Comparison compares a field with a single value
type Comparison struct {
	Field string
	Op    Op
	Value interface{}
}

//Membership tests whether a field value is one of Values
type Membership struct {
	Field   string
	Values  []interface{}
	Negated bool
}

type MatchKind int

const (
	Prefix MatchKind = iota
	Suffix
	Contains
)

//Match is a textual pattern test on a field
type Match struct {
	Field string
	Kind  MatchKind
	Value string
}

//Null tests the absence of a field value
type Null struct {
	Field   string
	Negated bool
}

type JunctionKind int

const (
	AndKind JunctionKind = iota
	OrKind
)

//Junction combines several criteria with AND or OR
type Junction struct {
	Kind  JunctionKind
	Terms []Criterion
}

//Negation inverts a criterion
type Negation struct {
	Term Criterion
}

func (Comparison) criterion() {}
func (Membership) criterion() {}
func (Match) criterion()      {}
func (Null) criterion()       {}
func (Junction) criterion()   {}
func (Negation) criterion()   {}

func Eq(field string, v interface{}) Criterion { return Comparison{field, EQ, v} }
func Ne(field string, v interface{}) Criterion { return Comparison{field, NE, v} }
func Lt(field string, v interface{}) Criterion { return Comparison{field, LT, v} }
func Le(field string, v interface{}) Criterion { return Comparison{field, LE, v} }
func Gt(field string, v interface{}) Criterion { return Comparison{field, GT, v} }
func Ge(field string, v interface{}) Criterion { return Comparison{field, GE, v} }

func In(field string, values ...interface{}) Criterion {
	return Membership{Field: field, Values: values}
}

func NotIn(field string, values ...interface{}) Criterion {
	return Membership{Field: field, Values: values, Negated: true}
}

func StartsWith(field, v string) Criterion { return Match{field, Prefix, v} }
func EndsWith(field, v string) Criterion   { return Match{field, Suffix, v} }
func Like(field, v string) Criterion       { return Match{field, Contains, v} }

func IsNull(field string) Criterion  { return Null{Field: field} }
func NotNull(field string) Criterion { return Null{Field: field, Negated: true} }

func Not(c Criterion) Criterion {
	return Negation{Term: c}
}

// And combines the given criteria, skipping nil terms. Nested conjunctions are
// flattened. It returns nil when every term is nil.
func And(terms ...Criterion) Criterion {
	return junction(AndKind, terms)
}

// Or is the disjunctive counterpart of And.
func Or(terms ...Criterion) Criterion {
	return junction(OrKind, terms)
}

func junction(kind JunctionKind, terms []Criterion) Criterion {
	var flat []Criterion
	for _, t := range terms {
		if t == nil {
			continue
		}
		if j, ok := t.(Junction); ok && j.Kind == kind {
			flat = append(flat, j.Terms...)
			continue
		}
		flat = append(flat, t)
	}
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return Junction{Kind: kind, Terms: flat}
}

func quote(v interface{}) string {
	switch x := v.(type) {
	case string:
		return "'" + strings.Replace(x, "'", "''", -1) + "'"
	case nil:
		return "NULL"
	}
	return fmt.Sprint(v)
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.Field, c.Op, quote(c.Value))
}

func (c Membership) String() string {
	items := make([]string, len(c.Values))
	for i, v := range c.Values {
		items[i] = quote(v)
	}
	op := "IN"
	if c.Negated {
		op = "NOT IN"
	}
	return fmt.Sprintf("%s %s (%s)", c.Field, op, strings.Join(items, ", "))
}

func (c Match) String() string {
	switch c.Kind {
	case Prefix:
		return fmt.Sprintf("%s LIKE %s", c.Field, quote(c.Value+"%"))
	case Suffix:
		return fmt.Sprintf("%s LIKE %s", c.Field, quote("%"+c.Value))
	}
	return fmt.Sprintf("%s LIKE %s", c.Field, quote("%"+c.Value+"%"))
}

func (c Null) String() string {
	if c.Negated {
		return c.Field + " IS NOT NULL"
	}
	return c.Field + " IS NULL"
}

func (c Junction) String() string {
	sep := " AND "
	if c.Kind == OrKind {
		sep = " OR "
	}
	parts := make([]string, len(c.Terms))
	for i, t := range c.Terms {
		if j, ok := t.(Junction); ok && j.Kind != c.Kind {
			parts[i] = "(" + t.String() + ")"
		} else {
			parts[i] = t.String()
		}
	}
	return strings.Join(parts, sep)
}

func (c Negation) String() string {
	return "NOT (" + c.Term.String() + ")"
}
