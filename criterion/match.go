package criterion

import (
	"fmt"
	"strings"
)

//Fields gives access to the values a criterion is evaluated against
type Fields interface {
	Field(name string) (interface{}, bool)
}

//truth is a three-valued logic value, as in SQL
type truth int

const (
	unknown truth = iota
	isFalse
	isTrue
)

func truthOf(b bool) truth {
	if b {
		return isTrue
	}
	return isFalse
}

func (t truth) not() truth {
	switch t {
	case isTrue:
		return isFalse
	case isFalse:
		return isTrue
	}
	return unknown
}

// Evaluate tests a criterion in memory. It is used by stores that have no
// query language of their own. A nil criterion matches everything.
// Comparisons involving a missing or NULL field are unknown, and only a
// criterion evaluating to true matches, as in SQL.
func Evaluate(c Criterion, f Fields) (bool, error) {
	if c == nil {
		return true, nil
	}
	t, err := evaluate(c, f)
	return t == isTrue, err
}

func evaluate(c Criterion, f Fields) (truth, error) {
	switch x := c.(type) {
	case Comparison:
		v, found := f.Field(x.Field)
		if !found || v == nil || x.Value == nil {
			return unknown, nil
		}
		cmp, err := Compare(v, x.Value)
		if err != nil {
			// values of different kinds are never related
			return isFalse, nil
		}
		switch x.Op {
		case EQ:
			return truthOf(cmp == 0), nil
		case NE:
			return truthOf(cmp != 0), nil
		case LT:
			return truthOf(cmp < 0), nil
		case LE:
			return truthOf(cmp <= 0), nil
		case GT:
			return truthOf(cmp > 0), nil
		case GE:
			return truthOf(cmp >= 0), nil
		}
		return unknown, fmt.Errorf("unsupported operator %q", x.Op)
	case Membership:
		v, found := f.Field(x.Field)
		if !found || v == nil {
			return unknown, nil
		}
		in := false
		for _, candidate := range x.Values {
			if cmp, err := Compare(v, candidate); err == nil && cmp == 0 {
				in = true
				break
			}
		}
		return truthOf(in != x.Negated), nil
	case Match:
		v, found := f.Field(x.Field)
		if !found || v == nil {
			return unknown, nil
		}
		s := fmt.Sprint(v)
		switch x.Kind {
		case Prefix:
			return truthOf(strings.HasPrefix(s, x.Value)), nil
		case Suffix:
			return truthOf(strings.HasSuffix(s, x.Value)), nil
		}
		return truthOf(strings.Contains(s, x.Value)), nil
	case Null:
		v, found := f.Field(x.Field)
		isNull := !found || v == nil
		return truthOf(isNull != x.Negated), nil
	case Junction:
		// AND: false wins over unknown. OR: true wins over unknown.
		stop, res := isFalse, isTrue
		if x.Kind == OrKind {
			stop, res = isTrue, isFalse
		}
		for _, term := range x.Terms {
			t, err := evaluate(term, f)
			if err != nil {
				return unknown, err
			}
			if t == stop {
				return stop, nil
			}
			if t == unknown {
				res = unknown
			}
		}
		return res, nil
	case Negation:
		t, err := evaluate(x.Term, f)
		return t.not(), err
	case nil:
		return isTrue, nil
	}
	return unknown, fmt.Errorf("unsupported criterion type: %T", c)
}

// Compare orders two scalar values. Numbers of any Go numeric type compare
// numerically, strings and booleans compare with their own kind only.
func Compare(a, b interface{}) (int, error) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		switch {
		case fa < fb:
			return -1, nil
		case fa > fb:
			return 1, nil
		}
		return 0, nil
	}

	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		return strings.Compare(x, y), nil
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		switch {
		case x == y:
			return 0, nil
		case !x:
			return -1, nil
		}
		return 1, nil
	}
	return 0, fmt.Errorf("unsupported value type %T", a)
}

// IsNumeric reports whether v is a Go number.
func IsNumeric(v interface{}) bool {
	_, ok := toFloat(v)
	return ok
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
