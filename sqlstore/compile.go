package sqlstore

import (
	"fmt"
	"strings"

	"github.com/xdbsoft/gtx/api"
	"github.com/xdbsoft/gtx/criterion"
)

//compiler turns criteria into a WHERE fragment. Values are always bound as
//parameters, appended to args.
type compiler struct {
	d    dialect
	args []interface{}
}

func (c *compiler) param(v interface{}) string {
	c.args = append(c.args, v)
	return c.d.placeholder(len(c.args))
}

func (c *compiler) compile(crit criterion.Criterion) (string, error) {
	switch x := crit.(type) {
	case criterion.Comparison:
		return fmt.Sprintf("%s %s %s", c.d.field(x.Field, []interface{}{x.Value}), x.Op, c.param(x.Value)), nil

	case criterion.Membership:
		if len(x.Values) == 0 {
			if x.Negated {
				return "1 = 1", nil
			}
			return "1 = 0", nil
		}
		refs := make([]string, len(x.Values))
		for i, v := range x.Values {
			refs[i] = c.param(v)
		}
		op := "IN"
		if x.Negated {
			op = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", c.d.field(x.Field, x.Values), op, strings.Join(refs, ", ")), nil

	case criterion.Match:
		pattern := escapeLike(x.Value)
		switch x.Kind {
		case criterion.Prefix:
			pattern = pattern + "%"
		case criterion.Suffix:
			pattern = "%" + pattern
		default:
			pattern = "%" + pattern + "%"
		}
		f := c.d.field(x.Field, nil)
		return fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, f, c.param(pattern)), nil

	case criterion.Null:
		f := c.d.field(x.Field, nil)
		if x.Negated {
			return f + " IS NOT NULL", nil
		}
		return f + " IS NULL", nil

	case criterion.Junction:
		if len(x.Terms) == 0 {
			if x.Kind == criterion.AndKind {
				return "1 = 1", nil
			}
			return "1 = 0", nil
		}
		sep := " AND "
		if x.Kind == criterion.OrKind {
			sep = " OR "
		}
		parts := make([]string, len(x.Terms))
		for i, t := range x.Terms {
			s, err := c.compile(t)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "(" + strings.Join(parts, sep) + ")", nil

	case criterion.Negation:
		s, err := c.compile(x.Term)
		if err != nil {
			return "", err
		}
		return "NOT (" + s + ")", nil
	}
	return "", fmt.Errorf("unsupported criterion type: %T", crit)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (c *compiler) orderBy(sorting api.Sorting) string {
	if len(sorting) == 0 {
		return ""
	}
	items := make([]string, len(sorting))
	for i, r := range sorting {
		items[i] = c.d.sortField(r.Field) + " " + strings.ToUpper(r.Order.String())
	}
	return " ORDER BY " + strings.Join(items, ", ")
}

//selectQuery builds the SELECT of a query on the documents table
func selectQuery(d dialect, q api.Query) (string, []interface{}, error) {
	c := &compiler{d: d}

	sql := "SELECT id, content, created, updated FROM t_document WHERE collection = " + c.param(q.Type)
	if q.Criterion != nil {
		where, err := c.compile(q.Criterion)
		if err != nil {
			return "", nil, err
		}
		sql += " AND " + where
	}

	sql += c.orderBy(q.Sorting)

	if p := q.Pagination; p != nil {
		sql += " LIMIT " + c.param(p.Limit) + " OFFSET " + c.param(p.Offset)
	}
	return sql, c.args, nil
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdent(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

//bindNamed replaces the ':name' parameters of a clause by placeholders of
//the dialect, one per value. '::' casts and quoted literals are left as is.
func (c *compiler) bindNamed(clause string, params map[string][]interface{}) (string, error) {
	var b strings.Builder
	inQuote := false

	for i := 0; i < len(clause); i++ {
		ch := clause[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			b.WriteByte(ch)
		case inQuote || ch != ':':
			b.WriteByte(ch)
		case i+1 < len(clause) && clause[i+1] == ':':
			b.WriteString("::")
			i++
		case i+1 < len(clause) && isIdentStart(clause[i+1]):
			j := i + 1
			for j < len(clause) && isIdent(clause[j]) {
				j++
			}
			name := clause[i+1 : j]
			values, ok := params[name]
			if !ok || len(values) == 0 {
				return "", fmt.Errorf("no value bound to parameter '%s'", name)
			}
			refs := make([]string, len(values))
			for k, v := range values {
				refs[k] = c.param(v)
			}
			b.WriteString(strings.Join(refs, ", "))
			i = j - 1
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), nil
}
