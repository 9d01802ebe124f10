package sqlstore

import (
	"fmt"
	"strings"

	"github.com/xdbsoft/gtx/criterion"
)

//dialect renders the parts of a query that differ between databases.
//Documents are stored in a single table, properties in a json content column.
type dialect interface {
	name() string
	placeholder(n int) string
	//field renders a property for comparison with values
	field(name string, values []interface{}) string
	//sortField renders a property for ORDER BY
	sortField(name string) string
	schema() string
}

func dialectOf(driver string) (dialect, error) {
	switch driver {
	case "postgres":
		return postgres{}, nil
	case "sqlite3":
		return sqlite{}, nil
	}
	return nil, fmt.Errorf("unsupported driver '%s'", driver)
}

func quoteLiteral(s string) string {
	return strings.Replace(s, "'", "''", -1)
}

type valueKind int

const (
	textKind valueKind = iota
	numericKind
	booleanKind
)

func kindOf(values []interface{}) valueKind {
	numeric, boolean := 0, 0
	for _, v := range values {
		switch {
		case v == nil:
			continue
		case criterion.IsNumeric(v):
			numeric++
		default:
			if _, ok := v.(bool); ok {
				boolean++
			} else {
				return textKind
			}
		}
	}
	switch {
	case numeric > 0 && boolean == 0:
		return numericKind
	case boolean > 0 && numeric == 0:
		return booleanKind
	}
	return textKind
}

type postgres struct{}

func (postgres) name() string {
	return "postgres"
}

func (postgres) placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func (postgres) field(name string, values []interface{}) string {
	if name == criterion.IDField {
		return "id"
	}
	f := "content->>'" + quoteLiteral(name) + "'"
	switch kindOf(values) {
	case numericKind:
		return "(" + f + ")::numeric"
	case booleanKind:
		return "(" + f + ")::boolean"
	}
	return f
}

//sortField keeps the jsonb value so that numbers sort numerically
func (postgres) sortField(name string) string {
	if name == criterion.IDField {
		return "id"
	}
	return "content->'" + quoteLiteral(name) + "'"
}

func (postgres) schema() string {
	return `CREATE TABLE IF NOT EXISTS t_document (
			collection text NOT NULL,
			id         character varying(126) NOT NULL,
			content    jsonb,
			created    timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated    timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT t_document_pkey PRIMARY KEY (collection, id)
		)`
}

type sqlite struct{}

func (sqlite) name() string {
	return "sqlite3"
}

func (sqlite) placeholder(n int) string {
	return "?"
}

func (d sqlite) field(name string, values []interface{}) string {
	return d.sortField(name)
}

func (sqlite) sortField(name string) string {
	if name == criterion.IDField {
		return "id"
	}
	return `json_extract(content, '$."` + quoteLiteral(name) + `"')`
}

func (sqlite) schema() string {
	return `CREATE TABLE IF NOT EXISTS t_document (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			content    TEXT,
			created    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (collection, id)
		)`
}
