package api

import (
	"fmt"
	"strings"
)

type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

func (o SortOrder) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

//SortRule orders the results on one field
type SortRule struct {
	Field string
	Order SortOrder
}

//Sorting is an ordered list of sort rules, the first one being the most significant
type Sorting []SortRule

type invalidSorting string

func (err invalidSorting) Error() string {
	return string(err)
}

func (err invalidSorting) IsValidation() bool {
	return true
}

//ParseSorting reads a comma separated list of fields, each optionally
//prefixed by '-' for descending or '+' for ascending order.
func ParseSorting(s string) (Sorting, error) {
	var sorting Sorting
	if len(strings.TrimSpace(s)) == 0 {
		return sorting, nil
	}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		order := Ascending
		switch {
		case strings.HasPrefix(item, "-"):
			order = Descending
			item = item[1:]
		case strings.HasPrefix(item, "+"):
			item = item[1:]
		}
		if len(item) == 0 {
			return nil, invalidSorting(fmt.Sprintf("empty sort field in '%s'", s))
		}
		sorting = append(sorting, SortRule{Field: item, Order: order})
	}
	return sorting, nil
}

//ValidRules returns the rules on sortable fields, in the requested order
func (s Sorting) ValidRules(typ string, dict Dictionary) Sorting {
	var valid Sorting
	for _, r := range s {
		if dict.IsSortable(typ, r.Field) {
			valid = append(valid, r)
		}
	}
	return valid
}

//Invalid returns the requested fields that are not sortable
func (s Sorting) Invalid(typ string, dict Dictionary) []string {
	var invalid []string
	for _, r := range s {
		if !dict.IsSortable(typ, r.Field) {
			invalid = append(invalid, r.Field)
		}
	}
	return invalid
}

func (s Sorting) String() string {
	items := make([]string, len(s))
	for i, r := range s {
		items[i] = r.Field + " " + r.Order.String()
	}
	return strings.Join(items, ", ")
}
