package gtx

import (
	"fmt"
	"strings"

	"github.com/xdbsoft/gtx/api"
	"github.com/xdbsoft/gtx/filter"
)

//Mode tells how the checks of a scope are combined
type Mode int

const (
	//ModeAny authorizes a record as soon as one check authorizes it
	ModeAny Mode = iota
	//ModeAll authorizes a record only when every check authorizes it
	ModeAll
)

func (m Mode) String() string {
	if m == ModeAll {
		return "all"
	}
	return "any"
}

//ParseMode reads a mode from its configuration form. Empty means ModeAny.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return ModeAny, nil
	case "all":
		return ModeAll, nil
	}
	return ModeAny, validationError(fmt.Sprintf("unknown mode '%s'", s))
}

//FilterScope describes one permission scoped read
type FilterScope struct {
	Type       string
	Checks     []api.Check
	Mode       Mode
	Predicates []filter.Predicate
	Sorting    api.Sorting
	Pagination *api.Pagination
	Request    api.RequestScope
}
