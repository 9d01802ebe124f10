package gtx

import (
	"fmt"
	"strings"

	"github.com/xdbsoft/gtx/api"
	"github.com/xdbsoft/gtx/criterion"
	"github.com/xdbsoft/gtx/filter"
)

func predicatesOfType(predicates []filter.Predicate, typ string) []filter.Predicate {
	return filter.OfType(predicates, typ)
}

//assembleQuery builds the storage query of a scope, the permission criterion
//being ANDed with the caller predicates
func assembleQuery(scope FilterScope, perm permission, dict api.Dictionary, strictSorting bool) (api.Query, error) {
	q := api.Query{Type: scope.Type}

	caller, err := filter.CriterionOperation{}.ApplyAll(predicatesOfType(scope.Predicates, scope.Type))
	if err != nil {
		return q, err
	}
	q.Criterion = criterion.And(perm.criterion, caller)

	if strictSorting {
		if invalid := scope.Sorting.Invalid(scope.Type, dict); len(invalid) > 0 {
			return q, validationError(fmt.Sprintf("fields not sortable on '%s': %s", scope.Type, strings.Join(invalid, ", ")))
		}
	}
	q.Sorting = scope.Sorting.ValidRules(scope.Type, dict)

	if scope.Pagination != nil {
		if err := scope.Pagination.Validate(); err != nil {
			return q, err
		}
		p := *scope.Pagination
		q.Pagination = &p
	}

	return q, nil
}
