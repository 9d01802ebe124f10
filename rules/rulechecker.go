package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/xdbsoft/gript"

	"github.com/xdbsoft/gtx/api"
)

//Evaluator decides Condition and Restriction checks
type Evaluator struct{}

func isVariable(s string) (bool, string) {

	if len(s) >= 3 {
		if s[0] == '{' && s[len(s)-1] == '}' {
			return true, s[1 : len(s)-1]
		}
	}
	return false, ""
}

//resolve replaces a '{scope.name}' reference by its value in the request.
//Unknown or empty references do not resolve.
func resolve(value string, scope api.RequestScope) (interface{}, bool) {
	ok, v := isVariable(value)
	if !ok {
		return value, true
	}

	splittedVar := strings.SplitN(v, ".", 2)
	if len(splittedVar) != 2 {
		return nil, false
	}

	var res interface{}
	switch splittedVar[0] {
	case "user":
		res = scope.User.Variables()[splittedVar[1]]
	case "request":
		res = scope.Attributes[splittedVar[1]]
	}

	if res == nil || res == "" {
		return nil, false
	}
	return res, true
}

func variables(scope api.RequestScope) map[string]interface{} {
	request := scope.Attributes
	if request == nil {
		request = make(map[string]interface{})
	}
	return map[string]interface{}{
		"user":    scope.User.Variables(),
		"request": request,
	}
}

func checkCondition(condition string, variables map[string]interface{}) (bool, error) {
	if len(condition) == 0 {
		return true, nil
	}
	r, err := gript.Eval(condition, variables)
	if err != nil {
		return false, errors.Wrapf(err, "invalid condition '%s'", condition)
	}
	result, ok := r.(bool)
	if !ok {
		return false, errors.New("Invalid condition: result is not boolean")
	}
	return result, nil
}

func (e Evaluator) Evaluate(ctx context.Context, check api.Check, scope api.RequestScope) (api.Verdict, error) {

	switch c := check.(type) {
	case Condition:
		ok, err := checkCondition(c.If, variables(scope))
		if err != nil {
			return api.Deny, errors.Wrapf(err, "check '%s'", c.Name())
		}
		return api.VerdictOf(ok), nil

	case Restriction:
		if crit := c.Criterion(scope); crit != nil {
			return api.CriterionVerdict(crit), nil
		}
		if len(c.If) == 0 {
			return api.Deny, nil
		}
		ok, err := checkCondition(c.If, variables(scope))
		if err != nil {
			return api.Deny, errors.Wrapf(err, "check '%s'", c.Name())
		}
		return api.VerdictOf(ok), nil
	}

	return api.Deny, fmt.Errorf("unsupported check type %T", check)
}
