package gtx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/xdbsoft/gtx/api"
	"github.com/xdbsoft/gtx/criterion"
)

var (
	activeOnly = criterion.Eq("status", "active")
	usOnly     = criterion.Eq("region", "US")
	mineOnly   = criterion.Eq("owner", "u1")
)

func TestBuildPermission(t *testing.T) {
	evaluator := verdicts{
		"allow":  api.Allow,
		"deny":   api.Deny,
		"active": api.CriterionVerdict(activeOnly),
		"us":     api.CriterionVerdict(usOnly),
		"zero":   {},
	}

	checks := func(names ...string) []api.Check {
		var res []api.Check
		for _, n := range names {
			res = append(res, mockedCheck(n))
		}
		return res
	}

	tests := []struct {
		name     string
		checks   []api.Check
		mode     Mode
		expected permission
	}{
		{"no check any", nil, ModeAny, permission{state: unfiltered}},
		{"no check all", nil, ModeAll, permission{state: unfiltered}},
		{"any allow", checks("deny", "allow", "active"), ModeAny, permission{state: unconditional}},
		{"any criteria", checks("active", "deny", "us"), ModeAny, permission{state: filtered, criterion: criterion.Or(activeOnly, usOnly)}},
		{"any single criterion", checks("deny", "us"), ModeAny, permission{state: filtered, criterion: usOnly}},
		{"any all deny", checks("deny", "deny"), ModeAny, permission{state: unsatisfiable}},
		{"all allow", checks("allow", "allow"), ModeAll, permission{state: unfiltered}},
		{"all criteria", checks("active", "allow", "us"), ModeAll, permission{state: filtered, criterion: criterion.And(activeOnly, usOnly)}},
		{"all deny", checks("active", "deny", "us"), ModeAll, permission{state: unsatisfiable}},
		{"any zero verdict", checks("zero"), ModeAny, permission{state: unsatisfiable}},
		{"all zero verdict", checks("allow", "zero"), ModeAll, permission{state: unsatisfiable}},
		{"criterion check", []api.Check{mockedCriterionCheck{"mine", mineOnly}, mockedCheck("active")}, ModeAll,
			permission{state: filtered, criterion: criterion.And(mineOnly, activeOnly)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := buildPermission(context.Background(), evaluator, tt.checks, tt.mode, api.RequestScope{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p)
		})
	}
}

func TestBuildPermission_ShortCircuit(t *testing.T) {
	ctx := context.Background()
	scope := api.RequestScope{User: api.User{ID: "u1"}}

	t.Run("any stops on allow", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		e := NewMockcheckEvaluator(ctrl)
		gomock.InOrder(
			e.EXPECT().Evaluate(gomock.Any(), mockedCheck("first"), scope).Return(api.Deny, nil),
			e.EXPECT().Evaluate(gomock.Any(), mockedCheck("second"), scope).Return(api.Allow, nil),
		)

		p, err := buildPermission(ctx, e, []api.Check{mockedCheck("first"), mockedCheck("second"), mockedCheck("third")}, ModeAny, scope)
		require.NoError(t, err)
		assert.Equal(t, unconditional, p.state)
	})

	t.Run("all stops on deny", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		e := NewMockcheckEvaluator(ctrl)
		e.EXPECT().Evaluate(gomock.Any(), mockedCheck("first"), scope).Return(api.Deny, nil)

		p, err := buildPermission(ctx, e, []api.Check{mockedCheck("first"), mockedCheck("second")}, ModeAll, scope)
		require.NoError(t, err)
		assert.Equal(t, unsatisfiable, p.state)
	})

	t.Run("criterion check skips evaluator", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		e := NewMockcheckEvaluator(ctrl)
		e.EXPECT().Evaluate(gomock.Any(), mockedCriterionCheck{name: "fallback"}, scope).Return(api.CriterionVerdict(usOnly), nil)

		p, err := buildPermission(ctx, e, []api.Check{
			mockedCriterionCheck{name: "mine", crit: mineOnly},
			mockedCriterionCheck{name: "fallback"},
		}, ModeAny, scope)
		require.NoError(t, err)
		assert.Equal(t, permission{state: filtered, criterion: criterion.Or(mineOnly, usOnly)}, p)
	})

	t.Run("evaluator error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		e := NewMockcheckEvaluator(ctrl)
		e.EXPECT().Evaluate(gomock.Any(), gomock.Any(), gomock.Any()).Return(api.Deny, errors.New("boom"))

		_, err := buildPermission(ctx, e, []api.Check{mockedCheck("broken"), mockedCheck("other")}, ModeAny, scope)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken")
		assert.Contains(t, err.Error(), "boom")
	})
}

func permutations(checks []api.Check) [][]api.Check {
	if len(checks) <= 1 {
		return [][]api.Check{checks}
	}
	var res [][]api.Check
	for i := range checks {
		rest := make([]api.Check, 0, len(checks)-1)
		rest = append(rest, checks[:i]...)
		rest = append(rest, checks[i+1:]...)
		for _, p := range permutations(rest) {
			res = append(res, append([]api.Check{checks[i]}, p...))
		}
	}
	return res
}

func termsOf(c criterion.Criterion) []string {
	if c == nil {
		return nil
	}
	j, ok := c.(criterion.Junction)
	if !ok {
		return []string{c.String()}
	}
	var res []string
	for _, t := range j.Terms {
		res = append(res, t.String())
	}
	return res
}

func TestBuildPermission_OrderIndependence(t *testing.T) {
	evaluator := verdicts{
		"allow":  api.Allow,
		"deny":   api.Deny,
		"active": api.CriterionVerdict(activeOnly),
		"us":     api.CriterionVerdict(usOnly),
		"mine":   api.CriterionVerdict(mineOnly),
	}

	sets := [][]string{
		{"active", "us", "mine", "deny"},
		{"active", "us", "allow", "deny"},
		{"active", "us", "mine", "allow"},
		{"deny", "deny", "us"},
	}

	for _, set := range sets {
		var checks []api.Check
		for _, n := range set {
			checks = append(checks, mockedCheck(n))
		}

		for _, mode := range []Mode{ModeAny, ModeAll} {
			ref, err := buildPermission(context.Background(), evaluator, checks, mode, api.RequestScope{})
			require.NoError(t, err)

			for _, p := range permutations(checks) {
				got, err := buildPermission(context.Background(), evaluator, p, mode, api.RequestScope{})
				require.NoError(t, err)
				assert.Equal(t, ref.state, got.state, "%v %s", set, mode)
				assert.ElementsMatch(t, termsOf(ref.criterion), termsOf(got.criterion), "%v %s", set, mode)
			}
		}
	}
}
