package evaluator

import (
	"context"

	"github.com/sandrolain/gojexp/pkg/types"
)

// evalPath threads a list of candidates through the steps of a JSON path,
// starting from the target variable or the current document.
//
// A step applied to Null yields Null. Once a [] or filter step has fanned
// out a vector the result is a multiple vector, even if later steps narrow
// it down to one element.
func (e *Evaluator) evalPath(ctx context.Context, node *types.ASTNode, c *Context) (types.Value, error) {
	name := CurrentName
	if node.HasTarget {
		name = node.Target
	}
	cur := []types.Value{c.GetVariable(name)}

	multi := false
	for i := range node.Steps {
		next, fanned, err := e.pathStep(ctx, &node.Steps[i], cur, c)
		if err != nil {
			return types.Null, err
		}
		cur = next
		multi = multi || fanned
	}

	if multi {
		return types.MultiVec(cur), nil
	}
	return cur[0], nil
}

func (e *Evaluator) pathStep(ctx context.Context, step *types.PathStep, cur []types.Value, c *Context) ([]types.Value, bool, error) {
	next := make([]types.Value, 0, len(cur))
	fanned := false
	for _, o := range cur {
		if o.IsNull() {
			next = append(next, types.Null)
			continue
		}

		switch step.Kind {
		case types.StepRoot:
			next = append(next, o)
			continue
		case types.StepProperty:
			m, err := o.AsMap()
			if err != nil {
				return nil, false, err
			}
			v, ok := m[step.Property]
			if !ok {
				v = types.Null
			}
			next = append(next, v)
			continue
		}

		items, err := o.AsVector()
		if err != nil {
			return nil, false, err
		}
		switch step.Kind {
		case types.StepIndex:
			idx := step.Index
			if idx < 0 {
				idx += len(items)
			}
			if idx >= 0 && idx < len(items) {
				next = append(next, items[idx])
			} else {
				next = append(next, types.Null)
			}
		case types.StepAll:
			next = append(next, items...)
			fanned = true
		case types.StepFilter:
			scope := c.Fork()
			for _, it := range items {
				scope.Set(CurrentName, it)
				r, err := e.evalBlock(ctx, step.Filter, scope)
				if err != nil {
					return nil, false, err
				}
				keep, err := r.AsBoolean()
				if err != nil {
					return nil, false, err
				}
				if keep {
					next = append(next, it)
				}
			}
			fanned = true
		}
	}
	return next, fanned, nil
}
