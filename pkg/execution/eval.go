package execution

import (
	"github.com/relcore/relcore/pkg/query"
	"github.com/relcore/relcore/pkg/relerr"
	"github.com/relcore/relcore/pkg/types"
)

func findCol(schema []Column, table, name string) (Column, bool) {
	for _, c := range schema {
		if c.Table == table && c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func readCol(row []byte, c Column) types.Value {
	return types.ReadValue(row, c.Offset, c.Length, types.Kind(c.Kind))
}

// EvalCond implements spec §4.5.3's eval_cond: type-checks and dispatches
// a single condition against a row under the given schema.
func EvalCond(c query.Condition, schema []Column, row []byte) (bool, error) {
	lhsCol, ok := findCol(schema, c.Lhs.Table, c.Lhs.Name)
	if !ok {
		return false, relerr.New(relerr.Internal, "column %s.%s not visible in this schema", c.Lhs.Table, c.Lhs.Name)
	}
	lhsVal := readCol(row, lhsCol)

	var rhsVal types.Value
	if c.RHSVal != nil {
		rhsVal = *c.RHSVal
	} else {
		rhsCol, ok := findCol(schema, c.RHSCol.Table, c.RHSCol.Name)
		if !ok {
			return false, relerr.New(relerr.Internal, "column %s.%s not visible in this schema", c.RHSCol.Table, c.RHSCol.Name)
		}
		rhsVal = readCol(row, rhsCol)
	}

	ok2, err := types.Eval(lhsVal, c.Op, rhsVal)
	if err != nil {
		return false, relerr.Wrap(relerr.IncompatibleType, err, "evaluating %s.%s %s", c.Lhs.Table, c.Lhs.Name, c.Op)
	}
	return ok2, nil
}

// EvalAll implements eval_all: short-circuits on the first false
// condition (spec §4.5.3).
func EvalAll(conds []query.Condition, schema []Column, row []byte) (bool, error) {
	for _, c := range conds {
		ok, err := EvalCond(c, schema, row)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
