package planner

import (
	"sort"

	"github.com/relcore/relcore/pkg/catalog"
	"github.com/relcore/relcore/pkg/plan"
	"github.com/relcore/relcore/pkg/query"
	"github.com/relcore/relcore/pkg/types"
)

// condRHSTable returns the table of a column-valued right side, or ""
// for a literal right side.
func condRHSTable(c query.Condition) string {
	if c.RHSCol == nil {
		return ""
	}
	return c.RHSCol.Table
}

// popConds extracts every predicate sargable on table or self-referential
// on table (spec §4.3.2 step 1: pop_conds). Order is preserved on both
// sides of the split.
func popConds(table string, pool []query.Condition) (taken, remaining []query.Condition) {
	for _, c := range pool {
		if c.Lhs.Table != table {
			remaining = append(remaining, c)
			continue
		}
		if c.IsLiteral() || condRHSTable(c) == table {
			taken = append(taken, c)
			continue
		}
		remaining = append(remaining, c)
	}
	return taken, remaining
}

// chooseIndexCols implements spec §4.3.2's index_cols(T_i, taken_conds):
// collect literal-compared columns (excluding NE — see DESIGN.md open
// question decision), prefer a single-column index on one of them, else
// a composite index whose full signature matches the collected set.
func chooseIndexCols(meta catalog.TableMeta, taken []query.Condition) []string {
	colSet := map[string]bool{}
	for _, c := range taken {
		if !c.IsLiteral() {
			continue
		}
		if c.Op == types.NE {
			continue
		}
		colSet[c.Lhs.Name] = true
	}
	if len(colSet) == 0 {
		return nil
	}
	names := make([]string, 0, len(colSet))
	for n := range colSet {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		if meta.IsIndex([]string{n}) {
			return []string{n}
		}
	}
	for _, ix := range meta.Indexes {
		if ix.SameColumns(names) {
			return append([]string{}, ix.Columns...)
		}
	}
	return nil
}

// swapCond returns the condition with its two sides exchanged and its
// operator symmetrically inverted (types.SwapOp), used by join building,
// push-down, and index-scan normalization alike (spec design note).
func swapCond(c query.Condition) query.Condition {
	if c.RHSCol == nil {
		// A column-vs-literal condition can't be swapped into a
		// literal-vs-column shape our Condition type can represent;
		// callers never invoke swapCond on such a condition.
		return c
	}
	return query.Condition{
		Lhs:    *c.RHSCol,
		Op:     types.SwapOp(c.Op),
		RHSCol: &c.Lhs,
	}
}

// makeOneRel builds the left-deep join tree from the remaining
// cross-table predicate pool (spec §4.3.2 steps 2-4).
func makeOneRel(tables []string, pool []query.Condition, scans map[string]plan.Node, cfg Config) (plan.Node, error) {
	if len(tables) == 1 {
		return scans[tables[0]], nil
	}

	algo, err := cfg.chooseAlgo()
	if err != nil {
		return nil, err
	}

	incorporated := map[string]bool{}
	var built plan.Node

	popScan := func(table string) plan.Node {
		n := scans[table]
		delete(scans, table)
		incorporated[table] = true
		return n
	}

	attachOneNew := func(cond query.Condition, lhsIn bool) {
		var newTable string
		condToUse := cond
		if lhsIn {
			newTable = condRHSTable(cond)
		} else {
			newTable = cond.Lhs.Table
			condToUse = swapCond(cond)
		}
		newScan := popScan(newTable)
		built = &plan.Join{Algo: algo, Left: built, Right: newScan, Conds: []query.Condition{condToUse}}
	}

	for _, p := range pool {
		if p.RHSCol == nil {
			continue // cross-table predicates are always column-vs-column
		}
		lhsT, rhsT := p.Lhs.Table, p.RHSCol.Table

		if built == nil {
			left := popScan(lhsT)
			right := popScan(rhsT)
			built = &plan.Join{Algo: algo, Left: left, Right: right, Conds: []query.Condition{p}}
			continue
		}

		lhsIn, rhsIn := incorporated[lhsT], incorporated[rhsT]
		switch {
		case lhsIn && rhsIn:
			if j, ok := built.(*plan.Join); ok && !pushConds(p, j) {
				j.Conds = append(j.Conds, p)
			}
		case lhsIn && !rhsIn:
			attachOneNew(p, true)
		case !lhsIn && rhsIn:
			attachOneNew(p, false)
		default:
			// Both operands new: cross-join lhsT in with empty conds,
			// then attach rhsT with P — equivalent to the spec's "join
			// them first with [P], then cross-join with the existing
			// tree" while preserving the left-deep, scan-right-child
			// invariant.
			lhsScan := popScan(lhsT)
			built = &plan.Join{Algo: algo, Left: built, Right: lhsScan, Conds: nil}
			attachOneNew(p, true)
		}
	}

	// Step 4: any scans not yet incorporated are appended via cross
	// joins with empty conds, in table order for determinism.
	for _, t := range tables {
		if scan, ok := scans[t]; ok {
			_ = scan
			right := popScan(t)
			if built == nil {
				built = right
			} else {
				built = &plan.Join{Algo: algo, Left: built, Right: right, Conds: nil}
			}
		}
	}

	return built, nil
}

// Ternary coverage codes for pushConds, mirroring the original
// push_conds's left_res/right_res bitmask
// (_examples/original_source/src/optimizer/planner.cpp:94-136):
// each bit records whether a condition's lhs or rhs table has been
// found in a subtree; a join only absorbs the condition once the
// combined left+right coverage sets both bits.
const (
	condNeither  = 0
	condLhs      = 1
	condRhs      = 2
	condAbsorbed = 3
)

// pushConds implements spec §4.3.3 for the left-deep trees this planner
// builds (every right child is a base Scan): absorb the predicate at the
// deepest join whose left subtree and right-hand scan together cover
// both of its tables, not at the first join whose right scan matches
// either table alone.
func pushConds(cond query.Condition, node *plan.Join) bool {
	return pushCondsRec(cond, node) == condAbsorbed
}

func pushCondsRec(cond query.Condition, node plan.Node) int {
	join, ok := node.(*plan.Join)
	if !ok {
		return scanCondSide(cond, node)
	}

	leftRes := pushCondsRec(cond, join.Left)
	if leftRes == condAbsorbed {
		return condAbsorbed
	}
	rightRes := scanCondSide(cond, join.Right)
	combined := leftRes | rightRes
	if combined != condLhs|condRhs {
		return combined
	}
	if rightRes == condLhs {
		join.Conds = append(join.Conds, swapCond(cond))
	} else {
		join.Conds = append(join.Conds, cond)
	}
	return condAbsorbed
}

// scanCondSide reports which of cond's two tables (if either) node's
// base scan carries; node must be a leaf when this is called, since the
// left-deep trees this planner builds only ever nest joins on the left.
func scanCondSide(cond query.Condition, n plan.Node) int {
	table := scanTable(n)
	if table == "" {
		return condNeither
	}
	switch table {
	case cond.Lhs.Table:
		return condLhs
	case condRHSTable(cond):
		return condRhs
	default:
		return condNeither
	}
}

func scanTable(n plan.Node) string {
	if s, ok := n.(*plan.Scan); ok {
		return s.Table
	}
	return ""
}
