package planner

import (
	"github.com/relcore/relcore/pkg/plan"
	"github.com/relcore/relcore/pkg/query"
)

// pushdown implements spec §4.3.4: at each SeqScan, wrap its predicates
// in an explicit Filter and clear the scan (IndexScan keeps its
// predicates — it must re-evaluate all of them itself, spec §4.5.2); at
// each Join, recurse then partition any residual single-table
// predicate into a Filter over the subtree that owns it.
func pushdown(node plan.Node) plan.Node {
	switch n := node.(type) {
	case *plan.Scan:
		if n.Algo == plan.SeqScanAlgo && len(n.Conds) > 0 {
			conds := n.Conds
			n.Conds = nil
			return &plan.Filter{Child: n, Conds: conds}
		}
		return n

	case *plan.Filter:
		n.Child = pushdown(n.Child)
		return n

	case *plan.Join:
		n.Left = pushdown(n.Left)
		n.Right = pushdown(n.Right)

		leftTables := subtreeTables(n.Left)
		rightTables := subtreeTables(n.Right)

		var kept, leftResidual, rightResidual []query.Condition
		for _, c := range n.Conds {
			tables := condTables(c)
			switch {
			case len(tables) <= 1:
				if len(tables) == 1 && leftTables[tables[0]] {
					leftResidual = append(leftResidual, c)
				} else if len(tables) == 1 && rightTables[tables[0]] {
					rightResidual = append(rightResidual, c)
				} else {
					kept = append(kept, c)
				}
			default:
				kept = append(kept, c)
			}
		}
		n.Conds = kept
		if len(leftResidual) > 0 {
			n.Left = &plan.Filter{Child: n.Left, Conds: leftResidual}
		}
		if len(rightResidual) > 0 {
			n.Right = &plan.Filter{Child: n.Right, Conds: rightResidual}
		}
		return n

	default:
		return node
	}
}

// pushdownScan applies just the Scan half of pushdown, used by the
// UPDATE/DELETE single-table plan path.
func pushdownScan(n *plan.Scan) plan.Node {
	return pushdown(n)
}

func condTables(c query.Condition) []string {
	tables := []string{c.Lhs.Table}
	if c.RHSCol != nil && c.RHSCol.Table != c.Lhs.Table {
		tables = append(tables, c.RHSCol.Table)
	}
	return tables
}

func subtreeTables(node plan.Node) map[string]bool {
	out := map[string]bool{}
	collectTables(node, out)
	return out
}

func collectTables(node plan.Node, out map[string]bool) {
	switch n := node.(type) {
	case *plan.Scan:
		out[n.Table] = true
	case *plan.Filter:
		collectTables(n.Child, out)
	case *plan.Join:
		collectTables(n.Left, out)
		collectTables(n.Right, out)
	case *plan.Project:
		collectTables(n.Child, out)
	case *plan.Sort:
		collectTables(n.Child, out)
	}
}
