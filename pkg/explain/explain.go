// Package explain renders a physical plan tree into the single-record,
// tab-indented preorder text format produced by EXPLAIN (spec §4.5.11).
package explain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/relcore/relcore/pkg/plan"
	"github.com/relcore/relcore/pkg/query"
	"github.com/relcore/relcore/pkg/types"
)

// Render formats node as the EXPLAIN text: one line per node, one tab
// of indentation per depth level, terminated by a single trailing
// newline. aliasMap maps both aliases and real names to real table
// names (spec §4.1); it is used to substitute the display alias for
// each column and table reference.
func Render(node plan.Node, aliasMap map[string]string) string {
	lines := renderNode(node, aliasMap)
	return strings.Join(lines, "\n") + "\n"
}

// renderNode formats node's own line plus its recursively rendered,
// depth-indented children, sorted by their own rendered text (spec
// P7: EXPLAIN determinism). A panic while formatting this node is
// caught and replaced with a single "Error: <msg>" line, so a
// malformed subtree never aborts the whole record.
func renderNode(node plan.Node, aliasMap map[string]string) (lines []string) {
	defer func() {
		if r := recover(); r != nil {
			lines = []string{fmt.Sprintf("Error: %v", r)}
		}
	}()

	header, children := describe(node, aliasMap)

	childBlocks := make([]string, 0, len(children))
	for _, c := range children {
		block := strings.Join(renderNode(c, aliasMap), "\n")
		childBlocks = append(childBlocks, block)
	}
	sort.Strings(childBlocks)

	lines = append(lines, header)
	for _, block := range childBlocks {
		for _, l := range strings.Split(block, "\n") {
			lines = append(lines, "\t"+l)
		}
	}
	return lines
}

// describe returns a node's own header line and its child nodes, in an
// order that renderNode will re-sort by rendered text.
func describe(node plan.Node, aliasMap map[string]string) (string, []plan.Node) {
	switch n := node.(type) {
	case *plan.Scan:
		return fmt.Sprintf("Scan(table=%s)", n.Table), nil

	case *plan.Filter:
		conds := formatConds(n.Conds, aliasMap)
		return fmt.Sprintf("Filter(condition=[%s])", strings.Join(conds, ",")), []plan.Node{n.Child}

	case *plan.Project:
		var cols []string
		if len(n.Columns) == 0 {
			cols = []string{"*"}
		} else {
			cols = make([]string, len(n.Columns))
			for i, tc := range n.Columns {
				cols[i] = formatCol(tc, aliasMap)
			}
			sort.Strings(cols)
		}
		return fmt.Sprintf("Project(columns=[%s])", strings.Join(cols, ",")), []plan.Node{n.Child}

	case *plan.Join:
		tables := sortedScanTables(n)
		conds := formatConds(n.Conds, aliasMap)
		return fmt.Sprintf("Join(tables=[%s],condition=[%s])", strings.Join(tables, ","), strings.Join(conds, ",")),
			[]plan.Node{n.Left, n.Right}

	case *plan.Sort:
		cols := make([]string, len(n.Cols))
		for i, tc := range n.Cols {
			c := formatCol(tc, aliasMap)
			if i < len(n.Desc) && n.Desc[i] {
				c += " DESC"
			}
			cols[i] = c
		}
		return fmt.Sprintf("Sort(columns=[%s])", strings.Join(cols, ",")), []plan.Node{n.Child}

	case *plan.Dml:
		// EXPLAIN wraps Dml(Explain, Sub=<select plan>); render the
		// wrapped subplan as the whole record.
		if n.Sub != nil {
			return describe(n.Sub, aliasMap)
		}
		return fmt.Sprintf("Dml(table=%s)", n.Table), nil

	default:
		panic(fmt.Sprintf("cannot explain node of type %T", node))
	}
}

// sortedScanTables collects the real table names of every Scan beneath
// node, sorted and deduplicated.
func sortedScanTables(node plan.Node) []string {
	set := map[string]struct{}{}
	collectScanTables(node, set)
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func collectScanTables(node plan.Node, out map[string]struct{}) {
	switch n := node.(type) {
	case *plan.Scan:
		out[n.Table] = struct{}{}
	case *plan.Filter:
		collectScanTables(n.Child, out)
	case *plan.Project:
		collectScanTables(n.Child, out)
	case *plan.Sort:
		collectScanTables(n.Child, out)
	case *plan.Join:
		collectScanTables(n.Left, out)
		collectScanTables(n.Right, out)
	}
}

func formatConds(conds []query.Condition, aliasMap map[string]string) []string {
	out := make([]string, len(conds))
	for i, c := range conds {
		out[i] = formatCond(c, aliasMap)
	}
	sort.Strings(out)
	return out
}

func formatCond(c query.Condition, aliasMap map[string]string) string {
	lhs := formatCol(c.Lhs, aliasMap)
	rhs := ""
	if c.RHSVal != nil {
		rhs = formatLiteral(*c.RHSVal)
	} else {
		rhs = formatCol(*c.RHSCol, aliasMap)
	}
	return lhs + c.Op.String() + rhs
}

func formatCol(tc query.TabCol, aliasMap map[string]string) string {
	return displayAlias(aliasMap, tc.Table) + "." + tc.Name
}

// displayAlias returns the alias bound to real in aliasMap, or real
// itself when no non-identity alias is bound. When more than one alias
// maps to the same real table (a self-join), the lexicographically
// smallest non-identity alias is chosen so the result is deterministic.
func displayAlias(aliasMap map[string]string, real string) string {
	best := ""
	for k, v := range aliasMap {
		if v != real || k == real {
			continue
		}
		if best == "" || k < best {
			best = k
		}
	}
	if best == "" {
		return real
	}
	return best
}

func formatLiteral(v types.Value) string {
	switch v.Kind {
	case types.Int32:
		return strconv.FormatInt(int64(v.I), 10)
	case types.Float32:
		return strconv.FormatFloat(float64(v.F), 'g', -1, 32)
	default:
		return "'" + string(types.TrimNUL(v.S)) + "'"
	}
}
