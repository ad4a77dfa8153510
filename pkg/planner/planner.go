// Package planner implements the logical rewrite pass and the physical
// plan construction algorithm of spec §4.3: MakeOneRel, condition
// push-down, post-hoc Filter wrapping, and final Sort/Project wrapping.
package planner

import (
	"sort"

	"github.com/relcore/relcore/pkg/catalog"
	"github.com/relcore/relcore/pkg/plan"
	"github.com/relcore/relcore/pkg/query"
	"github.com/relcore/relcore/pkg/relerr"
)

// Config carries the two join-algorithm knobs exposed by
// `SET enable_nestloop|enable_sortmerge = bool`.
type Config struct {
	EnableNestLoop  bool
	EnableSortMerge bool
}

// DefaultConfig matches the reference implementation's defaults: nested
// loop join is always available.
func DefaultConfig() Config {
	return Config{EnableNestLoop: true, EnableSortMerge: false}
}

func (c Config) chooseAlgo() (plan.JoinAlgo, error) {
	switch {
	case c.EnableNestLoop:
		return plan.NestLoop, nil
	case c.EnableSortMerge:
		return plan.SortMerge, nil
	default:
		return 0, relerr.New(relerr.NoJoinAlgorithm, "no join algorithm enabled")
	}
}

// Plan builds the physical plan for a resolved Query (spec §4.3.6
// statement dispatch, for the statement kinds this package handles —
// SELECT/EXPLAIN/UPDATE/DELETE build a scan-rooted tree; INSERT has no
// subplan and is handled directly by pkg/portal).
func Plan(q *query.Query, cat catalog.Provider, cfg Config) (plan.Node, error) {
	switch q.Kind {
	case query.KindSelect, query.KindExplain:
		return planSelect(q, cat, cfg)
	case query.KindUpdate, query.KindDelete:
		return planSingleTableScan(q, cat, cfg)
	default:
		return nil, relerr.New(relerr.Internal, "planner: unsupported query kind %v", q.Kind)
	}
}

// planSingleTableScan builds the scan step used by UPDATE and DELETE
// (spec §4.3.6: "wrapping a Scan built as in step 1; single-table index
// selection applies").
func planSingleTableScan(q *query.Query, cat catalog.Provider, cfg Config) (plan.Node, error) {
	table := q.Tables[0]
	meta, err := cat.GetTable(table)
	if err != nil {
		return nil, err
	}
	taken, _ := popConds(table, q.Conds)
	scan := buildScan(table, meta, taken)
	return pushdownScan(scan), nil
}

func planSelect(q *query.Query, cat catalog.Provider, cfg Config) (plan.Node, error) {
	tables := logicalJoinOrder(q.Tables)

	metas := make(map[string]catalog.TableMeta, len(tables))
	for _, t := range tables {
		m, err := cat.GetTable(t)
		if err != nil {
			return nil, err
		}
		metas[t] = m
	}

	pool := append([]query.Condition{}, q.Conds...)
	scans := make(map[string]plan.Node, len(tables))
	for _, t := range tables {
		var taken []query.Condition
		taken, pool = popConds(t, pool)
		scans[t] = buildScan(t, metas[t], taken)
	}

	root, err := makeOneRel(tables, pool, scans, cfg)
	if err != nil {
		return nil, err
	}

	root = pushdown(root)

	if len(q.OrderBy) > 0 {
		cols := make([]query.TabCol, len(q.OrderBy))
		desc := make([]bool, len(q.OrderBy))
		for i, ob := range q.OrderBy {
			cols[i] = ob.Col
			desc[i] = ob.Desc
		}
		root = &plan.Sort{Child: root, Cols: cols, Desc: desc}
	}

	projCols := q.Cols
	root = &plan.Project{Child: root, Columns: projCols}
	return root, nil
}

// logicalJoinOrder implements the greedy join-order rewrite of spec
// §4.3.1: reorder ascending by a uniform default cardinality. With no
// real statistics interface, every table has the same estimate, so this
// is a stable no-op — the mechanism exists so a real cardinality
// estimator can be dropped in behind the same sort without touching
// callers.
func logicalJoinOrder(tables []string) []string {
	if len(tables) < 3 {
		return tables
	}
	ordered := append([]string{}, tables...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return estimateCardinality(ordered[i]) < estimateCardinality(ordered[j])
	})
	return ordered
}

// defaultCardinality is the uniform per-table row estimate used until a
// real statistics interface exists.
const defaultCardinality = 1000

// estimateCardinality is the seam a real statistics-driven estimator
// would replace; today every table is assumed equally sized.
func estimateCardinality(string) int { return defaultCardinality }

// buildScan chooses SeqScan vs IndexScan for one table's popped
// predicates (spec §4.3.2 step 1).
func buildScan(table string, meta catalog.TableMeta, taken []query.Condition) *plan.Scan {
	indexCols := chooseIndexCols(meta, taken)
	algo := plan.SeqScanAlgo
	if len(indexCols) > 0 {
		algo = plan.IndexScanAlgo
	}
	return &plan.Scan{Algo: algo, Table: table, Conds: taken, IndexCols: indexCols}
}
