package planner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relcore/relcore/pkg/catalog"
	"github.com/relcore/relcore/pkg/plan"
	"github.com/relcore/relcore/pkg/planner"
	"github.com/relcore/relcore/pkg/query"
	"github.com/relcore/relcore/pkg/types"
)

func twoColTable(t *testing.T, cat *catalog.Catalog, name string, indexed ...string) catalog.TableMeta {
	t.Helper()
	require.NoError(t, cat.CreateTable(name, []catalog.ColDef{
		{Name: "x", Kind: types.Int32},
		{Name: "y", Kind: types.Int32},
	}))
	for _, ix := range indexed {
		require.NoError(t, cat.CreateIndex(name, []string{ix}))
	}
	meta, err := cat.GetTable(name)
	require.NoError(t, err)
	return meta
}

func TestPlanSelectPushesFilterOverSeqScan(t *testing.T) {
	cat := catalog.New()
	twoColTable(t, cat, "t")

	v := types.IntValue(5)
	q := &query.Query{
		Kind:         query.KindSelect,
		Tables:       []string{"t"},
		Cols:         []query.TabCol{{Table: "t", Name: "x"}},
		Conds:        []query.Condition{{Lhs: query.TabCol{Table: "t", Name: "x"}, Op: types.GT, RHSVal: &v}},
		IsSelectStar: false,
	}

	root, err := planner.Plan(q, cat, planner.DefaultConfig())
	require.NoError(t, err)

	proj, ok := root.(*plan.Project)
	require.True(t, ok)
	filter, ok := proj.Child.(*plan.Filter)
	require.True(t, ok, "SeqScan predicates must be wrapped in an explicit Filter")
	scan, ok := filter.Child.(*plan.Scan)
	require.True(t, ok)
	require.Equal(t, plan.SeqScanAlgo, scan.Algo)
	require.Empty(t, scan.Conds, "conds must be cleared off the scan once wrapped in Filter")
}

func TestPlanSelectUsesIndexScanWithoutWrappingFilter(t *testing.T) {
	cat := catalog.New()
	twoColTable(t, cat, "k", "x")

	lo := types.IntValue(3)
	q := &query.Query{
		Kind:   query.KindSelect,
		Tables: []string{"k"},
		Cols:   []query.TabCol{{Table: "k", Name: "x"}},
		Conds:  []query.Condition{{Lhs: query.TabCol{Table: "k", Name: "x"}, Op: types.GT, RHSVal: &lo}},
	}

	root, err := planner.Plan(q, cat, planner.DefaultConfig())
	require.NoError(t, err)

	proj := root.(*plan.Project)
	scan, ok := proj.Child.(*plan.Scan)
	require.True(t, ok, "IndexScan must not be wrapped in a Filter")
	require.Equal(t, plan.IndexScanAlgo, scan.Algo)
	require.Equal(t, []string{"x"}, scan.IndexCols)
	require.NotEmpty(t, scan.Conds, "IndexScan keeps its predicates to re-evaluate them itself")
}

func TestPlanNoJoinAlgorithmEnabledErrors(t *testing.T) {
	cat := catalog.New()
	twoColTable(t, cat, "a")
	twoColTable(t, cat, "b")

	q := &query.Query{
		Kind:   query.KindSelect,
		Tables: []string{"a", "b"},
		Cols:   []query.TabCol{{Table: "a", Name: "x"}},
		Conds: []query.Condition{{
			Lhs:    query.TabCol{Table: "a", Name: "x"},
			Op:     types.EQ,
			RHSCol: &query.TabCol{Table: "b", Name: "x"},
		}},
	}

	_, err := planner.Plan(q, cat, planner.Config{EnableNestLoop: false, EnableSortMerge: false})
	require.Error(t, err)
}

func TestPlanJoinBuildsLeftDeepTree(t *testing.T) {
	cat := catalog.New()
	twoColTable(t, cat, "a")
	twoColTable(t, cat, "b")
	twoColTable(t, cat, "c")

	q := &query.Query{
		Kind:   query.KindSelect,
		Tables: []string{"a", "b", "c"},
		Cols:   []query.TabCol{{Table: "a", Name: "x"}},
		Conds: []query.Condition{
			{Lhs: query.TabCol{Table: "a", Name: "x"}, Op: types.EQ, RHSCol: &query.TabCol{Table: "b", Name: "x"}},
			{Lhs: query.TabCol{Table: "b", Name: "x"}, Op: types.EQ, RHSCol: &query.TabCol{Table: "c", Name: "x"}},
		},
	}

	root, err := planner.Plan(q, cat, planner.DefaultConfig())
	require.NoError(t, err)

	proj := root.(*plan.Project)
	top, ok := proj.Child.(*plan.Join)
	require.True(t, ok)
	_, rightIsScan := top.Right.(*plan.Scan)
	require.True(t, rightIsScan, "right child of every join must be a base scan (left-deep invariant)")
	_, leftIsJoin := top.Left.(*plan.Join)
	require.True(t, leftIsJoin)
}

// TestPlanNonAdjacentJoinConditionAbsorbsAtCorrectJoin reproduces a
// 4-table left-deep build where the last condition links two tables
// that only become co-visible at the top join, not at the join where
// the second one's table was first scanned:
//
//	t1 JOIN t2 ON t1.a=t2.a JOIN t3 ON t2.b=t3.b JOIN t4 ON t3.c=t4.c AND t2.d=t4.d
//
// The t2.d=t4.d condition must land on the join whose left subtree
// contains t2 and whose right-hand scan is t4 (the top join here), not
// on the deepest join merely because its right scan happens to be t2.
func TestPlanNonAdjacentJoinConditionAbsorbsAtCorrectJoin(t *testing.T) {
	cat := catalog.New()
	require.NoError(t, cat.CreateTable("t1", []catalog.ColDef{{Name: "a", Kind: types.Int32}}))
	require.NoError(t, cat.CreateTable("t2", []catalog.ColDef{
		{Name: "a", Kind: types.Int32}, {Name: "b", Kind: types.Int32}, {Name: "d", Kind: types.Int32},
	}))
	require.NoError(t, cat.CreateTable("t3", []catalog.ColDef{
		{Name: "b", Kind: types.Int32}, {Name: "c", Kind: types.Int32},
	}))
	require.NoError(t, cat.CreateTable("t4", []catalog.ColDef{
		{Name: "c", Kind: types.Int32}, {Name: "d", Kind: types.Int32},
	}))

	q := &query.Query{
		Kind:   query.KindSelect,
		Tables: []string{"t1", "t2", "t3", "t4"},
		Cols:   []query.TabCol{{Table: "t1", Name: "a"}},
		Conds: []query.Condition{
			{Lhs: query.TabCol{Table: "t1", Name: "a"}, Op: types.EQ, RHSCol: &query.TabCol{Table: "t2", Name: "a"}},
			{Lhs: query.TabCol{Table: "t2", Name: "b"}, Op: types.EQ, RHSCol: &query.TabCol{Table: "t3", Name: "b"}},
			{Lhs: query.TabCol{Table: "t3", Name: "c"}, Op: types.EQ, RHSCol: &query.TabCol{Table: "t4", Name: "c"}},
			{Lhs: query.TabCol{Table: "t2", Name: "d"}, Op: types.EQ, RHSCol: &query.TabCol{Table: "t4", Name: "d"}},
		},
	}

	root, err := planner.Plan(q, cat, planner.DefaultConfig())
	require.NoError(t, err)

	proj := root.(*plan.Project)
	top, ok := proj.Child.(*plan.Join)
	require.True(t, ok)
	topScan, ok := top.Right.(*plan.Scan)
	require.True(t, ok)
	require.Equal(t, "t4", topScan.Table)
	require.Len(t, top.Conds, 2, "the closing t2.d=t4.d condition must land on the join that has both t2 and t4 in scope")

	mid, ok := top.Left.(*plan.Join)
	require.True(t, ok)
	midScan, ok := mid.Right.(*plan.Scan)
	require.True(t, ok)
	require.Equal(t, "t3", midScan.Table)

	deepest, ok := mid.Left.(*plan.Join)
	require.True(t, ok)
	deepestScan, ok := deepest.Right.(*plan.Scan)
	require.True(t, ok)
	require.Equal(t, "t2", deepestScan.Table)
	require.Len(t, deepest.Conds, 1, "must never absorb the non-adjacent t2.d=t4.d condition here just because t2 is this join's scan")
}

func TestPlanUpdateBuildsSingleTableScan(t *testing.T) {
	cat := catalog.New()
	twoColTable(t, cat, "t")

	q := &query.Query{
		Kind:   query.KindUpdate,
		Tables: []string{"t"},
	}
	root, err := planner.Plan(q, cat, planner.DefaultConfig())
	require.NoError(t, err)
	_, ok := root.(*plan.Scan)
	require.True(t, ok)
}
