package execution_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relcore/relcore/pkg/execution"
	"github.com/relcore/relcore/pkg/query"
)

func TestProjectionReordersAndSubsetsColumns(t *testing.T) {
	meta, file := makeTable(t, "t", []string{"a", "b", "c"}, [][]int32{{1, 2, 3}, {4, 5, 6}})
	scan := execution.NewSeqScan("t", meta, file, nil)
	proj := execution.NewProjection(scan, []query.TabCol{
		{Table: "t", Name: "c"},
		{Table: "t", Name: "a"},
	})

	require.Len(t, proj.Schema(), 2)
	require.Equal(t, "c", proj.Schema()[0].Name)
	require.Equal(t, "a", proj.Schema()[1].Name)

	rows := drain(t, proj)
	require.Len(t, rows, 2)
	require.Equal(t, int32(3), colVal(proj.Schema(), rows[0], "c"))
	require.Equal(t, int32(1), colVal(proj.Schema(), rows[0], "a"))
	require.Equal(t, int32(6), colVal(proj.Schema(), rows[1], "c"))
	require.Equal(t, int32(4), colVal(proj.Schema(), rows[1], "a"))
}

// Projecting a projection's output onto the same columns again yields the
// identical schema and rows (P5 idempotence of a stable column set).
func TestProjectionIdempotentSchema(t *testing.T) {
	meta, file := makeTable(t, "t", []string{"a", "b"}, [][]int32{{1, 2}})
	scan := execution.NewSeqScan("t", meta, file, nil)
	cols := []query.TabCol{{Table: "t", Name: "b"}, {Table: "t", Name: "a"}}
	first := execution.NewProjection(scan, cols)

	second := execution.NewProjection(first, cols)

	require.Equal(t, first.Schema(), second.Schema())

	rows1 := drain(t, first)
	rows2 := drain(t, second)
	require.Equal(t, rows1, rows2)
}

func TestProjectionDelegatesCurrentRid(t *testing.T) {
	meta, file := makeTable(t, "t", []string{"a"}, [][]int32{{1}})
	scan := execution.NewSeqScan("t", meta, file, nil)
	proj := execution.NewProjection(scan, []query.TabCol{{Table: "t", Name: "a"}})

	require.NoError(t, scan.Open())
	wantRid, wantOk := scan.CurrentRid()

	require.NoError(t, proj.Open())
	gotRid, gotOk := proj.CurrentRid()
	require.Equal(t, wantOk, gotOk)
	require.Equal(t, wantRid, gotRid)
}
