package execution_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relcore/relcore/pkg/catalog"
	"github.com/relcore/relcore/pkg/execution"
	"github.com/relcore/relcore/pkg/query"
	"github.com/relcore/relcore/pkg/record"
	"github.com/relcore/relcore/pkg/types"
)

func insertRow(t *testing.T, meta catalog.TableMeta, file *record.MemFile, values map[string]types.Value) {
	t.Helper()
	buf := make([]byte, meta.RowSize())
	for _, c := range meta.Cols {
		v, ok := values[c.Name]
		require.True(t, ok, "missing value for column %s", c.Name)
		copy(buf[c.Offset:c.Offset+c.Length], v.RawBytes(c.Length))
	}
	_, err := file.InsertRecord(buf)
	require.NoError(t, err)
}

// TestAliasedJoinScenario is spec §8 scenario 2.
func TestAliasedJoinScenario(t *testing.T) {
	cat := catalog.New()
	require.NoError(t, cat.CreateTable("s", []catalog.ColDef{
		{Name: "id", Kind: types.Int32},
		{Name: "n", Kind: types.FixedString, Length: 8},
	}))
	require.NoError(t, cat.CreateTable("e", []catalog.ColDef{
		{Name: "sid", Kind: types.Int32},
		{Name: "v", Kind: types.Int32},
	}))
	sMeta, _ := cat.GetTable("s")
	eMeta, _ := cat.GetTable("e")

	sFile := record.NewMemFile(sMeta.RowSize())
	insertRow(t, sMeta, sFile, map[string]types.Value{"id": types.IntValue(1), "n": types.StrValue([]byte("alice"))})
	insertRow(t, sMeta, sFile, map[string]types.Value{"id": types.IntValue(2), "n": types.StrValue([]byte("bob"))})

	eFile := record.NewMemFile(eMeta.RowSize())
	insertRow(t, eMeta, eFile, map[string]types.Value{"sid": types.IntValue(1), "v": types.IntValue(100)})
	insertRow(t, eMeta, eFile, map[string]types.Value{"sid": types.IntValue(1), "v": types.IntValue(200)})
	insertRow(t, eMeta, eFile, map[string]types.Value{"sid": types.IntValue(2), "v": types.IntValue(50)})

	left := execution.NewSeqScan("s", sMeta, sFile, nil)
	right := execution.NewSeqScan("e", eMeta, eFile, nil)
	joinCond := query.Condition{
		Lhs:    query.TabCol{Table: "s", Name: "id"},
		Op:     types.EQ,
		RHSCol: &query.TabCol{Table: "e", Name: "sid"},
	}
	join := execution.NewNestedLoopJoin(left, right, []query.Condition{joinCond})

	vGt60 := types.IntValue(60)
	filtered := execution.NewFilter(join, []query.Condition{
		{Lhs: query.TabCol{Table: "e", Name: "v"}, Op: types.GT, RHSVal: &vGt60},
	})

	rows := drain(t, filtered)
	require.Len(t, rows, 2)
	for _, row := range rows {
		n := types.TrimNUL(readStr(filtered.Schema(), row, "n"))
		require.Equal(t, "alice", string(n))
	}
}

func readStr(schema []execution.Column, row []byte, name string) []byte {
	for _, c := range schema {
		if c.Name == name {
			return types.ReadValue(row, c.Offset, c.Length, types.FixedString).S
		}
	}
	panic("column not found: " + name)
}

func TestNestedLoopJoinEmptyCondsIsCartesianProduct(t *testing.T) {
	lMeta, lFile := makeTable(t, "l", []string{"x"}, [][]int32{{1}, {2}})
	rMeta, rFile := makeTable(t, "r", []string{"y"}, [][]int32{{10}, {20}, {30}})

	join := execution.NewNestedLoopJoin(
		execution.NewSeqScan("l", lMeta, lFile, nil),
		execution.NewSeqScan("r", rMeta, rFile, nil),
		nil,
	)
	rows := drain(t, join)
	require.Len(t, rows, 6)
}

func TestNestedLoopJoinEmptyLeftAtEndImmediately(t *testing.T) {
	lMeta, lFile := makeTable(t, "l", []string{"x"}, nil)
	rMeta, rFile := makeTable(t, "r", []string{"y"}, [][]int32{{1}})
	join := execution.NewNestedLoopJoin(
		execution.NewSeqScan("l", lMeta, lFile, nil),
		execution.NewSeqScan("r", rMeta, rFile, nil),
		nil,
	)
	require.NoError(t, join.Open())
	require.True(t, join.AtEnd())
}
