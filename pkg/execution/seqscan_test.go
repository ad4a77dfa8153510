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

// makeTable builds a catalog.TableMeta and populated record.MemFile for
// a table of INT columns, one row per element of rows.
func makeTable(t *testing.T, name string, colNames []string, rows [][]int32) (catalog.TableMeta, *record.MemFile) {
	t.Helper()
	cat := catalog.New()
	defs := make([]catalog.ColDef, len(colNames))
	for i, n := range colNames {
		defs[i] = catalog.ColDef{Name: n, Kind: types.Int32}
	}
	require.NoError(t, cat.CreateTable(name, defs))
	meta, err := cat.GetTable(name)
	require.NoError(t, err)

	file := record.NewMemFile(meta.RowSize())
	for _, r := range rows {
		buf := make([]byte, meta.RowSize())
		for i, v := range r {
			copy(buf[meta.Cols[i].Offset:meta.Cols[i].Offset+4], types.IntValue(v).RawBytes(4))
		}
		_, err := file.InsertRecord(buf)
		require.NoError(t, err)
	}
	return meta, file
}

func drain(t *testing.T, exec execution.Executor) [][]byte {
	t.Helper()
	require.NoError(t, exec.Open())
	var out [][]byte
	for !exec.AtEnd() {
		row := exec.Current()
		buf := make([]byte, len(row))
		copy(buf, row)
		out = append(out, buf)
		require.NoError(t, exec.Next())
	}
	require.NoError(t, exec.Close())
	return out
}

func colVal(schema []execution.Column, row []byte, name string) int32 {
	for _, c := range schema {
		if c.Name == name {
			return types.ReadValue(row, c.Offset, c.Length, types.Int32).I
		}
	}
	panic("column not found: " + name)
}

// TestSimpleFilterScenario is spec §8 scenario 1.
func TestSimpleFilterScenario(t *testing.T) {
	meta, file := makeTable(t, "t", []string{"a", "b"}, [][]int32{{1, 10}, {2, 20}, {3, 30}})

	cond := query.Condition{
		Lhs: query.TabCol{Table: "t", Name: "a"},
		Op:  types.GE,
		RHSVal: func() *types.Value { v := types.IntValue(2); return &v }(),
	}
	scan := execution.NewSeqScan("t", meta, file, []query.Condition{cond})
	rows := drain(t, scan)

	require.Len(t, rows, 2)
	require.Equal(t, int32(2), colVal(scan.Schema(), rows[0], "a"))
	require.Equal(t, int32(20), colVal(scan.Schema(), rows[0], "b"))
	require.Equal(t, int32(3), colVal(scan.Schema(), rows[1], "a"))
}

func TestSeqScanEmptyTableAtEndImmediately(t *testing.T) {
	meta, file := makeTable(t, "t", []string{"a"}, nil)
	scan := execution.NewSeqScan("t", meta, file, nil)
	require.NoError(t, scan.Open())
	require.True(t, scan.AtEnd())
}
