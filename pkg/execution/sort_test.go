package execution_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relcore/relcore/pkg/execution"
	"github.com/relcore/relcore/pkg/query"
)

// TestOrderByDescScenario is spec §8 scenario 4.
func TestOrderByDescScenario(t *testing.T) {
	meta, file := makeTable(t, "t", []string{"a"}, [][]int32{{3}, {1}, {2}})
	scan := execution.NewSeqScan("t", meta, file, nil)
	sorted := execution.NewSort(scan, []query.TabCol{{Table: "t", Name: "a"}}, []bool{true})

	rows := drain(t, sorted)
	require.Len(t, rows, 3)
	require.Equal(t, int32(3), colVal(sorted.Schema(), rows[0], "a"))
	require.Equal(t, int32(2), colVal(sorted.Schema(), rows[1], "a"))
	require.Equal(t, int32(1), colVal(sorted.Schema(), rows[2], "a"))
}

func TestSortStableForEqualKeys(t *testing.T) {
	meta, file := makeTable(t, "t", []string{"k", "seq"}, [][]int32{{1, 0}, {1, 1}, {1, 2}})
	scan := execution.NewSeqScan("t", meta, file, nil)
	sorted := execution.NewSort(scan, []query.TabCol{{Table: "t", Name: "k"}}, []bool{false})

	rows := drain(t, sorted)
	require.Len(t, rows, 3)
	require.Equal(t, int32(0), colVal(sorted.Schema(), rows[0], "seq"))
	require.Equal(t, int32(1), colVal(sorted.Schema(), rows[1], "seq"))
	require.Equal(t, int32(2), colVal(sorted.Schema(), rows[2], "seq"))
}

func TestSortOverZeroRowsAtEndImmediately(t *testing.T) {
	meta, file := makeTable(t, "t", []string{"a"}, nil)
	scan := execution.NewSeqScan("t", meta, file, nil)
	sorted := execution.NewSort(scan, []query.TabCol{{Table: "t", Name: "a"}}, []bool{false})
	require.NoError(t, sorted.Open())
	require.True(t, sorted.AtEnd())
}
