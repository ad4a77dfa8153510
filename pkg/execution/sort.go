package execution

import (
	"sort"

	"github.com/relcore/relcore/pkg/query"
	"github.com/relcore/relcore/pkg/record"
	"github.com/relcore/relcore/pkg/types"
)

// Sort materializes its child fully into memory and produces a stable
// multi-key ordering over it (spec §4.5.7). There is no out-of-core
// spill path — every row the child yields is held in the sort buffer at
// once.
type Sort struct {
	child  Executor
	schema []Column
	cols   []query.TabCol
	desc   []bool

	rows []sortedRow
	pos  int
}

type sortedRow struct {
	data []byte
	rid  record.Rid
	hasR bool
}

func NewSort(child Executor, cols []query.TabCol, desc []bool) *Sort {
	return &Sort{child: child, schema: child.Schema(), cols: cols, desc: desc}
}

func (s *Sort) Open() error {
	if err := s.child.Open(); err != nil {
		return err
	}
	s.rows = nil
	for !s.child.AtEnd() {
		rid, hasR := s.child.CurrentRid()
		s.rows = append(s.rows, sortedRow{data: s.child.Current(), rid: rid, hasR: hasR})
		if err := s.child.Next(); err != nil {
			return err
		}
	}

	keyCols := make([]Column, len(s.cols))
	for i, tc := range s.cols {
		keyCols[i], _ = findCol(s.schema, tc.Table, tc.Name)
	}

	var sortErr error
	sort.SliceStable(s.rows, func(i, j int) bool {
		for k, kc := range keyCols {
			vi := readCol(s.rows[i].data, kc)
			vj := readCol(s.rows[j].data, kc)
			cmp, err := types.Compare(vi, vj)
			if err != nil {
				sortErr = err
				return false
			}
			if s.desc[k] {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
	s.pos = 0
	return sortErr
}

func (s *Sort) Next() error {
	if s.pos < len(s.rows) {
		s.pos++
	}
	return nil
}

func (s *Sort) AtEnd() bool { return s.pos >= len(s.rows) }

func (s *Sort) Current() []byte {
	if s.AtEnd() {
		return nil
	}
	return s.rows[s.pos].data
}

func (s *Sort) CurrentRid() (record.Rid, bool) {
	if s.AtEnd() {
		return record.Rid{}, false
	}
	return s.rows[s.pos].rid, s.rows[s.pos].hasR
}

func (s *Sort) Schema() []Column  { return s.schema }
func (s *Sort) RowSize() int      { return RowSizeOf(s.schema) }
func (s *Sort) TypeName() string  { return "Sort" }
func (s *Sort) Close() error      { return s.child.Close() }
