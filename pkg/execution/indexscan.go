package execution

import (
	"github.com/relcore/relcore/pkg/catalog"
	"github.com/relcore/relcore/pkg/index"
	"github.com/relcore/relcore/pkg/query"
	"github.com/relcore/relcore/pkg/record"
	"github.com/relcore/relcore/pkg/types"
)

// IndexScan walks a B+-tree index's ordered entries within a range
// derived from literal predicates on the chosen index column(s), then
// re-evaluates every condition against the materialized row — this
// covers NE and any secondary column the index doesn't range on (spec
// §4.5.2).
type IndexScan struct {
	table     string
	file      record.FileHandle
	idx       index.Handle
	indexCols []string
	schema    []Column
	conds     []query.Condition

	// single-column range bookkeeping; unused (zero value) for composite
	// indexes, which fall back to a full leaf traversal plus post-filter
	// (see chooseCursor).
	hasHi  bool
	hiVal  types.Value
	hiOp   types.Op // LE or LT: the scan stops at the first entry whose column fails `col hiOp hiVal`

	cur    index.Cursor
	curRow []byte
	curRid record.Rid
	atEnd  bool
}

func NewIndexScan(table string, meta catalog.TableMeta, file record.FileHandle, idx index.Handle, indexCols []string, conds []query.Condition) *IndexScan {
	is := &IndexScan{
		table:     table,
		file:      file,
		idx:       idx,
		indexCols: indexCols,
		schema:    columnsFromMeta(meta),
		conds:     normalizeCondsForTable(table, conds),
	}
	return is
}

// normalizeCondsForTable implements spec §4.5.2's pre-iteration step:
// any incoming condition whose lhs isn't this table must be a
// column-vs-column comparison whose rhs is this table; swap it into
// lhs-local form.
func normalizeCondsForTable(table string, conds []query.Condition) []query.Condition {
	out := make([]query.Condition, len(conds))
	for i, c := range conds {
		if c.Lhs.Table == table {
			out[i] = c
			continue
		}
		if c.RHSCol != nil && c.RHSCol.Table == table {
			out[i] = query.Condition{Lhs: *c.RHSCol, Op: types.SwapOp(c.Op), RHSCol: &c.Lhs}
			continue
		}
		out[i] = c
	}
	return out
}

func (s *IndexScan) Open() error {
	s.atEnd = false
	s.cur = s.chooseCursor()
	return s.advance()
}

// chooseCursor determines the starting cursor from literal predicates on
// the leading index column (spec §4.5.2). Composite indexes (more than
// one indexed column) start at a full leaf traversal and rely entirely
// on post-scan re-evaluation, since the spec only defines a
// single-column range derivation.
func (s *IndexScan) chooseCursor() index.Cursor {
	if len(s.indexCols) != 1 {
		return s.idx.LeafBegin()
	}
	col := s.indexCols[0]
	meta, _ := findCol(s.schema, s.table, col)

	var lo, hi *types.Value
	loInclusive, hiInclusive := true, true

	for _, c := range s.conds {
		if c.Lhs.Table != s.table || c.Lhs.Name != col || c.RHSVal == nil {
			continue
		}
		v := *c.RHSVal
		switch c.Op {
		case types.EQ:
			lo, hi = &v, &v
			loInclusive, hiInclusive = true, true
		case types.GT, types.GE:
			if lo == nil {
				cp := v
				lo = &cp
				loInclusive = c.Op == types.GE
			} else if cmp, _ := types.Compare(v, *lo); cmp > 0 || (cmp == 0 && c.Op == types.GT) {
				cp := v
				lo = &cp
				loInclusive = c.Op == types.GE
			}
		case types.LT, types.LE:
			if hi == nil {
				cp := v
				hi = &cp
				hiInclusive = c.Op == types.LE
			} else if cmp, _ := types.Compare(v, *hi); cmp < 0 || (cmp == 0 && c.Op == types.LT) {
				cp := v
				hi = &cp
				hiInclusive = c.Op == types.LE
			}
		}
	}

	if hi != nil {
		s.hasHi = true
		s.hiVal = *hi
		if hiInclusive {
			s.hiOp = types.LE
		} else {
			s.hiOp = types.LT
		}
	}

	if lo == nil {
		return s.idx.LeafBegin()
	}
	key := index.Key(lo.RawBytes(meta.Length))
	if loInclusive {
		return s.idx.LowerBound(key)
	}
	return s.idx.UpperBound(key)
}

func (s *IndexScan) advance() error {
	for {
		if s.cur.AtEnd() {
			s.atEnd = true
			s.curRow = nil
			return nil
		}
		rid := s.cur.Rid()
		row, err := s.file.GetRecord(rid)
		if err != nil {
			return err
		}

		if s.hasHi && len(s.indexCols) == 1 {
			col, _ := findCol(s.schema, s.table, s.indexCols[0])
			v := readCol(row.Data, col)
			ok, err := types.Eval(v, s.hiOp, s.hiVal)
			if err != nil {
				return err
			}
			if !ok {
				s.atEnd = true
				s.curRow = nil
				return nil
			}
		}

		match, err := EvalAll(s.conds, s.schema, row.Data)
		if err != nil {
			return err
		}
		if match {
			s.curRid = rid
			s.curRow = row.Data
			s.cur.Next()
			return nil
		}
		s.cur.Next()
	}
}

func (s *IndexScan) Next() error {
	if s.atEnd {
		return nil
	}
	return s.advance()
}

func (s *IndexScan) AtEnd() bool                     { return s.atEnd }
func (s *IndexScan) Current() []byte                 { return s.curRow }
func (s *IndexScan) CurrentRid() (record.Rid, bool)  { return s.curRid, !s.atEnd }
func (s *IndexScan) Schema() []Column                { return s.schema }
func (s *IndexScan) RowSize() int                    { return RowSizeOf(s.schema) }
func (s *IndexScan) TypeName() string                { return "IndexScan" }
func (s *IndexScan) Close() error                    { return nil }
