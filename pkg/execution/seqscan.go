package execution

import (
	"github.com/relcore/relcore/pkg/catalog"
	"github.com/relcore/relcore/pkg/query"
	"github.com/relcore/relcore/pkg/record"
)

// SeqScan iterates every record in a table's heap file, yielding those
// that satisfy all of Conds (spec §4.5.1). In the physical plan produced
// by pkg/planner, Conds is normally empty (predicates are pushed into an
// explicit wrapping Filter), but SeqScan can also evaluate them directly
// when constructed with some — the executor honors the full uniform
// contract regardless of how the planner chose to use it.
type SeqScan struct {
	table  string
	file   record.FileHandle
	schema []Column
	conds  []query.Condition

	iter    record.RidIterator
	curRid  record.Rid
	curRow  []byte
	atEnd   bool
}

func NewSeqScan(table string, meta catalog.TableMeta, file record.FileHandle, conds []query.Condition) *SeqScan {
	return &SeqScan{table: table, file: file, schema: columnsFromMeta(meta), conds: conds}
}

func columnsFromMeta(meta catalog.TableMeta) []Column {
	cols := make([]Column, len(meta.Cols))
	for i, c := range meta.Cols {
		cols[i] = Column{Table: c.Table, Name: c.Name, Kind: int(c.Kind), Length: c.Length, Offset: c.Offset}
	}
	return cols
}

func (s *SeqScan) Open() error {
	s.iter = s.file.Scan()
	s.atEnd = false
	return s.advance()
}

func (s *SeqScan) advance() error {
	for {
		rid, ok := s.iter.Next()
		if !ok {
			s.atEnd = true
			s.curRow = nil
			return nil
		}
		row, err := s.file.GetRecord(rid)
		if err != nil {
			return err
		}
		match, err := EvalAll(s.conds, s.schema, row.Data)
		if err != nil {
			return err
		}
		if match {
			s.curRid = rid
			s.curRow = row.Data
			return nil
		}
	}
}

func (s *SeqScan) Next() error {
	if s.atEnd {
		return nil
	}
	return s.advance()
}

func (s *SeqScan) AtEnd() bool           { return s.atEnd }
func (s *SeqScan) Current() []byte       { return s.curRow }
func (s *SeqScan) CurrentRid() (record.Rid, bool) { return s.curRid, !s.atEnd }
func (s *SeqScan) Schema() []Column      { return s.schema }
func (s *SeqScan) RowSize() int          { return RowSizeOf(s.schema) }
func (s *SeqScan) TypeName() string      { return "SeqScan" }
func (s *SeqScan) Close() error          { return nil }
