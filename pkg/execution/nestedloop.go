package execution

import (
	"github.com/relcore/relcore/pkg/query"
	"github.com/relcore/relcore/pkg/record"
)

// NestedLoopJoin implements the left-inner nested loop driver of spec
// §4.5.4: the left child is re-opened for every right row, and the
// composite row (left bytes followed by right bytes, right offsets
// shifted by the left row size) is yielded whenever conds hold — or
// unconditionally when conds is empty, producing the Cartesian product.
type NestedLoopJoin struct {
	left, right Executor
	conds       []query.Condition
	schema      []Column
	rowSize     int

	curRow []byte
	atEnd  bool
}

func NewNestedLoopJoin(left, right Executor, conds []query.Condition) *NestedLoopJoin {
	schema := joinSchema(left, right)
	return &NestedLoopJoin{
		left: left, right: right, conds: conds,
		schema:  schema,
		rowSize: left.RowSize() + right.RowSize(),
	}
}

func joinSchema(left, right Executor) []Column {
	shift := left.RowSize()
	out := append([]Column{}, left.Schema()...)
	for _, c := range right.Schema() {
		c.Offset += shift
		out = append(out, c)
	}
	return out
}

func (j *NestedLoopJoin) Open() error {
	if err := j.left.Open(); err != nil {
		return err
	}
	if err := j.right.Open(); err != nil {
		return err
	}
	if j.left.AtEnd() || j.right.AtEnd() {
		j.atEnd = true
		return nil
	}
	return j.findMatch()
}

func (j *NestedLoopJoin) findMatch() error {
	for !j.right.AtEnd() {
		row := composite(j.left.Current(), j.right.Current())
		if len(j.conds) == 0 {
			j.curRow = row
			return nil
		}
		ok, err := EvalAll(j.conds, j.schema, row)
		if err != nil {
			return err
		}
		if ok {
			j.curRow = row
			return nil
		}
		if err := j.stepInner(); err != nil {
			return err
		}
	}
	j.atEnd = true
	j.curRow = nil
	return nil
}

// stepInner advances the left cursor, wrapping to the next right row and
// reopening the left side when the left side is exhausted.
func (j *NestedLoopJoin) stepInner() error {
	if err := j.left.Next(); err != nil {
		return err
	}
	if j.left.AtEnd() {
		if err := j.right.Next(); err != nil {
			return err
		}
		if j.right.AtEnd() {
			return nil
		}
		if err := j.left.Open(); err != nil {
			return err
		}
	}
	return nil
}

func (j *NestedLoopJoin) Next() error {
	if j.atEnd {
		return nil
	}
	if err := j.stepInner(); err != nil {
		return err
	}
	return j.findMatch()
}

func composite(left, right []byte) []byte {
	out := make([]byte, len(left)+len(right))
	copy(out, left)
	copy(out[len(left):], right)
	return out
}

func (j *NestedLoopJoin) AtEnd() bool     { return j.atEnd }
func (j *NestedLoopJoin) Current() []byte { return j.curRow }
func (j *NestedLoopJoin) CurrentRid() (record.Rid, bool) { return record.Rid{}, false }
func (j *NestedLoopJoin) Schema() []Column { return j.schema }
func (j *NestedLoopJoin) RowSize() int     { return j.rowSize }
func (j *NestedLoopJoin) TypeName() string { return "NestedLoopJoin" }
func (j *NestedLoopJoin) Close() error {
	err1 := j.left.Close()
	err2 := j.right.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
