package execution

import (
	"github.com/relcore/relcore/pkg/query"
	"github.com/relcore/relcore/pkg/record"
)

// Filter wraps a child executor and only yields rows where eval_all(conds)
// holds (spec §4.5.3). Schema and Rid are transparent pass-throughs.
type Filter struct {
	child Executor
	conds []query.Condition
}

func NewFilter(child Executor, conds []query.Condition) *Filter {
	return &Filter{child: child, conds: conds}
}

func (f *Filter) Open() error {
	if err := f.child.Open(); err != nil {
		return err
	}
	return f.advance()
}

func (f *Filter) advance() error {
	for !f.child.AtEnd() {
		ok, err := EvalAll(f.conds, f.child.Schema(), f.child.Current())
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if err := f.child.Next(); err != nil {
			return err
		}
	}
	return nil
}

func (f *Filter) Next() error {
	if f.child.AtEnd() {
		return nil
	}
	if err := f.child.Next(); err != nil {
		return err
	}
	return f.advance()
}

func (f *Filter) AtEnd() bool  { return f.child.AtEnd() }
func (f *Filter) Current() []byte { return f.child.Current() }
func (f *Filter) CurrentRid() (record.Rid, bool) { return f.child.CurrentRid() }
func (f *Filter) Schema() []Column { return f.child.Schema() }
func (f *Filter) RowSize() int { return f.child.RowSize() }
func (f *Filter) TypeName() string { return "Filter" }
func (f *Filter) Close() error { return f.child.Close() }
