package execution

import (
	"github.com/relcore/relcore/pkg/explain"
	"github.com/relcore/relcore/pkg/plan"
	"github.com/relcore/relcore/pkg/record"
)

// ExplainExecutor produces a single record: the NUL-terminated,
// tab-indented preorder rendering of the wrapped plan (spec §4.5.11).
// It never touches the heap or any index — the wrapped subplan is never
// opened.
type ExplainExecutor struct {
	node     plan.Node
	aliasMap map[string]string

	row  []byte
	done bool
}

func NewExplainExecutor(node plan.Node, aliasMap map[string]string) *ExplainExecutor {
	return &ExplainExecutor{node: node, aliasMap: aliasMap}
}

func (e *ExplainExecutor) Open() error {
	text := explain.Render(e.node, e.aliasMap)
	e.row = append([]byte(text), 0)
	e.done = false
	return nil
}

func (e *ExplainExecutor) Next() error { e.done = true; return nil }
func (e *ExplainExecutor) AtEnd() bool { return e.done }
func (e *ExplainExecutor) Current() []byte {
	if e.done {
		return nil
	}
	return e.row
}
func (e *ExplainExecutor) CurrentRid() (record.Rid, bool) { return record.Rid{}, false }
func (e *ExplainExecutor) Schema() []Column               { return nil }
func (e *ExplainExecutor) RowSize() int                   { return len(e.row) }
func (e *ExplainExecutor) TypeName() string               { return "Explain" }
func (e *ExplainExecutor) Close() error                   { return nil }
