package execution

import (
	"github.com/relcore/relcore/pkg/query"
	"github.com/relcore/relcore/pkg/record"
)

// Projection re-packs each child row into a new buffer containing only
// the requested columns, in the requested order, at sequential
// destination offsets (spec §4.5.6). CurrentRid is delegated to the
// child so a caller can still identify the source tuple of a projected
// row (e.g. UPDATE/DELETE plans that scan through a Projection).
type Projection struct {
	child   Executor
	schema  []Column
	mapping []fieldCopy
	rowSize int
	curRow  []byte
}

type fieldCopy struct {
	srcOffset, dstOffset, length int
}

func NewProjection(child Executor, cols []query.TabCol) *Projection {
	childSchema := child.Schema()
	schema := make([]Column, len(cols))
	mapping := make([]fieldCopy, len(cols))
	dst := 0
	for i, tc := range cols {
		src, _ := findCol(childSchema, tc.Table, tc.Name)
		schema[i] = Column{Table: src.Table, Name: src.Name, Kind: src.Kind, Length: src.Length, Offset: dst}
		mapping[i] = fieldCopy{srcOffset: src.Offset, dstOffset: dst, length: src.Length}
		dst += src.Length
	}
	return &Projection{child: child, schema: schema, mapping: mapping, rowSize: dst}
}

func (p *Projection) Open() error {
	if err := p.child.Open(); err != nil {
		return err
	}
	p.pack()
	return nil
}

func (p *Projection) pack() {
	if p.child.AtEnd() {
		p.curRow = nil
		return
	}
	src := p.child.Current()
	out := make([]byte, p.rowSize)
	for _, m := range p.mapping {
		copy(out[m.dstOffset:m.dstOffset+m.length], src[m.srcOffset:m.srcOffset+m.length])
	}
	p.curRow = out
}

func (p *Projection) Next() error {
	if err := p.child.Next(); err != nil {
		return err
	}
	p.pack()
	return nil
}

func (p *Projection) AtEnd() bool     { return p.child.AtEnd() }
func (p *Projection) Current() []byte { return p.curRow }
func (p *Projection) CurrentRid() (record.Rid, bool) { return p.child.CurrentRid() }
func (p *Projection) Schema() []Column { return p.schema }
func (p *Projection) RowSize() int     { return p.rowSize }
func (p *Projection) TypeName() string { return "Project" }
func (p *Projection) Close() error     { return p.child.Close() }
