// Package plan defines the physical plan IR: a tagged-variant Node tree
// produced by pkg/planner and consumed by pkg/portal (spec §4.2).
//
// The source hierarchy uses runtime type identification on a class
// tree; here each concrete kind is its own Go struct implementing the
// small Node marker interface, which is the idiomatic Go analogue of a
// sum type (spec §9 design note).
package plan

import (
	"github.com/relcore/relcore/pkg/catalog"
	"github.com/relcore/relcore/pkg/query"
	"github.com/relcore/relcore/pkg/types"
)

// Node is any plan tree node. Each non-leaf node owns its children
// exclusively (spec §3 ownership note).
type Node interface {
	planNode()
}

// ScanAlgo selects the access path for a Scan node.
type ScanAlgo int

const (
	SeqScanAlgo ScanAlgo = iota
	IndexScanAlgo
)

// Scan is a base-table access node.
type Scan struct {
	Algo      ScanAlgo
	Table     string
	Conds     []query.Condition
	IndexCols []string // non-empty iff Algo == IndexScanAlgo
}

func (*Scan) planNode() {}

// Filter wraps a child with residual predicates the child couldn't
// absorb.
type Filter struct {
	Child Node
	Conds []query.Condition
}

func (*Filter) planNode() {}

// Project fixes the output schema of its child.
type Project struct {
	Child   Node
	Columns []query.TabCol
}

func (*Project) planNode() {}

// JoinAlgo selects the physical join algorithm.
type JoinAlgo int

const (
	NestLoop JoinAlgo = iota
	SortMerge
)

// Join is an inner equi/theta join over Left and Right.
type Join struct {
	Algo  JoinAlgo
	Left  Node
	Right Node
	Conds []query.Condition
}

func (*Join) planNode() {}

// Sort orders its child by a stable multi-key comparator.
type Sort struct {
	Child   Node
	Cols    []query.TabCol
	Desc    []bool
}

func (*Sort) planNode() {}

// DmlKind distinguishes the top-level statement shape.
type DmlKind int

const (
	DmlInsert DmlKind = iota
	DmlUpdate
	DmlDelete
	DmlSelect
	DmlExplain
)

// Dml is the top-level wrapper distinguishing statement shape (spec
// §4.2).
type Dml struct {
	Kind         DmlKind
	Sub          Node // nil for Insert
	Table        string
	Values       []types.Value
	Conds        []query.Condition
	SetClauses   []query.SetClause
	AliasMap     map[string]string
	IsSelectStar bool
}

func (*Dml) planNode() {}

// DdlKind distinguishes the DDL statement shape.
type DdlKind int

const (
	DdlCreateTable DdlKind = iota
	DdlDropTable
	DdlCreateIndex
	DdlDropIndex
)

// Ddl carries enough information for pkg/engine to dispatch directly to
// the catalog, bypassing the executor tree (spec §4.4).
type Ddl struct {
	Kind     DdlKind
	Table    string
	ColNames []string
	ColDefs  []catalog.ColDef
}

func (*Ddl) planNode() {}

// OtherKind enumerates the utility statements.
type OtherKind int

const (
	OtherShowTables OtherKind = iota
	OtherDescTable
	OtherShowIndex
	OtherHelp
	OtherTxnBegin
	OtherTxnCommit
	OtherTxnAbort
	OtherTxnRollback
)

type Other struct {
	Kind  OtherKind
	Table string
}

func (*Other) planNode() {}

// SetKnob implements `SET enable_nestloop|enable_sortmerge = bool`.
type SetKnob struct {
	Knob  string
	Value bool
}

func (*SetKnob) planNode() {}
