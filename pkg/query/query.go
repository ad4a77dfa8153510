// Package query implements the analyzer: it consumes an ast.Statement and
// a catalog.Provider and produces a resolved Query value (spec §4.1).
package query

import (
	"github.com/relcore/relcore/pkg/ast"
	"github.com/relcore/relcore/pkg/types"
)

// TabCol is a column reference that has been resolved to its real owning
// table name (never an alias).
type TabCol struct {
	Table string
	Name  string
}

// Condition is a resolved binary predicate. Exactly one of RHSVal/RHSCol
// is set.
type Condition struct {
	Lhs    TabCol
	Op     types.Op
	RHSVal *types.Value
	RHSCol *TabCol
}

// IsLiteral reports whether the condition's right side is a literal
// value rather than a column reference.
func (c Condition) IsLiteral() bool { return c.RHSVal != nil }

// SetClause is one `col = value` target of an UPDATE, with the new value
// already coerced to the target column's type.
type SetClause struct {
	Target TabCol
	Value  types.Value
}

// OrderKey is a single resolved ORDER BY key.
type OrderKey struct {
	Col  TabCol
	Desc bool
}

// StmtKind distinguishes the statement shape a Query was built from.
type StmtKind int

const (
	KindSelect StmtKind = iota
	KindInsert
	KindUpdate
	KindDelete
	KindExplain
)

// Query is the analyzer's resolved output (spec §3).
type Query struct {
	Kind         StmtKind
	Tables       []string // real table names, in FROM/JOIN order
	Cols         []TabCol // projection columns, in requested order
	Conds        []Condition
	SetClauses   []SetClause
	Values       []types.Value // INSERT values, in declared order
	AliasMap     map[string]string
	IsSelectStar bool
	OrderBy      []OrderKey
	InsertTable  string
	AST          ast.Statement
}
