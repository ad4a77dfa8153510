package query

import (
	"github.com/relcore/relcore/pkg/ast"
	"github.com/relcore/relcore/pkg/catalog"
	"github.com/relcore/relcore/pkg/relerr"
	"github.com/relcore/relcore/pkg/types"
)

// Analyze dispatches on the concrete ast.Statement type and produces a
// resolved Query, or an error from the taxonomy in pkg/relerr.
func Analyze(stmt ast.Statement, cat catalog.Provider) (*Query, error) {
	switch s := stmt.(type) {
	case *ast.SelectStatement:
		return analyzeSelect(s, cat, KindSelect)
	case *ast.InsertStatement:
		return analyzeInsert(s, cat)
	case *ast.UpdateStatement:
		return analyzeUpdate(s, cat)
	case *ast.DeleteStatement:
		return analyzeDelete(s, cat)
	case *ast.ExplainStatement:
		return analyzeExplain(s, cat)
	default:
		return nil, relerr.New(relerr.Internal, "analyzer: unsupported statement type %T", stmt)
	}
}

func analyzeExplain(s *ast.ExplainStatement, cat catalog.Provider) (*Query, error) {
	inner, ok := s.Inner.(*ast.SelectStatement)
	if !ok {
		return nil, relerr.New(relerr.Internal, "EXPLAIN only supports SELECT in this core")
	}
	q, err := analyzeSelect(inner, cat, KindExplain)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// resolver accumulates the alias map and ordered table list while walking
// a FROM/JOIN clause list.
type resolver struct {
	cat      catalog.Provider
	aliasMap map[string]string
	tables   []string // real names in reference order, deduplicated
	metas    map[string]catalog.TableMeta
}

func newResolver(cat catalog.Provider) *resolver {
	return &resolver{cat: cat, aliasMap: map[string]string{}, metas: map[string]catalog.TableMeta{}}
}

func (r *resolver) addRef(ref ast.TableRef) error {
	if !r.cat.IsTable(ref.Table) {
		return relerr.New(relerr.TableNotFound, "table %q does not exist", ref.Table)
	}
	meta, err := r.cat.GetTable(ref.Table)
	if err != nil {
		return err
	}
	r.metas[ref.Table] = meta

	key := ref.Alias
	if key == "" {
		key = ref.Table
	}
	if err := r.bind(key, ref.Table); err != nil {
		return err
	}
	if err := r.bind(ref.Table, ref.Table); err != nil {
		return err
	}
	found := false
	for _, t := range r.tables {
		if t == ref.Table {
			found = true
			break
		}
	}
	if !found {
		r.tables = append(r.tables, ref.Table)
	}
	return nil
}

func (r *resolver) bind(key, real string) error {
	if existing, ok := r.aliasMap[key]; ok && existing != real {
		return relerr.New(relerr.DuplicateAlias, "alias %q is already bound to table %q", key, existing)
	}
	r.aliasMap[key] = real
	return nil
}

// resolveColumn resolves a possibly-qualified column reference to a
// TabCol carrying the real table name (spec §4.1 column resolution).
func (r *resolver) resolveColumn(ref ast.ColumnRef) (TabCol, error) {
	if ref.Table != "" {
		real, ok := r.aliasMap[ref.Table]
		if !ok {
			return TabCol{}, relerr.New(relerr.TableNotFound, "unknown table or alias %q", ref.Table)
		}
		meta := r.metas[real]
		if _, ok := meta.Col(ref.Name); !ok {
			return TabCol{}, relerr.New(relerr.ColumnNotFound, "column %q not found in table %q", ref.Name, real)
		}
		return TabCol{Table: real, Name: ref.Name}, nil
	}
	var match *TabCol
	for _, t := range r.tables {
		if _, ok := r.metas[t].Col(ref.Name); ok {
			if match != nil {
				return TabCol{}, relerr.New(relerr.AmbiguousColumn, "column %q is ambiguous among %s and %s", ref.Name, match.Table, t)
			}
			tc := TabCol{Table: t, Name: ref.Name}
			match = &tc
		}
	}
	if match == nil {
		return TabCol{}, relerr.New(relerr.ColumnNotFound, "column %q not found in any referenced table", ref.Name)
	}
	return *match, nil
}

func (r *resolver) colMeta(tc TabCol) catalog.ColMeta {
	c, _ := r.metas[tc.Table].Col(tc.Name)
	return c
}

// resolveCondition normalizes one ast.Condition into a Condition, coercing
// literal right sides to the left column's type and requiring type
// compatibility for column-vs-column comparisons (spec §4.1 WHERE/JOIN ON
// normalization).
func (r *resolver) resolveCondition(c ast.Condition) (Condition, error) {
	lhs, err := r.resolveColumn(c.Left)
	if err != nil {
		return Condition{}, err
	}
	lhsMeta := r.colMeta(lhs)
	op := convertOp(c.Op)

	if c.Right.Lit != nil {
		val := literalToValue(*c.Right.Lit)
		coerced, err := val.CoerceTo(lhsMeta.Kind)
		if err != nil {
			return Condition{}, relerr.Wrap(relerr.IncompatibleType, err, "condition on %s.%s", lhs.Table, lhs.Name)
		}
		// Raw-initialize to the left column's declared length so a
		// FixedString literal shorter than the column can't produce a
		// false-positive prefix match under min-length comparison.
		raw := types.ReadValue(coerced.RawBytes(lhsMeta.Length), 0, lhsMeta.Length, lhsMeta.Kind)
		return Condition{Lhs: lhs, Op: op, RHSVal: &raw}, nil
	}

	rhs, err := r.resolveColumn(*c.Right.Col)
	if err != nil {
		return Condition{}, err
	}
	rhsMeta := r.colMeta(rhs)
	if !types.Coercible(lhsMeta.Kind, rhsMeta.Kind) {
		return Condition{}, relerr.New(relerr.IncompatibleType, "cannot compare %s.%s (%s) with %s.%s (%s)",
			lhs.Table, lhs.Name, lhsMeta.Kind, rhs.Table, rhs.Name, rhsMeta.Kind)
	}
	return Condition{Lhs: lhs, Op: op, RHSCol: &rhs}, nil
}

func analyzeSelect(s *ast.SelectStatement, cat catalog.Provider, kind StmtKind) (*Query, error) {
	r := newResolver(cat)
	if err := r.addRef(s.From); err != nil {
		return nil, err
	}
	for _, j := range s.Joins {
		if err := r.addRef(j.Table); err != nil {
			return nil, err
		}
	}

	q := &Query{Kind: kind, Tables: append([]string{}, r.tables...), AliasMap: r.aliasMap, AST: s}

	// WHERE first, then JOIN ON conditions appended after (spec §4.1).
	for _, c := range s.Where {
		rc, err := r.resolveCondition(c)
		if err != nil {
			return nil, err
		}
		q.Conds = append(q.Conds, rc)
	}
	for _, j := range s.Joins {
		for _, c := range j.On {
			rc, err := r.resolveCondition(c)
			if err != nil {
				return nil, err
			}
			q.Conds = append(q.Conds, rc)
		}
	}

	if len(s.Columns) == 0 {
		q.IsSelectStar = true
		for _, t := range r.tables {
			meta := r.metas[t]
			for _, c := range meta.Cols {
				q.Cols = append(q.Cols, TabCol{Table: t, Name: c.Name})
			}
		}
	} else {
		for _, ref := range s.Columns {
			tc, err := r.resolveColumn(ref)
			if err != nil {
				return nil, err
			}
			q.Cols = append(q.Cols, tc)
		}
	}

	for _, ob := range s.OrderBy {
		tc, err := r.resolveColumn(ob.Col)
		if err != nil {
			return nil, err
		}
		q.OrderBy = append(q.OrderBy, OrderKey{Col: tc, Desc: ob.Desc})
	}

	return q, nil
}

func analyzeInsert(s *ast.InsertStatement, cat catalog.Provider) (*Query, error) {
	if !cat.IsTable(s.Table) {
		return nil, relerr.New(relerr.TableNotFound, "table %q does not exist", s.Table)
	}
	q := &Query{Kind: KindInsert, Tables: []string{s.Table}, InsertTable: s.Table, AST: s}
	for _, v := range s.Values {
		q.Values = append(q.Values, literalToValue(v))
	}
	return q, nil
}

func analyzeUpdate(s *ast.UpdateStatement, cat catalog.Provider) (*Query, error) {
	r := newResolver(cat)
	if err := r.addRef(ast.TableRef{Table: s.Table}); err != nil {
		return nil, err
	}
	q := &Query{Kind: KindUpdate, Tables: []string{s.Table}, AliasMap: r.aliasMap, AST: s}

	for _, sc := range s.Set {
		tc, err := r.resolveColumn(sc.Col)
		if err != nil {
			return nil, err
		}
		meta := r.colMeta(tc)
		val := literalToValue(sc.Val)
		coerced, err := val.CoerceTo(meta.Kind)
		if err != nil {
			return nil, relerr.Wrap(relerr.IncompatibleType, err, "SET %s.%s", tc.Table, tc.Name)
		}
		q.SetClauses = append(q.SetClauses, SetClause{Target: tc, Value: coerced})
	}
	for _, c := range s.Where {
		rc, err := r.resolveCondition(c)
		if err != nil {
			return nil, err
		}
		q.Conds = append(q.Conds, rc)
	}
	return q, nil
}

func analyzeDelete(s *ast.DeleteStatement, cat catalog.Provider) (*Query, error) {
	r := newResolver(cat)
	if err := r.addRef(ast.TableRef{Table: s.Table}); err != nil {
		return nil, err
	}
	q := &Query{Kind: KindDelete, Tables: []string{s.Table}, AliasMap: r.aliasMap, AST: s}
	for _, c := range s.Where {
		rc, err := r.resolveCondition(c)
		if err != nil {
			return nil, err
		}
		q.Conds = append(q.Conds, rc)
	}
	return q, nil
}

func convertOp(op ast.Op) types.Op {
	switch op {
	case ast.EQ:
		return types.EQ
	case ast.NE:
		return types.NE
	case ast.LT:
		return types.LT
	case ast.LE:
		return types.LE
	case ast.GT:
		return types.GT
	case ast.GE:
		return types.GE
	default:
		return types.EQ
	}
}

func literalToValue(l ast.Literal) types.Value {
	switch l.Kind {
	case ast.IntLit:
		return types.IntValue(l.I)
	case ast.FloatLit:
		return types.FloatValue(l.F)
	default:
		return types.StrValue([]byte(l.S))
	}
}
