package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relcore/relcore/pkg/ast"
	"github.com/relcore/relcore/pkg/engine"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e, err := engine.New(engine.DefaultConfig())
	require.NoError(t, err)
	return e
}

func createTable(t *testing.T, e *engine.Engine, name string, cols ...ast.ColumnDecl) {
	t.Helper()
	_, err := e.Execute(&ast.CreateTableStatement{Table: name, Columns: cols})
	require.NoError(t, err)
}

func intCol(name string) ast.ColumnDecl { return ast.ColumnDecl{Name: name, Kind: 0} }

// TestSimpleFilterScenarioEndToEnd is spec §8 scenario 1, driven through
// the full Engine.Execute pipeline instead of building executors by hand.
func TestSimpleFilterScenarioEndToEnd(t *testing.T) {
	e := newTestEngine(t)
	createTable(t, e, "t", intCol("a"), intCol("b"))

	for _, row := range [][2]int32{{1, 10}, {2, 20}, {3, 30}} {
		_, err := e.Execute(&ast.InsertStatement{
			Table: "t",
			Values: []ast.Literal{
				{Kind: ast.IntLit, I: row[0]},
				{Kind: ast.IntLit, I: row[1]},
			},
		})
		require.NoError(t, err)
	}

	res, err := e.Execute(&ast.SelectStatement{
		From: ast.TableRef{Table: "t"},
		Where: []ast.Condition{
			{Left: ast.ColumnRef{Table: "t", Name: "a"}, Op: ast.GE, Right: ast.LitOperand(ast.Literal{Kind: ast.IntLit, I: 2})},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	require.Equal(t, 2, res.Stats.RowsReturned)
	require.Equal(t, 1, res.Stats.SeqScans)
}

func TestCreateIndexBackfillsExistingRows(t *testing.T) {
	e := newTestEngine(t)
	createTable(t, e, "k", intCol("x"), intCol("y"))
	for i := int32(1); i <= 3; i++ {
		_, err := e.Execute(&ast.InsertStatement{Table: "k", Values: []ast.Literal{
			{Kind: ast.IntLit, I: i}, {Kind: ast.IntLit, I: i * 10},
		}})
		require.NoError(t, err)
	}

	_, err := e.Execute(&ast.CreateIndexStatement{Table: "k", Columns: []string{"x"}})
	require.NoError(t, err)

	res, err := e.Execute(&ast.SelectStatement{
		From: ast.TableRef{Table: "k"},
		Where: []ast.Condition{
			{Left: ast.ColumnRef{Table: "k", Name: "x"}, Op: ast.GT, Right: ast.LitOperand(ast.Literal{Kind: ast.IntLit, I: 1})},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	require.Equal(t, 1, res.Stats.IndexScans)
	require.Equal(t, 0, res.Stats.SeqScans)
}

func TestUpdateAndDeleteAffectedRows(t *testing.T) {
	e := newTestEngine(t)
	createTable(t, e, "t", intCol("a"), intCol("b"))
	for _, row := range [][2]int32{{1, 10}, {2, 20}} {
		_, err := e.Execute(&ast.InsertStatement{Table: "t", Values: []ast.Literal{
			{Kind: ast.IntLit, I: row[0]}, {Kind: ast.IntLit, I: row[1]},
		}})
		require.NoError(t, err)
	}

	upd, err := e.Execute(&ast.UpdateStatement{
		Table: "t",
		Set:   []ast.SetClauseAST{{Col: ast.ColumnRef{Name: "b"}, Val: ast.Literal{Kind: ast.IntLit, I: 99}}},
		Where: []ast.Condition{{Left: ast.ColumnRef{Table: "t", Name: "a"}, Op: ast.EQ, Right: ast.LitOperand(ast.Literal{Kind: ast.IntLit, I: 1})}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, upd.AffectedRows)

	del, err := e.Execute(&ast.DeleteStatement{
		Table: "t",
		Where: []ast.Condition{{Left: ast.ColumnRef{Table: "t", Name: "a"}, Op: ast.EQ, Right: ast.LitOperand(ast.Literal{Kind: ast.IntLit, I: 2})}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, del.AffectedRows)

	res, err := e.Execute(&ast.SelectStatement{From: ast.TableRef{Table: "t"}})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
}

func TestExplainEndToEnd(t *testing.T) {
	e := newTestEngine(t)
	createTable(t, e, "t", intCol("x"))
	createTable(t, e, "u", intCol("y"))

	res, err := e.Execute(&ast.ExplainStatement{Inner: &ast.SelectStatement{
		Columns: []ast.ColumnRef{{Table: "a", Name: "x"}, {Table: "b", Name: "y"}},
		From:    ast.TableRef{Table: "t", Alias: "a"},
		Joins: []ast.JoinClause{{
			Table: ast.TableRef{Table: "u", Alias: "b"},
			On:    []ast.Condition{{Left: ast.ColumnRef{Table: "a", Name: "x"}, Op: ast.EQ, Right: ast.ColOperand(ast.ColumnRef{Table: "b", Name: "y"})}},
		}},
		Where: []ast.Condition{{Left: ast.ColumnRef{Table: "a", Name: "x"}, Op: ast.GT, Right: ast.LitOperand(ast.Literal{Kind: ast.IntLit, I: 1})}},
	}})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Contains(t, string(res.Rows[0]), "Project(columns=[a.x,b.y])")
	require.Contains(t, string(res.Rows[0]), "Join(tables=[t,u]")
}

func TestSetKnobTogglesJoinAlgorithm(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Execute(&ast.SetKnobStatement{Knob: "enable_nestloop", Value: false})
	require.NoError(t, err)
	_, err = e.Execute(&ast.SetKnobStatement{Knob: "enable_sortmerge", Value: true})
	require.NoError(t, err)

	createTable(t, e, "a", intCol("x"))
	createTable(t, e, "b", intCol("x"))
	res, err := e.Execute(&ast.SelectStatement{
		From:  ast.TableRef{Table: "a"},
		Joins: []ast.JoinClause{{Table: ast.TableRef{Table: "b"}, On: []ast.Condition{{Left: ast.ColumnRef{Table: "a", Name: "x"}, Op: ast.EQ, Right: ast.ColOperand(ast.ColumnRef{Table: "b", Name: "x"})}}}},
	})
	require.NoError(t, err)
	require.NotNil(t, res)
}

func TestShowTablesAndDescTable(t *testing.T) {
	e := newTestEngine(t)
	createTable(t, e, "t", intCol("a"))

	res, err := e.Execute(&ast.ShowTablesStatement{})
	require.NoError(t, err)
	require.Contains(t, string(res.Rows[0]), "t")

	res, err = e.Execute(&ast.DescTableStatement{Table: "t"})
	require.NoError(t, err)
	require.Contains(t, string(res.Rows[0]), "a")
}
