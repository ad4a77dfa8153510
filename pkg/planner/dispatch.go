package planner

import (
	"github.com/relcore/relcore/pkg/ast"
	"github.com/relcore/relcore/pkg/catalog"
	"github.com/relcore/relcore/pkg/plan"
	"github.com/relcore/relcore/pkg/query"
	"github.com/relcore/relcore/pkg/relerr"
	"github.com/relcore/relcore/pkg/types"
)

// BuildPlan is the single entry point from a parsed statement to a
// physical plan tree (spec §4.3.6 statement dispatch). DDL and utility
// statements translate directly without going through the analyzer,
// since they don't reference row data; DML/SELECT/EXPLAIN are first
// resolved into a query.Query and then planned.
func BuildPlan(stmt ast.Statement, cat catalog.Provider, cfg Config) (plan.Node, error) {
	switch s := stmt.(type) {
	case *ast.CreateTableStatement:
		return buildCreateTable(s), nil
	case *ast.DropTableStatement:
		return &plan.Ddl{Kind: plan.DdlDropTable, Table: s.Table}, nil
	case *ast.CreateIndexStatement:
		return &plan.Ddl{Kind: plan.DdlCreateIndex, Table: s.Table, ColNames: s.Columns}, nil
	case *ast.DropIndexStatement:
		return &plan.Ddl{Kind: plan.DdlDropIndex, Table: s.Table, ColNames: s.Columns}, nil

	case *ast.ShowTablesStatement:
		return &plan.Other{Kind: plan.OtherShowTables}, nil
	case *ast.DescTableStatement:
		return &plan.Other{Kind: plan.OtherDescTable, Table: s.Table}, nil
	case *ast.ShowIndexStatement:
		return &plan.Other{Kind: plan.OtherShowIndex, Table: s.Table}, nil
	case *ast.HelpStatement:
		return &plan.Other{Kind: plan.OtherHelp}, nil
	case *ast.TxnStatement:
		return &plan.Other{Kind: txnOtherKind(s.Kind)}, nil
	case *ast.SetKnobStatement:
		return &plan.SetKnob{Knob: s.Knob, Value: s.Value}, nil

	case *ast.InsertStatement:
		q, err := query.Analyze(s, cat)
		if err != nil {
			return nil, err
		}
		return &plan.Dml{Kind: plan.DmlInsert, Table: q.InsertTable, Values: q.Values}, nil

	case *ast.UpdateStatement:
		q, err := query.Analyze(s, cat)
		if err != nil {
			return nil, err
		}
		sub, err := Plan(q, cat, cfg)
		if err != nil {
			return nil, err
		}
		return &plan.Dml{Kind: plan.DmlUpdate, Sub: sub, Table: q.Tables[0], Conds: q.Conds, SetClauses: q.SetClauses}, nil

	case *ast.DeleteStatement:
		q, err := query.Analyze(s, cat)
		if err != nil {
			return nil, err
		}
		sub, err := Plan(q, cat, cfg)
		if err != nil {
			return nil, err
		}
		return &plan.Dml{Kind: plan.DmlDelete, Sub: sub, Table: q.Tables[0], Conds: q.Conds}, nil

	case *ast.SelectStatement:
		q, err := query.Analyze(s, cat)
		if err != nil {
			return nil, err
		}
		sub, err := Plan(q, cat, cfg)
		if err != nil {
			return nil, err
		}
		return &plan.Dml{Kind: plan.DmlSelect, Sub: sub, AliasMap: q.AliasMap, IsSelectStar: q.IsSelectStar}, nil

	case *ast.ExplainStatement:
		q, err := query.Analyze(s, cat)
		if err != nil {
			return nil, err
		}
		sub, err := Plan(q, cat, cfg)
		if err != nil {
			return nil, err
		}
		return &plan.Dml{Kind: plan.DmlExplain, Sub: sub, AliasMap: q.AliasMap, IsSelectStar: q.IsSelectStar}, nil

	default:
		return nil, relerr.New(relerr.Internal, "planner: unsupported statement %T", stmt)
	}
}

func buildCreateTable(s *ast.CreateTableStatement) *plan.Ddl {
	defs := make([]catalog.ColDef, len(s.Columns))
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		defs[i] = catalog.ColDef{Name: c.Name, Kind: types.Kind(c.Kind), Length: c.Length}
		names[i] = c.Name
	}
	return &plan.Ddl{Kind: plan.DdlCreateTable, Table: s.Table, ColNames: names, ColDefs: defs}
}

func txnOtherKind(k ast.TxnKind) plan.OtherKind {
	switch k {
	case ast.TxnCommit:
		return plan.OtherTxnCommit
	case ast.TxnAbort:
		return plan.OtherTxnAbort
	case ast.TxnRollback:
		return plan.OtherTxnRollback
	default:
		return plan.OtherTxnBegin
	}
}
