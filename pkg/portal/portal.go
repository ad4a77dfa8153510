// Package portal translates a physical plan tree into an executor tree
// and drives top-level statement dispatch (spec §4.4). DDL and utility
// plans never reach an executor: the dispatcher runs them straight
// against the catalog.
package portal

import (
	"github.com/google/uuid"

	"github.com/relcore/relcore/pkg/catalog"
	"github.com/relcore/relcore/pkg/execution"
	"github.com/relcore/relcore/pkg/index"
	"github.com/relcore/relcore/pkg/plan"
	"github.com/relcore/relcore/pkg/record"
	"github.com/relcore/relcore/pkg/relerr"
	"github.com/relcore/relcore/pkg/txn"
)

// Resources is everything the portal needs from the storage/txn layer
// to materialize executors for one table at a time. The engine supplies
// the concrete implementation; tests can supply an in-memory one built
// directly from pkg/record, pkg/index/memindex, and pkg/txn.
type Resources interface {
	Catalog() catalog.Provider
	FileFor(table string) (record.FileHandle, error)
	IndexesFor(table string) (map[string]index.Handle, error)
	TxnManager() txn.Manager
	LockManager() txn.LockManager
}

// Build translates a top-level Dml plan node into a runnable executor,
// or, for INSERT, returns one that performs the write on Open. UPDATE
// and DELETE drain their child scan/filter subtree into a rid vector
// before constructing the mutating executor (spec §4.4).
func Build(node *plan.Dml, res Resources, stmtID uuid.UUID) (execution.Executor, error) {
	switch node.Kind {
	case plan.DmlInsert:
		return buildInsert(node, res, stmtID)
	case plan.DmlUpdate:
		return buildUpdate(node, res, stmtID)
	case plan.DmlDelete:
		return buildDelete(node, res, stmtID)
	case plan.DmlSelect:
		return buildTree(node.Sub, res)
	case plan.DmlExplain:
		return execution.NewExplainExecutor(node.Sub, node.AliasMap), nil
	default:
		return nil, relerr.New(relerr.Internal, "portal: unsupported Dml kind %v", node.Kind)
	}
}

func buildInsert(node *plan.Dml, res Resources, stmtID uuid.UUID) (execution.Executor, error) {
	if err := res.LockManager().LockSharedOnTable(stmtID, node.Table); err != nil {
		return nil, err
	}
	meta, err := res.Catalog().GetTable(node.Table)
	if err != nil {
		return nil, err
	}
	file, err := res.FileFor(node.Table)
	if err != nil {
		return nil, err
	}
	idx, err := res.IndexesFor(node.Table)
	if err != nil {
		return nil, err
	}
	return execution.NewInsert(node.Table, meta, file, idx, node.Values, res.TxnManager(), stmtID), nil
}

func buildUpdate(node *plan.Dml, res Resources, stmtID uuid.UUID) (execution.Executor, error) {
	if err := res.LockManager().LockSharedOnTable(stmtID, node.Table); err != nil {
		return nil, err
	}
	rids, err := drainRids(node.Sub, res)
	if err != nil {
		return nil, err
	}
	meta, err := res.Catalog().GetTable(node.Table)
	if err != nil {
		return nil, err
	}
	file, err := res.FileFor(node.Table)
	if err != nil {
		return nil, err
	}
	idx, err := res.IndexesFor(node.Table)
	if err != nil {
		return nil, err
	}
	return execution.NewUpdate(node.Table, meta, file, idx, rids, node.SetClauses, res.TxnManager(), stmtID), nil
}

func buildDelete(node *plan.Dml, res Resources, stmtID uuid.UUID) (execution.Executor, error) {
	if err := res.LockManager().LockSharedOnTable(stmtID, node.Table); err != nil {
		return nil, err
	}
	rids, err := drainRids(node.Sub, res)
	if err != nil {
		return nil, err
	}
	meta, err := res.Catalog().GetTable(node.Table)
	if err != nil {
		return nil, err
	}
	file, err := res.FileFor(node.Table)
	if err != nil {
		return nil, err
	}
	idx, err := res.IndexesFor(node.Table)
	if err != nil {
		return nil, err
	}
	return execution.NewDelete(node.Table, meta, file, idx, rids, res.TxnManager(), stmtID), nil
}

// drainRids builds the executor tree beneath an UPDATE/DELETE plan and
// runs it to completion, collecting each row's Rid (spec §4.4).
func drainRids(sub plan.Node, res Resources) ([]record.Rid, error) {
	exec, err := buildTree(sub, res)
	if err != nil {
		return nil, err
	}
	if err := exec.Open(); err != nil {
		return nil, err
	}
	var rids []record.Rid
	for !exec.AtEnd() {
		if rid, ok := exec.CurrentRid(); ok {
			rids = append(rids, rid)
		}
		if err := exec.Next(); err != nil {
			return nil, err
		}
	}
	return rids, exec.Close()
}

// buildTree recursively translates a query-shaped (Scan/Filter/
// Project/Join/Sort) subtree into its executor counterpart.
func buildTree(node plan.Node, res Resources) (execution.Executor, error) {
	switch n := node.(type) {
	case *plan.Scan:
		return buildScan(n, res)

	case *plan.Filter:
		child, err := buildTree(n.Child, res)
		if err != nil {
			return nil, err
		}
		return execution.NewFilter(child, n.Conds), nil

	case *plan.Project:
		child, err := buildTree(n.Child, res)
		if err != nil {
			return nil, err
		}
		return execution.NewProjection(child, n.Columns), nil

	case *plan.Join:
		left, err := buildTree(n.Left, res)
		if err != nil {
			return nil, err
		}
		right, err := buildTree(n.Right, res)
		if err != nil {
			return nil, err
		}
		switch n.Algo {
		case plan.SortMerge:
			return execution.NewSortMergeJoin(left, right, n.Conds), nil
		default:
			return execution.NewNestedLoopJoin(left, right, n.Conds), nil
		}

	case *plan.Sort:
		child, err := buildTree(n.Child, res)
		if err != nil {
			return nil, err
		}
		return execution.NewSort(child, n.Cols, n.Desc), nil

	default:
		return nil, relerr.New(relerr.Internal, "portal: unsupported plan node %T", node)
	}
}

func buildScan(n *plan.Scan, res Resources) (execution.Executor, error) {
	meta, err := res.Catalog().GetTable(n.Table)
	if err != nil {
		return nil, err
	}
	file, err := res.FileFor(n.Table)
	if err != nil {
		return nil, err
	}
	if n.Algo == plan.IndexScanAlgo {
		idxByName, err := res.IndexesFor(n.Table)
		if err != nil {
			return nil, err
		}
		ixMeta, ok := meta.GetIndexMeta(n.IndexCols)
		if !ok {
			return nil, relerr.New(relerr.IndexNotFound, "no index on %v for table %q", n.IndexCols, n.Table)
		}
		handle, ok := idxByName[ixMeta.IndexName]
		if !ok {
			return nil, relerr.New(relerr.IndexNotFound, "index %q not open for table %q", ixMeta.IndexName, n.Table)
		}
		return execution.NewIndexScan(n.Table, meta, file, handle, ixMeta.Columns, n.Conds), nil
	}
	return execution.NewSeqScan(n.Table, meta, file, n.Conds), nil
}
