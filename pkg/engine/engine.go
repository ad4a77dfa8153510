// Package engine wires the catalog, record, index, and transaction
// layers together behind a single statement-execution entry point. It
// owns nothing about SQL syntax — callers hand it an already-parsed
// ast.Statement — so the CLI front end can plug in any ast.Parser.
package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/relcore/relcore/pkg/ast"
	"github.com/relcore/relcore/pkg/catalog"
	"github.com/relcore/relcore/pkg/execution"
	"github.com/relcore/relcore/pkg/index"
	"github.com/relcore/relcore/pkg/index/memindex"
	"github.com/relcore/relcore/pkg/plan"
	"github.com/relcore/relcore/pkg/planner"
	"github.com/relcore/relcore/pkg/portal"
	"github.com/relcore/relcore/pkg/record"
	"github.com/relcore/relcore/pkg/relerr"
	"github.com/relcore/relcore/pkg/txn"

	"github.com/relcore/relcore/internal/telemetry"
)

// Config carries the engine's runtime knobs. DataDir is accepted for
// interface parity with an on-disk deployment (spec §1's storage layer
// is external) but the reference engine only ever backs tables with
// pkg/record.MemFile and pkg/index/memindex, so it is not read.
type Config struct {
	DataDir         string
	EnableNestLoop  bool
	EnableSortMerge bool
	Dev             bool
}

func DefaultConfig() Config {
	return Config{EnableNestLoop: true, EnableSortMerge: false}
}

// Result is a statement's outcome: for SELECT/EXPLAIN, the produced
// rows and their schema; for INSERT/UPDATE/DELETE, the affected count.
// Stats surfaces lightweight per-statement counters — this is the
// SUPPLEMENTED FEATURES addition beyond spec.md's own scope.
type Result struct {
	Schema       []execution.Column
	Rows         [][]byte
	AffectedRows int
	Stats        Stats
}

// Stats reports coarse per-statement execution counters, grounded on
// the same statistics-collector idea spec's cost model gestures at
// (estimate_cardinality) but never wires up: what actually happened,
// not what was estimated.
type Stats struct {
	RowsReturned int
	IndexScans   int
	SeqScans     int
}

// Engine owns the catalog and per-table storage/index handles, and
// implements portal.Resources directly.
type Engine struct {
	mu   sync.Mutex
	cat  *catalog.Catalog
	meta catalog.MetaStore
	cfg  Config
	log  *telemetry.Logger
	txnM txn.Manager
	lock txn.LockManager

	files   map[string]record.FileHandle
	indexes map[string]map[string]index.Handle
}

func New(cfg Config) (*Engine, error) {
	log, err := telemetry.New(cfg.Dev)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cat:     catalog.New(),
		meta:    catalog.NopMetaStore{},
		cfg:     cfg,
		log:     log,
		txnM:    txn.NewMemManager(),
		lock:    txn.NewMemLockManager(),
		files:   make(map[string]record.FileHandle),
		indexes: make(map[string]map[string]index.Handle),
	}, nil
}

// WithMetaStore swaps in a persistent MetaStore for DDL mutations — the
// default Engine keeps every table only in memory (spec §1's on-disk
// catalog serializer is external to this core).
func (e *Engine) WithMetaStore(m catalog.MetaStore) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meta = m
}

func (e *Engine) Catalog() catalog.Provider              { return e.cat }
func (e *Engine) TxnManager() txn.Manager                { return e.txnM }
func (e *Engine) LockManager() txn.LockManager            { return e.lock }

func (e *Engine) FileFor(table string) (record.FileHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, ok := e.files[table]
	if !ok {
		return nil, relerr.New(relerr.TableNotFound, "no open file for table %q", table)
	}
	return f, nil
}

func (e *Engine) IndexesFor(table string) (map[string]index.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.indexes[table], nil
}

var _ portal.Resources = (*Engine)(nil)

// Execute runs one already-parsed statement end to end: builds the
// physical plan, dispatches DDL/utility plans straight against the
// catalog, otherwise translates the plan into an executor tree via
// pkg/portal and drains it (spec §4.4).
func (e *Engine) Execute(stmt ast.Statement) (*Result, error) {
	stmtID := uuid.New()
	e.log.StmtStart(fmt.Sprintf("%T", stmt), stmtID.String())

	p, err := planner.BuildPlan(stmt, e.cat, planner.Config{EnableNestLoop: e.cfg.EnableNestLoop, EnableSortMerge: e.cfg.EnableSortMerge})
	if err != nil {
		e.log.StmtError(stmtID.String(), err)
		return nil, err
	}

	res, err := e.dispatch(p, stmtID)
	if err != nil {
		e.log.StmtError(stmtID.String(), err)
		return nil, err
	}
	e.log.StmtCommit(stmtID.String(), res.AffectedRows+res.Stats.RowsReturned)
	return res, nil
}

func (e *Engine) dispatch(p plan.Node, stmtID uuid.UUID) (*Result, error) {
	switch n := p.(type) {
	case *plan.Ddl:
		return e.dispatchDdl(n)
	case *plan.Other:
		return e.dispatchOther(n)
	case *plan.SetKnob:
		return e.dispatchSetKnob(n)
	case *plan.Dml:
		return e.dispatchDml(n, stmtID)
	default:
		return nil, relerr.New(relerr.Internal, "engine: unsupported plan node %T", p)
	}
}

func (e *Engine) dispatchSetKnob(n *plan.SetKnob) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch n.Knob {
	case "enable_nestloop":
		e.cfg.EnableNestLoop = n.Value
	case "enable_sortmerge":
		e.cfg.EnableSortMerge = n.Value
	default:
		return nil, relerr.New(relerr.Internal, "unknown knob %q", n.Knob)
	}
	return &Result{}, nil
}

func (e *Engine) dispatchDdl(n *plan.Ddl) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch n.Kind {
	case plan.DdlCreateTable:
		if err := e.cat.CreateTable(n.Table, n.ColDefs); err != nil {
			return nil, err
		}
		meta, err := e.cat.GetTable(n.Table)
		if err != nil {
			return nil, err
		}
		if err := e.meta.SaveTable(meta); err != nil {
			return nil, err
		}
		e.files[n.Table] = record.NewMemFile(meta.RowSize())
		e.indexes[n.Table] = make(map[string]index.Handle)
		return &Result{}, nil

	case plan.DdlDropTable:
		if err := e.cat.DropTable(n.Table); err != nil {
			return nil, err
		}
		if err := e.meta.DropTable(n.Table); err != nil {
			return nil, err
		}
		delete(e.files, n.Table)
		delete(e.indexes, n.Table)
		return &Result{}, nil

	case plan.DdlCreateIndex:
		return &Result{}, e.createIndex(n.Table, n.ColNames)

	case plan.DdlDropIndex:
		if err := e.cat.DropIndex(n.Table, n.ColNames); err != nil {
			return nil, err
		}
		meta, err := e.cat.GetTable(n.Table)
		if err == nil {
			// index name already removed from catalog; drop the handle too
			// by rebuilding the surviving set from the remaining IndexMeta.
			surviving := make(map[string]index.Handle, len(meta.Indexes))
			for _, ix := range meta.Indexes {
				if h, ok := e.indexes[n.Table][ix.IndexName]; ok {
					surviving[ix.IndexName] = h
				}
			}
			e.indexes[n.Table] = surviving
			if err := e.meta.SaveTable(meta); err != nil {
				return nil, err
			}
		}
		return &Result{}, nil

	default:
		return nil, relerr.New(relerr.Internal, "engine: unsupported ddl kind %v", n.Kind)
	}
}

// createIndex registers the index in the catalog, allocates a fresh
// memindex.Index, and backfills it from every row already in the
// table's heap file.
func (e *Engine) createIndex(table string, cols []string) error {
	if err := e.cat.CreateIndex(table, cols); err != nil {
		return err
	}
	meta, err := e.cat.GetTable(table)
	if err != nil {
		return err
	}
	ixMeta, _ := meta.GetIndexMeta(cols)
	handle := memindex.New()
	e.indexes[table][ixMeta.IndexName] = handle
	if err := e.meta.SaveTable(meta); err != nil {
		return err
	}

	file := e.files[table]
	iter := file.Scan()
	for {
		rid, ok := iter.Next()
		if !ok {
			break
		}
		row, err := file.GetRecord(rid)
		if err != nil {
			return err
		}
		key := buildIndexKey(meta, ixMeta, row.Data)
		if _, err := handle.InsertEntry(index.Key(key), rid); err != nil {
			return err
		}
	}
	return nil
}

func buildIndexKey(meta catalog.TableMeta, ix catalog.IndexMeta, row []byte) []byte {
	var key []byte
	for _, name := range ix.Columns {
		col, _ := meta.Col(name)
		key = append(key, row[col.Offset:col.Offset+col.Length]...)
	}
	return key
}

func (e *Engine) dispatchOther(n *plan.Other) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch n.Kind {
	case plan.OtherShowTables:
		return &Result{Rows: stringRows(e.cat.TableNames())}, nil
	case plan.OtherDescTable:
		meta, err := e.cat.GetTable(n.Table)
		if err != nil {
			return nil, err
		}
		var rows [][]byte
		for _, c := range meta.Cols {
			rows = append(rows, []byte(c.Name+" "+c.Kind.String()))
		}
		return &Result{Rows: rows}, nil
	case plan.OtherShowIndex:
		meta, err := e.cat.GetTable(n.Table)
		if err != nil {
			return nil, err
		}
		var names []string
		for _, ix := range meta.Indexes {
			names = append(names, ix.IndexName)
		}
		return &Result{Rows: stringRows(names)}, nil
	case plan.OtherHelp:
		return &Result{Rows: [][]byte{[]byte("relcore: a small volcano-model SQL core")}}, nil
	case plan.OtherTxnBegin, plan.OtherTxnCommit, plan.OtherTxnAbort, plan.OtherTxnRollback:
		// transaction boundaries are managed by the external lock/txn
		// managers (spec §6); the reference engine just acknowledges them.
		return &Result{}, nil
	default:
		return nil, relerr.New(relerr.Internal, "engine: unsupported other kind %v", n.Kind)
	}
}

func stringRows(ss []string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

func (e *Engine) dispatchDml(n *plan.Dml, stmtID uuid.UUID) (*Result, error) {
	exec, err := portal.Build(n, e, stmtID)
	if err != nil {
		return nil, err
	}

	if n.Kind == plan.DmlExplain {
		if err := exec.Open(); err != nil {
			return nil, err
		}
		return &Result{Rows: [][]byte{exec.Current()}}, nil
	}

	if err := exec.Open(); err != nil {
		return nil, err
	}

	stats := countScans(n.Sub)
	res := &Result{Schema: exec.Schema(), Stats: stats}

	switch n.Kind {
	case plan.DmlInsert, plan.DmlUpdate, plan.DmlDelete:
		res.AffectedRows = affectedCount(n, exec)
	default:
		for !exec.AtEnd() {
			row := exec.Current()
			buf := make([]byte, len(row))
			copy(buf, row)
			res.Rows = append(res.Rows, buf)
			res.Stats.RowsReturned++
			if err := exec.Next(); err != nil {
				return nil, err
			}
		}
	}
	return res, exec.Close()
}

// affectedCount reports how many rows a mutating executor touched.
// Insert always touches exactly one row; Update/Delete already consumed
// their whole rid vector inside Open, so AtEnd is immediately true and
// the count comes from the executor's AffectedRows method (the length of
// the rid vector the portal drained for it) instead.
func affectedCount(n *plan.Dml, exec execution.Executor) int {
	if n.Kind == plan.DmlInsert {
		return 1
	}
	if u, ok := exec.(interface{ AffectedRows() int }); ok {
		return u.AffectedRows()
	}
	return 0
}

// countScans walks a physical plan subtree tallying which scan
// algorithm was chosen per base table (Stats.IndexScans/SeqScans).
func countScans(n plan.Node) Stats {
	var s Stats
	var walk func(plan.Node)
	walk = func(n plan.Node) {
		switch v := n.(type) {
		case *plan.Scan:
			if v.Algo == plan.IndexScanAlgo {
				s.IndexScans++
			} else {
				s.SeqScans++
			}
		case *plan.Filter:
			walk(v.Child)
		case *plan.Project:
			walk(v.Child)
		case *plan.Sort:
			walk(v.Child)
		case *plan.Join:
			walk(v.Left)
			walk(v.Right)
		}
	}
	if n != nil {
		walk(n)
	}
	return s
}
