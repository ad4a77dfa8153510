package execution

import (
	"bytes"

	"github.com/google/uuid"

	"github.com/relcore/relcore/pkg/catalog"
	"github.com/relcore/relcore/pkg/index"
	"github.com/relcore/relcore/pkg/query"
	"github.com/relcore/relcore/pkg/record"
	"github.com/relcore/relcore/pkg/relerr"
	"github.com/relcore/relcore/pkg/txn"
)

// Update takes a materialized rid vector — collected by the portal from
// the scan/filter subtree beneath the UPDATE plan — and rewrites each
// row in place (spec §4.5.9). An index is only touched when at least
// one of its columns is a SET target and the new key bytes actually
// differ from the old ones (P9: untouched indexes stay untouched).
type Update struct {
	table   string
	meta    catalog.TableMeta
	file    record.FileHandle
	indexes map[string]index.Handle
	rids    []record.Rid
	set     []query.SetClause
	txnMgr  txn.Manager
	stmtID  uuid.UUID
}

func NewUpdate(table string, meta catalog.TableMeta, file record.FileHandle, indexes map[string]index.Handle, rids []record.Rid, set []query.SetClause, txnMgr txn.Manager, stmtID uuid.UUID) *Update {
	return &Update{table: table, meta: meta, file: file, indexes: indexes, rids: rids, set: set, txnMgr: txnMgr, stmtID: stmtID}
}

func (u *Update) Open() error {
	for _, rid := range u.rids {
		if err := u.applyOne(rid); err != nil {
			return err
		}
	}
	return nil
}

func (u *Update) applyOne(rid record.Rid) error {
	old, err := u.file.GetRecord(rid)
	if err != nil {
		return err
	}
	newRow := make([]byte, len(old.Data))
	copy(newRow, old.Data)

	for _, sc := range u.set {
		col, ok := u.meta.Col(sc.Target.Name)
		if !ok {
			return relerr.New(relerr.ColumnNotFound, "column %q not found in table %q", sc.Target.Name, u.table)
		}
		v, cerr := sc.Value.CoerceTo(col.Kind)
		if cerr != nil {
			return relerr.Wrap(relerr.IncompatibleType, cerr, "column %q", col.Name)
		}
		copy(newRow[col.Offset:col.Offset+col.Length], v.RawBytes(col.Length))
	}

	touchedTargets := make(map[string]bool, len(u.set))
	for _, sc := range u.set {
		touchedTargets[sc.Target.Name] = true
	}

	var applied []indexChange

	for _, ix := range u.meta.Indexes {
		if !indexTouchesAny(ix, touchedTargets) {
			continue
		}
		oldKey := buildKey(u.meta, ix, old.Data)
		newKey := buildKey(u.meta, ix, newRow)
		if bytes.Equal(oldKey, newKey) {
			continue
		}
		handle := u.indexes[ix.IndexName]
		if derr := handle.DeleteEntry(index.Key(oldKey)); derr != nil {
			u.rollback(applied, rid)
			return derr
		}
		pid, ierr := handle.InsertEntry(index.Key(newKey), rid)
		if ierr != nil || pid == index.Invalid {
			_, _ = handle.InsertEntry(index.Key(oldKey), rid)
			u.rollback(applied, rid)
			if ierr != nil {
				return ierr
			}
			return relerr.New(relerr.Internal, "index %q rejected update for table %q", ix.IndexName, u.table)
		}
		applied = append(applied, indexChange{ix: ix, oldKey: oldKey, newKey: newKey})
	}

	if err := u.file.UpdateRecord(rid, newRow); err != nil {
		return err
	}
	if u.txnMgr != nil {
		u.txnMgr.AppendWriteRecord(txn.WriteRecord{StmtID: u.stmtID, Kind: "UPDATE", Table: u.table, Rid: rid, OldRow: old.Data})
	}
	return nil
}

type indexChange struct {
	ix             catalog.IndexMeta
	oldKey, newKey []byte
}

// rollback undoes already-applied index swaps for this row, in reverse
// order, after a later index in the same tuple rejected its insert.
func (u *Update) rollback(applied []indexChange, rid record.Rid) {
	for i := len(applied) - 1; i >= 0; i-- {
		c := applied[i]
		handle := u.indexes[c.ix.IndexName]
		_ = handle.DeleteEntry(index.Key(c.newKey))
		_, _ = handle.InsertEntry(index.Key(c.oldKey), rid)
	}
}

func indexTouchesAny(ix catalog.IndexMeta, targets map[string]bool) bool {
	for _, c := range ix.Columns {
		if targets[c] {
			return true
		}
	}
	return false
}

// AffectedRows is the size of the rid vector this Update was
// constructed with; every row in it is unconditionally rewritten.
func (u *Update) AffectedRows() int { return len(u.rids) }

func (u *Update) Next() error { return nil }
func (u *Update) AtEnd() bool { return true }
func (u *Update) Current() []byte { return nil }
func (u *Update) CurrentRid() (record.Rid, bool) { return record.Rid{}, false }
func (u *Update) Schema() []Column { return columnsFromMeta(u.meta) }
func (u *Update) RowSize() int     { return u.meta.RowSize() }
func (u *Update) TypeName() string { return "Update" }
func (u *Update) Close() error     { return nil }
