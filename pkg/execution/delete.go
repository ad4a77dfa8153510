package execution

import (
	"github.com/google/uuid"

	"github.com/relcore/relcore/pkg/catalog"
	"github.com/relcore/relcore/pkg/index"
	"github.com/relcore/relcore/pkg/record"
	"github.com/relcore/relcore/pkg/txn"
)

// Delete takes a materialized rid vector and removes each row from the
// heap file, cleaning up every index entry first. Indexes are always
// kept consistent with the heap on delete — a stale index entry pointing
// at a freed slot is worse than the extra DeleteEntry call it costs to
// avoid one.
type Delete struct {
	table   string
	meta    catalog.TableMeta
	file    record.FileHandle
	indexes map[string]index.Handle
	rids    []record.Rid
	txnMgr  txn.Manager
	stmtID  uuid.UUID
}

func NewDelete(table string, meta catalog.TableMeta, file record.FileHandle, indexes map[string]index.Handle, rids []record.Rid, txnMgr txn.Manager, stmtID uuid.UUID) *Delete {
	return &Delete{table: table, meta: meta, file: file, indexes: indexes, rids: rids, txnMgr: txnMgr, stmtID: stmtID}
}

func (d *Delete) Open() error {
	for _, rid := range d.rids {
		row, err := d.file.GetRecord(rid)
		if err != nil {
			return err
		}
		for _, ix := range d.meta.Indexes {
			key := buildKey(d.meta, ix, row.Data)
			if err := d.indexes[ix.IndexName].DeleteEntry(index.Key(key)); err != nil {
				return err
			}
		}
		if err := d.file.DeleteRecord(rid); err != nil {
			return err
		}
		if d.txnMgr != nil {
			d.txnMgr.AppendWriteRecord(txn.WriteRecord{StmtID: d.stmtID, Kind: "DELETE", Table: d.table, Rid: rid, OldRow: row.Data})
		}
	}
	return nil
}

// AffectedRows is the size of the rid vector this Delete was
// constructed with.
func (d *Delete) AffectedRows() int { return len(d.rids) }

func (d *Delete) Next() error { return nil }
func (d *Delete) AtEnd() bool { return true }
func (d *Delete) Current() []byte { return nil }
func (d *Delete) CurrentRid() (record.Rid, bool) { return record.Rid{}, false }
func (d *Delete) Schema() []Column { return columnsFromMeta(d.meta) }
func (d *Delete) RowSize() int     { return d.meta.RowSize() }
func (d *Delete) TypeName() string { return "Delete" }
func (d *Delete) Close() error     { return nil }
