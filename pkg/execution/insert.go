package execution

import (
	"github.com/google/uuid"

	"github.com/relcore/relcore/pkg/catalog"
	"github.com/relcore/relcore/pkg/index"
	"github.com/relcore/relcore/pkg/record"
	"github.com/relcore/relcore/pkg/relerr"
	"github.com/relcore/relcore/pkg/txn"
	"github.com/relcore/relcore/pkg/types"
)

// Insert builds one row from Values, coerced and packed into the
// table's fixed layout, writes it to the heap file, and then maintains
// every index on the table in declared order (spec §4.5.8). A failed
// index insert unwinds all indexes already touched for this row in
// reverse order and deletes the heap record, so a row is never left
// half-indexed.
type Insert struct {
	table   string
	meta    catalog.TableMeta
	file    record.FileHandle
	indexes map[string]index.Handle
	values  []types.Value
	txnMgr  txn.Manager
	stmtID  uuid.UUID

	done bool
	rid  record.Rid
}

func NewInsert(table string, meta catalog.TableMeta, file record.FileHandle, indexes map[string]index.Handle, values []types.Value, txnMgr txn.Manager, stmtID uuid.UUID) *Insert {
	return &Insert{table: table, meta: meta, file: file, indexes: indexes, values: values, txnMgr: txnMgr, stmtID: stmtID}
}

func (in *Insert) Open() error {
	if len(in.values) != len(in.meta.Cols) {
		return relerr.New(relerr.InvalidValueCount, "table %q expects %d values, got %d", in.table, len(in.meta.Cols), len(in.values))
	}

	row := make([]byte, in.meta.RowSize())
	for i, col := range in.meta.Cols {
		v, err := in.values[i].CoerceTo(col.Kind)
		if err != nil {
			return relerr.Wrap(relerr.IncompatibleType, err, "column %q", col.Name)
		}
		copy(row[col.Offset:col.Offset+col.Length], v.RawBytes(col.Length))
	}

	rid, err := in.file.InsertRecord(row)
	if err != nil {
		return err
	}

	touched := make([]catalog.IndexMeta, 0, len(in.meta.Indexes))
	for _, ix := range in.meta.Indexes {
		key := buildKey(in.meta, ix, row)
		handle := in.indexes[ix.IndexName]
		pid, ierr := handle.InsertEntry(index.Key(key), rid)
		if ierr != nil || pid == index.Invalid {
			in.rollback(touched, row)
			_ = in.file.DeleteRecord(rid)
			if ierr != nil {
				return ierr
			}
			return relerr.New(relerr.Internal, "index %q rejected insert for table %q", ix.IndexName, in.table)
		}
		touched = append(touched, ix)
	}

	if in.txnMgr != nil {
		in.txnMgr.AppendWriteRecord(txn.WriteRecord{StmtID: in.stmtID, Kind: "INSERT", Table: in.table, Rid: rid})
	}

	in.rid = rid
	return nil
}

func (in *Insert) rollback(touched []catalog.IndexMeta, row []byte) {
	for i := len(touched) - 1; i >= 0; i-- {
		key := buildKey(in.meta, touched[i], row)
		_ = in.indexes[touched[i].IndexName].DeleteEntry(index.Key(key))
	}
}

func buildKey(meta catalog.TableMeta, ix catalog.IndexMeta, row []byte) []byte {
	var key []byte
	for _, colName := range ix.Columns {
		col, _ := meta.Col(colName)
		key = append(key, row[col.Offset:col.Offset+col.Length]...)
	}
	return key
}

func (in *Insert) Next() error { in.done = true; return nil }
func (in *Insert) AtEnd() bool { return in.done }
func (in *Insert) Current() []byte { return nil }
func (in *Insert) CurrentRid() (record.Rid, bool) { return in.rid, true }
func (in *Insert) Schema() []Column { return columnsFromMeta(in.meta) }
func (in *Insert) RowSize() int     { return in.meta.RowSize() }
func (in *Insert) TypeName() string { return "Insert" }
func (in *Insert) Close() error     { return nil }
