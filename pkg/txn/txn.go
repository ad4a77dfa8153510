// Package txn defines the lock manager and transaction manager
// interfaces consumed by DML executors, plus a reference in-memory
// implementation of each. The real lock manager and WAL-backed
// transaction manager are external (spec §1, §6).
package txn

import "github.com/google/uuid"

// WriteRecord is an undo-log entry appended by the Insert, Update and
// Delete executors after each row mutation is applied (spec §6, §4.5.9).
type WriteRecord struct {
	StmtID uuid.UUID
	Kind   string // "INSERT" | "UPDATE" | "DELETE"
	Table  string
	Rid    any
	OldRow []byte
}

// Manager is the transaction manager interface (spec §6).
type Manager interface {
	AppendWriteRecord(rec WriteRecord)
}

// LockManager is the lock manager interface (spec §6).
type LockManager interface {
	LockSharedOnTable(txnID uuid.UUID, table string) error
	LockExclusiveOnTable(txnID uuid.UUID, table string) error
}

// MemManager is a reference Manager that just accumulates write records
// in memory, enough to drive undo bookkeeping in tests and the CLI.
type MemManager struct {
	records []WriteRecord
}

func NewMemManager() *MemManager { return &MemManager{} }

func (m *MemManager) AppendWriteRecord(rec WriteRecord) {
	m.records = append(m.records, rec)
}

func (m *MemManager) Records() []WriteRecord {
	out := make([]WriteRecord, len(m.records))
	copy(out, m.records)
	return out
}

// MemLockManager is a reference LockManager that grants every request
// unconditionally; used where the pipeline needs a LockManager to call
// but no real concurrency control is under test.
type MemLockManager struct{}

func NewMemLockManager() *MemLockManager { return &MemLockManager{} }

func (MemLockManager) LockSharedOnTable(uuid.UUID, string) error    { return nil }
func (MemLockManager) LockExclusiveOnTable(uuid.UUID, string) error { return nil }
