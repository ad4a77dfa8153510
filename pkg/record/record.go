// Package record defines the heap record-id and row types and the
// FileHandle interface consumed by the executors. The real heap file /
// buffer pool manager is external (spec §1); this package also supplies
// an in-memory reference FileHandle so the pipeline can be exercised and
// tested end to end.
package record

import (
	"sync"

	"github.com/relcore/relcore/pkg/relerr"
)

// Rid identifies a heap record by page and slot number.
type Rid struct {
	PageNo int32
	SlotNo int32
}

// Row is a fixed-length byte buffer plus the Rid it was read from (zero
// Rid if not yet inserted).
type Row struct {
	Rid  Rid
	Data []byte
}

// FileHandle is the record manager's per-table file interface (spec §6).
type FileHandle interface {
	InsertRecord(data []byte) (Rid, error)
	GetRecord(rid Rid) (Row, error)
	UpdateRecord(rid Rid, data []byte) error
	DeleteRecord(rid Rid) error
	Scan() RidIterator
}

// RidIterator walks every live Rid in a heap file in an unspecified but
// stable order.
type RidIterator interface {
	Next() (Rid, bool)
}

// MemFile is a reference in-memory FileHandle backed by a slot map. Slots
// are stable once assigned; deletion tombstones a slot rather than
// reusing it immediately, matching typical heap-file semantics.
type MemFile struct {
	mu      sync.RWMutex
	rowSize int
	slots   []slot
}

type slot struct {
	live bool
	data []byte
}

func NewMemFile(rowSize int) *MemFile {
	return &MemFile{rowSize: rowSize}
}

func (f *MemFile) InsertRecord(data []byte) (Rid, error) {
	if len(data) != f.rowSize {
		return Rid{}, relerr.New(relerr.Internal, "row size mismatch: want %d got %d", f.rowSize, len(data))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	f.slots = append(f.slots, slot{live: true, data: buf})
	return Rid{PageNo: 0, SlotNo: int32(len(f.slots) - 1)}, nil
}

func (f *MemFile) GetRecord(rid Rid) (Row, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	s, err := f.slotAt(rid)
	if err != nil {
		return Row{}, err
	}
	buf := make([]byte, len(s.data))
	copy(buf, s.data)
	return Row{Rid: rid, Data: buf}, nil
}

func (f *MemFile) UpdateRecord(rid Rid, data []byte) error {
	if len(data) != f.rowSize {
		return relerr.New(relerr.Internal, "row size mismatch: want %d got %d", f.rowSize, len(data))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := int(rid.SlotNo)
	if idx < 0 || idx >= len(f.slots) || !f.slots[idx].live {
		return relerr.New(relerr.Internal, "rid %+v not found", rid)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	f.slots[idx].data = buf
	return nil
}

func (f *MemFile) DeleteRecord(rid Rid) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := int(rid.SlotNo)
	if idx < 0 || idx >= len(f.slots) || !f.slots[idx].live {
		return relerr.New(relerr.Internal, "rid %+v not found", rid)
	}
	f.slots[idx].live = false
	f.slots[idx].data = nil
	return nil
}

func (f *MemFile) slotAt(rid Rid) (slot, error) {
	idx := int(rid.SlotNo)
	if idx < 0 || idx >= len(f.slots) || !f.slots[idx].live {
		return slot{}, relerr.New(relerr.Internal, "rid %+v not found", rid)
	}
	return f.slots[idx], nil
}

func (f *MemFile) Scan() RidIterator {
	f.mu.RLock()
	defer f.mu.RUnlock()
	live := make([]Rid, 0, len(f.slots))
	for i, s := range f.slots {
		if s.live {
			live = append(live, Rid{PageNo: 0, SlotNo: int32(i)})
		}
	}
	return &memRidIterator{rids: live}
}

type memRidIterator struct {
	rids []Rid
	pos  int
}

func (it *memRidIterator) Next() (Rid, bool) {
	if it.pos >= len(it.rids) {
		return Rid{}, false
	}
	r := it.rids[it.pos]
	it.pos++
	return r, true
}
