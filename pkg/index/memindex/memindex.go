// Package memindex is a reference in-memory implementation of
// index.Handle backed by github.com/google/btree. The real B+-tree
// manager lives on disk and is external to this core (spec §1); this
// package exists so IndexScan, Insert, Update, and Delete can be
// exercised end to end without a real page manager.
package memindex

import (
	"bytes"

	"github.com/google/btree"

	"github.com/relcore/relcore/pkg/index"
	"github.com/relcore/relcore/pkg/record"
)

type entry struct {
	key index.Key
	rid record.Rid
}

func less(a, b entry) bool {
	if c := bytes.Compare(a.key, b.key); c != 0 {
		return c < 0
	}
	if a.rid.PageNo != b.rid.PageNo {
		return a.rid.PageNo < b.rid.PageNo
	}
	return a.rid.SlotNo < b.rid.SlotNo
}

// Index is a google/btree-backed index.Handle. nextPage increments on
// every successful insert to stand in for the real page allocator.
type Index struct {
	tree     *btree.BTreeG[entry]
	nextPage index.PageID
	failNext bool // test hook: force the next InsertEntry to fail
}

func New() *Index {
	return &Index{tree: btree.NewG(32, less)}
}

// FailNextInsert makes the next InsertEntry call return index.Invalid,
// used to exercise the Insert executor's all-or-nothing rollback (spec
// §8 scenario 5 / P8).
func (ix *Index) FailNextInsert() { ix.failNext = true }

func (ix *Index) InsertEntry(key index.Key, rid record.Rid) (index.PageID, error) {
	if ix.failNext {
		ix.failNext = false
		return index.Invalid, nil
	}
	ix.tree.ReplaceOrInsert(entry{key: append(index.Key{}, key...), rid: rid})
	ix.nextPage++
	return ix.nextPage, nil
}

func (ix *Index) DeleteEntry(key index.Key) error {
	// Delete every entry with this exact key: a scan-and-remove over the
	// key's equal range, since duplicate keys (non-unique indexes) may
	// map to several rids.
	var toRemove []entry
	ix.tree.AscendGreaterOrEqual(entry{key: key}, func(e entry) bool {
		if !bytes.Equal(e.key, key) {
			return false
		}
		toRemove = append(toRemove, e)
		return true
	})
	for _, e := range toRemove {
		ix.tree.Delete(e)
	}
	return nil
}

func (ix *Index) LowerBound(key index.Key) index.Cursor {
	var entries []entry
	ix.tree.AscendGreaterOrEqual(entry{key: key}, func(e entry) bool {
		entries = append(entries, e)
		return true
	})
	return &cursor{entries: entries}
}

func (ix *Index) UpperBound(key index.Key) index.Cursor {
	var entries []entry
	ix.tree.AscendGreaterOrEqual(entry{key: key}, func(e entry) bool {
		if bytes.Equal(e.key, key) {
			return true
		}
		entries = append(entries, e)
		return true
	})
	return &cursor{entries: entries}
}

func (ix *Index) LeafBegin() index.Cursor {
	var entries []entry
	ix.tree.Ascend(func(e entry) bool {
		entries = append(entries, e)
		return true
	})
	return &cursor{entries: entries}
}

func (ix *Index) LeafEnd() index.Cursor {
	return &cursor{pos: 1, entries: nil}
}

type cursor struct {
	entries []entry
	pos     int
}

func (c *cursor) AtEnd() bool { return c.pos >= len(c.entries) }

func (c *cursor) Rid() record.Rid {
	if c.AtEnd() {
		return record.Rid{}
	}
	return c.entries[c.pos].rid
}

func (c *cursor) Next() {
	if !c.AtEnd() {
		c.pos++
	}
}
