// Package index defines the B+-tree index manager interface consumed by
// IndexScan and the DML executors. The real B+-tree manager is external
// (spec §1); pkg/index/memindex supplies a reference implementation.
package index

import "github.com/relcore/relcore/pkg/record"

// PageID is the page identifier an index insert lands on, or Invalid on
// failure — spec §6: "insert_entry(key, txn) -> page_id or sentinel
// INVALID".
type PageID int64

const Invalid PageID = -1

// Key is the concatenation, in declared column order, of each indexed
// column's raw bytes extracted from a row (spec §3).
type Key []byte

// Cursor walks index entries in key order.
type Cursor interface {
	AtEnd() bool
	Rid() record.Rid
	Next()
}

// Handle is one table index's manager interface (spec §6).
type Handle interface {
	LowerBound(key Key) Cursor
	UpperBound(key Key) Cursor
	LeafBegin() Cursor
	LeafEnd() Cursor
	InsertEntry(key Key, rid record.Rid) (PageID, error)
	DeleteEntry(key Key) error
}
