// Package execution implements the volcano-model iterators that realize
// scans, joins, filters, projection, sorting, and DML mutation (spec
// §4.5). Every executor satisfies the uniform Executor contract:
// Open positions the cursor at the first row (or AtEnd), Next advances
// it, Current is idempotent between Next calls, and Close releases any
// owned child executor and buffers.
package execution

import "github.com/relcore/relcore/pkg/record"

// Column is one field of an executor's output schema: the table it came
// from (for alias-aware EXPLAIN formatting), its name, storage kind,
// byte length, and byte offset within a produced row.
type Column struct {
	Table  string
	Name   string
	Kind   int // types.Kind, kept as int to avoid import noise in signatures
	Length int
	Offset int
}

// Executor is the capability interface every volcano iterator satisfies
// (spec §4.5, and spec §9's note preferring an interface over a sum type
// for executors since Go has zero-cost dynamic dispatch).
type Executor interface {
	// Open positions the executor at its first row, or marks it AtEnd if
	// there are none.
	Open() error
	// Next advances to the following row.
	Next() error
	// AtEnd reports whether iteration is exhausted.
	AtEnd() bool
	// Current returns the row at the cursor, or nil if AtEnd.
	Current() []byte
	// CurrentRid returns the Rid behind the current row. ok is false for
	// non-scan executors (Filter/Join/Project/Sort delegate to their
	// child when meaningful).
	CurrentRid() (record.Rid, bool)
	// Schema describes the executor's output row layout.
	Schema() []Column
	// RowSize is the byte length of rows this executor produces.
	RowSize() int
	// TypeName identifies the executor kind, used by EXPLAIN and logs.
	TypeName() string
	// Close releases the executor and its owned children.
	Close() error
}

// RowSizeOf sums a schema's column lengths (spec P1: schema stability).
func RowSizeOf(cols []Column) int {
	n := 0
	for _, c := range cols {
		n += c.Length
	}
	return n
}
