// Package catalog defines table and index metadata and a reference
// in-memory Provider implementation. The real on-disk catalog
// serializer (db.meta, spec §6) is external; this package only defines
// the read interface the analyzer, planner, and executors consume, plus
// a Catalog usable to drive them in tests and the CLI front end.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/relcore/relcore/pkg/relerr"
	"github.com/relcore/relcore/pkg/types"
)

// ColMeta describes one column: its owning table, name, storage kind,
// byte length, byte offset within a row, and whether any index covers it.
type ColMeta struct {
	Table     string
	Name      string
	Kind      types.Kind
	Length    int
	Offset    int
	HasIndex  bool
}

// IndexMeta describes an index: the ordered list of indexed columns (by
// name, in declared order), the total key length, and the derived
// on-disk index name.
type IndexMeta struct {
	Table      string
	Columns    []string
	KeyLength  int
	IndexName  string
}

// ColumnSet returns Columns as a set for signature comparisons.
func (im IndexMeta) ColumnSet() map[string]struct{} {
	set := make(map[string]struct{}, len(im.Columns))
	for _, c := range im.Columns {
		set[c] = struct{}{}
	}
	return set
}

// SameColumns reports whether im covers exactly the given column set,
// order-independent.
func (im IndexMeta) SameColumns(cols []string) bool {
	if len(cols) != len(im.Columns) {
		return false
	}
	set := im.ColumnSet()
	for _, c := range cols {
		if _, ok := set[c]; !ok {
			return false
		}
	}
	return true
}

// TableMeta is a table's full schema: ordered columns and index list.
type TableMeta struct {
	Name    string
	Cols    []ColMeta
	Indexes []IndexMeta
}

// RowSize is the sum of all column byte lengths.
func (t TableMeta) RowSize() int {
	size := 0
	for _, c := range t.Cols {
		size += c.Length
	}
	return size
}

// Col looks up a column by name, returning ok=false if absent.
func (t TableMeta) Col(name string) (ColMeta, bool) {
	for _, c := range t.Cols {
		if c.Name == name {
			return c, true
		}
	}
	return ColMeta{}, false
}

// IsIndex reports whether an index exists whose column set exactly
// matches cols (order-independent), mirroring spec §6's
// TableMeta.is_index.
func (t TableMeta) IsIndex(cols []string) bool {
	for _, ix := range t.Indexes {
		if ix.SameColumns(cols) {
			return true
		}
	}
	return false
}

// GetIndexMeta returns the index whose column set matches cols.
func (t TableMeta) GetIndexMeta(cols []string) (IndexMeta, bool) {
	for _, ix := range t.Indexes {
		if ix.SameColumns(cols) {
			return ix, true
		}
	}
	return IndexMeta{}, false
}

// Provider is the catalog read interface consumed by the analyzer,
// planner, and executors (spec §6).
type Provider interface {
	IsTable(name string) bool
	GetTable(name string) (TableMeta, error)
	TableNames() []string
}

// Catalog is a reference in-memory Provider plus the mutation methods
// used by DDL dispatch (pkg/engine bypasses the executor tree for DDL
// and calls these directly, per spec §4.4).
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]TableMeta
}

func New() *Catalog {
	return &Catalog{tables: make(map[string]TableMeta)}
}

func (c *Catalog) IsTable(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.tables[name]
	return ok
}

func (c *Catalog) GetTable(name string) (TableMeta, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[name]
	if !ok {
		return TableMeta{}, relerr.New(relerr.TableNotFound, "table %q does not exist", name)
	}
	return t, nil
}

func (c *Catalog) TableNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tables))
	for n := range c.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ColDef is a column declaration used by CreateTable.
type ColDef struct {
	Name   string
	Kind   types.Kind
	Length int
}

// CreateTable registers a new table with monotonically increasing,
// immutable byte offsets computed from colDefs in order.
func (c *Catalog) CreateTable(name string, colDefs []ColDef) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tables[name]; ok {
		return relerr.New(relerr.Internal, "table %q already exists", name)
	}
	seen := make(map[string]struct{}, len(colDefs))
	cols := make([]ColMeta, 0, len(colDefs))
	offset := 0
	for _, cd := range colDefs {
		if _, dup := seen[cd.Name]; dup {
			return relerr.New(relerr.Internal, "duplicate column %q in table %q", cd.Name, name)
		}
		seen[cd.Name] = struct{}{}
		length := cd.Length
		if cd.Kind != types.FixedString {
			length = 4
		}
		cols = append(cols, ColMeta{
			Table:  name,
			Name:   cd.Name,
			Kind:   cd.Kind,
			Length: length,
			Offset: offset,
		})
		offset += length
	}
	c.tables[name] = TableMeta{Name: name, Cols: cols}
	return nil
}

func (c *Catalog) DropTable(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tables[name]; !ok {
		return relerr.New(relerr.TableNotFound, "table %q does not exist", name)
	}
	delete(c.tables, name)
	return nil
}

// CreateIndex registers an index over cols (in declared order) and marks
// each covered column's HasIndex flag.
func (c *Catalog) CreateIndex(table string, cols []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tables[table]
	if !ok {
		return relerr.New(relerr.TableNotFound, "table %q does not exist", table)
	}
	if t.IsIndex(cols) {
		return relerr.New(relerr.IndexExists, "index on %v already exists for table %q", cols, table)
	}
	keyLen := 0
	newCols := make([]ColMeta, len(t.Cols))
	copy(newCols, t.Cols)
	for _, cn := range cols {
		found := false
		for i := range newCols {
			if newCols[i].Name == cn {
				keyLen += newCols[i].Length
				newCols[i].HasIndex = true
				found = true
				break
			}
		}
		if !found {
			return relerr.New(relerr.ColumnNotFound, "column %q not found in table %q", cn, table)
		}
	}
	ordered := make([]string, len(cols))
	copy(ordered, cols)
	t.Cols = newCols
	t.Indexes = append(t.Indexes, IndexMeta{
		Table:     table,
		Columns:   ordered,
		KeyLength: keyLen,
		IndexName: IndexName(table, ordered),
	})
	c.tables[table] = t
	return nil
}

func (c *Catalog) DropIndex(table string, cols []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tables[table]
	if !ok {
		return relerr.New(relerr.TableNotFound, "table %q does not exist", table)
	}
	idx := -1
	for i, ix := range t.Indexes {
		if ix.SameColumns(cols) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return relerr.New(relerr.IndexNotFound, "no index on %v for table %q", cols, table)
	}
	t.Indexes = append(t.Indexes[:idx], t.Indexes[idx+1:]...)
	c.tables[table] = t
	return nil
}

// IndexName derives the on-disk index file name from table + columns
// (spec §6: "naming = get_index_name(table, cols)").
func IndexName(table string, cols []string) string {
	name := table
	for _, c := range cols {
		name += "_" + c
	}
	return fmt.Sprintf("%s.idx", name)
}
