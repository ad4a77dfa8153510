package catalog

// MetaStore is the persistence hook for the on-disk db.meta catalog
// file (spec §6 "Persistent state layout"). The on-disk catalog
// serializer itself is external to this core (spec §1); MetaStore is
// the seam a file-backed implementation would satisfy. The core only
// ever reads the catalog through Provider — MetaStore exists solely so
// DDL dispatch has somewhere to durably record a mutation.
type MetaStore interface {
	SaveTable(meta TableMeta) error
	DropTable(name string) error
}

// NopMetaStore discards every write. It is the default MetaStore for a
// pkg/engine.Engine that was not configured with a persistent one — the
// reference engine only ever backs tables with pkg/record.MemFile, so
// there is nothing on disk to keep in sync.
type NopMetaStore struct{}

func (NopMetaStore) SaveTable(TableMeta) error { return nil }
func (NopMetaStore) DropTable(string) error    { return nil }

var _ MetaStore = NopMetaStore{}
