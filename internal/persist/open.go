package persist

import (
	"fmt"

	ds "github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	leveldb "github.com/ipfs/go-ds-leveldb"
)

// Datastore is the backend the marketplace is persisted to. Batching
// datastores are closable.
type Datastore = ds.Batching

// Open returns a LevelDB datastore rooted at dir, or a thread-safe in-memory
// datastore when dir is empty.
func Open(dir string) (Datastore, error) {
	if dir == "" {
		return dssync.MutexWrap(ds.NewMapDatastore()), nil
	}
	return OpenLevelDB(dir)
}

// OpenLevelDB opens (creating if needed) a LevelDB datastore at path.
func OpenLevelDB(path string) (Datastore, error) {
	d, err := leveldb.NewDatastore(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
	}
	return d, nil
}
