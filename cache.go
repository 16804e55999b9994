package vecmap

import lru "github.com/hashicorp/golang-lru"

// Cache holds decoded snapshots by name. It is also used to avoid re-storing
// snapshots, so care should be taken to switch/invalidate the Cache when the
// Persist is changed.
type Cache interface {
	// Add adds a freshly-stored or freshly-loaded snapshot to the cache.
	Add(key, value interface{})
	// Contains indicates the snapshot with the given name has already been stored.
	Contains(key interface{}) bool
	// Get retrieves the already-decoded snapshot with the given name, if cached.
	Get(key interface{}) (value interface{}, ok bool)
}

// NewCache creates a new ARC-based snapshot cache of the given size. One
// cache can be shared by any number of maps.
func NewCache(size int) Cache {
	cache, err := lru.NewARC(size)
	if err != nil {
		panic(err)
	}
	return cache
}
