package vecmap

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/minio/blake2b-simd"
)

// ErrNotFound is returned by a Persist that has nothing stored under a name.
var ErrNotFound = errors.New("not found")

// Persist is the interface for storing and loading encoded snapshots. The
// name a snapshot is stored under is derived from its content, which is
// never modified.
type Persist interface {
	// Store makes the given bytes accessible by the given name.
	Store(context.Context, string, []byte) error
	// Load retrieves the previously-stored bytes by the given name.
	Load(context.Context, string) ([]byte, error)
}

// SnapshotConfig controls how snapshots are encoded and where they go.
type SnapshotConfig struct {
	// Store is used to store and load encoded snapshots.
	Store Persist

	// Cache holds decoded snapshots and may be shared across maps.
	Cache Cache

	// Marshal function for keys and values, defaults to JSON
	Marshal func(interface{}) ([]byte, error)

	// Unmarshal function for keys and values, defaults to JSON
	Unmarshal func([]byte, interface{}) error
}

func (cfg *SnapshotConfig) withDefaults() (SnapshotConfig, error) {
	if cfg == nil || cfg.Store == nil {
		return SnapshotConfig{}, fmt.Errorf("no persistence mechanism set; set SnapshotConfig.Store")
	}
	c := *cfg
	if c.Marshal == nil {
		c.Marshal = defaultMarshal
	}
	if c.Unmarshal == nil {
		c.Unmarshal = defaultUnmarshal
	}
	return c, nil
}

func snapshotName(encoded []byte) string {
	hash := blake2b.Sum256(encoded)
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// Save stores the map's current contents and returns the name they can be
// loaded by. Equal maps are saved under the same name, and a name already
// in the cache is not stored again.
func (m *Map[K, V]) Save(ctx context.Context, config *SnapshotConfig) (string, error) {
	cfg, err := config.withDefaults()
	if err != nil {
		return "", err
	}
	encoded, err := m.MarshalBinaryWith(cfg.Marshal)
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	name := snapshotName(encoded)
	if cfg.Cache != nil && cfg.Cache.Contains(name) {
		return name, nil
	}
	if err = cfg.Store.Store(ctx, name, encoded); err != nil {
		return "", fmt.Errorf("persist store: %w", err)
	}
	if cfg.Cache != nil {
		cfg.Cache.Add(name, m.Clone())
	}
	if m.debug {
		fmt.Printf("saved %d entries as %s\n", len(m.entries), name)
	}
	return name, nil
}

// Load replaces the map's contents with the snapshot saved under name. The
// snapshot's content is checked against its name.
func (m *Map[K, V]) Load(ctx context.Context, name string, config *SnapshotConfig) error {
	cfg, err := config.withDefaults()
	if err != nil {
		return err
	}
	m.checkExclusive()
	if cfg.Cache != nil {
		if cached, ok := cfg.Cache.Get(name); ok {
			if snapshot, ok := cached.(*Map[K, V]); ok {
				m.restore(snapshot)
				return nil
			}
		}
	}
	encoded, err := cfg.Store.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("persist load %s: %w", name, err)
	}
	if got := snapshotName(encoded); got != name {
		return fmt.Errorf("snapshot %s has content hash %s", name, got)
	}
	if err = m.UnmarshalBinaryWith(encoded, cfg.Unmarshal); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	if m.debug {
		fmt.Printf("loaded %d entries from %s\n", len(m.entries), name)
	}
	if cfg.Cache != nil {
		cfg.Cache.Add(name, m.Clone())
	}
	return nil
}

// restore copies a cached snapshot's entries, leaving the cached copy
// untouched. The entries are placed under m's own key order.
func (m *Map[K, V]) restore(snapshot *Map[K, V]) {
	if m.compare == nil {
		m.compare = snapshot.compare
	}
	m.Clear()
	m.Reserve(len(snapshot.entries))
	m.Extend(EntryProducer(snapshot.entries))
}
