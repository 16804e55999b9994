package vecmap

import (
	"context"
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	Persist
	stores, loads int
}

func (cs *countingStore) Store(ctx context.Context, name string, value []byte) error {
	cs.stores++
	return cs.Persist.Store(ctx, name, value)
}

func (cs *countingStore) Load(ctx context.Context, name string) ([]byte, error) {
	cs.loads++
	return cs.Persist.Load(ctx, name)
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := SnapshotConfig{Store: NewInMemoryStore()}
	m := New[string, int]()
	m.Insert("a", 1)
	m.Insert("b", 2)
	name, err := m.Save(ctx, &cfg)
	require.NoError(t, err)
	require.NotEmpty(t, name)

	same := FromMap(map[string]int{"b": 2, "a": 1})
	sameName, err := same.Save(ctx, &cfg)
	require.NoError(t, err)
	require.Equal(t, name, sameName)

	m.Insert("c", 3)
	later, err := m.Save(ctx, &cfg)
	require.NoError(t, err)
	require.NotEqual(t, name, later)

	var loaded Map[string, int]
	require.NoError(t, loaded.Load(ctx, name, &cfg))
	require.Equal(t, []Entry[string, int]{{"a", 1}, {"b", 2}}, toSlice(&loaded))
	require.NoError(t, loaded.Load(ctx, later, &cfg))
	require.Equal(t, 3, loaded.Len())
}

func TestSaveLoadCached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &countingStore{Persist: NewInMemoryStore()}
	cfg := SnapshotConfig{Store: store, Cache: NewCache(16)}
	m := New[int, string]()
	m.Insert(1, "one")
	name, err := m.Save(ctx, &cfg)
	require.NoError(t, err)
	_, err = m.Save(ctx, &cfg)
	require.NoError(t, err)
	require.Equal(t, 1, store.stores)

	// later changes to the saved map don't reach the cached copy
	m.Insert(2, "two")
	loaded := New[int, string]()
	require.NoError(t, loaded.Load(ctx, name, &cfg))
	require.Equal(t, 0, store.loads)
	require.Equal(t, []Entry[int, string]{{1, "one"}}, toSlice(loaded))

	// nor do changes to the loaded one
	loaded.Insert(3, "three")
	again := New[int, string]()
	require.NoError(t, again.Load(ctx, name, &cfg))
	require.Equal(t, 1, again.Len())

	fresh := SnapshotConfig{Store: store, Cache: NewCache(16)}
	require.NoError(t, again.Load(ctx, name, &fresh))
	require.Equal(t, 1, store.loads)
	require.NoError(t, again.Load(ctx, name, &fresh))
	require.Equal(t, 1, store.loads)
}

func TestLoadCachedUnderOtherOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := SnapshotConfig{Store: NewInMemoryStore(), Cache: NewCache(4)}
	m := FromEntries([]Entry[int, int]{{1, 1}, {2, 2}, {3, 3}})
	name, err := m.Save(ctx, &cfg)
	require.NoError(t, err)

	descending := NewFunc[int, int](func(a, b int) int { return OrderedCompare(b, a) }, 0)
	require.NoError(t, descending.Load(ctx, name, &cfg))
	require.Equal(t, []Entry[int, int]{{3, 3}, {2, 2}, {1, 1}}, toSlice(descending))
	descending.validate()
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := New[string, int]()

	_, err := m.Save(ctx, nil)
	require.Error(t, err)
	require.Error(t, m.Load(ctx, "x", &SnapshotConfig{}))

	store := NewInMemoryStore()
	cfg := SnapshotConfig{Store: store}
	err = m.Load(ctx, "missing", &cfg)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Store(ctx, "forged", []byte{0}))
	err = m.Load(ctx, "forged", &cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "content hash")
}

func TestSaveLoadCBOR(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := SnapshotConfig{
		Store:     NewInMemoryStore(),
		Marshal:   cbor.Marshal,
		Unmarshal: cbor.Unmarshal,
	}
	m := New[string, []string]()
	m.Insert("fruit", []string{"apple", "fig"})
	m.Insert("veg", []string{"leek"})
	name, err := m.Save(ctx, &cfg)
	require.NoError(t, err)

	loaded := New[string, []string]()
	require.NoError(t, loaded.Load(ctx, name, &cfg))
	require.Equal(t, toSlice(m), toSlice(loaded))

	err = loaded.Load(ctx, name, &SnapshotConfig{Store: cfg.Store})
	require.Error(t, err, "JSON can't decode CBOR")
}

func TestInMemoryStoreCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewInMemoryStore()
	value := []byte("abc")
	require.NoError(t, store.Store(ctx, "n", value))
	value[0] = 'X'
	got, err := store.Load(ctx, "n")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), got)
}
