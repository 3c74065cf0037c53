package pebble

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfdb/shelfdb/pkg/db"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestDatabase(t *testing.T) {
	tests := []struct {
		name string
		fn   func(t *testing.T, d *DB)
	}{
		{
			name: "basic_put_get",
			fn:   testBasicPutGet,
		},
		{
			name: "delete_operations",
			fn:   testDelete,
		},
		{
			name: "collection_lifecycle",
			fn:   testCollectionLifecycle,
		},
		{
			name: "collection_isolation",
			fn:   testCollectionIsolation,
		},
		{
			name: "iterator_order",
			fn:   testIteratorOrder,
		},
		{
			name: "store_closure",
			fn:   testStoreClosure,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, openTestDB(t))
		})
	}
}

func testBasicPutGet(t *testing.T, d *DB) {
	key := []byte("test-key")
	value := []byte("test-value")

	err := d.Put("default", key, value)
	require.NoError(t, err)

	retrieved, err := d.Get("default", key)
	require.NoError(t, err)
	assert.Equal(t, value, retrieved)

	// Test non-existent key
	_, err = d.Get("default", []byte("non-existent"))
	assert.ErrorIs(t, err, db.ErrNotFound)

	// Test non-existent collection
	err = d.Put("nope", key, value)
	assert.ErrorIs(t, err, db.ErrUnknownCF)
}

func testDelete(t *testing.T, d *DB) {
	key := []byte("delete-test")

	err := d.Put("default", key, []byte("to-be-deleted"))
	require.NoError(t, err)

	err = d.Delete("default", key)
	require.NoError(t, err)

	_, err = d.Get("default", key)
	assert.ErrorIs(t, err, db.ErrNotFound)

	// Delete non-existent key should not error
	err = d.Delete("default", []byte("non-existent"))
	assert.NoError(t, err)
}

func testCollectionLifecycle(t *testing.T, d *DB) {
	require.True(t, d.CFExists("default"))
	require.False(t, d.CFExists("rooms"))

	require.NoError(t, d.CreateCF("rooms"))
	assert.True(t, d.CFExists("rooms"))

	// Creating an existing collection is a no-op
	require.NoError(t, d.CreateCF("rooms"))

	assert.Equal(t, []string{"default", "rooms"}, d.ListCF())

	require.NoError(t, d.Put("rooms", []byte("1"), []byte("a")))
	require.NoError(t, d.DropCF("rooms"))
	assert.False(t, d.CFExists("rooms"))

	// Records are gone after recreate
	require.NoError(t, d.CreateCF("rooms"))
	_, err := d.Get("rooms", []byte("1"))
	assert.ErrorIs(t, err, db.ErrNotFound)

	// Dropping default is refused
	assert.ErrorIs(t, d.DropCF("default"), ErrDropDefault)

	// Dropping an unknown collection fails
	assert.ErrorIs(t, d.DropCF("ghost"), db.ErrUnknownCF)

	// Invalid names are rejected
	assert.Error(t, d.CreateCF(""))
	assert.Error(t, d.CreateCF("bad\x00name"))
}

func testCollectionIsolation(t *testing.T, d *DB) {
	require.NoError(t, d.CreateCF("a"))
	require.NoError(t, d.CreateCF("ab"))

	// Same key in sibling collections must not collide, and a collection
	// whose name prefixes another must keep a disjoint keyspace.
	require.NoError(t, d.Put("a", []byte("k"), []byte("from-a")))
	require.NoError(t, d.Put("ab", []byte("k"), []byte("from-ab")))

	va, err := d.Get("a", []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("from-a"), va)

	vab, err := d.Get("ab", []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("from-ab"), vab)

	iter, err := d.NewIterator("a")
	require.NoError(t, err)
	defer iter.Close()

	count := 0
	for iter.Next() {
		count++
	}
	assert.Equal(t, 1, count)
}

func testIteratorOrder(t *testing.T, d *DB) {
	require.NoError(t, d.CreateCF("rooms"))
	for _, k := range []string{"3", "1", "2", "10"} {
		require.NoError(t, d.Put("rooms", []byte(k), []byte("v"+k)))
	}

	iter, err := d.NewIterator("rooms")
	require.NoError(t, err)
	defer iter.Close()

	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	// Ascending raw-byte order, not numeric
	assert.Equal(t, []string{"1", "10", "2", "3"}, keys)
}

func testStoreClosure(t *testing.T, d *DB) {
	err := d.Close()
	require.NoError(t, err)

	// Test operations after close
	_, err = d.Get("default", []byte("key"))
	assert.ErrorIs(t, err, db.ErrClosed)

	err = d.Put("default", []byte("key"), []byte("value"))
	assert.ErrorIs(t, err, db.ErrClosed)

	err = d.CreateCF("rooms")
	assert.ErrorIs(t, err, db.ErrClosed)

	// Double close should not error
	err = d.Close()
	assert.NoError(t, err)
}

func TestOpenCF(t *testing.T) {
	path := t.TempDir()

	d, err := OpenCF(path, nil, []string{"users", "rooms"})
	require.NoError(t, err)
	assert.True(t, d.CFExists("users"))
	assert.True(t, d.CFExists("rooms"))
	require.NoError(t, d.Close())

	// Reopen without creation permission: collections already exist
	opts := db.DefaultOptions()
	opts.CreateMissingColumnFamilies = false
	d, err = OpenCF(path, opts, []string{"users", "rooms"})
	require.NoError(t, err)
	require.NoError(t, d.Close())

	// A missing collection fails the open when creation is not allowed
	_, err = OpenCF(path, opts, []string{"settings"})
	assert.ErrorIs(t, err, db.ErrUnknownCF)

	// The refusal leaves the catalog untouched
	names, err := List(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "rooms", "users"}, names)
}

func TestOpenCFRefusedLeavesNoState(t *testing.T) {
	path := t.TempDir() + "/fresh"
	opts := db.DefaultOptions()
	opts.CreateMissingColumnFamilies = false

	_, err := OpenCF(path, opts, []string{"rooms"})
	assert.ErrorIs(t, err, db.ErrUnknownCF)

	// The refused open must not have created the database on disk
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestOpenWithExistingCFs(t *testing.T) {
	path := t.TempDir() + "/fresh"

	// Uninitialized path: created with only the default collection
	d, err := OpenWithExistingCFs(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, d.ListCF())
	require.NoError(t, d.CreateCF("rooms"))
	require.NoError(t, d.Close())

	// Initialized path: catalog is picked up
	d, err = OpenWithExistingCFs(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "rooms"}, d.ListCF())
	require.NoError(t, d.Close())
}

func TestOpenErrorIfMissing(t *testing.T) {
	opts := &db.Options{CreateIfMissing: false}
	_, err := Open(t.TempDir()+"/missing", opts)
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	path := t.TempDir()

	d, err := OpenCF(path, nil, []string{"users", "settings"})
	require.NoError(t, err)
	require.NoError(t, d.Close())

	names, err := List(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "settings", "users"}, names)

	_, err = List(path + "/missing")
	assert.Error(t, err)
}

func TestCatalogPersistence(t *testing.T) {
	path := t.TempDir()

	d, err := Open(path, nil)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, d.CreateCF(fmt.Sprintf("cf-%d", i)))
	}
	require.NoError(t, d.Close())

	d, err = Open(path, nil)
	require.NoError(t, err)
	defer d.Close()
	for i := 0; i < 5; i++ {
		assert.True(t, d.CFExists(fmt.Sprintf("cf-%d", i)))
	}
}

func TestPropertyInt(t *testing.T) {
	d := openTestDB(t)
	require.NoError(t, d.CreateCF("rooms"))
	require.NoError(t, d.Put("rooms", []byte("1"), []byte("payload")))

	for _, prop := range []string{db.PropLiveSSTBytes, db.PropMemTableBytes, db.PropBlobBytes} {
		_, err := d.PropertyInt("rooms", prop)
		assert.NoError(t, err, prop)
	}

	_, err := d.PropertyInt("rooms", "bogus")
	assert.ErrorIs(t, err, db.ErrUnknownProperty)

	_, err = d.PropertyInt("ghost", db.PropLiveSSTBytes)
	assert.ErrorIs(t, err, db.ErrUnknownCF)
}
