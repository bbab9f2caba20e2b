package storage

import (
	"testing"

	"github.com/annel0/battlescape/internal/entity"
	"github.com/annel0/battlescape/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(session string, frame uint64) entity.Snapshot {
	return entity.Snapshot{
		Session: session,
		Frame:   frame,
		Time:    int64(frame) * 16,
		Entities: []entity.DebugRow{
			{Slot: 0, Num: 7, Type: "actor", InUse: true, Pos: vec.Vec3{X: 1, Y: 2}, Think: "path_move", Model: "models/soldier"},
		},
		Stats: entity.Stats{Ticks: frame, EntitiesInUse: 1},
		Error: "entity 7 ended at (1, 2, 0) instead of (1, 3, 0)",
	}
}

func TestSaveLoad(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	key, err := store.Save(testSnapshot("s1", 42))
	require.NoError(t, err)
	assert.Equal(t, "snapshot:s1:0000000042", key)

	got, err := store.Load(key)
	require.NoError(t, err)
	assert.Equal(t, testSnapshot("s1", 42), got)

	_, err = store.Load("snapshot:none:0000000001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()

	for _, f := range []uint64{300, 5, 42} {
		_, err := store.Save(testSnapshot("s1", f))
		require.NoError(t, err)
	}
	_, err = store.Save(testSnapshot("s2", 1))
	require.NoError(t, err)

	list, err := store.List("s1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uint64{5, 42, 300}, []uint64{list[0].Frame, list[1].Frame, list[2].Frame})
	assert.Equal(t, "s1", list[0].Session)
	assert.Greater(t, list[0].Size, 0)

	all, err := store.List("")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	require.NoError(t, store.Delete(list[0].Key))
	list, err = store.List("s1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestClosedStore(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err = store.Save(testSnapshot("s1", 1))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = store.Load("x")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = store.List("")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestParseKey(t *testing.T) {
	sess, frame, ok := parseKey(Key("a:b", 12))
	require.True(t, ok)
	assert.Equal(t, "a:b", sess)
	assert.Equal(t, uint64(12), frame)

	_, _, ok = parseKey("other:1")
	assert.False(t, ok)
}
