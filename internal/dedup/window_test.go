package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_AcceptsIncreasingIDs(t *testing.T) {
	w := New(0, 10)

	require.NoError(t, w.Put(1))
	require.NoError(t, w.Put(2))
	require.NoError(t, w.Put(10))
}

func TestWindow_RejectsExpired(t *testing.T) {
	w := New(0, 10)
	// Sliding to (5, 15] leaves 3 at or below the window's low-water mark.
	require.NoError(t, w.Put(15))

	err := w.Put(3)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestWindow_RejectsDuplicate(t *testing.T) {
	w := New(0, 10)
	require.NoError(t, w.Put(5))

	err := w.Put(5)
	assert.ErrorIs(t, err, ErrExisting)
}

func TestWindow_SlidesForwardOnOverflow(t *testing.T) {
	w := New(0, 10)
	require.NoError(t, w.Put(15))

	assert.EqualValues(t, 5, w.Min)
	assert.EqualValues(t, 15, w.Max)

	assert.ErrorIs(t, w.Put(5), ErrExpired)
	assert.NoError(t, w.Put(6))
}

func TestWindow_SnapshotRoundTrip(t *testing.T) {
	w := New(0, 10)
	require.NoError(t, w.Put(3))
	require.NoError(t, w.Put(7))

	restored := FromSnapshot(w.ToSnapshot())

	assert.Equal(t, w.Min, restored.Min)
	assert.Equal(t, w.Max, restored.Max)
	assert.ErrorIs(t, restored.Put(3), ErrExisting)
	assert.ErrorIs(t, restored.Put(7), ErrExisting)
}

func TestFromSnapshot_ZeroCapRebuildsDefault(t *testing.T) {
	restored := FromSnapshot(Snapshot{})
	assert.Equal(t, uint64(DefaultCapacity), restored.Cap)
}

func TestClone_IsIndependent(t *testing.T) {
	w := New(0, 10)
	require.NoError(t, w.Put(4))

	clone := w.Clone()
	require.NoError(t, clone.Put(9))

	assert.NoError(t, w.Put(9), "original window must be unaffected by the clone's Put")
}
