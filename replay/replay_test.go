package replay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// §8 universal law: replay idempotence — the same (context, id) pair is
// accepted once and rejected on every subsequent attempt until it expires.
func TestCheckAndInsertRejectsReplay(t *testing.T) {
	c := NewInMemory()
	exp := time.Now().Add(time.Hour)

	require.True(t, c.CheckAndInsert("ctx", "_id1", exp))
	require.False(t, c.CheckAndInsert("ctx", "_id1", exp))
	require.False(t, c.CheckAndInsert("ctx", "_id1", exp))
}

func TestCheckAndInsertDistinctContextsIndependent(t *testing.T) {
	c := NewInMemory()
	exp := time.Now().Add(time.Hour)

	require.True(t, c.CheckAndInsert("ctx-a", "_id1", exp))
	require.True(t, c.CheckAndInsert("ctx-b", "_id1", exp))
}

func TestCheckAndInsertAllowsReuseAfterExpiry(t *testing.T) {
	c := NewInMemory()
	past := time.Now().Add(-time.Minute)

	require.True(t, c.CheckAndInsert("ctx", "_id1", past))
	require.True(t, c.CheckAndInsert("ctx", "_id1", time.Now().Add(time.Hour)))
}

func TestLenReflectsLiveEntries(t *testing.T) {
	c := NewInMemory()
	require.Equal(t, 0, c.Len())
	c.CheckAndInsert("ctx", "_id1", time.Now().Add(time.Hour))
	c.CheckAndInsert("ctx", "_id2", time.Now().Add(time.Hour))
	require.Equal(t, 2, c.Len())
}
