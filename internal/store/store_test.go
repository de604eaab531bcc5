package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/sim-replay-client/pkg/types"
)

func packet(method string, ts int64) types.Packet {
	return types.Packet{HandlerID: "av1", Method: method, Timestamp: ts}
}

func TestStore_BucketCoversWholeSecond(t *testing.T) {
	s := New()
	s.Insert(packet("a", 1234))

	// Any virtual time in the same second resolves to the bucket
	// holding the packet.
	for _, vt := range []int64{1000, 1234, 1500, 1999} {
		bucket := s.BucketFor(vt)
		require.Len(t, bucket, 1, "virtualTime=%d", vt)
		assert.Equal(t, int64(1234), bucket[0].Timestamp)
	}

	assert.Empty(t, s.BucketFor(999))
	assert.Empty(t, s.BucketFor(2000))
}

func TestStore_PreservesInsertionOrder(t *testing.T) {
	s := New()
	s.Insert(packet("first", 1100))
	s.Insert(packet("second", 1050)) // earlier timestamp, later insert
	s.Insert(packet("third", 1900))

	bucket := s.BucketFor(1000)
	require.Len(t, bucket, 3)
	assert.Equal(t, "first", bucket[0].Method)
	assert.Equal(t, "second", bucket[1].Method)
	assert.Equal(t, "third", bucket[2].Method)
}

func TestStore_FindBefore(t *testing.T) {
	s := New()
	s.Insert(packet("createEntity", 1000))
	s.Insert(packet("updatePosition", 1500))
	s.Insert(packet("destroyEntity", 2000))
	s.Insert(packet("createEntity", 5000)) // later respawn, different life

	isCreate := func(p types.Packet) bool { return p.Method == "createEntity" }

	p, ok := s.FindBefore(2000, isCreate)
	require.True(t, ok)
	assert.Equal(t, int64(1000), p.Timestamp)

	// Scanning backward from after the respawn finds the nearest one.
	p, ok = s.FindBefore(6000, isCreate)
	require.True(t, ok)
	assert.Equal(t, int64(5000), p.Timestamp)

	// Nothing strictly before t=1000.
	_, ok = s.FindBefore(1000, isCreate)
	assert.False(t, ok)

	_, ok = s.FindBefore(2000, func(p types.Packet) bool { return p.Method == "nope" })
	assert.False(t, ok)
}

func TestStore_FindBefore_SkipsSparseGaps(t *testing.T) {
	s := New()
	s.Insert(packet("createEntity", 1000))
	s.Insert(packet("destroyEntity", 60000))

	p, ok := s.FindBefore(60000, func(p types.Packet) bool { return p.Method == "createEntity" })
	require.True(t, ok)
	assert.Equal(t, int64(1000), p.Timestamp)
}
