package store

import (
	"github.com/DoyleJ11/sim-replay-client/pkg/types"
)

// bucketWidthMS is the bucket granularity. Independent of tick width
// and playback speed; the scheduler compensates with a dual-bucket
// lookup.
const bucketWidthMS int64 = 1000

// Store buckets packets by floor(timestamp/1000) for range queries in
// either direction. Append-only: replay is re-runnable from the same
// store any number of times.
type Store struct {
	buckets map[int64][]types.Packet
	minSec  int64
	maxSec  int64
	count   int
}

func New() *Store {
	return &Store{buckets: make(map[int64][]types.Packet)}
}

// Insert appends a fully-timestamped packet to its bucket, creating the
// bucket if absent. Insertion order within a bucket is preserved.
func (s *Store) Insert(p types.Packet) {
	sec := p.Timestamp / bucketWidthMS
	if s.count == 0 || sec < s.minSec {
		s.minSec = sec
	}
	if s.count == 0 || sec > s.maxSec {
		s.maxSec = sec
	}
	s.buckets[sec] = append(s.buckets[sec], p)
	s.count++
}

// BucketFor returns the bucket covering virtualTime, or nil.
func (s *Store) BucketFor(virtualTime int64) []types.Packet {
	return s.buckets[virtualTime/bucketWidthMS]
}

// FindBefore scans backward from before through older packets and
// returns the most recent one matching. Used by reverse-playback
// inverses to recover an entity's instantiate call.
func (s *Store) FindBefore(before int64, match func(types.Packet) bool) (types.Packet, bool) {
	if s.count == 0 {
		return types.Packet{}, false
	}
	start := before / bucketWidthMS
	if start > s.maxSec {
		start = s.maxSec
	}
	for sec := start; sec >= s.minSec; sec-- {
		bucket := s.buckets[sec]
		for i := len(bucket) - 1; i >= 0; i-- {
			p := bucket[i]
			if p.Timestamp < before && match(p) {
				return p, true
			}
		}
	}
	return types.Packet{}, false
}

func (s *Store) Len() int { return s.count }
