package cart

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// stripedLocks serialises work per cart id over a fixed set of mutexes.
// Distinct ids may share a stripe.
type stripedLocks [lockStripes]sync.Mutex

func (l *stripedLocks) of(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &l[h.Sum32()%lockStripes]
}
