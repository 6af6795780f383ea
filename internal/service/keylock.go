package service

import (
	"hash/fnv"
	"sync"
)

// keyLock serializes work per string key using a fixed set of mutex
// stripes. Used to serialize access-record mutation per user.
type keyLock struct {
	stripes []sync.Mutex
}

func newKeyLock(stripes int) *keyLock {
	return &keyLock{stripes: make([]sync.Mutex, stripes)}
}

// Lock acquires the stripe for key and returns its unlock function.
func (k *keyLock) Lock(key string) func() {
	h := fnv.New32a()
	h.Write([]byte(key))
	m := &k.stripes[h.Sum32()%uint32(len(k.stripes))]
	m.Lock()
	return m.Unlock
}
