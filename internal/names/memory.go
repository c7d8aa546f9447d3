package names

import "sync"

// MemoryKV is an in-memory KV. The zero value is ready to use.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

func (kv *MemoryKV) Get(key string) (string, bool, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	v, ok := kv.m[key]
	return v, ok, nil
}

func (kv *MemoryKV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.m == nil {
		kv.m = make(map[string]string)
	}
	kv.m[key] = value
	return nil
}
