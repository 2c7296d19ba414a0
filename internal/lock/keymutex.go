package lock

import "sync"

// KeyedMutexはキーごとのmutex。同一顧客のセッション更新と、
// 同一(color,size)行へのdeductを直列化するために使う。
// 別キー同士は互いにブロックしない。
type KeyedMutex struct {
	mus sync.Map // key -> *sync.Mutex
}

func New() *KeyedMutex { return &KeyedMutex{} }

func (m *KeyedMutex) Lock(key string) {
	m.get(key).Lock()
}

func (m *KeyedMutex) Unlock(key string) {
	m.get(key).Unlock()
}

func (m *KeyedMutex) get(key string) *sync.Mutex {
	if mu, ok := m.mus.Load(key); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := m.mus.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
