package evaluator

import (
	"sync"
)

// keyedMutex 按键互斥锁
// 键空间是 (sensor_id, alert_type) 组合，数量有限，锁条目不回收
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock 锁住指定键，返回解锁函数
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
