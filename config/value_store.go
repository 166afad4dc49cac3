package config

import (
	"sync/atomic"
)

// ValueStore 使用 atomic.Value 保存配置快照，读取无锁
type ValueStore struct {
	value atomic.Value // map[string]any
}

// NewValueStore 创建一个持有空快照的 ValueStore
func NewValueStore() *ValueStore {
	s := &ValueStore{}
	s.value.Store(make(map[string]any))
	return s
}

// Load 返回当前快照，调用者只能读取
func (s *ValueStore) Load() map[string]any {
	return s.value.Load().(map[string]any)
}

// Store 原子替换快照
func (s *ValueStore) Store(data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	s.value.Store(data)
}
