package di

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Scope 表示绑定的生命周期。
type Scope int

const (
	// ScopeDefault 每次解析都创建新实例。
	ScopeDefault Scope = iota
	// ScopeSingleton 容器生命周期内只创建一个实例。
	ScopeSingleton
)

func (s Scope) String() string {
	switch s {
	case ScopeDefault:
		return "default"
	case ScopeSingleton:
		return "singleton"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// filled 包装已创建的实例，使 atomic.Value 中始终存放同一具体类型
type filled struct {
	value any
}

// singletonSlot 延迟填充的单例槽。
// 快速路径为原子读取；慢速路径持有该槽自己的锁并双重检查。
type singletonSlot struct {
	val atomic.Value // *filled，未创建时为 nil
	mu  sync.Mutex   // 仅用于创建此实例
}

func (s *singletonSlot) load() (any, bool) {
	if f, ok := s.val.Load().(*filled); ok {
		return f.value, true
	}
	return nil, false
}

// getOrCreate 返回槽中的实例，必要时调用 create 填充。
// create 失败时槽保持为空，下次解析会重试。
func (s *singletonSlot) getOrCreate(create func() (any, error)) (value any, created bool, err error) {
	if v, ok := s.load(); ok {
		return v, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// 双重检查
	if v, ok := s.load(); ok {
		return v, false, nil
	}

	v, err := create()
	if err != nil {
		return nil, false, err
	}
	s.val.Store(&filled{value: v})
	return v, true, nil
}
