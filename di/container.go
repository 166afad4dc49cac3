package di

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/gocrud/autowire/logging"
)

// Container 持有合并后的绑定表。构建后绑定表只读，可以并发调用 Get。
//
// 构造函数声明 *Container 参数时得到的是共享同一绑定表的视图。
// 构造函数执行期间，通过该视图的 Get 会延续当前解析链，
// 因此单例在构造中再次解析自身会得到 *CircularDependencyError。
// 构造函数返回后视图与容器本身行为相同。
type Container struct {
	registry *Registry
	bindings map[string]Definition
	options  Options
	resolver *resolver
	pending  *pendingChain
}

// pendingChain 构造函数执行期间视图携带的解析链
type pendingChain struct {
	chain atomic.Pointer[[]string]
}

// within 返回在 chain 上构造时注入的视图
func (c *Container) within(chain []string) *Container {
	view := *c
	view.pending = &pendingChain{}
	view.pending.chain.Store(&chain)
	return &view
}

// release 在构造函数返回后清除视图的解析链
func (c *Container) release() {
	c.pending.chain.Store(nil)
}

func (c *Container) chain() []string {
	if c.pending == nil {
		return nil
	}
	if p := c.pending.chain.Load(); p != nil {
		return *p
	}
	return nil
}

// Has 判断键是否在绑定表中
func (c *Container) Has(key string) bool {
	_, ok := c.bindings[key]
	return ok
}

// Get 解析键。
//
// 未绑定的键在启用自动装配时被当作实现直接构造，否则返回 *DependencyNotFoundError。
// 解析过程中的 *DependencyNotFoundError 原样返回，其他错误包装为
// *UnresolvableDependencyError。
func (c *Container) Get(key string) (any, error) {
	start := time.Now()

	def, ok := c.bindings[key]
	if !ok {
		if !c.options.AutoWiring {
			c.resolver.metrics.RecordDependencyMissing()
			return nil, &DependencyNotFoundError{Key: key}
		}
		def = &ClassDefinition{Implementation: key}
	}

	value, err := def.resolve(c.resolver, c.chain())
	c.resolver.metrics.RecordResolution(def.kind(), time.Since(start), err)
	if err == nil {
		return value, nil
	}

	if notFound, ok := err.(*DependencyNotFoundError); ok {
		c.resolver.metrics.RecordDependencyMissing()
		c.resolver.logger.Debug("dependency not found",
			logging.Field{Key: "key", Value: key},
			logging.Field{Key: "missing", Value: notFound.Key})
		return nil, notFound
	}

	c.resolver.logger.Warn("resolution failed",
		logging.Field{Key: "key", Value: key},
		logging.Field{Key: "error", Value: err})
	return nil, &UnresolvableDependencyError{Key: key, Cause: err}
}

// MustGet 与 Get 相同，失败时 panic
func (c *Container) MustGet(key string) any {
	v, err := c.Get(key)
	if err != nil {
		panic(err)
	}
	return v
}

// Keys 返回所有绑定键（有序）
func (c *Container) Keys() []string {
	keys := make([]string, 0, len(c.bindings))
	for k := range c.bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Options 返回构建时的选项
func (c *Container) Options() Options {
	return c.options
}

// Registry 返回容器使用的注册表
func (c *Container) Registry() *Registry {
	return c.registry
}

// Validate 静态检查所有绑定的实现，不创建任何实例。
// 返回解析时将会遇到的第一个循环、缺失或不可实例化错误。
func (c *Container) Validate() error {
	_, err := c.resolver.buildOrder()
	return err
}

// constructSingletons 按依赖顺序创建所有绑定的单例
func (c *Container) constructSingletons(order []string) error {
	rank := make(map[string]int, len(order))
	for i, impl := range order {
		rank[impl] = i
	}

	var keys []string
	for key, def := range c.bindings {
		if _, ok := def.(*SingletonClassDefinition); ok {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		ri := rank[implementationOf(c.bindings[keys[i]])]
		rj := rank[implementationOf(c.bindings[keys[j]])]
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})

	for _, key := range keys {
		if _, err := c.Get(key); err != nil {
			return fmt.Errorf("di: constructing singleton %s: %w", key, err)
		}
	}
	return nil
}
