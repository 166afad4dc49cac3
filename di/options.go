package di

import (
	"github.com/gocrud/autowire/logging"
	"github.com/gocrud/autowire/metrics"
)

// Options 在容器构建时固定
type Options struct {
	// AutoWiring 允许把未绑定的类型键当作可构造的实现解析
	AutoWiring bool
}

// Builder 合并多个 Binder 的绑定并创建容器。
type Builder struct {
	binders  []Binder
	options  Options
	registry *Registry
	logger   logging.Logger
	metrics  *metrics.Collector
	validate bool
	eager    bool
}

// NewBuilder 创建构建器，至少需要一个 Binder。
// 多个 Binder 声明同一个键时，先注册的 Binder 生效。
func NewBuilder(binder Binder, binders ...Binder) *Builder {
	return &Builder{
		binders: append([]Binder{binder}, binders...),
	}
}

// WithAutoWiring 启用自动装配
func (b *Builder) WithAutoWiring() *Builder {
	b.options.AutoWiring = true
	return b
}

// WithRegistry 使用指定的注册表代替 DefaultRegistry
func (b *Builder) WithRegistry(registry *Registry) *Builder {
	b.registry = registry
	return b
}

// WithLogger 设置容器日志
func (b *Builder) WithLogger(logger logging.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetrics 设置指标收集器
func (b *Builder) WithMetrics(collector *metrics.Collector) *Builder {
	b.metrics = collector
	return b
}

// WithValidation 在构建时静态检查依赖图
func (b *Builder) WithValidation() *Builder {
	b.validate = true
	return b
}

// WithEagerSingletons 在构建时按依赖顺序创建所有单例（隐含 WithValidation）
func (b *Builder) WithEagerSingletons() *Builder {
	b.eager = true
	return b
}
