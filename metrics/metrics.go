// Package metrics 提供容器解析指标。
// 基于 Prometheus，记录定义的解析次数与耗时、单例创建以及依赖图中的循环和缺失。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// result 标签的取值
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Collector 收集容器解析指标。
//
// 所有方法都允许 nil 接收者，这样容器可以无条件地记录指标。
type Collector struct {
	registry *prometheus.Registry

	resolutions       *prometheus.CounterVec
	resolveLatency    *prometheus.HistogramVec
	singletons        *prometheus.CounterVec
	dependencyCycles  prometheus.Counter
	dependencyMissing prometheus.Counter
}

// NewCollector 创建一个使用私有 Registry 的指标收集器。
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "autowire"
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
	}

	c.resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "resolutions_total",
			Help:      "Total number of top-level resolutions by definition kind and result",
		},
		[]string{"definition", "result"},
	)

	c.resolveLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "resolution_duration_seconds",
			Help:      "Time taken to resolve a key, including nested construction",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
		},
		[]string{"definition"},
	)

	c.singletons = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "singletons_constructed_total",
			Help:      "Total number of singleton instances constructed",
		},
		[]string{"implementation"},
	)

	c.dependencyCycles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dependency",
			Name:      "cycles_total",
			Help:      "Total number of dependency cycles detected",
		},
	)

	c.dependencyMissing = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dependency",
			Name:      "missing_total",
			Help:      "Total number of lookups for keys that were never bound",
		},
	)

	c.registry.MustRegister(
		c.resolutions,
		c.resolveLatency,
		c.singletons,
		c.dependencyCycles,
		c.dependencyMissing,
	)

	return c
}

// Registry 返回持有所有指标的 Prometheus 注册表
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordResolution 记录一次顶层解析及其耗时
func (c *Collector) RecordResolution(definition string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	c.resolutions.WithLabelValues(definition, result).Inc()
	c.resolveLatency.WithLabelValues(definition).Observe(duration.Seconds())
}

// RecordSingletonConstructed 记录单例被创建
func (c *Collector) RecordSingletonConstructed(implementation string) {
	if c == nil {
		return
	}
	c.singletons.WithLabelValues(implementation).Inc()
}

// RecordDependencyCycle 记录检测到的循环依赖
func (c *Collector) RecordDependencyCycle() {
	if c == nil {
		return
	}
	c.dependencyCycles.Inc()
}

// RecordDependencyMissing 记录缺失的依赖
func (c *Collector) RecordDependencyMissing() {
	if c == nil {
		return
	}
	c.dependencyMissing.Inc()
}
