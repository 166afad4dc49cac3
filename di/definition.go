package di

import (
	"fmt"
	"slices"

	"github.com/gocrud/autowire/logging"
)

// Definition 是绑定键背后可解析的单元。
// 只有本包中的四种实现：ScalarDefinition、InstanceDefinition、
// ClassDefinition 和 SingletonClassDefinition。
type Definition interface {
	// resolve 在给定的解析链上解析该定义
	resolve(r *resolver, chain []string) (any, error)
	// kind 用于日志与指标
	kind() string
}

// ScalarDefinition 布尔、数字或字符串值，解析为自身。
type ScalarDefinition struct {
	Value any
}

func (d *ScalarDefinition) resolve(*resolver, []string) (any, error) { return d.Value, nil }
func (d *ScalarDefinition) kind() string                             { return "scalar" }

func (d *ScalarDefinition) String() string { return fmt.Sprintf("scalar(%v)", d.Value) }

// InstanceDefinition 调用方提供的实例，容器从不创建它，总是返回同一个引用。
type InstanceDefinition struct {
	Instance any
}

func (d *InstanceDefinition) resolve(*resolver, []string) (any, error) { return d.Instance, nil }
func (d *InstanceDefinition) kind() string                             { return "instance" }

func (d *InstanceDefinition) String() string { return fmt.Sprintf("instance(%T)", d.Instance) }

// ClassDefinition 每次解析都通过构造函数注入创建新实例。
type ClassDefinition struct {
	Implementation string
}

func (d *ClassDefinition) resolve(r *resolver, chain []string) (any, error) {
	return r.construct(d.Implementation, chain)
}

func (d *ClassDefinition) kind() string { return "class" }

func (d *ClassDefinition) String() string { return "class(" + d.Implementation + ")" }

// SingletonClassDefinition 与 ClassDefinition 相同，但缓存第一次创建的实例。
// 槽属于该定义，因此每个容器各自持有一份。必须以指针使用。
type SingletonClassDefinition struct {
	Implementation string
	slot           singletonSlot
}

func (d *SingletonClassDefinition) resolve(r *resolver, chain []string) (any, error) {
	if v, ok := d.slot.load(); ok {
		return v, nil
	}

	// 在加锁前检查循环，避免同一协程重入时死锁
	if slices.Contains(chain, d.Implementation) {
		return nil, r.cycle(chain, d.Implementation)
	}

	v, created, err := d.slot.getOrCreate(func() (any, error) {
		return r.construct(d.Implementation, chain)
	})
	if created {
		r.metrics.RecordSingletonConstructed(d.Implementation)
		r.logger.Debug("singleton constructed", logging.Field{Key: "implementation", Value: d.Implementation})
	}
	return v, err
}

func (d *SingletonClassDefinition) kind() string { return "singleton" }

func (d *SingletonClassDefinition) String() string { return "singleton(" + d.Implementation + ")" }

// Resolved 报告单例是否已创建
func (d *SingletonClassDefinition) Resolved() bool {
	_, ok := d.slot.load()
	return ok
}
