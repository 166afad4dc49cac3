package di

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/gocrud/autowire/logging"
	"github.com/gocrud/autowire/metrics"
)

// resolver 负责按构造函数描述创建实例。
// 构建后 bindings 只读，可以被多个协程同时使用。
type resolver struct {
	registry *Registry
	bindings map[string]Definition
	options  Options
	logger   logging.Logger
	metrics  *metrics.Collector
}

// construct 创建实现 impl 的新实例。chain 是当前正在构造的实现键。
func (r *resolver) construct(impl string, chain []string) (any, error) {
	if slices.Contains(chain, impl) {
		return nil, r.cycle(chain, impl)
	}

	desc, ok := r.registry.lookup(impl)
	if !ok {
		return nil, &InvalidOperationError{Type: impl, Reason: "type is not registered and cannot be instantiated"}
	}
	if desc.abstract {
		return nil, &InvalidOperationError{Type: impl, Reason: "type is abstract and cannot be instantiated"}
	}

	// 每一层都复制，避免兄弟依赖共享同一个底层数组
	next := make([]string, len(chain), len(chain)+1)
	copy(next, chain)
	next = append(next, impl)

	var views []*Container
	defer func() {
		for _, v := range views {
			v.release()
		}
	}()

	args := make([]reflect.Value, len(desc.params))
	for i, spec := range desc.params {
		value, err := r.resolveParam(impl, i, spec, next)
		if err != nil {
			return nil, err
		}
		if c, ok := value.(*Container); ok {
			view := c.within(next)
			views = append(views, view)
			value = view
		}
		arg, err := convertArg(value, spec.typ)
		if err != nil {
			return nil, &InvalidOperationError{Type: impl, Reason: fmt.Sprintf("parameter %d (%s): %v", i, spec.name, err)}
		}
		args[i] = arg
	}

	instance, err := desc.invoke(args)
	if err != nil {
		return nil, fmt.Errorf("di: constructing %s: %w", impl, err)
	}
	return instance, nil
}

func (r *resolver) resolveParam(impl string, position int, spec paramSpec, chain []string) (any, error) {
	def, err := r.paramTarget(impl, position, spec)
	if err != nil {
		return nil, err
	}
	return def.resolve(r, chain)
}

// paramTarget 找到参数对应的定义，不创建任何实例。
// 按类型解析的参数在未绑定且启用自动装配时得到一个临时 ClassDefinition。
func (r *resolver) paramTarget(impl string, position int, spec paramSpec) (Definition, error) {
	switch spec.kind {
	case paramVariadic:
		return nil, &InvalidOperationError{
			Type:   impl,
			Reason: fmt.Sprintf("variadic parameter %d (%v) cannot be resolved", position, spec.typ),
		}

	case paramUnion:
		return nil, &InvalidOperationError{
			Type:   impl,
			Reason: fmt.Sprintf("parameter %d has union type %s", position, spec.declared),
		}

	case paramTyped:
		key := r.registry.declaredKey(spec)
		if def, ok := r.bindings[key]; ok {
			return def, nil
		}
		if !r.options.AutoWiring {
			return nil, &InvalidOperationError{
				Type:   impl,
				Reason: fmt.Sprintf("autowiring is disabled and %s is not bound (parameter %d)", key, position),
			}
		}
		return &ClassDefinition{Implementation: key}, nil

	default:
		// 按名称解析不受自动装配开关影响
		if def, ok := r.bindings[spec.name]; ok {
			return def, nil
		}
		name := spec.name
		if alt := r.registry.namedKey(impl, position); alt != "" {
			name = alt
			if def, ok := r.bindings[alt]; ok {
				return def, nil
			}
		}
		return nil, &DependencyNotFoundError{Key: name}
	}
}

func (r *resolver) cycle(chain []string, impl string) error {
	full := make([]string, 0, len(chain)+1)
	full = append(full, chain...)
	full = append(full, impl)

	r.metrics.RecordDependencyCycle()
	return &CircularDependencyError{Chain: full}
}
