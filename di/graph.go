package di

import (
	"slices"
	"sort"
)

// implementationOf 返回需要构造的定义的实现键，标量与实例返回空串
func implementationOf(def Definition) string {
	switch d := def.(type) {
	case *ClassDefinition:
		return d.Implementation
	case *SingletonClassDefinition:
		return d.Implementation
	default:
		return ""
	}
}

// dependencies 返回构造 impl 时需要构造的实现键。
// 返回的错误与实际解析时遇到的错误相同。
func (r *resolver) dependencies(impl string) ([]string, error) {
	desc, ok := r.registry.lookup(impl)
	if !ok {
		return nil, &InvalidOperationError{Type: impl, Reason: "type is not registered and cannot be instantiated"}
	}
	if desc.abstract {
		return nil, &InvalidOperationError{Type: impl, Reason: "type is abstract and cannot be instantiated"}
	}

	var deps []string
	for i, spec := range desc.params {
		def, err := r.paramTarget(impl, i, spec)
		if err != nil {
			return nil, err
		}
		if dep := implementationOf(def); dep != "" {
			deps = append(deps, dep)
		}
	}
	return deps, nil
}

// buildOrder 在不创建实例的情况下检查所有绑定的实现，
// 返回依赖在前的实现键顺序。
func (r *resolver) buildOrder() ([]string, error) {
	var roots []string
	for _, def := range r.bindings {
		if impl := implementationOf(def); impl != "" {
			roots = append(roots, impl)
		}
	}
	sort.Strings(roots)

	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack, order []string

	var visit func(string) error
	visit = func(u string) error {
		visited[u] = true
		onStack[u] = true
		stack = append(stack, u)

		deps, err := r.dependencies(u)
		if err != nil {
			return err
		}
		for _, v := range deps {
			if onStack[v] {
				chain := slices.Clone(stack[slices.Index(stack, v):])
				return &CircularDependencyError{Chain: append(chain, v)}
			}
			if !visited[v] {
				if err := visit(v); err != nil {
					return err
				}
			}
		}

		onStack[u] = false
		stack = stack[:len(stack)-1]
		order = append(order, u)
		return nil
	}

	for _, root := range roots {
		if !visited[root] {
			if err := visit(root); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}
