package di

import (
	"fmt"
	"maps"
	"reflect"
)

// Binder 声明一组绑定。用户通过嵌入 BaseBinder 并实现 Configure 来满足该接口：
//
//	type AppBinder struct{ di.BaseBinder }
//
//	func (b *AppBinder) Configure() error {
//		return b.BindScalar("DB_HOST", "localhost")
//	}
type Binder interface {
	// Configure 声明绑定，由 Builder 调用
	Configure() error
	// Bindings 返回已声明的绑定
	Bindings() map[string]Definition
	attach(registry *Registry)
}

// BaseBinder 提供 Bind* 方法与绑定表。
// Builder 在调用 Configure 之前会重置绑定表，因此在 Configure 之外的绑定不会生效。
type BaseBinder struct {
	registry *Registry
	bindings map[string]Definition
}

func (b *BaseBinder) attach(registry *Registry) {
	b.registry = registry
	b.bindings = make(map[string]Definition)
}

// Registry 返回 Builder 附加的注册表，未附加时为 DefaultRegistry
func (b *BaseBinder) Registry() *Registry {
	if b.registry == nil {
		return DefaultRegistry
	}
	return b.registry
}

// Bindings 返回绑定表的副本
func (b *BaseBinder) Bindings() map[string]Definition {
	return maps.Clone(b.bindings)
}

func (b *BaseBinder) add(key string, def Definition) error {
	if key == "" {
		return &InvalidArgumentError{Argument: "key", Value: key, Reason: "key must not be empty"}
	}
	if _, exists := b.bindings[key]; exists {
		return &DuplicateBindingError{Key: key}
	}
	if b.bindings == nil {
		b.bindings = make(map[string]Definition)
	}
	b.bindings[key] = def
	return nil
}

// BindScalar 把键绑定到布尔、数字或字符串值
func (b *BaseBinder) BindScalar(key string, value any) error {
	if _, exists := b.bindings[key]; exists {
		return &DuplicateBindingError{Key: key}
	}
	if !isScalar(value) {
		return &InvalidBindingTargetError{Key: key, Reason: fmt.Sprintf("%T is not a scalar value", value)}
	}
	return b.add(key, &ScalarDefinition{Value: value})
}

// BindInstance 把已注册的类型键绑定到现成的实例。实例必须可赋值给该键注册的类型。
func (b *BaseBinder) BindInstance(key string, instance any) error {
	if _, exists := b.bindings[key]; exists {
		return &DuplicateBindingError{Key: key}
	}

	desc, ok := b.Registry().lookup(key)
	if !ok {
		return &InvalidBindingTargetError{Key: key, Reason: "key is not a registered type"}
	}
	if instance == nil {
		return &InvalidBindingTargetError{Key: key, Reason: "instance is nil"}
	}
	if t := reflect.TypeOf(instance); !t.AssignableTo(desc.typ) {
		return &InvalidBindingTargetError{Key: key, Reason: fmt.Sprintf("%v is not assignable to %v", t, desc.typ)}
	}
	return b.add(key, &InstanceDefinition{Instance: instance})
}

// Bind 把类型键绑定到实现。实现必须已注册构造函数并可赋值给键的类型。
// scope 可省略（ScopeDefault）或给出一个值。
func (b *BaseBinder) Bind(key, implementation string, scope ...Scope) error {
	if _, exists := b.bindings[key]; exists {
		return &DuplicateBindingError{Key: key}
	}

	s := ScopeDefault
	switch len(scope) {
	case 0:
	case 1:
		s = scope[0]
		if s != ScopeDefault && s != ScopeSingleton {
			return &InvalidArgumentError{Argument: "scope", Value: s, Reason: "unknown scope"}
		}
	default:
		return &InvalidArgumentError{Argument: "scope", Value: scope, Reason: "at most one scope is allowed"}
	}

	registry := b.Registry()
	keyDesc, ok := registry.lookup(key)
	if !ok {
		return &InvalidBindingTargetError{Key: key, Reason: "key is not a registered type"}
	}
	implDesc, ok := registry.lookup(implementation)
	if !ok {
		return &InvalidBindingTargetError{Key: key, Reason: fmt.Sprintf("implementation %s is not registered", implementation)}
	}
	if implDesc.abstract {
		return &InvalidBindingTargetError{Key: key, Reason: fmt.Sprintf("implementation %s is abstract", implementation)}
	}
	if !implDesc.typ.AssignableTo(keyDesc.typ) {
		return &InvalidBindingTargetError{
			Key:    key,
			Reason: fmt.Sprintf("%v (%s) is not assignable to %v", implDesc.typ, implementation, keyDesc.typ),
		}
	}

	if s == ScopeSingleton {
		return b.add(key, &SingletonClassDefinition{Implementation: implementation})
	}
	return b.add(key, &ClassDefinition{Implementation: implementation})
}

// binderFunc 让普通函数作为 Binder 使用
type binderFunc struct {
	BaseBinder
	fn func(b *BaseBinder) error
}

func (f *binderFunc) Configure() error {
	return f.fn(&f.BaseBinder)
}

// BinderFunc 用函数声明绑定，适合小型配置和测试
func BinderFunc(fn func(b *BaseBinder) error) Binder {
	return &binderFunc{fn: fn}
}
