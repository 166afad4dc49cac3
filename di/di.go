package di

import (
	"fmt"
	"reflect"
)

// TypeOf 返回 T 的 reflect.Type，T 可以是接口类型
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// KeyOf 返回类型 T 的默认绑定键：包路径 + "." + 类型名，去掉指针。
// *pkg.A 与 pkg.A 得到同一个键；未命名类型使用 reflect.Type.String()。
func KeyOf[T any]() string {
	return keyOfType(TypeOf[T]())
}

func keyOfType(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// Provide 在 DefaultRegistry 中注册构造函数，失败时 panic。
// 一般在类型所在包的 init 中调用。
func Provide(ctor any, params ...Param) string {
	key, err := DefaultRegistry.Provide(ctor, params...)
	if err != nil {
		panic(err)
	}
	return key
}

// ProvideAs 使用显式键在 DefaultRegistry 中注册构造函数，失败时 panic
func ProvideAs(key string, ctor any, params ...Param) string {
	key, err := DefaultRegistry.ProvideAs(key, ctor, params...)
	if err != nil {
		panic(err)
	}
	return key
}

// Interface 在 DefaultRegistry 中注册抽象类型 T，失败时 panic
func Interface[T any]() string {
	key, err := DefaultRegistry.Interface(TypeOf[T]())
	if err != nil {
		panic(err)
	}
	return key
}

// Resolve 解析键并断言为 T
func Resolve[T any](c *Container, key string) (T, error) {
	var zero T
	v, err := c.Get(key)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, &InvalidOperationError{
			Type:   key,
			Reason: fmt.Sprintf("resolved value of type %T is not %v", v, TypeOf[T]()),
		}
	}
	return t, nil
}

// ResolveType 使用 T 在容器注册表中的键解析
func ResolveType[T any](c *Container) (T, error) {
	return Resolve[T](c, c.registry.KeyFor(TypeOf[T]()))
}

// MustResolve 与 Resolve 相同，失败时 panic
func MustResolve[T any](c *Container, key string) T {
	t, err := Resolve[T](c, key)
	if err != nil {
		panic(err)
	}
	return t
}
