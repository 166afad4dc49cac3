package di

import (
	"fmt"
	"strings"
)

// DuplicateBindingError 同一个 Binder 中重复绑定同一个键。
type DuplicateBindingError struct {
	Key string
}

func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf("di: key %q is already bound", e.Key)
}

// InvalidBindingTargetError 绑定目标与键不匹配：键未注册、实现不可赋值给键的类型、
// 实例为 nil 或不是标量等。
type InvalidBindingTargetError struct {
	Key    string
	Reason string
}

func (e *InvalidBindingTargetError) Error() string {
	return fmt.Sprintf("di: invalid binding target for %q: %s", e.Key, e.Reason)
}

// InvalidArgumentError 参数不合法，例如未知的作用域或无法注册的构造函数。
type InvalidArgumentError struct {
	Argument string
	Value    any
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("di: invalid argument %s: %v", e.Argument, e.Value)
	}
	return fmt.Sprintf("di: invalid argument %s (%v): %s", e.Argument, e.Value, e.Reason)
}

// DependencyNotFoundError 键不存在于绑定表中。Container.Get 原样返回该错误。
type DependencyNotFoundError struct {
	Key string
}

func (e *DependencyNotFoundError) Error() string {
	return fmt.Sprintf("di: dependency %q not found", e.Key)
}

// CircularDependencyError 某个实现在自己的解析链中再次出现。
// Chain 按遇到的顺序记录实现键，最后一个元素与重复出现的键相同。
type CircularDependencyError struct {
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return "di: circular dependency detected: " + strings.Join(e.Chain, " > ")
}

// InvalidOperationError 解析过程中无法执行的操作：
// 类型不可实例化、联合类型或可变参数、自动装配关闭、参数值不可用。
type InvalidOperationError struct {
	Type   string
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("di: cannot resolve %s: %s", e.Type, e.Reason)
}

// UnresolvableDependencyError 包装一次顶层 Get 中除 DependencyNotFoundError
// 以外的所有解析错误。
type UnresolvableDependencyError struct {
	Key   string
	Cause error
}

func (e *UnresolvableDependencyError) Error() string {
	return fmt.Sprintf("di: unable to resolve %q: %v", e.Key, e.Cause)
}

func (e *UnresolvableDependencyError) Unwrap() error {
	return e.Cause
}
