package di

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Param 描述构造函数的一个参数。
//
// Go 在运行时无法读取参数名，因此按名称解析的参数（标量和 any）必须通过 Param 声明名称。
//   - Name  按名称解析时使用的绑定键
//   - Type  显式声明的依赖键；"A|B" 表示联合类型（无法解析）
//   - Named 参数名未绑定时使用的备用键
type Param struct {
	Name  string
	Type  string
	Named string
}

// Arg 创建一个只有名称的参数描述
func Arg(name string) Param {
	return Param{Name: name}
}

// WithNamed 设置备用键
func (p Param) WithNamed(key string) Param {
	p.Named = key
	return p
}

// WithType 设置显式声明的依赖键
func (p Param) WithType(key string) Param {
	p.Type = key
	return p
}

type paramKind int

const (
	paramByName paramKind = iota
	paramTyped
	paramUnion
	paramVariadic
)

func (k paramKind) String() string {
	switch k {
	case paramByName:
		return "by-name"
	case paramTyped:
		return "typed"
	case paramUnion:
		return "union"
	case paramVariadic:
		return "variadic"
	default:
		return "unknown"
	}
}

type paramSpec struct {
	name     string
	kind     paramKind
	declared string       // 显式声明的键，空表示由 typ 推断
	typ      reflect.Type // Go 参数类型
}

type descriptor struct {
	key      string
	typ      reflect.Type
	abstract bool
	params   []paramSpec
	invoke   Invoker
}

type namedSlot struct {
	impl     string
	position int
}

// Descriptor 是注册信息的只读视图
type Descriptor struct {
	Key      string
	Type     reflect.Type
	Abstract bool
	Params   []Param
}

// Registry 保存可注入类型的构造函数描述。
// 通常在 init 中填充，构建容器时只读取。
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]*descriptor
	byType      map[reflect.Type]string
	named       map[namedSlot]string
}

// ContainerKey 是容器自身的绑定键
var ContainerKey = KeyOf[*Container]()

// DefaultRegistry 包级辅助函数使用的默认注册表
var DefaultRegistry = NewRegistry()

// NewRegistry 创建注册表，容器类型已作为抽象类型注册在 ContainerKey 下
func NewRegistry() *Registry {
	r := &Registry{
		descriptors: make(map[string]*descriptor),
		byType:      make(map[reflect.Type]string),
		named:       make(map[namedSlot]string),
	}
	if _, err := r.InterfaceAs(ContainerKey, reflect.TypeOf((*Container)(nil))); err != nil {
		panic(err)
	}
	return r
}

// Provide 注册构造函数，键由返回类型推断（见 KeyOf）。
// ctor 必须是 func(...) T 或 func(...) (T, error)。
func (r *Registry) Provide(ctor any, params ...Param) (string, error) {
	fnType, err := constructorType(ctor)
	if err != nil {
		return "", err
	}
	return r.ProvideAs(keyOfType(fnType.Out(0)), ctor, params...)
}

// ProvideAs 使用显式键注册构造函数
func (r *Registry) ProvideAs(key string, ctor any, params ...Param) (string, error) {
	if key == "" {
		return "", &InvalidArgumentError{Argument: "key", Value: key, Reason: "key must not be empty"}
	}
	fnType, err := constructorType(ctor)
	if err != nil {
		return "", err
	}

	if len(params) > 0 && len(params) != fnType.NumIn() {
		return "", &InvalidArgumentError{
			Argument: "params",
			Value:    len(params),
			Reason:   fmt.Sprintf("constructor for %s takes %d parameters", key, fnType.NumIn()),
		}
	}

	specs := make([]paramSpec, fnType.NumIn())
	for i := range specs {
		var p Param
		if len(params) > 0 {
			p = params[i]
		}
		spec, err := newParamSpec(fnType, i, p)
		if err != nil {
			return "", &InvalidArgumentError{Argument: "params", Value: i, Reason: fmt.Sprintf("%s: %v", key, err)}
		}
		specs[i] = spec
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.descriptors[key]; exists {
		return "", &InvalidArgumentError{Argument: "key", Value: key, Reason: "already registered"}
	}

	out := fnType.Out(0)
	r.descriptors[key] = &descriptor{
		key:    key,
		typ:    out,
		params: specs,
		invoke: newInvoker(reflect.ValueOf(ctor)),
	}
	if _, exists := r.byType[out]; !exists {
		r.byType[out] = key
	}
	for i, p := range params {
		if p.Named != "" {
			r.named[namedSlot{impl: key, position: i}] = p.Named
		}
	}
	return key, nil
}

func constructorType(ctor any) (reflect.Type, error) {
	if ctor == nil {
		return nil, &InvalidArgumentError{Argument: "ctor", Value: ctor, Reason: "constructor must not be nil"}
	}
	fnType := reflect.TypeOf(ctor)
	if fnType.Kind() != reflect.Func {
		return nil, &InvalidArgumentError{Argument: "ctor", Value: fnType, Reason: "constructor must be a function"}
	}
	switch fnType.NumOut() {
	case 1:
	case 2:
		if fnType.Out(1) != errorType {
			return nil, &InvalidArgumentError{Argument: "ctor", Value: fnType, Reason: "second result must be error"}
		}
	default:
		return nil, &InvalidArgumentError{Argument: "ctor", Value: fnType, Reason: "constructor must return T or (T, error)"}
	}
	return fnType, nil
}

func newParamSpec(fnType reflect.Type, i int, p Param) (paramSpec, error) {
	spec := paramSpec{name: p.Name, declared: p.Type, typ: fnType.In(i)}

	switch {
	case fnType.IsVariadic() && i == fnType.NumIn()-1:
		spec.kind = paramVariadic
	case strings.Contains(p.Type, "|"):
		spec.kind = paramUnion
	case p.Type != "":
		spec.kind = paramTyped
	case isByNameType(spec.typ):
		spec.kind = paramByName
		if p.Name == "" {
			return spec, fmt.Errorf("parameter %d of type %v is resolved by name and needs di.Arg", i, spec.typ)
		}
	default:
		spec.kind = paramTyped
	}
	return spec, nil
}

// isByNameType 基本类型与空接口按名称解析，其余类型按类型解析
func isByNameType(t reflect.Type) bool {
	if t.Kind() == reflect.Interface {
		return t.NumMethod() == 0
	}
	return familyOf(t.Kind()) != notScalar
}

// Interface 注册一个抽象类型（只能通过 Bind 或 BindInstance 提供实现）
func (r *Registry) Interface(typ reflect.Type) (string, error) {
	if typ == nil {
		return "", &InvalidArgumentError{Argument: "type", Value: typ, Reason: "type must not be nil"}
	}
	return r.InterfaceAs(keyOfType(typ), typ)
}

// InterfaceAs 使用显式键注册抽象类型。同一键重复注册同一类型不会报错。
func (r *Registry) InterfaceAs(key string, typ reflect.Type) (string, error) {
	if key == "" || typ == nil {
		return "", &InvalidArgumentError{Argument: "key", Value: key, Reason: "key and type are required"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.descriptors[key]; ok {
		if existing.abstract && existing.typ == typ {
			return key, nil
		}
		return "", &InvalidArgumentError{Argument: "key", Value: key, Reason: "already registered"}
	}

	r.descriptors[key] = &descriptor{key: key, typ: typ, abstract: true}
	if _, exists := r.byType[typ]; !exists {
		r.byType[typ] = key
	}
	return key, nil
}

// Annotate 为实现的第 position 个参数设置备用键。
// 只在按名称解析且参数名未绑定时使用。
func (r *Registry) Annotate(typeKey string, position int, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	desc, ok := r.descriptors[typeKey]
	if !ok || desc.abstract {
		return &InvalidArgumentError{Argument: "typeKey", Value: typeKey, Reason: "no constructor registered"}
	}
	if position < 0 || position >= len(desc.params) {
		return &InvalidArgumentError{Argument: "position", Value: position, Reason: fmt.Sprintf("%s has %d parameters", typeKey, len(desc.params))}
	}
	if key == "" {
		delete(r.named, namedSlot{impl: typeKey, position: position})
		return nil
	}
	r.named[namedSlot{impl: typeKey, position: position}] = key
	return nil
}

// Has 判断键是否已注册
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.descriptors[key]
	return ok
}

// Keys 返回已注册的键（有序）
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.descriptors))
	for k := range r.descriptors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup 返回键的注册信息
func (r *Registry) Lookup(key string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.descriptors[key]
	if !ok {
		return Descriptor{}, false
	}

	out := Descriptor{Key: desc.key, Type: desc.typ, Abstract: desc.abstract}
	for i, spec := range desc.params {
		p := Param{Name: spec.name, Type: spec.declared, Named: r.named[namedSlot{impl: key, position: i}]}
		if spec.kind == paramTyped && p.Type == "" {
			p.Type = r.keyForLocked(spec.typ)
		}
		out.Params = append(out.Params, p)
	}
	return out, true
}

// KeyFor 返回类型对应的键：优先使用注册时的键，否则使用 KeyOf 规则
func (r *Registry) KeyFor(typ reflect.Type) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.keyForLocked(typ)
}

func (r *Registry) keyForLocked(typ reflect.Type) string {
	if key, ok := r.byType[typ]; ok {
		return key
	}
	return keyOfType(typ)
}

func (r *Registry) lookup(key string) (*descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.descriptors[key]
	return desc, ok
}

// declaredKey 返回按类型解析参数的依赖键
func (r *Registry) declaredKey(spec paramSpec) string {
	if spec.declared != "" {
		return spec.declared
	}
	return r.KeyFor(spec.typ)
}

func (r *Registry) namedKey(impl string, position int) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.named[namedSlot{impl: impl, position: position}]
}
