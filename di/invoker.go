package di

import (
	"fmt"
	"math"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Invoker 实例化调用器
// 封装了反射调用的细节，统一检查 error 返回值和 nil 实例
type Invoker func(args []reflect.Value) (any, error)

// newInvoker 为 func(...) T 或 func(...) (T, error) 创建调用器
func newInvoker(fn reflect.Value) Invoker {
	return func(args []reflect.Value) (any, error) {
		results := fn.Call(args)

		if len(results) == 2 && !results[1].IsNil() {
			return nil, fmt.Errorf("constructor failed: %w", results[1].Interface().(error))
		}

		instance := results[0]
		if isNilValue(instance) {
			return nil, fmt.Errorf("constructor returned nil instance")
		}
		return instance.Interface(), nil
	}
}

// isNilValue 判断可为 nil 的值是否为 nil
func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

// convertArg 把解析出的值转换为参数类型。
// 可直接赋值的值原样传入；同类标量（数字之间、字符串之间、布尔之间）按 Go 规则转换。
func convertArg(value any, target reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch target.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(target), nil
		}
		return reflect.Value{}, fmt.Errorf("nil cannot be used as %v", target)
	}

	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(target) {
		return v, nil
	}
	if sameScalarFamily(v.Kind(), target.Kind()) && v.Type().ConvertibleTo(target) {
		if familyOf(target.Kind()) == numberFamily && !fitsNumber(v, target) {
			return reflect.Value{}, fmt.Errorf("value %v does not fit in %v", value, target)
		}
		return v.Convert(target), nil
	}
	return reflect.Value{}, fmt.Errorf("value of type %v cannot be used as %v", v.Type(), target)
}

// fitsNumber 判断数值 v 转换为 target 后是否保持原值：
// 整数不能溢出，负数不能进入无符号类型，带小数的浮点数不能进入整数类型。
func fitsNumber(v reflect.Value, target reflect.Type) bool {
	dst := reflect.New(target).Elem()

	switch {
	case isSigned(target.Kind()):
		switch {
		case isSigned(v.Kind()):
			return !dst.OverflowInt(v.Int())
		case isUnsigned(v.Kind()):
			u := v.Uint()
			return u <= math.MaxInt64 && !dst.OverflowInt(int64(u))
		default:
			f := v.Float()
			return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 && !dst.OverflowInt(int64(f))
		}

	case isUnsigned(target.Kind()):
		switch {
		case isSigned(v.Kind()):
			n := v.Int()
			return n >= 0 && !dst.OverflowUint(uint64(n))
		case isUnsigned(v.Kind()):
			return !dst.OverflowUint(v.Uint())
		default:
			// float64(math.MaxUint64) 等于 2^64
			f := v.Float()
			return f == math.Trunc(f) && f >= 0 && f < math.MaxUint64 && !dst.OverflowUint(uint64(f))
		}

	default:
		switch {
		case isSigned(v.Kind()):
			return !dst.OverflowFloat(float64(v.Int()))
		case isUnsigned(v.Kind()):
			return !dst.OverflowFloat(float64(v.Uint()))
		default:
			return !dst.OverflowFloat(v.Float())
		}
	}
}

func isSigned(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUnsigned(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

type scalarFamily int

const (
	notScalar scalarFamily = iota
	boolFamily
	numberFamily
	stringFamily
)

func familyOf(k reflect.Kind) scalarFamily {
	switch k {
	case reflect.Bool:
		return boolFamily
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return numberFamily
	case reflect.String:
		return stringFamily
	default:
		return notScalar
	}
}

func sameScalarFamily(a, b reflect.Kind) bool {
	fa := familyOf(a)
	return fa != notScalar && fa == familyOf(b)
}

// isScalar 判断值是否可以作为标量绑定（布尔、数字或字符串，包括以它们为底层类型的命名类型）
func isScalar(value any) bool {
	if value == nil {
		return false
	}
	return familyOf(reflect.TypeOf(value).Kind()) != notScalar
}
