package di_test

import (
	"testing"
	"time"

	"github.com/gocrud/autowire/di"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// attachedBinder 通过 Builder 附加注册表后返回 BaseBinder，便于直接调用 Bind*
func attachedBinder(t *testing.T, r *di.Registry) *di.BaseBinder {
	t.Helper()
	var captured *di.BaseBinder
	_, err := di.NewBuilder(di.BinderFunc(func(b *di.BaseBinder) error {
		captured = b
		return nil
	})).WithRegistry(r).Build()
	require.NoError(t, err)
	return captured
}

func TestBindScalar(t *testing.T) {
	b := attachedBinder(t, newRegistry(t))

	require.NoError(t, b.BindScalar("DB_HOST", "localhost"))
	require.NoError(t, b.BindScalar("DB_PORT", 3309))
	require.NoError(t, b.BindScalar("DEBUG", true))
	require.NoError(t, b.BindScalar("RATIO", 0.5))
	require.NoError(t, b.BindScalar("TIMEOUT", 5*time.Second))

	err := b.BindScalar("DB_HOST", "other")
	var dup *di.DuplicateBindingError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "DB_HOST", dup.Key)

	// 第一次绑定仍然有效
	def := b.Bindings()["DB_HOST"].(*di.ScalarDefinition)
	assert.Equal(t, "localhost", def.Value)

	var target *di.InvalidBindingTargetError
	assert.ErrorAs(t, b.BindScalar("OBJ", &B{}), &target)
	assert.ErrorAs(t, b.BindScalar("NIL", nil), &target)
	assert.ErrorAs(t, b.BindScalar("LIST", []string{"a"}), &target)
}

func TestBindInstance(t *testing.T) {
	b := attachedBinder(t, newRegistry(t))
	b1 := &B{}

	require.NoError(t, b.BindInstance(di.KeyOf[B](), b1))
	assert.Same(t, b1, b.Bindings()[di.KeyOf[B]()].(*di.InstanceDefinition).Instance)

	// 实例可以绑定到接口键
	require.NoError(t, b.BindInstance(di.KeyOf[IA](), &A{}))

	var dup *di.DuplicateBindingError
	assert.ErrorAs(t, b.BindInstance(di.KeyOf[B](), &B{}), &dup)

	tests := []struct {
		name     string
		key      string
		instance any
	}{
		{"unregistered key", "DB_HOST", "localhost"},
		{"nil instance", di.KeyOf[C](), nil},
		{"not assignable", di.KeyOf[C](), &B{}},
		{"value instead of pointer", di.KeyOf[D](), D{}},
		{"interface not implemented", di.KeyOf[IC](), &A{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var target *di.InvalidBindingTargetError
			require.ErrorAs(t, b.BindInstance(tt.key, tt.instance), &target)
			assert.Equal(t, tt.key, target.Key)
		})
	}
}

func TestBind(t *testing.T) {
	b := attachedBinder(t, newRegistry(t))

	require.NoError(t, b.Bind(di.KeyOf[IA](), di.KeyOf[A](), di.ScopeSingleton))
	require.NoError(t, b.Bind(di.KeyOf[IC](), di.KeyOf[C]()))
	require.NoError(t, b.Bind(di.KeyOf[D](), di.KeyOf[D](), di.ScopeDefault))

	bindings := b.Bindings()
	assert.IsType(t, &di.SingletonClassDefinition{}, bindings[di.KeyOf[IA]()])
	assert.IsType(t, &di.ClassDefinition{}, bindings[di.KeyOf[IC]()])
	assert.IsType(t, &di.ClassDefinition{}, bindings[di.KeyOf[D]()])

	var dup *di.DuplicateBindingError
	assert.ErrorAs(t, b.Bind(di.KeyOf[IA](), di.KeyOf[A]()), &dup)

	var arg *di.InvalidArgumentError
	assert.ErrorAs(t, b.Bind(di.KeyOf[E](), di.KeyOf[E](), di.ScopeDefault, di.ScopeSingleton), &arg)
	assert.ErrorAs(t, b.Bind(di.KeyOf[E](), di.KeyOf[E](), di.Scope(7)), &arg)
	assert.Equal(t, "scope", arg.Argument)

	tests := []struct {
		name string
		key  string
		impl string
	}{
		{"unregistered key", "nope", di.KeyOf[A]()},
		{"unregistered implementation", di.KeyOf[IE](), "nope"},
		{"abstract implementation", di.KeyOf[IE](), di.KeyOf[IA]()},
		{"not assignable", di.KeyOf[IE](), di.KeyOf[A]()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var target *di.InvalidBindingTargetError
			require.ErrorAs(t, b.Bind(tt.key, tt.impl), &target)
			assert.Equal(t, tt.key, target.Key)
		})
	}
}

func TestBaseBinder_BindingsIsCopy(t *testing.T) {
	b := attachedBinder(t, newRegistry(t))
	require.NoError(t, b.BindScalar("K", "v"))

	bindings := b.Bindings()
	delete(bindings, "K")
	assert.Contains(t, b.Bindings(), "K")
}

func TestBaseBinder_DefaultRegistry(t *testing.T) {
	var b di.BaseBinder
	assert.Same(t, di.DefaultRegistry, b.Registry())
	assert.NoError(t, b.BindScalar("K", 1))
}

func TestScope_String(t *testing.T) {
	assert.Equal(t, "default", di.ScopeDefault.String())
	assert.Equal(t, "singleton", di.ScopeSingleton.String())
	assert.Equal(t, "Scope(9)", di.Scope(9).String())
}
