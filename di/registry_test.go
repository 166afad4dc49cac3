package di_test

import (
	"reflect"
	"testing"

	"github.com/gocrud/autowire/di"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct{}

func TestKeyOf(t *testing.T) {
	assert.Equal(t, "github.com/gocrud/autowire/di_test.widget", di.KeyOf[widget]())
	assert.Equal(t, di.KeyOf[widget](), di.KeyOf[*widget]())
	assert.Equal(t, di.KeyOf[widget](), di.KeyOf[**widget]())
	assert.Equal(t, "github.com/gocrud/autowire/di.Container", di.ContainerKey)
	assert.Equal(t, "string", di.KeyOf[string]())
	assert.Equal(t, "[]string", di.KeyOf[[]string]())
	assert.Equal(t, "map[string]int", di.KeyOf[map[string]int]())
}

func TestRegistry_Provide(t *testing.T) {
	r := di.NewRegistry()

	key, err := r.Provide(NewB)
	require.NoError(t, err)
	assert.Equal(t, di.KeyOf[B](), key)
	assert.True(t, r.Has(key))

	desc, ok := r.Lookup(key)
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(&B{}), desc.Type)
	assert.False(t, desc.Abstract)
	assert.Empty(t, desc.Params)

	// 同一个键不能注册两次
	_, err = r.Provide(NewB)
	var arg *di.InvalidArgumentError
	require.ErrorAs(t, err, &arg)

	custom, err := r.ProvideAs("custom.B", NewB)
	require.NoError(t, err)
	assert.Equal(t, "custom.B", custom)
	// 类型到键的反向映射保留第一次注册
	assert.Equal(t, di.KeyOf[B](), r.KeyFor(reflect.TypeOf(&B{})))
}

func TestRegistry_ProvideErrors(t *testing.T) {
	r := di.NewRegistry()

	tests := []struct {
		name   string
		ctor   any
		params []di.Param
	}{
		{"nil", nil, nil},
		{"not a function", 42, nil},
		{"no results", func() {}, nil},
		{"second result not error", func() (*B, int) { return nil, 0 }, nil},
		{"too many results", func() (*B, *B, error) { return nil, nil, nil }, nil},
		{"param count mismatch", NewA, []di.Param{di.Arg("a"), di.Arg("b")}},
		{"unnamed scalar", func(host string) *F { return nil }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Provide(tt.ctor, tt.params...)
			var arg *di.InvalidArgumentError
			require.ErrorAs(t, err, &arg)
		})
	}

	_, err := r.ProvideAs("", NewB)
	var arg *di.InvalidArgumentError
	assert.ErrorAs(t, err, &arg)
}

func TestRegistry_Interface(t *testing.T) {
	r := di.NewRegistry()

	key, err := r.Interface(di.TypeOf[IA]())
	require.NoError(t, err)
	assert.Equal(t, di.KeyOf[IA](), key)

	// 同一类型重复注册不报错
	again, err := r.Interface(di.TypeOf[IA]())
	require.NoError(t, err)
	assert.Equal(t, key, again)

	// 同一个键不同类型报错
	_, err = r.InterfaceAs(key, di.TypeOf[IC]())
	var arg *di.InvalidArgumentError
	assert.ErrorAs(t, err, &arg)

	_, err = r.Interface(nil)
	assert.ErrorAs(t, err, &arg)

	desc, ok := r.Lookup(key)
	require.True(t, ok)
	assert.True(t, desc.Abstract)

	container, ok := r.Lookup(di.ContainerKey)
	require.True(t, ok)
	assert.True(t, container.Abstract)
}

func TestRegistry_ParamInference(t *testing.T) {
	r := newRegistry(t)

	d, ok := r.Lookup(di.KeyOf[D]())
	require.True(t, ok)
	assert.Equal(t, []di.Param{
		{Type: di.KeyOf[IA]()},
		{Type: di.KeyOf[IC]()},
	}, d.Params)

	g, ok := r.Lookup(di.KeyOf[G]())
	require.True(t, ok)
	assert.Equal(t, []di.Param{{Name: "databaseHost", Named: "DB_HOST"}}, g.Params)

	self, ok := r.Lookup(di.KeyOf[Self]())
	require.True(t, ok)
	assert.Equal(t, di.ContainerKey, self.Params[0].Type)
}

func TestRegistry_ExplicitTypeKey(t *testing.T) {
	r := newRegistry(t)
	_, err := r.ProvideAs("special.D", func(a IA) *D { return &D{A: a} }, di.Param{Type: "special.IA"})
	require.NoError(t, err)
	_, err = r.InterfaceAs("special.IA", di.TypeOf[IA]())
	require.NoError(t, err)

	a := &A{}
	c := build(t, r, false, di.BinderFunc(func(b *di.BaseBinder) error {
		return b.BindInstance("special.IA", a)
	}))

	d, err := di.Resolve[*D](c, "special.D")
	require.Error(t, err, "special.D is not bound and autowiring is off")

	c = build(t, r, true, di.BinderFunc(func(b *di.BaseBinder) error {
		return b.BindInstance("special.IA", a)
	}))
	d, err = di.Resolve[*D](c, "special.D")
	require.NoError(t, err)
	assert.Same(t, a, d.A)
}

func TestRegistry_Annotate(t *testing.T) {
	r := newRegistry(t)

	require.NoError(t, r.Annotate(di.KeyOf[F](), 0, "ALT_HOST"))
	c := build(t, r, true, di.BinderFunc(func(b *di.BaseBinder) error {
		return b.BindScalar("ALT_HOST", "alt")
	}))
	f, err := di.Resolve[*F](c, di.KeyOf[F]())
	require.NoError(t, err)
	assert.Equal(t, "alt", f.Host)

	// 清除备用键
	require.NoError(t, r.Annotate(di.KeyOf[F](), 0, ""))
	desc, _ := r.Lookup(di.KeyOf[F]())
	assert.Empty(t, desc.Params[0].Named)

	var arg *di.InvalidArgumentError
	assert.ErrorAs(t, r.Annotate("nope", 0, "X"), &arg)
	assert.ErrorAs(t, r.Annotate(di.KeyOf[IA](), 0, "X"), &arg)
	assert.ErrorAs(t, r.Annotate(di.KeyOf[F](), 1, "X"), &arg)
}

func TestRegistry_Keys(t *testing.T) {
	r := di.NewRegistry()
	_, err := r.Provide(NewB)
	require.NoError(t, err)

	assert.Equal(t, []string{di.ContainerKey, di.KeyOf[B]()}, r.Keys())
}

func TestPackageHelpers(t *testing.T) {
	type helperOnly struct{ N int }

	if !di.DefaultRegistry.Has("helper.only") {
		key := di.ProvideAs("helper.only", func() *helperOnly { return &helperOnly{N: 1} })
		assert.Equal(t, "helper.only", key)
	}
	assert.True(t, di.DefaultRegistry.Has("helper.only"))
	assert.Panics(t, func() { di.ProvideAs("helper.only", func() *helperOnly { return nil }) })
	assert.Panics(t, func() { di.Provide("not a function") })

	type helperIface interface{ Helper() }
	ifaceKey := di.Interface[helperIface]()
	assert.Equal(t, ifaceKey, di.Interface[helperIface]())
}
