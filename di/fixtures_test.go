package di_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/gocrud/autowire/di"
	"github.com/stretchr/testify/require"
)

type IA interface{ Name() string }

type A struct{ B *B }

func (a *A) Name() string { return "A" }

func NewA(b *B) *A { return &A{B: b} }

type B struct{ ID int }

func NewB() *B { return &B{ID: 1} }

type IC interface{ Value() IA }

type C struct{ A IA }

func (c *C) Value() IA { return c.A }

func NewC(a IA) *C { return &C{A: a} }

type D struct {
	A IA
	C IC
}

func NewD(a IA, c IC) *D { return &D{A: a, C: c} }

type IE interface{ Inner() *D }

type E struct{ D *D }

func (e *E) Inner() *D { return e.D }

func NewE(d *D) *E { return &E{D: d} }

// F 通过参数名 DB_HOST 获取标量
type F struct{ Host string }

func NewF(host string) *F { return &F{Host: host} }

// G 的参数名未绑定，通过备用键 DB_HOST 获取
type G struct{ Host string }

func NewG(databaseHost string) *G { return &G{Host: databaseHost} }

// H -> I -> J -> H
type H struct{ I *I }
type I struct{ J *J }
type J struct{ H *H }

func NewH(i *I) *H { return &H{I: i} }
func NewI(j *J) *I { return &I{J: j} }
func NewJ(h *H) *J { return &J{H: h} }

type Port struct{ Value int64 }

func NewPort(port int64) *Port { return &Port{Value: port} }

type Variadic struct{ Names []string }

func NewVariadic(names ...string) *Variadic { return &Variadic{Names: names} }

type Union struct{ V any }

func NewUnion(v any) *Union { return &Union{V: v} }

type Failing struct{}

var errBroken = errors.New("broken")

func NewFailing() (*Failing, error) { return nil, errBroken }

type Nil struct{}

func NewNil() *Nil { return nil }

type Self struct{ C *di.Container }

func NewSelf(c *di.Container) *Self { return &Self{C: c} }

type Counted struct{ N int64 }

// newRegistry 创建包含所有测试类型的注册表
func newRegistry(t testing.TB) *di.Registry {
	t.Helper()
	r := di.NewRegistry()

	must := func(_ string, err error) {
		t.Helper()
		require.NoError(t, err)
	}

	must(r.Interface(di.TypeOf[IA]()))
	must(r.Interface(di.TypeOf[IC]()))
	must(r.Interface(di.TypeOf[IE]()))
	must(r.Provide(NewA))
	must(r.Provide(NewB))
	must(r.Provide(NewC))
	must(r.Provide(NewD))
	must(r.Provide(NewE))
	must(r.Provide(NewF, di.Arg("DB_HOST")))
	must(r.Provide(NewG, di.Arg("databaseHost").WithNamed("DB_HOST")))
	must(r.Provide(NewH))
	must(r.Provide(NewI))
	must(r.Provide(NewJ))
	must(r.Provide(NewPort, di.Arg("DB_PORT")))
	must(r.Provide(NewVariadic))
	must(r.Provide(NewUnion, di.Param{Name: "v", Type: di.KeyOf[A]() + "|" + di.KeyOf[B]()}))
	must(r.Provide(NewFailing))
	must(r.Provide(NewNil))
	must(r.Provide(NewSelf))
	return r
}

// countingProvider 注册一个记录构造次数的类型
func countingProvider(t testing.TB, r *di.Registry) *atomic.Int64 {
	t.Helper()
	var n atomic.Int64
	_, err := r.Provide(func() *Counted {
		return &Counted{N: n.Add(1)}
	})
	require.NoError(t, err)
	return &n
}

// mockBinder 对应端到端场景的绑定
type mockBinder struct {
	di.BaseBinder
	b1 *B
}

func (m *mockBinder) Configure() error {
	return errors.Join(
		m.BindScalar("DB_HOST", "localhost"),
		m.BindScalar("DB_PORT", 3309),
		m.Bind(di.KeyOf[IA](), di.KeyOf[A](), di.ScopeSingleton),
		m.BindInstance(di.KeyOf[B](), m.b1),
		m.Bind(di.KeyOf[IC](), di.KeyOf[C]()),
		m.Bind(di.KeyOf[IE](), di.KeyOf[E]()),
	)
}

func build(t testing.TB, r *di.Registry, autowire bool, binders ...di.Binder) *di.Container {
	t.Helper()
	if len(binders) == 0 {
		binders = []di.Binder{&mockBinder{b1: &B{ID: 42}}}
	}
	builder := di.NewBuilder(binders[0], binders[1:]...).WithRegistry(r)
	if autowire {
		builder.WithAutoWiring()
	}
	c, err := builder.Build()
	require.NoError(t, err)
	return c
}
