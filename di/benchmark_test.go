package di_test

import (
	"testing"

	"github.com/gocrud/autowire/di"
)

func BenchmarkGet_Singleton(b *testing.B) {
	c := build(b, newRegistry(b), true)
	key := di.KeyOf[IA]()
	c.MustGet(key)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Get(key)
	}
}

func BenchmarkGet_Scalar(b *testing.B) {
	c := build(b, newRegistry(b), true)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Get("DB_HOST")
	}
}

func BenchmarkGet_AutowiredGraph(b *testing.B) {
	c := build(b, newRegistry(b), true)
	key := di.KeyOf[D]()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Get(key)
	}
}

func BenchmarkGet_SingletonParallel(b *testing.B) {
	c := build(b, newRegistry(b), true)
	key := di.KeyOf[IA]()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = c.Get(key)
		}
	})
}
