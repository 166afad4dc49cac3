package main

import (
	"errors"
	"fmt"

	"github.com/gocrud/autowire/di"
)

type Orders struct{ Users *Users }
type Users struct{ Billing *Billing }
type Billing struct{ Orders *Orders }

func main() {
	di.Provide(func(u *Users) *Orders { return &Orders{Users: u} })
	di.Provide(func(b *Billing) *Users { return &Users{Billing: b} })
	di.Provide(func(o *Orders) *Billing { return &Billing{Orders: o} })

	container, err := di.NewBuilder(di.BinderFunc(func(*di.BaseBinder) error { return nil })).
		WithAutoWiring().
		Build()
	if err != nil {
		panic(err)
	}

	_, err = container.Get(di.KeyOf[Orders]())
	fmt.Println(err)

	var cycle *di.CircularDependencyError
	if errors.As(err, &cycle) {
		for i, key := range cycle.Chain {
			fmt.Printf("%d. %s\n", i+1, key)
		}
	}

	// 静态检查同样能发现
	_, err = di.NewBuilder(di.BinderFunc(func(b *di.BaseBinder) error {
		return b.Bind(di.KeyOf[Orders](), di.KeyOf[Orders]())
	})).WithAutoWiring().WithValidation().Build()
	fmt.Println(err)
}
