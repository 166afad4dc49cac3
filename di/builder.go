package di

import (
	"fmt"
	"time"

	"github.com/gocrud/autowire/logging"
)

// Build 依次配置每个 Binder 并合并绑定。任何配置错误都会中止构建。
func (b *Builder) Build() (*Container, error) {
	start := time.Now()

	registry := b.registry
	if registry == nil {
		registry = DefaultRegistry
	}
	logger := b.logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.WithCategory("di")

	merged := make(map[string]Definition)
	for i, binder := range b.binders {
		if binder == nil {
			return nil, &InvalidArgumentError{Argument: "binder", Value: i, Reason: "binder must not be nil"}
		}

		binder.attach(registry)
		if err := binder.Configure(); err != nil {
			logger.Error("binder configuration failed",
				logging.Field{Key: "binder", Value: fmt.Sprintf("%T", binder)},
				logging.Field{Key: "error", Value: err})
			return nil, fmt.Errorf("di: configuring %T: %w", binder, err)
		}

		bindings := binder.Bindings()
		for key, def := range bindings {
			if _, exists := merged[key]; exists {
				logger.Debug("binding shadowed by an earlier binder",
					logging.Field{Key: "key", Value: key},
					logging.Field{Key: "binder", Value: fmt.Sprintf("%T", binder)})
				continue
			}
			merged[key] = def
		}
		logger.Debug("binder configured",
			logging.Field{Key: "binder", Value: fmt.Sprintf("%T", binder)},
			logging.Field{Key: "bindings", Value: len(bindings)})
	}

	c := &Container{
		registry: registry,
		bindings: merged,
		options:  b.options,
		resolver: &resolver{
			registry: registry,
			bindings: merged,
			options:  b.options,
			logger:   logger,
			metrics:  b.metrics,
		},
	}
	merged[ContainerKey] = &InstanceDefinition{Instance: c}

	if b.validate || b.eager {
		order, err := c.resolver.buildOrder()
		if err != nil {
			return nil, err
		}
		if b.eager {
			if err := c.constructSingletons(order); err != nil {
				return nil, err
			}
		}
	}

	logger.Info("container built",
		logging.Field{Key: "bindings", Value: len(merged)},
		logging.Field{Key: "autowiring", Value: b.options.AutoWiring},
		logging.Field{Key: "elapsed", Value: time.Since(start)})
	return c, nil
}
