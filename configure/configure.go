// Package configure 提供把配置转换为容器绑定的 Binder。
//
//	cfg, _ := config.NewConfigurationBuilder().AddYamlFile("app.yaml").Build()
//	logs := configure.Logging(cfg)
//	defer logs.Close()
//
//	container, err := di.NewBuilder(appBinder,
//		configure.Scalars(cfg, configure.WithEnvKeys()),
//		configure.Config(cfg),
//		logs,
//	).Build()
package configure

import (
	"strings"

	"github.com/gocrud/autowire/config"
	"github.com/gocrud/autowire/di"
)

// ScalarOption 配置 Scalars 的键格式与范围
type ScalarOption func(*scalarOptions)

type scalarOptions struct {
	envKeys bool
	section string
	prefix  string
}

// WithEnvKeys 使用环境变量风格的键：db:host 绑定为 DB_HOST
func WithEnvKeys() ScalarOption {
	return func(o *scalarOptions) { o.envKeys = true }
}

// WithSection 只绑定指定配置节下的值，键相对于该节
func WithSection(section string) ScalarOption {
	return func(o *scalarOptions) { o.section = section }
}

// WithPrefix 为每个键添加前缀（在键格式转换之后）
func WithPrefix(prefix string) ScalarOption {
	return func(o *scalarOptions) { o.prefix = prefix }
}

type scalarBinder struct {
	di.BaseBinder
	cfg  config.Configuration
	opts scalarOptions
}

// Scalars 把配置中的每个标量叶子绑定为 ScalarDefinition。
// 列表与空值会被跳过。
func Scalars(cfg config.Configuration, opts ...ScalarOption) di.Binder {
	b := &scalarBinder{cfg: cfg}
	for _, opt := range opts {
		opt(&b.opts)
	}
	return b
}

func (b *scalarBinder) Configure() error {
	source := b.cfg
	if b.opts.section != "" {
		source = source.GetSection(b.opts.section)
	}

	return source.Walk(func(path string, value any) error {
		if !isScalarValue(value) {
			return nil
		}
		return b.BindScalar(b.key(path), value)
	})
}

func (b *scalarBinder) key(path string) string {
	if b.opts.envKeys {
		path = strings.ToUpper(strings.NewReplacer(":", "_", ".", "_", "-", "_").Replace(path))
	}
	return b.opts.prefix + path
}

// isScalarValue 只接受 JSON、YAML、环境变量解析会产生的标量类型
func isScalarValue(value any) bool {
	switch value.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

type configBinder struct {
	di.BaseBinder
	cfg config.Configuration
}

// Config 把配置对象本身绑定到 config.Configuration 接口键，
// 构造函数可以直接依赖 config.Configuration。
func Config(cfg config.Configuration) di.Binder {
	return &configBinder{cfg: cfg}
}

func (b *configBinder) Configure() error {
	key, err := b.Registry().Interface(di.TypeOf[config.Configuration]())
	if err != nil {
		return err
	}
	return b.BindInstance(key, b.cfg)
}
