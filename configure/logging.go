package configure

import (
	"fmt"
	"os"
	"sync"

	"github.com/gocrud/autowire/config"
	"github.com/gocrud/autowire/di"
	"github.com/gocrud/autowire/logging"
)

// LoggingSection 默认读取的配置节
const LoggingSection = "logger"

// LoggingOptions 对应配置中的 logger 节
//
//	logger:
//	  file: ./app.log
//	  format: "[%date%] [%level%] : %message%"
//	  dateFormat: "2006-01-02 15:04:05"
//	  level: debug
//	  console: false
//	  async: true
type LoggingOptions struct {
	File       string `json:"file"`
	Format     string `json:"format"`
	DateFormat string `json:"dateFormat"`
	Level      string `json:"level"`
	// Console 为空时，只有在未配置文件的情况下输出到控制台
	Console  *bool  `json:"console"`
	Async    bool   `json:"async"`
	Category string `json:"category"`
}

// LoggingBinder 根据配置构建日志工厂，并把 LoggerFactory 与默认 Logger
// 作为实例绑定到各自的接口键。
type LoggingBinder struct {
	di.BaseBinder
	cfg       config.Configuration
	customize []func(*logging.LoggingBuilder)

	mu      sync.Mutex
	builder *logging.LoggingBuilder
}

// Logging 创建日志 Binder，customize 可以在构建前追加提供者
func Logging(cfg config.Configuration, customize ...func(*logging.LoggingBuilder)) *LoggingBinder {
	return &LoggingBinder{cfg: cfg, customize: customize}
}

// Options 读取 logger 节，节不存在时返回零值
func (b *LoggingBinder) Options() (LoggingOptions, error) {
	var opts LoggingOptions
	if _, ok := b.cfg.Lookup(LoggingSection); !ok {
		return opts, nil
	}
	if err := b.cfg.Bind(LoggingSection, &opts); err != nil {
		return opts, fmt.Errorf("configure: %s section: %w", LoggingSection, err)
	}
	return opts, nil
}

func (b *LoggingBinder) Configure() error {
	opts, err := b.Options()
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(opts.Level)
	if err != nil {
		return fmt.Errorf("configure: %w", err)
	}

	builder := logging.NewLoggingBuilder().SetMinimumLevel(level)

	console := opts.File == ""
	if opts.Console != nil {
		console = *opts.Console
	}
	if console {
		if opts.Format == "" {
			builder.AddConsole()
		} else {
			builder.AddConsole(logging.ConsoleLoggerOptions{
				Output:    os.Stdout,
				Formatter: logging.NewFormatter(opts.Format, opts.DateFormat),
			})
		}
	}

	if opts.File != "" {
		file := logging.NewFileLoggerProvider(logging.FileLoggerOptions{
			Path:      opts.File,
			Async:     opts.Async,
			Formatter: logging.NewFormatter(opts.Format, opts.DateFormat),
		})
		if err := file.Open(); err != nil {
			return fmt.Errorf("configure: %w", err)
		}
		builder.AddProvider(file)
	}

	for _, fn := range b.customize {
		fn(builder)
	}

	factory := builder.Build()
	category := opts.Category
	if category == "" {
		category = "app"
	}

	registry := b.Registry()
	factoryKey, err := registry.Interface(di.TypeOf[logging.LoggerFactory]())
	if err != nil {
		return err
	}
	loggerKey, err := registry.Interface(di.TypeOf[logging.Logger]())
	if err != nil {
		return err
	}
	if err := b.BindInstance(factoryKey, factory); err != nil {
		return err
	}
	if err := b.BindInstance(loggerKey, factory.CreateLogger(category)); err != nil {
		return err
	}

	b.mu.Lock()
	previous := b.builder
	b.builder = builder
	b.mu.Unlock()

	// 重复构建时释放上一次打开的文件
	if previous != nil {
		return previous.Close()
	}
	return nil
}

// Close 刷新并关闭日志文件
func (b *LoggingBinder) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.builder == nil {
		return nil
	}
	err := b.builder.Close()
	b.builder = nil
	return err
}
