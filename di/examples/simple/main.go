package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/gocrud/autowire/config"
	"github.com/gocrud/autowire/configure"
	"github.com/gocrud/autowire/di"
	"github.com/gocrud/autowire/logging"
)

// URLFactory 根据基础地址创建 URL
type URLFactory interface {
	Create(path string) (*url.URL, error)
}

type urlFactory struct {
	base   *url.URL
	logger logging.Logger
}

func (f *urlFactory) Create(path string) (*url.URL, error) {
	u := f.base.JoinPath(path)
	f.logger.Debug("url created", logging.Field{Key: "url", Value: u.String()})
	return u, nil
}

// NewURLFactory 的 baseURL 来自配置 api:endpoint（可用 APP_API_ENDPOINT 覆盖），logger 按类型注入
func NewURLFactory(baseURL string, logger logging.Logger) (*urlFactory, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &urlFactory{base: base, logger: logger}, nil
}

type Client struct {
	URLs URLFactory
}

func NewClient(urls URLFactory) *Client {
	return &Client{URLs: urls}
}

type appBinder struct {
	di.BaseBinder
}

func (b *appBinder) Configure() error {
	return b.Bind(di.KeyOf[URLFactory](), di.KeyOf[urlFactory](), di.ScopeSingleton)
}

func main() {
	di.Interface[URLFactory]()
	di.Provide(NewURLFactory, di.Arg("baseURL").WithNamed("API_ENDPOINT"), di.Param{})
	di.Provide(NewClient)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.NewConfigurationBuilder().
		AddInMemory(map[string]any{
			"api":    map[string]any{"endpoint": "https://api.example.com/v1"},
			"logger": map[string]any{"level": "debug", "format": "[%level%] %category% : %message%"},
		}).
		AddEnvironmentVariables("APP_").
		Build()
	if err != nil {
		return err
	}

	logs := configure.Logging(cfg)
	defer func() {
		if cerr := logs.Close(); err == nil {
			err = cerr
		}
	}()

	container, err := di.NewBuilder(&appBinder{},
		configure.Scalars(cfg, configure.WithEnvKeys()),
		logs,
	).WithAutoWiring().WithValidation().Build()
	if err != nil {
		return err
	}

	client, err := di.Resolve[*Client](container, di.KeyOf[Client]())
	if err != nil {
		return err
	}
	u, err := client.URLs.Create("users/42")
	if err != nil {
		return err
	}
	fmt.Println(u)

	// 单例：两个客户端共享同一个工厂
	other, err := di.Resolve[*Client](container, di.KeyOf[Client]())
	if err != nil {
		return err
	}
	fmt.Println(client != other, client.URLs == other.URLs)
	return nil
}
