package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Configuration 配置接口（类似于 .NET Core IConfiguration）
type Configuration interface {
	// Get 获取配置值
	Get(key string) string
	// GetWithDefault 获取配置值，如果不存在则返回默认值
	GetWithDefault(key, defaultValue string) string
	// GetInt 获取整数配置值
	GetInt(key string) (int, error)
	// GetBool 获取布尔配置值
	GetBool(key string) (bool, error)
	// Lookup 返回原始值以及该键是否存在
	Lookup(key string) (any, bool)
	// GetSection 获取配置节
	GetSection(key string) Configuration
	// Bind 绑定配置到结构体
	Bind(key string, target any) error
	// GetAll 获取所有配置（深拷贝）
	GetAll() map[string]any
	// Walk 按路径字典序访问每个叶子值，路径以 ":" 连接
	Walk(fn func(path string, value any) error) error
}

// ConfigurationSource 配置源接口
type ConfigurationSource interface {
	Load() (map[string]any, error)
	Name() string
}

// ConfigurationBuilder 配置构建器
type ConfigurationBuilder struct {
	sources []ConfigurationSource
	mu      sync.RWMutex
}

// NewConfigurationBuilder 创建配置构建器
func NewConfigurationBuilder() *ConfigurationBuilder {
	return &ConfigurationBuilder{}
}

// Add 添加配置源
func (b *ConfigurationBuilder) Add(source ConfigurationSource) *ConfigurationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sources = append(b.sources, source)
	return b
}

// AddJsonFile 添加 JSON 文件配置源
func (b *ConfigurationBuilder) AddJsonFile(path string, optional ...bool) *ConfigurationBuilder {
	return b.Add(&JsonFileSource{Path: path, Optional: isOptional(optional)})
}

// AddYamlFile 添加 YAML 文件配置源
func (b *ConfigurationBuilder) AddYamlFile(path string, optional ...bool) *ConfigurationBuilder {
	return b.Add(&YamlFileSource{Path: path, Optional: isOptional(optional)})
}

// AddDotEnvFile 添加 .env 文件配置源，键的转换规则与环境变量相同
func (b *ConfigurationBuilder) AddDotEnvFile(path string, optional ...bool) *ConfigurationBuilder {
	return b.Add(&DotEnvSource{Paths: []string{path}, Optional: isOptional(optional)})
}

// AddEnvironmentVariables 添加环境变量配置源
func (b *ConfigurationBuilder) AddEnvironmentVariables(prefix string) *ConfigurationBuilder {
	return b.Add(&EnvironmentVariableSource{Prefix: prefix})
}

// AddInMemory 添加内存配置源
func (b *ConfigurationBuilder) AddInMemory(data map[string]any) *ConfigurationBuilder {
	return b.Add(&InMemorySource{Data: data})
}

// AddEtcd 添加 etcd 配置源
func (b *ConfigurationBuilder) AddEtcd(opts EtcdOptions) *ConfigurationBuilder {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	return b.Add(&EtcdSource{Options: opts})
}

func isOptional(optional []bool) bool {
	return len(optional) > 0 && optional[0]
}

// Build 按添加顺序加载所有配置源，后面的覆盖前面的
func (b *ConfigurationBuilder) Build() (Configuration, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data := make(map[string]any)
	for _, source := range b.sources {
		loaded, err := source.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config source %s: %w", source.Name(), err)
		}
		mergeMaps(data, loaded)
	}

	return newConfiguration(data), nil
}

// configuration 配置实现。构建后只读，读取通过 ValueStore 无锁完成。
type configuration struct {
	store *ValueStore
	paths *PathCache
}

func newConfiguration(data map[string]any) *configuration {
	c := &configuration{store: NewValueStore(), paths: globalPathCache}
	c.store.Store(data)
	return c
}

func (c *configuration) Get(key string) string {
	value, ok := c.Lookup(key)
	if !ok || value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (c *configuration) GetWithDefault(key, defaultValue string) string {
	if value := c.Get(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *configuration) GetInt(key string) (int, error) {
	value, ok := c.Lookup(key)
	if !ok {
		return 0, fmt.Errorf("key %s not found", key)
	}

	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("cannot convert %v to int", value)
	}
}

func (c *configuration) GetBool(key string) (bool, error) {
	value, ok := c.Lookup(key)
	if !ok {
		return false, fmt.Errorf("key %s not found", key)
	}

	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return false, fmt.Errorf("cannot convert %v to bool", value)
	}
}

// Lookup 支持 "a:b:c" 或 "a.b.c" 形式的路径，空路径返回根节点
func (c *configuration) Lookup(key string) (any, bool) {
	data := c.store.Load()
	if key == "" {
		return data, true
	}

	current := any(data)
	for _, part := range c.paths.GetPathSegments(key) {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

func (c *configuration) GetSection(key string) Configuration {
	if value, ok := c.Lookup(key); ok {
		if m, ok := value.(map[string]any); ok {
			return newConfiguration(m)
		}
	}
	return newConfiguration(make(map[string]any))
}

// Bind 使用 JSON 序列化/反序列化把配置绑定到 target
func (c *configuration) Bind(key string, target any) error {
	data, ok := c.Lookup(key)
	if !ok || data == nil {
		return fmt.Errorf("key %s not found", key)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	if err := json.Unmarshal(jsonData, target); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return nil
}

func (c *configuration) GetAll() map[string]any {
	return cloneMap(c.store.Load())
}

func (c *configuration) Walk(fn func(path string, value any) error) error {
	return walk(c.store.Load(), "", fn)
}

func walk(data map[string]any, prefix string, fn func(string, any) error) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := k
		if prefix != "" {
			path = prefix + ":" + k
		}
		if m, ok := data[k].(map[string]any); ok {
			if err := walk(m, path, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(path, data[k]); err != nil {
			return err
		}
	}
	return nil
}

// mergeMaps 把 src 深度合并进 dst，dst 不会引用 src 的嵌套 map
func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		if dstMap, ok := dst[k].(map[string]any); ok && srcIsMap {
			mergeMaps(dstMap, srcMap)
			continue
		}
		if srcIsMap {
			dst[k] = cloneMap(srcMap)
			continue
		}
		dst[k] = v
	}
}

func cloneMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	mergeMaps(out, src)
	return out
}

// normalizeKey 把环境变量风格的键（DB_HOST）转换为配置路径（db:host）
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", ":")
}

// setNestedValue 按 ":" 路径设置值，字符串会尝试转换为 int、float、bool
func setNestedValue(data map[string]any, path string, value any) {
	parts := strings.Split(path, ":")
	current := data

	for _, part := range parts[:len(parts)-1] {
		if _, exists := current[part]; !exists {
			current[part] = make(map[string]any)
		}
		m, ok := current[part].(map[string]any)
		if !ok {
			return
		}
		current = m
	}

	if strValue, ok := value.(string); ok {
		value = parseScalar(strValue)
	}
	current[parts[len(parts)-1]] = value
}

func parseScalar(s string) any {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
