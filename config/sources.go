package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	clientv3 "go.etcd.io/etcd/client/v3"
	"gopkg.in/yaml.v3"
)

// JsonFileSource JSON 文件配置源
type JsonFileSource struct {
	Path     string
	Optional bool
}

func (s *JsonFileSource) Name() string {
	return fmt.Sprintf("JsonFile(%s)", s.Path)
}

func (s *JsonFileSource) Load() (map[string]any, error) {
	data, err := readOptional(s.Path, s.Optional)
	if err != nil || data == nil {
		return make(map[string]any), err
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return result, nil
}

// YamlFileSource YAML 文件配置源
type YamlFileSource struct {
	Path     string
	Optional bool
}

func (s *YamlFileSource) Name() string {
	return fmt.Sprintf("YamlFile(%s)", s.Path)
}

func (s *YamlFileSource) Load() (map[string]any, error) {
	data, err := readOptional(s.Path, s.Optional)
	if err != nil || data == nil {
		return make(map[string]any), err
	}

	var result map[string]any
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if result == nil {
		result = make(map[string]any)
	}
	return result, nil
}

// readOptional 读取文件；可选文件不存在时返回 nil, nil
func readOptional(path string, optional bool) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// DotEnvSource .env 文件配置源。
// DB_HOST=localhost 会变成路径 db:host，与 EnvironmentVariableSource 一致。
type DotEnvSource struct {
	Paths    []string
	Prefix   string
	Optional bool
	// Export 同时把变量写入进程环境（不覆盖已有变量）
	Export bool
}

func (s *DotEnvSource) Name() string {
	return fmt.Sprintf("DotEnv(%s)", strings.Join(s.Paths, ","))
}

func (s *DotEnvSource) Load() (map[string]any, error) {
	result := make(map[string]any)

	for _, path := range s.Paths {
		values, err := godotenv.Read(path)
		if err != nil {
			if s.Optional && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to parse dotenv: %w", err)
		}

		if s.Export {
			if err := godotenv.Load(path); err != nil {
				return nil, fmt.Errorf("failed to export dotenv: %w", err)
			}
		}

		for key, value := range values {
			if !strings.HasPrefix(key, s.Prefix) {
				continue
			}
			setNestedValue(result, normalizeKey(strings.TrimPrefix(key, s.Prefix)), value)
		}
	}

	return result, nil
}

// EnvironmentVariableSource 环境变量配置源
type EnvironmentVariableSource struct {
	Prefix string
}

func (s *EnvironmentVariableSource) Name() string {
	return fmt.Sprintf("EnvironmentVariables(%s)", s.Prefix)
}

func (s *EnvironmentVariableSource) Load() (map[string]any, error) {
	result := make(map[string]any)

	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, s.Prefix) {
			continue
		}
		key = strings.TrimPrefix(key, s.Prefix)
		if key == "" {
			continue
		}
		setNestedValue(result, normalizeKey(key), value)
	}

	return result, nil
}

// InMemorySource 内存配置源
type InMemorySource struct {
	Data map[string]any
}

func (s *InMemorySource) Name() string {
	return "InMemory"
}

func (s *InMemorySource) Load() (map[string]any, error) {
	return cloneMap(s.Data), nil
}

// EtcdOptions etcd 配置选项
type EtcdOptions struct {
	Endpoints   []string      // etcd 服务器地址列表
	Username    string        // 用户名（可选）
	Password    string        // 密码（可选）
	Prefix      string        // 键前缀（可选）
	Timeout     time.Duration // 读取超时时间（默认 5 秒）
	DialTimeout time.Duration // 拨号超时时间（默认 5 秒）
}

// EtcdSource etcd 配置源。/app/db/host 会变成路径 app:db:host（去掉 Prefix 后）。
type EtcdSource struct {
	Options EtcdOptions
}

func (s *EtcdSource) Name() string {
	return fmt.Sprintf("Etcd(%v)", s.Options.Endpoints)
}

func (s *EtcdSource) Load() (map[string]any, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   s.Options.Endpoints,
		Username:    s.Options.Username,
		Password:    s.Options.Password,
		DialTimeout: s.Options.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(context.Background(), s.Options.Timeout)
	defer cancel()

	prefix := s.Options.Prefix
	if prefix == "" {
		prefix = "/"
	}

	resp, err := cli.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to get config from etcd: %w", err)
	}

	pairs := make(map[string]string, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		pairs[string(kv.Key)] = string(kv.Value)
	}
	return decodeEtcdPairs(pairs, s.Options.Prefix), nil
}

// decodeEtcdPairs 把 etcd 键值转换为嵌套配置。
// 值依次尝试按 JSON、YAML 解析，都失败时保留为字符串。
func decodeEtcdPairs(pairs map[string]string, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range pairs {
		key = strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
		if key == "" {
			continue
		}
		key = strings.ReplaceAll(key, "/", ":")

		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			setNestedValue(result, key, decoded)
			continue
		}
		if err := yaml.Unmarshal([]byte(value), &decoded); err == nil && decoded != nil {
			setNestedValue(result, key, decoded)
			continue
		}
		setNestedValue(result, key, value)
	}

	return result
}
