package config

import (
	"strings"
	"sync"
)

// PathCache 缓存配置路径的切分结果，":" 与 "." 都作为分隔符
type PathCache struct {
	cache sync.Map
}

// GetPathSegments 返回路径片段，调用者不得修改返回的切片
func (c *PathCache) GetPathSegments(path string) []string {
	if v, ok := c.cache.Load(path); ok {
		return v.([]string)
	}

	parts := strings.FieldsFunc(path, func(r rune) bool { return r == ':' || r == '.' })
	c.cache.Store(path, parts)
	return parts
}

var globalPathCache = &PathCache{}
