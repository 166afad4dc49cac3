package logging

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Formatter 日志格式化接口
type Formatter interface {
	// Format 格式化日志条目，返回的切片归调用者所有
	Format(entry *LogEntry) ([]byte, error)
}

// LogEntry 日志条目
type LogEntry struct {
	Time     time.Time
	Level    LogLevel
	Category string
	Message  string
	Fields   []Field
}

// FormatterFunc 允许普通函数作为 Formatter 使用
type FormatterFunc func(entry *LogEntry) ([]byte, error)

func (f FormatterFunc) Format(entry *LogEntry) ([]byte, error) { return f(entry) }

// NewFormatter 按名称创建格式化器：text、json，其余按模板处理。
func NewFormatter(name, dateFormat string) Formatter {
	switch strings.ToLower(name) {
	case "text":
		f := NewTextFormatter()
		if dateFormat != "" {
			f.TimestampFormat = dateFormat
		}
		return f
	case "json":
		f := NewJSONFormatter()
		if dateFormat != "" {
			f.TimestampFormat = dateFormat
		}
		return f
	default:
		return NewPatternFormatter(name, dateFormat)
	}
}

// JSONFormatter JSON 格式化器
type JSONFormatter struct {
	TimestampFormat string
}

// NewJSONFormatter 创建 JSON 格式化器
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	}
}

func (f *JSONFormatter) Format(entry *LogEntry) ([]byte, error) {
	data := map[string]any{
		"time":  entry.Time.Format(f.TimestampFormat),
		"level": entry.Level.String(),
		"msg":   entry.Message,
	}
	if entry.Category != "" {
		data["category"] = entry.Category
	}

	if len(entry.Fields) > 0 {
		fields := make(map[string]any, len(entry.Fields))
		for _, field := range entry.Fields {
			fields[field.Key] = field.Value
		}
		data["fields"] = fields
	}

	out, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("logging: marshal entry: %w", err)
	}
	return append(out, '\n'), nil
}
