package logging

import (
	"strings"
	"time"
)

const (
	// DefaultPattern 默认日志模板
	DefaultPattern = "[%level%] : %message%"
	// DefaultDateFormat %date% 的默认布局
	DefaultDateFormat = time.RFC1123
)

// PatternFormatter 模板格式化器。
//
// 支持的占位符：%level% %message% %date% %category%。
// 附加字段以 {k=v} 形式追加在行尾。
type PatternFormatter struct {
	Pattern    string
	DateFormat string
}

// NewPatternFormatter 创建模板格式化器，空参数使用默认值
func NewPatternFormatter(pattern, dateFormat string) *PatternFormatter {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}
	return &PatternFormatter{Pattern: pattern, DateFormat: dateFormat}
}

func (f *PatternFormatter) Format(entry *LogEntry) ([]byte, error) {
	r := strings.NewReplacer(
		"%level%", entry.Level.String(),
		"%message%", entry.Message,
		"%date%", entry.Time.Format(f.DateFormat),
		"%category%", entry.Category,
	)

	buffer := GlobalBufferPool.Get()
	defer GlobalBufferPool.Put(buffer)

	r.WriteString(buffer, f.Pattern)
	writeFields(buffer, entry.Fields)
	return GlobalBufferPool.Line(buffer), nil
}
