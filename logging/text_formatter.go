package logging

import (
	"fmt"
)

// TextFormatter 文本格式化器
type TextFormatter struct {
	IncludeTimestamp bool
	TimestampFormat  string
	ColorOutput      bool
}

// NewTextFormatter 创建文本格式化器
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{
		IncludeTimestamp: true,
		TimestampFormat:  "2006-01-02 15:04:05",
	}
}

// Format 输出形如 `2006-01-02 15:04:05 INFO [category] message {k=v}` 的一行
func (f *TextFormatter) Format(entry *LogEntry) ([]byte, error) {
	buffer := GlobalBufferPool.Get()
	defer GlobalBufferPool.Put(buffer)

	if f.IncludeTimestamp {
		buffer.WriteString(entry.Time.Format(f.TimestampFormat))
		buffer.WriteByte(' ')
	}

	levelStr := entry.Level.String()
	if f.ColorOutput {
		levelStr = colorize(entry.Level, levelStr)
	}
	buffer.WriteString(levelStr)

	if entry.Category != "" {
		buffer.WriteString(" [")
		buffer.WriteString(entry.Category)
		buffer.WriteByte(']')
	}

	buffer.WriteByte(' ')
	buffer.WriteString(entry.Message)
	writeFields(buffer, entry.Fields)
	return GlobalBufferPool.Line(buffer), nil
}

func writeFields(buffer interface {
	WriteString(string) (int, error)
	WriteByte(byte) error
}, fields []Field) {
	if len(fields) == 0 {
		return
	}
	buffer.WriteString(" {")
	for i, field := range fields {
		if i > 0 {
			buffer.WriteString(", ")
		}
		buffer.WriteString(field.Key)
		buffer.WriteByte('=')
		buffer.WriteString(fmt.Sprint(field.Value))
	}
	buffer.WriteByte('}')
}
