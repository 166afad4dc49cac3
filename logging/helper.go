package logging

import "io"

// NewLogger 创建一个默认的控制台 Logger（便于测试使用）
func NewLogger() Logger {
	return NewLoggingBuilder().AddConsole().Build().CreateLogger("default")
}

// NewWriterLogger 创建一个写入 w 的模板 Logger，pattern 为空时使用 DefaultPattern
func NewWriterLogger(w io.Writer, pattern string, level LogLevel) Logger {
	return NewLoggingBuilder().
		SetMinimumLevel(level).
		AddConsole(ConsoleLoggerOptions{
			Output:    w,
			Formatter: NewPatternFormatter(pattern, ""),
		}).
		Build().
		CreateLogger("")
}
