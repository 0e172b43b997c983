package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options 日志配置
// Level: debug | info | warn | error
// Format: json | text
// Output: stdout | stderr | 文件路径
type Options struct {
	Level     string
	Format    string
	Output    string
	AddSource bool
}

// New 创建结构化日志并设置为全局默认logger
// 返回的closer用于关闭日志文件（输出到stdout/stderr时为空操作）
func New(opts Options) (*slog.Logger, func() error, error) {
	w, closer, err := openOutput(opts.Output)
	if err != nil {
		return nil, nil, err
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     ParseLevel(opts.Level),
		AddSource: opts.AddSource,
	}

	var h slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		h = slog.NewJSONHandler(w, handlerOpts)
	} else {
		h = slog.NewTextHandler(w, handlerOpts)
	}

	l := slog.New(h)
	slog.SetDefault(l)
	return l, closer, nil
}

// ParseLevel 解析日志级别，无法识别时使用info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openOutput(output string) (io.Writer, func() error, error) {
	noop := func() error { return nil }

	switch output {
	case "", "stdout":
		return os.Stdout, noop, nil
	case "stderr":
		return os.Stderr, noop, nil
	}

	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	return f, f.Close, nil
}
