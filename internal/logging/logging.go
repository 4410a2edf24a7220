// Package logging 构造程序使用的 slog 记录器
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
)

// New 创建写入 w 的文本格式记录器
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard 返回丢弃所有输出的记录器
func Discard() *slog.Logger {
	// slog.DiscardHandler 需要 Go 1.24；此处用等价的全级别禁用处理器
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
}

// Level 命令行使用的日志级别；debug 为 false 时只输出警告及以上
func Level(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// OpenFile 以追加方式打开日志文件。TUI 占用终端，日志只能写入文件。
// 调用方负责关闭返回的 io.Closer。
func OpenFile(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, level), f, nil
}
