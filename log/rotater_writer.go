package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	logFileSuffix     = ".log"
	logFileTimeLayout = "20060102_150405.000"
)

// rotatingWriter 按大小或时间切割日志文件，并清理过期文件
type rotatingWriter struct {
	mu sync.Mutex

	dir        string
	prefix     string
	maxAge     time.Duration
	rotateSize int64 // bytes, 0 表示不按大小切割
	rotateTime time.Duration

	file    *os.File
	opened  time.Time
	written int64
}

func newRotatingWriter(cfg *LoggerConfig, prefix string) (*rotatingWriter, error) {
	w := &rotatingWriter{
		dir:        cfg.Path,
		prefix:     prefix,
		maxAge:     time.Duration(cfg.MaxAge) * 24 * time.Hour,
		rotateSize: cfg.RotateSize * 1024 * 1024,
		rotateTime: time.Duration(cfg.RotateTime) * time.Hour,
	}
	if err := w.rotate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Write implements io.Writer.
func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.shouldRotate(len(p)) {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.written += int64(n)
	return n, err
}

// Close closes the current file.
func (w *rotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *rotatingWriter) shouldRotate(incoming int) bool {
	if w.file == nil {
		return true
	}
	if w.rotateSize > 0 && w.written+int64(incoming) > w.rotateSize {
		return true
	}
	return w.rotateTime > 0 && time.Since(w.opened) >= w.rotateTime
}

func (w *rotatingWriter) rotate() error {
	if w.file != nil {
		_ = w.file.Close()
	}

	name := filepath.Join(w.dir, fmt.Sprintf("%s_%s%s", w.prefix, time.Now().Format(logFileTimeLayout), logFileSuffix))
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", name, err)
	}

	w.file = file
	w.opened = time.Now()
	w.written = 0

	w.removeExpired()
	return nil
}

// removeExpired 删除超过 maxAge 的本前缀日志文件
func (w *rotatingWriter) removeExpired() {
	if w.maxAge <= 0 {
		return
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-w.maxAge)
	current := filepath.Base(w.file.Name())

	for _, e := range entries {
		if e.IsDir() || e.Name() == current || !isLogFile(e.Name(), w.prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(w.dir, e.Name()))
		}
	}
}

// isLogFile matches names such as skiplist_20250402_150405.000.log.
func isLogFile(name, prefix string) bool {
	return strings.HasPrefix(name, prefix+"_") && strings.HasSuffix(name, logFileSuffix)
}
