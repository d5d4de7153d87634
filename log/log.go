// Package log is the process-wide structured logger for the skip list and
// its file store. It wraps a single logrus.Logger that writes text to stdout
// by default and can be reconfigured from an ini file to tee into rotating
// log files.

package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-ini/ini"
	"github.com/sirupsen/logrus"

	"github.com/xmh1011/go-skiplist/util"
)

// LoggerConfig is the [log] section of an ini file.
type LoggerConfig struct {
	Level      string `ini:"level"`           // debug/info/warn/error
	Path       string `ini:"log_path"`        // 日志目录
	MaxAge     int64  `ini:"log_max_age"`     // 保留天数
	RotateSize int64  `ini:"log_rotate_size"` // 单位：MB
	RotateTime int64  `ini:"log_rotate_time"` // 单位：小时
	FileFormat string `ini:"log_file_format"` // text/json
	TimeFormat string `ini:"log_time_format"` // 如 "2006-01-02 15:04:05"
}

const (
	defaultLogFilePrefix = "skiplist"
	defaultTimeFormat    = "2006-01-02 15:04:05"
	logSection           = "log"
)

var (
	logger *logrus.Logger

	levelMap = map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
	}
)

func init() {
	logger = logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetOutput(os.Stdout)
}

func defaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:      "info",
		Path:       util.WorkingDir(),
		FileFormat: "text",
		TimeFormat: defaultTimeFormat,
	}
}

// InitLogger 从配置文件的 [log] 段初始化日志器，configPath 为空时保持默认配置
func InitLogger(configPath string) error {
	if configPath == "" {
		return nil
	}

	cfg, err := ini.Load(configPath)
	if err != nil {
		return fmt.Errorf("load log config %s: %w", configPath, err)
	}

	conf := defaultConfig()
	if err := cfg.Section(logSection).MapTo(conf); err != nil {
		return fmt.Errorf("map log config %s: %w", configPath, err)
	}

	return Apply(conf)
}

// Apply reconfigures the package logger from conf.
func Apply(conf *LoggerConfig) error {
	if level, ok := levelMap[strings.ToLower(conf.Level)]; ok {
		logger.SetLevel(level)
	}

	timeFormat := conf.TimeFormat
	if timeFormat == "" {
		timeFormat = defaultTimeFormat
	}
	switch strings.ToLower(conf.FileFormat) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timeFormat})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: timeFormat,
			FullTimestamp:   true,
		})
	}

	if conf.Path == "" {
		return nil
	}
	if err := os.MkdirAll(conf.Path, 0755); err != nil {
		return fmt.Errorf("create log directory %s: %w", conf.Path, err)
	}

	w, err := newRotatingWriter(conf, defaultLogFilePrefix)
	if err != nil {
		return err
	}
	logger.SetOutput(io.MultiWriter(w, os.Stdout))
	return nil
}

// SetOutput redirects the package logger, mainly for tests.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetLevel sets the minimum level by name; unknown names are ignored.
func SetLevel(level string) {
	if lv, ok := levelMap[strings.ToLower(level)]; ok {
		logger.SetLevel(lv)
	}
}

// WithField returns an entry carrying one structured field.
func WithField(key string, value any) *logrus.Entry {
	return logger.WithField(key, value)
}

func Info(args ...any) {
	logger.Info(args...)
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

func Error(args ...any) {
	logger.Error(args...)
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}

func Debug(args ...any) {
	logger.Debug(args...)
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func Warn(args ...any) {
	logger.Warn(args...)
}

func Warnf(format string, args ...any) {
	logger.Warnf(format, args...)
}
