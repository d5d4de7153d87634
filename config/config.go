package config

import (
	"path/filepath"

	"github.com/go-ini/ini"

	"github.com/xmh1011/go-skiplist/log"
	"github.com/xmh1011/go-skiplist/util"
)

var Conf Config

const (
	defaultConfigFile = "config.ini" // 默认配置文件名
	defaultStoreFile  = "store/dumpFile"
	defaultMaxLevel   = 6
)

type Config struct {
	RootPath  string `ini:"root_path"`
	StorePath string `ini:"store_path"`
	MaxLevel  int    `ini:"max_level"`
	LogConfig string `ini:"log_config"` // 日志配置文件，为空则使用默认日志器
}

func init() {
	// 获取当前工作目录下的 config.ini
	configPath := filepath.Join(util.WorkingDir(), defaultConfigFile)
	if !util.FileExists(configPath) {
		log.Debugf("[config] %s not found, using defaults", configPath)
		return
	}
	if err := Load(configPath); err != nil {
		log.Warnf("[config] load %s failed, using defaults: %v", configPath, err)
	}
}

// Load 解析配置文件并覆盖 Conf
func Load(path string) error {
	cfg, err := ini.Load(path)
	if err != nil {
		return err
	}

	var c Config
	if err := cfg.MapTo(&c); err != nil {
		return err
	}
	Conf = c
	return nil
}

func GetRootPath() string {
	if Conf.RootPath != "" {
		return Conf.RootPath
	}
	return util.WorkingDir()
}

// GetStorePath returns the dump file path; relative paths are resolved
// against the root path.
func GetStorePath() string {
	path := Conf.StorePath
	if path == "" {
		path = defaultStoreFile
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(GetRootPath(), path)
}

func GetMaxLevel() int {
	if Conf.MaxLevel > 0 {
		return Conf.MaxLevel
	}
	return defaultMaxLevel
}

func GetLogConfig() string {
	return Conf.LogConfig
}
