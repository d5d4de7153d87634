package util

import (
	"os"
	"path/filepath"
)

// WorkingDir 返回当前工作目录，获取失败时返回 "."
func WorkingDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "." // fallback
	}
	return dir
}

// EnsureParentDir 确保文件所在目录存在
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
