// Package embedded 提供内置数据文件的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量声明在项目根目录（embed.go）。
// 本包提供包装函数，让其他包可以访问内置规则和场景。
//
// 以 "data/" 开头的路径优先从内置文件系统读取；其他路径直接读磁盘，
// 这样命令行可以用外部文件覆盖内置数据。
package embedded

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const dataPrefix = "data/"

var (
	dataFS      fs.FS
	initialized bool
)

// Init 设置内置数据文件系统
// 必须在任何内置数据加载之前调用
func Init(data fs.FS) {
	dataFS = data
	initialized = data != nil
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	return initialized
}

// normalize 标准化路径分隔符并移除 "./" 前缀
func normalize(path string) string {
	path = filepath.ToSlash(path)
	return strings.TrimPrefix(path, "./")
}

// ReadFile 读取文件内容
// "data/" 前缀的路径要求已初始化；其余路径从磁盘读取
func ReadFile(path string) ([]byte, error) {
	path = normalize(path)
	if !strings.HasPrefix(path, dataPrefix) {
		return os.ReadFile(filepath.FromSlash(path))
	}
	if !initialized {
		return nil, fmt.Errorf("embedded package not initialized, call Init() first")
	}
	return fs.ReadFile(dataFS, path)
}

// Exists 检查文件是否存在
func Exists(path string) bool {
	path = normalize(path)
	if !strings.HasPrefix(path, dataPrefix) {
		_, err := os.Stat(filepath.FromSlash(path))
		return err == nil
	}
	if !initialized {
		return false
	}
	_, err := fs.Stat(dataFS, path)
	return err == nil
}

// Glob 在内置文件系统中匹配文件
// 路径模式必须以 "data/" 开头
func Glob(pattern string) ([]string, error) {
	pattern = normalize(pattern)
	if !strings.HasPrefix(pattern, dataPrefix) {
		return nil, fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", pattern)
	}
	if !initialized {
		return nil, fmt.Errorf("embedded package not initialized, call Init() first")
	}
	return fs.Glob(dataFS, pattern)
}
