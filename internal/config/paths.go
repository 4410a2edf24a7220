package config

import (
	"os"
	"path/filepath"
)

const appDirName = "spmp"

// EnvConfigHome 覆盖配置目录的环境变量
const EnvConfigHome = "SPMP_CONFIG_HOME"

// Dir 获取跨平台的配置目录
// 自定义: $SPMP_CONFIG_HOME
// Windows: %APPDATA%/spmp
// Linux/macOS: $XDG_CONFIG_HOME/spmp 或 ~/.config/spmp
func Dir() (string, error) {
	if configHome := os.Getenv(EnvConfigHome); configHome != "" {
		return configHome, nil
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appDirName), nil
	}

	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appDirName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", appDirName), nil
}

// Path 返回配置文件路径
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LogPath 返回调试日志文件路径
func LogPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "spmp.log"), nil
}
