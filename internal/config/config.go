package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/smp-planner/spmp/internal/api"
	"github.com/smp-planner/spmp/internal/i18n"
	"github.com/smp-planner/spmp/internal/plan"
)

// DefaultTimeoutSeconds 请求超时的默认秒数
const DefaultTimeoutSeconds = 120

type Config struct {
	BaseURL        string `yaml:"base_url"`
	Language       string `yaml:"language"`
	ChatMode       string `yaml:"chat_mode"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		BaseURL:        api.DefaultBaseURL,
		Language:       string(i18n.Default),
		ChatMode:       string(plan.ChatModeNormal),
		TimeoutSeconds: DefaultTimeoutSeconds,
	}
}

// LoadConfig 读取配置文件，文件不存在时返回默认配置
func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
	}
	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Language == "" {
		c.Language = d.Language
	}
	if c.ChatMode == "" {
		c.ChatMode = d.ChatMode
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = d.TimeoutSeconds
	}
}

// SaveConfig 写入配置文件，必要时创建目录
func SaveConfig(config *Config) error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Locale 返回匹配后的界面语言
func (c *Config) Locale() i18n.Locale {
	return i18n.Match(c.Language)
}

// Mode 返回聊天模式，无效值回落到 normal
func (c *Config) Mode() plan.ChatMode {
	if m, ok := plan.ParseChatMode(c.ChatMode); ok {
		return m
	}
	return plan.ChatModeNormal
}

// Timeout 返回请求超时
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Keys 返回可以通过 Set 修改的配置项
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var setters = map[string]func(c *Config, v string) error{
	"base_url": func(c *Config, v string) error {
		u, err := url.Parse(strings.TrimSpace(v))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("base_url must be an http(s) URL, got %q", v)
		}
		c.BaseURL = strings.TrimRight(u.String(), "/")
		return nil
	},
	"language": func(c *Config, v string) error {
		l, ok := i18n.Parse(v)
		if !ok {
			return fmt.Errorf("unsupported language %q (want en or ar)", v)
		}
		c.Language = string(l)
		return nil
	},
	"chat_mode": func(c *Config, v string) error {
		m, ok := plan.ParseChatMode(v)
		if !ok {
			return fmt.Errorf("unknown chat mode %q (want child, normal or detailed)", v)
		}
		c.ChatMode = string(m)
		return nil
	},
	"timeout_seconds": func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return fmt.Errorf("timeout_seconds must be a positive integer, got %q", v)
		}
		c.TimeoutSeconds = n
		return nil
	},
}

// Set 按键名修改配置项并校验取值
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}
	return set(c, value)
}

// Get 按键名读取配置项
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "base_url":
		return c.BaseURL, nil
	case "language":
		return c.Language, nil
	case "chat_mode":
		return c.ChatMode, nil
	case "timeout_seconds":
		return strconv.Itoa(c.TimeoutSeconds), nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

func getConfigPath() (string, error) {
	path, err := Path()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return path, nil
}
