package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// AppConfig 汇总运行服务所需的基础配置。
// 优先级：环境变量 > 配置文件 > 默认值
type AppConfig struct {
	ListenAddr           string `yaml:"listen_addr" env:"LISTEN_ADDR"`
	Port                 string `yaml:"port" env:"PORT"`
	DatabasePath         string `yaml:"database_path" env:"DATABASE_PATH"`
	SessionSecret        string `yaml:"session_secret" env:"SESSION_SECRET"`
	GinMode              string `yaml:"gin_mode" env:"GIN_MODE"`
	Passcode             string `yaml:"passcode" env:"APP_PASSCODE"`
	LogLevel             string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat            string `yaml:"log_format" env:"LOG_FORMAT"`
	DefaultLanguage      string `yaml:"default_language" env:"DEFAULT_LANGUAGE"`
	NeglectThresholdDays int    `yaml:"neglect_threshold_days" env:"NEGLECT_THRESHOLD_DAYS"`
}

// ConfigFileEnv 指定 YAML 配置文件路径的环境变量
const ConfigFileEnv = "CONFIG_FILE"

// Defaults 返回未做任何覆盖时的配置。
func Defaults() AppConfig {
	return AppConfig{
		Port:                 "8080",
		DatabasePath:         "gentlehabits.db",
		SessionSecret:        "gentlehabits-dev-secret",
		GinMode:              "release",
		LogLevel:             "info",
		LogFormat:            "json",
		DefaultLanguage:      "zh",
		NeglectThresholdDays: 2,
	}
}

// Load 读取配置：先取默认值，再叠加 YAML 文件（path 为空时读取 CONFIG_FILE），最后叠加环境变量。
// 文件不存在时忽略，解析失败时返回错误。
func Load(path string) (AppConfig, error) {
	cfg := Defaults()

	if strings.TrimSpace(path) == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if err := cfg.loadFile(strings.TrimSpace(path)); err != nil {
		return AppConfig{}, err
	}

	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// normalize 去除空白并为空字段补默认值
func (c *AppConfig) normalize() {
	defaults := Defaults()

	fill := func(value *string, fallback string) {
		*value = strings.TrimSpace(*value)
		if *value == "" {
			*value = fallback
		}
	}

	fill(&c.Port, defaults.Port)
	fill(&c.DatabasePath, defaults.DatabasePath)
	fill(&c.SessionSecret, defaults.SessionSecret)
	fill(&c.GinMode, defaults.GinMode)
	fill(&c.LogLevel, defaults.LogLevel)
	fill(&c.LogFormat, defaults.LogFormat)
	fill(&c.DefaultLanguage, defaults.DefaultLanguage)
	fill(&c.ListenAddr, fmt.Sprintf(":%s", c.Port))
	c.Passcode = strings.TrimSpace(c.Passcode)

	if c.NeglectThresholdDays <= 0 {
		c.NeglectThresholdDays = defaults.NeglectThresholdDays
	}
}

// PasscodeEnabled 是否启用口令保护
func (c AppConfig) PasscodeEnabled() bool {
	return c.Passcode != ""
}
