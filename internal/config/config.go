// config — загрузка конфигурации клиента pcrec.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
//
// Значения из ENV перекрывают значения из файла.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	API      APIConfig     `yaml:"api"`
	Tokens   TokensConfig  `yaml:"tokens"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// APIConfig — бэкенд рекомендателя.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"   env:"API_BASE_URL"   env-required:"true"`
	UserAgent string `yaml:"user_agent" env:"API_USER_AGENT" env-default:"pcrec"`
}

// TokensConfig — хранилище пары токенов.
type TokensConfig struct {
	// Driver: memory|file|redis|postgres|none.
	Driver      string        `yaml:"driver"       env:"TOKEN_STORE"   env-default:"file"`
	FilePath    string        `yaml:"file_path"    env:"TOKEN_FILE"`
	Profile     string        `yaml:"profile"      env:"TOKEN_PROFILE" env-default:"default"`
	RedisURL    string        `yaml:"redis_url"    env:"REDIS_URL"`
	RedisPrefix string        `yaml:"redis_prefix" env:"REDIS_PREFIX"  env-default:"pcrec:tokens:"`
	RedisTTL    time.Duration `yaml:"redis_ttl"    env:"REDIS_TTL"     env-default:"720h"`
	DatabaseURL string        `yaml:"database_url" env:"DATABASE_URL"`
}

// TimeoutConfig — таймауты исходящих запросов.
type TimeoutConfig struct {
	Request time.Duration `yaml:"request" env:"REQUEST_TIMEOUT" env-default:"15s"`
	Refresh time.Duration `yaml:"refresh" env:"REFRESH_TIMEOUT" env-default:"10s"`
}

// MetricsConfig — HTTP для Prometheus. Пустой порт — метрики не публикуются.
type MetricsConfig struct {
	Host string `yaml:"host" env:"METRICS_HOST" env-default:"127.0.0.1"`
	Port string `yaml:"port" env:"METRICS_PORT"`
}

func (m MetricsConfig) Addr() string {
	if m.Port == "" {
		return ""
	}

	return net.JoinHostPort(m.Host, m.Port)
}

// Load читает конфигурацию: --config > CONFIG_PATH > ./local.yaml > ENV.
func Load(path string) (*Config, error) {
	var cfg Config

	readFile := func(p string) (*Config, error) {
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", p, err)
		}

		return &cfg, nil
	}

	// 1) --config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", path, err)
		}

		return readFile(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", envPath, err)
		}

		return readFile(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return readFile("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
