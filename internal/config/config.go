// Package config は環境変数と任意のYAMLファイルからアプリケーション設定を読み込む。
package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hitoshi/simplesocial/internal/database"
)

// Config はアプリケーション全体の設定を保持する。
// 起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL       string
	DatabaseDriver    string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	AutoMigrate       bool

	// Rate Limit（1分あたりのリクエスト数）
	RateLimitGeneral int
	RateLimitWrite   int

	// TrustedProxies はX-Forwarded-Forを信頼する接続元のアドレス範囲。
	// 空の場合はX-Forwarded-Forを使わず、接続元アドレスでレート制限する。
	TrustedProxies []netip.Prefix

	// Server
	ServerPort      string
	ShutdownTimeout time.Duration

	// CORS
	CORSAllowedOrigin string

	// Logging
	LogLevel string
}

// fileConfig はCONFIG_FILEで指定するYAMLファイルの構造。
// 未指定の項目はゼロ値のままとなり、デフォルト値が使われる。
type fileConfig struct {
	Database struct {
		URL             string        `yaml:"url"`
		Driver          string        `yaml:"driver"`
		MaxOpenConns    int           `yaml:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		AutoMigrate     *bool         `yaml:"auto_migrate"`
	} `yaml:"database"`
	Server struct {
		Port              string        `yaml:"port"`
		CORSAllowedOrigin string        `yaml:"cors_allowed_origin"`
		ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
		TrustedProxies    []string      `yaml:"trusted_proxies"`
	} `yaml:"server"`
	RateLimit struct {
		General int `yaml:"general"`
		Write   int `yaml:"write"`
	} `yaml:"rate_limit"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// defaults はデフォルト値を設定したConfigを返す。
func defaults() *Config {
	return &Config{
		DatabaseDriver:    database.DriverPostgres,
		DBMaxOpenConns:    10,
		DBMaxIdleConns:    5,
		DBConnMaxLifetime: 30 * time.Minute,
		RateLimitGeneral:  120,
		RateLimitWrite:    30,
		ServerPort:        "8080",
		ShutdownTimeout:   30 * time.Second,
		CORSAllowedOrigin: "*",
		LogLevel:          "info",
	}
}

// Load は設定を読み込む。
// 優先順位は 環境変数 > CONFIG_FILE（YAML） > デフォルト値。
// 必須項目が未設定の場合やドライバー名が不正な場合はエラーを返す。
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	// Required fields
	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	if !database.IsSupportedDriver(cfg.DatabaseDriver) {
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	return cfg, nil
}

// LoadServerPort はLoadと同じ優先順位でサーバーポートだけを解決する。
// DATABASE_URLなどの必須項目は検証しない。
func LoadServerPort() (string, error) {
	cfg, err := load()
	if err != nil {
		return "", err
	}
	return cfg.ServerPort, nil
}

func load() (*Config, error) {
	cfg := defaults()

	var proxies []string
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fc, err := readFile(path)
		if err != nil {
			return nil, err
		}
		fc.applyTo(cfg)
		proxies = fc.Server.TrustedProxies
	}

	cfg.DatabaseURL = getEnvString("DATABASE_URL", cfg.DatabaseURL)
	cfg.DatabaseDriver = getEnvString("DATABASE_DRIVER", cfg.DatabaseDriver)
	cfg.DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns)
	cfg.DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.DBMaxIdleConns)
	cfg.DBConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", cfg.DBConnMaxLifetime)
	cfg.AutoMigrate = getEnvBool("AUTO_MIGRATE", cfg.AutoMigrate)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", cfg.RateLimitGeneral)
	cfg.RateLimitWrite = getEnvInt("RATE_LIMIT_WRITE", cfg.RateLimitWrite)
	cfg.ServerPort = getEnvString("SERVER_PORT", cfg.ServerPort)
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", cfg.CORSAllowedOrigin)
	cfg.LogLevel = getEnvString("LOG_LEVEL", cfg.LogLevel)

	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		proxies = strings.Split(v, ",")
	}
	trusted, err := parseTrustedProxies(proxies)
	if err != nil {
		return nil, err
	}
	cfg.TrustedProxies = trusted

	return cfg, nil
}

// parseTrustedProxies はCIDRまたは単一IPのリストを解析する。
func parseTrustedProxies(values []string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.Contains(v, "/") {
			p, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", v, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", v, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// PoolConfig はデータベース接続プール設定を返す。
func (c *Config) PoolConfig() database.PoolConfig {
	return database.PoolConfig{
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
	}
}

func readFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// applyTo はファイルで指定された項目のみcfgに反映する。
func (fc *fileConfig) applyTo(cfg *Config) {
	setString(&cfg.DatabaseURL, fc.Database.URL)
	setString(&cfg.DatabaseDriver, fc.Database.Driver)
	setInt(&cfg.DBMaxOpenConns, fc.Database.MaxOpenConns)
	setInt(&cfg.DBMaxIdleConns, fc.Database.MaxIdleConns)
	if fc.Database.ConnMaxLifetime > 0 {
		cfg.DBConnMaxLifetime = fc.Database.ConnMaxLifetime
	}
	if fc.Database.AutoMigrate != nil {
		cfg.AutoMigrate = *fc.Database.AutoMigrate
	}
	setString(&cfg.ServerPort, fc.Server.Port)
	setString(&cfg.CORSAllowedOrigin, fc.Server.CORSAllowedOrigin)
	if fc.Server.ShutdownTimeout > 0 {
		cfg.ShutdownTimeout = fc.Server.ShutdownTimeout
	}
	setInt(&cfg.RateLimitGeneral, fc.RateLimit.General)
	setInt(&cfg.RateLimitWrite, fc.RateLimit.Write)
	setString(&cfg.LogLevel, fc.Log.Level)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
