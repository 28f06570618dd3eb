package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Telegram     TelegramConfig     `mapstructure:"telegram"`
	Admin        AdminConfig        `mapstructure:"admin"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Subscription SubscriptionConfig `mapstructure:"subscription"`
	CORS         CORSConfig         `mapstructure:"cors"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // sqlite or mysql
	Path         string `mapstructure:"path"`   // sqlite file path
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type TelegramConfig struct {
	BotToken       string `mapstructure:"bot_token"`
	PollTimeout    int    `mapstructure:"poll_timeout"`    // getUpdates long-poll timeout, seconds
	RequestTimeout int    `mapstructure:"request_timeout"` // per-call HTTP timeout, seconds
}

type AdminConfig struct {
	TelegramIDs  []int64 `mapstructure:"telegram_ids"`
	PasswordHash string  `mapstructure:"password_hash"` // bcrypt hash for the dashboard login
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SubscriptionConfig struct {
	MonthlyPrice  int64 `mapstructure:"monthly_price"`
	DurationDays  int   `mapstructure:"duration_days"`
	WarningDays   int   `mapstructure:"warning_days"`
	CheckHourUTC  int   `mapstructure:"check_hour_utc"`
	StartupDelay  int   `mapstructure:"startup_delay"` // seconds before the startup catch-up sweep
	SessionTTLMin int   `mapstructure:"session_ttl_min"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load(configPath string) (*Config, error) {
	// Prefer config.local.yaml when present (real secrets, not committed).
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("subscription.duration_days", 30)
	viper.SetDefault("subscription.warning_days", 3)
	viper.SetDefault("subscription.check_hour_utc", 4)
	viper.SetDefault("subscription.startup_delay", 10)
	viper.SetDefault("subscription.session_ttl_min", 30)
	viper.SetDefault("telegram.poll_timeout", 30)
	viper.SetDefault("telegram.request_timeout", 10)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// IsAdmin reports whether the given Telegram id is in the configured admin list.
func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.Admin.TelegramIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}
