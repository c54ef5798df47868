/**
 * @description
 * This package handles configuration for the transfers-service. It uses the
 * Viper library to read settings from environment variables (with an
 * optional .env file), applies defaults, and clamps obviously broken values
 * instead of failing the boot.
 *
 * @dependencies
 * - github.com/spf13/viper: Environment-driven configuration.
 */

package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/corebank/transfers-service/internal/store"
)

// Config holds all configuration variables for the transfers-service.
type Config struct {
	ServerPort            string `mapstructure:"SERVER_PORT"`
	RabbitMQURL           string `mapstructure:"RABBITMQ_URL"`
	TransferEventExchange string `mapstructure:"TRANSFER_EVENT_EXCHANGE"`

	// Per-account lock tuning. The defaults match the documented contract:
	// up to 5 attempts waiting a randomized 50-100ms each.
	LockMaxAttempts   int `mapstructure:"LOCK_MAX_ATTEMPTS"`
	LockRetryMinMS    int `mapstructure:"LOCK_RETRY_MIN_MS"`
	LockRetryMaxMS    int `mapstructure:"LOCK_RETRY_MAX_MS"`
	ReadLockTimeoutMS int `mapstructure:"READ_LOCK_TIMEOUT_MS"`
}

// LoadConfig reads configuration from environment variables, falling back to
// an optional .env file at the given path.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("TRANSFER_EVENT_EXCHANGE", "ledger.events")
	viper.SetDefault("LOCK_MAX_ATTEMPTS", 5)
	viper.SetDefault("LOCK_RETRY_MIN_MS", 50)
	viper.SetDefault("LOCK_RETRY_MAX_MS", 100)
	viper.SetDefault("READ_LOCK_TIMEOUT_MS", 500)

	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("TRANSFER_EVENT_EXCHANGE")
	_ = viper.BindEnv("LOCK_MAX_ATTEMPTS")
	_ = viper.BindEnv("LOCK_RETRY_MIN_MS")
	_ = viper.BindEnv("LOCK_RETRY_MAX_MS")
	_ = viper.BindEnv("READ_LOCK_TIMEOUT_MS")

	if err = viper.ReadInConfig(); err != nil {
		// A missing .env file is fine; anything else is worth a warning but
		// the environment still wins.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
		err = nil
	}

	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	if config.LockMaxAttempts <= 0 {
		log.Printf("level=warn component=config msg=\"invalid lock attempts; using default\" attempts=%d", config.LockMaxAttempts)
		config.LockMaxAttempts = 5
	}
	if config.LockRetryMinMS <= 0 {
		config.LockRetryMinMS = 50
	}
	if config.LockRetryMaxMS < config.LockRetryMinMS {
		log.Printf("level=warn component=config msg=\"lock retry max below min; clamping\" min_ms=%d max_ms=%d", config.LockRetryMinMS, config.LockRetryMaxMS)
		config.LockRetryMaxMS = config.LockRetryMinMS
	}
	if config.ReadLockTimeoutMS <= 0 {
		config.ReadLockTimeoutMS = 500
	}

	config.RabbitMQURL = strings.TrimSpace(config.RabbitMQURL)

	return
}

// LedgerSettings converts the lock tuning knobs into store settings.
func (c Config) LedgerSettings() store.Settings {
	return store.Settings{
		LockMaxAttempts: c.LockMaxAttempts,
		LockRetryMin:    time.Duration(c.LockRetryMinMS) * time.Millisecond,
		LockRetryMax:    time.Duration(c.LockRetryMaxMS) * time.Millisecond,
		ReadTimeout:     time.Duration(c.ReadLockTimeoutMS) * time.Millisecond,
	}
}
