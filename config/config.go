package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	StoreDriver       string `mapstructure:"STORE_DRIVER"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	// Comma-separated proxy addresses or CIDRs whose X-Forwarded-For is honoured.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	// Redis configuration.
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB      int    `mapstructure:"REDIS_CACHE_DB"`
	RedisTaskQueueDB  int    `mapstructure:"REDIS_TASK_QUEUE_DB"`
	TaskWorkerEnabled bool   `mapstructure:"TASK_WORKER_ENABLED"`

	// RabbitMQ lifecycle events. Empty disables publishing.
	AMQPURL string `mapstructure:"AMQP_URL"`

	// Firebase service account for FCM. Empty falls back to log-only notifications.
	FirebaseCredentialsPath string `mapstructure:"FIREBASE_CREDENTIALS_PATH"`

	// Booking lifecycle timing.
	ResponseWindowSeconds int  `mapstructure:"RESPONSE_WINDOW_SECONDS"`
	PollIntervalSeconds   int  `mapstructure:"POLL_INTERVAL_SECONDS"`
	BuzzerIntervalSeconds int  `mapstructure:"BUZZER_INTERVAL_SECONDS"`
	ServerExpiryEnabled   bool `mapstructure:"SERVER_EXPIRY_ENABLED"`
	ExpirySweepSeconds    int  `mapstructure:"EXPIRY_SWEEP_SECONDS"`

	// Pricing.
	DefaultGSTRate            float64 `mapstructure:"DEFAULT_GST_RATE"`
	DriverBaseHours           float64 `mapstructure:"DRIVER_BASE_HOURS"`
	DriverOvertimeMultiplier  float64 `mapstructure:"DRIVER_OVERTIME_MULTIPLIER"`
	WalletUpfrontSharePercent int     `mapstructure:"WALLET_UPFRONT_SHARE_PERCENT"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is optional; real environment variables still win.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "yann")
	v.SetDefault("STORE_DRIVER", "mongo")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_TASK_QUEUE_DB", 3)
	v.SetDefault("TASK_WORKER_ENABLED", true)
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("FIREBASE_CREDENTIALS_PATH", "")

	v.SetDefault("RESPONSE_WINDOW_SECONDS", 180)
	v.SetDefault("POLL_INTERVAL_SECONDS", 3)
	v.SetDefault("BUZZER_INTERVAL_SECONDS", 30)
	v.SetDefault("SERVER_EXPIRY_ENABLED", true)
	v.SetDefault("EXPIRY_SWEEP_SECONDS", 30)

	v.SetDefault("DEFAULT_GST_RATE", 0.18)
	v.SetDefault("DRIVER_BASE_HOURS", 10)
	v.SetDefault("DRIVER_OVERTIME_MULTIPLIER", 2)
	v.SetDefault("WALLET_UPFRONT_SHARE_PERCENT", 25)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// ResponseWindow is how long a pending booking waits for a provider.
func (c Config) ResponseWindow() time.Duration {
	return time.Duration(c.ResponseWindowSeconds) * time.Second
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c Config) BuzzerInterval() time.Duration {
	return time.Duration(c.BuzzerIntervalSeconds) * time.Second
}

func (c Config) ExpirySweepInterval() time.Duration {
	return time.Duration(c.ExpirySweepSeconds) * time.Second
}
