package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Stripe secret key for the payment gateway client.
	StripeKey string `mapstructure:"STRIPE_SECRET_KEY"`

	// Service-role key trusted for server-to-server payment verification calls.
	ServiceRoleKey string `mapstructure:"SERVICE_ROLE_KEY"`

	// Kafka configuration for booking lifecycle events.
	KafkaBrokers      []string `mapstructure:"KAFKA_BROKERS"`
	KafkaBookingTopic string   `mapstructure:"KAFKA_BOOKING_TOPIC"`

	// Workflow windows.
	LandlordResponseWindow time.Duration `mapstructure:"LANDLORD_RESPONSE_WINDOW"`
	AuthorizationValidity  time.Duration `mapstructure:"AUTHORIZATION_VALIDITY"`
	ExpiryGracePeriod      time.Duration `mapstructure:"EXPIRY_GRACE_PERIOD"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 3)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "flat2study")
	viper.SetDefault("STRIPE_SECRET_KEY", "")
	viper.SetDefault("SERVICE_ROLE_KEY", "")
	viper.SetDefault("KAFKA_BROKERS", []string{"localhost:9092"})
	viper.SetDefault("KAFKA_BOOKING_TOPIC", "booking-events")
	viper.SetDefault("LANDLORD_RESPONSE_WINDOW", 24*time.Hour)
	viper.SetDefault("AUTHORIZATION_VALIDITY", 7*24*time.Hour)
	viper.SetDefault("EXPIRY_GRACE_PERIOD", 5*time.Minute)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
