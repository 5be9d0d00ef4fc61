package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv     string
	ServerPort string

	DBDriver   string // postgres, sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	JWTSecret     string
	JWTExpiration time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SendGridAPIKey string
	MailFrom       string
	RollbarToken   string

	VideoBaseURL       string
	PlatformFeePercent int
	CORSOrigins        string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "learnity")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_PATH", "learnity.db")
	v.SetDefault("JWT_SECRET", "secret")
	v.SetDefault("JWT_EXPIRATION_HOURS", 72)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM", "noreply@learnity.local")
	v.SetDefault("ROLLBAR_TOKEN", "")
	v.SetDefault("VIDEO_BASE_URL", "https://meet.learnity.local")
	v.SetDefault("PLATFORM_FEE_PERCENT", 10)
	v.SetDefault("CORS_ORIGINS", "*")
	v.AutomaticEnv()

	cfg := &Config{
		AppEnv:             v.GetString("APP_ENV"),
		ServerPort:         v.GetString("SERVER_PORT"),
		DBDriver:           strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:             v.GetString("DB_HOST"),
		DBPort:             v.GetString("DB_PORT"),
		DBUser:             v.GetString("DB_USER"),
		DBPassword:         v.GetString("DB_PASSWORD"),
		DBName:             v.GetString("DB_NAME"),
		DBSSLMode:          v.GetString("DB_SSLMODE"),
		DBPath:             v.GetString("DB_PATH"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTExpiration:      time.Duration(v.GetInt("JWT_EXPIRATION_HOURS")) * time.Hour,
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisDB:            v.GetInt("REDIS_DB"),
		SendGridAPIKey:     v.GetString("SENDGRID_API_KEY"),
		MailFrom:           v.GetString("MAIL_FROM"),
		RollbarToken:       v.GetString("ROLLBAR_TOKEN"),
		VideoBaseURL:       strings.TrimRight(v.GetString("VIDEO_BASE_URL"), "/"),
		PlatformFeePercent: v.GetInt("PLATFORM_FEE_PERCENT"),
		CORSOrigins:        v.GetString("CORS_ORIGINS"),
	}

	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.PlatformFeePercent < 0 || cfg.PlatformFeePercent > 100 {
		return nil, fmt.Errorf("PLATFORM_FEE_PERCENT must be between 0 and 100, got %d", cfg.PlatformFeePercent)
	}

	return cfg, nil
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
