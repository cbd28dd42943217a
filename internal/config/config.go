package config

import (
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort         string
	APIBaseURL       string
	RedisAddr        string
	RedisPassword    string
	RequestTimeout   time.Duration
	ShutdownTimeout  time.Duration
	BreakerThreshold uint32
	BreakerTimeout   time.Duration
	LogLevel         logrus.Level
	AuthToken        string
}

func Load() *Config {
	return &Config{
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		APIBaseURL:       getEnv("API_BASE_URL", "http://localhost:8080/api"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RequestTimeout:   getDuration("REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout:  getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		BreakerThreshold: getUint32("BREAKER_THRESHOLD", 5),
		BreakerTimeout:   getDuration("BREAKER_TIMEOUT", 30*time.Second),
		LogLevel:         getLevel("LOG_LEVEL", logrus.InfoLevel),
		AuthToken:        getEnv("AUTH_TOKEN", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getUint32(key string, defaultValue uint32) uint32 {
	n, err := strconv.ParseUint(getEnv(key, ""), 10, 32)
	if err != nil || n == 0 {
		return defaultValue
	}
	return uint32(n)
}

func getLevel(key string, defaultValue logrus.Level) logrus.Level {
	lvl, err := logrus.ParseLevel(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return lvl
}
