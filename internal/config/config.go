package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppName string
	Env     string
	Host    string
	Port    int

	JWTSecret          string
	AccessTokenMinutes int

	// StoreBackend selects where collections persist: sqlite, redis or
	// memory.
	StoreBackend string
	SQLitePath   string
	RedisAddr    string

	RoomCreationLimit int
	FriendLimit       int
	Premium           bool

	CORSOrigins []string
	Debug       bool
}

func Load() (*Config, error) {
	cfg := &Config{
		AppName: getEnv("APP_NAME", "StudyRoom API"),
		Env:     getEnv("APP_ENV", "development"),
		Host:    getEnv("HTTP_HOST", "0.0.0.0"),
		Port:    getEnvAsInt("HTTP_PORT", 8000),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessTokenMinutes: getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24),

		StoreBackend: getEnv("STORE_BACKEND", "sqlite"),
		SQLitePath:   getEnv("SQLITE_PATH", "studyroom.db"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),

		RoomCreationLimit: getEnvAsInt("FREE_ROOM_CREATION_LIMIT", 5),
		FriendLimit:       getEnvAsInt("FREE_FRIEND_LIMIT", 10),
		Premium:           getEnvAsBool("PREMIUM", false),

		Debug: getEnvAsBool("DEBUG", true),
	}

	cors := getEnv("CORS_ORIGINS", "")
	if cors != "" {
		parts := strings.Split(cors, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.CORSOrigins = parts
	} else {
		cfg.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.StoreBackend {
	case "sqlite", "redis", "memory":
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
