package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Bot        BotConfig
	Database   DatabaseConfig
	ServerPort int
	LogLevel   string
}

type BotConfig struct {
	// Token is the chat transport credential.
	Token string

	// AdminID is the identity of the bootstrap administrator. It is
	// granted the admin role on every startup so the bot never starts
	// without one.
	AdminID int64
}

type DatabaseConfig struct {
	// Driver selects the storage backend: "sqlite" (default) or "postgres".
	Driver string

	// Path is the SQLite database file, used when Driver is "sqlite".
	Path string

	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", "sqlite"),
		Path:     getEnv("DB_PATH", "cards.db"),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "tgcard"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "tgcard_db"),
		UseSSL:   getEnv("DB_SSL", "") == "true",
	}

	return Config{
		Bot: BotConfig{
			Token:   getEnv("BOT_TOKEN", ""),
			AdminID: getEnvInt64("ADMIN_ID", 0),
		},
		Database:   dbConfig,
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int64
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}
