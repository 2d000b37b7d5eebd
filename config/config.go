package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	ServerPort int
	Database   DatabaseConfig
	Auth       AuthConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// AuthConfig holds the token-signing and password-hashing settings.
// All values are fixed at startup; nothing here is mutated at runtime.
type AuthConfig struct {
	// JWTSecret signs session tokens. The server refuses to start without it.
	JWTSecret string

	// TokenLifetime is how long an issued token stays valid.
	TokenLifetime time.Duration

	// BcryptCost is the work factor for password hashing.
	BcryptCost int
}

const defaultTokenLifetimeMs = 86400000 // 24 hours

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "diaries"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "diaries_db"),
		UseSSL:   getEnvBool("DB_SSL", false),
	}

	authConfig := AuthConfig{
		JWTSecret:     getEnv("JWT_SECRET", ""),
		TokenLifetime: time.Duration(getEnvInt("JWT_EXPIRATION_MS", defaultTokenLifetimeMs)) * time.Millisecond,
		BcryptCost:    getEnvInt("BCRYPT_COST", bcrypt.DefaultCost),
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Database:   dbConfig,
		Auth:       authConfig,
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

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		return valueStr == "true" || valueStr == "1"
	}
	return defaultValue
}
