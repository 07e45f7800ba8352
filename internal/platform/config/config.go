package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

type Config struct {
	APIPort string
	JWTKey  []byte

	SessionTTL       time.Duration
	RememberTTL      time.Duration
	SessionKeyPrefix string
	CookieSecure     bool
	BcryptCost       int

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string
	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Where a judge lands after posting a problem. Historically the login page.
	ProblemCreatedRedirect string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:          getEnv("API_PORT", "8080"),
		JWTKey:           []byte(getEnv("JWT_SECRET", "defaultsecret")),
		SessionTTL:       time.Duration(getEnvAsInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		RememberTTL:      time.Duration(getEnvAsInt("REMEMBER_TTL_HOURS", 24*30)) * time.Hour,
		SessionKeyPrefix: getEnv("SESSION_KEY_PREFIX", "ocpe:"),
		CookieSecure:     getEnvAsBool("COOKIE_SECURE", false),
		BcryptCost:       getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost),

		DBDriver:   getEnv("DB_DRIVER", DriverPostgres),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "ocpe_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "ocpe.db"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		ProblemCreatedRedirect: getEnv("PROBLEM_CREATED_REDIRECT", "/login"),
	}

	if string(AppConfig.JWTKey) == "defaultsecret" {
		log.Println("WARN: JWT_SECRET not set, using the built-in development secret")
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
