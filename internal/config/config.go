package config

import (
	"fmt"     // For DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For list parsing
	"time"    // For durations and locations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort            string         // Application port
	DBDriver           string         // mysql or postgres
	DBUser             string         // Database user
	DBPassword         string         // Database password
	DBHost             string         // Database host
	DBPort             string         // Database port
	DBName             string         // Database name
	DBMaxOpenConns     int            // Maximum number of open connections
	DBMaxIdleConns     int            // Maximum number of idle connections
	DBConnMaxLifetime  time.Duration  // Maximum lifetime of a connection
	JWTSecret          string         // JWT secret key
	RedisAddr          string         // Redis server address
	RedisPass          string         // Redis password
	RedisDB            int            // Redis database number
	IsProd             bool           // Is production environment
	LogLevel           string         // logrus level name
	Location           *time.Location // Calendar used for dates, today and billing cycles
	DefaultCountryCode string         // Country code assumed for local phone numbers
	PhonePrefixes      []string       // Transport prefixes stripped from raw phones
	IdentityCacheTTL   time.Duration  // How long a phone lookup stays cached
	IdentityFuzzy      bool           // Allow suffix matching when no exact match exists
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	loc, err := time.LoadLocation(getEnv("TZ", "UTC"))
	if err != nil {
		loc = time.UTC // Unknown zone names fall back to UTC
	}
	return &Config{
		AppPort:            getEnv("APP_PORT", "8080"),
		DBDriver:           getEnv("DB_DRIVER", "mysql"),
		DBUser:             os.Getenv("DB_USER"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             os.Getenv("DB_PORT"),
		DBName:             os.Getenv("DB_NAME"),
		DBMaxOpenConns:     getIntEnv("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:     getIntEnv("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetime:  getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPass:          os.Getenv("REDIS_PASS"),
		RedisDB:            getIntEnv("REDIS_DB", 0),
		IsProd:             os.Getenv("IS_PROD") == "true",
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Location:           loc,
		DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "55"),
		PhonePrefixes:      splitList(getEnv("PHONE_PREFIXES", "whatsapp:,tel:")),
		IdentityCacheTTL:   getDurationEnv("IDENTITY_CACHE_TTL", 5*time.Minute),
		IdentityFuzzy:      getEnv("IDENTITY_FUZZY", "true") == "true",
	}
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, port)
	default:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true&loc=UTC"
	}
}

// getEnv returns an environment variable or a default value
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// getIntEnv returns an int environment variable or a default value
func getIntEnv(key string, defaultVal int) int {
	if i, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return i
	}
	return defaultVal
}

// getDurationEnv returns a duration environment variable or a default value
func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
