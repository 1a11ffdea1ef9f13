package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"wg-parser-service/internal/constants"

	"github.com/joho/godotenv"
)

// RabbitMQConfig хранит конфигурацию для RabbitMQ
type RabbitMQConfig struct {
	URL string
}

// DBconfig хранит конфигурацию для БД
type DBconfig struct {
	URL             string
	MaxConns        int
	MaxConnLifetime time.Duration
	AutoMigrate     bool
}

type StdoutLogConfig struct {
	Level  string
	IsJSON bool
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// FetcherConfig - параметры доступа к wg-gesucht
type FetcherConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	RandomDelay    time.Duration
}

type GeocoderConfig struct {
	APIKey  string
	BaseURL string
}

// UpdateConfig - параметры ежедневной сверки активных объявлений
type UpdateConfig struct {
	Cron        string
	MaxPages    int
	DelayMin    time.Duration
	DelayJitter time.Duration
	StampPolicy string
}

// ScrapeConfig - периодический сбор новых объявлений
type ScrapeConfig struct {
	Enabled  bool
	Interval time.Duration
	Jitter   time.Duration
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Cities       []string
	Database     DBconfig
	RabbitMQ     RabbitMQConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
	Server       ServerConfig
	Fetcher      FetcherConfig
	Geocoder     GeocoderConfig
	Update       UpdateConfig
	Scrape       ScrapeConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
// .env файл необязателен: в контейнере переменные приходят из окружения.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if len(envPath) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
		}
		log.Printf("Info: .env file not found, using process environment\n")
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "wg-parser-service")

	cfg.Database.URL = os.Getenv("DATABASE_URL")
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	cfg.Database.MaxConns = getEnvAsInt("DATABASE_MAX_CONNS", 10)
	cfg.Database.MaxConnLifetime = getEnvAsDuration("DATABASE_MAX_CONN_LIFETIME", time.Hour)
	cfg.Database.AutoMigrate = getEnvAsBool("DATABASE_AUTO_MIGRATE", true)

	cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
	if cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL environment variable is required")
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.StdoutLogger.IsJSON = getEnvAsBool("STDOUT_LOG_JSON", false)

	cfg.Server.Port = getEnvAsString("PORT", "8080")
	cfg.Server.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second)
	cfg.Server.AllowedOrigins = splitList(getEnvAsString("CORS_ALLOWED_ORIGINS", "http://localhost:5173"))

	cfg.Cities = splitList(getEnvAsString("CITIES", "munich"))

	cfg.Fetcher.BaseURL = getEnvAsString("WG_BASE_URL", constants.DefaultBaseURL)
	cfg.Fetcher.RequestTimeout = getEnvAsDuration("WG_REQUEST_TIMEOUT", 30*time.Second)
	cfg.Fetcher.RandomDelay = getEnvAsDuration("WG_RANDOM_DELAY", 0)

	cfg.Geocoder.APIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	cfg.Geocoder.BaseURL = getEnvAsString("GEOCODER_URL", "")

	cfg.Update.Cron = getEnvAsString("UPDATE_CRON", "0 0 * * *")
	cfg.Update.MaxPages = getEnvAsInt("UPDATE_MAX_PAGES", constants.DefaultMaxPages)
	if cfg.Update.MaxPages <= 0 {
		return nil, fmt.Errorf("UPDATE_MAX_PAGES must be positive, got %d", cfg.Update.MaxPages)
	}
	cfg.Update.DelayMin = getEnvAsDuration("UPDATE_DELAY_MIN", 2*time.Second)
	cfg.Update.DelayJitter = getEnvAsDuration("UPDATE_DELAY_JITTER", 2*time.Second)
	cfg.Update.StampPolicy = getEnvAsString("DEACTIVATION_STAMP_POLICY", "on_transition")

	cfg.Scrape.Enabled = getEnvAsBool("SCRAPE_ENABLED", true)
	cfg.Scrape.Interval = getEnvAsDuration("SCRAPE_INTERVAL", 10*time.Minute)
	cfg.Scrape.Jitter = getEnvAsDuration("SCRAPE_JITTER", 3*time.Minute)
	if cfg.Scrape.Enabled && cfg.Scrape.Interval <= 0 {
		return nil, fmt.Errorf("SCRAPE_INTERVAL must be positive when scraping is enabled")
	}

	return cfg, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnvAsString читает переменную окружения как строку или возвращает значение по умолчанию
func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt читает переменную окружения как int или возвращает значение по умолчанию.
// Логирует ошибку, если переменная есть, но не может быть преобразована в int
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsDuration понимает формат time.ParseDuration ("90s", "5m")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valDur, err := time.ParseDuration(valStr)
	if err != nil || valDur < 0 {
		log.Printf("Warning: Environment variable %s (value: %s) is not a valid duration. Using default value: %s\n", key, valStr, defaultValue)
		return defaultValue
	}
	return valDur
}
