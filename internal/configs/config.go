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

	"github.com/joho/godotenv"
)

const (
	KVBackendMemory    = "memory"
	KVBackendPostgres  = "postgres"
	KVBackendMemcached = "memcached"
)

type RESTconfig struct {
	Port           string
	AllowedOrigins []string
	SSEBufferSize  int
}

type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AuthConfig struct {
	JWTSecret string
	// LoginURL возвращается клиенту в ответе 401.
	LoginURL string
}

type KVConfig struct {
	Backend       string
	DatabaseURL   string
	MemcachedAddr []string
}

type CacheConfig struct {
	MaxSize     int64
	SearchTTL   time.Duration
	MatchingTTL time.Duration
}

type RabbitMQConfig struct {
	Enabled  bool
	URL      string
	Exchange string
}

type SearchConfig struct {
	// DefaultStatus - статус объявлений для категорий acheter/louer/vacances.
	DefaultStatus string
}

type StdoutLogConfig struct {
	Level string
	JSON  bool
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Rest         RESTconfig
	Upstream     UpstreamConfig
	Auth         AuthConfig
	KV           KVConfig
	Cache        CacheConfig
	RabbitMQ     RabbitMQConfig
	Search       SearchConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig загружает .env (если он есть) и читает переменные окружения.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
		}
		log.Printf("Info: .env file not found (path: %v), using process environment\n", envPath)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "kama-bff")

	cfg.Rest.Port = getEnvAsString("PORT", "8090")
	cfg.Rest.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	cfg.Rest.SSEBufferSize = getEnvAsInt("SSE_CLIENT_BUFFER", 16)

	cfg.Upstream.BaseURL = strings.TrimRight(os.Getenv("KAMA_API_URL"), "/")
	if cfg.Upstream.BaseURL == "" {
		return nil, fmt.Errorf("KAMA_API_URL environment variable is required")
	}
	cfg.Upstream.Timeout = getEnvAsDuration("KAMA_API_TIMEOUT", 10*time.Second)

	cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	cfg.Auth.LoginURL = getEnvAsString("LOGIN_URL", "/login")

	cfg.KV.Backend = strings.ToLower(getEnvAsString("KV_BACKEND", KVBackendMemory))
	switch cfg.KV.Backend {
	case KVBackendMemory:
	case KVBackendPostgres:
		cfg.KV.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.KV.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when KV_BACKEND=postgres")
		}
	case KVBackendMemcached:
		cfg.KV.MemcachedAddr = getEnvAsList("MEMCACHED_ADDR", nil)
		if len(cfg.KV.MemcachedAddr) == 0 {
			return nil, fmt.Errorf("MEMCACHED_ADDR is required when KV_BACKEND=memcached")
		}
	default:
		return nil, fmt.Errorf("unknown KV_BACKEND %q (expected memory, postgres or memcached)", cfg.KV.Backend)
	}

	cfg.Cache.MaxSize = int64(getEnvAsInt("CACHE_MAX_SIZE", 1000))
	cfg.Cache.SearchTTL = getEnvAsDuration("SEARCH_CACHE_TTL", 30*time.Second)
	cfg.Cache.MatchingTTL = getEnvAsDuration("MATCHING_CACHE_TTL", 2*time.Minute)

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL is required when RABBITMQ_ENABLED=true")
		}
		cfg.RabbitMQ.Exchange = getEnvAsString("RABBITMQ_REFRESH_EXCHANGE", "kama.refresh_matching_properties")
	}

	cfg.Search.DefaultStatus = getEnvAsString("SEARCH_DEFAULT_STATUS", "approved")

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
	cfg.StdoutLogger.JSON = getEnvAsBool("STDOUT_LOG_JSON", false)

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvAsList - значения через запятую, пустые элементы отбрасываются.
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
