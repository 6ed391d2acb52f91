package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	App    AppConfig
	Server ServerConfig
	Store  StoreConfig
	DB     PostgresConfig
	Kafka  KafkaConfig
	Redis  RedisConfig
	Admin  AdminConfig
	Orders OrdersConfig
}

type AppConfig struct {
	Name string
	Env  string
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

type StoreConfig struct {
	Driver string
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	OrderTopic    string
	ConsumerGroup string
}

type RedisConfig struct {
	Enabled     bool
	Addr        string
	Password    string
	DB          int
	CustomerTTL time.Duration
}

// AdminConfig holds the secrets the HTTP boundary needs. They are injected
// into the gate and middleware at construction.
type AdminConfig struct {
	PanelSecret string
	APIKey      string
}

type OrdersConfig struct {
	StrictStatus    bool
	DefaultPageSize int
	MaxPageSize     int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "order_backend"),
			Env:  getEnv("APP_ENV", "local"),
		},
		Server: ServerConfig{
			Host:            getEnv("HTTP_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("HTTP_PORT", 8030),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		},
		DB: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			DBName:   getEnv("POSTGRES_DB", "postgres"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
		},
		Kafka: KafkaConfig{
			Enabled:       getEnvAsBool("KAFKA_ENABLED", false),
			Brokers:       splitAndTrim(getEnv("KAFKA_BOOTSTRAP_SERVERS", "localhost:9092")),
			OrderTopic:    getEnv("KAFKA_ORDER_TOPIC", "order_events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "order-audit"),
		},
		Redis: RedisConfig{
			Enabled:     getEnvAsBool("REDIS_ENABLED", false),
			Addr:        getEnv("REDIS_ADDR", "localhost:6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvAsInt("REDIS_DB", 0),
			CustomerTTL: getEnvAsDuration("REDIS_CUSTOMER_TTL", 5*time.Minute),
		},
		Admin: AdminConfig{
			PanelSecret: getEnv("ADMIN_PANEL_PASSWORD", ""),
			APIKey:      getEnv("API_KEY", ""),
		},
		Orders: OrdersConfig{
			StrictStatus:    getEnvAsBool("ORDER_STRICT_STATUS", true),
			DefaultPageSize: getEnvAsInt("ORDER_DEFAULT_PAGE_SIZE", 50),
			MaxPageSize:     getEnvAsInt("ORDER_MAX_PAGE_SIZE", 200),
		},
	}

	return cfg, cfg.validate()
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

/* ================= helpers ================= */

func (c *Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("HTTP_PORT is invalid")
	}
	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.DB.Host == "" || c.DB.User == "" || c.DB.DBName == "" {
			return fmt.Errorf("database config is incomplete")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER %q is not supported", c.Store.Driver)
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers is empty")
		}
		if c.Kafka.OrderTopic == "" {
			return fmt.Errorf("KAFKA_ORDER_TOPIC is empty")
		}
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is empty")
	}
	if c.Orders.DefaultPageSize <= 0 || c.Orders.MaxPageSize < c.Orders.DefaultPageSize {
		return fmt.Errorf("order page sizes are invalid")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if val := strings.TrimSpace(p); val != "" {
			out = append(out, val)
		}
	}
	return out
}
