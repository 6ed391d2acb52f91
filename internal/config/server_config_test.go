package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerConfig_Address(t *testing.T) {
	tests := []struct {
		name   string
		server ServerConfig
		want   string
	}{
		{
			name:   "localhost default port",
			server: ServerConfig{Host: "localhost", Port: 8030},
			want:   "localhost:8030",
		},
		{
			name:   "bind all interfaces",
			server: ServerConfig{Host: "0.0.0.0", Port: 8080},
			want:   "0.0.0.0:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.server.Address())
		})
	}
}

func TestPostgresConfig_DSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, User: "app", Password: "pw", DBName: "orders", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:pw@db:5433/orders?sslmode=disable", p.DSN())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("HTTP_PORT", "9001")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BOOTSTRAP_SERVERS", "k1:9092, k2:9092 ,")
	t.Setenv("ORDER_STRICT_STATUS", "false")
	t.Setenv("REDIS_CUSTOMER_TTL", "30s")
	t.Setenv("ADMIN_PANEL_PASSWORD", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Orders.StrictStatus)
	assert.Equal(t, 30*time.Second, cfg.Redis.CustomerTTL)
	assert.Equal(t, "s3cret", cfg.Admin.PanelSecret)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Orders.StrictStatus)
	assert.Equal(t, 50, cfg.Orders.DefaultPageSize)
	assert.Equal(t, 200, cfg.Orders.MaxPageSize)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8030},
			Store:  StoreConfig{Driver: StoreDriverPostgres},
			DB:     PostgresConfig{Host: "localhost", User: "postgres", DBName: "postgres"},
			Orders: OrdersConfig{DefaultPageSize: 50, MaxPageSize: 200},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "HTTP_PORT"},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "sqlite" }, wantErr: "STORE_DRIVER"},
		{name: "incomplete db", mutate: func(c *Config) { c.DB.Host = "" }, wantErr: "database config"},
		{name: "memory ignores db", mutate: func(c *Config) { c.Store.Driver = StoreDriverMemory; c.DB.Host = "" }},
		{name: "kafka without brokers", mutate: func(c *Config) { c.Kafka.Enabled = true }, wantErr: "kafka brokers"},
		{name: "page sizes", mutate: func(c *Config) { c.Orders.MaxPageSize = 10 }, wantErr: "page sizes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
