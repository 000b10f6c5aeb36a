package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Log           LogConfig
	Event         EventConfig
	HTTP          HTTPConfig
	Replenishment ReplenishmentConfig
	Topology      TopologyConfig
	Telemetry     TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// EventConfig holds event processing configuration
type EventConfig struct {
	IdempotencyEnabled bool
	IdempotencyTTL     time.Duration
	RequireRedis       bool // refuse to fall back to the in-memory store
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// ReplenishmentConfig holds the threshold policy knobs. Values map onto
// the application-layer ThresholdPolicy; main validates them together
// when the policy is built.
type ReplenishmentConfig struct {
	StoreFloorMode  string  // absolute or ratio
	StoreFloorUnits int64   // floor in units when mode is absolute
	StoreFloorRatio float64 // floor as a fraction of capacity when mode is ratio
	StoreAction     string  // transfer or request
	WarehouseRatio  float64
	DangerRatio     float64
	TargetFillRatio float64
	DeliveryLead    time.Duration
}

// TelemetryConfig holds OpenTelemetry export settings. When disabled the
// instruments still exist but record into the global no-op providers.
type TelemetryConfig struct {
	Enabled           bool          // export metrics and traces to a collector
	CollectorEndpoint string        // OTLP gRPC endpoint (e.g., "localhost:4317")
	SamplingRatio     float64       // trace sampling ratio, 0.0-1.0
	MetricInterval    time.Duration // metric export interval
	ServiceName       string        // defaults to app.name
	Insecure          bool          // non-TLS collector connection (development only)
}

// LocationConfig describes one node of the location topology
type LocationConfig struct {
	ID              string  `mapstructure:"id"`
	Name            string  `mapstructure:"name"`
	Class           string  `mapstructure:"class"` // central, regional, store
	Region          string  `mapstructure:"region"`
	ParentWarehouse string  `mapstructure:"parent_warehouse"`
	Capacity        float64 `mapstructure:"capacity"` // 0 means the class default
}

// ProductConfig describes one catalog entry used by inventory seeding
type ProductConfig struct {
	SKU  string `mapstructure:"sku"`
	Name string `mapstructure:"name"`
}

// TopologyConfig holds the explicit location table and the product catalog.
// Location relationships are declared here, never inferred from ID naming.
type TopologyConfig struct {
	Locations []LocationConfig
	Catalog   []ProductConfig
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with RETAILOPS_ prefix (e.g., RETAILOPS_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("RETAILOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Event: EventConfig{
			IdempotencyEnabled: v.GetBool("event.idempotency_enabled"),
			IdempotencyTTL:     v.GetDuration("event.idempotency_ttl"),
			RequireRedis:       v.GetBool("event.require_redis"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Replenishment: ReplenishmentConfig{
			StoreFloorMode:  v.GetString("replenishment.store_floor_mode"),
			StoreFloorUnits: v.GetInt64("replenishment.store_floor_units"),
			StoreFloorRatio: v.GetFloat64("replenishment.store_floor_ratio"),
			StoreAction:     v.GetString("replenishment.store_action"),
			WarehouseRatio:  v.GetFloat64("replenishment.warehouse_ratio"),
			DangerRatio:     v.GetFloat64("replenishment.danger_ratio"),
			TargetFillRatio: v.GetFloat64("replenishment.target_fill_ratio"),
			DeliveryLead:    v.GetDuration("replenishment.delivery_lead"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			MetricInterval:    v.GetDuration("telemetry.metric_interval"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	if err := v.UnmarshalKey("topology.locations", &cfg.Topology.Locations); err != nil {
		return nil, fmt.Errorf("error parsing topology.locations: %w", err)
	}
	if err := v.UnmarshalKey("topology.catalog", &cfg.Topology.Catalog); err != nil {
		return nil, fmt.Errorf("error parsing topology.catalog: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "retailops-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "retailops"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Event.IdempotencyTTL == 0 {
		cfg.Event.IdempotencyTTL = 24 * time.Hour
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.Replenishment.StoreFloorMode == "" {
		cfg.Replenishment.StoreFloorMode = "absolute"
	}
	if cfg.Replenishment.StoreFloorUnits == 0 {
		cfg.Replenishment.StoreFloorUnits = 60
	}
	if cfg.Replenishment.StoreFloorRatio == 0 {
		cfg.Replenishment.StoreFloorRatio = 0.30
	}
	if cfg.Replenishment.StoreAction == "" {
		cfg.Replenishment.StoreAction = "transfer"
	}
	if cfg.Replenishment.WarehouseRatio == 0 {
		cfg.Replenishment.WarehouseRatio = 0.30
	}
	if cfg.Replenishment.DangerRatio == 0 {
		cfg.Replenishment.DangerRatio = 0.15
	}
	if cfg.Replenishment.TargetFillRatio == 0 {
		cfg.Replenishment.TargetFillRatio = 0.90
	}
	if cfg.Replenishment.DeliveryLead == 0 {
		cfg.Replenishment.DeliveryLead = 72 * time.Hour
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.MetricInterval == 0 {
		cfg.Telemetry.MetricInterval = 60 * time.Second
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if len(cfg.Topology.Locations) == 0 {
		cfg.Topology.Locations = defaultTopology()
	}
	if len(cfg.Topology.Catalog) == 0 {
		cfg.Topology.Catalog = defaultCatalog()
	}
}

// defaultTopology is a small development topology: one central warehouse,
// two regional warehouses and three stores. Production deployments declare
// their own table in config.toml.
func defaultTopology() []LocationConfig {
	return []LocationConfig{
		{ID: "CENTRAL", Name: "Central Warehouse", Class: "central"},
		{ID: "WH-EAST", Name: "East Regional Warehouse", Class: "regional", Region: "East"},
		{ID: "WH-SOUTH", Name: "South Regional Warehouse", Class: "regional", Region: "South"},
		{ID: "STORE-EAST-01", Name: "East Store 01", Class: "store", Region: "East", ParentWarehouse: "WH-EAST"},
		{ID: "STORE-EAST-02", Name: "East Store 02", Class: "store", Region: "East", ParentWarehouse: "WH-EAST"},
		{ID: "STORE-SOUTH-01", Name: "South Store 01", Class: "store", Region: "South", ParentWarehouse: "WH-SOUTH"},
	}
}

// defaultCatalog seeds development environments with a few products
func defaultCatalog() []ProductConfig {
	return []ProductConfig{
		{SKU: "PROD-001", Name: "Espresso Beans 1kg"},
		{SKU: "PROD-002", Name: "Oat Milk 1L"},
		{SKU: "PROD-003", Name: "Paper Cups 12oz (50pk)"},
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Replenishment.StoreFloorMode {
	case "absolute", "ratio":
	default:
		return fmt.Errorf("replenishment.store_floor_mode must be absolute or ratio, got %q", c.Replenishment.StoreFloorMode)
	}
	switch c.Replenishment.StoreAction {
	case "transfer", "request":
	default:
		return fmt.Errorf("replenishment.store_action must be transfer or request, got %q", c.Replenishment.StoreAction)
	}
	for name, ratio := range map[string]float64{
		"replenishment.store_floor_ratio": c.Replenishment.StoreFloorRatio,
		"replenishment.warehouse_ratio":   c.Replenishment.WarehouseRatio,
		"replenishment.danger_ratio":      c.Replenishment.DangerRatio,
		"replenishment.target_fill_ratio": c.Replenishment.TargetFillRatio,
	} {
		if ratio <= 0 || ratio > 1 {
			return fmt.Errorf("%s must be in (0, 1], got %f", name, ratio)
		}
	}
	if c.Replenishment.DeliveryLead <= 0 {
		return fmt.Errorf("replenishment.delivery_lead must be positive")
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	for i, loc := range c.Topology.Locations {
		if loc.ID == "" {
			return fmt.Errorf("topology.locations[%d]: id is required", i)
		}
		switch loc.Class {
		case "central", "regional", "store":
		default:
			return fmt.Errorf("topology.locations[%d] (%s): class must be central, regional or store, got %q", i, loc.ID, loc.Class)
		}
	}
	for i, p := range c.Topology.Catalog {
		if p.SKU == "" {
			return fmt.Errorf("topology.catalog[%d]: sku is required", i)
		}
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
