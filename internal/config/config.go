package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort  string `mapstructure:"app_port"`
	AppEnv   string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	DBDriver    string `mapstructure:"db_driver"`
	MySQLHost   string `mapstructure:"mysql_host"`
	MySQLPort   string `mapstructure:"mysql_port"`
	MySQLDB     string `mapstructure:"mysql_db"`
	MySQLUser   string `mapstructure:"mysql_user"`
	MySQLPass   string `mapstructure:"mysql_pass"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	DBLogSQL    bool   `mapstructure:"db_log_sql"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisPassword string `mapstructure:"redis_password"`

	IdempTTLSecs int `mapstructure:"idempotency_ttl_seconds"`

	// Empty brokers means events are only logged.
	KafkaBrokers string `mapstructure:"kafka_brokers"`
	KafkaTopic   string `mapstructure:"kafka_topic"`

	// Empty endpoint means no trace exporter.
	OTELEndpoint   string `mapstructure:"otel_endpoint"`
	OTELAuthHeader string `mapstructure:"otel_auth_header"`
	ServiceName    string `mapstructure:"service_name"`

	JWTSecret           string `mapstructure:"jwt_secret"`
	DefaultUnitLocation string `mapstructure:"default_unit_location"`
}

var defaults = map[string]any{
	"app_port":                "8080",
	"app_env":                 "prod",
	"log_level":               "info",
	"db_driver":               "mysql",
	"mysql_host":              "mysql",
	"mysql_port":              "3306",
	"mysql_db":                "bloodbank",
	"mysql_user":              "bloodbank",
	"mysql_pass":              "bloodbank",
	"postgres_dsn":            "",
	"sqlite_path":             "bloodbank.db",
	"db_log_sql":              false,
	"redis_addr":              "redis:6379",
	"redis_db":                0,
	"redis_password":          "",
	"idempotency_ttl_seconds": 300,
	"kafka_brokers":           "",
	"kafka_topic":             "bloodbank.events",
	"otel_endpoint":           "",
	"otel_auth_header":        "",
	"service_name":            "bloodbank-service",
	"jwt_secret":              "",
	"default_unit_location":   "main storage",
}

// Load reads an optional config.yaml from the given directories (default
// ./config), then lets environment variables such as APP_PORT override it.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	for k, d := range defaults {
		v.SetDefault(k, d)
		_ = v.BindEnv(k, strings.ToUpper(k))
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.IdempTTLSecs <= 0 {
		return errors.New("IDEMPOTENCY_TTL_SECONDS must be positive")
	}
	if c.Brokers() != nil && c.KafkaTopic == "" {
		return errors.New("missing KAFKA_TOPIC")
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		return c.PostgresDSN
	case "sqlite":
		return c.SQLitePath
	}
	return c.MySQLDSN()
}

// Brokers splits KAFKA_BROKERS; nil when none are configured.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (c *Config) Dev() bool { return c.AppEnv == "dev" }
