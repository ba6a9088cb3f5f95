package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	DispatchInline = "inline"
	DispatchKafka  = "kafka"
)

type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	GRPC          GRPCConfig          `yaml:"grpc"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Booking       BookingConfig       `yaml:"booking"`
	Payment       PaymentConfig       `yaml:"payment"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Migrate  bool   `yaml:"migrate"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	FlightsCacheTTL int `yaml:"flights_cache_ttl_seconds"`
	FlightLockTTL   int `yaml:"flight_lock_ttl_seconds"`
}

// PaymentConfig controls the simulated gateway round-trip. Zero delays make
// every strategy answer immediately.
type PaymentConfig struct {
	ValidationDelayMS    int `yaml:"validation_delay_ms"`
	AuthorizationDelayMS int `yaml:"authorization_delay_ms"`
}

type NotificationsConfig struct {
	Dispatch string `yaml:"dispatch"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the values used for keys missing from the file.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{Address: ":8080"},
		GRPC: GRPCConfig{Address: ":9090"},
		Database: DatabaseConfig{
			Driver:  DriverPostgres,
			Port:    5432,
			SSLMode: "disable",
		},
		Kafka: KafkaConfig{
			BookingTopic:       "booking-events",
			NotificationsTopic: "notifications",
			GroupID:            "flightreservation-worker",
		},
		Booking: BookingConfig{
			FlightsCacheTTL: 30,
			FlightLockTTL:   5,
		},
		Notifications: NotificationsConfig{Dispatch: DispatchInline},
		Logging:       LoggingConfig{Level: "info", Format: "text"},
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	switch c.Notifications.Dispatch {
	case DispatchInline:
	case DispatchKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("notifications dispatch %q requires kafka brokers", DispatchKafka)
		}
	default:
		return fmt.Errorf("unknown notifications dispatch %q", c.Notifications.Dispatch)
	}

	if c.Payment.ValidationDelayMS < 0 || c.Payment.AuthorizationDelayMS < 0 {
		return fmt.Errorf("payment delays must not be negative")
	}
	return nil
}

// applyEnv lets secrets and broker lists come from the environment instead of the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
}
