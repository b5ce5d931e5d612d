package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

var ErrUnknownStore = errors.New("unknown registry store")

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Registry RegistryConfig `yaml:"registry"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
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
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	FlightEventsTopic string   `yaml:"flight_events_topic"`
	GroupID           string   `yaml:"group_id"`
}

// Enabled reports whether flight events should be published at all.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.FlightEventsTopic != ""
}

type RegistryConfig struct {
	Store    string `yaml:"store"`
	DataPath string `yaml:"data_path"`
	RedisKey string `yaml:"redis_key"`
	AutoSave bool   `yaml:"autosave"`
	// LoadOnStart fills the registry from the store before serving.
	LoadOnStart bool   `yaml:"load_on_start"`
	Location    string `yaml:"location"`
}

// TimeLocation resolves Location, falling back to the local zone.
func (r RegistryConfig) TimeLocation() (*time.Location, error) {
	if r.Location == "" || r.Location == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(r.Location)
	if err != nil {
		return nil, fmt.Errorf("registry location: %w", err)
	}
	return loc, nil
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Registry.Store == "" {
		c.Registry.Store = StoreFile
	}
	if c.Registry.Store == StoreFile && c.Registry.DataPath == "" {
		c.Registry.DataPath = "flights_data.json"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "flight-events-worker"
	}
}

func (c *Config) validate() error {
	switch c.Registry.Store {
	case StoreFile, StoreRedis, StorePostgres:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.Registry.Store)
	}
	if _, err := c.Registry.TimeLocation(); err != nil {
		return err
	}
	return nil
}
