package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Routing  RoutingConfig  `yaml:"routing"`
	Matching MatchingConfig `yaml:"matching"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Auth     AuthConfig     `yaml:"auth"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address         string        `yaml:"address"`
	SwaggerDir      string        `yaml:"swagger_dir"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
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

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type StorageConfig struct {
	Driver string `yaml:"driver"`
}

type RedisConfig struct {
	Addr            string `yaml:"addr"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	RouteTTLSeconds int    `yaml:"route_ttl_seconds"`
}

func (r RedisConfig) RouteTTL() time.Duration {
	return time.Duration(r.RouteTTLSeconds) * time.Second
}

type KafkaConfig struct {
	Brokers     []string `yaml:"brokers"`
	EventsTopic string   `yaml:"events_topic"`
	GroupID     string   `yaml:"group_id"`
}

// Enabled reports whether events go through Kafka rather than being
// dispatched in process.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

const (
	ProviderOSRM   = "osrm"
	ProviderGoogle = "google"
)

type RoutingConfig struct {
	Provider     string        `yaml:"provider"`
	OSRMEndpoint string        `yaml:"osrm_endpoint"`
	GoogleAPIKey string        `yaml:"google_api_key"`
	Timeout      time.Duration `yaml:"timeout"`
}

type MatchingConfig struct {
	Precision      uint    `yaml:"precision"`
	WindowHours    float64 `yaml:"window_hours"`
	AdmitThreshold float64 `yaml:"admit_threshold"`
	SpatialWeight  float64 `yaml:"spatial_weight"`
	TimeWeight     float64 `yaml:"time_weight"`
	SeatWeight     float64 `yaml:"seat_weight"`
	TimeDecayHours float64 `yaml:"time_decay_hours"`
}

func (m MatchingConfig) Window() time.Duration {
	return time.Duration(m.WindowHours * float64(time.Hour))
}

type LedgerConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type WorkerConfig struct {
	Address string `yaml:"address"`
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
	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("CARPOOL_DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := getenv("CARPOOL_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := getenv("CARPOOL_GOOGLE_API_KEY"); v != "" {
		c.Routing.GoogleAPIKey = v
	}
	if v := getenv("CARPOOL_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("CARPOOL_KAFKA_BROKERS"); v != "" {
		brokers := make([]string, 0)
		for _, b := range strings.Split(v, ",") {
			if s := strings.TrimSpace(b); s != "" {
				brokers = append(brokers, s)
			}
		}
		c.Kafka.Brokers = brokers
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 10 * time.Second
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 5 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StoragePostgres
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Redis.RouteTTLSeconds == 0 {
		c.Redis.RouteTTLSeconds = 3600
	}
	if c.Kafka.EventsTopic == "" {
		c.Kafka.EventsTopic = "ride-events"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "carpool-notifications"
	}
	if c.Routing.Provider == "" {
		c.Routing.Provider = ProviderOSRM
	}
	if c.Routing.OSRMEndpoint == "" {
		c.Routing.OSRMEndpoint = "https://router.project-osrm.org"
	}
	if c.Routing.Timeout == 0 {
		c.Routing.Timeout = 5 * time.Second
	}
	if c.Matching.Precision == 0 {
		c.Matching.Precision = 6
	}
	if c.Matching.WindowHours == 0 {
		c.Matching.WindowHours = 2
	}
	if c.Matching.AdmitThreshold == 0 {
		c.Matching.AdmitThreshold = 0.15
	}
	if c.Matching.SpatialWeight == 0 && c.Matching.TimeWeight == 0 && c.Matching.SeatWeight == 0 {
		c.Matching.SpatialWeight, c.Matching.TimeWeight, c.Matching.SeatWeight = 0.5, 0.3, 0.1
	}
	if c.Matching.TimeDecayHours == 0 {
		c.Matching.TimeDecayHours = 4
	}
	if c.Ledger.MaxAttempts == 0 {
		c.Ledger.MaxAttempts = 3
	}
	if c.Ledger.BaseDelay == 0 {
		c.Ledger.BaseDelay = 50 * time.Millisecond
	}
	if c.Worker.Address == "" {
		c.Worker.Address = ":8081"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case StoragePostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("database.host and database.name are required for postgres storage"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver))
	}
	switch c.Routing.Provider {
	case ProviderOSRM:
	case ProviderGoogle:
		if c.Routing.GoogleAPIKey == "" {
			errs = append(errs, errors.New("routing.google_api_key is required for the google provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("routing.provider %q is not supported", c.Routing.Provider))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	m := c.Matching
	if m.SpatialWeight < m.TimeWeight || m.SpatialWeight < m.SeatWeight {
		errs = append(errs, errors.New("matching.spatial_weight must be the largest weight"))
	}
	if m.AdmitThreshold < 0 || m.AdmitThreshold >= 1 {
		errs = append(errs, errors.New("matching.admit_threshold must be in [0, 1)"))
	}
	if c.Kafka.Enabled() && c.Kafka.EventsTopic == "" {
		errs = append(errs, errors.New("kafka.events_topic is required when brokers are set"))
	}
	return errors.Join(errs...)
}
