package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. TFCANDLE_STORAGE_ROOT.
const EnvPrefix = "TFCANDLE"

// Candle store backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendCSV    = "csv"
	BackendRedis  = "redis"
)

// Config represents the complete service configuration
type Config struct {
	Storage   Storage   `json:"storage" yaml:"storage" envconfig:"STORAGE"`
	Server    Server    `json:"server" yaml:"server" envconfig:"SERVER"`
	Aggregate Aggregate `json:"aggregate" yaml:"aggregate" envconfig:"AGGREGATE"`
	Log       Log       `json:"log" yaml:"log" envconfig:"LOG"`
}

// Storage configures where uploads and aggregated candles are kept.
// Root holds the raw uploads and, for the json backend, the candle files.
type Storage struct {
	Root    string `json:"root" yaml:"root" envconfig:"ROOT" validate:"required"`
	Backend string `json:"backend" yaml:"backend" envconfig:"BACKEND" validate:"oneof=json sqlite csv redis"`
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty" envconfig:"DB_PATH"`
	CSVPath string `json:"csv_path,omitempty" yaml:"csv_path,omitempty" envconfig:"CSV_PATH"`
	Redis   Redis  `json:"redis" yaml:"redis" envconfig:"REDIS"`
}

// Redis configures the redis candle backend.
type Redis struct {
	Addr      string        `json:"addr,omitempty" yaml:"addr,omitempty" envconfig:"ADDR"`
	Password  string        `json:"password,omitempty" yaml:"password,omitempty" envconfig:"PASSWORD"`
	DB        int           `json:"db" yaml:"db" envconfig:"DB" validate:"gte=0"`
	Namespace string        `json:"namespace,omitempty" yaml:"namespace,omitempty" envconfig:"NAMESPACE"`
	TTL       time.Duration `json:"ttl,omitempty" yaml:"ttl,omitempty" envconfig:"TTL" validate:"gte=0"`
}

// Server configures the HTTP upload endpoint.
type Server struct {
	Addr           string        `json:"addr" yaml:"addr" envconfig:"ADDR" validate:"required"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
	MaxUploadBytes int64         `json:"max_upload_bytes" yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
}

// Aggregate holds defaults for aggregation requests.
type Aggregate struct {
	DefaultTimeframe int `json:"default_timeframe" yaml:"default_timeframe" envconfig:"DEFAULT_TIMEFRAME" validate:"gte=1"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `json:"level" yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
}

// Load builds a Config from defaults, then the file at path if path is not
// empty, then TFCANDLE_* environment variables, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (JSON or YAML). Fields the
// file leaves out keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, c); err != nil {
		if jerr := json.Unmarshal(data, c); jerr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from TFCANDLE_* environment variables. Unset
// variables leave the current values alone.
func (c *Config) ApplyEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("load config from env: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			field := strings.TrimPrefix(fe.Namespace(), "Config.")
			if fe.Param() != "" {
				msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param()))
			} else {
				msgs = append(msgs, fmt.Sprintf("%s is %s", field, fe.Tag()))
			}
		}
		return errors.New(strings.Join(msgs, "; "))
	}

	switch c.Storage.Backend {
	case BackendSQLite:
		if c.Storage.DBPath == "" {
			return fmt.Errorf("storage.db_path required for sqlite backend")
		}
	case BackendCSV:
		if c.Storage.CSVPath == "" {
			return fmt.Errorf("storage.csv_path required for csv backend")
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr required for redis backend")
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Storage: Storage{
			Root:    "./media",
			Backend: BackendJSON,
			DBPath:  "./media/candles.sqlite",
			CSVPath: "./media/candles.csv",
			Redis: Redis{
				Addr:      "localhost:6379",
				Namespace: "candles",
			},
		},
		Server: Server{
			Addr:           ":8080",
			RequestTimeout: 30 * time.Second,
			MaxUploadBytes: 64 << 20,
		},
		Aggregate: Aggregate{
			DefaultTimeframe: 1,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
	}
}
