package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/dupscan/internal/domain/document"
)

// Config holds the dupscan configuration.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Detection DetectionConfig `yaml:"detection"`
	Store     StoreConfig     `yaml:"store"`
	Report    ReportConfig    `yaml:"report"`
	HTTP      HTTPConfig      `yaml:"http"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"` // default: determined by env
}

// DetectionConfig holds comparison settings.
type DetectionConfig struct {
	// Threshold is nil until defaults are applied so an explicit 0 survives.
	Threshold           *float64 `yaml:"threshold" validate:"required,gte=0,lte=100"`
	Workers             int      `yaml:"workers" validate:"gte=1,lte=1024"`
	TextField           string   `yaml:"text_field" validate:"oneof=raw normalized"`
	AutoJunk            bool     `yaml:"autojunk"`
	ProgressIntervalSec int      `yaml:"progress_interval_sec" validate:"gte=1"`
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	Driver           string                `yaml:"driver" validate:"oneof=redis valkey sqlite postgres mongo jsonfile"`
	Collection       string                `yaml:"collection" validate:"required"`
	Fields           document.FieldMapping `yaml:"fields"`
	Redis            RedisConfig           `yaml:"redis"`
	SQLite           SQLiteConfig          `yaml:"sqlite"`
	Postgres         PostgresConfig        `yaml:"postgres"`
	Mongo            MongoConfig           `yaml:"mongo"`
	JSONFile         JSONFileConfig        `yaml:"jsonfile"`
	ReadinessTimeout int                   `yaml:"readiness_timeout_sec" validate:"gte=1"`
}

// RedisConfig holds Redis/Valkey connection settings.
type RedisConfig struct {
	Addrs     []string `yaml:"addrs"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	DB        int      `yaml:"db" validate:"gte=0"`
	KeyPrefix string   `yaml:"key_prefix"`
}

// SQLiteConfig holds the SQLite database file.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig holds the PostgreSQL connection string.
type PostgresConfig struct {
	URL string `yaml:"url"`
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// JSONFileConfig holds the export directory.
type JSONFileConfig struct {
	Dir string `yaml:"dir"`
}

// ReportConfig holds report output settings.
type ReportConfig struct {
	Path   string `yaml:"path" validate:"required"`
	Format string `yaml:"format" validate:"omitempty,oneof=xlsx csv json"` // default: from path extension
	Sheet  string `yaml:"sheet"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port" validate:"gte=1,lte=65535"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	APIKeys         []string `yaml:"api_keys"` // empty disables auth on POST /v1/runs
}

// MetricsConfig holds Pushgateway settings. Empty URL disables pushing.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url" validate:"omitempty,url"`
	Job            string `yaml:"job"`
}

// Defaults.
const (
	DefaultThreshold  = 50.0
	DefaultWorkers    = 10
	DefaultReportPath = "similarities.xlsx"
)

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands env variables in data, decodes it and validates the result.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Detection.Threshold == nil {
		t := DefaultThreshold
		c.Detection.Threshold = &t
	}
	if c.Detection.Workers <= 0 {
		c.Detection.Workers = DefaultWorkers
	}
	if c.Detection.TextField == "" {
		c.Detection.TextField = string(document.Raw)
	}
	c.Detection.TextField = strings.ToLower(c.Detection.TextField)
	if c.Detection.ProgressIntervalSec <= 0 {
		c.Detection.ProgressIntervalSec = 10
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "redis"
	}
	c.Store.Fields = c.Store.Fields.WithDefaults()
	if c.Store.ReadinessTimeout <= 0 {
		c.Store.ReadinessTimeout = 10
	}
	if c.Store.Redis.KeyPrefix == "" {
		c.Store.Redis.KeyPrefix = "dupscan:"
	}
	if c.Store.Mongo.Database == "" {
		c.Store.Mongo.Database = "dupscan"
	}
	if c.Report.Path == "" {
		c.Report.Path = DefaultReportPath
	}
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// a synchronous run can take minutes on a large corpus
		c.HTTP.WriteTimeoutSec = 600
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = "dupscan"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			ns := strings.TrimPrefix(verrs[0].Namespace(), "Config.")
			return fmt.Errorf("%s: failed on %q", ns, verrs[0].Tag())
		}
		return err
	}

	switch c.Store.Driver {
	case "redis", "valkey":
		if len(c.Store.Redis.Addrs) == 0 {
			return fmt.Errorf("store.redis.addrs is required")
		}
	case "sqlite":
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("store.sqlite.path is required")
		}
	case "postgres":
		if c.Store.Postgres.URL == "" {
			return fmt.Errorf("store.postgres.url is required")
		}
	case "mongo":
		if c.Store.Mongo.URI == "" {
			return fmt.Errorf("store.mongo.uri is required")
		}
	case "jsonfile":
		if c.Store.JSONFile.Dir == "" {
			return fmt.Errorf("store.jsonfile.dir is required")
		}
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	// report yaml keys instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
