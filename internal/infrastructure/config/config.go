package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/giapha/core/internal/treeview"
)

// Storage drivers accepted by storage.driver.
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
	DriverRedis    = "redis"
)

// DefaultCloudLink is the shared document the site syncs from until an admin
// configures another one.
const DefaultCloudLink = "https://docs.google.com/document/d/17fVZaOxx8s-gS3tFE3nj1fdmSJdYWw0mi_ar45TUoQw/edit?usp=sharing"

const defaultJWTSecret = "giapha-dev-secret-change-me"

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Admin    AdminConfig    `mapstructure:"admin"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Tree     TreeConfig     `mapstructure:"tree"`
	Views    ViewsConfig    `mapstructure:"views"`

	settings map[string]interface{}
	source   string
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// StorageConfig selects where the site blob lives.
type StorageConfig struct {
	Driver     string `mapstructure:"driver"`
	Path       string `mapstructure:"path"`
	SQLitePath string `mapstructure:"sqlite_path"`
	DataKey    string `mapstructure:"data_key"`
	LinkKey    string `mapstructure:"link_key"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// S3Config holds the S3 blob driver settings.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	Prefix          string `mapstructure:"prefix"`
	PathStyle       bool   `mapstructure:"path_style"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// RedisConfig holds the redis blob driver settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// RemoteConfig holds the shared-document sync settings.
type RemoteConfig struct {
	URL          string        `mapstructure:"url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	AutoSync     bool          `mapstructure:"auto_sync"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	UserAgent    string        `mapstructure:"user_agent"`
}

// AdminConfig holds the content-lock password. It is a plain string or a
// bcrypt hash.
type AdminConfig struct {
	Password string `mapstructure:"password"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	ExpiresIn time.Duration `mapstructure:"expires_in"`
	Issuer    string        `mapstructure:"issuer"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
	RateLimitRequests  int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// TreeConfig tunes the tree view.
type TreeConfig struct {
	MinScale          float64       `mapstructure:"min_scale"`
	MaxScale          float64       `mapstructure:"max_scale"`
	WheelStep         float64       `mapstructure:"wheel_step"`
	ButtonStep        float64       `mapstructure:"button_step"`
	ResetScaleWide    float64       `mapstructure:"reset_scale_wide"`
	ResetScaleNarrow  float64       `mapstructure:"reset_scale_narrow"`
	NarrowWidth       float64       `mapstructure:"narrow_width"`
	CompactGeneration int           `mapstructure:"compact_generation"`
	PixelRatio        float64       `mapstructure:"pixel_ratio"`
	Background        string        `mapstructure:"background"`
	FrameInterval     time.Duration `mapstructure:"frame_interval"`
}

// ViewsConfig bounds the server-side view sessions.
type ViewsConfig struct {
	MaxSessions int           `mapstructure:"max_sessions"`
	TTL         time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from .env, the environment and an optional YAML
// file named by GIAPHA_CONFIG or ./giapha.yaml.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path. An empty path falls
// back to GIAPHA_CONFIG and then ./giapha.yaml.
func LoadFile(path string) (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvVars(v)

	source, err := readConfigFile(v, path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.settings = v.AllSettings()
	cfg.source = source

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func readConfigFile(v *viper.Viper, path string) (string, error) {
	explicit := path != ""
	if path == "" {
		path = os.Getenv("GIAPHA_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = "giapha.yaml"
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return "", fmt.Errorf("config file %s: %w", path, err)
		}
		return "", nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return path, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Gia Phả Họ Lê")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)

	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "45s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.filename", "giapha.log")

	// Storage defaults
	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.sqlite_path", "./data/giapha.db")
	v.SetDefault("storage.data_key", "giapha_le_data")
	v.SetDefault("storage.link_key", "cloud_data_link")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "giapha")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.conn_max_idle_time", "30s")

	// S3 defaults
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.prefix", "giapha/")
	v.SetDefault("s3.path_style", false)
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "giapha:")

	// Remote defaults
	v.SetDefault("remote.url", DefaultCloudLink)
	v.SetDefault("remote.timeout", "15s")
	v.SetDefault("remote.auto_sync", true)
	v.SetDefault("remote.max_body_bytes", 8<<20)
	v.SetDefault("remote.user_agent", "giapha-sync/1.0")

	// Admin defaults
	v.SetDefault("admin.password", "admin123")

	// JWT defaults
	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.expires_in", "12h")
	v.SetDefault("jwt.issuer", "giapha-api")

	// Security defaults
	v.SetDefault("security.cors_allowed_origins", "*")
	v.SetDefault("security.rate_limit_requests", 120)
	v.SetDefault("security.rate_limit_window", "1m")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Tree view defaults
	d := treeview.DefaultOptions()
	v.SetDefault("tree.min_scale", d.MinScale)
	v.SetDefault("tree.max_scale", d.MaxScale)
	v.SetDefault("tree.wheel_step", d.WheelStep)
	v.SetDefault("tree.button_step", d.ButtonStep)
	v.SetDefault("tree.reset_scale_wide", d.ResetScaleWide)
	v.SetDefault("tree.reset_scale_narrow", d.ResetScaleNarrow)
	v.SetDefault("tree.narrow_width", d.NarrowWidth)
	v.SetDefault("tree.compact_generation", d.CompactGeneration)
	v.SetDefault("tree.pixel_ratio", d.PixelRatio)
	v.SetDefault("tree.background", d.Background)
	v.SetDefault("tree.frame_interval", "16ms")

	// View session defaults
	v.SetDefault("views.max_sessions", 256)
	v.SetDefault("views.ttl", "30m")
}

func bindEnvVars(v *viper.Viper) {
	binds := [][2]string{
		// App
		{"app.name", "APP_NAME"},
		{"app.version", "APP_VERSION"},
		{"app.environment", "APP_ENVIRONMENT"},
		{"app.debug", "APP_DEBUG"},

		// Server
		{"server.port", "SERVER_PORT"},
		{"server.host", "SERVER_HOST"},
		{"server.read_timeout", "SERVER_READ_TIMEOUT"},
		{"server.write_timeout", "SERVER_WRITE_TIMEOUT"},
		{"server.idle_timeout", "SERVER_IDLE_TIMEOUT"},
		{"server.request_timeout", "SERVER_REQUEST_TIMEOUT"},
		{"server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT"},

		// Logger
		{"logger.level", "LOG_LEVEL"},
		{"logger.format", "LOG_FORMAT"},
		{"logger.output", "LOG_OUTPUT"},
		{"logger.filename", "LOG_FILENAME"},

		// Storage
		{"storage.driver", "STORAGE_DRIVER"},
		{"storage.path", "STORAGE_PATH"},
		{"storage.sqlite_path", "STORAGE_SQLITE_PATH"},
		{"storage.data_key", "STORAGE_DATA_KEY"},
		{"storage.link_key", "STORAGE_LINK_KEY"},

		// Database
		{"database.host", "DB_HOST"},
		{"database.port", "DB_PORT"},
		{"database.name", "DB_NAME"},
		{"database.user", "DB_USER"},
		{"database.password", "DB_PASSWORD"},
		{"database.ssl_mode", "DB_SSL_MODE"},
		{"database.max_open_conns", "DB_MAX_OPEN_CONNS"},
		{"database.max_idle_conns", "DB_MAX_IDLE_CONNS"},
		{"database.conn_max_lifetime", "DB_CONN_MAX_LIFETIME"},
		{"database.conn_max_idle_time", "DB_CONN_MAX_IDLE_TIME"},

		// S3
		{"s3.bucket", "S3_BUCKET"},
		{"s3.region", "S3_REGION"},
		{"s3.endpoint", "S3_ENDPOINT"},
		{"s3.prefix", "S3_PREFIX"},
		{"s3.path_style", "S3_PATH_STYLE"},
		{"s3.access_key_id", "AWS_ACCESS_KEY_ID"},
		{"s3.secret_access_key", "AWS_SECRET_ACCESS_KEY"},

		// Redis
		{"redis.host", "REDIS_HOST"},
		{"redis.port", "REDIS_PORT"},
		{"redis.password", "REDIS_PASSWORD"},
		{"redis.db", "REDIS_DB"},
		{"redis.prefix", "REDIS_PREFIX"},

		// Remote
		{"remote.url", "REMOTE_URL"},
		{"remote.timeout", "REMOTE_TIMEOUT"},
		{"remote.auto_sync", "REMOTE_AUTO_SYNC"},
		{"remote.max_body_bytes", "REMOTE_MAX_BODY_BYTES"},
		{"remote.user_agent", "REMOTE_USER_AGENT"},

		// Admin
		{"admin.password", "ADMIN_PASSWORD"},

		// JWT
		{"jwt.secret", "JWT_SECRET"},
		{"jwt.expires_in", "JWT_EXPIRES_IN"},
		{"jwt.issuer", "JWT_ISSUER"},

		// Security
		{"security.cors_allowed_origins", "CORS_ALLOWED_ORIGINS"},
		{"security.rate_limit_requests", "RATE_LIMIT_REQUESTS"},
		{"security.rate_limit_window", "RATE_LIMIT_WINDOW"},

		// Metrics
		{"metrics.enabled", "ENABLE_METRICS"},
		{"metrics.path", "METRICS_PATH"},

		// Tree
		{"tree.min_scale", "TREE_MIN_SCALE"},
		{"tree.max_scale", "TREE_MAX_SCALE"},
		{"tree.compact_generation", "TREE_COMPACT_GENERATION"},
		{"tree.pixel_ratio", "TREE_PIXEL_RATIO"},
		{"tree.background", "TREE_BACKGROUND"},
		{"tree.frame_interval", "TREE_FRAME_INTERVAL"},

		// Views
		{"views.max_sessions", "VIEWS_MAX_SESSIONS"},
		{"views.ttl", "VIEWS_TTL"},
	}
	for _, b := range binds {
		_ = v.BindEnv(b[0], b[1])
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	switch cfg.Storage.Driver {
	case DriverFile, DriverMemory, DriverSQLite:
	case DriverPostgres:
		if cfg.Database.Host == "" || cfg.Database.Name == "" {
			return fmt.Errorf("database host and name are required for the postgres storage driver")
		}
	case DriverS3:
		if cfg.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required for the s3 storage driver")
		}
	case DriverRedis:
		if cfg.Redis.Host == "" {
			return fmt.Errorf("redis host is required for the redis storage driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Storage.DataKey == "" || cfg.Storage.LinkKey == "" {
		return errors.New("storage keys must not be empty")
	}

	if strings.TrimSpace(cfg.Admin.Password) == "" {
		return errors.New("admin password must be set")
	}

	if cfg.JWT.Secret == "" {
		return errors.New("JWT secret must be set")
	}
	if cfg.App.IsProduction() && cfg.JWT.Secret == defaultJWTSecret {
		return errors.New("JWT secret should not use the default value in production")
	}

	if cfg.Tree.MinScale <= 0 || cfg.Tree.MinScale >= cfg.Tree.MaxScale {
		return fmt.Errorf("tree scale range [%g, %g] is invalid", cfg.Tree.MinScale, cfg.Tree.MaxScale)
	}

	return nil
}

// GetDSN returns the database connection string
func (cfg *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

// GetURL returns the database URL used by migrations.
func (cfg *DatabaseConfig) GetURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode)
}

// GetAddr returns the redis address
func (cfg *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}

// IsProduction returns true if the environment is production
func (cfg *AppConfig) IsProduction() bool {
	return cfg.Environment == "production"
}

// Options converts the tree settings to view options.
func (cfg TreeConfig) Options() treeview.Options {
	return treeview.Options{
		MinScale:          cfg.MinScale,
		MaxScale:          cfg.MaxScale,
		WheelStep:         cfg.WheelStep,
		ButtonStep:        cfg.ButtonStep,
		ResetScaleWide:    cfg.ResetScaleWide,
		ResetScaleNarrow:  cfg.ResetScaleNarrow,
		NarrowWidth:       cfg.NarrowWidth,
		CompactGeneration: cfg.CompactGeneration,
		PixelRatio:        cfg.PixelRatio,
		Background:        cfg.Background,
		FrameInterval:     cfg.FrameInterval,
	}
}

// Source is the config file that was merged, or "" when none was found.
func (cfg *Config) Source() string {
	return cfg.source
}

var secretKeys = map[string]bool{
	"password":          true,
	"secret":            true,
	"secret_access_key": true,
	"access_key_id":     true,
}

// Redacted returns the effective settings with secrets masked.
func (cfg *Config) Redacted() map[string]interface{} {
	return redact(cfg.settings)
}

func redact(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, val := range in {
		switch tv := val.(type) {
		case map[string]interface{}:
			out[k] = redact(tv)
		default:
			if secretKeys[k] {
				if s, ok := val.(string); ok && s == "" {
					out[k] = ""
					continue
				}
				out[k] = "********"
				continue
			}
			out[k] = val
		}
	}
	return out
}
