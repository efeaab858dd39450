package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Mayur-HT/Snapshot/pkg/logger"
)

type Config struct {
	DB      DBConfig      `toml:"database"`
	Storage StorageConfig `toml:"storage"`
	MinIO   MinIOConfig   `toml:"minio"`
	JWT     JWTConfig     `toml:"jwt"`
	Server  ServerConfig  `toml:"server"`
	Invite  InviteConfig  `toml:"invite"`
	Audit   AuditConfig   `toml:"audit"`
}

type DBConfig struct {
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	SSLMode  string `toml:"sslmode"`
	Path     string `toml:"path"`
}

type StorageConfig struct {
	Driver    string `toml:"driver"`
	UploadDir string `toml:"upload_dir"`
}

type MinIOConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

type JWTConfig struct {
	Secret          string `toml:"secret"`
	ExpirationHours int    `toml:"expiration_hours"`
}

type ServerConfig struct {
	Port        string `toml:"port"`
	FrontendURL string `toml:"frontend_url"`
}

type InviteConfig struct {
	Expiry duration `toml:"expiry"`
}

type AuditConfig struct {
	ExportInterval duration `toml:"export_interval"`
}

// duration lets TOML files spell durations as strings ("168h").
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageLocal = "local"
	StorageMinIO = "minio"
)

func defaults() *Config {
	return &Config{
		DB: DBConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     "5432",
			User:     "snapshot",
			Password: "snapshot_secret",
			Name:     "snapshot",
			SSLMode:  "disable",
			Path:     "snapshot.db",
		},
		Storage: StorageConfig{
			Driver:    StorageLocal,
			UploadDir: "uploads",
		},
		MinIO: MinIOConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "snapshot",
			SecretKey: "snapshot_secret",
			Bucket:    "snapshot",
		},
		JWT: JWTConfig{
			Secret:          "change-me-in-production",
			ExpirationHours: 168,
		},
		Server: ServerConfig{
			Port:        "3001",
			FrontendURL: "http://localhost:3000",
		},
		Invite: InviteConfig{Expiry: duration{7 * 24 * time.Hour}},
		Audit:  AuditConfig{ExportInterval: duration{time.Hour}},
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// CONFIG_FILE if any, then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.DB = DBConfig{
		Driver:   strings.ToLower(getEnv("DB_DRIVER", cfg.DB.Driver)),
		Host:     getEnv("DB_HOST", cfg.DB.Host),
		Port:     getEnv("DB_PORT", cfg.DB.Port),
		User:     getEnv("DB_USER", cfg.DB.User),
		Password: getEnv("DB_PASSWORD", cfg.DB.Password),
		Name:     getEnv("DB_NAME", cfg.DB.Name),
		SSLMode:  getEnv("DB_SSLMODE", cfg.DB.SSLMode),
		Path:     getEnv("DB_PATH", cfg.DB.Path),
	}
	cfg.Storage = StorageConfig{
		Driver:    strings.ToLower(getEnv("STORAGE_DRIVER", cfg.Storage.Driver)),
		UploadDir: getEnv("UPLOAD_DIR", cfg.Storage.UploadDir),
	}
	cfg.MinIO = MinIOConfig{
		Endpoint:  getEnv("MINIO_ENDPOINT", cfg.MinIO.Endpoint),
		AccessKey: getEnv("MINIO_ACCESS_KEY", cfg.MinIO.AccessKey),
		SecretKey: getEnv("MINIO_SECRET_KEY", cfg.MinIO.SecretKey),
		Bucket:    getEnv("MINIO_BUCKET", cfg.MinIO.Bucket),
		UseSSL:    getEnvAsBool("MINIO_USE_SSL", cfg.MinIO.UseSSL),
	}
	cfg.JWT = JWTConfig{
		Secret:          getEnv("JWT_SECRET", cfg.JWT.Secret),
		ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", cfg.JWT.ExpirationHours),
	}
	cfg.Server = ServerConfig{
		Port:        getEnv("SERVER_PORT", cfg.Server.Port),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", cfg.Server.FrontendURL), "/"),
	}
	cfg.Invite.Expiry.Duration = getEnvAsDuration("INVITE_EXPIRY", cfg.Invite.Expiry.Duration)
	cfg.Audit.ExportInterval.Duration = getEnvAsDuration("AUDIT_EXPORT_INTERVAL", cfg.Audit.ExportInterval.Duration)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		logger.Warn("config_undecoded_keys", map[string]interface{}{
			"path": path,
			"keys": keys,
		})
	}
	return nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	switch c.Storage.Driver {
	case StorageLocal, StorageMinIO:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Invite.Expiry.Duration <= 0 {
		return fmt.Errorf("invite expiry must be positive")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	return nil
}

// InviteExpiry is the lifetime of a freshly issued invite.
func (c *Config) InviteExpiry() time.Duration {
	return c.Invite.Expiry.Duration
}

func (c *Config) AuditExportInterval() time.Duration {
	return c.Audit.ExportInterval.Duration
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
