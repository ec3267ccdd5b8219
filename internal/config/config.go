package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/interpretlab/internal/domain/lifecycle"
	"github.com/bryanwahyu/interpretlab/internal/middleware"
)

type Config struct {
	Server struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"readTimeout"`
		WriteTimeout    time.Duration `yaml:"writeTimeout"`
		IdleTimeout     time.Duration `yaml:"idleTimeout"`
		ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
		CORSOrigins     []string      `yaml:"corsOrigins"`
		// TrustedProxies lists IPs/CIDRs allowed to set X-Forwarded-For.
		TrustedProxies []string `yaml:"trustedProxies"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // memory | sqlite | mysql | postgres
		DSN      string `yaml:"dsn"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		Path     string `yaml:"path"` // sqlite file
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Storage struct {
		Driver    string `yaml:"driver"` // fs | minio | s3
		Root      string `yaml:"root"`
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"accessKey"`
		SecretKey string `yaml:"secretKey"`
		Bucket    string `yaml:"bucketName"`
		Region    string `yaml:"region"`
		UseSSL    bool   `yaml:"useSSL"`
		PathStyle bool   `yaml:"pathStyle"`
	} `yaml:"storage"`

	Lifecycle struct {
		Mode string `yaml:"mode"`
	} `yaml:"lifecycle"`

	Auth struct {
		// APIKeys maps client name to key; empty disables auth.
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillPerSecond"`
	} `yaml:"rate_limit"`

	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`

	OpenAI struct {
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`

	Workers struct {
		Count int `yaml:"count"`
		Queue int `yaml:"queue"`
	} `yaml:"workers"`

	Debug bool `yaml:"debug"`
}

// Default returns a config that runs on one machine with no external services.
func Default() *Config {
	var c Config
	c.Server.Host = "0.0.0.0"
	c.Server.Port = 8080
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 60 * time.Second
	c.Server.IdleTimeout = 60 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Server.CORSOrigins = []string{"*"}
	c.Database.Driver = "sqlite"
	c.Database.Path = "data/interpretlab.db"
	c.Database.SSLMode = "disable"
	c.Storage.Driver = "fs"
	c.Storage.Root = "data/artifacts"
	c.Storage.Region = "us-east-1"
	c.Lifecycle.Mode = string(lifecycle.ModePermissive)
	c.RateLimit.Capacity = 100
	c.RateLimit.RefillRate = 10
	c.Kafka.Topic = "interpretlab.events"
	c.OpenAI.Model = "o3-2025-04-16"
	c.Workers.Count = 2
	c.Workers.Queue = 64
	return &c
}

// Load baca file config.yaml di atas Default, lalu override dari env.
// File yang tidak ada hanya error kalau required.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !required:
	default:
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("INTERPRETLAB_DB_DRIVER"); ok && v != "" {
		c.Database.Driver = v
	}
	if v, ok := lookup("INTERPRETLAB_DB_DSN"); ok && v != "" {
		c.Database.DSN = v
	}
	if v, ok := lookup("INTERPRETLAB_SERVER_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("INTERPRETLAB_SERVER_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("OPENAI_API_KEY"); ok && v != "" {
		c.OpenAI.APIKey = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case "memory":
	case "sqlite":
		if c.Database.DSN == "" && c.Database.Path == "" {
			return errors.New("database.path is required for sqlite")
		}
	case "mysql", "postgres":
		if c.Database.DSN == "" && c.Database.Host == "" {
			return fmt.Errorf("database.dsn or database.host is required for %s", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unknown database.driver %q (memory, sqlite, mysql, postgres)", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case "fs":
		if c.Storage.Root == "" {
			return errors.New("storage.root is required for fs")
		}
	case "minio", "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucketName is required for %s", c.Storage.Driver)
		}
		if c.Storage.Driver == "minio" && c.Storage.Endpoint == "" {
			return errors.New("storage.endpoint is required for minio")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q (fs, minio, s3)", c.Storage.Driver)
	}
	if _, err := lifecycle.ForMode(lifecycle.Mode(c.Lifecycle.Mode)); err != nil {
		return err
	}
	if _, err := middleware.ParseTrustedProxies(c.Server.TrustedProxies); err != nil {
		return fmt.Errorf("server.trustedProxies: %w", err)
	}
	if c.RateLimit.Capacity < 0 || c.RateLimit.RefillRate < 0 {
		return errors.New("rate_limit values must not be negative")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("kafka.topic is required when brokers are set")
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	mc := mysql.NewConfig()
	mc.User = c.Database.User
	mc.Passwd = c.Database.Password
	mc.Net = "tcp"
	port := c.Database.Port
	if port == 0 {
		port = 3306
	}
	mc.Addr = net.JoinHostPort(c.Database.Host, strconv.Itoa(port))
	mc.DBName = c.Database.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.MultiStatements = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// PostgresDSN builds a lib/pq URL from the discrete fields.
func (c *Config) PostgresDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	port := c.Database.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		c.Database.User, c.Database.Password,
		net.JoinHostPort(c.Database.Host, strconv.Itoa(port)),
		c.Database.Name, c.Database.SSLMode)
}

// SQLitePath returns the DSN when given, else the database file path.
func (c *Config) SQLitePath() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	return c.Database.Path
}

// Addr is host:port for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(strings.TrimSpace(c.Server.Host), strconv.Itoa(c.Server.Port))
}
