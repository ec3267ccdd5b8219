package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	p := write(t, `
server:
  port: 9090
  readTimeout: 5s
  trustedProxies: [10.0.0.0/8, 172.16.0.1]
database:
  driver: mysql
  host: db.internal
  user: lab
  password: secret
  name: catalog
storage:
  driver: minio
  endpoint: minio:9000
  bucketName: artifacts
lifecycle:
  mode: strict
auth:
  apiKeys:
    ci: ci-key-0123456789
kafka:
  brokers: [kafka:9092]
`)
	cfg, err := Load(p, true)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.1"}, cfg.Server.TrustedProxies)
	assert.Equal(t, "strict", cfg.Lifecycle.Mode)
	assert.Equal(t, "interpretlab.events", cfg.Kafka.Topic)
	assert.Equal(t, map[string]string{"ci": "ci-key-0123456789"}, cfg.Auth.APIKeys)

	dsn := cfg.MySQLDSN()
	assert.True(t, strings.HasPrefix(dsn, "lab:secret@tcp(db.internal:3306)/catalog?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "multiStatements=true")
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := Load(missing, false)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "fs", cfg.Storage.Driver)

	_, err = Load(missing, true)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"INTERPRETLAB_DB_DRIVER":   "postgres",
		"INTERPRETLAB_DB_DSN":      "postgres://u:p@pg/lab?sslmode=disable",
		"INTERPRETLAB_SERVER_PORT": "7000",
		"OPENAI_API_KEY":           "sk-test",
	}
	cfg := Default()
	require.NoError(t, cfg.applyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok }))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@pg/lab?sslmode=disable", cfg.PostgresDSN())
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)

	env["INTERPRETLAB_SERVER_PORT"] = "abc"
	assert.Error(t, Default().applyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok }))
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"port":          func(c *Config) { c.Server.Port = 0 },
		"db driver":     func(c *Config) { c.Database.Driver = "oracle" },
		"mysql no host": func(c *Config) { c.Database.Driver = "mysql" },
		"storage":       func(c *Config) { c.Storage.Driver = "ftp" },
		"s3 bucket":     func(c *Config) { c.Storage.Driver = "s3" },
		"minio endpoint": func(c *Config) {
			c.Storage.Driver = "minio"
			c.Storage.Bucket = "b"
		},
		"mode":       func(c *Config) { c.Lifecycle.Mode = "chaotic" },
		"rate limit": func(c *Config) { c.RateLimit.Capacity = -1 },
		"proxies":    func(c *Config) { c.Server.TrustedProxies = []string{"proxy.local"} },
		"kafka":      func(c *Config) { c.Kafka.Brokers = []string{"k:9092"}; c.Kafka.Topic = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestPostgresDSNFromFields(t *testing.T) {
	c := Default()
	c.Database.Host = "pg"
	c.Database.User = "lab"
	c.Database.Password = "pw"
	c.Database.Name = "catalog"
	assert.Equal(t, "postgres://lab:pw@pg:5432/catalog?sslmode=disable", c.PostgresDSN())
	assert.Equal(t, "0.0.0.0:8080", c.Addr())
}
