package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/doodlesbykumbi/ownership-manager/pkg/vault"
)

const (
	DefaultConfigPath = "/etc/ownership/config"
	ConfigFileName    = "ownership.yml"
	DefaultDotenvPath = ".env"

	SourceDefault     = "default"
	SourceFile        = "file"
	SourceDotenv      = "dotenv"
	SourceEnvironment = "environment"
)

// ConfigurationError lists every problem found by Validate.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return "configuration errors:\n- " + strings.Join(e.Problems, "\n- ")
}

// Config holds all ownership manager settings
type Config struct {
	// DatabaseURL is the Postgres connection string
	DatabaseURL string `yaml:"database_url" json:"database_url"`

	// EncryptionKey is the base64 AES-256 key used for tenant credentials
	EncryptionKey string `yaml:"encryption_key" json:"-"`

	// RequestTimeout bounds each repository call, in seconds
	RequestTimeout int `yaml:"request_timeout" json:"request_timeout"`

	// SyncConcurrency is the number of tenants synced at once in a batch
	SyncConcurrency int `yaml:"sync_concurrency" json:"sync_concurrency"`

	// AuditListLimit is the default number of audit entries returned
	AuditListLimit int `yaml:"audit_list_limit" json:"audit_list_limit"`

	LogLevel    string `yaml:"log_level" json:"log_level"`
	Environment string `yaml:"environment" json:"environment"`

	// DefaultUserDirectory and DefaultUserID are the service identity
	// used for tenants registered without one
	DefaultUserDirectory string `yaml:"default_user_directory" json:"default_user_directory"`
	DefaultUserID        string `yaml:"default_user_id" json:"default_user_id"`

	// sources tracks where each value came from
	sources map[string]string

	configFilePath string

	// missing is set for POSTGRES_* settings a composed URL lacks
	missing []string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

func newDefault() *Config {
	return &Config{
		RequestTimeout:       30,
		SyncConcurrency:      4,
		AuditListLimit:       100,
		LogLevel:             "info",
		Environment:          "development",
		DefaultUserDirectory: "INTERNAL",
		DefaultUserID:        "sa_api",
		sources:              make(map[string]string),
	}
}

// Load builds the configuration from defaults, the YAML config file, a
// .env file and the process environment, in increasing precedence.
func Load() (*Config, error) {
	config := newDefault()
	for _, name := range attributeNames() {
		config.sources[name] = SourceDefault
	}

	configPath := os.Getenv("OWNERSHIP_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	dotenvPath := os.Getenv("OWNERSHIP_DOTENV_PATH")
	if dotenvPath == "" {
		dotenvPath = DefaultDotenvPath
	}
	dotenv, err := godotenv.Read(dotenvPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to parse %s: %w", dotenvPath, err)
	}

	config.applyEnvConfig(newEnv(dotenv))
	return config, nil
}

func attributeNames() []string {
	return []string{
		"database_url", "encryption_key", "request_timeout",
		"sync_concurrency", "audit_list_limit", "log_level", "environment",
		"default_user_directory", "default_user_id",
	}
}

func (c *Config) applyFileConfig(file *Config) {
	setString := func(name string, dst *string, v string) {
		if v != "" {
			*dst = v
			c.sources[name] = SourceFile
		}
	}
	setInt := func(name string, dst *int, v int) {
		if v != 0 {
			*dst = v
			c.sources[name] = SourceFile
		}
	}
	setString("database_url", &c.DatabaseURL, file.DatabaseURL)
	setString("encryption_key", &c.EncryptionKey, file.EncryptionKey)
	setInt("request_timeout", &c.RequestTimeout, file.RequestTimeout)
	setInt("sync_concurrency", &c.SyncConcurrency, file.SyncConcurrency)
	setInt("audit_list_limit", &c.AuditListLimit, file.AuditListLimit)
	setString("log_level", &c.LogLevel, file.LogLevel)
	setString("environment", &c.Environment, file.Environment)
	setString("default_user_directory", &c.DefaultUserDirectory, file.DefaultUserDirectory)
	setString("default_user_id", &c.DefaultUserID, file.DefaultUserID)
}

// env resolves variables from the process environment first and the
// parsed .env file second.
type env struct {
	dotenv map[string]string
}

func newEnv(dotenv map[string]string) env {
	return env{dotenv: dotenv}
}

func (e env) lookup(keys ...string) (string, string, bool) {
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok && v != "" {
			return v, SourceEnvironment, true
		}
	}
	for _, k := range keys {
		if v, ok := e.dotenv[k]; ok && v != "" {
			return v, SourceDotenv, true
		}
	}
	return "", "", false
}

func (c *Config) applyEnvConfig(e env) {
	str := func(name string, dst *string, keys ...string) {
		if v, src, ok := e.lookup(keys...); ok {
			*dst = v
			c.sources[name] = src
		}
	}
	num := func(name string, dst *int, keys ...string) {
		if v, src, ok := e.lookup(keys...); ok {
			if i, err := strconv.Atoi(v); err == nil {
				*dst = i
				c.sources[name] = src
			}
		}
	}

	str("encryption_key", &c.EncryptionKey, "OWNERSHIP_ENCRYPTION_KEY", "ENCRYPTION_KEY")
	num("request_timeout", &c.RequestTimeout, "OWNERSHIP_REQUEST_TIMEOUT")
	num("sync_concurrency", &c.SyncConcurrency, "OWNERSHIP_SYNC_CONCURRENCY")
	num("audit_list_limit", &c.AuditListLimit, "OWNERSHIP_AUDIT_LIST_LIMIT")
	str("log_level", &c.LogLevel, "OWNERSHIP_LOG_LEVEL")
	str("environment", &c.Environment, "OWNERSHIP_ENV")
	str("default_user_directory", &c.DefaultUserDirectory, "OWNERSHIP_DEFAULT_USER_DIRECTORY")
	str("default_user_id", &c.DefaultUserID, "OWNERSHIP_DEFAULT_USER_ID")

	str("database_url", &c.DatabaseURL, "DATABASE_URL")
	if c.DatabaseURL == "" {
		c.composeDatabaseURL(e)
	}
}

// composeDatabaseURL builds the URL from POSTGRES_* variables when no
// database_url was given.
func (c *Config) composeDatabaseURL(e env) {
	get := func(key, def string) (string, string) {
		if v, src, ok := e.lookup(key); ok {
			return v, src
		}
		return def, ""
	}
	host, src := get("POSTGRES_HOST", "localhost")
	port, _ := get("POSTGRES_PORT", "5432")
	name, _ := get("POSTGRES_DB", "qseow_ownership")
	user, _ := get("POSTGRES_USER", "postgres")
	password, psrc := get("POSTGRES_PASSWORD", "")

	if password == "" {
		c.missing = append(c.missing, "POSTGRES_PASSWORD is required when DATABASE_URL is not set")
		return
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, password),
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + name,
	}
	c.DatabaseURL = u.String()
	if src == "" {
		src = psrc
	}
	c.sources["database_url"] = src
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return SourceDefault
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return SourceDefault
}

// Timeout returns the per-request timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	var problems []string
	problems = append(problems, c.missing...)
	if c.DatabaseURL == "" && len(c.missing) == 0 {
		problems = append(problems, "database_url is required (set DATABASE_URL or POSTGRES_*)")
	}
	if c.EncryptionKey == "" {
		problems = append(problems, "encryption_key is required (generate with: ownerctl data-key generate)")
	} else if _, err := vault.DecodeKey(c.EncryptionKey); err != nil {
		problems = append(problems, fmt.Sprintf("encryption_key is invalid: %v", err))
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "request_timeout must be positive")
	}
	if c.SyncConcurrency <= 0 {
		problems = append(problems, "sync_concurrency must be positive")
	}
	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}

// Attributes returns all configuration attributes with their values and
// sources. Secrets are masked.
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "database_url", Value: maskURL(c.DatabaseURL), Source: c.Source("database_url")},
		{Name: "encryption_key", Value: mask(c.EncryptionKey), Source: c.Source("encryption_key")},
		{Name: "request_timeout", Value: strconv.Itoa(c.RequestTimeout), Source: c.Source("request_timeout")},
		{Name: "sync_concurrency", Value: strconv.Itoa(c.SyncConcurrency), Source: c.Source("sync_concurrency")},
		{Name: "audit_list_limit", Value: strconv.Itoa(c.AuditListLimit), Source: c.Source("audit_list_limit")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "environment", Value: c.Environment, Source: c.Source("environment")},
		{Name: "default_user_directory", Value: c.DefaultUserDirectory, Source: c.Source("default_user_directory")},
		{Name: "default_user_id", Value: c.DefaultUserID, Source: c.Source("default_user_id")},
	}
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

func maskURL(s string) string {
	u, err := url.Parse(s)
	if err != nil || u.User == nil {
		return s
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-50s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-50s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-50s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
