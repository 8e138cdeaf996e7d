// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/botwire/lib/sealed"
	"github.com/bureau-foundation/botwire/lib/secret"
)

// Environment variables consulted by this package.
const (
	EnvConfig = "BOTWIRE_CONFIG"
	EnvToken  = "BOTWIRE_TOKEN"
)

// Compression names accepted by archive.compression.
var compressionNames = []string{"zstd", "lz4", "none"}

// Duration is a time.Duration written as a Go duration string.
type Duration time.Duration

// UnmarshalText parses a duration string ("30s", "1m30s").
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the master configuration for botwire.
type Config struct {
	// API configures the bot API client.
	API APIConfig `yaml:"api" json:"api" toml:"api"`

	// Polling configures the update poller.
	Polling PollingConfig `yaml:"polling" json:"polling" toml:"polling"`

	// Archive configures the on-disk update archive.
	Archive ArchiveConfig `yaml:"archive" json:"archive" toml:"archive"`

	// Publish configures fan-out of received updates to AMQP.
	Publish PublishConfig `yaml:"publish" json:"publish" toml:"publish"`
}

// APIConfig configures the bot API client.
type APIConfig struct {
	// BaseURL points at a self-hosted API server. Empty means the
	// public endpoint.
	BaseURL string `yaml:"base_url" json:"base_url" toml:"base_url"`

	// TestEnvironment routes calls to the test environment.
	TestEnvironment bool `yaml:"test_environment" json:"test_environment" toml:"test_environment"`

	// TokenFile holds the bot token. "-" reads stdin. A path ending in
	// .age is decrypted with IdentityFile.
	TokenFile string `yaml:"token_file" json:"token_file" toml:"token_file"`

	// IdentityFile is the age identity for a sealed TokenFile.
	IdentityFile string `yaml:"identity_file" json:"identity_file" toml:"identity_file"`

	// Timeout bounds ordinary calls.
	// Default: 30s
	Timeout Duration `yaml:"timeout" json:"timeout" toml:"timeout"`

	// UploadTimeout bounds calls with attachments and downloads.
	// Default: 5m
	UploadTimeout Duration `yaml:"upload_timeout" json:"upload_timeout" toml:"upload_timeout"`

	// RetryCount is the total number of attempts for rate-limited calls.
	// Default: 3
	RetryCount int `yaml:"retry_count" json:"retry_count" toml:"retry_count"`

	// RetryThreshold is the longest retry_after waited out locally.
	// Default: 60s
	RetryThreshold Duration `yaml:"retry_threshold" json:"retry_threshold" toml:"retry_threshold"`
}

// PollingConfig configures the update poller.
type PollingConfig struct {
	// Timeout is the long-poll hold.
	// Default: 30s
	Timeout Duration `yaml:"timeout" json:"timeout" toml:"timeout"`

	// Limit caps updates per poll (1-100). Zero leaves the server
	// default of 100.
	Limit int `yaml:"limit" json:"limit" toml:"limit"`

	// AllowedUpdates filters update kinds ("message", "callback_query").
	AllowedUpdates []string `yaml:"allowed_updates" json:"allowed_updates" toml:"allowed_updates"`

	// ErrorBackoff is the pause after a failed poll.
	// Default: 1s
	ErrorBackoff Duration `yaml:"error_backoff" json:"error_backoff" toml:"error_backoff"`

	// DeleteWebhook removes any webhook before polling starts.
	// Default: true
	DeleteWebhook bool `yaml:"delete_webhook" json:"delete_webhook" toml:"delete_webhook"`

	// LockDirectory holds the per-token instance lock files.
	// Default: ${XDG_RUNTIME_DIR:-/tmp}/botwire
	LockDirectory string `yaml:"lock_directory" json:"lock_directory" toml:"lock_directory"`
}

// ArchiveConfig configures the update archive.
type ArchiveConfig struct {
	// Path is the archive file. Empty disables archiving.
	Path string `yaml:"path" json:"path" toml:"path"`

	// Compression is "zstd", "lz4", or "none".
	// Default: zstd
	Compression string `yaml:"compression" json:"compression" toml:"compression"`
}

// PublishConfig configures AMQP fan-out.
type PublishConfig struct {
	// URL is the AMQP broker URL. Empty disables publishing.
	URL string `yaml:"url" json:"url" toml:"url"`

	// Exchange is the topic exchange updates are published to.
	// Default: botwire.updates
	Exchange string `yaml:"exchange" json:"exchange" toml:"exchange"`

	// RoutingPrefix is prepended to the update kind to form the
	// routing key ("<prefix>.message").
	// Default: update
	RoutingPrefix string `yaml:"routing_prefix" json:"routing_prefix" toml:"routing_prefix"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Timeout:        Duration(30 * time.Second),
			UploadTimeout:  Duration(5 * time.Minute),
			RetryCount:     3,
			RetryThreshold: Duration(60 * time.Second),
		},
		Polling: PollingConfig{
			Timeout:       Duration(30 * time.Second),
			ErrorBackoff:  Duration(time.Second),
			DeleteWebhook: true,
			LockDirectory: "${XDG_RUNTIME_DIR:-/tmp}/botwire",
		},
		Archive: ArchiveConfig{
			Compression: "zstd",
		},
		Publish: PublishConfig{
			Exchange:      "botwire.updates",
			RoutingPrefix: "update",
		},
	}
}

// Load loads configuration from the file named by BOTWIRE_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvConfig)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your botwire config file, or use --config flag", EnvConfig)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path, layered over Default().
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	cfg.expandVariables()
	return cfg, nil
}

// Resolve returns the configuration to use: the file at path if set,
// else the file named by BOTWIRE_CONFIG if set, else Default().
func Resolve(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	if os.Getenv(EnvConfig) != "" {
		return Load()
	}
	cfg := Default()
	cfg.expandVariables()
	return cfg, nil
}

// loadFile decodes a single configuration file over the current values.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		// An empty document decodes to io.EOF; it means "all defaults".
		if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case ".json", ".jsonc":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		return decoder.Decode(c)
	case ".toml":
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		return decoder.Decode(c)
	default:
		return fmt.Errorf("unsupported config format %q (use .yaml, .json, .jsonc or .toml)", filepath.Ext(path))
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	c.API.TokenFile = expandVars(c.API.TokenFile)
	c.API.IdentityFile = expandVars(c.API.IdentityFile)
	c.Polling.LockDirectory = expandVars(c.Polling.LockDirectory)
	c.Archive.Path = expandVars(c.Archive.Path)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} from the environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL != "" {
		parsed, err := url.Parse(c.API.BaseURL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			errs = append(errs, fmt.Errorf("api.base_url must be an http(s) URL with a host, got %q", c.API.BaseURL))
		}
	}
	if strings.HasSuffix(c.API.TokenFile, ".age") && c.API.IdentityFile == "" {
		errs = append(errs, fmt.Errorf("api.identity_file is required for sealed token file %s", c.API.TokenFile))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout must be positive"))
	}
	if c.API.UploadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("api.upload_timeout must be positive"))
	}
	if c.API.RetryCount < 1 {
		errs = append(errs, fmt.Errorf("api.retry_count must be at least 1"))
	}
	if c.API.RetryThreshold < 0 {
		errs = append(errs, fmt.Errorf("api.retry_threshold must not be negative"))
	}

	if c.Polling.Timeout < 0 {
		errs = append(errs, fmt.Errorf("polling.timeout must not be negative"))
	}
	if c.Polling.Limit < 0 || c.Polling.Limit > 100 {
		errs = append(errs, fmt.Errorf("polling.limit must be between 0 and 100"))
	}
	if c.Polling.ErrorBackoff < 0 {
		errs = append(errs, fmt.Errorf("polling.error_backoff must not be negative"))
	}
	if c.Polling.LockDirectory == "" {
		errs = append(errs, fmt.Errorf("polling.lock_directory is required"))
	}

	if !contains(compressionNames, c.Archive.Compression) {
		errs = append(errs, fmt.Errorf("archive.compression must be one of: %v", compressionNames))
	}

	if c.Publish.URL != "" {
		if !strings.HasPrefix(c.Publish.URL, "amqp://") && !strings.HasPrefix(c.Publish.URL, "amqps://") {
			errs = append(errs, fmt.Errorf("publish.url must use amqp:// or amqps://"))
		}
		if c.Publish.Exchange == "" {
			errs = append(errs, fmt.Errorf("publish.exchange is required when publish.url is set"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Token loads the bot token from the configured source. The caller
// owns the returned buffer and must close it.
func (c *Config) Token() (*secret.Buffer, error) {
	path := c.API.TokenFile
	switch {
	case path == "":
		value := os.Getenv(EnvToken)
		if value == "" {
			return nil, fmt.Errorf("no bot token: set api.token_file or %s", EnvToken)
		}
		return secret.NewFromString(strings.TrimSpace(value))
	case strings.HasSuffix(path, ".age"):
		if c.API.IdentityFile == "" {
			return nil, fmt.Errorf("sealed token file %s needs api.identity_file", path)
		}
		token, err := sealed.OpenFile(path, c.API.IdentityFile)
		if err != nil {
			return nil, fmt.Errorf("opening sealed token: %w", err)
		}
		return token, nil
	default:
		token, err := secret.ReadFromPath(path)
		if err != nil {
			return nil, fmt.Errorf("reading token: %w", err)
		}
		return token, nil
	}
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
