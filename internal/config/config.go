// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultStartDate is used when neither the state nor the configuration carry a bookmark.
	DefaultStartDate = "2010-01-01T00:00:00"
	// DefaultAccountsURL is the Zoho OAuth token endpoint.
	DefaultAccountsURL = "https://accounts.zoho.eu/oauth/v2/token"
	// DefaultRequestTimeout bounds every single HTTP request.
	DefaultRequestTimeout = 60 * time.Second

	StateBackendFile   = "file"
	StateBackendSQLite = "sqlite"
	StateBackendAzBlob = "azblob"
	// StateBackendStdout writes STATE messages in band with the records and loads the
	// state file at the configured path.
	StateBackendStdout = "stdout"

	SinkStdout = "stdout"
	SinkPubSub = "pubsub"

	defaultStatePath = "state.json"
	defaultStateBlob = "zohosync/state.json"
)

var (
	// ErrParsing reports failures that occur while decoding configuration files.
	ErrParsing = errors.New("error parsing")
	// ErrMissingConfig reports required configuration keys without a value.
	ErrMissingConfig = errors.New("missing configuration")
	// ErrInvalidConfig reports configuration values that cannot be used.
	ErrInvalidConfig = errors.New("invalid configuration")

	startDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}
)

// Config holds the connector configuration. Keys follow the Singer tap conventions so that
// existing tap config.json files can be read as they are.
type Config struct {
	StartDate      string        `yaml:"start_date" env:"ZOHO_START_DATE"`
	ClientID       string        `yaml:"client_id" env:"ZOHO_CLIENT_ID"`
	ClientSecret   string        `yaml:"client_secret" env:"ZOHO_CLIENT_SECRET"`
	RefreshToken   string        `yaml:"refresh_token" env:"ZOHO_REFRESH_TOKEN"`
	AccessToken    string        `yaml:"access_token" env:"ZOHO_ACCESS_TOKEN"`
	APIDomain      string        `yaml:"api_domain" env:"ZOHO_API_DOMAIN"`
	AccountsURL    string        `yaml:"accounts_url" env:"ZOHO_ACCOUNTS_URL"`
	RedirectURI    string        `yaml:"redirect_uri" env:"ZOHO_REDIRECT_URI"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"ZOHO_REQUEST_TIMEOUT"`

	// Streams restricts the run to the listed stream names.
	Streams []string `yaml:"streams" env:"ZOHO_STREAMS"`
	// CustomModules lists additional module API names synced incrementally.
	CustomModules []string `yaml:"custom_modules" env:"ZOHO_CUSTOM_MODULES"`

	State State `yaml:"state"`
	Sink  Sink  `yaml:"sink"`
}

// State selects and configures the state store backend.
type State struct {
	Backend   string `yaml:"backend" env:"ZOHO_STATE_BACKEND"`
	Path      string `yaml:"path" env:"ZOHO_STATE_PATH"`
	SQLiteDSN string `yaml:"sqlite_dsn" env:"ZOHO_STATE_SQLITE_DSN"`

	AzureConnectionString string `yaml:"azure_connection_string" env:"AZURE_STORAGE_BLOB_CONNECTION_STRING"`
	AzureAccountName      string `yaml:"azure_account_name" env:"AZURE_STORAGE_BLOB_ACCOUNT_NAME"`
	AzureContainerName    string `yaml:"azure_container_name" env:"AZURE_STORAGE_BLOB_CONTAINER_NAME"`
	AzureBlobName         string `yaml:"azure_blob_name" env:"AZURE_STORAGE_BLOB_NAME"`
}

// Sink selects and configures the record sink.
type Sink struct {
	Type          string `yaml:"type" env:"ZOHO_SINK"`
	PubSubProject string `yaml:"pubsub_project" env:"GOOGLE_CLOUD_PUBSUB_PROJECT"`
	PubSubTopic   string `yaml:"pubsub_topic" env:"GOOGLE_CLOUD_PUBSUB_TOPIC"`
}

// Load builds the configuration reading, in order, the optional envFile, the optional
// configuration file at path and the process environment. The returned configuration has
// defaults applied; callers run Validate or ValidateClient depending on what they need.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("env file %q: %w", envFile, err)
		}
	}

	cfg := new(Config)
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config file %q: %w", path, unwrappedError(err))
		}
		defer file.Close()

		if cfg, err = decode(file); err != nil {
			return nil, fmt.Errorf("%w %q: %s", ErrParsing, path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParsing, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// decode reads a YAML document; JSON documents are accepted as well.
func decode(reader io.Reader) (*Config, error) {
	cfg := new(Config)
	decoder := yaml.NewDecoder(reader)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.StartDate == "" {
		c.StartDate = DefaultStartDate
	}
	if c.AccountsURL == "" {
		c.AccountsURL = DefaultAccountsURL
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	c.APIDomain = strings.TrimSuffix(c.APIDomain, "/")

	if c.State.Backend == "" {
		c.State.Backend = StateBackendFile
	}
	if c.State.Path == "" {
		c.State.Path = defaultStatePath
	}
	if c.State.AzureBlobName == "" {
		c.State.AzureBlobName = defaultStateBlob
	}
	if c.Sink.Type == "" {
		c.Sink.Type = SinkStdout
	}
}

// ValidateClient checks only the keys needed to talk to the OAuth endpoint.
func (c *Config) ValidateClient() error {
	if err := requireKeys(map[string]string{
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
	}); err != nil {
		return err
	}

	if !absoluteURL(c.AccountsURL) {
		return fmt.Errorf("%w: accounts_url must be an absolute URL", ErrInvalidConfig)
	}

	return nil
}

// Validate reports every missing or invalid key needed by a sync run.
func (c *Config) Validate() error {
	if err := requireKeys(map[string]string{
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
		"refresh_token": c.RefreshToken,
		"api_domain":    c.APIDomain,
	}); err != nil {
		return err
	}

	invalid := make([]string, 0)
	if !validStartDate(c.StartDate) {
		invalid = append(invalid, "start_date must be an ISO-8601 timestamp")
	}
	if !absoluteURL(c.APIDomain) {
		invalid = append(invalid, "api_domain must be an absolute URL")
	}
	if !absoluteURL(c.AccountsURL) {
		invalid = append(invalid, "accounts_url must be an absolute URL")
	}
	if c.RequestTimeout < 0 {
		invalid = append(invalid, "request_timeout must be positive")
	}

	switch c.State.Backend {
	case StateBackendFile, StateBackendSQLite:
	case StateBackendStdout:
		if c.Sink.Type != SinkStdout {
			invalid = append(invalid, "stdout state needs the stdout sink")
		}
	case StateBackendAzBlob:
		switch {
		case c.State.AzureConnectionString == "" && c.State.AzureAccountName == "":
			invalid = append(invalid, "azblob state needs AZURE_STORAGE_BLOB_CONNECTION_STRING or AZURE_STORAGE_BLOB_ACCOUNT_NAME")
		case c.State.AzureContainerName == "":
			invalid = append(invalid, "azblob state needs AZURE_STORAGE_BLOB_CONTAINER_NAME")
		}
	default:
		invalid = append(invalid, fmt.Sprintf("unknown state backend %q", c.State.Backend))
	}

	switch c.Sink.Type {
	case SinkStdout:
	case SinkPubSub:
		if c.Sink.PubSubProject == "" || c.Sink.PubSubTopic == "" {
			invalid = append(invalid, "pubsub sink needs GOOGLE_CLOUD_PUBSUB_PROJECT and GOOGLE_CLOUD_PUBSUB_TOPIC")
		}
	default:
		invalid = append(invalid, fmt.Sprintf("unknown sink %q", c.Sink.Type))
	}

	if len(invalid) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(invalid, "; "))
	}

	return nil
}

// StateDSN returns the sqlite DSN, defaulting to the configured state path.
func (c *Config) StateDSN() string {
	if c.State.SQLiteDSN != "" {
		return c.State.SQLiteDSN
	}

	return c.State.Path
}

func requireKeys(values map[string]string) error {
	missing := make([]string, 0)
	for key, value := range values {
		if value == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}

	return nil
}

func absoluteURL(value string) bool {
	u, err := url.Parse(value)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func validStartDate(value string) bool {
	for _, layout := range startDateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}

	return false
}

// unwrappedError returns the unwrapped error if available, otherwise it returns the original error.
func unwrappedError(err error) error {
	if unwrapped := errors.Unwrap(err); unwrapped != nil {
		return unwrapped
	}

	return err
}
