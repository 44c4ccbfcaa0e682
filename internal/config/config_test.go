// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	t.Run("singer json config with defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join("testdata", "config.json"), "")
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())

		assert.Equal(t, "2019-06-01T00:00:00Z", cfg.StartDate)
		assert.Equal(t, "1000.client", cfg.ClientID)
		assert.Equal(t, "secret", cfg.ClientSecret)
		assert.Equal(t, "1000.refresh", cfg.RefreshToken)
		assert.Equal(t, "https://www.zohoapis.eu", cfg.APIDomain)
		assert.Equal(t, DefaultAccountsURL, cfg.AccountsURL)
		assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
		assert.Equal(t, StateBackendFile, cfg.State.Backend)
		assert.Equal(t, "state.json", cfg.State.Path)
		assert.Equal(t, SinkStdout, cfg.Sink.Type)
	})

	t.Run("yaml config", func(t *testing.T) {
		cfg, err := Load(filepath.Join("testdata", "config.yaml"), "")
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())

		assert.Equal(t, DefaultStartDate, cfg.StartDate)
		assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
		assert.Equal(t, []string{"leads", "deals"}, cfg.Streams)
		assert.Equal(t, StateBackendSQLite, cfg.State.Backend)
		assert.Equal(t, "file:state.db", cfg.StateDSN())
		assert.Equal(t, SinkPubSub, cfg.Sink.Type)
		assert.Equal(t, "zoho-records", cfg.Sink.PubSubTopic)
	})

	t.Run("environment overrides file values", func(t *testing.T) {
		t.Setenv("ZOHO_API_DOMAIN", "https://www.zohoapis.in")
		t.Setenv("ZOHO_START_DATE", "2021-01-01T00:00:00")
		t.Setenv("ZOHO_CUSTOM_MODULES", "Vendors,Purchase_Orders")

		cfg, err := Load(filepath.Join("testdata", "config.json"), "")
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())

		assert.Equal(t, "https://www.zohoapis.in", cfg.APIDomain)
		assert.Equal(t, "2021-01-01T00:00:00", cfg.StartDate)
		assert.Equal(t, "1000.client", cfg.ClientID)
		assert.Equal(t, []string{"Vendors", "Purchase_Orders"}, cfg.CustomModules)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg, err := Load(filepath.Join("testdata", "missing.yaml"), "")
		assert.ErrorIs(t, err, fs.ErrNotExist)
		assert.Nil(t, cfg)
	})

	t.Run("invalid file", func(t *testing.T) {
		cfg, err := Load(filepath.Join("testdata", "invalid.yaml"), "")
		assert.ErrorIs(t, err, ErrParsing)
		assert.Nil(t, cfg)
	})

	t.Run("missing env file", func(t *testing.T) {
		cfg, err := Load("", filepath.Join("testdata", "missing.env"))
		assert.ErrorIs(t, err, fs.ErrNotExist)
		assert.Nil(t, cfg)
	})
}

func TestLoadFromEnvFile(t *testing.T) {
	t.Cleanup(func() {
		_ = os.Unsetenv("ZOHO_CLIENT_ID")
		_ = os.Unsetenv("ZOHO_CLIENT_SECRET")
	})

	cfg, err := Load("", filepath.Join("testdata", "test.env"))
	require.NoError(t, err)
	require.NoError(t, cfg.ValidateClient())

	assert.Equal(t, "from-env-file", cfg.ClientID)
	assert.Equal(t, "env-file-secret", cfg.ClientSecret)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingConfig)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := &Config{
			ClientID:     "id",
			ClientSecret: "secret",
			RefreshToken: "refresh",
			APIDomain:    "https://www.zohoapis.eu",
		}
		cfg.applyDefaults()
		return cfg
	}

	testCases := map[string]struct {
		modify          func(*Config)
		expectedErr     error
		expectedMessage string
	}{
		"valid configuration": {
			modify: func(*Config) {},
		},
		"missing required keys are listed": {
			modify: func(c *Config) {
				c.ClientID = ""
				c.APIDomain = ""
			},
			expectedErr:     ErrMissingConfig,
			expectedMessage: "missing configuration: api_domain, client_id",
		},
		"invalid start date": {
			modify: func(c *Config) {
				c.StartDate = "yesterday"
			},
			expectedErr:     ErrInvalidConfig,
			expectedMessage: "invalid configuration: start_date must be an ISO-8601 timestamp",
		},
		"relative api domain": {
			modify: func(c *Config) {
				c.APIDomain = "zohoapis.eu"
			},
			expectedErr:     ErrInvalidConfig,
			expectedMessage: "invalid configuration: api_domain must be an absolute URL",
		},
		"unknown state backend": {
			modify: func(c *Config) {
				c.State.Backend = "redis"
			},
			expectedErr:     ErrInvalidConfig,
			expectedMessage: `invalid configuration: unknown state backend "redis"`,
		},
		"azblob without container": {
			modify: func(c *Config) {
				c.State.Backend = StateBackendAzBlob
				c.State.AzureAccountName = "account"
			},
			expectedErr:     ErrInvalidConfig,
			expectedMessage: "invalid configuration: azblob state needs AZURE_STORAGE_BLOB_CONTAINER_NAME",
		},
		"stdout state with stdout sink": {
			modify: func(c *Config) {
				c.State.Backend = StateBackendStdout
			},
		},
		"stdout state with pubsub sink": {
			modify: func(c *Config) {
				c.State.Backend = StateBackendStdout
				c.Sink.Type = SinkPubSub
				c.Sink.PubSubProject = "project"
				c.Sink.PubSubTopic = "topic"
			},
			expectedErr:     ErrInvalidConfig,
			expectedMessage: "invalid configuration: stdout state needs the stdout sink",
		},
		"pubsub without topic": {
			modify: func(c *Config) {
				c.Sink.Type = SinkPubSub
				c.Sink.PubSubProject = "project"
			},
			expectedErr:     ErrInvalidConfig,
			expectedMessage: "invalid configuration: pubsub sink needs GOOGLE_CLOUD_PUBSUB_PROJECT and GOOGLE_CLOUD_PUBSUB_TOPIC",
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			test.modify(cfg)

			err := cfg.Validate()
			if test.expectedErr == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, test.expectedErr)
			assert.EqualError(t, err, test.expectedMessage)
		})
	}
}
