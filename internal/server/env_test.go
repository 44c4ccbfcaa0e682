// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvironmentVariables(t *testing.T) {
	t.Run("valid port", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "3000")
		envVars, err := LoadServerConfig()
		require.NoError(t, err)
		assert.Equal(t, 3000, envVars.HTTPPort)
		assert.Equal(t, "0.0.0.0", envVars.HTTPHost)
		assert.True(t, envVars.DisableStartupMessage)
	})

	t.Run("port out of range", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "655350")
		_, err := LoadServerConfig()
		assert.ErrorIs(t, err, ErrEnvVariablesNotValid)
	})

	t.Run("port not a number", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "http")
		_, err := LoadServerConfig()
		assert.ErrorIs(t, err, ErrEnvVariablesNotValid)
	})
}

func TestValidateEnvironmentVariables(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		port        int
		expectedErr bool
	}{
		"negative port": {
			port:        -1,
			expectedErr: true,
		},
		"port too high": {
			port:        655350,
			expectedErr: true,
		},
		"valid port": {
			port: 3000,
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			err := validateEnvironmentVariables(&Config{HTTPPort: test.port})
			if test.expectedErr {
				assert.ErrorIs(t, err, ErrEnvVariablesNotValid)
				return
			}
			assert.NoError(t, err)
		})
	}
}
