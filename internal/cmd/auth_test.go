// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/mia-platform/zohosync/internal/config"
	fakezoho "github.com/mia-platform/zohosync/internal/zoho/fake"
)

func TestAuthCommand(t *testing.T) {
	t.Parallel()

	server := fakezoho.NewServer(t)
	configPath := writeTestConfig(t, server, config.StateBackendFile, filepath.Join(t.TempDir(), "state.json"))

	outBuffer := new(bytes.Buffer)
	errBuffer := new(bytes.Buffer)
	cmd := AuthCmd()
	cmd.SetOut(outBuffer)
	cmd.SetErr(errBuffer)
	cmd.SetArgs([]string{"--" + configFlagName, configPath, "--" + codeFlagName, fakezoho.GrantCode})

	require.NoError(t, cmd.ExecuteContext(t.Context()))
	assert.Empty(t, errBuffer.String())

	output := gjson.ParseBytes(outBuffer.Bytes())
	assert.Equal(t, fakezoho.RefreshToken, output.Get("refresh_token").String())
	assert.NotEmpty(t, output.Get("access_token").String())
	assert.Equal(t, server.URL, output.Get("api_domain").String())
	assert.Equal(t, int64(3600), output.Get("expires_in").Int())
	assert.Equal(t, 1, server.TokenRequests())
}

func TestAuthCommandRejectedCode(t *testing.T) {
	t.Parallel()

	server := fakezoho.NewServer(t)
	configPath := writeTestConfig(t, server, config.StateBackendFile, filepath.Join(t.TempDir(), "state.json"))

	outBuffer := new(bytes.Buffer)
	errBuffer := new(bytes.Buffer)
	cmd := AuthCmd()
	cmd.SetOut(outBuffer)
	cmd.SetErr(errBuffer)
	cmd.SetArgs([]string{"--" + configFlagName, configPath, "--" + codeFlagName, "wrong-code"})

	err := cmd.ExecuteContext(t.Context())
	require.Error(t, err)
	assert.Contains(t, errBuffer.String(), "zoho authentication")
	assert.Empty(t, outBuffer.String())
}
