// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	fakezoho "github.com/mia-platform/zohosync/internal/zoho/fake"
)

const testConfigTemplate = `client_id: %s
client_secret: %s
refresh_token: %s
api_domain: %s
accounts_url: %s
streams:
  - leads
state:
  backend: %s
  path: %s
`

// writeTestConfig writes a configuration file pointing to server and returns its path.
func writeTestConfig(tb testing.TB, server *fakezoho.Server, backend, statePath string) string {
	tb.Helper()

	configPath := filepath.Join(tb.TempDir(), "config.yaml")
	content := fmt.Sprintf(testConfigTemplate,
		fakezoho.ClientID,
		fakezoho.ClientSecret,
		fakezoho.RefreshToken,
		server.URL,
		server.TokenURL(),
		backend,
		statePath,
	)
	require.NoError(tb, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath
}

// lockedBuffer is a bytes.Buffer safe for concurrent use.
type lockedBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(p)
}

func (b *lockedBuffer) lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	output := strings.TrimSpace(b.buffer.String())
	if output == "" {
		return nil
	}
	return strings.Split(output, "\n")
}
