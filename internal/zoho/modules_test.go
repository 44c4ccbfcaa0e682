// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package zoho

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/zohosync/internal/zoho/fake"
)

func TestListModules(t *testing.T) {
	t.Parallel()

	server := fake.NewServer(t)
	server.AddModule("Leads", true)
	server.AddModule("Hidden_Module", false)
	client := newTestClient(t, server)

	modules, err := client.ListModules(t.Context())
	require.NoError(t, err)
	require.Len(t, modules, 2)

	assert.Equal(t, "Leads", modules[0].APIName)
	assert.True(t, modules[0].Accessible())
	assert.Equal(t, []Profile{{ID: "1", Name: "Administrator"}}, modules[0].Profiles)
	assert.Equal(t, "Hidden_Module", modules[1].APIName)
	assert.False(t, modules[1].Accessible())
}

func TestListModulesError(t *testing.T) {
	t.Parallel()

	server := fake.NewServer(t)
	for range 3 {
		server.Enqueue("settings/modules", fake.Response{StatusCode: http.StatusInternalServerError})
	}
	client := newTestClient(t, server)

	modules, err := client.ListModules(t.Context())
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Nil(t, modules)
}

func TestModuleInfoAccessible(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		module   ModuleInfo
		expected bool
	}{
		"supported with profiles": {
			module:   ModuleInfo{APISupported: true, Profiles: []Profile{{ID: "1"}}},
			expected: true,
		},
		"supported without profiles": {
			module: ModuleInfo{APISupported: true},
		},
		"not supported": {
			module: ModuleInfo{Profiles: []Profile{{ID: "1"}}},
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.expected, test.module.Accessible())
		})
	}
}

func TestModuleFields(t *testing.T) {
	t.Parallel()

	server := fake.NewServer(t)
	server.SetFields("Deals", "id", "Deal_Name", "Stage")
	client := newTestClient(t, server)

	fields, err := client.ModuleFields(t.Context(), "Deals")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "Deal_Name", "Stage"}, fields)

	fields, err = client.ModuleFields(t.Context(), "Unknown")
	require.NoError(t, err)
	assert.Empty(t, fields)
}
