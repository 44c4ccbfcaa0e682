// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareCursors(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		a, b     string
		expected int
	}{
		"equal instants in different zones": {
			a:        "2020-01-02T10:00:00+01:00",
			b:        "2020-01-02T09:00:00Z",
			expected: 0,
		},
		"zone aware before naive utc": {
			a:        "2020-01-02T10:00:00+02:00",
			b:        "2020-01-02T09:00:00",
			expected: -1,
		},
		"naive timestamps": {
			a:        "2021-01-01T00:00:00",
			b:        "2010-01-01T00:00:00",
			expected: 1,
		},
		"fractional seconds": {
			a:        "2020-01-01T00:00:00.5Z",
			b:        "2020-01-01T00:00:00Z",
			expected: 1,
		},
		"date only": {
			a:        "2020-01-01",
			b:        "2020-01-01T00:00:01",
			expected: -1,
		},
		"lexical fallback": {
			a:        "abc",
			b:        "abd",
			expected: -1,
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.expected, CompareCursors(test.a, test.b))
		})
	}
}

func TestSyncState(t *testing.T) {
	t.Parallel()

	state := New()
	_, ok := state.Bookmark("leads")
	assert.False(t, ok)

	assert.True(t, state.AdvanceBookmark("leads", "2020-01-01T00:00:00+00:00"))
	assert.False(t, state.AdvanceBookmark("leads", "2019-12-31T23:00:00+00:00"))
	assert.False(t, state.AdvanceBookmark("leads", "2020-01-01T01:00:00+01:00"))
	assert.True(t, state.AdvanceBookmark("leads", "2020-01-02T00:00:00+00:00"))

	value, ok := state.Bookmark("leads")
	require.True(t, ok)
	assert.Equal(t, "2020-01-02T00:00:00+00:00", value)

	state.SetBookmark("deals", "2019-01-01T00:00:00")
	state.CurrentlySyncing = "deals"
	clone := state.Clone()
	clone.SetBookmark("deals", "2030-01-01T00:00:00")
	value, _ = state.Bookmark("deals")
	assert.Equal(t, "2019-01-01T00:00:00", value)
	assert.Equal(t, "deals", clone.CurrentlySyncing)
}

func TestMarshalling(t *testing.T) {
	t.Parallel()

	state := New()
	state.SetBookmark("leads", "2020-01-01T00:00:00")
	data, err := state.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"bookmarks":{"leads":"2020-01-01T00:00:00"}}`, string(data))

	state.CurrentlySyncing = "leads"
	data, err = state.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"bookmarks":{"leads":"2020-01-01T00:00:00"},"currently_syncing":"leads"}`, string(data))

	testCases := map[string]struct {
		data        string
		expected    *SyncState
		expectedErr bool
	}{
		"empty": {
			data:     "  \n",
			expected: New(),
		},
		"without bookmarks": {
			data:     `{"currently_syncing":"deals"}`,
			expected: &SyncState{Bookmarks: map[string]string{}, CurrentlySyncing: "deals"},
		},
		"singer state": {
			data:     `{"bookmarks":{"deals":"2020-01-01T00:00:00"},"currently_syncing":null}`,
			expected: &SyncState{Bookmarks: map[string]string{"deals": "2020-01-01T00:00:00"}},
		},
		"invalid": {
			data:        `{"bookmarks":`,
			expectedErr: true,
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			decoded, err := Unmarshal([]byte(test.data))
			if test.expectedErr {
				assert.ErrorContains(t, err, "state: decoding")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, decoded)
		})
	}
}
