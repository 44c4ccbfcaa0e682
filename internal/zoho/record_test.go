// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package zoho

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	t.Parallel()

	record := Record(`{"id":4150868000000225013,"Modified_Time":"2020-01-02T10:00:00+01:00","Owner":{"name":"Jane"}}`)
	assert.Equal(t, "4150868000000225013", record.ID())
	assert.Equal(t, "2020-01-02T10:00:00+01:00", record.Get("Modified_Time").String())
	assert.Equal(t, "Jane", record.Get("Owner.name").String())
	assert.False(t, record.Get("Missing").Exists())

	tagged, err := record.With("parent_id", "99")
	require.NoError(t, err)
	assert.Equal(t, "99", tagged.Get("parent_id").String())
	assert.False(t, record.Get("parent_id").Exists())
	assert.Equal(t, record.ID(), tagged.ID())
}

func TestExtractRecords(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		body     string
		key      string
		expected []Record
	}{
		"array": {
			body:     `{"data":[{"id":"1"},{"id":"2"}]}`,
			key:      "data",
			expected: []Record{Record(`{"id":"1"}`), Record(`{"id":"2"}`)},
		},
		"object": {
			body:     `{"org":{"id":"1"}}`,
			key:      "org",
			expected: []Record{Record(`{"id":"1"}`)},
		},
		"missing key": {
			body:     `{"info":{}}`,
			key:      "data",
			expected: []Record{},
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.expected, extractRecords([]byte(test.body), test.key))
		})
	}
}
