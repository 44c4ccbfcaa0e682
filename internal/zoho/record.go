// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package zoho

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Record is a single API object kept as raw JSON, so that fields unknown to the
// connector are emitted untouched.
type Record []byte

// Get returns the value at the gjson path.
func (r Record) Get(path string) gjson.Result {
	return gjson.GetBytes(r, path)
}

// ID returns the record id as a string, whatever its JSON type.
func (r Record) ID() string {
	return r.Get("id").String()
}

// With returns a copy of the record with key set to value.
func (r Record) With(key string, value any) (Record, error) {
	updated, err := sjson.SetBytes([]byte(r), key, value)
	if err != nil {
		return nil, err
	}
	return Record(updated), nil
}

// extractRecords returns the records found under key in body. An object is a single
// record, an array yields one record per element.
func extractRecords(body []byte, key string) []Record {
	result := gjson.GetBytes(body, key)
	if result.IsObject() {
		return []Record{Record(result.Raw)}
	}

	records := make([]Record, 0)
	result.ForEach(func(_, value gjson.Result) bool {
		records = append(records, Record(value.Raw))
		return true
	})
	return records
}
