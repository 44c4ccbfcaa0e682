// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package zoho

import (
	"context"
	"errors"
	"iter"
	"maps"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mia-platform/zohosync/internal/logger"
)

const (
	// DefaultPerPage is the largest page size accepted by the API.
	DefaultPerPage = 200

	dataKey = "data"
)

// Query holds the options of a paginated read.
type Query struct {
	// Page is the first page to request, starting from 1.
	Page int
	// PerPage is the page size; the value returned by the API is used for following pages.
	PerPage int
	// ModifiedSince is sent as If-Modified-Since on every page.
	ModifiedSince string
	SortBy        string
	SortOrder     string
	// FieldsModule, when set, restricts the response to every field of that module,
	// which makes the API return fields hidden from the default layout.
	FieldsModule string
	// Params are extra query parameters sent on every page.
	Params url.Values
}

func (q Query) params() url.Values {
	params := make(url.Values, len(q.Params)+4)
	maps.Copy(params, q.Params)
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
	}
	if q.SortOrder != "" {
		params.Set("sort_order", q.SortOrder)
	}
	return params
}

// Paginate lazily walks the pages of resource, yielding every record of the data array.
// The sequence ends when the API reports no more records, answers 204 or answers 304.
// Any other error is yielded once and ends the sequence.
func (c *Client) Paginate(ctx context.Context, resource string, query Query) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		log := logger.FromContext(ctx).WithName(loggerName)

		params := query.params()
		if query.FieldsModule != "" {
			fields, err := c.ModuleFields(ctx, query.FieldsModule)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(fields) > 0 {
				params.Set("fields", strings.Join(fields, ","))
			}
		}

		page := max(query.Page, 1)
		perPage := query.PerPage
		if perPage <= 0 {
			perPage = DefaultPerPage
		}

		for {
			params.Set("page", strconv.Itoa(page))
			params.Set("per_page", strconv.Itoa(perPage))

			log.Debug("requesting page", "resource", resource, "page", page, "perPage", perPage)
			body, err := c.Get(ctx, resource, params, query.ModifiedSince)
			switch {
			case errors.Is(err, ErrNotModified):
				log.Debug("no records modified", "resource", resource, "modifiedSince", query.ModifiedSince)
				return
			case err != nil:
				yield(nil, err)
				return
			case len(body) == 0:
				return
			}

			for _, record := range extractRecords(body, dataKey) {
				if !yield(record, nil) {
					return
				}
			}

			info := gjson.GetBytes(body, "info")
			if !info.Get("more_records").Bool() {
				return
			}
			if value := info.Get("per_page"); value.Int() > 0 {
				perPage = int(value.Int())
			}
			if value := info.Get("page"); value.Int() > 0 {
				page = int(value.Int())
			}
			page++
		}
	}
}

// SinglePage requests resource once and yields the records found under key.
func (c *Client) SinglePage(ctx context.Context, resource, key string, params url.Values) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		body, err := c.Get(ctx, resource, params, "")
		switch {
		case errors.Is(err, ErrNotModified):
			return
		case err != nil:
			yield(nil, err)
			return
		}

		for _, record := range extractRecords(body, key) {
			if !yield(record, nil) {
				return
			}
		}
	}
}
