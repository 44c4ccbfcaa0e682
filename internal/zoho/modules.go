// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package zoho

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"
)

const (
	modulesResource = "settings/modules"
	fieldsResource  = "settings/fields"
)

// Profile is a CRM profile allowed to access a module.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ModuleInfo describes a module returned by the modules metadata endpoint.
type ModuleInfo struct {
	APIName      string    `json:"api_name"`
	ModuleName   string    `json:"module_name"`
	APISupported bool      `json:"api_supported"`
	Visible      bool      `json:"visible"`
	Profiles     []Profile `json:"profiles"`
}

// Accessible reports whether the module can be read through the API by at least one profile.
func (m ModuleInfo) Accessible() bool {
	return m.APISupported && len(m.Profiles) > 0
}

// ListModules returns the modules defined in the organization.
func (c *Client) ListModules(ctx context.Context) ([]ModuleInfo, error) {
	body, err := c.Get(ctx, modulesResource, nil, "")
	if err != nil {
		return nil, err
	}

	var response struct {
		Modules []ModuleInfo `json:"modules"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, fmt.Errorf("zoho: decoding modules: %w", err)
		}
	}

	return response.Modules, nil
}

// ModuleFields returns the API names of the fields of module.
func (c *Client) ModuleFields(ctx context.Context, module string) ([]string, error) {
	body, err := c.Get(ctx, fieldsResource, url.Values{"module": {module}}, "")
	if err != nil {
		return nil, err
	}

	fields := make([]string, 0)
	for _, name := range gjson.GetBytes(body, "fields.#.api_name").Array() {
		if name.String() != "" {
			fields = append(fields, name.String())
		}
	}
	return fields, nil
}
