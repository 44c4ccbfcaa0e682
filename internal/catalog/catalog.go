// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package catalog

import (
	"net/url"
	"slices"

	"github.com/iancoleman/strcase"

	"github.com/mia-platform/zohosync/internal/zoho"
)

const (
	defaultSortBy      = "Modified_Time"
	defaultSortOrder   = "asc"
	defaultBookmarkKey = "Modified_Time"
)

// SubModule is a resource nested under every record of its parent module, addressed as
// {parent module}/{parent id}/{sub module}.
type SubModule struct {
	ModuleName  string
	StreamName  string
	BookmarkKey string
}

// Resource returns the sub resource path for the parent record parentID.
func (s SubModule) Resource(parentModule, parentID string) string {
	return parentModule + "/" + parentID + "/" + s.ModuleName
}

// Module is a syncable resource.
type Module struct {
	// APIName is the resource path requested to the API.
	APIName     string
	ModuleName  string
	StreamName  string
	PerPage     int
	SortBy      string
	SortOrder   string
	Params      url.Values
	BookmarkKey string
	SubModules  []SubModule
	Paginated   bool
	// DataKey is the response key holding the records of a non paginated module.
	DataKey string
}

// Bookmarked reports whether the module keeps an incremental cursor.
func (m Module) Bookmarked() bool {
	return m.BookmarkKey != ""
}

// Query returns the paginator options for the module starting after modifiedSince.
func (m Module) Query(modifiedSince string) zoho.Query {
	return zoho.Query{
		PerPage:       m.PerPage,
		ModifiedSince: modifiedSince,
		SortBy:        m.SortBy,
		SortOrder:     m.SortOrder,
		FieldsModule:  m.APIName,
		Params:        m.Params,
	}
}

var stageHistory = SubModule{
	ModuleName:  "Stage_History",
	StreamName:  "deals_stage_history",
	BookmarkKey: "Last_Modified_Time",
}

// paginatedModules returns the static paginated catalog in sync order.
func paginatedModules() []Module {
	modules := []Module{
		{
			APIName:    "Approvals",
			ModuleName: "Approvals",
			StreamName: "approvals",
			PerPage:    zoho.DefaultPerPage,
			Paginated:  true,
		},
	}

	for _, name := range []string{
		"Leads",
		"Deals",
		"Contacts",
		"Accounts",
		"Tasks",
		"Events",
		"Calls",
		"Activities",
		"Visits",
		"Invoices",
		"Notes",
		"Attachments",
		"Lead_Status_History",
	} {
		modules = append(modules, incrementalModule(name))
	}

	for i := range modules {
		if modules[i].APIName == "Deals" {
			modules[i].SubModules = []SubModule{stageHistory}
		}
	}
	return modules
}

// nonPaginatedModules returns the static catalog of resources read with a single request.
func nonPaginatedModules() []Module {
	return []Module{
		{
			APIName:    "org",
			ModuleName: "org",
			StreamName: "org_settings",
			DataKey:    "org",
		},
		{
			APIName:    "settings/stages",
			ModuleName: "settings/stages",
			StreamName: "settings_stages",
			Params:     url.Values{"module": {"Deals"}},
			DataKey:    "stages",
		},
	}
}

// incrementalModule returns a module synced with the default incremental parameters.
// The stream name is the snake case form of the API name.
func incrementalModule(apiName string) Module {
	return Module{
		APIName:     apiName,
		ModuleName:  apiName,
		StreamName:  strcase.ToSnake(apiName),
		PerPage:     zoho.DefaultPerPage,
		SortBy:      defaultSortBy,
		SortOrder:   defaultSortOrder,
		BookmarkKey: defaultBookmarkKey,
		Paginated:   true,
	}
}

// StreamNames returns every stream name the catalog can produce, sub streams included.
func StreamNames() []string {
	names := make([]string, 0)
	for _, module := range slices.Concat(paginatedModules(), nonPaginatedModules()) {
		names = append(names, module.StreamName)
		for _, sub := range module.SubModules {
			names = append(names, sub.StreamName)
		}
	}
	return names
}
