// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package catalog

import (
	"context"
	"slices"

	"github.com/mia-platform/zohosync/internal/logger"
	"github.com/mia-platform/zohosync/internal/zoho"
)

const loggerName = "zohosync:catalog"

// Options customizes the resolved catalog.
type Options struct {
	// CustomModules lists additional module API names synced incrementally.
	CustomModules []string
	// Streams, when not empty, restricts the catalog to the listed stream names.
	Streams []string
}

// Resolve returns the modules to sync: the catalog paginated modules, and the custom
// ones, that the organization defines and can read through the API, followed by the non
// paginated modules. Modules not synced are logged.
func Resolve(ctx context.Context, live []zoho.ModuleInfo, options Options) []Module {
	log := logger.FromContext(ctx).WithName(loggerName)

	liveModules := make(map[string]zoho.ModuleInfo, len(live))
	for _, module := range live {
		liveModules[module.APIName] = module
	}

	candidates := paginatedModules()
	for _, name := range options.CustomModules {
		if slices.ContainsFunc(candidates, func(m Module) bool { return m.APIName == name }) {
			continue
		}
		candidates = append(candidates, incrementalModule(name))
	}

	resolved := make([]Module, 0, len(candidates))
	for _, module := range candidates {
		info, found := liveModules[module.APIName]
		switch {
		case !found:
			log.Info("module not available in the organization, skipping", "module", module.APIName)
			continue
		case !info.Accessible():
			log.Info("module not accessible through the API, skipping",
				"module", module.APIName,
				"apiSupported", info.APISupported,
				"visible", info.Visible,
				"profiles", len(info.Profiles),
			)
			continue
		}
		resolved = append(resolved, module)
	}

	for _, module := range live {
		if !slices.ContainsFunc(candidates, func(m Module) bool { return m.APIName == module.APIName }) {
			log.Debug("module not in the catalog, skipping", "module", module.APIName)
		}
	}

	resolved = append(resolved, nonPaginatedModules()...)
	if len(options.Streams) == 0 {
		return resolved
	}
	return selectStreams(log, resolved, options.Streams)
}

// selectStreams keeps the modules whose stream is selected. Sub modules are kept only when
// both their stream and the parent stream are selected.
func selectStreams(log logger.Logger, modules []Module, streams []string) []Module {
	known := make(map[string]bool)
	selected := make([]Module, 0, len(modules))
	for _, module := range modules {
		known[module.StreamName] = true
		for _, sub := range module.SubModules {
			known[sub.StreamName] = true
		}

		if !slices.Contains(streams, module.StreamName) {
			for _, sub := range module.SubModules {
				if slices.Contains(streams, sub.StreamName) {
					log.Warn("sub stream selected without its parent stream, skipping", "stream", sub.StreamName, "parent", module.StreamName)
				}
			}
			continue
		}

		module.SubModules = slices.DeleteFunc(slices.Clone(module.SubModules), func(sub SubModule) bool {
			return !slices.Contains(streams, sub.StreamName)
		})
		selected = append(selected, module)
	}

	for _, stream := range streams {
		if !known[stream] {
			log.Warn("selected stream is not available, ignoring", "stream", stream)
		}
	}
	return selected
}
