// Package tools wraps the five Quercle operations as named,
// schema-described callables for agent frameworks.
//
// Build one tool or all five:
//
//	t, err := tools.New(tools.ToolSearch, tools.WithAPIKey("qk_..."))
//	all, err := tools.NewAll() // fixed order: search, fetch, raw_search, raw_fetch, extract
//
// Each Tool exposes a stable Name, a Description and a JSON-Schema
// parameter set for function-calling hosts, plus a blocking Call and a
// channel-based CallAsync. Arguments arrive as a JSON object; required
// parameters are validated before any network request is issued.
//
// Hosts with their own registries register tools in bulk:
//
//	err := tools.RegisterAll(myRegistry, tools.WithClient(client))
package tools
