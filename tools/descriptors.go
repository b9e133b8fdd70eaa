package tools

import (
	"context"
	"encoding/json"

	"github.com/spf13/cast"

	quercle "github.com/quercle/quercle-go"
)

// Canonical tool names, one per remote operation.
const (
	ToolSearch    = quercle.OpSearch
	ToolFetch     = quercle.OpFetch
	ToolRawSearch = quercle.OpRawSearch
	ToolRawFetch  = quercle.OpRawFetch
	ToolExtract   = quercle.OpExtract
)

// Names returns the five canonical tool names in their fixed order.
func Names() []string {
	return []string{ToolSearch, ToolFetch, ToolRawSearch, ToolRawFetch, ToolExtract}
}

// descriptor is the static definition of one tool: metadata for the host
// framework plus the binding to the client method. The five descriptors are
// fixed at init and never mutated.
type descriptor struct {
	name        string
	description string
	parameters  json.RawMessage

	// rawOptions marks operations that accept format/use_safeguard and
	// therefore receive injected defaults.
	rawOptions bool

	invoke func(ctx context.Context, c *quercle.Client, kw map[string]any) (json.RawMessage, error)
}

var descriptors = []descriptor{
	{
		name:        ToolSearch,
		description: "Search the web and get an AI-synthesized answer with citations. Optionally restrict or exclude specific domains.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {
					"type": "string",
					"description": "The search query"
				},
				"allowed_domains": {
					"type": "array",
					"items": {"type": "string"},
					"description": "Only include results from these domains"
				},
				"blocked_domains": {
					"type": "array",
					"items": {"type": "string"},
					"description": "Exclude results from these domains"
				}
			},
			"required": ["query"]
		}`),
		invoke: func(ctx context.Context, c *quercle.Client, kw map[string]any) (json.RawMessage, error) {
			text, err := c.Search(ctx, quercle.SearchRequest{
				Query:          cast.ToString(kw["query"]),
				AllowedDomains: stringSliceArg(kw, "allowed_domains"),
				BlockedDomains: stringSliceArg(kw, "blocked_domains"),
			})
			if err != nil {
				return nil, err
			}
			return json.Marshal(text)
		},
	},
	{
		name:        ToolFetch,
		description: "Fetch a web page and analyze its content with AI according to a prompt. Returns the AI output text.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"url": {
					"type": "string",
					"description": "The URL to fetch"
				},
				"prompt": {
					"type": "string",
					"description": "What to do with the page content"
				}
			},
			"required": ["url", "prompt"]
		}`),
		invoke: func(ctx context.Context, c *quercle.Client, kw map[string]any) (json.RawMessage, error) {
			text, err := c.Fetch(ctx, quercle.FetchRequest{
				URL:    cast.ToString(kw["url"]),
				Prompt: cast.ToString(kw["prompt"]),
			})
			if err != nil {
				return nil, err
			}
			return json.Marshal(text)
		},
	},
	{
		name:        ToolRawSearch,
		description: "Search the web and get unsynthesized search results, without an AI answer.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {
					"type": "string",
					"description": "The search query"
				},
				"format": {
					"type": "string",
					"enum": ["markdown", "json"],
					"description": "Result representation"
				},
				"use_safeguard": {
					"type": "boolean",
					"description": "Apply the content safeguard to results"
				}
			},
			"required": ["query"]
		}`),
		rawOptions: true,
		invoke: func(ctx context.Context, c *quercle.Client, kw map[string]any) (json.RawMessage, error) {
			doc, err := c.RawSearch(ctx, quercle.RawSearchRequest{
				Query:        cast.ToString(kw["query"]),
				Format:       formatArg(kw),
				UseSafeguard: boolArg(kw, "use_safeguard"),
			})
			if err != nil {
				return nil, err
			}
			return doc.Raw, nil
		},
	},
	{
		name:        ToolRawFetch,
		description: "Fetch the raw content of a web page with no AI processing.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"url": {
					"type": "string",
					"description": "The URL to fetch"
				},
				"format": {
					"type": "string",
					"enum": ["markdown", "html"],
					"description": "Content representation"
				},
				"use_safeguard": {
					"type": "boolean",
					"description": "Apply the content safeguard to the page"
				}
			},
			"required": ["url"]
		}`),
		rawOptions: true,
		invoke: func(ctx context.Context, c *quercle.Client, kw map[string]any) (json.RawMessage, error) {
			doc, err := c.RawFetch(ctx, quercle.RawFetchRequest{
				URL:          cast.ToString(kw["url"]),
				Format:       formatArg(kw),
				UseSafeguard: boolArg(kw, "use_safeguard"),
			})
			if err != nil {
				return nil, err
			}
			return doc.Raw, nil
		},
	},
	{
		name:        ToolExtract,
		description: "Extract the chunks of a web page that are relevant to a query.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"url": {
					"type": "string",
					"description": "The URL to extract from"
				},
				"query": {
					"type": "string",
					"description": "What to look for in the page"
				},
				"format": {
					"type": "string",
					"enum": ["markdown", "json"],
					"description": "Chunk representation"
				},
				"use_safeguard": {
					"type": "boolean",
					"description": "Apply the content safeguard to the page"
				}
			},
			"required": ["url", "query"]
		}`),
		rawOptions: true,
		invoke: func(ctx context.Context, c *quercle.Client, kw map[string]any) (json.RawMessage, error) {
			doc, err := c.Extract(ctx, quercle.ExtractRequest{
				URL:          cast.ToString(kw["url"]),
				Query:        cast.ToString(kw["query"]),
				Format:       formatArg(kw),
				UseSafeguard: boolArg(kw, "use_safeguard"),
			})
			if err != nil {
				return nil, err
			}
			return doc.Raw, nil
		},
	},
}

var descriptorsByName = func() map[string]descriptor {
	m := make(map[string]descriptor, len(descriptors))
	for _, d := range descriptors {
		m[d.name] = d
	}
	return m
}()

// Framework kwargs arrive loosely typed (a YAML-configured host may send
// "true" for a bool, or []any for a string list); cast absorbs that.

func stringSliceArg(kw map[string]any, key string) []string {
	v, ok := kw[key]
	if !ok || v == nil {
		return nil
	}
	return cast.ToStringSlice(v)
}

func boolArg(kw map[string]any, key string) *bool {
	v, ok := kw[key]
	if !ok || v == nil {
		return nil
	}
	b := cast.ToBool(v)
	return &b
}

func formatArg(kw map[string]any) quercle.Format {
	return quercle.Format(cast.ToString(kw["format"]))
}
