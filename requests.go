package quercle

import (
	"encoding/json"
	"net/url"
)

// Format selects the representation of raw operation results.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// Operation names as they appear on the wire. RawFetch has no JSON
// rendering; RawSearch and Extract have no HTML one.
const (
	OpSearch    = "search"
	OpFetch     = "fetch"
	OpRawSearch = "raw_search"
	OpRawFetch  = "raw_fetch"
	OpExtract   = "extract"
)

var allowedFormats = map[string]map[Format]bool{
	OpRawSearch: {FormatMarkdown: true, FormatJSON: true},
	OpRawFetch:  {FormatMarkdown: true, FormatHTML: true},
	OpExtract:   {FormatMarkdown: true, FormatJSON: true},
}

// SearchRequest asks for an AI-synthesized answer with citations.
type SearchRequest struct {
	Query          string   `json:"query"`
	AllowedDomains []string `json:"allowed_domains,omitempty"`
	BlockedDomains []string `json:"blocked_domains,omitempty"`
}

// FetchRequest fetches a URL and has the remote AI process it per Prompt.
type FetchRequest struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

// RawSearchRequest asks for unsynthesized search results.
type RawSearchRequest struct {
	Query        string `json:"query"`
	Format       Format `json:"format,omitempty"`
	UseSafeguard *bool  `json:"use_safeguard,omitempty"`
}

// RawFetchRequest asks for raw page content with no AI step.
type RawFetchRequest struct {
	URL          string `json:"url"`
	Format       Format `json:"format,omitempty"`
	UseSafeguard *bool  `json:"use_safeguard,omitempty"`
}

// ExtractRequest asks for the page chunks relevant to Query.
type ExtractRequest struct {
	URL          string `json:"url"`
	Query        string `json:"query"`
	Format       Format `json:"format,omitempty"`
	UseSafeguard *bool  `json:"use_safeguard,omitempty"`
}

// Document is the result of a raw operation. Depending on the requested
// format the payload is either plain text or a structured JSON value; Raw
// always holds the undecoded result field.
type Document struct {
	Format Format          `json:"format,omitempty"`
	Raw    json.RawMessage `json:"result"`
}

// Text renders the document for consumers that want a string: a plain text
// result is returned unchanged, a structured one as compact JSON.
func (d *Document) Text() string {
	if d == nil || len(d.Raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(d.Raw, &s); err == nil {
		return s
	}
	return string(d.Raw)
}

// Structured reports whether the result is a JSON document rather than text.
func (d *Document) Structured() bool {
	if d == nil || len(d.Raw) == 0 {
		return false
	}
	var s string
	return json.Unmarshal(d.Raw, &s) != nil
}

func validateRequired(op, field, value string) *Error {
	if value == "" {
		return validationError(op, "%s is required", field)
	}
	return nil
}

func validateURL(op, raw string) *Error {
	if raw == "" {
		return validationError(op, "url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return validationError(op, "url must be absolute http(s): %q", raw)
	}
	return nil
}

func validateFormat(op string, f Format) *Error {
	if f == "" {
		return nil
	}
	if !allowedFormats[op][f] {
		return validationError(op, "format %q is not supported by %s", f, op)
	}
	return nil
}
