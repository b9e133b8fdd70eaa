// Package quercle is a Go client for the Quercle web search, fetch and
// extract API, plus an agent-tool layer built on top of it.
//
// The root package is the HTTP client. It exposes the five remote
// operations in a blocking and a channel-based non-blocking variant:
//
//	client, err := quercle.NewClient(quercle.Config{})
//	answer, err := client.Search(ctx, quercle.SearchRequest{Query: "Go 1.24 release notes"})
//
// The credential is taken from Config.APIKey, falling back to the
// QUERCLE_API_KEY environment variable. Construction fails with
// ErrConfiguration when neither is set.
//
// Search and Fetch return AI-synthesized text. RawSearch, RawFetch and
// Extract return a [Document] whose payload is either plain text or a
// structured JSON value depending on the requested [Format].
//
// Every failure is a [*Error] with a machine-checkable [ErrorCode]; this
// layer never retries and never swallows partial results.
//
// The tools/ subpackage wraps each operation as a named, schema-described
// tool for agent frameworks; config/ loads client settings from YAML files,
// the environment and .env files.
package quercle
