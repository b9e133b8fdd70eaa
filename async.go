package quercle

import "context"

// TextResult is delivered by the async variants of Search and Fetch.
type TextResult struct {
	Value string
	Err   error
}

// DocumentResult is delivered by the async variants of the raw operations.
type DocumentResult struct {
	Document *Document
	Err      error
}

// The async variants run the corresponding blocking call on its own
// goroutine and deliver exactly one result before closing the channel. The
// channel is buffered, so an abandoned call never leaks its goroutine.
// Cancelling ctx aborts the in-flight request; the result is then an
// ErrTransport and no partial value is ever delivered.

// SearchAsync is the non-blocking variant of Search.
func (c *Client) SearchAsync(ctx context.Context, req SearchRequest) <-chan TextResult {
	out := make(chan TextResult, 1)
	go func() {
		defer close(out)
		v, err := c.Search(ctx, req)
		out <- TextResult{Value: v, Err: err}
	}()
	return out
}

// FetchAsync is the non-blocking variant of Fetch.
func (c *Client) FetchAsync(ctx context.Context, req FetchRequest) <-chan TextResult {
	out := make(chan TextResult, 1)
	go func() {
		defer close(out)
		v, err := c.Fetch(ctx, req)
		out <- TextResult{Value: v, Err: err}
	}()
	return out
}

// RawSearchAsync is the non-blocking variant of RawSearch.
func (c *Client) RawSearchAsync(ctx context.Context, req RawSearchRequest) <-chan DocumentResult {
	out := make(chan DocumentResult, 1)
	go func() {
		defer close(out)
		doc, err := c.RawSearch(ctx, req)
		out <- DocumentResult{Document: doc, Err: err}
	}()
	return out
}

// RawFetchAsync is the non-blocking variant of RawFetch.
func (c *Client) RawFetchAsync(ctx context.Context, req RawFetchRequest) <-chan DocumentResult {
	out := make(chan DocumentResult, 1)
	go func() {
		defer close(out)
		doc, err := c.RawFetch(ctx, req)
		out <- DocumentResult{Document: doc, Err: err}
	}()
	return out
}

// ExtractAsync is the non-blocking variant of Extract.
func (c *Client) ExtractAsync(ctx context.Context, req ExtractRequest) <-chan DocumentResult {
	out := make(chan DocumentResult, 1)
	go func() {
		defer close(out)
		doc, err := c.Extract(ctx, req)
		out <- DocumentResult{Document: doc, Err: err}
	}()
	return out
}
