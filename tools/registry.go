package tools

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	quercle "github.com/quercle/quercle-go"
	"github.com/quercle/quercle-go/metrics"
)

// Option configures tool construction.
type Option func(*options)

type options struct {
	client      *quercle.Client
	apiKey      string
	baseURL     string
	timeout     time.Duration
	callTimeout time.Duration
	logger      *zap.Logger
	collector   *metrics.Collector
	rateLimit   *RateLimitConfig
	defaults    Defaults
}

// WithClient binds tools to an existing client instead of constructing one.
func WithClient(c *quercle.Client) Option {
	return func(o *options) { o.client = c }
}

// WithAPIKey sets the credential for the constructed client. Without it the
// QUERCLE_API_KEY environment variable applies.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithBaseURL overrides the API host of the constructed client.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithTimeout sets the constructed client's request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithCallTimeout bounds each tool invocation independently of the client
// timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) { o.callTimeout = d }
}

// WithLogger sets a custom zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records request and invocation metrics on the collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) { o.collector = c }
}

// WithRateLimit caps invocations per tool.
func WithRateLimit(maxCalls int, window time.Duration) Option {
	return func(o *options) { o.rateLimit = &RateLimitConfig{MaxCalls: maxCalls, Window: window} }
}

// WithDefaults fills unset format/use_safeguard arguments for the raw
// operations.
func WithDefaults(d Defaults) Option {
	return func(o *options) { o.defaults = d }
}

// New builds the named tool. The name must be one of the five canonical
// names; anything else fails with ErrUnknownTool, before any client is
// constructed. A client is built from the options unless WithClient
// supplies one.
func New(name string, opts ...Option) (*Tool, error) {
	if _, ok := descriptorsByName[name]; !ok {
		return nil, unknownToolError(name)
	}
	o := collect(opts)
	client, err := o.buildClient()
	if err != nil {
		return nil, err
	}
	return o.build(name, client)
}

// NewAll builds all five tools in the fixed canonical order, sharing a
// single client.
func NewAll(opts ...Option) ([]*Tool, error) {
	o := collect(opts)
	client, err := o.buildClient()
	if err != nil {
		return nil, err
	}
	list := make([]*Tool, 0, len(descriptors))
	for _, name := range Names() {
		t, err := o.build(name, client)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, nil
}

// Registrar is the host framework contract for bulk registration.
type Registrar interface {
	Register(name string, fn ToolFunc, meta Metadata) error
}

// RegisterAll builds all five tools and registers each with reg, in
// canonical order.
func RegisterAll(reg Registrar, opts ...Option) error {
	list, err := NewAll(opts...)
	if err != nil {
		return err
	}
	for _, t := range list {
		if err := reg.Register(t.Name(), t.Func(), t.Metadata()); err != nil {
			return fmt.Errorf("register %s: %w", t.Name(), err)
		}
	}
	return nil
}

// Standalone constructors, one per operation.

// NewSearchTool builds the search tool.
func NewSearchTool(opts ...Option) (*Tool, error) { return New(ToolSearch, opts...) }

// NewFetchTool builds the fetch tool.
func NewFetchTool(opts ...Option) (*Tool, error) { return New(ToolFetch, opts...) }

// NewRawSearchTool builds the raw_search tool.
func NewRawSearchTool(opts ...Option) (*Tool, error) { return New(ToolRawSearch, opts...) }

// NewRawFetchTool builds the raw_fetch tool.
func NewRawFetchTool(opts ...Option) (*Tool, error) { return New(ToolRawFetch, opts...) }

// NewExtractTool builds the extract tool.
func NewExtractTool(opts ...Option) (*Tool, error) { return New(ToolExtract, opts...) }

func collect(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

func (o *options) buildClient() (*quercle.Client, error) {
	if o.client != nil {
		return o.client, nil
	}
	return quercle.NewClient(quercle.Config{
		APIKey:  o.apiKey,
		BaseURL: o.baseURL,
		Timeout: o.timeout,
		Logger:  o.logger,
		Metrics: o.collector,
	})
}

func unknownToolError(name string) *quercle.Error {
	return &quercle.Error{
		Code:    quercle.ErrUnknownTool,
		Message: fmt.Sprintf("unknown tool %q, want one of %v", name, Names()),
	}
}

func (o *options) build(name string, client *quercle.Client) (*Tool, error) {
	desc, ok := descriptorsByName[name]
	if !ok {
		return nil, unknownToolError(name)
	}

	t := &Tool{
		desc:     desc,
		client:   client,
		logger:   o.logger.With(zap.String("tool", name)),
		metrics:  o.collector,
		rateCfg:  o.rateLimit,
		timeout:  o.callTimeout,
		defaults: o.defaults,
	}
	if o.rateLimit != nil && o.rateLimit.MaxCalls > 0 && o.rateLimit.Window > 0 {
		t.limiter = rate.NewLimiter(
			rate.Limit(float64(o.rateLimit.MaxCalls)/o.rateLimit.Window.Seconds()),
			o.rateLimit.MaxCalls,
		)
	}
	return t, nil
}
