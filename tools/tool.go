package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	quercle "github.com/quercle/quercle-go"
	"github.com/quercle/quercle-go/metrics"
)

// ToolFunc is the invocation signature a host framework executes.
type ToolFunc func(ctx context.Context, args json.RawMessage) (json.RawMessage, error)

// Schema describes a tool for LLM function calling.
type Schema struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"` // JSON Schema
}

// RateLimitConfig caps invocations of a single tool.
type RateLimitConfig struct {
	MaxCalls int           // maximum calls per window
	Window   time.Duration // time window
}

// Metadata is what a host framework needs to register a tool.
type Metadata struct {
	Schema      Schema
	Timeout     time.Duration
	RateLimit   *RateLimitConfig
	Description string
}

// Result is delivered by CallAsync.
type Result struct {
	ToolCallID string
	Name       string
	Output     json.RawMessage
	Err        error
	Duration   time.Duration
}

// Defaults fill in format/use_safeguard for the raw operations when the
// caller leaves them unset. Endpoint defaults are treated as configuration
// constants until the remote contract pins them down.
type Defaults struct {
	Format       quercle.Format
	UseSafeguard *bool
}

// Tool is a named, schema-described callable bound to one remote operation.
// It has no mutable state; dropping the last reference is its entire
// lifecycle.
type Tool struct {
	desc     descriptor
	client   *quercle.Client
	logger   *zap.Logger
	metrics  *metrics.Collector
	rateCfg  *RateLimitConfig
	limiter  *rate.Limiter
	timeout  time.Duration
	defaults Defaults
}

// Name returns the canonical tool name.
func (t *Tool) Name() string { return t.desc.name }

// Description returns the natural-language tool description.
func (t *Tool) Description() string { return t.desc.description }

// Schema returns the machine-checkable parameter schema.
func (t *Tool) Schema() Schema {
	return Schema{
		Name:        t.desc.name,
		Description: t.desc.description,
		Parameters:  t.desc.parameters,
	}
}

// Metadata packages the schema with execution hints for registrars.
func (t *Tool) Metadata() Metadata {
	return Metadata{
		Schema:      t.Schema(),
		Timeout:     t.timeout,
		RateLimit:   t.rateCfg,
		Description: t.desc.description,
	}
}

// Func adapts the tool to the ToolFunc signature.
func (t *Tool) Func() ToolFunc { return t.Call }

// Call validates args and forwards them to the bound client method,
// blocking until the response arrives. The client result is returned
// unchanged: text operations yield a JSON string, raw operations the raw
// result payload.
func (t *Tool) Call(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	start := time.Now()
	out, err := t.call(ctx, args)

	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
		t.logger.Warn("tool call failed",
			zap.String("tool", t.desc.name),
			zap.Error(err))
	} else {
		t.logger.Debug("tool call completed",
			zap.String("tool", t.desc.name),
			zap.Duration("duration", time.Since(start)))
	}
	if t.metrics != nil {
		t.metrics.ObserveToolCall(t.desc.name, outcome)
	}
	return out, err
}

// CallAsync is the non-blocking variant of Call. It delivers exactly one
// Result on a buffered channel and closes it; an abandoned call does not
// leak. Cancelling ctx aborts the in-flight request.
func (t *Tool) CallAsync(ctx context.Context, args json.RawMessage) <-chan Result {
	out := make(chan Result, 1)
	id := uuid.NewString()
	go func() {
		defer close(out)
		start := time.Now()
		res, err := t.Call(ctx, args)
		out <- Result{
			ToolCallID: id,
			Name:       t.desc.name,
			Output:     res,
			Err:        err,
			Duration:   time.Since(start),
		}
	}()
	return out
}

func (t *Tool) call(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	if t.limiter != nil && !t.limiter.Allow() {
		return nil, &quercle.Error{
			Code:    quercle.ErrRateLimit,
			Op:      t.desc.name,
			Message: "rate limit exceeded",
		}
	}

	kw := map[string]any{}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &kw); err != nil {
			return nil, &quercle.Error{
				Code:    quercle.ErrValidation,
				Op:      t.desc.name,
				Message: "arguments must be a JSON object: " + err.Error(),
			}
		}
	}
	t.applyDefaults(kw)

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	return t.desc.invoke(ctx, t.client, kw)
}

func (t *Tool) applyDefaults(kw map[string]any) {
	if !t.desc.rawOptions {
		return
	}
	if t.defaults.Format != "" {
		if _, ok := kw["format"]; !ok {
			kw["format"] = string(t.defaults.Format)
		}
	}
	if t.defaults.UseSafeguard != nil {
		if _, ok := kw["use_safeguard"]; !ok {
			kw["use_safeguard"] = *t.defaults.UseSafeguard
		}
	}
}
