package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts LLM providers for resume parsing and text generation.
type Client interface {
	// ExtractResume turns raw resume text into a structured JSON record.
	ExtractResume(ctx context.Context, input ExtractInput) (json.RawMessage, error)
	// Complete runs a free-form completion, used for cover letters.
	Complete(ctx context.Context, input CompleteInput) (string, error)
}

// ExtractInput captures the inputs for a resume parse request.
type ExtractInput struct {
	ResumeText    string
	PromptVersion string
}

// CompleteInput captures the inputs for a free-form completion.
type CompleteInput struct {
	System string
	Prompt string
}

type fixJSONKey struct{}

// WithFixJSON returns a context signaling a fix-JSON retry with the given raw output.
func WithFixJSON(ctx context.Context, raw string) context.Context {
	return context.WithValue(ctx, fixJSONKey{}, raw)
}

// FixJSONFromContext returns the raw JSON to repair, if any.
func FixJSONFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(fixJSONKey{})
	raw, ok := val.(string)
	return raw, ok
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// ExtractResume returns ErrNotImplemented.
func (PlaceholderClient) ExtractResume(ctx context.Context, input ExtractInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotImplemented
}

// Complete returns ErrNotImplemented.
func (PlaceholderClient) Complete(ctx context.Context, input CompleteInput) (string, error) {
	_ = ctx
	_ = input
	return "", ErrNotImplemented
}
