package llmclient

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrInvalidJSON   = errors.New("invalid json from LLM")
	ErrEmptyResponse = errors.New("empty response from LLM")
)

// Request is one structured-output call. SystemInstruction carries the
// phase contract, UserContent the per-call data.
type Request struct {
	SystemInstruction string
	UserContent       string
	// ModelHint overrides the client's default model when non-empty.
	ModelHint string
}

// LLMClient defines the interface for generation providers.
type LLMClient interface {
	Name() string
	Close() error
	GenerateJSON(ctx context.Context, req Request) (json.RawMessage, error)
}
