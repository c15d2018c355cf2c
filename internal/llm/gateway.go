package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	llmclient "balanceboard/internal/llmClient"
)

// JSONConstraint is appended to every system instruction.
const JSONConstraint = "IMPORTANT: Return only one strictly valid JSON object that matches the output schema. No markdown, no code fences, no prose."

// FailureKind classifies a GenerationFailure.
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureEmpty     FailureKind = "empty"
	FailureDecode    FailureKind = "decode"
)

// GenerationFailure is returned when the service could not produce a
// decodable JSON object. It is never a semantic verdict on the input.
type GenerationFailure struct {
	Phase string
	Kind  FailureKind
	Err   error
}

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("llm: %s generation failed (%s): %v", e.Phase, e.Kind, e.Err)
}

func (e *GenerationFailure) Unwrap() error { return e.Err }

// Gateway is the single path to the generation service. It issues exactly
// one request per call and never retries, caches, or holds session state.
type Gateway struct {
	client  LLMClient
	timeout time.Duration
}

type GatewayOption func(*Gateway)

// WithTimeout bounds each call. Zero keeps the caller's deadline only.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.timeout = d }
}

func NewGateway(client LLMClient, opts ...GatewayOption) *Gateway {
	g := &Gateway{client: client}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Name reports the wrapped client's name.
func (g *Gateway) Name() string {
	if g == nil || g.client == nil {
		return ""
	}
	return g.client.Name()
}

func (g *Gateway) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}

// GenerateStructured sends req with the JSON constraint appended and
// returns the payload only if it is a single JSON object.
func (g *Gateway) GenerateStructured(ctx context.Context, req Request) (json.RawMessage, error) {
	phase := PhaseFrom(ctx)
	fail := func(kind FailureKind, err error) error {
		return &GenerationFailure{Phase: phase, Kind: kind, Err: err}
	}
	if g == nil || g.client == nil {
		return nil, fail(FailureTransport, errors.New("gateway has no client"))
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	sys := strings.TrimSpace(req.SystemInstruction)
	if sys != "" {
		sys += "\n\n"
	}
	req.SystemInstruction = sys + JSONConstraint

	raw, err := g.client.GenerateJSON(ctx, req)
	if err != nil {
		if errors.Is(err, llmclient.ErrEmptyResponse) {
			return nil, fail(FailureEmpty, err)
		}
		return nil, fail(FailureTransport, err)
	}
	body := unfence(raw)
	if len(body) == 0 {
		return nil, fail(FailureEmpty, llmclient.ErrEmptyResponse)
	}
	if body[0] != '{' || !json.Valid(body) {
		return nil, fail(FailureDecode, llmclient.ErrInvalidJSON)
	}
	return json.RawMessage(body), nil
}

// unfence strips surrounding whitespace and a ```json fence if present.
func unfence(raw []byte) []byte {
	b := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = b[3:]
	if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
		b = b[nl+1:]
	} else {
		b = bytes.TrimPrefix(b, []byte("json"))
	}
	b = bytes.TrimSpace(b)
	b = bytes.TrimSuffix(b, []byte("```"))
	return bytes.TrimSpace(b)
}
