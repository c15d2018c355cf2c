package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrSchema marks a generation payload that decoded as JSON but does not
// satisfy the phase contract.
var ErrSchema = errors.New("artifact: payload does not match schema")

// Status discriminates the two branches of every phase result.
type Status string

const (
	StatusValid   Status = "VALID"
	StatusInvalid Status = "INVALID"
)

func parseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusValid:
		return StatusValid, nil
	case StatusInvalid:
		return StatusInvalid, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrSchema, s)
	}
}

// ReasonCode classifies why a phase declined its input.
type ReasonCode string

const (
	ReasonNonsense      ReasonCode = "NONSENSE"
	ReasonOffTopic      ReasonCode = "OFF_TOPIC"
	ReasonHarmful       ReasonCode = "HARMFUL"
	ReasonTooVague      ReasonCode = "TOO_VAGUE"
	ReasonWrongQuadrant ReasonCode = "WRONG_QUADRANT"
)

// inputReasons are the codes any input-facing phase may return.
var inputReasons = []ReasonCode{ReasonNonsense, ReasonOffTopic, ReasonHarmful, ReasonTooVague}

// answerReasons are the codes answer validation may return.
var answerReasons = []ReasonCode{ReasonNonsense, ReasonOffTopic, ReasonWrongQuadrant}

func parseReason(s string, allowed []ReasonCode) (ReasonCode, error) {
	code := ReasonCode(strings.ToUpper(strings.TrimSpace(s)))
	for _, a := range allowed {
		if code == a {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: unknown reason %q", ErrSchema, s)
}

// Rejection is the INVALID branch shared by every phase. For answer
// validation Guidance carries the feedback shown next to the question.
type Rejection struct {
	Reason   ReasonCode `json:"reason"`
	Guidance string     `json:"guidance"`
}

func newRejection(reason, guidance string, allowed []ReasonCode) (*Rejection, error) {
	code, err := parseReason(reason, allowed)
	if err != nil {
		return nil, err
	}
	guidance = strings.TrimSpace(guidance)
	if guidance == "" {
		return nil, fmt.Errorf("%w: guidance is empty", ErrSchema)
	}
	return &Rejection{Reason: code, Guidance: guidance}, nil
}

// Result is a tagged union: exactly one of Valid or Invalid is set and
// Status names which. Fallback marks an Invalid produced locally after a
// generation failure rather than returned by the service.
type Result[T any] struct {
	Status   Status     `json:"status"`
	Valid    *T         `json:"valid,omitempty"`
	Invalid  *Rejection `json:"invalid,omitempty"`
	Fallback bool       `json:"fallback,omitempty"`
}

// Accept builds the VALID branch.
func Accept[T any](v T) Result[T] {
	return Result[T]{Status: StatusValid, Valid: &v}
}

// Reject builds the INVALID branch.
func Reject[T any](reason ReasonCode, guidance string) Result[T] {
	return Result[T]{Status: StatusInvalid, Invalid: &Rejection{Reason: reason, Guidance: guidance}}
}

// Recover builds the INVALID branch used when generation itself failed.
func Recover[T any](reason ReasonCode, guidance string) Result[T] {
	r := Reject[T](reason, guidance)
	r.Fallback = true
	return r
}

func (r Result[T]) OK() bool { return r.Status == StatusValid && r.Valid != nil }

// Message returns the user-facing guidance of an INVALID result.
func (r Result[T]) Message() string {
	if r.Invalid == nil {
		return ""
	}
	return r.Invalid.Guidance
}

// Reason returns the reason code of an INVALID result.
func (r Result[T]) Reason() ReasonCode {
	if r.Invalid == nil {
		return ""
	}
	return r.Invalid.Reason
}

// Wire is implemented by the flat JSON shapes the generation service emits.
type Wire[T any] interface {
	Result() (Result[T], error)
}

// Decode unmarshals raw into the wire shape W and checks it against the
// phase contract. Any error wraps ErrSchema or a JSON decoding error.
func Decode[T any, W Wire[T]](raw json.RawMessage) (Result[T], error) {
	var w W
	if err := json.Unmarshal(raw, &w); err != nil {
		return Result[T]{}, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return w.Result()
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		key := strings.ToLower(it)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}
