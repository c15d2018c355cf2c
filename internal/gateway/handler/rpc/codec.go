package rpc

import (
	"encoding/json"
	"fmt"
)

// jsonCodec lets connect carry plain Go structs. It registers under the
// name connect uses for application/json, so curl and browsers can call
// the service directly.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}
