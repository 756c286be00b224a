// Package rpc defines the ReviewService wire contract: a JSON codec, request
// and response messages, the gRPC service descriptor and a client stub.
// Messages are plain Go structs; no protobuf code generation is involved.
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content subtype for JSON-encoded messages.
const CodecName = "json"

func init() {
	encoding.RegisterCodec(JSONCodec{})
}

// JSONCodec is a JSON-based gRPC codec.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (JSONCodec) Name() string { return CodecName }

// Metadata keys understood by the server.
const (
	RequestIDKey = "x-request-id"
	CallerIDKey  = "x-caller-id"
)
