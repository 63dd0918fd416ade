package pb

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/proto"
)

// codecName deliberately matches the name grpc-go's generated stubs and its
// own health/reflection services request ("proto"). Registering under this
// name overrides the default codec process-wide, which is what lets one
// grpc.Server carry both the real proto.Message health-check traffic and
// this module's own hand-written message structs on the same connection.
const codecName = "proto"

// jsonOverProtoCodec marshals genuine proto.Message values (grpc-go's own
// health and reflection messages) with the real protobuf wire format, and
// falls back to JSON for everything else — this module's hand-written pb
// structs, which have no compiled .proto descriptor available in this
// environment.
type jsonOverProtoCodec struct{}

func (jsonOverProtoCodec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return proto.Marshal(m)
	}
	return json.Marshal(v)
}

func (jsonOverProtoCodec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return proto.Unmarshal(data, m)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func (jsonOverProtoCodec) Name() string { return codecName }

// RegisterCodec installs the hybrid codec as the process default. Call this
// once before constructing any grpc.Server or grpc.ClientConn.
func RegisterCodec() {
	encoding.RegisterCodec(jsonOverProtoCodec{})
}

// MustMarshalJSON is a small helper for packing domain payloads into
// anypb.Any.Value without a compiled protobuf descriptor.
func MustMarshalJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("pb: marshal payload: %v", err))
	}
	return b
}
