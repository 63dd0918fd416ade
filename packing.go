package angzarr

import (
	"encoding/json"
	"fmt"
	"reflect"

	pb "github.com/eventframe/angzarr/pb"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
)

// TypeURLPrefix namespaces the synthetic type_url values this module mints
// for domain commands and events. Dispatch only ever checks a suffix
// (TypeURLMatches in helpers.go), so the prefix exists to keep
// human-readable type names from colliding with unrelated Go identifiers,
// not to be parsed by anything.
const TypeURLPrefix = "type.googleapis.com/angzarr."

// PackAny encodes a domain command or event payload into an anypb.Any.
//
// Real protobuf-generated messages are marshaled with proto.Marshal, same as
// the wire types in pb/messages.go. Everything else (the plain,
// JSON-tagged structs that make up a domain model under this framework) is
// marshaled with encoding/json instead; jsonOverProtoCodec (pb/codec.go)
// already depends on that same convention at the gRPC-frame boundary, so
// Any payloads inside a frame follow it too. TypeUrl is derived from the
// Go type name since there is no .proto descriptor to consult.
func PackAny(v any) (*anypb.Any, error) {
	if v == nil {
		return nil, fmt.Errorf("angzarr: cannot pack nil payload")
	}
	typeURL := TypeURLPrefix + typeName(v)
	if msg, ok := v.(proto.Message); ok {
		b, err := proto.Marshal(msg)
		if err != nil {
			return nil, fmt.Errorf("angzarr: marshal %s: %w", typeURL, err)
		}
		return &anypb.Any{TypeUrl: typeURL, Value: b}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("angzarr: marshal %s: %w", typeURL, err)
	}
	return &anypb.Any{TypeUrl: typeURL, Value: b}, nil
}

// UnpackAny decodes an anypb.Any produced by PackAny into v, a pointer to
// the concrete destination type. Reflection-based dispatch (StateRouter,
// AggregateBase, SagaBase, ProcessManagerBase, ProjectorBase) calls this
// once it has matched the Any's TypeUrl suffix to the handler registered
// for that Go type.
func UnpackAny(packed *anypb.Any, v any) error {
	if packed == nil {
		return fmt.Errorf("angzarr: cannot unpack nil Any")
	}
	if msg, ok := v.(proto.Message); ok {
		return proto.Unmarshal(packed.Value, msg)
	}
	return json.Unmarshal(packed.Value, v)
}

// typeName returns the bare Go type name of v (dereferencing one level of
// pointer), used as the discriminator in a synthetic type_url.
func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// PackEvent wraps a single domain event into an EventPage stamped with the
// given Clock, ready to append to an EventBook.
func PackEvent(clock Clock, sequence uint64, event any) (*pb.EventPage, error) {
	packed, err := PackAny(event)
	if err != nil {
		return nil, err
	}
	return &pb.EventPage{
		Sequence:  sequence,
		Event:     packed,
		CreatedAt: clock.Now(),
	}, nil
}

// PackEvents wraps a run of domain events produced by a single command into
// consecutively-sequenced EventPages starting at startSequence.
func PackEvents(clock Clock, startSequence uint64, events ...any) ([]*pb.EventPage, error) {
	pages := make([]*pb.EventPage, 0, len(events))
	for i, event := range events {
		page, err := PackEvent(clock, startSequence+uint64(i), event)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}
