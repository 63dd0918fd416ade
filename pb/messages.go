// Package pb defines the wire envelope types exchanged between components
// and the Gateway. Field shapes mirror an external Protobuf schema (fixed by
// the Gateway, not by this module); Any and Timestamp fields use the real
// well-known types shipped by google.golang.org/protobuf so that no protoc
// step is required to produce a working binary representation.
package pb

import (
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// UUID is a 16-byte opaque identifier.
type UUID struct {
	Value []byte `json:"value,omitempty"`
}

// DomainDivergence records where an edition diverges from the main timeline
// for a given domain.
type DomainDivergence struct {
	Domain   string `json:"domain,omitempty"`
	Sequence uint64 `json:"sequence,omitempty"`
}

// Edition names a timeline and, optionally, the points at which it diverges
// from the main timeline per domain.
type Edition struct {
	Name        string              `json:"name,omitempty"`
	Divergences []*DomainDivergence `json:"divergences,omitempty"`
}

// Cover is the addressing envelope for every message.
type Cover struct {
	Domain        string   `json:"domain,omitempty"`
	Root          *UUID    `json:"root,omitempty"`
	CorrelationId string   `json:"correlation_id,omitempty"`
	Edition       *Edition `json:"edition,omitempty"`
}

func (c *Cover) GetDomain() string {
	if c == nil {
		return ""
	}
	return c.Domain
}

func (c *Cover) GetRoot() *UUID {
	if c == nil {
		return nil
	}
	return c.Root
}

// EventPage is one sequenced, timestamped, covered event.
type EventPage struct {
	Sequence    uint64                 `json:"sequence"`
	Event       *anypb.Any             `json:"event,omitempty"`
	CreatedAt   *timestamppb.Timestamp `json:"created_at,omitempty"`
	Synchronous bool                   `json:"synchronous,omitempty"`
}

func (p *EventPage) GetEvent() *anypb.Any {
	if p == nil {
		return nil
	}
	return p.Event
}

func (p *EventPage) GetSequence() uint64 {
	if p == nil {
		return 0
	}
	return p.Sequence
}

// MergeStrategy is an opaque transport-level hint left to the Gateway;
// this module never interprets it.
type MergeStrategy string

const (
	MergeUnspecified MergeStrategy = ""
	MergeCommutative MergeStrategy = "MERGE_COMMUTATIVE"
	MergeLastWriter  MergeStrategy = "MERGE_LAST_WRITER"
)

// CommandPage is one sequenced command submitted against an expected
// destination sequence.
type CommandPage struct {
	Sequence      uint64        `json:"sequence"`
	Command       *anypb.Any    `json:"command,omitempty"`
	MergeStrategy MergeStrategy `json:"merge_strategy,omitempty"`
	Synchronous   bool          `json:"synchronous,omitempty"`
}

func (p *CommandPage) GetCommand() *anypb.Any {
	if p == nil {
		return nil
	}
	return p.Command
}

// Snapshot is an optional prefix of an EventBook, replacing events with
// sequence <= AtSequence.
type Snapshot struct {
	State      *anypb.Any `json:"state,omitempty"`
	AtSequence uint64     `json:"at_sequence"`
}

// EventBook is the atomic, transportable unit of events for one aggregate
// root.
type EventBook struct {
	Cover    *Cover       `json:"cover,omitempty"`
	Snapshot *Snapshot    `json:"snapshot,omitempty"`
	Pages    []*EventPage `json:"pages,omitempty"`

	// NextSequence is a gateway-computed convenience value: len(Pages) plus
	// whatever prefix a snapshot already accounts for. Populated on load.
	NextSequence uint64 `json:"next_sequence,omitempty"`
}

func (b *EventBook) GetCover() *Cover {
	if b == nil {
		return nil
	}
	return b.Cover
}

func (b *EventBook) GetPages() []*EventPage {
	if b == nil {
		return nil
	}
	return b.Pages
}

// CommandBook is the atomic, transportable unit of commands for one
// aggregate root.
type CommandBook struct {
	Cover *Cover         `json:"cover,omitempty"`
	Pages []*CommandPage `json:"pages,omitempty"`
}

func (b *CommandBook) GetCover() *Cover {
	if b == nil {
		return nil
	}
	return b.Cover
}

// Projection is a projector's output for a set of observed events.
type Projection struct {
	Cover     *Cover     `json:"cover,omitempty"`
	Projector string     `json:"projector,omitempty"`
	Sequence  uint64     `json:"sequence"`
	Payload   *anypb.Any `json:"payload,omitempty"`
	// Metadata carries free-form, non-schema-fixed key/value context
	// (e.g. from structpb-shaped values) that a projector wants to attach
	// without minting a dedicated payload type.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ComponentType enumerates the four well-typed component kinds plus
// upcaster.
type ComponentType string

const (
	ComponentAggregate      ComponentType = "aggregate"
	ComponentSaga           ComponentType = "saga"
	ComponentProcessManager ComponentType = "process_manager"
	ComponentProjector      ComponentType = "projector"
	ComponentUpcaster       ComponentType = "upcaster"
)

// Target names a domain and the command or event type short-names a
// component produces or consumes there.
type Target struct {
	Domain string   `json:"domain,omitempty"`
	Types  []string `json:"types,omitempty"`
}

// ComponentDescriptor is a component's static, startup-frozen subscription
// and output metadata, published for topology discovery.
type ComponentDescriptor struct {
	Name          string        `json:"name,omitempty"`
	ComponentType ComponentType `json:"component_type,omitempty"`
	Inputs        []*Target     `json:"inputs,omitempty"`
	Outputs       []*Target     `json:"outputs,omitempty"`
}

// RejectionNotification is the well-known Notification payload delivered
// when a downstream command was refused.
type RejectionNotification struct {
	IssuerName          string       `json:"issuer_name,omitempty"`
	IssuerType          string       `json:"issuer_type,omitempty"`
	SourceEventSequence uint64       `json:"source_event_sequence,omitempty"`
	RejectionReason     string       `json:"rejection_reason,omitempty"`
	RejectedCommand     *CommandBook `json:"rejected_command,omitempty"`
	SourceAggregate     *Cover       `json:"source_aggregate,omitempty"`
}

// Notification is an opaque envelope; Payload.TypeUrl identifies the inner
// shape (RejectionNotification being the only one this module interprets).
type Notification struct {
	Payload *anypb.Any `json:"payload,omitempty"`
}

// ContextualCommand pairs a command with the prior EventBook of its target
// aggregate, as delivered to Aggregate.Handle.
type ContextualCommand struct {
	Command *CommandBook `json:"command,omitempty"`
	Events  *EventBook   `json:"events,omitempty"`
}

// RevocationResponse instructs the Gateway how to treat a rejected
// downstream effect when no custom compensation handler matched.
type RevocationResponse struct {
	EmitSystemRevocation  bool   `json:"emit_system_revocation,omitempty"`
	SendToDeadLetterQueue bool   `json:"send_to_dead_letter_queue,omitempty"`
	Escalate              bool   `json:"escalate,omitempty"`
	Abort                 bool   `json:"abort,omitempty"`
	Reason                string `json:"reason,omitempty"`
}

// isBusinessResponseResult marks the two possible shapes of a
// BusinessResponse, following the same oneof-interface idiom real
// protoc-gen-go output uses.
type isBusinessResponseResult interface{ isBusinessResponseResult() }

type BusinessResponse_Events struct{ Events *EventBook }

func (*BusinessResponse_Events) isBusinessResponseResult() {}

type BusinessResponse_Revocation struct{ Revocation *RevocationResponse }

func (*BusinessResponse_Revocation) isBusinessResponseResult() {}

// BusinessResponse is returned by Aggregate.Handle and
// Aggregate.HandleRevocation: either new events, or a revocation decision.
type BusinessResponse struct {
	Result isBusinessResponseResult `json:"-"`
	// JSON transport fields (one of, populated by the codec).
	Events     *EventBook          `json:"events,omitempty"`
	Revocation *RevocationResponse `json:"revocation,omitempty"`
}

func (r *BusinessResponse) GetEvents() *EventBook {
	if r == nil {
		return nil
	}
	if e, ok := r.Result.(*BusinessResponse_Events); ok {
		return e.Events
	}
	return r.Events
}

func (r *BusinessResponse) GetRevocation() *RevocationResponse {
	if r == nil {
		return nil
	}
	if rv, ok := r.Result.(*BusinessResponse_Revocation); ok {
		return rv.Revocation
	}
	return r.Revocation
}

// NewEventsResponse builds a BusinessResponse carrying new events.
func NewEventsResponse(events *EventBook) *BusinessResponse {
	return &BusinessResponse{Result: &BusinessResponse_Events{Events: events}, Events: events}
}

// NewRevocationResponse builds a BusinessResponse carrying a revocation
// decision.
func NewRevocationResponse(rev *RevocationResponse) *BusinessResponse {
	return &BusinessResponse{Result: &BusinessResponse_Revocation{Revocation: rev}, Revocation: rev}
}

// ErrorDetail is the client-visible shape of a failed command per spec
// {code, message, retryable}.
type ErrorDetail struct {
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// CommandResponse is returned by the aggregate coordinator surface: either
// the resulting events, or a single error.
type CommandResponse struct {
	Events *EventBook   `json:"events,omitempty"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// SyncMode selects how long HandleSync waits before returning.
type SyncMode string

const (
	SyncModeAccepted  SyncMode = "ACCEPTED"
	SyncModeCommitted SyncMode = "COMMITTED"
	SyncModeProjected SyncMode = "PROJECTED"
)

// SyncCommandBook wraps a command submission with a requested sync mode.
type SyncCommandBook struct {
	Command  *CommandBook `json:"command,omitempty"`
	SyncMode SyncMode     `json:"sync_mode,omitempty"`
}

// DryRunRequest executes a command against supplied events without
// persistence.
type DryRunRequest struct {
	Command *CommandBook `json:"command,omitempty"`
	Events  *EventBook   `json:"events,omitempty"`
}

// SequenceRange selects a half-open (or fully open-ended) window of
// sequences for a Query.
type SequenceRange struct {
	Lower uint64  `json:"lower"`
	Upper *uint64 `json:"upper,omitempty"`
}

type isTemporalQueryPointInTime interface{ isTemporalQueryPointInTime() }

type TemporalQuery_AsOfSequence struct{ AsOfSequence uint64 }

func (*TemporalQuery_AsOfSequence) isTemporalQueryPointInTime() {}

type TemporalQuery_AsOfTime struct{ AsOfTime *timestamppb.Timestamp }

func (*TemporalQuery_AsOfTime) isTemporalQueryPointInTime() {}

// TemporalQuery selects events as-of a point in time, either by sequence
// or by wall-clock timestamp.
type TemporalQuery struct {
	PointInTime  isTemporalQueryPointInTime `json:"-"`
	AsOfSequence *uint64                    `json:"as_of_sequence,omitempty"`
	AsOfTime     *timestamppb.Timestamp     `json:"as_of_time,omitempty"`
}

type isQuerySelection interface{ isQuerySelection() }

type Query_Range struct{ Range *SequenceRange }

func (*Query_Range) isQuerySelection() {}

type Query_Temporal struct{ Temporal *TemporalQuery }

func (*Query_Temporal) isQuerySelection() {}

// Query selects events for one Cover by range or by temporal point.
type Query struct {
	Cover     *Cover           `json:"cover,omitempty"`
	Selection isQuerySelection `json:"-"`
	Range     *SequenceRange   `json:"range,omitempty"`
	Temporal  *TemporalQuery   `json:"temporal,omitempty"`
}

func (q *Query) GetCover() *Cover {
	if q == nil {
		return nil
	}
	return q.Cover
}

// Empty is a zero-field request/response for no-argument RPCs.
type Empty struct{}

// SagaPrepareRequest/Response implement the Saga two-phase Prepare step.
type SagaPrepareRequest struct {
	Source *EventBook `json:"source,omitempty"`
}

type SagaPrepareResponse struct {
	Destinations []*Cover `json:"destinations,omitempty"`
}

// SagaExecuteRequest/SagaResponse implement the Saga two-phase Execute step.
type SagaExecuteRequest struct {
	Source       *EventBook   `json:"source,omitempty"`
	Destinations []*EventBook `json:"destinations,omitempty"`
}

type SagaResponse struct {
	Commands []*CommandBook `json:"commands,omitempty"`
}

// ProcessManagerPrepareRequest/Response implement the PM two-phase Prepare
// step.
type ProcessManagerPrepareRequest struct {
	Trigger      *EventBook `json:"trigger,omitempty"`
	ProcessState *EventBook `json:"process_state,omitempty"`
}

type ProcessManagerPrepareResponse struct {
	Destinations []*Cover `json:"destinations,omitempty"`
}

// ProcessManagerHandleRequest/Response implement the PM two-phase
// Handle step.
type ProcessManagerHandleRequest struct {
	Trigger      *EventBook   `json:"trigger,omitempty"`
	ProcessState *EventBook   `json:"process_state,omitempty"`
	Destinations []*EventBook `json:"destinations,omitempty"`
}

type ProcessManagerHandleResponse struct {
	Commands      []*CommandBook `json:"commands,omitempty"`
	ProcessEvents *EventBook     `json:"process_events,omitempty"`
}

// EventPageList is the Upcaster.Handle request/response shape.
type EventPageList struct {
	Pages []*EventPage `json:"pages,omitempty"`
}

// ReplayRequest/Response exercise the State Builder directly, independent
// of any live command.
type ReplayRequest struct {
	Pages        []*EventPage `json:"pages,omitempty"`
	BaseSnapshot *Snapshot    `json:"base_snapshot,omitempty"`
}

type ReplayResponse struct {
	State *anypb.Any `json:"state,omitempty"`
}

// SpeculateProjectorRequest/SpeculateSagaRequest/SpeculatePmRequest drive
// the SpeculativeService's what-if entry points.
type SpeculateProjectorRequest struct {
	Events *EventBook `json:"events,omitempty"`
}

type SpeculateSagaRequest struct {
	Source       *EventBook   `json:"source,omitempty"`
	Destinations []*EventBook `json:"destinations,omitempty"`
}

type SpeculatePmRequest struct {
	Trigger      *EventBook   `json:"trigger,omitempty"`
	ProcessState *EventBook   `json:"process_state,omitempty"`
	Destinations []*EventBook `json:"destinations,omitempty"`
}
