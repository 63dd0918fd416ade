package angzarr

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	pb "github.com/eventframe/angzarr/pb"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Well-known constants shared across covers, editions, and dispatch.
const (
	UnknownDomain          = "unknown"
	WildcardDomain         = "*"
	DefaultEdition         = "angzarr"
	MetaAngzarrDomain      = "_angzarr"
	ProjectionDomainPrefix = "projection:"
	CorrelationIDHeader    = "x-correlation-id"
)

// Cover accessors - work with any type that has a Cover field

// CoverOf extracts the Cover from various wire types.
func CoverOf(v interface{}) *pb.Cover {
	switch t := v.(type) {
	case *pb.EventBook:
		return t.GetCover()
	case *pb.CommandBook:
		return t.GetCover()
	case *pb.Query:
		return t.GetCover()
	case *pb.Cover:
		return t
	default:
		return nil
	}
}

// Domain returns the domain from a Cover-bearing type, or UnknownDomain if missing.
func Domain(v interface{}) string {
	c := CoverOf(v)
	if c == nil || c.Domain == "" {
		return UnknownDomain
	}
	return c.Domain
}

// CorrelationID returns the correlation_id from a Cover-bearing type, or empty if missing.
func CorrelationID(v interface{}) string {
	c := CoverOf(v)
	if c == nil {
		return ""
	}
	return c.CorrelationId
}

// HasCorrelationID returns true if the correlation_id is present and non-empty.
func HasCorrelationID(v interface{}) bool {
	return CorrelationID(v) != ""
}

// RootUUID extracts the root UUID from a Cover-bearing type.
func RootUUID(v interface{}) (uuid.UUID, bool) {
	c := CoverOf(v)
	if c == nil || c.Root == nil {
		return uuid.UUID{}, false
	}
	u, err := uuid.FromBytes(c.Root.Value)
	if err != nil {
		return uuid.UUID{}, false
	}
	return u, true
}

// RootIDHex returns the root UUID as a hex string, or empty if missing.
func RootIDHex(v interface{}) string {
	c := CoverOf(v)
	if c == nil || c.Root == nil {
		return ""
	}
	return hex.EncodeToString(c.Root.Value)
}

// Edition returns the edition name from a Cover-bearing type, defaulting to DefaultEdition.
func Edition(v interface{}) string {
	c := CoverOf(v)
	if c == nil || c.Edition == nil || c.Edition.Name == "" {
		return DefaultEdition
	}
	return c.Edition.Name
}

// EditionOpt returns the edition name as a pointer, nil if not set.
func EditionOpt(v interface{}) *string {
	c := CoverOf(v)
	if c == nil || c.Edition == nil || c.Edition.Name == "" {
		return nil
	}
	return &c.Edition.Name
}

// RoutingKey computes the bus routing key for a Cover-bearing type.
func RoutingKey(v interface{}) string {
	return Domain(v)
}

// CacheKey generates a cache key based on domain + root.
func CacheKey(v interface{}) string {
	return fmt.Sprintf("%s:%s", Domain(v), RootIDHex(v))
}

// UUID conversion

// UUIDToProto converts a uuid.UUID to a wire UUID.
func UUIDToProto(u uuid.UUID) *pb.UUID {
	return &pb.UUID{Value: u[:]}
}

// ProtoToUUID converts a wire UUID to uuid.UUID.
func ProtoToUUID(u *pb.UUID) (uuid.UUID, error) {
	if u == nil {
		return uuid.UUID{}, fmt.Errorf("nil UUID")
	}
	return uuid.FromBytes(u.Value)
}

// BytesToUUIDText converts bytes to standard UUID text format.
// If bytes are exactly 16 bytes, formats as UUID (8-4-4-4-12).
// Otherwise returns hex encoding of the bytes.
func BytesToUUIDText(b []byte) string {
	if len(b) == 16 {
		u, err := uuid.FromBytes(b)
		if err == nil {
			return u.String()
		}
	}
	return hex.EncodeToString(b)
}

// ProtoUUIDToText converts a wire UUID to text format.
func ProtoUUIDToText(u *pb.UUID) string {
	if u == nil {
		return ""
	}
	return BytesToUUIDText(u.Value)
}

// RootIDText returns the root UUID as standard text format (8-4-4-4-12), or empty if missing.
func RootIDText(v interface{}) string {
	c := CoverOf(v)
	if c == nil || c.Root == nil {
		return ""
	}
	return BytesToUUIDText(c.Root.Value)
}

// Edition helpers

// MainTimeline returns an Edition representing the main timeline.
func MainTimeline() *pb.Edition {
	return &pb.Edition{Name: DefaultEdition}
}

// ImplicitEdition creates an edition with the given name but no divergences.
func ImplicitEdition(name string) *pb.Edition {
	return &pb.Edition{Name: name}
}

// ExplicitEdition creates an edition with divergence points.
func ExplicitEdition(name string, divergences []*pb.DomainDivergence) *pb.Edition {
	return &pb.Edition{Name: name, Divergences: divergences}
}

// IsMainTimeline checks if an edition represents the main timeline.
func IsMainTimeline(e *pb.Edition) bool {
	return e == nil || e.Name == "" || e.Name == DefaultEdition
}

// DivergenceFor returns the divergence sequence for a domain, or -1 if not found.
func DivergenceFor(e *pb.Edition, domain string) int64 {
	if e == nil {
		return -1
	}
	for _, d := range e.Divergences {
		if d.Domain == domain {
			return int64(d.Sequence)
		}
	}
	return -1
}

// EventBook helpers

// NextSequence returns the next sequence number from an EventBook.
// The Gateway computes this value on load.
func NextSequence(book *pb.EventBook) uint64 {
	if book == nil {
		return 0
	}
	return book.NextSequence
}

// EventPages returns the event pages from an EventBook, or nil if missing.
func EventPages(book *pb.EventBook) []*pb.EventPage {
	if book == nil {
		return nil
	}
	return book.Pages
}

// CommandBook helpers

// CommandPages returns the command pages from a CommandBook, or nil if missing.
func CommandPages(book *pb.CommandBook) []*pb.CommandPage {
	if book == nil {
		return nil
	}
	return book.Pages
}

// CommandResponse helpers

// EventsFromResponse extracts the event pages from a CommandResponse.
func EventsFromResponse(resp *pb.CommandResponse) []*pb.EventPage {
	if resp == nil || resp.Events == nil {
		return nil
	}
	return resp.Events.Pages
}

// Type URL helpers

// TypeURL constructs a synthetic type URL for a domain type name, in the
// same namespace PackAny mints (packing.go).
func TypeURL(typeName string) string {
	return TypeURLPrefix + typeName
}

// TypeNameFromURL extracts the bare type name from a type URL.
func TypeNameFromURL(typeURL string) string {
	if idx := strings.LastIndex(typeURL, "."); idx >= 0 {
		return typeURL[idx+1:]
	}
	if idx := strings.LastIndex(typeURL, "/"); idx >= 0 {
		return typeURL[idx+1:]
	}
	return typeURL
}

// TypeURLMatches checks if a type URL ends with the given suffix.
func TypeURLMatches(typeURL, suffix string) bool {
	return strings.HasSuffix(typeURL, suffix)
}

// Timestamp helpers

// Now returns the current time as a wire Timestamp.
func Now() *timestamppb.Timestamp {
	return timestamppb.Now()
}

// ParseTimestamp parses an RFC3339 timestamp string.
func ParseTimestamp(rfc3339 string) (*timestamppb.Timestamp, error) {
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return nil, InvalidTimestampError(err.Error())
	}
	return timestamppb.New(t), nil
}

// Event decoding

// DecodeEvent unpacks an event page's payload into v if the type URL
// matches typeSuffix. Returns false (without error) on a suffix mismatch so
// callers can probe a page against several candidate types in sequence.
func DecodeEvent(page *pb.EventPage, typeSuffix string, v any) (bool, error) {
	if page == nil || page.Event == nil {
		return false, nil
	}
	if !TypeURLMatches(page.Event.TypeUrl, typeSuffix) {
		return false, nil
	}
	if err := UnpackAny(page.Event, v); err != nil {
		return false, err
	}
	return true, nil
}

// NewCover creates a new Cover with the given parameters.
func NewCover(domain string, root uuid.UUID, correlationID string) *pb.Cover {
	return &pb.Cover{
		Domain:        domain,
		Root:          UUIDToProto(root),
		CorrelationId: correlationID,
	}
}

// NewCoverWithEdition creates a Cover with an edition.
func NewCoverWithEdition(domain string, root uuid.UUID, correlationID string, edition *pb.Edition) *pb.Cover {
	return &pb.Cover{
		Domain:        domain,
		Root:          UUIDToProto(root),
		CorrelationId: correlationID,
		Edition:       edition,
	}
}

// NewCommandPage creates a command page from a sequence and packed payload.
func NewCommandPage(sequence uint64, command *anypb.Any) *pb.CommandPage {
	return &pb.CommandPage{
		Sequence: sequence,
		Command:  command,
	}
}

// NewCommandBook creates a CommandBook with the given cover and pages.
func NewCommandBook(cover *pb.Cover, pages ...*pb.CommandPage) *pb.CommandBook {
	return &pb.CommandBook{
		Cover: cover,
		Pages: pages,
	}
}

// NewQueryWithRange creates a Query selecting a sequence range.
func NewQueryWithRange(cover *pb.Cover, lower uint64, upper *uint64) *pb.Query {
	r := &pb.SequenceRange{Lower: lower, Upper: upper}
	return &pb.Query{
		Cover:     cover,
		Selection: &pb.Query_Range{Range: r},
		Range:     r,
	}
}

// NewQueryWithTemporal creates a Query selecting a temporal point.
func NewQueryWithTemporal(cover *pb.Cover, temporal *pb.TemporalQuery) *pb.Query {
	return &pb.Query{
		Cover:     cover,
		Selection: &pb.Query_Temporal{Temporal: temporal},
		Temporal:  temporal,
	}
}

// TemporalSelectionBySequence builds a TemporalQuery as-of a sequence.
func TemporalSelectionBySequence(seq uint64) *pb.TemporalQuery {
	return &pb.TemporalQuery{
		PointInTime:  &pb.TemporalQuery_AsOfSequence{AsOfSequence: seq},
		AsOfSequence: &seq,
	}
}

// TemporalSelectionByTime builds a TemporalQuery as-of a timestamp.
func TemporalSelectionByTime(ts *timestamppb.Timestamp) *pb.TemporalQuery {
	return &pb.TemporalQuery{
		PointInTime: &pb.TemporalQuery_AsOfTime{AsOfTime: ts},
		AsOfTime:    ts,
	}
}
