// Package angzarr provides event version transformation via UpcasterRouter.
package angzarr

import (
	"strings"

	pb "github.com/eventframe/angzarr/pb"
	"google.golang.org/protobuf/types/known/anypb"
)

// UpcasterHandler transforms an old event Any to a new event Any.
type UpcasterHandler func(old *anypb.Any) *anypb.Any

// UpcasterRouter transforms old event versions to current versions.
//
// Events matching registered handlers are transformed. A transformed event
// is run back through the chain so a V1->V2->V3 sequence of handlers
// converges to a fixed point in one Upcast call. Events without any
// matching handler pass through unchanged.
//
// Example:
//
//	router := NewUpcasterRouter("order").
//	    On("OrderCreatedV1", upcastCreatedV1).
//	    On("OrderShippedV1", upcastShippedV1)
//
//	newEvents := router.Upcast(oldEvents)
type UpcasterRouter struct {
	domain   string
	registry typeRegistry
	handlers []upcasterEntry
}

type upcasterEntry struct {
	suffix  string
	handler UpcasterHandler
}

// NewUpcasterRouter creates a new upcaster router for a domain.
func NewUpcasterRouter(domain string) *UpcasterRouter {
	return &UpcasterRouter{
		domain:   domain,
		handlers: make([]upcasterEntry, 0),
	}
}

// On registers a handler for an old event type_url suffix.
//
// The suffix is matched against the end of the event's type_url.
// For example, suffix "OrderCreatedV1" matches "type.googleapis.com/angzarr.OrderCreatedV1".
func (r *UpcasterRouter) On(suffix string, handler UpcasterHandler) *UpcasterRouter {
	r.registry.mustRegister(suffix)
	r.handlers = append(r.handlers, upcasterEntry{suffix: suffix, handler: handler})
	return r
}

// Upcast transforms a list of events to current versions.
//
// Each event is run through the chain of matching handlers until no
// handler's suffix matches anymore (fixed point), so a migration from V1
// straight to V3 only needs V1->V2 and V2->V3 handlers registered.
func (r *UpcasterRouter) Upcast(events []*pb.EventPage) []*pb.EventPage {
	result := make([]*pb.EventPage, 0, len(events))

	for _, page := range events {
		result = append(result, r.upcastPage(page))
	}

	return result
}

// upcastPage repeatedly applies matching handlers to one page until it
// reaches a fixed point, capped to prevent an accidental handler cycle
// from looping forever.
func (r *UpcasterRouter) upcastPage(page *pb.EventPage) *pb.EventPage {
	event := page.GetEvent()
	if event == nil {
		return page
	}

	const maxHops = 64
	current := event
	changed := false

	for hop := 0; hop < maxHops; hop++ {
		next, matched := r.upcastOnce(current)
		if !matched {
			break
		}
		current = next
		changed = true
	}

	if !changed {
		return page
	}

	return &pb.EventPage{
		Sequence:    page.Sequence,
		Event:       current,
		CreatedAt:   page.CreatedAt,
		Synchronous: page.Synchronous,
	}
}

func (r *UpcasterRouter) upcastOnce(event *anypb.Any) (*anypb.Any, bool) {
	for _, entry := range r.handlers {
		if strings.HasSuffix(event.TypeUrl, entry.suffix) {
			return entry.handler(event), true
		}
	}
	return event, false
}

// Domain returns the domain this upcaster handles.
func (r *UpcasterRouter) Domain() string {
	return r.domain
}
