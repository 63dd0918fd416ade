// Package angzarr provides OO-style projector base for event projection.
//
// Projectors subscribe to events from one or more domains and produce
// side effects (logging, database writes, etc.) without emitting commands.
//
// Example usage:
//
//	type OutputProjector struct {
//	    angzarr.ProjectorBase
//	}
//
//	func NewOutputProjector() *OutputProjector {
//	    p := &OutputProjector{}
//	    p.Init("output", []string{"player", "table", "hand"})
//	    p.Projects("PlayerRegistered", p.projectRegistered)
//	    p.Projects("TableCreated", p.projectTableCreated)
//	    return p
//	}
//
//	func (p *OutputProjector) projectRegistered(event *examples.PlayerRegistered) *pb.Projection {
//	    writeLog(fmt.Sprintf("Player registered: %s", event.DisplayName))
//	    return nil // Let base handle default projection
//	}
package angzarr

import (
	"reflect"
	"strings"

	pb "github.com/eventframe/angzarr/pb"
	"google.golang.org/protobuf/types/known/anypb"
)

// projectorOOFunc is an internal type for projection handlers.
type projectorOOFunc func(event *anypb.Any) *pb.Projection

// ProjectorBase provides OO-style projector infrastructure.
//
// Embed this in your projector struct and call Init() to set up the base.
// Then register handlers with Projects().
type ProjectorBase struct {
	name     string
	domains  []string
	registry typeRegistry
	handlers map[string]projectorOOFunc
}

// Init initializes the projector base with name and domain configuration.
//
// Call this in your projector's constructor:
//
//	func NewOutputProjector() *OutputProjector {
//	    p := &OutputProjector{}
//	    p.Init("output", []string{"player", "table", "hand"})
//	    // ... register handlers
//	    return p
//	}
func (p *ProjectorBase) Init(name string, domains []string) {
	p.name = name
	p.domains = domains
	p.handlers = make(map[string]projectorOOFunc)
}

// Name returns the projector's name.
func (p *ProjectorBase) Name() string {
	return p.name
}

// Domains returns the domains this projector subscribes to.
func (p *ProjectorBase) Domains() []string {
	return p.domains
}

// Projects registers an event projection handler for a type_url suffix.
//
// The handler function must have signature: func(*EventType) *pb.Projection
// The handler may return nil to use the default projection.
//
// Example:
//
//	p.Projects("PlayerRegistered", p.projectRegistered)
//
//	func (p *OutputProjector) projectRegistered(event *examples.PlayerRegistered) *pb.Projection {
//	    writeLog(fmt.Sprintf("Player: %s", event.DisplayName))
//	    return nil
//	}
func (p *ProjectorBase) Projects(suffix string, handler any) {
	p.registry.mustRegister(suffix)
	handlerValue := reflect.ValueOf(handler)
	handlerType := handlerValue.Type()

	if handlerType.Kind() != reflect.Func {
		panic("handler must be a function")
	}
	if handlerType.NumIn() != 1 {
		panic("handler must have exactly 1 parameter (event *EventType)")
	}
	if handlerType.NumOut() != 1 {
		panic("handler must return *pb.Projection")
	}

	eventPtrType := handlerType.In(0)
	if eventPtrType.Kind() != reflect.Ptr {
		panic("event parameter must be a pointer")
	}
	eventType := eventPtrType.Elem()

	wrapper := func(event *anypb.Any) *pb.Projection {
		eventPtr := reflect.New(eventType)
		if err := UnpackAny(event, eventPtr.Interface()); err != nil {
			return nil
		}

		results := handlerValue.Call([]reflect.Value{eventPtr})

		if results[0].IsNil() {
			return nil
		}
		return results[0].Interface().(*pb.Projection)
	}

	p.handlers[suffix] = wrapper
}

// Handle processes an EventBook and returns a Projection.
func (p *ProjectorBase) Handle(events *pb.EventBook) (*pb.Projection, error) {
	if events == nil || events.Cover == nil {
		return &pb.Projection{Projector: p.name}, nil
	}

	var lastSeq uint64

	for _, page := range events.Pages {
		event := page.GetEvent()
		if event == nil {
			continue
		}

		lastSeq = page.Sequence

		typeURL := event.TypeUrl

		for suffix, handler := range p.handlers {
			if strings.HasSuffix(typeURL, suffix) {
				if projection := handler(event); projection != nil {
					return projection, nil
				}
				break
			}
		}
	}

	return &pb.Projection{
		Cover:     events.Cover,
		Projector: p.name,
		Sequence:  lastSeq,
	}, nil
}

// Descriptor builds a ComponentDescriptor from registered handlers.
func (p *ProjectorBase) Descriptor() *pb.ComponentDescriptor {
	types := make([]string, 0, len(p.handlers))
	for suffix := range p.handlers {
		types = append(types, suffix)
	}
	inputs := make([]*pb.Target, 0, len(p.domains))
	for _, domain := range p.domains {
		inputs = append(inputs, &pb.Target{Domain: domain, Types: types})
	}
	return &pb.ComponentDescriptor{
		Name:          p.name,
		ComponentType: pb.ComponentProjector,
		Inputs:        inputs,
	}
}

// RunOOProjectorServer runs a gRPC projector server using the OO projector.
func RunOOProjectorServer(name, port string, projector *ProjectorBase) {
	handler := NewProjectorHandler(name, projector.domains...).
		WithHandle(projector.Handle)
	RunProjectorServer(name, port, handler)
}
