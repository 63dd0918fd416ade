package angzarr

import (
	"context"

	pb "github.com/eventframe/angzarr/pb"
)

// DescriptorService answers GetDescriptor for any component server by
// delegating to the router that already derives the descriptor from its
// own registrations (CommandRouter.Descriptor, EventRouter.Descriptor).
// Embed it in a concrete *Server so it satisfies the GetDescriptor leg of
// AggregateServer/SagaServer/ProcessManagerServer/ProjectorServer/
// UpcasterServer without repeating the same three lines in every component.
type DescriptorService struct {
	descriptor func() *pb.ComponentDescriptor
}

// NewDescriptorService wraps a descriptor func, typically a router's
// Descriptor method value (e.g. router.Descriptor for a CommandRouter, or
// func() *pb.ComponentDescriptor { return router.Descriptor(pb.ComponentSaga) }
// for an EventRouter, which needs its component type supplied).
func NewDescriptorService(descriptor func() *pb.ComponentDescriptor) DescriptorService {
	return DescriptorService{descriptor: descriptor}
}

// GetDescriptor implements the GetDescriptor RPC shared by every component
// server interface.
func (d DescriptorService) GetDescriptor(ctx context.Context, req *pb.Empty) (*pb.ComponentDescriptor, error) {
	if d.descriptor == nil {
		return &pb.ComponentDescriptor{}, nil
	}
	return d.descriptor(), nil
}

// DescriptorOption adapts a DescriptorService to the ServerOptions.Descriptor
// health-gating hook (server.go): the health server reports NOT_SERVING until
// the descriptor function returns non-nil, i.e. until the router backing it
// has been fully constructed.
func DescriptorOption(d DescriptorService) func() *pb.ComponentDescriptor {
	return d.descriptor
}
