package angzarr

import (
	"context"
	"errors"

	pb "github.com/eventframe/angzarr/pb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CommandRejectedError indicates a command was rejected due to business rule violation.
// Maps to gRPC FAILED_PRECONDITION.
type CommandRejectedError struct {
	Message string
}

func (e CommandRejectedError) Error() string {
	return e.Message
}

// NewCommandRejectedError creates a new command rejected error.
func NewCommandRejectedError(msg string) error {
	return CommandRejectedError{Message: msg}
}

// toStatusError maps a domain error to a gRPC status, favoring the richer
// ClientError taxonomy (errors.go) over a flat InvalidArgument default.
func toStatusError(err error) error {
	var rejected CommandRejectedError
	if errors.As(err, &rejected) {
		return status.Error(codes.FailedPrecondition, rejected.Message)
	}
	if ce := AsClientError(err); ce != nil {
		return status.Error(ce.Code(), ce.Error())
	}
	return status.Error(codes.InvalidArgument, err.Error())
}

// ============================================================================
// Aggregate
// ============================================================================

// AggregateHandler wraps a CommandRouter for the gRPC Aggregate service.
type AggregateHandler[S any] struct {
	router *CommandRouter[S]
}

// NewAggregateHandler creates a new aggregate handler with the given router.
func NewAggregateHandler[S any](router *CommandRouter[S]) *AggregateHandler[S] {
	return &AggregateHandler[S]{router: router}
}

// Handle processes a contextual command.
func (h *AggregateHandler[S]) Handle(ctx context.Context, req *pb.ContextualCommand) (*pb.BusinessResponse, error) {
	resp, err := h.router.Dispatch(req)
	if err != nil {
		return nil, toStatusError(err)
	}
	return resp, nil
}

// HandleRevocation handles a standalone compensation Notification.
func (h *AggregateHandler[S]) HandleRevocation(ctx context.Context, req *pb.Notification) (*pb.RevocationResponse, error) {
	resp, err := h.router.DispatchRevocation(req)
	if err != nil {
		return nil, toStatusError(err)
	}
	return resp, nil
}

// GetDescriptor reports the aggregate's registered command types.
func (h *AggregateHandler[S]) GetDescriptor(ctx context.Context, req *pb.Empty) (*pb.ComponentDescriptor, error) {
	return h.router.Descriptor(), nil
}

// RegisterAggregateHandler returns a ServiceRegistrar that registers an aggregate handler.
func RegisterAggregateHandler[S any](router *CommandRouter[S]) ServiceRegistrar {
	return func(server *grpc.Server) {
		pb.RegisterAggregateServer(server, NewAggregateHandler(router))
	}
}

// RunAggregateServer starts a gRPC server for an aggregate.
func RunAggregateServer[S any](domain, defaultPort string, router *CommandRouter[S]) {
	RunServer(RegisterAggregateHandler(router), ServerOptions{
		ServiceName:      "Aggregate",
		Domain:           domain,
		DefaultPort:      defaultPort,
		EnableReflection: true,
		Descriptor:       func() *pb.ComponentDescriptor { return router.Descriptor() },
	})
}

// OOAggregate interface for OO-style aggregates. Implemented by types that
// embed AggregateBase.
type OOAggregate[S any] interface {
	Domain() string
	Handle(request *pb.ContextualCommand) (*pb.BusinessResponse, error)
	HandleRevocation(notification *pb.Notification) (*pb.RevocationResponse, error)
	Descriptor() *pb.ComponentDescriptor
}

// OOAggregateFactory creates a new OO aggregate instance with prior events.
type OOAggregateFactory[S any, A OOAggregate[S]] func(events *pb.EventBook) A

// OOAggregateHandler wraps an OO-style aggregate for the gRPC Aggregate service.
//
// Unlike AggregateHandler, this creates a new aggregate instance per
// request, seeded with the prior events carried on the request itself.
type OOAggregateHandler[S any, A OOAggregate[S]] struct {
	domain  string
	factory OOAggregateFactory[S, A]
}

// NewOOAggregateHandler creates a new OO aggregate handler.
func NewOOAggregateHandler[S any, A OOAggregate[S]](domain string, factory OOAggregateFactory[S, A]) *OOAggregateHandler[S, A] {
	return &OOAggregateHandler[S, A]{domain: domain, factory: factory}
}

// Handle processes a contextual command against a freshly reconstructed aggregate.
func (h *OOAggregateHandler[S, A]) Handle(ctx context.Context, req *pb.ContextualCommand) (*pb.BusinessResponse, error) {
	agg := h.factory(req.Events)
	resp, err := agg.Handle(req)
	if err != nil {
		return nil, toStatusError(err)
	}
	return resp, nil
}

// HandleRevocation handles a standalone compensation Notification.
func (h *OOAggregateHandler[S, A]) HandleRevocation(ctx context.Context, req *pb.Notification) (*pb.RevocationResponse, error) {
	agg := h.factory(nil)
	resp, err := agg.HandleRevocation(req)
	if err != nil {
		return nil, toStatusError(err)
	}
	return resp, nil
}

// GetDescriptor reports the aggregate's registered command types.
func (h *OOAggregateHandler[S, A]) GetDescriptor(ctx context.Context, req *pb.Empty) (*pb.ComponentDescriptor, error) {
	return h.factory(nil).Descriptor(), nil
}

// RegisterOOAggregateHandler returns a ServiceRegistrar that registers an OO aggregate handler.
func RegisterOOAggregateHandler[S any, A OOAggregate[S]](domain string, factory OOAggregateFactory[S, A]) ServiceRegistrar {
	return func(server *grpc.Server) {
		pb.RegisterAggregateServer(server, NewOOAggregateHandler(domain, factory))
	}
}

// RunOOAggregateServer starts a gRPC server for an OO-style aggregate.
func RunOOAggregateServer[S any, A OOAggregate[S]](domain, defaultPort string, factory OOAggregateFactory[S, A]) {
	RunServer(RegisterOOAggregateHandler(domain, factory), ServerOptions{
		ServiceName:      "Aggregate",
		Domain:           domain,
		DefaultPort:      defaultPort,
		EnableReflection: true,
		Descriptor:       func() *pb.ComponentDescriptor { return factory(nil).Descriptor() },
	})
}

// ============================================================================
// Saga
// ============================================================================

// SagaHandler wraps an EventRouter for the gRPC Saga service.
type SagaHandler struct {
	router *EventRouter
}

// NewSagaHandler creates a new saga handler with the given router.
func NewSagaHandler(router *EventRouter) *SagaHandler {
	return &SagaHandler{router: router}
}

// GetDescriptor reports the saga's subscriptions.
func (h *SagaHandler) GetDescriptor(ctx context.Context, req *pb.Empty) (*pb.ComponentDescriptor, error) {
	return h.router.Descriptor(pb.ComponentSaga), nil
}

// Prepare declares which destination aggregates the saga needs to read.
func (h *SagaHandler) Prepare(ctx context.Context, req *pb.SagaPrepareRequest) (*pb.SagaPrepareResponse, error) {
	destinations := h.router.PrepareDestinations(req.Source)
	return &pb.SagaPrepareResponse{Destinations: destinations}, nil
}

// Execute processes events and returns commands for other aggregates.
func (h *SagaHandler) Execute(ctx context.Context, req *pb.SagaExecuteRequest) (*pb.SagaResponse, error) {
	commands, err := h.router.Dispatch(req.Source, req.Destinations)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &pb.SagaResponse{Commands: commands}, nil
}

// RegisterSagaHandler returns a ServiceRegistrar that registers a saga handler.
func RegisterSagaHandler(router *EventRouter) ServiceRegistrar {
	return func(server *grpc.Server) {
		pb.RegisterSagaServer(server, NewSagaHandler(router))
	}
}

// RunSagaServer starts a gRPC server for a saga.
func RunSagaServer(name, defaultPort string, router *EventRouter) {
	RunServer(RegisterSagaHandler(router), ServerOptions{
		ServiceName:      "Saga",
		Domain:           name,
		DefaultPort:      defaultPort,
		EnableReflection: true,
		Descriptor:       func() *pb.ComponentDescriptor { return router.Descriptor(pb.ComponentSaga) },
	})
}

// OOSaga interface for OO-style sagas. Implemented by types that embed SagaBase.
type OOSaga interface {
	Name() string
	PrepareDestinations(source *pb.EventBook) []*pb.Cover
	Execute(source *pb.EventBook, destinations []*pb.EventBook) ([]*pb.CommandBook, error)
	Descriptor() *pb.ComponentDescriptor
}

// OOSagaHandler wraps an OO-style saga for the gRPC Saga service.
type OOSagaHandler struct {
	saga OOSaga
}

// NewOOSagaHandler creates a new OO saga handler.
func NewOOSagaHandler(saga OOSaga) *OOSagaHandler {
	return &OOSagaHandler{saga: saga}
}

// GetDescriptor reports the saga's subscriptions.
func (h *OOSagaHandler) GetDescriptor(ctx context.Context, req *pb.Empty) (*pb.ComponentDescriptor, error) {
	return h.saga.Descriptor(), nil
}

// Prepare declares which destination aggregates the saga needs to read.
func (h *OOSagaHandler) Prepare(ctx context.Context, req *pb.SagaPrepareRequest) (*pb.SagaPrepareResponse, error) {
	destinations := h.saga.PrepareDestinations(req.Source)
	return &pb.SagaPrepareResponse{Destinations: destinations}, nil
}

// Execute processes events and returns commands for other aggregates.
func (h *OOSagaHandler) Execute(ctx context.Context, req *pb.SagaExecuteRequest) (*pb.SagaResponse, error) {
	commands, err := h.saga.Execute(req.Source, req.Destinations)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &pb.SagaResponse{Commands: commands}, nil
}

// RegisterOOSagaHandler returns a ServiceRegistrar that registers an OO saga handler.
func RegisterOOSagaHandler(saga OOSaga) ServiceRegistrar {
	return func(server *grpc.Server) {
		pb.RegisterSagaServer(server, NewOOSagaHandler(saga))
	}
}

// RunOOSagaServer starts a gRPC server for an OO-style saga.
func RunOOSagaServer(name, defaultPort string, saga OOSaga) {
	RunServer(RegisterOOSagaHandler(saga), ServerOptions{
		ServiceName:      "Saga",
		Domain:           name,
		DefaultPort:      defaultPort,
		EnableReflection: true,
		Descriptor:       func() *pb.ComponentDescriptor { return saga.Descriptor() },
	})
}

// ============================================================================
// Projector
// ============================================================================

// ProjectorHandleFunc processes an EventBook and returns a Projection.
type ProjectorHandleFunc func(events *pb.EventBook) (*pb.Projection, error)

// ProjectorHandler wraps a handle function for the gRPC Projector service.
type ProjectorHandler struct {
	name     string
	domains  []string
	handleFn ProjectorHandleFunc
}

// NewProjectorHandler creates a new projector handler.
func NewProjectorHandler(name string, domains ...string) *ProjectorHandler {
	return &ProjectorHandler{
		name:    name,
		domains: domains,
	}
}

// WithHandle sets the event handling callback.
func (h *ProjectorHandler) WithHandle(fn ProjectorHandleFunc) *ProjectorHandler {
	h.handleFn = fn
	return h
}

// GetDescriptor reports the projector's subscribed domains.
func (h *ProjectorHandler) GetDescriptor(ctx context.Context, req *pb.Empty) (*pb.ComponentDescriptor, error) {
	inputs := make([]*pb.Target, 0, len(h.domains))
	for _, domain := range h.domains {
		inputs = append(inputs, &pb.Target{Domain: domain})
	}
	return &pb.ComponentDescriptor{
		Name:          h.name,
		ComponentType: pb.ComponentProjector,
		Inputs:        inputs,
	}, nil
}

// Handle processes an EventBook and returns a Projection.
func (h *ProjectorHandler) Handle(ctx context.Context, req *pb.EventBook) (*pb.Projection, error) {
	if h.handleFn != nil {
		resp, err := h.handleFn(req)
		if err != nil {
			return nil, toStatusError(err)
		}
		return resp, nil
	}
	return &pb.Projection{}, nil
}

// RegisterProjectorHandler returns a ServiceRegistrar that registers a projector handler.
func RegisterProjectorHandler(handler *ProjectorHandler) ServiceRegistrar {
	return func(server *grpc.Server) {
		pb.RegisterProjectorServer(server, handler)
	}
}

// RunProjectorServer starts a gRPC server for a projector.
func RunProjectorServer(name, defaultPort string, handler *ProjectorHandler) {
	RunServer(RegisterProjectorHandler(handler), ServerOptions{
		ServiceName:      "Projector",
		Domain:           name,
		DefaultPort:      defaultPort,
		EnableReflection: true,
		Descriptor: func() *pb.ComponentDescriptor {
			desc, _ := handler.GetDescriptor(context.Background(), &pb.Empty{})
			return desc
		},
	})
}

// ============================================================================
// Upcaster
// ============================================================================

// UpcasterHandlerService wraps an UpcasterRouter for the gRPC Upcaster service.
type UpcasterHandlerService struct {
	router *UpcasterRouter
}

// NewUpcasterHandlerService creates a new upcaster handler.
func NewUpcasterHandlerService(router *UpcasterRouter) *UpcasterHandlerService {
	return &UpcasterHandlerService{router: router}
}

// Handle upcasts a list of event pages to their current schema.
func (h *UpcasterHandlerService) Handle(ctx context.Context, req *pb.EventPageList) (*pb.EventPageList, error) {
	return &pb.EventPageList{Pages: h.router.Upcast(req.Pages)}, nil
}

// RegisterUpcasterHandler returns a ServiceRegistrar that registers an upcaster handler.
func RegisterUpcasterHandler(router *UpcasterRouter) ServiceRegistrar {
	return func(server *grpc.Server) {
		pb.RegisterUpcasterServer(server, NewUpcasterHandlerService(router))
	}
}

// RunUpcasterServer starts a gRPC server for an upcaster.
func RunUpcasterServer(name, defaultPort string, router *UpcasterRouter) {
	RunServer(RegisterUpcasterHandler(router), ServerOptions{
		ServiceName:      "Upcaster",
		Domain:           name,
		DefaultPort:      defaultPort,
		EnableReflection: true,
	})
}

// ============================================================================
// Process Manager
// ============================================================================

// PMPrepareFunc declares additional destinations needed beyond the trigger.
type PMPrepareFunc func(trigger, processState *pb.EventBook) []*pb.Cover

// PMHandleFunc processes events and returns commands and process events.
type PMHandleFunc func(trigger, processState *pb.EventBook, destinations []*pb.EventBook) ([]*pb.CommandBook, *pb.EventBook, error)

// ProcessManagerHandler wraps functions for the gRPC ProcessManager service.
type ProcessManagerHandler struct {
	name      string
	domains   []string
	prepareFn PMPrepareFunc
	handleFn  PMHandleFunc
}

// NewProcessManagerHandler creates a new process manager handler.
func NewProcessManagerHandler(name string, domains ...string) *ProcessManagerHandler {
	return &ProcessManagerHandler{name: name, domains: domains}
}

// WithPrepare sets the prepare callback.
func (h *ProcessManagerHandler) WithPrepare(fn PMPrepareFunc) *ProcessManagerHandler {
	h.prepareFn = fn
	return h
}

// WithHandle sets the handle callback.
func (h *ProcessManagerHandler) WithHandle(fn PMHandleFunc) *ProcessManagerHandler {
	h.handleFn = fn
	return h
}

// GetDescriptor reports the process manager's subscribed domains.
func (h *ProcessManagerHandler) GetDescriptor(ctx context.Context, req *pb.Empty) (*pb.ComponentDescriptor, error) {
	inputs := make([]*pb.Target, 0, len(h.domains))
	for _, domain := range h.domains {
		inputs = append(inputs, &pb.Target{Domain: domain})
	}
	return &pb.ComponentDescriptor{
		Name:          h.name,
		ComponentType: pb.ComponentProcessManager,
		Inputs:        inputs,
	}, nil
}

// Prepare declares which additional destinations are needed.
func (h *ProcessManagerHandler) Prepare(ctx context.Context, req *pb.ProcessManagerPrepareRequest) (*pb.ProcessManagerPrepareResponse, error) {
	if h.prepareFn != nil {
		destinations := h.prepareFn(req.Trigger, req.ProcessState)
		return &pb.ProcessManagerPrepareResponse{Destinations: destinations}, nil
	}
	return &pb.ProcessManagerPrepareResponse{}, nil
}

// Handle processes events and returns commands and process events.
func (h *ProcessManagerHandler) Handle(ctx context.Context, req *pb.ProcessManagerHandleRequest) (*pb.ProcessManagerHandleResponse, error) {
	if h.handleFn != nil {
		commands, processEvents, err := h.handleFn(req.Trigger, req.ProcessState, req.Destinations)
		if err != nil {
			return nil, toStatusError(err)
		}
		return &pb.ProcessManagerHandleResponse{
			Commands:      commands,
			ProcessEvents: processEvents,
		}, nil
	}
	return &pb.ProcessManagerHandleResponse{}, nil
}

// RegisterProcessManagerHandler returns a ServiceRegistrar that registers a process manager handler.
func RegisterProcessManagerHandler(handler *ProcessManagerHandler) ServiceRegistrar {
	return func(server *grpc.Server) {
		pb.RegisterProcessManagerServer(server, handler)
	}
}

// RunProcessManagerServer starts a gRPC server for a process manager.
func RunProcessManagerServer(name, defaultPort string, handler *ProcessManagerHandler) {
	RunServer(RegisterProcessManagerHandler(handler), ServerOptions{
		ServiceName:      "ProcessManager",
		Domain:           name,
		DefaultPort:      defaultPort,
		EnableReflection: true,
		Descriptor: func() *pb.ComponentDescriptor {
			desc, _ := handler.GetDescriptor(context.Background(), &pb.Empty{})
			return desc
		},
	})
}

// OOProcessManager interface for OO-style process managers. Implemented by
// types that embed ProcessManagerBase.
type OOProcessManager interface {
	Name() string
	PrepareDestinations(trigger, processState *pb.EventBook) []*pb.Cover
	Handle(trigger, processState *pb.EventBook, destinations []*pb.EventBook) ([]*pb.CommandBook, *pb.EventBook, *pb.Notification, error)
	Descriptor() *pb.ComponentDescriptor
}

// OOProcessManagerHandler wraps an OO-style process manager for the gRPC ProcessManager service.
type OOProcessManagerHandler struct {
	pm OOProcessManager
}

// NewOOProcessManagerHandler creates a new OO process manager handler.
func NewOOProcessManagerHandler(pm OOProcessManager) *OOProcessManagerHandler {
	return &OOProcessManagerHandler{pm: pm}
}

// GetDescriptor reports the process manager's subscribed domains.
func (h *OOProcessManagerHandler) GetDescriptor(ctx context.Context, req *pb.Empty) (*pb.ComponentDescriptor, error) {
	return h.pm.Descriptor(), nil
}

// Prepare declares which additional destinations are needed.
func (h *OOProcessManagerHandler) Prepare(ctx context.Context, req *pb.ProcessManagerPrepareRequest) (*pb.ProcessManagerPrepareResponse, error) {
	destinations := h.pm.PrepareDestinations(req.Trigger, req.ProcessState)
	return &pb.ProcessManagerPrepareResponse{Destinations: destinations}, nil
}

// Handle processes events and returns commands and process events.
func (h *OOProcessManagerHandler) Handle(ctx context.Context, req *pb.ProcessManagerHandleRequest) (*pb.ProcessManagerHandleResponse, error) {
	commands, processEvents, _, err := h.pm.Handle(req.Trigger, req.ProcessState, req.Destinations)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &pb.ProcessManagerHandleResponse{
		Commands:      commands,
		ProcessEvents: processEvents,
	}, nil
}

// RegisterOOProcessManagerHandler returns a ServiceRegistrar that registers an OO process manager handler.
func RegisterOOProcessManagerHandler(pm OOProcessManager) ServiceRegistrar {
	return func(server *grpc.Server) {
		pb.RegisterProcessManagerServer(server, NewOOProcessManagerHandler(pm))
	}
}

// RunOOProcessManagerServer starts a gRPC server for an OO-style process manager.
func RunOOProcessManagerServer(name, defaultPort string, pm OOProcessManager) {
	RunServer(RegisterOOProcessManagerHandler(pm), ServerOptions{
		ServiceName:      "ProcessManager",
		Domain:           name,
		DefaultPort:      defaultPort,
		EnableReflection: true,
		Descriptor:       func() *pb.ComponentDescriptor { return pm.Descriptor() },
	})
}
