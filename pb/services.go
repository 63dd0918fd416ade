package pb

import (
	"context"

	"google.golang.org/grpc"
)

// This file hand-authors the grpc.ServiceDesc / client stub shapes that
// protoc-gen-go-grpc would otherwise generate from a .proto file. No such
// file is available in this environment, so the generic helpers below do
// the same job protoc-gen-go-grpc's per-method boilerplate does, just
// parameterized over request/response type instead of monomorphized per
// method name. Wire encoding is handled by the codec registered in
// codec.go, so this still rides on a real *grpc.Server / *grpc.ClientConn.

func unaryHandler[TReq any, TResp any](
	handle func(ctx context.Context, srv any, req *TReq) (*TResp, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(TReq)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return handle(ctx, srv, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv}
		wrapper := func(ctx context.Context, req any) (any, error) {
			return handle(ctx, srv, req.(*TReq))
		}
		return interceptor(ctx, in, info, wrapper)
	}
}

func invokeUnary[TReq any, TResp any](ctx context.Context, cc grpc.ClientConnInterface, method string, req *TReq, opts ...grpc.CallOption) (*TResp, error) {
	resp := new(TResp)
	if err := cc.Invoke(ctx, method, req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

// serverStream[T] adapts a raw grpc.ServerStream to a typed Send.
type serverStream[T any] struct{ grpc.ServerStream }

func (s *serverStream[T]) Send(m *T) error { return s.ServerStream.SendMsg(m) }

func newServerStreamingHandler[TReq any, TResp any](
	handle func(srv any, req *TReq, stream interface{ Send(*TResp) error }) error,
) func(srv any, stream grpc.ServerStream) error {
	return func(srv any, stream grpc.ServerStream) error {
		in := new(TReq)
		if err := stream.RecvMsg(in); err != nil {
			return err
		}
		return handle(srv, in, &serverStream[TResp]{stream})
	}
}

// clientStream[T] adapts a raw grpc.ClientStream to a typed Recv.
type clientStream[T any] struct{ grpc.ClientStream }

func (c *clientStream[T]) Recv() (*T, error) {
	m := new(T)
	if err := c.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// ---------------------------------------------------------------------
// AggregateService — implemented by application aggregate components,
// called by the Gateway. spec.md §6.
// ---------------------------------------------------------------------

type AggregateServer interface {
	Handle(ctx context.Context, req *ContextualCommand) (*BusinessResponse, error)
	HandleRevocation(ctx context.Context, req *Notification) (*RevocationResponse, error)
	GetDescriptor(ctx context.Context, req *Empty) (*ComponentDescriptor, error)
}

type AggregateClient struct{ cc grpc.ClientConnInterface }

func NewAggregateClient(cc grpc.ClientConnInterface) *AggregateClient { return &AggregateClient{cc} }

func (c *AggregateClient) Handle(ctx context.Context, req *ContextualCommand) (*BusinessResponse, error) {
	return invokeUnary[ContextualCommand, BusinessResponse](ctx, c.cc, "/angzarr.Aggregate/Handle", req)
}

func (c *AggregateClient) HandleRevocation(ctx context.Context, req *Notification) (*RevocationResponse, error) {
	return invokeUnary[Notification, RevocationResponse](ctx, c.cc, "/angzarr.Aggregate/HandleRevocation", req)
}

func (c *AggregateClient) GetDescriptor(ctx context.Context, req *Empty) (*ComponentDescriptor, error) {
	return invokeUnary[Empty, ComponentDescriptor](ctx, c.cc, "/angzarr.Aggregate/GetDescriptor", req)
}

var Aggregate_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "angzarr.Aggregate",
	HandlerType: (*AggregateServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Handle", Handler: unaryHandler(func(ctx context.Context, srv any, req *ContextualCommand) (*BusinessResponse, error) {
			return srv.(AggregateServer).Handle(ctx, req)
		})},
		{MethodName: "HandleRevocation", Handler: unaryHandler(func(ctx context.Context, srv any, req *Notification) (*RevocationResponse, error) {
			return srv.(AggregateServer).HandleRevocation(ctx, req)
		})},
		{MethodName: "GetDescriptor", Handler: unaryHandler(func(ctx context.Context, srv any, req *Empty) (*ComponentDescriptor, error) {
			return srv.(AggregateServer).GetDescriptor(ctx, req)
		})},
	},
}

func RegisterAggregateServer(s grpc.ServiceRegistrar, srv AggregateServer) {
	s.RegisterService(&Aggregate_ServiceDesc, srv)
}

// ---------------------------------------------------------------------
// SagaService — spec.md §6.
// ---------------------------------------------------------------------

type SagaServer interface {
	GetDescriptor(ctx context.Context, req *Empty) (*ComponentDescriptor, error)
	Prepare(ctx context.Context, req *SagaPrepareRequest) (*SagaPrepareResponse, error)
	Execute(ctx context.Context, req *SagaExecuteRequest) (*SagaResponse, error)
}

type SagaClient struct{ cc grpc.ClientConnInterface }

func NewSagaClient(cc grpc.ClientConnInterface) *SagaClient { return &SagaClient{cc} }

func (c *SagaClient) GetDescriptor(ctx context.Context, req *Empty) (*ComponentDescriptor, error) {
	return invokeUnary[Empty, ComponentDescriptor](ctx, c.cc, "/angzarr.Saga/GetDescriptor", req)
}

func (c *SagaClient) Prepare(ctx context.Context, req *SagaPrepareRequest) (*SagaPrepareResponse, error) {
	return invokeUnary[SagaPrepareRequest, SagaPrepareResponse](ctx, c.cc, "/angzarr.Saga/Prepare", req)
}

func (c *SagaClient) Execute(ctx context.Context, req *SagaExecuteRequest) (*SagaResponse, error) {
	return invokeUnary[SagaExecuteRequest, SagaResponse](ctx, c.cc, "/angzarr.Saga/Execute", req)
}

var Saga_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "angzarr.Saga",
	HandlerType: (*SagaServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetDescriptor", Handler: unaryHandler(func(ctx context.Context, srv any, req *Empty) (*ComponentDescriptor, error) {
			return srv.(SagaServer).GetDescriptor(ctx, req)
		})},
		{MethodName: "Prepare", Handler: unaryHandler(func(ctx context.Context, srv any, req *SagaPrepareRequest) (*SagaPrepareResponse, error) {
			return srv.(SagaServer).Prepare(ctx, req)
		})},
		{MethodName: "Execute", Handler: unaryHandler(func(ctx context.Context, srv any, req *SagaExecuteRequest) (*SagaResponse, error) {
			return srv.(SagaServer).Execute(ctx, req)
		})},
	},
}

func RegisterSagaServer(s grpc.ServiceRegistrar, srv SagaServer) {
	s.RegisterService(&Saga_ServiceDesc, srv)
}

// ---------------------------------------------------------------------
// ProcessManagerService — spec.md §6.
// ---------------------------------------------------------------------

type ProcessManagerServer interface {
	GetDescriptor(ctx context.Context, req *Empty) (*ComponentDescriptor, error)
	Prepare(ctx context.Context, req *ProcessManagerPrepareRequest) (*ProcessManagerPrepareResponse, error)
	Handle(ctx context.Context, req *ProcessManagerHandleRequest) (*ProcessManagerHandleResponse, error)
}

type ProcessManagerClient struct{ cc grpc.ClientConnInterface }

func NewProcessManagerClient(cc grpc.ClientConnInterface) *ProcessManagerClient {
	return &ProcessManagerClient{cc}
}

func (c *ProcessManagerClient) GetDescriptor(ctx context.Context, req *Empty) (*ComponentDescriptor, error) {
	return invokeUnary[Empty, ComponentDescriptor](ctx, c.cc, "/angzarr.ProcessManager/GetDescriptor", req)
}

func (c *ProcessManagerClient) Prepare(ctx context.Context, req *ProcessManagerPrepareRequest) (*ProcessManagerPrepareResponse, error) {
	return invokeUnary[ProcessManagerPrepareRequest, ProcessManagerPrepareResponse](ctx, c.cc, "/angzarr.ProcessManager/Prepare", req)
}

func (c *ProcessManagerClient) Handle(ctx context.Context, req *ProcessManagerHandleRequest) (*ProcessManagerHandleResponse, error) {
	return invokeUnary[ProcessManagerHandleRequest, ProcessManagerHandleResponse](ctx, c.cc, "/angzarr.ProcessManager/Handle", req)
}

var ProcessManager_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "angzarr.ProcessManager",
	HandlerType: (*ProcessManagerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetDescriptor", Handler: unaryHandler(func(ctx context.Context, srv any, req *Empty) (*ComponentDescriptor, error) {
			return srv.(ProcessManagerServer).GetDescriptor(ctx, req)
		})},
		{MethodName: "Prepare", Handler: unaryHandler(func(ctx context.Context, srv any, req *ProcessManagerPrepareRequest) (*ProcessManagerPrepareResponse, error) {
			return srv.(ProcessManagerServer).Prepare(ctx, req)
		})},
		{MethodName: "Handle", Handler: unaryHandler(func(ctx context.Context, srv any, req *ProcessManagerHandleRequest) (*ProcessManagerHandleResponse, error) {
			return srv.(ProcessManagerServer).Handle(ctx, req)
		})},
	},
}

func RegisterProcessManagerServer(s grpc.ServiceRegistrar, srv ProcessManagerServer) {
	s.RegisterService(&ProcessManager_ServiceDesc, srv)
}

// ---------------------------------------------------------------------
// ProjectorService / UpcasterService — spec.md §6.
// ---------------------------------------------------------------------

type ProjectorServer interface {
	GetDescriptor(ctx context.Context, req *Empty) (*ComponentDescriptor, error)
	Handle(ctx context.Context, req *EventBook) (*Projection, error)
}

type ProjectorClient struct{ cc grpc.ClientConnInterface }

func NewProjectorClient(cc grpc.ClientConnInterface) *ProjectorClient { return &ProjectorClient{cc} }

func (c *ProjectorClient) GetDescriptor(ctx context.Context, req *Empty) (*ComponentDescriptor, error) {
	return invokeUnary[Empty, ComponentDescriptor](ctx, c.cc, "/angzarr.Projector/GetDescriptor", req)
}

func (c *ProjectorClient) Handle(ctx context.Context, req *EventBook) (*Projection, error) {
	return invokeUnary[EventBook, Projection](ctx, c.cc, "/angzarr.Projector/Handle", req)
}

var Projector_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "angzarr.Projector",
	HandlerType: (*ProjectorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetDescriptor", Handler: unaryHandler(func(ctx context.Context, srv any, req *Empty) (*ComponentDescriptor, error) {
			return srv.(ProjectorServer).GetDescriptor(ctx, req)
		})},
		{MethodName: "Handle", Handler: unaryHandler(func(ctx context.Context, srv any, req *EventBook) (*Projection, error) {
			return srv.(ProjectorServer).Handle(ctx, req)
		})},
	},
}

func RegisterProjectorServer(s grpc.ServiceRegistrar, srv ProjectorServer) {
	s.RegisterService(&Projector_ServiceDesc, srv)
}

type UpcasterServer interface {
	Handle(ctx context.Context, req *EventPageList) (*EventPageList, error)
}

type UpcasterClient struct{ cc grpc.ClientConnInterface }

func NewUpcasterClient(cc grpc.ClientConnInterface) *UpcasterClient { return &UpcasterClient{cc} }

func (c *UpcasterClient) Handle(ctx context.Context, req *EventPageList) (*EventPageList, error) {
	return invokeUnary[EventPageList, EventPageList](ctx, c.cc, "/angzarr.Upcaster/Handle", req)
}

var Upcaster_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "angzarr.Upcaster",
	HandlerType: (*UpcasterServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Handle", Handler: unaryHandler(func(ctx context.Context, srv any, req *EventPageList) (*EventPageList, error) {
			return srv.(UpcasterServer).Handle(ctx, req)
		})},
	},
}

func RegisterUpcasterServer(s grpc.ServiceRegistrar, srv UpcasterServer) {
	s.RegisterService(&Upcaster_ServiceDesc, srv)
}

// ---------------------------------------------------------------------
// AggregateCoordinatorService / EventQueryService / SpeculativeService —
// the Gateway-facing surface that external clients (client.go) talk to.
// The Gateway itself is out of scope (spec.md §1); these shapes exist so
// client.go has something real to dial in tests and local demos.
// ---------------------------------------------------------------------

type AggregateCoordinatorServer interface {
	Handle(ctx context.Context, req *CommandBook) (*CommandResponse, error)
	HandleSync(ctx context.Context, req *SyncCommandBook) (*CommandResponse, error)
	DryRunHandle(ctx context.Context, req *DryRunRequest) (*CommandResponse, error)
}

type AggregateCoordinatorClient struct{ cc grpc.ClientConnInterface }

func NewAggregateCoordinatorClient(cc grpc.ClientConnInterface) *AggregateCoordinatorClient {
	return &AggregateCoordinatorClient{cc}
}

func (c *AggregateCoordinatorClient) Handle(ctx context.Context, req *CommandBook) (*CommandResponse, error) {
	return invokeUnary[CommandBook, CommandResponse](ctx, c.cc, "/angzarr.AggregateCoordinatorService/Handle", req)
}

func (c *AggregateCoordinatorClient) HandleSync(ctx context.Context, req *SyncCommandBook) (*CommandResponse, error) {
	return invokeUnary[SyncCommandBook, CommandResponse](ctx, c.cc, "/angzarr.AggregateCoordinatorService/HandleSync", req)
}

func (c *AggregateCoordinatorClient) DryRunHandle(ctx context.Context, req *DryRunRequest) (*CommandResponse, error) {
	return invokeUnary[DryRunRequest, CommandResponse](ctx, c.cc, "/angzarr.AggregateCoordinatorService/DryRunHandle", req)
}

var AggregateCoordinator_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "angzarr.AggregateCoordinatorService",
	HandlerType: (*AggregateCoordinatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Handle", Handler: unaryHandler(func(ctx context.Context, srv any, req *CommandBook) (*CommandResponse, error) {
			return srv.(AggregateCoordinatorServer).Handle(ctx, req)
		})},
		{MethodName: "HandleSync", Handler: unaryHandler(func(ctx context.Context, srv any, req *SyncCommandBook) (*CommandResponse, error) {
			return srv.(AggregateCoordinatorServer).HandleSync(ctx, req)
		})},
		{MethodName: "DryRunHandle", Handler: unaryHandler(func(ctx context.Context, srv any, req *DryRunRequest) (*CommandResponse, error) {
			return srv.(AggregateCoordinatorServer).DryRunHandle(ctx, req)
		})},
	},
}

func RegisterAggregateCoordinatorServer(s grpc.ServiceRegistrar, srv AggregateCoordinatorServer) {
	s.RegisterService(&AggregateCoordinator_ServiceDesc, srv)
}

type EventQueryServer interface {
	GetEventBook(ctx context.Context, req *Query) (*EventBook, error)
	GetEvents(req *Query, stream interface{ Send(*EventBook) error }) error
}

type EventQueryClient struct{ cc grpc.ClientConnInterface }

func NewEventQueryClient(cc grpc.ClientConnInterface) *EventQueryClient { return &EventQueryClient{cc} }

func (c *EventQueryClient) GetEventBook(ctx context.Context, req *Query) (*EventBook, error) {
	return invokeUnary[Query, EventBook](ctx, c.cc, "/angzarr.EventQueryService/GetEventBook", req)
}

func (c *EventQueryClient) GetEvents(ctx context.Context, req *Query, opts ...grpc.CallOption) (interface{ Recv() (*EventBook, error) }, error) {
	stream, err := c.cc.NewStream(ctx, &EventQueryService_GetEvents_StreamDesc, "/angzarr.EventQueryService/GetEvents", opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &clientStream[EventBook]{stream}, nil
}

var EventQueryService_GetEvents_StreamDesc = grpc.StreamDesc{
	StreamName:    "GetEvents",
	ServerStreams: true,
}

var EventQuery_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "angzarr.EventQueryService",
	HandlerType: (*EventQueryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetEventBook", Handler: unaryHandler(func(ctx context.Context, srv any, req *Query) (*EventBook, error) {
			return srv.(EventQueryServer).GetEventBook(ctx, req)
		})},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "GetEvents",
			ServerStreams: true,
			Handler: newServerStreamingHandler(func(srv any, req *Query, stream interface{ Send(*EventBook) error }) error {
				return srv.(EventQueryServer).GetEvents(req, stream)
			}),
		},
	},
}

func RegisterEventQueryServer(s grpc.ServiceRegistrar, srv EventQueryServer) {
	s.RegisterService(&EventQuery_ServiceDesc, srv)
}

type SpeculativeServer interface {
	DryRunCommand(ctx context.Context, req *DryRunRequest) (*CommandResponse, error)
	SpeculateProjector(ctx context.Context, req *SpeculateProjectorRequest) (*Projection, error)
	SpeculateSaga(ctx context.Context, req *SpeculateSagaRequest) (*SagaResponse, error)
	SpeculateProcessManager(ctx context.Context, req *SpeculatePmRequest) (*ProcessManagerHandleResponse, error)
}

type SpeculativeClient struct{ cc grpc.ClientConnInterface }

func NewSpeculativeClient(cc grpc.ClientConnInterface) *SpeculativeClient { return &SpeculativeClient{cc} }

func (c *SpeculativeClient) DryRunCommand(ctx context.Context, req *DryRunRequest) (*CommandResponse, error) {
	return invokeUnary[DryRunRequest, CommandResponse](ctx, c.cc, "/angzarr.SpeculativeService/DryRunCommand", req)
}

func (c *SpeculativeClient) SpeculateProjector(ctx context.Context, req *SpeculateProjectorRequest) (*Projection, error) {
	return invokeUnary[SpeculateProjectorRequest, Projection](ctx, c.cc, "/angzarr.SpeculativeService/SpeculateProjector", req)
}

func (c *SpeculativeClient) SpeculateSaga(ctx context.Context, req *SpeculateSagaRequest) (*SagaResponse, error) {
	return invokeUnary[SpeculateSagaRequest, SagaResponse](ctx, c.cc, "/angzarr.SpeculativeService/SpeculateSaga", req)
}

func (c *SpeculativeClient) SpeculateProcessManager(ctx context.Context, req *SpeculatePmRequest) (*ProcessManagerHandleResponse, error) {
	return invokeUnary[SpeculatePmRequest, ProcessManagerHandleResponse](ctx, c.cc, "/angzarr.SpeculativeService/SpeculateProcessManager", req)
}

var Speculative_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "angzarr.SpeculativeService",
	HandlerType: (*SpeculativeServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "DryRunCommand", Handler: unaryHandler(func(ctx context.Context, srv any, req *DryRunRequest) (*CommandResponse, error) {
			return srv.(SpeculativeServer).DryRunCommand(ctx, req)
		})},
		{MethodName: "SpeculateProjector", Handler: unaryHandler(func(ctx context.Context, srv any, req *SpeculateProjectorRequest) (*Projection, error) {
			return srv.(SpeculativeServer).SpeculateProjector(ctx, req)
		})},
		{MethodName: "SpeculateSaga", Handler: unaryHandler(func(ctx context.Context, srv any, req *SpeculateSagaRequest) (*SagaResponse, error) {
			return srv.(SpeculativeServer).SpeculateSaga(ctx, req)
		})},
		{MethodName: "SpeculateProcessManager", Handler: unaryHandler(func(ctx context.Context, srv any, req *SpeculatePmRequest) (*ProcessManagerHandleResponse, error) {
			return srv.(SpeculativeServer).SpeculateProcessManager(ctx, req)
		})},
	},
}

func RegisterSpeculativeServer(s grpc.ServiceRegistrar, srv SpeculativeServer) {
	s.RegisterService(&Speculative_ServiceDesc, srv)
}
