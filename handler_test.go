package angzarr

import (
	"context"
	"errors"
	"testing"

	pb "github.com/eventframe/angzarr/pb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/anypb"
)

func testFuncRebuild(events *pb.EventBook) testOOState {
	var s testOOState
	for _, page := range events.GetPages() {
		event := page.GetEvent()
		if event == nil {
			continue
		}
		var registered testOORegistered
		if err := UnpackAny(event, &registered); err == nil && registered.CustomerID != "" {
			s.CustomerID = registered.CustomerID
		}
	}
	return s
}

func newTestFuncAggregateRouter() *CommandRouter[testOOState] {
	router := NewCommandRouter("order-func", testFuncRebuild)
	router.On("Register", func(cb *pb.CommandBook, cmdAny *anypb.Any, state testOOState, seq uint64) (*pb.EventBook, error) {
		var cmd testOORegister
		if err := UnpackAny(cmdAny, &cmd); err != nil {
			return nil, err
		}
		if state.CustomerID != "" {
			return nil, NewCommandRejectedError("already registered")
		}
		eventAny, err := PackAny(&testOORegistered{CustomerID: cmd.CustomerID})
		if err != nil {
			return nil, err
		}
		return &pb.EventBook{Pages: []*pb.EventPage{{Sequence: seq, Event: eventAny}}}, nil
	})
	return router
}

func TestAggregateHandler_Handle(t *testing.T) {
	router := newTestFuncAggregateRouter()
	h := NewAggregateHandler(router)

	cmdAny, err := PackAny(&testOORegister{CustomerID: "cust-9"})
	if err != nil {
		t.Fatalf("PackAny: %v", err)
	}
	req := &pb.ContextualCommand{
		Command: &pb.CommandBook{Pages: []*pb.CommandPage{{Command: cmdAny}}},
	}

	resp, err := h.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Events == nil || len(resp.Events.Pages) != 1 {
		t.Fatalf("expected one event in response, got %+v", resp)
	}
}

func TestAggregateHandler_Handle_RejectionMapsToFailedPrecondition(t *testing.T) {
	router := newTestFuncAggregateRouter()
	h := NewAggregateHandler(router)

	registered, err := PackAny(&testOORegistered{CustomerID: "cust-9"})
	if err != nil {
		t.Fatalf("PackAny: %v", err)
	}
	cmdAny, err := PackAny(&testOORegister{CustomerID: "cust-9"})
	if err != nil {
		t.Fatalf("PackAny: %v", err)
	}
	req := &pb.ContextualCommand{
		Command: &pb.CommandBook{Pages: []*pb.CommandPage{{Command: cmdAny}}},
		Events:  &pb.EventBook{Pages: []*pb.EventPage{{Event: registered}}},
	}

	_, err = h.Handle(context.Background(), req)
	if err == nil {
		t.Fatal("expected an error registering an already-registered customer")
	}
	if status.Code(err) != codes.FailedPrecondition {
		t.Errorf("status code = %v, want FailedPrecondition", status.Code(err))
	}
}

func TestAggregateHandler_GetDescriptor(t *testing.T) {
	router := newTestFuncAggregateRouter()
	h := NewAggregateHandler(router)

	desc, err := h.GetDescriptor(context.Background(), &pb.Empty{})
	if err != nil {
		t.Fatalf("GetDescriptor: %v", err)
	}
	if desc.ComponentType != pb.ComponentAggregate {
		t.Errorf("ComponentType = %v, want ComponentAggregate", desc.ComponentType)
	}
}

func TestOOAggregateHandler_Handle(t *testing.T) {
	h := NewOOAggregateHandler[testOOState, *testOOAggregate]("order", func(events *pb.EventBook) *testOOAggregate {
		return newTestOOAggregate(events)
	})

	cmdAny, err := PackAny(&testOORegister{CustomerID: "cust-10"})
	if err != nil {
		t.Fatalf("PackAny: %v", err)
	}
	req := &pb.ContextualCommand{
		Command: &pb.CommandBook{Pages: []*pb.CommandPage{{Command: cmdAny}}},
	}

	resp, err := h.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Events == nil || len(resp.Events.Pages) != 1 {
		t.Fatalf("expected one event in response, got %+v", resp)
	}
}

func TestOOAggregateHandler_GetDescriptor(t *testing.T) {
	h := NewOOAggregateHandler[testOOState, *testOOAggregate]("order", func(events *pb.EventBook) *testOOAggregate {
		return newTestOOAggregate(events)
	})
	desc, err := h.GetDescriptor(context.Background(), &pb.Empty{})
	if err != nil {
		t.Fatalf("GetDescriptor: %v", err)
	}
	if desc.Name != "order" {
		t.Errorf("Name = %q, want order", desc.Name)
	}
}

func newTestFuncSagaRouter() *EventRouter {
	return NewEventRouter("saga-func-test").
		Domain("order").
		On("OrderCreated", func(source *pb.EventBook, event *anypb.Any, destinations []*pb.EventBook) ([]*pb.CommandBook, error) {
			return []*pb.CommandBook{{Cover: &pb.Cover{Domain: "inventory"}}}, nil
		})
}

func TestSagaHandler_PrepareAndExecute(t *testing.T) {
	router := newTestFuncSagaRouter()
	h := NewSagaHandler(router)

	source := testOOOrderCreatedBook(t)
	prepResp, err := h.Prepare(context.Background(), &pb.SagaPrepareRequest{Source: source})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	_ = prepResp

	execResp, err := h.Execute(context.Background(), &pb.SagaExecuteRequest{Source: source})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(execResp.Commands) != 1 {
		t.Fatalf("got %d commands, want 1", len(execResp.Commands))
	}
}

func TestSagaHandler_GetDescriptor(t *testing.T) {
	router := newTestFuncSagaRouter()
	h := NewSagaHandler(router)
	desc, err := h.GetDescriptor(context.Background(), &pb.Empty{})
	if err != nil {
		t.Fatalf("GetDescriptor: %v", err)
	}
	if desc.ComponentType != pb.ComponentSaga {
		t.Errorf("ComponentType = %v, want ComponentSaga", desc.ComponentType)
	}
}

func TestOOSagaHandler_PrepareAndExecute(t *testing.T) {
	saga := newTestOOSaga()
	h := NewOOSagaHandler(saga)

	source := testOOOrderCreatedBook(t)
	_, err := h.Prepare(context.Background(), &pb.SagaPrepareRequest{Source: source})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	destinations := []*pb.EventBook{{Cover: &pb.Cover{Domain: "inventory"}, NextSequence: 7}}
	execResp, err := h.Execute(context.Background(), &pb.SagaExecuteRequest{Source: source, Destinations: destinations})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(execResp.Commands) != 1 || execResp.Commands[0].Pages[0].Sequence != 7 {
		t.Fatalf("unexpected commands: %+v", execResp.Commands)
	}
}

func TestProjectorHandler_Handle(t *testing.T) {
	h := NewProjectorHandler("projector-func-test", "order").
		WithHandle(func(events *pb.EventBook) (*pb.Projection, error) {
			return &pb.Projection{Projector: "projector-func-test", Sequence: events.Pages[0].Sequence}, nil
		})

	resp, err := h.Handle(context.Background(), testOOOrderCreatedBook(t))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Projector != "projector-func-test" {
		t.Errorf("Projector = %q, want projector-func-test", resp.Projector)
	}
}

func TestProjectorHandler_Handle_NoHandlerSet(t *testing.T) {
	h := NewProjectorHandler("projector-func-empty", "order")
	resp, err := h.Handle(context.Background(), testOOOrderCreatedBook(t))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Projector != "" {
		t.Errorf("expected a zero-value Projection with no handler set, got %+v", resp)
	}
}

func newTestFuncPMHandler() *ProcessManagerHandler {
	return NewProcessManagerHandler("pm-func-test", "order", "inventory").
		WithPrepare(func(trigger, processState *pb.EventBook) []*pb.Cover {
			return []*pb.Cover{{Domain: "inventory"}}
		}).
		WithHandle(func(trigger, processState *pb.EventBook, destinations []*pb.EventBook) ([]*pb.CommandBook, *pb.EventBook, error) {
			return []*pb.CommandBook{{Cover: &pb.Cover{Domain: "inventory"}}}, nil, nil
		})
}

func TestProcessManagerHandler_PrepareAndHandle(t *testing.T) {
	h := newTestFuncPMHandler()
	trigger := testOOOrderCreatedBook(t)

	prepResp, err := h.Prepare(context.Background(), &pb.ProcessManagerPrepareRequest{Trigger: trigger})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(prepResp.Destinations) != 1 {
		t.Fatalf("got %d destinations, want 1", len(prepResp.Destinations))
	}

	handleResp, err := h.Handle(context.Background(), &pb.ProcessManagerHandleRequest{Trigger: trigger})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(handleResp.Commands) != 1 {
		t.Fatalf("got %d commands, want 1", len(handleResp.Commands))
	}
}

func TestOOProcessManagerHandler_PrepareAndHandle(t *testing.T) {
	pm := newTestOOPM()
	h := NewOOProcessManagerHandler(pm)

	trigger := testOOOrderCreatedBook(t)
	prepResp, err := h.Prepare(context.Background(), &pb.ProcessManagerPrepareRequest{Trigger: trigger})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(prepResp.Destinations) != 1 {
		t.Fatalf("got %d destinations, want 1", len(prepResp.Destinations))
	}

	destinations := []*pb.EventBook{{Cover: &pb.Cover{Domain: "inventory"}, NextSequence: 2}}
	handleResp, err := h.Handle(context.Background(), &pb.ProcessManagerHandleRequest{Trigger: trigger, Destinations: destinations})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(handleResp.Commands) != 1 {
		t.Fatalf("got %d commands, want 1", len(handleResp.Commands))
	}
}

func TestOOProcessManagerHandler_GetDescriptor(t *testing.T) {
	pm := newTestOOPM()
	h := NewOOProcessManagerHandler(pm)
	desc, err := h.GetDescriptor(context.Background(), &pb.Empty{})
	if err != nil {
		t.Fatalf("GetDescriptor: %v", err)
	}
	if desc.ComponentType != pb.ComponentProcessManager {
		t.Errorf("ComponentType = %v, want ComponentProcessManager", desc.ComponentType)
	}
}

func TestToStatusError_ClientError(t *testing.T) {
	err := toStatusError(InvalidArgumentError("bad input"))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("status code = %v, want InvalidArgument", status.Code(err))
	}
}

func TestToStatusError_Generic(t *testing.T) {
	err := toStatusError(errors.New("boom"))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("status code = %v, want InvalidArgument (generic fallback)", status.Code(err))
	}
}
