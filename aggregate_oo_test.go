package angzarr

import (
	"errors"
	"testing"

	pb "github.com/eventframe/angzarr/pb"
	"google.golang.org/protobuf/types/known/anypb"
)

type testOOState struct {
	CustomerID string
	Total      int64
}

type testOORegister struct {
	CustomerID string `json:"customer_id"`
}

type testOORegistered struct {
	CustomerID string `json:"customer_id"`
}

type testOOAddItem struct {
	AmountCents int64 `json:"amount_cents"`
}

type testOOItemAdded struct {
	AmountCents int64 `json:"amount_cents"`
}

type testOOAggregate struct {
	AggregateBase[testOOState]
}

func newTestOOAggregate(events *pb.EventBook) *testOOAggregate {
	a := &testOOAggregate{}
	a.Init(events, func() testOOState { return testOOState{} })
	a.SetDomain("order")
	a.Applies("Registered", func(s *testOOState, e *testOORegistered) {
		s.CustomerID = e.CustomerID
	})
	a.Applies("ItemAdded", func(s *testOOState, e *testOOItemAdded) {
		s.Total += e.AmountCents
	})
	a.Handles("Register", func(cmd *testOORegister) (any, error) {
		if a.Exists() {
			return nil, NewCommandRejectedError("already registered")
		}
		return &testOORegistered{CustomerID: cmd.CustomerID}, nil
	})
	a.Handles("AddItem", func(cmd *testOOAddItem) (any, error) {
		if !a.Exists() {
			return nil, NewCommandRejectedError("not registered")
		}
		return &testOOItemAdded{AmountCents: cmd.AmountCents}, nil
	})
	return a
}

func TestAggregateBase_HandlesAndApplies(t *testing.T) {
	agg := newTestOOAggregate(nil)

	cmd, err := PackAny(&testOORegister{CustomerID: "cust-1"})
	if err != nil {
		t.Fatalf("PackAny: %v", err)
	}
	if err := agg.Dispatch(cmd); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if agg.State().CustomerID != "cust-1" {
		t.Errorf("state.CustomerID = %q, want cust-1", agg.State().CustomerID)
	}
	if len(agg.EventBook().Pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(agg.EventBook().Pages))
	}
}

func TestAggregateBase_Dispatch_Rejection(t *testing.T) {
	agg := newTestOOAggregate(nil)

	cmd, err := PackAny(&testOOAddItem{AmountCents: 100})
	if err != nil {
		t.Fatalf("PackAny: %v", err)
	}
	err = agg.Dispatch(cmd)
	if err == nil {
		t.Fatal("expected an error adding an item to an unregistered customer")
	}
	var rejected CommandRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected a CommandRejectedError, got %T: %v", err, err)
	}
}

func TestAggregateBase_Dispatch_UnknownCommand(t *testing.T) {
	agg := newTestOOAggregate(nil)
	err := agg.Dispatch(&anypb.Any{TypeUrl: "type.googleapis.com/examples.SomethingElse"})
	if err == nil {
		t.Fatal("expected an error for an unregistered command type")
	}
}

func TestAggregateBase_RebuildsFromPriorEvents(t *testing.T) {
	registered, err := PackAny(&testOORegistered{CustomerID: "cust-2"})
	if err != nil {
		t.Fatalf("PackAny: %v", err)
	}
	added, err := PackAny(&testOOItemAdded{AmountCents: 250})
	if err != nil {
		t.Fatalf("PackAny: %v", err)
	}

	events := &pb.EventBook{
		NextSequence: 2,
		Pages: []*pb.EventPage{
			{Sequence: 0, Event: registered},
			{Sequence: 1, Event: added},
		},
	}

	agg := newTestOOAggregate(events)
	if !agg.Exists() {
		t.Fatal("expected aggregate to exist after replaying prior events")
	}
	if agg.State().Total != 250 {
		t.Errorf("state.Total = %d, want 250", agg.State().Total)
	}

	cmd, err := PackAny(&testOOAddItem{AmountCents: 50})
	if err != nil {
		t.Fatalf("PackAny: %v", err)
	}
	if err := agg.Dispatch(cmd); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if agg.State().Total != 300 {
		t.Errorf("state.Total after second item = %d, want 300", agg.State().Total)
	}
	// Prior events are cleared after rebuild; only the newly recorded page remains.
	if len(agg.EventBook().Pages) != 1 {
		t.Fatalf("got %d pages after dispatch, want 1 new page", len(agg.EventBook().Pages))
	}
	if agg.EventBook().Pages[0].Sequence != 2 {
		t.Errorf("new page sequence = %d, want 2 (continuing from NextSequence)", agg.EventBook().Pages[0].Sequence)
	}
}

func TestAggregateBase_Handles_PanicsOnSuffixCollision(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected Handles to panic on a colliding suffix")
		}
	}()
	agg := &testOOAggregate{}
	agg.Init(nil, func() testOOState { return testOOState{} })
	agg.Handles("Register", func(cmd *testOORegister) (any, error) { return nil, nil })
	agg.Handles("Register", func(cmd *testOORegister) (any, error) { return nil, nil })
}

func TestAggregateBase_Descriptor(t *testing.T) {
	agg := newTestOOAggregate(nil)
	desc := agg.Descriptor()
	if desc.ComponentType != pb.ComponentAggregate {
		t.Errorf("ComponentType = %v, want ComponentAggregate", desc.ComponentType)
	}
	if desc.Name != "order" {
		t.Errorf("Name = %q, want order", desc.Name)
	}
	if len(desc.Inputs) != 1 || desc.Inputs[0].Domain != "order" {
		t.Fatalf("unexpected Inputs: %+v", desc.Inputs)
	}
	if len(desc.Inputs[0].Types) != 2 {
		t.Errorf("got %d registered types, want 2", len(desc.Inputs[0].Types))
	}
}

func TestAggregateBase_Handle_RPCEntryPoint(t *testing.T) {
	agg := newTestOOAggregate(nil)
	cmdAny, err := PackAny(&testOORegister{CustomerID: "cust-3"})
	if err != nil {
		t.Fatalf("PackAny: %v", err)
	}
	req := &pb.ContextualCommand{
		Command: &pb.CommandBook{Pages: []*pb.CommandPage{{Command: cmdAny}}},
	}
	resp, err := agg.Handle(req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Events == nil || len(resp.Events.Pages) != 1 {
		t.Fatalf("expected one event in response, got %+v", resp)
	}
}

func TestAggregateBase_HandleRevocation_DelegatesToFramework(t *testing.T) {
	agg := newTestOOAggregate(nil)
	resp, err := agg.HandleRevocation(&pb.Notification{})
	if err != nil {
		t.Fatalf("HandleRevocation: %v", err)
	}
	if !resp.EmitSystemRevocation {
		t.Error("expected EmitSystemRevocation=true when no custom compensation is registered")
	}
}
