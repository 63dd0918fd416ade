package angzarr

import (
	"testing"

	pb "github.com/eventframe/angzarr/pb"
)

type testPMState struct {
	ReservationsMade int
}

type testPMProcessStarted struct {
	OrderID string `json:"order_id"`
}

func newTestOOPM() *ProcessManagerBase[*testPMState] {
	pm := &ProcessManagerBase[*testPMState]{}
	pm.Init("pm-test-fulfillment", "fulfillment", []string{"order", "inventory"})
	pm.WithStateFactory(func() *testPMState { return &testPMState{} })
	pm.Applies("ProcessStarted", func(s *testPMState, e *testPMProcessStarted) {
		s.ReservationsMade++
	})
	pm.Prepares("OrderCreated", func(trigger *pb.EventBook, s *testPMState, e *testOOOrderCreated) []*pb.Cover {
		return []*pb.Cover{{Domain: "inventory", Root: DeriveRoot("inventory", e.ProductID)}}
	})
	pm.Handles("OrderCreated", func(trigger *pb.EventBook, s *testPMState, e *testOOOrderCreated, dests []*pb.EventBook) ([]*pb.CommandBook, *pb.EventBook, error) {
		cmd, err := PackAny(&testOOAddItem{AmountCents: int64(e.Quantity)})
		if err != nil {
			return nil, nil, err
		}
		started, err := PackAny(&testPMProcessStarted{OrderID: e.ProductID})
		if err != nil {
			return nil, nil, err
		}
		return []*pb.CommandBook{
				{Cover: &pb.Cover{Domain: "inventory"}, Pages: []*pb.CommandPage{{Command: cmd}}},
			}, &pb.EventBook{Pages: []*pb.EventPage{{Event: started}}}, nil
	})
	pm.OnRejected("inventory", "testOOAddItem", func(s *testPMState, n *pb.Notification) *RejectionHandlerResponse {
		return &RejectionHandlerResponse{Notification: &pb.Notification{}}
	})
	return pm
}

func TestProcessManagerBase_PrepareDestinations(t *testing.T) {
	pm := newTestOOPM()
	covers := pm.PrepareDestinations(testOOOrderCreatedBook(t), nil)
	if len(covers) != 1 || covers[0].Domain != "inventory" {
		t.Fatalf("unexpected covers: %+v", covers)
	}
}

func TestProcessManagerBase_PrepareDestinations_NoTrigger(t *testing.T) {
	pm := newTestOOPM()
	if covers := pm.PrepareDestinations(nil, nil); covers != nil {
		t.Errorf("expected nil covers, got %v", covers)
	}
}

func TestProcessManagerBase_Handle(t *testing.T) {
	pm := newTestOOPM()
	destinations := []*pb.EventBook{{Cover: &pb.Cover{Domain: "inventory"}, NextSequence: 1}}

	commands, pmEvents, notification, err := pm.Handle(testOOOrderCreatedBook(t), nil, destinations)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(commands) != 1 {
		t.Fatalf("got %d commands, want 1", len(commands))
	}
	if pmEvents == nil || len(pmEvents.Pages) != 1 {
		t.Fatalf("expected one PM event recorded, got %+v", pmEvents)
	}
	if notification != nil {
		t.Errorf("expected no notification for a normal event, got %+v", notification)
	}
}

func TestProcessManagerBase_RebuildState(t *testing.T) {
	pm := newTestOOPM()
	started, err := PackAny(&testPMProcessStarted{OrderID: "order-1"})
	if err != nil {
		t.Fatalf("PackAny: %v", err)
	}
	processState := &pb.EventBook{Pages: []*pb.EventPage{{Event: started}}}

	state := pm.RebuildState(processState)
	if state.ReservationsMade != 1 {
		t.Errorf("ReservationsMade = %d, want 1", state.ReservationsMade)
	}
}

func TestProcessManagerBase_OnRejected_Routing(t *testing.T) {
	pm := newTestOOPM()

	rejectedCmd, err := PackAny(&testOOAddItem{AmountCents: 1})
	if err != nil {
		t.Fatalf("PackAny: %v", err)
	}
	rejection := &pb.RejectionNotification{
		RejectedCommand: &pb.CommandBook{
			Cover: &pb.Cover{Domain: "inventory"},
			Pages: []*pb.CommandPage{{Command: rejectedCmd}},
		},
	}
	payload, err := PackAny(rejection)
	if err != nil {
		t.Fatalf("PackAny: %v", err)
	}
	notificationAny, err := PackAny(&pb.Notification{Payload: payload})
	if err != nil {
		t.Fatalf("PackAny: %v", err)
	}

	trigger := &pb.EventBook{
		Cover: &pb.Cover{Domain: "order"},
		Pages: []*pb.EventPage{{Event: notificationAny}},
	}

	_, _, notification, err := pm.Handle(trigger, nil, nil)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if notification == nil {
		t.Fatal("expected OnRejected's handler to surface a notification")
	}
}

func TestProcessManagerBase_Descriptor(t *testing.T) {
	pm := newTestOOPM()
	desc := pm.Descriptor()
	if desc.ComponentType != pb.ComponentProcessManager {
		t.Errorf("ComponentType = %v, want ComponentProcessManager", desc.ComponentType)
	}
	if len(desc.Inputs) != 2 {
		t.Fatalf("got %d inputs, want 2 (order, inventory)", len(desc.Inputs))
	}
}
