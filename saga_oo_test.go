package angzarr

import (
	"testing"

	pb "github.com/eventframe/angzarr/pb"
)

type testOOOrderCreated struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

func newTestOOSaga() *SagaBase {
	s := &SagaBase{}
	s.Init("saga-test-fulfillment", "order", "inventory")
	s.Prepares("OrderCreated", func(e *testOOOrderCreated) []*pb.Cover {
		return []*pb.Cover{{Domain: "inventory", Root: DeriveRoot("inventory", e.ProductID)}}
	})
	s.ReactsTo("OrderCreated", func(e *testOOOrderCreated, dests []*pb.EventBook) (*pb.CommandBook, error) {
		var nextSeq uint64
		if len(dests) > 0 && dests[0] != nil {
			nextSeq = dests[0].NextSequence
		}
		cmd, err := PackAny(&testOOAddItem{AmountCents: int64(e.Quantity)})
		if err != nil {
			return nil, err
		}
		return &pb.CommandBook{
			Cover: &pb.Cover{Domain: "inventory"},
			Pages: []*pb.CommandPage{{Sequence: nextSeq, Command: cmd}},
		}, nil
	})
	return s
}

func testOOOrderCreatedBook(t *testing.T) *pb.EventBook {
	t.Helper()
	eventAny, err := PackAny(&testOOOrderCreated{ProductID: "sku-1", Quantity: 3})
	if err != nil {
		t.Fatalf("PackAny: %v", err)
	}
	return &pb.EventBook{
		Cover: &pb.Cover{Domain: "order"},
		Pages: []*pb.EventPage{{Sequence: 0, Event: eventAny}},
	}
}

func TestSagaBase_PrepareDestinations(t *testing.T) {
	saga := newTestOOSaga()
	covers := saga.PrepareDestinations(testOOOrderCreatedBook(t))
	if len(covers) != 1 {
		t.Fatalf("got %d covers, want 1", len(covers))
	}
	if covers[0].Domain != "inventory" {
		t.Errorf("cover domain = %q, want inventory", covers[0].Domain)
	}
}

func TestSagaBase_PrepareDestinations_NoSource(t *testing.T) {
	saga := newTestOOSaga()
	if covers := saga.PrepareDestinations(nil); covers != nil {
		t.Errorf("expected nil covers for a nil source, got %v", covers)
	}
}

func TestSagaBase_Execute(t *testing.T) {
	saga := newTestOOSaga()
	destinations := []*pb.EventBook{{Cover: &pb.Cover{Domain: "inventory"}, NextSequence: 5}}

	commands, err := saga.Execute(testOOOrderCreatedBook(t), destinations)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(commands) != 1 {
		t.Fatalf("got %d commands, want 1", len(commands))
	}
	if commands[0].Pages[0].Sequence != 5 {
		t.Errorf("command sequence = %d, want 5 (from destination's NextSequence)", commands[0].Pages[0].Sequence)
	}
}

func TestSagaBase_Execute_NoSource(t *testing.T) {
	saga := newTestOOSaga()
	commands, err := saga.Execute(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if commands != nil {
		t.Errorf("expected nil commands, got %v", commands)
	}
}

func TestSagaBase_ReactsToMulti(t *testing.T) {
	s := &SagaBase{}
	s.Init("saga-test-multi", "order", "inventory")
	s.ReactsToMulti("OrderCreated", func(e *testOOOrderCreated, dests []*pb.EventBook) ([]*pb.CommandBook, error) {
		return []*pb.CommandBook{
			{Cover: &pb.Cover{Domain: "inventory"}},
			{Cover: &pb.Cover{Domain: "shipping"}},
		}, nil
	})

	commands, err := s.Execute(testOOOrderCreatedBook(t), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(commands) != 2 {
		t.Fatalf("got %d commands, want 2", len(commands))
	}
}

func TestSagaBase_Prepares_PanicsOnSuffixCollision(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected Prepares to panic on a colliding suffix")
		}
	}()
	s := &SagaBase{}
	s.Init("saga-test-collision", "order", "inventory")
	s.Prepares("OrderCreated", func(e *testOOOrderCreated) []*pb.Cover { return nil })
	s.Prepares("examples.OrderCreated", func(e *testOOOrderCreated) []*pb.Cover { return nil })
}

func TestSagaBase_Descriptor(t *testing.T) {
	saga := newTestOOSaga()
	desc := saga.Descriptor()
	if desc.ComponentType != pb.ComponentSaga {
		t.Errorf("ComponentType = %v, want ComponentSaga", desc.ComponentType)
	}
	if desc.Name != "saga-test-fulfillment" {
		t.Errorf("Name = %q, want saga-test-fulfillment", desc.Name)
	}
	if len(desc.Inputs) != 1 || desc.Inputs[0].Domain != "order" {
		t.Fatalf("unexpected Inputs: %+v", desc.Inputs)
	}
}
