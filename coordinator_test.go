package angzarr

import (
	"context"
	"testing"
	"time"

	pb "github.com/eventframe/angzarr/pb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/anypb"
)

func orderCreatedSource() *pb.EventBook {
	return &pb.EventBook{
		Cover: &pb.Cover{Domain: "order"},
		Pages: []*pb.EventPage{
			{Sequence: 1, Event: &anypb.Any{TypeUrl: "type.googleapis.com/examples.OrderCreated"}},
		},
	}
}

// TestCoordinator_FetchDestinations_Concurrent confirms fetchDestinations
// resolves every Cover the router's Prepare handler declares, assigning each
// result to its requested position regardless of the order the underlying
// RPCs actually complete in: the "inventory" fetch is made to finish after
// the "shipping" one, and the result slice must still come back in
// request order.
func TestCoordinator_FetchDestinations_Concurrent(t *testing.T) {
	fake := &fakeEventQueryServer{
		getEventBookFn: func(ctx context.Context, req *pb.Query) (*pb.EventBook, error) {
			domain := req.GetCover().GetDomain()
			if domain == "inventory" {
				time.Sleep(20 * time.Millisecond)
			}
			return &pb.EventBook{Cover: &pb.Cover{Domain: domain}, NextSequence: 1}, nil
		},
	}
	conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterEventQueryServer(s, fake) })
	query := QueryClientFromConn(conn)

	router := NewEventRouter("saga-fulfillment").
		Domain("order").
		Prepare("OrderCreated", func(source *pb.EventBook, event *anypb.Any) []*pb.Cover {
			return []*pb.Cover{
				{Domain: "inventory"},
				{Domain: "shipping"},
			}
		})

	coord := NewCoordinator(router, query)
	destinations, err := coord.fetchDestinations(context.Background(), orderCreatedSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(destinations) != 2 {
		t.Fatalf("got %d destinations, want 2", len(destinations))
	}
	if destinations[0].Cover.Domain != "inventory" {
		t.Errorf("destinations[0] domain = %q, want inventory", destinations[0].Cover.Domain)
	}
	if destinations[1].Cover.Domain != "shipping" {
		t.Errorf("destinations[1] domain = %q, want shipping", destinations[1].Cover.Domain)
	}
}

// TestCoordinator_FetchDestinations_NoPrepare confirms a source event with no
// matching Prepare handler yields no destinations rather than an error.
func TestCoordinator_FetchDestinations_NoPrepare(t *testing.T) {
	fake := &fakeEventQueryServer{}
	conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterEventQueryServer(s, fake) })
	query := QueryClientFromConn(conn)

	router := NewEventRouter("saga-fulfillment").Domain("order")
	coord := NewCoordinator(router, query)

	destinations, err := coord.fetchDestinations(context.Background(), orderCreatedSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if destinations != nil {
		t.Errorf("expected nil destinations, got %v", destinations)
	}
}

// TestCoordinator_FetchDestinations_PropagatesError confirms one failing
// destination fetch fails the whole batch.
func TestCoordinator_FetchDestinations_PropagatesError(t *testing.T) {
	fake := &fakeEventQueryServer{
		getEventBookFn: func(ctx context.Context, req *pb.Query) (*pb.EventBook, error) {
			if req.GetCover().GetDomain() == "inventory" {
				return nil, status.Error(codes.Unavailable, "inventory service down")
			}
			return &pb.EventBook{}, nil
		},
	}
	conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterEventQueryServer(s, fake) })
	query := QueryClientFromConn(conn)

	router := NewEventRouter("saga-fulfillment").
		Domain("order").
		Prepare("OrderCreated", func(source *pb.EventBook, event *anypb.Any) []*pb.Cover {
			return []*pb.Cover{{Domain: "inventory"}, {Domain: "shipping"}}
		})

	coord := NewCoordinator(router, query)
	_, err := coord.fetchDestinations(context.Background(), orderCreatedSource())
	if err == nil {
		t.Fatal("expected error")
	}
	if AsClientError(err) == nil {
		t.Fatalf("expected a *ClientError, got %T: %v", err, err)
	}
}

// TestCoordinator_Run exercises the full Prepare -> fetch -> Dispatch cycle:
// the router declares one destination, the coordinator fetches it, and the
// event handler receives both source and the fetched destination to produce
// an outgoing command.
func TestCoordinator_Run(t *testing.T) {
	var gotDestinations []*pb.EventBook
	fake := &fakeEventQueryServer{
		getEventBookFn: func(ctx context.Context, req *pb.Query) (*pb.EventBook, error) {
			return &pb.EventBook{
				Cover:        req.GetCover(),
				NextSequence: 3,
			}, nil
		},
	}
	conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterEventQueryServer(s, fake) })
	query := QueryClientFromConn(conn)

	router := NewEventRouter("saga-fulfillment").
		Domain("order").
		Prepare("OrderCreated", func(source *pb.EventBook, event *anypb.Any) []*pb.Cover {
			return []*pb.Cover{{Domain: "inventory"}}
		}).
		On("OrderCreated", func(source *pb.EventBook, event *anypb.Any, destinations []*pb.EventBook) ([]*pb.CommandBook, error) {
			gotDestinations = destinations
			return []*pb.CommandBook{
				{Cover: &pb.Cover{Domain: "inventory"}},
			}, nil
		})

	coord := NewCoordinator(router, query)
	commands, err := coord.Run(context.Background(), orderCreatedSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(commands) != 1 {
		t.Fatalf("got %d commands, want 1", len(commands))
	}
	if commands[0].Cover.Domain != "inventory" {
		t.Errorf("command domain = %q, want inventory", commands[0].Cover.Domain)
	}
	if len(gotDestinations) != 1 || gotDestinations[0].NextSequence != 3 {
		t.Fatalf("handler did not receive fetched destination: %+v", gotDestinations)
	}
}

// TestCoordinator_Run_NoDestinations confirms a source with no Prepare
// registration still dispatches (with a nil destinations slice) rather than
// short-circuiting before Dispatch runs.
func TestCoordinator_Run_NoDestinations(t *testing.T) {
	fake := &fakeEventQueryServer{}
	conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterEventQueryServer(s, fake) })
	query := QueryClientFromConn(conn)

	called := false
	router := NewEventRouter("saga-fulfillment").
		Domain("order").
		On("OrderCreated", func(source *pb.EventBook, event *anypb.Any, destinations []*pb.EventBook) ([]*pb.CommandBook, error) {
			called = true
			if destinations != nil {
				t.Errorf("expected nil destinations, got %v", destinations)
			}
			return nil, nil
		})

	coord := NewCoordinator(router, query)
	if _, err := coord.Run(context.Background(), orderCreatedSource()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("handler not called")
	}
}
