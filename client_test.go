package angzarr

import (
	"context"
	"net"
	"os"
	"testing"

	pb "github.com/eventframe/angzarr/pb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// fakeEventQueryServer, fakeAggregateCoordinatorServer, and
// fakeSpeculativeServer implement the pb server interfaces directly so tests
// can dial a real in-process bufconn listener rather than mocking at the
// client layer, which the hand-authored services in pb/services.go (concrete
// structs over a ClientConnInterface, not interfaces) doesn't support.

type fakeEventQueryServer struct {
	getEventBookFn func(ctx context.Context, req *pb.Query) (*pb.EventBook, error)
}

func (f *fakeEventQueryServer) GetEventBook(ctx context.Context, req *pb.Query) (*pb.EventBook, error) {
	if f.getEventBookFn != nil {
		return f.getEventBookFn(ctx, req)
	}
	return &pb.EventBook{}, nil
}

func (f *fakeEventQueryServer) GetEvents(req *pb.Query, stream interface{ Send(*pb.EventBook) error }) error {
	return stream.Send(&pb.EventBook{NextSequence: 1})
}

type fakeAggregateCoordinatorServer struct {
	handleFn       func(ctx context.Context, req *pb.CommandBook) (*pb.CommandResponse, error)
	handleSyncFn   func(ctx context.Context, req *pb.SyncCommandBook) (*pb.CommandResponse, error)
	dryRunHandleFn func(ctx context.Context, req *pb.DryRunRequest) (*pb.CommandResponse, error)
}

func (f *fakeAggregateCoordinatorServer) Handle(ctx context.Context, req *pb.CommandBook) (*pb.CommandResponse, error) {
	if f.handleFn != nil {
		return f.handleFn(ctx, req)
	}
	return &pb.CommandResponse{}, nil
}

func (f *fakeAggregateCoordinatorServer) HandleSync(ctx context.Context, req *pb.SyncCommandBook) (*pb.CommandResponse, error) {
	if f.handleSyncFn != nil {
		return f.handleSyncFn(ctx, req)
	}
	return &pb.CommandResponse{}, nil
}

func (f *fakeAggregateCoordinatorServer) DryRunHandle(ctx context.Context, req *pb.DryRunRequest) (*pb.CommandResponse, error) {
	if f.dryRunHandleFn != nil {
		return f.dryRunHandleFn(ctx, req)
	}
	return &pb.CommandResponse{}, nil
}

type fakeSpeculativeServer struct {
	dryRunCommandFn          func(ctx context.Context, req *pb.DryRunRequest) (*pb.CommandResponse, error)
	speculateProjectorFn     func(ctx context.Context, req *pb.SpeculateProjectorRequest) (*pb.Projection, error)
	speculateSagaFn          func(ctx context.Context, req *pb.SpeculateSagaRequest) (*pb.SagaResponse, error)
	speculateProcessManagerFn func(ctx context.Context, req *pb.SpeculatePmRequest) (*pb.ProcessManagerHandleResponse, error)
}

func (f *fakeSpeculativeServer) DryRunCommand(ctx context.Context, req *pb.DryRunRequest) (*pb.CommandResponse, error) {
	if f.dryRunCommandFn != nil {
		return f.dryRunCommandFn(ctx, req)
	}
	return &pb.CommandResponse{}, nil
}

func (f *fakeSpeculativeServer) SpeculateProjector(ctx context.Context, req *pb.SpeculateProjectorRequest) (*pb.Projection, error) {
	if f.speculateProjectorFn != nil {
		return f.speculateProjectorFn(ctx, req)
	}
	return &pb.Projection{}, nil
}

func (f *fakeSpeculativeServer) SpeculateSaga(ctx context.Context, req *pb.SpeculateSagaRequest) (*pb.SagaResponse, error) {
	if f.speculateSagaFn != nil {
		return f.speculateSagaFn(ctx, req)
	}
	return &pb.SagaResponse{}, nil
}

func (f *fakeSpeculativeServer) SpeculateProcessManager(ctx context.Context, req *pb.SpeculatePmRequest) (*pb.ProcessManagerHandleResponse, error) {
	if f.speculateProcessManagerFn != nil {
		return f.speculateProcessManagerFn(ctx, req)
	}
	return &pb.ProcessManagerHandleResponse{}, nil
}

// dialBuf starts a bufconn-backed gRPC server running registrar and returns a
// connected *grpc.ClientConn plus a cleanup func.
func dialBuf(t *testing.T, registrar func(*grpc.Server)) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	server := grpc.NewServer()
	registrar(server)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// QueryClient tests

func TestQueryClient_GetEventBook(t *testing.T) {
	t.Run("successful response", func(t *testing.T) {
		fake := &fakeEventQueryServer{
			getEventBookFn: func(ctx context.Context, req *pb.Query) (*pb.EventBook, error) {
				return &pb.EventBook{NextSequence: 5}, nil
			},
		}
		conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterEventQueryServer(s, fake) })
		client := QueryClientFromConn(conn)

		result, err := client.GetEventBook(context.Background(), &pb.Query{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.NextSequence != 5 {
			t.Errorf("got NextSequence %d, want 5", result.NextSequence)
		}
	})

	t.Run("grpc error", func(t *testing.T) {
		fake := &fakeEventQueryServer{
			getEventBookFn: func(ctx context.Context, req *pb.Query) (*pb.EventBook, error) {
				return nil, status.Error(codes.NotFound, "not found")
			},
		}
		conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterEventQueryServer(s, fake) })
		client := QueryClientFromConn(conn)

		_, err := client.GetEventBook(context.Background(), &pb.Query{})
		if err == nil {
			t.Fatal("expected error")
		}
		clientErr := AsClientError(err)
		if clientErr == nil {
			t.Fatal("expected ClientError")
		}
		if clientErr.Kind != ErrGRPC {
			t.Errorf("got kind %v, want ErrGRPC", clientErr.Kind)
		}
	})
}

func TestQueryClient_GetEvents(t *testing.T) {
	t.Run("streams event books", func(t *testing.T) {
		fake := &fakeEventQueryServer{}
		conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterEventQueryServer(s, fake) })
		client := QueryClientFromConn(conn)

		books, err := client.GetEvents(context.Background(), &pb.Query{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(books) != 1 || books[0].NextSequence != 1 {
			t.Errorf("got %+v, want one book with NextSequence 1", books)
		}
	})
}

func TestQueryClient_Close(t *testing.T) {
	t.Run("nil connection", func(t *testing.T) {
		client := &QueryClient{conn: nil}
		if err := client.Close(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestQueryClientFromConn(t *testing.T) {
	client := QueryClientFromConn(nil)
	if client == nil {
		t.Error("expected non-nil client")
	}
}

// AggregateClient tests

func TestAggregateClient_Handle(t *testing.T) {
	t.Run("successful response", func(t *testing.T) {
		fake := &fakeAggregateCoordinatorServer{
			handleFn: func(ctx context.Context, req *pb.CommandBook) (*pb.CommandResponse, error) {
				return &pb.CommandResponse{Events: &pb.EventBook{NextSequence: 10}}, nil
			},
		}
		conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterAggregateCoordinatorServer(s, fake) })
		client := AggregateClientFromConn(conn)

		result, err := client.Handle(context.Background(), &pb.CommandBook{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Events.NextSequence != 10 {
			t.Errorf("got NextSequence %d, want 10", result.Events.NextSequence)
		}
	})

	t.Run("grpc error", func(t *testing.T) {
		fake := &fakeAggregateCoordinatorServer{
			handleFn: func(ctx context.Context, req *pb.CommandBook) (*pb.CommandResponse, error) {
				return nil, status.Error(codes.FailedPrecondition, "sequence mismatch")
			},
		}
		conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterAggregateCoordinatorServer(s, fake) })
		client := AggregateClientFromConn(conn)

		_, err := client.Handle(context.Background(), &pb.CommandBook{})
		if err == nil {
			t.Fatal("expected error")
		}
		clientErr := AsClientError(err)
		if clientErr == nil || !clientErr.IsPreconditionFailed() {
			t.Error("expected precondition failed error")
		}
	})
}

func TestAggregateClient_HandleSync(t *testing.T) {
	t.Run("successful response", func(t *testing.T) {
		fake := &fakeAggregateCoordinatorServer{}
		conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterAggregateCoordinatorServer(s, fake) })
		client := AggregateClientFromConn(conn)

		_, err := client.HandleSync(context.Background(), &pb.SyncCommandBook{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("grpc error", func(t *testing.T) {
		fake := &fakeAggregateCoordinatorServer{
			handleSyncFn: func(ctx context.Context, req *pb.SyncCommandBook) (*pb.CommandResponse, error) {
				return nil, status.Error(codes.Internal, "internal error")
			},
		}
		conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterAggregateCoordinatorServer(s, fake) })
		client := AggregateClientFromConn(conn)

		_, err := client.HandleSync(context.Background(), &pb.SyncCommandBook{})
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestAggregateClient_DryRunHandle(t *testing.T) {
	t.Run("successful response", func(t *testing.T) {
		fake := &fakeAggregateCoordinatorServer{}
		conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterAggregateCoordinatorServer(s, fake) })
		client := AggregateClientFromConn(conn)

		_, err := client.DryRunHandle(context.Background(), &pb.DryRunRequest{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("grpc error", func(t *testing.T) {
		fake := &fakeAggregateCoordinatorServer{
			dryRunHandleFn: func(ctx context.Context, req *pb.DryRunRequest) (*pb.CommandResponse, error) {
				return nil, status.Error(codes.InvalidArgument, "invalid")
			},
		}
		conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterAggregateCoordinatorServer(s, fake) })
		client := AggregateClientFromConn(conn)

		_, err := client.DryRunHandle(context.Background(), &pb.DryRunRequest{})
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestAggregateClient_Close(t *testing.T) {
	t.Run("nil connection", func(t *testing.T) {
		client := &AggregateClient{conn: nil}
		if err := client.Close(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestAggregateClientFromConn(t *testing.T) {
	client := AggregateClientFromConn(nil)
	if client == nil {
		t.Error("expected non-nil client")
	}
}

// SpeculativeClient tests

func TestSpeculativeClient_DryRun(t *testing.T) {
	t.Run("successful response", func(t *testing.T) {
		fake := &fakeSpeculativeServer{}
		conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterSpeculativeServer(s, fake) })
		client := SpeculativeClientFromConn(conn)

		_, err := client.DryRun(context.Background(), &pb.DryRunRequest{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("grpc error", func(t *testing.T) {
		fake := &fakeSpeculativeServer{
			dryRunCommandFn: func(ctx context.Context, req *pb.DryRunRequest) (*pb.CommandResponse, error) {
				return nil, status.Error(codes.Internal, "error")
			},
		}
		conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterSpeculativeServer(s, fake) })
		client := SpeculativeClientFromConn(conn)

		_, err := client.DryRun(context.Background(), &pb.DryRunRequest{})
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestSpeculativeClient_Projector(t *testing.T) {
	fake := &fakeSpeculativeServer{}
	conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterSpeculativeServer(s, fake) })
	client := SpeculativeClientFromConn(conn)

	_, err := client.Projector(context.Background(), &pb.SpeculateProjectorRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSpeculativeClient_Saga(t *testing.T) {
	fake := &fakeSpeculativeServer{}
	conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterSpeculativeServer(s, fake) })
	client := SpeculativeClientFromConn(conn)

	_, err := client.Saga(context.Background(), &pb.SpeculateSagaRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSpeculativeClient_ProcessManager(t *testing.T) {
	fake := &fakeSpeculativeServer{}
	conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterSpeculativeServer(s, fake) })
	client := SpeculativeClientFromConn(conn)

	_, err := client.ProcessManager(context.Background(), &pb.SpeculatePmRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSpeculativeClient_Close(t *testing.T) {
	t.Run("nil connection", func(t *testing.T) {
		client := &SpeculativeClient{conn: nil}
		if err := client.Close(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestSpeculativeClientFromConn(t *testing.T) {
	client := SpeculativeClientFromConn(nil)
	if client == nil {
		t.Error("expected non-nil client")
	}
}

// DomainClient tests

func TestDomainClient_Execute(t *testing.T) {
	fake := &fakeAggregateCoordinatorServer{
		handleFn: func(ctx context.Context, req *pb.CommandBook) (*pb.CommandResponse, error) {
			return &pb.CommandResponse{}, nil
		},
	}
	conn := dialBuf(t, func(s *grpc.Server) { pb.RegisterAggregateCoordinatorServer(s, fake) })
	client := &DomainClient{Aggregate: AggregateClientFromConn(conn)}

	result, err := client.Execute(context.Background(), &pb.CommandBook{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Error("expected non-nil response")
	}
}

func TestDomainClient_Close(t *testing.T) {
	t.Run("nil connection", func(t *testing.T) {
		client := &DomainClient{conn: nil}
		if err := client.Close(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestDomainClientFromConn(t *testing.T) {
	client := DomainClientFromConn(nil)
	if client == nil {
		t.Error("expected non-nil client")
	}
	if client.Aggregate == nil {
		t.Error("expected non-nil Aggregate")
	}
	if client.Query == nil {
		t.Error("expected non-nil Query")
	}
}

// Client tests

func TestClient_Close(t *testing.T) {
	t.Run("nil connection", func(t *testing.T) {
		client := &Client{conn: nil}
		if err := client.Close(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestClientFromConn(t *testing.T) {
	client := ClientFromConn(nil)
	if client == nil {
		t.Error("expected non-nil client")
	}
	if client.Aggregate == nil {
		t.Error("expected non-nil Aggregate")
	}
	if client.Query == nil {
		t.Error("expected non-nil Query")
	}
	if client.Speculative == nil {
		t.Error("expected non-nil Speculative")
	}
}

// FromEnv tests

func TestQueryClientFromEnv(t *testing.T) {
	t.Run("uses env var when set", func(t *testing.T) {
		os.Setenv("TEST_QUERY_ENDPOINT_12345", "localhost:99999")
		defer os.Unsetenv("TEST_QUERY_ENDPOINT_12345")

		_, err := QueryClientFromEnv("TEST_QUERY_ENDPOINT_12345", "default:8000")
		_ = err
	})

	t.Run("uses default when env not set", func(t *testing.T) {
		os.Unsetenv("NONEXISTENT_VAR_12345")

		_, err := QueryClientFromEnv("NONEXISTENT_VAR_12345", "localhost:99999")
		_ = err
	})
}

func TestAggregateClientFromEnv(t *testing.T) {
	t.Run("uses env var when set", func(t *testing.T) {
		os.Setenv("TEST_AGG_ENDPOINT_12345", "localhost:99999")
		defer os.Unsetenv("TEST_AGG_ENDPOINT_12345")

		_, err := AggregateClientFromEnv("TEST_AGG_ENDPOINT_12345", "default:8000")
		_ = err
	})

	t.Run("uses default when env not set", func(t *testing.T) {
		os.Unsetenv("NONEXISTENT_VAR_12345")

		_, err := AggregateClientFromEnv("NONEXISTENT_VAR_12345", "localhost:99999")
		_ = err
	})
}

func TestSpeculativeClientFromEnv(t *testing.T) {
	t.Run("uses env var when set", func(t *testing.T) {
		os.Setenv("TEST_SPEC_ENDPOINT_12345", "localhost:99999")
		defer os.Unsetenv("TEST_SPEC_ENDPOINT_12345")

		_, err := SpeculativeClientFromEnv("TEST_SPEC_ENDPOINT_12345", "default:8000")
		_ = err
	})
}

func TestDomainClientFromEnv(t *testing.T) {
	t.Run("uses env var when set", func(t *testing.T) {
		os.Setenv("TEST_DOMAIN_ENDPOINT_12345", "localhost:99999")
		defer os.Unsetenv("TEST_DOMAIN_ENDPOINT_12345")

		_, err := DomainClientFromEnv("TEST_DOMAIN_ENDPOINT_12345", "default:8000")
		_ = err
	})
}

func TestClientFromEnv(t *testing.T) {
	t.Run("uses env var when set", func(t *testing.T) {
		os.Setenv("TEST_CLIENT_ENDPOINT_12345", "localhost:99999")
		defer os.Unsetenv("TEST_CLIENT_ENDPOINT_12345")

		_, err := ClientFromEnv("TEST_CLIENT_ENDPOINT_12345", "default:8000")
		_ = err
	})
}
