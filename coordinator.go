package angzarr

import (
	"context"

	pb "github.com/eventframe/angzarr/pb"
	"golang.org/x/sync/errgroup"
)

// Coordinator drives the Prepare/Execute two-phase protocol shared by sagas
// and process managers: Prepare declares which destination aggregates an
// event needs to see, the coordinator fetches them concurrently, and Execute
// (the router's Dispatch) turns source event plus destinations into outgoing
// commands.
//
// Aggregates skip this: a CommandRouter rebuilds its own state from the
// events the gateway already attached to the ContextualCommand, so there is
// nothing to prefetch.
type Coordinator struct {
	router *EventRouter
	query  *QueryClient
}

// NewCoordinator builds a Coordinator around an EventRouter and the query
// client used to fetch destination state.
func NewCoordinator(router *EventRouter, query *QueryClient) *Coordinator {
	return &Coordinator{router: router, query: query}
}

// Run executes one full Prepare/Execute cycle for a source EventBook:
// it asks the router which destinations are needed, fetches each
// concurrently, then dispatches the source plus destinations through the
// router's handlers to produce outgoing CommandBooks.
func (c *Coordinator) Run(ctx context.Context, source *pb.EventBook) ([]*pb.CommandBook, error) {
	destinations, err := c.fetchDestinations(ctx, source)
	if err != nil {
		return nil, err
	}
	return c.router.Dispatch(source, destinations)
}

// fetchDestinations runs PrepareDestinations and resolves each declared
// Cover to its current EventBook, in parallel. A destination with no prior
// events still yields an (empty) EventBook rather than being dropped, since
// handlers should see "this aggregate doesn't exist yet" explicitly.
func (c *Coordinator) fetchDestinations(ctx context.Context, source *pb.EventBook) ([]*pb.EventBook, error) {
	covers := c.router.PrepareDestinations(source)
	if len(covers) == 0 {
		return nil, nil
	}

	books := make([]*pb.EventBook, len(covers))
	g, gctx := errgroup.WithContext(ctx)
	for i, cover := range covers {
		i, cover := i, cover
		g.Go(func() error {
			query := NewQueryWithRange(cover, 0, nil)
			book, err := c.query.GetEventBook(gctx, query)
			if err != nil {
				return err
			}
			books[i] = book
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return books, nil
}
