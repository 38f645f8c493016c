package audit

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Fanout appends every event to all sinks concurrently. It fails when any
// sink fails; the others still receive the event.
type Fanout struct {
	sinks []Store
}

func NewFanout(sinks ...Store) *Fanout {
	kept := make([]Store, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Fanout{sinks: kept}
}

func (f *Fanout) Append(ctx context.Context, event Event) error {
	var g errgroup.Group
	for _, sink := range f.sinks {
		g.Go(func() error {
			return sink.Append(ctx, event)
		})
	}
	return g.Wait()
}
