package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"eventportal/internal/model"
)

type EventService struct {
	opts Options
}

func NewEventService(opts Options) *EventService {
	return &EventService{opts: opts.withDefaults()}
}

// Event aggregates an event page. Unlike the ticket page, all of the
// event's alerts are returned.
func (s *EventService) Event(ctx context.Context, id string) (*model.EventDetails, error) {
	st, err := s.opts.Connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	l := s.opts.loader(st)

	e, err := st.GetEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	b := l.loadEvent(gctx, g, e, false)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.EventDetails{
		Event:           b.event,
		Promoter:        b.promoter,
		Location:        b.location,
		EventAlerts:     b.alerts,
		EventSchedules:  b.schedules,
		Sponsors:        b.sponsors,
		PrimarySponsors: b.primarySponsors,
	}, nil
}
