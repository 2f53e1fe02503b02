package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"eventportal/internal/crm"
	"eventportal/internal/model"
)

type TicketService struct {
	opts Options
}

func NewTicketService(opts Options) *TicketService {
	return &TicketService{opts: opts.withDefaults()}
}

// ticketHead is the ticket with the records needed to pick its event.
type ticketHead struct {
	ticket     crm.Ticket
	contact    *model.Contact
	ticketType *model.TicketType
	event      crm.Event
}

func (s *TicketService) head(ctx context.Context, l *loader, id string, withRefs bool) (*ticketHead, error) {
	ticket, err := l.st.GetTicket(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	h := &ticketHead{ticket: ticket}

	var events []crm.Event
	g, gctx := errgroup.WithContext(ctx)

	if withRefs && ticket.ContactID != nil {
		g.Go(func() error {
			c, err := l.st.GetContact(gctx, *ticket.ContactID)
			if err != nil {
				return fmt.Errorf("failed to get contact: %w", err)
			}
			h.contact = contactToModel(c)
			return nil
		})
	}
	if withRefs && ticket.TicketTypeID != nil {
		g.Go(func() error {
			tt, err := l.st.GetTicketType(gctx, *ticket.TicketTypeID)
			if err != nil {
				return fmt.Errorf("failed to get ticket type: %w", err)
			}
			h.ticketType = ticketTypeToModel(tt)
			return nil
		})
	}
	g.Go(func() error {
		var err error
		events, err = l.st.ListTicketEvents(gctx, id)
		if err != nil {
			return fmt.Errorf("failed to list ticket events: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	h.event, err = selectTicketEvent(events, l.now)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Ticket aggregates everything the ticket page shows.
func (s *TicketService) Ticket(ctx context.Context, id string) (*model.TicketDetails, error) {
	st, err := s.opts.Connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	l := s.opts.loader(st)

	h, err := s.head(ctx, l, id, true)
	if err != nil {
		return nil, err
	}

	out := &model.TicketDetails{
		Ticket:     ticketToModel(h.ticket),
		TicketType: h.ticketType,
		Contact:    h.contact,
		Bookings:   []model.Booking{},
	}

	g, gctx := errgroup.WithContext(ctx)
	bundle := l.loadEvent(gctx, g, h.event, true)

	var links []model.TicketLink
	g.Go(func() error {
		links = l.links(gctx, h.ticket.TicketTypeID)
		return nil
	})

	g.Go(func() error {
		bookings, err := st.ListBookings(gctx, id)
		if err != nil {
			l.degraded("bookings", err)
			return nil
		}
		out.Bookings = bookingsToModel(bookings)
		return nil
	})

	if h.ticket.VehicleID != nil {
		g.Go(func() error {
			v, err := st.GetVehicle(gctx, *h.ticket.VehicleID)
			if err != nil {
				return fmt.Errorf("failed to get vehicle: %w", err)
			}
			out.Vehicle = vehicleToModel(v)
			out.VehicleImage = l.image(gctx, crm.SetVehicles, v.ID, "wdrgns_vehicleimage", v.Image)
			return nil
		})
	}

	g.Go(func() error {
		out.QRCode = s.opts.QR.Render(gctx, s.qrText(h.ticket))
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.Event = bundle.event
	out.Promoter = bundle.promoter
	out.Location = bundle.location
	out.EventAlerts = bundle.alerts
	out.EventSchedules = bundle.schedules
	out.Sponsors = bundle.sponsors
	out.PrimarySponsors = bundle.primarySponsors
	out.TicketLinks = links
	out.TicketLinkGroups = ClassifyLinks(links)
	return out, nil
}

// qrText is what the ticket's QR code encodes.
func (s *TicketService) qrText(t crm.Ticket) string {
	if t.DynamicURL != nil && *t.DynamicURL != "" {
		return *t.DynamicURL
	}
	if s.opts.BaseURL == "" {
		return ""
	}
	return strings.TrimSuffix(s.opts.BaseURL, "/") + "/tickets/" + t.ID
}

// Display returns the kiosk view of a ticket: the schedule of its event
// and its links.
func (s *TicketService) Display(ctx context.Context, id string) (*model.Display, error) {
	st, err := s.opts.Connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	l := s.opts.loader(st)

	h, err := s.head(ctx, l, id, false)
	if err != nil {
		return nil, err
	}

	out := &model.Display{EventSchedules: []model.EventSchedule{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := schedules(gctx, st, h.event.ID, l.now)
		if err != nil {
			l.degraded("schedules", err)
			return nil
		}
		out.EventSchedules = items
		return nil
	})
	g.Go(func() error {
		out.TicketLinks = l.links(gctx, h.ticket.TicketTypeID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.TicketLinkGroups = ClassifyLinks(out.TicketLinks)
	return out, nil
}
