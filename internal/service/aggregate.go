package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"eventportal/internal/assets"
	"eventportal/internal/crm"
	"eventportal/internal/model"
	"eventportal/internal/richtext"
)

// Options carries what the read services share.
type Options struct {
	Connector Connector
	Images    *assets.Resolver
	QR        *assets.QR
	Text      *richtext.Renderer
	Sponsors  Sponsors
	// BaseURL is the public URL of the portal, used for QR fallbacks.
	BaseURL string
	Now     func() time.Time
	Log     *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Images == nil {
		o.Images = assets.NewResolver(o.Log)
	}
	return o
}

// eventBundle is everything loaded around a selected event.
type eventBundle struct {
	event           model.Event
	promoter        *model.Promoter
	location        *model.Location
	alerts          []model.EventAlert
	schedules       []model.EventSchedule
	sponsors        []model.Sponsor
	primarySponsors []model.Sponsor
}

// loader fans out the upstream reads of one request.
type loader struct {
	opts Options
	st   Store
	now  time.Time
}

func (o Options) loader(st Store) *loader {
	return &loader{opts: o, st: st, now: o.Now().UTC()}
}

// degraded logs a failed optional read.
func (l *loader) degraded(what string, err error) {
	l.opts.Log.Warn("Optional upstream read failed",
		zap.String("part", what),
		zap.Error(err),
	)
}

// image resolves a full-size image column when the record says it has one,
// falling back to the inline thumbnail.
func (l *loader) image(ctx context.Context, set, id, column string, inline *string) *string {
	if inline == nil || *inline == "" {
		return nil
	}
	if uri := l.opts.Images.Image(ctx, l.st, set, id, column); uri != nil {
		return uri
	}
	return assets.FromBase64(inline)
}

// loadEvent schedules the reads around e on g. The bundle is complete once
// g.Wait returns nil. With activeAlertsOnly only alerts active now are
// loaded.
func (l *loader) loadEvent(ctx context.Context, g *errgroup.Group, e crm.Event, activeAlertsOnly bool) *eventBundle {
	b := &eventBundle{
		event:           eventToModel(e),
		alerts:          []model.EventAlert{},
		schedules:       []model.EventSchedule{},
		sponsors:        []model.Sponsor{},
		primarySponsors: []model.Sponsor{},
	}
	b.event.DescriptionHTML = l.opts.Text.RenderPtr(e.Description)

	g.Go(func() error {
		b.event.Image = l.image(ctx, crm.SetEvents, e.ID, "wdrgns_image", e.Image)
		return nil
	})
	g.Go(func() error {
		b.event.Logo = l.image(ctx, crm.SetEvents, e.ID, "wdrgns_logo", e.Logo)
		return nil
	})
	g.Go(func() error {
		b.event.Map = l.image(ctx, crm.SetEvents, e.ID, "wdrgns_eventmap", e.EventMap)
		return nil
	})

	if e.PromoterID != nil {
		g.Go(func() error {
			a, err := l.st.GetAccount(ctx, *e.PromoterID)
			if err != nil {
				return fmt.Errorf("failed to get promoter: %w", err)
			}
			b.promoter = promoterToModel(a)
			b.promoter.Logo = l.image(ctx, crm.SetAccounts, a.ID, "entityimage", a.EntityImage)
			return nil
		})
	}

	if e.LocationID != nil {
		g.Go(func() error {
			loc, err := l.st.GetLocation(ctx, *e.LocationID)
			if err != nil {
				return fmt.Errorf("failed to get location: %w", err)
			}
			b.location = locationToModel(loc)
			if loc.SuburbID != nil {
				s, err := l.st.GetSuburb(ctx, *loc.SuburbID)
				if err != nil {
					l.degraded("suburb", err)
				} else {
					applySuburb(b.location, s)
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		var activeAt *time.Time
		if activeAlertsOnly {
			activeAt = &l.now
		}
		alerts, err := l.st.ListEventAlerts(ctx, e.ID, activeAt)
		if err != nil {
			l.degraded("alerts", err)
			return nil
		}
		b.alerts = alertsToModel(alerts)
		return nil
	})

	g.Go(func() error {
		items, err := schedules(ctx, l.st, e.ID, l.now)
		if err != nil {
			l.degraded("schedules", err)
			return nil
		}
		b.schedules = items
		return nil
	})

	g.Go(func() error {
		b.sponsors = l.sponsors(ctx, e.ID, l.opts.Sponsors.Relationship)
		return nil
	})
	g.Go(func() error {
		b.primarySponsors = l.sponsors(ctx, e.ID, l.opts.Sponsors.PrimaryRelationship)
		return nil
	})

	return b
}

func (l *loader) sponsors(ctx context.Context, eventID, relationship string) []model.Sponsor {
	if relationship == "" {
		return []model.Sponsor{}
	}
	accounts, err := l.st.ListSponsors(ctx, eventID, relationship)
	if err != nil {
		l.degraded(relationship, err)
		return []model.Sponsor{}
	}
	return sponsorsToModel(accounts)
}

func (l *loader) links(ctx context.Context, ticketTypeID *string) []model.TicketLink {
	if ticketTypeID == nil {
		return []model.TicketLink{}
	}
	links, err := l.st.ListTicketLinks(ctx, *ticketTypeID)
	if err != nil {
		l.degraded("ticket links", err)
		return []model.TicketLink{}
	}
	return linksToModel(links)
}
