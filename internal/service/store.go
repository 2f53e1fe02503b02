package service

import (
	"context"
	"time"

	"eventportal/internal/crm"
)

// Store is the set of upstream reads and writes the services need.
// *crm.Queries implements it.
type Store interface {
	GetTicket(ctx context.Context, id string) (crm.Ticket, error)
	GetContact(ctx context.Context, id string) (crm.Contact, error)
	GetTicketType(ctx context.Context, id string) (crm.TicketType, error)
	ListTicketEvents(ctx context.Context, ticketID string) ([]crm.Event, error)
	GetEvent(ctx context.Context, id string) (crm.Event, error)
	GetAccount(ctx context.Context, id string) (crm.Account, error)
	GetLocation(ctx context.Context, id string) (crm.Location, error)
	GetSuburb(ctx context.Context, id string) (crm.Suburb, error)
	ListEventAlerts(ctx context.Context, eventID string, activeAt *time.Time) ([]crm.EventAlert, error)
	ListSchedulesFrom(ctx context.Context, eventID string, from time.Time) ([]crm.EventSchedule, error)
	ListSchedulesBefore(ctx context.Context, eventID string, before time.Time) ([]crm.EventSchedule, error)
	ListTicketLinks(ctx context.Context, ticketTypeID string) ([]crm.TicketLink, error)
	ListSponsors(ctx context.Context, eventID, relationship string) ([]crm.Account, error)
	ListBookings(ctx context.Context, ticketID string) ([]crm.Booking, error)
	GetVehicle(ctx context.Context, id string) (crm.Vehicle, error)
	ListAskAdam(ctx context.Context, ticketID string) ([]crm.AskAdam, error)
	LatestAskAdam(ctx context.Context, ticketID string) (*crm.AskAdam, error)
	FirstAskAdam(ctx context.Context, ticketID string) (*crm.AskAdam, error)
	CreateAskAdam(ctx context.Context, in crm.NewAskAdam) (string, error)
	FetchColumn(ctx context.Context, set, id, column string) ([]byte, string, error)
}

// Connector opens an authenticated upstream session. A new session (and
// token) is obtained for every inbound request.
type Connector interface {
	Connect(ctx context.Context) (Store, error)
}

type ConnectorFunc func(ctx context.Context) (Store, error)

func (f ConnectorFunc) Connect(ctx context.Context) (Store, error) {
	return f(ctx)
}

// CRMConnector adapts a crm.Client to Connector.
func CRMConnector(c *crm.Client) Connector {
	return ConnectorFunc(func(ctx context.Context) (Store, error) {
		q, err := c.Connect(ctx)
		if err != nil {
			return nil, err
		}
		return q, nil
	})
}

// Sponsors names the event→account relationships holding sponsors.
type Sponsors struct {
	Relationship        string
	PrimaryRelationship string
}
