package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"eventportal/internal/crm"
)

var errUpstream = errors.New("upstream unavailable")

func notFound(set string) error {
	return &crm.Error{StatusCode: 404, Code: "0x80040217", Message: set + " does not exist"}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func dt(t time.Time) *crm.DateTime { return &crm.DateTime{Time: t} }

// fakeStore is an in-memory Store. Fields ending in Err make the matching
// call fail.
type fakeStore struct {
	mu sync.Mutex

	tickets     map[string]crm.Ticket
	contacts    map[string]crm.Contact
	ticketTypes map[string]crm.TicketType
	events      map[string]crm.Event
	ticketEvent map[string][]string
	accounts    map[string]crm.Account
	locations   map[string]crm.Location
	suburbs     map[string]crm.Suburb
	alerts      []crm.EventAlert
	schedules   []crm.EventSchedule
	links       map[string][]crm.TicketLink
	sponsors    map[string][]crm.Account
	bookings    map[string][]crm.Booking
	vehicles    map[string]crm.Vehicle
	chats       []crm.AskAdam
	columns     map[string][]byte

	alertsErr   error
	scheduleErr error
	linksErr    error
	sponsorsErr error
	promoterErr error
	createErr   error

	activeAt     *time.Time
	scheduleHits int
	created      []crm.NewAskAdam
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tickets:     map[string]crm.Ticket{},
		contacts:    map[string]crm.Contact{},
		ticketTypes: map[string]crm.TicketType{},
		events:      map[string]crm.Event{},
		ticketEvent: map[string][]string{},
		accounts:    map[string]crm.Account{},
		locations:   map[string]crm.Location{},
		suburbs:     map[string]crm.Suburb{},
		links:       map[string][]crm.TicketLink{},
		sponsors:    map[string][]crm.Account{},
		bookings:    map[string][]crm.Booking{},
		vehicles:    map[string]crm.Vehicle{},
		columns:     map[string][]byte{},
	}
}

func (f *fakeStore) connector() Connector {
	return ConnectorFunc(func(ctx context.Context) (Store, error) { return f, nil })
}

func (f *fakeStore) GetTicket(ctx context.Context, id string) (crm.Ticket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return crm.Ticket{}, notFound(crm.SetTickets)
	}
	return t, nil
}

func (f *fakeStore) GetContact(ctx context.Context, id string) (crm.Contact, error) {
	c, ok := f.contacts[id]
	if !ok {
		return crm.Contact{}, notFound(crm.SetContacts)
	}
	return c, nil
}

func (f *fakeStore) GetTicketType(ctx context.Context, id string) (crm.TicketType, error) {
	t, ok := f.ticketTypes[id]
	if !ok {
		return crm.TicketType{}, notFound(crm.SetTicketTypes)
	}
	return t, nil
}

func (f *fakeStore) ListTicketEvents(ctx context.Context, ticketID string) ([]crm.Event, error) {
	var out []crm.Event
	for _, id := range f.ticketEvent[ticketID] {
		out = append(out, f.events[id])
	}
	return out, nil
}

func (f *fakeStore) GetEvent(ctx context.Context, id string) (crm.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return crm.Event{}, notFound(crm.SetEvents)
	}
	return e, nil
}

func (f *fakeStore) GetAccount(ctx context.Context, id string) (crm.Account, error) {
	if f.promoterErr != nil {
		return crm.Account{}, f.promoterErr
	}
	a, ok := f.accounts[id]
	if !ok {
		return crm.Account{}, notFound(crm.SetAccounts)
	}
	return a, nil
}

func (f *fakeStore) GetLocation(ctx context.Context, id string) (crm.Location, error) {
	l, ok := f.locations[id]
	if !ok {
		return crm.Location{}, notFound(crm.SetLocations)
	}
	return l, nil
}

func (f *fakeStore) GetSuburb(ctx context.Context, id string) (crm.Suburb, error) {
	s, ok := f.suburbs[id]
	if !ok {
		return crm.Suburb{}, notFound(crm.SetSuburbs)
	}
	return s, nil
}

func (f *fakeStore) ListEventAlerts(ctx context.Context, eventID string, activeAt *time.Time) ([]crm.EventAlert, error) {
	f.mu.Lock()
	f.activeAt = activeAt
	f.mu.Unlock()
	if f.alertsErr != nil {
		return nil, f.alertsErr
	}
	var out []crm.EventAlert
	for _, a := range f.alerts {
		if a.EventID == nil || *a.EventID != eventID {
			continue
		}
		if activeAt != nil && (a.StartTime.Time.After(*activeAt) || !a.EndTime.Time.After(*activeAt)) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeStore) schedulesWhere(eventID string, keep func(time.Time) bool) []crm.EventSchedule {
	var out []crm.EventSchedule
	for _, s := range f.schedules {
		if s.EventID != nil && *s.EventID == eventID && s.StartTime != nil && keep(s.StartTime.Time) {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeStore) ListSchedulesFrom(ctx context.Context, eventID string, from time.Time) ([]crm.EventSchedule, error) {
	f.mu.Lock()
	f.scheduleHits++
	f.mu.Unlock()
	if f.scheduleErr != nil {
		return nil, f.scheduleErr
	}
	return f.schedulesWhere(eventID, func(t time.Time) bool { return !t.Before(from) }), nil
}

func (f *fakeStore) ListSchedulesBefore(ctx context.Context, eventID string, before time.Time) ([]crm.EventSchedule, error) {
	f.mu.Lock()
	f.scheduleHits++
	f.mu.Unlock()
	if f.scheduleErr != nil {
		return nil, f.scheduleErr
	}
	return f.schedulesWhere(eventID, func(t time.Time) bool { return t.Before(before) }), nil
}

func (f *fakeStore) ListTicketLinks(ctx context.Context, ticketTypeID string) ([]crm.TicketLink, error) {
	if f.linksErr != nil {
		return nil, f.linksErr
	}
	return f.links[ticketTypeID], nil
}

func (f *fakeStore) ListSponsors(ctx context.Context, eventID, relationship string) ([]crm.Account, error) {
	if f.sponsorsErr != nil {
		return nil, f.sponsorsErr
	}
	return f.sponsors[relationship], nil
}

func (f *fakeStore) ListBookings(ctx context.Context, ticketID string) ([]crm.Booking, error) {
	return f.bookings[ticketID], nil
}

func (f *fakeStore) GetVehicle(ctx context.Context, id string) (crm.Vehicle, error) {
	v, ok := f.vehicles[id]
	if !ok {
		return crm.Vehicle{}, notFound(crm.SetVehicles)
	}
	return v, nil
}

func (f *fakeStore) ticketChats(ticketID string) []crm.AskAdam {
	var out []crm.AskAdam
	for _, c := range f.chats {
		if c.TicketID != nil && *c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeStore) ListAskAdam(ctx context.Context, ticketID string) ([]crm.AskAdam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ticketChats(ticketID), nil
}

func (f *fakeStore) LatestAskAdam(ctx context.Context, ticketID string) (*crm.AskAdam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *crm.AskAdam
	for _, c := range f.ticketChats(ticketID) {
		if c.CreatedOn == nil {
			continue
		}
		if latest == nil || c.CreatedOn.Time.After(latest.CreatedOn.Time) {
			c := c
			latest = &c
		}
	}
	return latest, nil
}

func (f *fakeStore) FirstAskAdam(ctx context.Context, ticketID string) (*crm.AskAdam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var first *crm.AskAdam
	for _, c := range f.ticketChats(ticketID) {
		if c.CreatedOn == nil {
			continue
		}
		if first == nil || c.CreatedOn.Time.Before(first.CreatedOn.Time) {
			c := c
			first = &c
		}
	}
	return first, nil
}

func (f *fakeStore) CreateAskAdam(ctx context.Context, in crm.NewAskAdam) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, in)
	return "created-" + in.TicketID, nil
}

func (f *fakeStore) FetchColumn(ctx context.Context, set, id, column string) ([]byte, string, error) {
	data, ok := f.columns[set+"/"+id+"/"+column]
	if !ok {
		return nil, "", notFound(set)
	}
	return data, "image/png", nil
}
