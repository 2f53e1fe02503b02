package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Entity set names of the web API.
const (
	SetTickets     = "wdrgns_tickets"
	SetTicketTypes = "wdrgns_tickettypes"
	SetContacts    = "contacts"
	SetEvents      = "wdrgns_events"
	SetAccounts    = "accounts"
	SetLocations   = "wdrgns_locations"
	SetSuburbs     = "wdrgns_suburbs"
	SetAlerts      = "wdrgns_eventalertses"
	SetSchedules   = "wdrgns_eventschedules"
	SetTicketLinks = "wdrgns_ticketlinkses"
	SetBookings    = "wdrgns_bookings"
	SetVehicles    = "wdrgns_vehicles"
	SetAskAdams    = "wdrgns_askadams"
)

var (
	ticketColumns = []string{
		"wdrgns_ticketid", "wdrgns_ticket", "wdrgns_remainingscans", "wdrgns_onlineticketurl",
		"wdrgns_ticketdynamicurl", "_wdrgns_contactid_value", "_wdrgns_tickettype_value", "_wdrgns_vehicle_value",
	}
	eventColumns = []string{
		"wdrgns_eventid", "wdrgns_event", "wdrgns_startdate", "wdrgns_enddate",
		"_wdrgns_promoterid_value", "_wdrgns_locationid_value",
		"wdrgns_openinghourscafe", "wdrgns_openinghoursfuelshop", "wdrgns_openinghoursoffice",
		"wdrgns_openinghoursofficebranding", "wdrgns_openinghourstyres", "wdrgns_openinghourstyrebranding",
		"wdrgns_image", "wdrgns_logo", "wdrgns_eventmap", "wdrgns_onsalefrom", "wdrgns_onsaleto",
		"wdrgns_descriptionblurb",
	}
	alertColumns = []string{
		"wdrgns_eventalertsid", "_wdrgns_event_value", "wdrgns_alertcolour", "wdrgns_alerttext",
		"wdrgns_starttime", "wdrgns_endtime", "wdrgns_alertimage",
	}
	scheduleColumns = []string{
		"wdrgns_eventscheduleid", "_wdrgns_event_value", "wdrgns_starttime", "wdrgns_endtime",
		"wdrgns_item", "wdrgns_eventnumber", "wdrgns_session", "wdrgns_time", "wdrgns_displayorder",
	}
	askAdamColumns = []string{
		"wdrgns_askadamid", "createdon", "wdrgns_question", "wdrgns_reply",
		"_wdrgns_ticket_value", "_wdrgns_askadam_value",
	}
)

func (q *Queries) getByKey(ctx context.Context, set, id string, columns []string, out any) error {
	k, err := key(id)
	if err != nil {
		return err
	}
	return q.get(ctx, fmt.Sprintf("%s(%s)", set, k), Query{Select: columns}, out)
}

func (q *Queries) GetTicket(ctx context.Context, id string) (Ticket, error) {
	var t Ticket
	err := q.getByKey(ctx, SetTickets, id, ticketColumns, &t)
	return t, err
}

func (q *Queries) GetContact(ctx context.Context, id string) (Contact, error) {
	var c Contact
	err := q.getByKey(ctx, SetContacts, id, []string{"contactid", "fullname"}, &c)
	return c, err
}

func (q *Queries) GetTicketType(ctx context.Context, id string) (TicketType, error) {
	var t TicketType
	err := q.getByKey(ctx, SetTicketTypes, id,
		[]string{"wdrgns_tickettypeid", "wdrgns_validfrom", "wdrgns_validto", "wdrgns_enableaskadam"}, &t)
	return t, err
}

// ListTicketEvents returns the active events the ticket is linked to
// through the multi-event relationship.
func (q *Queries) ListTicketEvents(ctx context.Context, ticketID string) ([]Event, error) {
	k, err := key(ticketID)
	if err != nil {
		return nil, err
	}
	return list[Event](ctx, q, SetEvents, Query{
		Filter:  fmt.Sprintf("statecode eq 0 and wdrgns_ticket_wdrgns_multievent/any(t:t/wdrgns_ticketid eq %s)", k),
		Select:  eventColumns,
		OrderBy: "wdrgns_startdate asc",
	})
}

func (q *Queries) GetEvent(ctx context.Context, id string) (Event, error) {
	var e Event
	err := q.getByKey(ctx, SetEvents, id, eventColumns, &e)
	return e, err
}

func (q *Queries) GetAccount(ctx context.Context, id string) (Account, error) {
	var a Account
	err := q.getByKey(ctx, SetAccounts, id, []string{"accountid", "name", "entityimage"}, &a)
	return a, err
}

func (q *Queries) GetLocation(ctx context.Context, id string) (Location, error) {
	var l Location
	err := q.getByKey(ctx, SetLocations, id, []string{
		"wdrgns_locationid", "wdrgns_location", "wdrgns_addressline1", "wdrgns_addressline2", "_wdrgns_suburbid_value",
	}, &l)
	return l, err
}

func (q *Queries) GetSuburb(ctx context.Context, id string) (Suburb, error) {
	var s Suburb
	err := q.getByKey(ctx, SetSuburbs, id,
		[]string{"wdrgns_suburbid", "wdrgns_suburb", "wdrgns_latitude", "wdrgns_longitude"}, &s)
	return s, err
}

// ListEventAlerts returns the event's alerts by start time. With a non-nil
// activeAt only alerts whose window contains that instant are returned.
func (q *Queries) ListEventAlerts(ctx context.Context, eventID string, activeAt *time.Time) ([]EventAlert, error) {
	k, err := key(eventID)
	if err != nil {
		return nil, err
	}
	filter := fmt.Sprintf("_wdrgns_event_value eq %s and statecode eq 0", k)
	if activeAt != nil {
		ts := odataTime(*activeAt)
		filter += fmt.Sprintf(" and wdrgns_starttime le %s and wdrgns_endtime gt %s", ts, ts)
	}
	return list[EventAlert](ctx, q, SetAlerts, Query{
		Filter:  filter,
		Select:  alertColumns,
		OrderBy: "wdrgns_starttime asc",
	})
}

func scheduleFilter(eventID string) string {
	return fmt.Sprintf("_wdrgns_event_value eq %s and wdrgns_showontickets eq true and statecode eq 0", eventID)
}

// ListSchedulesFrom returns ticket-visible schedule items starting at or
// after from, ascending.
func (q *Queries) ListSchedulesFrom(ctx context.Context, eventID string, from time.Time) ([]EventSchedule, error) {
	k, err := key(eventID)
	if err != nil {
		return nil, err
	}
	return list[EventSchedule](ctx, q, SetSchedules, Query{
		Filter:  scheduleFilter(k) + " and wdrgns_starttime ge " + odataTime(from),
		Select:  scheduleColumns,
		OrderBy: "wdrgns_starttime asc",
	})
}

// ListSchedulesBefore returns ticket-visible schedule items starting
// before the given instant, most recent first.
func (q *Queries) ListSchedulesBefore(ctx context.Context, eventID string, before time.Time) ([]EventSchedule, error) {
	k, err := key(eventID)
	if err != nil {
		return nil, err
	}
	return list[EventSchedule](ctx, q, SetSchedules, Query{
		Filter:  scheduleFilter(k) + " and wdrgns_starttime lt " + odataTime(before),
		Select:  scheduleColumns,
		OrderBy: "wdrgns_starttime desc",
	})
}

func (q *Queries) ListTicketLinks(ctx context.Context, ticketTypeID string) ([]TicketLink, error) {
	k, err := key(ticketTypeID)
	if err != nil {
		return nil, err
	}
	return list[TicketLink](ctx, q, SetTicketLinks, Query{
		Filter:  fmt.Sprintf("statecode eq 0 and _wdrgns_tickettype_value eq %s", k),
		Select:  []string{"wdrgns_ticketlinksid", "wdrgns_displayorder", "wdrgns_name", "wdrgns_url", "wdrgns_linkimage", "wdrgns_type"},
		OrderBy: "wdrgns_displayorder asc",
	})
}

// ListSponsors expands the named event→account relationship.
func (q *Queries) ListSponsors(ctx context.Context, eventID, relationship string) ([]Account, error) {
	k, err := key(eventID)
	if err != nil {
		return nil, err
	}
	if relationship == "" || strings.ContainsAny(relationship, "(),/ ") {
		return nil, fmt.Errorf("invalid relationship name %q", relationship)
	}

	var record map[string]json.RawMessage
	err = q.get(ctx, fmt.Sprintf("%s(%s)", SetEvents, k), Query{
		Select: []string{"wdrgns_eventid"},
		Expand: relationship + "($select=accountid,name,entityimage)",
	}, &record)
	if err != nil {
		return nil, err
	}

	accounts := []Account{}
	if raw, ok := record[relationship]; ok && len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &accounts); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", relationship, err)
		}
	}
	return accounts, nil
}

func (q *Queries) ListBookings(ctx context.Context, ticketID string) ([]Booking, error) {
	k, err := key(ticketID)
	if err != nil {
		return nil, err
	}
	return list[Booking](ctx, q, SetBookings, Query{
		Filter:  fmt.Sprintf("_wdrgns_ticket_value eq %s and statecode eq 0", k),
		Select:  []string{"wdrgns_bookingid", "wdrgns_booking", "wdrgns_from", "wdrgns_to"},
		OrderBy: "wdrgns_from asc",
	})
}

func (q *Queries) GetVehicle(ctx context.Context, id string) (Vehicle, error) {
	var v Vehicle
	err := q.getByKey(ctx, SetVehicles, id, []string{
		"wdrgns_vehicleid", "wdrgns_vehicle", "wdrgns_vin", "wdrgns_chassisno", "wdrgns_registration",
		"wdrgns_raceno", "wdrgns_vehicletype", "wdrgns_vehicleimage",
	}, &v)
	return v, err
}

func (q *Queries) askAdams(ctx context.Context, ticketID, order string, top int) ([]AskAdam, error) {
	k, err := key(ticketID)
	if err != nil {
		return nil, err
	}
	return list[AskAdam](ctx, q, SetAskAdams, Query{
		Filter:  fmt.Sprintf("_wdrgns_ticket_value eq %s", k),
		Select:  askAdamColumns,
		OrderBy: "createdon " + order,
		Top:     top,
	})
}

// ListAskAdam returns the ticket's whole chat thread, oldest first.
func (q *Queries) ListAskAdam(ctx context.Context, ticketID string) ([]AskAdam, error) {
	return q.askAdams(ctx, ticketID, "asc", 0)
}

// LatestAskAdam returns the most recently created record, or nil.
func (q *Queries) LatestAskAdam(ctx context.Context, ticketID string) (*AskAdam, error) {
	records, err := q.askAdams(ctx, ticketID, "desc", 1)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return &records[0], nil
}

// FirstAskAdam returns the record anchoring the thread, or nil.
func (q *Queries) FirstAskAdam(ctx context.Context, ticketID string) (*AskAdam, error) {
	records, err := q.askAdams(ctx, ticketID, "asc", 1)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return &records[0], nil
}

// NewAskAdam is the payload of a new chat question.
type NewAskAdam struct {
	TicketID string
	Question string
	ParentID string
}

// CreateAskAdam inserts a question and returns the new record id.
func (q *Queries) CreateAskAdam(ctx context.Context, in NewAskAdam) (string, error) {
	ticketKey, err := key(in.TicketID)
	if err != nil {
		return "", err
	}

	body := map[string]any{
		"wdrgns_question":          in.Question,
		"wdrgns_Ticket@odata.bind": fmt.Sprintf("/%s(%s)", SetTickets, ticketKey),
	}
	if in.ParentID != "" {
		parentKey, err := key(in.ParentID)
		if err != nil {
			return "", err
		}
		body["wdrgns_AskAdam@odata.bind"] = fmt.Sprintf("/%s(%s)", SetAskAdams, parentKey)
	}

	var created AskAdam
	entityID, err := q.post(ctx, SetAskAdams, body, &created)
	if err != nil {
		return "", err
	}
	if created.ID != "" {
		return created.ID, nil
	}
	return idFromEntityURL(entityID)
}

// idFromEntityURL extracts the key of an OData-EntityId header value such
// as https://org/api/data/v9.2/wdrgns_askadams(0000-...).
func idFromEntityURL(u string) (string, error) {
	open := strings.LastIndex(u, "(")
	if open < 0 || !strings.HasSuffix(u, ")") {
		return "", fmt.Errorf("no record id in response (entity id %q)", u)
	}
	return key(u[open+1 : len(u)-1])
}

// FetchColumn downloads the full content of a file or image column.
func (q *Queries) FetchColumn(ctx context.Context, set, id, column string) ([]byte, string, error) {
	k, err := key(id)
	if err != nil {
		return nil, "", err
	}
	return q.value(ctx, fmt.Sprintf("%s(%s)/%s/$value", set, k, column))
}

// WhoAmI returns the caller's user id; used to verify credentials.
func (q *Queries) WhoAmI(ctx context.Context) (string, error) {
	var resp struct {
		UserID string `json:"UserId"`
	}
	if err := q.get(ctx, "WhoAmI", Query{}, &resp); err != nil {
		return "", err
	}
	return resp.UserID, nil
}
