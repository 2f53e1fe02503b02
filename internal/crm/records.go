package crm

// Raw entity records as returned by the web API. Optional columns are
// pointers; nothing here is defaulted.

type Ticket struct {
	ID             string  `json:"wdrgns_ticketid"`
	Name           *string `json:"wdrgns_ticket"`
	RemainingScans *int    `json:"wdrgns_remainingscans"`
	OnlineURL      *string `json:"wdrgns_onlineticketurl"`
	DynamicURL     *string `json:"wdrgns_ticketdynamicurl"`
	ContactID      *string `json:"_wdrgns_contactid_value"`
	TicketTypeID   *string `json:"_wdrgns_tickettype_value"`
	VehicleID      *string `json:"_wdrgns_vehicle_value"`
}

type Contact struct {
	ID       string  `json:"contactid"`
	FullName *string `json:"fullname"`
}

type TicketType struct {
	ID            string    `json:"wdrgns_tickettypeid"`
	ValidFrom     *DateTime `json:"wdrgns_validfrom"`
	ValidTo       *DateTime `json:"wdrgns_validto"`
	EnableAskAdam *int      `json:"wdrgns_enableaskadam"`
}

type Event struct {
	ID                         string    `json:"wdrgns_eventid"`
	Name                       *string   `json:"wdrgns_event"`
	StartDate                  *DateTime `json:"wdrgns_startdate"`
	EndDate                    *DateTime `json:"wdrgns_enddate"`
	PromoterID                 *string   `json:"_wdrgns_promoterid_value"`
	LocationID                 *string   `json:"_wdrgns_locationid_value"`
	OpeningHoursCafe           *string   `json:"wdrgns_openinghourscafe"`
	OpeningHoursFuelShop       *string   `json:"wdrgns_openinghoursfuelshop"`
	OpeningHoursOffice         *string   `json:"wdrgns_openinghoursoffice"`
	OpeningHoursOfficeBranding *string   `json:"wdrgns_openinghoursofficebranding"`
	OpeningHoursTyres          *string   `json:"wdrgns_openinghourstyres"`
	OpeningHoursTyreBranding   *string   `json:"wdrgns_openinghourstyrebranding"`
	Image                      *string   `json:"wdrgns_image"`
	Logo                       *string   `json:"wdrgns_logo"`
	EventMap                   *string   `json:"wdrgns_eventmap"`
	OnSaleFrom                 *DateTime `json:"wdrgns_onsalefrom"`
	OnSaleTo                   *DateTime `json:"wdrgns_onsaleto"`
	Description                *string   `json:"wdrgns_descriptionblurb"`
}

// Account backs promoters and sponsors.
type Account struct {
	ID          string  `json:"accountid"`
	Name        *string `json:"name"`
	EntityImage *string `json:"entityimage"`
}

type Location struct {
	ID           string  `json:"wdrgns_locationid"`
	Name         *string `json:"wdrgns_location"`
	AddressLine1 *string `json:"wdrgns_addressline1"`
	AddressLine2 *string `json:"wdrgns_addressline2"`
	SuburbID     *string `json:"_wdrgns_suburbid_value"`
}

type Suburb struct {
	ID        string   `json:"wdrgns_suburbid"`
	Name      *string  `json:"wdrgns_suburb"`
	Latitude  *float64 `json:"wdrgns_latitude"`
	Longitude *float64 `json:"wdrgns_longitude"`
}

type EventAlert struct {
	ID        string    `json:"wdrgns_eventalertsid"`
	EventID   *string   `json:"_wdrgns_event_value"`
	Colour    *string   `json:"wdrgns_alertcolour"`
	Text      *string   `json:"wdrgns_alerttext"`
	StartTime *DateTime `json:"wdrgns_starttime"`
	EndTime   *DateTime `json:"wdrgns_endtime"`
	Image     *string   `json:"wdrgns_alertimage"`
}

type EventSchedule struct {
	ID           string    `json:"wdrgns_eventscheduleid"`
	EventID      *string   `json:"_wdrgns_event_value"`
	StartTime    *DateTime `json:"wdrgns_starttime"`
	EndTime      *DateTime `json:"wdrgns_endtime"`
	Item         *string   `json:"wdrgns_item"`
	EventNumber  *int      `json:"wdrgns_eventnumber"`
	Session      *string   `json:"wdrgns_session"`
	Time         *string   `json:"wdrgns_time"`
	DisplayOrder *int      `json:"wdrgns_displayorder"`
}

type TicketLink struct {
	ID           string  `json:"wdrgns_ticketlinksid"`
	DisplayOrder *int    `json:"wdrgns_displayorder"`
	Name         *string `json:"wdrgns_name"`
	URL          *string `json:"wdrgns_url"`
	LinkImage    *string `json:"wdrgns_linkimage"`
	Type         *int    `json:"wdrgns_type"`
	TypeLabel    *string `json:"wdrgns_type@OData.Community.Display.V1.FormattedValue"`
}

type Booking struct {
	ID   string    `json:"wdrgns_bookingid"`
	Name *string   `json:"wdrgns_booking"`
	From *DateTime `json:"wdrgns_from"`
	To   *DateTime `json:"wdrgns_to"`
}

type Vehicle struct {
	ID           string  `json:"wdrgns_vehicleid"`
	Name         *string `json:"wdrgns_vehicle"`
	VIN          *string `json:"wdrgns_vin"`
	Chassis      *string `json:"wdrgns_chassisno"`
	Registration *string `json:"wdrgns_registration"`
	RaceNumber   *string `json:"wdrgns_raceno"`
	Type         *int    `json:"wdrgns_vehicletype"`
	TypeLabel    *string `json:"wdrgns_vehicletype@OData.Community.Display.V1.FormattedValue"`
	Image        *string `json:"wdrgns_vehicleimage"`
}

// AskAdam is one question/answer record of a ticket's chat thread.
type AskAdam struct {
	ID        string    `json:"wdrgns_askadamid"`
	CreatedOn *DateTime `json:"createdon"`
	Question  *string   `json:"wdrgns_question"`
	Reply     *string   `json:"wdrgns_reply"`
	TicketID  *string   `json:"_wdrgns_ticket_value"`
	ParentID  *string   `json:"_wdrgns_askadam_value"`
}
