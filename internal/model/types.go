package model

import "time"

// AskAdamSetting is the ticket type's Ask Adam option.
type AskAdamSetting string

const (
	AskAdamEnabled  AskAdamSetting = "enabled"
	AskAdamDisabled AskAdamSetting = "disabled"
)

// Option set values of wdrgns_enableaskadam.
const (
	AskAdamOptionEnabled  = 948090000
	AskAdamOptionDisabled = 948090001
)

// Link type labels, in display order.
const (
	LinkTypeInformation = "Information"
	LinkTypeDocument    = "Document"
	LinkTypeAdvertising = "Advertising"
	LinkTypeOther       = "Other"
)

const DefaultAlertColour = "#FEE2E2"

type Ticket struct {
	ID             string  `json:"id"`
	Name           *string `json:"name"`
	RemainingScans *int    `json:"remainingScans"`
	OnlineURL      *string `json:"onlineUrl"`
	DynamicURL     *string `json:"dynamicUrl"`
}

type TicketType struct {
	ValidFrom     *time.Time      `json:"validFrom"`
	ValidTo       *time.Time      `json:"validTo"`
	EnableAskAdam *AskAdamSetting `json:"enableAskAdam"`
}

type Contact struct {
	ID       string  `json:"id"`
	FullName *string `json:"fullname"`
}

type OpeningHours struct {
	Office         *string `json:"office"`
	OfficeBranding *string `json:"officeBranding"`
	Cafe           *string `json:"cafe"`
	FuelShop       *string `json:"fuelShop"`
	Tyres          *string `json:"tyres"`
	TyreBranding   *string `json:"tyreBranding"`
}

type Event struct {
	ID              string       `json:"id"`
	Name            *string      `json:"name"`
	StartDate       *time.Time   `json:"startDate"`
	EndDate         *time.Time   `json:"endDate"`
	OpeningHours    OpeningHours `json:"openingHours"`
	Image           *string      `json:"image"`
	Logo            *string      `json:"logo"`
	Map             *string      `json:"map"`
	Description     *string      `json:"description"`
	DescriptionHTML *string      `json:"descriptionHtml"`
	OnSaleFrom      *time.Time   `json:"onSaleFrom"`
	OnSaleTo        *time.Time   `json:"onSaleTo"`
}

type Promoter struct {
	ID   string  `json:"id"`
	Name *string `json:"name"`
	Logo *string `json:"logo"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Location struct {
	ID                string       `json:"id"`
	Name              *string      `json:"name"`
	AddressLine1      *string      `json:"addressLine1"`
	AddressLine2      *string      `json:"addressLine2"`
	SuburbID          *string      `json:"suburbId"`
	SuburbName        *string      `json:"suburbName"`
	SuburbCoordinates *Coordinates `json:"suburbCoordinates"`
}

type Sponsor struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

type EventAlert struct {
	ID          string     `json:"id"`
	EventID     *string    `json:"eventId"`
	AlertColour string     `json:"alertColour"`
	AlertText   *string    `json:"alertText"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	AlertImage  *string    `json:"alertImage"`
}

type EventSchedule struct {
	ID           string     `json:"id"`
	EventID      *string    `json:"eventId"`
	StartTime    *time.Time `json:"startTime"`
	EndTime      *time.Time `json:"endTime"`
	Item         *string    `json:"item"`
	EventNumber  *int       `json:"eventNumber"`
	Session      *string    `json:"session"`
	Time         *string    `json:"time"`
	DisplayOrder *int       `json:"displayOrder"`
}

type TicketLink struct {
	ID           string  `json:"id"`
	DisplayOrder *int    `json:"displayOrder"`
	Name         *string `json:"name"`
	URL          *string `json:"url"`
	LinkImage    *string `json:"linkImageBase64"`
	Type         *int    `json:"type"`
	TypeLabel    string  `json:"typeLabel"`
}

// LinkGroup is one display bucket of ticket links.
type LinkGroup struct {
	Label string       `json:"label"`
	Links []TicketLink `json:"links"`
}

type Booking struct {
	ID      string     `json:"id"`
	Booking *string    `json:"booking"`
	From    *time.Time `json:"from"`
	To      *time.Time `json:"to"`
}

type Vehicle struct {
	ID           string  `json:"id"`
	Vehicle      *string `json:"vehicle"`
	VIN          *string `json:"vin"`
	Chassis      *string `json:"chassis"`
	Registration *string `json:"registration"`
	Race         *string `json:"race"`
	Type         *string `json:"type"`
}

// TicketDetails is the response of GET /api/tickets/{id}.
type TicketDetails struct {
	Ticket           Ticket          `json:"ticket"`
	TicketType       *TicketType     `json:"ticketType"`
	Contact          *Contact        `json:"contact"`
	Event            Event           `json:"event"`
	Promoter         *Promoter       `json:"promoter"`
	Location         *Location       `json:"location"`
	EventAlerts      []EventAlert    `json:"eventAlerts"`
	EventSchedules   []EventSchedule `json:"eventSchedules"`
	TicketLinks      []TicketLink    `json:"ticketLinks"`
	TicketLinkGroups []LinkGroup     `json:"ticketLinkGroups"`
	Sponsors         []Sponsor       `json:"sponsors"`
	PrimarySponsors  []Sponsor       `json:"primarySponsors"`
	Bookings         []Booking       `json:"bookings"`
	Vehicle          *Vehicle        `json:"vehicle"`
	VehicleImage     *string         `json:"vehicleImage"`
	QRCode           *string         `json:"qrCode"`
}

// EventDetails is the response of GET /api/events/{id}.
type EventDetails struct {
	Event           Event           `json:"event"`
	Promoter        *Promoter       `json:"promoter"`
	Location        *Location       `json:"location"`
	EventAlerts     []EventAlert    `json:"eventAlerts"`
	EventSchedules  []EventSchedule `json:"eventSchedules"`
	Sponsors        []Sponsor       `json:"sponsors"`
	PrimarySponsors []Sponsor       `json:"primarySponsors"`
}

// Display is the response of GET /api/display/{id}.
type Display struct {
	EventSchedules   []EventSchedule `json:"eventSchedules"`
	TicketLinks      []TicketLink    `json:"ticketLinks"`
	TicketLinkGroups []LinkGroup     `json:"ticketLinkGroups"`
}

// Chat is one Ask Adam question/answer pair. Field names follow the
// contract the kiosk front end already consumes.
type Chat struct {
	GUID      string     `json:"GUID"`
	CreatedOn *time.Time `json:"CreatedOn"`
	Question  *string    `json:"Question"`
	Answer    *string    `json:"Answer"`
	TicketID  *string    `json:"TicketId"`
	AskAdamID *string    `json:"AskAdamId"`
}
