package service

import (
	"sort"

	"eventportal/internal/assets"
	"eventportal/internal/crm"
	"eventportal/internal/model"
)

func ticketToModel(t crm.Ticket) model.Ticket {
	return model.Ticket{
		ID:             t.ID,
		Name:           t.Name,
		RemainingScans: t.RemainingScans,
		OnlineURL:      t.OnlineURL,
		DynamicURL:     t.DynamicURL,
	}
}

func contactToModel(c crm.Contact) *model.Contact {
	return &model.Contact{ID: c.ID, FullName: c.FullName}
}

// askAdamSetting maps the option set value; unknown values are reported
// as absent.
func askAdamSetting(v *int) *model.AskAdamSetting {
	if v == nil {
		return nil
	}
	var s model.AskAdamSetting
	switch *v {
	case model.AskAdamOptionEnabled:
		s = model.AskAdamEnabled
	case model.AskAdamOptionDisabled:
		s = model.AskAdamDisabled
	default:
		return nil
	}
	return &s
}

func ticketTypeToModel(t crm.TicketType) *model.TicketType {
	return &model.TicketType{
		ValidFrom:     t.ValidFrom.Ptr(),
		ValidTo:       t.ValidTo.Ptr(),
		EnableAskAdam: askAdamSetting(t.EnableAskAdam),
	}
}

// eventToModel maps the event's scalar columns. Images and the rendered
// description are filled in by the caller.
func eventToModel(e crm.Event) model.Event {
	return model.Event{
		ID:        e.ID,
		Name:      e.Name,
		StartDate: e.StartDate.Ptr(),
		EndDate:   e.EndDate.Ptr(),
		OpeningHours: model.OpeningHours{
			Office:         e.OpeningHoursOffice,
			OfficeBranding: e.OpeningHoursOfficeBranding,
			Cafe:           e.OpeningHoursCafe,
			FuelShop:       e.OpeningHoursFuelShop,
			Tyres:          e.OpeningHoursTyres,
			TyreBranding:   e.OpeningHoursTyreBranding,
		},
		Description: e.Description,
		OnSaleFrom:  e.OnSaleFrom.Ptr(),
		OnSaleTo:    e.OnSaleTo.Ptr(),
	}
}

func promoterToModel(a crm.Account) *model.Promoter {
	return &model.Promoter{ID: a.ID, Name: a.Name}
}

func locationToModel(l crm.Location) *model.Location {
	return &model.Location{
		ID:           l.ID,
		Name:         l.Name,
		AddressLine1: l.AddressLine1,
		AddressLine2: l.AddressLine2,
		SuburbID:     l.SuburbID,
	}
}

func applySuburb(l *model.Location, s crm.Suburb) {
	l.SuburbName = s.Name
	if s.Latitude != nil && s.Longitude != nil {
		l.SuburbCoordinates = &model.Coordinates{Latitude: *s.Latitude, Longitude: *s.Longitude}
	}
}

func sponsorsToModel(accounts []crm.Account) []model.Sponsor {
	out := make([]model.Sponsor, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, model.Sponsor{
			ID:    a.ID,
			Name:  a.Name,
			Image: assets.FromBase64(a.EntityImage),
		})
	}
	return out
}

func alertsToModel(alerts []crm.EventAlert) []model.EventAlert {
	out := make([]model.EventAlert, 0, len(alerts))
	for _, a := range alerts {
		colour := model.DefaultAlertColour
		if a.Colour != nil && *a.Colour != "" {
			colour = "#" + *a.Colour
		}
		out = append(out, model.EventAlert{
			ID:          a.ID,
			EventID:     a.EventID,
			AlertColour: colour,
			AlertText:   a.Text,
			StartTime:   a.StartTime.Ptr(),
			EndTime:     a.EndTime.Ptr(),
			AlertImage:  assets.FromBase64(a.Image),
		})
	}
	return out
}

func schedulesToModel(items []crm.EventSchedule) []model.EventSchedule {
	out := make([]model.EventSchedule, 0, len(items))
	for _, s := range items {
		out = append(out, model.EventSchedule{
			ID:           s.ID,
			EventID:      s.EventID,
			StartTime:    s.StartTime.Ptr(),
			EndTime:      s.EndTime.Ptr(),
			Item:         s.Item,
			EventNumber:  s.EventNumber,
			Session:      s.Session,
			Time:         s.Time,
			DisplayOrder: s.DisplayOrder,
		})
	}
	return out
}

// linksToModel maps links and orders them by display order; links without
// one go last.
func linksToModel(links []crm.TicketLink) []model.TicketLink {
	out := make([]model.TicketLink, 0, len(links))
	for _, l := range links {
		label := model.LinkTypeOther
		if l.TypeLabel != nil && *l.TypeLabel != "" {
			label = *l.TypeLabel
		}
		out = append(out, model.TicketLink{
			ID:           l.ID,
			DisplayOrder: l.DisplayOrder,
			Name:         l.Name,
			URL:          l.URL,
			LinkImage:    assets.FromBase64(l.LinkImage),
			Type:         l.Type,
			TypeLabel:    label,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DisplayOrder, out[j].DisplayOrder
		if a == nil || b == nil {
			return a != nil
		}
		return *a < *b
	})
	return out
}

func bookingsToModel(bookings []crm.Booking) []model.Booking {
	out := make([]model.Booking, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, model.Booking{
			ID:      b.ID,
			Booking: b.Name,
			From:    b.From.Ptr(),
			To:      b.To.Ptr(),
		})
	}
	return out
}

func vehicleToModel(v crm.Vehicle) *model.Vehicle {
	return &model.Vehicle{
		ID:           v.ID,
		Vehicle:      v.Name,
		VIN:          v.VIN,
		Chassis:      v.Chassis,
		Registration: v.Registration,
		Race:         v.RaceNumber,
		Type:         v.TypeLabel,
	}
}

func chatsToModel(records []crm.AskAdam) []model.Chat {
	out := make([]model.Chat, 0, len(records))
	for _, r := range records {
		out = append(out, model.Chat{
			GUID:      r.ID,
			CreatedOn: r.CreatedOn.Ptr(),
			Question:  r.Question,
			Answer:    r.Reply,
			TicketID:  r.TicketID,
			AskAdamID: r.ParentID,
		})
	}
	return out
}
