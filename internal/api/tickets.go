package api

import "net/http"

func (d Dependencies) getTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := d.recordID(w, r)
	if !ok {
		return
	}

	details, err := d.Tickets.Ticket(r.Context(), id)
	if err != nil {
		d.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (d Dependencies) getDisplay(w http.ResponseWriter, r *http.Request) {
	id, ok := d.recordID(w, r)
	if !ok {
		return
	}

	display, err := d.Tickets.Display(r.Context(), id)
	if err != nil {
		d.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, display)
}

func (d Dependencies) getEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := d.recordID(w, r)
	if !ok {
		return
	}

	details, err := d.Events.Event(r.Context(), id)
	if err != nil {
		d.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}
