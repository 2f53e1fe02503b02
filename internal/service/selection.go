package service

import (
	"errors"
	"time"

	"eventportal/internal/crm"
)

var ErrEventUnresolvable = errors.New("no related event found")

// EventWindow is the part of an event that event selection looks at.
type EventWindow struct {
	ID    string
	Start time.Time
	End   time.Time
}

// Active reports whether now falls inside the window, bounds included.
func (w EventWindow) Active(now time.Time) bool {
	return !now.Before(w.Start) && !now.After(w.End)
}

// SelectEvent picks the event a ticket currently refers to: the active one
// with the earliest start, else the upcoming one with the earliest start,
// else the past one that ended last. Ties fall back to the lowest ID.
func SelectEvent(windows []EventWindow, now time.Time) (EventWindow, error) {
	var active, future, past *EventWindow

	for i := range windows {
		w := &windows[i]
		switch {
		case w.Active(now):
			if active == nil || earlierStart(w, active) {
				active = w
			}
		case w.Start.After(now):
			if future == nil || earlierStart(w, future) {
				future = w
			}
		default:
			if past == nil || laterEnd(w, past) {
				past = w
			}
		}
	}

	switch {
	case active != nil:
		return *active, nil
	case future != nil:
		return *future, nil
	case past != nil:
		return *past, nil
	}
	return EventWindow{}, ErrEventUnresolvable
}

func earlierStart(a, b *EventWindow) bool {
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	return a.ID < b.ID
}

func laterEnd(a, b *EventWindow) bool {
	if !a.End.Equal(b.End) {
		return a.End.After(b.End)
	}
	return a.ID < b.ID
}

// eventWindows drops events without a start date. A missing end date is
// taken to be the start.
func eventWindows(events []crm.Event) []EventWindow {
	windows := make([]EventWindow, 0, len(events))
	for _, e := range events {
		if e.StartDate == nil {
			continue
		}
		w := EventWindow{ID: e.ID, Start: e.StartDate.Time, End: e.StartDate.Time}
		if e.EndDate != nil {
			w.End = e.EndDate.Time
		}
		windows = append(windows, w)
	}
	return windows
}

func selectTicketEvent(events []crm.Event, now time.Time) (crm.Event, error) {
	chosen, err := SelectEvent(eventWindows(events), now)
	if err != nil {
		return crm.Event{}, err
	}
	for _, e := range events {
		if e.ID == chosen.ID {
			return e, nil
		}
	}
	return crm.Event{}, ErrEventUnresolvable
}
