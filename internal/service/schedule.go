package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"eventportal/internal/model"
)

// StartOfDay returns midnight UTC of t's UTC calendar date.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WindowSchedules applies the display window to schedule items. Items
// starting today (UTC) or later are returned by start time. When there are
// none, only the items of the most recent past day are returned, also by
// start time. Items without a start time are dropped.
func WindowSchedules(items []model.EventSchedule, today time.Time) []model.EventSchedule {
	today = StartOfDay(today)

	var future, past []model.EventSchedule
	for _, item := range items {
		if item.StartTime == nil {
			continue
		}
		if item.StartTime.Before(today) {
			past = append(past, item)
		} else {
			future = append(future, item)
		}
	}

	if len(future) > 0 {
		sortByStart(future)
		return future
	}
	if len(past) == 0 {
		return []model.EventSchedule{}
	}

	latest := past[0].StartTime
	for _, item := range past[1:] {
		if item.StartTime.After(*latest) {
			latest = item.StartTime
		}
	}
	day := StartOfDay(*latest)

	window := make([]model.EventSchedule, 0, len(past))
	for _, item := range past {
		if StartOfDay(*item.StartTime).Equal(day) {
			window = append(window, item)
		}
	}
	sortByStart(window)
	return window
}

func sortByStart(items []model.EventSchedule) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].StartTime, items[j].StartTime
		if !a.Equal(*b) {
			return a.Before(*b)
		}
		return items[i].ID < items[j].ID
	})
}

// schedules loads the windowed schedule of an event with at most two
// upstream queries.
func schedules(ctx context.Context, st Store, eventID string, now time.Time) ([]model.EventSchedule, error) {
	today := StartOfDay(now)

	upcoming, err := st.ListSchedulesFrom(ctx, eventID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming schedules: %w", err)
	}
	if len(upcoming) > 0 {
		return WindowSchedules(schedulesToModel(upcoming), today), nil
	}

	previous, err := st.ListSchedulesBefore(ctx, eventID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list past schedules: %w", err)
	}
	return WindowSchedules(schedulesToModel(previous), today), nil
}
