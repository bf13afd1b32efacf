package queries

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
)

// DayFreeDTO lists the free intervals of one date.
type DayFreeDTO struct {
	Date     time.Time
	Slots    []SlotDTO
	FreeMins int
}

// AvailableSlotsDTO is the free time of a horizon.
type AvailableSlotsDTO struct {
	Days      []DayFreeDTO
	TotalMins int
}

// AvailableSlotsQuery asks for the free time of Days dates from Start.
type AvailableSlotsQuery struct {
	Start time.Time
	Days  int
}

// AvailableSlotsHandler handles the AvailableSlotsQuery.
type AvailableSlotsHandler struct {
	timelines domain.TimelineRepository
	template  DayTemplate
}

func NewAvailableSlotsHandler(timelines domain.TimelineRepository, template DayTemplate) *AvailableSlotsHandler {
	return &AvailableSlotsHandler{timelines: timelines, template: template}
}

// Handle reports the gaps of every day in the horizon. Days that are not
// stored are computed from the template.
func (h *AvailableSlotsHandler) Handle(ctx context.Context, query AvailableSlotsQuery) (*AvailableSlotsDTO, error) {
	cfg, err := h.template.HorizonConfig(query.Start, query.Days)
	if err != nil {
		return nil, err
	}
	dates := cfg.Dates()
	if len(dates) == 0 {
		return nil, &domain.ValidationError{Field: "days", Reason: "must be positive"}
	}

	stored, err := h.timelines.FindRange(ctx, dates[0], dates[len(dates)-1])
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]*domain.DayTimeline, len(stored))
	for _, tl := range stored {
		byDate[domain.DateKey(tl.Date())] = tl
	}

	result := &AvailableSlotsDTO{Days: make([]DayFreeDTO, 0, len(dates))}
	for _, date := range dates {
		tl, ok := byDate[domain.DateKey(date)]
		if !ok {
			tl, err = h.template.NewTimeline(date, slog.New(slog.DiscardHandler))
			if err != nil {
				return nil, err
			}
		}
		day := DayFreeDTO{
			Date:     date,
			Slots:    freeSlots(tl.AvailableSlots()),
			FreeMins: int(tl.FreeTime().Minutes()),
		}
		result.TotalMins += day.FreeMins
		result.Days = append(result.Days, day)
	}
	return result, nil
}
