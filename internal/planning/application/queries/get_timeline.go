package queries

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/google/uuid"
)

// DayTemplate builds the timeline of a day that has not been stored yet.
type DayTemplate interface {
	HorizonConfig(start time.Time, days int) (domain.HorizonConfig, error)
	NewTimeline(date time.Time, logger *slog.Logger) (*domain.DayTimeline, error)
}

// SlotDTO is a data transfer object for one interval of a timeline.
type SlotDTO struct {
	ID          uuid.UUID
	Label       string
	StartTime   time.Time
	EndTime     time.Time
	DurationMin int
	Importance  int
	Part        int
}

// TimelineDTO is a data transfer object for a day timeline.
type TimelineDTO struct {
	ID         uuid.UUID
	Date       time.Time
	Exists     bool
	WakeUp     time.Time
	Sleep      time.Time
	FixedSlots []SlotDTO
	Tasks      []SlotDTO
	Free       []SlotDTO
	FreeMins   int
	Rendered   string
}

// GetTimelineQuery contains the parameters for getting one day.
type GetTimelineQuery struct {
	Date time.Time
}

// GetTimelineHandler handles the GetTimelineQuery.
type GetTimelineHandler struct {
	timelines domain.TimelineRepository
	template  DayTemplate
}

func NewGetTimelineHandler(timelines domain.TimelineRepository, template DayTemplate) *GetTimelineHandler {
	return &GetTimelineHandler{timelines: timelines, template: template}
}

// Handle returns the stored timeline of the date. A date without a stored
// timeline is shown as the template would create it, with Exists false.
func (h *GetTimelineHandler) Handle(ctx context.Context, query GetTimelineQuery) (*TimelineDTO, error) {
	tl, err := h.timelines.FindByDate(ctx, query.Date)
	if err != nil {
		return nil, err
	}
	if tl != nil {
		dto := toTimelineDTO(tl)
		dto.Exists = true
		return dto, nil
	}

	tl, err = h.template.NewTimeline(query.Date, slog.New(slog.DiscardHandler))
	if err != nil {
		return nil, err
	}
	return toTimelineDTO(tl), nil
}

func toTimelineDTO(tl *domain.DayTimeline) *TimelineDTO {
	bounds := tl.Bounds()
	dto := &TimelineDTO{
		ID:       tl.ID(),
		Date:     tl.Date(),
		WakeUp:   bounds.Start,
		Sleep:    bounds.End,
		FreeMins: int(tl.FreeTime().Minutes()),
		Rendered: tl.Render(),
	}
	for _, f := range tl.FixedSlots() {
		dto.FixedSlots = append(dto.FixedSlots, SlotDTO{
			ID:          f.ID,
			Label:       f.Description,
			StartTime:   f.Interval.Start,
			EndTime:     f.Interval.End,
			DurationMin: minutes(f.Interval),
		})
	}
	for _, p := range tl.PlacedTasks() {
		dto.Tasks = append(dto.Tasks, SlotDTO{
			ID:          p.TaskID,
			Label:       p.Label(),
			StartTime:   p.Interval.Start,
			EndTime:     p.Interval.End,
			DurationMin: minutes(p.Interval),
			Importance:  p.Importance.Int(),
			Part:        p.Part,
		})
	}
	dto.Free = freeSlots(tl.AvailableSlots())
	return dto
}

func freeSlots(gaps []domain.Interval) []SlotDTO {
	out := make([]SlotDTO, 0, len(gaps))
	for _, g := range gaps {
		out = append(out, SlotDTO{StartTime: g.Start, EndTime: g.End, DurationMin: minutes(g)})
	}
	return out
}

func minutes(iv domain.Interval) int {
	return int(iv.Duration().Minutes())
}
