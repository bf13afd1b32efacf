package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// FixedSlot is an immovable commitment such as a meal or a class.
type FixedSlot struct {
	ID          uuid.UUID `json:"id"`
	Interval    Interval  `json:"interval"`
	Description string    `json:"description"`
}

// PlacedTask records the interval a task occupies on a timeline. Part is
// zero for a contiguous placement and counts from one when the task was
// split.
type PlacedTask struct {
	TaskID     uuid.UUID  `json:"task_id"`
	Name       string     `json:"name"`
	Importance Importance `json:"importance"`
	Interval   Interval   `json:"interval"`
	Part       int        `json:"part,omitempty"`
}

// Label is the display name of the placement.
func (p PlacedTask) Label() string {
	if p.Part == 0 {
		return p.Name
	}
	return fmt.Sprintf("%s - Part %d", p.Name, p.Part)
}
