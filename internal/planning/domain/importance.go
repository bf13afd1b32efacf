package domain

import "fmt"

// Importance ranks how urgently a task should be placed. Higher values are
// placed first.
type Importance int

const (
	MinImportance Importance = 1
	MaxImportance Importance = 5
)

// NewImportance validates an importance value in [1, 5].
func NewImportance(value int) (Importance, error) {
	imp := Importance(value)
	if imp < MinImportance || imp > MaxImportance {
		return 0, invalid("importance", fmt.Sprintf("%d is outside %d-%d", value, MinImportance, MaxImportance))
	}
	return imp, nil
}

func (i Importance) Int() int { return int(i) }

func (i Importance) String() string {
	return fmt.Sprintf("%d", int(i))
}
