package cli

import (
	"context"
	"errors"
	"time"

	internalApp "github.com/felixgeelhaar/dayplanner/internal/app"
	"github.com/felixgeelhaar/dayplanner/internal/planning/application/commands"
	"github.com/felixgeelhaar/dayplanner/internal/planning/application/queries"
	"github.com/felixgeelhaar/dayplanner/internal/planning/infrastructure/profile"
)

// ErrNotInitialized is returned by commands run without a database.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

// Drainer publishes pending outbox messages.
type Drainer interface {
	Drain(ctx context.Context) (int, error)
}

// App holds the CLI application dependencies.
type App struct {
	// Command Handlers
	AddTaskHandler        *commands.AddTaskHandler
	ImportTasksHandler    *commands.ImportTasksHandler
	AddFixedSlotHandler   *commands.AddFixedSlotHandler
	PlanHorizonHandler    *commands.PlanHorizonHandler
	UnscheduleTaskHandler *commands.UnscheduleTaskHandler
	DeleteTaskHandler     *commands.DeleteTaskHandler

	// Query Handlers
	GetTimelineHandler    *queries.GetTimelineHandler
	ListTasksHandler      *queries.ListTasksHandler
	AvailableSlotsHandler *queries.AvailableSlotsHandler

	Profile     *profile.Profile
	ProfilePath string
	Location    *time.Location

	// Planning defaults from the configuration
	HorizonDays int
	Split       bool
	MinChunk    time.Duration

	Outbox Drainer

	// Now is the clock used for relative dates such as "today".
	Now func() time.Time
}

// NewApp builds the CLI application from a wired container.
func NewApp(c *internalApp.Container) (*App, error) {
	loc, err := c.Profile.Location()
	if err != nil {
		return nil, err
	}
	return &App{
		AddTaskHandler:        c.AddTaskHandler,
		ImportTasksHandler:    c.ImportTasksHandler,
		AddFixedSlotHandler:   c.AddFixedSlotHandler,
		PlanHorizonHandler:    c.PlanHorizonHandler,
		UnscheduleTaskHandler: c.UnscheduleTaskHandler,
		DeleteTaskHandler:     c.DeleteTaskHandler,
		GetTimelineHandler:    c.GetTimelineHandler,
		ListTasksHandler:      c.ListTasksHandler,
		AvailableSlotsHandler: c.AvailableSlotsHandler,
		Profile:               c.Profile,
		ProfilePath:           c.Config.ProfilePath,
		Location:              loc,
		HorizonDays:           c.Config.PlanHorizonDays,
		Split:                 c.Config.PlanSplit,
		MinChunk:              c.Config.PlanSplitMinChunk,
		Outbox:                c,
		Now:                   time.Now,
	}, nil
}

// Today returns midnight of the current date in the profile's zone.
func (a *App) Today() time.Time {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	t := now().In(a.location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, a.location())
}

func (a *App) location() *time.Location {
	if a.Location == nil {
		return time.Local
	}
	return a.Location
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// RequireApp returns the application or ErrNotInitialized.
func RequireApp() (*App, error) {
	if app == nil {
		return nil, ErrNotInitialized
	}
	return app, nil
}
