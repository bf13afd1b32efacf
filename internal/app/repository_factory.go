package app

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/felixgeelhaar/dayplanner/internal/planning/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/dayplanner/internal/shared/application"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/outbox"
)

// RepositoryFactory creates repositories based on the database driver.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
	loc    *time.Location
}

// NewRepositoryFactory creates a new repository factory. Stored times are
// read back in loc.
func NewRepositoryFactory(conn database.Connection, loc *time.Location) *RepositoryFactory {
	if loc == nil {
		loc = time.Local
	}
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
		loc:    loc,
	}
}

func (f *RepositoryFactory) supported() error {
	switch f.driver {
	case database.DriverPostgres, database.DriverSQLite:
		return nil
	default:
		return fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// TaskRepository creates a task repository for the configured driver.
func (f *RepositoryFactory) TaskRepository() (domain.TaskRepository, error) {
	if err := f.supported(); err != nil {
		return nil, err
	}
	return persistence.NewSQLTaskRepository(f.conn, persistence.WithLocation(f.loc)), nil
}

// TimelineRepository creates a timeline repository for the configured driver.
func (f *RepositoryFactory) TimelineRepository() (domain.TimelineRepository, error) {
	if err := f.supported(); err != nil {
		return nil, err
	}
	return persistence.NewSQLTimelineRepository(f.conn, persistence.WithLocation(f.loc)), nil
}

// OutboxRepository creates an outbox repository for the configured driver.
func (f *RepositoryFactory) OutboxRepository() (*outbox.SQLRepository, error) {
	if err := f.supported(); err != nil {
		return nil, err
	}
	return outbox.NewSQLRepository(f.conn), nil
}

// UnitOfWork returns a unit of work over the connection.
func (f *RepositoryFactory) UnitOfWork() sharedApplication.UnitOfWork {
	return database.NewUnitOfWork(f.conn)
}

// Driver returns the database driver type.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// Connection returns the underlying database connection.
func (f *RepositoryFactory) Connection() database.Connection {
	return f.conn
}
