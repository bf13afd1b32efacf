package commands_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/dayplanner/internal/planning/application/commands"
	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/felixgeelhaar/dayplanner/internal/planning/infrastructure/locking"
	"github.com/felixgeelhaar/dayplanner/internal/planning/infrastructure/profile"
	"github.com/felixgeelhaar/dayplanner/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// memTaskRepo stores snapshots so changes only become visible through Save.
type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
	order []uuid.UUID
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: map[uuid.UUID]*domain.Task{}}
}

func snapshotTask(t *domain.Task) *domain.Task {
	return domain.RehydrateTask(t.ID(), t.Name(), t.Duration(), t.Importance(), t.Deadline(), t.EarliestStart(),
		t.Note(), t.IsSplittable(), t.Status(), t.CreatedAt(), t.UpdatedAt())
}

func (r *memTaskRepo) Save(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID()]; !ok {
		r.order = append(r.order, task.ID())
	}
	r.tasks[task.ID()] = snapshotTask(task)
	return nil
}

func (r *memTaskRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "task", Key: id.String()}
	}
	return snapshotTask(t), nil
}

func (r *memTaskRepo) List(_ context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Task
	for _, id := range r.order {
		if t, ok := r.tasks[id]; ok && filter.Matches(t.Status()) {
			out = append(out, snapshotTask(t))
		}
	}
	return out, nil
}

func (r *memTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return &domain.NotFoundError{Resource: "task", Key: id.String()}
	}
	delete(r.tasks, id)
	return nil
}

type memTimelineRepo struct {
	mu        sync.Mutex
	timelines map[string]*domain.DayTimeline
}

func newMemTimelineRepo() *memTimelineRepo {
	return &memTimelineRepo{timelines: map[string]*domain.DayTimeline{}}
}

func snapshotTimeline(t *domain.DayTimeline) *domain.DayTimeline {
	return domain.RehydrateDayTimeline(t.ID(), t.Date(), t.Bounds(), t.FixedSlots(), t.PlacedTasks(), t.CreatedAt(), t.UpdatedAt())
}

func (r *memTimelineRepo) Save(_ context.Context, tl *domain.DayTimeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timelines[domain.DateKey(tl.Date())] = snapshotTimeline(tl)
	return nil
}

func (r *memTimelineRepo) FindByDate(_ context.Context, date time.Time) (*domain.DayTimeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tl, ok := r.timelines[domain.DateKey(date)]
	if !ok {
		return nil, nil
	}
	return snapshotTimeline(tl), nil
}

func (r *memTimelineRepo) filter(keep func(*domain.DayTimeline) bool) []*domain.DayTimeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.DayTimeline
	for _, tl := range r.timelines {
		if keep(tl) {
			out = append(out, snapshotTimeline(tl))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date().Before(out[j].Date()) })
	return out
}

func (r *memTimelineRepo) FindRange(_ context.Context, from, to time.Time) ([]*domain.DayTimeline, error) {
	lo, hi := domain.DateKey(from), domain.DateKey(to)
	return r.filter(func(tl *domain.DayTimeline) bool {
		k := domain.DateKey(tl.Date())
		return k >= lo && k <= hi
	}), nil
}

func (r *memTimelineRepo) FindByTask(_ context.Context, taskID uuid.UUID) ([]*domain.DayTimeline, error) {
	return r.filter(func(tl *domain.DayTimeline) bool {
		return len(tl.PlacementsOf(taskID)) > 0
	}), nil
}

func (r *memTimelineRepo) get(date time.Time) *domain.DayTimeline {
	tl, _ := r.FindByDate(context.Background(), date)
	return tl
}

// mockUnitOfWork is a mock implementation of UnitOfWork.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// passthroughUoW expects any number of units of work.
func passthroughUoW() *mockUnitOfWork {
	uow := new(mockUnitOfWork)
	uow.On("Begin", mock.Anything).Return(context.Background(), nil).Maybe()
	uow.On("Commit", mock.Anything).Return(nil).Maybe()
	uow.On("Rollback", mock.Anything).Return(nil).Maybe()
	return uow
}

type recordingRecorder struct {
	runs      int
	scheduled int
	failed    int
}

func (r *recordingRecorder) PlanCompleted(scheduled, failed int, _ time.Duration) {
	r.runs++
	r.scheduled += scheduled
	r.failed += failed
}

type fixture struct {
	tasks     *memTaskRepo
	timelines *memTimelineRepo
	outbox    *outbox.InMemoryRepository
	uow       *mockUnitOfWork
	locker    *locking.LocalLocker
	deps      commands.Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tasks:     newMemTaskRepo(),
		timelines: newMemTimelineRepo(),
		outbox:    outbox.NewInMemoryRepository(),
		uow:       passthroughUoW(),
		locker:    locking.NewLocalLocker(),
	}
	f.deps = commands.Deps{
		Tasks:     f.tasks,
		Timelines: f.timelines,
		Outbox:    f.outbox,
		UoW:       f.uow,
		Locker:    f.locker,
		Template:  profile.Default(),
		LockTTL:   time.Second,
		Actor:     "test",
	}
	return f
}

func (f *fixture) routingKeys() []string {
	var keys []string
	for _, m := range f.outbox.Messages() {
		keys = append(keys, m.RoutingKey)
	}
	return keys
}

func (f *fixture) addTask(t *testing.T, name string, d time.Duration, importance int) uuid.UUID {
	t.Helper()
	res, err := commands.NewAddTaskHandler(f.deps).Handle(context.Background(), commands.AddTaskCommand{
		Name:       name,
		Duration:   d,
		Importance: importance,
	})
	if err != nil {
		t.Fatalf("add task %s: %v", name, err)
	}
	return res.TaskID
}

// monday is a date whose default profile window is 07:20 to 23:40 with
// breakfast, lunch and dinner blocked.
var monday = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

func at(d time.Time, h, m int) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, d.Location())
}
