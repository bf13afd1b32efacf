package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/dayplanner/adapter/cli/clitest"
	"github.com/felixgeelhaar/dayplanner/internal/planning/application/queries"
	"github.com/felixgeelhaar/dayplanner/internal/planning/domain"
	"github.com/felixgeelhaar/dayplanner/internal/planning/infrastructure/taskfile"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndList(t *testing.T) {
	clitest.NewApp(t)

	out, err := clitest.Run(t, listCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks found.")

	out, err = clitest.Run(t, addCmd, map[string]string{
		"duration":   "90",
		"importance": "4",
		"deadline":   "2024-01-16",
	}, "Write report")
	require.NoError(t, err)
	assert.Contains(t, out, "Task added:")
	assert.Contains(t, out, "duration: 1h30m")
	assert.Contains(t, out, "deadline: 2024-01-16 23:59")

	out, err = clitest.Run(t, listCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "1h30m")
	assert.Contains(t, out, "unscheduled")
	assert.Contains(t, out, "1 task(s)")

	out, err = clitest.Run(t, listCmd, map[string]string{"status": "scheduled"})
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks found.")
}

func TestAdd_Invalid(t *testing.T) {
	clitest.NewApp(t)

	_, err := clitest.Run(t, addCmd, map[string]string{"duration": "30", "importance": "9"}, "Too important")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = clitest.Run(t, addCmd, map[string]string{"duration": "soon"}, "Vague")
	assert.Error(t, err)
}

func TestList_UnknownStatus(t *testing.T) {
	clitest.NewApp(t)

	_, err := clitest.Run(t, listCmd, map[string]string{"status": "done"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestImportExport(t *testing.T) {
	app := clitest.NewApp(t)
	dir := t.TempDir()
	id := uuid.New()

	in := filepath.Join(dir, "tasks.json")
	require.NoError(t, os.WriteFile(in, []byte(`[
		{"id": "`+id.String()+`", "name": "Read chapter", "estimated_time": 45, "importance": 2,
		 "deadline": "2024-01-17T18:00:00", "earliest_start_time": null, "completed": false, "note": "ch. 3"},
		{"name": "Old chore", "estimated_time": 10, "importance": 1,
		 "deadline": null, "earliest_start_time": null, "completed": true, "note": null}
	]`), 0o644))

	out, err := clitest.Run(t, importCmd, nil, in)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 task(s)")
	assert.Contains(t, out, "skipped: 1")

	out, err = clitest.Run(t, importCmd, nil, in)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 task(s)")
	assert.Contains(t, out, "skipped: 2")

	exported := filepath.Join(dir, "export.json")
	out, err = clitest.Run(t, exportCmd, nil, exported)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 task(s)")

	f, err := os.Open(exported)
	require.NoError(t, err)
	defer f.Close()
	records, err := taskfile.Decode(f, app.Location)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, "Read chapter", records[0].Name)
	assert.Equal(t, "ch. 3", records[0].Note)
	require.NotNil(t, records[0].Deadline)
	assert.Equal(t, 18, records[0].Deadline.Hour())
}

func TestExport_Stdout(t *testing.T) {
	clitest.NewApp(t)

	_, err := clitest.Run(t, addCmd, map[string]string{"duration": "30"}, "Email")
	require.NoError(t, err)

	out, err := clitest.Run(t, exportCmd, nil, "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Email"`)
	assert.Contains(t, out, `"estimated_time": 30`)
}

func TestImport_Malformed(t *testing.T) {
	clitest.NewApp(t)
	in := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"name": "not an array"}`), 0o644))

	_, err := clitest.Run(t, importCmd, nil, in)
	assert.ErrorIs(t, err, taskfile.ErrMalformed)
}

func TestUnscheduleAndRemove(t *testing.T) {
	app := clitest.NewApp(t)

	_, err := clitest.Run(t, addCmd, map[string]string{"duration": "60"}, "Lab prep")
	require.NoError(t, err)
	tasks, err := app.ListTasksHandler.Handle(t.Context(), queries.ListTasksQuery{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	id := tasks[0].ID.String()

	out, err := clitest.Run(t, unscheduleCmd, nil, id)
	require.NoError(t, err)
	assert.Contains(t, out, "Task was not scheduled.")

	out, err = clitest.Run(t, removeCmd, nil, id)
	require.NoError(t, err)
	assert.Contains(t, out, "Task removed: "+id)

	_, err = clitest.Run(t, removeCmd, nil, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = clitest.Run(t, unscheduleCmd, nil, "not-a-uuid")
	assert.Error(t, err)
}
