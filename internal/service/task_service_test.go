package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/store"
)

func TestCreateTask(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedOrg(t)

	task, err := env.tasks.Create(context.Background(), alice, TaskInput{Title: "  Write report ", Quadrant: model.Q2, EndTime: "17:00 14/03"})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, model.Q2, task.Quadrant)
	assert.Equal(t, model.Q2, task.InitialQuadrant)
	assert.Equal(t, model.StatusPending, task.Status)
	assert.Equal(t, "10:30 14/03", task.CreatedAtDisplay)
	assert.Equal(t, "s1", task.AssigneeID)
	assert.Equal(t, "Alice Tran", task.CreatedByLabel)
	assert.Equal(t, []string{ActionCreateTask}, env.notifier.actions())

	stored, ok := env.store.Task(task.ID)
	require.True(t, ok)
	assert.Equal(t, task, stored)
}

func TestCreateTaskValidation(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	_, err := env.tasks.Create(ctx, alice, TaskInput{Title: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = env.tasks.Create(ctx, alice, TaskInput{Title: "x", Quadrant: "Q9"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = env.tasks.Create(ctx, alice, TaskInput{Title: "x", StartTime: "tomorrow"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = env.tasks.Create(ctx, alice, TaskInput{Title: "x", AssigneeID: "ghost"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	task, err := env.tasks.Create(ctx, alice, TaskInput{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, model.Q4, task.Quadrant)
}

func TestTransitionAppendsLogAndStampsUpdate(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	require.NoError(t, env.store.PutTask(ctx, model.Task{ID: "t1", Title: "T", Status: model.StatusPending, AssigneeID: "s1", Logs: []string{}}))

	env.tasks.Now = func() time.Time { return testNow.Add(time.Hour) }
	task, err := env.tasks.Transition(ctx, alice, "t1", model.ActionStart)
	require.NoError(t, err)

	assert.Equal(t, model.StatusDoing, task.Status)
	assert.Equal(t, "2025-03-14T11:30:00.000Z", task.UpdatedAt)
	assert.Equal(t, []string{"11:30 14/03 Alice Tran: PENDING → DOING"}, task.Logs)

	_, err = env.tasks.Transition(ctx, alice, "t1", model.ActionRedo)
	assert.ErrorIs(t, err, model.ErrActionNotAllowed)
	stored, _ := env.store.Task("t1")
	assert.Equal(t, model.StatusDoing, stored.Status)
	assert.Len(t, stored.Logs, 1)
}

func TestTransitionToDonePublishesCelebration(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	_, err := env.store.UpdateSettings(ctx, func(s *model.Settings) error {
		s.SoundURL = "https://cdn.example.com/tada.mp3"
		s.Volume = 0.8
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, env.store.PutTask(ctx, model.Task{ID: "t1", Title: "Ship", Status: model.StatusDoing, AssigneeID: "s1"}))

	events, cancel := env.store.Subscribe(store.TopicCelebration)
	defer cancel()

	_, err = env.tasks.Transition(ctx, alice, "t1", model.ActionDone)
	require.NoError(t, err)

	select {
	case ev := <-events:
		c, ok := ev.Payload.(Celebration)
		require.True(t, ok)
		assert.Equal(t, "t1", c.TaskID)
		assert.Equal(t, "https://cdn.example.com/tada.mp3", c.SoundURL)
		assert.Equal(t, 0.8, c.Volume)
	case <-time.After(time.Second):
		t.Fatal("no celebration event")
	}
	assert.Equal(t, []string{ActionUpdateTaskStatus}, env.notifier.actions())
}

func TestUpdateTask(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedOrg(t)
	ctx := context.Background()
	require.NoError(t, env.store.PutTask(ctx, model.Task{ID: "t1", Title: "Old", Quadrant: model.Q1, InitialQuadrant: model.Q1, AssigneeID: "s1"}))

	title, q, assignee := "New", model.Q3, "s2"
	task, err := env.tasks.Update(ctx, admin, "t1", TaskPatch{Title: &title, Quadrant: &q, AssigneeID: &assignee})
	require.NoError(t, err)

	assert.Equal(t, "New", task.Title)
	assert.Equal(t, model.Q3, task.Quadrant)
	assert.Equal(t, model.Q1, task.InitialQuadrant)
	assert.Equal(t, "s2", task.AssigneeID)
	assert.Equal(t, "Bob Le", task.AssigneeLabel)
	assert.Equal(t, "2025-03-14T10:30:00.000Z", task.UpdatedAt)

	bad := model.Quadrant("Q0")
	_, err = env.tasks.Update(ctx, admin, "t1", TaskPatch{Quadrant: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.tasks.Update(ctx, admin, "missing", TaskPatch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTaskRequiresConfirmation(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	require.NoError(t, env.store.PutTask(ctx, model.Task{ID: "t1", AssigneeID: "s1"}))

	assert.ErrorIs(t, env.tasks.Delete(ctx, alice, "t1", false), ErrConfirmationRequired)
	_, ok := env.store.Task("t1")
	assert.True(t, ok)

	require.NoError(t, env.tasks.Delete(ctx, alice, "t1", true))
	_, ok = env.store.Task("t1")
	assert.False(t, ok)
	assert.ErrorIs(t, env.tasks.Delete(ctx, alice, "t1", true), ErrNotFound)
	assert.Equal(t, []string{ActionDeleteTask}, env.notifier.actions())
}

func TestRoleViews(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedOrg(t)
	ctx := context.Background()
	require.NoError(t, env.store.ReplaceTasks(ctx, []model.Task{
		{ID: "alice-own", AssigneeID: "s1"},
		{ID: "alice-by-label", AssigneeID: "9999", AssigneeLabel: "alice tran"},
		{ID: "bob-own", AssigneeID: "s2"},
		{ID: "created-by-alice", CreatedByID: "s1", AssigneeID: "s2"},
		{ID: "mia-own", CreatedByID: "m1"},
		{ID: "orphan", AssigneeLabel: "nobody"},
	}))

	ids := func(tasks []model.Task) []string {
		out := []string{}
		for _, t := range tasks {
			out = append(out, t.ID)
		}
		return out
	}

	assert.Equal(t, []string{"alice-own", "alice-by-label", "created-by-alice"}, ids(env.tasks.List(alice, TaskFilter{})))
	assert.Equal(t, []string{"bob-own", "created-by-alice"}, ids(env.tasks.List(bob, TaskFilter{})))
	// Mia manages Engineering; Alice's department is stored by id, Mia's by name.
	assert.Equal(t, []string{"alice-own", "alice-by-label", "mia-own"}, ids(env.tasks.List(manager, TaskFilter{})))
	assert.Len(t, env.tasks.List(admin, TaskFilter{}), 6)

	_, err := env.tasks.Transition(ctx, bob, "alice-own", model.ActionStart)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListFilters(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	require.NoError(t, env.store.ReplaceTasks(ctx, []model.Task{
		{ID: "late", Quadrant: model.Q1, Status: model.StatusDoing, EndTime: "09:00 14/03"},
		{ID: "late-but-done", Quadrant: model.Q1, Status: model.StatusDone, EndTime: "09:00 14/03"},
		{ID: "later-today", Quadrant: model.Q2, Status: model.StatusPending, StartTime: "15:00 14/03"},
		{ID: "tomorrow", Quadrant: model.Q2, Status: model.StatusPending, StartTime: "08:00 15/03"},
	}))

	ids := func(f TaskFilter) []string {
		out := []string{}
		for _, t := range env.tasks.List(admin, f) {
			out = append(out, t.ID)
		}
		return out
	}

	assert.Equal(t, []string{"late", "late-but-done"}, ids(TaskFilter{Quadrant: model.Q1}))
	assert.Equal(t, []string{"later-today", "tomorrow"}, ids(TaskFilter{Status: model.StatusPending}))
	assert.Equal(t, []string{"late"}, ids(TaskFilter{Overdue: true}))
	assert.Equal(t, []string{"late", "late-but-done", "later-today"}, ids(TaskFilter{Today: true}))
}

func TestActions(t *testing.T) {
	env := newTestEnv(t, "")
	require.NoError(t, env.store.PutTask(context.Background(), model.Task{ID: "t1", Status: model.StatusCancelled}))

	actions, err := env.tasks.Actions(admin, "t1")
	require.NoError(t, err)
	assert.Equal(t, []model.Action{model.ActionDone, model.ActionStart, model.ActionRedo}, actions)

	_, err = env.tasks.Actions(admin, "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}
