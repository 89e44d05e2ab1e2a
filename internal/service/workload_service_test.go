package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roksva123/go-matrix-tasks/internal/model"
)

func TestWorkloadSummary(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedOrg(t)
	ctx := context.Background()
	require.NoError(t, env.store.ReplaceTasks(ctx, []model.Task{
		{ID: "1", AssigneeID: "s1", Status: model.StatusDoing, Quadrant: model.Q1, CreatedAt: "2025-03-13T08:00:00.000Z", EndTime: "09:00 14/03"},
		{ID: "2", AssigneeID: "s1", Status: model.StatusDone, Quadrant: model.Q2, CreatedAt: "2025-03-10T08:00:00.000Z"},
		{ID: "3", AssigneeID: "s1", Status: model.StatusDone, Quadrant: model.Q2, CreatedAt: "2025-01-01T08:00:00.000Z"},
		{ID: "4", AssigneeID: "s2", Status: model.StatusPending, Quadrant: model.Q4, CreatedAt: "2025-03-14T08:00:00.000Z"},
		{ID: "5", AssigneeLabel: "someone else", CreatedAt: "2025-03-14T08:00:00.000Z"},
	}))
	require.NoError(t, env.store.PutEvaluation(ctx, model.Evaluation{UserID: "s1", Period: 7, Excellent: true}))
	workload := NewWorkloadService(env.tasks, env.deps)

	resp, err := workload.Summary(admin, 7)
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Summary.TotalUsers)
	assert.Equal(t, 3, resp.Summary.TotalTasks)
	assert.Equal(t, 0.75, resp.Summary.AvgTasks)
	assert.Equal(t, 1, resp.Unassigned)

	require.Equal(t, "alice", resp.Users[0].Username)
	a := resp.Users[0]
	assert.Equal(t, 2, a.TaskCount)
	assert.Equal(t, 1, a.Overdue)
	assert.Equal(t, 1, a.ByStatus[model.StatusDone])
	assert.Equal(t, 1, a.ByQuadrant[model.Q1])
	assert.Equal(t, model.TagExcellent, a.Evaluation)

	resp, err = workload.Summary(manager, 7)
	require.NoError(t, err)
	var names []string
	for _, u := range resp.Users {
		names = append(names, u.Username)
	}
	assert.Equal(t, []string{"alice", "mia"}, names)

	resp, err = workload.Summary(bob, 30)
	require.NoError(t, err)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, 1, resp.Users[0].TaskCount)

	_, err = workload.Summary(admin, 3)
	assert.ErrorIs(t, err, model.ErrInvalidPeriod)
}
