package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/roksva123/go-matrix-tasks/internal/model"
)

func TestTaskReport(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	require.NoError(t, env.store.ReplaceTasks(ctx, []model.Task{
		{ID: "t1", Title: "Late", Quadrant: model.Q1, Status: model.StatusDoing, EndTime: "09:00 14/03", Logs: []string{"a", "b"}},
		{ID: "t2", Title: "Fine", Quadrant: model.Q4, Status: model.StatusPending},
	}))

	buf, name, err := NewExportService(env.tasks, zap.NewNop()).TaskReport(admin, TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, "tasks_20250314_1030.xlsx", name)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Tasks")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Title", rows[0][1])
	assert.Equal(t, "Late", rows[1][1])
	assert.Equal(t, "yes", rows[1][10])
	assert.Equal(t, "a\nb", rows[1][11])
	assert.Equal(t, "Fine", rows[2][1])
}
