package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roksva123/go-matrix-tasks/internal/model"
)

func TestSetEvaluation(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedOrg(t)
	evals := NewEvaluationService(env.store, env.deps, env.notifier, env.ep)
	ctx := context.Background()

	e, err := evals.Set(ctx, manager, "s1", 7, model.TagGood)
	require.NoError(t, err)
	assert.True(t, e.Good)

	e, err = evals.Set(ctx, manager, "s1", 7, model.TagExcellent)
	require.NoError(t, err)
	assert.True(t, e.Excellent)
	assert.False(t, e.Good)

	week, err := evals.List(7)
	require.NoError(t, err)
	assert.Equal(t, model.TagExcellent, week["s1"].Tag())
	month, err := evals.List(30)
	require.NoError(t, err)
	assert.Empty(t, month)

	_, err = evals.Set(ctx, manager, "s2", 7, model.TagBad)
	assert.ErrorIs(t, err, ErrForbidden, "bob is outside the manager's department")
	_, err = evals.Set(ctx, alice, "s1", 7, model.TagBad)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = evals.Set(ctx, admin, "s2", 10, model.TagBad)
	assert.ErrorIs(t, err, model.ErrInvalidPeriod)
	_, err = evals.Set(ctx, admin, "ghost", 7, model.TagBad)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = evals.Set(ctx, admin, "s2", 7, "superb")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = evals.List(5)
	assert.ErrorIs(t, err, model.ErrInvalidPeriod)

	assert.Equal(t, []string{ActionUpdateEvaluation, ActionUpdateEvaluation}, env.notifier.actions())
}
