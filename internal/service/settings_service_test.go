package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roksva123/go-matrix-tasks/internal/model"
)

func TestSettingsOverrideAndReset(t *testing.T) {
	env := newTestEnv(t, "")
	settings := NewSettingsService(env.store, env.ep)
	ctx := context.Background()
	def := env.ep.Defaults[model.EntityTasks]

	assert.Equal(t, def, settings.Get().Effective[model.EntityTasks])

	got, err := settings.Update(ctx, admin, SettingsPatch{
		WebhookURLs: map[model.EntityKind]string{model.EntityTasks: "  https://hooks.example.com/t "},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example.com/t", got.WebhookURLs[model.EntityTasks])
	assert.Equal(t, "https://hooks.example.com/t", got.Effective[model.EntityTasks])

	got, err = settings.Update(ctx, admin, SettingsPatch{
		WebhookURLs: map[model.EntityKind]string{model.EntityTasks: ""},
	})
	require.NoError(t, err)
	assert.NotContains(t, got.WebhookURLs, model.EntityTasks)
	assert.Equal(t, def, got.Effective[model.EntityTasks])
}

func TestSettingsValidation(t *testing.T) {
	env := newTestEnv(t, "")
	settings := NewSettingsService(env.store, env.ep)
	ctx := context.Background()

	_, err := settings.Update(ctx, alice, SettingsPatch{
		WebhookURLs: map[model.EntityKind]string{model.EntityStaff: "http://x"},
	})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = settings.Update(ctx, admin, SettingsPatch{
		WebhookURLs: map[model.EntityKind]string{model.EntityStaff: "ftp://x"},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = settings.Update(ctx, admin, SettingsPatch{
		WebhookURLs: map[model.EntityKind]string{"projects": "http://x"},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	loud := 1.5
	_, err = settings.Update(ctx, alice, SettingsPatch{Volume: &loud})
	assert.ErrorIs(t, err, ErrInvalidInput)

	quiet, sound := 0.2, "https://cdn.example.com/ding.mp3"
	got, err := settings.Update(ctx, alice, SettingsPatch{Volume: &quiet, SoundURL: &sound})
	require.NoError(t, err)
	assert.Equal(t, 0.2, got.Volume)
	assert.Equal(t, sound, env.store.Settings().SoundURL)
}

func TestClearConnectionLogNeedsConfirmation(t *testing.T) {
	env := newTestEnv(t, `[{"id":1,"title":"a"}]`)
	ctx := context.Background()
	_, err := env.sync.SyncTasks(ctx, alice)
	require.NoError(t, err)
	require.Len(t, env.sync.ConnectionLog(), 1)

	assert.ErrorIs(t, env.sync.ClearConnectionLog(ctx, false), ErrConfirmationRequired)
	require.NoError(t, env.sync.ClearConnectionLog(ctx, true))
	assert.Empty(t, env.sync.ConnectionLog())
}
