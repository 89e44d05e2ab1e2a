package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/store"
)

func newTestRedisRepo(t *testing.T, mr *miniredis.Miniredis) *RedisRepo {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRepoFromClient(client, "test", zap.NewNop())
}

func TestRedisRepoGetSetDelete(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	repo := newTestRedisRepo(t, mr)

	_, err := repo.Get(ctx, store.KeyTasks)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, repo.Set(ctx, store.KeyTasks, []byte(`[{"id":"1"}]`)))
	got, err := repo.Get(ctx, store.KeyTasks)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))
	assert.True(t, mr.Exists("test:state:tasks"))

	require.NoError(t, repo.Delete(ctx, store.KeyTasks))
	_, err = repo.Get(ctx, store.KeyTasks)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRedisRepoBacksStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	repo := newTestRedisRepo(t, mr)

	s, err := store.Open(ctx, repo, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.ReplaceStaff(ctx, []model.StaffMember{{ID: "5", Username: "jdoe", Role: model.RoleStaff}}))

	reopened, err := store.Open(ctx, newTestRedisRepo(t, mr), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, reopened.Staff(), 1)
	assert.Equal(t, "jdoe", reopened.Staff()[0].Username)
}

func TestRedisRelayBetweenStores(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mr := miniredis.RunT(t)

	writerRepo := newTestRedisRepo(t, mr)
	readerRepo := newTestRedisRepo(t, mr)
	writer, err := store.Open(ctx, writerRepo, zap.NewNop())
	require.NoError(t, err)
	reader, err := store.Open(ctx, readerRepo, zap.NewNop())
	require.NoError(t, err)

	reader.AttachRelay(ctx, readerRepo)
	writer.AttachRelay(ctx, writerRepo)
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("test:events")["test:events"] == 2
	}, 2*time.Second, 10*time.Millisecond)

	events, unsub := reader.Subscribe(store.TopicTasks)
	defer unsub()

	require.NoError(t, writer.ReplaceTasks(ctx, []model.Task{{ID: "42", Title: "remote"}}))

	select {
	case ev := <-events:
		assert.Equal(t, store.TopicTasks, ev.Topic)
	case <-time.After(2 * time.Second):
		t.Fatal("reader received no relayed event")
	}
	tasks := reader.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "remote", tasks[0].Title)
}
