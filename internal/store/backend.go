package store

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("not found")

// Keys of the persisted collections.
const (
	KeySession        = "session"
	KeyTasks          = "tasks"
	KeyStaff          = "staff"
	KeyDepartments    = "departments"
	KeySettings       = "settings"
	KeyRecentAccounts = "recent_accounts"
	KeyConnectionLog  = "connection_log"
	KeyEvaluations    = "evaluations"
)

var AllKeys = []string{
	KeySession, KeyTasks, KeyStaff, KeyDepartments,
	KeySettings, KeyRecentAccounts, KeyConnectionLog, KeyEvaluations,
}

// Backend is the durable key-value storage behind the Store. Get returns
// ErrNotFound for a missing key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: map[string][]byte{}}
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = append([]byte(nil), value...)
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}
