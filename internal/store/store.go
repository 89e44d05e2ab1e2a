// Package store holds the single authoritative copy of the application state:
// tasks, staff, departments, session, settings, recent accounts, connection log
// and evaluations. Every mutation is persisted through a Backend before it
// becomes visible, then announced as an Event.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roksva123/go-matrix-tasks/internal/model"
)

const (
	MaxRecentAccounts = 4
	MaxConnectionLog  = 50
)

type state struct {
	session     *model.User
	tasks       []model.Task
	staff       []model.StaffMember
	departments []model.Department
	settings    model.Settings
	recent      []model.RecentAccount
	connLog     []model.ConnectionLogEntry
	evaluations map[string]model.Evaluation
}

type Store struct {
	backend Backend
	logger  *zap.Logger
	origin  string

	mu sync.RWMutex
	st state

	subMu   sync.RWMutex
	subs    map[uint64]*subscriber
	nextSub uint64
	relay   Relay
}

// Open loads every key from backend. A missing key is an empty collection; an
// unreadable value is logged and replaced with its empty form.
func Open(ctx context.Context, backend Backend, logger *zap.Logger) (*Store, error) {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		backend: backend,
		logger:  logger,
		origin:  uuid.NewString(),
		subs:    map[uint64]*subscriber{},
		st: state{
			tasks:       []model.Task{},
			staff:       []model.StaffMember{},
			departments: []model.Department{},
			settings:    model.DefaultSettings(),
			recent:      []model.RecentAccount{},
			connLog:     []model.ConnectionLogEntry{},
			evaluations: map[string]model.Evaluation{},
		},
	}
	for _, key := range AllKeys {
		if err := s.reload(ctx, key); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// reload re-reads one key from the backend into memory.
func (s *Store) reload(ctx context.Context, key string) error {
	raw, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		raw = nil
	} else if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.decodeInto(key, raw); err != nil {
		s.logger.Warn("discarding unreadable stored value", zap.String("key", key), zap.Error(err))
		_ = s.decodeInto(key, nil)
	}
	return nil
}

// decodeInto replaces the in-memory value of key. nil raw resets it.
func (s *Store) decodeInto(key string, raw []byte) error {
	switch key {
	case KeySession:
		if raw == nil {
			s.st.session = nil
			return nil
		}
		var u model.User
		if err := json.Unmarshal(raw, &u); err != nil {
			return err
		}
		s.st.session = &u
	case KeyTasks:
		v := []model.Task{}
		if err := unmarshalOpt(raw, &v); err != nil {
			return err
		}
		s.st.tasks = v
	case KeyStaff:
		v := []model.StaffMember{}
		if err := unmarshalOpt(raw, &v); err != nil {
			return err
		}
		s.st.staff = v
	case KeyDepartments:
		v := []model.Department{}
		if err := unmarshalOpt(raw, &v); err != nil {
			return err
		}
		s.st.departments = v
	case KeySettings:
		v := model.DefaultSettings()
		if err := unmarshalOpt(raw, &v); err != nil {
			return err
		}
		if v.WebhookURLs == nil {
			v.WebhookURLs = map[model.EntityKind]string{}
		}
		s.st.settings = v
	case KeyRecentAccounts:
		v := []model.RecentAccount{}
		if err := unmarshalOpt(raw, &v); err != nil {
			return err
		}
		s.st.recent = v
	case KeyConnectionLog:
		v := []model.ConnectionLogEntry{}
		if err := unmarshalOpt(raw, &v); err != nil {
			return err
		}
		s.st.connLog = v
	case KeyEvaluations:
		v := map[string]model.Evaluation{}
		if err := unmarshalOpt(raw, &v); err != nil {
			return err
		}
		s.st.evaluations = v
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}

func unmarshalOpt(raw []byte, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// persist writes value under key. Callers hold s.mu and only commit the new
// value to memory when persist succeeds.
func (s *Store) persist(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, b); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}
