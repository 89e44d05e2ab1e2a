package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roksva123/go-matrix-tasks/internal/model"
)

func (s *Store) Session() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.st.session == nil {
		return model.User{}, false
	}
	return *s.st.session, true
}

func (s *Store) SetSession(ctx context.Context, u model.User) error {
	s.mu.Lock()
	err := s.persist(ctx, KeySession, u)
	if err == nil {
		s.st.session = &u
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Publish(TopicSession, nil)
	return nil
}

func (s *Store) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	err := s.backend.Delete(ctx, KeySession)
	if err == nil {
		s.st.session = nil
	}
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.Publish(TopicSession, nil)
	return nil
}

func (s *Store) Settings() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.settings.Clone()
}

// UpdateSettings applies fn to a copy of the settings and persists the result.
func (s *Store) UpdateSettings(ctx context.Context, fn func(*model.Settings) error) (model.Settings, error) {
	s.mu.Lock()
	next := s.st.settings.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return model.Settings{}, err
	}
	err := s.persist(ctx, KeySettings, next)
	if err == nil {
		s.st.settings = next
	}
	s.mu.Unlock()
	if err != nil {
		return model.Settings{}, err
	}
	s.Publish(TopicSettings, nil)
	return next.Clone(), nil
}

func (s *Store) RecentAccounts() []model.RecentAccount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.RecentAccount(nil), s.st.recent...)
}

// PushRecentAccount moves a to the front of the quick-switch list, dropping any
// entry with the same username (case-insensitive) and keeping at most
// MaxRecentAccounts.
func (s *Store) PushRecentAccount(ctx context.Context, a model.RecentAccount) error {
	s.mu.Lock()
	next := []model.RecentAccount{a}
	for _, r := range s.st.recent {
		if strings.EqualFold(r.Username, a.Username) {
			continue
		}
		if len(next) == MaxRecentAccounts {
			break
		}
		next = append(next, r)
	}
	err := s.persist(ctx, KeyRecentAccounts, next)
	if err == nil {
		s.st.recent = next
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Publish(TopicRecentAccounts, nil)
	return nil
}

// ConnectionLog returns entries newest first.
func (s *Store) ConnectionLog() []model.ConnectionLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ConnectionLogEntry(nil), s.st.connLog...)
}

// AppendConnectionLog prepends e, keeping at most MaxConnectionLog entries.
func (s *Store) AppendConnectionLog(ctx context.Context, e model.ConnectionLogEntry) error {
	s.mu.Lock()
	next := make([]model.ConnectionLogEntry, 0, MaxConnectionLog)
	next = append(next, e)
	for _, old := range s.st.connLog {
		if len(next) == MaxConnectionLog {
			break
		}
		next = append(next, old)
	}
	err := s.persist(ctx, KeyConnectionLog, next)
	if err == nil {
		s.st.connLog = next
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Publish(TopicConnectionLog, nil)
	return nil
}

func (s *Store) ClearConnectionLog(ctx context.Context) error {
	s.mu.Lock()
	next := []model.ConnectionLogEntry{}
	err := s.persist(ctx, KeyConnectionLog, next)
	if err == nil {
		s.st.connLog = next
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Publish(TopicConnectionLog, nil)
	return nil
}

// Evaluations returns the evaluations recorded for period, keyed by user id.
func (s *Store) Evaluations(period int) map[string]model.Evaluation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]model.Evaluation{}
	for _, e := range s.st.evaluations {
		if e.Period == period {
			out[e.UserID] = e
		}
	}
	return out
}

func (s *Store) PutEvaluation(ctx context.Context, e model.Evaluation) error {
	s.mu.Lock()
	next := make(map[string]model.Evaluation, len(s.st.evaluations)+1)
	for k, v := range s.st.evaluations {
		next[k] = v
	}
	next[model.EvaluationKey(e.UserID, e.Period)] = e
	err := s.persist(ctx, KeyEvaluations, next)
	if err == nil {
		s.st.evaluations = next
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Publish(TopicEvaluations, nil)
	return nil
}
