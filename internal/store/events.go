package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Topic names what changed. Subscribers re-read the matching collection; the
// event never carries a patch of the collection itself.
type Topic string

const (
	TopicTasks          Topic = "tasks"
	TopicStaff          Topic = "staff"
	TopicDepartments    Topic = "departments"
	TopicSession        Topic = "session"
	TopicSettings       Topic = "settings"
	TopicRecentAccounts Topic = "recent_accounts"
	TopicConnectionLog  Topic = "connection_log"
	TopicEvaluations    Topic = "evaluations"
	TopicToast          Topic = "toast"
	TopicCelebration    Topic = "celebration"
)

var topicKeys = map[Topic]string{
	TopicTasks:          KeyTasks,
	TopicStaff:          KeyStaff,
	TopicDepartments:    KeyDepartments,
	TopicSession:        KeySession,
	TopicSettings:       KeySettings,
	TopicRecentAccounts: KeyRecentAccounts,
	TopicConnectionLog:  KeyConnectionLog,
	TopicEvaluations:    KeyEvaluations,
}

type Event struct {
	Topic   Topic     `json:"topic"`
	Origin  string    `json:"origin"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}

// Relay carries events between processes sharing one Backend.
type Relay interface {
	Publish(ctx context.Context, ev Event) error
	// Listen blocks until ctx is done, calling fn for every received event.
	Listen(ctx context.Context, fn func(Event)) error
}

const subscriberBuffer = 32

type subscriber struct {
	ch     chan Event
	topics map[Topic]bool
}

// Subscribe returns a channel receiving events for the given topics, or for
// every topic when none are given. Events are dropped for a subscriber whose
// buffer is full. cancel closes the channel.
func (s *Store) Subscribe(topics ...Topic) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}
	if len(topics) > 0 {
		sub.topics = make(map[Topic]bool, len(topics))
		for _, t := range topics {
			sub.topics[t] = true
		}
	}

	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = sub
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub.ch)
		}
		s.subMu.Unlock()
	}
	return sub.ch, cancel
}

// Publish delivers an event locally and, when a relay is attached, to other
// processes.
func (s *Store) Publish(topic Topic, payload any) {
	ev := Event{Topic: topic, Origin: s.origin, At: time.Now(), Payload: payload}
	s.deliver(ev)

	s.subMu.RLock()
	relay := s.relay
	s.subMu.RUnlock()
	if relay == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := relay.Publish(ctx, ev); err != nil {
		s.logger.Warn("relay publish failed", zap.String("topic", string(topic)), zap.Error(err))
	}
}

func (s *Store) deliver(ev Event) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, sub := range s.subs {
		if sub.topics != nil && !sub.topics[ev.Topic] {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// AttachRelay forwards local events through r and applies events from other
// processes: the matching key is reloaded from the backend, then the event is
// delivered to local subscribers. It returns once the listener is started.
func (s *Store) AttachRelay(ctx context.Context, r Relay) {
	s.subMu.Lock()
	s.relay = r
	s.subMu.Unlock()

	go func() {
		err := r.Listen(ctx, func(ev Event) {
			if ev.Origin == s.origin {
				return
			}
			if key, ok := topicKeys[ev.Topic]; ok {
				if err := s.reload(ctx, key); err != nil {
					s.logger.Warn("reload after remote event failed", zap.String("key", key), zap.Error(err))
					return
				}
			}
			s.deliver(ev)
		})
		if err != nil && ctx.Err() == nil {
			s.logger.Error("relay listener stopped", zap.Error(err))
		}
	}()
}
