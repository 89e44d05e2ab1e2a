package service

import (
	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/store"
	"github.com/roksva123/go-matrix-tasks/internal/webhook"
)

// Endpoints resolves the webhook URL of an entity: a valid override saved in
// the settings wins over the configured default.
type Endpoints struct {
	Store    *store.Store
	Defaults map[model.EntityKind]string
}

func (e *Endpoints) URL(kind model.EntityKind) (string, bool) {
	if e.Store != nil {
		if u, ok := webhook.ValidURL(e.Store.Settings().WebhookURLs[kind]); ok {
			return u, true
		}
	}
	return webhook.ValidURL(e.Defaults[kind])
}

// Notifier sends fire-and-forget webhook notifications. *webhook.Client
// satisfies it.
type Notifier interface {
	Notify(url string, req webhook.Request)
}

func notifyWebhook(n Notifier, ep *Endpoints, kind model.EntityKind, action string, actor model.User, data any) {
	if n == nil || ep == nil {
		return
	}
	if u, ok := ep.URL(kind); ok {
		n.Notify(u, webhook.NewRequest(action, actor.Username, data))
	}
}
