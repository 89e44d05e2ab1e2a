package service

import (
	"context"
	"strings"

	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/store"
	"github.com/roksva123/go-matrix-tasks/internal/webhook"
)

// SettingsPatch changes only the non-nil fields. An empty webhook URL removes
// the override so the configured default applies again.
type SettingsPatch struct {
	WebhookURLs map[model.EntityKind]string `json:"webhookUrls"`
	Volume      *float64                    `json:"volume"`
	SoundURL    *string                     `json:"soundUrl"`
}

// EffectiveSettings is what the settings screen shows: the stored overrides
// next to the URL each sync will actually use.
type EffectiveSettings struct {
	model.Settings
	Effective map[model.EntityKind]string `json:"effectiveUrls"`
}

type SettingsService struct {
	Store     *store.Store
	Endpoints *Endpoints
}

func NewSettingsService(st *store.Store, endpoints *Endpoints) *SettingsService {
	return &SettingsService{Store: st, Endpoints: endpoints}
}

func (s *SettingsService) Get() EffectiveSettings {
	out := EffectiveSettings{Settings: s.Store.Settings(), Effective: map[model.EntityKind]string{}}
	for _, k := range model.EntityKinds {
		if u, ok := s.Endpoints.URL(k); ok {
			out.Effective[k] = u
		}
	}
	return out
}

// Update applies p. Only admins may change webhook URLs.
func (s *SettingsService) Update(ctx context.Context, actor model.User, p SettingsPatch) (EffectiveSettings, error) {
	if len(p.WebhookURLs) > 0 && actor.Role != model.RoleAdmin {
		return EffectiveSettings{}, ErrForbidden
	}
	urls := make(map[model.EntityKind]string, len(p.WebhookURLs))
	for k, raw := range p.WebhookURLs {
		if _, ok := model.ParseEntityKind(string(k)); !ok {
			return EffectiveSettings{}, invalidInput("unknown entity %q", k)
		}
		if strings.TrimSpace(raw) == "" {
			urls[k] = ""
			continue
		}
		u, ok := webhook.ValidURL(raw)
		if !ok {
			return EffectiveSettings{}, invalidInput("webhook url for %s must start with http", k)
		}
		urls[k] = u
	}
	if p.Volume != nil && (*p.Volume < 0 || *p.Volume > 1) {
		return EffectiveSettings{}, invalidInput("volume must be between 0 and 1")
	}

	_, err := s.Store.UpdateSettings(ctx, func(st *model.Settings) error {
		for k, u := range urls {
			if u == "" {
				delete(st.WebhookURLs, k)
			} else {
				st.WebhookURLs[k] = u
			}
		}
		if p.Volume != nil {
			st.Volume = *p.Volume
		}
		if p.SoundURL != nil {
			st.SoundURL = strings.TrimSpace(*p.SoundURL)
		}
		return nil
	})
	if err != nil {
		return EffectiveSettings{}, err
	}
	return s.Get(), nil
}
