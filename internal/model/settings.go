package model

// EntityKind names one of the synchronized collections.
type EntityKind string

const (
	EntityTasks       EntityKind = "tasks"
	EntityStaff       EntityKind = "staff"
	EntityDepartments EntityKind = "departments"
)

var EntityKinds = []EntityKind{EntityTasks, EntityStaff, EntityDepartments}

func ParseEntityKind(s string) (EntityKind, bool) {
	for _, k := range EntityKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

type Settings struct {
	WebhookURLs map[EntityKind]string `json:"webhookUrls"`
	Volume      float64               `json:"volume"`
	SoundURL    string                `json:"soundUrl"`
}

func DefaultSettings() Settings {
	return Settings{
		WebhookURLs: map[EntityKind]string{},
		Volume:      0.5,
	}
}

func (s Settings) Clone() Settings {
	urls := make(map[EntityKind]string, len(s.WebhookURLs))
	for k, v := range s.WebhookURLs {
		urls[k] = v
	}
	s.WebhookURLs = urls
	return s
}
