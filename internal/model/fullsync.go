package model

// FullSync is the outcome of syncing every entity at once. Results keeps the
// EntityKinds order; Errors is keyed by the entities that failed.
type FullSync struct {
	Results []SyncResult          `json:"results"`
	Errors  map[EntityKind]string `json:"errors,omitempty"`
}

func (f FullSync) OK() bool { return len(f.Errors) == 0 }
