package model

import "time"

// ConnectionLogEntry records one sync attempt.
type ConnectionLogEntry struct {
	ID         string     `json:"id"`
	Time       time.Time  `json:"time"`
	Entity     EntityKind `json:"entity"`
	Action     string     `json:"action"`
	URL        string     `json:"url,omitempty"`
	OK         bool       `json:"ok"`
	Records    int        `json:"records"`
	Message    string     `json:"message"`
	DurationMs int64      `json:"durationMs"`
}

// SyncHistory is the durable archive row of a ConnectionLogEntry.
type SyncHistory struct {
	ID         uint      `gorm:"primaryKey"                json:"id"`
	EntryID    string    `gorm:"type:varchar(64);index"    json:"entry_id"`
	SyncTime   time.Time `gorm:"not null;index"            json:"sync_time"`
	SyncType   string    `gorm:"type:varchar(32);not null" json:"sync_type"`
	Action     string    `gorm:"type:varchar(64)"          json:"action"`
	Status     string    `gorm:"type:varchar(16);not null" json:"status"`
	Records    int       `json:"records"`
	DurationMs int64     `json:"duration_ms"`
	Details    string    `gorm:"type:text"                 json:"details,omitempty"`
}

func (SyncHistory) TableName() string { return "sync_history" }

func SyncHistoryFromEntry(e ConnectionLogEntry) SyncHistory {
	status := "failed"
	if e.OK {
		status = "success"
	}
	return SyncHistory{
		EntryID:    e.ID,
		SyncTime:   e.Time,
		SyncType:   string(e.Entity),
		Action:     e.Action,
		Status:     status,
		Records:    e.Records,
		DurationMs: e.DurationMs,
		Details:    e.Message,
	}
}

type SyncResult struct {
	Entity    EntityKind `json:"entity"`
	Action    string     `json:"action"`
	Records   int        `json:"records"`
	Rejected  int        `json:"rejected"`
	Truncated bool       `json:"truncated"`
}

// SyncPreview lists what a wholesale replace would do without applying it.
type SyncPreview struct {
	Entity    EntityKind `json:"entity"`
	Incoming  int        `json:"incoming"`
	Local     int        `json:"local"`
	LocalOnly []string   `json:"localOnly"`
	Truncated bool       `json:"truncated"`
}
