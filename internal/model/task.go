package model

import (
	"errors"
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusDoing     Status = "DOING"
	StatusDone      Status = "DONE"
	StatusCancelled Status = "CANCELLED"
)

// Known reports whether s is one of the four canonical statuses.
func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusDoing, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// Closed statuses never become overdue.
func (s Status) Closed() bool {
	return s == StatusDone || s == StatusCancelled
}

type Quadrant string

const (
	Q1 Quadrant = "Q1" // urgent + important
	Q2 Quadrant = "Q2" // important, not urgent
	Q3 Quadrant = "Q3" // urgent, not important
	Q4 Quadrant = "Q4" // neither
)

var Quadrants = []Quadrant{Q1, Q2, Q3, Q4}

func (q Quadrant) Valid() bool {
	switch q {
	case Q1, Q2, Q3, Q4:
		return true
	}
	return false
}

// ParseQuadrant accepts "Q1".."Q4" in any case and the bare digits "1".."4".
func ParseQuadrant(s string) (Quadrant, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) == 1 {
		s = "Q" + s
	}
	q := Quadrant(s)
	return q, q.Valid()
}

type Task struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	InitialQuadrant  Quadrant `json:"initialQuadrant"`
	Quadrant         Quadrant `json:"quadrant"`
	Status           Status   `json:"status"`
	UnknownStatus    bool     `json:"unknownStatus,omitempty"`
	CreatedAt        string   `json:"createdAt"`
	CreatedAtDisplay string   `json:"createdAtDisplay"`
	UpdatedAt        string   `json:"updatedAt"`
	StartTime        string   `json:"startTime,omitempty"`
	EndTime          string   `json:"endTime,omitempty"`
	CreatedByID      string   `json:"createdById,omitempty"`
	CreatedByLabel   string   `json:"createdByLabel,omitempty"`
	AssigneeID       string   `json:"assigneeId,omitempty"`
	AssigneeLabel    string   `json:"assigneeLabel,omitempty"`
	Logs             []string `json:"logs"`
}

// Clone returns a copy that shares no slices with t. Logs is never nil.
func (t Task) Clone() Task {
	t.Logs = append(make([]string, 0, len(t.Logs)), t.Logs...)
	return t
}

// Action is a user-driven status change offered by the UI.
type Action string

const (
	ActionStart  Action = "START"
	ActionDone   Action = "DONE"
	ActionCancel Action = "CANCEL"
	ActionRedo   Action = "REDO"
)

var ErrActionNotAllowed = errors.New("action not allowed for current status")

type transition struct {
	action Action
	to     Status
}

// transitions lists, in display order, what a user may do from each status.
var transitions = map[Status][]transition{
	StatusPending: {
		{ActionStart, StatusDoing},
		{ActionDone, StatusDone},
		{ActionCancel, StatusCancelled},
	},
	StatusDoing: {
		{ActionDone, StatusDone},
		{ActionCancel, StatusCancelled},
	},
	StatusDone: {
		{ActionRedo, StatusPending},
	},
	StatusCancelled: {
		{ActionDone, StatusDone},
		{ActionStart, StatusDoing},
		{ActionRedo, StatusPending},
	},
}

// AvailableActions returns the actions offered for status. Unknown statuses get none.
func AvailableActions(status Status) []Action {
	out := make([]Action, 0, len(transitions[status]))
	for _, tr := range transitions[status] {
		out = append(out, tr.action)
	}
	return out
}

// ApplyAction returns the status reached by performing action from status.
func ApplyAction(status Status, action Action) (Status, error) {
	for _, tr := range transitions[status] {
		if tr.action == action {
			return tr.to, nil
		}
	}
	return status, fmt.Errorf("%w: %s from %s", ErrActionNotAllowed, action, status)
}
