// Package normalize maps the loosely typed records returned by the webhook onto
// the canonical local model.
package normalize

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/timefmt"
)

var (
	ErrMissingID     = errors.New("record has no id")
	ErrUnknownStatus = errors.New("unknown task status")
	ErrEmptyRecord   = errors.New("record has neither id nor name")
)

// UnknownStatusPolicy decides what happens to a task whose status matches no
// known alias.
type UnknownStatusPolicy string

const (
	// AcceptUnknown keeps the raw value and flags the task.
	AcceptUnknown UnknownStatusPolicy = "accept"
	// RejectUnknown drops the record.
	RejectUnknown UnknownStatusPolicy = "reject"
)

type Normalizer struct {
	UnknownStatus UnknownStatusPolicy
	Location      *time.Location
	Now           func() time.Time
}

func New(policy UnknownStatusPolicy, loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	if policy != RejectUnknown {
		policy = AcceptUnknown
	}
	return &Normalizer{UnknownStatus: policy, Location: loc, Now: time.Now}
}

func (n *Normalizer) now() time.Time {
	if n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

func (n *Normalizer) loc() *time.Location {
	if n.Location == nil {
		return time.Local
	}
	return n.Location
}

// Status canonicalises a remote status value. A missing status is PENDING.
// Unknown values come back unchanged with ok=false.
func Status(raw any) (model.Status, bool) {
	if m, isMap := raw.(map[string]any); isMap {
		raw = first(m, "status", "name", "value")
	}
	s := strings.TrimSpace(cast.ToString(raw))
	switch strings.ToUpper(s) {
	case "":
		return model.StatusPending, true
	case "IN_PROGRESS", "DOING":
		return model.StatusDoing, true
	case "PENDING":
		return model.StatusPending, true
	case "DONE":
		return model.StatusDone, true
	case "CANCELLED", "CANCEL":
		return model.StatusCancelled, true
	}
	return model.Status(s), false
}

// Date turns an epoch (seconds or milliseconds), an ISO string, or an object
// wrapping one of those into an ISO-8601 instant. Anything else is now.
func Date(v any, now time.Time) string {
	if t, ok := parseDate(v); ok {
		return timefmt.ISO(t)
	}
	return timefmt.ISO(now)
}

const secondsCutoff = 10_000_000_000

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000Z",
	"2006-01-02",
}

func parseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case map[string]any:
		return parseDate(first(t, "$date", "date", "value", "iso", "dateTime"))
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		if isDigits(s) {
			if len(s) < 10 || len(s) > 13 {
				return time.Time{}, false
			}
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return time.Time{}, false
			}
			return epoch(n)
		}
		for _, layout := range isoLayouts {
			if tt, err := time.Parse(layout, s); err == nil {
				return tt, true
			}
		}
		return time.Time{}, false
	case float64, float32, int, int32, int64, uint, uint32, uint64, json.Number:
		n, err := cast.ToInt64E(t)
		if err != nil {
			return time.Time{}, false
		}
		return epoch(n)
	}
	return time.Time{}, false
}

// epoch accepts 10 to 13 digit values only, read as seconds or milliseconds.
func epoch(n int64) (time.Time, bool) {
	if n <= 0 {
		return time.Time{}, false
	}
	if d := len(strconv.FormatInt(n, 10)); d < 10 || d > 13 {
		return time.Time{}, false
	}
	if n < secondsCutoff {
		n *= 1000
	}
	return time.UnixMilli(n), true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Task maps a task-like record. ErrUnknownStatus is only returned under
// RejectUnknown.
func (n *Normalizer) Task(m map[string]any) (model.Task, error) {
	now := n.now()
	id := idString(m["id"])
	if id == "" {
		return model.Task{}, ErrMissingID
	}

	status, known := Status(m["status"])
	if !known && n.UnknownStatus == RejectUnknown {
		return model.Task{}, ErrUnknownStatus
	}

	quadrant, ok := parseQuadrant(first(m, "quadrant", "currentQuadrant", "current_quadrant"))
	if !ok {
		quadrant = model.Q4
	}
	initial, ok := parseQuadrant(first(m, "initialQuadrant", "initial_quadrant", "originalQuadrant"))
	if !ok {
		initial = quadrant
	}

	createdAt := Date(first(m, "createdAt", "created_at", "date_created", "createdDate", "timestamp"), now)
	updatedRaw := first(m, "updatedAt", "updated_at", "date_updated")
	updatedAt := createdAt
	if updatedRaw != nil {
		updatedAt = Date(updatedRaw, now)
	}

	createdByID, createdByLabel := person(m, "createdBy", "created_by")
	if v := str(first(m, "createdById", "created_by_id", "creatorId")); v != "" {
		createdByID = v
	}
	if v := str(first(m, "createdByLabel", "createdByName", "created_by_name", "creatorName")); v != "" {
		createdByLabel = v
	}

	assigneeID, assigneeLabel := person(m, "assignee", "assignedTo")
	if arr, ok := m["assignees"].([]any); ok && len(arr) > 0 && assigneeID == "" {
		if a, ok := arr[0].(map[string]any); ok {
			assigneeID, assigneeLabel = idString(a["id"]), label(a)
		}
	}
	if v := str(first(m, "assigneeId", "assignee_id", "assignedToId")); v != "" {
		assigneeID = v
	}
	if v := str(first(m, "assigneeLabel", "assigneeName", "assignee_name")); v != "" {
		assigneeLabel = v
	}

	return model.Task{
		ID:               id,
		Title:            str(first(m, "title", "name", "taskName", "task_name", "content")),
		InitialQuadrant:  initial,
		Quadrant:         quadrant,
		Status:           status,
		UnknownStatus:    !known,
		CreatedAt:        createdAt,
		CreatedAtDisplay: timefmt.DisplayFromISO(createdAt, n.loc()),
		UpdatedAt:        updatedAt,
		StartTime:        n.compact(first(m, "startTime", "start_time", "start_date"), now),
		EndTime:          n.compact(first(m, "endTime", "end_time", "due_date", "deadline"), now),
		CreatedByID:      createdByID,
		CreatedByLabel:   createdByLabel,
		AssigneeID:       assigneeID,
		AssigneeLabel:    assigneeLabel,
		Logs:             logs(m["logs"]),
	}, nil
}

// Staff maps a staff-like record. The id falls back to the username.
func (n *Normalizer) Staff(m map[string]any) (model.StaffMember, error) {
	username := str(m["username"])
	id := idString(m["id"])
	if id == "" {
		id = username
	}
	if id == "" {
		return model.StaffMember{}, ErrMissingID
	}

	member := model.StaffMember{
		ID:         id,
		FullName:   str(first(m, "fullName", "full_name", "fullname", "name", "displayName")),
		Username:   username,
		Password:   str(m["password"]),
		Role:       model.ParseRole(str(m["role"])),
		Email:      str(m["email"]),
		Phone:      str(first(m, "phone", "phoneNumber", "phone_number")),
		Active:     active(m),
		Department: department(m),
	}
	if jd := first(m, "joinDate", "join_date", "joinedAt"); jd != nil {
		member.JoinDate = Date(jd, n.now())
	}
	return member, nil
}

// Department maps a department record. A missing or non-numeric id is left as
// zero for the caller to allocate.
func (n *Normalizer) Department(m map[string]any) (model.Department, error) {
	id, _ := cast.ToInt64E(m["id"])
	name := str(first(m, "name", "departmentName", "department_name", "title"))
	if id == 0 && name == "" {
		return model.Department{}, ErrEmptyRecord
	}
	managerID := str(first(m, "managerId", "manager_id"))
	if mgr, ok := m["manager"].(map[string]any); ok && managerID == "" {
		managerID = idString(mgr["id"])
	}
	return model.Department{
		ID:          id,
		Name:        name,
		Code:        str(first(m, "code", "departmentCode")),
		Description: str(first(m, "description", "desc")),
		ManagerID:   managerID,
		CreatedAt:   Date(first(m, "createdAt", "created_at"), n.now()),
	}, nil
}

// compact keeps values already in "HH:mm DD/MM" form and converts any other
// date encoding to it.
func (n *Normalizer) compact(v any, now time.Time) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return ""
		}
		if _, err := timefmt.Parse(s, now.In(n.loc())); err == nil {
			return s
		}
	}
	t, ok := parseDate(v)
	if !ok {
		return ""
	}
	return timefmt.Format(t.In(n.loc()))
}

func parseQuadrant(v any) (model.Quadrant, bool) {
	if v == nil {
		return "", false
	}
	return model.ParseQuadrant(cast.ToString(v))
}

// person reads a nested {id, name} object or a plain label string.
func person(m map[string]any, keys ...string) (id, lbl string) {
	switch p := first(m, keys...).(type) {
	case map[string]any:
		return idString(p["id"]), label(p)
	case string:
		return "", strings.TrimSpace(p)
	case float64:
		return idString(p), ""
	}
	return "", ""
}

func label(m map[string]any) string {
	return str(first(m, "fullName", "full_name", "name", "username", "email"))
}

func department(m map[string]any) string {
	switch d := first(m, "department", "departmentId", "department_id", "departmentName").(type) {
	case map[string]any:
		if id := idString(d["id"]); id != "" {
			return id
		}
		return str(d["name"])
	case nil:
		return ""
	default:
		return idString(d)
	}
}

func active(m map[string]any) bool {
	v := first(m, "active", "isActive", "is_active")
	if v == nil {
		if s := strings.ToLower(str(m["status"])); s != "" {
			return s != "inactive" && s != "disabled" && s != "locked"
		}
		return true
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return true
	}
	return b
}

func logs(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, el := range t {
			if s := str(el); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if strings.TrimSpace(t) != "" {
			return []string{t}
		}
	}
	return []string{}
}

// first returns the first non-nil value among keys.
func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func str(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

// idString renders numeric ids without a fractional part.
func idString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
	}
	return str(v)
}
