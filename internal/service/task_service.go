package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/store"
	"github.com/roksva123/go-matrix-tasks/internal/timefmt"
)

// Webhook actions sent after local task edits.
const (
	ActionCreateTask       = "create_task"
	ActionUpdateTask       = "update_task"
	ActionUpdateTaskStatus = "update_task_status"
	ActionDeleteTask       = "delete_task"
)

type TaskInput struct {
	Title      string         `json:"title"`
	Quadrant   model.Quadrant `json:"quadrant"`
	AssigneeID string         `json:"assigneeId"`
	StartTime  string         `json:"startTime"`
	EndTime    string         `json:"endTime"`
}

// TaskPatch changes only the non-nil fields.
type TaskPatch struct {
	Title      *string         `json:"title"`
	Quadrant   *model.Quadrant `json:"quadrant"`
	AssigneeID *string         `json:"assigneeId"`
	StartTime  *string         `json:"startTime"`
	EndTime    *string         `json:"endTime"`
}

type TaskFilter struct {
	Quadrant model.Quadrant `form:"quadrant"`
	Status   model.Status   `form:"status"`
	Today    bool           `form:"today"`
	Overdue  bool           `form:"overdue"`
}

// Celebration is published when a task is completed.
type Celebration struct {
	TaskID   string  `json:"taskId"`
	Title    string  `json:"title"`
	SoundURL string  `json:"soundUrl"`
	Volume   float64 `json:"volume"`
}

type TaskService struct {
	Store       *store.Store
	Departments *DepartmentService
	Notifier    Notifier
	Endpoints   *Endpoints
	Location    *time.Location
	Logger      *zap.Logger
	Now         func() time.Time
}

func NewTaskService(st *store.Store, deps *DepartmentService, notifier Notifier, endpoints *Endpoints, loc *time.Location, logger *zap.Logger) *TaskService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		Store:       st,
		Departments: deps,
		Notifier:    notifier,
		Endpoints:   endpoints,
		Location:    loc,
		Logger:      logger,
		Now:         time.Now,
	}
}

func (s *TaskService) now() time.Time {
	if s.Now == nil {
		return time.Now().In(s.Location)
	}
	return s.Now().In(s.Location)
}

// LocalNow is the current time in the service's location.
func (s *TaskService) LocalNow() time.Time {
	return s.now()
}

func (s *TaskService) validTimes(start, end string) error {
	now := s.now()
	for _, v := range []string{start, end} {
		if v == "" {
			continue
		}
		if _, err := timefmt.Parse(v, now); err != nil {
			return invalidInput("time %q must look like HH:mm DD/MM", v)
		}
	}
	return nil
}

func (s *TaskService) Create(ctx context.Context, actor model.User, in TaskInput) (model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Task{}, invalidInput("title is required")
	}
	q := in.Quadrant
	if q == "" {
		q = model.Q4
	}
	if !q.Valid() {
		return model.Task{}, invalidInput("unknown quadrant %q", in.Quadrant)
	}
	if err := s.validTimes(in.StartTime, in.EndTime); err != nil {
		return model.Task{}, err
	}

	now := s.now()
	iso := timefmt.ISO(now)
	t := model.Task{
		ID:               uuid.NewString(),
		Title:            title,
		InitialQuadrant:  q,
		Quadrant:         q,
		Status:           model.StatusPending,
		CreatedAt:        iso,
		CreatedAtDisplay: timefmt.Format(now),
		UpdatedAt:        iso,
		StartTime:        in.StartTime,
		EndTime:          in.EndTime,
		CreatedByID:      actor.ID,
		CreatedByLabel:   actor.DisplayName(),
		Logs:             []string{},
	}
	if in.AssigneeID != "" {
		member, ok := s.Store.StaffMember(in.AssigneeID)
		if !ok {
			return model.Task{}, invalidInput("unknown assignee %q", in.AssigneeID)
		}
		t.AssigneeID, t.AssigneeLabel = member.ID, member.DisplayName()
	} else {
		t.AssigneeID, t.AssigneeLabel = actor.ID, actor.DisplayName()
	}

	if err := s.Store.PutTask(ctx, t); err != nil {
		return model.Task{}, err
	}
	notifyWebhook(s.Notifier, s.Endpoints, model.EntityTasks, ActionCreateTask, actor, t)
	return t, nil
}

func (s *TaskService) get(actor model.User, id string) (model.Task, error) {
	t, ok := s.Store.Task(id)
	if !ok {
		return model.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if !s.visible(actor, t) {
		return model.Task{}, ErrForbidden
	}
	return t, nil
}

func (s *TaskService) Get(actor model.User, id string) (model.Task, error) {
	return s.get(actor, id)
}

func (s *TaskService) Update(ctx context.Context, actor model.User, id string, p TaskPatch) (model.Task, error) {
	if _, err := s.get(actor, id); err != nil {
		return model.Task{}, err
	}
	var assignee model.StaffMember
	if p.AssigneeID != nil && *p.AssigneeID != "" {
		m, ok := s.Store.StaffMember(*p.AssigneeID)
		if !ok {
			return model.Task{}, invalidInput("unknown assignee %q", *p.AssigneeID)
		}
		assignee = m
	}
	if p.Quadrant != nil && !p.Quadrant.Valid() {
		return model.Task{}, invalidInput("unknown quadrant %q", *p.Quadrant)
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return model.Task{}, invalidInput("title is required")
	}
	var start, end string
	if p.StartTime != nil {
		start = *p.StartTime
	}
	if p.EndTime != nil {
		end = *p.EndTime
	}
	if err := s.validTimes(start, end); err != nil {
		return model.Task{}, err
	}

	now := s.now()
	updated, err := s.Store.UpdateTask(ctx, id, func(t *model.Task) error {
		if p.Title != nil {
			t.Title = strings.TrimSpace(*p.Title)
		}
		if p.Quadrant != nil {
			t.Quadrant = *p.Quadrant
		}
		if p.AssigneeID != nil {
			t.AssigneeID, t.AssigneeLabel = assignee.ID, assignee.DisplayName()
		}
		if p.StartTime != nil {
			t.StartTime = *p.StartTime
		}
		if p.EndTime != nil {
			t.EndTime = *p.EndTime
		}
		t.UpdatedAt = timefmt.ISO(now)
		return nil
	})
	if err != nil {
		return model.Task{}, s.mapStoreErr(id, err)
	}
	notifyWebhook(s.Notifier, s.Endpoints, model.EntityTasks, ActionUpdateTask, actor, updated)
	return updated, nil
}

// Actions lists what actor may do with the task right now.
func (s *TaskService) Actions(actor model.User, id string) ([]model.Action, error) {
	t, err := s.get(actor, id)
	if err != nil {
		return nil, err
	}
	return model.AvailableActions(t.Status), nil
}

// Transition applies a user action, appends a history line and stamps
// updatedAt. Completing a task publishes a celebration event.
func (s *TaskService) Transition(ctx context.Context, actor model.User, id string, action model.Action) (model.Task, error) {
	if _, err := s.get(actor, id); err != nil {
		return model.Task{}, err
	}
	now := s.now()
	updated, err := s.Store.UpdateTask(ctx, id, func(t *model.Task) error {
		next, err := model.ApplyAction(t.Status, action)
		if err != nil {
			return err
		}
		t.Logs = append(t.Logs, fmt.Sprintf("%s %s: %s → %s", timefmt.Format(now), actor.DisplayName(), t.Status, next))
		t.Status = next
		t.UnknownStatus = false
		t.UpdatedAt = timefmt.ISO(now)
		return nil
	})
	if err != nil {
		return model.Task{}, s.mapStoreErr(id, err)
	}

	if updated.Status == model.StatusDone {
		settings := s.Store.Settings()
		s.Store.Publish(store.TopicCelebration, Celebration{
			TaskID:   updated.ID,
			Title:    updated.Title,
			SoundURL: settings.SoundURL,
			Volume:   settings.Volume,
		})
	}
	notifyWebhook(s.Notifier, s.Endpoints, model.EntityTasks, ActionUpdateTaskStatus, actor, map[string]any{
		"id":     updated.ID,
		"status": updated.Status,
		"action": action,
	})
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, actor model.User, id string, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	if _, err := s.get(actor, id); err != nil {
		return err
	}
	if err := s.Store.DeleteTask(ctx, id); err != nil {
		return s.mapStoreErr(id, err)
	}
	notifyWebhook(s.Notifier, s.Endpoints, model.EntityTasks, ActionDeleteTask, actor, map[string]string{"id": id})
	return nil
}

func (s *TaskService) mapStoreErr(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return err
}

// List returns the tasks actor's role may see, narrowed by f.
func (s *TaskService) List(actor model.User, f TaskFilter) []model.Task {
	now := s.now()
	out := []model.Task{}
	for _, t := range s.Store.Tasks() {
		if !s.visible(actor, t) || !matches(t, f, now) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matches(t model.Task, f TaskFilter, now time.Time) bool {
	if f.Quadrant != "" && t.Quadrant != f.Quadrant {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Today && !isToday(t, now) {
		return false
	}
	if f.Overdue && !timefmt.IsOverdue(t.EndTime, t.Status.Closed(), now) {
		return false
	}
	return true
}

// isToday uses the start time, then the end time, then the creation display.
func isToday(t model.Task, now time.Time) bool {
	for _, v := range []string{t.StartTime, t.EndTime, t.CreatedAtDisplay} {
		if v != "" {
			return timefmt.IsToday(v, now)
		}
	}
	return false
}

// visible applies the role views: admins see everything, managers see their
// department, staff see tasks they created or are assigned to.
func (s *TaskService) visible(actor model.User, t model.Task) bool {
	switch actor.Role {
	case model.RoleAdmin:
		return true
	case model.RoleManager:
		if owns(actor, t) {
			return true
		}
		return s.inDepartment(actor, t)
	default:
		return owns(actor, t)
	}
}

// owns matches by id, falling back to the display label for tasks whose
// references came from a sync and point at unknown ids.
func owns(actor model.User, t model.Task) bool {
	if actor.ID != "" && (t.AssigneeID == actor.ID || t.CreatedByID == actor.ID) {
		return true
	}
	for _, lbl := range []string{t.AssigneeLabel, t.CreatedByLabel} {
		if lbl == "" {
			continue
		}
		if strings.EqualFold(lbl, actor.FullName) || strings.EqualFold(lbl, actor.Username) {
			return true
		}
	}
	return false
}

func (s *TaskService) inDepartment(actor model.User, t model.Task) bool {
	if actor.Department == "" {
		return false
	}
	member, ok := s.findStaff(t.AssigneeID, t.AssigneeLabel)
	if !ok {
		return false
	}
	if s.Departments == nil {
		return member.Department == actor.Department
	}
	return s.Departments.SameDepartment(member.Department, actor.Department)
}

func (s *TaskService) findStaff(id, label string) (model.StaffMember, bool) {
	staff := s.Store.Staff()
	if id != "" {
		for _, m := range staff {
			if m.ID == id {
				return m, true
			}
		}
	}
	if label != "" {
		for _, m := range staff {
			if strings.EqualFold(m.DisplayName(), label) || strings.EqualFold(m.Username, label) {
				return m, true
			}
		}
	}
	return model.StaffMember{}, false
}
