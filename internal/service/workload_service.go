package service

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/timefmt"
)

// WorkloadService aggregates the tasks created during an evaluation period per
// staff member, next to the evaluation tag given for that period.
type WorkloadService struct {
	Tasks       *TaskService
	Departments *DepartmentService
}

func NewWorkloadService(tasks *TaskService, deps *DepartmentService) *WorkloadService {
	return &WorkloadService{Tasks: tasks, Departments: deps}
}

// Summary covers the members actor may see: everyone for admins, the own
// department for managers, only themselves for staff.
func (s *WorkloadService) Summary(actor model.User, period int) (model.WorkloadResponse, error) {
	if !model.ValidPeriod(period) {
		return model.WorkloadResponse{}, model.ErrInvalidPeriod
	}
	now := s.Tasks.now()
	since := now.AddDate(0, 0, -period)
	st := s.Tasks.Store
	evals := st.Evaluations(period)

	users := map[string]*model.WorkloadUser{}
	var order []string
	for _, m := range st.Staff() {
		if !s.memberVisible(actor, m) {
			continue
		}
		users[m.ID] = &model.WorkloadUser{
			UserID:     m.ID,
			Username:   m.Username,
			FullName:   m.FullName,
			Role:       m.Role,
			Department: m.Department,
			ByStatus:   map[model.Status]int{},
			ByQuadrant: map[model.Quadrant]int{},
			Evaluation: evals[m.ID].Tag(),
		}
		order = append(order, m.ID)
	}

	resp := model.WorkloadResponse{Period: period, Since: timefmt.ISO(since), Users: []model.WorkloadUser{}}
	for _, t := range s.Tasks.List(actor, TaskFilter{}) {
		if created, err := time.Parse(time.RFC3339Nano, t.CreatedAt); err == nil && created.Before(since) {
			continue
		}
		member, ok := s.Tasks.findStaff(t.AssigneeID, t.AssigneeLabel)
		u := users[member.ID]
		if !ok || u == nil {
			resp.Unassigned++
			continue
		}
		u.TaskCount++
		u.ByStatus[t.Status]++
		u.ByQuadrant[t.Quadrant]++
		if timefmt.IsOverdue(t.EndTime, t.Status.Closed(), now) {
			u.Overdue++
		}
		resp.Summary.TotalTasks++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return strings.ToLower(users[order[i]].Username) < strings.ToLower(users[order[j]].Username)
	})
	for _, id := range order {
		resp.Users = append(resp.Users, *users[id])
	}
	resp.Summary.TotalUsers = len(resp.Users)
	if resp.Summary.TotalUsers > 0 {
		avg := float64(resp.Summary.TotalTasks) / float64(resp.Summary.TotalUsers)
		resp.Summary.AvgTasks = math.Round(avg*100) / 100
	}
	return resp, nil
}

func (s *WorkloadService) memberVisible(actor model.User, m model.StaffMember) bool {
	switch actor.Role {
	case model.RoleAdmin:
		return true
	case model.RoleManager:
		return m.ID == actor.ID || s.Departments.SameDepartment(m.Department, actor.Department)
	default:
		return m.ID == actor.ID
	}
}
