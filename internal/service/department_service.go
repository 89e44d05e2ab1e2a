package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/store"
	"github.com/roksva123/go-matrix-tasks/internal/timefmt"
)

const (
	ActionCreateDepartment = "create_department"
	ActionUpdateDepartment = "update_department"
	ActionDeleteDepartment = "delete_department"
)

type DepartmentInput struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	ManagerID   string `json:"managerId"`
}

type DepartmentService struct {
	Store     *store.Store
	Notifier  Notifier
	Endpoints *Endpoints
}

func NewDepartmentService(st *store.Store, notifier Notifier, endpoints *Endpoints) *DepartmentService {
	return &DepartmentService{Store: st, Notifier: notifier, Endpoints: endpoints}
}

func (s *DepartmentService) List() []model.Department {
	return s.Store.Departments()
}

// Resolve looks a department reference up by id, then by name. Staff records
// carry either form.
func (s *DepartmentService) Resolve(ref string) model.DepartmentResolution {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.DepartmentResolution{}
	}
	d, by, ok := s.Store.DepartmentByRef(ref)
	if !ok {
		return model.DepartmentResolution{}
	}
	return model.DepartmentResolution{Department: d, Found: true, MatchedBy: by}
}

// SameDepartment reports whether two references name the same department.
// Unresolvable references compare as trimmed strings.
func (s *DepartmentService) SameDepartment(a, b string) bool {
	ra, rb := s.Resolve(a), s.Resolve(b)
	if ra.Found && rb.Found {
		return ra.Department.ID == rb.Department.ID
	}
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

func (s *DepartmentService) Create(ctx context.Context, actor model.User, in DepartmentInput) (model.Department, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Department{}, invalidInput("department name is required")
	}
	for _, d := range s.Store.Departments() {
		if strings.EqualFold(d.Name, name) {
			return model.Department{}, invalidInput("department %q already exists", name)
		}
	}
	d, err := s.Store.PutDepartment(ctx, model.Department{
		Name:        name,
		Code:        strings.TrimSpace(in.Code),
		Description: strings.TrimSpace(in.Description),
		ManagerID:   in.ManagerID,
		CreatedAt:   timefmt.ISO(time.Now()),
	})
	if err != nil {
		return model.Department{}, err
	}
	notifyWebhook(s.Notifier, s.Endpoints, model.EntityDepartments, ActionCreateDepartment, actor, d)
	return d, nil
}

func (s *DepartmentService) Update(ctx context.Context, actor model.User, id int64, in DepartmentInput) (model.Department, error) {
	var current model.Department
	found := false
	for _, d := range s.Store.Departments() {
		if d.ID == id {
			current, found = d, true
			break
		}
	}
	if !found {
		return model.Department{}, fmt.Errorf("department %d: %w", id, ErrNotFound)
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		current.Name = name
	}
	if in.Code != "" {
		current.Code = strings.TrimSpace(in.Code)
	}
	if in.Description != "" {
		current.Description = strings.TrimSpace(in.Description)
	}
	if in.ManagerID != "" {
		current.ManagerID = in.ManagerID
	}
	d, err := s.Store.PutDepartment(ctx, current)
	if err != nil {
		return model.Department{}, err
	}
	notifyWebhook(s.Notifier, s.Endpoints, model.EntityDepartments, ActionUpdateDepartment, actor, d)
	return d, nil
}

func (s *DepartmentService) Delete(ctx context.Context, actor model.User, id int64, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	if err := s.Store.DeleteDepartment(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("department %d: %w", id, ErrNotFound)
		}
		return err
	}
	notifyWebhook(s.Notifier, s.Endpoints, model.EntityDepartments, ActionDeleteDepartment, actor, map[string]int64{"id": id})
	return nil
}
