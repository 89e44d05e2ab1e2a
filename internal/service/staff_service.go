package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/store"
	"github.com/roksva123/go-matrix-tasks/internal/timefmt"
)

const (
	ActionCreateStaff = "create_staff"
	ActionUpdateStaff = "update_staff"
	ActionDeleteStaff = "delete_staff"
)

type StaffInput struct {
	FullName   string     `json:"fullName"`
	Username   string     `json:"username"`
	Password   string     `json:"password"`
	Role       model.Role `json:"role"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Active     *bool      `json:"active"`
	Department string     `json:"department"`
}

type StaffService struct {
	Store       *store.Store
	Departments *DepartmentService
	Notifier    Notifier
	Endpoints   *Endpoints
}

func NewStaffService(st *store.Store, deps *DepartmentService, notifier Notifier, endpoints *Endpoints) *StaffService {
	return &StaffService{Store: st, Departments: deps, Notifier: notifier, Endpoints: endpoints}
}

// List returns the roster without passwords.
func (s *StaffService) List() []model.StaffMember {
	staff := s.Store.Staff()
	for i := range staff {
		staff[i].Password = ""
	}
	return staff
}

// FindByUsername matches case-insensitively.
func (s *StaffService) FindByUsername(username string) (model.StaffMember, bool) {
	return findByUsername(s.Store.Staff(), username)
}

func findByUsername(staff []model.StaffMember, username string) (model.StaffMember, bool) {
	username = strings.TrimSpace(username)
	for _, m := range staff {
		if strings.EqualFold(m.Username, username) {
			return m, true
		}
	}
	return model.StaffMember{}, false
}

func (s *StaffService) ResolveDepartment(m model.StaffMember) model.DepartmentResolution {
	return s.Departments.Resolve(m.Department)
}

func (s *StaffService) Create(ctx context.Context, actor model.User, in StaffInput) (model.StaffMember, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return model.StaffMember{}, invalidInput("username is required")
	}
	if _, exists := s.FindByUsername(username); exists {
		return model.StaffMember{}, ErrDuplicateUsername
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	m := model.StaffMember{
		ID:         uuid.NewString(),
		FullName:   strings.TrimSpace(in.FullName),
		Username:   username,
		Password:   in.Password,
		Role:       model.ParseRole(string(in.Role)),
		Email:      strings.TrimSpace(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		Active:     active,
		Department: strings.TrimSpace(in.Department),
		JoinDate:   timefmt.ISO(time.Now()),
	}
	if err := s.Store.PutStaff(ctx, m); err != nil {
		return model.StaffMember{}, err
	}
	notifyWebhook(s.Notifier, s.Endpoints, model.EntityStaff, ActionCreateStaff, actor, m)
	m.Password = ""
	return m, nil
}

func (s *StaffService) Update(ctx context.Context, actor model.User, id string, in StaffInput) (model.StaffMember, error) {
	m, ok := s.Store.StaffMember(id)
	if !ok {
		return model.StaffMember{}, fmt.Errorf("staff %s: %w", id, ErrNotFound)
	}
	if username := strings.TrimSpace(in.Username); username != "" && !strings.EqualFold(username, m.Username) {
		if _, exists := s.FindByUsername(username); exists {
			return model.StaffMember{}, ErrDuplicateUsername
		}
		m.Username = username
	}
	if in.FullName != "" {
		m.FullName = strings.TrimSpace(in.FullName)
	}
	if in.Password != "" {
		m.Password = in.Password
	}
	if in.Role != "" {
		m.Role = model.ParseRole(string(in.Role))
	}
	if in.Email != "" {
		m.Email = strings.TrimSpace(in.Email)
	}
	if in.Phone != "" {
		m.Phone = strings.TrimSpace(in.Phone)
	}
	if in.Active != nil {
		m.Active = *in.Active
	}
	if in.Department != "" {
		m.Department = strings.TrimSpace(in.Department)
	}
	if err := s.Store.PutStaff(ctx, m); err != nil {
		return model.StaffMember{}, err
	}
	notifyWebhook(s.Notifier, s.Endpoints, model.EntityStaff, ActionUpdateStaff, actor, m)
	m.Password = ""
	return m, nil
}

func (s *StaffService) Delete(ctx context.Context, actor model.User, id string, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	if err := s.Store.DeleteStaff(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("staff %s: %w", id, ErrNotFound)
		}
		return err
	}
	notifyWebhook(s.Notifier, s.Endpoints, model.EntityStaff, ActionDeleteStaff, actor, map[string]string{"id": id})
	return nil
}
