package service

import (
	"context"
	"fmt"

	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/store"
)

const ActionUpdateEvaluation = "update_evaluation"

type EvaluationService struct {
	Store       *store.Store
	Departments *DepartmentService
	Notifier    Notifier
	Endpoints   *Endpoints
}

func NewEvaluationService(st *store.Store, deps *DepartmentService, notifier Notifier, endpoints *Endpoints) *EvaluationService {
	return &EvaluationService{Store: st, Departments: deps, Notifier: notifier, Endpoints: endpoints}
}

func (s *EvaluationService) List(period int) (map[string]model.Evaluation, error) {
	if !model.ValidPeriod(period) {
		return nil, model.ErrInvalidPeriod
	}
	return s.Store.Evaluations(period), nil
}

// Set tags a member for a period. Managers may only tag members of their own
// department; admins anyone.
func (s *EvaluationService) Set(ctx context.Context, actor model.User, userID string, period int, tag model.EvaluationTag) (model.Evaluation, error) {
	if actor.Role != model.RoleAdmin && actor.Role != model.RoleManager {
		return model.Evaluation{}, ErrForbidden
	}
	if !model.ValidPeriod(period) {
		return model.Evaluation{}, model.ErrInvalidPeriod
	}
	member, ok := s.Store.StaffMember(userID)
	if !ok {
		return model.Evaluation{}, fmt.Errorf("staff %s: %w", userID, ErrNotFound)
	}
	if actor.Role == model.RoleManager && !s.Departments.SameDepartment(member.Department, actor.Department) {
		return model.Evaluation{}, ErrForbidden
	}

	e, err := model.Evaluation{UserID: userID, Period: period}.WithTag(tag)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.Store.PutEvaluation(ctx, e); err != nil {
		return model.Evaluation{}, err
	}
	notifyWebhook(s.Notifier, s.Endpoints, model.EntityStaff, ActionUpdateEvaluation, actor, e)
	return e, nil
}
