package store

import (
	"context"
	"strconv"
	"strings"

	"github.com/roksva123/go-matrix-tasks/internal/model"
)

func cloneTasks(in []model.Task) []model.Task {
	out := make([]model.Task, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(s.st.tasks)
}

func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.st.tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return model.Task{}, false
}

// ReplaceTasks swaps the whole collection. Nothing is merged.
func (s *Store) ReplaceTasks(ctx context.Context, tasks []model.Task) error {
	next := cloneTasks(tasks)
	s.mu.Lock()
	err := s.persist(ctx, KeyTasks, next)
	if err == nil {
		s.st.tasks = next
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Publish(TopicTasks, nil)
	return nil
}

// PutTask updates the task with the same id, or inserts t at the front.
func (s *Store) PutTask(ctx context.Context, t model.Task) error {
	s.mu.Lock()
	next := cloneTasks(s.st.tasks)
	replaced := false
	for i := range next {
		if next[i].ID == t.ID {
			next[i] = t.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		next = append([]model.Task{t.Clone()}, next...)
	}
	err := s.persist(ctx, KeyTasks, next)
	if err == nil {
		s.st.tasks = next
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Publish(TopicTasks, nil)
	return nil
}

// UpdateTask applies fn to a copy of the task and stores the result. fn runs
// under the write lock and must not call back into the store.
func (s *Store) UpdateTask(ctx context.Context, id string, fn func(*model.Task) error) (model.Task, error) {
	s.mu.Lock()
	idx := -1
	for i, t := range s.st.tasks {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return model.Task{}, ErrNotFound
	}
	updated := s.st.tasks[idx].Clone()
	if err := fn(&updated); err != nil {
		s.mu.Unlock()
		return model.Task{}, err
	}
	next := cloneTasks(s.st.tasks)
	next[idx] = updated
	err := s.persist(ctx, KeyTasks, next)
	if err == nil {
		s.st.tasks = next
	}
	s.mu.Unlock()
	if err != nil {
		return model.Task{}, err
	}
	s.Publish(TopicTasks, nil)
	return updated.Clone(), nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	next := make([]model.Task, 0, len(s.st.tasks))
	for _, t := range s.st.tasks {
		if t.ID != id {
			next = append(next, t)
		}
	}
	if len(next) == len(s.st.tasks) {
		s.mu.Unlock()
		return ErrNotFound
	}
	err := s.persist(ctx, KeyTasks, next)
	if err == nil {
		s.st.tasks = next
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Publish(TopicTasks, nil)
	return nil
}

func (s *Store) Staff() []model.StaffMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.StaffMember(nil), s.st.staff...)
}

func (s *Store) StaffMember(id string) (model.StaffMember, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.st.staff {
		if m.ID == id {
			return m, true
		}
	}
	return model.StaffMember{}, false
}

func (s *Store) ReplaceStaff(ctx context.Context, staff []model.StaffMember) error {
	next := append([]model.StaffMember{}, staff...)
	s.mu.Lock()
	err := s.persist(ctx, KeyStaff, next)
	if err == nil {
		s.st.staff = next
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Publish(TopicStaff, nil)
	return nil
}

// PutStaff updates the member with the same id or appends it.
func (s *Store) PutStaff(ctx context.Context, m model.StaffMember) error {
	s.mu.Lock()
	next := append([]model.StaffMember{}, s.st.staff...)
	replaced := false
	for i := range next {
		if next[i].ID == m.ID {
			next[i] = m
			replaced = true
			break
		}
	}
	if !replaced {
		next = append(next, m)
	}
	err := s.persist(ctx, KeyStaff, next)
	if err == nil {
		s.st.staff = next
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Publish(TopicStaff, nil)
	return nil
}

func (s *Store) DeleteStaff(ctx context.Context, id string) error {
	s.mu.Lock()
	next := make([]model.StaffMember, 0, len(s.st.staff))
	for _, m := range s.st.staff {
		if m.ID != id {
			next = append(next, m)
		}
	}
	if len(next) == len(s.st.staff) {
		s.mu.Unlock()
		return ErrNotFound
	}
	err := s.persist(ctx, KeyStaff, next)
	if err == nil {
		s.st.staff = next
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Publish(TopicStaff, nil)
	return nil
}

func (s *Store) Departments() []model.Department {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Department(nil), s.st.departments...)
}

func (s *Store) ReplaceDepartments(ctx context.Context, deps []model.Department) error {
	next := append([]model.Department{}, deps...)
	s.mu.Lock()
	err := s.persist(ctx, KeyDepartments, next)
	if err == nil {
		s.st.departments = next
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Publish(TopicDepartments, nil)
	return nil
}

// NextDepartmentID is one more than the largest stored id.
func (s *Store) NextDepartmentID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nextDepartmentID(s.st.departments)
}

func nextDepartmentID(deps []model.Department) int64 {
	var max int64
	for _, d := range deps {
		if d.ID > max {
			max = d.ID
		}
	}
	return max + 1
}

// PutDepartment updates the department with the same id or appends it. A
// zero id is allocated as NextDepartmentID under the same lock.
func (s *Store) PutDepartment(ctx context.Context, d model.Department) (model.Department, error) {
	s.mu.Lock()
	if d.ID == 0 {
		d.ID = nextDepartmentID(s.st.departments)
	}
	next := append([]model.Department{}, s.st.departments...)
	replaced := false
	for i := range next {
		if next[i].ID == d.ID {
			next[i] = d
			replaced = true
			break
		}
	}
	if !replaced {
		next = append(next, d)
	}
	err := s.persist(ctx, KeyDepartments, next)
	if err == nil {
		s.st.departments = next
	}
	s.mu.Unlock()
	if err != nil {
		return model.Department{}, err
	}
	s.Publish(TopicDepartments, nil)
	return d, nil
}

func (s *Store) DeleteDepartment(ctx context.Context, id int64) error {
	s.mu.Lock()
	next := make([]model.Department, 0, len(s.st.departments))
	for _, d := range s.st.departments {
		if d.ID != id {
			next = append(next, d)
		}
	}
	if len(next) == len(s.st.departments) {
		s.mu.Unlock()
		return ErrNotFound
	}
	err := s.persist(ctx, KeyDepartments, next)
	if err == nil {
		s.st.departments = next
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Publish(TopicDepartments, nil)
	return nil
}

// DepartmentByRef looks a reference up by id first, then by exact name.
func (s *Store) DepartmentByRef(ref string) (model.Department, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, d := range s.st.departments {
			if d.ID == id {
				return d, "id", true
			}
		}
	}
	for _, d := range s.st.departments {
		if strings.EqualFold(strings.TrimSpace(d.Name), ref) {
			return d, "name", true
		}
	}
	return model.Department{}, "", false
}
