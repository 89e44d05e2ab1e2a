package utils

import (
	"time"

	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/timefmt"
)

func ConvertTaskToResponse(t model.Task, now time.Time) model.TaskResponse {
	return model.TaskResponse{
		Task:    t,
		Overdue: timefmt.IsOverdue(t.EndTime, t.Status.Closed(), now),
		Actions: model.AvailableActions(t.Status),
	}
}

func ConvertTasksToResponse(tasks []model.Task, now time.Time) []model.TaskResponse {
	resp := make([]model.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, ConvertTaskToResponse(t, now))
	}
	return resp
}

// GroupByQuadrant buckets tasks for the four-quadrant board. Every quadrant is
// present, possibly empty.
func GroupByQuadrant(tasks []model.TaskResponse) map[model.Quadrant][]model.TaskResponse {
	out := make(map[model.Quadrant][]model.TaskResponse, len(model.Quadrants))
	for _, q := range model.Quadrants {
		out[q] = []model.TaskResponse{}
	}
	for _, t := range tasks {
		q := t.Quadrant
		if !q.Valid() {
			q = model.Q4
		}
		out[q] = append(out[q], t)
	}
	return out
}
