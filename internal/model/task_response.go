package model

// TaskResponse is a task as returned by the API, with the fields the matrix
// view derives at read time.
type TaskResponse struct {
	Task
	Overdue bool     `json:"overdue"`
	Actions []Action `json:"actions"`
}
