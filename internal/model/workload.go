package model

// WorkloadUser is one staff member's task load over an evaluation period.
type WorkloadUser struct {
	UserID     string           `json:"userId"`
	Username   string           `json:"username"`
	FullName   string           `json:"fullName"`
	Role       Role             `json:"role"`
	Department string           `json:"department,omitempty"`
	TaskCount  int              `json:"taskCount"`
	Overdue    int              `json:"overdue"`
	ByStatus   map[Status]int   `json:"byStatus"`
	ByQuadrant map[Quadrant]int `json:"byQuadrant"`
	Evaluation EvaluationTag    `json:"evaluation,omitempty"`
}

type WorkloadSummary struct {
	TotalUsers int     `json:"totalUsers"`
	TotalTasks int     `json:"totalTasks"`
	AvgTasks   float64 `json:"avgTasks"`
}

type WorkloadResponse struct {
	Period     int             `json:"period"`
	Since      string          `json:"since"`
	Summary    WorkloadSummary `json:"summary"`
	Users      []WorkloadUser  `json:"users"`
	Unassigned int             `json:"unassigned"`
}
