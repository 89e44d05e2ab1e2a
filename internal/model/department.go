package model

type Department struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	ManagerID   string `json:"managerId,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// DepartmentResolution is the outcome of looking up a department reference
// that may hold either an id or a name.
type DepartmentResolution struct {
	Department Department `json:"department"`
	Found      bool       `json:"found"`
	MatchedBy  string     `json:"matchedBy,omitempty"` // "id" or "name"
}
