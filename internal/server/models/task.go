package models

import "time"

// Task belongs to exactly one user for its whole life.
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskPatch lists the fields supplied to a partial update. A nil pointer
// means "not supplied". DescriptionSet distinguishes an explicit null
// (clear the description) from an absent field.
type TaskPatch struct {
	Title          *string
	Description    *string
	DescriptionSet bool
	Completed      *bool
}

// Apply copies the supplied fields onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.DescriptionSet {
		t.Description = p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
