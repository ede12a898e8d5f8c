// Package models holds the client's view of API resources.
package models

import (
	"encoding/json"
	"strings"
	"time"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate it freely.
func (t *Task) Clone() *Task {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	return &c
}

// Draft is the edit form's content. An empty ID means a new task.
type Draft struct {
	ID          string
	Title       string
	Description string
}

// TrimmedTitle is the title as it will be sent.
func (d Draft) TrimmedTitle() string {
	return strings.TrimSpace(d.Title)
}

// DescriptionPtr maps an empty description to null.
func (d Draft) DescriptionPtr() *string {
	if strings.TrimSpace(d.Description) == "" {
		return nil
	}
	s := d.Description
	return &s
}

// TaskUpdate is the PUT body. Only supplied fields are sent; DescriptionSet
// distinguishes clearing the description (null) from leaving it alone.
type TaskUpdate struct {
	Title          *string
	Description    *string
	DescriptionSet bool
	Completed      *bool
}

func (u TaskUpdate) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, 3)
	if u.Title != nil {
		body["title"] = *u.Title
	}
	if u.DescriptionSet {
		body["description"] = u.Description
	}
	if u.Completed != nil {
		body["completed"] = *u.Completed
	}
	return json.Marshal(body)
}

// CompletedUpdate changes only the completed flag.
func CompletedUpdate(completed bool) TaskUpdate {
	return TaskUpdate{Completed: &completed}
}

// DraftUpdate sends every field the edit form owns.
func DraftUpdate(d Draft) TaskUpdate {
	title := d.TrimmedTitle()
	return TaskUpdate{Title: &title, Description: d.DescriptionPtr(), DescriptionSet: true}
}

type NewTask struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
