package dto

import "time"

// CreateTaskRequest is the body of POST /api/tasks. A completed flag sent by
// the client is ignored; new tasks always start pending.
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,notblank,min=3,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/{id}. Every field is replaced;
// an absent description clears the stored one.
type UpdateTaskRequest struct {
	Title       string  `json:"title" validate:"required,notblank,min=3,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Completed   *bool   `json:"completed" validate:"required"`
}

type TaskResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type StatsResponse struct {
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
	Total     int64 `json:"total"`
}
