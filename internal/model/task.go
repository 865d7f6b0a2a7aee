package model

import "time"

const (
	TitleMinLength       = 3
	TitleMaxLength       = 100
	DescriptionMaxLength = 500
)

// Task is the domain model. ID and timestamps are assigned by the store.
type Task struct {
	ID          int64
	Title       string
	Description *string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewTask(title string, description *string) *Task {
	return &Task{
		Title:       title,
		Description: description,
		Completed:   false,
	}
}

// Replace overwrites every mutable field. A nil description clears the stored one.
func (t *Task) Replace(title string, description *string, completed bool) {
	t.Title = title
	t.Description = description
	t.Completed = completed
}

func (t *Task) Toggle() {
	t.Completed = !t.Completed
}

func (t *Task) IsNew() bool {
	return t.ID == 0
}

// Clone returns a deep copy so callers can't alias the description pointer.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	return &c
}

// Stats is the completion summary of all tasks.
type Stats struct {
	Completed int64
	Pending   int64
}

func (s Stats) Total() int64 {
	return s.Completed + s.Pending
}
