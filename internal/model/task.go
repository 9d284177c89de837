package model

import "time"

type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task хранит только id создателя и исполнителя — без вложенных объектов User.
// Имена подтягиваются через UserRepository при сборке ответа.
type Task struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Status       Status     `json:"status"`
	Priority     Priority   `json:"priority"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	CreatedByID  int64      `json:"created_by_id"`
	AssignedToID *int64     `json:"assigned_to_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TaskRequest — общий payload для создания и обновления.
// Указатели отличают "поле не передано" от пустого значения.
type TaskRequest struct {
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	Status       *Status    `json:"status"`
	Priority     *Priority  `json:"priority"`
	AssignedToID *int64     `json:"assigned_to_id"`
	DueDate      *time.Time `json:"due_date"`
}

type TaskResponse struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         Status     `json:"status"`
	Priority       Priority   `json:"priority"`
	AssignedToID   *int64     `json:"assigned_to_id,omitempty"`
	AssignedToName string     `json:"assigned_to_name,omitempty"`
	CreatedByID    int64      `json:"created_by_id"`
	CreatedByName  string     `json:"created_by_name"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DueDate        *time.Time `json:"due_date,omitempty"`
}

type TaskFilter struct {
	Status   *Status
	Priority *Priority
}
