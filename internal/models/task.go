package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "Not-Started"
	TaskStatusInProgress TaskStatus = "In-Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

type Task struct {
	TaskID             string       `gorm:"column:task_id;primaryKey;size:36" json:"task_id"`
	Name               string       `gorm:"type:varchar(100);not null" json:"name"`
	Description        string       `gorm:"type:varchar(500)" json:"description"`
	ProjectID          string       `gorm:"size:36;not null;index" json:"project_id"`
	UserID             string       `gorm:"size:36;not null;index" json:"user_id"`
	EstimatedStartTime time.Time    `gorm:"not null" json:"estimated_start_time"`
	EstimatedEndTime   time.Time    `gorm:"not null" json:"estimated_end_time"`
	ActualStartTime    *time.Time   `json:"actual_start_time"`
	ActualEndTime      *time.Time   `json:"actual_end_time"`
	Status             TaskStatus   `gorm:"type:varchar(20);not null;default:'Not-Started'" json:"status"`
	Priority           TaskPriority `gorm:"type:varchar(20);not null;default:'Low'" json:"priority"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	newID(&t.TaskID)
	if t.Status == "" {
		t.Status = TaskStatusNotStarted
	}
	if t.Priority == "" {
		t.Priority = TaskPriorityLow
	}
	return nil
}

func (Task) Schema() Schema {
	return Schema{
		Table:      "tasks",
		PrimaryKey: "task_id",
		Columns: []string{
			"task_id", "name", "description", "project_id", "user_id",
			"estimated_start_time", "estimated_end_time", "actual_start_time", "actual_end_time",
			"status", "priority", "created_at", "updated_at",
		},
		Mutable: []string{
			"name", "description", "project_id", "user_id",
			"estimated_start_time", "estimated_end_time", "actual_start_time", "actual_end_time",
			"status", "priority",
		},
		Filterable: []string{"task_id", "project_id", "user_id", "status", "priority"},
	}
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusNotStarted, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}
