package models

import "time"

// TaskType groups tasks by the kind of work involved
type TaskType string

const (
	TaskContentCreation TaskType = "content_creation"
	TaskOptimization    TaskType = "optimization"
	TaskMonitoring      TaskType = "monitoring"
	TaskEngagement      TaskType = "engagement"
	TaskAnalysis        TaskType = "analysis"
)

// Task is one row of the tasks table
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        TaskType  `json:"type"`
	Status      string    `json:"status,omitempty"`
	Priority    Priority  `json:"priority"`
	DueDate     time.Time `json:"due_date"`
	Completed   bool      `json:"completed"`
	AIGenerated bool      `json:"ai_generated,omitempty"`
}

// TaskRecord adapts a Task to the filterable record shape.
type TaskRecord struct {
	Task
}

func (r TaskRecord) Label() string       { return r.Title }
func (r TaskRecord) Description() string { return r.Task.Description }
func (r TaskRecord) Category() string    { return string(r.Type) }

func (r TaskRecord) Status() (string, bool) {
	return r.Task.Status, r.Task.Status != ""
}

func (r TaskRecord) Priority() (string, bool) {
	return string(r.Task.Priority), r.Task.Priority != ""
}

func (r TaskRecord) Completed() (bool, bool) { return r.Task.Completed, true }

func (r TaskRecord) Date() (time.Time, bool) {
	return r.DueDate, !r.DueDate.IsZero()
}

// AssetRecords wraps assets for filtering.
func AssetRecords(assets []Asset) []AssetRecord {
	out := make([]AssetRecord, len(assets))
	for i, a := range assets {
		out[i] = AssetRecord{Asset: a}
	}
	return out
}

// TaskRecords wraps tasks for filtering.
func TaskRecords(tasks []Task) []TaskRecord {
	out := make([]TaskRecord, len(tasks))
	for i, t := range tasks {
		out[i] = TaskRecord{Task: t}
	}
	return out
}
