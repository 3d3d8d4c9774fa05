package models

import "time"

type BedHealth string

const (
	BedHealthy        BedHealth = "healthy"
	BedNeedsAttention BedHealth = "needs-attention"
	BedCritical       BedHealth = "critical"
)

func (h BedHealth) Label() string {
	switch h {
	case BedHealthy:
		return "Healthy"
	case BedNeedsAttention:
		return "Needs Attention"
	case BedCritical:
		return "Critical"
	default:
		return string(h)
	}
}

// FertilizerPlan is the plan currently applied to a bed.
type FertilizerPlan struct {
	Current         string    `json:"current"`
	NextApplication time.Time `json:"nextApplication"`
	Progress        int       `json:"progress"`
}

// Active reports whether the plan still has applications left.
func (p FertilizerPlan) Active() bool {
	return p.Progress < 100
}

type Bed struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	CropType       string         `json:"cropType"`
	Health         BedHealth      `json:"health"`
	LastWatered    time.Time      `json:"lastWatered"`
	NextTask       string         `json:"nextTask"`
	NextTaskDue    time.Time      `json:"nextTaskDue"`
	CurrentTemp    float64        `json:"currentTemp"`
	Humidity       float64        `json:"humidity"`
	SoilMoisture   float64        `json:"soilMoisture"`
	LastPhotoDate  time.Time      `json:"lastPhotoDate"`
	FertilizerPlan FertilizerPlan `json:"fertilizerPlan"`
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
	TaskDelayed    TaskStatus = "delayed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskDelayed:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	ID            string       `json:"id"`
	BedID         string       `json:"bedId"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	DueDate       time.Time    `json:"dueDate"`
	Status        TaskStatus   `json:"status"`
	Priority      TaskPriority `json:"priority"`
	AssignedTo    string       `json:"assignedTo"`
	RequiresPhoto bool         `json:"requiresPhoto"`
	CompletedDate *time.Time   `json:"completedDate,omitempty"`
	PhotoURL      string       `json:"photoUrl,omitempty"`
	// Overdue is set by the farm service against its clock.
	Overdue bool `json:"overdue"`
}

// IsOverdue reports whether the task is unfinished past its due date.
func (t Task) IsOverdue(now time.Time) bool {
	return t.Status != TaskCompleted && t.DueDate.Before(now)
}

// TaskFilter narrows a task listing. Zero fields match everything.
type TaskFilter struct {
	Status   TaskStatus   `form:"status" json:"status,omitempty"`
	Priority TaskPriority `form:"priority" json:"priority,omitempty"`
	BedID    string       `form:"bed" json:"bed,omitempty"`
}

func (f TaskFilter) Match(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.BedID != "" && t.BedID != f.BedID {
		return false
	}
	return true
}

type TimelineEvent struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	IsCurrent   bool      `json:"isCurrent,omitempty"`
}

// BedPlan pairs a bed's fertilizer plan with its application timeline.
type BedPlan struct {
	BedID    string          `json:"bedId"`
	BedName  string          `json:"bedName"`
	CropType string          `json:"cropType"`
	Plan     FertilizerPlan  `json:"plan"`
	Timeline []TimelineEvent `json:"timeline"`
}

type FarmSummary struct {
	TotalBeds      int                `json:"totalBeds"`
	BedsByHealth   map[BedHealth]int  `json:"bedsByHealth"`
	TasksByStatus  map[TaskStatus]int `json:"tasksByStatus"`
	OverdueTasks   int                `json:"overdueTasks"`
	ActivePlans    int                `json:"activePlans"`
	NeedsAttention int                `json:"needsAttention"`
	Critical       int                `json:"critical"`
}

// Dashboard is the view model behind both dashboards.
type Dashboard struct {
	Beds         []Bed        `json:"beds"`
	UpcomingTasks []Task      `json:"upcomingTasks"`
	Summary      FarmSummary  `json:"summary"`
	Weather      *WeatherData `json:"weather,omitempty"`
	WeatherError string       `json:"weatherError,omitempty"`
}
