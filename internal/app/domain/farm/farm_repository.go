package farm

import (
	"context"
	"fmt"
	"time"

	"github.com/FACorreiaa/smart-harvest/internal/app/models"
)

// Repository is the source of farm data.
type Repository interface {
	Beds(ctx context.Context) ([]models.Bed, error)
	BedTasks(ctx context.Context, bedID string) ([]models.Task, error)
	FertilizerTimeline(ctx context.Context, bedID string) ([]models.TimelineEvent, error)
}

var _ Repository = (*MockRepository)(nil)

// MockRepository serves the demo farm. Dates are computed from the clock so
// the data always looks current.
type MockRepository struct {
	now func() time.Time
}

func NewMockRepository(now func() time.Time) *MockRepository {
	if now == nil {
		now = time.Now
	}
	return &MockRepository{now: now}
}

func (r *MockRepository) Beds(ctx context.Context) ([]models.Bed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := r.now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	at := func(days, hour, minute int) time.Time {
		return day.AddDate(0, 0, days).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	}

	return []models.Bed{
		{
			ID:            "bed-001",
			Name:          "Tomato Bed A",
			CropType:      "Tomatoes",
			Health:        models.BedHealthy,
			LastWatered:   at(0, 8, 0),
			NextTask:      "Check for pests",
			NextTaskDue:   at(0, 16, 0),
			CurrentTemp:   25,
			Humidity:      65,
			SoilMoisture:  75,
			LastPhotoDate: at(-1, 0, 0),
			FertilizerPlan: models.FertilizerPlan{
				Current:         "NPK 5-10-5",
				NextApplication: at(2, 0, 0),
				Progress:        60,
			},
		},
		{
			ID:            "bed-002",
			Name:          "Lettuce Bed B",
			CropType:      "Lettuce",
			Health:        models.BedNeedsAttention,
			LastWatered:   at(0, 7, 30),
			NextTask:      "Water plants",
			NextTaskDue:   at(0, 14, 0),
			CurrentTemp:   23,
			Humidity:      55,
			SoilMoisture:  45,
			LastPhotoDate: at(-1, 0, 0),
			FertilizerPlan: models.FertilizerPlan{
				Current:         "NPK 3-15-3",
				NextApplication: at(1, 0, 0),
				Progress:        75,
			},
		},
		{
			ID:            "bed-003",
			Name:          "Pepper Bed C",
			CropType:      "Bell Peppers",
			Health:        models.BedCritical,
			LastWatered:   at(0, 7, 0),
			NextTask:      "Apply treatment for leaf spots",
			NextTaskDue:   at(0, 12, 0),
			CurrentTemp:   28,
			Humidity:      70,
			SoilMoisture:  30,
			LastPhotoDate: at(-1, 0, 0),
			FertilizerPlan: models.FertilizerPlan{
				Current:         "NPK 5-5-5",
				NextApplication: at(0, 0, 0),
				Progress:        90,
			},
		},
		{
			ID:            "bed-004",
			Name:          "Cucumber Bed D",
			CropType:      "Cucumbers",
			Health:        models.BedHealthy,
			LastWatered:   at(0, 8, 30),
			NextTask:      "Prune excess growth",
			NextTaskDue:   at(1, 10, 0),
			CurrentTemp:   24,
			Humidity:      60,
			SoilMoisture:  70,
			LastPhotoDate: at(-1, 0, 0),
			FertilizerPlan: models.FertilizerPlan{
				Current:         "NPK 7-3-7",
				NextApplication: at(3, 0, 0),
				Progress:        40,
			},
		},
	}, nil
}

// BedTasks returns the standing task list every bed gets.
func (r *MockRepository) BedTasks(ctx context.Context, bedID string) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := r.now()
	tomorrow := now.AddDate(0, 0, 1)
	nextWeek := now.AddDate(0, 0, 7)
	id := func(n int) string { return fmt.Sprintf("task-%s-%d", bedID, n) }

	return []models.Task{
		{
			ID:          id(1),
			BedID:       bedID,
			Title:       "Water plants",
			Description: "Ensure even watering throughout the bed",
			DueDate:     now.Add(3 * time.Hour),
			Status:      models.TaskPending,
			Priority:    models.PriorityHigh,
			AssignedTo:  "supervisor1",
		},
		{
			ID:          id(2),
			BedID:       bedID,
			Title:       "Apply fertilizer",
			Description: "Use the specified NPK mix for this crop type",
			DueDate:     tomorrow,
			Status:      models.TaskPending,
			Priority:    models.PriorityMedium,
			AssignedTo:  "supervisor1",
		},
		{
			ID:            id(3),
			BedID:         bedID,
			Title:         "Document leaf health",
			Description:   "Take photos of representative leaves from different plants",
			DueDate:       tomorrow,
			Status:        models.TaskPending,
			Priority:      models.PriorityMedium,
			AssignedTo:    "supervisor1",
			RequiresPhoto: true,
		},
		{
			ID:            id(4),
			BedID:         bedID,
			Title:         "Check for pests",
			Description:   "Inspect for common pests and record observations",
			DueDate:       nextWeek,
			Status:        models.TaskPending,
			Priority:      models.PriorityLow,
			AssignedTo:    "supervisor1",
			RequiresPhoto: true,
		},
	}, nil
}

func (r *MockRepository) FertilizerTimeline(ctx context.Context, bedID string) ([]models.TimelineEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := r.now()
	id := func(n int) string { return fmt.Sprintf("fert-%s-%d", bedID, n) }

	return []models.TimelineEvent{
		{ID: id(1), Date: now.AddDate(0, 0, -21), Title: "Initial Fertilization", Description: "Applied starter NPK 10-10-10", Completed: true},
		{ID: id(2), Date: now.AddDate(0, 0, -14), Title: "Micronutrient Application", Description: "Applied micronutrient mix for early growth", Completed: true},
		{ID: id(3), Date: now.AddDate(0, 0, -7), Title: "Secondary Fertilization", Description: "Applied NPK 5-10-5 for vegetative growth", Completed: true},
		{ID: id(4), Date: now, Title: "Current Stage", Description: "Monitoring nutrient levels", IsCurrent: true},
		{ID: id(5), Date: now.AddDate(0, 0, 7), Title: "Planned Application", Description: "Schedule to apply NPK 3-15-3 for flowering"},
	}, nil
}
