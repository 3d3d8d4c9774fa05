package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/FACorreiaa/smart-harvest/internal/app/models"
)

// Repository is the source of client accounts, farms, deals and traced
// products.
type Repository interface {
	Profile(ctx context.Context, email string) (*models.ClientProfile, error)
	SaveProfile(ctx context.Context, profile models.ClientProfile) error
	Farms(ctx context.Context) ([]models.ClientFarm, error)
	Deals(ctx context.Context) ([]models.Deal, error)
	Product(ctx context.Context, code string) (*models.Product, error)
}

var _ Repository = (*MockRepository)(nil)

// DemoProfile is shown to clients who signed in without registering.
var DemoProfile = models.ClientProfile{
	Name:     "Jane Doe",
	Company:  "AgroClient Ltd.",
	Location: "Colombo, Sri Lanka",
	Contact:  "+94 77 123 4567",
}

// MockRepository serves the demo client data. Registered profiles live in
// memory, keyed by case-folded email, for the life of the process.
type MockRepository struct {
	now func() time.Time

	mu       sync.RWMutex
	profiles map[string]models.ClientProfile
}

func NewMockRepository(now func() time.Time) *MockRepository {
	if now == nil {
		now = time.Now
	}
	return &MockRepository{
		now:      now,
		profiles: make(map[string]models.ClientProfile),
	}
}

func profileKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *MockRepository) Profile(ctx context.Context, email string) (*models.ClientProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[profileKey(email)]
	if !ok {
		return nil, fmt.Errorf("profile %q: %w", email, models.ErrNotFound)
	}
	return &p, nil
}

func (r *MockRepository) SaveProfile(ctx context.Context, profile models.ClientProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := profileKey(profile.Email)
	if _, ok := r.profiles[key]; ok {
		return fmt.Errorf("profile %q: %w", profile.Email, models.ErrConflict)
	}
	r.profiles[key] = profile
	return nil
}

func (r *MockRepository) today() time.Time {
	now := r.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (r *MockRepository) Farms(ctx context.Context) ([]models.ClientFarm, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	day := r.today()
	in := func(days int) time.Time { return day.AddDate(0, 0, days) }

	return []models.ClientFarm{
		{
			ID:       1,
			Name:     "Green Valley Farm",
			Location: "Matara",
			Crops:    []string{"Tomatoes", "Lettuce", "Bell Peppers"},
			Accessed: true,
			Sections: []models.HarvestSection{
				{Name: "Section A", Crop: "Tomatoes", ExpectedHarvest: in(12), EstimatedYield: 850},
				{Name: "Section B", Crop: "Lettuce", ExpectedHarvest: in(5), EstimatedYield: 320},
				{Name: "Section C", Crop: "Bell Peppers", ExpectedHarvest: in(21), EstimatedYield: 540},
			},
		},
		{
			ID:       2,
			Name:     "Sunrise Fields",
			Location: "Galle",
			Crops:    []string{"Cucumbers", "Carrots"},
			Accessed: true,
			Sections: []models.HarvestSection{
				{Name: "North Field", Crop: "Cucumbers", ExpectedHarvest: in(8), EstimatedYield: 610},
				{Name: "South Field", Crop: "Carrots", ExpectedHarvest: in(30), EstimatedYield: 480},
			},
		},
		{
			ID:       3,
			Name:     "Blue Lake Farm",
			Location: "Kandy",
			Crops:    []string{"Beans", "Cabbage"},
		},
		{
			ID:       4,
			Name:     "Red Hill Farm",
			Location: "Nuwara Eliya",
			Crops:    []string{"Potatoes", "Leeks"},
		},
	}, nil
}

func (r *MockRepository) Deals(ctx context.Context) ([]models.Deal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deal := func(n, farmID int, crop string, status models.DealStatus, kg float64) models.Deal {
		return models.Deal{ID: fmt.Sprintf("deal-%03d", n), FarmID: farmID, Crop: crop, Status: status, Quantity: kg}
	}
	return []models.Deal{
		deal(1, 1, "Tomatoes", models.DealCompleted, 400),
		deal(2, 1, "Lettuce", models.DealCompleted, 150),
		deal(3, 1, "Bell Peppers", models.DealCanceled, 200),
		deal(4, 1, "Tomatoes", models.DealCompleted, 380),
		deal(5, 1, "Lettuce", models.DealOpen, 120),
		deal(6, 2, "Cucumbers", models.DealCompleted, 300),
		deal(7, 2, "Carrots", models.DealCompleted, 250),
		deal(8, 2, "Cucumbers", models.DealCompleted, 280),
		deal(9, 2, "Carrots", models.DealCanceled, 90),
		deal(10, 2, "Cucumbers", models.DealCompleted, 310),
		deal(11, 2, "Carrots", models.DealCompleted, 200),
	}, nil
}

// Product looks up a harvest batch by its label code, ignoring case.
func (r *MockRepository) Product(ctx context.Context, code string) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	day := r.today()
	products := []models.Product{
		{Code: "SH-1001", Crop: "Tomatoes", FarmName: "Green Valley Farm", Section: "Section A", Harvested: day.AddDate(0, 0, -3)},
		{Code: "SH-1002", Crop: "Lettuce", FarmName: "Green Valley Farm", Section: "Section B", Harvested: day.AddDate(0, 0, -1)},
		{Code: "SH-2001", Crop: "Cucumbers", FarmName: "Sunrise Fields", Section: "North Field", Harvested: day.AddDate(0, 0, -2)},
	}
	for _, p := range products {
		if strings.EqualFold(p.Code, code) {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product %q: %w", code, models.ErrNotFound)
}
