package farm

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/smart-harvest/internal/app/domain/weather"
	"github.com/FACorreiaa/smart-harvest/internal/app/models"
)

const (
	upcomingTaskLimit = 5
	weatherDownMsg    = "Weather data is currently unavailable"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service is the read model behind the farm pages.
type Service interface {
	Beds(ctx context.Context) ([]models.Bed, error)
	Bed(ctx context.Context, bedID string) (*models.BedDetail, error)
	Tasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	BedTasks(ctx context.Context, bedID string) ([]models.Task, error)
	FertilizerPlans(ctx context.Context) ([]models.BedPlan, error)
	FertilizerTimeline(ctx context.Context, bedID string) ([]models.TimelineEvent, error)
	Summary(ctx context.Context) (*models.FarmSummary, error)
	SupervisorDashboard(ctx context.Context) (*models.Dashboard, error)
	OwnerDashboard(ctx context.Context) (*models.Dashboard, error)
	Weather(ctx context.Context) (*models.WeatherData, error)
}

type ServiceImpl struct {
	logger  *zap.Logger
	repo    Repository
	weather weather.Provider
	now     func() time.Time
}

// NewService builds the farm service. now drives overdue flags and the
// summary; nil means time.Now.
func NewService(repo Repository, weatherProvider weather.Provider, logger *zap.Logger, now func() time.Time) *ServiceImpl {
	if now == nil {
		now = time.Now
	}
	return &ServiceImpl{
		logger:  logger,
		repo:    repo,
		weather: weatherProvider,
		now:     now,
	}
}

func (s *ServiceImpl) Beds(ctx context.Context) ([]models.Bed, error) {
	beds, err := s.repo.Beds(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading beds: %w", err)
	}
	return beds, nil
}

func (s *ServiceImpl) findBed(ctx context.Context, bedID string) (*models.Bed, error) {
	beds, err := s.Beds(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(beds, func(b models.Bed) bool { return b.ID == bedID })
	if i < 0 {
		return nil, fmt.Errorf("bed %q: %w", bedID, models.ErrNotFound)
	}
	return &beds[i], nil
}

// Bed returns one bed with its tasks and fertilizer timeline.
func (s *ServiceImpl) Bed(ctx context.Context, bedID string) (*models.BedDetail, error) {
	ctx, span := otel.Tracer("FarmService").Start(ctx, "Bed", trace.WithAttributes(
		attribute.String("bed.id", bedID),
	))
	defer span.End()

	bed, err := s.findBed(ctx, bedID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bed lookup failed")
		return nil, err
	}

	detail := &models.BedDetail{Bed: *bed}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tasks, err := s.repo.BedTasks(gctx, bedID)
		if err != nil {
			return fmt.Errorf("error loading tasks: %w", err)
		}
		sortByDue(tasks)
		markOverdue(tasks, s.now())
		detail.Tasks = tasks
		return nil
	})
	g.Go(func() error {
		timeline, err := s.repo.FertilizerTimeline(gctx, bedID)
		if err != nil {
			return fmt.Errorf("error loading timeline: %w", err)
		}
		detail.Timeline = timeline
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bed detail failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return detail, nil
}

// Tasks lists every bed's tasks that match filter, soonest first.
func (s *ServiceImpl) Tasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("status %q: %w", filter.Status, models.ErrValidation)
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, fmt.Errorf("priority %q: %w", filter.Priority, models.ErrValidation)
	}

	beds, err := s.Beds(ctx)
	if err != nil {
		return nil, err
	}

	var tasks []models.Task
	for _, bed := range beds {
		if filter.BedID != "" && bed.ID != filter.BedID {
			continue
		}
		bedTasks, err := s.repo.BedTasks(ctx, bed.ID)
		if err != nil {
			return nil, fmt.Errorf("error loading tasks for %s: %w", bed.ID, err)
		}
		for _, t := range bedTasks {
			if filter.Match(t) {
				tasks = append(tasks, t)
			}
		}
	}

	sortByDue(tasks)
	markOverdue(tasks, s.now())
	return tasks, nil
}

func (s *ServiceImpl) BedTasks(ctx context.Context, bedID string) ([]models.Task, error) {
	if _, err := s.findBed(ctx, bedID); err != nil {
		return nil, err
	}
	tasks, err := s.repo.BedTasks(ctx, bedID)
	if err != nil {
		return nil, fmt.Errorf("error loading tasks: %w", err)
	}
	sortByDue(tasks)
	markOverdue(tasks, s.now())
	return tasks, nil
}

func (s *ServiceImpl) FertilizerTimeline(ctx context.Context, bedID string) ([]models.TimelineEvent, error) {
	if _, err := s.findBed(ctx, bedID); err != nil {
		return nil, err
	}
	timeline, err := s.repo.FertilizerTimeline(ctx, bedID)
	if err != nil {
		return nil, fmt.Errorf("error loading timeline: %w", err)
	}
	return timeline, nil
}

// FertilizerPlans returns each bed's plan with its timeline, in bed order.
func (s *ServiceImpl) FertilizerPlans(ctx context.Context) ([]models.BedPlan, error) {
	beds, err := s.Beds(ctx)
	if err != nil {
		return nil, err
	}

	plans := make([]models.BedPlan, len(beds))
	g, gctx := errgroup.WithContext(ctx)
	for i, bed := range beds {
		g.Go(func() error {
			timeline, err := s.repo.FertilizerTimeline(gctx, bed.ID)
			if err != nil {
				return fmt.Errorf("error loading timeline for %s: %w", bed.ID, err)
			}
			plans[i] = models.BedPlan{
				BedID:    bed.ID,
				BedName:  bed.Name,
				CropType: bed.CropType,
				Plan:     bed.FertilizerPlan,
				Timeline: timeline,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return plans, nil
}

func (s *ServiceImpl) Summary(ctx context.Context) (*models.FarmSummary, error) {
	beds, err := s.Beds(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.Tasks(ctx, models.TaskFilter{})
	if err != nil {
		return nil, err
	}
	summary := summarize(beds, tasks, s.now())
	return &summary, nil
}

func (s *ServiceImpl) Weather(ctx context.Context) (*models.WeatherData, error) {
	return s.weather.Forecast(ctx)
}

func (s *ServiceImpl) SupervisorDashboard(ctx context.Context) (*models.Dashboard, error) {
	return s.dashboard(ctx, "SupervisorDashboard", upcomingTaskLimit)
}

func (s *ServiceImpl) OwnerDashboard(ctx context.Context) (*models.Dashboard, error) {
	return s.dashboard(ctx, "OwnerDashboard", 0)
}

// dashboard loads beds, tasks and weather concurrently. Weather failures
// degrade the dashboard instead of failing it.
func (s *ServiceImpl) dashboard(ctx context.Context, name string, upcoming int) (*models.Dashboard, error) {
	ctx, span := otel.Tracer("FarmService").Start(ctx, name)
	defer span.End()

	l := s.logger.With(zap.String("method", name))

	var (
		beds  []models.Bed
		tasks []models.Task
		wx    *models.WeatherData
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		beds, err = s.Beds(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = s.Tasks(gctx, models.TaskFilter{})
		return err
	})
	g.Go(func() error {
		data, err := s.weather.Forecast(gctx)
		if err != nil {
			l.Warn("Dashboard rendering without weather", zap.Error(err))
			span.AddEvent("weather unavailable")
			return nil
		}
		wx = data
		return nil
	})
	if err := g.Wait(); err != nil {
		l.Error("Failed to load dashboard", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load dashboard")
		return nil, err
	}

	now := s.now()
	dash := &models.Dashboard{
		Beds:    beds,
		Summary: summarize(beds, tasks, now),
		Weather: wx,
	}
	if wx == nil {
		dash.WeatherError = weatherDownMsg
	}
	if upcoming > 0 {
		dash.UpcomingTasks = upcomingTasks(tasks, upcoming)
	}

	span.SetStatus(codes.Ok, "")
	return dash, nil
}

func summarize(beds []models.Bed, tasks []models.Task, now time.Time) models.FarmSummary {
	summary := models.FarmSummary{
		TotalBeds:     len(beds),
		BedsByHealth:  make(map[models.BedHealth]int),
		TasksByStatus: make(map[models.TaskStatus]int),
	}
	for _, b := range beds {
		summary.BedsByHealth[b.Health]++
		if b.FertilizerPlan.Active() {
			summary.ActivePlans++
		}
	}
	for _, t := range tasks {
		summary.TasksByStatus[t.Status]++
		if t.IsOverdue(now) {
			summary.OverdueTasks++
		}
	}
	summary.NeedsAttention = summary.BedsByHealth[models.BedNeedsAttention]
	summary.Critical = summary.BedsByHealth[models.BedCritical]
	return summary
}

func upcomingTasks(tasks []models.Task, limit int) []models.Task {
	open := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status != models.TaskCompleted {
			open = append(open, t)
		}
	}
	sortByDue(open)
	if len(open) > limit {
		open = open[:limit]
	}
	return open
}

func markOverdue(tasks []models.Task, now time.Time) {
	for i := range tasks {
		tasks[i].Overdue = tasks[i].IsOverdue(now)
	}
}

func sortByDue(tasks []models.Task) {
	slices.SortStableFunc(tasks, func(a, b models.Task) int {
		return a.DueDate.Compare(b.DueDate)
	})
}
