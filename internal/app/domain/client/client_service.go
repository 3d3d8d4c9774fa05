package client

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/smart-harvest/internal/app/domain/session"
	"github.com/FACorreiaa/smart-harvest/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the read model behind the client and end-user portals.
type Service interface {
	Dashboard(ctx context.Context, username, tab string) (*models.ClientDashboard, error)
	Farm(ctx context.Context, id int) (*models.ClientFarmDetail, error)
	Register(ctx context.Context, reg models.ClientRegistration) (*models.ClientProfile, error)
	LookupProduct(ctx context.Context, code string) (*models.Product, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

// Dashboard loads the profile, farms and deals for username concurrently.
// tab picks the farm list: accessed (the default) or not-accessed.
func (s *ServiceImpl) Dashboard(ctx context.Context, username, tab string) (*models.ClientDashboard, error) {
	if tab == "" {
		tab = models.FarmsAccessed
	}
	if tab != models.FarmsAccessed && tab != models.FarmsNotAccessed {
		return nil, fmt.Errorf("tab %q: %w", tab, models.ErrValidation)
	}

	ctx, span := otel.Tracer("ClientService").Start(ctx, "Dashboard", trace.WithAttributes(
		attribute.String("client.tab", tab),
	))
	defer span.End()

	var (
		profile models.ClientProfile
		farms   []models.ClientFarm
		deals   []models.Deal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.profile(gctx, username)
		if err != nil {
			return err
		}
		profile = *p
		return nil
	})
	g.Go(func() error {
		var err error
		if farms, err = s.repo.Farms(gctx); err != nil {
			return fmt.Errorf("error loading farms: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if deals, err = s.repo.Deals(gctx); err != nil {
			return fmt.Errorf("error loading deals: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to load client dashboard", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load client dashboard")
		return nil, err
	}

	accessed := tab == models.FarmsAccessed
	listed := make([]models.ClientFarm, 0, len(farms))
	for _, f := range farms {
		if f.Accessed == accessed {
			listed = append(listed, f)
		}
	}

	span.SetStatus(codes.Ok, "")
	return &models.ClientDashboard{
		Profile: profile,
		Summary: summarize(farms, deals),
		Tab:     tab,
		Farms:   listed,
	}, nil
}

// profile returns the registered profile for username, or the demo profile
// under the user's display name.
func (s *ServiceImpl) profile(ctx context.Context, username string) (*models.ClientProfile, error) {
	p, err := s.repo.Profile(ctx, username)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("error loading profile: %w", err)
	}

	demo := DemoProfile
	if username != "" {
		demo.Name = session.DeriveDisplayName(username)
		demo.Email = username
	}
	return &demo, nil
}

func summarize(farms []models.ClientFarm, deals []models.Deal) models.ClientSummary {
	var summary models.ClientSummary
	for _, f := range farms {
		if f.Accessed {
			summary.AccessedFarms++
			summary.HarvestSections += len(f.Sections)
		}
	}
	for _, d := range deals {
		switch d.Status {
		case models.DealCompleted:
			summary.CompletedDeals++
		case models.DealCanceled:
			summary.CanceledDeals++
		}
	}
	if closed := summary.CompletedDeals + summary.CanceledDeals; closed > 0 {
		summary.NetProgress = summary.CompletedDeals * 100 / closed
	}
	return summary
}

// Farm returns an accessed farm with its deals. Farms the client has no
// access to yield models.ErrForbidden.
func (s *ServiceImpl) Farm(ctx context.Context, id int) (*models.ClientFarmDetail, error) {
	ctx, span := otel.Tracer("ClientService").Start(ctx, "Farm", trace.WithAttributes(
		attribute.Int("farm.id", id),
	))
	defer span.End()

	farms, err := s.repo.Farms(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error loading farms: %w", err)
	}
	i := slices.IndexFunc(farms, func(f models.ClientFarm) bool { return f.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("farm %d: %w", id, models.ErrNotFound)
	}
	farm := farms[i]
	if !farm.Accessed {
		span.AddEvent("farm not accessed")
		return nil, fmt.Errorf("farm %d: %w", id, models.ErrForbidden)
	}

	deals, err := s.repo.Deals(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error loading deals: %w", err)
	}
	detail := &models.ClientFarmDetail{Farm: farm, Deals: []models.Deal{}}
	for _, d := range deals {
		if d.FarmID == id {
			detail.Deals = append(detail.Deals, d)
		}
	}

	span.SetStatus(codes.Ok, "")
	return detail, nil
}

// Register validates reg against its binding tags and stores the new
// client's profile.
func (s *ServiceImpl) Register(ctx context.Context, reg models.ClientRegistration) (*models.ClientProfile, error) {
	reg.Normalize()
	if err := binding.Validator.ValidateStruct(reg); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	profile := reg.Profile()
	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Info("Client registered",
		zap.String("email", profile.Email),
		zap.String("company", profile.Company))
	return &profile, nil
}

// LookupProduct finds a traced product by the code printed on its label.
func (s *ServiceImpl) LookupProduct(ctx context.Context, code string) (*models.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("product code is required: %w", models.ErrValidation)
	}
	return s.repo.Product(ctx, code)
}
