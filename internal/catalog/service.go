package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrNegativeRate indicates a negative price or charge at the boundary.
var ErrNegativeRate = errors.New("catalog: rate must not be negative")

// Service handles catalog business logic.
type Service struct {
	repo     Repository
	cache    *Cache
	validate *validator.Validate
}

// NewService builds Service instance.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		validate: validator.New(),
	}
}

// --- Fabrics ---

func (s *Service) ListFabrics(ctx context.Context, filters ListFilters) ([]Fabric, int, error) {
	if s.cache != nil {
		return s.cache.ListFabrics(ctx, filters, s.repo.ListFabrics)
	}
	return s.repo.ListFabrics(ctx, filters)
}

func (s *Service) GetFabric(ctx context.Context, id int64) (*Fabric, error) {
	return s.repo.GetFabric(ctx, id)
}

func (s *Service) CreateFabric(ctx context.Context, req CreateFabricRequest) (*Fabric, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if req.PricePerMeter.IsNegative() {
		return nil, ErrNegativeRate
	}
	f, err := s.repo.CreateFabric(ctx, Fabric{Name: req.Name, PricePerMeter: req.PricePerMeter})
	if err != nil {
		return nil, fmt.Errorf("create fabric: %w", err)
	}
	s.bumpCache(ctx)
	return f, nil
}

func (s *Service) UpdateFabric(ctx context.Context, id int64, req UpdateFabricRequest) (*Fabric, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if req.PricePerMeter != nil && req.PricePerMeter.IsNegative() {
		return nil, ErrNegativeRate
	}
	if err := s.repo.UpdateFabric(ctx, id, req); err != nil {
		return nil, fmt.Errorf("update fabric: %w", err)
	}
	s.bumpCache(ctx)
	return s.repo.GetFabric(ctx, id)
}

func (s *Service) DeleteFabric(ctx context.Context, id int64) error {
	if err := s.repo.DeleteFabric(ctx, id); err != nil {
		return err
	}
	s.bumpCache(ctx)
	return nil
}

// --- Item types ---

func (s *Service) ListItemTypes(ctx context.Context, filters ListFilters) ([]ItemType, int, error) {
	if s.cache != nil {
		return s.cache.ListItemTypes(ctx, filters, s.repo.ListItemTypes)
	}
	return s.repo.ListItemTypes(ctx, filters)
}

func (s *Service) GetItemType(ctx context.Context, id int64) (*ItemType, error) {
	return s.repo.GetItemType(ctx, id)
}

func (s *Service) CreateItemType(ctx context.Context, req CreateItemTypeRequest) (*ItemType, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if req.StitchingCharge.IsNegative() {
		return nil, ErrNegativeRate
	}
	it, err := s.repo.CreateItemType(ctx, ItemType{Name: req.Name, StitchingCharge: req.StitchingCharge})
	if err != nil {
		return nil, fmt.Errorf("create item type: %w", err)
	}
	s.bumpCache(ctx)
	return it, nil
}

func (s *Service) UpdateItemType(ctx context.Context, id int64, req UpdateItemTypeRequest) (*ItemType, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if req.StitchingCharge != nil && req.StitchingCharge.IsNegative() {
		return nil, ErrNegativeRate
	}
	if err := s.repo.UpdateItemType(ctx, id, req); err != nil {
		return nil, fmt.Errorf("update item type: %w", err)
	}
	s.bumpCache(ctx)
	return s.repo.GetItemType(ctx, id)
}

func (s *Service) DeleteItemType(ctx context.Context, id int64) error {
	if err := s.repo.DeleteItemType(ctx, id); err != nil {
		return err
	}
	s.bumpCache(ctx)
	return nil
}

// --- Styles & categories ---

func (s *Service) ListStyles(ctx context.Context, filters ListFilters) ([]Style, int, error) {
	return s.repo.ListStyles(ctx, filters)
}

func (s *Service) GetStyle(ctx context.Context, id int64) (*Style, error) {
	return s.repo.GetStyle(ctx, id)
}

func (s *Service) CreateStyle(ctx context.Context, req CreateStyleRequest) (*Style, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.repo.CreateStyle(ctx, Style{Name: req.Name, CategoryID: req.CategoryID})
}

func (s *Service) UpdateStyle(ctx context.Context, id int64, req UpdateStyleRequest) (*Style, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStyle(ctx, id, req); err != nil {
		return nil, err
	}
	return s.repo.GetStyle(ctx, id)
}

func (s *Service) DeleteStyle(ctx context.Context, id int64) error {
	return s.repo.DeleteStyle(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.repo.CreateCategory(ctx, Category{Name: req.Name})
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}

// --- Rate resolution ---

// ResolveRates reads the current rates straight from the store. Billing calls
// this at generation time; the listing cache is deliberately not consulted.
func (s *Service) ResolveRates(ctx context.Context, fabricIDs, itemTypeIDs []int64) (*RateSet, error) {
	return s.repo.ResolveRates(ctx, fabricIDs, itemTypeIDs)
}

func (s *Service) bumpCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Bump(ctx)
	}
}
