package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrOrderBilled indicates an operation forbidden on a billed order.
	ErrOrderBilled = errors.New("orders: order already billed")
	// ErrNegativeMeters indicates a negative fabric measurement.
	ErrNegativeMeters = errors.New("orders: fabric meters must not be negative")
)

// Clock abstracts time for the recency window and expiry sweep.
type Clock func() time.Time

// ServiceConfig tunes order listing behaviour.
type ServiceConfig struct {
	// RecentWindow bounds the default "recent" listing of pending orders.
	RecentWindow time.Duration
}

// Service handles pending-order business logic.
type Service struct {
	repo     Repository
	cfg      ServiceConfig
	validate *validator.Validate
	now      Clock
}

// NewService builds Service instance.
func NewService(repo Repository, cfg ServiceConfig) *Service {
	if cfg.RecentWindow <= 0 {
		cfg.RecentWindow = 24 * time.Hour
	}
	return &Service{
		repo:     repo,
		cfg:      cfg,
		validate: validator.New(),
		now:      time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(clock Clock) *Service {
	s.now = clock
	return s
}

// Create validates and persists a new pending order with its line items.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*PendingOrder, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		if item.FabricMeters.IsNegative() {
			return nil, ErrNegativeMeters
		}
	}

	token := req.TokenNumber
	if token == "" {
		var err error
		token, err = s.repo.GenerateToken(ctx, s.now())
		if err != nil {
			return nil, fmt.Errorf("generate token: %w", err)
		}
	}

	order := PendingOrder{
		TokenNumber:    token,
		CustomerName:   req.CustomerName,
		CustomerMobile: req.CustomerMobile,
		CustomerEmail:  req.CustomerEmail,
		MasterID:       req.MasterID,
		SalesmanID:     req.SalesmanID,
		OrderType:      req.OrderType,
		Status:         StatusPending,
	}

	var orderID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, order)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		orderID = id

		for i, itemReq := range req.Items {
			item := LineItem{
				OrderID:      orderID,
				ItemTypeID:   itemReq.ItemTypeID,
				FabricID:     itemReq.FabricID,
				StyleID:      itemReq.StyleID,
				Quantity:     itemReq.Quantity,
				FabricMeters: itemReq.FabricMeters,
				DesignNumber: itemReq.DesignNumber,
				Description:  itemReq.Description,
				LineOrder:    itemReq.LineOrder,
			}
			if item.LineOrder == 0 {
				item.LineOrder = i + 1
			}
			if _, err := repo.InsertItem(ctx, item); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, orderID)
}

func (s *Service) Get(ctx context.Context, id int64) (*PendingOrder, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByToken(ctx context.Context, token string) (*PendingOrder, error) {
	return s.repo.GetByToken(ctx, token)
}

// List returns orders; when recentOnly is set, pending orders older than the
// configured window are excluded without being touched.
func (s *Service) List(ctx context.Context, req ListOrdersRequest, recentOnly bool) ([]PendingOrder, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, err
	}
	if req.Limit == 0 {
		req.Limit = 50
	}
	if recentOnly {
		cutoff := s.now().Add(-s.cfg.RecentWindow)
		req.RecentSince = &cutoff
	}
	return s.repo.List(ctx, req)
}

// Delete removes an order. Billed orders are immutable: removing one would
// orphan the invoice that references it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status == StatusBilled {
		return ErrOrderBilled
	}
	return s.repo.Delete(ctx, id)
}

// ExpireStale persists expiry for pending orders older than the window.
// Called from the worker sweep.
func (s *Service) ExpireStale(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.cfg.RecentWindow)
	return s.repo.ExpireStale(ctx, cutoff)
}
