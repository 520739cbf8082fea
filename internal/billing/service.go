package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/atelier-erp/atelier-erp/internal/catalog"
	"github.com/atelier-erp/atelier-erp/internal/orders"
)

var (
	// ErrOrderNotFound indicates invoicing requested for a missing order.
	ErrOrderNotFound = errors.New("billing: order not found")
	// ErrOrderAlreadyBilled indicates the order already has an invoice.
	ErrOrderAlreadyBilled = errors.New("billing: order already billed")
	// ErrOrderExpired indicates the order expired before finalization.
	ErrOrderExpired = errors.New("billing: order expired")
	// ErrInvalidPercentage indicates a percentage outside [0,100].
	ErrInvalidPercentage = errors.New("billing: percentage must be between 0 and 100")
	// ErrEmptyOrder indicates an order with no line items.
	ErrEmptyOrder = errors.New("billing: order has no line items")
)

var oneHundred = decimal.NewFromInt(100)

// RateSource resolves catalog rates at a point in time.
type RateSource interface {
	ResolveRates(ctx context.Context, fabricIDs, itemTypeIDs []int64) (*catalog.RateSet, error)
}

// OrderSource reads pending orders.
type OrderSource interface {
	Get(ctx context.Context, id int64) (*orders.PendingOrder, error)
}

// Service finalizes pending orders into invoices. All monetary amounts are
// derived from catalog state at generation time; client-supplied totals are
// never trusted.
type Service struct {
	repo     Repository
	orders   OrderSource
	rates    RateSource
	validate *validator.Validate
	now      func() time.Time
}

// NewService builds Service instance.
func NewService(repo Repository, orderSource OrderSource, rateSource RateSource) *Service {
	return &Service{
		repo:     repo,
		orders:   orderSource,
		rates:    rateSource,
		validate: validator.New(),
		now:      time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.now = clock
	return s
}

func validatePercentage(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(oneHundred) {
		return ErrInvalidPercentage
	}
	return nil
}

// price re-resolves rates from the catalog and runs the calculator. This is
// the single pricing path shared by preview and finalization.
func (s *Service) price(ctx context.Context, order *orders.PendingOrder) ([]LineComputation, decimal.Decimal, error) {
	fabricIDs := make([]int64, 0, len(order.Items))
	itemTypeIDs := make([]int64, 0, len(order.Items))
	seenFabric := make(map[int64]bool)
	seenItemType := make(map[int64]bool)
	for _, item := range order.Items {
		if !seenItemType[item.ItemTypeID] {
			seenItemType[item.ItemTypeID] = true
			itemTypeIDs = append(itemTypeIDs, item.ItemTypeID)
		}
		if item.FabricID != nil && !seenFabric[*item.FabricID] {
			seenFabric[*item.FabricID] = true
			fabricIDs = append(fabricIDs, *item.FabricID)
		}
	}

	rates, err := s.rates.ResolveRates(ctx, fabricIDs, itemTypeIDs)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("resolve rates: %w", err)
	}

	computations, err := ComputeLineTotals(order.Items, rates)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return computations, ComputeSubtotal(computations), nil
}

// Preview prices an order without side effects, for the live billing screen.
func (s *Service) Preview(ctx context.Context, orderID int64, gstPct, discountPct decimal.Decimal) (*BillingSummary, error) {
	if err := validatePercentage(gstPct); err != nil {
		return nil, err
	}
	if err := validatePercentage(discountPct); err != nil {
		return nil, err
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	computations, subtotal, err := s.price(ctx, order)
	if err != nil {
		return nil, err
	}

	gstAmount := subtotal.Mul(gstPct).Div(oneHundred)
	discountAmount := subtotal.Mul(discountPct).Div(oneHundred)
	return &BillingSummary{
		Subtotal:       subtotal,
		GSTAmount:      gstAmount,
		DiscountAmount: discountAmount,
		TotalAmount:    subtotal.Add(gstAmount).Sub(discountAmount),
		Items:          computations,
	}, nil
}

// Generate finalizes a pending order into an invoice. Invoice insert and the
// pending -> billed transition commit atomically; the loser of a concurrent
// finalization race gets AlreadyBilledError, never a duplicate invoice.
func (s *Service) Generate(ctx context.Context, req GenerateInvoiceRequest) (*Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if err := validatePercentage(req.GSTPercentage); err != nil {
		return nil, err
	}
	if err := validatePercentage(req.DiscountPercentage); err != nil {
		return nil, err
	}

	order, err := s.orders.Get(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	switch order.Status {
	case orders.StatusPending:
	case orders.StatusBilled:
		return nil, s.alreadyBilled(ctx, order.ID)
	case orders.StatusExpired:
		return nil, ErrOrderExpired
	default:
		return nil, fmt.Errorf("billing: unknown order status %q", order.Status)
	}

	if len(order.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	_, subtotal, err := s.price(ctx, order)
	if err != nil {
		return nil, err
	}

	gstAmount := subtotal.Mul(req.GSTPercentage).Div(oneHundred)
	discountAmount := subtotal.Mul(req.DiscountPercentage).Div(oneHundred)
	totalAmount := subtotal.Add(gstAmount).Sub(discountAmount)

	var created *Invoice
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := repo.GenerateNumber(ctx, s.now())
		if err != nil {
			return fmt.Errorf("generate invoice number: %w", err)
		}

		created, err = repo.CreateInvoice(ctx, Invoice{
			Number:             number,
			PendingOrderID:     order.ID,
			GSTPercentage:      req.GSTPercentage,
			DiscountPercentage: req.DiscountPercentage,
			Subtotal:           subtotal,
			GSTAmount:          gstAmount,
			DiscountAmount:     discountAmount,
			TotalAmount:        totalAmount,
			DueDate:            req.DueDate,
			Remarks:            req.Remarks,
			Terms:              req.Terms,
		})
		if err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}

		swapped, err := repo.MarkOrderBilled(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("mark order billed: %w", err)
		}
		if !swapped {
			// Another finalization won between our read and this write.
			return ErrDuplicateInvoice
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateInvoice) {
			return nil, s.alreadyBilled(ctx, order.ID)
		}
		return nil, err
	}

	return created, nil
}

// alreadyBilled builds the user-facing error, attaching the winning invoice
// id when it is visible.
func (s *Service) alreadyBilled(ctx context.Context, orderID int64) error {
	existing, err := s.repo.GetInvoiceByOrder(ctx, orderID)
	if err != nil {
		return &AlreadyBilledError{OrderID: orderID}
	}
	return &AlreadyBilledError{OrderID: orderID, InvoiceID: existing.ID}
}

func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) GetByOrder(ctx context.Context, orderID int64) (*Invoice, error) {
	return s.repo.GetInvoiceByOrder(ctx, orderID)
}

func (s *Service) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, err
	}
	if req.Limit == 0 {
		req.Limit = 50
	}
	return s.repo.ListInvoices(ctx, req)
}
