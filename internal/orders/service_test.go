package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	orders  map[int64]*PendingOrder
	items   map[int64][]LineItem
	byToken map[string]int64

	nextOrderID int64
	nextItemID  int64
	seq         int

	txError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		orders:      make(map[int64]*PendingOrder),
		items:       make(map[int64][]LineItem),
		byToken:     make(map[string]int64),
		nextOrderID: 1,
		nextItemID:  1,
	}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if m.txError != nil {
		return m.txError
	}
	return fn(ctx, m)
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*PendingOrder, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	cp.Items = m.items[id]
	return &cp, nil
}

func (m *mockRepository) GetByToken(ctx context.Context, token string) (*PendingOrder, error) {
	id, ok := m.byToken[token]
	if !ok {
		return nil, ErrNotFound
	}
	return m.Get(ctx, id)
}

func (m *mockRepository) List(ctx context.Context, req ListOrdersRequest) ([]PendingOrder, int, error) {
	result := []PendingOrder{}
	for _, o := range m.orders {
		if req.Status != nil && o.Status != *req.Status {
			continue
		}
		if req.RecentSince != nil && o.Status == StatusPending && o.CreatedAt.Before(*req.RecentSince) {
			continue
		}
		result = append(result, *o)
	}
	return result, len(result), nil
}

func (m *mockRepository) Create(ctx context.Context, order PendingOrder) (int64, error) {
	if _, exists := m.byToken[order.TokenNumber]; exists {
		return 0, ErrDuplicateToken
	}
	order.ID = m.nextOrderID
	m.nextOrderID++
	order.Status = StatusPending
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	m.orders[order.ID] = &order
	m.byToken[order.TokenNumber] = order.ID
	return order.ID, nil
}

func (m *mockRepository) InsertItem(ctx context.Context, item LineItem) (int64, error) {
	item.ID = m.nextItemID
	m.nextItemID++
	m.items[item.OrderID] = append(m.items[item.OrderID], item)
	return item.ID, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.byToken, o.TokenNumber)
	delete(m.orders, id)
	delete(m.items, id)
	return nil
}

func (m *mockRepository) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for _, o := range m.orders {
		if o.Status == StatusPending && o.CreatedAt.Before(cutoff) {
			o.Status = StatusExpired
			n++
		}
	}
	return n, nil
}

func (m *mockRepository) GenerateToken(ctx context.Context, at time.Time) (string, error) {
	m.seq++
	return fmt.Sprintf("ORD-%s-%04d", at.Format("0601"), m.seq), nil
}

// ============================================================================
// FIXTURES
// ============================================================================

func strPtr(s string) *string { return &s }

func createReq() CreateOrderRequest {
	return CreateOrderRequest{
		CustomerName:   "Anita Desai",
		CustomerMobile: "9812345678",
		CustomerEmail:  strPtr("anita@example.com"),
		MasterID:       3,
		SalesmanID:     7,
		OrderType:      "regular",
		Items: []CreateLineItemRequest{
			{ItemTypeID: 1, Quantity: 2},
			{ItemTypeID: 2, Quantity: 1, FabricMeters: decimal.RequireFromString("3.5")},
		},
	}
}

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	service := NewService(repo, ServiceConfig{RecentWindow: 24 * time.Hour})
	return service, repo
}

// ============================================================================
// CREATE
// ============================================================================

func TestCreateGeneratesToken(t *testing.T) {
	service, _ := newTestService()
	fixed := time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC)
	service.WithClock(func() time.Time { return fixed })

	order, err := service.Create(context.Background(), createReq())
	require.NoError(t, err)

	assert.Equal(t, "ORD-2501-0001", order.TokenNumber)
	assert.Equal(t, StatusPending, order.Status)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 1, order.Items[0].LineOrder)
	assert.Equal(t, 2, order.Items[1].LineOrder)
}

func TestCreateKeepsExplicitToken(t *testing.T) {
	service, _ := newTestService()

	req := createReq()
	req.TokenNumber = "WALK-IN-42"
	order, err := service.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "WALK-IN-42", order.TokenNumber)
}

func TestCreateRejectsDuplicateToken(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	req := createReq()
	req.TokenNumber = "WALK-IN-42"
	_, err := service.Create(ctx, req)
	require.NoError(t, err)

	_, err = service.Create(ctx, req)
	assert.ErrorIs(t, err, ErrDuplicateToken)
}

func TestCreateRequiresItems(t *testing.T) {
	service, _ := newTestService()

	req := createReq()
	req.Items = nil
	_, err := service.Create(context.Background(), req)
	assert.Error(t, err)
}

func TestCreateRejectsNegativeMeters(t *testing.T) {
	service, repo := newTestService()

	req := createReq()
	req.Items[1].FabricMeters = decimal.RequireFromString("-1")
	_, err := service.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrNegativeMeters)
	assert.Empty(t, repo.orders)
}

func TestCreateRejectsZeroQuantity(t *testing.T) {
	service, _ := newTestService()

	req := createReq()
	req.Items[0].Quantity = 0
	_, err := service.Create(context.Background(), req)
	assert.Error(t, err)
}

// ============================================================================
// DELETE
// ============================================================================

func TestCreateAfterDeleteIssuesFreshToken(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	fixed := time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC)
	service.WithClock(func() time.Time { return fixed })

	first, err := service.Create(ctx, createReq())
	require.NoError(t, err)
	assert.Equal(t, "ORD-2501-0001", first.TokenNumber)

	require.NoError(t, service.Delete(ctx, first.ID))

	// the sequence does not reuse numbers freed by the deletion
	second, err := service.Create(ctx, createReq())
	require.NoError(t, err)
	assert.Equal(t, "ORD-2501-0002", second.TokenNumber)
	assert.NotContains(t, repo.byToken, first.TokenNumber)
}

func TestDeletePendingOrder(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()

	order, err := service.Create(ctx, createReq())
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, order.ID))
	assert.Empty(t, repo.orders)
}

func TestDeleteBilledOrderForbidden(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()

	order, err := service.Create(ctx, createReq())
	require.NoError(t, err)

	repo.orders[order.ID].Status = StatusBilled

	err = service.Delete(ctx, order.ID)
	assert.ErrorIs(t, err, ErrOrderBilled)
	assert.Len(t, repo.orders, 1, "billed order must survive")
}

func TestDeleteMissingOrder(t *testing.T) {
	service, _ := newTestService()

	err := service.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

// ============================================================================
// RECENCY AND EXPIRY
// ============================================================================

func seedOrder(repo *mockRepository, token string, status OrderStatus, createdAt time.Time) *PendingOrder {
	o := &PendingOrder{
		ID:             repo.nextOrderID,
		TokenNumber:    token,
		CustomerName:   "Seed",
		CustomerMobile: "9000000000",
		Status:         status,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	repo.nextOrderID++
	repo.orders[o.ID] = o
	repo.byToken[token] = o.ID
	return o
}

func TestListRecentHidesStalePending(t *testing.T) {
	service, repo := newTestService()
	now := time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC)
	service.WithClock(func() time.Time { return now })

	seedOrder(repo, "FRESH", StatusPending, now.Add(-2*time.Hour))
	seedOrder(repo, "STALE", StatusPending, now.Add(-30*time.Hour))
	seedOrder(repo, "OLD-BILLED", StatusBilled, now.Add(-72*time.Hour))

	listed, total, err := service.List(context.Background(), ListOrdersRequest{}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	tokens := make(map[string]bool)
	for _, o := range listed {
		tokens[o.TokenNumber] = true
	}
	assert.True(t, tokens["FRESH"])
	assert.True(t, tokens["OLD-BILLED"], "non-pending orders are never hidden by recency")
	assert.False(t, tokens["STALE"])

	// stale row untouched by the read-side filter
	stale, err := service.GetByToken(context.Background(), "STALE")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stale.Status)
}

func TestListAllIncludesStalePending(t *testing.T) {
	service, repo := newTestService()
	now := time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC)
	service.WithClock(func() time.Time { return now })

	seedOrder(repo, "STALE", StatusPending, now.Add(-30*time.Hour))

	_, total, err := service.List(context.Background(), ListOrdersRequest{}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestExpireStaleTransitionsOldPending(t *testing.T) {
	service, repo := newTestService()
	now := time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC)
	service.WithClock(func() time.Time { return now })

	seedOrder(repo, "FRESH", StatusPending, now.Add(-1*time.Hour))
	stale := seedOrder(repo, "STALE", StatusPending, now.Add(-25*time.Hour))
	billed := seedOrder(repo, "BILLED", StatusBilled, now.Add(-48*time.Hour))

	n, err := service.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.Equal(t, StatusExpired, repo.orders[stale.ID].Status)
	assert.Equal(t, StatusBilled, repo.orders[billed.ID].Status)
}
