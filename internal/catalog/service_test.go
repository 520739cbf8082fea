package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	fabrics    map[int64]*Fabric
	itemTypes  map[int64]*ItemType
	styles     map[int64]*Style
	categories map[int64]*Category
	nextID     int64

	listFabricCalls   int
	listItemTypeCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		fabrics:    make(map[int64]*Fabric),
		itemTypes:  make(map[int64]*ItemType),
		styles:     make(map[int64]*Style),
		categories: make(map[int64]*Category),
		nextID:     1,
	}
}

func (m *mockRepository) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *mockRepository) ListFabrics(ctx context.Context, filters ListFilters) ([]Fabric, int, error) {
	m.listFabricCalls++
	result := []Fabric{}
	for _, f := range m.fabrics {
		result = append(result, *f)
	}
	return result, len(result), nil
}

func (m *mockRepository) GetFabric(ctx context.Context, id int64) (*Fabric, error) {
	f, ok := m.fabrics[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f, nil
}

func (m *mockRepository) CreateFabric(ctx context.Context, f Fabric) (*Fabric, error) {
	for _, existing := range m.fabrics {
		if existing.Name == f.Name {
			return nil, ErrDuplicateName
		}
	}
	f.ID = m.id()
	f.IsActive = true
	m.fabrics[f.ID] = &f
	return &f, nil
}

func (m *mockRepository) UpdateFabric(ctx context.Context, id int64, req UpdateFabricRequest) error {
	f, ok := m.fabrics[id]
	if !ok {
		return ErrNotFound
	}
	if req.Name != nil {
		f.Name = *req.Name
	}
	if req.PricePerMeter != nil {
		f.PricePerMeter = *req.PricePerMeter
	}
	if req.IsActive != nil {
		f.IsActive = *req.IsActive
	}
	return nil
}

func (m *mockRepository) DeleteFabric(ctx context.Context, id int64) error {
	if _, ok := m.fabrics[id]; !ok {
		return ErrNotFound
	}
	delete(m.fabrics, id)
	return nil
}

func (m *mockRepository) ListItemTypes(ctx context.Context, filters ListFilters) ([]ItemType, int, error) {
	m.listItemTypeCalls++
	result := []ItemType{}
	for _, it := range m.itemTypes {
		result = append(result, *it)
	}
	return result, len(result), nil
}

func (m *mockRepository) GetItemType(ctx context.Context, id int64) (*ItemType, error) {
	it, ok := m.itemTypes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return it, nil
}

func (m *mockRepository) CreateItemType(ctx context.Context, it ItemType) (*ItemType, error) {
	it.ID = m.id()
	it.IsActive = true
	m.itemTypes[it.ID] = &it
	return &it, nil
}

func (m *mockRepository) UpdateItemType(ctx context.Context, id int64, req UpdateItemTypeRequest) error {
	it, ok := m.itemTypes[id]
	if !ok {
		return ErrNotFound
	}
	if req.Name != nil {
		it.Name = *req.Name
	}
	if req.StitchingCharge != nil {
		it.StitchingCharge = *req.StitchingCharge
	}
	if req.IsActive != nil {
		it.IsActive = *req.IsActive
	}
	return nil
}

func (m *mockRepository) DeleteItemType(ctx context.Context, id int64) error {
	if _, ok := m.itemTypes[id]; !ok {
		return ErrNotFound
	}
	delete(m.itemTypes, id)
	return nil
}

func (m *mockRepository) ListStyles(ctx context.Context, filters ListFilters) ([]Style, int, error) {
	result := []Style{}
	for _, s := range m.styles {
		result = append(result, *s)
	}
	return result, len(result), nil
}

func (m *mockRepository) GetStyle(ctx context.Context, id int64) (*Style, error) {
	s, ok := m.styles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *mockRepository) CreateStyle(ctx context.Context, s Style) (*Style, error) {
	s.ID = m.id()
	m.styles[s.ID] = &s
	return &s, nil
}

func (m *mockRepository) UpdateStyle(ctx context.Context, id int64, req UpdateStyleRequest) error {
	s, ok := m.styles[id]
	if !ok {
		return ErrNotFound
	}
	if req.Name != nil {
		s.Name = *req.Name
	}
	if req.CategoryID != nil {
		s.CategoryID = req.CategoryID
	}
	return nil
}

func (m *mockRepository) DeleteStyle(ctx context.Context, id int64) error {
	if _, ok := m.styles[id]; !ok {
		return ErrNotFound
	}
	delete(m.styles, id)
	return nil
}

func (m *mockRepository) ListCategories(ctx context.Context) ([]Category, error) {
	result := []Category{}
	for _, c := range m.categories {
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockRepository) CreateCategory(ctx context.Context, c Category) (*Category, error) {
	c.ID = m.id()
	m.categories[c.ID] = &c
	return &c, nil
}

func (m *mockRepository) DeleteCategory(ctx context.Context, id int64) error {
	if _, ok := m.categories[id]; !ok {
		return ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockRepository) ResolveRates(ctx context.Context, fabricIDs, itemTypeIDs []int64) (*RateSet, error) {
	rates := &RateSet{
		FabricRates:    make(map[int64]decimal.Decimal),
		StitchingRates: make(map[int64]decimal.Decimal),
	}
	for _, id := range fabricIDs {
		f, ok := m.fabrics[id]
		if !ok {
			return nil, ErrFabricNotFound
		}
		rates.FabricRates[id] = f.PricePerMeter
	}
	for _, id := range itemTypeIDs {
		it, ok := m.itemTypes[id]
		if !ok {
			return nil, ErrItemTypeNotFound
		}
		rates.StitchingRates[id] = it.StitchingCharge
	}
	return rates, nil
}

// ============================================================================
// TESTS
// ============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateFabric(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, nil)

	f, err := service.CreateFabric(context.Background(), CreateFabricRequest{
		Name:          "Raw Silk",
		PricePerMeter: dec("350.50"),
	})
	require.NoError(t, err)
	assert.True(t, f.PricePerMeter.Equal(dec("350.50")))
	assert.True(t, f.IsActive)
}

func TestCreateFabricRejectsNegativeRate(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, nil)

	_, err := service.CreateFabric(context.Background(), CreateFabricRequest{
		Name:          "Raw Silk",
		PricePerMeter: dec("-5"),
	})
	assert.ErrorIs(t, err, ErrNegativeRate)
}

func TestCreateFabricRejectsDuplicateName(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, nil)
	ctx := context.Background()

	_, err := service.CreateFabric(ctx, CreateFabricRequest{Name: "Linen", PricePerMeter: dec("120")})
	require.NoError(t, err)

	_, err = service.CreateFabric(ctx, CreateFabricRequest{Name: "Linen", PricePerMeter: dec("130")})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestUpdateItemTypeRejectsNegativeCharge(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, nil)
	ctx := context.Background()

	it, err := service.CreateItemType(ctx, CreateItemTypeRequest{Name: "Kurta", StitchingCharge: dec("150")})
	require.NoError(t, err)

	negative := dec("-1")
	_, err = service.UpdateItemType(ctx, it.ID, UpdateItemTypeRequest{StitchingCharge: &negative})
	assert.ErrorIs(t, err, ErrNegativeRate)
}

func TestUpdateItemTypeCharge(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, nil)
	ctx := context.Background()

	it, err := service.CreateItemType(ctx, CreateItemTypeRequest{Name: "Kurta", StitchingCharge: dec("150")})
	require.NoError(t, err)

	doubled := dec("300")
	updated, err := service.UpdateItemType(ctx, it.ID, UpdateItemTypeRequest{StitchingCharge: &doubled})
	require.NoError(t, err)
	assert.True(t, updated.StitchingCharge.Equal(doubled))
}

func TestResolveRatesReflectsCurrentCatalog(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, nil)
	ctx := context.Background()

	fabric, err := service.CreateFabric(ctx, CreateFabricRequest{Name: "Cotton", PricePerMeter: dec("200")})
	require.NoError(t, err)
	it, err := service.CreateItemType(ctx, CreateItemTypeRequest{Name: "Shirt", StitchingCharge: dec("100")})
	require.NoError(t, err)

	rates, err := service.ResolveRates(ctx, []int64{fabric.ID}, []int64{it.ID})
	require.NoError(t, err)
	assert.True(t, rates.FabricRates[fabric.ID].Equal(dec("200")))

	// a rate change is visible on the next resolution
	raised := dec("250")
	_, err = service.UpdateFabric(ctx, fabric.ID, UpdateFabricRequest{PricePerMeter: &raised})
	require.NoError(t, err)

	rates, err = service.ResolveRates(ctx, []int64{fabric.ID}, []int64{it.ID})
	require.NoError(t, err)
	assert.True(t, rates.FabricRates[fabric.ID].Equal(raised))
}

func TestResolveRatesMissingReferences(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, nil)
	ctx := context.Background()

	_, err := service.ResolveRates(ctx, []int64{99}, nil)
	assert.ErrorIs(t, err, ErrFabricNotFound)

	_, err = service.ResolveRates(ctx, nil, []int64{99})
	assert.ErrorIs(t, err, ErrItemTypeNotFound)
}

func TestStyleContributesNoRate(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, nil)
	ctx := context.Background()

	_, err := service.CreateStyle(ctx, CreateStyleRequest{Name: "Band Collar"})
	require.NoError(t, err)

	rates, err := service.ResolveRates(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, rates.FabricRates)
	assert.Empty(t, rates.StitchingRates)
}
