package catalog

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("catalog: not found")
	// ErrFabricNotFound indicates a fabric id that does not exist at lookup time.
	ErrFabricNotFound = errors.New("catalog: fabric not found")
	// ErrItemTypeNotFound indicates an item type id that does not exist at lookup time.
	ErrItemTypeNotFound = errors.New("catalog: item type not found")
	// ErrDuplicateName indicates a unique-name violation.
	ErrDuplicateName = errors.New("catalog: duplicate name")
)

type Repository interface {
	ListFabrics(ctx context.Context, filters ListFilters) ([]Fabric, int, error)
	GetFabric(ctx context.Context, id int64) (*Fabric, error)
	CreateFabric(ctx context.Context, f Fabric) (*Fabric, error)
	UpdateFabric(ctx context.Context, id int64, req UpdateFabricRequest) error
	DeleteFabric(ctx context.Context, id int64) error

	ListItemTypes(ctx context.Context, filters ListFilters) ([]ItemType, int, error)
	GetItemType(ctx context.Context, id int64) (*ItemType, error)
	CreateItemType(ctx context.Context, it ItemType) (*ItemType, error)
	UpdateItemType(ctx context.Context, id int64, req UpdateItemTypeRequest) error
	DeleteItemType(ctx context.Context, id int64) error

	ListStyles(ctx context.Context, filters ListFilters) ([]Style, int, error)
	GetStyle(ctx context.Context, id int64) (*Style, error)
	CreateStyle(ctx context.Context, s Style) (*Style, error)
	UpdateStyle(ctx context.Context, id int64, req UpdateStyleRequest) error
	DeleteStyle(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, c Category) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ResolveRates(ctx context.Context, fabricIDs, itemTypeIDs []int64) (*RateSet, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// --- Fabrics ---

func (r *repository) ListFabrics(ctx context.Context, filters ListFilters) ([]Fabric, int, error) {
	query := `SELECT id, name, price_per_meter, is_active, created_at, updated_at FROM fabrics WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM fabrics WHERE 1=1`
	args := []interface{}{}
	countArgs := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND name ILIKE $` + strconv.Itoa(argCount)
		countQuery += ` AND name ILIKE $1`
		args = append(args, "%"+filters.Search+"%")
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ASC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var fabrics []Fabric
	for rows.Next() {
		var f Fabric
		if err := rows.Scan(&f.ID, &f.Name, &f.PricePerMeter, &f.IsActive, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, 0, err
		}
		fabrics = append(fabrics, f)
	}
	return fabrics, total, rows.Err()
}

func (r *repository) GetFabric(ctx context.Context, id int64) (*Fabric, error) {
	var f Fabric
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, price_per_meter, is_active, created_at, updated_at FROM fabrics WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.Name, &f.PricePerMeter, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFabricNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *repository) CreateFabric(ctx context.Context, f Fabric) (*Fabric, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO fabrics (name, price_per_meter, is_active, created_at, updated_at)
		VALUES ($1, $2, TRUE, NOW(), NOW())
		RETURNING id, is_active, created_at, updated_at`,
		f.Name, f.PricePerMeter,
	).Scan(&f.ID, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return &f, nil
}

func (r *repository) UpdateFabric(ctx context.Context, id int64, req UpdateFabricRequest) error {
	query := `UPDATE fabrics SET updated_at = NOW()`
	args := []interface{}{}
	argPos := 0

	if req.Name != nil {
		argPos++
		query += `, name = $` + strconv.Itoa(argPos)
		args = append(args, *req.Name)
	}
	if req.PricePerMeter != nil {
		argPos++
		query += `, price_per_meter = $` + strconv.Itoa(argPos)
		args = append(args, *req.PricePerMeter)
	}
	if req.IsActive != nil {
		argPos++
		query += `, is_active = $` + strconv.Itoa(argPos)
		args = append(args, *req.IsActive)
	}

	argPos++
	query += ` WHERE id = $` + strconv.Itoa(argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFabricNotFound
	}
	return nil
}

func (r *repository) DeleteFabric(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM fabrics WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFabricNotFound
	}
	return nil
}

// --- Item types ---

func (r *repository) ListItemTypes(ctx context.Context, filters ListFilters) ([]ItemType, int, error) {
	query := `SELECT id, name, stitching_charge, is_active, created_at, updated_at FROM item_types WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM item_types WHERE 1=1`
	args := []interface{}{}
	countArgs := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND name ILIKE $` + strconv.Itoa(argCount)
		countQuery += ` AND name ILIKE $1`
		args = append(args, "%"+filters.Search+"%")
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ASC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var itemTypes []ItemType
	for rows.Next() {
		var it ItemType
		if err := rows.Scan(&it.ID, &it.Name, &it.StitchingCharge, &it.IsActive, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, 0, err
		}
		itemTypes = append(itemTypes, it)
	}
	return itemTypes, total, rows.Err()
}

func (r *repository) GetItemType(ctx context.Context, id int64) (*ItemType, error) {
	var it ItemType
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, stitching_charge, is_active, created_at, updated_at FROM item_types WHERE id = $1`,
		id,
	).Scan(&it.ID, &it.Name, &it.StitchingCharge, &it.IsActive, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemTypeNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *repository) CreateItemType(ctx context.Context, it ItemType) (*ItemType, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO item_types (name, stitching_charge, is_active, created_at, updated_at)
		VALUES ($1, $2, TRUE, NOW(), NOW())
		RETURNING id, is_active, created_at, updated_at`,
		it.Name, it.StitchingCharge,
	).Scan(&it.ID, &it.IsActive, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return &it, nil
}

func (r *repository) UpdateItemType(ctx context.Context, id int64, req UpdateItemTypeRequest) error {
	query := `UPDATE item_types SET updated_at = NOW()`
	args := []interface{}{}
	argPos := 0

	if req.Name != nil {
		argPos++
		query += `, name = $` + strconv.Itoa(argPos)
		args = append(args, *req.Name)
	}
	if req.StitchingCharge != nil {
		argPos++
		query += `, stitching_charge = $` + strconv.Itoa(argPos)
		args = append(args, *req.StitchingCharge)
	}
	if req.IsActive != nil {
		argPos++
		query += `, is_active = $` + strconv.Itoa(argPos)
		args = append(args, *req.IsActive)
	}

	argPos++
	query += ` WHERE id = $` + strconv.Itoa(argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemTypeNotFound
	}
	return nil
}

func (r *repository) DeleteItemType(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM item_types WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemTypeNotFound
	}
	return nil
}

// --- Styles ---

func (r *repository) ListStyles(ctx context.Context, filters ListFilters) ([]Style, int, error) {
	query := `SELECT id, name, category_id, created_at, updated_at FROM styles WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM styles WHERE 1=1`
	args := []interface{}{}
	countArgs := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND name ILIKE $` + strconv.Itoa(argCount)
		countQuery += ` AND name ILIKE $1`
		args = append(args, "%"+filters.Search+"%")
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ASC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var styles []Style
	for rows.Next() {
		var s Style
		if err := rows.Scan(&s.ID, &s.Name, &s.CategoryID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		styles = append(styles, s)
	}
	return styles, total, rows.Err()
}

func (r *repository) GetStyle(ctx context.Context, id int64) (*Style, error) {
	var s Style
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, category_id, created_at, updated_at FROM styles WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.Name, &s.CategoryID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) CreateStyle(ctx context.Context, s Style) (*Style, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO styles (name, category_id, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		s.Name, s.CategoryID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) UpdateStyle(ctx context.Context, id int64, req UpdateStyleRequest) error {
	query := `UPDATE styles SET updated_at = NOW()`
	args := []interface{}{}
	argPos := 0

	if req.Name != nil {
		argPos++
		query += `, name = $` + strconv.Itoa(argPos)
		args = append(args, *req.Name)
	}
	if req.CategoryID != nil {
		argPos++
		query += `, category_id = $` + strconv.Itoa(argPos)
		args = append(args, *req.CategoryID)
	}

	argPos++
	query += ` WHERE id = $` + strconv.Itoa(argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteStyle(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM styles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Categories ---

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *repository) CreateCategory(ctx context.Context, c Category) (*Category, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO categories (name, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		c.Name,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Rate resolution ---

// ResolveRates loads the current fabric and stitching rates for the given id
// sets in one round trip each. A missing id is an error, never a zero rate.
func (r *repository) ResolveRates(ctx context.Context, fabricIDs, itemTypeIDs []int64) (*RateSet, error) {
	rates := &RateSet{
		FabricRates:    make(map[int64]decimal.Decimal, len(fabricIDs)),
		StitchingRates: make(map[int64]decimal.Decimal, len(itemTypeIDs)),
	}

	if len(fabricIDs) > 0 {
		rows, err := r.pool.Query(ctx,
			`SELECT id, price_per_meter FROM fabrics WHERE id = ANY($1)`, fabricIDs)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		for rows.Next() {
			var id int64
			var rate decimal.Decimal
			if err := rows.Scan(&id, &rate); err != nil {
				return nil, err
			}
			rates.FabricRates[id] = rate
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		for _, id := range fabricIDs {
			if _, ok := rates.FabricRates[id]; !ok {
				return nil, ErrFabricNotFound
			}
		}
	}

	if len(itemTypeIDs) > 0 {
		rows, err := r.pool.Query(ctx,
			`SELECT id, stitching_charge FROM item_types WHERE id = ANY($1)`, itemTypeIDs)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		for rows.Next() {
			var id int64
			var rate decimal.Decimal
			if err := rows.Scan(&id, &rate); err != nil {
				return nil, err
			}
			rates.StitchingRates[id] = rate
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		for _, id := range itemTypeIDs {
			if _, ok := rates.StitchingRates[id]; !ok {
				return nil, ErrItemTypeNotFound
			}
		}
	}

	return rates, nil
}
