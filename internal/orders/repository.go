package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-erp/atelier-erp/internal/platform/db"
)

var (
	// ErrNotFound indicates order not found.
	ErrNotFound = errors.New("orders: not found")
	// ErrDuplicateToken indicates a token number already in use.
	ErrDuplicateToken = errors.New("orders: duplicate token number")
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*PendingOrder, error)
	GetByToken(ctx context.Context, token string) (*PendingOrder, error)
	List(ctx context.Context, req ListOrdersRequest) ([]PendingOrder, int, error)
	Create(ctx context.Context, order PendingOrder) (int64, error)
	InsertItem(ctx context.Context, item LineItem) (int64, error)
	Delete(ctx context.Context, id int64) error
	// ExpireStale persists expiry for pending orders created before the
	// cutoff and returns how many rows transitioned.
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
	GenerateToken(ctx context.Context, at time.Time) (string, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const orderColumns = `id, token_number, customer_name, customer_mobile, customer_email,
       master_id, salesman_id, order_type, status, created_at, updated_at`

func (r *repository) scanOrder(row pgx.Row) (*PendingOrder, error) {
	var o PendingOrder
	err := row.Scan(
		&o.ID, &o.TokenNumber, &o.CustomerName, &o.CustomerMobile, &o.CustomerEmail,
		&o.MasterID, &o.SalesmanID, &o.OrderType, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *repository) loadItems(ctx context.Context, orderID int64) ([]LineItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, item_type_id, fabric_id, style_id, quantity,
		       fabric_meters, design_number, description, line_order
		FROM order_items WHERE order_id = $1 ORDER BY line_order, id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ItemTypeID, &it.FabricID, &it.StyleID,
			&it.Quantity, &it.FabricMeters, &it.DesignNumber, &it.Description, &it.LineOrder,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*PendingOrder, error) {
	o, err := r.scanOrder(r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM pending_orders WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	o.Items, err = r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) GetByToken(ctx context.Context, token string) (*PendingOrder, error) {
	o, err := r.scanOrder(r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM pending_orders WHERE token_number = $1`, token))
	if err != nil {
		return nil, err
	}
	o.Items, err = r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) List(ctx context.Context, req ListOrdersRequest) ([]PendingOrder, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	conditions = append(conditions, "1=1")
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("po.status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(po.token_number ILIKE $%d OR po.customer_name ILIKE $%d OR po.customer_mobile ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}
	if req.RecentSince != nil {
		// Pending orders older than the cutoff are treated as expired in this
		// view without touching the row.
		conditions = append(conditions, fmt.Sprintf("(po.status <> 'pending' OR po.created_at >= $%d)", argPos))
		args = append(args, *req.RecentSince)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM pending_orders po %s", whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT po.id, po.token_number, po.customer_name, po.customer_mobile, po.customer_email,
		       po.master_id, po.salesman_id, po.order_type, po.status, po.created_at, po.updated_at
		FROM pending_orders po
		%s
		ORDER BY po.created_at DESC, po.id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []PendingOrder
	for rows.Next() {
		var o PendingOrder
		if err := rows.Scan(
			&o.ID, &o.TokenNumber, &o.CustomerName, &o.CustomerMobile, &o.CustomerEmail,
			&o.MasterID, &o.SalesmanID, &o.OrderType, &o.Status, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, o PendingOrder) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO pending_orders (
			token_number, customer_name, customer_mobile, customer_email,
			master_id, salesman_id, order_type, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', NOW(), NOW())
		RETURNING id`,
		o.TokenNumber, o.CustomerName, o.CustomerMobile, o.CustomerEmail,
		o.MasterID, o.SalesmanID, o.OrderType,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateToken
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) InsertItem(ctx context.Context, item LineItem) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO order_items (
			order_id, item_type_id, fabric_id, style_id, quantity,
			fabric_meters, design_number, description, line_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		item.OrderID, item.ItemTypeID, item.FabricID, item.StyleID, item.Quantity,
		item.FabricMeters, item.DesignNumber, item.Description, item.LineOrder,
	).Scan(&id)
	return id, err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM pending_orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE pending_orders SET status = 'expired', updated_at = NOW()
		WHERE status = 'pending' AND created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repository) GenerateToken(ctx context.Context, at time.Time) (string, error) {
	// ORD-{YY}{MM}-{SEQ}. The sequence row keeps tokens monotonic even after
	// order deletions free up earlier numbers.
	var seq int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, "ORD", at.Format("200601")).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%04d", at.Format("0601"), seq), nil
}
