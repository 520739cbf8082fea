package billing

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
	// ErrNotFound indicates invoice not found.
	ErrNotFound = errors.New("billing: invoice not found")
	// ErrDuplicateInvoice indicates the unique pending_order_id constraint
	// rejected a second invoice for the same order.
	ErrDuplicateInvoice = errors.New("billing: invoice already exists for order")
)

// Repository persists invoices. The order status transition lives here too
// so that invoice insert and status compare-and-swap share one transaction.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	CreateInvoice(ctx context.Context, inv Invoice) (*Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*Invoice, error)
	GetInvoiceByOrder(ctx context.Context, orderID int64) (*Invoice, error)
	ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error)
	// MarkOrderBilled flips the order to billed only when it is still
	// pending, reporting whether the swap happened.
	MarkOrderBilled(ctx context.Context, orderID int64) (bool, error)
	GenerateNumber(ctx context.Context, at time.Time) (string, error)
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

const invoiceColumns = `id, number, pending_order_id, gst_percentage, discount_percentage,
       subtotal, gst_amount, discount_amount, total_amount, due_date, remarks, terms, created_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.PendingOrderID, &inv.GSTPercentage, &inv.DiscountPercentage,
		&inv.Subtotal, &inv.GSTAmount, &inv.DiscountAmount, &inv.TotalAmount,
		&inv.DueDate, &inv.Remarks, &inv.Terms, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *repository) CreateInvoice(ctx context.Context, inv Invoice) (*Invoice, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO invoices (
			number, pending_order_id, gst_percentage, discount_percentage,
			subtotal, gst_amount, discount_amount, total_amount,
			due_date, remarks, terms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING id, created_at`,
		inv.Number, inv.PendingOrderID, inv.GSTPercentage, inv.DiscountPercentage,
		inv.Subtotal, inv.GSTAmount, inv.DiscountAmount, inv.TotalAmount,
		inv.DueDate, inv.Remarks, inv.Terms,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		if isDuplicateOrderInvoice(err) {
			return nil, ErrDuplicateInvoice
		}
		return nil, err
	}
	return &inv, nil
}

// isDuplicateOrderInvoice reports whether err is the one-invoice-per-order
// index rejecting the insert. Other unique violations, such as an invoice
// number collision, are not billing conflicts and surface unchanged.
func isDuplicateOrderInvoice(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == "23505" &&
		pgErr.ConstraintName == "uq_invoices_pending_order"
}

func (r *repository) GetInvoice(ctx context.Context, id int64) (*Invoice, error) {
	return scanInvoice(r.db.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
}

func (r *repository) GetInvoiceByOrder(ctx context.Context, orderID int64) (*Invoice, error) {
	return scanInvoice(r.db.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE pending_order_id = $1`, orderID))
}

func (r *repository) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	conditions = append(conditions, "1=1")
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM invoices %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM invoices
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, invoiceColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(
			&inv.ID, &inv.Number, &inv.PendingOrderID, &inv.GSTPercentage, &inv.DiscountPercentage,
			&inv.Subtotal, &inv.GSTAmount, &inv.DiscountAmount, &inv.TotalAmount,
			&inv.DueDate, &inv.Remarks, &inv.Terms, &inv.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}

func (r *repository) MarkOrderBilled(ctx context.Context, orderID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE pending_orders SET status = 'billed', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`, orderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repository) GenerateNumber(ctx context.Context, at time.Time) (string, error) {
	// INV-{YY}{MM}-{SEQ}
	var seq int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, "INV", at.Format("200601")).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%s-%04d", at.Format("0601"), seq), nil
}
