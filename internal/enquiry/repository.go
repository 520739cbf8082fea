package enquiry

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates enquiry not found.
var ErrNotFound = errors.New("enquiry: not found")

type Repository interface {
	Create(ctx context.Context, e Enquiry) (*Enquiry, error)
	Get(ctx context.Context, id int64) (*Enquiry, error)
	List(ctx context.Context, req ListEnquiriesRequest) ([]Enquiry, int, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, e Enquiry) (*Enquiry, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO enquiries (reference, name, mobile, email, subject, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at`,
		e.Reference, e.Name, e.Mobile, e.Email, e.Subject, e.Message,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Enquiry, error) {
	var e Enquiry
	err := r.pool.QueryRow(ctx, `
		SELECT id, reference, name, mobile, email, subject, message, created_at
		FROM enquiries WHERE id = $1`, id,
	).Scan(&e.ID, &e.Reference, &e.Name, &e.Mobile, &e.Email, &e.Subject, &e.Message, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *repository) List(ctx context.Context, req ListEnquiriesRequest) ([]Enquiry, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	conditions = append(conditions, "1=1")
	if req.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR mobile ILIKE $%d OR subject ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM enquiries %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, reference, name, mobile, email, subject, message, created_at
		FROM enquiries %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var enquiries []Enquiry
	for rows.Next() {
		var e Enquiry
		if err := rows.Scan(&e.ID, &e.Reference, &e.Name, &e.Mobile, &e.Email, &e.Subject, &e.Message, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		enquiries = append(enquiries, e)
	}
	return enquiries, total, rows.Err()
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM enquiries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
