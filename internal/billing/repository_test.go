package billing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateOrderInvoice(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "order unique index violation",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "uq_invoices_pending_order"},
			want: true,
		},
		{
			name: "wrapped order unique index violation",
			err:  fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "uq_invoices_pending_order"}),
			want: true,
		},
		{
			name: "invoice number collision",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "invoices_number_key"},
			want: false,
		},
		{
			name: "foreign key violation",
			err:  &pgconn.PgError{Code: "23503", ConstraintName: "invoices_pending_order_id_fkey"},
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("connection reset"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateOrderInvoice(tt.err))
		})
	}
}
