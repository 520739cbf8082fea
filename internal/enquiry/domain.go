package enquiry

import (
	"time"
)

// Enquiry is a customer message captured from the public site's enquiry and
// quote-request forms.
type Enquiry struct {
	ID        int64     `json:"id" db:"id"`
	Reference string    `json:"reference" db:"reference"`
	Name      string    `json:"name" db:"name"`
	Mobile    string    `json:"mobile" db:"mobile"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Subject   string    `json:"subject" db:"subject"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CreateEnquiryRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Mobile  string  `json:"mobile" validate:"required,max=20"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Subject string  `json:"subject" validate:"required,max=200"`
	Message string  `json:"message" validate:"required,max=4000"`
}

type ListEnquiriesRequest struct {
	Search *string `json:"search,omitempty"`
	Limit  int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset int     `json:"offset" validate:"gte=0"`
}
