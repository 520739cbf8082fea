package enquiry

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Service handles enquiry capture and back-office review.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Create records an enquiry and assigns it a reference the customer can
// quote on follow-up.
func (s *Service) Create(ctx context.Context, req CreateEnquiryRequest) (*Enquiry, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, Enquiry{
		Reference: uuid.NewString(),
		Name:      req.Name,
		Mobile:    req.Mobile,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
	})
}

func (s *Service) Get(ctx context.Context, id int64) (*Enquiry, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListEnquiriesRequest) ([]Enquiry, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, err
	}
	if req.Limit == 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
