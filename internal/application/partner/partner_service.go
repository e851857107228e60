package partner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tn-gestion/backend/internal/domain/document"
	"github.com/tn-gestion/backend/internal/domain/partner"
	"github.com/tn-gestion/backend/internal/domain/shared"
)

// DocumentCounter counts the documents issued to a partner
type DocumentCounter interface {
	Count(ctx context.Context, filter document.Filter) (int64, error)
}

// PartnerService handles customer and supplier operations. One instance
// serves a single partner kind.
type PartnerService struct {
	repo      partner.Repository
	documents DocumentCounter
	kind      partner.Kind
}

// NewCustomerService creates a PartnerService for customers
func NewCustomerService(repo partner.Repository, documents DocumentCounter) *PartnerService {
	return &PartnerService{repo: repo, documents: documents, kind: partner.KindCustomer}
}

// NewSupplierService creates a PartnerService for suppliers
func NewSupplierService(repo partner.Repository, documents DocumentCounter) *PartnerService {
	return &PartnerService{repo: repo, documents: documents, kind: partner.KindSupplier}
}

// Kind returns the partner kind served
func (s *PartnerService) Kind() partner.Kind {
	return s.kind
}

func (s *PartnerService) resource() string {
	if s.kind == partner.KindSupplier {
		return "Supplier"
	}
	return "Customer"
}

// Create creates a new partner
func (s *PartnerService) Create(ctx context.Context, req CreatePartnerRequest) (*PartnerResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.repo.ExistsByCode(ctx, s.kind, code)
	if err != nil {
		return nil, fmt.Errorf("failed to check code: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("%s with code %s already exists", s.resource(), code))
	}

	p, err := partner.NewPartner(s.kind, code, req.Name, req.MatriculeFiscal)
	if err != nil {
		return nil, err
	}
	p.SetContact(partner.Contact{
		Address: req.Address,
		City:    req.City,
		Phone:   req.Phone,
		Email:   req.Email,
	})
	p.Notes = req.Notes

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", strings.ToLower(s.resource()), err)
	}

	response := ToPartnerResponse(p)
	return &response, nil
}

// GetByID retrieves a partner by ID
func (s *PartnerService) GetByID(ctx context.Context, id uuid.UUID) (*PartnerResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPartnerResponse(p)
	return &response, nil
}

// List retrieves a paginated list of partners
func (s *PartnerService) List(ctx context.Context, filter PartnerListFilter) ([]PartnerResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := partner.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
		Kind:   s.kind,
		Status: partner.Status(filter.Status),
	}

	partners, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list partners: %w", err)
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count partners: %w", err)
	}

	return ToPartnerResponses(partners), total, nil
}

// Update updates a partner
func (s *PartnerService) Update(ctx context.Context, id uuid.UUID, req UpdatePartnerRequest) (*PartnerResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	name := p.Name
	if req.Name != nil {
		name = *req.Name
	}
	matricule := p.MatriculeFiscal
	if req.MatriculeFiscal != nil {
		matricule = *req.MatriculeFiscal
	}
	contact := p.Contact()
	if req.Address != nil {
		contact.Address = *req.Address
	}
	if req.City != nil {
		contact.City = *req.City
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	if req.Email != nil {
		contact.Email = *req.Email
	}
	notes := p.Notes
	if req.Notes != nil {
		notes = *req.Notes
	}

	if err := p.Update(name, matricule, contact, notes); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", strings.ToLower(s.resource()), err)
	}

	response := ToPartnerResponse(p)
	return &response, nil
}

// Delete deletes a partner that never received a document
func (s *PartnerService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if s.documents != nil {
		n, err := s.documents.Count(ctx, document.Filter{PartnerID: &p.ID})
		if err != nil {
			return fmt.Errorf("failed to count documents: %w", err)
		}
		if n > 0 {
			return shared.NewInvalidStateError("%s %s has %d document(s); deactivate it instead", s.resource(), p.Code, n)
		}
	}

	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("failed to delete %s: %w", strings.ToLower(s.resource()), err)
	}
	return nil
}

// Activate activates a partner
func (s *PartnerService) Activate(ctx context.Context, id uuid.UUID) (*PartnerResponse, error) {
	return s.transition(ctx, id, (*partner.Partner).Activate)
}

// Deactivate deactivates a partner
func (s *PartnerService) Deactivate(ctx context.Context, id uuid.UUID) (*PartnerResponse, error) {
	return s.transition(ctx, id, (*partner.Partner).Deactivate)
}

func (s *PartnerService) transition(ctx context.Context, id uuid.UUID, apply func(*partner.Partner) error) (*PartnerResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(p); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", strings.ToLower(s.resource()), err)
	}
	response := ToPartnerResponse(p)
	return &response, nil
}

// find loads a partner and checks it has the served kind, so a supplier
// is never reachable through the customer endpoints
func (s *PartnerService) find(ctx context.Context, id uuid.UUID) (*partner.Partner, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError(s.resource())
		}
		return nil, fmt.Errorf("failed to get %s: %w", strings.ToLower(s.resource()), err)
	}
	if p.Kind != s.kind {
		return nil, shared.NewNotFoundError(s.resource())
	}
	return p, nil
}
