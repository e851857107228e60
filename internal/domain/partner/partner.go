// Package partner holds the customers and suppliers documents are issued to.
package partner

import (
	"strings"

	"github.com/tn-gestion/backend/internal/domain/fiscal"
	"github.com/tn-gestion/backend/internal/domain/shared"
)

// Kind tells customers and suppliers apart
type Kind string

const (
	KindCustomer Kind = "CUSTOMER"
	KindSupplier Kind = "SUPPLIER"
)

// IsValid checks if the kind is a valid Kind
func (k Kind) IsValid() bool {
	return k == KindCustomer || k == KindSupplier
}

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// DisplayName returns the French label of the kind
func (k Kind) DisplayName() string {
	switch k {
	case KindCustomer:
		return "Client"
	case KindSupplier:
		return "Fournisseur"
	default:
		return string(k)
	}
}

// Status represents the status of a partner
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// Contact holds the printable contact details of a partner
type Contact struct {
	Address string
	City    string
	Phone   string
	Email   string
}

// Partner is a customer or a supplier
type Partner struct {
	shared.BaseAggregateRoot
	Kind            Kind
	Code            string
	Name            string
	MatriculeFiscal string
	Address         string
	City            string
	Phone           string
	Email           string
	Status          Status
	Notes           string
}

// NewCustomer creates a new active customer
func NewCustomer(code, name, matricule string) (*Partner, error) {
	return NewPartner(KindCustomer, code, name, matricule)
}

// NewSupplier creates a new active supplier
func NewSupplier(code, name, matricule string) (*Partner, error) {
	return NewPartner(KindSupplier, code, name, matricule)
}

// NewPartner creates an active partner of the given kind
func NewPartner(kind Kind, code, name, matricule string) (*Partner, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Partner kind must be CUSTOMER or SUPPLIER")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := validateCode(code); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	mf, err := normalizeMatricule(matricule)
	if err != nil {
		return nil, err
	}

	return &Partner{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		Code:              code,
		Name:              name,
		MatriculeFiscal:   mf,
		Status:            StatusActive,
	}, nil
}

// Update replaces the editable details of the partner. The code and kind
// never change.
func (p *Partner) Update(name, matricule string, contact Contact, notes string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	mf, err := normalizeMatricule(matricule)
	if err != nil {
		return err
	}
	if err := contact.validate(); err != nil {
		return err
	}

	p.Name = name
	p.MatriculeFiscal = mf
	p.SetContact(contact)
	p.Notes = notes
	p.IncrementVersion()
	return nil
}

// SetContact sets the address and contact fields
func (p *Partner) SetContact(c Contact) {
	p.Address = strings.TrimSpace(c.Address)
	p.City = strings.TrimSpace(c.City)
	p.Phone = strings.TrimSpace(c.Phone)
	p.Email = strings.TrimSpace(c.Email)
}

// Contact returns the contact details
func (p *Partner) Contact() Contact {
	return Contact{Address: p.Address, City: p.City, Phone: p.Phone, Email: p.Email}
}

// Activate activates the partner
func (p *Partner) Activate() error {
	if p.Status == StatusActive {
		return shared.NewInvalidStateError("%s %s is already active", strings.ToLower(p.Kind.String()), p.Code)
	}
	p.Status = StatusActive
	p.IncrementVersion()
	return nil
}

// Deactivate deactivates the partner. Inactive partners cannot receive new documents.
func (p *Partner) Deactivate() error {
	if p.Status == StatusInactive {
		return shared.NewInvalidStateError("%s %s is already inactive", strings.ToLower(p.Kind.String()), p.Code)
	}
	p.Status = StatusInactive
	p.IncrementVersion()
	return nil
}

// IsActive returns true if the partner is active
func (p *Partner) IsActive() bool {
	return p.Status == StatusActive
}

// IsCustomer returns true for customers
func (p *Partner) IsCustomer() bool {
	return p.Kind == KindCustomer
}

// IsSupplier returns true for suppliers
func (p *Partner) IsSupplier() bool {
	return p.Kind == KindSupplier
}

func validateCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Partner code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Partner code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Partner code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Partner name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Partner name cannot exceed 200 characters")
	}
	return nil
}

func (c Contact) validate() error {
	if len(c.Address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}
	if len(c.Phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone number cannot exceed 50 characters")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}
	return nil
}

// normalizeMatricule returns the canonical form of a matricule fiscal, or
// an empty string when none is given
func normalizeMatricule(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	mf, err := fiscal.ParseMatriculeFiscal(s)
	if err != nil {
		return "", err
	}
	return mf.String(), nil
}
