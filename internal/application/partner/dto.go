package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/tn-gestion/backend/internal/domain/partner"
)

// CreatePartnerRequest represents a request to create a customer or a supplier
type CreatePartnerRequest struct {
	Code            string `json:"code" binding:"required,min=1,max=50"`
	Name            string `json:"name" binding:"required,min=1,max=200"`
	MatriculeFiscal string `json:"matricule_fiscal" binding:"omitempty,matricule_fiscal"`
	Address         string `json:"address" binding:"max=500"`
	City            string `json:"city" binding:"max=100"`
	Phone           string `json:"phone" binding:"max=50"`
	Email           string `json:"email" binding:"omitempty,email,max=200"`
	Notes           string `json:"notes"`
}

// UpdatePartnerRequest represents a request to update a partner. Nil fields
// keep their current value.
type UpdatePartnerRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=200"`
	MatriculeFiscal *string `json:"matricule_fiscal" binding:"omitempty,matricule_fiscal"`
	Address         *string `json:"address" binding:"omitempty,max=500"`
	City            *string `json:"city" binding:"omitempty,max=100"`
	Phone           *string `json:"phone" binding:"omitempty,max=50"`
	Email           *string `json:"email" binding:"omitempty,email,max=200"`
	Notes           *string `json:"notes"`
}

// PartnerResponse represents a partner in API responses
type PartnerResponse struct {
	ID              uuid.UUID `json:"id"`
	Kind            string    `json:"kind"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	MatriculeFiscal string    `json:"matricule_fiscal"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Version         int       `json:"version"`
}

// PartnerListFilter represents filter options for partner lists
type PartnerListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToPartnerResponse converts a domain Partner to PartnerResponse
func ToPartnerResponse(p *partner.Partner) PartnerResponse {
	return PartnerResponse{
		ID:              p.ID,
		Kind:            string(p.Kind),
		Code:            p.Code,
		Name:            p.Name,
		MatriculeFiscal: p.MatriculeFiscal,
		Address:         p.Address,
		City:            p.City,
		Phone:           p.Phone,
		Email:           p.Email,
		Status:          string(p.Status),
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		Version:         p.Version,
	}
}

// ToPartnerResponses converts a slice of domain partners to responses
func ToPartnerResponses(partners []partner.Partner) []PartnerResponse {
	responses := make([]PartnerResponse, len(partners))
	for i := range partners {
		responses[i] = ToPartnerResponse(&partners[i])
	}
	return responses
}
