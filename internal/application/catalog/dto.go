package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Reference   string          `json:"reference" binding:"required,min=1,max=50"`
	Designation string          `json:"designation" binding:"required,min=1,max=500"`
	Unit        string          `json:"unit" binding:"max=20"`
	UnitPriceHT decimal.Decimal `json:"unit_price_ht"`
	TVARate     int             `json:"tva_rate" binding:"tva_rate"`
	FODEC       bool            `json:"fodec"`
}

// UpdateProductRequest represents a request to update a product. Nil fields
// keep their current value.
type UpdateProductRequest struct {
	Designation *string          `json:"designation" binding:"omitempty,min=1,max=500"`
	Unit        *string          `json:"unit" binding:"omitempty,max=20"`
	UnitPriceHT *decimal.Decimal `json:"unit_price_ht"`
	TVARate     *int             `json:"tva_rate" binding:"omitempty,tva_rate"`
	FODEC       *bool            `json:"fodec"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	Reference    string          `json:"reference"`
	Designation  string          `json:"designation"`
	Unit         string          `json:"unit"`
	UnitPriceHT  decimal.Decimal `json:"unit_price_ht"`
	UnitPriceTTC decimal.Decimal `json:"unit_price_ttc"`
	TVARate      int             `json:"tva_rate"`
	FODEC        bool            `json:"fodec"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// ProductListFilter represents filter options for product lists
type ProductListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToProductResponse converts a domain Product to ProductResponse. The TTC
// price uses the configured FODEC rate.
func ToProductResponse(p *catalog.Product, fodecRate decimal.Decimal) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Reference:    p.Reference,
		Designation:  p.Designation,
		Unit:         p.Unit,
		UnitPriceHT:  p.UnitPriceHT,
		UnitPriceTTC: p.UnitPriceTTC(fodecRate),
		TVARate:      int(p.TVARate),
		FODEC:        p.FODEC,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
}
