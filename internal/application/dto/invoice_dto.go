package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceLineRequest línea de factura. Precios omitidos se toman como 0; unit por defecto "pcs".
type InvoiceLineRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  int64            `json:"quantity" validate:"required,gt=0"`
	CostPrice *decimal.Decimal `json:"cost_price,omitempty"`
	SalePrice *decimal.Decimal `json:"sale_price,omitempty"`
	Unit      string           `json:"unit,omitempty" validate:"max=20"`
}

// CreateInvoiceRequest body para POST /api/invoices.
type CreateInvoiceRequest struct {
	Type        string               `json:"type" validate:"required,oneof=incoming outgoing"`
	Lines       []InvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
	ComingPlace string               `json:"coming_place" validate:"max=200"`
	Note        string               `json:"note" validate:"max=1000"`
}

// UpdateInvoiceRequest body para PUT /api/invoices/:id. Campos nil conservan el valor actual.
type UpdateInvoiceRequest struct {
	Type        *string              `json:"type" validate:"omitempty,oneof=incoming outgoing"`
	Lines       []InvoiceLineRequest `json:"lines" validate:"omitempty,min=1,dive"`
	ComingPlace *string              `json:"coming_place" validate:"omitempty,max=200"`
	Note        *string              `json:"note" validate:"omitempty,max=1000"`
}

// InvoiceLineResponse línea en la respuesta.
type InvoiceLineResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Unit      string          `json:"unit"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// InvoiceResponse factura con líneas.
type InvoiceResponse struct {
	ID          string                `json:"id"`
	Type        string                `json:"type"`
	Lines       []InvoiceLineResponse `json:"lines"`
	ComingPlace string                `json:"coming_place"`
	Note        string                `json:"note"`
	Total       decimal.Decimal       `json:"total"`
	CreatedBy   string                `json:"created_by"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// InvoiceListRequest filtros del listado.
type InvoiceListRequest struct {
	Type      string `validate:"omitempty,oneof=incoming outgoing"`
	CreatedBy string
	Search    string
	From      *time.Time
	To        *time.Time
	PageRequest
}

// InvoiceListResponse lista paginada.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
