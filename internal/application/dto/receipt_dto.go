package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptItemRequest ítem de recibo.
type ReceiptItemRequest struct {
	ProductID    string          `json:"product_id" validate:"required"`
	Quantity     int64           `json:"quantity" validate:"required,gt=0"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

// CreateReceiptRequest body para POST /api/receipts.
// ReceivedBy vacío toma el usuario autenticado.
type CreateReceiptRequest struct {
	FromCompany string               `json:"from_company" validate:"required,max=200"`
	ReceivedBy  string               `json:"received_by"`
	Items       []ReceiptItemRequest `json:"items" validate:"required,min=1,dive"`
	Note        string               `json:"note" validate:"max=1000"`
}

// ReceiptItemResponse ítem en la respuesta.
type ReceiptItemResponse struct {
	ProductID    string          `json:"product_id"`
	Quantity     int64           `json:"quantity"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

// ReceiptResponse recibo completo.
type ReceiptResponse struct {
	ID            string                `json:"id"`
	FromCompany   string                `json:"from_company"`
	ReceivedBy    string                `json:"received_by"`
	Items         []ReceiptItemResponse `json:"items"`
	Note          string                `json:"note"`
	Status        string                `json:"status"`
	TotalQuantity int64                 `json:"total_quantity"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	ConfirmedAt   *time.Time            `json:"confirmed_at"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// ReceiptListRequest filtros del listado.
type ReceiptListRequest struct {
	Status     string `validate:"omitempty,oneof=draft confirmed"`
	ReceivedBy string
	PageRequest
}

// ReceiptListResponse lista paginada.
type ReceiptListResponse struct {
	Items []ReceiptResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
