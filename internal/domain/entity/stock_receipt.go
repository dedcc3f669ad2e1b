package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del recibo de mercancía.
const (
	ReceiptStatusDraft     = "draft"
	ReceiptStatusConfirmed = "confirmed"
)

// StockReceiptItem ítem recibido.
type StockReceiptItem struct {
	ProductID    string
	Quantity     int64
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
}

// StockReceipt recibo de mercancía de un proveedor. El stock solo se afecta al confirmar.
type StockReceipt struct {
	ID            string
	FromCompany   string
	ReceivedBy    string
	Items         []StockReceiptItem
	Note          string
	Status        string
	TotalQuantity int64
	TotalAmount   decimal.Decimal
	ConfirmedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsValidReceiptStatus valida el estado.
func IsValidReceiptStatus(s string) bool {
	return s == ReceiptStatusDraft || s == ReceiptStatusConfirmed
}

// IsConfirmed indica si el recibo ya aplicó su efecto.
func (r *StockReceipt) IsConfirmed() bool {
	return r.Status == ReceiptStatusConfirmed
}

// RecalculateTotals recalcula cantidad total y monto total (costo * cantidad).
func (r *StockReceipt) RecalculateTotals() {
	var qty int64
	amount := decimal.Zero
	for _, it := range r.Items {
		qty += it.Quantity
		amount = amount.Add(it.CostPrice.Mul(decimal.NewFromInt(it.Quantity)))
	}
	r.TotalQuantity = qty
	r.TotalAmount = amount
}

// ProductIDs ids de producto de los ítems.
func (r *StockReceipt) ProductIDs() []string {
	ids := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		ids = append(ids, it.ProductID)
	}
	return ids
}
