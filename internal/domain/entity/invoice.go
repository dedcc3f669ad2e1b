package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de factura de inventario.
const (
	InvoiceTypeIncoming = "incoming"
	InvoiceTypeOutgoing = "outgoing"
)

// DefaultLineUnit unidad por defecto de una línea.
const DefaultLineUnit = "pcs"

// InvoiceLine línea de factura: producto, cantidad y precios.
type InvoiceLine struct {
	ProductID string
	Quantity  int64
	CostPrice decimal.Decimal
	SalePrice decimal.Decimal
	Unit      string
}

// Subtotal SalePrice * Quantity.
func (l InvoiceLine) Subtotal() decimal.Decimal {
	return l.SalePrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Invoice documento de entrada o salida con efecto inmediato sobre el stock.
type Invoice struct {
	ID          string
	Type        string
	Lines       []InvoiceLine
	ComingPlace string
	Note        string
	Total       decimal.Decimal
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsValidInvoiceType valida el tipo de factura.
func IsValidInvoiceType(t string) bool {
	return t == InvoiceTypeIncoming || t == InvoiceTypeOutgoing
}

// MovementType tipo de movimiento que genera la factura al aplicarse.
func (i *Invoice) MovementType() string {
	if i.Type == InvoiceTypeOutgoing {
		return MovementTypeOutgoing
	}
	return MovementTypeIncoming
}

// RevertMovementType tipo de movimiento que deshace el efecto de la factura.
func (i *Invoice) RevertMovementType() string {
	if i.Type == InvoiceTypeOutgoing {
		return MovementTypeIncoming
	}
	return MovementTypeOutgoing
}

// RecalculateTotal recalcula Total como la suma de los subtotales. Se invoca antes de cada guardado.
func (i *Invoice) RecalculateTotal() {
	total := decimal.Zero
	for _, l := range i.Lines {
		total = total.Add(l.Subtotal())
	}
	i.Total = total
}

// ProductIDs ids de producto distintos de las líneas, en orden de aparición.
func (i *Invoice) ProductIDs() []string {
	ids := make([]string, 0, len(i.Lines))
	seen := make(map[string]struct{}, len(i.Lines))
	for _, l := range i.Lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}
