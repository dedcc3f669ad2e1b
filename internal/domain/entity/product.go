package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold umbral de stock bajo cuando el producto no define uno.
const DefaultLowStockThreshold int64 = 10

// PriceScale decimales que persiste la base de datos para precios y montos.
const PriceScale int32 = 2

// HasPriceScale indica si d no pierde precisión al guardarse con PriceScale decimales.
func HasPriceScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(PriceScale))
}

// Price precios del producto. Income es derivado: SellingPrice - CostPrice.
type Price struct {
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	Income       decimal.Decimal
}

// Product representa un producto vendible con su saldo de stock.
// Stock solo se modifica a través del acceso de saldo (StockRepository.ApplyDelta).
type Product struct {
	ID                string
	Name              string
	Description       string
	CategoryID        string
	SellerID          string
	Price             Price
	Stock             int64
	LowStockThreshold int64
	IsActive          bool
	Tags              []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RecalculateIncome recalcula el margen unitario. Se invoca antes de cada guardado.
func (p *Product) RecalculateIncome() {
	p.Price.Income = p.Price.SellingPrice.Sub(p.Price.CostPrice)
}

// EffectiveLowStockThreshold devuelve el umbral configurado o el valor por defecto.
func (p *Product) EffectiveLowStockThreshold() int64 {
	if p.LowStockThreshold <= 0 {
		return DefaultLowStockThreshold
	}
	return p.LowStockThreshold
}

// IsLowStock indica si el saldo está en o por debajo del umbral.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.EffectiveLowStockThreshold()
}

// OwnedBy indica si el vendedor es dueño del producto.
func (p *Product) OwnedBy(userID string) bool {
	return p.SellerID != "" && p.SellerID == userID
}
