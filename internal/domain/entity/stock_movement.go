package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del ledger.
const (
	MovementTypeIncoming   = "incoming"   // entrada
	MovementTypeOutgoing   = "outgoing"   // salida
	MovementTypeAdjustment = "adjustment" // ajuste (siempre suma)
	MovementTypeReceipt    = "receipt"    // confirmación de recibo
)

// Tipos de documento de referencia.
const (
	ReferenceInvoice      = "invoice"
	ReferenceStockReceipt = "stock_receipt"
	ReferenceProduct      = "product"
	ReferenceManual       = "manual"
)

// Orígenes de las entradas escritas por facturas. Las reversiones llevan su propio
// origen para no contarse como ventas.
const (
	MovementSourceInvoice       = "invoice"
	MovementSourceInvoiceRevert = "invoice_revert"
)

// StockMovement entrada inmutable del ledger. Quantity siempre es positiva;
// el signo lo determina Type.
type StockMovement struct {
	ID            string
	ProductID     string
	Quantity      int64
	Type          string
	CostPrice     *decimal.Decimal
	SellingPrice  *decimal.Decimal
	Note          string
	Source        string
	ReferenceID   string
	ReferenceType string
	BalanceAfter  int64
	CreatedBy     string // UserID, vacío si es del sistema
	CreatedAt     time.Time
}

// IsValidMovementType valida el tipo de movimiento.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeIncoming, MovementTypeOutgoing, MovementTypeAdjustment, MovementTypeReceipt:
		return true
	}
	return false
}

// MovementSign +1 para tipos que suman stock, -1 para salida.
func MovementSign(t string) int64 {
	if t == MovementTypeOutgoing {
		return -1
	}
	return 1
}

// SignedQuantity efecto del movimiento sobre el saldo.
func (m *StockMovement) SignedQuantity() int64 {
	return MovementSign(m.Type) * m.Quantity
}
