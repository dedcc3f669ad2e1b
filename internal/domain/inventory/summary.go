package inventory

import "github.com/jhoicas/stock-ledger-api/internal/domain/entity"

// StockSummary conciliación del saldo vivo contra los totales del ledger.
type StockSummary struct {
	ProductID   string
	Incoming    int64
	Outgoing    int64
	Adjustment  int64
	Receipt     int64
	LedgerStock int64 // incoming + receipt - outgoing + adjustment
	Stock       int64 // saldo vivo en products.stock
	Drift       int64 // Stock - LedgerStock; 0 si el ledger es completo
}

// Summarize construye el resumen a partir de las sumas por tipo.
func Summarize(productID string, stock int64, totals map[string]int64) StockSummary {
	s := StockSummary{
		ProductID:  productID,
		Incoming:   totals[entity.MovementTypeIncoming],
		Outgoing:   totals[entity.MovementTypeOutgoing],
		Adjustment: totals[entity.MovementTypeAdjustment],
		Receipt:    totals[entity.MovementTypeReceipt],
		Stock:      stock,
	}
	s.LedgerStock = s.Incoming + s.Receipt - s.Outgoing + s.Adjustment
	s.Drift = s.Stock - s.LedgerStock
	return s
}

// Reconciled indica si el saldo coincide con el ledger.
func (s StockSummary) Reconciled() bool {
	return s.Drift == 0
}
