package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	ProductID    string           `json:"product_id" validate:"required"`
	Type         string           `json:"type" validate:"required,oneof=incoming outgoing adjustment"`
	Quantity     int64            `json:"quantity" validate:"required,gt=0"`
	CostPrice    *decimal.Decimal `json:"cost_price,omitempty"`
	SellingPrice *decimal.Decimal `json:"selling_price,omitempty"`
	Note         string           `json:"note,omitempty" validate:"max=500"`
}

// AddStockRequest body para POST /api/inventory/add-stock/:productId.
type AddStockRequest struct {
	Quantity int64  `json:"quantity" validate:"required,gt=0"`
	Note     string `json:"note,omitempty" validate:"max=500"`
}

// MovementResponse entrada del ledger.
type MovementResponse struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"product_id"`
	Type          string           `json:"type"`
	Quantity      int64            `json:"quantity"`
	CostPrice     *decimal.Decimal `json:"cost_price,omitempty"`
	SellingPrice  *decimal.Decimal `json:"selling_price,omitempty"`
	Note          string           `json:"note,omitempty"`
	Source        string           `json:"source,omitempty"`
	ReferenceID   string           `json:"reference_id,omitempty"`
	ReferenceType string           `json:"reference_type,omitempty"`
	BalanceAfter  int64            `json:"balance_after"`
	CreatedBy     string           `json:"created_by,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// MovementListResponse historial paginado.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// MovementHistoryRequest filtros del historial (query string).
type MovementHistoryRequest struct {
	ProductID string
	Type      string `validate:"omitempty,oneof=incoming outgoing adjustment receipt"`
	From      *time.Time
	To        *time.Time
	PageRequest
}

// StockSummaryResponse conciliación saldo vs ledger.
type StockSummaryResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Incoming    int64  `json:"incoming"`
	Outgoing    int64  `json:"outgoing"`
	Adjustment  int64  `json:"adjustment"`
	Receipt     int64  `json:"receipt"`
	LedgerStock int64  `json:"ledger_stock"`
	Stock       int64  `json:"stock"`
	Drift       int64  `json:"drift"`
	Reconciled  bool   `json:"reconciled"`
}

// PredictionResponse pronóstico de agotamiento. Fechas nulas sin ventas en la ventana.
type PredictionResponse struct {
	ProductID           string           `json:"product_id"`
	ProductName         string           `json:"product_name"`
	CurrentStock        int64            `json:"current_stock"`
	WindowDays          int              `json:"window_days"`
	TotalOutgoing       int64            `json:"total_outgoing"`
	AvgDailySales       decimal.Decimal  `json:"avg_daily_sales"`
	DaysLeft            *decimal.Decimal `json:"days_left"`
	PredictedOutOfStock *time.Time       `json:"predicted_out_of_stock"`
	RecommendedReorder  *time.Time       `json:"recommended_reorder_date"`
	Available           bool             `json:"available"`
	Message             string           `json:"message"`
}

// LowStockResponse productos en o bajo el umbral.
type LowStockResponse struct {
	Items []ProductResponse `json:"items"`
	Count int               `json:"count"`
}
