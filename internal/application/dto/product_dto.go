package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceDTO precios de un producto. Income es calculado y se ignora en la entrada.
type PriceDTO struct {
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Income       decimal.Decimal `json:"income"`
}

// CreateProductRequest entrada para crear un producto. Stock inicial genera un movimiento de entrada.
type CreateProductRequest struct {
	Name              string   `json:"name" validate:"required,min=1,max=200"`
	Description       string   `json:"description"`
	CategoryID        string   `json:"category_id" validate:"omitempty,max=100"`
	Price             PriceDTO `json:"price"`
	Stock             int64    `json:"stock" validate:"min=0"`
	LowStockThreshold int64    `json:"low_stock_threshold" validate:"min=0"`
	Tags              []string `json:"tags"`
}

// UpdateProductRequest entrada para actualizar un producto.
// Stock, si viene, se convierte en un movimiento por la diferencia.
type UpdateProductRequest struct {
	Name              *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description       *string          `json:"description"`
	CategoryID        *string          `json:"category_id"`
	CostPrice         *decimal.Decimal `json:"cost_price"`
	SellingPrice      *decimal.Decimal `json:"selling_price"`
	Stock             *int64           `json:"stock" validate:"omitempty,min=0"`
	LowStockThreshold *int64           `json:"low_stock_threshold" validate:"omitempty,min=0"`
	IsActive          *bool            `json:"is_active"`
	Tags              []string         `json:"tags"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	CategoryID        string    `json:"category_id,omitempty"`
	SellerID          string    `json:"seller_id"`
	Price             PriceDTO  `json:"price"`
	Stock             int64     `json:"stock"`
	LowStockThreshold int64     `json:"low_stock_threshold"`
	IsActive          bool      `json:"is_active"`
	Tags              []string  `json:"tags"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
