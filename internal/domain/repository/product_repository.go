package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ProductFilter filtros de listado de productos.
type ProductFilter struct {
	SellerID   string
	CategoryID string
	Search     string // coincide con nombre o descripción
	OnlyActive bool
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Create y Update nunca escriben la columna stock: el saldo solo cambia vía StockRepository.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	// ListLowStock productos con stock <= umbral; defaultThreshold aplica a los que no definen uno.
	ListLowStock(ctx context.Context, defaultThreshold int64, limit, offset int) ([]*entity.Product, error)
}
