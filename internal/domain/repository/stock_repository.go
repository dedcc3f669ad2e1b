package repository

import "context"

// StockRepository es el único acceso al saldo products.stock.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// LockProducts bloquea las filas (SELECT FOR UPDATE) en orden ascendente de id.
	// Devuelve NotFoundError si algún producto no existe.
	LockProducts(ctx context.Context, productIDs []string) error
	// GetBalance lee el saldo actual; NotFoundError si el producto no existe.
	GetBalance(ctx context.Context, productID string) (int64, error)
	// ApplyDelta suma delta al saldo y devuelve el nuevo saldo.
	// Si el resultado fuera negativo devuelve InsufficientStockError sin modificar nada.
	ApplyDelta(ctx context.Context, productID string, delta int64) (int64, error)
}
