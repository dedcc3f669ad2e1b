package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo acceso al saldo products.stock sobre PostgreSQL. Debe usarse con una tx
// para que los bloqueos FOR UPDATE duren hasta el commit.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// LockProducts bloquea las filas en orden ascendente de id para evitar deadlocks entre
// transacciones que tocan los mismos productos.
func (r *StockRepo) LockProducts(ctx context.Context, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(productIDs))
	ids := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	rows, err := r.q.Query(ctx, `SELECT id FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return fmt.Errorf("lock products: %w", err)
	}
	defer rows.Close()
	found := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan locked product: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("lock products: %w", err)
	}
	for _, id := range ids {
		if !found[id] {
			return domain.NewNotFoundError("producto", id)
		}
	}
	return nil
}

// GetBalance lee el saldo sin bloquear.
func (r *StockRepo) GetBalance(ctx context.Context, productID string) (int64, error) {
	var stock int64
	err := r.q.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.NewNotFoundError("producto", productID)
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return stock, nil
}

// ApplyDelta lee el saldo con SELECT FOR UPDATE, verifica que no quede negativo y lo actualiza.
func (r *StockRepo) ApplyDelta(ctx context.Context, productID string, delta int64) (int64, error) {
	var current int64
	err := r.q.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.NewNotFoundError("producto", productID)
		}
		return 0, fmt.Errorf("get stock for update: %w", err)
	}
	next := current + delta
	if next < 0 {
		return 0, &domain.InsufficientStockError{ProductID: productID, Available: current, Required: -delta}
	}
	if _, err := r.q.Exec(ctx, `UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`, productID, next); err != nil {
		return 0, wrapErr("update stock", err)
	}
	return next, nil
}
