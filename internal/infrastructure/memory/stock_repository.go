package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// StockRepo acceso al saldo en memoria. Dentro de TxRunner el mutex del Store
// ya serializa, por lo que LockProducts solo verifica existencia.
type StockRepo struct {
	s *session
}

var _ repository.StockRepository = (*StockRepo)(nil)

func (r *StockRepo) LockProducts(_ context.Context, ids []string) error {
	return r.s.with(func(st *state) error {
		for _, id := range ids {
			if _, ok := st.products[id]; !ok {
				return domain.NewNotFoundError("producto", id)
			}
		}
		return nil
	})
}

func (r *StockRepo) GetBalance(_ context.Context, productID string) (int64, error) {
	var balance int64
	err := r.s.with(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.NewNotFoundError("producto", productID)
		}
		balance = p.Stock
		return nil
	})
	return balance, err
}

func (r *StockRepo) ApplyDelta(_ context.Context, productID string, delta int64) (int64, error) {
	if err := r.s.check("stock.apply"); err != nil {
		return 0, err
	}
	var balance int64
	err := r.s.with(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.NewNotFoundError("producto", productID)
		}
		next := p.Stock + delta
		if next < 0 {
			return &domain.InsufficientStockError{ProductID: productID, Available: p.Stock, Required: -delta}
		}
		p.Stock = next
		balance = next
		return nil
	})
	return balance, err
}
