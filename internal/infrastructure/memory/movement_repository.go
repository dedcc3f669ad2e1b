package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// MovementRepo ledger en memoria (solo alta y lectura).
type MovementRepo struct {
	s *session
}

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// NewMovementRepository repositorio fuera de transacción.
func NewMovementRepository(store *Store) *MovementRepo {
	return &MovementRepo{s: &session{store: store}}
}

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	if err := r.s.check("movements.create"); err != nil {
		return err
	}
	return r.s.with(func(st *state) error {
		st.movements = append(st.movements, copyMovement(m))
		return nil
	})
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.s.with(func(st *state) error {
		for _, m := range st.movements {
			if m.ID == id {
				out = copyMovement(m)
				break
			}
		}
		return nil
	})
	return out, err
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	var (
		items []*entity.StockMovement
		total int
	)
	err := r.s.with(func(st *state) error {
		all := make([]*entity.StockMovement, 0)
		// recorrido inverso: más recientes primero, estable ante fechas iguales
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.Type != "" && m.Type != f.Type {
				continue
			}
			if f.ReferenceID != "" && m.ReferenceID != f.ReferenceID {
				continue
			}
			if f.ReferenceType != "" && m.ReferenceType != f.ReferenceType {
				continue
			}
			if !inRange(m.CreatedAt, f.From, f.To) {
				continue
			}
			all = append(all, copyMovement(m))
		}
		sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
		total = len(all)
		items = page(all, f.Limit, f.Offset)
		return nil
	})
	return items, total, err
}

func (r *MovementRepo) SumByType(_ context.Context, productID string, from, to *time.Time) (repository.MovementTotals, error) {
	totals := repository.MovementTotals{}
	err := r.s.with(func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID == productID && inRange(m.CreatedAt, from, to) {
				totals[m.Type] += m.Quantity
			}
		}
		return nil
	})
	return totals, err
}

func (r *MovementRepo) SumSales(_ context.Context, productID string, from, to *time.Time) (int64, error) {
	var total int64
	err := r.s.with(func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID != productID || m.Type != entity.MovementTypeOutgoing {
				continue
			}
			if m.Source == entity.MovementSourceInvoiceRevert || !inRange(m.CreatedAt, from, to) {
				continue
			}
			total += m.Quantity
		}
		return nil
	})
	return total, err
}
