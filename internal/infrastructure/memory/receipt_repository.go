package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// ReceiptRepo recibos en memoria.
type ReceiptRepo struct {
	s *session
}

var _ repository.StockReceiptRepository = (*ReceiptRepo)(nil)

// NewReceiptRepository repositorio fuera de transacción.
func NewReceiptRepository(store *Store) *ReceiptRepo {
	return &ReceiptRepo{s: &session{store: store}}
}

func (r *ReceiptRepo) Create(_ context.Context, rc *entity.StockReceipt) error {
	if err := r.s.check("receipts.create"); err != nil {
		return err
	}
	return r.s.with(func(st *state) error {
		if _, ok := st.receipts[rc.ID]; ok {
			return domain.ErrDuplicate
		}
		st.receipts[rc.ID] = copyReceipt(rc)
		return nil
	})
}

func (r *ReceiptRepo) Update(_ context.Context, rc *entity.StockReceipt) error {
	if err := r.s.check("receipts.update"); err != nil {
		return err
	}
	return r.s.with(func(st *state) error {
		if _, ok := st.receipts[rc.ID]; !ok {
			return domain.NewNotFoundError("recibo", rc.ID)
		}
		st.receipts[rc.ID] = copyReceipt(rc)
		return nil
	})
}

func (r *ReceiptRepo) Delete(_ context.Context, id string) error {
	return r.s.with(func(st *state) error {
		if _, ok := st.receipts[id]; !ok {
			return domain.NewNotFoundError("recibo", id)
		}
		delete(st.receipts, id)
		return nil
	})
}

func (r *ReceiptRepo) GetByID(_ context.Context, id string) (*entity.StockReceipt, error) {
	var out *entity.StockReceipt
	err := r.s.with(func(st *state) error {
		if rc, ok := st.receipts[id]; ok {
			out = copyReceipt(rc)
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: la transacción ya tiene acceso exclusivo.
func (r *ReceiptRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockReceipt, error) {
	return r.GetByID(ctx, id)
}

func (r *ReceiptRepo) List(_ context.Context, f repository.ReceiptFilter) ([]*entity.StockReceipt, int, error) {
	var (
		items []*entity.StockReceipt
		total int
	)
	err := r.s.with(func(st *state) error {
		all := make([]*entity.StockReceipt, 0, len(st.receipts))
		for _, rc := range st.receipts {
			if f.Status != "" && rc.Status != f.Status {
				continue
			}
			if f.ReceivedBy != "" && rc.ReceivedBy != f.ReceivedBy {
				continue
			}
			all = append(all, copyReceipt(rc))
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].CreatedAt.After(all[j].CreatedAt)
			}
			return all[i].ID < all[j].ID
		})
		total = len(all)
		items = page(all, f.Limit, f.Offset)
		return nil
	})
	return items, total, err
}
