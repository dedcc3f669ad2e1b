package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// InvoiceRepo facturas en memoria.
type InvoiceRepo struct {
	s *session
}

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// NewInvoiceRepository repositorio fuera de transacción.
func NewInvoiceRepository(store *Store) *InvoiceRepo {
	return &InvoiceRepo{s: &session{store: store}}
}

func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	if err := r.s.check("invoices.create"); err != nil {
		return err
	}
	return r.s.with(func(st *state) error {
		if _, ok := st.invoices[inv.ID]; ok {
			return domain.ErrDuplicate
		}
		st.invoices[inv.ID] = copyInvoice(inv)
		return nil
	})
}

func (r *InvoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	if err := r.s.check("invoices.update"); err != nil {
		return err
	}
	return r.s.with(func(st *state) error {
		if _, ok := st.invoices[inv.ID]; !ok {
			return domain.NewNotFoundError("factura", inv.ID)
		}
		st.invoices[inv.ID] = copyInvoice(inv)
		return nil
	})
}

func (r *InvoiceRepo) Delete(_ context.Context, id string) error {
	if err := r.s.check("invoices.delete"); err != nil {
		return err
	}
	return r.s.with(func(st *state) error {
		if _, ok := st.invoices[id]; !ok {
			return domain.NewNotFoundError("factura", id)
		}
		delete(st.invoices, id)
		return nil
	})
}

func (r *InvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	var out *entity.Invoice
	err := r.s.with(func(st *state) error {
		if inv, ok := st.invoices[id]; ok {
			out = copyInvoice(inv)
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: la transacción ya tiene acceso exclusivo.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *InvoiceRepo) ExistsForProduct(_ context.Context, productID string) (bool, error) {
	var found bool
	err := r.s.with(func(st *state) error {
		for _, inv := range st.invoices {
			for _, l := range inv.Lines {
				if l.ProductID == productID {
					found = true
					return nil
				}
			}
		}
		return nil
	})
	return found, err
}

func (r *InvoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	var (
		items []*entity.Invoice
		total int
	)
	search := strings.ToLower(f.Search)
	err := r.s.with(func(st *state) error {
		all := make([]*entity.Invoice, 0, len(st.invoices))
		for _, inv := range st.invoices {
			if f.Type != "" && inv.Type != f.Type {
				continue
			}
			if f.CreatedBy != "" && inv.CreatedBy != f.CreatedBy {
				continue
			}
			if !inRange(inv.CreatedAt, f.From, f.To) {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(inv.ComingPlace), search) &&
				!strings.Contains(strings.ToLower(inv.Note), search) {
				continue
			}
			all = append(all, copyInvoice(inv))
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
