package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// ProductRepo implementación en memoria de repository.ProductRepository.
type ProductRepo struct {
	s *session
}

var _ repository.ProductRepository = (*ProductRepo)(nil)

// NewProductRepository repositorio fuera de transacción.
func NewProductRepository(store *Store) *ProductRepo {
	return &ProductRepo{s: &session{store: store}}
}

// Create inserta el producto con stock 0.
func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	if err := r.s.check("products.create"); err != nil {
		return err
	}
	return r.s.with(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		c := copyProduct(p)
		c.Stock = 0
		st.products[p.ID] = c
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.with(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = copyProduct(p)
		}
		return nil
	})
	return out, err
}

// Update reemplaza los datos del producto conservando su stock.
func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	if err := r.s.check("products.update"); err != nil {
		return err
	}
	return r.s.with(func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return domain.NewNotFoundError("producto", p.ID)
		}
		c := copyProduct(p)
		c.Stock = cur.Stock
		st.products[p.ID] = c
		return nil
	})
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.s.with(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.NewNotFoundError("producto", id)
		}
		delete(st.products, id)
		return nil
	})
}

func sortedProducts(st *state, keep func(*entity.Product) bool) []*entity.Product {
	out := make([]*entity.Product, 0, len(st.products))
	for _, p := range st.products {
		if keep(p) {
			out = append(out, copyProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	var (
		items []*entity.Product
		total int
	)
	search := strings.ToLower(f.Search)
	err := r.s.with(func(st *state) error {
		all := sortedProducts(st, func(p *entity.Product) bool {
			if f.SellerID != "" && p.SellerID != f.SellerID {
				return false
			}
			if f.CategoryID != "" && p.CategoryID != f.CategoryID {
				return false
			}
			if f.OnlyActive && !p.IsActive {
				return false
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(p.Name), search) &&
				!strings.Contains(strings.ToLower(p.Description), search) {
				return false
			}
			return true
		})
		total = len(all)
		items = page(all, f.Limit, f.Offset)
		return nil
	})
	return items, total, err
}

func (r *ProductRepo) ListLowStock(_ context.Context, defaultThreshold int64, limit, offset int) ([]*entity.Product, error) {
	var items []*entity.Product
	err := r.s.with(func(st *state) error {
		all := sortedProducts(st, func(p *entity.Product) bool {
			threshold := p.LowStockThreshold
			if threshold <= 0 {
				threshold = defaultThreshold
			}
			return p.Stock <= threshold
		})
		sort.SliceStable(all, func(i, j int) bool { return all[i].Stock < all[j].Stock })
		items = page(all, limit, offset)
		return nil
	})
	return items, err
}
