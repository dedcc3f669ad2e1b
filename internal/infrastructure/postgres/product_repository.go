package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, name, description, category_id, seller_id, cost_price, selling_price, income,
	stock, low_stock_threshold, is_active, tags, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var (
		p                    entity.Product
		categoryID, sellerID *string
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &categoryID, &sellerID,
		&p.Price.CostPrice, &p.Price.SellingPrice, &p.Price.Income,
		&p.Stock, &p.LowStockThreshold, &p.IsActive, &p.Tags, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.CategoryID = fromNullable(categoryID)
	p.SellerID = fromNullable(sellerID)
	return &p, nil
}

// Create persiste un nuevo producto. El stock arranca en 0; el inicial se registra como movimiento.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	query := `
		INSERT INTO products (id, name, description, category_id, seller_id, cost_price, selling_price, income,
			stock, low_stock_threshold, is_active, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Description, nullableString(p.CategoryID), nullableString(p.SellerID),
		p.Price.CostPrice, p.Price.SellingPrice, p.Price.Income,
		p.LowStockThreshold, p.IsActive, tags, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return wrapErr("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update actualiza datos descriptivos y precios. La columna stock no se toca.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	query := `
		UPDATE products SET name = $2, description = $3, category_id = $4, cost_price = $5, selling_price = $6,
			income = $7, low_stock_threshold = $8, is_active = $9, tags = $10, updated_at = $11
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Description, nullableString(p.CategoryID),
		p.Price.CostPrice, p.Price.SellingPrice, p.Price.Income,
		p.LowStockThreshold, p.IsActive, tags, p.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("producto", p.ID)
	}
	return nil
}

// Delete elimina un producto por ID.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("producto", id)
	}
	return nil
}

// List lista productos con filtros; devuelve también el total sin paginar.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	pos := 1
	if f.SellerID != "" {
		where = append(where, fmt.Sprintf("seller_id = $%d", pos))
		args = append(args, f.SellerID)
		pos++
	}
	if f.CategoryID != "" {
		where = append(where, fmt.Sprintf("category_id = $%d", pos))
		args = append(args, f.CategoryID)
		pos++
	}
	if f.OnlyActive {
		where = append(where, "is_active")
	}
	if f.Search != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", pos, pos))
		args = append(args, "%"+f.Search+"%")
		pos++
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE ` + cond +
		fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)
	list, err := r.queryProducts(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListLowStock productos con stock <= su umbral (o defaultThreshold si no definen uno).
func (r *ProductRepo) ListLowStock(ctx context.Context, defaultThreshold int64, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE stock <= CASE WHEN low_stock_threshold > 0 THEN low_stock_threshold ELSE $1 END
		ORDER BY stock ASC, created_at DESC, id
		LIMIT $2 OFFSET $3`
	return r.queryProducts(ctx, query, defaultThreshold, limit, offset)
}

func (r *ProductRepo) queryProducts(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
