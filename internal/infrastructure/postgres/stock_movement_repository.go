package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo ledger sobre PostgreSQL (usable con pool o tx). Sin UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, product_id, quantity, type, cost_price, selling_price, note, source,
	reference_id, reference_type, balance_after, created_by, created_at`

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var (
		m         entity.StockMovement
		createdBy *string
	)
	err := row.Scan(&m.ID, &m.ProductID, &m.Quantity, &m.Type, &m.CostPrice, &m.SellingPrice,
		&m.Note, &m.Source, &m.ReferenceID, &m.ReferenceType, &m.BalanceAfter, &createdBy, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.CreatedBy = fromNullable(createdBy)
	return &m, nil
}

// Create agrega una entrada al ledger.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.Quantity, m.Type, m.CostPrice, m.SellingPrice, m.Note, m.Source,
		m.ReferenceID, m.ReferenceType, m.BalanceAfter, nullableString(m.CreatedBy), m.CreatedAt,
	)
	if err != nil {
		return wrapErr("create stock movement", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// movementWhere arma el WHERE dinámico; devuelve la condición, los args y la siguiente posición libre.
func movementWhere(f repository.MovementFilter) (string, []any, int) {
	where := []string{"TRUE"}
	args := []any{}
	pos := 1
	add := func(cond string, v any) {
		where = append(where, fmt.Sprintf(cond, pos))
		args = append(args, v)
		pos++
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.ReferenceID != "" {
		add("reference_id = $%d", f.ReferenceID)
	}
	if f.ReferenceType != "" {
		add("reference_type = $%d", f.ReferenceType)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	return strings.Join(where, " AND "), args, pos
}

// List historial filtrado, más reciente primero.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	cond, args, pos := movementWhere(f)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_movements WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE ` + cond +
		fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.StockMovement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// SumByType agrega cantidades por tipo para un producto en el rango dado.
func (r *StockMovementRepo) SumByType(ctx context.Context, productID string, from, to *time.Time) (repository.MovementTotals, error) {
	cond, args, _ := movementWhere(repository.MovementFilter{ProductID: productID, From: from, To: to})
	rows, err := r.q.Query(ctx, `SELECT type, COALESCE(SUM(quantity), 0) FROM stock_movements WHERE `+cond+` GROUP BY type`, args...)
	if err != nil {
		return nil, fmt.Errorf("sum movements: %w", err)
	}
	defer rows.Close()
	totals := repository.MovementTotals{}
	for rows.Next() {
		var (
			typ string
			sum int64
		)
		if err := rows.Scan(&typ, &sum); err != nil {
			return nil, fmt.Errorf("scan movement sum: %w", err)
		}
		totals[typ] = sum
	}
	return totals, rows.Err()
}

// SumSales suma las salidas del rango sin contar las reversiones de facturas.
func (r *StockMovementRepo) SumSales(ctx context.Context, productID string, from, to *time.Time) (int64, error) {
	cond, args, pos := movementWhere(repository.MovementFilter{
		ProductID: productID,
		Type:      entity.MovementTypeOutgoing,
		From:      from,
		To:        to,
	})
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_movements WHERE ` + cond +
		fmt.Sprintf(" AND source <> $%d", pos)
	args = append(args, entity.MovementSourceInvoiceRevert)
	var total int64
	if err := r.q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum sales: %w", err)
	}
	return total, nil
}
