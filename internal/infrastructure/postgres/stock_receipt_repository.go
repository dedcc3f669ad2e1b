package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockReceiptRepository = (*StockReceiptRepo)(nil)

// StockReceiptRepo recibos de mercancía sobre PostgreSQL (usable con pool o tx).
type StockReceiptRepo struct {
	q Querier
}

// NewStockReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockReceiptRepository(q Querier) *StockReceiptRepo {
	return &StockReceiptRepo{q: q}
}

const receiptColumns = `id, from_company, received_by, note, status, total_quantity, total_amount,
	confirmed_at, created_at, updated_at`

func scanReceipt(row pgx.Row) (*entity.StockReceipt, error) {
	var rc entity.StockReceipt
	if err := row.Scan(&rc.ID, &rc.FromCompany, &rc.ReceivedBy, &rc.Note, &rc.Status,
		&rc.TotalQuantity, &rc.TotalAmount, &rc.ConfirmedAt, &rc.CreatedAt, &rc.UpdatedAt); err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *StockReceiptRepo) insertItems(ctx context.Context, rc *entity.StockReceipt) error {
	batch := &pgx.Batch{}
	for i, it := range rc.Items {
		batch.Queue(`
			INSERT INTO stock_receipt_items (receipt_id, position, product_id, quantity, cost_price, selling_price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			rc.ID, i, it.ProductID, it.Quantity, it.CostPrice, it.SellingPrice)
	}
	br := r.q.SendBatch(ctx, batch)
	for range rc.Items {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return wrapErr("insert receipt item", err)
		}
	}
	return br.Close()
}

// Create persiste cabecera e ítems.
func (r *StockReceiptRepo) Create(ctx context.Context, rc *entity.StockReceipt) error {
	query := `INSERT INTO stock_receipts (` + receiptColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.q.Exec(ctx, query, rc.ID, rc.FromCompany, rc.ReceivedBy, rc.Note, rc.Status,
		rc.TotalQuantity, rc.TotalAmount, rc.ConfirmedAt, rc.CreatedAt, rc.UpdatedAt); err != nil {
		return wrapErr("insert receipt", err)
	}
	return r.insertItems(ctx, rc)
}

// Update persiste estado y cabecera. Los ítems no cambian después de creado el recibo.
func (r *StockReceiptRepo) Update(ctx context.Context, rc *entity.StockReceipt) error {
	query := `
		UPDATE stock_receipts SET from_company = $2, note = $3, status = $4, total_quantity = $5,
			total_amount = $6, confirmed_at = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, rc.ID, rc.FromCompany, rc.Note, rc.Status,
		rc.TotalQuantity, rc.TotalAmount, rc.ConfirmedAt, rc.UpdatedAt)
	if err != nil {
		return wrapErr("update receipt", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("recibo", rc.ID)
	}
	return nil
}

// Delete elimina el recibo y sus ítems.
func (r *StockReceiptRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_receipts WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete receipt", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("recibo", id)
	}
	return nil
}

func (r *StockReceiptRepo) get(ctx context.Context, query, id string) (*entity.StockReceipt, error) {
	rc, err := scanReceipt(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.StockReceipt{rc}); err != nil {
		return nil, err
	}
	return rc, nil
}

// GetByID obtiene un recibo con sus ítems.
func (r *StockReceiptRepo) GetByID(ctx context.Context, id string) (*entity.StockReceipt, error) {
	return r.get(ctx, `SELECT `+receiptColumns+` FROM stock_receipts WHERE id = $1`, id)
}

// GetForUpdate obtiene el recibo bloqueando su fila.
func (r *StockReceiptRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockReceipt, error) {
	return r.get(ctx, `SELECT `+receiptColumns+` FROM stock_receipts WHERE id = $1 FOR UPDATE`, id)
}

func (r *StockReceiptRepo) loadItems(ctx context.Context, receipts []*entity.StockReceipt) error {
	if len(receipts) == 0 {
		return nil
	}
	byID := make(map[string]*entity.StockReceipt, len(receipts))
	ids := make([]string, 0, len(receipts))
	for _, rc := range receipts {
		rc.Items = []entity.StockReceiptItem{}
		byID[rc.ID] = rc
		ids = append(ids, rc.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT receipt_id, product_id, quantity, cost_price, selling_price
		FROM stock_receipt_items WHERE receipt_id = ANY($1) ORDER BY receipt_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list receipt items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			receiptID string
			it        entity.StockReceiptItem
		)
		if err := rows.Scan(&receiptID, &it.ProductID, &it.Quantity, &it.CostPrice, &it.SellingPrice); err != nil {
			return fmt.Errorf("scan receipt item: %w", err)
		}
		if rc, ok := byID[receiptID]; ok {
			rc.Items = append(rc.Items, it)
		}
	}
	return rows.Err()
}

// List lista recibos filtrando por estado y receptor.
func (r *StockReceiptRepo) List(ctx context.Context, f repository.ReceiptFilter) ([]*entity.StockReceipt, int, error) {
	cond := `($1 = '' OR status = $1) AND ($2 = '' OR received_by = $2)`

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_receipts WHERE `+cond, f.Status, f.ReceivedBy).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count receipts: %w", err)
	}

	rows, err := r.q.Query(ctx, `SELECT `+receiptColumns+` FROM stock_receipts WHERE `+cond+
		` ORDER BY created_at DESC, id LIMIT $3 OFFSET $4`, f.Status, f.ReceivedBy, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list receipts: %w", err)
	}
	list := make([]*entity.StockReceipt, 0)
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan receipt: %w", err)
		}
		list = append(list, rc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
