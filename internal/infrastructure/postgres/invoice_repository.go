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

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo facturas y sus líneas sobre PostgreSQL (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, type, coming_place, note, total, created_by, created_at, updated_at`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv       entity.Invoice
		createdBy *string
	)
	if err := row.Scan(&inv.ID, &inv.Type, &inv.ComingPlace, &inv.Note, &inv.Total,
		&createdBy, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, err
	}
	inv.CreatedBy = fromNullable(createdBy)
	return &inv, nil
}

// insertLines inserta las líneas en un solo batch.
func (r *InvoiceRepo) insertLines(ctx context.Context, inv *entity.Invoice) error {
	batch := &pgx.Batch{}
	for i, l := range inv.Lines {
		batch.Queue(`
			INSERT INTO invoice_lines (invoice_id, position, product_id, quantity, cost_price, sale_price, unit)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			inv.ID, i, l.ProductID, l.Quantity, l.CostPrice, l.SalePrice, l.Unit)
	}
	br := r.q.SendBatch(ctx, batch)
	for range inv.Lines {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return wrapErr("insert invoice line", err)
		}
	}
	return br.Close()
}

// Create persiste cabecera y líneas.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `INSERT INTO invoices (` + invoiceColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.q.Exec(ctx, query, inv.ID, inv.Type, inv.ComingPlace, inv.Note, inv.Total,
		nullableString(inv.CreatedBy), inv.CreatedAt, inv.UpdatedAt); err != nil {
		return wrapErr("insert invoice", err)
	}
	return r.insertLines(ctx, inv)
}

// Update reemplaza cabecera y líneas.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	query := `UPDATE invoices SET type = $2, coming_place = $3, note = $4, total = $5, updated_at = $6 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, inv.ID, inv.Type, inv.ComingPlace, inv.Note, inv.Total, inv.UpdatedAt)
	if err != nil {
		return wrapErr("update invoice", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("factura", inv.ID)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, inv.ID); err != nil {
		return wrapErr("delete invoice lines", err)
	}
	return r.insertLines(ctx, inv)
}

// Delete elimina la factura; las líneas caen por ON DELETE CASCADE.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete invoice", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("factura", id)
	}
	return nil
}

func (r *InvoiceRepo) get(ctx context.Context, query, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.Invoice{inv}); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetByID obtiene una factura con sus líneas.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
}

// GetForUpdate obtiene la factura bloqueando su fila.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id)
}

// ExistsForProduct indica si alguna línea de factura referencia el producto.
func (r *InvoiceRepo) ExistsForProduct(ctx context.Context, productID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoice_lines WHERE product_id = $1)`, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("invoice lines for product: %w", err)
	}
	return exists, nil
}

// loadLines carga las líneas de varias facturas con una sola consulta.
func (r *InvoiceRepo) loadLines(ctx context.Context, invoices []*entity.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Invoice, len(invoices))
	ids := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		inv.Lines = []entity.InvoiceLine{}
		byID[inv.ID] = inv
		ids = append(ids, inv.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT invoice_id, product_id, quantity, cost_price, sale_price, unit
		FROM invoice_lines WHERE invoice_id = ANY($1) ORDER BY invoice_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			invoiceID string
			l         entity.InvoiceLine
		)
		if err := rows.Scan(&invoiceID, &l.ProductID, &l.Quantity, &l.CostPrice, &l.SalePrice, &l.Unit); err != nil {
			return fmt.Errorf("scan invoice line: %w", err)
		}
		if inv, ok := byID[invoiceID]; ok {
			inv.Lines = append(inv.Lines, l)
		}
	}
	return rows.Err()
}

// List lista facturas con filtros dinámicos y total sin paginar.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	pos := 1
	add := func(cond string, v any) {
		where = append(where, strings.ReplaceAll(cond, "$?", fmt.Sprintf("$%d", pos)))
		args = append(args, v)
		pos++
	}
	if f.Type != "" {
		add("type = $?", f.Type)
	}
	if f.CreatedBy != "" {
		add("created_by = $?", f.CreatedBy)
	}
	if f.From != nil {
		add("created_at >= $?", *f.From)
	}
	if f.To != nil {
		add("created_at <= $?", *f.To)
	}
	if f.Search != "" {
		add("(coming_place ILIKE $? OR note ILIKE $?)", "%"+f.Search+"%")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM invoices WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE ` + cond +
		fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	list := make([]*entity.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
