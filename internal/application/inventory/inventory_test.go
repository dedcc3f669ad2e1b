package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/invoice"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

type env struct {
	store     *memory.Store
	repos     repository.TxRepositories
	movements *inventory.RegisterMovementUseCase
	recon     *inventory.ReconciliationUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	ctx := context.Background()
	for _, p := range []*entity.Product{
		{ID: "p1", Name: "Arroz", IsActive: true, CreatedAt: time.Now()},
		{ID: "p2", Name: "Aceite", IsActive: true, LowStockThreshold: 3, CreatedAt: time.Now()},
	} {
		require.NoError(t, repos.Products.Create(ctx, p))
	}
	return &env{
		store:     store,
		repos:     repos,
		movements: inventory.NewRegisterMovementUseCase(memory.NewTxRunner(store), inventory.NewLedgerWriter()),
		recon:     inventory.NewReconciliationUseCase(repos.Products, repos.Movements, inventory.ReconciliationConfig{}),
	}
}

func (e *env) move(t *testing.T, productID, movType string, qty int64) *entity.StockMovement {
	t.Helper()
	mov, err := e.movements.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		UserID: "u-1", ProductID: productID, Type: movType, Quantity: qty,
	})
	require.NoError(t, err)
	return mov
}

func TestRegisterMovement(t *testing.T) {
	e := newEnv(t)
	in := e.move(t, "p1", entity.MovementTypeIncoming, 12)
	assert.Equal(t, int64(12), in.BalanceAfter)
	assert.Equal(t, inventory.DefaultManualNote, in.Note)
	assert.Equal(t, entity.ReferenceManual, in.ReferenceType)

	out := e.move(t, "p1", entity.MovementTypeOutgoing, 5)
	assert.Equal(t, int64(7), out.BalanceAfter)

	// el ajuste siempre suma
	adj := e.move(t, "p1", entity.MovementTypeAdjustment, 3)
	assert.Equal(t, int64(10), adj.BalanceAfter)
}

func TestRegisterMovementInsufficientStock(t *testing.T) {
	e := newEnv(t)
	e.move(t, "p1", entity.MovementTypeIncoming, 2)

	_, err := e.movements.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		ProductID: "p1", Type: entity.MovementTypeOutgoing, Quantity: 3,
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(1), stockErr.Shortfall())

	list, total, err := e.repos.Movements.List(context.Background(), repository.MovementFilter{ProductID: "p1", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)
}

func TestRegisterMovementValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	negative := decimal.NewFromInt(-1)
	cases := map[string]inventory.MovementInputDTO{
		"tipo recibo":      {ProductID: "p1", Type: entity.MovementTypeReceipt, Quantity: 1},
		"tipo desconocido": {ProductID: "p1", Type: "transfer", Quantity: 1},
		"sin producto":     {Type: entity.MovementTypeIncoming, Quantity: 1},
		"cantidad cero":    {ProductID: "p1", Type: entity.MovementTypeIncoming},
		"costo negativo":   {ProductID: "p1", Type: entity.MovementTypeIncoming, Quantity: 1, CostPrice: &negative},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.movements.RegisterMovement(ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, err := e.movements.RegisterMovement(ctx, inventory.MovementInputDTO{ProductID: "nope", Type: entity.MovementTypeIncoming, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterMovementAbortsOnLedgerFailure(t *testing.T) {
	e := newEnv(t)
	boom := errors.New("conexión perdida")
	e.store.SetFault(func(op string) error {
		if op == "movements.create" {
			return boom
		}
		return nil
	})
	_, err := e.movements.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		ProductID: "p1", Type: entity.MovementTypeIncoming, Quantity: 4,
	})
	assert.ErrorIs(t, err, domain.ErrTransactionAborted)
	e.store.SetFault(nil)

	balance, err := e.repos.Stock.GetBalance(context.Background(), "p1")
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestAddStock(t *testing.T) {
	e := newEnv(t)
	out, err := e.movements.AddStock(context.Background(), "u-1", "p2", dto.AddStockRequest{Quantity: 8, Note: "reposición"})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeIncoming, out.Type)
	assert.Equal(t, int64(8), out.BalanceAfter)
	assert.Equal(t, "reposición", out.Note)
	assert.Equal(t, "u-1", out.CreatedBy)
}

func TestStockSummary(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.move(t, "p1", entity.MovementTypeIncoming, 40)
	e.move(t, "p1", entity.MovementTypeOutgoing, 12)
	e.move(t, "p1", entity.MovementTypeAdjustment, 2)

	s, err := e.recon.StockSummary(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(40), s.Incoming)
	assert.Equal(t, int64(12), s.Outgoing)
	assert.Equal(t, int64(2), s.Adjustment)
	assert.Equal(t, int64(30), s.LedgerStock)
	assert.Equal(t, int64(30), s.Stock)
	assert.True(t, s.Reconciled)
	assert.Equal(t, "Arroz", s.ProductName)

	// escritura directa del saldo sin entrada de ledger: la conciliación lo detecta
	_, err = e.repos.Stock.ApplyDelta(ctx, "p1", 5)
	require.NoError(t, err)
	s, err = e.recon.StockSummary(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), s.Drift)
	assert.False(t, s.Reconciled)

	_, err = e.recon.StockSummary(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPrediction(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.recon.Prediction(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, p.PredictedOutOfStock)
	assert.Nil(t, p.DaysLeft)
	assert.False(t, p.Available)
	assert.Equal(t, 30, p.WindowDays)

	e.move(t, "p1", entity.MovementTypeIncoming, 90)
	e.move(t, "p1", entity.MovementTypeOutgoing, 60)
	p, err = e.recon.Prediction(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(60), p.TotalOutgoing)
	assert.Equal(t, "2", p.AvgDailySales.String())
	require.NotNil(t, p.DaysLeft)
	assert.Equal(t, "15", p.DaysLeft.String())
	require.NotNil(t, p.PredictedOutOfStock)
	require.NotNil(t, p.RecommendedReorder)
	assert.Equal(t, p.PredictedOutOfStock.AddDate(0, 0, -1), *p.RecommendedReorder)
	assert.True(t, p.Available)
}

func TestPredictionIgnoresInvoiceReverts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	invoices := invoice.NewUseCase(memory.NewTxRunner(e.store), inventory.NewLedgerWriter(), e.repos.Invoices, e.repos.Products, nil)

	inv, err := invoices.Create(ctx, "u-1", dto.CreateInvoiceRequest{
		Type:  entity.InvoiceTypeIncoming,
		Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 50}},
	})
	require.NoError(t, err)
	require.NoError(t, invoices.Delete(ctx, "u-1", inv.ID))

	p, err := e.recon.Prediction(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.TotalOutgoing)
	assert.False(t, p.Available)

	// las ventas reales sí cuentan
	e.move(t, "p1", entity.MovementTypeIncoming, 30)
	e.move(t, "p1", entity.MovementTypeOutgoing, 15)
	p, err = e.recon.Prediction(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(15), p.TotalOutgoing)
	assert.True(t, p.Available)
}

func TestLowStock(t *testing.T) {
	e := newEnv(t)
	e.move(t, "p1", entity.MovementTypeIncoming, 11) // umbral por defecto 10
	e.move(t, "p2", entity.MovementTypeIncoming, 3)  // umbral propio 3

	out, err := e.recon.LowStock(context.Background(), dto.PageRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "p2", out.Items[0].ID)
	assert.Equal(t, int64(3), out.Items[0].LowStockThreshold)
}

func TestMovementHistory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.move(t, "p1", entity.MovementTypeIncoming, 10)
	e.move(t, "p1", entity.MovementTypeOutgoing, 1)
	e.move(t, "p1", entity.MovementTypeOutgoing, 2)
	e.move(t, "p2", entity.MovementTypeIncoming, 1)

	out, err := e.recon.MovementHistory(ctx, dto.MovementHistoryRequest{ProductID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Page.Total)

	out, err = e.recon.MovementHistory(ctx, dto.MovementHistoryRequest{ProductID: "p1", Type: entity.MovementTypeOutgoing})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Page.Total)

	_, err = e.recon.MovementHistory(ctx, dto.MovementHistoryRequest{ProductID: "p1", Type: "transfer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	from, to := time.Now(), time.Now().Add(-time.Hour)
	_, err = e.recon.MovementHistory(ctx, dto.MovementHistoryRequest{ProductID: "p1", From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.recon.MovementHistory(ctx, dto.MovementHistoryRequest{ProductID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
