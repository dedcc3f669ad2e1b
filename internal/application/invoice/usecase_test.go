package invoice_test

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

const userID = "u-1"

type fixture struct {
	store *memory.Store
	repos repository.TxRepositories
	uc    *invoice.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	uc := invoice.NewUseCase(memory.NewTxRunner(store), inventory.NewLedgerWriter(), repos.Invoices, repos.Products, nil)
	return &fixture{store: store, repos: repos, uc: uc}
}

func (f *fixture) product(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.repos.Products.Create(context.Background(), &entity.Product{
		ID: id, Name: id, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))
}

func (f *fixture) stock(t *testing.T, id string) int64 {
	t.Helper()
	balance, err := f.repos.Stock.GetBalance(context.Background(), id)
	require.NoError(t, err)
	return balance
}

func (f *fixture) movements(t *testing.T, referenceID string) []*entity.StockMovement {
	t.Helper()
	list, _, err := f.repos.Movements.List(context.Background(), repository.MovementFilter{ReferenceID: referenceID, Limit: 100})
	require.NoError(t, err)
	return list
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestCreateIncoming(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1")

	out, err := f.uc.Create(context.Background(), userID, dto.CreateInvoiceRequest{
		Type:  entity.InvoiceTypeIncoming,
		Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 10, SalePrice: dec(12000)}},
	})
	require.NoError(t, err)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(120000)))
	assert.Equal(t, entity.DefaultLineUnit, out.Lines[0].Unit)
	assert.Equal(t, int64(10), f.stock(t, "p1"))

	movs := f.movements(t, out.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeIncoming, movs[0].Type)
	assert.Equal(t, entity.ReferenceInvoice, movs[0].ReferenceType)
	assert.Equal(t, userID, movs[0].CreatedBy)
	assert.Equal(t, int64(10), movs[0].BalanceAfter)
}

func TestCreateOutgoingBeyondStockLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1")
	f.product(t, "p2")
	_, err := f.uc.Create(context.Background(), userID, dto.CreateInvoiceRequest{
		Type: entity.InvoiceTypeIncoming,
		Lines: []dto.InvoiceLineRequest{
			{ProductID: "p1", Quantity: 5},
			{ProductID: "p2", Quantity: 2},
		},
	})
	require.NoError(t, err)

	// la primera línea alcanza, la segunda no: nada debe quedar aplicado
	_, err = f.uc.Create(context.Background(), userID, dto.CreateInvoiceRequest{
		Type: entity.InvoiceTypeOutgoing,
		Lines: []dto.InvoiceLineRequest{
			{ProductID: "p1", Quantity: 5},
			{ProductID: "p2", Quantity: 3},
		},
	})
	require.Error(t, err)
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "p2", stockErr.ProductID)
	assert.Equal(t, int64(2), stockErr.Available)
	assert.Equal(t, int64(3), stockErr.Required)

	assert.Equal(t, int64(5), f.stock(t, "p1"))
	assert.Equal(t, int64(2), f.stock(t, "p2"))
	list, total, err := f.repos.Invoices.List(context.Background(), repository.InvoiceFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1")
	ctx := context.Background()

	_, err := f.uc.Create(ctx, userID, dto.CreateInvoiceRequest{Type: "transfer", Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(ctx, userID, dto.CreateInvoiceRequest{Type: entity.InvoiceTypeIncoming})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(ctx, userID, dto.CreateInvoiceRequest{Type: entity.InvoiceTypeIncoming, Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 0}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(ctx, userID, dto.CreateInvoiceRequest{Type: entity.InvoiceTypeIncoming, Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 1, SalePrice: dec(-1)}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	fine := decimal.RequireFromString("1.005")
	_, err = f.uc.Create(ctx, userID, dto.CreateInvoiceRequest{Type: entity.InvoiceTypeIncoming, Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 1, SalePrice: &fine}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.Create(ctx, userID, dto.CreateInvoiceRequest{Type: entity.InvoiceTypeIncoming, Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 1, CostPrice: &fine}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(0), f.stock(t, "p1"))

	_, err = f.uc.Create(ctx, userID, dto.CreateInvoiceRequest{Type: entity.InvoiceTypeIncoming, Lines: []dto.InvoiceLineRequest{{ProductID: "nope", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateNetsDifference(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1")
	ctx := context.Background()

	created, err := f.uc.Create(ctx, userID, dto.CreateInvoiceRequest{
		Type:  entity.InvoiceTypeIncoming,
		Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 10}},
	})
	require.NoError(t, err)

	note := "corregida"
	updated, err := f.uc.Update(ctx, userID, created.ID, dto.UpdateInvoiceRequest{
		Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 4, SalePrice: dec(100)}},
		Note:  &note,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), f.stock(t, "p1"))
	assert.Equal(t, "corregida", updated.Note)
	assert.True(t, updated.Total.Equal(decimal.NewFromInt(400)))

	movs := f.movements(t, created.ID)
	require.Len(t, movs, 3)
	var reverts int
	for _, m := range movs {
		if m.Note == invoice.RevertNote {
			reverts++
			assert.Equal(t, entity.MovementTypeOutgoing, m.Type)
		}
	}
	assert.Equal(t, 1, reverts)
}

func TestUpdateTypeFlip(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1")
	ctx := context.Background()

	_, err := f.uc.Create(ctx, userID, dto.CreateInvoiceRequest{
		Type:  entity.InvoiceTypeIncoming,
		Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 20}},
	})
	require.NoError(t, err)
	out, err := f.uc.Create(ctx, userID, dto.CreateInvoiceRequest{
		Type:  entity.InvoiceTypeOutgoing,
		Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), f.stock(t, "p1"))

	incoming := entity.InvoiceTypeIncoming
	_, err = f.uc.Update(ctx, userID, out.ID, dto.UpdateInvoiceRequest{Type: &incoming})
	require.NoError(t, err)
	assert.Equal(t, int64(25), f.stock(t, "p1"))
}

func TestUpdateRevertBeyondStockFails(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1")
	ctx := context.Background()

	in, err := f.uc.Create(ctx, userID, dto.CreateInvoiceRequest{
		Type:  entity.InvoiceTypeIncoming,
		Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 10}},
	})
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, userID, dto.CreateInvoiceRequest{
		Type:  entity.InvoiceTypeOutgoing,
		Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 8}},
	})
	require.NoError(t, err)

	// revertir la entrada de 10 con solo 2 disponibles no es posible
	_, err = f.uc.Update(ctx, userID, in.ID, dto.UpdateInvoiceRequest{
		Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 9}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(2), f.stock(t, "p1"))

	got, err := f.uc.Get(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Lines[0].Quantity)
}

func TestDeleteReverts(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1")
	ctx := context.Background()

	created, err := f.uc.Create(ctx, userID, dto.CreateInvoiceRequest{
		Type:  entity.InvoiceTypeIncoming,
		Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 10}},
	})
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete(ctx, userID, created.ID))
	assert.Equal(t, int64(0), f.stock(t, "p1"))

	_, err = f.uc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	// el ledger conserva entrada y reversión
	movs := f.movements(t, created.ID)
	require.Len(t, movs, 2)
	sources := map[string]string{}
	for _, m := range movs {
		sources[m.Type] = m.Source
	}
	assert.Equal(t, entity.MovementSourceInvoice, sources[entity.MovementTypeIncoming])
	assert.Equal(t, entity.MovementSourceInvoiceRevert, sources[entity.MovementTypeOutgoing])

	assert.ErrorIs(t, f.uc.Delete(ctx, userID, created.ID), domain.ErrNotFound)
}

func TestAtomicityOnInfrastructureFailure(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1")
	ctx := context.Background()

	created, err := f.uc.Create(ctx, userID, dto.CreateInvoiceRequest{
		Type:  entity.InvoiceTypeIncoming,
		Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 10}},
	})
	require.NoError(t, err)

	boom := errors.New("disco lleno")
	f.store.SetFault(func(op string) error {
		if op == "invoices.update" {
			return boom
		}
		return nil
	})
	_, err = f.uc.Update(ctx, userID, created.ID, dto.UpdateInvoiceRequest{
		Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 3}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransactionAborted)
	assert.ErrorIs(t, err, boom)
	f.store.SetFault(nil)

	assert.Equal(t, int64(10), f.stock(t, "p1"))
	assert.Len(t, f.movements(t, created.ID), 1)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.uc.Create(ctx, userID, dto.CreateInvoiceRequest{
			Type:        entity.InvoiceTypeIncoming,
			ComingPlace: "Proveedor Sur",
			Lines:       []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 2}},
		})
		require.NoError(t, err)
	}
	_, err := f.uc.Create(ctx, "u-2", dto.CreateInvoiceRequest{
		Type:  entity.InvoiceTypeOutgoing,
		Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	out, err := f.uc.List(ctx, dto.InvoiceListRequest{Type: entity.InvoiceTypeIncoming, PageRequest: dto.PageRequest{Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, 3, out.Page.Total)
	assert.Equal(t, 2, out.Page.Pages)

	out, err = f.uc.List(ctx, dto.InvoiceListRequest{CreatedBy: "u-2"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Page.Total)

	out, err = f.uc.List(ctx, dto.InvoiceListRequest{Search: "sur"})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Page.Total)
}

func TestDownloadPDFWithoutGenerator(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.uc.DownloadPDF(context.Background(), "x")
	assert.Error(t, err)
}
