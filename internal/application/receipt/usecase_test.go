package receipt_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/receipt"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

func setup(t *testing.T, defaultStatus string) (*receipt.UseCase, repository.TxRepositories) {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	ctx := context.Background()
	require.NoError(t, repos.Users.Create(ctx, &entity.User{ID: "u-1", Username: "ana", Email: "ana@example.com", Role: entity.RoleSeller}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "p1", Name: "Arroz", IsActive: true, CreatedAt: time.Now()}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "p2", Name: "Frijol", IsActive: true, CreatedAt: time.Now()}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "off", Name: "Viejo", IsActive: false, CreatedAt: time.Now()}))
	uc := receipt.NewUseCase(memory.NewTxRunner(store), inventory.NewLedgerWriter(), repos.Receipts, receipt.Config{DefaultStatus: defaultStatus})
	return uc, repos
}

func item(productID string, qty int64, cost, selling int64) dto.ReceiptItemRequest {
	return dto.ReceiptItemRequest{
		ProductID:    productID,
		Quantity:     qty,
		CostPrice:    decimal.NewFromInt(cost),
		SellingPrice: decimal.NewFromInt(selling),
	}
}

func balance(t *testing.T, repos repository.TxRepositories, id string) int64 {
	t.Helper()
	b, err := repos.Stock.GetBalance(context.Background(), id)
	require.NoError(t, err)
	return b
}

func TestCreateDraftDoesNotTouchStock(t *testing.T) {
	uc, repos := setup(t, "")
	out, err := uc.Create(context.Background(), "u-1", dto.CreateReceiptRequest{
		FromCompany: "Distribuidora Norte",
		Items:       []dto.ReceiptItemRequest{item("p1", 25, 1000, 1500), item("p2", 5, 200, 200)},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ReceiptStatusDraft, out.Status)
	assert.Equal(t, "u-1", out.ReceivedBy)
	assert.Equal(t, int64(30), out.TotalQuantity)
	assert.True(t, out.TotalAmount.Equal(decimal.NewFromInt(26000)))
	assert.Nil(t, out.ConfirmedAt)
	assert.Equal(t, int64(0), balance(t, repos, "p1"))
}

func TestConfirmAppliesEachItem(t *testing.T) {
	uc, repos := setup(t, entity.ReceiptStatusDraft)
	ctx := context.Background()
	created, err := uc.Create(ctx, "u-1", dto.CreateReceiptRequest{
		FromCompany: "Distribuidora Norte",
		Items:       []dto.ReceiptItemRequest{item("p1", 25, 1000, 1500), item("p2", 5, 200, 300)},
	})
	require.NoError(t, err)

	confirmed, err := uc.Confirm(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReceiptStatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, int64(25), balance(t, repos, "p1"))
	assert.Equal(t, int64(5), balance(t, repos, "p2"))

	movs, total, err := repos.Movements.List(ctx, repository.MovementFilter{ReferenceID: created.ID, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, m := range movs {
		assert.Equal(t, entity.MovementTypeReceipt, m.Type)
		assert.Equal(t, entity.ReferenceStockReceipt, m.ReferenceType)
		assert.Equal(t, "Distribuidora Norte", m.Source)
	}

	_, err = uc.Confirm(ctx, created.ID)
	var already *domain.AlreadyConfirmedError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, int64(25), balance(t, repos, "p1"))

	err = uc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrCannotDeleteConfirmed)
}

func TestDeleteDraft(t *testing.T) {
	uc, _ := setup(t, "")
	ctx := context.Background()
	created, err := uc.Create(ctx, "u-1", dto.CreateReceiptRequest{
		FromCompany: "Distribuidora Norte",
		Items:       []dto.ReceiptItemRequest{item("p1", 1, 10, 10)},
	})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, created.ID))
	_, err = uc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.Confirm(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDefaultConfirmedAppliesOnCreate(t *testing.T) {
	uc, repos := setup(t, entity.ReceiptStatusConfirmed)
	out, err := uc.Create(context.Background(), "u-1", dto.CreateReceiptRequest{
		FromCompany: "Distribuidora Norte",
		Items:       []dto.ReceiptItemRequest{item("p1", 7, 10, 12)},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ReceiptStatusConfirmed, out.Status)
	assert.Equal(t, int64(7), balance(t, repos, "p1"))
}

func TestCreateValidation(t *testing.T) {
	uc, repos := setup(t, "")
	ctx := context.Background()
	cases := map[string]dto.CreateReceiptRequest{
		"sin proveedor":     {Items: []dto.ReceiptItemRequest{item("p1", 1, 10, 10)}},
		"sin ítems":         {FromCompany: "X"},
		"cantidad cero":     {FromCompany: "X", Items: []dto.ReceiptItemRequest{item("p1", 0, 10, 10)}},
		"costo cero":        {FromCompany: "X", Items: []dto.ReceiptItemRequest{item("p1", 1, 0, 10)}},
		"venta bajo costo":  {FromCompany: "X", Items: []dto.ReceiptItemRequest{item("p1", 1, 10, 9)}},
		"producto inactivo": {FromCompany: "X", Items: []dto.ReceiptItemRequest{item("off", 1, 10, 10)}},
		"costo con tres decimales": {FromCompany: "X", Items: []dto.ReceiptItemRequest{{
			ProductID: "p1", Quantity: 1,
			CostPrice: decimal.RequireFromString("1.005"), SellingPrice: decimal.NewFromInt(2),
		}}},
		"venta con tres decimales": {FromCompany: "X", Items: []dto.ReceiptItemRequest{{
			ProductID: "p1", Quantity: 1,
			CostPrice: decimal.NewFromInt(1), SellingPrice: decimal.RequireFromString("2.125"),
		}}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Create(ctx, "u-1", req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, err := uc.Create(ctx, "u-1", dto.CreateReceiptRequest{FromCompany: "X", Items: []dto.ReceiptItemRequest{item("nope", 1, 10, 10)}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Create(ctx, "ghost", dto.CreateReceiptRequest{FromCompany: "X", Items: []dto.ReceiptItemRequest{item("p1", 1, 10, 10)}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, total, err := repos.Receipts.List(ctx, repository.ReceiptFilter{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestCreateRejectsCustomerAsReceiver(t *testing.T) {
	uc, repos := setup(t, entity.ReceiptStatusConfirmed)
	ctx := context.Background()
	require.NoError(t, repos.Users.Create(ctx, &entity.User{ID: "c-1", Username: "carla", Email: "carla@example.com", Role: entity.RoleCustomer}))

	_, err := uc.Create(ctx, "u-1", dto.CreateReceiptRequest{
		FromCompany: "Distribuidora Norte",
		ReceivedBy:  "c-1",
		Items:       []dto.ReceiptItemRequest{item("p1", 4, 10, 12)},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "received_by", verr.Field)

	_, total, err := repos.Receipts.List(ctx, repository.ReceiptFilter{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Equal(t, int64(0), balance(t, repos, "p1"))
}

func TestListByStatus(t *testing.T) {
	uc, _ := setup(t, "")
	ctx := context.Background()
	a, err := uc.Create(ctx, "u-1", dto.CreateReceiptRequest{FromCompany: "A", Items: []dto.ReceiptItemRequest{item("p1", 1, 10, 10)}})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "u-1", dto.CreateReceiptRequest{FromCompany: "B", Items: []dto.ReceiptItemRequest{item("p1", 1, 10, 10)}})
	require.NoError(t, err)
	_, err = uc.Confirm(ctx, a.ID)
	require.NoError(t, err)

	out, err := uc.List(ctx, dto.ReceiptListRequest{Status: entity.ReceiptStatusDraft})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "B", out.Items[0].FromCompany)

	_, err = uc.List(ctx, dto.ReceiptListRequest{Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
