package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, store *Store, id string, stock int64) {
	t.Helper()
	ctx := context.Background()
	runner := NewTxRunner(store)
	require.NoError(t, runner.Run(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		if err := repos.Products.Create(ctx, &entity.Product{ID: id, Name: id, IsActive: true, CreatedAt: time.Now()}); err != nil {
			return err
		}
		if stock == 0 {
			return nil
		}
		_, err := repos.Stock.ApplyDelta(ctx, id, stock)
		return err
	}))
}

func TestTxRunner_RollbackOnError(t *testing.T) {
	store := NewStore()
	seedProduct(t, store, "p1", 10)
	runner := NewTxRunner(store)
	boom := errors.New("boom")

	err := runner.Run(context.Background(), func(ctx context.Context, repos repository.TxRepositories) error {
		if _, err := repos.Stock.ApplyDelta(ctx, "p1", -4); err != nil {
			return err
		}
		if err := repos.Movements.Create(ctx, &entity.StockMovement{ID: "m1", ProductID: "p1", Quantity: 4, Type: entity.MovementTypeOutgoing}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	balance, err := store.Repositories().Stock.GetBalance(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)
	_, total, err := NewMovementRepository(store).List(context.Background(), repository.MovementFilter{ProductID: "p1"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestStockRepo_ApplyDelta_NeverNegative(t *testing.T) {
	store := NewStore()
	seedProduct(t, store, "p1", 5)
	stock := store.Repositories().Stock

	_, err := stock.ApplyDelta(context.Background(), "p1", -6)
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(5), insufficient.Available)
	assert.Equal(t, int64(6), insufficient.Required)

	balance, err := stock.ApplyDelta(context.Background(), "p1", -5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	_, err = stock.ApplyDelta(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTxRunner_ConcurrentOutgoing(t *testing.T) {
	store := NewStore()
	seedProduct(t, store, "p1", 10)
	runner := NewTxRunner(store)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := runner.Run(context.Background(), func(ctx context.Context, repos repository.TxRepositories) error {
				_, err := repos.Stock.ApplyDelta(ctx, "p1", -1)
				return err
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	balance, err := store.Repositories().Stock.GetBalance(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestProductRepo_UpdateKeepsStock(t *testing.T) {
	store := NewStore()
	seedProduct(t, store, "p1", 7)
	repo := NewProductRepository(store)
	ctx := context.Background()

	p, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	p.Name = "nuevo"
	p.Stock = 999
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "nuevo", got.Name)
	assert.Equal(t, int64(7), got.Stock)
}

func TestProductRepo_ListLowStock(t *testing.T) {
	store := NewStore()
	seedProduct(t, store, "a", 3)
	seedProduct(t, store, "b", 50)
	seedProduct(t, store, "c", 10)

	list, err := NewProductRepository(store).ListLowStock(context.Background(), 10, 20, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "c", list[1].ID)
}

func TestMovementRepo_SumByTypeAndWindow(t *testing.T) {
	store := NewStore()
	repo := NewMovementRepository(store)
	ctx := context.Background()
	now := time.Now()
	old := now.AddDate(0, 0, -40)

	require.NoError(t, repo.Create(ctx, &entity.StockMovement{ID: "1", ProductID: "p1", Type: entity.MovementTypeIncoming, Quantity: 10, CreatedAt: old}))
	require.NoError(t, repo.Create(ctx, &entity.StockMovement{ID: "2", ProductID: "p1", Type: entity.MovementTypeOutgoing, Quantity: 3, CreatedAt: old}))
	require.NoError(t, repo.Create(ctx, &entity.StockMovement{ID: "3", ProductID: "p1", Type: entity.MovementTypeOutgoing, Quantity: 2, CreatedAt: now}))
	require.NoError(t, repo.Create(ctx, &entity.StockMovement{ID: "4", ProductID: "p2", Type: entity.MovementTypeOutgoing, Quantity: 9, CreatedAt: now}))

	all, err := repo.SumByType(ctx, "p1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(10), all[entity.MovementTypeIncoming])
	assert.Equal(t, int64(5), all[entity.MovementTypeOutgoing])

	from := now.AddDate(0, 0, -30)
	window, err := repo.SumByType(ctx, "p1", &from, &now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), window[entity.MovementTypeOutgoing])

	list, total, err := repo.List(ctx, repository.MovementFilter{ProductID: "p1", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, "3", list[0].ID)
}

func TestMovementRepo_SumSalesSkipsInvoiceReverts(t *testing.T) {
	store := NewStore()
	repo := NewMovementRepository(store)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &entity.StockMovement{ID: "1", ProductID: "p1", Type: entity.MovementTypeOutgoing, Quantity: 4, Source: entity.MovementSourceInvoice, CreatedAt: now}))
	require.NoError(t, repo.Create(ctx, &entity.StockMovement{ID: "2", ProductID: "p1", Type: entity.MovementTypeOutgoing, Quantity: 6, Source: entity.MovementSourceInvoiceRevert, CreatedAt: now}))
	require.NoError(t, repo.Create(ctx, &entity.StockMovement{ID: "3", ProductID: "p1", Type: entity.MovementTypeOutgoing, Quantity: 1, CreatedAt: now}))
	require.NoError(t, repo.Create(ctx, &entity.StockMovement{ID: "4", ProductID: "p1", Type: entity.MovementTypeIncoming, Quantity: 50, CreatedAt: now}))
	require.NoError(t, repo.Create(ctx, &entity.StockMovement{ID: "5", ProductID: "p1", Type: entity.MovementTypeOutgoing, Quantity: 8, CreatedAt: now.AddDate(0, 0, -40)}))

	from := now.AddDate(0, 0, -30)
	sales, err := repo.SumSales(ctx, "p1", &from, &now)
	require.NoError(t, err)
	assert.Equal(t, int64(5), sales)

	all, err := repo.SumSales(ctx, "p1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(13), all)
}

func TestInvoiceRepo_ExistsForProduct(t *testing.T) {
	store := NewStore()
	repo := NewInvoiceRepository(store)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &entity.Invoice{
		ID:    "f-1",
		Type:  entity.InvoiceTypeIncoming,
		Lines: []entity.InvoiceLine{{ProductID: "p1", Quantity: 1}},
	}))

	found, err := repo.ExistsForProduct(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.ExistsForProduct(ctx, "p2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFaultInjection(t *testing.T) {
	store := NewStore()
	seedProduct(t, store, "p1", 1)
	store.SetFault(func(op string) error {
		if op == "movements.create" {
			return errors.New("disco lleno")
		}
		return nil
	})
	err := NewTxRunner(store).Run(context.Background(), func(ctx context.Context, repos repository.TxRepositories) error {
		if _, err := repos.Stock.ApplyDelta(ctx, "p1", 1); err != nil {
			return err
		}
		return repos.Movements.Create(ctx, &entity.StockMovement{ID: "m", ProductID: "p1", Type: entity.MovementTypeIncoming, Quantity: 1})
	})
	require.Error(t, err)

	store.SetFault(nil)
	balance, err := store.Repositories().Stock.GetBalance(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), balance)
}
