package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Actor usuario autenticado que ejecuta la operación.
type Actor struct {
	UserID string
	Role   string
}

// IsAdmin indica si el actor es administrador.
func (a Actor) IsAdmin() bool { return a.Role == entity.RoleAdmin }

// ProductUseCase casos de uso CRUD para productos. Stock se maneja vía movimientos del ledger.
type ProductUseCase struct {
	repo     repository.ProductRepository
	txRunner inventory.TxRunner
	ledger   *inventory.LedgerWriter
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, txRunner inventory.TxRunner, ledger *inventory.LedgerWriter) *ProductUseCase {
	return &ProductUseCase{repo: repo, txRunner: txRunner, ledger: ledger}
}

func validatePrices(cost, selling decimal.Decimal) error {
	if cost.IsNegative() {
		return domain.NewValidationError("cost_price", "no puede ser negativo")
	}
	if selling.IsNegative() {
		return domain.NewValidationError("selling_price", "no puede ser negativo")
	}
	if !entity.HasPriceScale(cost) {
		return domain.NewValidationError("cost_price", "máximo 2 decimales")
	}
	if !entity.HasPriceScale(selling) {
		return domain.NewValidationError("selling_price", "máximo 2 decimales")
	}
	return nil
}

// Create crea un producto del vendedor. Stock inicial > 0 se registra como entrada en el ledger.
func (uc *ProductUseCase) Create(ctx context.Context, actor Actor, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if actor.Role != entity.RoleSeller && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if in.Name == "" {
		return nil, domain.NewValidationError("name", "requerido")
	}
	if in.Stock < 0 {
		return nil, domain.NewValidationError("stock", "no puede ser negativo")
	}
	if err := validatePrices(in.Price.CostPrice, in.Price.SellingPrice); err != nil {
		return nil, err
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		SellerID:    actor.UserID,
		Price: entity.Price{
			CostPrice:    in.Price.CostPrice,
			SellingPrice: in.Price.SellingPrice,
		},
		LowStockThreshold: in.LowStockThreshold,
		IsActive:          true,
		Tags:              in.Tags,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	product.RecalculateIncome()

	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		if err := repos.Products.Create(ctx, product); err != nil {
			return err
		}
		if in.Stock == 0 {
			return nil
		}
		cost, selling := product.Price.CostPrice, product.Price.SellingPrice
		mov, err := uc.ledger.RecordMovement(ctx, repos, inventory.MovementInput{
			ProductID:     product.ID,
			Type:          entity.MovementTypeIncoming,
			Quantity:      in.Stock,
			CostPrice:     &cost,
			SellingPrice:  &selling,
			Note:          "stock inicial",
			Source:        "product",
			ReferenceID:   product.ID,
			ReferenceType: entity.ReferenceProduct,
			CreatedBy:     actor.UserID,
		})
		if err != nil {
			return err
		}
		product.Stock = mov.BalanceAfter
		return nil
	})
	if err != nil {
		return nil, domain.AbortError("product.create", err)
	}
	resp := inventory.ToProductResponse(product)
	return &resp, nil
}

// GetByID obtiene un producto por ID. Devuelve (nil, nil) si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	resp := inventory.ToProductResponse(product)
	return &resp, nil
}

// Update actualiza un producto del actor (o cualquiera si es admin).
// Un cambio de stock se registra en el ledger por la diferencia, nunca como escritura directa.
func (uc *ProductUseCase) Update(ctx context.Context, actor Actor, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if in.Stock != nil && *in.Stock < 0 {
		return nil, domain.NewValidationError("stock", "no puede ser negativo")
	}
	var updated *entity.Product
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		if err := repos.Stock.LockProducts(ctx, []string{id}); err != nil {
			return err
		}
		product, err := repos.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NewNotFoundError("producto", id)
		}
		if !actor.IsAdmin() && !product.OwnedBy(actor.UserID) {
			return domain.ErrForbidden
		}
		if in.Name != nil {
			if *in.Name == "" {
				return domain.NewValidationError("name", "no puede estar vacío")
			}
			product.Name = *in.Name
		}
		if in.Description != nil {
			product.Description = *in.Description
		}
		if in.CategoryID != nil {
			product.CategoryID = *in.CategoryID
		}
		if in.CostPrice != nil {
			product.Price.CostPrice = *in.CostPrice
		}
		if in.SellingPrice != nil {
			product.Price.SellingPrice = *in.SellingPrice
		}
		if err := validatePrices(product.Price.CostPrice, product.Price.SellingPrice); err != nil {
			return err
		}
		if in.LowStockThreshold != nil {
			product.LowStockThreshold = *in.LowStockThreshold
		}
		if in.IsActive != nil {
			product.IsActive = *in.IsActive
		}
		if in.Tags != nil {
			product.Tags = in.Tags
		}
		product.RecalculateIncome()
		product.UpdatedAt = time.Now()
		if err := repos.Products.Update(ctx, product); err != nil {
			return err
		}

		if in.Stock != nil && *in.Stock != product.Stock {
			diff := *in.Stock - product.Stock
			movType := entity.MovementTypeIncoming
			if diff < 0 {
				movType = entity.MovementTypeOutgoing
				diff = -diff
			}
			mov, err := uc.ledger.RecordMovement(ctx, repos, inventory.MovementInput{
				ProductID:     product.ID,
				Type:          movType,
				Quantity:      diff,
				Note:          "ajuste por edición de producto",
				Source:        "product",
				ReferenceID:   product.ID,
				ReferenceType: entity.ReferenceProduct,
				CreatedBy:     actor.UserID,
			})
			if err != nil {
				return err
			}
			product.Stock = mov.BalanceAfter
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, domain.AbortError("product.update", err)
	}
	resp := inventory.ToProductResponse(updated)
	return &resp, nil
}

// List lista productos con filtros y paginación.
func (uc *ProductUseCase) List(ctx context.Context, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage()
	filter.Limit, filter.Offset = page.Limit, page.Offset
	list, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, inventory.ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.NewPageResponse(page.Limit, page.Offset, total),
	}, nil
}

// Delete elimina un producto del actor (o cualquiera si es admin).
// Las entradas del ledger del producto se conservan. Un producto con líneas de
// factura no se elimina: devuelve ErrConflict.
func (uc *ProductUseCase) Delete(ctx context.Context, actor Actor, id string) error {
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		product, err := repos.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NewNotFoundError("producto", id)
		}
		if !actor.IsAdmin() && !product.OwnedBy(actor.UserID) {
			return domain.ErrForbidden
		}
		// las facturas guardan sus líneas y deben poder revertirse
		referenced, err := repos.Invoices.ExistsForProduct(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return fmt.Errorf("%w: producto %s referenciado por facturas", domain.ErrConflict, id)
		}
		return repos.Products.Delete(ctx, id)
	})
	return domain.AbortError("product.delete", err)
}
