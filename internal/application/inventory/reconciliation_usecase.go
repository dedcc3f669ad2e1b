package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"golang.org/x/sync/errgroup"
)

// ReconciliationConfig parámetros de lectura del ledger.
type ReconciliationConfig struct {
	PredictionWindowDays int
	LowStockThreshold    int64
}

// ReconciliationUseCase consultas de solo lectura sobre el ledger: conciliación,
// predicción de agotamiento, stock bajo e historial de movimientos.
type ReconciliationUseCase struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	cfg          ReconciliationConfig
	now          func() time.Time
}

// NewReconciliationUseCase construye el caso de uso.
func NewReconciliationUseCase(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	cfg ReconciliationConfig,
) *ReconciliationUseCase {
	if cfg.PredictionWindowDays <= 0 {
		cfg.PredictionWindowDays = domaininv.DefaultPredictionWindowDays
	}
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = entity.DefaultLowStockThreshold
	}
	return &ReconciliationUseCase{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		cfg:          cfg,
		now:          time.Now,
	}
}

// loadProduct carga el producto y, en paralelo, ejecuta la lectura agregada del ledger.
func (uc *ReconciliationUseCase) loadProduct(ctx context.Context, productID string, aggregate func(ctx context.Context) error) (*entity.Product, error) {
	var product *entity.Product
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := uc.productRepo.GetByID(gctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NewNotFoundError("producto", productID)
		}
		product = p
		return nil
	})
	g.Go(func() error { return aggregate(gctx) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return product, nil
}

// StockSummary concilia el saldo vivo con los totales del ledger.
func (uc *ReconciliationUseCase) StockSummary(ctx context.Context, productID string) (*dto.StockSummaryResponse, error) {
	var totals repository.MovementTotals
	product, err := uc.loadProduct(ctx, productID, func(ctx context.Context) error {
		t, err := uc.movementRepo.SumByType(ctx, productID, nil, nil)
		totals = t
		return err
	})
	if err != nil {
		return nil, err
	}
	s := domaininv.Summarize(product.ID, product.Stock, totals)
	return &dto.StockSummaryResponse{
		ProductID:   s.ProductID,
		ProductName: product.Name,
		Incoming:    s.Incoming,
		Outgoing:    s.Outgoing,
		Adjustment:  s.Adjustment,
		Receipt:     s.Receipt,
		LedgerStock: s.LedgerStock,
		Stock:       s.Stock,
		Drift:       s.Drift,
		Reconciled:  s.Reconciled(),
	}, nil
}

// Prediction pronostica el agotamiento a partir de las ventas de la ventana configurada.
// Las salidas que revierten facturas editadas o eliminadas no cuentan como ventas.
func (uc *ReconciliationUseCase) Prediction(ctx context.Context, productID string) (*dto.PredictionResponse, error) {
	now := uc.now()
	from := now.AddDate(0, 0, -uc.cfg.PredictionWindowDays)
	var sales int64
	product, err := uc.loadProduct(ctx, productID, func(ctx context.Context) error {
		n, err := uc.movementRepo.SumSales(ctx, productID, &from, &now)
		sales = n
		return err
	})
	if err != nil {
		return nil, err
	}
	p := domaininv.Predict(product.ID, product.Stock, sales, uc.cfg.PredictionWindowDays, now)
	return &dto.PredictionResponse{
		ProductID:           p.ProductID,
		ProductName:         product.Name,
		CurrentStock:        p.CurrentStock,
		WindowDays:          p.WindowDays,
		TotalOutgoing:       p.TotalOutgoing,
		AvgDailySales:       p.AvgDailySales,
		DaysLeft:            p.DaysLeft,
		PredictedOutOfStock: p.PredictedOutOfStock,
		RecommendedReorder:  p.RecommendedReorder,
		Available:           p.Available(),
		Message:             p.Message,
	}, nil
}

// LowStock lista productos con stock en o bajo su umbral.
func (uc *ReconciliationUseCase) LowStock(ctx context.Context, page dto.PageRequest) (*dto.LowStockResponse, error) {
	page.DefaultPage()
	list, err := uc.productRepo.ListLowStock(ctx, uc.cfg.LowStockThreshold, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, ToProductResponse(p))
	}
	return &dto.LowStockResponse{Items: items, Count: len(items)}, nil
}

// MovementHistory lista las entradas del ledger de un producto, más recientes primero.
func (uc *ReconciliationUseCase) MovementHistory(ctx context.Context, in dto.MovementHistoryRequest) (*dto.MovementListResponse, error) {
	if in.Type != "" && !entity.IsValidMovementType(in.Type) {
		return nil, domain.NewValidationError("type", "tipo de movimiento inválido")
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return nil, domain.NewValidationError("from", "debe ser anterior a to")
	}
	in.DefaultPage()
	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("producto", in.ProductID)
	}
	list, total, err := uc.movementRepo.List(ctx, repository.MovementFilter{
		ProductID: in.ProductID,
		Type:      in.Type,
		From:      in.From,
		To:        in.To,
		Limit:     in.Limit,
		Offset:    in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, ToMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.NewPageResponse(in.Limit, in.Offset, total),
	}, nil
}

// ToProductResponse convierte un producto a DTO.
func ToProductResponse(p *entity.Product) dto.ProductResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		SellerID:    p.SellerID,
		Price: dto.PriceDTO{
			CostPrice:    p.Price.CostPrice,
			SellingPrice: p.Price.SellingPrice,
			Income:       p.Price.Income,
		},
		Stock:             p.Stock,
		LowStockThreshold: p.EffectiveLowStockThreshold(),
		IsActive:          p.IsActive,
		Tags:              tags,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
