package receipt

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
)

// Config comportamiento configurable de los recibos.
type Config struct {
	// DefaultStatus estado inicial de un recibo nuevo: draft o confirmed.
	DefaultStatus string
}

// UseCase recibos de mercancía: se crean en borrador y afectan el stock solo al confirmar.
type UseCase struct {
	txRunner    inventory.TxRunner
	ledger      *inventory.LedgerWriter
	receiptRepo repository.StockReceiptRepository
	cfg         Config
	now         func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner inventory.TxRunner,
	ledger *inventory.LedgerWriter,
	receiptRepo repository.StockReceiptRepository,
	cfg Config,
) *UseCase {
	if !entity.IsValidReceiptStatus(cfg.DefaultStatus) {
		cfg.DefaultStatus = entity.ReceiptStatusDraft
	}
	return &UseCase{
		txRunner:    txRunner,
		ledger:      ledger,
		receiptRepo: receiptRepo,
		cfg:         cfg,
		now:         time.Now,
	}
}

func validateItems(in []dto.ReceiptItemRequest) ([]entity.StockReceiptItem, error) {
	if len(in) == 0 {
		return nil, domain.NewValidationError("items", "se requiere al menos un ítem")
	}
	items := make([]entity.StockReceiptItem, 0, len(in))
	for i, it := range in {
		field := fmt.Sprintf("items[%d]", i)
		if it.ProductID == "" {
			return nil, domain.NewValidationError(field+".product_id", "requerido")
		}
		if it.Quantity <= 0 {
			return nil, domain.NewValidationError(field+".quantity", "debe ser mayor que cero")
		}
		if !it.CostPrice.IsPositive() {
			return nil, domain.NewValidationError(field+".cost_price", "debe ser mayor que cero")
		}
		if it.SellingPrice.LessThan(it.CostPrice) {
			return nil, domain.NewValidationError(field+".selling_price", "no puede ser menor que cost_price")
		}
		if !entity.HasPriceScale(it.CostPrice) {
			return nil, domain.NewValidationError(field+".cost_price", "máximo 2 decimales")
		}
		if !entity.HasPriceScale(it.SellingPrice) {
			return nil, domain.NewValidationError(field+".selling_price", "máximo 2 decimales")
		}
		items = append(items, entity.StockReceiptItem{
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			CostPrice:    it.CostPrice,
			SellingPrice: it.SellingPrice,
		})
	}
	return items, nil
}

// applyItems suma cada ítem al stock y escribe una entrada "receipt" por ítem.
func (uc *UseCase) applyItems(ctx context.Context, repos repository.TxRepositories, r *entity.StockReceipt) error {
	if err := repos.Stock.LockProducts(ctx, r.ProductIDs()); err != nil {
		return err
	}
	for i, it := range r.Items {
		cost, selling := it.CostPrice, it.SellingPrice
		_, err := uc.ledger.RecordMovement(ctx, repos, inventory.MovementInput{
			ProductID:     it.ProductID,
			Type:          entity.MovementTypeReceipt,
			Quantity:      it.Quantity,
			CostPrice:     &cost,
			SellingPrice:  &selling,
			Note:          r.Note,
			Source:        r.FromCompany,
			ReferenceID:   r.ID,
			ReferenceType: entity.ReferenceStockReceipt,
			CreatedBy:     r.ReceivedBy,
		})
		if err != nil {
			return fmt.Errorf("ítem %d: %w", i, err)
		}
	}
	now := uc.now()
	r.Status = entity.ReceiptStatusConfirmed
	r.ConfirmedAt = &now
	r.UpdatedAt = now
	return nil
}

// Create valida y guarda un recibo. Si el estado por defecto es confirmed, el efecto
// sobre el stock se aplica en la misma transacción que el alta.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreateReceiptRequest) (*dto.ReceiptResponse, error) {
	if in.FromCompany == "" {
		return nil, domain.NewValidationError("from_company", "requerido")
	}
	receivedBy := in.ReceivedBy
	if receivedBy == "" {
		receivedBy = userID
	}
	if receivedBy == "" {
		return nil, domain.NewValidationError("received_by", "requerido")
	}
	items, err := validateItems(in.Items)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	r := &entity.StockReceipt{
		ID:          uuid.New().String(),
		FromCompany: in.FromCompany,
		ReceivedBy:  receivedBy,
		Items:       items,
		Note:        in.Note,
		Status:      entity.ReceiptStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.RecalculateTotals()

	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		user, err := repos.Users.GetByID(ctx, receivedBy)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.NewNotFoundError("usuario", receivedBy)
		}
		if !user.CanManageStock() {
			return domain.NewValidationError("received_by", "debe ser seller o admin")
		}
		for i, it := range r.Items {
			p, err := repos.Products.GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.NewNotFoundError("producto", it.ProductID)
			}
			if !p.IsActive {
				return domain.NewValidationError(fmt.Sprintf("items[%d].product_id", i), "producto inactivo")
			}
		}
		if uc.cfg.DefaultStatus == entity.ReceiptStatusConfirmed {
			if err := uc.applyItems(ctx, repos, r); err != nil {
				return err
			}
		}
		return repos.Receipts.Create(ctx, r)
	})
	if err != nil {
		return nil, domain.AbortError("receipt.create", err)
	}
	return ToReceiptResponse(r), nil
}

// Confirm aplica el recibo al stock. Solo es válido desde draft; un segundo intento
// devuelve AlreadyConfirmedError sin efecto.
func (uc *UseCase) Confirm(ctx context.Context, id string) (*dto.ReceiptResponse, error) {
	var confirmed *entity.StockReceipt
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		r, err := repos.Receipts.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.NewNotFoundError("recibo", id)
		}
		if r.IsConfirmed() {
			return &domain.AlreadyConfirmedError{ReceiptID: id}
		}
		if err := uc.applyItems(ctx, repos, r); err != nil {
			return err
		}
		r.RecalculateTotals()
		if err := repos.Receipts.Update(ctx, r); err != nil {
			return err
		}
		confirmed = r
		return nil
	})
	if err != nil {
		return nil, domain.AbortError("receipt.confirm", err)
	}
	return ToReceiptResponse(confirmed), nil
}

// Delete elimina un recibo en borrador. Los confirmados no se eliminan.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		r, err := repos.Receipts.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.NewNotFoundError("recibo", id)
		}
		if r.IsConfirmed() {
			return &domain.CannotDeleteConfirmedError{ReceiptID: id}
		}
		return repos.Receipts.Delete(ctx, id)
	})
	return domain.AbortError("receipt.delete", err)
}

// Get obtiene un recibo por ID.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.ReceiptResponse, error) {
	r, err := uc.receiptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.NewNotFoundError("recibo", id)
	}
	return ToReceiptResponse(r), nil
}

// List lista recibos filtrando por estado y receptor.
func (uc *UseCase) List(ctx context.Context, in dto.ReceiptListRequest) (*dto.ReceiptListResponse, error) {
	if in.Status != "" && !entity.IsValidReceiptStatus(in.Status) {
		return nil, domain.NewValidationError("status", "debe ser draft o confirmed")
	}
	in.DefaultPage()
	list, total, err := uc.receiptRepo.List(ctx, repository.ReceiptFilter{
		Status:     in.Status,
		ReceivedBy: in.ReceivedBy,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReceiptResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *ToReceiptResponse(r))
	}
	return &dto.ReceiptListResponse{
		Items: items,
		Page:  dto.NewPageResponse(in.Limit, in.Offset, total),
	}, nil
}

// ToReceiptResponse convierte el recibo a DTO.
func ToReceiptResponse(r *entity.StockReceipt) *dto.ReceiptResponse {
	items := make([]dto.ReceiptItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, dto.ReceiptItemResponse{
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			CostPrice:    it.CostPrice,
			SellingPrice: it.SellingPrice,
		})
	}
	return &dto.ReceiptResponse{
		ID:            r.ID,
		FromCompany:   r.FromCompany,
		ReceivedBy:    r.ReceivedBy,
		Items:         items,
		Note:          r.Note,
		Status:        r.Status,
		TotalQuantity: r.TotalQuantity,
		TotalAmount:   r.TotalAmount,
		ConfirmedAt:   r.ConfirmedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
