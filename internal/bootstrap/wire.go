// Package bootstrap arma los casos de uso sobre un adaptador de persistencia.
package bootstrap

import (
	"github.com/jhoicas/stock-ledger-api/internal/application/auth"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/invoice"
	"github.com/jhoicas/stock-ledger-api/internal/application/receipt"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	infrapdf "github.com/jhoicas/stock-ledger-api/internal/infrastructure/pdf"
	httpapi "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// Deps piezas de infraestructura ya construidas.
type Deps struct {
	// Repos repositorios fuera de transacción (lecturas y operaciones simples).
	Repos       repository.TxRepositories
	TxRunner    inventory.TxRunner
	Config      *config.Config
	Log         *logger.Logger
	Idempotency httpapi.IdempotencyStore
}

// RouterDeps construye todos los casos de uso y los entrega listos para el router HTTP.
func RouterDeps(d Deps) httpapi.RouterDeps {
	cfg := d.Config
	ledger := inventory.NewLedgerWriter()

	return httpapi.RouterDeps{
		ProductUC:        usecase.NewProductUseCase(d.Repos.Products, d.TxRunner, ledger),
		UserUC:           usecase.NewUserUseCase(d.Repos.Users),
		RegisterMovement: inventory.NewRegisterMovementUseCase(d.TxRunner, ledger),
		Reconciliation: inventory.NewReconciliationUseCase(d.Repos.Products, d.Repos.Movements, inventory.ReconciliationConfig{
			PredictionWindowDays: cfg.Ledger.PredictionWindowDays,
			LowStockThreshold:    cfg.Ledger.LowStockThreshold,
		}),
		InvoiceUC: invoice.NewUseCase(d.TxRunner, ledger, d.Repos.Invoices, d.Repos.Products, infrapdf.NewMarotoPDFGenerator()),
		ReceiptUC: receipt.NewUseCase(d.TxRunner, ledger, d.Repos.Receipts, receipt.Config{
			DefaultStatus: cfg.Ledger.ReceiptDefaultStatus,
		}),
		AuthUC: auth.NewAuthUseCase(d.Repos.Users, auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		}),
		Idempotency: d.Idempotency,
		JWTSecret:   cfg.JWT.Secret,
		Log:         d.Log,
	}
}
