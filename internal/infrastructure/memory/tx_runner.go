package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner implementa inventory.TxRunner sobre Store. La función recibe repositorios
// atados a una copia del estado; la copia reemplaza al estado solo si fn no devuelve error.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn de forma serializada y atómica.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	work := r.store.st.clone()
	sess := &session{store: r.store, st: work}
	if err := fn(ctx, r.store.repos(sess)); err != nil {
		return err
	}
	if err := sess.check("commit"); err != nil {
		return err
	}
	r.store.st = work
	return nil
}
