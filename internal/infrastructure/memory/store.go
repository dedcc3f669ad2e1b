// Package memory implementa los puertos de persistencia en memoria. Se usa con
// STORAGE_DRIVER=memory y como doble de la base de datos en los tests de casos de uso.
package memory

import (
	"sync"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

type state struct {
	products  map[string]*entity.Product
	movements []*entity.StockMovement
	invoices  map[string]*entity.Invoice
	receipts  map[string]*entity.StockReceipt
	users     map[string]*entity.User
}

func newState() *state {
	return &state{
		products: make(map[string]*entity.Product),
		invoices: make(map[string]*entity.Invoice),
		receipts: make(map[string]*entity.StockReceipt),
		users:    make(map[string]*entity.User),
	}
}

// clone copia profunda; las transacciones trabajan sobre una copia que solo se publica al confirmar.
func (s *state) clone() *state {
	c := newState()
	for id, p := range s.products {
		c.products[id] = copyProduct(p)
	}
	c.movements = make([]*entity.StockMovement, len(s.movements))
	for i, m := range s.movements {
		c.movements[i] = copyMovement(m)
	}
	for id, inv := range s.invoices {
		c.invoices[id] = copyInvoice(inv)
	}
	for id, r := range s.receipts {
		c.receipts[id] = copyReceipt(r)
	}
	for id, u := range s.users {
		cu := *u
		c.users[id] = &cu
	}
	return c
}

// FaultFunc permite inyectar fallos de infraestructura por operación ("movements.create", ...).
type FaultFunc func(op string) error

// Store almacén en memoria. Un mutex serializa las transacciones completas.
type Store struct {
	mu    sync.Mutex
	st    *state
	fault FaultFunc
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// SetFault instala un inyector de fallos; nil lo desactiva.
func (s *Store) SetFault(f FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = f
}

// session da acceso al estado: dentro de una tx usa la copia de trabajo,
// fuera de ella bloquea el mutex por operación.
type session struct {
	store *Store
	st    *state
}

func (s *session) with(fn func(st *state) error) error {
	if s.st != nil {
		return fn(s.st)
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return fn(s.store.st)
}

func (s *session) check(op string) error {
	if s.store.fault == nil {
		return nil
	}
	return s.store.fault(op)
}

func (s *Store) repos(sess *session) repository.TxRepositories {
	return repository.TxRepositories{
		Products:  &ProductRepo{s: sess},
		Stock:     &StockRepo{s: sess},
		Movements: &MovementRepo{s: sess},
		Invoices:  &InvoiceRepo{s: sess},
		Receipts:  &ReceiptRepo{s: sess},
		Users:     &UserRepo{s: sess},
	}
}

// Repositories devuelve repositorios fuera de transacción (lecturas y altas simples).
func (s *Store) Repositories() repository.TxRepositories {
	return s.repos(&session{store: s})
}

func copyProduct(p *entity.Product) *entity.Product {
	c := *p
	if p.Tags != nil {
		c.Tags = append([]string(nil), p.Tags...)
	}
	return &c
}

func copyMovement(m *entity.StockMovement) *entity.StockMovement {
	c := *m
	if m.CostPrice != nil {
		v := *m.CostPrice
		c.CostPrice = &v
	}
	if m.SellingPrice != nil {
		v := *m.SellingPrice
		c.SellingPrice = &v
	}
	return &c
}

func copyInvoice(inv *entity.Invoice) *entity.Invoice {
	c := *inv
	c.Lines = append([]entity.InvoiceLine(nil), inv.Lines...)
	return &c
}

func copyReceipt(r *entity.StockReceipt) *entity.StockReceipt {
	c := *r
	c.Items = append([]entity.StockReceiptItem(nil), r.Items...)
	if r.ConfirmedAt != nil {
		t := *r.ConfirmedAt
		c.ConfirmedAt = &t
	}
	return &c
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
