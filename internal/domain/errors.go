package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrUserNotFound          = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists    = errors.New("el email ya está registrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrDuplicate             = errors.New("recurso duplicado")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrConflict              = errors.New("conflicto con el estado actual")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrAlreadyConfirmed      = errors.New("el recibo ya fue confirmado")
	ErrCannotDeleteConfirmed = errors.New("no se puede eliminar un recibo confirmado")
	ErrTransactionAborted    = errors.New("transacción abortada")
)

// ValidationError campo faltante o mal formado. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError construye un ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validación: " + e.Message
	}
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NotFoundError recurso referenciado inexistente (producto, usuario, factura, recibo).
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError construye un NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s no encontrado: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientStockError un efecto de salida dejaría el stock en negativo.
type InsufficientStockError struct {
	ProductID string
	Available int64
	Required  int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %s: disponible=%d, requerido=%d",
		e.ProductID, e.Available, e.Required)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// Shortfall unidades que faltan para cubrir la salida.
func (e *InsufficientStockError) Shortfall() int64 {
	if e.Required <= e.Available {
		return 0
	}
	return e.Required - e.Available
}

// AlreadyConfirmedError confirmación de un recibo que ya está confirmado.
type AlreadyConfirmedError struct {
	ReceiptID string
}

func (e *AlreadyConfirmedError) Error() string {
	return fmt.Sprintf("el recibo %s ya fue confirmado", e.ReceiptID)
}

func (e *AlreadyConfirmedError) Is(target error) bool { return target == ErrAlreadyConfirmed }

// CannotDeleteConfirmedError eliminación de un recibo confirmado.
type CannotDeleteConfirmedError struct {
	ReceiptID string
}

func (e *CannotDeleteConfirmedError) Error() string {
	return fmt.Sprintf("no se puede eliminar el recibo confirmado %s", e.ReceiptID)
}

func (e *CannotDeleteConfirmedError) Is(target error) bool { return target == ErrCannotDeleteConfirmed }

// TransactionAbortError fallo de infraestructura dentro de una unidad de trabajo.
// Todos los efectos parciales fueron revertidos; Err conserva la causa.
type TransactionAbortError struct {
	Op  string
	Err error
}

func (e *TransactionAbortError) Error() string {
	return fmt.Sprintf("%s: transacción abortada: %v", e.Op, e.Err)
}

func (e *TransactionAbortError) Unwrap() error { return e.Err }

func (e *TransactionAbortError) Is(target error) bool { return target == ErrTransactionAborted }

// AbortError devuelve err sin cambios si ya es un error de dominio conocido;
// en otro caso lo envuelve en TransactionAbortError.
func AbortError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	return &TransactionAbortError{Op: op, Err: err}
}

// IsDomainError indica si err pertenece a la taxonomía de dominio.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrInvalidInput, ErrNotFound, ErrUserNotFound, ErrInsufficientStock,
		ErrAlreadyConfirmed, ErrCannotDeleteConfirmed, ErrTransactionAborted,
		ErrForbidden, ErrUnauthorized, ErrDuplicate, ErrConflict, ErrEmailAlreadyExists,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
