package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// ValidationError rechaza una entrada antes de cualquier escritura.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validación: " + e.Reason
	}
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError atajo para construir un ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError indica que un recurso requerido no existe.
// Para el libro de traslados es un error de programación (orden de llamadas), no recuperable.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + ": no encontrado"
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Stage etapa de un traslado en la que ocurrió una falla de persistencia.
type Stage string

const (
	StageHeaderCreate   Stage = "header-create"
	StageItemCreate     Stage = "item-create"
	StageDecrement      Stage = "decrement"
	StageIncrement      Stage = "increment"
	StageAtomicTransfer Stage = "atomic-transfer"
)

// OperationFailure falla de escritura durante el procesamiento de un ítem.
// Index es la posición (base 0) del ítem en el carrito.
type OperationFailure struct {
	ProductID string
	Stage     Stage
	Index     int
	Err       error
}

func (e *OperationFailure) Error() string {
	return fmt.Sprintf("traslado abortado en el ítem %d (producto %s, etapa %s): %v", e.Index+1, e.ProductID, e.Stage, e.Err)
}

func (e *OperationFailure) Unwrap() error { return e.Err }

// AsOperationFailure extrae un *OperationFailure de la cadena de errores.
func AsOperationFailure(err error) (*OperationFailure, bool) {
	var of *OperationFailure
	if errors.As(err, &of) {
		return of, true
	}
	return nil, false
}
