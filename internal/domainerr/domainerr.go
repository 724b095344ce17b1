// Package domainerr defines the typed error kinds returned by the register
// core. Every error here represents a caller-correctable precondition
// failure and is matchable via errors.As; none is retried internally.
package domainerr

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AlreadyOpenError is returned by Abrir when the register already has an
// open session. The check is backed by a partial unique index, so two
// concurrent opens on the same register cannot both succeed.
type AlreadyOpenError struct {
	CajaID int
}

func (e *AlreadyOpenError) Error() string {
	return fmt.Sprintf("ya existe una sesión abierta en la caja %d", e.CajaID)
}

// SessionNotOpenError is returned when a movement, sale, or close targets a
// session that is not in estado "abierta".
type SessionNotOpenError struct {
	SesionID uuid.UUID
}

func (e *SessionNotOpenError) Error() string {
	return fmt.Sprintf("la sesión %s no está abierta", e.SesionID)
}

// InvalidAmountError flags a negative opening float, a non-positive
// movement amount, or an insufficient/negative declared amount.
type InvalidAmountError struct {
	Campo string
	Monto decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("monto inválido para %s: %s", e.Campo, e.Monto)
}

// LineaSinStock identifies one cart line whose requested quantity exceeds
// the available stock.
type LineaSinStock struct {
	ProductoID uuid.UUID `json:"producto_id"`
	Nombre     string    `json:"nombre"`
	Solicitado int       `json:"solicitado"`
	Disponible int       `json:"disponible"`
}

// InsufficientStockError aborts a commit. It carries EVERY offending line,
// not just the first, so the operator can fix the cart in one pass.
type InsufficientStockError struct {
	Lineas []LineaSinStock
}

func (e *InsufficientStockError) Error() string {
	if len(e.Lineas) == 1 {
		return fmt.Sprintf("stock insuficiente para %s: solicitado %d, disponible %d",
			e.Lineas[0].Nombre, e.Lineas[0].Solicitado, e.Lineas[0].Disponible)
	}
	return fmt.Sprintf("stock insuficiente en %d productos", len(e.Lineas))
}

// ClientRequiredError is returned when a factura is requested without an
// identifiable client. Checked before any stock lookup.
type ClientRequiredError struct{}

func (e *ClientRequiredError) Error() string {
	return "una factura requiere un cliente registrado"
}

// ValidationError covers draft and cart input violations (empty name,
// empty cart, inactive product, zero quantity on add).
type ValidationError struct {
	Campo   string
	Detalle string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Campo, e.Detalle)
}

// PersistenceError wraps an infrastructure failure surfaced after a
// guaranteed rollback. Callers may retry the whole operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("error de persistencia en %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
