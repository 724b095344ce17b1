package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session states. A session cycles abierta → cerrada exactly once; reopening
// a register creates a new record, it never resurrects a closed one.
const (
	SesionAbierta = "abierta"
	SesionCerrada = "cerrada"
)

// Movement types in the register ledger.
const (
	MovimientoIngreso = "ingreso"
	MovimientoRetiro  = "retiro"
	MovimientoVenta   = "venta"
)

// SesionCaja represents the lifecycle of a cash register session.
// At most one session per caja may be "abierta" at a time — enforced by a
// partial unique index on (caja_id) WHERE estado = 'abierta', so Abrir is
// an atomic check-and-insert even under concurrent calls.
type SesionCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID       int             `gorm:"not null;index"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	MontoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado       string          `gorm:"type:varchar(20);not null;default:'abierta'"`
	// Closing reconciliation — nil until the session is closed.
	// MontoTeorico = MontoInicial + ventas efectivo + ingresos − retiros.
	// Diferencia   = MontoDeclarado − MontoTeorico.
	MontoTeorico   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MontoDeclarado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Diferencia     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Observaciones  *string
	OpenedAt       time.Time
	ClosedAt       *time.Time

	Movimientos []MovimientoCaja `gorm:"foreignKey:SesionCajaID"`
}

func (SesionCaja) TableName() string { return "sesiones_caja" }

// MovimientoCaja is an immutable event in the cash register ledger.
// Tipo: "ingreso" | "retiro" | "venta". Monto is always positive — the sign
// is carried by the type. Movements are NEVER modified or deleted.
type MovimientoCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Tipo         string          `gorm:"type:varchar(20);not null"`
	// MetodoPago is set only for tipo "venta"; manual movements are always
	// physical cash in or out of the drawer.
	MetodoPago   *string         `gorm:"type:varchar(20)"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descripcion  string          `gorm:"not null"`
	// ReferenciaID links to the originating Venta, when applicable.
	ReferenciaID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }
