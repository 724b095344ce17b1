package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods. Only MetodoEfectivo is subject to CLP rounding and only
// efectivo sales count toward the drawer's theoretical float.
const (
	MetodoEfectivo      = "efectivo"
	MetodoDebito        = "debito"
	MetodoCredito       = "credito"
	MetodoTransferencia = "transferencia"
)

// Document types. A factura requires an identified cliente.
const (
	DocumentoBoleta  = "boleta"
	DocumentoFactura = "factura"
)

// Venta is a finalized transaction. Immutable once committed: line items are
// price snapshots taken when the product entered the cart, so later catalog
// price changes never alter a recorded sale.
type Venta struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroTicket  int        `gorm:"uniqueIndex;not null"`
	SesionCajaID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	UsuarioID     uuid.UUID  `gorm:"type:uuid;not null"`
	ClienteID     *uuid.UUID `gorm:"type:uuid;index"`
	TipoDocumento string     `gorm:"type:varchar(20);not null"`
	MetodoPago    string     `gorm:"type:varchar(20);not null"`
	// Discount breakdown: Subtotal − DescuentoTotal = Total (post-rounding).
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DescuentoPct   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Cupon          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DescuentoTotal decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoRecibido  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Vuelto         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt      time.Time

	Items   []VentaItem `gorm:"foreignKey:VentaID"`
	Cliente *Cliente    `gorm:"foreignKey:ClienteID"`
	Usuario *Usuario    `gorm:"foreignKey:UsuarioID"`
}

func (Venta) TableName() string { return "ventas" }

// VentaItem is one snapshot line of a committed sale.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	NombreProducto string          `gorm:"not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (VentaItem) TableName() string { return "venta_items" }
