package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Borrador is a named snapshot of a cart, saved for later. Its lifecycle is
// independent of any register session: created on save, read on load,
// deleted on delete. Loading replaces the live cart wholesale.
type Borrador struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`

	Items []BorradorItem `gorm:"foreignKey:BorradorID"`
}

func (Borrador) TableName() string { return "borradores" }

// BorradorItem preserves the line's add-time unit price, so a draft loaded
// days later still carries the prices the operator quoted.
type BorradorItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BorradorID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	NombreProducto string          `gorm:"not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (BorradorItem) TableName() string { return "borrador_items" }
