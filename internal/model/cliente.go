package model

import (
	"time"

	"github.com/google/uuid"
)

// Cliente is a registered customer. The core only reads this table: a
// factura cannot be committed without one, a boleta never needs one.
// Registration forms live outside this service.
type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RUT       string    `gorm:"uniqueIndex;not null"`
	Nombre    string    `gorm:"not null"`
	Email     *string
	Direccion *string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
