package repository

import (
	"context"
	"errors"

	"solvendo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrClienteNoEncontrado is the repository-level not-found signal; the
// venta service translates it into a ClientRequiredError.
var ErrClienteNoEncontrado = errors.New("cliente no encontrado")

// ClienteRepository is the client registry contract: lookup only.
type ClienteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	FindByRUT(ctx context.Context, rut string) (*model.Cliente, error)
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).Where("activo = true").First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClienteNoEncontrado
	}
	return &c, err
}

func (r *clienteRepo) FindByRUT(ctx context.Context, rut string) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).Where("rut = ? AND activo = true", rut).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClienteNoEncontrado
	}
	return &c, err
}
