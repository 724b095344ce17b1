package service

import (
	"context"
	"errors"
	"time"

	"solvendo/internal/cart"
	"solvendo/internal/domainerr"
	"solvendo/internal/dto"
	"solvendo/internal/model"
	"solvendo/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrBorradorNoEncontrado = errors.New("borrador no encontrado")

type BorradorService interface {
	Guardar(ctx context.Context, cajaID int, req dto.GuardarBorradorRequest) (*dto.BorradorResponse, error)
	Cargar(ctx context.Context, cajaID int, borradorID uuid.UUID) (*dto.CarritoResponse, error)
	Eliminar(ctx context.Context, borradorID uuid.UUID) error
	Listar(ctx context.Context) ([]dto.BorradorResponse, error)
}

type borradorService struct {
	repo    repository.BorradorRepository
	carrito *cart.Engine
}

func NewBorradorService(repo repository.BorradorRepository, carrito *cart.Engine) BorradorService {
	return &borradorService{repo: repo, carrito: carrito}
}

// Guardar snapshots the register's cart under a name and clears the cart,
// leaving the register ready for the next customer.
func (s *borradorService) Guardar(ctx context.Context, cajaID int, req dto.GuardarBorradorRequest) (*dto.BorradorResponse, error) {
	if req.Nombre == "" {
		return nil, &domainerr.ValidationError{Campo: "nombre", Detalle: "el borrador requiere un nombre"}
	}
	carrito, err := s.carrito.Obtener(ctx, cajaID)
	if err != nil {
		return nil, err
	}
	if carrito.Vacio() {
		return nil, &domainerr.ValidationError{Campo: "carrito", Detalle: "no se puede guardar un carrito vacío"}
	}

	borrador := &model.Borrador{Nombre: req.Nombre}
	for _, l := range carrito.Lineas {
		borrador.Items = append(borrador.Items, model.BorradorItem{
			ProductoID:     l.ProductoID,
			NombreProducto: l.Nombre,
			Cantidad:       l.Cantidad,
			PrecioUnitario: l.PrecioUnitario,
		})
	}
	if err := s.repo.Create(ctx, borrador); err != nil {
		return nil, &domainerr.PersistenceError{Op: "borrador.guardar", Err: err}
	}

	if err := s.carrito.Vaciar(ctx, cajaID); err != nil {
		return nil, err
	}
	return borradorToResponse(borrador), nil
}

// Cargar replaces the register's live cart with the draft's lines. It does
// not merge and it does not reprice: the draft's snapshotted prices stand.
func (s *borradorService) Cargar(ctx context.Context, cajaID int, borradorID uuid.UUID) (*dto.CarritoResponse, error) {
	borrador, err := s.repo.FindByID(ctx, borradorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBorradorNoEncontrado
		}
		return nil, &domainerr.PersistenceError{Op: "borrador.cargar", Err: err}
	}

	lineas := make([]cart.Linea, 0, len(borrador.Items))
	for _, item := range borrador.Items {
		lineas = append(lineas, cart.Linea{
			ProductoID:     item.ProductoID,
			Nombre:         item.NombreProducto,
			PrecioUnitario: item.PrecioUnitario,
			Cantidad:       item.Cantidad,
		})
	}
	carrito, err := s.carrito.Reemplazar(ctx, cajaID, lineas)
	if err != nil {
		return nil, err
	}
	return carritoToResponse(carrito), nil
}

func (s *borradorService) Eliminar(ctx context.Context, borradorID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, borradorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBorradorNoEncontrado
		}
		return &domainerr.PersistenceError{Op: "borrador.eliminar", Err: err}
	}
	return s.repo.Delete(ctx, borradorID)
}

func (s *borradorService) Listar(ctx context.Context) ([]dto.BorradorResponse, error) {
	borradores, err := s.repo.List(ctx)
	if err != nil {
		return nil, &domainerr.PersistenceError{Op: "borrador.listar", Err: err}
	}
	resp := make([]dto.BorradorResponse, 0, len(borradores))
	for i := range borradores {
		resp = append(resp, *borradorToResponse(&borradores[i]))
	}
	return resp, nil
}

func borradorToResponse(b *model.Borrador) *dto.BorradorResponse {
	lineas := make([]dto.LineaCarritoResponse, 0, len(b.Items))
	for _, item := range b.Items {
		lineas = append(lineas, dto.LineaCarritoResponse{
			ProductoID:     item.ProductoID.String(),
			Nombre:         item.NombreProducto,
			PrecioUnitario: item.PrecioUnitario,
			Cantidad:       item.Cantidad,
			Subtotal:       item.PrecioUnitario.Mul(decimal.NewFromInt(int64(item.Cantidad))),
		})
	}
	return &dto.BorradorResponse{
		ID:        b.ID.String(),
		Nombre:    b.Nombre,
		Lineas:    lineas,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
}
