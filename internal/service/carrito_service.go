package service

import (
	"context"
	"fmt"

	"solvendo/internal/cart"
	"solvendo/internal/domainerr"
	"solvendo/internal/dto"
	"solvendo/internal/model"
	"solvendo/internal/repository"

	"github.com/google/uuid"
)

type CarritoService interface {
	Agregar(ctx context.Context, cajaID int, req dto.AgregarItemRequest) (*dto.CarritoResponse, error)
	FijarCantidad(ctx context.Context, cajaID int, req dto.FijarCantidadRequest) (*dto.CarritoResponse, error)
	Quitar(ctx context.Context, cajaID int, productoID uuid.UUID) (*dto.CarritoResponse, error)
	Vaciar(ctx context.Context, cajaID int) error
	Obtener(ctx context.Context, cajaID int) (*dto.CarritoResponse, error)
}

type carritoService struct {
	engine       *cart.Engine
	productoRepo repository.ProductoRepository
}

func NewCarritoService(engine *cart.Engine, productoRepo repository.ProductoRepository) CarritoService {
	return &carritoService{engine: engine, productoRepo: productoRepo}
}

// Agregar resolves the product (by id or by scanned barcode) and snapshots
// its current sale price into the register's cart.
func (s *carritoService) Agregar(ctx context.Context, cajaID int, req dto.AgregarItemRequest) (*dto.CarritoResponse, error) {
	var producto *model.Producto
	var err error

	switch {
	case req.ProductoID != "":
		pid, parseErr := uuid.Parse(req.ProductoID)
		if parseErr != nil {
			return nil, fmt.Errorf("producto_id inválido: %w", parseErr)
		}
		producto, err = s.productoRepo.FindByID(ctx, pid)
	case req.CodigoBarras != "":
		producto, err = s.productoRepo.FindByBarcode(ctx, req.CodigoBarras)
	default:
		return nil, &domainerr.ValidationError{Campo: "producto", Detalle: "se requiere producto_id o codigo_barras"}
	}
	if err != nil {
		return nil, &domainerr.ValidationError{Campo: "producto", Detalle: "producto no encontrado"}
	}

	carrito, err := s.engine.Agregar(ctx, cajaID, producto, req.Cantidad)
	if err != nil {
		return nil, err
	}
	return carritoToResponse(carrito), nil
}

func (s *carritoService) FijarCantidad(ctx context.Context, cajaID int, req dto.FijarCantidadRequest) (*dto.CarritoResponse, error) {
	pid, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("producto_id inválido: %w", err)
	}
	carrito, err := s.engine.FijarCantidad(ctx, cajaID, pid, req.Cantidad)
	if err != nil {
		return nil, err
	}
	return carritoToResponse(carrito), nil
}

func (s *carritoService) Quitar(ctx context.Context, cajaID int, productoID uuid.UUID) (*dto.CarritoResponse, error) {
	carrito, err := s.engine.Quitar(ctx, cajaID, productoID)
	if err != nil {
		return nil, err
	}
	return carritoToResponse(carrito), nil
}

func (s *carritoService) Vaciar(ctx context.Context, cajaID int) error {
	return s.engine.Vaciar(ctx, cajaID)
}

func (s *carritoService) Obtener(ctx context.Context, cajaID int) (*dto.CarritoResponse, error) {
	carrito, err := s.engine.Obtener(ctx, cajaID)
	if err != nil {
		return nil, err
	}
	return carritoToResponse(carrito), nil
}

func carritoToResponse(c *cart.Carrito) *dto.CarritoResponse {
	lineas := make([]dto.LineaCarritoResponse, 0, len(c.Lineas))
	for _, l := range c.Lineas {
		lineas = append(lineas, dto.LineaCarritoResponse{
			ProductoID:     l.ProductoID.String(),
			Nombre:         l.Nombre,
			PrecioUnitario: l.PrecioUnitario,
			Cantidad:       l.Cantidad,
			Subtotal:       l.Subtotal(),
		})
	}
	return &dto.CarritoResponse{
		CajaID: c.CajaID,
		Lineas: lineas,
		Total:  c.Total(),
	}
}
