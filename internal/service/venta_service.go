package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solvendo/internal/cart"
	"solvendo/internal/domainerr"
	"solvendo/internal/dto"
	"solvendo/internal/model"
	"solvendo/internal/pricing"
	"solvendo/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type VentaService interface {
	Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	caja         CajaService
	cajaRepo     repository.CajaRepository
	productoRepo repository.ProductoRepository
	clienteRepo  repository.ClienteRepository
	stockRepo    repository.MovimientoStockRepository
	carrito      *cart.Engine
}

func NewVentaService(
	repo repository.VentaRepository,
	caja CajaService,
	cajaRepo repository.CajaRepository,
	productoRepo repository.ProductoRepository,
	clienteRepo repository.ClienteRepository,
	stockRepo repository.MovimientoStockRepository,
	carrito *cart.Engine,
) VentaService {
	return &ventaService{
		repo:         repo,
		caja:         caja,
		cajaRepo:     cajaRepo,
		productoRepo: productoRepo,
		clienteRepo:  clienteRepo,
		stockRepo:    stockRepo,
		carrito:      carrito,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Registrar ─────────────────────────────────────────────────────────────────
// Commits the register's current cart as one atomic sale:
//   1. Validate sesion de caja is open
//   2. Factura requires an identified cliente — checked before any stock
//      lookup (cheap validation precedes expensive validation)
//   3. Stock validation pass collecting EVERY short line
//   4. Pricing pass (single rounding rule in internal/pricing)
//   5. BEGIN TX: lock session row (still abierta), nextval ticket, create
//      venta+items, conditional stock decrement, movimiento de stock,
//      movimiento de caja — COMMIT
//   6. Clear the cart
//
// Any failure before or during the transaction leaves stock, session, and
// cart exactly as they were.

func (s *ventaService) Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return nil, fmt.Errorf("sesion_caja_id inválido: %w", err)
	}

	// 1. Open session
	sesion, err := s.caja.FindSesionAbierta(ctx, sesionID)
	if err != nil {
		return nil, err
	}

	// 2. Document-type rule
	var clienteID *uuid.UUID
	if req.TipoDocumento == model.DocumentoFactura {
		if req.ClienteID == nil || *req.ClienteID == "" {
			return nil, &domainerr.ClientRequiredError{}
		}
		cid, parseErr := uuid.Parse(*req.ClienteID)
		if parseErr != nil {
			return nil, &domainerr.ClientRequiredError{}
		}
		if _, lookupErr := s.clienteRepo.FindByID(ctx, cid); lookupErr != nil {
			if errors.Is(lookupErr, repository.ErrClienteNoEncontrado) {
				return nil, &domainerr.ClientRequiredError{}
			}
			return nil, &domainerr.PersistenceError{Op: "venta.cliente", Err: lookupErr}
		}
		clienteID = &cid
	}

	// 3. Cart + stock validation pass (pre-flight, outside TX)
	carrito, err := s.carrito.Obtener(ctx, sesion.CajaID)
	if err != nil {
		return nil, err
	}
	if carrito.Vacio() {
		return nil, &domainerr.ValidationError{Campo: "carrito", Detalle: "el carrito está vacío"}
	}

	var sinStock []domainerr.LineaSinStock
	for _, linea := range carrito.Lineas {
		p, findErr := s.productoRepo.FindByID(ctx, linea.ProductoID)
		if findErr != nil {
			return nil, &domainerr.ValidationError{Campo: "carrito", Detalle: fmt.Sprintf("producto %s no existe", linea.ProductoID)}
		}
		if p.StockActual < linea.Cantidad {
			sinStock = append(sinStock, domainerr.LineaSinStock{
				ProductoID: p.ID,
				Nombre:     p.Nombre,
				Solicitado: linea.Cantidad,
				Disponible: p.StockActual,
			})
		}
	}
	if len(sinStock) > 0 {
		return nil, &domainerr.InsufficientStockError{Lineas: sinStock}
	}

	// 4. Pricing pass
	desglose := pricing.Compute(carrito.Total(), req.DescuentoPct, req.Cupon, req.MetodoPago)
	if req.MetodoPago == model.MetodoEfectivo && req.MontoRecibido.LessThan(desglose.Total) {
		return nil, &domainerr.InvalidAmountError{Campo: "monto_recibido", Monto: req.MontoRecibido}
	}
	vuelto := pricing.Vuelto(req.MontoRecibido, desglose.Total, req.MetodoPago)

	// 5. ACID transaction
	var venta model.Venta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Re-check the session under a row lock: a close that slipped in
		// after the pre-flight check rejects this sale, and a close that
		// starts later waits until our ledger entry is committed.
		locked, err := s.cajaRepo.LockSesionAbiertaTx(tx, sesionID)
		if err != nil {
			return err
		}
		if locked == nil {
			return &domainerr.SessionNotOpenError{SesionID: sesionID}
		}

		ticketNum, err := s.repo.NextTicketNumber(ctx, tx)
		if err != nil {
			return err
		}

		venta = model.Venta{
			NumeroTicket:   ticketNum,
			SesionCajaID:   sesionID,
			UsuarioID:      usuarioID,
			ClienteID:      clienteID,
			TipoDocumento:  req.TipoDocumento,
			MetodoPago:     req.MetodoPago,
			Subtotal:       desglose.Subtotal,
			DescuentoPct:   req.DescuentoPct,
			Cupon:          req.Cupon,
			DescuentoTotal: desglose.Descuento,
			Total:          desglose.Total,
			MontoRecibido:  req.MontoRecibido,
			Vuelto:         vuelto,
		}
		for _, linea := range carrito.Lineas {
			venta.Items = append(venta.Items, model.VentaItem{
				ProductoID:     linea.ProductoID,
				NombreProducto: linea.Nombre,
				Cantidad:       linea.Cantidad,
				PrecioUnitario: linea.PrecioUnitario,
				Subtotal:       linea.Subtotal(),
			})
		}

		if err := s.repo.Create(ctx, tx, &venta); err != nil {
			return err
		}

		// Conditional decrement: stock = stock - qty WHERE stock >= qty.
		// Serializes concurrent commits on the same product — the loser
		// rolls back the whole sale, never a partial decrement.
		for _, linea := range carrito.Lineas {
			prodBefore, err := s.productoRepo.FindByIDTx(tx, linea.ProductoID)
			if err != nil {
				return err
			}

			ok, err := s.productoRepo.DescontarStockTx(tx, linea.ProductoID, linea.Cantidad)
			if err != nil {
				return err
			}
			if !ok {
				return &domainerr.InsufficientStockError{Lineas: []domainerr.LineaSinStock{{
					ProductoID: linea.ProductoID,
					Nombre:     linea.Nombre,
					Solicitado: linea.Cantidad,
					Disponible: prodBefore.StockActual,
				}}}
			}

			ventaRef := venta.ID
			mov := &model.MovimientoStock{
				ProductoID:    linea.ProductoID,
				Tipo:          "venta",
				Cantidad:      -linea.Cantidad,
				StockAnterior: prodBefore.StockActual,
				StockNuevo:    prodBefore.StockActual - linea.Cantidad,
				Motivo:        fmt.Sprintf("Venta #%d", ticketNum),
				ReferenciaID:  &ventaRef,
			}
			if err := s.stockRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}

		// Ledger entry — this is what the close-time reconciliation sums.
		metodo := req.MetodoPago
		movCaja := &model.MovimientoCaja{
			SesionCajaID: sesionID,
			Tipo:         model.MovimientoVenta,
			MetodoPago:   &metodo,
			Monto:        desglose.Total,
			Descripcion:  fmt.Sprintf("Venta #%d", ticketNum),
			ReferenciaID: &venta.ID,
		}
		return s.cajaRepo.CreateMovimientoTx(tx, movCaja)
	})
	if txErr != nil {
		var noStock *domainerr.InsufficientStockError
		var notOpen *domainerr.SessionNotOpenError
		if errors.As(txErr, &noStock) || errors.As(txErr, &notOpen) {
			return nil, txErr
		}
		return nil, &domainerr.PersistenceError{Op: "venta.registrar", Err: txErr}
	}

	// 6. Cart reset. The sale is committed — a failure here only means the
	// operator clears the cart by hand.
	if err := s.carrito.Vaciar(ctx, sesion.CajaID); err != nil {
		log.Warn().Err(err).Int("caja_id", sesion.CajaID).Msg("no se pudo vaciar el carrito tras la venta")
	}

	log.Info().Int("ticket", venta.NumeroTicket).
		Str("total", venta.Total.String()).
		Str("metodo", venta.MetodoPago).
		Msg("venta registrada")

	return ventaToResponse(&venta), nil
}

func (s *ventaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("venta no encontrada")
	}
	return ventaToResponse(venta), nil
}

// Listar returns a paginated list of sales, filtered by date and session.
// Default filter: today's sales.
func (s *ventaService) Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		items = append(items, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, dto.ItemVentaResponse{
			Producto:       item.NombreProducto,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
		})
	}
	var clienteID *string
	if v.ClienteID != nil {
		cid := v.ClienteID.String()
		clienteID = &cid
	}
	return &dto.VentaResponse{
		ID:             v.ID.String(),
		NumeroTicket:   v.NumeroTicket,
		SesionCajaID:   v.SesionCajaID.String(),
		TipoDocumento:  v.TipoDocumento,
		MetodoPago:     v.MetodoPago,
		ClienteID:      clienteID,
		Items:          items,
		Subtotal:       v.Subtotal,
		DescuentoTotal: v.DescuentoTotal,
		Total:          v.Total,
		MontoRecibido:  v.MontoRecibido,
		Vuelto:         v.Vuelto,
		CreatedAt:      v.CreatedAt.Format(time.RFC3339),
	}
}
