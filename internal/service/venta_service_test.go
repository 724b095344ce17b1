package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"solvendo/internal/cart"
	"solvendo/internal/domainerr"
	"solvendo/internal/dto"
	"solvendo/internal/model"
	"solvendo/internal/repository"
	"solvendo/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory fakes ──────────────────────────────────────────────────────────

type fakeVentaRepo struct {
	mu         sync.Mutex
	ventas     map[uuid.UUID]*model.Venta
	nextTicket int
}

func newFakeVentaRepo() *fakeVentaRepo {
	return &fakeVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *fakeVentaRepo) DB() *gorm.DB { return nil }

func (r *fakeVentaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	r.ventas[v.ID] = v
	return nil
}

func (r *fakeVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *fakeVentaRepo) NextTicketNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextTicket++
	return r.nextTicket, nil
}

func (r *fakeVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]model.Venta, 0, len(r.ventas))
	for _, v := range r.ventas {
		all = append(all, *v)
	}
	return all, int64(len(all)), nil
}

var _ repository.VentaRepository = (*fakeVentaRepo)(nil)

type fakeProductoRepo struct {
	mu        sync.Mutex
	productos map[uuid.UUID]*model.Producto
	findCalls int
}

func newFakeProductoRepo(productos ...*model.Producto) *fakeProductoRepo {
	r := &fakeProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
	for _, p := range productos {
		r.productos[p.ID] = p
	}
	return r
}

func (r *fakeProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductoRepo) FindByBarcode(_ context.Context, barcode string) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.productos {
		if p.CodigoBarras == barcode && p.Activo {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

// DescontarStockTx mirrors the conditional UPDATE: decrement only when
// enough stock remains, atomically under the repo mutex.
func (r *fakeProductoRepo) DescontarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok || p.StockActual < cantidad {
		return false, nil
	}
	p.StockActual -= cantidad
	return true, nil
}

func (r *fakeProductoRepo) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.productos[id].StockActual
}

var _ repository.ProductoRepository = (*fakeProductoRepo)(nil)

type fakeClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func (r *fakeClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, repository.ErrClienteNoEncontrado
	}
	return c, nil
}

func (r *fakeClienteRepo) FindByRUT(_ context.Context, _ string) (*model.Cliente, error) {
	return nil, repository.ErrClienteNoEncontrado
}

var _ repository.ClienteRepository = (*fakeClienteRepo)(nil)

type fakeStockMovRepo struct {
	mu   sync.Mutex
	movs []model.MovimientoStock
}

func (r *fakeStockMovRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movs = append(r.movs, *m)
	return nil
}

func (r *fakeStockMovRepo) ListByProducto(_ context.Context, _ uuid.UUID, _ int) ([]model.MovimientoStock, error) {
	return nil, nil
}

var _ repository.MovimientoStockRepository = (*fakeStockMovRepo)(nil)

// ── Fixture ──────────────────────────────────────────────────────────────────

type ventaFixture struct {
	svc       service.VentaService
	cajaSvc   service.CajaService
	cajaRepo  *fakeCajaRepo
	ventaRepo *fakeVentaRepo
	prodRepo  *fakeProductoRepo
	stockRepo *fakeStockMovRepo
	engine    *cart.Engine
}

func newVentaFixture(t *testing.T, productos ...*model.Producto) *ventaFixture {
	t.Helper()
	cajaRepo := newFakeCajaRepo()
	cajaSvc := service.NewCajaService(cajaRepo)
	ventaRepo := newFakeVentaRepo()
	prodRepo := newFakeProductoRepo(productos...)
	stockRepo := &fakeStockMovRepo{}
	engine := cart.NewEngine(cart.NewMemoryStore())
	clienteRepo := &fakeClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}

	return &ventaFixture{
		svc:       service.NewVentaService(ventaRepo, cajaSvc, cajaRepo, prodRepo, clienteRepo, stockRepo, engine),
		cajaSvc:   cajaSvc,
		cajaRepo:  cajaRepo,
		ventaRepo: ventaRepo,
		prodRepo:  prodRepo,
		stockRepo: stockRepo,
		engine:    engine,
	}
}

func (f *ventaFixture) abrirSesion(t *testing.T, cajaID int) string {
	t.Helper()
	resp, err := f.cajaSvc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		CajaID: cajaID, MontoInicial: decimal.NewFromInt(10000),
	})
	require.NoError(t, err)
	return resp.SesionCajaID
}

func producto(nombre string, precio int64, stock int) *model.Producto {
	return &model.Producto{
		ID:           uuid.New(),
		CodigoBarras: uuid.NewString(),
		Nombre:       nombre,
		Categoria:    "general",
		PrecioVenta:  decimal.NewFromInt(precio),
		StockActual:  stock,
		Activo:       true,
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestRegistrarVentaEfectivo(t *testing.T) {
	pan := producto("Pan", 992, 10)
	f := newVentaFixture(t, pan)
	sesionID := f.abrirSesion(t, 1)

	_, err := f.engine.Agregar(context.Background(), 1, pan, 2)
	require.NoError(t, err)

	// 2 × 992 = 1984 → redondeo efectivo 1980; recibido 2000 → vuelto 20
	resp, err := f.svc.Registrar(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		SesionCajaID:  sesionID,
		MetodoPago:    model.MetodoEfectivo,
		TipoDocumento: model.DocumentoBoleta,
		MontoRecibido: decimal.NewFromInt(2000),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.NumeroTicket)
	assert.Equal(t, "1984", resp.Subtotal.String())
	assert.Equal(t, "1980", resp.Total.String())
	assert.Equal(t, "20", resp.Vuelto.String())
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "992", resp.Items[0].PrecioUnitario.String())

	// Stock decremented and audited
	assert.Equal(t, 8, f.prodRepo.stock(pan.ID))
	require.Len(t, f.stockRepo.movs, 1)
	assert.Equal(t, -2, f.stockRepo.movs[0].Cantidad)
	assert.Equal(t, 10, f.stockRepo.movs[0].StockAnterior)
	assert.Equal(t, 8, f.stockRepo.movs[0].StockNuevo)

	// Ledger entry carries the payment method
	require.Len(t, f.cajaRepo.movimientos, 1)
	assert.Equal(t, model.MovimientoVenta, f.cajaRepo.movimientos[0].Tipo)
	require.NotNil(t, f.cajaRepo.movimientos[0].MetodoPago)
	assert.Equal(t, model.MetodoEfectivo, *f.cajaRepo.movimientos[0].MetodoPago)
	assert.Equal(t, "1980", f.cajaRepo.movimientos[0].Monto.String())

	// Cart cleared
	carrito, err := f.engine.Obtener(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, carrito.Vacio())
}

func TestRegistrarVentaDebitoSinRedondeo(t *testing.T) {
	pan := producto("Pan", 992, 10)
	f := newVentaFixture(t, pan)
	sesionID := f.abrirSesion(t, 1)

	_, err := f.engine.Agregar(context.Background(), 1, pan, 2)
	require.NoError(t, err)

	resp, err := f.svc.Registrar(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		SesionCajaID:  sesionID,
		MetodoPago:    model.MetodoDebito,
		TipoDocumento: model.DocumentoBoleta,
	})
	require.NoError(t, err)

	// Non-cash pays the exact amount and never produces change.
	assert.Equal(t, "1984", resp.Total.String())
	assert.Equal(t, "0", resp.Vuelto.String())
}

func TestVentaFacturaSinCliente(t *testing.T) {
	pan := producto("Pan", 990, 10)
	f := newVentaFixture(t, pan)
	sesionID := f.abrirSesion(t, 1)

	_, err := f.engine.Agregar(context.Background(), 1, pan, 1)
	require.NoError(t, err)
	callsBefore := f.prodRepo.findCalls

	_, err = f.svc.Registrar(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		SesionCajaID:  sesionID,
		MetodoPago:    model.MetodoDebito,
		TipoDocumento: model.DocumentoFactura,
	})
	var needClient *domainerr.ClientRequiredError
	require.ErrorAs(t, err, &needClient)

	// The document check precedes any stock lookup.
	assert.Equal(t, callsBefore, f.prodRepo.findCalls)
	assert.Equal(t, 10, f.prodRepo.stock(pan.ID))
}

func TestVentaSinStockReportaTodasLasLineas(t *testing.T) {
	pan := producto("Pan", 990, 1)
	leche := producto("Leche", 1190, 0)
	azucar := producto("Azúcar", 1490, 50)
	f := newVentaFixture(t, pan, leche, azucar)
	sesionID := f.abrirSesion(t, 1)

	ctx := context.Background()
	_, err := f.engine.Agregar(ctx, 1, pan, 3)
	require.NoError(t, err)
	_, err = f.engine.Agregar(ctx, 1, leche, 2)
	require.NoError(t, err)
	_, err = f.engine.Agregar(ctx, 1, azucar, 1)
	require.NoError(t, err)

	_, err = f.svc.Registrar(ctx, uuid.New(), dto.RegistrarVentaRequest{
		SesionCajaID:  sesionID,
		MetodoPago:    model.MetodoEfectivo,
		TipoDocumento: model.DocumentoBoleta,
		MontoRecibido: decimal.NewFromInt(100000),
	})
	var noStock *domainerr.InsufficientStockError
	require.ErrorAs(t, err, &noStock)

	// Both short lines reported in one response, the healthy one omitted.
	require.Len(t, noStock.Lineas, 2)
	reported := map[uuid.UUID]domainerr.LineaSinStock{}
	for _, l := range noStock.Lineas {
		reported[l.ProductoID] = l
	}
	assert.Equal(t, 3, reported[pan.ID].Solicitado)
	assert.Equal(t, 1, reported[pan.ID].Disponible)
	assert.Equal(t, 2, reported[leche.ID].Solicitado)
	assert.Equal(t, 0, reported[leche.ID].Disponible)

	// Nothing committed, nothing decremented, cart intact.
	assert.Equal(t, 1, f.prodRepo.stock(pan.ID))
	assert.Equal(t, 50, f.prodRepo.stock(azucar.ID))
	assert.Empty(t, f.cajaRepo.movimientos)
	carrito, err := f.engine.Obtener(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, carrito.Lineas, 3)
}

func TestVentaCarritoVacio(t *testing.T) {
	f := newVentaFixture(t)
	sesionID := f.abrirSesion(t, 1)

	_, err := f.svc.Registrar(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		SesionCajaID:  sesionID,
		MetodoPago:    model.MetodoEfectivo,
		TipoDocumento: model.DocumentoBoleta,
		MontoRecibido: decimal.NewFromInt(1000),
	})
	var validation *domainerr.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "carrito", validation.Campo)
}

func TestVentaSesionCerrada(t *testing.T) {
	pan := producto("Pan", 990, 10)
	f := newVentaFixture(t, pan)
	sesionID := f.abrirSesion(t, 1)

	_, err := f.engine.Agregar(context.Background(), 1, pan, 1)
	require.NoError(t, err)

	_, err = f.cajaSvc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		SesionCajaID:   sesionID,
		MontoDeclarado: decimal.NewFromInt(10000),
	})
	require.NoError(t, err)

	_, err = f.svc.Registrar(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		SesionCajaID:  sesionID,
		MetodoPago:    model.MetodoEfectivo,
		TipoDocumento: model.DocumentoBoleta,
		MontoRecibido: decimal.NewFromInt(1000),
	})
	var notOpen *domainerr.SessionNotOpenError
	assert.ErrorAs(t, err, &notOpen)
	assert.Equal(t, 10, f.prodRepo.stock(pan.ID))
}

func TestVentaConCierreEntremedio(t *testing.T) {
	// The register closes after the sale's pre-flight check but before its
	// transaction: the in-transaction session lock must reject the sale, so
	// no ledger entry ever lands behind the close-time reconciliation.
	pan := producto("Pan", 990, 10)
	f := newVentaFixture(t, pan)
	sesionID := f.abrirSesion(t, 1)

	ctx := context.Background()
	_, err := f.engine.Agregar(ctx, 1, pan, 1)
	require.NoError(t, err)

	f.cajaRepo.antesDeBloquear = func() {
		_, err := f.cajaSvc.Cerrar(ctx, dto.CerrarCajaRequest{
			SesionCajaID:   sesionID,
			MontoDeclarado: decimal.NewFromInt(10000),
		})
		require.NoError(t, err)
	}

	_, err = f.svc.Registrar(ctx, uuid.New(), dto.RegistrarVentaRequest{
		SesionCajaID:  sesionID,
		MetodoPago:    model.MetodoEfectivo,
		TipoDocumento: model.DocumentoBoleta,
		MontoRecibido: decimal.NewFromInt(1000),
	})
	var notOpen *domainerr.SessionNotOpenError
	require.ErrorAs(t, err, &notOpen)

	// Nothing attached to the closed session, nothing decremented.
	assert.Empty(t, f.ventaRepo.ventas)
	assert.Empty(t, f.cajaRepo.movimientos)
	assert.Empty(t, f.stockRepo.movs)
	assert.Equal(t, 10, f.prodRepo.stock(pan.ID))
}

func TestVentaMontoRecibidoInsuficiente(t *testing.T) {
	pan := producto("Pan", 990, 10)
	f := newVentaFixture(t, pan)
	sesionID := f.abrirSesion(t, 1)

	_, err := f.engine.Agregar(context.Background(), 1, pan, 2)
	require.NoError(t, err)

	_, err = f.svc.Registrar(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		SesionCajaID:  sesionID,
		MetodoPago:    model.MetodoEfectivo,
		TipoDocumento: model.DocumentoBoleta,
		MontoRecibido: decimal.NewFromInt(1500), // total is 1980
	})
	var badAmount *domainerr.InvalidAmountError
	require.ErrorAs(t, err, &badAmount)
	assert.Equal(t, "monto_recibido", badAmount.Campo)
	assert.Equal(t, 10, f.prodRepo.stock(pan.ID))
}

func TestVentaConDescuentoYCupon(t *testing.T) {
	vino := producto("Vino", 5000, 20)
	f := newVentaFixture(t, vino)
	sesionID := f.abrirSesion(t, 1)

	_, err := f.engine.Agregar(context.Background(), 1, vino, 2)
	require.NoError(t, err)

	// 10000 - 10% - 500 cupón = 8500 (ya múltiplo de 10)
	resp, err := f.svc.Registrar(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		SesionCajaID:  sesionID,
		MetodoPago:    model.MetodoEfectivo,
		TipoDocumento: model.DocumentoBoleta,
		DescuentoPct:  decimal.NewFromInt(10),
		Cupon:         decimal.NewFromInt(500),
		MontoRecibido: decimal.NewFromInt(10000),
	})
	require.NoError(t, err)
	assert.Equal(t, "10000", resp.Subtotal.String())
	assert.Equal(t, "1500", resp.DescuentoTotal.String())
	assert.Equal(t, "8500", resp.Total.String())
	assert.Equal(t, "1500", resp.Vuelto.String())
}

func TestVentasConcurrentesMismoProducto(t *testing.T) {
	// Stock 10, two registers each commit 6 units concurrently: exactly one
	// sale wins, the other fails whole, and stock lands on 4.
	pan := producto("Pan", 990, 10)
	f := newVentaFixture(t, pan)
	sesionA := f.abrirSesion(t, 1)
	sesionB := f.abrirSesion(t, 2)

	ctx := context.Background()
	_, err := f.engine.Agregar(ctx, 1, pan, 6)
	require.NoError(t, err)
	_, err = f.engine.Agregar(ctx, 2, pan, 6)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, sesionID := range []string{sesionA, sesionB} {
		wg.Add(1)
		go func(i int, sesionID string) {
			defer wg.Done()
			_, errs[i] = f.svc.Registrar(ctx, uuid.New(), dto.RegistrarVentaRequest{
				SesionCajaID:  sesionID,
				MetodoPago:    model.MetodoDebito,
				TipoDocumento: model.DocumentoBoleta,
			})
		}(i, sesionID)
	}
	wg.Wait()

	var okCount, shortCount int
	for _, err := range errs {
		var noStock *domainerr.InsufficientStockError
		switch {
		case err == nil:
			okCount++
		case assert.ErrorAs(t, err, &noStock):
			shortCount++
		}
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, shortCount)
	assert.Equal(t, 4, f.prodRepo.stock(pan.ID))
	assert.Len(t, f.cajaRepo.movimientos, 1)
}

func TestNumeroTicketSecuencial(t *testing.T) {
	pan := producto("Pan", 990, 100)
	f := newVentaFixture(t, pan)
	sesionID := f.abrirSesion(t, 1)

	ctx := context.Background()
	for want := 1; want <= 3; want++ {
		_, err := f.engine.Agregar(ctx, 1, pan, 1)
		require.NoError(t, err)
		resp, err := f.svc.Registrar(ctx, uuid.New(), dto.RegistrarVentaRequest{
			SesionCajaID:  sesionID,
			MetodoPago:    model.MetodoDebito,
			TipoDocumento: model.DocumentoBoleta,
		})
		require.NoError(t, err)
		assert.Equal(t, want, resp.NumeroTicket)
	}
}

func TestPrecioInmuneACambioDeCatalogo(t *testing.T) {
	pan := producto("Pan", 990, 10)
	f := newVentaFixture(t, pan)
	sesionID := f.abrirSesion(t, 1)

	ctx := context.Background()
	_, err := f.engine.Agregar(ctx, 1, pan, 1)
	require.NoError(t, err)

	// Catalog price changes after the line was added.
	f.prodRepo.mu.Lock()
	f.prodRepo.productos[pan.ID].PrecioVenta = decimal.NewFromInt(1490)
	f.prodRepo.mu.Unlock()

	resp, err := f.svc.Registrar(ctx, uuid.New(), dto.RegistrarVentaRequest{
		SesionCajaID:  sesionID,
		MetodoPago:    model.MetodoDebito,
		TipoDocumento: model.DocumentoBoleta,
	})
	require.NoError(t, err)
	assert.Equal(t, "990", resp.Items[0].PrecioUnitario.String())
	assert.Equal(t, "990", resp.Total.String())
}
