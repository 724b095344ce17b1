package router

import (
	"time"

	"solvendo/internal/cart"
	"solvendo/internal/config"
	"solvendo/internal/handler"
	"solvendo/internal/middleware"
	"solvendo/internal/repository"
	"solvendo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	borradorRepo := repository.NewBorradorRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)

	// ── Cart engine — Redis-backed when available ────────────────────────────
	var store cart.Store
	if rdb != nil {
		store = cart.NewRedisStore(rdb)
	} else {
		store = cart.NewMemoryStore()
	}
	engine := cart.NewEngine(store)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	cajaSvc := service.NewCajaService(cajaRepo)
	carritoSvc := service.NewCarritoService(engine, productoRepo)
	ventaSvc := service.NewVentaService(ventaRepo, cajaSvc, cajaRepo, productoRepo, clienteRepo, movimientoStockRepo, engine)
	borradorSvc := service.NewBorradorService(borradorRepo, engine)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	carritoH := handler.NewCarritoHandler(carritoSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	borradoresH := handler.NewBorradoresHandler(borradorSvc)
	consultaH := handler.NewConsultaPreciosHandler(productoRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check — no auth required
	r.GET("/v1/precio/:barcode", consultaH.GetPrecioPorBarcode)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	operador := middleware.RequireRole("cajero", "supervisor", "administrador")
	v1 := r.Group("/v1", jwtMW)
	{
		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", operador, cajaH.Abrir)
			caja.POST("/cerrar", operador, cajaH.Cerrar)
			caja.POST("/movimiento", operador, cajaH.RegistrarMovimiento)
			caja.GET("/activa", operador, cajaH.Activa)
			caja.GET("/:id/arqueo", operador, cajaH.Arqueo)
			caja.GET("/:id/reporte", operador, cajaH.Reporte)
			caja.GET("/historial", middleware.RequireRole("supervisor", "administrador"), cajaH.Historial)
		}

		carrito := v1.Group("/carrito", operador)
		{
			carrito.GET("", carritoH.Obtener)
			carrito.DELETE("", carritoH.Vaciar)
			carrito.POST("/items", carritoH.AgregarItem)
			carrito.PATCH("/items", carritoH.FijarCantidad)
			carrito.DELETE("/items/:producto_id", carritoH.QuitarItem)
		}

		v1.POST("/ventas", operador, ventasH.Registrar)
		v1.GET("/ventas", operador, ventasH.Listar)
		v1.GET("/ventas/:id", operador, ventasH.Obtener)

		borradores := v1.Group("/borradores", operador)
		{
			borradores.POST("", borradoresH.Guardar)
			borradores.GET("", borradoresH.Listar)
			borradores.POST("/:id/cargar", borradoresH.Cargar)
			borradores.DELETE("/:id", borradoresH.Eliminar)
		}
	}

	return r
}
