// Package cart owns the in-flight cart of each register: an ordered list of
// line items scoped to "the next sale". A cart is reset after a successful
// commit, an explicit cancel, or a draft save/load — never by a UI lifecycle.
package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"solvendo/internal/domainerr"
	"solvendo/internal/model"
)

// Linea is one cart line. PrecioUnitario is snapshotted when the product is
// added and is immune to later catalog price changes. Cantidad is always
// ≥ 1 — setting it to 0 removes the line.
type Linea struct {
	ProductoID     uuid.UUID       `json:"producto_id"`
	Nombre         string          `json:"nombre"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Cantidad       int             `json:"cantidad"`
}

// Subtotal returns cantidad × precio unitario for the line.
func (l Linea) Subtotal() decimal.Decimal {
	return l.PrecioUnitario.Mul(decimal.NewFromInt(int64(l.Cantidad)))
}

// Carrito is the ordered line set of one register. Lines are keyed by
// producto: adding a product already present merges into its line.
type Carrito struct {
	CajaID    int       `json:"caja_id"`
	Lineas    []Linea   `json:"lineas"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Total returns Σ(cantidad × precio unitario) with no rounding — rounding is
// payment-method-specific and applied by the pricing calculator downstream.
func (c *Carrito) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lineas {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Vacio reports whether the cart has no lines.
func (c *Carrito) Vacio() bool { return len(c.Lineas) == 0 }

// Store persists carts between requests. The memory implementation backs
// unit tests; Redis backs production so a register crash never loses the
// cart in progress.
type Store interface {
	Get(ctx context.Context, cajaID int) (*Carrito, error)
	Put(ctx context.Context, c *Carrito) error
	Delete(ctx context.Context, cajaID int) error
}

// Engine serializes all mutations of the per-register carts. Operations are
// read-modify-write against the Store, so a single mutex keeps two operator
// actions on the same register from interleaving.
type Engine struct {
	mu    sync.Mutex
	store Store
}

func NewEngine(store Store) *Engine { return &Engine{store: store} }

// Agregar adds cantidad units of producto to the register's cart, snapshotting
// the current sale price. Adding a product already in the cart increments its
// line instead of duplicating it.
func (e *Engine) Agregar(ctx context.Context, cajaID int, producto *model.Producto, cantidad int) (*Carrito, error) {
	if cantidad < 1 {
		return nil, &domainerr.ValidationError{Campo: "cantidad", Detalle: "debe ser al menos 1"}
	}
	if !producto.Activo {
		return nil, &domainerr.ValidationError{Campo: "producto", Detalle: "el producto está inactivo"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	carrito, err := e.load(ctx, cajaID)
	if err != nil {
		return nil, err
	}

	for i := range carrito.Lineas {
		if carrito.Lineas[i].ProductoID == producto.ID {
			carrito.Lineas[i].Cantidad += cantidad
			return carrito, e.save(ctx, carrito)
		}
	}

	carrito.Lineas = append(carrito.Lineas, Linea{
		ProductoID:     producto.ID,
		Nombre:         producto.Nombre,
		PrecioUnitario: producto.PrecioVenta,
		Cantidad:       cantidad,
	})
	return carrito, e.save(ctx, carrito)
}

// FijarCantidad sets the quantity of the line identified by productoID.
// A quantity ≤ 0 removes the line.
func (e *Engine) FijarCantidad(ctx context.Context, cajaID int, productoID uuid.UUID, cantidad int) (*Carrito, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	carrito, err := e.load(ctx, cajaID)
	if err != nil {
		return nil, err
	}

	for i := range carrito.Lineas {
		if carrito.Lineas[i].ProductoID != productoID {
			continue
		}
		if cantidad <= 0 {
			carrito.Lineas = append(carrito.Lineas[:i], carrito.Lineas[i+1:]...)
		} else {
			carrito.Lineas[i].Cantidad = cantidad
		}
		return carrito, e.save(ctx, carrito)
	}
	return nil, &domainerr.ValidationError{Campo: "producto_id", Detalle: "no está en el carrito"}
}

// Quitar removes the line identified by productoID.
func (e *Engine) Quitar(ctx context.Context, cajaID int, productoID uuid.UUID) (*Carrito, error) {
	return e.FijarCantidad(ctx, cajaID, productoID, 0)
}

// Vaciar discards the register's cart.
func (e *Engine) Vaciar(ctx context.Context, cajaID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Delete(ctx, cajaID)
}

// Obtener returns the register's current cart (empty cart if none exists).
func (e *Engine) Obtener(ctx context.Context, cajaID int) (*Carrito, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.load(ctx, cajaID)
}

// Reemplazar swaps the register's cart wholesale (draft load does not merge).
func (e *Engine) Reemplazar(ctx context.Context, cajaID int, lineas []Linea) (*Carrito, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	carrito := &Carrito{CajaID: cajaID, Lineas: lineas}
	return carrito, e.save(ctx, carrito)
}

func (e *Engine) load(ctx context.Context, cajaID int) (*Carrito, error) {
	carrito, err := e.store.Get(ctx, cajaID)
	if err != nil {
		return nil, err
	}
	if carrito == nil {
		carrito = &Carrito{CajaID: cajaID}
	}
	return carrito, nil
}

func (e *Engine) save(ctx context.Context, c *Carrito) error {
	c.UpdatedAt = time.Now()
	return e.store.Put(ctx, c)
}
