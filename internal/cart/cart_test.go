package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solvendo/internal/domainerr"
	"solvendo/internal/model"
)

func producto(nombre string, precio float64) *model.Producto {
	return &model.Producto{
		ID:          uuid.New(),
		Nombre:      nombre,
		PrecioVenta: decimal.NewFromFloat(precio),
		StockActual: 100,
		Activo:      true,
	}
}

func TestAgregarYTotal(t *testing.T) {
	e := NewEngine(NewMemoryStore())
	ctx := context.Background()

	p1 := producto("Pan", 1000)
	p2 := producto("Leche", 1190)

	_, err := e.Agregar(ctx, 1, p1, 2)
	require.NoError(t, err)
	carrito, err := e.Agregar(ctx, 1, p2, 1)
	require.NoError(t, err)

	assert.Len(t, carrito.Lineas, 2)
	assert.Equal(t, "3190", carrito.Total().String())
}

func TestAgregarMismoProductoIncrementa(t *testing.T) {
	e := NewEngine(NewMemoryStore())
	ctx := context.Background()
	p := producto("Pan", 1000)

	_, err := e.Agregar(ctx, 1, p, 2)
	require.NoError(t, err)
	carrito, err := e.Agregar(ctx, 1, p, 3)
	require.NoError(t, err)

	require.Len(t, carrito.Lineas, 1)
	assert.Equal(t, 5, carrito.Lineas[0].Cantidad)
}

func TestPrecioInmuneACambiosDeCatalogo(t *testing.T) {
	e := NewEngine(NewMemoryStore())
	ctx := context.Background()
	p := producto("Pan", 1000)

	_, err := e.Agregar(ctx, 1, p, 1)
	require.NoError(t, err)

	// El catálogo sube el precio después del add.
	p.PrecioVenta = decimal.NewFromFloat(9999)

	carrito, err := e.Obtener(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "1000", carrito.Lineas[0].PrecioUnitario.String())
}

func TestFijarCantidadCeroElimina(t *testing.T) {
	e := NewEngine(NewMemoryStore())
	ctx := context.Background()
	p := producto("Pan", 1000)

	_, err := e.Agregar(ctx, 1, p, 2)
	require.NoError(t, err)

	carrito, err := e.FijarCantidad(ctx, 1, p.ID, 0)
	require.NoError(t, err)
	assert.True(t, carrito.Vacio())
}

func TestFijarCantidadProductoAusente(t *testing.T) {
	e := NewEngine(NewMemoryStore())
	_, err := e.FijarCantidad(context.Background(), 1, uuid.New(), 3)

	var vErr *domainerr.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestAgregarValidaciones(t *testing.T) {
	e := NewEngine(NewMemoryStore())
	ctx := context.Background()

	var vErr *domainerr.ValidationError

	_, err := e.Agregar(ctx, 1, producto("Pan", 1000), 0)
	assert.ErrorAs(t, err, &vErr)

	inactivo := producto("Descontinuado", 500)
	inactivo.Activo = false
	_, err = e.Agregar(ctx, 1, inactivo, 1)
	assert.ErrorAs(t, err, &vErr)
}

func TestVaciarYCarritosPorCaja(t *testing.T) {
	e := NewEngine(NewMemoryStore())
	ctx := context.Background()

	_, err := e.Agregar(ctx, 1, producto("Pan", 1000), 1)
	require.NoError(t, err)
	_, err = e.Agregar(ctx, 2, producto("Leche", 1190), 1)
	require.NoError(t, err)

	require.NoError(t, e.Vaciar(ctx, 1))

	c1, err := e.Obtener(ctx, 1)
	require.NoError(t, err)
	assert.True(t, c1.Vacio())

	// La caja 2 no se ve afectada.
	c2, err := e.Obtener(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, c2.Lineas, 1)
}

func TestReemplazar(t *testing.T) {
	e := NewEngine(NewMemoryStore())
	ctx := context.Background()

	_, err := e.Agregar(ctx, 1, producto("Pan", 1000), 5)
	require.NoError(t, err)

	nuevas := []Linea{{
		ProductoID:     uuid.New(),
		Nombre:         "Queso",
		PrecioUnitario: decimal.NewFromFloat(4500),
		Cantidad:       1,
	}}
	carrito, err := e.Reemplazar(ctx, 1, nuevas)
	require.NoError(t, err)

	require.Len(t, carrito.Lineas, 1)
	assert.Equal(t, "Queso", carrito.Lineas[0].Nombre)
}
