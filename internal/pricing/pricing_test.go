package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"solvendo/internal/model"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestComputeSinDescuento(t *testing.T) {
	res := Compute(d(2000), decimal.Zero, decimal.Zero, model.MetodoEfectivo)
	assert.Equal(t, "2000", res.Total.String())
	assert.Equal(t, "2000", res.Subtotal.String())
	assert.True(t, res.Descuento.IsZero())
}

func TestComputeDescuentoPorcentualYCupon(t *testing.T) {
	// 10000 − 10% − cupón 500 = 8500; débito no redondea
	res := Compute(d(10000), d(10), d(500), model.MetodoDebito)
	assert.Equal(t, "8500", res.Total.String())
	assert.Equal(t, "1500", res.Descuento.String())
}

func TestComputeClampEnCero(t *testing.T) {
	// Cupón mayor que el total: el pagable nunca es negativo.
	res := Compute(d(1000), decimal.Zero, d(5000), model.MetodoEfectivo)
	assert.True(t, res.Total.IsZero())
	assert.Equal(t, "1000", res.Descuento.String())
}

func TestRedondeoEfectivo(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{1984, "1980"},
		{1985, "1990"}, // tie rounds half-up
		{1986, "1990"},
		{2000, "2000"},
		{4, "0"},
		{5, "10"},
		{0, "0"},
	}
	for _, c := range cases {
		got := RedondearEfectivo(d(c.in))
		assert.Equal(t, c.want, got.String(), "redondeo de %v", c.in)
	}
}

func TestEfectivoSiempreMultiploDeDiez(t *testing.T) {
	for _, total := range []float64{1, 123, 999, 1234.5, 87654, 5} {
		res := Compute(d(total), d(7), d(13), model.MetodoEfectivo)
		assert.True(t, res.Total.Mod(decimal.NewFromInt(10)).IsZero(),
			"total %s no es múltiplo de 10", res.Total)
	}
}

func TestOtrosMetodosNoRedondean(t *testing.T) {
	for _, metodo := range []string{model.MetodoDebito, model.MetodoCredito, model.MetodoTransferencia} {
		res := Compute(d(1987), decimal.Zero, decimal.Zero, metodo)
		assert.Equal(t, "1987", res.Total.String(), "método %s", metodo)
	}
}

func TestVuelto(t *testing.T) {
	assert.Equal(t, "0", Vuelto(d(2000), d(2000), model.MetodoEfectivo).String())
	assert.Equal(t, "500", Vuelto(d(2500), d(2000), model.MetodoEfectivo).String())
	// Never negative, never for non-cash.
	assert.True(t, Vuelto(d(1500), d(2000), model.MetodoEfectivo).IsZero())
	assert.True(t, Vuelto(d(5000), d(2000), model.MetodoDebito).IsZero())
}
