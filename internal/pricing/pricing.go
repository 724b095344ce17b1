// Package pricing is the single place where discounts, CLP cash rounding and
// change are computed. Every call site (sale commit, receipts, previews)
// goes through Compute so there is exactly one rounding rule in the system.
package pricing

import (
	"github.com/shopspring/decimal"

	"solvendo/internal/model"
)

var (
	cien = decimal.NewFromInt(100)
	diez = decimal.NewFromInt(10)
)

// Desglose is the result of a pricing pass over a cart total.
type Desglose struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Descuento decimal.Decimal `json:"descuento"`
	Total     decimal.Decimal `json:"total"`
}

// Compute applies a percentage discount plus a flat coupon to a cart total
// and returns the payable amount for the given payment method.
//
// Efectivo totals round to the nearest multiple of 10 — cash drawers hold
// only round CLP denominations — with ties rounding half-up. Every other
// method pays the exact amount. The payable total is clamped at zero before
// rounding, so an oversized coupon can never produce a negative charge.
func Compute(cartTotal, descuentoPct, cupon decimal.Decimal, metodo string) Desglose {
	descuento := cartTotal.Mul(descuentoPct).Div(cien).Add(cupon)

	total := cartTotal.Sub(descuento)
	if total.IsNegative() {
		// Clamp: the effective discount is the whole cart.
		descuento = cartTotal
		total = decimal.Zero
	}

	if metodo == model.MetodoEfectivo {
		total = RedondearEfectivo(total)
	}

	return Desglose{
		Subtotal:  cartTotal,
		Descuento: descuento,
		Total:     total,
	}
}

// RedondearEfectivo rounds a non-negative amount to the nearest multiple of
// 10, ties half-up (1985 → 1990, 1984 → 1980).
func RedondearEfectivo(monto decimal.Decimal) decimal.Decimal {
	return monto.Div(diez).Round(0).Mul(diez)
}

// Vuelto returns the change due on a cash payment: max(0, recibido − total).
// Non-cash methods never produce change.
func Vuelto(recibido, total decimal.Decimal, metodo string) decimal.Decimal {
	if metodo != model.MetodoEfectivo {
		return decimal.Zero
	}
	v := recibido.Sub(total)
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
