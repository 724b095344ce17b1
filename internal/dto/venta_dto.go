package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha        string `form:"fecha"` // YYYY-MM-DD; empty = today
	SesionCajaID string `form:"sesion_caja_id"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RegistrarVentaRequest commits the register's current cart as a sale.
// The cart itself lives server-side, keyed by the session's register.
type RegistrarVentaRequest struct {
	SesionCajaID  string          `json:"sesion_caja_id" validate:"required,uuid"`
	MetodoPago    string          `json:"metodo_pago"    validate:"required,oneof=efectivo debito credito transferencia"`
	TipoDocumento string          `json:"tipo_documento" validate:"required,oneof=boleta factura"`
	ClienteID     *string         `json:"cliente_id"     validate:"omitempty,uuid"`
	DescuentoPct  decimal.Decimal `json:"descuento_pct"  validate:"min=0,max=100"`
	Cupon         decimal.Decimal `json:"cupon"          validate:"min=0"`
	// MontoRecibido only matters for efectivo — it determines the vuelto.
	MontoRecibido decimal.Decimal `json:"monto_recibido" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID             string              `json:"id"`
	NumeroTicket   int                 `json:"numero_ticket"`
	SesionCajaID   string              `json:"sesion_caja_id"`
	TipoDocumento  string              `json:"tipo_documento"`
	MetodoPago     string              `json:"metodo_pago"`
	ClienteID      *string             `json:"cliente_id,omitempty"`
	Items          []ItemVentaResponse `json:"items"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DescuentoTotal decimal.Decimal     `json:"descuento_total"`
	Total          decimal.Decimal     `json:"total"`
	MontoRecibido  decimal.Decimal     `json:"monto_recibido"`
	Vuelto         decimal.Decimal     `json:"vuelto"`
	CreatedAt      string              `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
