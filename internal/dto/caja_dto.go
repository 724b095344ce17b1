package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	CajaID       int             `json:"caja_id"       validate:"required,min=1"`
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
}

type MovimientoManualRequest struct {
	SesionCajaID string          `json:"sesion_caja_id" validate:"required,uuid"`
	Tipo         string          `json:"tipo"           validate:"required,oneof=ingreso retiro"`
	Monto        decimal.Decimal `json:"monto"          validate:"required"`
	Descripcion  string          `json:"descripcion"    validate:"required,min=3"`
}

type CerrarCajaRequest struct {
	SesionCajaID   string          `json:"sesion_caja_id"  validate:"required,uuid"`
	MontoDeclarado decimal.Decimal `json:"monto_declarado" validate:"min=0"`
	Observaciones  *string         `json:"observaciones"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoResponse struct {
	ID           string          `json:"id"`
	SesionCajaID string          `json:"sesion_caja_id"`
	Tipo         string          `json:"tipo"`
	Monto        decimal.Decimal `json:"monto"`
	Descripcion  string          `json:"descripcion"`
	CreatedAt    string          `json:"created_at"`
}

// ArqueoResponse is the read-only audit of an open session: the theoretical
// drawer contents at this instant, with no state change.
type ArqueoResponse struct {
	SesionCajaID   string          `json:"sesion_caja_id"`
	MontoInicial   decimal.Decimal `json:"monto_inicial"`
	VentasEfectivo decimal.Decimal `json:"ventas_efectivo"`
	VentasOtros    decimal.Decimal `json:"ventas_otros"`
	Ingresos       decimal.Decimal `json:"ingresos"`
	Retiros        decimal.Decimal `json:"retiros"`
	MontoTeorico   decimal.Decimal `json:"monto_teorico"`
	Estado         string          `json:"estado"`
}

type CierreResponse struct {
	SesionCajaID   string          `json:"sesion_caja_id"`
	MontoInicial   decimal.Decimal `json:"monto_inicial"`
	MontoTeorico   decimal.Decimal `json:"monto_teorico"`
	MontoDeclarado decimal.Decimal `json:"monto_declarado"`
	Diferencia     decimal.Decimal `json:"diferencia"`
	Estado         string          `json:"estado"`
	ClosedAt       string          `json:"closed_at"`
}

type SesionCajaResponse struct {
	SesionCajaID   string           `json:"sesion_caja_id"`
	CajaID         int              `json:"caja_id"`
	UsuarioID      string           `json:"usuario_id"`
	MontoInicial   decimal.Decimal  `json:"monto_inicial"`
	MontoTeorico   *decimal.Decimal `json:"monto_teorico,omitempty"`
	MontoDeclarado *decimal.Decimal `json:"monto_declarado,omitempty"`
	Diferencia     *decimal.Decimal `json:"diferencia,omitempty"`
	Estado         string           `json:"estado"`
	Observaciones  *string          `json:"observaciones,omitempty"`
	OpenedAt       string           `json:"opened_at"`
	ClosedAt       *string          `json:"closed_at,omitempty"`
}
