package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AgregarItemRequest struct {
	ProductoID string `json:"producto_id" validate:"omitempty,uuid"`
	// Barcode is an alternative to ProductoID — the scanner path.
	CodigoBarras string `json:"codigo_barras" validate:"omitempty"`
	Cantidad     int    `json:"cantidad"      validate:"required,min=1"`
}

type FijarCantidadRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LineaCarritoResponse struct {
	ProductoID     string          `json:"producto_id"`
	Nombre         string          `json:"nombre"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Cantidad       int             `json:"cantidad"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type CarritoResponse struct {
	CajaID int                    `json:"caja_id"`
	Lineas []LineaCarritoResponse `json:"lineas"`
	Total  decimal.Decimal        `json:"total"`
}
