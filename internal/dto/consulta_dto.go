package dto

import "github.com/shopspring/decimal"

// ConsultaPreciosResponse is served by the public price-check endpoint.
type ConsultaPreciosResponse struct {
	Nombre          string          `json:"nombre"`
	PrecioVenta     decimal.Decimal `json:"precio_venta"`
	StockDisponible int             `json:"stock_disponible"`
	Categoria       string          `json:"categoria"`
}
