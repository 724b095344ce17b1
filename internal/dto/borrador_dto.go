package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type GuardarBorradorRequest struct {
	Nombre string `json:"nombre" validate:"required,min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type BorradorResponse struct {
	ID        string                 `json:"id"`
	Nombre    string                 `json:"nombre"`
	Lineas    []LineaCarritoResponse `json:"lineas"`
	CreatedAt string                 `json:"created_at"`
}
