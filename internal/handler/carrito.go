package handler

import (
	"net/http"

	"solvendo/internal/apierror"
	"solvendo/internal/dto"
	"solvendo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CarritoHandler exposes the register's live cart. Every route resolves the
// register from the operator's token (or ?caja_id for unbound roles).
type CarritoHandler struct{ svc service.CarritoService }

func NewCarritoHandler(svc service.CarritoService) *CarritoHandler {
	return &CarritoHandler{svc: svc}
}

func (h *CarritoHandler) Obtener(c *gin.Context) {
	cajaID, ok := resolveCajaID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), cajaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AgregarItem adds a product by id or scanned barcode.
func (h *CarritoHandler) AgregarItem(c *gin.Context) {
	cajaID, ok := resolveCajaID(c)
	if !ok {
		return
	}
	var req dto.AgregarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Agregar(c.Request.Context(), cajaID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FijarCantidad sets a line's quantity; zero removes the line.
func (h *CarritoHandler) FijarCantidad(c *gin.Context) {
	cajaID, ok := resolveCajaID(c)
	if !ok {
		return
	}
	var req dto.FijarCantidadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.FijarCantidad(c.Request.Context(), cajaID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CarritoHandler) QuitarItem(c *gin.Context) {
	cajaID, ok := resolveCajaID(c)
	if !ok {
		return
	}
	productoID, err := uuid.Parse(c.Param("producto_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("producto_id inválido"))
		return
	}
	resp, err := h.svc.Quitar(c.Request.Context(), cajaID, productoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CarritoHandler) Vaciar(c *gin.Context) {
	cajaID, ok := resolveCajaID(c)
	if !ok {
		return
	}
	if err := h.svc.Vaciar(c.Request.Context(), cajaID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
