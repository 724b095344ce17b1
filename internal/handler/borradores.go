package handler

import (
	"errors"
	"net/http"

	"solvendo/internal/apierror"
	"solvendo/internal/dto"
	"solvendo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BorradoresHandler struct{ svc service.BorradorService }

func NewBorradoresHandler(svc service.BorradorService) *BorradoresHandler {
	return &BorradoresHandler{svc: svc}
}

// Guardar snapshots the register's cart as a named draft and clears the cart.
func (h *BorradoresHandler) Guardar(c *gin.Context) {
	cajaID, ok := resolveCajaID(c)
	if !ok {
		return
	}
	var req dto.GuardarBorradorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Guardar(c.Request.Context(), cajaID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cargar replaces the register's cart with a draft's lines.
func (h *BorradoresHandler) Cargar(c *gin.Context) {
	cajaID, ok := resolveCajaID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Cargar(c.Request.Context(), cajaID, id)
	if err != nil {
		if errors.Is(err, service.ErrBorradorNoEncontrado) {
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BorradoresHandler) Eliminar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrBorradorNoEncontrado) {
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
			return
		}
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BorradoresHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar borradores"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
