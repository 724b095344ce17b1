package handler

import (
	"net/http"
	"strconv"

	"solvendo/internal/apierror"
	"solvendo/internal/dto"
	"solvendo/internal/middleware"
	"solvendo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Abrir opens a new session on a register. 409 when one is already open.
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	// A bound operator can only open their own register.
	if claims.CajaID != nil && *claims.CajaID != req.CajaID {
		c.JSON(http.StatusForbidden, apierror.New("Caja no asignada a este usuario"))
		return
	}

	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RegistrarMovimiento records a manual ingreso or retiro on an open session.
func (h *CajaHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.MovimientoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarMovimiento(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cerrar reconciles and closes an open session. 409 on double close.
func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Arqueo returns the theoretical drawer contents of an open session. Read-only.
func (h *CajaHandler) Arqueo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Arqueo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reporte returns the full state of a session, open or closed.
func (h *CajaHandler) Reporte(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Reporte(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Activa returns the open session of a register, 404 when none.
func (h *CajaHandler) Activa(c *gin.Context) {
	cajaID, ok := resolveCajaID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Activa(c.Request.Context(), cajaID)
	if err != nil {
		respondError(c, err)
		return
	}
	if resp == nil {
		c.JSON(http.StatusNotFound, apierror.New("Sin sesión activa"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial returns a paginated list of sessions, newest first.
func (h *CajaHandler) Historial(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	resp, total, err := h.svc.Historial(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar sesiones"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp, "total": total, "page": page, "limit": limit})
}

// resolveCajaID resolves the register the request acts on: the operator's
// bound register when the token carries one, else an explicit ?caja_id.
func resolveCajaID(c *gin.Context) (int, bool) {
	claims := middleware.GetClaims(c)
	if claims.CajaID != nil {
		return *claims.CajaID, true
	}
	cajaID, err := strconv.Atoi(c.Query("caja_id"))
	if err != nil || cajaID < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("caja_id requerido"))
		return 0, false
	}
	return cajaID, true
}
