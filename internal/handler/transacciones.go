package handler

import (
	"net/http"
	"strconv"

	"github.com/AmericableSA/Sistema-sub000/internal/apierror"
	"github.com/AmericableSA/Sistema-sub000/internal/dto"
	"github.com/AmericableSA/Sistema-sub000/internal/middleware"
	"github.com/AmericableSA/Sistema-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TransaccionHandler struct{ svc service.TransaccionService }

func NewTransaccionHandler(svc service.TransaccionService) *TransaccionHandler {
	return &TransaccionHandler{svc: svc}
}

// Registrar godoc
// @Summary Registra una transaccion de cobro contra la sesion abierta
// @Tags transacciones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarTransaccionRequest true "Datos del cobro"
// @Success 201 {object} dto.TransaccionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/transacciones [post]
func (h *TransaccionHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarTransaccionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if !cajaPermitida(c, req.Caja) {
		return
	}
	claims := middleware.GetClaims(c)
	operadorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Registrar(c.Request.Context(), operadorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Anular godoc
// @Summary Anula una transaccion; nunca la borra del libro
// @Tags transacciones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de transaccion"
// @Param body body dto.AnularTransaccionRequest true "Motivo de anulacion"
// @Success 200 {object} dto.TransaccionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/transacciones/{id} [delete]
func (h *TransaccionHandler) Anular(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.AnularTransaccionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	operadorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Anular(c.Request.Context(), id, operadorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Obtiene una transaccion con sus items
// @Tags transacciones
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de transaccion"
// @Success 200 {object} dto.TransaccionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/transacciones/{id} [get]
func (h *TransaccionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial godoc
// @Summary Historial unificado de transacciones y movimientos
// @Tags transacciones
// @Produce json
// @Security BearerAuth
// @Param caja query string false "oficina | cobrador"
// @Param desde query string false "Fecha desde (2006-01-02)"
// @Param hasta query string false "Fecha hasta (2006-01-02)"
// @Param buscar query string false "Texto libre sobre descripcion/referencia/cliente"
// @Success 200 {object} map[string]interface{}
// @Router /v1/transacciones [get]
func (h *TransaccionHandler) Historial(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := dto.HistorialFilter{
		Caja:   c.Query("caja"),
		Buscar: c.Query("buscar"),
		Page:   page,
		Limit:  limit,
	}
	if v := c.Query("desde"); v != "" {
		filter.Desde = &v
	}
	if v := c.Query("hasta"); v != "" {
		filter.Hasta = &v
	}

	registros, total, err := h.svc.Historial(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": registros, "total": total, "page": filter.Page, "limit": filter.Limit})
}
