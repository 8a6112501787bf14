package handler

import (
	"net/http"

	"github.com/AmericableSA/Sistema-sub000/internal/dto"
	"github.com/AmericableSA/Sistema-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type CotizacionHandler struct{ svc service.CotizadorService }

func NewCotizacionHandler(svc service.CotizadorService) *CotizacionHandler {
	return &CotizacionHandler{svc: svc}
}

// Cotizar godoc
// @Summary Calcula el monto sugerido de un cobro sin registrarlo
// @Tags cotizaciones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CotizacionRequest true "Parametros del cobro"
// @Success 200 {object} dto.CotizacionResponse
// @Failure 502 {object} apierror.APIError
// @Router /v1/cotizaciones [post]
func (h *CotizacionHandler) Cotizar(c *gin.Context) {
	var req dto.CotizacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cotizar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
