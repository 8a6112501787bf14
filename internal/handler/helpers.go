package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/AmericableSA/Sistema-sub000/internal/apierror"
	"github.com/AmericableSA/Sistema-sub000/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps domain errors onto HTTP statuses and the apierror
// envelope. JustificacionRequerida carries the computed figures in the body
// so the client can re-submit with the note attached.
func respondError(c *gin.Context, err error) {
	var jr *domain.JustificacionRequeridaError
	if errors.As(err, &jr) {
		c.JSON(http.StatusConflict, gin.H{
			"detail":        jr.Error(),
			"code":          domain.CodeJustificacionRequerida,
			"desvio":        jr.Desvio,
			"monto_sistema": jr.MontoSistema,
		})
		return
	}

	code := domain.CodeOf(err)
	status := http.StatusBadRequest
	switch code {
	case "SESION_NO_EXISTE", "TRANSACCION_NO_EXISTE":
		status = http.StatusNotFound
	case "SESION_YA_ABIERTA", "REFERENCIA_DUPLICADA", "YA_ANULADA", "SESION_CERRADA", "INVARIANTE_VIOLADA":
		status = http.StatusConflict
	case "CAJA_NO_ASIGNADA":
		status = http.StatusForbidden
	case "CLIENTE_NO_DISPONIBLE":
		status = http.StatusBadGateway
	case "ERROR_INTERNO":
		status = http.StatusInternalServerError
	}
	c.JSON(status, apierror.WithCode(code, err.Error()))
}
