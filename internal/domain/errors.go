// Package domain defines the error taxonomy of the cash ledger core.
// Every failure a caller can act on has a stable machine-readable code; the
// HTTP layer maps these onto the apierror envelope so the UI can prompt for
// corrective input (enter a justification, reduce the amount, open a session)
// instead of showing a generic failure.
package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error is a domain failure with a stable code and human-readable text.
type Error struct {
	Code string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Sentinel domain errors. None of these are retried automatically: a commit
// is not idempotent without a caller-supplied key, so the core always returns
// the error and lets the operator decide.
var (
	ErrCajaInvalida = &Error{Code: "CAJA_INVALIDA", Msg: "caja inválida: debe ser oficina o cobrador"}

	ErrSesionYaAbierta = &Error{Code: "SESION_YA_ABIERTA", Msg: "ya existe una sesión abierta para esta caja"}
	ErrSinSesionActiva = &Error{Code: "SIN_SESION_ACTIVA", Msg: "no hay sesión de caja abierta"}
	ErrSesionCerrada   = &Error{Code: "SESION_CERRADA", Msg: "la sesión de caja ya está cerrada"}
	ErrSesionNoExiste  = &Error{Code: "SESION_NO_EXISTE", Msg: "sesión de caja no encontrada"}

	ErrPagoInsuficiente     = &Error{Code: "PAGO_INSUFICIENTE", Msg: "el monto recibido es menor al monto a cobrar"}
	ErrReferenciaFaltante   = &Error{Code: "REFERENCIA_FALTANTE", Msg: "el número de factura manual es obligatorio"}
	ErrReferenciaDuplicada  = &Error{Code: "REFERENCIA_DUPLICADA", Msg: "ya existe una transacción con esa referencia en esta caja hoy"}
	ErrTransaccionNoExiste  = &Error{Code: "TRANSACCION_NO_EXISTE", Msg: "transacción no encontrada"}
	ErrYaAnulada            = &Error{Code: "YA_ANULADA", Msg: "la transacción ya está anulada"}
	ErrMotivoFaltante       = &Error{Code: "MOTIVO_FALTANTE", Msg: "el motivo de anulación es obligatorio"}
	ErrClienteNoDisponible  = &Error{Code: "CLIENTE_NO_DISPONIBLE", Msg: "no se pudo consultar el directorio de clientes"}
	ErrCajaNoAsignada       = &Error{Code: "CAJA_NO_ASIGNADA", Msg: "el operador no tiene asignada esta caja"}
	ErrInvarianteViolada    = &Error{Code: "INVARIANTE_VIOLADA", Msg: "estado inconsistente de caja: operación abortada"}
)

// Validacion marks bad input shape/values. Nothing is persisted when it fires.
func Validacion(format string, args ...interface{}) error {
	return &Error{Code: "VALIDACION", Msg: fmt.Sprintf(format, args...)}
}

// JustificacionRequeridaError is returned when closing with a variance above
// tolerance without a note, or when committing an amount/mora override
// without a justification. It carries the computed figures so the caller can
// re-submit the same request with the note attached.
type JustificacionRequeridaError struct {
	Desvio       decimal.Decimal
	MontoSistema decimal.Decimal
	Motivo       string
}

func (e *JustificacionRequeridaError) Error() string {
	if e.Motivo != "" {
		return "justificación requerida: " + e.Motivo
	}
	return "justificación requerida"
}

// Code of JustificacionRequeridaError in the HTTP envelope.
const CodeJustificacionRequerida = "JUSTIFICACION_REQUERIDA"

// CodeOf extracts the machine code of any domain error; unknown errors map
// to the generic internal code.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	var jr *JustificacionRequeridaError
	if errors.As(err, &jr) {
		return CodeJustificacionRequerida
	}
	return "ERROR_INTERNO"
}
