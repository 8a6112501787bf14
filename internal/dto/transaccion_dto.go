package dto

import "github.com/shopspring/decimal"

type ItemRequest struct {
	ProductoID  string          `json:"producto_id" validate:"required"`
	Descripcion string          `json:"descripcion" validate:"required"`
	Cantidad    int             `json:"cantidad"    validate:"required,min=1"`
	Precio      decimal.Decimal `json:"precio"      validate:"min=0"`
}

// RegistrarTransaccionRequest commits a billable operation against the open
// session of the targeted caja. Monto is the amount actually charged; the
// server re-quotes and demands a justification when they deviate.
type RegistrarTransaccionRequest struct {
	ClienteID     *string          `json:"cliente_id"`
	Tipo          string           `json:"tipo" validate:"required,oneof=mensualidad instalacion venta_material reconexion"`
	MesesAPagar   int              `json:"meses_a_pagar" validate:"min=0"`
	AplicarMora   bool             `json:"aplicar_mora"`
	MoraManual    *decimal.Decimal `json:"mora_manual"`
	Promo2x1      bool             `json:"promo_2x1"`
	PlanID        string           `json:"plan_id"`
	Monto         decimal.Decimal  `json:"monto"          validate:"required"`
	Recibido      decimal.Decimal  `json:"recibido"       validate:"required"`
	MetodoPago    string           `json:"metodo_pago"    validate:"required,oneof=efectivo transferencia tarjeta"`
	Referencia    string           `json:"referencia"`
	Descripcion   string           `json:"descripcion"`
	Justificacion *string          `json:"justificacion"`
	Items         []ItemRequest    `json:"items" validate:"dive"`
	// CobradorID credits a field collector with the sale; defaults to the
	// operator taken from the JWT when empty.
	CobradorID string `json:"cobrador_id" validate:"omitempty,uuid"`
	Caja       string `json:"caja" validate:"required,oneof=oficina cobrador"`
}

type AnularTransaccionRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3"`
}

type ItemResponse struct {
	ProductoID  string          `json:"producto_id"`
	Descripcion string          `json:"descripcion"`
	Cantidad    int             `json:"cantidad"`
	Precio      decimal.Decimal `json:"precio"`
}

type TransaccionResponse struct {
	ID             string          `json:"id"`
	SesionID       string          `json:"sesion_id"`
	Caja           string          `json:"caja"`
	ClienteID      *string         `json:"cliente_id,omitempty"`
	Tipo           string          `json:"tipo"`
	Monto          decimal.Decimal `json:"monto"`
	MontoCalculado decimal.Decimal `json:"monto_calculado"`
	Vuelto         decimal.Decimal `json:"vuelto"`
	MetodoPago     string          `json:"metodo_pago"`
	Descripcion    string          `json:"descripcion"`
	MesesPagados   int             `json:"meses_pagados,omitempty"`
	MoraPagada     decimal.Decimal `json:"mora_pagada"`
	Promo2x1       bool            `json:"promo_2x1,omitempty"`
	Referencia     string          `json:"referencia"`
	Justificacion  *string         `json:"justificacion,omitempty"`
	CobradorID     string          `json:"cobrador_id"`
	OperadorID     string          `json:"operador_id"`
	Estado         string          `json:"estado"`
	Motivo         *string         `json:"motivo_anulacion,omitempty"`
	Items          []ItemResponse  `json:"items,omitempty"`
	CreatedAt      string          `json:"created_at"`
	// SesionRecalculada warns that cancelling this transaction rewrote the
	// closing snapshot of an already reconciled session.
	SesionRecalculada bool `json:"sesion_recalculada,omitempty"`
}

// HistorialFilter narrows the merged transaction ∪ movement statement.
// Desde/Hasta are "2006-01-02" dates; empty strings mean unbounded.
type HistorialFilter struct {
	Caja   string
	Desde  *string
	Hasta  *string
	Buscar string
	Page   int
	Limit  int
}
