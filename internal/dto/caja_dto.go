package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	Caja         string           `json:"caja"          validate:"required,oneof=oficina cobrador"`
	MontoInicial decimal.Decimal  `json:"monto_inicial" validate:"min=0"`
	TipoCambio   *decimal.Decimal `json:"tipo_cambio"`
}

type CerrarCajaRequest struct {
	SesionID    string          `json:"sesion_id"    validate:"required,uuid"`
	MontoFisico decimal.Decimal `json:"monto_fisico" validate:"min=0"`
	NotaCierre  *string         `json:"nota_cierre"`
}

type MovimientoRequest struct {
	Caja        string          `json:"caja"        validate:"required,oneof=oficina cobrador"`
	Direccion   string          `json:"direccion"   validate:"required,oneof=ingreso egreso"`
	Monto       decimal.Decimal `json:"monto"       validate:"required,gt=0"`
	Descripcion string          `json:"descripcion" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SesionResponse struct {
	ID           string           `json:"id"`
	Caja         string           `json:"caja"`
	UsuarioID    string           `json:"usuario_id"`
	MontoInicial decimal.Decimal  `json:"monto_inicial"`
	TipoCambio   *decimal.Decimal `json:"tipo_cambio,omitempty"`
	Estado       string           `json:"estado"`
	MontoFisico  *decimal.Decimal `json:"monto_fisico,omitempty"`
	MontoSistema *decimal.Decimal `json:"monto_sistema,omitempty"`
	Desvio       *decimal.Decimal `json:"desvio,omitempty"`
	NotaCierre   *string          `json:"nota_cierre,omitempty"`
	OpenedAt     string           `json:"opened_at"`
	ClosedAt     *string          `json:"closed_at,omitempty"`
}

type MovimientoResponse struct {
	ID          string          `json:"id"`
	SesionID    string          `json:"sesion_id"`
	Caja        string          `json:"caja"`
	Direccion   string          `json:"direccion"`
	Monto       decimal.Decimal `json:"monto"`
	Descripcion string          `json:"descripcion"`
	OperadorID  string          `json:"operador_id"`
	CreatedAt   string          `json:"created_at"`
}

// ReporteSesionResponse is the full session report: live system total while
// open, the frozen snapshot once closed.
type ReporteSesionResponse struct {
	Sesion        SesionResponse       `json:"sesion"`
	MontoSistema  decimal.Decimal      `json:"monto_sistema"`
	Transacciones decimal.Decimal      `json:"total_transacciones"`
	Ingresos      decimal.Decimal      `json:"total_ingresos"`
	Egresos       decimal.Decimal      `json:"total_egresos"`
	Movimientos   []MovimientoResponse `json:"movimientos"`
}
