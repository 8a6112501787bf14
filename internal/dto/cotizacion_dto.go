package dto

import "github.com/shopspring/decimal"

// CotizacionRequest asks the server to price a billing action. The UI calls
// this for preview; the processor runs the same computation at commit time,
// so the preview is never the source of truth.
type CotizacionRequest struct {
	ClienteID   string           `json:"cliente_id"`
	Tipo        string           `json:"tipo" validate:"required,oneof=mensualidad instalacion venta_material reconexion"`
	MesesAPagar int              `json:"meses_a_pagar" validate:"min=0"`
	AplicarMora bool             `json:"aplicar_mora"`
	MoraManual  *decimal.Decimal `json:"mora_manual"`
	Promo2x1    bool             `json:"promo_2x1"`
	PlanID      string           `json:"plan_id"`
	Items       []ItemRequest    `json:"items" validate:"dive"`
}

type CotizacionResponse struct {
	Total            decimal.Decimal `json:"total"`
	Base             decimal.Decimal `json:"base"`
	Mora             decimal.Decimal `json:"mora"`
	MoraSugerida     decimal.Decimal `json:"mora_sugerida"`
	DescuentoPromo   decimal.Decimal `json:"descuento_promo"`
	MesesFacturables int             `json:"meses_facturables"`
	MesesAPagar      int             `json:"meses_a_pagar"`
	// Coverage window for display/description only, "2006-01" months.
	PeriodoDesde string `json:"periodo_desde,omitempty"`
	PeriodoHasta string `json:"periodo_hasta,omitempty"`
}
