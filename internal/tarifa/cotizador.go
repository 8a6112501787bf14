// Package tarifa computes amounts owed for a billing action. It is a pure
// function layer: given the client's state and the requested operation it
// produces a Cotizacion, with no I/O and no knowledge of sessions or cajas.
// The server is the only pricing source — the UI just renders the result.
package tarifa

import (
	"time"

	"github.com/AmericableSA/Sistema-sub000/internal/domain"
	"github.com/AmericableSA/Sistema-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// Client states as reported by the Client Directory.
const (
	ClienteActivo       = "activo"
	ClienteSuspendido   = "suspendido"
	ClienteDesconectado = "desconectado"
)

// EstadoCliente is the read-only client snapshot the calculator prices from.
type EstadoCliente struct {
	Tarifa         decimal.Decimal
	MesesAdeudados int
	// UltimoMesPagado is the first day of the last month the client paid for;
	// zero when the client has never paid.
	UltimoMesPagado time.Time
	TieneMora       bool
	Estado          string
}

// Item is one line of a material sale.
type Item struct {
	ProductoID  string
	Descripcion string
	Cantidad    int
	Precio      decimal.Decimal
}

// Solicitud describes the operation being priced.
type Solicitud struct {
	Tipo        string
	MesesAPagar int
	AplicarMora bool
	// MoraManual overrides the suggested mora when set; the processor flags
	// the override for justification when it deviates beyond tolerance.
	MoraManual *decimal.Decimal
	Promo2x1   bool
	// PrecioPlan is the installation base price from the Plan Catalog.
	PrecioPlan decimal.Decimal
	Items      []Item
}

// Config holds the pricing constants, loaded from service configuration.
type Config struct {
	// PorcentajeMora is the per-overdue-month surcharge rate (default 0.05).
	PorcentajeMora decimal.Decimal
	// TarifaReconexion is the fixed reconnection fee (default 270).
	TarifaReconexion decimal.Decimal
	// ToleranciaMora is the allowed drift between a manual mora and the
	// suggestion before a justification is demanded (default 0.5).
	ToleranciaMora decimal.Decimal
}

// Cotizacion is the priced result. Ephemeral — never persisted; the processor
// copies Total into the transaction's MontoCalculado for audit.
type Cotizacion struct {
	Total decimal.Decimal
	// Breakdown.
	Base           decimal.Decimal
	Mora           decimal.Decimal
	MoraSugerida   decimal.Decimal
	DescuentoPromo decimal.Decimal
	// MesesFacturables is what was actually billed (promo halves it, ceil).
	MesesFacturables int
	// Coverage window, display only. Zero when not a mensualidad or the
	// client has no payment history.
	PeriodoDesde time.Time
	PeriodoHasta time.Time
	// MoraFueraDeRango is set when a manual mora deviates from the suggestion
	// by more than ToleranciaMora; the processor turns it into a forced
	// justification.
	MoraFueraDeRango bool
}

// Cotizar prices one billing action. Returns a validation error when the
// inputs cannot be priced (missing tariff, non-positive months, empty sale).
func Cotizar(cliente EstadoCliente, sol Solicitud, cfg Config) (*Cotizacion, error) {
	// A suspended client can only be reconnected: the fixed fee applies and
	// every other pricing input is ignored.
	if cliente.Estado == ClienteSuspendido || sol.Tipo == model.TipoReconexion {
		return &Cotizacion{
			Total: cfg.TarifaReconexion,
			Base:  cfg.TarifaReconexion,
		}, nil
	}

	switch sol.Tipo {
	case model.TipoMensualidad:
		return cotizarMensualidad(cliente, sol, cfg)

	case model.TipoInstalacion:
		if !sol.PrecioPlan.IsPositive() {
			return nil, domain.Validacion("el plan seleccionado no tiene precio base")
		}
		return &Cotizacion{Total: sol.PrecioPlan, Base: sol.PrecioPlan}, nil

	case model.TipoVentaMaterial:
		if len(sol.Items) == 0 {
			return nil, domain.Validacion("una venta de material requiere al menos un artículo")
		}
		total := decimal.Zero
		for _, it := range sol.Items {
			if it.Cantidad < 1 || it.Precio.IsNegative() {
				return nil, domain.Validacion("artículo inválido: %s", it.Descripcion)
			}
			total = total.Add(it.Precio.Mul(decimal.NewFromInt(int64(it.Cantidad))))
		}
		return &Cotizacion{Total: total, Base: total}, nil
	}

	return nil, domain.Validacion("tipo de transacción desconocido: %s", sol.Tipo)
}

func cotizarMensualidad(cliente EstadoCliente, sol Solicitud, cfg Config) (*Cotizacion, error) {
	if !cliente.Tarifa.IsPositive() {
		return nil, domain.Validacion("el cliente no tiene tarifa mensual asignada")
	}
	if sol.MesesAPagar < 1 {
		return nil, domain.Validacion("meses a pagar debe ser al menos 1")
	}

	meses := sol.MesesAPagar
	facturables := meses
	if sol.Promo2x1 {
		facturables = (meses + 1) / 2 // ceil(meses/2)
	}

	base := cliente.Tarifa.Mul(decimal.NewFromInt(int64(facturables)))
	descuento := cliente.Tarifa.Mul(decimal.NewFromInt(int64(meses - facturables)))

	// Mora suggestion: one unit per overdue month actually being paid. The
	// suggestion recomputes from scratch on every quote, so it always tracks
	// the current MesesAPagar.
	unidad := cliente.Tarifa.Mul(cfg.PorcentajeMora)
	atrasados := meses
	if cliente.MesesAdeudados < atrasados {
		atrasados = cliente.MesesAdeudados
	}
	sugerida := unidad.Mul(decimal.NewFromInt(int64(atrasados)))

	mora := decimal.Zero
	fueraDeRango := false
	if sol.AplicarMora {
		mora = sugerida
		if sol.MoraManual != nil {
			mora = *sol.MoraManual
			fueraDeRango = mora.Sub(sugerida).Abs().GreaterThan(cfg.ToleranciaMora)
		}
	}

	cot := &Cotizacion{
		Total:            base.Add(mora),
		Base:             base,
		Mora:             mora,
		MoraSugerida:     sugerida,
		DescuentoPromo:   descuento,
		MesesFacturables: facturables,
		MoraFueraDeRango: fueraDeRango,
	}
	if !cliente.UltimoMesPagado.IsZero() {
		cot.PeriodoDesde = cliente.UltimoMesPagado.AddDate(0, 1, 0)
		cot.PeriodoHasta = cliente.UltimoMesPagado.AddDate(0, meses, 0)
	}
	return cot, nil
}
