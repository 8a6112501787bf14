package service

import (
	"context"
	"time"

	"github.com/AmericableSA/Sistema-sub000/internal/config"
	"github.com/AmericableSA/Sistema-sub000/internal/domain"
	"github.com/AmericableSA/Sistema-sub000/internal/dto"
	"github.com/AmericableSA/Sistema-sub000/internal/infra"
	"github.com/AmericableSA/Sistema-sub000/internal/model"
	"github.com/AmericableSA/Sistema-sub000/internal/tarifa"
)

// DirectorioClientes is the read-only lookup surface the core consumes. The
// production implementation is the HTTP sidecar client in infra; tests plug
// in-memory fakes.
type DirectorioClientes interface {
	ObtenerCliente(ctx context.Context, id string) (*infra.Cliente, error)
	ObtenerPlan(ctx context.Context, id string) (*infra.Plan, error)
}

type CotizadorService interface {
	// Cotizar prices a billing action for preview. The UI renders the result;
	// it is never the source of truth — Registrar re-quotes at commit time.
	Cotizar(ctx context.Context, req dto.CotizacionRequest) (*dto.CotizacionResponse, error)
	// Resolver normalizes the request, fetches client/plan state and returns
	// the raw quote for the transaction processor.
	Resolver(ctx context.Context, req dto.CotizacionRequest) (*tarifa.Cotizacion, *infra.Cliente, int, error)
}

type cotizadorService struct {
	directorio DirectorioClientes
	cfg        *config.Config
}

func NewCotizadorService(directorio DirectorioClientes, cfg *config.Config) CotizadorService {
	return &cotizadorService{directorio: directorio, cfg: cfg}
}

func (s *cotizadorService) tarifaConfig() tarifa.Config {
	return tarifa.Config{
		PorcentajeMora:   s.cfg.MoraRate(),
		TarifaReconexion: s.cfg.FeeReconexion(),
		ToleranciaMora:   s.cfg.JustificacionTolerancia(),
	}
}

func (s *cotizadorService) Cotizar(ctx context.Context, req dto.CotizacionRequest) (*dto.CotizacionResponse, error) {
	cot, _, meses, err := s.Resolver(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &dto.CotizacionResponse{
		Total:            cot.Total,
		Base:             cot.Base,
		Mora:             cot.Mora,
		MoraSugerida:     cot.MoraSugerida,
		DescuentoPromo:   cot.DescuentoPromo,
		MesesFacturables: cot.MesesFacturables,
		MesesAPagar:      meses,
	}
	if !cot.PeriodoDesde.IsZero() {
		resp.PeriodoDesde = cot.PeriodoDesde.Format("2006-01")
		resp.PeriodoHasta = cot.PeriodoHasta.Format("2006-01")
	}
	return resp, nil
}

func (s *cotizadorService) Resolver(ctx context.Context, req dto.CotizacionRequest) (*tarifa.Cotizacion, *infra.Cliente, int, error) {
	var cliente *infra.Cliente
	estado := tarifa.EstadoCliente{Estado: tarifa.ClienteActivo}

	// Material sales price from their items alone; every other type needs the
	// client's billing snapshot.
	if req.Tipo != model.TipoVentaMaterial {
		if req.ClienteID == "" {
			return nil, nil, 0, domain.Validacion("cliente_id es obligatorio para %s", req.Tipo)
		}
		var err error
		cliente, err = s.directorio.ObtenerCliente(ctx, req.ClienteID)
		if err != nil {
			return nil, nil, 0, domain.ErrClienteNoDisponible
		}
		estado = tarifa.EstadoCliente{
			Tarifa:         cliente.Tarifa,
			MesesAdeudados: cliente.MesesAdeudados,
			TieneMora:      cliente.TieneMora,
			Estado:         cliente.Estado,
		}
		if cliente.UltimoMesPagado != "" {
			if t, err := time.Parse("2006-01", cliente.UltimoMesPagado); err == nil {
				estado.UltimoMesPagado = t
			}
		}
	}

	// Input normalization (validation-layer concern, kept out of the pure
	// calculator): default the months to what is owed, and promo 2x1 needs at
	// least two months to halve.
	meses := req.MesesAPagar
	if req.Tipo == model.TipoMensualidad {
		if meses < 1 {
			meses = 1
			if cliente != nil && cliente.MesesAdeudados > 0 {
				meses = cliente.MesesAdeudados
			}
		}
		if req.Promo2x1 && meses < 2 {
			meses = 2
		}
	}

	sol := tarifa.Solicitud{
		Tipo:        req.Tipo,
		MesesAPagar: meses,
		AplicarMora: req.AplicarMora,
		MoraManual:  req.MoraManual,
		Promo2x1:    req.Promo2x1,
	}
	for _, it := range req.Items {
		sol.Items = append(sol.Items, tarifa.Item{
			ProductoID:  it.ProductoID,
			Descripcion: it.Descripcion,
			Cantidad:    it.Cantidad,
			Precio:      it.Precio,
		})
	}

	if req.Tipo == model.TipoInstalacion {
		if req.PlanID == "" {
			return nil, nil, 0, domain.Validacion("plan_id es obligatorio para una instalación")
		}
		plan, err := s.directorio.ObtenerPlan(ctx, req.PlanID)
		if err != nil {
			return nil, nil, 0, domain.ErrClienteNoDisponible
		}
		sol.PrecioPlan = plan.PrecioBase
	}

	cot, err := tarifa.Cotizar(estado, sol, s.tarifaConfig())
	if err != nil {
		return nil, nil, 0, err
	}
	return cot, cliente, meses, nil
}
