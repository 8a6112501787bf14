package service

import (
	"context"
	"time"

	"github.com/AmericableSA/Sistema-sub000/internal/config"
	"github.com/AmericableSA/Sistema-sub000/internal/domain"
	"github.com/AmericableSA/Sistema-sub000/internal/dto"
	"github.com/AmericableSA/Sistema-sub000/internal/model"
	"github.com/AmericableSA/Sistema-sub000/internal/repository"
	"github.com/AmericableSA/Sistema-sub000/internal/tarifa"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type TransaccionService interface {
	Registrar(ctx context.Context, operadorID uuid.UUID, req dto.RegistrarTransaccionRequest) (*dto.TransaccionResponse, error)
	Anular(ctx context.Context, id uuid.UUID, operadorID uuid.UUID, req dto.AnularTransaccionRequest) (*dto.TransaccionResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.TransaccionResponse, error)
	Historial(ctx context.Context, filter dto.HistorialFilter) ([]repository.RegistroHistorial, int64, error)
}

type transaccionService struct {
	repo      repository.TransaccionRepository
	cajaRepo  repository.CajaRepository
	cajas     CajaService
	cotizador CotizadorService
	locks     *CajaLocks
	cfg       *config.Config
}

func NewTransaccionService(
	repo repository.TransaccionRepository,
	cajaRepo repository.CajaRepository,
	cajas CajaService,
	cotizador CotizadorService,
	locks *CajaLocks,
	cfg *config.Config,
) TransaccionService {
	return &transaccionService{
		repo:      repo,
		cajaRepo:  cajaRepo,
		cajas:     cajas,
		cotizador: cotizador,
		locks:     locks,
		cfg:       cfg,
	}
}

// runTx scopes fn to a DB transaction. Unit tests run with no gorm handle
// behind the fakes, so a nil DB just calls fn directly.
func (s *transaccionService) runTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db := s.repo.DB()
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Registrar ─────────────────────────────────────────────────────────────────
// Commit path: re-quotes server-side, enforces the justification rules and
// writes the transaction against the caja's open session, all under the
// per-caja lock.

func (s *transaccionService) Registrar(ctx context.Context, operadorID uuid.UUID, req dto.RegistrarTransaccionRequest) (*dto.TransaccionResponse, error) {
	mu := s.locks.Of(req.Caja)
	mu.Lock()
	defer mu.Unlock()

	sesion, err := s.cajaRepo.FindSesionAbierta(ctx, req.Caja)
	if err != nil {
		return nil, err
	}
	if sesion == nil {
		return nil, domain.ErrSinSesionActiva
	}

	if req.Referencia == "" {
		return nil, domain.ErrReferenciaFaltante
	}
	dup, err := s.repo.ExisteReferencia(ctx, req.Caja, req.Referencia, time.Now())
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, domain.ErrReferenciaDuplicada
	}

	if req.Recibido.LessThan(req.Monto) {
		return nil, domain.ErrPagoInsuficiente
	}

	cot, cliente, meses, err := s.cotizador.Resolver(ctx, dto.CotizacionRequest{
		ClienteID:   derefStr(req.ClienteID),
		Tipo:        req.Tipo,
		MesesAPagar: req.MesesAPagar,
		AplicarMora: req.AplicarMora,
		MoraManual:  req.MoraManual,
		Promo2x1:    req.Promo2x1,
		PlanID:      req.PlanID,
		Items:       req.Items,
	})
	if err != nil {
		return nil, err
	}

	// The calculator prices a suspended client as a reconnection no matter
	// what was requested; the persisted record must say so too, or the audit
	// row would claim monthly coverage the client never bought.
	tipoEfectivo := req.Tipo
	if cliente != nil && cliente.Estado == tarifa.ClienteSuspendido {
		tipoEfectivo = model.TipoReconexion
	}

	// A charge that strays from the quote, or a debtor whose mora was waived
	// or overridden out of range, only passes with a written justification.
	desvio := req.Monto.Sub(cot.Total)
	moraEsquivada := cliente != nil && cliente.TieneMora && tipoEfectivo == model.TipoMensualidad &&
		(!req.AplicarMora || cot.MoraFueraDeRango)
	if desvio.Abs().GreaterThan(s.cfg.JustificacionTolerancia()) || moraEsquivada {
		if req.Justificacion == nil || *req.Justificacion == "" {
			motivo := "el monto cobrado difiere del calculado"
			if moraEsquivada {
				motivo = "la mora fue condonada o ajustada fuera del rango sugerido"
			}
			return nil, &domain.JustificacionRequeridaError{
				Desvio:       desvio,
				MontoSistema: cot.Total,
				Motivo:       motivo,
			}
		}
	}

	cobradorID := operadorID
	if req.CobradorID != "" {
		if id, err := uuid.Parse(req.CobradorID); err == nil {
			cobradorID = id
		}
	}

	t := &model.Transaccion{
		SesionID:       sesion.ID,
		Caja:           req.Caja,
		ClienteID:      req.ClienteID,
		Tipo:           tipoEfectivo,
		Monto:          req.Monto,
		MontoCalculado: cot.Total,
		MetodoPago:     req.MetodoPago,
		Descripcion:    req.Descripcion,
		MesesPagados:   meses,
		MoraPagada:     cot.Mora,
		Promo2x1:       req.Promo2x1,
		Referencia:     req.Referencia,
		Justificacion:  req.Justificacion,
		CobradorID:     cobradorID,
		OperadorID:     operadorID,
		Estado:         model.TransaccionCompletada,
	}
	if tipoEfectivo != model.TipoMensualidad {
		t.MesesPagados = 0
		t.Promo2x1 = false
	}
	for _, it := range req.Items {
		t.Items = append(t.Items, model.TransaccionItem{
			ProductoID:  it.ProductoID,
			Descripcion: it.Descripcion,
			Cantidad:    it.Cantidad,
			Precio:      it.Precio,
		})
	}

	if err := s.runTx(ctx, func(tx *gorm.DB) error {
		return s.repo.Create(ctx, tx, t)
	}); err != nil {
		return nil, err
	}

	resp := transaccionToResponse(t)
	resp.Vuelto = req.Recibido.Sub(req.Monto)
	return resp, nil
}

// ── Anular ────────────────────────────────────────────────────────────────────
// Cancellation never deletes the row. When the owning session already closed,
// the frozen snapshot is recomputed so the books stay consistent, and the
// response flags the rewrite.

func (s *transaccionService) Anular(ctx context.Context, id uuid.UUID, operadorID uuid.UUID, req dto.AnularTransaccionRequest) (*dto.TransaccionResponse, error) {
	if req.Motivo == "" {
		return nil, domain.ErrMotivoFaltante
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.ErrTransaccionNoExiste
	}

	mu := s.locks.Of(t.Caja)
	mu.Lock()
	defer mu.Unlock()

	t, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.ErrTransaccionNoExiste
	}
	if t.Estado == model.TransaccionAnulada {
		return nil, domain.ErrYaAnulada
	}

	t.Estado = model.TransaccionAnulada
	t.MotivoAnulacion = &req.Motivo
	t.AnuladaPor = &operadorID
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	resp := transaccionToResponse(t)

	sesion, err := s.cajaRepo.FindSesionByID(ctx, t.SesionID)
	if err != nil {
		return nil, err
	}
	if sesion.Estado == model.SesionCerrada {
		total, _, err := s.cajas.MontoSistema(ctx, sesion)
		if err != nil {
			return nil, err
		}
		sesion.MontoSistema = &total
		if sesion.MontoFisico != nil {
			d := sesion.MontoFisico.Sub(total)
			sesion.Desvio = &d
		}
		if err := s.cajaRepo.UpdateSesion(ctx, sesion); err != nil {
			return nil, err
		}
		resp.SesionRecalculada = true
		log.Warn().
			Str("transaccion_id", t.ID.String()).
			Str("sesion_id", sesion.ID.String()).
			Msg("anulación posterior al cierre, snapshot de la sesión recalculado")
	}

	return resp, nil
}

func (s *transaccionService) Get(ctx context.Context, id uuid.UUID) (*dto.TransaccionResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.ErrTransaccionNoExiste
	}
	return transaccionToResponse(t), nil
}

func (s *transaccionService) Historial(ctx context.Context, filter dto.HistorialFilter) ([]repository.RegistroHistorial, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.repo.Historial(ctx, filter)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func transaccionToResponse(t *model.Transaccion) *dto.TransaccionResponse {
	resp := &dto.TransaccionResponse{
		ID:             t.ID.String(),
		SesionID:       t.SesionID.String(),
		Caja:           t.Caja,
		ClienteID:      t.ClienteID,
		Tipo:           t.Tipo,
		Monto:          t.Monto,
		MontoCalculado: t.MontoCalculado,
		MetodoPago:     t.MetodoPago,
		Descripcion:    t.Descripcion,
		MesesPagados:   t.MesesPagados,
		MoraPagada:     t.MoraPagada,
		Promo2x1:       t.Promo2x1,
		Referencia:     t.Referencia,
		Justificacion:  t.Justificacion,
		CobradorID:     t.CobradorID.String(),
		OperadorID:     t.OperadorID.String(),
		Estado:         t.Estado,
		Motivo:         t.MotivoAnulacion,
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
	}
	for _, it := range t.Items {
		resp.Items = append(resp.Items, dto.ItemResponse{
			ProductoID:  it.ProductoID,
			Descripcion: it.Descripcion,
			Cantidad:    it.Cantidad,
			Precio:      it.Precio,
		})
	}
	return resp
}

func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
