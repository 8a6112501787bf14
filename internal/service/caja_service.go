package service

import (
	"context"
	"time"

	"github.com/AmericableSA/Sistema-sub000/internal/config"
	"github.com/AmericableSA/Sistema-sub000/internal/domain"
	"github.com/AmericableSA/Sistema-sub000/internal/dto"
	"github.com/AmericableSA/Sistema-sub000/internal/model"
	"github.com/AmericableSA/Sistema-sub000/internal/repository"
	"github.com/AmericableSA/Sistema-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type CajaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionResponse, error)
	Cerrar(ctx context.Context, req dto.CerrarCajaRequest) (*dto.SesionResponse, error)
	RegistrarMovimiento(ctx context.Context, operadorID uuid.UUID, req dto.MovimientoRequest) (*dto.MovimientoResponse, error)
	GetActiva(ctx context.Context, caja string) (*dto.SesionResponse, error)
	Reporte(ctx context.Context, sesionID uuid.UUID) (*dto.ReporteSesionResponse, error)
	Historial(ctx context.Context, page, limit int) ([]dto.SesionResponse, int64, error)
	// MontoSistema derives a session's expected total from the ledger. Used
	// by the cancellation path to rewrite closed snapshots.
	MontoSistema(ctx context.Context, s *model.SesionCaja) (decimal.Decimal, *repository.SumasSesion, error)
}

type cajaService struct {
	repo       repository.CajaRepository
	locks      *CajaLocks
	cfg        *config.Config
	dispatcher *worker.Dispatcher
}

func NewCajaService(repo repository.CajaRepository, locks *CajaLocks, cfg *config.Config, dispatcher *worker.Dispatcher) CajaService {
	return &cajaService{repo: repo, locks: locks, cfg: cfg, dispatcher: dispatcher}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionResponse, error) {
	if !model.CajaValida(req.Caja) {
		return nil, domain.ErrCajaInvalida
	}
	if req.MontoInicial.IsNegative() {
		return nil, domain.Validacion("el monto inicial no puede ser negativo")
	}

	mu := s.locks.Of(req.Caja)
	mu.Lock()
	defer mu.Unlock()

	existing, err := s.repo.FindSesionAbierta(ctx, req.Caja)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrSesionYaAbierta
	}

	sesion := &model.SesionCaja{
		Caja:         req.Caja,
		UsuarioID:    usuarioID,
		MontoInicial: req.MontoInicial,
		TipoCambio:   req.TipoCambio,
		Estado:       model.SesionAbierta,
	}
	if err := s.repo.CreateSesion(ctx, sesion); err != nil {
		// The partial unique index on (caja) WHERE estado='abierta' is the
		// hard backstop: a create failing here means two opens raced past the
		// lock (e.g. a second replica). Fatal to the request, never retried.
		if n, cntErr := s.repo.CountSesionesAbiertas(ctx, req.Caja); cntErr == nil && n > 0 {
			log.Error().Str("caja", req.Caja).Msg("apertura duplicada detectada por el índice")
			return nil, domain.ErrInvarianteViolada
		}
		return nil, err
	}

	return sesionToResponse(sesion), nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Computes the system total from the ledger, the desvío against the counted
// cash, and demands a nota when the desvío exceeds tolerance. The failed
// attempt returns the computed figures so the cashier can re-submit the same
// close with a note.

func (s *cajaService) Cerrar(ctx context.Context, req dto.CerrarCajaRequest) (*dto.SesionResponse, error) {
	sesionID, err := uuid.Parse(req.SesionID)
	if err != nil {
		return nil, domain.Validacion("sesion_id inválido")
	}

	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return nil, domain.ErrSesionNoExiste
	}

	mu := s.locks.Of(sesion.Caja)
	mu.Lock()
	defer mu.Unlock()

	// Re-read under the lock: a concurrent close may have won.
	sesion, err = s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return nil, domain.ErrSesionNoExiste
	}
	if sesion.Estado != model.SesionAbierta {
		return nil, domain.ErrSesionCerrada
	}

	total, _, err := s.MontoSistema(ctx, sesion)
	if err != nil {
		return nil, err
	}
	desvio := req.MontoFisico.Sub(total)

	if desvio.Abs().GreaterThan(s.cfg.CierreTolerancia()) &&
		(req.NotaCierre == nil || *req.NotaCierre == "") {
		return nil, &domain.JustificacionRequeridaError{
			Desvio:       desvio,
			MontoSistema: total,
			Motivo:       "el desvío supera la tolerancia de cierre",
		}
	}

	now := time.Now()
	sesion.Estado = model.SesionCerrada
	sesion.MontoFisico = &req.MontoFisico
	sesion.MontoSistema = &total
	sesion.Desvio = &desvio
	sesion.NotaCierre = req.NotaCierre
	sesion.ClosedAt = &now

	if err := s.repo.UpdateSesion(ctx, sesion); err != nil {
		return nil, err
	}

	// Closing report is best-effort — fire & forget.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueCierre(ctx, worker.CierreJobPayload{SesionID: sesion.ID.String()})
	}

	return sesionToResponse(sesion), nil
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────
// Manual ingreso/egreso against the open session. Movements are immutable —
// there is no update or delete path.

func (s *cajaService) RegistrarMovimiento(ctx context.Context, operadorID uuid.UUID, req dto.MovimientoRequest) (*dto.MovimientoResponse, error) {
	if !req.Monto.IsPositive() {
		return nil, domain.Validacion("el monto debe ser mayor a cero")
	}

	mu := s.locks.Of(req.Caja)
	mu.Lock()
	defer mu.Unlock()

	sesion, err := s.repo.FindSesionAbierta(ctx, req.Caja)
	if err != nil {
		return nil, err
	}
	if sesion == nil {
		return nil, domain.ErrSinSesionActiva
	}

	mov := &model.Movimiento{
		SesionID:    sesion.ID,
		Caja:        req.Caja,
		Direccion:   req.Direccion,
		Monto:       req.Monto,
		Descripcion: req.Descripcion,
		OperadorID:  operadorID,
	}
	if err := s.repo.CreateMovimiento(ctx, mov); err != nil {
		return nil, err
	}

	return movimientoToResponse(mov), nil
}

// ── Queries (lock-free) ───────────────────────────────────────────────────────

func (s *cajaService) GetActiva(ctx context.Context, caja string) (*dto.SesionResponse, error) {
	if !model.CajaValida(caja) {
		return nil, domain.ErrCajaInvalida
	}
	sesion, err := s.repo.FindSesionAbierta(ctx, caja)
	if err != nil {
		return nil, err
	}
	if sesion == nil {
		return nil, nil
	}
	return sesionToResponse(sesion), nil
}

func (s *cajaService) Reporte(ctx context.Context, sesionID uuid.UUID) (*dto.ReporteSesionResponse, error) {
	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return nil, domain.ErrSesionNoExiste
	}

	total, sums, err := s.MontoSistema(ctx, sesion)
	if err != nil {
		return nil, err
	}

	movs, err := s.repo.ListMovimientos(ctx, sesion.ID)
	if err != nil {
		return nil, err
	}
	movResp := make([]dto.MovimientoResponse, 0, len(movs))
	for i := range movs {
		movResp = append(movResp, *movimientoToResponse(&movs[i]))
	}

	return &dto.ReporteSesionResponse{
		Sesion:        *sesionToResponse(sesion),
		MontoSistema:  total,
		Transacciones: sums.Transacciones,
		Ingresos:      sums.Ingresos,
		Egresos:       sums.Egresos,
		Movimientos:   movResp,
	}, nil
}

func (s *cajaService) Historial(ctx context.Context, page, limit int) ([]dto.SesionResponse, int64, error) {
	sesiones, total, err := s.repo.ListSesiones(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.SesionResponse, 0, len(sesiones))
	for i := range sesiones {
		out = append(out, *sesionToResponse(&sesiones[i]))
	}
	return out, total, nil
}

// MontoSistema always derives from the source rows — cancelled transactions
// excluded, egresos subtracted — so there is no counter to drift.
func (s *cajaService) MontoSistema(ctx context.Context, sesion *model.SesionCaja) (decimal.Decimal, *repository.SumasSesion, error) {
	sums, err := s.repo.SumSesion(ctx, sesion.ID)
	if err != nil {
		return decimal.Zero, nil, err
	}
	total := sesion.MontoInicial.
		Add(sums.Transacciones).
		Add(sums.Ingresos).
		Sub(sums.Egresos)
	return total, sums, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func sesionToResponse(s *model.SesionCaja) *dto.SesionResponse {
	resp := &dto.SesionResponse{
		ID:           s.ID.String(),
		Caja:         s.Caja,
		UsuarioID:    s.UsuarioID.String(),
		MontoInicial: s.MontoInicial,
		TipoCambio:   s.TipoCambio,
		Estado:       s.Estado,
		MontoFisico:  s.MontoFisico,
		MontoSistema: s.MontoSistema,
		Desvio:       s.Desvio,
		NotaCierre:   s.NotaCierre,
		OpenedAt:     s.OpenedAt.Format(time.RFC3339),
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}

func movimientoToResponse(m *model.Movimiento) *dto.MovimientoResponse {
	return &dto.MovimientoResponse{
		ID:          m.ID.String(),
		SesionID:    m.SesionID.String(),
		Caja:        m.Caja,
		Direccion:   m.Direccion,
		Monto:       m.Monto,
		Descripcion: m.Descripcion,
		OperadorID:  m.OperadorID.String(),
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
}
