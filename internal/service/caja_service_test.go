package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AmericableSA/Sistema-sub000/internal/config"
	"github.com/AmericableSA/Sistema-sub000/internal/domain"
	"github.com/AmericableSA/Sistema-sub000/internal/dto"
	"github.com/AmericableSA/Sistema-sub000/internal/model"
	"github.com/AmericableSA/Sistema-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── In-memory CajaRepository ─────────────────────────────────────────────────

type fakeCajaRepo struct {
	sesiones      map[uuid.UUID]*model.SesionCaja
	movimientos   []model.Movimiento
	transacciones []model.Transaccion
}

func newFakeCajaRepo() *fakeCajaRepo {
	return &fakeCajaRepo{sesiones: make(map[uuid.UUID]*model.SesionCaja)}
}

func (r *fakeCajaRepo) CreateSesion(_ context.Context, s *model.SesionCaja) error {
	for _, e := range r.sesiones {
		if e.Caja == s.Caja && e.Estado == model.SesionAbierta {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.OpenedAt = time.Now()
	r.sesiones[s.ID] = s
	return nil
}

func (r *fakeCajaRepo) FindSesionAbierta(_ context.Context, caja string) (*model.SesionCaja, error) {
	for _, s := range r.sesiones {
		if s.Caja == caja && s.Estado == model.SesionAbierta {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeCajaRepo) FindSesionByID(_ context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return s, nil
}

func (r *fakeCajaRepo) UpdateSesion(_ context.Context, s *model.SesionCaja) error {
	r.sesiones[s.ID] = s
	return nil
}

func (r *fakeCajaRepo) CountSesionesAbiertas(_ context.Context, caja string) (int64, error) {
	var n int64
	for _, s := range r.sesiones {
		if s.Caja == caja && s.Estado == model.SesionAbierta {
			n++
		}
	}
	return n, nil
}

func (r *fakeCajaRepo) ListSesiones(_ context.Context, page, limit int) ([]model.SesionCaja, int64, error) {
	all := make([]model.SesionCaja, 0, len(r.sesiones))
	for _, s := range r.sesiones {
		all = append(all, *s)
	}
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *fakeCajaRepo) CreateMovimiento(_ context.Context, m *model.Movimiento) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *fakeCajaRepo) ListMovimientos(_ context.Context, sesionID uuid.UUID) ([]model.Movimiento, error) {
	var result []model.Movimiento
	for _, m := range r.movimientos {
		if m.SesionID == sesionID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *fakeCajaRepo) SumSesion(_ context.Context, sesionID uuid.UUID) (*repository.SumasSesion, error) {
	sums := &repository.SumasSesion{}
	for _, t := range r.transacciones {
		if t.SesionID == sesionID && t.Estado == model.TransaccionCompletada {
			sums.Transacciones = sums.Transacciones.Add(t.Monto)
		}
	}
	for _, m := range r.movimientos {
		if m.SesionID != sesionID {
			continue
		}
		switch m.Direccion {
		case model.MovimientoIngreso:
			sums.Ingresos = sums.Ingresos.Add(m.Monto)
		case model.MovimientoEgreso:
			sums.Egresos = sums.Egresos.Add(m.Monto)
		}
	}
	return sums, nil
}

func (r *fakeCajaRepo) CountOperaciones(_ context.Context, sesionID uuid.UUID) (int64, error) {
	var n int64
	for _, t := range r.transacciones {
		if t.SesionID == sesionID && t.Estado == model.TransaccionCompletada {
			n++
		}
	}
	for _, m := range r.movimientos {
		if m.SesionID == sesionID {
			n++
		}
	}
	return n, nil
}

var _ repository.CajaRepository = (*fakeCajaRepo)(nil)

func testCfg() *config.Config {
	return &config.Config{
		PorcentajeMora:          0.05,
		TarifaReconexion:        270,
		ToleranciaCierre:        1.0,
		ToleranciaJustificacion: 0.5,
	}
}

func newTestCajaService(repo *fakeCajaRepo) CajaService {
	return NewCajaService(repo, NewCajaLocks(), testCfg(), nil)
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestAbrirSesion(t *testing.T) {
	svc := newTestCajaService(newFakeCajaRepo())

	resp, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		Caja:         model.CajaOficina,
		MontoInicial: decimal.NewFromInt(1000),
	})

	require.NoError(t, err)
	assert.Equal(t, model.SesionAbierta, resp.Estado)
	assert.Equal(t, model.CajaOficina, resp.Caja)
	assert.Equal(t, "1000", resp.MontoInicial.String())
}

func TestAbrirSesionDuplicadaFalla(t *testing.T) {
	svc := newTestCajaService(newFakeCajaRepo())

	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		Caja: model.CajaOficina, MontoInicial: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	_, err = svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		Caja: model.CajaOficina, MontoInicial: decimal.NewFromInt(500),
	})
	assert.ErrorIs(t, err, domain.ErrSesionYaAbierta)
}

func TestCadaCajaEsIndependiente(t *testing.T) {
	svc := newTestCajaService(newFakeCajaRepo())

	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		Caja: model.CajaOficina, MontoInicial: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	_, err = svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		Caja: model.CajaCobrador, MontoInicial: decimal.Zero,
	})
	assert.NoError(t, err)
}

func TestAbrirCajaInvalida(t *testing.T) {
	svc := newTestCajaService(newFakeCajaRepo())

	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		Caja: "bodega", MontoInicial: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrCajaInvalida)
}

func TestCierreSinDesvio(t *testing.T) {
	repo := newFakeCajaRepo()
	svc := newTestCajaService(repo)

	resp, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		Caja: model.CajaOficina, MontoInicial: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	sesionID := uuid.MustParse(resp.ID)

	// Dos cobros: 1000 + 600
	repo.transacciones = append(repo.transacciones,
		model.Transaccion{SesionID: sesionID, Monto: decimal.NewFromInt(1000), Estado: model.TransaccionCompletada},
		model.Transaccion{SesionID: sesionID, Monto: decimal.NewFromInt(600), Estado: model.TransaccionCompletada},
	)

	cerrada, err := svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		SesionID:    resp.ID,
		MontoFisico: decimal.NewFromInt(2600),
	})
	require.NoError(t, err)
	assert.Equal(t, model.SesionCerrada, cerrada.Estado)
	assert.Equal(t, "2600", cerrada.MontoSistema.String())
	assert.Equal(t, "0", cerrada.Desvio.String())
	assert.NotNil(t, cerrada.ClosedAt)
}

func TestCierreConDesvioExigeNota(t *testing.T) {
	repo := newFakeCajaRepo()
	svc := newTestCajaService(repo)

	resp, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		Caja: model.CajaOficina, MontoInicial: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	_, err = svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		SesionID:    resp.ID,
		MontoFisico: decimal.NewFromInt(900),
	})

	var jr *domain.JustificacionRequeridaError
	require.ErrorAs(t, err, &jr)
	assert.Equal(t, "-100", jr.Desvio.String())
	assert.Equal(t, "1000", jr.MontoSistema.String())

	// El fallo no cierra nada: reintento con nota pasa.
	nota := "faltante reportado al supervisor"
	cerrada, err := svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		SesionID:    resp.ID,
		MontoFisico: decimal.NewFromInt(900),
		NotaCierre:  &nota,
	})
	require.NoError(t, err)
	assert.Equal(t, model.SesionCerrada, cerrada.Estado)
	assert.Equal(t, "-100", cerrada.Desvio.String())
	assert.Equal(t, &nota, cerrada.NotaCierre)
}

func TestCierreDentroDeTolerancia(t *testing.T) {
	repo := newFakeCajaRepo()
	svc := newTestCajaService(repo)

	resp, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		Caja: model.CajaOficina, MontoInicial: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	// Desvío 0.75 ≤ tolerancia 1.00: cierra sin nota.
	cerrada, err := svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		SesionID:    resp.ID,
		MontoFisico: decimal.NewFromFloat(1000.75),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.75", cerrada.Desvio.String())
}

func TestCierreDobleFalla(t *testing.T) {
	repo := newFakeCajaRepo()
	svc := newTestCajaService(repo)

	resp, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		Caja: model.CajaOficina, MontoInicial: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	_, err = svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		SesionID: resp.ID, MontoFisico: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	_, err = svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		SesionID: resp.ID, MontoFisico: decimal.NewFromInt(1000),
	})
	assert.ErrorIs(t, err, domain.ErrSesionCerrada)
}

func TestCerrarSesionInexistente(t *testing.T) {
	svc := newTestCajaService(newFakeCajaRepo())

	_, err := svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		SesionID: uuid.New().String(), MontoFisico: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrSesionNoExiste)
}

func TestMovimientosAfectanElTotal(t *testing.T) {
	repo := newFakeCajaRepo()
	svc := newTestCajaService(repo)
	operador := uuid.New()

	resp, err := svc.Abrir(context.Background(), operador, dto.AbrirCajaRequest{
		Caja: model.CajaOficina, MontoInicial: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	_, err = svc.RegistrarMovimiento(context.Background(), operador, dto.MovimientoRequest{
		Caja: model.CajaOficina, Direccion: model.MovimientoIngreso,
		Monto: decimal.NewFromInt(200), Descripcion: "fondo de cambio",
	})
	require.NoError(t, err)

	_, err = svc.RegistrarMovimiento(context.Background(), operador, dto.MovimientoRequest{
		Caja: model.CajaOficina, Direccion: model.MovimientoEgreso,
		Monto: decimal.NewFromInt(50), Descripcion: "compra de papelería",
	})
	require.NoError(t, err)

	cerrada, err := svc.Cerrar(context.Background(), dto.CerrarCajaRequest{
		SesionID: resp.ID, MontoFisico: decimal.NewFromInt(1150),
	})
	require.NoError(t, err)
	assert.Equal(t, "1150", cerrada.MontoSistema.String())
	assert.Equal(t, "0", cerrada.Desvio.String())
}

func TestMovimientoSinSesionFalla(t *testing.T) {
	svc := newTestCajaService(newFakeCajaRepo())

	_, err := svc.RegistrarMovimiento(context.Background(), uuid.New(), dto.MovimientoRequest{
		Caja: model.CajaOficina, Direccion: model.MovimientoIngreso,
		Monto: decimal.NewFromInt(100), Descripcion: "fondo",
	})
	assert.ErrorIs(t, err, domain.ErrSinSesionActiva)
}

func TestGetActiva(t *testing.T) {
	svc := newTestCajaService(newFakeCajaRepo())

	activa, err := svc.GetActiva(context.Background(), model.CajaOficina)
	require.NoError(t, err)
	assert.Nil(t, activa)

	_, err = svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		Caja: model.CajaOficina, MontoInicial: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	activa, err = svc.GetActiva(context.Background(), model.CajaOficina)
	require.NoError(t, err)
	require.NotNil(t, activa)
	assert.Equal(t, model.SesionAbierta, activa.Estado)
}

func TestReporteDeSesion(t *testing.T) {
	repo := newFakeCajaRepo()
	svc := newTestCajaService(repo)
	operador := uuid.New()

	resp, err := svc.Abrir(context.Background(), operador, dto.AbrirCajaRequest{
		Caja: model.CajaOficina, MontoInicial: decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	sesionID := uuid.MustParse(resp.ID)

	repo.transacciones = append(repo.transacciones,
		model.Transaccion{SesionID: sesionID, Monto: decimal.NewFromInt(300), Estado: model.TransaccionCompletada},
	)
	_, err = svc.RegistrarMovimiento(context.Background(), operador, dto.MovimientoRequest{
		Caja: model.CajaOficina, Direccion: model.MovimientoIngreso,
		Monto: decimal.NewFromInt(100), Descripcion: "aporte",
	})
	require.NoError(t, err)

	rep, err := svc.Reporte(context.Background(), sesionID)
	require.NoError(t, err)
	assert.Equal(t, "900", rep.MontoSistema.String())
	assert.Equal(t, "300", rep.Transacciones.String())
	assert.Equal(t, "100", rep.Ingresos.String())
	assert.Len(t, rep.Movimientos, 1)
}
