//go:build integration

package repository

// Integration tests for the merged history statement. They hit a real
// Postgres because the UNION ALL + pagination SQL cannot be exercised against
// the in-memory fakes.
//
// Run with: go test -tags integration ./internal/repository/... -v

import (
	"context"
	"testing"
	"time"

	"github.com/AmericableSA/Sistema-sub000/internal/dto"
	"github.com/AmericableSA/Sistema-sub000/internal/infra"
	"github.com/AmericableSA/Sistema-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:15-alpine",
		tcPostgres.WithDatabase("ledger_test"),
		tcPostgres.WithUsername("ledger"),
		tcPostgres.WithPassword("ledger"),
		tcPostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, pgC)
	require.NoError(t, err)

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)
	return db
}

func strPtr(s string) *string { return &s }

func TestHistorialContraPostgres(t *testing.T) {
	db := setupPostgres(t)
	repo := NewTransaccionRepository(db)
	ctx := context.Background()

	ahora := time.Now()
	ayer := ahora.AddDate(0, 0, -1)
	operador := uuid.New()

	sesionOficina := &model.SesionCaja{
		Caja: model.CajaOficina, UsuarioID: operador,
		MontoInicial: decimal.NewFromInt(1000), Estado: model.SesionAbierta, OpenedAt: ayer,
	}
	sesionCobrador := &model.SesionCaja{
		Caja: model.CajaCobrador, UsuarioID: uuid.New(),
		MontoInicial: decimal.NewFromInt(500), Estado: model.SesionAbierta, OpenedAt: ayer,
	}
	require.NoError(t, db.Create(sesionOficina).Error)
	require.NoError(t, db.Create(sesionCobrador).Error)

	mensualidad := &model.Transaccion{
		SesionID: sesionOficina.ID, Caja: model.CajaOficina,
		ClienteID: strPtr("CL-100"), Tipo: model.TipoMensualidad,
		Monto: decimal.NewFromInt(600), MontoCalculado: decimal.NewFromInt(600),
		MetodoPago: "efectivo", Descripcion: "Mensualidad junio",
		MesesPagados: 1, Referencia: "R-0001",
		CobradorID: operador, OperadorID: operador,
		Estado: model.TransaccionCompletada, CreatedAt: ahora,
	}
	anulada := &model.Transaccion{
		SesionID: sesionOficina.ID, Caja: model.CajaOficina,
		Tipo:  model.TipoVentaMaterial,
		Monto: decimal.NewFromInt(150), MontoCalculado: decimal.NewFromInt(150),
		MetodoPago: "efectivo", Descripcion: "Venta de conectores",
		Referencia: "R-0002",
		CobradorID: operador, OperadorID: operador,
		Estado:          model.TransaccionAnulada,
		MotivoAnulacion: strPtr("cobro duplicado"),
		AnuladaPor:      &operador,
		CreatedAt:       ahora.Add(-time.Minute),
	}
	deAyer := &model.Transaccion{
		SesionID: sesionCobrador.ID, Caja: model.CajaCobrador,
		ClienteID: strPtr("CL-200"), Tipo: model.TipoMensualidad,
		Monto: decimal.NewFromInt(500), MontoCalculado: decimal.NewFromInt(500),
		MetodoPago: "efectivo", Descripcion: "Mensualidad mayo",
		MesesPagados: 1, Referencia: "R-0003",
		CobradorID: operador, OperadorID: operador,
		Estado: model.TransaccionCompletada, CreatedAt: ayer,
	}
	require.NoError(t, db.Create(mensualidad).Error)
	require.NoError(t, db.Create(anulada).Error)
	require.NoError(t, db.Create(deAyer).Error)

	ingreso := &model.Movimiento{
		SesionID: sesionOficina.ID, Caja: model.CajaOficina,
		Direccion: model.MovimientoIngreso, Monto: decimal.NewFromInt(200),
		Descripcion: "fondo adicional", OperadorID: operador,
		CreatedAt: ahora.Add(-2 * time.Minute),
	}
	egreso := &model.Movimiento{
		SesionID: sesionOficina.ID, Caja: model.CajaOficina,
		Direccion: model.MovimientoEgreso, Monto: decimal.NewFromInt(50),
		Descripcion: "compra de papeleria", OperadorID: operador,
		CreatedAt: ahora.Add(-3 * time.Minute),
	}
	require.NoError(t, db.Create(ingreso).Error)
	require.NoError(t, db.Create(egreso).Error)

	hoy := ahora.Format("2006-01-02")
	ayerStr := ayer.Format("2006-01-02")

	t.Run("sin filtros une ambas fuentes", func(t *testing.T) {
		registros, total, err := repo.Historial(ctx, dto.HistorialFilter{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, registros, 5)

		// created_at DESC: la mensualidad de hoy encabeza, la de ayer cierra.
		assert.Equal(t, "R-0001", registros[0].Referencia)
		assert.Equal(t, "R-0003", registros[4].Referencia)

		porID := make(map[uuid.UUID]RegistroHistorial, len(registros))
		for _, r := range registros {
			porID[r.ID] = r
		}

		rEgreso := porID[egreso.ID]
		assert.Equal(t, "movimiento", rEgreso.TipoRegistro)
		assert.Equal(t, model.MovimientoEgreso, rEgreso.Tipo)
		assert.True(t, rEgreso.Monto.Equal(decimal.NewFromInt(-50)), "egreso debe listarse en negativo, got %s", rEgreso.Monto)

		rIngreso := porID[ingreso.ID]
		assert.True(t, rIngreso.Monto.Equal(decimal.NewFromInt(200)))

		rAnulada := porID[anulada.ID]
		assert.Equal(t, "transaccion", rAnulada.TipoRegistro)
		assert.Equal(t, model.TransaccionAnulada, rAnulada.Estado)
		assert.Equal(t, "R-0002", rAnulada.Referencia)
	})

	t.Run("anulada conserva su motivo", func(t *testing.T) {
		got, err := repo.FindByID(ctx, anulada.ID)
		require.NoError(t, err)
		assert.Equal(t, model.TransaccionAnulada, got.Estado)
		require.NotNil(t, got.MotivoAnulacion)
		assert.Equal(t, "cobro duplicado", *got.MotivoAnulacion)
	})

	t.Run("filtro por caja", func(t *testing.T) {
		registros, total, err := repo.Historial(ctx, dto.HistorialFilter{Caja: model.CajaCobrador, Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, registros, 1)
		assert.Equal(t, "R-0003", registros[0].Referencia)
	})

	t.Run("filtro por rango de fechas", func(t *testing.T) {
		registros, total, err := repo.Historial(ctx, dto.HistorialFilter{Desde: &hoy, Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		for _, r := range registros {
			assert.NotEqual(t, deAyer.ID, r.ID)
		}

		_, total, err = repo.Historial(ctx, dto.HistorialFilter{Hasta: &ayerStr, Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("busqueda por texto", func(t *testing.T) {
		registros, total, err := repo.Historial(ctx, dto.HistorialFilter{Buscar: "papeleria", Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, registros, 1)
		assert.Equal(t, "movimiento", registros[0].TipoRegistro)

		registros, total, err = repo.Historial(ctx, dto.HistorialFilter{Buscar: "CL-100", Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, registros, 1)
		assert.Equal(t, mensualidad.ID, registros[0].ID)
	})

	t.Run("paginacion cruza ambas fuentes", func(t *testing.T) {
		vistos := make(map[uuid.UUID]bool)
		for page := 1; page <= 3; page++ {
			registros, total, err := repo.Historial(ctx, dto.HistorialFilter{Page: page, Limit: 2})
			require.NoError(t, err)
			assert.Equal(t, int64(5), total)
			for _, r := range registros {
				assert.False(t, vistos[r.ID], "registro repetido entre paginas")
				vistos[r.ID] = true
			}
		}
		assert.Len(t, vistos, 5)
	})
}

func TestExisteReferenciaContraPostgres(t *testing.T) {
	db := setupPostgres(t)
	repo := NewTransaccionRepository(db)
	ctx := context.Background()

	operador := uuid.New()
	sesion := &model.SesionCaja{
		Caja: model.CajaOficina, UsuarioID: operador,
		MontoInicial: decimal.NewFromInt(1000), Estado: model.SesionAbierta, OpenedAt: time.Now(),
	}
	require.NoError(t, db.Create(sesion).Error)

	tx := &model.Transaccion{
		SesionID: sesion.ID, Caja: model.CajaOficina,
		Tipo:  model.TipoInstalacion,
		Monto: decimal.NewFromInt(800), MontoCalculado: decimal.NewFromInt(800),
		MetodoPago: "efectivo", Referencia: "R-0100",
		CobradorID: operador, OperadorID: operador,
		Estado: model.TransaccionCompletada, CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(tx).Error)

	existe, err := repo.ExisteReferencia(ctx, model.CajaOficina, "R-0100", time.Now())
	require.NoError(t, err)
	assert.True(t, existe)

	// Misma referencia en la otra caja no choca.
	existe, err = repo.ExisteReferencia(ctx, model.CajaCobrador, "R-0100", time.Now())
	require.NoError(t, err)
	assert.False(t, existe)

	// Ni en otro dia.
	existe, err = repo.ExisteReferencia(ctx, model.CajaOficina, "R-0100", time.Now().AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, existe)
}
