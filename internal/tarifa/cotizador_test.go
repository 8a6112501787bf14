package tarifa

import (
	"testing"
	"time"

	"github.com/AmericableSA/Sistema-sub000/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		PorcentajeMora:   decimal.NewFromFloat(0.05),
		TarifaReconexion: decimal.NewFromInt(270),
		ToleranciaMora:   decimal.NewFromFloat(0.5),
	}
}

func clienteConDeuda(tarifa float64, adeudados int) EstadoCliente {
	return EstadoCliente{
		Tarifa:          decimal.NewFromFloat(tarifa),
		MesesAdeudados:  adeudados,
		UltimoMesPagado: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		TieneMora:       adeudados > 0,
		Estado:          ClienteActivo,
	}
}

func TestMensualidadSimple(t *testing.T) {
	cot, err := Cotizar(clienteConDeuda(500, 0), Solicitud{
		Tipo:        model.TipoMensualidad,
		MesesAPagar: 1,
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, "500", cot.Total.String())
	assert.Equal(t, "500", cot.Base.String())
	assert.Equal(t, "0", cot.Mora.String())
	assert.Equal(t, 1, cot.MesesFacturables)
}

func TestMensualidadMultiplesMeses(t *testing.T) {
	cot, err := Cotizar(clienteConDeuda(500, 0), Solicitud{
		Tipo:        model.TipoMensualidad,
		MesesAPagar: 3,
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, "1500", cot.Total.String())
	assert.Equal(t, 3, cot.MesesFacturables)
}

func TestMoraSugerida(t *testing.T) {
	// Debe 3 meses, paga 2: mora = min(2,3) × 500 × 0.05 = 50
	cot, err := Cotizar(clienteConDeuda(500, 3), Solicitud{
		Tipo:        model.TipoMensualidad,
		MesesAPagar: 2,
		AplicarMora: true,
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, "50", cot.MoraSugerida.String())
	assert.Equal(t, "50", cot.Mora.String())
	assert.Equal(t, "1050", cot.Total.String())
}

func TestMoraAcotadaPorMesesAdeudados(t *testing.T) {
	// Debe 1 mes pero paga 4: la mora solo cubre el mes atrasado.
	cot, err := Cotizar(clienteConDeuda(500, 1), Solicitud{
		Tipo:        model.TipoMensualidad,
		MesesAPagar: 4,
		AplicarMora: true,
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, "25", cot.MoraSugerida.String())
	assert.Equal(t, "2025", cot.Total.String())
}

func TestMoraNoAplicada(t *testing.T) {
	cot, err := Cotizar(clienteConDeuda(500, 3), Solicitud{
		Tipo:        model.TipoMensualidad,
		MesesAPagar: 2,
		AplicarMora: false,
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, "0", cot.Mora.String())
	// La sugerencia se informa igual, aplique o no.
	assert.Equal(t, "50", cot.MoraSugerida.String())
	assert.Equal(t, "1000", cot.Total.String())
}

func TestMoraManualDentroDeTolerancia(t *testing.T) {
	manual := decimal.NewFromFloat(50.25)
	cot, err := Cotizar(clienteConDeuda(500, 3), Solicitud{
		Tipo:        model.TipoMensualidad,
		MesesAPagar: 2,
		AplicarMora: true,
		MoraManual:  &manual,
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, "50.25", cot.Mora.String())
	assert.False(t, cot.MoraFueraDeRango)
}

func TestMoraManualFueraDeRango(t *testing.T) {
	manual := decimal.NewFromInt(10)
	cot, err := Cotizar(clienteConDeuda(500, 3), Solicitud{
		Tipo:        model.TipoMensualidad,
		MesesAPagar: 2,
		AplicarMora: true,
		MoraManual:  &manual,
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, "10", cot.Mora.String())
	assert.True(t, cot.MoraFueraDeRango)
}

func TestPromo2x1ParOMeses(t *testing.T) {
	// 4 meses con promo: factura 2
	cot, err := Cotizar(clienteConDeuda(500, 0), Solicitud{
		Tipo:        model.TipoMensualidad,
		MesesAPagar: 4,
		Promo2x1:    true,
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, 2, cot.MesesFacturables)
	assert.Equal(t, "1000", cot.Total.String())
	assert.Equal(t, "1000", cot.DescuentoPromo.String())
}

func TestPromo2x1ImparRedondeaArriba(t *testing.T) {
	// 3 meses con promo: ceil(3/2) = 2 facturables
	cot, err := Cotizar(clienteConDeuda(500, 0), Solicitud{
		Tipo:        model.TipoMensualidad,
		MesesAPagar: 3,
		Promo2x1:    true,
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, 2, cot.MesesFacturables)
	assert.Equal(t, "1000", cot.Total.String())
	assert.Equal(t, "500", cot.DescuentoPromo.String())
}

func TestPromoConMora(t *testing.T) {
	// La mora se calcula sobre los meses pagados, no los facturables.
	cot, err := Cotizar(clienteConDeuda(500, 4), Solicitud{
		Tipo:        model.TipoMensualidad,
		MesesAPagar: 4,
		AplicarMora: true,
		Promo2x1:    true,
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, "1000", cot.Base.String())
	assert.Equal(t, "100", cot.Mora.String())
	assert.Equal(t, "1100", cot.Total.String())
}

func TestPeriodoCubierto(t *testing.T) {
	cot, err := Cotizar(clienteConDeuda(500, 0), Solicitud{
		Tipo:        model.TipoMensualidad,
		MesesAPagar: 3,
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, "2026-06", cot.PeriodoDesde.Format("2006-01"))
	assert.Equal(t, "2026-08", cot.PeriodoHasta.Format("2006-01"))
}

func TestReconexionTarifaFija(t *testing.T) {
	cot, err := Cotizar(clienteConDeuda(500, 2), Solicitud{
		Tipo: model.TipoReconexion,
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, "270", cot.Total.String())
	assert.Equal(t, "0", cot.Mora.String())
}

func TestClienteSuspendidoSoloReconecta(t *testing.T) {
	cliente := clienteConDeuda(500, 2)
	cliente.Estado = ClienteSuspendido

	// Aunque pida una mensualidad, un suspendido paga la reconexión.
	cot, err := Cotizar(cliente, Solicitud{
		Tipo:        model.TipoMensualidad,
		MesesAPagar: 2,
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, "270", cot.Total.String())
}

func TestInstalacionPrecioPlan(t *testing.T) {
	cot, err := Cotizar(EstadoCliente{Estado: ClienteActivo}, Solicitud{
		Tipo:       model.TipoInstalacion,
		PrecioPlan: decimal.NewFromInt(800),
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, "800", cot.Total.String())
}

func TestInstalacionSinPrecio(t *testing.T) {
	_, err := Cotizar(EstadoCliente{Estado: ClienteActivo}, Solicitud{
		Tipo: model.TipoInstalacion,
	}, testConfig())

	assert.Error(t, err)
}

func TestVentaMaterial(t *testing.T) {
	cot, err := Cotizar(EstadoCliente{Estado: ClienteActivo}, Solicitud{
		Tipo: model.TipoVentaMaterial,
		Items: []Item{
			{ProductoID: "RG6", Descripcion: "Cable RG6", Cantidad: 10, Precio: decimal.NewFromInt(12)},
			{ProductoID: "CONF", Descripcion: "Conector F", Cantidad: 4, Precio: decimal.NewFromFloat(7.5)},
		},
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, "150", cot.Total.String())
}

func TestVentaMaterialSinItems(t *testing.T) {
	_, err := Cotizar(EstadoCliente{Estado: ClienteActivo}, Solicitud{
		Tipo: model.TipoVentaMaterial,
	}, testConfig())

	assert.Error(t, err)
}

func TestMensualidadSinTarifa(t *testing.T) {
	_, err := Cotizar(EstadoCliente{Estado: ClienteActivo}, Solicitud{
		Tipo:        model.TipoMensualidad,
		MesesAPagar: 1,
	}, testConfig())

	assert.Error(t, err)
}

func TestTipoDesconocido(t *testing.T) {
	_, err := Cotizar(EstadoCliente{Estado: ClienteActivo}, Solicitud{
		Tipo: "donacion",
	}, testConfig())

	assert.Error(t, err)
}
