package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cajas físicas. Each one reconciles independently: the office till and the
// field collector's till never mix balances.
const (
	CajaOficina  = "oficina"
	CajaCobrador = "cobrador"
)

// CajaValida reports whether s names one of the two physical cash boxes.
func CajaValida(s string) bool {
	return s == CajaOficina || s == CajaCobrador
}

// Session states.
const (
	SesionAbierta = "abierta"
	SesionCerrada = "cerrada"
)

// SesionCaja represents one cashier shift against a physical cash box.
// Estado: "abierta" | "cerrada". At most one abierta per caja at any time.
//
// MontoSistema/Desvio are snapshots persisted at close time for audit; while
// the session is open the system total is always recomputed from the
// transaction/movement log (never cached — see CajaService.MontoSistema).
type SesionCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Caja         string          `gorm:"type:varchar(20);not null;index"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	MontoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// TipoCambio is recorded for audit only; all amounts are single-currency.
	TipoCambio *decimal.Decimal `gorm:"type:decimal(12,4)"`
	Estado     string           `gorm:"type:varchar(20);not null;default:'abierta'"`
	// Close-time snapshot. NotaCierre is mandatory when |Desvio| exceeds the
	// configured tolerance.
	MontoFisico  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MontoSistema *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Desvio       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	NotaCierre   *string
	OpenedAt     time.Time
	ClosedAt     *time.Time
}

// TableName pins the Spanish plural — GORM's inflection would produce
// "sesion_cajas".
func (SesionCaja) TableName() string { return "sesiones_caja" }
