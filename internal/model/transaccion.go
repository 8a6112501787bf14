package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction types.
const (
	TipoMensualidad   = "mensualidad"
	TipoInstalacion   = "instalacion"
	TipoVentaMaterial = "venta_material"
	TipoReconexion    = "reconexion"
)

// TipoValido reports whether s is a known billable transaction type.
func TipoValido(s string) bool {
	switch s {
	case TipoMensualidad, TipoInstalacion, TipoVentaMaterial, TipoReconexion:
		return true
	}
	return false
}

// Transaction states.
const (
	TransaccionCompletada = "completada"
	TransaccionAnulada    = "anulada"
)

// Transaccion is a committed billable operation charged against the open
// session of its caja. Created once by the processor; the only mutation ever
// allowed is the cancellation (Estado + MotivoAnulacion + AnuladaPor) — rows
// are never edited or deleted.
//
// Monto is what was actually charged; MontoCalculado is what the calculator
// produced, kept so overrides are auditable. When they deviate beyond the
// configured tolerance, Justificacion is mandatory.
type Transaccion struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionID uuid.UUID `gorm:"type:uuid;not null;index"`
	Caja     string    `gorm:"type:varchar(20);not null;index"`
	// ClienteID references the external Client Directory; movements and some
	// material sales have no client.
	ClienteID      *string         `gorm:"type:varchar(64);index"`
	Tipo           string          `gorm:"type:varchar(20);not null"`
	Monto          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoCalculado decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago     string          `gorm:"type:varchar(20);not null"`
	Descripcion    string
	// Billing detail for mensualidades.
	MesesPagados int             `gorm:"not null;default:0"`
	MoraPagada   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Promo2x1     bool            `gorm:"not null;default:false"`
	// Referencia is the manually numbered invoice. Unique per caja/day by
	// business convention only — enforced as a validation error, not a key
	// (manual numbering tolerates gaps).
	Referencia    string  `gorm:"type:varchar(40);not null;index"`
	Justificacion *string
	// CobradorID is credited with the sale; OperadorID physically processed it.
	CobradorID      uuid.UUID `gorm:"type:uuid;not null"`
	OperadorID      uuid.UUID `gorm:"type:uuid;not null"`
	Estado          string    `gorm:"type:varchar(20);not null;default:'completada'"`
	MotivoAnulacion *string
	AnuladaPor      *uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time

	Items []TransaccionItem `gorm:"foreignKey:TransaccionID"`
}

// TableName pins the Spanish plural — GORM's inflection would produce
// "transaccions".
func (Transaccion) TableName() string { return "transacciones" }

// TransaccionItem is an informational line of a material sale. Inventory
// deduction lives in an external collaborator; these rows only document what
// was sold.
type TransaccionItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransaccionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID    string          `gorm:"type:varchar(64);not null"`
	Descripcion   string          `gorm:"not null"`
	Cantidad      int             `gorm:"not null"`
	Precio        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (TransaccionItem) TableName() string { return "transaccion_items" }
