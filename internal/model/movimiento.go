package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movement directions.
const (
	MovimientoIngreso = "ingreso"
	MovimientoEgreso  = "egreso"
)

// Movimiento is a manual, non-client cash adjustment against the open session
// of its caja (petty cash, expenses, bank drops). Created once, immutable —
// there is no update or delete path for movements.
type Movimiento struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Caja        string          `gorm:"type:varchar(20);not null;index"`
	Direccion   string          `gorm:"type:varchar(10);not null"`
	Monto       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descripcion string          `gorm:"not null"`
	OperadorID  uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
}
