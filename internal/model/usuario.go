package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles. User administration screens live outside this service; only the
// identity needed to attribute cash operations is kept here.
const (
	RolCajero        = "cajero"
	RolCobrador      = "cobrador"
	RolSupervisor    = "supervisor"
	RolAdministrador = "administrador"
)

// Usuario stores system users with role-based access.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	// CajaAsignada restricts an operator to one physical box; nil = both.
	CajaAsignada *string `gorm:"type:varchar(20)"`
	Activo       bool    `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
