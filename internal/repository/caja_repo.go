package repository

import (
	"context"
	"errors"

	"github.com/AmericableSA/Sistema-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SumasSesion aggregates a session's ledger: completed transactions plus
// manual ingresos minus manual egresos. Cancelled transactions never count.
type SumasSesion struct {
	Transacciones decimal.Decimal
	Ingresos      decimal.Decimal
	Egresos       decimal.Decimal
}

type CajaRepository interface {
	CreateSesion(ctx context.Context, s *model.SesionCaja) error
	FindSesionAbierta(ctx context.Context, caja string) (*model.SesionCaja, error)
	FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	UpdateSesion(ctx context.Context, s *model.SesionCaja) error
	CountSesionesAbiertas(ctx context.Context, caja string) (int64, error)
	ListSesiones(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error)

	CreateMovimiento(ctx context.Context, m *model.Movimiento) error
	ListMovimientos(ctx context.Context, sesionID uuid.UUID) ([]model.Movimiento, error)

	SumSesion(ctx context.Context, sesionID uuid.UUID) (*SumasSesion, error)
	// CountOperaciones counts the session's completed transactions plus
	// manual movements, for the closing report.
	CountOperaciones(ctx context.Context, sesionID uuid.UUID) (int64, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) CreateSesion(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// FindSesionAbierta returns nil, nil when the caja has no open session.
func (r *cajaRepo) FindSesionAbierta(ctx context.Context, caja string) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("caja = ? AND estado = ?", caja, model.SesionAbierta).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *cajaRepo) UpdateSesion(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *cajaRepo) CountSesionesAbiertas(ctx context.Context, caja string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.SesionCaja{}).
		Where("caja = ? AND estado = ?", caja, model.SesionAbierta).
		Count(&n).Error
	return n, err
}

func (r *cajaRepo) ListSesiones(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error) {
	var sesiones []model.SesionCaja
	var total int64
	q := r.db.WithContext(ctx).Model(&model.SesionCaja{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("opened_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sesiones).Error
	return sesiones, total, err
}

func (r *cajaRepo) CreateMovimiento(ctx context.Context, m *model.Movimiento) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, sesionID uuid.UUID) ([]model.Movimiento, error) {
	var movs []model.Movimiento
	err := r.db.WithContext(ctx).
		Where("sesion_id = ?", sesionID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) CountOperaciones(ctx context.Context, sesionID uuid.UUID) (int64, error) {
	var nTx, nMov int64
	err := r.db.WithContext(ctx).Model(&model.Transaccion{}).
		Where("sesion_id = ? AND estado = ?", sesionID, model.TransaccionCompletada).
		Count(&nTx).Error
	if err != nil {
		return 0, err
	}
	err = r.db.WithContext(ctx).Model(&model.Movimiento{}).
		Where("sesion_id = ?", sesionID).
		Count(&nMov).Error
	return nTx + nMov, err
}

// SumSesion derives the session's balance components straight from the ledger
// rows. There is no cached running counter anywhere — recomputing from source
// on every read is what keeps the totals drift-free.
func (r *cajaRepo) SumSesion(ctx context.Context, sesionID uuid.UUID) (*SumasSesion, error) {
	sums := &SumasSesion{}

	row := struct{ Total decimal.Decimal }{}
	err := r.db.WithContext(ctx).Model(&model.Transaccion{}).
		Select("COALESCE(SUM(monto), 0) AS total").
		Where("sesion_id = ? AND estado = ?", sesionID, model.TransaccionCompletada).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	sums.Transacciones = row.Total

	type porDireccion struct {
		Direccion string
		Total     decimal.Decimal
	}
	var filas []porDireccion
	err = r.db.WithContext(ctx).Model(&model.Movimiento{}).
		Select("direccion, COALESCE(SUM(monto), 0) AS total").
		Where("sesion_id = ?", sesionID).
		Group("direccion").
		Scan(&filas).Error
	if err != nil {
		return nil, err
	}
	for _, f := range filas {
		switch f.Direccion {
		case model.MovimientoIngreso:
			sums.Ingresos = f.Total
		case model.MovimientoEgreso:
			sums.Egresos = f.Total
		}
	}
	return sums, nil
}
