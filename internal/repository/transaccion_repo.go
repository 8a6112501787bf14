package repository

import (
	"context"
	"time"

	"github.com/AmericableSA/Sistema-sub000/internal/dto"
	"github.com/AmericableSA/Sistema-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RegistroHistorial is one row of the merged transaction ∪ movement history.
// Movements report egresos as negative montos so the list reads like a
// statement.
type RegistroHistorial struct {
	ID           uuid.UUID       `json:"id"`
	TipoRegistro string          `json:"tipo_registro"` // "transaccion" | "movimiento"
	Caja         string          `json:"caja"`
	Tipo         string          `json:"tipo"`
	Monto        decimal.Decimal `json:"monto"`
	Descripcion  string          `json:"descripcion"`
	Referencia   string          `json:"referencia"`
	Estado       string          `json:"estado"`
	CreatedAt    time.Time       `json:"created_at"`
}

type TransaccionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, t *model.Transaccion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaccion, error)
	Update(ctx context.Context, t *model.Transaccion) error
	// ExisteReferencia checks the manual invoice number against the same caja
	// and calendar day. Advisory uniqueness only — no key backs it.
	ExisteReferencia(ctx context.Context, caja, referencia string, dia time.Time) (bool, error)
	Historial(ctx context.Context, filter dto.HistorialFilter) ([]RegistroHistorial, int64, error)
	DB() *gorm.DB // exposes the DB for transaction scoping in the service layer
}

type transaccionRepo struct{ db *gorm.DB }

func NewTransaccionRepository(db *gorm.DB) TransaccionRepository { return &transaccionRepo{db: db} }

func (r *transaccionRepo) DB() *gorm.DB { return r.db }

func (r *transaccionRepo) Create(ctx context.Context, tx *gorm.DB, t *model.Transaccion) error {
	return tx.WithContext(ctx).Create(t).Error
}

func (r *transaccionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaccion, error) {
	var t model.Transaccion
	err := r.db.WithContext(ctx).Preload("Items").First(&t, id).Error
	return &t, err
}

func (r *transaccionRepo) Update(ctx context.Context, t *model.Transaccion) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *transaccionRepo) ExisteReferencia(ctx context.Context, caja, referencia string, dia time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Transaccion{}).
		Where("caja = ? AND referencia = ? AND DATE(created_at) = DATE(?)", caja, referencia, dia).
		Count(&n).Error
	return n > 0, err
}

// Historial merges transacciones and movimientos into one ordered, paginated
// statement. The UNION runs in SQL so pagination stays correct across both
// sources.
func (r *transaccionRepo) Historial(ctx context.Context, filter dto.HistorialFilter) ([]RegistroHistorial, int64, error) {
	base := `
SELECT id, 'transaccion' AS tipo_registro, caja, tipo, monto, descripcion, referencia, estado, created_at
FROM transacciones
WHERE (?::varchar = '' OR caja = ?)
  AND (?::date IS NULL OR DATE(created_at) >= ?)
  AND (?::date IS NULL OR DATE(created_at) <= ?)
  AND (?::varchar = '' OR descripcion ILIKE '%' || ? || '%' OR referencia ILIKE '%' || ? || '%' OR cliente_id ILIKE '%' || ? || '%')
UNION ALL
SELECT id, 'movimiento', caja, direccion,
       CASE WHEN direccion = 'egreso' THEN -monto ELSE monto END,
       descripcion, '', 'completada', created_at
FROM movimientos
WHERE (?::varchar = '' OR caja = ?)
  AND (?::date IS NULL OR DATE(created_at) >= ?)
  AND (?::date IS NULL OR DATE(created_at) <= ?)
  AND (?::varchar = '' OR descripcion ILIKE '%' || ? || '%')`

	argsTx := []interface{}{
		filter.Caja, filter.Caja,
		filter.Desde, filter.Desde,
		filter.Hasta, filter.Hasta,
		filter.Buscar, filter.Buscar, filter.Buscar, filter.Buscar,
	}
	argsMov := []interface{}{
		filter.Caja, filter.Caja,
		filter.Desde, filter.Desde,
		filter.Hasta, filter.Hasta,
		filter.Buscar, filter.Buscar,
	}
	args := append(append([]interface{}{}, argsTx...), argsMov...)

	var total int64
	if err := r.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM ("+base+") h", args...).
		Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	var registros []RegistroHistorial
	pageArgs := append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	err := r.db.WithContext(ctx).
		Raw(base+" ORDER BY created_at DESC LIMIT ? OFFSET ?", pageArgs...).
		Scan(&registros).Error
	return registros, total, err
}
