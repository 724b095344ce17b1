package repository

import (
	"context"
	"errors"

	"solvendo/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResumenMovimientos aggregates a session's ledger for reconciliation.
// Only efectivo sales touch the physical drawer; manual movements always do.
type ResumenMovimientos struct {
	VentasEfectivo decimal.Decimal
	VentasOtros    decimal.Decimal
	Ingresos       decimal.Decimal
	Retiros        decimal.Decimal
}

// TeoricoEfectivo returns the drawer's theoretical cash float given the
// session's opening float.
func (r ResumenMovimientos) TeoricoEfectivo(montoInicial decimal.Decimal) decimal.Decimal {
	return montoInicial.Add(r.VentasEfectivo).Add(r.Ingresos).Sub(r.Retiros)
}

type CajaRepository interface {
	DB() *gorm.DB
	// CreateSesion inserts a new open session. The sesiones_caja partial
	// unique index makes this the atomic check half of check-and-insert:
	// a concurrent duplicate surfaces as gorm.ErrDuplicatedKey.
	CreateSesion(ctx context.Context, s *model.SesionCaja) error
	FindSesionAbiertaPorCaja(ctx context.Context, cajaID int) (*model.SesionCaja, error)
	FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	// LockSesionAbiertaTx takes a FOR UPDATE lock on the session row and
	// returns it while still open, or nil once closed. Closing and selling
	// both lock the row first, so a sale can never append a ledger entry
	// behind a close that already summed the drawer.
	LockSesionAbiertaTx(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error)
	// CerrarSesionTx persists the closing fields guarded by estado='abierta'.
	// Returns false when the session was already closed (lost the race).
	CerrarSesionTx(tx *gorm.DB, s *model.SesionCaja) (bool, error)
	CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error
	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error
	ListMovimientos(ctx context.Context, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error)
	SumMovimientos(ctx context.Context, sesionCajaID uuid.UUID) (ResumenMovimientos, error)
	SumMovimientosTx(tx *gorm.DB, sesionCajaID uuid.UUID) (ResumenMovimientos, error)
	ListSesiones(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CreateSesion(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cajaRepo) FindSesionAbiertaPorCaja(ctx context.Context, cajaID int) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("caja_id = ? AND estado = ?", cajaID, model.SesionAbierta).
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
	err := r.db.WithContext(ctx).Preload("Movimientos").First(&s, id).Error
	return &s, err
}

func (r *cajaRepo) LockSesionAbiertaTx(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND estado = ?", id, model.SesionAbierta).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) CerrarSesionTx(tx *gorm.DB, s *model.SesionCaja) (bool, error) {
	res := tx.Model(&model.SesionCaja{}).
		Where("id = ? AND estado = ?", s.ID, model.SesionAbierta).
		Updates(map[string]interface{}{
			"estado":          model.SesionCerrada,
			"monto_teorico":   s.MontoTeorico,
			"monto_declarado": s.MontoDeclarado,
			"diferencia":      s.Diferencia,
			"observaciones":   s.Observaciones,
			"closed_at":       s.ClosedAt,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *cajaRepo) CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *cajaRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error {
	return tx.Create(m).Error
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionCajaID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) SumMovimientos(ctx context.Context, sesionCajaID uuid.UUID) (ResumenMovimientos, error) {
	return sumMovimientos(r.db.WithContext(ctx), sesionCajaID)
}

func (r *cajaRepo) SumMovimientosTx(tx *gorm.DB, sesionCajaID uuid.UUID) (ResumenMovimientos, error) {
	return sumMovimientos(tx, sesionCajaID)
}

func sumMovimientos(db *gorm.DB, sesionCajaID uuid.UUID) (ResumenMovimientos, error) {
	var row struct {
		VentasEfectivo decimal.Decimal
		VentasOtros    decimal.Decimal
		Ingresos       decimal.Decimal
		Retiros        decimal.Decimal
	}
	err := db.Raw(`
		SELECT
		  COALESCE(SUM(CASE WHEN tipo = 'venta' AND metodo_pago = 'efectivo' THEN monto END), 0) AS ventas_efectivo,
		  COALESCE(SUM(CASE WHEN tipo = 'venta' AND metodo_pago <> 'efectivo' THEN monto END), 0) AS ventas_otros,
		  COALESCE(SUM(CASE WHEN tipo = 'ingreso' THEN monto END), 0) AS ingresos,
		  COALESCE(SUM(CASE WHEN tipo = 'retiro' THEN monto END), 0) AS retiros
		FROM movimientos_caja
		WHERE sesion_caja_id = ?`, sesionCajaID).Scan(&row).Error
	return ResumenMovimientos(row), err
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
