package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solvendo/internal/domainerr"
	"solvendo/internal/dto"
	"solvendo/internal/model"
	"solvendo/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CajaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error)
	RegistrarMovimiento(ctx context.Context, req dto.MovimientoManualRequest) (*dto.MovimientoResponse, error)
	Cerrar(ctx context.Context, req dto.CerrarCajaRequest) (*dto.CierreResponse, error)
	// Arqueo is a read-only audit: theoretical drawer contents of an OPEN
	// session. It persists nothing.
	Arqueo(ctx context.Context, sesionID uuid.UUID) (*dto.ArqueoResponse, error)
	Reporte(ctx context.Context, sesionID uuid.UUID) (*dto.SesionCajaResponse, error)
	Activa(ctx context.Context, cajaID int) (*dto.SesionCajaResponse, error)
	Historial(ctx context.Context, page, limit int) ([]dto.SesionCajaResponse, int64, error)
	// FindSesionAbierta is called by VentaService to validate an open session
	FindSesionAbierta(ctx context.Context, sesionID uuid.UUID) (*model.SesionCaja, error)
}

type cajaService struct {
	repo repository.CajaRepository
}

func NewCajaService(repo repository.CajaRepository) CajaService {
	return &cajaService{repo: repo}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error) {
	if req.MontoInicial.IsNegative() {
		return nil, &domainerr.InvalidAmountError{Campo: "monto_inicial", Monto: req.MontoInicial}
	}

	// Precondition query gives the friendly error; the partial unique index
	// on sesiones_caja is the authoritative guard against a concurrent open.
	existing, err := s.repo.FindSesionAbiertaPorCaja(ctx, req.CajaID)
	if err != nil {
		return nil, &domainerr.PersistenceError{Op: "caja.abrir", Err: err}
	}
	if existing != nil {
		return nil, &domainerr.AlreadyOpenError{CajaID: req.CajaID}
	}

	sesion := &model.SesionCaja{
		CajaID:       req.CajaID,
		UsuarioID:    usuarioID,
		MontoInicial: req.MontoInicial,
		Estado:       model.SesionAbierta,
		OpenedAt:     time.Now(),
	}
	if err := s.repo.CreateSesion(ctx, sesion); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against another Abrir on the same register.
			return nil, &domainerr.AlreadyOpenError{CajaID: req.CajaID}
		}
		return nil, &domainerr.PersistenceError{Op: "caja.abrir", Err: err}
	}

	log.Info().Int("caja_id", req.CajaID).Str("sesion_id", sesion.ID.String()).
		Str("monto_inicial", req.MontoInicial.String()).Msg("sesión de caja abierta")

	return sesionToResponse(sesion), nil
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────
// Ingreso / retiro manual. Movements are immutable — no Update/Delete.

func (s *cajaService) RegistrarMovimiento(ctx context.Context, req dto.MovimientoManualRequest) (*dto.MovimientoResponse, error) {
	if !req.Monto.IsPositive() {
		return nil, &domainerr.InvalidAmountError{Campo: "monto", Monto: req.Monto}
	}
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return nil, fmt.Errorf("sesion_caja_id inválido: %w", err)
	}
	if _, err := s.FindSesionAbierta(ctx, sesionID); err != nil {
		return nil, err
	}

	mov := &model.MovimientoCaja{
		SesionCajaID: sesionID,
		Tipo:         req.Tipo,
		Monto:        req.Monto,
		Descripcion:  req.Descripcion,
	}
	if err := s.repo.CreateMovimiento(ctx, mov); err != nil {
		return nil, &domainerr.PersistenceError{Op: "caja.movimiento", Err: err}
	}

	return &dto.MovimientoResponse{
		ID:           mov.ID.String(),
		SesionCajaID: sesionID.String(),
		Tipo:         mov.Tipo,
		Monto:        mov.Monto,
		Descripcion:  mov.Descripcion,
		CreatedAt:    mov.CreatedAt.Format(time.RFC3339),
	}, nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Computes the theoretical float from the ledger, records the declared float
// and the variance, and transitions the session to cerrada. Terminal: no
// later movement or sale may attach to this session id. The session row is
// locked before the ledger is summed, so a sale transaction holding the same
// lock either commits its entry before the sum or is rejected after the close.

func (s *cajaService) Cerrar(ctx context.Context, req dto.CerrarCajaRequest) (*dto.CierreResponse, error) {
	if req.MontoDeclarado.IsNegative() {
		return nil, &domainerr.InvalidAmountError{Campo: "monto_declarado", Monto: req.MontoDeclarado}
	}
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return nil, fmt.Errorf("sesion_caja_id inválido: %w", err)
	}

	declarado := req.MontoDeclarado
	var (
		montoInicial        decimal.Decimal
		teorico, diferencia decimal.Decimal
		now                 time.Time
	)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.repo.LockSesionAbiertaTx(tx, sesionID)
		if err != nil {
			return err
		}
		if sesion == nil {
			return &domainerr.SessionNotOpenError{SesionID: sesionID}
		}

		resumen, err := s.repo.SumMovimientosTx(tx, sesionID)
		if err != nil {
			return err
		}

		montoInicial = sesion.MontoInicial
		teorico = resumen.TeoricoEfectivo(montoInicial)
		diferencia = declarado.Sub(teorico)
		now = time.Now()

		sesion.MontoTeorico = &teorico
		sesion.MontoDeclarado = &declarado
		sesion.Diferencia = &diferencia
		sesion.Observaciones = req.Observaciones
		sesion.ClosedAt = &now

		ok, err := s.repo.CerrarSesionTx(tx, sesion)
		if err != nil {
			return err
		}
		if !ok {
			return &domainerr.SessionNotOpenError{SesionID: sesionID}
		}
		return nil
	})
	if txErr != nil {
		var notOpen *domainerr.SessionNotOpenError
		if errors.As(txErr, &notOpen) {
			return nil, txErr
		}
		return nil, &domainerr.PersistenceError{Op: "caja.cerrar", Err: txErr}
	}

	log.Info().Str("sesion_id", sesionID.String()).
		Str("teorico", teorico.String()).
		Str("declarado", declarado.String()).
		Str("diferencia", diferencia.String()).
		Msg("sesión de caja cerrada")

	return &dto.CierreResponse{
		SesionCajaID:   sesionID.String(),
		MontoInicial:   montoInicial,
		MontoTeorico:   teorico,
		MontoDeclarado: declarado,
		Diferencia:     diferencia,
		Estado:         model.SesionCerrada,
		ClosedAt:       now.Format(time.RFC3339),
	}, nil
}

// ── Arqueo ────────────────────────────────────────────────────────────────────

func (s *cajaService) Arqueo(ctx context.Context, sesionID uuid.UUID) (*dto.ArqueoResponse, error) {
	sesion, err := s.FindSesionAbierta(ctx, sesionID)
	if err != nil {
		return nil, err
	}
	resumen, err := s.repo.SumMovimientos(ctx, sesionID)
	if err != nil {
		return nil, &domainerr.PersistenceError{Op: "caja.arqueo", Err: err}
	}
	return &dto.ArqueoResponse{
		SesionCajaID:   sesionID.String(),
		MontoInicial:   sesion.MontoInicial,
		VentasEfectivo: resumen.VentasEfectivo,
		VentasOtros:    resumen.VentasOtros,
		Ingresos:       resumen.Ingresos,
		Retiros:        resumen.Retiros,
		MontoTeorico:   resumen.TeoricoEfectivo(sesion.MontoInicial),
		Estado:         sesion.Estado,
	}, nil
}

// ── Lecturas ──────────────────────────────────────────────────────────────────

func (s *cajaService) Reporte(ctx context.Context, sesionID uuid.UUID) (*dto.SesionCajaResponse, error) {
	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return nil, errors.New("sesión de caja no encontrada")
	}
	return sesionToResponse(sesion), nil
}

func (s *cajaService) Activa(ctx context.Context, cajaID int) (*dto.SesionCajaResponse, error) {
	sesion, err := s.repo.FindSesionAbiertaPorCaja(ctx, cajaID)
	if err != nil {
		return nil, &domainerr.PersistenceError{Op: "caja.activa", Err: err}
	}
	if sesion == nil {
		return nil, nil
	}
	return sesionToResponse(sesion), nil
}

func (s *cajaService) Historial(ctx context.Context, page, limit int) ([]dto.SesionCajaResponse, int64, error) {
	sesiones, total, err := s.repo.ListSesiones(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.SesionCajaResponse, 0, len(sesiones))
	for i := range sesiones {
		resp = append(resp, *sesionToResponse(&sesiones[i]))
	}
	return resp, total, nil
}

func (s *cajaService) FindSesionAbierta(ctx context.Context, sesionID uuid.UUID) (*model.SesionCaja, error) {
	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return nil, &domainerr.SessionNotOpenError{SesionID: sesionID}
	}
	if sesion.Estado != model.SesionAbierta {
		return nil, &domainerr.SessionNotOpenError{SesionID: sesionID}
	}
	return sesion, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func sesionToResponse(s *model.SesionCaja) *dto.SesionCajaResponse {
	resp := &dto.SesionCajaResponse{
		SesionCajaID:   s.ID.String(),
		CajaID:         s.CajaID,
		UsuarioID:      s.UsuarioID.String(),
		MontoInicial:   s.MontoInicial,
		MontoTeorico:   s.MontoTeorico,
		MontoDeclarado: s.MontoDeclarado,
		Diferencia:     s.Diferencia,
		Estado:         s.Estado,
		Observaciones:  s.Observaciones,
		OpenedAt:       s.OpenedAt.Format(time.RFC3339),
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}
