package worker

// cierre_worker.go
// Processes closing-report jobs from QueueCierre: renders the PDF for a
// closed session and chains an email job so the report reaches the back
// office.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AmericableSA/Sistema-sub000/internal/config"
	"github.com/AmericableSA/Sistema-sub000/internal/infra"
	"github.com/AmericableSA/Sistema-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CierreJobPayload is the job envelope sent to QueueCierre.
type CierreJobPayload struct {
	SesionID string `json:"sesion_id"`
}

type CierreWorker struct {
	repo       repository.CajaRepository
	cfg        *config.Config
	dispatcher *Dispatcher
}

func NewCierreWorker(repo repository.CajaRepository, cfg *config.Config, dispatcher *Dispatcher) *CierreWorker {
	return &CierreWorker{repo: repo, cfg: cfg, dispatcher: dispatcher}
}

func (w *CierreWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload CierreJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("cierre_worker: invalid payload")
		return
	}
	id, err := uuid.Parse(payload.SesionID)
	if err != nil {
		log.Error().Str("sesion_id", payload.SesionID).Msg("cierre_worker: invalid sesion_id")
		return
	}

	sesion, err := w.repo.FindSesionByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("sesion_id", payload.SesionID).Msg("cierre_worker: sesion not found")
		return
	}
	sums, err := w.repo.SumSesion(ctx, sesion.ID)
	if err != nil {
		log.Error().Err(err).Str("sesion_id", payload.SesionID).Msg("cierre_worker: sum failed")
		return
	}
	ops, err := w.repo.CountOperaciones(ctx, sesion.ID)
	if err != nil {
		log.Error().Err(err).Str("sesion_id", payload.SesionID).Msg("cierre_worker: count failed")
		return
	}

	rep := &infra.ReporteCierre{
		Sesion:        sesion,
		Transacciones: sums.Transacciones,
		Ingresos:      sums.Ingresos,
		Egresos:       sums.Egresos,
		Operaciones:   int(ops),
	}
	pdfPath, err := infra.GenerateCierrePDF(rep, w.cfg.PDFStoragePath)
	if err != nil {
		log.Error().Err(err).Str("sesion_id", payload.SesionID).Msg("cierre_worker: pdf generation failed")
		return
	}
	log.Info().Str("sesion_id", payload.SesionID).Str("pdf", pdfPath).Msg("cierre_worker: report generated")

	if w.cfg.ReporteEmail == "" {
		return
	}
	emailJob := EmailJobPayload{
		ToEmail: w.cfg.ReporteEmail,
		Subject: fmt.Sprintf("Cierre de caja %s", sesion.Caja),
		Body:    fmt.Sprintf("Se adjunta el reporte de cierre de la sesión %s.", sesion.ID),
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Error().Err(err).Str("sesion_id", payload.SesionID).Msg("cierre_worker: enqueue email failed")
	}
}
