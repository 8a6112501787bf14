package infra

// pdf.go — session closing-report generation using go-pdf/fpdf.
// After each cierre de caja a one-page A5 report is produced for the audit
// trail: apertura, totals per concept, declared vs system amount, desvío and
// the mandatory nota when tolerance was exceeded.
//
// The output file is saved to storagePath/cierre_{sesion}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AmericableSA/Sistema-sub000/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ReporteCierre carries everything the closing report prints.
type ReporteCierre struct {
	Sesion        *model.SesionCaja
	Transacciones decimal.Decimal
	Ingresos      decimal.Decimal
	Egresos       decimal.Decimal
	Operaciones   int
}

// GenerateCierrePDF writes the closing report for a closed session and
// returns the absolute path to the generated file.
func GenerateCierrePDF(rep *ReporteCierre, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	s := rep.Sesion
	fileName := fmt.Sprintf("cierre_%s.pdf", s.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Americable", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Cierre de caja — "+s.Caja, "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ── Session info ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sesión: "+s.ID.String(), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Apertura: "+s.OpenedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if s.ClosedAt != nil {
		pdf.CellFormat(contentW, 5, "Cierre: "+s.ClosedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	col1 := contentW * 0.60
	col2 := contentW * 0.40

	line := func(label string, v decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(col1, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, "$"+v.StringFixed(2), "", 1, "R", false, 0, "")
	}

	line("Monto inicial:", s.MontoInicial, false)
	line(fmt.Sprintf("Transacciones (%d):", rep.Operaciones), rep.Transacciones, false)
	line("Ingresos manuales:", rep.Ingresos, false)
	line("Egresos manuales:", rep.Egresos.Neg(), false)
	if s.MontoSistema != nil {
		line("Total sistema:", *s.MontoSistema, true)
	}
	if s.MontoFisico != nil {
		line("Efectivo contado:", *s.MontoFisico, true)
	}
	if s.Desvio != nil {
		line("Desvío:", *s.Desvio, true)
	}

	// ── Nota ─────────────────────────────────────────────────────────────────
	if s.NotaCierre != nil && *s.NotaCierre != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW, 5, "Nota de cierre:", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.MultiCell(contentW, 4, *s.NotaCierre, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write %s: %w", filePath, err)
	}
	return filePath, nil
}
