// Package report renders calculation results into downloadable documents.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-pdf/fpdf"
	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/pkg/format"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ContentTypePDF is the MIME type of rendered reports.
const ContentTypePDF = "application/pdf"

// ErrIncompleteResult is returned when a result lacks a field the document
// must show.
var ErrIncompleteResult = errors.New("incomplete result")

// Exporter renders a result and the income it was computed from. Renderers
// must not modify the result.
type Exporter interface {
	Render(result calculator.Result, monthlyIncome decimal.Decimal) ([]byte, error)
	ContentType() string
	Extension() string
}

// PDFExporter renders a one-page A4 summary, optionally followed by the
// payment plan.
type PDFExporter struct {
	logger          *zap.Logger
	institution     string
	includeSchedule bool
	now             func() time.Time
}

// Compile-time assertion
var _ Exporter = (*PDFExporter)(nil)

// Option customizes a PDFExporter.
type Option func(*PDFExporter)

// WithInstitution sets the issuer name printed in the header.
func WithInstitution(name string) Option {
	return func(e *PDFExporter) {
		e.institution = strings.TrimSpace(name)
	}
}

// WithSchedule appends the payment plan for the maximum amount.
func WithSchedule(include bool) Option {
	return func(e *PDFExporter) {
		e.includeSchedule = include
	}
}

// WithClock fixes the generation time, which makes output byte-for-byte
// reproducible.
func WithClock(now func() time.Time) Option {
	return func(e *PDFExporter) {
		e.now = now
	}
}

// NewPDFExporter creates a PDF exporter.
func NewPDFExporter(logger *zap.Logger, opts ...Option) *PDFExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &PDFExporter{logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ContentType implements Exporter.
func (e *PDFExporter) ContentType() string {
	return ContentTypePDF
}

// Extension implements Exporter.
func (e *PDFExporter) Extension() string {
	return ".pdf"
}

// Render implements Exporter. The income must match the one the result was
// computed from.
func (e *PDFExporter) Render(result calculator.Result, monthlyIncome decimal.Decimal) ([]byte, error) {
	if err := checkComplete(result, monthlyIncome); err != nil {
		return nil, err
	}

	generated := e.now()

	var schedule []loans.Installment
	if e.includeSchedule {
		var err error
		schedule, err = loans.NewScheduleGenerator(e.logger).GenerateSchedule(loans.LoanConfig{
			Name:                result.Client,
			Principal:           result.MaxAmount,
			MonthlyInterestRate: result.InterestRate,
			Term:                result.TermMonths,
			StartDate:           generated,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build payment plan: %w", err)
		}
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(generated)
	pdf.SetModificationDate(generated)
	pdf.SetTitle("Calculadora de Préstamos", true)
	pdf.SetAuthor(e.institution, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	w := &pdfWriter{pdf: pdf, tr: tr}

	w.header(e.institution, generated)
	w.summary(result, monthlyIncome)
	if len(schedule) > 0 {
		w.schedule(schedule)
	}
	w.footer()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		e.logger.Error("failed to generate PDF output",
			zap.String("op", "report.Render"),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	e.logger.Debug("PDF generated",
		zap.String("op", "report.Render"),
		zap.Int("pdf_size", buf.Len()),
		zap.Int("installments", len(schedule)),
	)
	return buf.Bytes(), nil
}

func checkComplete(result calculator.Result, monthlyIncome decimal.Decimal) error {
	switch {
	case strings.TrimSpace(result.Client) == "":
		return fmt.Errorf("%w: client is blank", ErrIncompleteResult)
	case !monthlyIncome.IsPositive():
		return fmt.Errorf("%w: monthly income must be positive", ErrIncompleteResult)
	case !monthlyIncome.Equal(result.MonthlyIncome):
		return fmt.Errorf("%w: income %s does not match result income %s",
			ErrIncompleteResult, monthlyIncome, result.MonthlyIncome)
	case result.TermMonths <= 0:
		return fmt.Errorf("%w: term is missing", ErrIncompleteResult)
	case !result.MaxInstallment.IsPositive() || !result.MaxAmount.IsPositive() || !result.TotalAmount.IsPositive():
		return fmt.Errorf("%w: amounts are missing", ErrIncompleteResult)
	}
	return nil
}

type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (w *pdfWriter) header(institution string, generated time.Time) {
	if institution != "" {
		w.pdf.SetFont("Arial", "B", 10)
		w.pdf.SetTextColor(90, 90, 90)
		w.pdf.CellFormat(0, 6, w.tr(institution), "", 1, "L", false, 0, "")
	}

	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.SetFont("Arial", "B", 16)
	w.pdf.CellFormat(0, 10, w.tr("Calculadora de Préstamos"), "", 1, "C", false, 0, "")

	w.pdf.SetFont("Arial", "", 9)
	w.pdf.CellFormat(0, 5, w.tr("Generado el "+generated.Format("02/01/2006 15:04")), "", 1, "C", false, 0, "")
	w.pdf.Ln(6)
}

func (w *pdfWriter) summary(result calculator.Result, monthlyIncome decimal.Decimal) {
	rows := [][2]string{
		{"Cliente", result.Client},
		{"Ingreso mensual", format.Currency(monthlyIncome)},
		{"Capacidad mensual", format.Currency(result.MaxInstallment)},
		{"Interés mensual", format.Percent(result.InterestRate)},
		{"Plazo", fmt.Sprintf("%d meses", result.TermMonths)},
		{"Monto máximo sugerido", format.Currency(result.MaxAmount)},
		{"Monto total a pagar", format.Currency(result.TotalAmount)},
	}

	w.pdf.SetFillColor(184, 204, 228)
	for i, row := range rows {
		highlight := i >= len(rows)-2
		style := ""
		if highlight {
			style = "B"
		}
		w.pdf.SetFont("Arial", "B", 10)
		w.pdf.CellFormat(70, 8, w.tr(row[0]), "1", 0, "L", true, 0, "")
		w.pdf.SetFont("Arial", style, 10)
		w.pdf.CellFormat(0, 8, w.tr(row[1]), "1", 1, "R", false, 0, "")
	}
	w.pdf.Ln(6)
}

func (w *pdfWriter) schedule(schedule []loans.Installment) {
	w.pdf.SetFont("Arial", "B", 12)
	w.pdf.CellFormat(0, 8, w.tr("Plan de pagos"), "", 1, "L", false, 0, "")

	widths := []float64{12, 28, 35, 35, 35, 35}
	headers := []string{"N°", "Vencimiento", "Cuota", "Interés", "Capital", "Saldo"}

	w.pdf.SetFont("Arial", "B", 9)
	w.pdf.SetFillColor(184, 204, 228)
	for i, h := range headers {
		w.pdf.CellFormat(widths[i], 7, w.tr(h), "1", 0, "C", true, 0, "")
	}
	w.pdf.Ln(-1)

	w.pdf.SetFont("Arial", "", 9)
	for _, inst := range schedule {
		cells := []string{
			fmt.Sprintf("%d", inst.Number),
			inst.DueDate.Format("02/01/2006"),
			format.NumericCurrency(inst.Payment),
			format.NumericCurrency(inst.Interest),
			format.NumericCurrency(inst.Principal),
			format.NumericCurrency(inst.Remaining),
		}
		for i, c := range cells {
			align := "R"
			if i < 2 {
				align = "C"
			}
			w.pdf.CellFormat(widths[i], 6, w.tr(c), "1", 0, align, false, 0, "")
		}
		w.pdf.Ln(-1)
	}

	paid, interest := loans.Totals(schedule)
	w.pdf.SetFont("Arial", "B", 9)
	w.pdf.CellFormat(widths[0]+widths[1], 7, "Total", "1", 0, "C", true, 0, "")
	w.pdf.CellFormat(widths[2], 7, format.NumericCurrency(paid), "1", 0, "R", true, 0, "")
	w.pdf.CellFormat(widths[3], 7, format.NumericCurrency(interest), "1", 0, "R", true, 0, "")
	w.pdf.CellFormat(widths[4]+widths[5], 7, "", "1", 1, "R", true, 0, "")
	w.pdf.Ln(4)
}

func (w *pdfWriter) footer() {
	w.pdf.SetFont("Arial", "I", 8)
	w.pdf.SetTextColor(90, 90, 90)
	w.pdf.MultiCell(0, 4, w.tr(
		"Montos referenciales calculados con cuota fija. La aprobación final está sujeta a evaluación crediticia."),
		"", "L", false)
}

// Filename returns a download name such as
// "calculo-juana-perez-20251015-143000.pdf".
func Filename(client string, now time.Time, extension string) string {
	slug := slugify(client)
	if slug == "" {
		slug = "cliente"
	}
	return fmt.Sprintf("calculo-%s-%s%s", slug, now.Format("20060102-150405"), extension)
}

func slugify(s string) string {
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(stripAccents, s)
	if err != nil {
		plain = s
	}

	var builder strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			builder.WriteRune(r)
			dash = false
			continue
		}
		if builder.Len() > 0 && !dash {
			builder.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(builder.String(), "-")
}
