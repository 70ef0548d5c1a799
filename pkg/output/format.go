// Package output provides utilities for formatting and displaying calculation results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/format"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// View is the display form of a result: currency fields rounded to cents
// and rendered as fixed two-decimal strings.
type View struct {
	Client         string            `json:"cliente"`
	MonthlyIncome  string            `json:"ingresoMensual"`
	MaxInstallment string            `json:"cuotaMaxima"`
	InterestRate   string            `json:"interes"`
	TermMonths     int               `json:"plazo"`
	MaxAmount      string            `json:"montoMaximo"`
	TotalAmount    string            `json:"montoTotal"`
	Plan           []InstallmentView `json:"plan,omitempty"`
}

// InstallmentView is the display form of one installment.
type InstallmentView struct {
	Number    int    `json:"numero"`
	DueDate   string `json:"fechaVencimiento"`
	Payment   string `json:"montoCuota"`
	Interest  string `json:"interes"`
	Principal string `json:"capital"`
	Remaining string `json:"saldo"`
	Status    string `json:"estado"`
}

func fixed(d decimal.Decimal) string {
	return d.StringFixed(constants.DecimalPlaces)
}

// NewView builds the display form of a result and its optional payment plan.
func NewView(result calculator.Result, schedule []loans.Installment) View {
	view := View{
		Client:         result.Client,
		MonthlyIncome:  fixed(result.MonthlyIncome),
		MaxInstallment: fixed(result.MaxInstallment),
		InterestRate:   result.InterestRate.String(),
		TermMonths:     result.TermMonths,
		MaxAmount:      fixed(result.MaxAmount),
		TotalAmount:    fixed(result.TotalAmount),
	}
	for _, inst := range schedule {
		view.Plan = append(view.Plan, InstallmentView{
			Number:    inst.Number,
			DueDate:   inst.DueDate.Format(constants.DateLayout),
			Payment:   fixed(inst.Payment),
			Interest:  fixed(inst.Interest),
			Principal: fixed(inst.Principal),
			Remaining: fixed(inst.Remaining),
			Status:    inst.Status,
		})
	}
	return view
}

// PrettyFormat writes labelled, human-readable fields.
func PrettyFormat(w io.Writer, result calculator.Result, schedule []loans.Installment) error {
	p := message.NewPrinter(language.Spanish)
	lines := []struct {
		label string
		value string
	}{
		{"Cliente", result.Client},
		{"Ingreso mensual", format.Currency(result.MonthlyIncome)},
		{"Capacidad mensual", format.Currency(result.MaxInstallment)},
		{"Interés", format.Percent(result.InterestRate)},
		{"Plazo", p.Sprintf("%d meses", result.TermMonths)},
		{"Monto máximo sugerido", format.Currency(result.MaxAmount)},
		{"Monto total a pagar", format.Currency(result.TotalAmount)},
		{"Intereses", format.Currency(result.TotalInterest())},
	}
	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "%-22s %s\n", line.label+":", line.value); err != nil {
			return err
		}
	}

	if len(schedule) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w, "\n--- Plan de pagos ---\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-4s | %-10s | %15s | %13s | %15s | %s\n",
		"N°", "Vence", "Cuota", "Interés", "Saldo", "Estado"); err != nil {
		return err
	}
	for _, inst := range schedule {
		if _, err := fmt.Fprintf(w, "%-4d | %-10s | %15s | %13s | %15s | %s\n",
			inst.Number,
			inst.DueDate.Format(constants.DateLayout),
			format.NumericCurrency(inst.Payment),
			format.NumericCurrency(inst.Interest),
			format.NumericCurrency(inst.Remaining),
			inst.Status,
		); err != nil {
			return err
		}
	}
	return nil
}

// CsvFormat writes a header row and one data row; when a payment plan is
// given it follows after a blank line with its own header.
func CsvFormat(w io.Writer, result calculator.Result, schedule []loans.Installment) error {
	view := NewView(result, schedule)
	writer := csv.NewWriter(w)

	records := [][]string{
		{"cliente", "ingreso_mensual", "cuota_maxima", "interes", "plazo", "monto_maximo", "monto_total"},
		{
			view.Client,
			view.MonthlyIncome,
			view.MaxInstallment,
			view.InterestRate,
			strconv.Itoa(view.TermMonths),
			view.MaxAmount,
			view.TotalAmount,
		},
	}
	if len(view.Plan) > 0 {
		records = append(records,
			[]string{},
			[]string{"numero", "fecha_vencimiento", "monto_cuota", "interes", "capital", "saldo", "estado"},
		)
		for _, inst := range view.Plan {
			records = append(records, []string{
				strconv.Itoa(inst.Number),
				inst.DueDate,
				inst.Payment,
				inst.Interest,
				inst.Principal,
				inst.Remaining,
				inst.Status,
			})
		}
	}

	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// JSONFormat writes the display view as indented JSON.
func JSONFormat(w io.Writer, result calculator.Result, schedule []loans.Installment) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewView(result, schedule))
}

// Write dispatches on an output format name.
func Write(w io.Writer, outputFormat string, result calculator.Result, schedule []loans.Installment) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, result, schedule)
	case constants.OutputFormatCSV:
		return CsvFormat(w, result, schedule)
	case constants.OutputFormatJSON:
		return JSONFormat(w, result, schedule)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}
