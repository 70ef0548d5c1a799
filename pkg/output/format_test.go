package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/testutil"
	"go.uber.org/zap"
)

func sampleResult(t *testing.T) (calculator.Result, []loans.Installment) {
	t.Helper()
	calc, err := calculator.New(calculator.DefaultPolicy())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	result, err := calc.Calculate(testutil.D("5000"), "Juana Pérez")
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	schedule, err := calc.Schedule(zap.NewNop(), result, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	return result, schedule
}

func TestNewView(t *testing.T) {
	result, schedule := sampleResult(t)
	view := NewView(result, schedule)

	if view.Client != "Juana Pérez" {
		t.Errorf("Client = %q", view.Client)
	}
	checks := map[string][2]string{
		"MonthlyIncome":  {view.MonthlyIncome, "5000.00"},
		"MaxInstallment": {view.MaxInstallment, "1500.00"},
		"InterestRate":   {view.InterestRate, "1.5"},
		"MaxAmount":      {view.MaxAmount, "30045.61"},
		"TotalAmount":    {view.TotalAmount, "36000.00"},
	}
	for field, pair := range checks {
		if pair[0] != pair[1] {
			t.Errorf("%s = %q, expected %q", field, pair[0], pair[1])
		}
	}
	if len(view.Plan) != 24 {
		t.Fatalf("expected 24 plan rows, got %d", len(view.Plan))
	}
	if view.Plan[0].DueDate != "2025-02-15" {
		t.Errorf("first due date = %s", view.Plan[0].DueDate)
	}
	if view.Plan[23].Remaining != "0.00" {
		t.Errorf("last remaining = %s", view.Plan[23].Remaining)
	}
}

func TestPrettyFormat(t *testing.T) {
	result, _ := sampleResult(t)

	var buf bytes.Buffer
	if err := PrettyFormat(&buf, result, nil); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}

	out := buf.String()
	for _, expected := range []string{
		"Juana Pérez",
		"1.500,00 Bs",
		"1,5%",
		"24 meses",
		"30.045,61 Bs",
		"36.000,00 Bs",
		"5.954,39 Bs",
	} {
		if !strings.Contains(out, expected) {
			t.Errorf("expected output to contain %q, got:\n%s", expected, out)
		}
	}
	if strings.Contains(out, "Plan de pagos") {
		t.Error("plan should be omitted without a schedule")
	}
}

func TestPrettyFormatWithSchedule(t *testing.T) {
	result, schedule := sampleResult(t)

	var buf bytes.Buffer
	if err := PrettyFormat(&buf, result, schedule); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Plan de pagos") {
		t.Error("expected plan section")
	}
	if !strings.Contains(out, constants.StatusPending) {
		t.Error("expected installment status in plan")
	}
}

func TestCsvFormat(t *testing.T) {
	result, _ := sampleResult(t)

	var buf bytes.Buffer
	if err := CsvFormat(&buf, result, nil); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "cliente,ingreso_mensual,cuota_maxima,interes,plazo,monto_maximo,monto_total" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "Juana Pérez,5000.00,1500.00,1.5,24,30045.61,36000.00" {
		t.Errorf("unexpected row %q", lines[1])
	}
}

func TestCsvFormatWithSchedule(t *testing.T) {
	result, schedule := sampleResult(t)

	var buf bytes.Buffer
	if err := CsvFormat(&buf, result, schedule); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// header, row, blank, plan header, 24 installments
	if len(lines) != 28 {
		t.Fatalf("expected 28 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[4], "1,2025-02-15,1500.00,") {
		t.Errorf("unexpected first installment %q", lines[4])
	}
}

func TestJSONFormat(t *testing.T) {
	result, _ := sampleResult(t)

	var buf bytes.Buffer
	if err := JSONFormat(&buf, result, nil); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if decoded["montoMaximo"] != "30045.61" {
		t.Errorf("montoMaximo = %v", decoded["montoMaximo"])
	}
	if decoded["plazo"] != float64(24) {
		t.Errorf("plazo = %v", decoded["plazo"])
	}
	if _, ok := decoded["plan"]; ok {
		t.Error("plan should be omitted when empty")
	}
}

func TestWriteUnsupportedFormat(t *testing.T) {
	result, _ := sampleResult(t)
	if err := Write(&bytes.Buffer{}, "xml", result, nil); err == nil {
		t.Error("expected error for unsupported format")
	}
	for _, f := range []string{constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON} {
		if err := Write(&bytes.Buffer{}, f, result, nil); err != nil {
			t.Errorf("Write(%s) error = %v", f, err)
		}
	}
}
