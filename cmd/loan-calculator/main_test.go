package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2025, time.October, 15, 14, 30, 0, 0, time.UTC)
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"-log-level", "error"}, args...), &stdout, &stderr, fixedClock)
	return code, stdout.String(), stderr.String()
}

func TestRunCSV(t *testing.T) {
	code, stdout, stderr := runCLI(t, "-cliente", "Juana Pérez", "-ingreso", "5.000,00", "-output-format", "csv")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "Juana Pérez,5000.00,1500.00,1.5,24,30045.61,36000.00") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
}

func TestRunWithConfigFile(t *testing.T) {
	code, stdout, stderr := runCLI(t,
		"-config", filepath.Join("..", "..", "config.yaml.example"),
		"-cliente", "Juana Pérez", "-ingreso", "5000", "-output-format", "json")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, `"montoMaximo": "30045.61"`) && !strings.Contains(stdout, `"montoMaximo":"30045.61"`) {
		t.Errorf("unexpected output:\n%s", stdout)
	}
}

func TestRunInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		field string
	}{
		{"Blank client", []string{"-cliente", "  ", "-ingreso", "5000"}, "cliente"},
		{"Zero income", []string{"-cliente", "Juana", "-ingreso", "0"}, "ingresoMensual"},
		{"Missing income", []string{"-cliente", "Juana"}, "ingresoMensual"},
		{"Garbage income", []string{"-cliente", "Juana", "-ingreso", "mucho"}, "ingresoMensual"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tt.args...)
			if code != exitInvalidInput {
				t.Fatalf("exit code = %d, expected %d", code, exitInvalidInput)
			}
			if stdout != "" {
				t.Errorf("expected no result output, got %q", stdout)
			}
			if !strings.Contains(stderr, tt.field) {
				t.Errorf("expected stderr to name %s, got %q", tt.field, stderr)
			}
		})
	}
}

func TestRunRejectsOutputFormat(t *testing.T) {
	code, _, _ := runCLI(t, "-cliente", "Juana", "-ingreso", "5000", "-output-format", "xml")
	if code != exitInvalidInput {
		t.Fatalf("exit code = %d, expected %d", code, exitInvalidInput)
	}
}

func TestRunMissingExplicitConfig(t *testing.T) {
	code, _, stderr := runCLI(t, "-config", filepath.Join(t.TempDir(), "missing.yaml"), "-cliente", "Juana", "-ingreso", "5000")
	if code != exitFailure {
		t.Fatalf("exit code = %d, expected %d", code, exitFailure)
	}
	if !strings.Contains(stderr, "failed to load configuration") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRunWritesPDF(t *testing.T) {
	dir := t.TempDir()

	code, _, stderr := runCLI(t, "-cliente", "Juana Pérez", "-ingreso", "5000", "-schedule", "-pdf", dir)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}

	data, err := os.ReadFile(filepath.Join(dir, "calculo-juana-perez-20251015-143000.pdf"))
	if err != nil {
		t.Fatalf("expected report file: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("expected PDF content")
	}
}

func TestRunWritesPDFToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reporte.pdf")

	code, _, stderr := runCLI(t, "-cliente", "Juana Pérez", "-ingreso", "5000", "-pdf", path)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected report at %s: %v", path, err)
	}
}

func TestRunScheduleMarksOverdueInstallments(t *testing.T) {
	code, stdout, stderr := runCLI(t,
		"-cliente", "Juana Pérez", "-ingreso", "5000", "-output-format", "csv",
		"-schedule", "-start", "2025-01-15")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}

	// Due dates run from 2025-02-15; the clock is at 2025-10-15.
	if got := strings.Count(stdout, "Vencida"); got != 8 {
		t.Errorf("expected 8 overdue installments, got %d:\n%s", got, stdout)
	}
	if got := strings.Count(stdout, "Pendiente"); got != 16 {
		t.Errorf("expected 16 pending installments, got %d", got)
	}
	if !strings.Contains(stdout, "8,2025-09-15,") || !strings.Contains(stdout, "9,2025-10-15,") {
		t.Errorf("unexpected due dates:\n%s", stdout)
	}
}

func TestRunScheduleDefaultsToToday(t *testing.T) {
	code, stdout, stderr := runCLI(t,
		"-cliente", "Juana Pérez", "-ingreso", "5000", "-output-format", "csv", "-schedule")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	if strings.Contains(stdout, "Vencida") {
		t.Errorf("a plan starting today has no overdue installments:\n%s", stdout)
	}
	if !strings.Contains(stdout, "1,2025-11-15,") {
		t.Errorf("unexpected first due date:\n%s", stdout)
	}
}

func TestRunRejectsInvalidStartDate(t *testing.T) {
	code, _, stderr := runCLI(t,
		"-cliente", "Juana", "-ingreso", "5000", "-schedule", "-start", "15/01/2025")
	if code != exitInvalidInput {
		t.Fatalf("exit code = %d, expected %d", code, exitInvalidInput)
	}
	if !strings.Contains(stderr, "invalid start date") {
		t.Errorf("unexpected stderr: %s", stderr)
	}
}
