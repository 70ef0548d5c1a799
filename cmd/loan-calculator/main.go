package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/iwvelando/loan-calculator/internal/logging"
	"github.com/iwvelando/loan-calculator/internal/report"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/format"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/output"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"go.uber.org/zap"
)

// Exit codes
const (
	exitOK           = 0
	exitFailure      = 1
	exitInvalidInput = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, time.Now))
}

func run(args []string, stdout, stderr io.Writer, now func() time.Time) int {
	flags := flag.NewFlagSet("loan-calculator", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configLocation := flags.String("config", constants.DefaultConfigFile, "path to configuration file")
	client := flags.String("cliente", "", "client full name")
	income := flags.String("ingreso", "", "monthly income, e.g. 5000 or \"5.000,50 Bs\"")
	outputFormatFlag := flags.String("output-format", "", "type of output override: pretty, csv, json")
	withSchedule := flags.Bool("schedule", false, "include the payment plan for the maximum amount")
	startDate := flags.String("start", "", "payment plan start date (YYYY-MM-DD), defaults to today")
	pdfPath := flags.String("pdf", "", "write a PDF report to this file or directory")
	logLevel := flags.String("log-level", "", "log level override (debug, info, warn, error)")
	if err := flags.Parse(args); err != nil {
		return exitInvalidInput
	}

	conf, err := loadConfiguration(*configLocation, flagWasSet(flags, "config"))
	if err != nil {
		fmt.Fprintf(stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return exitFailure
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return exitFailure
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Error(err.Error(), zap.String("op", "main"))
		return exitInvalidInput
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	calc, err := conf.NewCalculator()
	if err != nil {
		logger.Error("invalid lending policy",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return exitFailure
	}

	amount, err := format.ParseAmount(*income)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", &calculator.InvalidInputError{
			Field:  calculator.FieldMonthlyIncome,
			Reason: fmt.Sprintf("%q is not a valid amount: %v", *income, err),
		})
		return exitInvalidInput
	}

	result, err := calc.Calculate(amount, format.SanitizeClientName(*client))
	if err != nil {
		if errors.Is(err, calculator.ErrInvalidInput) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitInvalidInput
		}
		logger.Error("calculation failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return exitFailure
	}

	var schedule []loans.Installment
	if *withSchedule {
		start := now()
		if *startDate != "" {
			start, err = time.Parse(constants.DateLayout, *startDate)
			if err != nil {
				fmt.Fprintf(stderr, "Error: invalid start date %q, expected YYYY-MM-DD\n", *startDate)
				return exitInvalidInput
			}
		}
		schedule, err = calc.Schedule(logger, result, start)
		if err != nil {
			logger.Error("failed to build payment plan",
				zap.String("op", "main"),
				zap.Error(err),
			)
			return exitFailure
		}
		schedule = loans.MarkOverdue(schedule, now())
	}

	if err := output.Write(stdout, outputFormat, result, schedule); err != nil {
		logger.Error("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return exitFailure
	}

	if *pdfPath != "" {
		exporter := report.NewPDFExporter(logger,
			report.WithInstitution(conf.Report.Institution),
			report.WithSchedule(conf.Report.IncludeSchedule || *withSchedule),
			report.WithClock(now),
		)
		written, err := writeReport(exporter, result, *pdfPath, now())
		if err != nil {
			logger.Error("failed to export report",
				zap.String("op", "main"),
				zap.Error(err),
			)
			return exitFailure
		}
		logger.Info("report exported",
			zap.String("op", "main"),
			zap.String("path", written),
		)
	}

	return exitOK
}

// loadConfiguration reads the configuration file. A missing default file
// falls back to built-in defaults; an explicitly requested one must exist.
func loadConfiguration(path string, explicit bool) (*config.Configuration, error) {
	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
	}
	return config.LoadConfiguration(path)
}

// writeReport renders the report to path. When path is a directory the file
// name is derived from the client and the current time.
func writeReport(exporter report.Exporter, result calculator.Result, path string, now time.Time) (string, error) {
	data, err := exporter.Render(result, result.MonthlyIncome)
	if err != nil {
		return "", err
	}

	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		path = filepath.Join(path, report.Filename(result.Client, now, exporter.Extension()))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func flagWasSet(flags *flag.FlagSet, name string) bool {
	set := false
	flags.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
