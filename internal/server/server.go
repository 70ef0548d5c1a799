package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/internal/report"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/format"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/output"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

// Options tunes the handler. Zero values fall back to defaults.
type Options struct {
	MaxBodySize int64
	Version     string
	RateLimit   RateLimitConfig
	Now         func() time.Time
}

type handler struct {
	logger      *zap.Logger
	calc        *calculator.Calculator
	exporter    report.Exporter
	validate    *validator.Validate
	maxBodySize int64
	version     string
	now         func() time.Time
}

// NewHandler constructs the HTTP handler that serves the web UI and calculation API.
func NewHandler(logger *zap.Logger, calc *calculator.Calculator, exporter report.Exporter, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxBodySize := opts.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	h := &handler{
		logger:      logger,
		calc:        calc,
		exporter:    exporter,
		validate:    newValidator(),
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
		now:         now,
	}

	mux := http.NewServeMux()

	limiter := newRateLimiter(opts.RateLimit)

	// Calculation endpoints
	mux.Handle("/api/calculate", limiter.middleware(logger, http.HandlerFunc(h.handleCalculate)))
	mux.Handle("/api/report", limiter.middleware(logger, http.HandlerFunc(h.handleReport)))

	// Read-only metadata for the UI
	mux.HandleFunc("/api/policy", h.handlePolicy)
	mux.HandleFunc("/api/version", h.handleVersion)

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	mux.Handle("/", http.FileServer(http.FS(sub)))

	return mux
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// calculateRequest is the JSON body accepted by /api/calculate and /api/report.
// ingreso may be sent as a JSON number or as a locale-formatted string.
type calculateRequest struct {
	Client   string          `json:"cliente"`
	Income   json.RawMessage `json:"ingreso"`
	Schedule bool            `json:"plan"`
}

// calculationInput is the request after normalization.
type calculationInput struct {
	Client  string `json:"cliente" validate:"required,max=120"`
	Income  string `json:"ingresoMensual" validate:"required,max=32"`
	numeric bool
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type policyResponse struct {
	CapacityFraction    string `json:"capacidad"`
	MonthlyInterestRate string `json:"interes"`
	TermMonths          int    `json:"plazo"`
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	req, result, ok := h.calculate(w, r, op)
	if !ok {
		return
	}

	var schedule []loans.Installment
	if req.Schedule {
		var err error
		schedule, err = h.calc.Schedule(h.logger, result, h.now())
		if err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to build payment plan: %v", err), op)
			return
		}
	}

	h.logger.Info("calculation completed",
		zap.String("op", op),
		zap.String("client", result.Client),
		zap.String("max_amount", result.Rounded().MaxAmount.String()),
		zap.Int("installments", len(schedule)),
		zap.Duration("duration", time.Since(start)),
	)

	h.writeJSON(w, http.StatusOK, output.NewView(result, schedule))
}

func (h *handler) handleReport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if h.exporter == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "report export is not configured", op)
		return
	}

	_, result, ok := h.calculate(w, r, op)
	if !ok {
		return
	}

	data, err := h.exporter.Render(result, result.MonthlyIncome)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render report: %v", err), op)
		return
	}

	filename := report.Filename(result.Client, h.now(), h.exporter.Extension())
	w.Header().Set("Content-Type", h.exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write report",
			zap.String("op", op),
			zap.Error(err),
		)
		return
	}

	h.logger.Info("report exported",
		zap.String("op", op),
		zap.String("client", result.Client),
		zap.String("filename", filename),
		zap.Int("bytes", len(data)),
	)
}

func (h *handler) handlePolicy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	policy := h.calc.Policy()
	h.writeJSON(w, http.StatusOK, policyResponse{
		CapacityFraction:    policy.CapacityFraction.String(),
		MonthlyInterestRate: policy.MonthlyInterestRate.String(),
		TermMonths:          policy.TermMonths,
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// calculate decodes, validates and runs a calculation request. On failure the
// error response has already been written.
func (h *handler) calculate(w http.ResponseWriter, r *http.Request, op string) (calculateRequest, calculator.Result, bool) {
	var req calculateRequest

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize), op)
			return req, calculator.Result{}, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return req, calculator.Result{}, false
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON payload: %v", err), op)
		return req, calculator.Result{}, false
	}

	input, err := normalizeRequest(req)
	if err != nil {
		h.respondInputError(w, err, op)
		return req, calculator.Result{}, false
	}
	if err := h.validate.Struct(input); err != nil {
		h.respondInputError(w, validationError(err), op)
		return req, calculator.Result{}, false
	}

	income, err := parseIncome(input)
	if err != nil {
		h.respondInputError(w, err, op)
		return req, calculator.Result{}, false
	}

	result, err := h.calc.Calculate(income, input.Client)
	if err != nil {
		h.respondInputError(w, err, op)
		return req, calculator.Result{}, false
	}
	return req, result, true
}

func normalizeRequest(req calculateRequest) (calculationInput, error) {
	input := calculationInput{Client: format.SanitizeClientName(req.Client)}

	raw := bytes.TrimSpace(req.Income)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return input, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return input, &calculator.InvalidInputError{Field: calculator.FieldMonthlyIncome, Reason: "income must be a number or a string"}
	}

	switch v := value.(type) {
	case string:
		input.Income = strings.TrimSpace(v)
	case json.Number:
		input.Income = v.String()
		input.numeric = true
	default:
		return input, &calculator.InvalidInputError{Field: calculator.FieldMonthlyIncome, Reason: "income must be a number or a string"}
	}
	return input, nil
}

func parseIncome(input calculationInput) (decimal.Decimal, error) {
	var (
		income decimal.Decimal
		err    error
	)
	if input.numeric {
		income, err = format.ParseDecimal(input.Income)
	} else {
		income, err = format.ParseAmount(input.Income)
	}
	if err != nil {
		return decimal.Decimal{}, &calculator.InvalidInputError{
			Field:  calculator.FieldMonthlyIncome,
			Reason: fmt.Sprintf("income %q is not a valid amount: %v", input.Income, err),
		}
	}
	return income, nil
}

// validationError converts the first validator failure into an
// *calculator.InvalidInputError.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	var reason string
	switch fe.Tag() {
	case "required":
		reason = "value is required"
	case "max":
		reason = fmt.Sprintf("value must be at most %s characters", fe.Param())
	default:
		reason = fmt.Sprintf("failed %s validation", fe.Tag())
	}
	return &calculator.InvalidInputError{Field: fe.Field(), Reason: reason}
}

func (h *handler) respondInputError(w http.ResponseWriter, err error, op string) {
	var inputErr *calculator.InvalidInputError
	if errors.As(err, &inputErr) {
		h.logger.Info("rejected calculation request",
			zap.String("op", op),
			zap.String("field", inputErr.Field),
			zap.String("reason", inputErr.Reason),
		)
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: inputErr.Error(), Field: inputErr.Field})
		return
	}
	h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("calculation request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	writeJSON(h.logger, w, status, payload)
}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to write JSON response", zap.Error(err))
	}
}
