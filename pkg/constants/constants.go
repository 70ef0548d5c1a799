// Package constants provides shared constants for the loan-calculator application.
package constants

// DateLayout is the format used for installment due dates in reports and
// API responses.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// DecimalPlaces is the number of decimals used when displaying currency
	DecimalPlaces = 2

	// InternalPrecision is the number of decimals retained by divisions in
	// the annuity math before any display rounding happens
	InternalPrecision = 16

	// CurrencySymbol is the suffix used for Bolivianos
	CurrencySymbol = "Bs"
)

// Lending policy defaults. These are used when the configuration file does
// not provide a policy section.
const (
	// DefaultCapacityFraction is the share of monthly income a client may
	// commit to a single installment
	DefaultCapacityFraction = "0.30"

	// DefaultMonthlyInterestRate is the nominal monthly rate, in percent
	DefaultMonthlyInterestRate = "1.5"

	// DefaultTermMonths is the loan term in months
	DefaultTermMonths = 24

	// CapacityWarningFraction is the capacity above which configuration
	// validation emits a warning
	CapacityWarningFraction = "0.50"

	// MaxTermMonths bounds configured terms
	MaxTermMonths = 360
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Installment status values, matching the back office plan model.
const (
	StatusPending = "Pendiente"
	StatusOverdue = "Vencida"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultRateLimitPerSecond is the default sustained request rate per client
	DefaultRateLimitPerSecond = 5.0

	// DefaultRateLimitBurst is the default burst size per client
	DefaultRateLimitBurst = 10
)
