// Package calculator estimates how much a client can borrow from their
// declared monthly income under a fixed lending policy.
//
// The calculation is pure: it performs no I/O, holds no mutable state and
// returns the same Result for the same inputs, so a Calculator may be shared
// freely between goroutines.
package calculator

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Policy holds the lending constants applied to every calculation.
type Policy struct {
	// CapacityFraction is the share of monthly income available for one
	// installment, in (0, 1].
	CapacityFraction decimal.Decimal `json:"capacidad"`
	// MonthlyInterestRate is the nominal monthly rate in percent.
	MonthlyInterestRate decimal.Decimal `json:"interes"`
	// TermMonths is the loan term.
	TermMonths int `json:"plazo"`
}

// DefaultPolicy returns the policy used when none is configured: 30% of
// income, 1.5% monthly, 24 months.
func DefaultPolicy() Policy {
	return Policy{
		CapacityFraction:    decimal.RequireFromString(constants.DefaultCapacityFraction),
		MonthlyInterestRate: decimal.RequireFromString(constants.DefaultMonthlyInterestRate),
		TermMonths:          constants.DefaultTermMonths,
	}
}

// Validate checks that the policy can produce results satisfying
// MaxInstallment <= MonthlyIncome and TotalAmount >= MaxAmount.
func (p Policy) Validate() error {
	if !p.CapacityFraction.IsPositive() || p.CapacityFraction.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("capacity fraction must be in (0, 1], got %s", p.CapacityFraction)
	}
	if p.MonthlyInterestRate.IsNegative() {
		return fmt.Errorf("monthly interest rate must not be negative, got %s", p.MonthlyInterestRate)
	}
	if p.TermMonths <= 0 || p.TermMonths > constants.MaxTermMonths {
		return fmt.Errorf("term must be between 1 and %d months, got %d", constants.MaxTermMonths, p.TermMonths)
	}
	return nil
}

// Result is the outcome of one affordability calculation. Currency fields
// keep full precision; use Rounded for display.
type Result struct {
	Client         string          `json:"cliente"`
	MonthlyIncome  decimal.Decimal `json:"ingresoMensual"`
	MaxInstallment decimal.Decimal `json:"cuotaMaxima"`
	InterestRate   decimal.Decimal `json:"interes"`
	TermMonths     int             `json:"plazo"`
	MaxAmount      decimal.Decimal `json:"montoMaximo"`
	TotalAmount    decimal.Decimal `json:"montoTotal"`
}

// Rounded returns a copy with every currency field rounded to cents.
func (r Result) Rounded() Result {
	r.MonthlyIncome = mathutil.Round(r.MonthlyIncome)
	r.MaxInstallment = mathutil.Round(r.MaxInstallment)
	r.MaxAmount = mathutil.Round(r.MaxAmount)
	r.TotalAmount = mathutil.Round(r.TotalAmount)
	return r
}

// TotalInterest is the nominal interest paid over the term.
func (r Result) TotalInterest() decimal.Decimal {
	return r.TotalAmount.Sub(r.MaxAmount)
}

// Calculator applies one Policy. Build it with New.
type Calculator struct {
	policy Policy
}

// New returns a Calculator for the given policy.
func New(policy Policy) (*Calculator, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	return &Calculator{policy: policy}, nil
}

// Policy returns the policy the calculator was built with.
func (c *Calculator) Policy() Policy {
	return c.policy
}

// Calculate computes the maximum installment, principal and total repayment
// for a client. It returns an *InvalidInputError when income is not positive
// or the client name is blank.
func (c *Calculator) Calculate(monthlyIncome decimal.Decimal, client string) (Result, error) {
	name := strings.TrimSpace(client)
	if name == "" {
		return Result{}, &InvalidInputError{Field: FieldClient, Reason: "client name must not be blank"}
	}
	if !monthlyIncome.IsPositive() {
		return Result{}, &InvalidInputError{
			Field:  FieldMonthlyIncome,
			Reason: fmt.Sprintf("monthly income must be positive, got %s", monthlyIncome),
		}
	}

	installment := monthlyIncome.Mul(c.policy.CapacityFraction)

	return Result{
		Client:         name,
		MonthlyIncome:  monthlyIncome,
		MaxInstallment: installment,
		InterestRate:   c.policy.MonthlyInterestRate,
		TermMonths:     c.policy.TermMonths,
		MaxAmount:      loans.MaxPrincipal(installment, c.policy.MonthlyInterestRate, c.policy.TermMonths),
		TotalAmount:    loans.TotalPayments(installment, c.policy.TermMonths),
	}, nil
}

// Schedule builds the payment plan that repays result.MaxAmount, with the
// first installment due one month after start.
func (c *Calculator) Schedule(logger *zap.Logger, result Result, start time.Time) ([]loans.Installment, error) {
	return loans.NewScheduleGenerator(logger).GenerateSchedule(loans.LoanConfig{
		Name:                result.Client,
		Principal:           result.MaxAmount,
		MonthlyInterestRate: result.InterestRate,
		Term:                result.TermMonths,
		StartDate:           start,
	})
}
