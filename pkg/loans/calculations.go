// Package loans provides fixed-installment (annuity) loan math and payment
// plan generation.
package loans

import (
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/datetime"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var one = decimal.NewFromInt(1)

// MaxPrincipal inverts the annuity formula: it returns the largest principal
// that a fixed installment repays over termMonths at the given monthly rate
// (in percent). A zero rate degrades to installment * termMonths.
func MaxPrincipal(installment, monthlyRatePercent decimal.Decimal, termMonths int) decimal.Decimal {
	n := decimal.NewFromInt(int64(termMonths))
	r := mathutil.PercentToRate(monthlyRatePercent)
	if r.IsZero() {
		return installment.Mul(n)
	}

	growth := mathutil.PowInt(one.Add(r), termMonths)
	// installment * (1 - (1+r)^-n) / r == installment * ((1+r)^n - 1) / ((1+r)^n * r)
	return mathutil.Div(installment.Mul(growth.Sub(one)), growth.Mul(r))
}

// MonthlyPayment calculates the fixed installment that repays principal over
// termMonths at the given monthly rate (in percent).
func MonthlyPayment(principal, monthlyRatePercent decimal.Decimal, termMonths int) decimal.Decimal {
	r := mathutil.PercentToRate(monthlyRatePercent)
	if r.IsZero() {
		return mathutil.Div(principal, decimal.NewFromInt(int64(termMonths)))
	}

	growth := mathutil.PowInt(one.Add(r), termMonths)
	return mathutil.Div(principal.Mul(r).Mul(growth), growth.Sub(one))
}

// TotalPayments is the nominal sum of termMonths equal installments.
func TotalPayments(installment decimal.Decimal, termMonths int) decimal.Decimal {
	return installment.Mul(decimal.NewFromInt(int64(termMonths)))
}

// InterestPayment calculates the interest accrued on a balance for one month.
func InterestPayment(balance, monthlyRatePercent decimal.Decimal) decimal.Decimal {
	return balance.Mul(mathutil.PercentToRate(monthlyRatePercent))
}

// Installment is one row of a payment plan.
type Installment struct {
	Number    int             `json:"numero"`
	DueDate   time.Time       `json:"fechaVencimiento"`
	Payment   decimal.Decimal `json:"montoCuota"`
	Interest  decimal.Decimal `json:"interes"`
	Principal decimal.Decimal `json:"capital"`
	Remaining decimal.Decimal `json:"saldo"`
	Status    string          `json:"estado"`
}

// LoanConfig represents the parameters of a payment plan.
type LoanConfig struct {
	Name                string
	Principal           decimal.Decimal
	MonthlyInterestRate decimal.Decimal // percent
	Term                int             // months
	StartDate           time.Time
}

// ErrInvalidLoan is returned for loans that cannot be amortized.
var ErrInvalidLoan = errors.New("invalid loan")

// Validate checks that the loan can be amortized.
func (l LoanConfig) Validate() error {
	if l.Term <= 0 {
		return fmt.Errorf("%w: term must be positive, got %d", ErrInvalidLoan, l.Term)
	}
	if !l.Principal.IsPositive() {
		return fmt.Errorf("%w: principal must be positive, got %s", ErrInvalidLoan, l.Principal)
	}
	if l.MonthlyInterestRate.IsNegative() {
		return fmt.Errorf("%w: interest rate must not be negative, got %s", ErrInvalidLoan, l.MonthlyInterestRate)
	}
	return nil
}

// ScheduleGenerator provides utilities for generating payment plans
type ScheduleGenerator struct {
	logger *zap.Logger
}

// NewScheduleGenerator creates a new generator instance
func NewScheduleGenerator(logger *zap.Logger) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGenerator{logger: logger}
}

// GenerateSchedule creates the complete payment plan for a loan. Amounts are
// rounded to cents per installment and the final installment absorbs the
// rounding residue, so the last remaining balance is exactly zero.
func (g *ScheduleGenerator) GenerateSchedule(loan LoanConfig) ([]Installment, error) {
	if err := loan.Validate(); err != nil {
		return nil, err
	}

	payment := mathutil.Round(MonthlyPayment(loan.Principal, loan.MonthlyInterestRate, loan.Term))
	balance := mathutil.Round(loan.Principal)
	dueDates := datetime.DueDates(loan.StartDate, loan.Term)

	schedule := make([]Installment, 0, loan.Term)
	for month := 1; month <= loan.Term; month++ {
		interest := mathutil.Round(InterestPayment(balance, loan.MonthlyInterestRate))
		principal := payment.Sub(interest)
		current := payment

		if month == loan.Term || principal.GreaterThan(balance) {
			principal = balance
			current = principal.Add(interest)
		}
		balance = balance.Sub(principal)

		schedule = append(schedule, Installment{
			Number:    month,
			DueDate:   dueDates[month-1],
			Payment:   current,
			Interest:  interest,
			Principal: principal,
			Remaining: balance,
			Status:    constants.StatusPending,
		})

		if balance.IsZero() {
			break
		}
	}

	g.logger.Debug(fmt.Sprintf("generated payment plan for %s with %d installments", loan.Name, len(schedule)),
		zap.String("op", "loans.GenerateSchedule"),
		zap.String("principal", loan.Principal.StringFixed(constants.DecimalPlaces)),
		zap.String("payment", payment.StringFixed(constants.DecimalPlaces)),
	)

	return schedule, nil
}

// Totals sums the payments and interest of a payment plan.
func Totals(schedule []Installment) (paid, interest decimal.Decimal) {
	paid, interest = decimal.Zero, decimal.Zero
	for _, inst := range schedule {
		paid = paid.Add(inst.Payment)
		interest = interest.Add(inst.Interest)
	}
	return paid, interest
}

// MarkOverdue returns a copy of the schedule where pending installments due
// before now are flagged as overdue.
func MarkOverdue(schedule []Installment, now time.Time) []Installment {
	marked := make([]Installment, len(schedule))
	copy(marked, schedule)
	for i := range marked {
		if marked[i].Status == constants.StatusPending && datetime.IsOverdue(marked[i].DueDate, now) {
			marked[i].Status = constants.StatusOverdue
		}
	}
	return marked
}
