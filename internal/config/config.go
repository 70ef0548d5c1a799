// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for loan-calculator.
type Configuration struct {
	Policy  PolicyConfig  `yaml:"policy"`
	Report  ReportConfig  `yaml:"report,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
}

// PolicyConfig holds the lending constants. Rates are kept as strings so
// they reach the calculator as exact decimals.
type PolicyConfig struct {
	CapacityFraction    string `yaml:"capacityFraction" mapstructure:"capacityFraction"`
	MonthlyInterestRate string `yaml:"monthlyInterestRate" mapstructure:"monthlyInterestRate"`
	TermMonths          int    `yaml:"termMonths" mapstructure:"termMonths"`
}

// ReportConfig holds options for generated documents.
type ReportConfig struct {
	Institution     string `yaml:"institution,omitempty" mapstructure:"institution"`
	IncludeSchedule bool   `yaml:"includeSchedule,omitempty" mapstructure:"includeSchedule"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`                                  // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`                                 // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

// Default returns the configuration used when no file is given.
func Default() *Configuration {
	conf, err := decode(newViper())
	if err != nil {
		panic(fmt.Sprintf("default configuration does not decode: %v", err))
	}
	return conf
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix("LOANCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("policy.capacityFraction", constants.DefaultCapacityFraction)
	v.SetDefault("policy.monthlyInterestRate", constants.DefaultMonthlyInterestRate)
	v.SetDefault("policy.termMonths", constants.DefaultTermMonths)
	v.SetDefault("output.format", constants.OutputFormatPretty)

	// AutomaticEnv only reaches keys viper already knows about.
	v.SetDefault("report.institution", "")
	v.SetDefault("report.includeSchedule", false)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// CalculatorPolicy converts the configured policy into a calculator.Policy.
func (conf *Configuration) CalculatorPolicy() (calculator.Policy, error) {
	fraction, err := decimal.NewFromString(conf.Policy.CapacityFraction)
	if err != nil {
		return calculator.Policy{}, fmt.Errorf("invalid policy.capacityFraction %q: %w", conf.Policy.CapacityFraction, err)
	}
	rate, err := decimal.NewFromString(conf.Policy.MonthlyInterestRate)
	if err != nil {
		return calculator.Policy{}, fmt.Errorf("invalid policy.monthlyInterestRate %q: %w", conf.Policy.MonthlyInterestRate, err)
	}

	policy := calculator.Policy{
		CapacityFraction:    fraction,
		MonthlyInterestRate: rate,
		TermMonths:          conf.Policy.TermMonths,
	}
	if err := policy.Validate(); err != nil {
		return calculator.Policy{}, err
	}
	return policy, nil
}

// NewCalculator builds a calculator from the configured policy.
func (conf *Configuration) NewCalculator() (*calculator.Calculator, error) {
	policy, err := conf.CalculatorPolicy()
	if err != nil {
		return nil, err
	}
	return calculator.New(policy)
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Hard errors surface from CalculatorPolicy instead.
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string

	policy, err := conf.CalculatorPolicy()
	if err == nil {
		warnings = append(warnings, validation.PolicyWarnings(
			policy.CapacityFraction, policy.MonthlyInterestRate, policy.TermMonths)...)
	}

	if conf.Output.Format != "" {
		if err := validation.ValidateOutputFormat(conf.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}

	return warnings
}
