// Package config loads fiscaledger settings from an optional YAML file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/declaration"
	"github.com/simonvc/fiscaledger/internal/logger"
	"github.com/simonvc/fiscaledger/internal/tax"
	"github.com/simonvc/fiscaledger/internal/vat"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "FISCALEDGER"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      logger.Config  `mapstructure:"log"`
	Tax      TaxConfig      `mapstructure:"tax"`
}

// ServerConfig holds the listen address of `serve` and the base URL the
// CLI client talks to.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	URL  string `mapstructure:"url"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// TaxConfig overrides the statutory rates. Every field defaults to the
// values in force.
type TaxConfig struct {
	Payroll   tax.Schedule                `mapstructure:"payroll"`
	VAT       vat.Policy                  `mapstructure:"vat"`
	Corporate declaration.CorporatePolicy `mapstructure:"corporate"`
}

type Option func(*viper.Viper) error

// BindFlag lets a command-line flag override key when the flag was set.
func BindFlag(key string, f *pflag.Flag) Option {
	return func(v *viper.Viper) error {
		if f == nil {
			return nil
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
		return nil
	}
}

// Load reads path when given, otherwise looks for fiscaledger.yaml in the
// working directory and ~/.config/fiscaledger. A missing default file is
// not an error; a missing explicit one is.
func Load(path string, opts ...Option) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("fiscaledger")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/fiscaledger")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		decimalHook,
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration Load produces with no file, environment
// or flags.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8888", URL: "http://localhost:8888"},
		Database: DatabaseConfig{Path: "ledger.db"},
		Log:      logger.DefaultConfig(),
		Tax: TaxConfig{
			Payroll:   tax.DefaultSchedule(),
			VAT:       vat.DefaultPolicy(),
			Corporate: declaration.DefaultCorporatePolicy(),
		},
	}
}

func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.url", def.Server.URL)
	v.SetDefault("database.path", def.Database.Path)

	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.output", def.Log.Output)
	v.SetDefault("log.time_format", def.Log.TimeFormat)

	p := def.Tax.Payroll
	v.SetDefault("tax.payroll.employee_rate", p.EmployeeRate.String())
	v.SetDefault("tax.payroll.employer_base_rate", p.EmployerBaseRate.String())
	v.SetDefault("tax.payroll.training_levy_rate", p.TrainingLevyRate.String())
	v.SetDefault("tax.payroll.housing_fund_rate", p.HousingFundRate.String())
	v.SetDefault("tax.payroll.work_accident_rate", p.WorkAccidentRate.String())
	v.SetDefault("tax.payroll.professional_rate", p.ProfessionalRate.String())
	v.SetDefault("tax.payroll.professional_ceiling", p.ProfessionalCeiling.String())
	v.SetDefault("tax.payroll.head_of_household", p.HeadOfHousehold.String())
	v.SetDefault("tax.payroll.per_child", p.PerChild.String())
	v.SetDefault("tax.payroll.max_children", p.MaxChildren)
	brackets := make([]map[string]any, 0, len(p.Brackets))
	for _, b := range p.Brackets {
		brackets = append(brackets, map[string]any{"up_to": b.UpTo.String(), "rate": b.Rate.String()})
	}
	v.SetDefault("tax.payroll.brackets", brackets)

	v.SetDefault("tax.vat.high_payable_threshold", def.Tax.VAT.HighPayableThreshold.String())
	v.SetDefault("tax.vat.large_credit_threshold", def.Tax.VAT.LargeCreditThreshold.String())

	v.SetDefault("tax.corporate.rate", def.Tax.Corporate.Rate.String())
	v.SetDefault("tax.corporate.non_deductible_categories", []string{})
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalHook decodes YAML numbers and strings into decimal.Decimal.
func decimalHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch x := data.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(strings.TrimSpace(x))
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case decimal.Decimal:
		return x, nil
	}
	return nil, fmt.Errorf("cannot decode %s into a decimal", from)
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.URL == "" {
		return errors.New("server.url is required")
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Tax.Payroll.Validate(); err != nil {
		return err
	}
	if c.Tax.VAT.HighPayableThreshold.IsNegative() {
		return errors.New("tax.vat.high_payable_threshold must not be negative")
	}
	if c.Tax.VAT.LargeCreditThreshold.IsPositive() {
		return errors.New("tax.vat.large_credit_threshold must not be positive")
	}
	if r := c.Tax.Corporate.Rate; r.IsNegative() || r.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("tax.corporate.rate %s out of range", r)
	}
	return nil
}
