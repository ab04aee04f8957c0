package tax

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/money"
)

type MaritalStatus string

const (
	Single  MaritalStatus = "SINGLE"
	Married MaritalStatus = "MARRIED"
)

func ParseMaritalStatus(s string) (MaritalStatus, error) {
	switch MaritalStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case Single:
		return Single, nil
	case Married:
		return Married, nil
	default:
		return "", fmt.Errorf("invalid marital status %q", s)
	}
}

// Bracket is one step of the annual IRPP scale. A zero UpTo marks the
// final, unbounded bracket.
type Bracket struct {
	UpTo decimal.Decimal `json:"up_to" mapstructure:"up_to"`
	Rate decimal.Decimal `json:"rate" mapstructure:"rate"`
}

// Schedule carries every rate and constant the payroll computation needs.
type Schedule struct {
	EmployeeRate        decimal.Decimal `json:"employee_rate" mapstructure:"employee_rate"`
	EmployerBaseRate    decimal.Decimal `json:"employer_base_rate" mapstructure:"employer_base_rate"`
	TrainingLevyRate    decimal.Decimal `json:"training_levy_rate" mapstructure:"training_levy_rate"`
	HousingFundRate     decimal.Decimal `json:"housing_fund_rate" mapstructure:"housing_fund_rate"`
	WorkAccidentRate    decimal.Decimal `json:"work_accident_rate" mapstructure:"work_accident_rate"`
	ProfessionalRate    decimal.Decimal `json:"professional_rate" mapstructure:"professional_rate"`
	ProfessionalCeiling decimal.Decimal `json:"professional_ceiling" mapstructure:"professional_ceiling"`
	HeadOfHousehold     decimal.Decimal `json:"head_of_household" mapstructure:"head_of_household"`
	PerChild            decimal.Decimal `json:"per_child" mapstructure:"per_child"`
	MaxChildren         int             `json:"max_children" mapstructure:"max_children"`
	Brackets            []Bracket       `json:"brackets" mapstructure:"brackets"`
}

// DefaultSchedule returns the CNSS rates and IRPP scale in force.
func DefaultSchedule() Schedule {
	d := decimal.RequireFromString
	return Schedule{
		EmployeeRate:        d("9.18"),
		EmployerBaseRate:    d("16.57"),
		TrainingLevyRate:    d("1"),
		HousingFundRate:     d("1"),
		WorkAccidentRate:    d("0.5"),
		ProfessionalRate:    d("10"),
		ProfessionalCeiling: d("2000"),
		HeadOfHousehold:     d("300"),
		PerChild:            d("100"),
		MaxChildren:         4,
		Brackets: []Bracket{
			{UpTo: d("5000"), Rate: d("0")},
			{UpTo: d("20000"), Rate: d("26")},
			{UpTo: d("30000"), Rate: d("28")},
			{UpTo: d("50000"), Rate: d("32")},
			{UpTo: decimal.Zero, Rate: d("35")},
		},
	}
}

func (s Schedule) Validate() error {
	if len(s.Brackets) == 0 {
		return fmt.Errorf("payroll schedule: no IRPP brackets")
	}
	prev := decimal.Zero
	for i, b := range s.Brackets {
		last := i == len(s.Brackets)-1
		if b.Rate.IsNegative() || b.Rate.GreaterThan(hundred) {
			return fmt.Errorf("payroll schedule: bracket %d rate %s out of range", i, b.Rate)
		}
		if last {
			if !b.UpTo.IsZero() {
				return fmt.Errorf("payroll schedule: last bracket must be unbounded")
			}
			break
		}
		if !b.UpTo.GreaterThan(prev) {
			return fmt.Errorf("payroll schedule: bracket %d limit %s not ascending", i, b.UpTo)
		}
		prev = b.UpTo
	}
	for name, r := range map[string]decimal.Decimal{
		"employee":     s.EmployeeRate,
		"employer":     s.EmployerBaseRate,
		"training":     s.TrainingLevyRate,
		"housing":      s.HousingFundRate,
		"accident":     s.WorkAccidentRate,
		"professional": s.ProfessionalRate,
	} {
		if r.IsNegative() || r.GreaterThan(hundred) {
			return fmt.Errorf("payroll schedule: %s rate %s out of range", name, r)
		}
	}
	if s.MaxChildren < 0 {
		return fmt.Errorf("payroll schedule: negative max children")
	}
	return nil
}

type PayrollInput struct {
	BaseSalary    decimal.Decimal
	MaritalStatus MaritalStatus
	Children      int
	Bonus         decimal.Decimal
}

// EmployerContribution breaks down the employer-side social charges.
type EmployerContribution struct {
	Base         decimal.Decimal `json:"base"`
	TrainingLevy decimal.Decimal `json:"training_levy"`
	HousingFund  decimal.Decimal `json:"housing_fund"`
	WorkAccident decimal.Decimal `json:"work_accident"`
	Total        decimal.Decimal `json:"total"`
}

type Payroll struct {
	BaseSalary            decimal.Decimal      `json:"base_salary"`
	Bonus                 decimal.Decimal      `json:"bonus"`
	Gross                 decimal.Decimal      `json:"gross"`
	EmployeeContribution  decimal.Decimal      `json:"employee_contribution"`
	Employer              EmployerContribution `json:"employer"`
	AnnualTaxableBase     decimal.Decimal      `json:"annual_taxable_base"`
	ProfessionalDeduction decimal.Decimal      `json:"professional_deduction"`
	BracketTax            decimal.Decimal      `json:"bracket_tax"`
	FamilyDeductions      decimal.Decimal      `json:"family_deductions"`
	AnnualTax             decimal.Decimal      `json:"annual_tax"`
	MonthlyTax            decimal.Decimal      `json:"monthly_tax"`
	Net                   decimal.Decimal      `json:"net"`
	TotalEmployerCost     decimal.Decimal      `json:"total_employer_cost"`
}

// SocialContributions is the employee and employer CNSS due for the month.
func (p Payroll) SocialContributions() decimal.Decimal {
	return money.Round(p.EmployeeContribution.Add(p.Employer.Total))
}

var twelve = decimal.NewFromInt(12)

// ComputePayroll computes one month of payroll with the default schedule.
func ComputePayroll(in PayrollInput) Payroll {
	return DefaultSchedule().ComputePayroll(in)
}

func (s Schedule) ComputePayroll(in PayrollInput) Payroll {
	p := Payroll{
		BaseSalary: money.Round(in.BaseSalary),
		Bonus:      money.Round(in.Bonus),
	}
	p.Gross = money.Round(p.BaseSalary.Add(p.Bonus))
	p.EmployeeContribution = money.Percent(p.Gross, s.EmployeeRate)

	p.Employer.Base = money.Percent(p.Gross, s.EmployerBaseRate)
	p.Employer.TrainingLevy = money.Percent(p.Gross, s.TrainingLevyRate)
	p.Employer.HousingFund = money.Percent(p.Gross, s.HousingFundRate)
	p.Employer.WorkAccident = money.Percent(p.Gross, s.WorkAccidentRate)
	p.Employer.Total = money.Sum(p.Employer.Base, p.Employer.TrainingLevy, p.Employer.HousingFund, p.Employer.WorkAccident)

	annualBase := money.Round(p.Gross.Sub(p.EmployeeContribution).Mul(twelve))
	p.ProfessionalDeduction = decimal.Min(money.Percent(annualBase, s.ProfessionalRate), s.ProfessionalCeiling)
	p.AnnualTaxableBase = money.Max0(annualBase.Sub(p.ProfessionalDeduction))

	p.BracketTax = s.bracketTax(p.AnnualTaxableBase)
	p.FamilyDeductions = s.familyDeductions(in.MaritalStatus, in.Children)
	p.AnnualTax = money.Max0(p.BracketTax.Sub(p.FamilyDeductions))
	p.MonthlyTax = money.Round(p.AnnualTax.Div(twelve))

	p.Net = money.Round(p.Gross.Sub(p.EmployeeContribution).Sub(p.MonthlyTax))
	p.TotalEmployerCost = money.Round(p.Gross.Add(p.Employer.Total))
	return p
}

func (s Schedule) bracketTax(base decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	prev := decimal.Zero
	for _, b := range s.Brackets {
		limit := b.UpTo
		unbounded := limit.IsZero()
		if unbounded || base.LessThan(limit) {
			limit = base
		}
		if limit.GreaterThan(prev) {
			tax = tax.Add(money.Percent(limit.Sub(prev), b.Rate))
		}
		if unbounded || base.LessThanOrEqual(b.UpTo) {
			break
		}
		prev = b.UpTo
	}
	return money.Round(tax)
}

func (s Schedule) familyDeductions(status MaritalStatus, children int) decimal.Decimal {
	total := decimal.Zero
	if status == Married {
		total = total.Add(s.HeadOfHousehold)
	}
	if children > s.MaxChildren {
		children = s.MaxChildren
	}
	if children > 0 {
		total = total.Add(s.PerChild.Mul(decimal.NewFromInt(int64(children))))
	}
	return money.Round(total)
}
