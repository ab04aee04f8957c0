package declaration

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/accounting"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/money"
	"github.com/simonvc/fiscaledger/internal/tax"
)

type SocialSecurityLine struct {
	EmployeeID   string          `json:"employee_id"`
	Name         string          `json:"name"`
	GrossSalary  decimal.Decimal `json:"gross_salary"`
	EmployeePart decimal.Decimal `json:"employee_part"`
	EmployerPart decimal.Decimal `json:"employer_part"`
	Total        decimal.Decimal `json:"total"`
}

type SocialSecurityDeclaration struct {
	Period       string               `json:"period"`
	Employees    []SocialSecurityLine `json:"employees"`
	GrossSalary  decimal.Decimal      `json:"gross_salary"`
	EmployeePart decimal.Decimal      `json:"employee_part"`
	EmployerPart decimal.Decimal      `json:"employer_part"`
	TotalDue     decimal.Decimal      `json:"total_due"`

	Skipped []accounting.RecordError `json:"skipped,omitempty"`
}

// SocialSecurity builds the quarterly CNSS return. Each month of the quarter
// is assumed to carry the same payroll.
func SocialSecurity(employees []ledger.Employee, quarter ledger.Period, schedule tax.Schedule) (SocialSecurityDeclaration, error) {
	if quarter.Kind != ledger.PeriodQuarter {
		return SocialSecurityDeclaration{}, fmt.Errorf("cnss return needs a quarter, got %q: %w", quarter.Key, ledger.ErrInvalidPeriod)
	}
	months := decimal.NewFromInt(int64(quarter.Months()))

	out := SocialSecurityDeclaration{
		Period:       quarter.Key,
		Employees:    []SocialSecurityLine{},
		GrossSalary:  decimal.Zero,
		EmployeePart: decimal.Zero,
		EmployerPart: decimal.Zero,
		TotalDue:     decimal.Zero,
	}
	for _, emp := range employees {
		if err := emp.Validate(); err != nil {
			out.Skipped = append(out.Skipped, accounting.NewRecordError(ledger.RefEmployee, emp.ID, err))
			continue
		}
		p := schedule.ComputePayroll(emp.PayrollInput())
		line := SocialSecurityLine{
			EmployeeID:   emp.ID,
			Name:         emp.Name,
			GrossSalary:  money.Round(p.Gross.Mul(months)),
			EmployeePart: money.Round(p.EmployeeContribution.Mul(months)),
			EmployerPart: money.Round(p.Employer.Total.Mul(months)),
		}
		line.Total = money.Sum(line.EmployeePart, line.EmployerPart)
		out.Employees = append(out.Employees, line)

		out.GrossSalary = out.GrossSalary.Add(line.GrossSalary)
		out.EmployeePart = out.EmployeePart.Add(line.EmployeePart)
		out.EmployerPart = out.EmployerPart.Add(line.EmployerPart)
		out.TotalDue = out.TotalDue.Add(line.Total)
	}
	return out, nil
}
