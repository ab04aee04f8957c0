package tax

import (
	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/money"
)

const inverseIterations = 50

var inverseTolerance = decimal.RequireFromString("0.001")

// InverseResult is the gross package that yields a requested net salary.
type InverseResult struct {
	Payroll    Payroll         `json:"payroll"`
	TargetNet  decimal.Decimal `json:"target_net"`
	Iterations int             `json:"iterations"`
	Converged  bool            `json:"converged"`
}

// ComputePayrollFromTargetNet searches the gross salary that yields
// targetNet with the default schedule.
func ComputePayrollFromTargetNet(targetNet decimal.Decimal, status MaritalStatus, children int, netBonus decimal.Decimal) InverseResult {
	return DefaultSchedule().ComputePayrollFromTargetNet(targetNet, status, children, netBonus)
}

// ComputePayrollFromTargetNet bisects on gross salary over [net, 2·net].
// When netBonus is positive the bonus is grossed up separately: the base is
// solved for targetNet, the bonus is what the total gross needs on top.
// A search that runs out of iterations returns its closest estimate.
func (s Schedule) ComputePayrollFromTargetNet(targetNet decimal.Decimal, status MaritalStatus, children int, netBonus decimal.Decimal) InverseResult {
	targetNet = money.Round(targetNet)
	netBonus = money.Max0(money.Round(netBonus))

	base, iters, ok := s.solveGross(targetNet, status, children)
	gross := base
	if netBonus.IsPositive() {
		total, n, totalOK := s.solveGross(targetNet.Add(netBonus), status, children)
		iters += n
		ok = ok && totalOK
		gross = total
	}

	bonus := money.Max0(gross.Sub(base))
	p := s.ComputePayroll(PayrollInput{
		BaseSalary:    base,
		MaritalStatus: status,
		Children:      children,
		Bonus:         bonus,
	})
	return InverseResult{
		Payroll:    p,
		TargetNet:  money.Round(targetNet.Add(netBonus)),
		Iterations: iters,
		Converged:  ok,
	}
}

func (s Schedule) solveGross(target decimal.Decimal, status MaritalStatus, children int) (decimal.Decimal, int, bool) {
	if !target.IsPositive() {
		return decimal.Zero, 0, true
	}

	two := decimal.NewFromInt(2)
	lo, hi := target, target.Mul(two)
	best := target
	bestDiff := decimal.NewFromInt(-1)

	for i := 1; i <= inverseIterations; i++ {
		mid := lo.Add(hi).Div(two)
		gross := money.Round(mid)
		net := s.ComputePayroll(PayrollInput{BaseSalary: gross, MaritalStatus: status, Children: children}).Net

		diff := net.Sub(target).Abs()
		if bestDiff.IsNegative() || diff.LessThan(bestDiff) {
			best, bestDiff = gross, diff
		}
		if diff.LessThanOrEqual(inverseTolerance) {
			return gross, i, true
		}
		if net.LessThan(target) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return best, inverseIterations, false
}
