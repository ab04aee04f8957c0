package ledger

import (
	"sort"
	"strings"
)

// ChartEntry is one account of the Tunisian system of accounts.
type ChartEntry struct {
	Code        string      `json:"code"`
	Label       string      `json:"label"`
	Type        AccountType `json:"type"`
	Description string      `json:"description,omitempty"`
}

// Account codes the generator and the declarations post to or read from.
const (
	AccountCapital             = "101"
	AccountSuppliers           = "401"
	AccountClients             = "411"
	AccountNetSalaryPayable    = "421"
	AccountIncomeTaxWithheld   = "4353"
	AccountVATDeductible       = "4365"
	AccountVATCollected        = "4366"
	AccountStampDuty           = "4367"
	AccountCorporateTax        = "434"
	AccountSocialSecurity      = "453"
	AccountBank                = "532"
	AccountCash                = "54"
	AccountSpareParts          = "6025"
	AccountFuel                = "6022"
	AccountOfficeSupplies      = "6064"
	AccountOtherPurchases      = "6068"
	AccountMaintenance         = "6155"
	AccountInsurance           = "616"
	AccountTolls               = "6251"
	AccountSalaries            = "640"
	AccountEmployerCharges     = "647"
	AccountTaxesAndDuties      = "661"
	AccountOtherOperatingCosts = "6588"
	AccountTransportRevenue    = "706"
)

var Chart = []ChartEntry{
	// Class 1: equity
	{Code: AccountCapital, Label: "Capital social", Type: TypeEquity, Description: "Owner capital contributions"},

	// Class 4: third parties
	{Code: AccountSuppliers, Label: "Fournisseurs", Type: TypeLiability, Description: "Amounts owed to suppliers"},
	{Code: AccountClients, Label: "Clients", Type: TypeAsset, Description: "Amounts owed by customers"},
	{Code: AccountNetSalaryPayable, Label: "Personnel, rémunérations dues", Type: TypeLiability, Description: "Net salaries to be paid"},
	{Code: AccountIncomeTaxWithheld, Label: "État, retenues à la source", Type: TypeLiability, Description: "IRPP withheld on salaries"},
	{Code: AccountVATDeductible, Label: "État, TVA déductible", Type: TypeAsset, Description: "VAT recoverable on purchases"},
	{Code: AccountVATCollected, Label: "État, TVA collectée", Type: TypeLiability, Description: "VAT charged on sales"},
	{Code: AccountStampDuty, Label: "État, droit de timbre", Type: TypeLiability, Description: "Stamp duty collected on invoices"},
	{Code: AccountCorporateTax, Label: "État, impôt sur les sociétés", Type: TypeLiability, Description: "Corporate income tax due"},
	{Code: AccountSocialSecurity, Label: "CNSS", Type: TypeLiability, Description: "Employee and employer social contributions due"},

	// Class 5: financial
	{Code: AccountBank, Label: "Banques", Type: TypeAsset},
	{Code: AccountCash, Label: "Caisse", Type: TypeAsset},

	// Class 6: expenses
	{Code: AccountFuel, Label: "Achats de carburant", Type: TypeExpense},
	{Code: AccountSpareParts, Label: "Pièces de rechange", Type: TypeExpense},
	{Code: AccountOfficeSupplies, Label: "Fournitures de bureau", Type: TypeExpense},
	{Code: AccountOtherPurchases, Label: "Autres achats non stockés", Type: TypeExpense, Description: "Fallback for unmapped expense categories"},
	{Code: AccountMaintenance, Label: "Entretien et réparations", Type: TypeExpense},
	{Code: AccountInsurance, Label: "Primes d'assurance", Type: TypeExpense},
	{Code: AccountTolls, Label: "Péages et frais de route", Type: TypeExpense},
	{Code: AccountSalaries, Label: "Salaires et compléments", Type: TypeExpense},
	{Code: AccountEmployerCharges, Label: "Charges sociales patronales", Type: TypeExpense},
	{Code: AccountTaxesAndDuties, Label: "Impôts et taxes", Type: TypeExpense},
	{Code: AccountOtherOperatingCosts, Label: "Autres charges ordinaires", Type: TypeExpense, Description: "Personal and miscellaneous charges"},

	// Class 7: revenue
	{Code: AccountTransportRevenue, Label: "Prestations de services", Type: TypeRevenue, Description: "Transport and logistics services"},
}

var chartIndex = func() map[string]int {
	idx := make(map[string]int, len(Chart))
	for i, e := range Chart {
		idx[e.Code] = i
	}
	return idx
}()

// LookupAccount finds a chart entry by code.
func LookupAccount(code string) *ChartEntry {
	i, ok := chartIndex[strings.TrimSpace(code)]
	if !ok {
		return nil
	}
	e := Chart[i]
	return &e
}

// Label returns the chart label for code, or the code itself when unknown.
func Label(code string) string {
	if e := LookupAccount(code); e != nil {
		return e.Label
	}
	return code
}

// AllAccounts returns the chart sorted by code.
func AllAccounts() []ChartEntry {
	all := make([]ChartEntry, len(Chart))
	copy(all, Chart)
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return all
}

// categoryAccounts maps expense categories onto purchase accounts.
var categoryAccounts = map[ExpenseCategory]string{
	CategoryFuel:        AccountFuel,
	CategoryMaintenance: AccountMaintenance,
	CategorySpareParts:  AccountSpareParts,
	CategoryTolls:       AccountTolls,
	CategoryInsurance:   AccountInsurance,
	CategoryTaxes:       AccountTaxesAndDuties,
	CategorySalary:      AccountSalaries,
	CategoryOffice:      AccountOfficeSupplies,
	CategoryPersonal:    AccountOtherOperatingCosts,
	CategoryOther:       AccountOtherPurchases,
}

// AccountForCategory maps an expense category to its purchase account.
// Unknown categories post to the generic other-purchases account.
func AccountForCategory(cat ExpenseCategory) string {
	if code, ok := categoryAccounts[cat]; ok {
		return code
	}
	return AccountOtherPurchases
}

// CategoryMapping is one row of the category to account table.
type CategoryMapping struct {
	Category ExpenseCategory `json:"category"`
	Account  string          `json:"account"`
	Label    string          `json:"label"`
}

func CategoryMappings() []CategoryMapping {
	out := make([]CategoryMapping, 0, len(AllExpenseCategories))
	for _, c := range AllExpenseCategories {
		code := AccountForCategory(c)
		out = append(out, CategoryMapping{Category: c, Account: code, Label: Label(code)})
	}
	return out
}
