package ledger

// Role names the document amount a template leg posts.
type Role string

const (
	RoleTotalTTC        Role = "total_ttc"
	RoleTotalHT         Role = "total_ht"
	RoleVAT             Role = "vat"
	RoleStamp           Role = "stamp"
	RoleCost            Role = "cost"
	RoleRecoverableVAT  Role = "recoverable_vat"
	RoleGross           Role = "gross"
	RoleEmployerCharges Role = "employer_charges"
	RoleSocialCharges   Role = "social_contributions"
	RoleIncomeTax       Role = "income_tax"
	RoleNetSalary       Role = "net_salary"
)

// CategoryAccount stands in for the account mapped from the expense category.
const CategoryAccount = "*category"

// TemplateLeg defines one side of a posting template.
type TemplateLeg struct {
	Account string  `json:"account"`
	Role    Role    `json:"role"`
	IsDebit bool    `json:"is_debit"`
	RefType RefType `json:"ref_type,omitempty"` // overrides the template's reference type
}

// Template is the posting pattern for one kind of business document.
type Template struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Journal     JournalCode   `json:"journal"`
	RefType     RefType       `json:"ref_type"`
	Legs        []TemplateLeg `json:"legs"`
}

var InvoiceTemplate = Template{
	Name:        "Customer Invoice",
	Description: "A validated invoice. The client owes the TTC amount (debit), revenue, VAT and stamp duty are recognised (credit).",
	Journal:     JournalSales,
	RefType:     RefInvoice,
	Legs: []TemplateLeg{
		{Account: AccountClients, Role: RoleTotalTTC, IsDebit: true},
		{Account: AccountTransportRevenue, Role: RoleTotalHT},
		{Account: AccountVATCollected, Role: RoleVAT},
		{Account: AccountStampDuty, Role: RoleStamp},
	},
}

var ExpenseTemplate = Template{
	Name:        "Supplier Expense",
	Description: "A purchase. The category account carries the cost (debit), recoverable VAT goes to the state (debit), the supplier is owed TTC (credit).",
	Journal:     JournalPurchases,
	RefType:     RefExpense,
	Legs: []TemplateLeg{
		{Account: CategoryAccount, Role: RoleCost, IsDebit: true},
		{Account: AccountVATDeductible, Role: RoleRecoverableVAT, IsDebit: true},
		{Account: AccountSuppliers, Role: RoleTotalTTC},
	},
}

var PayrollTemplate = Template{
	Name:        "Monthly Payroll",
	Description: "One employee's month. Gross salary and employer charges are expensed (debit), CNSS, withheld IRPP and the net salary are owed (credit).",
	Journal:     JournalMiscellaneous,
	RefType:     RefPayroll,
	Legs: []TemplateLeg{
		{Account: AccountSalaries, Role: RoleGross, IsDebit: true},
		{Account: AccountEmployerCharges, Role: RoleEmployerCharges, IsDebit: true, RefType: RefSocialSecurity},
		{Account: AccountSocialSecurity, Role: RoleSocialCharges, RefType: RefSocialSecurity},
		{Account: AccountIncomeTaxWithheld, Role: RoleIncomeTax},
		{Account: AccountNetSalaryPayable, Role: RoleNetSalary},
	},
}

// Templates lists every posting pattern the generator applies.
var Templates = []Template{InvoiceTemplate, ExpenseTemplate, PayrollTemplate}
