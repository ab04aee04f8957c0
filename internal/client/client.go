package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/accounting"
	"github.com/simonvc/fiscaledger/internal/declaration"
	"github.com/simonvc/fiscaledger/internal/journal"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/report"
	"github.com/simonvc/fiscaledger/internal/vat"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// DocumentsRequest is the body of every endpoint that recomputes the ledger.
// Only the fields an endpoint reads need to be set.
type DocumentsRequest struct {
	ledger.Documents
	PayrollDate ledger.Date     `json:"payroll_date"`
	Period      string          `json:"period,omitempty"`
	From        ledger.Date     `json:"from"`
	To          ledger.Date     `json:"to"`
	PriorCredit decimal.Decimal `json:"prior_credit"`
	Basis       string          `json:"basis,omitempty"`
}

// APIError is a non-2xx response. Fields and Records carry the validation
// detail the server attached, if any.
type APIError struct {
	Status  int                      `json:"-"`
	Message string                   `json:"error"`
	Fields  []ledger.FieldError      `json:"fields,omitempty"`
	Records []accounting.RecordError `json:"records,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// Ping checks if the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "/api/v1/ping", nil)
}

func (c *Client) GetChart(ctx context.Context) ([]ledger.ChartEntry, error) {
	var result []ledger.ChartEntry
	if err := c.get(ctx, "/api/v1/chart", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetCategoryMappings(ctx context.Context) ([]ledger.CategoryMapping, error) {
	var result []ledger.CategoryMapping
	if err := c.get(ctx, "/api/v1/chart/categories", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GenerateLedger(ctx context.Context, req DocumentsRequest) (*accounting.Result, error) {
	var result accounting.Result
	if err := c.post(ctx, "/api/v1/ledger/generate", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) TrialBalance(ctx context.Context, req DocumentsRequest) (*report.TrialBalance, error) {
	var result report.TrialBalance
	if err := c.post(ctx, "/api/v1/ledger/trial-balance", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ReconcileVAT(ctx context.Context, req DocumentsRequest) (*vat.Reconciliation, error) {
	var result vat.Reconciliation
	if err := c.post(ctx, "/api/v1/vat/reconcile", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListVATJournal returns the whole journal when period is empty.
func (c *Client) ListVATJournal(ctx context.Context, period string) ([]journal.VATEntry, error) {
	params := url.Values{}
	if period != "" {
		params.Set("period", period)
	}
	var result []journal.VATEntry
	if err := c.get(ctx, "/api/v1/vat/journal?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) LogVAT(ctx context.Context, in journal.VATInput) (*journal.VATEntry, error) {
	var result journal.VATEntry
	if err := c.post(ctx, "/api/v1/vat/journal", in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ReconcileVATJournal(ctx context.Context, period string, priorCredit decimal.Decimal) (*vat.Reconciliation, error) {
	params := url.Values{}
	if !priorCredit.IsZero() {
		params.Set("prior_credit", priorCredit.String())
	}
	var result vat.Reconciliation
	path := "/api/v1/vat/journal/" + url.PathEscape(period) + "/reconcile?" + params.Encode()
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeclareVATJournal flags the period's journal rows as declared and returns
// how many changed.
func (c *Client) DeclareVATJournal(ctx context.Context, period string) (int, error) {
	var result struct {
		Declared int `json:"declared"`
	}
	if err := c.post(ctx, "/api/v1/vat/journal/"+url.PathEscape(period)+"/declare", nil, &result); err != nil {
		return 0, err
	}
	return result.Declared, nil
}

func (c *Client) DeclareVAT(ctx context.Context, req DocumentsRequest) (*declaration.VATDeclaration, error) {
	var result declaration.VATDeclaration
	if err := c.post(ctx, "/api/v1/declarations/vat", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeclareWithholding(ctx context.Context, req DocumentsRequest) (*declaration.WithholdingDeclaration, error) {
	var result declaration.WithholdingDeclaration
	if err := c.post(ctx, "/api/v1/declarations/withholding", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeclareSocialSecurity(ctx context.Context, req DocumentsRequest) (*declaration.SocialSecurityDeclaration, error) {
	var result declaration.SocialSecurityDeclaration
	if err := c.post(ctx, "/api/v1/declarations/social-security", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeclareCorporateTax(ctx context.Context, req DocumentsRequest) (*declaration.CorporateTaxDeclaration, error) {
	var result declaration.CorporateTaxDeclaration
	if err := c.post(ctx, "/api/v1/declarations/corporate-tax", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ClientStatement(ctx context.Context, req DocumentsRequest) (*declaration.ClientStatement, error) {
	var result declaration.ClientStatement
	if err := c.post(ctx, "/api/v1/declarations/clients", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SupplierStatement(ctx context.Context, req DocumentsRequest) (*declaration.SupplierStatement, error) {
	var result declaration.SupplierStatement
	if err := c.post(ctx, "/api/v1/declarations/suppliers", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ProfitAndLoss(ctx context.Context, req DocumentsRequest) (*report.ProfitAndLoss, error) {
	var result report.ProfitAndLoss
	if err := c.post(ctx, "/api/v1/reports/profit-and-loss", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CostCenters(ctx context.Context, period string) ([]report.CostCenter, error) {
	params := url.Values{}
	params.Set("period", period)
	var result []report.CostCenter
	if err := c.get(ctx, "/api/v1/reports/cost-centers?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

type CashFilter struct {
	VehicleID     string
	ReferenceType string
	Limit         int
	Offset        int
}

func (c *Client) ListCash(ctx context.Context, filter CashFilter) ([]journal.Transaction, error) {
	params := url.Values{}
	if filter.VehicleID != "" {
		params.Set("vehicle_id", filter.VehicleID)
	}
	if filter.ReferenceType != "" {
		params.Set("reference_type", filter.ReferenceType)
	}
	if filter.Limit > 0 {
		params.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		params.Set("offset", strconv.Itoa(filter.Offset))
	}
	var result []journal.Transaction
	if err := c.get(ctx, "/api/v1/cash?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) RecordCash(ctx context.Context, in journal.TransactionInput) (*journal.Transaction, error) {
	var result journal.Transaction
	if err := c.post(ctx, "/api/v1/cash", in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ResetAccountingData empties the cash ledger and the VAT journal.
func (c *Client) ResetAccountingData(ctx context.Context) error {
	return c.del(ctx, "/api/v1/accounting-data")
}

func (c *Client) InvoiceValidated(ctx context.Context, inv ledger.Invoice) (*journal.Recorded, error) {
	return c.event(ctx, "invoices/validated", map[string]any{"invoice": inv})
}

func (c *Client) InvoicePaid(ctx context.Context, inv ledger.Invoice, paidOn ledger.Date) (*journal.Recorded, error) {
	return c.event(ctx, "invoices/paid", map[string]any{"invoice": inv, "paid_on": paidOn})
}

func (c *Client) ExpenseValidated(ctx context.Context, exp ledger.Expense) (*journal.Recorded, error) {
	return c.event(ctx, "expenses/validated", map[string]any{"expense": exp})
}

func (c *Client) ExpensePaid(ctx context.Context, exp ledger.Expense, paidOn ledger.Date) (*journal.Recorded, error) {
	return c.event(ctx, "expenses/paid", map[string]any{"expense": exp, "paid_on": paidOn})
}

func (c *Client) SalaryPaid(ctx context.Context, emp ledger.Employee, paidOn ledger.Date) (*journal.Recorded, error) {
	return c.event(ctx, "salaries/paid", map[string]any{"employee": emp, "paid_on": paidOn})
}

func (c *Client) event(ctx context.Context, name string, body any) (*journal.Recorded, error) {
	var result journal.Recorded
	if err := c.post(ctx, "/api/v1/events/"+name, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListPeriods(ctx context.Context) ([]ledger.FiscalPeriod, error) {
	var result []ledger.FiscalPeriod
	if err := c.get(ctx, "/api/v1/periods", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetPeriod(ctx context.Context, year int) (*ledger.FiscalPeriod, error) {
	var result ledger.FiscalPeriod
	if err := c.get(ctx, "/api/v1/periods/"+strconv.Itoa(year), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ClosePeriod(ctx context.Context, year int, closedBy string) (*ledger.FiscalPeriod, error) {
	body := map[string]any{"closed_by": closedBy}
	var result ledger.FiscalPeriod
	if err := c.post(ctx, "/api/v1/periods/"+strconv.Itoa(year)+"/close", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, result)
}

func (c *Client) del(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, nil)
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doRequest(req, result)
}

func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(bodyBytes, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = string(bodyBytes)
		}
		return apiErr
	}

	if result != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
