package server

import (
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/accounting"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/logger"
	"github.com/simonvc/fiscaledger/internal/report"
)

// documentsRequest is the body shared by every endpoint that recomputes the
// ledger from a document set.
type documentsRequest struct {
	ledger.Documents
	PayrollDate ledger.Date     `json:"payroll_date"`
	Period      string          `json:"period,omitempty"`
	From        ledger.Date     `json:"from"`
	To          ledger.Date     `json:"to"`
	PriorCredit decimal.Decimal `json:"prior_credit"`
	Basis       string          `json:"basis,omitempty"`
}

func (s *Server) generate(r *http.Request, docs ledger.Documents, payrollDate ledger.Date) accounting.Result {
	g := accounting.NewGenerator(
		accounting.WithSchedule(s.schedule),
		accounting.WithLogger(logger.FromContext(r.Context())),
	)
	return g.Generate(accounting.InputFrom(docs, payrollDate))
}

// generateFor generates the ledger of a request. Payroll is dated fallback
// when the request carries no payroll date.
func (s *Server) generateFor(r *http.Request, req *documentsRequest, fallback ledger.Date) accounting.Result {
	date := req.PayrollDate
	if date.IsZero() {
		date = fallback
	}
	return s.generate(r, req.Documents, date)
}

// postedEntries is generateFor for the reports, which refuse partial results.
func (s *Server) postedEntries(w http.ResponseWriter, r *http.Request, req *documentsRequest, fallback ledger.Date) ([]ledger.Entry, bool) {
	res := s.generateFor(r, req, fallback)
	if len(res.Errors) > 0 {
		writeRecordErrors(w, res)
		return nil, false
	}
	return res.Entries, true
}

func parsePeriod(w http.ResponseWriter, key string) (ledger.Period, bool) {
	p, err := ledger.ParsePeriod(key)
	if err != nil {
		writeErr(w, err)
		return ledger.Period{}, false
	}
	return p, true
}

func (s *Server) getChart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.AllAccounts())
}

func (s *Server) getCategoryMappings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.CategoryMappings())
}

// generateLedger returns whatever could be posted along with the documents
// that were rejected.
func (s *Server) generateLedger(w http.ResponseWriter, r *http.Request) {
	var req documentsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res := s.generate(r, req.Documents, req.PayrollDate)
	if res.Entries == nil {
		res.Entries = []ledger.Entry{}
	}
	if res.Errors == nil {
		res.Errors = []accounting.RecordError{}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) trialBalance(w http.ResponseWriter, r *http.Request) {
	var req documentsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Period == "" {
		entries, ok := s.postedEntries(w, r, &req, ledger.Date{})
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, report.BuildTrialBalance(entries))
		return
	}

	p, ok := parsePeriod(w, req.Period)
	if !ok {
		return
	}
	entries, ok := s.postedEntries(w, r, &req, p.End)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.TrialBalanceFor(entries, p))
}
