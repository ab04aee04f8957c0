package server

import (
	"fmt"
	"net/http"

	"github.com/simonvc/fiscaledger/internal/declaration"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/logger"
)

// decodeDeclaration reads a documents request whose period is mandatory.
func decodeDeclaration(w http.ResponseWriter, r *http.Request) (documentsRequest, ledger.Period, bool) {
	var req documentsRequest
	if !decodeJSON(w, r, &req) {
		return req, ledger.Period{}, false
	}
	p, ok := parsePeriod(w, req.Period)
	return req, p, ok
}

func (s *Server) declareVAT(w http.ResponseWriter, r *http.Request) {
	req, p, ok := decodeDeclaration(w, r)
	if !ok {
		return
	}
	res := s.generateFor(r, &req, p.End)
	decl, err := declaration.VAT(res.Entries, p, req.PriorCredit, s.vatPolicy)
	if err != nil {
		writeErr(w, err)
		return
	}
	decl.Skipped = res.Errors
	writeJSON(w, http.StatusOK, decl)
}

func (s *Server) declareWithholding(w http.ResponseWriter, r *http.Request) {
	req, p, ok := decodeDeclaration(w, r)
	if !ok {
		return
	}
	decl, err := declaration.Withholding(req.Employees, req.Expenses, p, s.schedule)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decl)
}

func (s *Server) declareSocialSecurity(w http.ResponseWriter, r *http.Request) {
	req, p, ok := decodeDeclaration(w, r)
	if !ok {
		return
	}
	decl, err := declaration.SocialSecurity(req.Employees, p, s.schedule)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decl)
}

func (s *Server) declareCorporateTax(w http.ResponseWriter, r *http.Request) {
	req, p, ok := decodeDeclaration(w, r)
	if !ok {
		return
	}
	if p.Kind != ledger.PeriodYear {
		writeErr(w, fmt.Errorf("%w: corporate tax is declared per year, got %q", ledger.ErrInvalidPeriod, req.Period))
		return
	}
	res := s.generateFor(r, &req, p.End)
	decl := declaration.CorporateTax(res.Entries, req.Expenses, p.Start.Year(), s.corporate)
	decl.Skipped = res.Errors
	writeJSON(w, http.StatusOK, decl)
}

func (s *Server) clientStatement(w http.ResponseWriter, r *http.Request) {
	var req documentsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, declaration.Clients(req.Invoices))
}

func (s *Server) supplierStatement(w http.ResponseWriter, r *http.Request) {
	var req documentsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, declaration.Suppliers(req.Expenses, logger.FromContext(r.Context())))
}
