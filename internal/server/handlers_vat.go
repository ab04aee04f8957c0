package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/simonvc/fiscaledger/internal/journal"
	"github.com/simonvc/fiscaledger/internal/ledger"
	"github.com/simonvc/fiscaledger/internal/money"
)

// reconcileVAT works from generated entries, over either a period key or an
// explicit from/to range.
func (s *Server) reconcileVAT(w http.ResponseWriter, r *http.Request) {
	var req documentsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var p ledger.Period
	if req.Period != "" {
		var ok bool
		if p, ok = parsePeriod(w, req.Period); !ok {
			return
		}
	} else {
		var err error
		if p, err = ledger.RangePeriod(req.From, req.To); err != nil {
			writeErr(w, err)
			return
		}
	}

	entries, ok := s.postedEntries(w, r, &req, p.End)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.vatPolicy.FromPeriod(entries, p, req.PriorCredit))
}

// monthKey accepts only YYYY-MM, the granularity of the VAT journal.
func monthKey(w http.ResponseWriter, key string) (string, bool) {
	p, err := ledger.ParsePeriod(key)
	if err == nil && p.Kind != ledger.PeriodMonth {
		err = fmt.Errorf("%w: %q is not a month", ledger.ErrInvalidPeriod, key)
	}
	if err != nil {
		writeErr(w, err)
		return "", false
	}
	return p.Key, true
}

func (s *Server) listVATJournal(w http.ResponseWriter, r *http.Request) {
	var (
		entries []journal.VATEntry
		err     error
	)
	if key := r.URL.Query().Get("period"); key != "" {
		period, ok := monthKey(w, key)
		if !ok {
			return
		}
		entries, err = s.vat.ListByPeriod(r.Context(), period)
	} else {
		entries, err = s.vat.List(r.Context())
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	if entries == nil {
		entries = []journal.VATEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) logVATOperation(w http.ResponseWriter, r *http.Request) {
	var in journal.VATInput
	if !decodeJSON(w, r, &in) {
		return
	}
	entry, err := s.vat.LogOperation(r.Context(), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) reconcileVATJournal(w http.ResponseWriter, r *http.Request) {
	period, ok := monthKey(w, chi.URLParam(r, "period"))
	if !ok {
		return
	}
	prior := decimal.Zero
	if v := r.URL.Query().Get("prior_credit"); v != "" {
		var err error
		if prior, err = money.Parse(v); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	entries, err := s.vat.ListByPeriod(r.Context(), period)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.vatPolicy.FromJournal(entries, period, prior))
}

func (s *Server) declareVATJournal(w http.ResponseWriter, r *http.Request) {
	period, ok := monthKey(w, chi.URLParam(r, "period"))
	if !ok {
		return
	}
	n, err := s.vat.MarkDeclared(r.Context(), period)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"period": period, "declared": n})
}
