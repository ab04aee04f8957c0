package server

import (
	"net/http"

	"github.com/simonvc/fiscaledger/internal/report"
)

func (s *Server) profitAndLoss(w http.ResponseWriter, r *http.Request) {
	req, p, ok := decodeDeclaration(w, r)
	if !ok {
		return
	}
	basis, err := report.ParseTurnoverBasis(req.Basis)
	if err != nil {
		writeErr(w, err)
		return
	}
	entries, ok := s.postedEntries(w, r, &req, p.End)
	if !ok {
		return
	}
	pl, err := report.BuildProfitAndLoss(entries, p, basis)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) costCenters(w http.ResponseWriter, r *http.Request) {
	p, ok := parsePeriod(w, r.URL.Query().Get("period"))
	if !ok {
		return
	}
	txns, err := s.cash.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report.CostCenters(txns, p))
}
