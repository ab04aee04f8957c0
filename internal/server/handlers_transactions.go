package server

import (
	"net/http"
	"strconv"

	"github.com/simonvc/fiscaledger/internal/journal"
	"github.com/simonvc/fiscaledger/internal/logger"
	"github.com/simonvc/fiscaledger/internal/store"
)

func (s *Server) recordCash(w http.ResponseWriter, r *http.Request) {
	var in journal.TransactionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	txn, err := s.cash.Record(r.Context(), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

func (s *Server) listCash(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.TxnFilter{
		VehicleID:     q.Get("vehicle_id"),
		ReferenceType: q.Get("reference_type"),
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid "+name+": "+v)
			return
		}
		*dst = n
	}

	txns, err := s.store.ListTransactions(r.Context(), filter)
	if err != nil {
		writeErr(w, err)
		return
	}
	if txns == nil {
		txns = []journal.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

// resetAccountingData empties both logs. It is an administrative operation
// and is not subject to the fiscal period guard.
func (s *Server) resetAccountingData(w http.ResponseWriter, r *http.Request) {
	if err := s.cash.Clear(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	if err := s.vat.Clear(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	logger.FromContext(r.Context()).Warn("accounting data cleared")
	w.WriteHeader(http.StatusNoContent)
}
