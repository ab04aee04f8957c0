package server

import (
	"net/http"

	"github.com/simonvc/fiscaledger/internal/journal"
	"github.com/simonvc/fiscaledger/internal/ledger"
)

type invoiceEvent struct {
	Invoice ledger.Invoice `json:"invoice"`
	PaidOn  ledger.Date    `json:"paid_on"`
}

type expenseEvent struct {
	Expense ledger.Expense `json:"expense"`
	PaidOn  ledger.Date    `json:"paid_on"`
}

type salaryEvent struct {
	Employee ledger.Employee `json:"employee"`
	PaidOn   ledger.Date     `json:"paid_on"`
}

func writeRecorded(w http.ResponseWriter, rec journal.Recorded, err error) {
	if err != nil {
		writeErr(w, err)
		return
	}
	if rec.Cash == nil && rec.VAT == nil {
		writeJSON(w, http.StatusOK, rec)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) invoiceValidated(w http.ResponseWriter, r *http.Request) {
	var ev invoiceEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	rec, err := s.recorder.InvoiceValidated(r.Context(), ev.Invoice)
	writeRecorded(w, rec, err)
}

func (s *Server) invoicePaid(w http.ResponseWriter, r *http.Request) {
	var ev invoiceEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	rec, err := s.recorder.InvoicePaid(r.Context(), ev.Invoice, ev.PaidOn)
	writeRecorded(w, rec, err)
}

func (s *Server) expenseValidated(w http.ResponseWriter, r *http.Request) {
	var ev expenseEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	rec, err := s.recorder.ExpenseValidated(r.Context(), ev.Expense)
	writeRecorded(w, rec, err)
}

func (s *Server) expensePaid(w http.ResponseWriter, r *http.Request) {
	var ev expenseEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	rec, err := s.recorder.ExpensePaid(r.Context(), ev.Expense, ev.PaidOn)
	writeRecorded(w, rec, err)
}

func (s *Server) salaryPaid(w http.ResponseWriter, r *http.Request) {
	var ev salaryEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	rec, err := s.recorder.SalaryPaid(r.Context(), ev.Employee, ev.PaidOn)
	writeRecorded(w, rec, err)
}
