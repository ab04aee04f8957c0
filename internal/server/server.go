package server

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/simonvc/fiscaledger/internal/declaration"
	"github.com/simonvc/fiscaledger/internal/journal"
	"github.com/simonvc/fiscaledger/internal/logger"
	"github.com/simonvc/fiscaledger/internal/store"
	"github.com/simonvc/fiscaledger/internal/tax"
	"github.com/simonvc/fiscaledger/internal/vat"
	"go.uber.org/zap"
)

type Server struct {
	store    *store.Store
	cash     journal.CashLedger
	vat      journal.VATJournal
	recorder *journal.Recorder
	router   chi.Router
	addr     string
	log      *zap.Logger

	schedule  tax.Schedule
	vatPolicy vat.Policy
	corporate declaration.CorporatePolicy
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

func WithSchedule(sch tax.Schedule) Option {
	return func(s *Server) { s.schedule = sch }
}

func WithVATPolicy(p vat.Policy) Option {
	return func(s *Server) { s.vatPolicy = p }
}

func WithCorporatePolicy(p declaration.CorporatePolicy) Option {
	return func(s *Server) { s.corporate = p }
}

// New wires the HTTP API over st. Appends to the cash ledger and the VAT
// journal go through the fiscal period guard.
func New(st *store.Store, addr string, opts ...Option) *Server {
	s := &Server{
		store:     st,
		addr:      addr,
		log:       zap.NewNop(),
		schedule:  tax.DefaultSchedule(),
		vatPolicy: vat.DefaultPolicy(),
		corporate: declaration.DefaultCorporatePolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}

	guard := journal.NewGuard(st)
	s.cash = guard.Cash(st.CashLedger())
	s.vat = guard.VAT(st.VATJournal())
	s.recorder = journal.NewRecorder(s.cash, s.vat, s.schedule, s.log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logger.Middleware(s.log))
	r.Use(logger.Recovery(s.log))
	s.router = r

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", s.ping)

		// Chart of accounts reference
		r.Get("/chart", s.getChart)
		r.Get("/chart/categories", s.getCategoryMappings)

		// Ledger
		r.Post("/ledger/generate", s.generateLedger)
		r.Post("/ledger/trial-balance", s.trialBalance)

		// VAT
		r.Post("/vat/reconcile", s.reconcileVAT)
		r.Get("/vat/journal", s.listVATJournal)
		r.Post("/vat/journal", s.logVATOperation)
		r.Get("/vat/journal/{period}/reconcile", s.reconcileVATJournal)
		r.Post("/vat/journal/{period}/declare", s.declareVATJournal)

		// Declarations
		r.Post("/declarations/vat", s.declareVAT)
		r.Post("/declarations/withholding", s.declareWithholding)
		r.Post("/declarations/social-security", s.declareSocialSecurity)
		r.Post("/declarations/corporate-tax", s.declareCorporateTax)
		r.Post("/declarations/clients", s.clientStatement)
		r.Post("/declarations/suppliers", s.supplierStatement)

		// Reports
		r.Post("/reports/profit-and-loss", s.profitAndLoss)
		r.Get("/reports/cost-centers", s.costCenters)

		// Cash ledger
		r.Get("/cash", s.listCash)
		r.Post("/cash", s.recordCash)

		// Document events
		r.Post("/events/invoices/validated", s.invoiceValidated)
		r.Post("/events/invoices/paid", s.invoicePaid)
		r.Post("/events/expenses/validated", s.expenseValidated)
		r.Post("/events/expenses/paid", s.expensePaid)
		r.Post("/events/salaries/paid", s.salaryPaid)

		r.Delete("/accounting-data", s.resetAccountingData)

		// Fiscal periods
		r.Get("/periods", s.listPeriods)
		r.Get("/periods/{year}", s.getPeriod)
		r.Post("/periods/{year}/close", s.closePeriod)
	})

	return s
}

func (s *Server) ListenAndServe() error {
	s.log.Info("fiscaledger server listening", zap.String("addr", s.addr))
	return http.ListenAndServe(s.addr, s.router)
}

func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("fiscaledger server listening", zap.String("addr", ln.Addr().String()))
	return http.Serve(ln, s.router)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
