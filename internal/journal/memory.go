package journal

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Option configures the in-memory logs.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithIDFunc(f func() string) Option {
	return func(o *options) { o.newID = f }
}

func buildOptions(opts []Option) options {
	o := options{
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// MemoryCashLedger keeps the cash ledger in process memory.
type MemoryCashLedger struct {
	mu   sync.Mutex
	opts options
	txns []Transaction
}

func NewMemoryCashLedger(opts ...Option) *MemoryCashLedger {
	return &MemoryCashLedger{opts: buildOptions(opts)}
}

func (l *MemoryCashLedger) Record(_ context.Context, in TransactionInput) (Transaction, error) {
	if err := in.Validate(); err != nil {
		return Transaction{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	t := NewTransaction(l.opts.newID(), l.opts.now(), in)
	l.txns = append(l.txns, t)
	return t, nil
}

// List returns a copy of the log in append order.
func (l *MemoryCashLedger) List(_ context.Context) ([]Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Transaction, len(l.txns))
	copy(out, l.txns)
	return out, nil
}

func (l *MemoryCashLedger) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txns = nil
	return nil
}

// MemoryVATJournal keeps the VAT journal in process memory.
type MemoryVATJournal struct {
	mu      sync.Mutex
	opts    options
	entries []VATEntry
}

func NewMemoryVATJournal(opts ...Option) *MemoryVATJournal {
	return &MemoryVATJournal{opts: buildOptions(opts)}
}

func (j *MemoryVATJournal) LogOperation(_ context.Context, in VATInput) (VATEntry, error) {
	if err := in.Validate(); err != nil {
		return VATEntry{}, err
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	e := NewVATEntry(j.opts.newID(), j.opts.now(), in)
	j.entries = append(j.entries, e)
	return e, nil
}

func (j *MemoryVATJournal) List(_ context.Context) ([]VATEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]VATEntry, len(j.entries))
	copy(out, j.entries)
	return out, nil
}

func (j *MemoryVATJournal) ListByPeriod(_ context.Context, period string) ([]VATEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := []VATEntry{}
	for _, e := range j.entries {
		if e.Period == period {
			out = append(out, e)
		}
	}
	return out, nil
}

func (j *MemoryVATJournal) MarkDeclared(_ context.Context, period string) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := 0
	for i := range j.entries {
		if j.entries[i].Period == period && !j.entries[i].Declared {
			j.entries[i].Declared = true
			n++
		}
	}
	return n, nil
}

func (j *MemoryVATJournal) Clear(_ context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = nil
	return nil
}
