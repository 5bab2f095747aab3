package services

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"walletpalz/internal/rates"
	"walletpalz/internal/realtime"
	"walletpalz/internal/worker"
)

// stubRates serves fixed tables; unknown bases get an empty table, which is
// what the real provider returns on failure.
type stubRates struct {
	mu     sync.Mutex
	tables map[string]rates.Table
	calls  int
}

func (s *stubRates) FetchRates(_ context.Context, base string) rates.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if t, ok := s.tables[base]; ok {
		return t
	}
	return rates.Table{}
}

func noRates() *stubRates {
	return &stubRates{}
}

// syncJobs runs submitted jobs immediately on the caller's goroutine.
type syncJobs struct{}

func (syncJobs) Submit(_ string, job worker.Job) bool {
	job(context.Background())
	return true
}

type recordingHub struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (h *recordingHub) Publish(_ string, ev realtime.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
}

func (h *recordingHub) count(kind realtime.EventType) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, ev := range h.events {
		if ev.Event == kind {
			n++
		}
	}
	return n
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
