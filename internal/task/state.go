package task

import (
	"sync"

	"github.com/shopspring/decimal"
)

// AlertState is the last-alerted price per watched code, living for one
// trading day. A code is present only after at least one quote has been
// observed since the last reset; an absent code means "first sighting".
//
// The ticker runs sequentially today, but the state is shared with the
// beginOfDay reset, so it carries its own lock.
type AlertState struct {
	mu   sync.Mutex
	last map[string]decimal.Decimal
}

func NewAlertState() *AlertState {
	return &AlertState{last: make(map[string]decimal.Decimal)}
}

// Baseline returns the last alerted price of code, if any.
func (a *AlertState) Baseline(code string) (decimal.Decimal, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.last[code]
	return p, ok
}

// Rebase records price as the new alert baseline of code.
func (a *AlertState) Rebase(code string, price decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last[code] = price
}

// Reset clears all baselines. Idempotent.
func (a *AlertState) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last = make(map[string]decimal.Decimal)
}

// Len reports how many codes currently hold a baseline.
func (a *AlertState) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.last)
}
