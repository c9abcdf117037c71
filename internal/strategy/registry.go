// Package strategy holds the pluggable per-rule trading-strategy handlers.
// The engine only defines the contract; rule rows bind a stock to a handler
// name plus JSON parameters.
package strategy

import (
	"context"
	"fmt"
	"sort"

	"stockd/internal/store/model"
)

// Handler evaluates one trade rule. Errors are caught per rule by the
// trade-ticker task; a failing handler never aborts the batch.
type Handler interface {
	Name() string
	Handle(ctx context.Context, rule model.TradeRule) error
}

// Registry resolves handler names at startup.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry(handlers ...Handler) *Registry {
	r := &Registry{handlers: make(map[string]Handler)}
	for _, h := range handlers {
		r.handlers[h.Name()] = h
	}
	return r
}

func (r *Registry) Lookup(name string) (Handler, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("strategy handler %q not registered (have %v)", name, r.names())
	}
	return h, nil
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.handlers))
	for n := range r.handlers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
