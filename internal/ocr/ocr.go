// Package ocr resolves brokerage captcha images to text via an external
// recognition service.
package ocr

import (
	"context"
	"fmt"
	"sort"
)

// Resolver turns a captcha image URL into its text.
type Resolver interface {
	Resolve(ctx context.Context, imageURL string) (string, error)
}

// Registry maps provider names to resolvers. Providers register at startup;
// an unknown name in config fails the build, not a trading-hours task.
type Registry struct {
	providers map[string]Resolver
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Resolver)}
}

func (r *Registry) Register(name string, res Resolver) {
	r.providers[name] = res
}

func (r *Registry) Lookup(name string) (Resolver, error) {
	res, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("ocr provider %q not registered (have %v)", name, r.names())
	}
	return res, nil
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
