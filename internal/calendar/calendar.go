// Package calendar answers whether a given instant falls on a trading day
// and inside a trading session.
package calendar

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"stockd/internal/config"
	"stockd/internal/logger"
	"stockd/internal/store"
	"stockd/internal/store/model"
)

type session struct {
	openMin  int // minutes since midnight, inclusive
	closeMin int // exclusive
}

// Service is the business-calendar gate. The holiday set lives in the store
// (seeded from config) and is cached in memory per year.
type Service struct {
	loc      *time.Location
	sessions []session
	store    store.Store

	mu       sync.RWMutex
	holidays map[string]bool // "2006-01-02" in market time
}

func New(cfg config.CalendarConfig, st store.Store) (*Service, error) {
	loc, err := time.LoadLocation(cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("loading calendar location failed: %w", err)
	}
	sessions, err := parseSessions(cfg.Sessions)
	if err != nil {
		return nil, err
	}
	s := &Service{
		loc:      loc,
		sessions: sessions,
		store:    st,
		holidays: make(map[string]bool),
	}
	if err := s.seed(cfg.Holidays); err != nil {
		return nil, err
	}
	return s, nil
}

// seed persists config-listed holidays not yet stored, then loads the cache.
func (s *Service) seed(dates []string) error {
	ctx := context.Background()
	var rows []model.Holiday
	for _, raw := range dates {
		d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), s.loc)
		if err != nil {
			return fmt.Errorf("holiday %q invalid: %w", raw, err)
		}
		rows = append(rows, model.Holiday{Date: d, Year: d.Year()})
	}
	if len(rows) > 0 {
		if err := s.store.Holidays().SaveAll(ctx, rows); err != nil {
			return fmt.Errorf("seeding holidays failed: %w", err)
		}
	}
	return s.Reload(ctx, time.Now().In(s.loc).Year())
}

// Reload refreshes the in-memory holiday set for year (and year-1, so the
// first trading days of January still resolve). The beginOfYear task calls
// this once the year rolls over.
func (s *Service) Reload(ctx context.Context, year int) error {
	set := make(map[string]bool)
	for _, y := range []int{year - 1, year} {
		rows, err := s.store.Holidays().ListYear(ctx, y)
		if err != nil {
			return fmt.Errorf("loading holidays of %d failed: %w", y, err)
		}
		for _, row := range rows {
			set[row.Date.In(s.loc).Format("2006-01-02")] = true
		}
	}
	s.mu.Lock()
	s.holidays = set
	s.mu.Unlock()
	logger.Infof("calendar: loaded %d holidays for %d/%d", len(set), year-1, year)
	return nil
}

// IsBusinessDate reports whether t falls on a trading day in market time.
func (s *Service) IsBusinessDate(t time.Time) bool {
	local := t.In(s.loc)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.holidays[local.Format("2006-01-02")]
}

// IsBusinessTime reports whether t is inside a trading session on a trading day.
func (s *Service) IsBusinessTime(t time.Time) bool {
	if !s.IsBusinessDate(t) {
		return false
	}
	local := t.In(s.loc)
	minutes := local.Hour()*60 + local.Minute()
	for _, sess := range s.sessions {
		if minutes >= sess.openMin && minutes < sess.closeMin {
			return true
		}
	}
	return false
}

// Location returns the market timezone.
func (s *Service) Location() *time.Location { return s.loc }

func parseSessions(specs []string) ([]session, error) {
	var out []session
	for _, spec := range specs {
		parts := strings.Split(spec, "-")
		if len(parts) != 2 {
			return nil, fmt.Errorf("session %q invalid: want HH:MM-HH:MM", spec)
		}
		open, err := parseMinutes(parts[0])
		if err != nil {
			return nil, fmt.Errorf("session %q invalid: %w", spec, err)
		}
		cls, err := parseMinutes(parts[1])
		if err != nil {
			return nil, fmt.Errorf("session %q invalid: %w", spec, err)
		}
		if cls <= open {
			return nil, fmt.Errorf("session %q invalid: close before open", spec)
		}
		out = append(out, session{openMin: open, closeMin: cls})
	}
	return out, nil
}

func parseMinutes(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
