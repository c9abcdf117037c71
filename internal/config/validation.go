package config

import (
	"fmt"
	"strings"
	"time"
)

func validate(cfg *Config) error {
	if cfg.Broker.BaseURL == "" {
		return fmt.Errorf("broker.base_url cannot be empty")
	}
	if cfg.Broker.CaptchaURL == "" {
		return fmt.Errorf("broker.captcha_url cannot be empty")
	}
	if _, err := time.LoadLocation(cfg.Calendar.Location); err != nil {
		return fmt.Errorf("calendar.location invalid: %w", err)
	}
	for _, h := range cfg.Calendar.Holidays {
		if _, err := time.Parse("2006-01-02", strings.TrimSpace(h)); err != nil {
			return fmt.Errorf("calendar.holidays entry invalid (%s): %w", h, err)
		}
	}
	for _, s := range cfg.Calendar.Sessions {
		if err := validateSession(s); err != nil {
			return err
		}
	}
	for i, acct := range cfg.Accounts {
		if strings.TrimSpace(acct.Account) == "" {
			return fmt.Errorf("accounts[%d].account cannot be empty", i)
		}
	}
	return nil
}

func validateSession(s string) error {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return fmt.Errorf("calendar.sessions entry invalid (%s): want HH:MM-HH:MM", s)
	}
	for _, p := range parts {
		if _, err := time.Parse("15:04", strings.TrimSpace(p)); err != nil {
			return fmt.Errorf("calendar.sessions entry invalid (%s): %w", s, err)
		}
	}
	return nil
}
