package task

import (
	"context"
	"errors"
	"fmt"

	"stockd/internal/broker"
	"stockd/internal/logger"
	"stockd/internal/store/model"
)

// loginAttempts bounds captcha retries; OCR misreads are common enough that
// a single shot would fail most logins.
const loginAttempts = 3

// runAutoLogin refreshes the session of every enabled account. A failed
// login is a real error: without a session every trading task is dead.
func (s *Service) runAutoLogin(ctx context.Context) error {
	accounts, err := s.store.Accounts().ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("loading accounts failed: %w", err)
	}
	var errs []error
	for _, acct := range accounts {
		if err := s.login(ctx, acct); err != nil {
			errs = append(errs, fmt.Errorf("account %s: %w", acct.Account, err))
			continue
		}
		logger.Infof("auto login account=%s ok", acct.Account)
	}
	return errors.Join(errs...)
}

func (s *Service) login(ctx context.Context, acct model.TradeAccount) error {
	var lastErr error
	for i := 0; i < loginAttempts; i++ {
		randNumber := fmt.Sprintf("0.903%d", s.nowFn().UnixMilli())
		code, err := s.ocr.Resolve(ctx, s.captchaURL(randNumber))
		if err != nil {
			lastErr = fmt.Errorf("resolving captcha failed: %w", err)
			continue
		}
		res, err := s.api.Authenticate(ctx, authRequest(acct, code, randNumber))
		if err != nil {
			lastErr = fmt.Errorf("authentication failed: %w", err)
			continue
		}
		if !res.Success() {
			// 验证码错误时重试，其余错误直接放弃
			lastErr = fmt.Errorf("authentication rejected: %s", res.Message)
			logger.Warnf("auto login account=%s attempt=%d: %s", acct.Account, i+1, res.Message)
			continue
		}
		data, ok := res.First()
		if !ok || data.ValidateKey == "" {
			lastErr = fmt.Errorf("authentication answered without a session")
			continue
		}
		acct.Cookie = data.Cookie
		acct.ValidateKey = data.ValidateKey
		if err := s.store.Accounts().Update(ctx, &acct); err != nil {
			return fmt.Errorf("persisting session failed: %w", err)
		}
		return nil
	}
	return lastErr
}

func authRequest(acct model.TradeAccount, code, randNumber string) broker.AuthRequest {
	return broker.AuthRequest{
		UserID:       acct.Account,
		Password:     acct.Password,
		IdentifyCode: code,
		RandNumber:   randNumber,
	}
}
