package task

import (
	"context"
	"testing"

	"stockd/internal/broker"
	"stockd/internal/store/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type fakeResolver struct {
	codes []string
	urls  []string
}

func (f *fakeResolver) Resolve(_ context.Context, imageURL string) (string, error) {
	f.urls = append(f.urls, imageURL)
	code := f.codes[0]
	if len(f.codes) > 1 {
		f.codes = f.codes[1:]
	}
	return code, nil
}

func authOK(cookie, key string) *broker.Result[broker.AuthData] {
	return &broker.Result[broker.AuthData]{
		Status: 0,
		Data:   []broker.AuthData{{Cookie: cookie, ValidateKey: key}},
	}
}

func TestAutoLoginPersistsSession(t *testing.T) {
	st := &memStore{}
	st.accounts.list = []model.TradeAccount{{ID: 1, Account: "54080001", Password: "pw"}}

	api := &MockBrokerAPI{}
	api.On("Authenticate", mock.Anything, mock.MatchedBy(func(req broker.AuthRequest) bool {
		return req.UserID == "54080001" && req.IdentifyCode == "7391"
	})).Return(authOK("session-cookie", "vk-1"), nil)

	resolver := &fakeResolver{codes: []string{"7391"}}
	svc := NewService(Deps{
		Store:      st,
		Broker:     api,
		OCR:        resolver,
		CaptchaURL: func(rand string) string { return "https://jywg.test/Login/YZM?randNum=" + rand },
	})

	assert.NoError(t, svc.runAutoLogin(context.Background()))
	if assert.Len(t, st.accounts.updated, 1) {
		assert.Equal(t, "session-cookie", st.accounts.updated[0].Cookie)
		assert.Equal(t, "vk-1", st.accounts.updated[0].ValidateKey)
	}
	// The captcha token must carry the fixed prefix the login page expects.
	if assert.Len(t, resolver.urls, 1) {
		assert.Contains(t, resolver.urls[0], "randNum=0.903")
	}
}

func TestAutoLoginRetriesRejectedCaptcha(t *testing.T) {
	st := &memStore{}
	st.accounts.list = []model.TradeAccount{{ID: 1, Account: "54080001"}}

	api := &MockBrokerAPI{}
	api.On("Authenticate", mock.Anything, mock.Anything).
		Return(&broker.Result[broker.AuthData]{Status: -1, Message: "验证码错误"}, nil).Once()
	api.On("Authenticate", mock.Anything, mock.Anything).
		Return(authOK("c", "vk"), nil).Once()

	svc := NewService(Deps{
		Store:      st,
		Broker:     api,
		OCR:        &fakeResolver{codes: []string{"0000", "7391"}},
		CaptchaURL: func(rand string) string { return rand },
	})

	assert.NoError(t, svc.runAutoLogin(context.Background()))
	assert.Len(t, st.accounts.updated, 1)
	api.AssertNumberOfCalls(t, "Authenticate", 2)
}

func TestAutoLoginExhaustedRetriesFails(t *testing.T) {
	st := &memStore{}
	st.accounts.list = []model.TradeAccount{{ID: 1, Account: "54080001"}}

	api := &MockBrokerAPI{}
	api.On("Authenticate", mock.Anything, mock.Anything).
		Return(&broker.Result[broker.AuthData]{Status: -1, Message: "验证码错误"}, nil)

	svc := NewService(Deps{
		Store:      st,
		Broker:     api,
		OCR:        &fakeResolver{codes: []string{"0000"}},
		CaptchaURL: func(rand string) string { return rand },
	})

	err := svc.runAutoLogin(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "54080001")
	assert.Empty(t, st.accounts.updated)
	api.AssertNumberOfCalls(t, "Authenticate", loginAttempts)
}
