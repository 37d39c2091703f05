package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/frontdesk/internal/entity"
	"github.com/xavierca1/frontdesk/internal/infra/http/handlers"
	"github.com/xavierca1/frontdesk/internal/infra/session"
	"github.com/xavierca1/frontdesk/internal/mocks"
	"github.com/xavierca1/frontdesk/internal/usecase"
)

type fakeOAuth struct {
	exchangeErr error
}

func (f fakeOAuth) AuthCodeURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (f fakeOAuth) Exchange(_ context.Context, chiropractor, code string) (*entity.CalendarToken, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &entity.CalendarToken{Chiropractor: chiropractor, AccessToken: "at-" + code, RefreshToken: "rt", Expiry: time.Now().Add(time.Hour)}, nil
}

func newGoogleHandler(oauth handlers.OAuthFlow, returnURL string) (*handlers.GoogleHandler, *session.Manager, *mocks.CalendarTokenRepository) {
	tokens := new(mocks.CalendarTokenRepository)
	sync := usecase.NewCalendarSyncUseCase(new(mocks.BookingRepository), tokens, new(mocks.CalendarGateway), newAudit(), nil)
	states := session.NewManager("0123456789abcdef0123456789abcdef", time.Hour)
	return handlers.NewGoogleHandler(sync, oauth, states, returnURL), states, tokens
}

func TestGoogleConnectReturnsConsentURL(t *testing.T) {
	h, states, _ := newGoogleHandler(fakeOAuth{}, "")

	rec := serve(h.Connect, http.MethodGet, "/api/google/connect", "/api/google/connect", nil, &staff)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	u, err := url.Parse(body["url"])
	require.NoError(t, err)
	username, chiro, err := states.VerifyState(u.Query().Get("state"))
	require.NoError(t, err)
	assert.Equal(t, "recepcja", username)
	assert.Equal(t, "anna", chiro)
}

func TestGoogleConnectDisabled(t *testing.T) {
	h, _, _ := newGoogleHandler(nil, "")

	rec := serve(h.Connect, http.MethodGet, "/api/google/connect", "/api/google/connect", nil, &staff)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGoogleCallbackStoresToken(t *testing.T) {
	h, states, tokens := newGoogleHandler(fakeOAuth{}, "http://localhost:5173/settings")
	tokens.On("FindByChiropractor", mock.Anything, "anna").Return(nil, entity.ErrTokenNotFound).Maybe()
	tokens.On("Save", mock.Anything, mock.MatchedBy(func(tok *entity.CalendarToken) bool {
		return tok.Chiropractor == "anna" && tok.AccessToken == "at-code-1" && tok.CalendarID == "primary"
	})).Return(nil)

	state, err := states.SignState("recepcja", "anna")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/google/callback?code=code-1&state="+url.QueryEscape(state), nil)
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://localhost:5173/settings?google=connected", rec.Header().Get("Location"))
	tokens.AssertExpectations(t)
}

func TestGoogleCallbackFailures(t *testing.T) {
	h, states, _ := newGoogleHandler(fakeOAuth{exchangeErr: errors.New("invalid_grant")}, "")
	state, err := states.SignState("recepcja", "anna")
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  int
		code  string
	}{
		{"tampered state", "code=x&state=abc", http.StatusBadRequest, "invalid_state"},
		{"consent denied", "error=access_denied", http.StatusBadRequest, "denied"},
		{"missing code", "state=" + url.QueryEscape(state), http.StatusBadRequest, "missing_code"},
		{"exchange fails", "code=x&state=" + url.QueryEscape(state), http.StatusBadGateway, "exchange_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Callback(rec, httptest.NewRequest(http.MethodGet, "/api/google/callback?"+tt.query, nil))
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Error)
		})
	}
}

func TestGoogleStatus(t *testing.T) {
	h, _, tokens := newGoogleHandler(fakeOAuth{}, "")
	tokens.On("FindByChiropractor", mock.Anything, "anna").Return(&entity.CalendarToken{Chiropractor: "anna"}, nil)

	rec := serve(h.Status, http.MethodGet, "/api/google/status", "/api/google/status", nil, &staff)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"enabled":true,"connected":true}`, rec.Body.String())
}
