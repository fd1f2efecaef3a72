package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ghview/internal/core/domain"
)

func TestNewProxyExchanger_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "/relative"} {
		_, err := NewProxyExchanger(raw, "", 0)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, raw)
	}
}

func TestProxyExchanger_AuthorizationURL(t *testing.T) {
	p, err := NewProxyExchanger("https://proxy.example.test/", "http://127.0.0.1:8976/callback", 0)
	require.NoError(t, err)

	raw, err := p.AuthorizationURL("abc")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "proxy.example.test", u.Host)
	assert.Equal(t, "/login", u.Path)
	assert.Equal(t, "abc", u.Query().Get("state"))
	assert.Equal(t, "http://127.0.0.1:8976/callback", u.Query().Get("redirect_uri"))
}

func TestProxyExchanger_AuthorizationURL_Bare(t *testing.T) {
	p, err := NewProxyExchanger("https://proxy.example.test", "", 0)
	require.NoError(t, err)

	raw, err := p.AuthorizationURL("")
	require.NoError(t, err)
	assert.Equal(t, "https://proxy.example.test/login", raw)
}

func TestProxyExchanger_Exchange(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantToken string
		wantCode  string
		wantErr   bool
	}{
		{name: "token", status: 200, body: `{"access_token":"gho_abc","token_type":"bearer"}`, wantToken: "gho_abc"},
		{
			name:     "error field with 200",
			status:   200,
			body:     `{"error":"bad_verification_code","error_description":"The code passed is incorrect or expired."}`,
			wantCode: "bad_verification_code",
		},
		{name: "error field with 400", status: 400, body: `{"error":"invalid_request"}`, wantCode: "invalid_request"},
		{name: "token with 201", status: 201, body: `{"access_token":"gho_abc"}`, wantToken: "gho_abc"},
		{name: "token with 400", status: 400, body: `{"access_token":"gho_def"}`, wantToken: "gho_def"},
		{name: "status without error field", status: 502, body: `upstream down`, wantErr: true},
		{name: "malformed body", status: 200, body: `{"access_token":`, wantErr: true},
		{name: "no token", status: 200, body: `{}`, wantToken: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				assert.Equal(t, "/exchange_token", r.URL.Path)
				assert.Equal(t, "the code&more", r.URL.Query().Get("code"))
				w.WriteHeader(tt.status)
				_, _ = fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			p, err := NewProxyExchanger(srv.URL, "", 0)
			require.NoError(t, err)

			token, err := p.Exchange(context.Background(), "the code&more", "state")
			assert.Equal(t, int32(1), hits.Load())

			switch {
			case tt.wantCode != "":
				var exErr *domain.ExchangeError
				require.ErrorAs(t, err, &exErr)
				assert.Equal(t, tt.wantCode, exErr.Code)
				assert.Empty(t, token)
			case tt.wantErr:
				assert.Error(t, err)
				assert.Empty(t, token)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
			}
		})
	}
}

func TestProxyExchanger_Exchange_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	p, err := NewProxyExchanger(base, "", 0)
	require.NoError(t, err)

	_, err = p.Exchange(context.Background(), "code", "")
	assert.Error(t, err)
}
