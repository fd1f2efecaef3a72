package github

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/ghview/internal/core/domain"
)

// Auth states whether a call carries a credential.
type Auth struct {
	// Required marks the call as authenticated.
	Required bool
	// Token is the credential to send. When empty, the client's stored
	// token is used.
	Token string
}

// Anonymous sends no credential.
var Anonymous = Auth{}

// StoredToken authenticates with whatever token is stored when the request is made.
var StoredToken = Auth{Required: true}

// Bearer authenticates with the given token.
func Bearer(token string) Auth {
	return Auth{Required: true, Token: token}
}

// TokenSource supplies the stored credential. *services.TokenStore satisfies it.
type TokenSource interface {
	Get() string
}

type authKey struct{}

func withAuth(ctx context.Context, auth Auth) context.Context {
	return context.WithValue(ctx, authKey{}, auth)
}

func authFrom(ctx context.Context) Auth {
	auth, _ := ctx.Value(authKey{}).(Auth)
	return auth
}

// authTransport adds the Bearer credential selected by the request's Auth.
type authTransport struct {
	tokens TokenSource
	base   http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	auth := authFrom(req.Context())
	if !auth.Required {
		return t.base.RoundTrip(req)
	}

	token := auth.Token
	if token == "" && t.tokens != nil {
		token = t.tokens.Get()
	}
	if token == "" {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, domain.ErrAuthRequired
	}

	ot := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   t.base,
	}
	return ot.RoundTrip(req)
}
