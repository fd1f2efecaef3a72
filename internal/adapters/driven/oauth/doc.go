// Package oauth implements driven.TokenExchanger.
//
// Two exchangers are provided:
//
//   - ProxyExchanger sends the authorization code to a trusted proxy that
//     holds the client secret and answers with the access token.
//   - DirectExchanger talks to GitHub's OAuth endpoints itself using PKCE.
//
// Both make exactly one exchange attempt per code and report an `error`
// field in the response as a *domain.ExchangeError.
package oauth
