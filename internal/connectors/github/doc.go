// Package github talks to the GitHub REST API on behalf of the sync layer.
//
// # Components
//
//   - Client: a go-github client with request throttling, quota tracking
//     and per-call credential selection
//   - Repository: the [driven.SyncRepository] implementation that maps
//     API payloads to domain values
//
// # Authentication
//
// Every call states whether it carries a credential through an [Auth]
// value. Anonymous calls never send an Authorization header, even when a
// token is stored. Authenticated calls send the explicit token they were
// given, or the stored token when none was given, as a Bearer credential.
// An authenticated call with no token available fails before any request
// is made.
//
// # Rate Limiting
//
//  1. Proactive throttling: a token bucket caps the request rate
//     (github.requests_per_second).
//  2. Reactive tracking: X-RateLimit-* headers of every response are
//     recorded, and rate limit failures carry the reset instant.
//
// Requests are bounded by the HTTP timeout and never retried.
//
// # Error Handling
//
// Every failure leaves this package as a *domain.ProviderError tagged
// with exactly one kind:
//
//   - 401: Unauthorized
//   - 403 with exhausted quota or a rate limit message, 429: RateLimited
//   - other 403 and other 4xx: Forbidden
//   - 404: NotFound
//   - 5xx: ServerError
//   - transport failures and timeouts: NetworkError
//   - malformed payloads: DecodeError
package github
