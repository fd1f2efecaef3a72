package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/ghview/internal/core/domain"
)

// classify converts a go-github or transport failure into a
// *domain.ProviderError. limiter supplies the last known reset time when
// the failure itself does not carry one; it may be nil.
func classify(err error, limiter *RateLimiter) error {
	if err == nil {
		return nil
	}

	var (
		provErr   *domain.ProviderError
		rateErr   *gh.RateLimitError
		abuseErr  *gh.AbuseRateLimitError
		respErr   *gh.ErrorResponse
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &provErr):
		return provErr
	case errors.Is(err, domain.ErrAuthRequired):
		return &domain.ProviderError{Kind: domain.KindUnauthorized, Message: "no credential stored", Err: err}
	case errors.Is(err, context.Canceled):
		return &domain.ProviderError{Kind: domain.KindCanceled, Err: err}
	case errors.As(err, &rateErr):
		return &domain.ProviderError{
			Kind:       domain.KindRateLimited,
			StatusCode: statusOf(rateErr.Response),
			Message:    rateErr.Message,
			ResetAt:    rateErr.Rate.Reset.Time,
			Err:        err,
		}
	case errors.As(err, &abuseErr):
		pe := &domain.ProviderError{
			Kind:       domain.KindRateLimited,
			StatusCode: statusOf(abuseErr.Response),
			Message:    abuseErr.Message,
			Err:        err,
		}
		if abuseErr.RetryAfter != nil {
			pe.ResetAt = time.Now().Add(*abuseErr.RetryAfter)
		} else if limiter != nil {
			pe.ResetAt = limiter.ResetTime()
		}
		return pe
	case errors.As(err, &respErr):
		return classifyResponse(respErr.Response, respErr.Message, err, limiter)
	case errors.Is(err, domain.ErrDecode), errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return &domain.ProviderError{Kind: domain.KindDecodeError, Err: err}
	default:
		// Transport failures, timeouts and anything else that produced no
		// usable response.
		return &domain.ProviderError{Kind: domain.KindNetworkError, Err: err}
	}
}

// classifyResponse maps an HTTP error status to its kind.
func classifyResponse(resp *http.Response, message string, err error, limiter *RateLimiter) error {
	status := statusOf(resp)
	pe := &domain.ProviderError{StatusCode: status, Message: message, Err: err}

	switch {
	case status == http.StatusUnauthorized:
		pe.Kind = domain.KindUnauthorized
	case status == http.StatusTooManyRequests,
		status == http.StatusForbidden && isRateLimitResponse(resp, message):
		pe.Kind = domain.KindRateLimited
		pe.ResetAt = resetFromResponse(resp, time.Now())
		if pe.ResetAt.IsZero() && limiter != nil {
			pe.ResetAt = limiter.ResetTime()
		}
	case status == http.StatusNotFound:
		pe.Kind = domain.KindNotFound
	case status >= http.StatusInternalServerError:
		pe.Kind = domain.KindServerError
	case status >= http.StatusBadRequest:
		pe.Kind = domain.KindForbidden
	default:
		pe.Kind = domain.KindServerError
	}
	return pe
}

func isRateLimitResponse(resp *http.Response, message string) bool {
	if resp != nil && resp.Header.Get(HeaderRateRemaining) == "0" {
		return true
	}
	return strings.Contains(strings.ToLower(message), "rate limit")
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
