// Package httputil provides retry helpers for the book API and cover
// download clients.
//
// # Retry
//
// [Retry] re-runs an operation while it fails with a transient error:
//
//   - errors wrapped in [RetryableError] (network errors, 5xx responses)
//   - rate-limit errors (HTTP 429), honouring their Retry-After hint
//
// Any other error is returned immediately. The delay between attempts
// doubles after every failure, and context cancellation aborts the wait:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetchCover(ctx, url)
//	})
//
// # Defaults
//
//   - Attempts: 3
//   - Initial delay: 1 second
//
// Response caching lives in package cache, not here.
package httputil
