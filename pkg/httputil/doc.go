// Package httputil provides the HTTP plumbing shared by remote snapshot
// sources.
//
// [Client] issues GET requests, reports them to the registered
// observability HTTP hooks and classifies failures: network errors, 429
// and 5xx responses are wrapped in [RetryableError]; other non-2xx
// responses are returned as [StatusError] and are final.
//
// [Retry] re-runs an operation with exponential backoff for as long as it
// fails with a RetryableError:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return client.GetJSON(ctx, url, &doc)
//	})
package httputil
