package coingecko

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// limitedTransport throttles requests to stay within the API quota.
type limitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

// newLimitedTransport allows perMinute requests per minute, without limit when
// perMinute is not positive.
func newLimitedTransport(base http.RoundTripper, perMinute int) *limitedTransport {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return &limitedTransport{base: base, limiter: rate.NewLimiter(limit, 1)}
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
