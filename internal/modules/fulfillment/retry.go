// README: Retry policy for provider calls. Transport failures back off and
// retry; anything else (unmapped status, bad payloads) is permanent.
package fulfillment

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"catering/internal/providers"
)

const maxProviderRetries = 5

func callWithRetry[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 5 * time.Second

	return backoff.RetryWithData(func() (T, error) {
		v, err := fn()
		if err != nil && !errors.Is(err, providers.ErrTransport) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, maxProviderRetries), ctx))
}
