package access

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var ErrInvalidPollDelay = errors.New("poll delay must be positive")

// Finalize polls the result of transaction id every delay until it is sealed or expired.
// When timeout elapses first it returns a nil result and a nil error; expiry itself is
// decided by the network. Errors from the client end polling immediately.
func Finalize(ctx context.Context, client TransactionResultClient, id []byte, delay, timeout time.Duration) (*TransactionResult, error) {
	if delay <= 0 {
		return nil, errors.Wrapf(ErrInvalidPollDelay, "got %s", delay)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		result, err := client.TransactionResult(ctx, id)
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return nil, nil
			}
			return nil, errors.Wrapf(err, "transaction result %x", id)
		}
		if result.Status.Final() {
			return result, nil
		}

		log.Trace().Msgf("Transaction %x is %s, polling again", id, result.Status)

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return nil, nil
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
