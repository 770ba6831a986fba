package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/ntfysub/internal/backoff"
	"github.com/arloliu/ntfysub/internal/natsutil"
	"github.com/nats-io/nats.go/jetstream"
)

// ensureBucket creates or opens a KV bucket with retry.
//
// Several processes may race to create the same bucket; losing the race surfaces as
// jetstream.ErrBucketExists and the existing bucket is opened instead. Only connectivity
// failures are retried; any other error (an invalid bucket name, for example) is returned
// at once.
func ensureBucket(
	ctx context.Context,
	js jetstream.JetStream,
	config jetstream.KeyValueConfig,
	maxRetries int,
) (jetstream.KeyValue, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	retry := backoff.New(10*time.Millisecond, 200*time.Millisecond)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		kv, err := js.CreateKeyValue(ctx, config)
		if err == nil {
			return kv, nil
		}

		if errors.Is(err, jetstream.ErrBucketExists) {
			kv, err := js.KeyValue(ctx, config.Bucket)
			if err == nil {
				return kv, nil
			}
			lastErr = fmt.Errorf("bucket exists but failed to open: %w", err)
		} else {
			if !natsutil.IsConnectivityError(err) {
				return nil, fmt.Errorf("failed to create KV bucket %s: %w", config.Bucket, err)
			}
			lastErr = err
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("context cancelled during KV bucket creation: %w", ctx.Err())
		}

		if attempt < maxRetries-1 {
			if err := retry.Wait(ctx); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("failed to create/open KV bucket %s after %d attempts: %w",
		config.Bucket, maxRetries, lastErr)
}
