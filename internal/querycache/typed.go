package querycache

import (
	"context"
	"errors"
	"fmt"
)

// ErrDisabled is returned by ReadAs when the read was skipped because
// Options.Disabled was set.
var ErrDisabled = errors.New("query disabled")

// ReadAs is the typed front of Cache.Read used by the query accessors.
func ReadAs[T any](ctx context.Context, c *Cache, key Key, opts Options, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	res := c.Read(ctx, key, opts, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})

	switch res.Status {
	case StatusIdle:
		return zero, ErrDisabled
	case StatusError:
		return zero, res.Err
	}

	value, ok := res.Value.(T)
	if !ok {
		return zero, fmt.Errorf("cache entry %s holds %T, not %T", key, res.Value, zero)
	}
	return value, nil
}

// MutateAs runs a typed mutation through Cache.Mutate.
func MutateAs[T any](ctx context.Context, c *Cache, fn func(context.Context) (T, error), invalidate ...Key) (T, error) {
	var zero T

	v, err := c.Mutate(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx)
	}, invalidate...)
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("mutation returned %T, not %T", v, zero)
	}
	return value, nil
}
