package booking

import "context"

type contextKey string

const idempotencyKeyCtx contextKey = "bookingIdempotencyKey"

// NewContextWithIdempotencyKey tags ctx so that CreateBooking stores at most one booking per key.
func NewContextWithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyCtx, key)
}

// IdempotencyKeyFromContext reports false when ctx carries no key or an empty one.
func IdempotencyKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKeyCtx).(string)

	return key, ok && key != ""
}
