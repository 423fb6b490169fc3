package caronte

import (
	"context"

	"github.com/aussiebroadwan/caronte/pkg/jwtx"
)

type ctxKey struct{}

// WithResult attaches a validation result to ctx.
func WithResult(ctx context.Context, res *Result) context.Context {
	return context.WithValue(ctx, ctxKey{}, res)
}

// ResultFromContext returns the result attached by WithResult.
func ResultFromContext(ctx context.Context) (*Result, bool) {
	res, ok := ctx.Value(ctxKey{}).(*Result)
	return res, ok && res != nil
}

// UserFromContext returns the validated user attached to ctx, or nil.
func UserFromContext(ctx context.Context) *jwtx.UserPayload {
	res, ok := ResultFromContext(ctx)
	if !ok {
		return nil
	}
	return res.User
}
