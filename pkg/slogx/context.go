package slogx

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/caronte/pkg/cryptox"
)

type ctxKey struct{}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request logger, or the default logger outside a
// request.
func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// Token identifies a raw token in log lines without writing the token itself.
func Token(raw string) slog.Attr {
	return Fingerprint(cryptox.FingerprintToken(raw))
}

// Fingerprint logs a value already produced by cryptox.FingerprintToken.
func Fingerprint(fp string) slog.Attr {
	return slog.String("token_fp", fp)
}
