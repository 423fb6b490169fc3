package httpx

import (
	"context"

	"github.com/aussiebroadwan/caronte/pkg/caronte"
)

// userIDFromCtx returns the uri_user of the validated user, or "".
func userIDFromCtx(ctx context.Context) string {
	if u := caronte.UserFromContext(ctx); u != nil {
		return u.URIUser
	}
	return ""
}
