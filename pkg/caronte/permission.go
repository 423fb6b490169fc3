package caronte

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/aussiebroadwan/caronte/pkg/jwtx"
)

const (
	// RoleRoot authorizes everything, in any application.
	RoleRoot = "root"

	// RoleSelf matches when the user is the subject of the route.
	RoleSelf = "_self"
)

// PermissionEvaluator answers authorization questions about a decoded user
// for one application.
type PermissionEvaluator struct {
	appID string
}

// NewPermissionEvaluator creates an evaluator for the application whose
// plain id is appID. Roles refer to applications by the hex SHA-1 of that id.
func NewPermissionEvaluator(appID string) *PermissionEvaluator {
	return &PermissionEvaluator{appID: ApplicationHash(appID)}
}

// ApplicationHash returns the identifier the identity server uses for appID.
func ApplicationHash(appID string) string {
	sum := sha1.Sum([]byte(appID))
	return hex.EncodeToString(sum[:])
}

// Application returns the hashed application id roles are matched against.
func (p *PermissionEvaluator) Application() string {
	return p.appID
}

// HasApplication reports whether any of the user's roles belongs to the
// application.
func (p *PermissionEvaluator) HasApplication(user *jwtx.UserPayload) (bool, error) {
	if user == nil {
		return false, ErrUserMissing
	}

	for _, r := range user.Roles {
		if r.Application() == p.appID {
			return true, nil
		}
	}
	return false, nil
}

// HasRoles reports whether the user holds one of the requested roles in the
// application. Each entry of requested may itself be a comma-separated list.
// RoleRoot is always accepted. RoleSelf is satisfied when routeUser is set
// and names the user.
func (p *PermissionEvaluator) HasRoles(user *jwtx.UserPayload, requested []string, routeUser string) (bool, error) {
	if user == nil {
		return false, ErrUserMissing
	}

	roles := append(ParseRoles(requested), RoleRoot)

	want := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		want[r] = struct{}{}
	}

	if _, ok := want[RoleSelf]; ok && routeUser != "" && routeUser == user.URIUser {
		return true, nil
	}

	for _, r := range user.Roles {
		if r.Name == RoleRoot {
			return true, nil
		}
		if _, ok := want[r.Name]; ok && r.Application() == p.appID {
			return true, nil
		}
	}
	return false, nil
}

// ParseRoles flattens comma-separated role lists, trimming whitespace and
// dropping empty entries.
func ParseRoles(requested []string) []string {
	var out []string
	for _, entry := range requested {
		for _, r := range strings.Split(entry, ",") {
			if r = strings.TrimSpace(r); r != "" {
				out = append(out, r)
			}
		}
	}
	return out
}
